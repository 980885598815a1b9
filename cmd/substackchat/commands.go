package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tesso57/substackchat/internal/application/settings"
	"github.com/tesso57/substackchat/internal/infrastructure/chatclient"
	"github.com/tesso57/substackchat/internal/infrastructure/config"
	"github.com/tesso57/substackchat/internal/infrastructure/logging"
	"github.com/tesso57/substackchat/internal/presentation/httpapi"
	"github.com/tesso57/substackchat/internal/presentation/tui"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config  string
	LogFile string
}

func (g *Globals) load() (settings.Settings, error) {
	store, err := config.Load(g.Config)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("load config: %w", err)
	}
	s := store.Settings
	if g.LogFile != "" {
		s.Log.File = g.LogFile
	}
	return s, nil
}

func newLogger(cfg settings.LogConfig) (logging.Logger, error) {
	var outputs []string
	if cfg.File != "" {
		outputs = []string{cfg.File}
	}
	return logging.New(logging.Config{Level: cfg.Level, OutputPaths: outputs})
}

// ServeCmd runs the HTTP chat endpoint.
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.addr)."`
}

// Run starts the server and blocks until interrupted.
func (c *ServeCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	chat, err := buildChatService(cfg, logger)
	if err != nil {
		return err
	}
	server := httpapi.NewServer(chat, httpapi.Config{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      cfg.Server.RateLimit,
		Burst:          cfg.Server.RateBurst,
	}, logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger.Info("chat server listening",
		logging.String("addr", cfg.Server.Addr),
		logging.String("provider", cfg.LLM.Provider),
		logging.String("model", cfg.LLM.Model),
	)
	return server.Start(ctx, cfg.Server.Addr)
}

// ChatCmd opens the terminal client.
type ChatCmd struct {
	Server string `help:"Chat server URL (overrides ui.server_url)."`
}

// Run starts the TUI. Logs are discarded unless a log file is configured,
// since the terminal belongs to the UI.
func (c *ChatCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.Server != "" {
		cfg.UI.ServerURL = c.Server
	}

	logger := logging.NewNop()
	if cfg.Log.File != "" {
		if logger, err = newLogger(cfg.Log); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	model := tui.NewModel(cfg.UI, chatclient.New(cfg.UI.ServerURL, nil), logger)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// ToolsCmd invokes one tool of the dispatch table directly.
type ToolsCmd struct {
	Name string `arg:"" optional:"" help:"Tool name. Lists the tools when omitted."`
	Args string `arg:"" optional:"" default:"{}" help:"JSON arguments."`
}

// Run prints the tool result as indented JSON.
func (c *ToolsCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	return invokeTool(context.Background(), registry, c.Name, c.Args, os.Stdout)
}

func invokeTool(ctx context.Context, registry toolRunner, name, args string, out io.Writer) error {
	if name == "" {
		for _, spec := range registry.Specs() {
			if _, err := fmt.Fprintf(out, "%s\t%s\n", spec.Name, spec.Description); err != nil {
				return err
			}
		}
		return nil
	}

	result, err := registry.Execute(ctx, name, json.RawMessage(args))
	if err != nil {
		return err
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, result, "", "  "); err != nil {
		return err
	}
	pretty.WriteByte('\n')
	_, err = pretty.WriteTo(out)
	return err
}
