// Package codexcli generates text by running the Codex CLI as a subprocess.
package codexcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/tesso57/substackchat/internal/infrastructure/ai"
)

const (
	providerName   = "codex"
	defaultCommand = "codex"
	defaultSandbox = "read-only"
	defaultTimeout = 30 * time.Second
)

// rateLimitMarkers are stderr fragments Codex prints when the account is out of quota.
var rateLimitMarkers = []string{"rate limit", "429", "usage limit"}

// Config controls Codex CLI subprocess invocation.
type Config struct {
	Command         string
	Model           string
	ReasoningEffort string
	Sandbox         string
	Timeout         time.Duration
}

// Runner executes Codex and returns stdout/stderr text.
type Runner func(ctx context.Context, command string, args []string, stdin string) (string, string, error)

// Client implements ai.TextGenerator.
type Client struct {
	config Config
	run    Runner
}

// NewClient creates a Codex CLI client.
func NewClient(cfg Config) Client {
	return NewClientWithRunner(cfg, nil)
}

// NewClientWithRunner creates a client with a custom runner for tests.
func NewClientWithRunner(cfg Config, runner Runner) Client {
	if runner == nil {
		runner = defaultRunner
	}
	return Client{
		config: normalizeConfig(cfg),
		run:    runner,
	}
}

// Generate sends the prompt on stdin and returns what Codex printed.
func (c Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt is empty")
	}

	runCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	stdout, stderr, err := c.run(runCtx, c.config.Command, c.args(), prompt)
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("codex exec timed out after %s: %w", c.config.Timeout, context.DeadlineExceeded)
		}
		reason := strings.TrimSpace(stderr)
		if reason == "" {
			reason = strings.TrimSpace(stdout)
		}
		execErr := fmt.Errorf("codex exec failed: %w", err)
		if reason != "" {
			execErr = fmt.Errorf("codex exec failed: %w: %s", err, reason)
		}
		if isRateLimited(reason) {
			return "", &ai.RateLimitError{Provider: providerName, Err: execErr}
		}
		return "", execErr
	}
	out := strings.TrimSpace(stdout)
	if out == "" {
		return "", errors.New("codex returned empty output")
	}
	return out, nil
}

func isRateLimited(reason string) bool {
	lower := strings.ToLower(reason)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

func normalizeConfig(cfg Config) Config {
	normalized := cfg
	if strings.TrimSpace(normalized.Command) == "" {
		normalized.Command = defaultCommand
	}
	if strings.TrimSpace(normalized.Sandbox) == "" {
		normalized.Sandbox = defaultSandbox
	}
	if normalized.Timeout <= 0 {
		normalized.Timeout = defaultTimeout
	}
	return normalized
}

func (c Client) args() []string {
	args := []string{
		"exec",
		"--skip-git-repo-check",
		"--sandbox", c.config.Sandbox,
		"--color", "never",
	}
	if model := strings.TrimSpace(c.config.Model); model != "" {
		args = append(args, "-m", model)
	}
	if effort := strings.TrimSpace(c.config.ReasoningEffort); effort != "" {
		args = append(args, "-c", fmt.Sprintf("model_reasoning_effort=%q", effort))
	}
	return append(args, "-")
}

func defaultRunner(ctx context.Context, command string, args []string, stdin string) (string, string, error) {
	cmd := exec.CommandContext(ctx, command, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}
