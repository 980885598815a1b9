// Command substackchat serves and talks to the Substack newsletter chat.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

// CLI is the command-line surface. Settings come from the config file and
// the environment; flags only pick files and override a few addresses.
type CLI struct {
	Config  string `help:"Path to the config file." type:"path"`
	LogFile string `name:"log-file" help:"Write logs to this file instead of stderr." type:"path"`

	Serve ServeCmd `cmd:"" help:"Run the chat HTTP server."`
	Chat  ChatCmd  `cmd:"" default:"1" help:"Open the terminal chat client."`
	Tools ToolsCmd `cmd:"" help:"Invoke a newsletter tool with JSON arguments."`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("substackchat"),
		kong.Description("Chat with Substack newsletters."),
		kong.UsageOnError(),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return ctx.Run(&Globals{Config: cli.Config, LogFile: cli.LogFile})
}
