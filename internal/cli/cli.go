// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command routing for palaver.

package cli

import (
	"fmt"
	"os"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdSessions
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Model       string // --model / -m: override the configured default model
	StoragePath string // --storage: override the session database path
	Quiet       bool   // -q / --quiet: minimal output
	JSON        bool   // --json: machine-readable output where supported

	// Raw args remaining after the command name
	Raw []string
}

const usageText = `palaver - multi-session chat for the terminal

Palaver manages parallel chat conversations against a local model
catalog, with durable session storage and per-conversation model and
parameter bindings.

Usage:
  palaver                       Start the TUI (default)
  palaver chat                  Interactive chat in plain REPL mode
  palaver sessions [subcommand] Inspect and manage saved sessions
  palaver config [show|path]    Show configuration
  palaver version               Show version information
  palaver help                  Show this help

Chat Commands (during a REPL session):
  /help                 Show available commands
  /new                  Start a new conversation
  /list                 List conversations
  /switch <n|id>        Switch to another conversation
  /model [id]           Show or switch model
  /params [name value]  Show or adjust generation parameters
  /delete               Delete the current conversation
  /export [format]      Export transcript (markdown|json|html)
  /history              Reprint the current transcript
  /quit                 Exit chat

Session Commands:
  palaver sessions list             List all saved sessions
  palaver sessions show <n|id>      Show session transcript
  palaver sessions export <n|id>    Export session transcript
    --format markdown|json|html     Export format (default: markdown)
    --output DIR                    Output directory (default: cwd)
  palaver sessions delete <n|id>    Delete a session
    --confirm                       Required confirmation flag
  palaver sessions delete-all       Delete all sessions
    --confirm                       Required confirmation flag

Global Flags:
  -m, --model ID        Use a specific model (overrides config)
  --storage PATH        Use a specific session database
  --json                Output in JSON format where supported
  -q, --quiet           Minimal output

Environment:
  PALAVER_MODEL             Override default model
  PALAVER_THEME             Override theme (dark|light)
  PALAVER_STORAGE_PATH      Override session database path
  PALAVER_REPLY_DELAY_MS    Override simulated reply latency

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("palaver version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	args := os.Args[1:]

	remaining, parsedArgs := parseGlobalFlags(args)

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "session", "sessions":
		return CmdSessions, parsedArgs

	case "config":
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown command: restore the token and fall through to the
		// TUI, matching the no-argument default.
		parsedArgs.Raw = append([]string{cmd}, remaining...)
		return CmdTUI, parsedArgs
	}
}

// parseGlobalFlags extracts global flags from args and returns remaining args.
func parseGlobalFlags(args []string) ([]string, Args) {
	var remaining []string
	var parsedArgs Args

	i := 0
	for i < len(args) {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			parsedArgs.Quiet = true
		case "--json":
			parsedArgs.JSON = true
		case "-m", "--model":
			if i+1 < len(args) {
				i++
				parsedArgs.Model = args[i]
			}
		case "--storage":
			if i+1 < len(args) {
				i++
				parsedArgs.StoragePath = args[i]
			}
		default:
			switch {
			case strings.HasPrefix(arg, "--model="):
				parsedArgs.Model = strings.TrimPrefix(arg, "--model=")
			case strings.HasPrefix(arg, "--storage="):
				parsedArgs.StoragePath = strings.TrimPrefix(arg, "--storage=")
			default:
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsedArgs
}
