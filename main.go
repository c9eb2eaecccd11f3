// palaver - multi-session chat for the terminal.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/morganforge/palaver/internal/cli"
	"github.com/morganforge/palaver/internal/config"
	"github.com/morganforge/palaver/internal/ui/chat"
	"github.com/morganforge/palaver/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdChat:
		exitOnError(cli.HandleChat(args))
	case cli.CmdSessions:
		exitOnError(cli.HandleSessions(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI wires the session stack and runs the Bubble Tea program.
func runTUI(args cli.Args) {
	rt, err := cli.NewRuntime(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	m := chat.New(chat.Options{
		Controller: rt.Controller,
		Adapter:    rt.Adapter,
		Theme:      styles.NewTheme(rt.Theme),
		Logger:     rt.Logger,
		Version:    Version,
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
	)

	// Live theme reload when the config file changes on disk
	if path, err := config.ConfigPath(); err == nil {
		w, err := config.NewWatcher(path, 200*time.Millisecond, rt.Logger, func(cfg *config.Config) {
			p.Send(chat.ConfigReloadedMsg{Theme: cfg.Theme})
		})
		if err == nil {
			if err := w.Watch(); err != nil {
				rt.Logger.Printf("config watch unavailable: %v", err)
			} else {
				defer w.Close()
			}
		}
	}

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running palaver: %v\n", err)
		os.Exit(1)
	}
}
