// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration inspection commands for palaver.
//
// Command: config [subcommand]
//
// Subcommands:
//   show (default)      Show the effective configuration
//   path                Print the config file path
//   init                Write a default config file
//
// Examples:
//   palaver config                 Show effective configuration
//   palaver config show --json     Show configuration as JSON
//   palaver config path            Print config file location
//   palaver config init            Write ~/.palaver/config.toml

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/morganforge/palaver/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return handleConfigShow(args.JSON || parser.BoolFlag("json"))
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "init":
		return handleConfigInit()
	default:
		return fmt.Errorf("unknown config subcommand: %s\nUsage: palaver config [show|path|init]",
			parser.Subcommand())
	}
}

func handleConfigShow(jsonOut bool) error {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	if jsonOut {
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	storagePath := cfg.StoragePath
	if storagePath == "" {
		storagePath = "(default: ~/.palaver/palaver.db)"
	}

	fmt.Println()
	fmt.Println("Configuration")
	fmt.Println("=============")
	fmt.Printf("Default model:   %s\n", cfg.DefaultModel)
	fmt.Printf("Theme:           %s\n", cfg.Theme)
	fmt.Printf("Storage path:    %s\n", storagePath)
	fmt.Printf("Reply delay:     %d ms\n", cfg.ReplyDelayMS)
	fmt.Printf("Temperature:     %.2f\n", cfg.Parameters.Temperature)
	fmt.Printf("Max tokens:      %d\n", cfg.Parameters.MaxTokens)
	fmt.Println()
	return nil
}

func handleConfigInit() error {
	path, err := config.ConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
