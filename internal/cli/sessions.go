// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions.go - Session management CLI commands for palaver.
//
// Provides listing, viewing, export, and deletion of saved sessions
// without launching the TUI.
//
// Command: sessions [subcommand]
// Aliases: session
//
// Subcommands:
//   list (default)      List all saved sessions
//   show <n|id>         Show session transcript
//   export <n|id>       Export session transcript
//   delete <n|id>       Delete a session
//   delete-all          Delete all sessions
//
// Examples:
//   palaver sessions                         List all sessions (default)
//   palaver sessions show 1                  Show first session
//   palaver sessions show 3f2a               Show session by id prefix
//   palaver sessions export 1 --format json  Export as JSON
//   palaver sessions delete 1 --confirm      Delete first session
//   palaver sessions delete-all --confirm    Delete all sessions
//   palaver sessions list --json             List in JSON format

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/util"
)

// HandleSessions handles the "sessions" command and its subcommands.
func HandleSessions(args Args) error {
	parser := NewArgParser(args.Raw)
	jsonOut := args.JSON || parser.BoolFlag("json")

	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return handleSessionList(rt, jsonOut)
	case "show":
		return handleSessionShow(rt, parser, jsonOut)
	case "export":
		return handleSessionExport(rt, parser)
	case "delete":
		return handleSessionDelete(rt, parser)
	case "delete-all", "clear":
		return handleSessionDeleteAll(rt, parser)
	default:
		return fmt.Errorf("unknown sessions subcommand: %s\nUsage: palaver sessions [list|show|export|delete|delete-all]",
			parser.Subcommand())
	}
}

// resolveConversation resolves a 1-based index or an id prefix against
// a conversation list.
func resolveConversation(convs []*model.Conversation, target string) (*model.Conversation, error) {
	if target == "" {
		return nil, fmt.Errorf("session id required")
	}

	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(convs) {
			return nil, fmt.Errorf("session %d out of range (1-%d)", n, len(convs))
		}
		return convs[n-1], nil
	}

	var match *model.Conversation
	for _, conv := range convs {
		if strings.HasPrefix(conv.ID, target) {
			if match != nil {
				return nil, fmt.Errorf("ambiguous session id %q", target)
			}
			match = conv
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no session matches %q", target)
	}
	return match, nil
}

// =============================================================================
// LIST
// =============================================================================

// sessionListOutput is the JSON output format for the session list.
type sessionListOutput struct {
	Sessions []sessionInfo `json:"sessions"`
	Count    int           `json:"count"`
	ActiveID string        `json:"active_id"`
}

// sessionInfo is the JSON output format for a single session.
type sessionInfo struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func handleSessionList(rt *Runtime, jsonOut bool) error {
	convs := rt.Store.Snapshot()

	if jsonOut {
		output := sessionListOutput{
			Sessions: make([]sessionInfo, 0, len(convs)),
			Count:    len(convs),
			ActiveID: rt.Store.ActiveID(),
		}
		for _, conv := range convs {
			output.Sessions = append(output.Sessions, sessionInfo{
				ID:           conv.ID,
				Title:        conv.Title,
				Model:        conv.Model,
				MessageCount: conv.MessageCount(),
				CreatedAt:    conv.CreatedAt,
				UpdatedAt:    conv.UpdatedAt,
			})
		}
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	width := GetTerminalWidth()
	titleWidth := width - 50
	if titleWidth < 18 {
		titleWidth = 18
	}

	fmt.Println()
	fmt.Println("Saved Sessions")
	fmt.Println(strings.Repeat("=", width-20))
	fmt.Println()
	fmt.Printf("%-4s %-*s %-22s %-6s %-12s\n", "ID", titleWidth, "Title", "Model", "Msgs", "Updated")
	fmt.Println(strings.Repeat("-", width-20))

	activeID := rt.Store.ActiveID()
	for i, conv := range convs {
		// Rune-aware truncation preserves multi-byte characters
		title := util.TruncateRunes(conv.Title, titleWidth-2)
		if conv.ID == activeID {
			title = title + " *"
		}
		fmt.Printf("%-4d %-*s %-22s %-6d %-12s\n",
			i+1,
			titleWidth, title,
			util.TruncateRunes(conv.Model, 20),
			conv.MessageCount(),
			formatTimeAgo(conv.UpdatedAt),
		)
	}

	fmt.Println()
	fmt.Printf("Total: %d session(s)\n", len(convs))
	fmt.Println()
	return nil
}

// formatTimeAgo renders a timestamp as a relative age for table output.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// =============================================================================
// SHOW
// =============================================================================

func handleSessionShow(rt *Runtime, parser *ArgParser, jsonOut bool) error {
	conv, err := resolveConversation(rt.Store.Snapshot(), parser.Positional(1))
	if err != nil {
		return err
	}

	if jsonOut {
		data, err := json.MarshalIndent(conv, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Println()
	fmt.Printf("Session: %s\n", conv.Title)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println()
	fmt.Printf("ID:        %s\n", conv.ID)
	fmt.Printf("Model:     %s\n", conv.Model)
	fmt.Printf("Messages:  %d\n", conv.MessageCount())
	fmt.Printf("Created:   %s\n", conv.CreatedAt.Format(time.RFC1123))
	fmt.Printf("Updated:   %s\n", conv.UpdatedAt.Format(time.RFC1123))
	printTranscript(conv)
	return nil
}

// =============================================================================
// EXPORT
// =============================================================================

func handleSessionExport(rt *Runtime, parser *ArgParser) error {
	conv, err := resolveConversation(rt.Store.Snapshot(), parser.Positional(1))
	if err != nil {
		return err
	}
	format := strings.ToLower(parser.FlagOrDefault("format", "markdown"))
	return exportConversation(rt, conv, format, parser.Flag("output"))
}

// =============================================================================
// DELETE
// =============================================================================

func handleSessionDelete(rt *Runtime, parser *ArgParser) error {
	conv, err := resolveConversation(rt.Store.Snapshot(), parser.Positional(1))
	if err != nil {
		return err
	}
	if !parser.BoolFlag("confirm") {
		return fmt.Errorf("deletion requires --confirm")
	}

	rt.Store.Remove(conv.ID, rt.Config.DefaultModel, rt.Config.Parameters)
	fmt.Printf("Deleted session %s (%s)\n", conv.ID, conv.Title)
	return nil
}

func handleSessionDeleteAll(rt *Runtime, parser *ArgParser) error {
	if !parser.BoolFlag("confirm") {
		return fmt.Errorf("deletion requires --confirm")
	}

	convs := rt.Store.Snapshot()
	for _, conv := range convs {
		rt.Store.Remove(conv.ID, rt.Config.DefaultModel, rt.Config.Parameters)
	}
	fmt.Printf("Deleted %d session(s); a fresh conversation was created\n", len(convs))
	return nil
}
