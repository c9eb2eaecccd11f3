// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Interactive chat REPL for palaver.
//
// Handles the "palaver chat" command: a plain readline-style loop for
// terminals where the full TUI is unwanted (ssh sessions, scripting,
// screen readers). The REPL drives the same session controller as the
// TUI, so conversations started here show up there and vice versa.
//
// Command: chat
//
// Examples:
//   palaver chat                        Start chat with the default model
//   palaver chat --model claude-3-5-sonnet
//   palaver chat -q                     Minimal output
//
// Interactive Commands (during chat):
//   /help               Show available commands
//   /new                Start a new conversation
//   /list               List conversations
//   /switch <n|id>      Switch to another conversation
//   /model [id]         Show or switch model
//   /params [name value] Show or adjust generation parameters
//   /delete             Delete the current conversation
//   /export [format]    Export transcript (markdown|json|html)
//   /history            Reprint the current transcript
//   /quit               Exit chat
//   Ctrl+C, Ctrl+D      Exit chat

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/peterh/liner"

	"github.com/morganforge/palaver/internal/config"
	"github.com/morganforge/palaver/internal/export"
	"github.com/morganforge/palaver/internal/model"
	"github.com/morganforge/palaver/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	welcomeStyle = lipgloss.NewStyle().
			Foreground(styles.Purple).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	commandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	warningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownRenderer renders assistant replies for terminal display.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fall back to plain text if renderer initialization fails
		markdownRenderer = nil
	}
}

// renderMarkdown renders markdown content for terminal display.
// Returns the original content if rendering fails or renderer is unavailable.
func renderMarkdown(content string) string {
	if markdownRenderer == nil {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}

// displayReply prints a reply with markdown rendering when on a TTY.
// Piped output stays plain so it can be post-processed.
func displayReply(content string) {
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(content))
	} else {
		fmt.Println(content)
	}
}

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a new ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads command history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
// Supports history navigation with arrow keys.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists command history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	dir := filepath.Dir(c.historyFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// CHAT HANDLER
// =============================================================================

// HandleChat handles the "chat" command: a liner-based REPL over the
// session controller.
func HandleChat(args Args) error {
	rt, err := NewRuntime(args)
	if err != nil {
		return err
	}
	defer rt.Close()

	input := NewChatCLI()
	defer input.Close()

	if !args.Quiet {
		printWelcome(rt)
	}

	for {
		line, err := input.ReadInput(promptStyle.Render("palaver> "))
		if err != nil {
			// liner.ErrPromptAborted is Ctrl+C; anything else is EOF.
			// Both exit cleanly.
			fmt.Println()
			printExitSummary(rt)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			cont, err := runReplCommand(rt, line)
			if err != nil {
				fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
			}
			if !cont {
				printExitSummary(rt)
				return nil
			}
			continue
		}

		if strings.EqualFold(line, "exit") || strings.EqualFold(line, "quit") {
			printExitSummary(rt)
			return nil
		}

		if err := sendAndWait(rt, line, args.Quiet); err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("[Error]"), err)
		}
	}
}

// sendAndWait sends a message and blocks until the reply resolves.
func sendAndWait(rt *Runtime, text string, quiet bool) error {
	info := rt.Controller.Model()

	ch, ok := rt.Controller.SendMessage(text)
	if !ok {
		return fmt.Errorf("a reply is already pending for this conversation")
	}

	if !quiet {
		fmt.Fprintf(os.Stderr, "%s %s thinking...\n",
			infoStyle.Render("[Model]"), commandStyle.Render(info.Name))
	}

	start := time.Now()
	reply := <-ch
	if reply.Discarded {
		fmt.Println(warningStyle.Render("[Reply discarded]"))
		return nil
	}

	fmt.Println()
	displayReply(reply.Message.Content)
	fmt.Println()

	if !quiet && reply.Message.Tokens != nil {
		fmt.Fprintf(os.Stderr, "%s %d in / %d out tokens | %s\n",
			infoStyle.Render("[Stats]"),
			reply.Message.Tokens.Input,
			reply.Message.Tokens.Output,
			time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// =============================================================================
// REPL COMMANDS
// =============================================================================

// runReplCommand processes slash commands.
// Returns (shouldContinue, error) where shouldContinue=false means exit.
func runReplCommand(rt *Runtime, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	command := strings.ToLower(parts[0])
	rest := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		printReplHelp()
		return true, nil

	case "/new", "/n":
		conv := rt.Controller.NewConversation()
		fmt.Printf("%s %s\n", commandStyle.Render("[New conversation]"), conv.ID)
		return true, nil

	case "/list", "/ls", "/l":
		printConversationList(rt)
		return true, nil

	case "/switch", "/sw":
		if len(rest) == 0 {
			return true, fmt.Errorf("usage: /switch <n|id>")
		}
		return switchConversation(rt, rest[0])

	case "/model", "/m":
		return replModelCommand(rt, rest)

	case "/params", "/p":
		return replParamsCommand(rt, rest)

	case "/delete", "/d":
		id := rt.Controller.Active().ID
		rt.Controller.DeleteConversation(id)
		fmt.Printf("%s now on %q\n",
			commandStyle.Render("[Deleted]"),
			rt.Controller.Active().Title)
		return true, nil

	case "/export", "/e":
		format := "markdown"
		if len(rest) > 0 {
			format = strings.ToLower(rest[0])
		}
		return true, exportActiveConversation(rt, format, "")

	case "/history":
		printTranscript(rt.Controller.Active())
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

// replModelCommand shows or switches the bound model.
func replModelCommand(rt *Runtime, rest []string) (bool, error) {
	if len(rest) == 0 {
		info := rt.Controller.Model()
		fmt.Printf("%s Current model: %s\n",
			infoStyle.Render("[Model]"), commandStyle.Render(info.ID))
		fmt.Println()
		for _, m := range model.ListModels() {
			marker := "  "
			if m.ID == info.ID {
				marker = commandStyle.Render("* ")
			}
			fmt.Printf("%s%-24s %s · %s\n", marker, m.ID,
				m.ProviderTag(), m.ContextString())
		}
		return true, nil
	}

	id := rest[0]
	if !model.KnownModel(id) {
		return true, fmt.Errorf("unknown model %q (use /model to list)", id)
	}
	rt.Controller.SetModel(id)
	fmt.Printf("%s %s\n", commandStyle.Render("[Model]"), rt.Controller.Model().Name)
	return true, nil
}

// replParamsCommand shows or adjusts the active conversation's
// generation parameters. Values are clamped into their valid ranges.
func replParamsCommand(rt *Runtime, rest []string) (bool, error) {
	params := rt.Controller.Parameters()

	if len(rest) == 0 {
		fmt.Printf("%s temperature=%.2f max_tokens=%d top_p=%.2f frequency_penalty=%.2f presence_penalty=%.2f\n",
			infoStyle.Render("[Params]"),
			params.Temperature, params.MaxTokens, params.TopP,
			params.FrequencyPenalty, params.PresencePenalty)
		return true, nil
	}
	if len(rest) != 2 {
		return true, fmt.Errorf("usage: /params [name value]")
	}

	name, value := strings.ToLower(rest[0]), rest[1]
	switch name {
	case "temperature", "temp":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, fmt.Errorf("invalid temperature %q", value)
		}
		params.Temperature = v
	case "max_tokens", "max-tokens":
		v, err := strconv.Atoi(value)
		if err != nil {
			return true, fmt.Errorf("invalid max_tokens %q", value)
		}
		params.MaxTokens = v
	case "top_p", "top-p":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, fmt.Errorf("invalid top_p %q", value)
		}
		params.TopP = v
	case "frequency_penalty":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, fmt.Errorf("invalid frequency_penalty %q", value)
		}
		params.FrequencyPenalty = v
	case "presence_penalty":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return true, fmt.Errorf("invalid presence_penalty %q", value)
		}
		params.PresencePenalty = v
	default:
		return true, fmt.Errorf("unknown parameter %q", name)
	}

	rt.Controller.SetParameters(params)
	applied := rt.Controller.Parameters()
	fmt.Printf("%s %s = %s (temperature=%.2f max_tokens=%d)\n",
		commandStyle.Render("[Params]"), name, value,
		applied.Temperature, applied.MaxTokens)
	return true, nil
}

// switchConversation resolves a 1-based index or id prefix and switches.
func switchConversation(rt *Runtime, target string) (bool, error) {
	convs := rt.Controller.Conversations()

	if n, err := strconv.Atoi(target); err == nil {
		if n < 1 || n > len(convs) {
			return true, fmt.Errorf("conversation %d out of range (1-%d)", n, len(convs))
		}
		rt.Controller.SwitchConversation(convs[n-1].ID)
		fmt.Printf("%s %s\n", commandStyle.Render("[Switched]"), convs[n-1].Title)
		return true, nil
	}

	for _, conv := range convs {
		if strings.HasPrefix(conv.ID, target) {
			rt.Controller.SwitchConversation(conv.ID)
			fmt.Printf("%s %s\n", commandStyle.Render("[Switched]"), conv.Title)
			return true, nil
		}
	}
	return true, fmt.Errorf("no conversation matches %q", target)
}

// exportActiveConversation writes the active transcript to disk.
func exportActiveConversation(rt *Runtime, format, outputDir string) error {
	return exportConversation(rt, rt.Controller.Active(), format, outputDir)
}

// exportConversation writes a transcript to disk in the given format.
func exportConversation(rt *Runtime, conv *model.Conversation, format, outputDir string) error {
	if conv.IsEmpty() {
		return fmt.Errorf("nothing to export")
	}

	opts := export.DefaultOptions()
	opts.Theme = rt.Theme
	if outputDir != "" {
		opts.OutputDir = outputDir
	}
	exp, err := export.ForFormat(format, opts)
	if err != nil {
		return err
	}
	path, err := export.ExportToFile(conv, exp, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s\n", commandStyle.Render("[Exported]"), path)
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func printWelcome(rt *Runtime) {
	info := rt.Controller.Model()
	fmt.Println()
	fmt.Println(welcomeStyle.Render("palaver " + Version))
	fmt.Printf("%s %s (%s, %s)\n",
		infoStyle.Render("Model:"), info.Name, info.ProviderTag(), info.ContextString())
	fmt.Printf("%s %s\n",
		infoStyle.Render("Conversation:"), rt.Controller.Active().Title)
	fmt.Println(infoStyle.Render("Type /help for commands, /quit to exit."))
	fmt.Println()
}

func printReplHelp() {
	fmt.Println()
	fmt.Println(commandStyle.Render("Commands:"))
	fmt.Println("  /help               Show this help")
	fmt.Println("  /new                Start a new conversation")
	fmt.Println("  /list               List conversations")
	fmt.Println("  /switch <n|id>      Switch to another conversation")
	fmt.Println("  /model [id]         Show or switch model")
	fmt.Println("  /params [name value] Show or adjust generation parameters")
	fmt.Println("  /delete             Delete the current conversation")
	fmt.Println("  /export [format]    Export transcript (markdown|json|html)")
	fmt.Println("  /history            Reprint the current transcript")
	fmt.Println("  /quit               Exit chat")
	fmt.Println()
}

func printConversationList(rt *Runtime) {
	activeID := rt.Controller.Active().ID
	fmt.Println()
	for i, conv := range rt.Controller.Conversations() {
		marker := "  "
		if conv.ID == activeID {
			marker = commandStyle.Render("* ")
		}
		pending := ""
		if rt.Controller.Pending(conv.ID) {
			pending = warningStyle.Render(" (pending)")
		}
		fmt.Printf("%s%2d. %-32s %s, %d msgs%s\n",
			marker, i+1, conv.Title, conv.Model, conv.MessageCount(), pending)
	}
	fmt.Println()
}

// printTranscript reprints a conversation in plain form.
func printTranscript(conv *model.Conversation) {
	fmt.Println()
	fmt.Printf("%s (%s)\n", welcomeStyle.Render(conv.Title), conv.Model)
	fmt.Println(strings.Repeat("-", 60))
	for _, msg := range conv.Messages {
		label := msg.Role.DisplayName()
		if msg.Role == model.RoleAssistant && msg.Model != "" {
			label = msg.Model
		}
		fmt.Printf("\n%s %s\n%s\n",
			promptStyle.Render(label+":"),
			infoStyle.Render(msg.Timestamp.Format("2006-01-02 15:04")),
			msg.Content)
	}
	fmt.Println()
}

// printExitSummary prints session statistics on exit.
func printExitSummary(rt *Runtime) {
	if rt.Controller.PendingActive() {
		fmt.Println(warningStyle.Render("[Pending reply abandoned]"))
	}
	conv := rt.Controller.Active()
	total := 0
	for _, msg := range conv.Messages {
		if msg.Tokens != nil {
			total += msg.Tokens.Total()
		}
	}
	fmt.Printf("%s %d message(s), %d tokens\n",
		infoStyle.Render("[Session]"), conv.MessageCount(), total)
}
