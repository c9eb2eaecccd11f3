// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/morganforge/palaver/internal/model"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to HTML format with embedded CSS.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	info := model.GetModel(conv.Model)

	var sb strings.Builder

	sb.WriteString("<!DOCTYPE html>\n")
	sb.WriteString("<html lang=\"en\">\n")
	sb.WriteString("<head>\n")
	sb.WriteString("    <meta charset=\"UTF-8\">\n")
	sb.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", html.EscapeString(conv.Title)))
	sb.WriteString("    <meta name=\"generator\" content=\"palaver\">\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"date\" content=\"%s\">\n", conv.CreatedAt.Format(time.RFC3339)))
	sb.WriteString(e.getCSS())
	sb.WriteString("</head>\n")
	sb.WriteString(fmt.Sprintf("<body class=\"%s-theme\">\n", e.options.Theme))
	sb.WriteString("    <div class=\"container\">\n")

	if e.options.IncludeMetadata {
		sb.WriteString(e.renderHeader(conv, info))
	}

	sb.WriteString("        <main class=\"conversation\">\n")
	for _, msg := range conv.Messages {
		sb.WriteString(e.renderMessage(msg))
	}
	sb.WriteString("        </main>\n")

	sb.WriteString("        <footer class=\"footer\">\n")
	sb.WriteString(fmt.Sprintf("            <p>Exported from <strong>palaver</strong> on %s</p>\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))
	sb.WriteString("        </footer>\n")

	sb.WriteString("    </div>\n")
	sb.WriteString("</body>\n")
	sb.WriteString("</html>\n")

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// RENDERING FUNCTIONS
// =============================================================================

// renderHeader renders the header section with metadata.
func (e *HTMLExporter) renderHeader(conv *model.Conversation, info model.ModelInfo) string {
	var sb strings.Builder

	sb.WriteString("        <header class=\"header\">\n")
	sb.WriteString(fmt.Sprintf("            <h1>%s</h1>\n", html.EscapeString(conv.Title)))
	sb.WriteString("            <div class=\"metadata\">\n")
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Model:</strong> %s</span>\n", html.EscapeString(info.Name)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Created:</strong> %s</span>\n", formatTimestamp(conv.CreatedAt)))
	sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Messages:</strong> %d</span>\n", len(conv.Messages)))
	if tokens := conversationTokens(conv); tokens > 0 {
		sb.WriteString(fmt.Sprintf("                <span class=\"meta-item\"><strong>Tokens:</strong> %d</span>\n", tokens))
	}
	sb.WriteString("            </div>\n")
	sb.WriteString("        </header>\n")

	return sb.String()
}

// renderMessage renders a single message.
func (e *HTMLExporter) renderMessage(msg model.Message) string {
	var sb strings.Builder

	roleClass := strings.ToLower(msg.Role.String())
	sb.WriteString(fmt.Sprintf("            <div class=\"message %s-message\">\n", roleClass))

	sb.WriteString("                <div class=\"message-header\">\n")
	sb.WriteString(fmt.Sprintf("                    <span class=\"role-label\">%s</span>\n", html.EscapeString(formatRoleLabel(msg))))
	if e.options.IncludeTimestamps {
		sb.WriteString(fmt.Sprintf("                    <span class=\"timestamp\">%s</span>\n", formatShortTimestamp(msg.Timestamp)))
	}
	sb.WriteString("                </div>\n")

	sb.WriteString("                <div class=\"message-content\">\n")
	sb.WriteString(e.formatContent(msg.Content))
	sb.WriteString("                </div>\n")

	if msg.Role == model.RoleAssistant && e.options.IncludeMetadata && msg.Tokens != nil {
		sb.WriteString(fmt.Sprintf("                <div class=\"message-stats\">%d tokens in / %d tokens out</div>\n",
			msg.Tokens.Input, msg.Tokens.Output))
	}

	sb.WriteString("            </div>\n")
	return sb.String()
}

// formatContent escapes and lightly formats message content: fenced code
// blocks become <pre>, everything else becomes paragraphs.
func (e *HTMLExporter) formatContent(content string) string {
	var sb strings.Builder
	inCode := false

	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			if inCode {
				sb.WriteString("</code></pre>\n")
			} else {
				sb.WriteString("<pre><code>")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			sb.WriteString(html.EscapeString(line))
			sb.WriteString("\n")
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("<p>%s</p>\n", html.EscapeString(line)))
	}
	if inCode {
		sb.WriteString("</code></pre>\n")
	}
	return sb.String()
}

// =============================================================================
// STYLES
// =============================================================================

// getCSS returns the embedded stylesheet for both themes.
func (e *HTMLExporter) getCSS() string {
	return `    <style>
        :root { --accent: #6366f1; }
        body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; line-height: 1.6; }
        body.dark-theme { background: #1a1b26; color: #c0caf5; }
        body.light-theme { background: #fafafa; color: #24292f; }
        .container { max-width: 820px; margin: 0 auto; padding: 2rem 1rem; }
        .header h1 { margin-bottom: 0.25rem; }
        .metadata { display: flex; flex-wrap: wrap; gap: 1rem; font-size: 0.85rem; opacity: 0.8; }
        .message { border-radius: 8px; padding: 1rem; margin: 1rem 0; }
        .dark-theme .user-message { background: #24283b; }
        .dark-theme .assistant-message { background: #1f2335; border-left: 3px solid var(--accent); }
        .light-theme .user-message { background: #eef1f5; }
        .light-theme .assistant-message { background: #ffffff; border-left: 3px solid var(--accent); box-shadow: 0 1px 3px rgba(0,0,0,0.08); }
        .message-header { display: flex; justify-content: space-between; font-size: 0.8rem; margin-bottom: 0.5rem; opacity: 0.7; }
        .role-label { font-weight: 600; }
        .message-stats { font-size: 0.75rem; opacity: 0.6; margin-top: 0.5rem; }
        pre { overflow-x: auto; padding: 0.75rem; border-radius: 6px; }
        .dark-theme pre { background: #16161e; }
        .light-theme pre { background: #f0f0f0; }
        .footer { text-align: center; font-size: 0.8rem; opacity: 0.6; margin-top: 2rem; }
    </style>
`
}
