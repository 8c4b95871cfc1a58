package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/longkey1/ragchat/internal/ragchat"
	"github.com/longkey1/ragchat/internal/ragchat/transcript"
)

const emptyTranscriptText = "Meet your News Assistant!"

// NewRenderer builds the Markdown renderer for a style name: auto, dark,
// light or notty.
func NewRenderer(style string, width int) (*glamour.TermRenderer, error) {
	if width < 20 {
		width = 20
	}
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r, nil
}

// renderTranscript lays out every message. When revealing is set, the last
// message is shown as the plain revealed prefix instead of Markdown.
func renderTranscript(state transcript.State, revealed string, revealing bool, r *glamour.TermRenderer, width int) string {
	if len(state.Messages) == 0 {
		return emptyStyle.Render(emptyTranscriptText)
	}

	var sb strings.Builder
	last := len(state.Messages) - 1
	for i, msg := range state.Messages {
		if i > 0 {
			sb.WriteString("\n")
		}
		if msg.Role == ragchat.RoleUser {
			sb.WriteString(userLabel.Render("You"))
		} else {
			sb.WriteString(botLabel.Render("Assistant"))
		}
		sb.WriteString("\n")

		if i == last && revealing && msg.IsAssistant() {
			sb.WriteString(plainStyle.Width(max(width-2, 1)).Render(revealed))
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(renderMarkdown(r, msg.Content))
	}
	return sb.String()
}

func renderMarkdown(r *glamour.TermRenderer, content string) string {
	if r == nil {
		return plainStyle.Render(content) + "\n"
	}
	out, err := r.Render(content)
	if err != nil {
		return plainStyle.Render(content) + "\n"
	}
	return strings.TrimLeft(out, "\n")
}

// lastAnswer returns the most recent non-empty assistant message.
func lastAnswer(messages []ragchat.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].IsAssistant() && messages[i].Content != "" && messages[i].Content != ragchat.StreamErrorText {
			return messages[i].Content, true
		}
	}
	return "", false
}
