// Package presenter turns conversation data into display text.
package presenter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tesso57/substackchat/internal/domain/conversation"
	"github.com/tesso57/substackchat/internal/presentation/tui/textutil"
)

// Example is a canned prompt offered on the welcome panel.
type Example struct {
	Text     string
	Link     string
	LinkText string
}

// Prompt returns the text placed in the input when the example is chosen.
func (e Example) Prompt() string {
	if e.Link == "" {
		return e.Text
	}
	return e.Text + " " + e.Link
}

// Examples are shown while the conversation is empty.
var Examples = []Example{
	{
		Text:     "Let me know the latest 5 posts that Daniel Primo has published in",
		Link:     "https://webreactiva.substack.com/",
		LinkText: "Web Reactiva",
	},
	{
		Text:     "How many posts are already published in",
		Link:     "https://cosasdefreelance.substack.com/",
		LinkText: "Cosas de Freelance?",
	},
	{
		Text:     "Has Sara recommended something new in the latest edition of",
		Link:     "https://lapsicoletter.substack.com/",
		LinkText: "La Psicoletter?",
	},
}

const (
	WelcomeTitle = "Chat with Substack Newsletters"
	welcomeBody  = "This chat uses AI to interact with Substack newsletters. It can fetch recent posts, " +
		"count published articles, summarize content, and extract resources from posts."
)

// Styles colors the transcript.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Muted     lipgloss.Style
	Title     lipgloss.Style
}

// NewStyles builds styles from theme colors.
func NewStyles(accent, muted string) Styles {
	return Styles{
		User:      lipgloss.NewStyle().Bold(true),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(accent)),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
		Title:     lipgloss.NewStyle().Bold(true),
	}
}

// ToolPlaceholder is shown while a tool call has not produced the final answer.
func ToolPlaceholder(toolName string) string {
	return fmt.Sprintf("Calling %s tool...", toolName)
}

// Welcome renders the panel shown before the first message.
func Welcome(width int, styles Styles) string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(WelcomeTitle))
	b.WriteString("\n\n")
	b.WriteString(styles.Muted.Render(textutil.Wrap(welcomeBody, width)))
	b.WriteString("\n\n")
	for i, example := range Examples {
		line := fmt.Sprintf("%d. %s %s", i+1, example.Text, example.LinkText)
		b.WriteString(textutil.Wrap(line, width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Muted.Render("Press tab to use an example."))
	return b.String()
}

// MessageBody returns the text shown for one message. An assistant message
// that has called tools but has no text yet shows one placeholder per call.
func MessageBody(msg conversation.ChatMessage) string {
	if msg.Role == conversation.RoleAssistant && strings.TrimSpace(msg.Content) == "" && len(msg.ToolInvocations) > 0 {
		lines := make([]string, 0, len(msg.ToolInvocations))
		for _, inv := range msg.ToolInvocations {
			lines = append(lines, ToolPlaceholder(inv.ToolName))
		}
		return strings.Join(lines, "\n")
	}
	return msg.Content
}

// Transcript renders the conversation, or the welcome panel when it is empty.
func Transcript(messages []conversation.ChatMessage, width int, styles Styles) string {
	if len(messages) == 0 {
		return Welcome(width, styles)
	}

	blocks := make([]string, 0, len(messages))
	for _, msg := range messages {
		label := styles.User.Render("You")
		body := MessageBody(msg)
		if msg.Role == conversation.RoleAssistant {
			label = styles.Assistant.Render("Assistant")
			if body != msg.Content {
				body = styles.Muted.Render(body)
			}
		}
		blocks = append(blocks, label+"\n"+textutil.Wrap(body, width))
	}
	return strings.Join(blocks, "\n\n")
}
