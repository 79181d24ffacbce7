// Package history holds the transcript cells rendered by the TUI.
package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/thoughtline/internal/eventbridge"
	"github.com/kingrea/thoughtline/internal/reasoning"
)

// Cell is one rendered entry in a thread transcript.
type Cell interface {
	ThreadID() string
	Render(width int) string
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	reasoningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).Italic(true)
	agentStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF6B6B"))
	toolStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	translationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#98C379")).
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("#98C379")).
				PaddingLeft(1)
	failureStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75"))
)

func wrap(style lipgloss.Style, width int) lipgloss.Style {
	if width > 0 {
		return style.Width(width)
	}
	return style
}

// ReasoningCell is a reasoning block: a bold title line followed by body text.
type ReasoningCell struct {
	Thread string
	Text   string
}

func (c ReasoningCell) ThreadID() string { return c.Thread }

// CorrelationKey implements reasoning.Keyed: a block is only translated
// while its own thread is active.
func (c ReasoningCell) CorrelationKey() string { return c.Thread }

// TranslationSource implements reasoning.Translatable. Only blocks with a
// title and a body are offered.
func (c ReasoningCell) TranslationSource() (string, bool) {
	title, body := reasoning.Split(c.Text)
	if title == "" || strings.TrimSpace(body) == "" {
		return "", false
	}
	return c.Text, true
}

func (c ReasoningCell) Render(width int) string {
	title, body := reasoning.Split(c.Text)
	if title == "" {
		return wrap(reasoningStyle, width).Render(strings.TrimSpace(c.Text))
	}
	lines := []string{titleStyle.Render(title)}
	if body != "" {
		lines = append(lines, wrap(reasoningStyle, width).Render(body))
	}
	return strings.Join(lines, "\n")
}

// MessageCell is agent output.
type MessageCell struct {
	Thread string
	Agent  string
	Text   string
}

func (c MessageCell) ThreadID() string { return c.Thread }

func (c MessageCell) Render(width int) string {
	agent := c.Agent
	if agent == "" {
		agent = "agent"
	}
	return agentStyle.Render(agent) + "\n" + wrap(lipgloss.NewStyle(), width).Render(strings.TrimSpace(c.Text))
}

// ToolCell records a tool invocation.
type ToolCell struct {
	Thread string
	Name   string
	Text   string
}

func (c ToolCell) ThreadID() string { return c.Thread }

func (c ToolCell) Render(width int) string {
	name := c.Name
	if name == "" {
		name = "tool"
	}
	line := fmt.Sprintf("⚙ %s", name)
	if text := strings.TrimSpace(c.Text); text != "" {
		line += " · " + text
	}
	return wrap(toolStyle, width).Render(line)
}

// NoticeCell is a status line such as a session start or an error.
type NoticeCell struct {
	Thread string
	Text   string
	Error  bool
}

func (c NoticeCell) ThreadID() string { return c.Thread }

func (c NoticeCell) Render(width int) string {
	if c.Error {
		return wrap(failureStyle, width).Render("✗ " + c.Text)
	}
	return wrap(noticeStyle, width).Render("· " + c.Text)
}

// TranslationCell shows a translated reasoning body under its source.
type TranslationCell struct {
	Thread string
	Body   string
}

func (c TranslationCell) ThreadID() string { return c.Thread }

func (c TranslationCell) Render(width int) string {
	if width > 2 {
		return translationStyle.Width(width - 2).Render(c.Body)
	}
	return translationStyle.Render(c.Body)
}

// TranslationErrorCell reports a translation that failed or timed out.
type TranslationErrorCell struct {
	Thread string
	Title  string
	Reason string
}

func (c TranslationErrorCell) ThreadID() string { return c.Thread }

// Summary is the plain-text failure line.
func (c TranslationErrorCell) Summary() string {
	if c.Title == "" {
		return fmt.Sprintf("Translation failed: %s", c.Reason)
	}
	return fmt.Sprintf("Translation failed (%s): %s", c.Title, c.Reason)
}

func (c TranslationErrorCell) Render(width int) string {
	return wrap(failureStyle, width).Render(c.Summary())
}

// FromEvent converts a bridge event into a transcript cell. ok is false for
// event types that have no transcript representation.
func FromEvent(evt eventbridge.Event) (Cell, bool) {
	payload, err := evt.DecodePayload()
	if err != nil {
		return NoticeCell{Thread: evt.ThreadID, Text: fmt.Sprintf("unreadable %s event: %v", evt.Type, err), Error: true}, true
	}
	switch evt.Type {
	case eventbridge.TypeReasoning:
		return ReasoningCell{Thread: evt.ThreadID, Text: payload.Text}, true
	case eventbridge.TypeMessage:
		return MessageCell{Thread: evt.ThreadID, Agent: evt.Agent, Text: payload.Text}, true
	case eventbridge.TypeTool:
		return ToolCell{Thread: evt.ThreadID, Name: payload.Name, Text: payload.Text}, true
	case eventbridge.TypeNotice:
		return NoticeCell{Thread: evt.ThreadID, Text: payload.Text}, true
	case eventbridge.TypeSessionStart:
		return NoticeCell{Thread: evt.ThreadID, Text: withDetail("session started", payload.Text)}, true
	case eventbridge.TypeSessionEnd:
		return NoticeCell{Thread: evt.ThreadID, Text: withDetail("session ended", payload.Text)}, true
	case eventbridge.TypeError:
		return NoticeCell{Thread: evt.ThreadID, Text: payload.Text, Error: true}, true
	}
	return nil, false
}

// FromItem converts an item emitted by the translator into a cell.
func FromItem(item reasoning.Item) (Cell, bool) {
	switch v := item.(type) {
	case Cell:
		return v, true
	case reasoning.Translation:
		return TranslationCell{Thread: v.Key, Body: v.Body}, true
	case reasoning.TranslationFailure:
		return TranslationErrorCell{Thread: v.Key, Title: v.Title, Reason: v.Reason}, true
	}
	return nil, false
}

func withDetail(base, detail string) string {
	if detail = strings.TrimSpace(detail); detail != "" {
		return base + ": " + detail
	}
	return base
}
