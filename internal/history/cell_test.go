package history

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/kingrea/thoughtline/internal/eventbridge"
	"github.com/kingrea/thoughtline/internal/reasoning"
)

func TestReasoningCellTranslationSource(t *testing.T) {
	cases := []struct {
		text string
		ok   bool
	}{
		{"**Plan**\nread the file", true},
		{"**Plan**", false},
		{"no title here", false},
		{"**Plan**\n   \n", false},
	}
	for _, tc := range cases {
		text, ok := ReasoningCell{Thread: "t", Text: tc.text}.TranslationSource()
		if ok != tc.ok {
			t.Fatalf("%q: ok = %v, want %v", tc.text, ok, tc.ok)
		}
		if ok && text != tc.text {
			t.Fatalf("%q: expected full text, got %q", tc.text, text)
		}
	}
	var _ reasoning.Translatable = ReasoningCell{}
	var _ reasoning.Keyed = ReasoningCell{}
	if key := (ReasoningCell{Thread: "t7"}).CorrelationKey(); key != "t7" {
		t.Fatalf("correlation key = %q, want t7", key)
	}
}

func TestReasoningCellRender(t *testing.T) {
	out := ReasoningCell{Thread: "t", Text: "**Plan**\nread the file"}.Render(40)
	if !strings.Contains(out, "Plan") || !strings.Contains(out, "read the file") {
		t.Fatalf("render missing content: %q", out)
	}
	if strings.Contains(out, "**") {
		t.Fatalf("render kept markdown markers: %q", out)
	}
}

func TestTranslationErrorCellSummary(t *testing.T) {
	cell := TranslationErrorCell{Thread: "t", Title: "Plan", Reason: "Translation timeout (5000ms)"}
	if got := cell.Summary(); got != "Translation failed (Plan): Translation timeout (5000ms)" {
		t.Fatalf("unexpected summary %q", got)
	}
	if got := (TranslationErrorCell{Reason: "boom"}).Summary(); got != "Translation failed: boom" {
		t.Fatalf("unexpected untitled summary %q", got)
	}
}

func TestFromEvent(t *testing.T) {
	payload := json.RawMessage(`{"text":"hello","name":"grep"}`)
	cases := []struct {
		kind string
		want string
	}{
		{eventbridge.TypeReasoning, "history.ReasoningCell"},
		{eventbridge.TypeMessage, "history.MessageCell"},
		{eventbridge.TypeTool, "history.ToolCell"},
		{eventbridge.TypeNotice, "history.NoticeCell"},
		{eventbridge.TypeSessionStart, "history.NoticeCell"},
		{eventbridge.TypeSessionEnd, "history.NoticeCell"},
		{eventbridge.TypeError, "history.NoticeCell"},
	}
	for _, tc := range cases {
		cell, ok := FromEvent(eventbridge.Event{Type: tc.kind, ThreadID: "t1", Payload: payload})
		if !ok {
			t.Fatalf("%s: expected a cell", tc.kind)
		}
		if got := fmt.Sprintf("%T", cell); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.kind, got, tc.want)
		}
		if cell.ThreadID() != "t1" {
			t.Fatalf("%s: wrong thread %s", tc.kind, cell.ThreadID())
		}
	}
	if _, ok := FromEvent(eventbridge.Event{Type: "other", ThreadID: "t1"}); ok {
		t.Fatalf("expected unknown type to be skipped")
	}
	tool, _ := FromEvent(eventbridge.Event{Type: eventbridge.TypeTool, ThreadID: "t1", Payload: payload})
	if tc, _ := tool.(ToolCell); tc.Name != "grep" {
		t.Fatalf("expected tool name, got %+v", tool)
	}
	errCell, _ := FromEvent(eventbridge.Event{Type: eventbridge.TypeError, ThreadID: "t1", Payload: payload})
	if nc, _ := errCell.(NoticeCell); !nc.Error {
		t.Fatalf("expected error notice")
	}
}

func TestFromItem(t *testing.T) {
	if cell, ok := FromItem(reasoning.Translation{Key: "t", Body: "译文"}); !ok || cell.(TranslationCell).Body != "译文" {
		t.Fatalf("unexpected translation cell %+v", cell)
	}
	cell, ok := FromItem(reasoning.TranslationFailure{Key: "t", Title: "A", Reason: "x"})
	if !ok || cell.ThreadID() != "t" {
		t.Fatalf("unexpected failure cell %+v", cell)
	}
	if _, ok := FromItem("string item"); ok {
		t.Fatalf("expected unknown item to be rejected")
	}
	msg := MessageCell{Thread: "t", Text: "hi"}
	if got, ok := FromItem(msg); !ok || got != Cell(msg) {
		t.Fatalf("expected cell to pass through")
	}
}
