package reasoning

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type reasoningItem struct {
	id   string
	text string
}

func (r reasoningItem) TranslationSource() (string, bool) {
	return r.text, r.text != ""
}

type plainItem string

// threadItem is a reasoning item owned by one thread.
type threadItem struct {
	reasoningItem
	thread string
}

func (r threadItem) CorrelationKey() string {
	return r.thread
}

type recordingWaker struct {
	wakes      int
	wakeAfters []time.Duration
}

func (w *recordingWaker) Wake()                     { w.wakes++ }
func (w *recordingWaker) WakeAfter(d time.Duration) { w.wakeAfters = append(w.wakeAfters, d) }

type harness struct {
	t     *testing.T
	now   time.Time
	env   map[string]string
	out   []Item
	tasks []func()
	waker *recordingWaker
	tr    *Translator
}

func prefixEnricher(_ context.Context, text, _ string) (string, error) {
	return "**T**\nTR " + Body(text), nil
}

func newHarness(t *testing.T, cfg Config, enricher Enricher) *harness {
	t.Helper()
	h := &harness{
		t:     t,
		now:   time.Unix(1730000000, 0),
		env:   map[string]string{},
		waker: &recordingWaker{},
	}
	h.tr = New(cfg, enricher, SinkFunc(func(item Item) { h.out = append(h.out, item) }),
		WithClock(func() time.Time { return h.now }),
		WithEnv(func(key string) string { return h.env[key] }),
		WithWaker(h.waker),
		WithDispatcher(func(task func()) { h.tasks = append(h.tasks, task) }),
	)
	return h
}

func enabled() Config {
	return Config{Enabled: true, TargetLanguage: "zh-CN"}
}

// runTask runs the oldest dispatched task synchronously.
func (h *harness) runTask() {
	h.t.Helper()
	if len(h.tasks) == 0 {
		h.t.Fatalf("no dispatched task to run")
	}
	task := h.tasks[0]
	h.tasks = h.tasks[1:]
	task()
}

func (h *harness) labels() []string {
	labels := make([]string, 0, len(h.out))
	for _, item := range h.out {
		switch v := item.(type) {
		case reasoningItem:
			labels = append(labels, v.id)
		case threadItem:
			labels = append(labels, v.thread+":"+v.id)
		case plainItem:
			labels = append(labels, string(v))
		case Translation:
			labels = append(labels, "tr:"+v.Body)
		case TranslationFailure:
			labels = append(labels, "fail:"+v.Title+":"+v.Reason)
		default:
			labels = append(labels, fmt.Sprintf("%v", v))
		}
	}
	return labels
}

func (h *harness) expect(want ...string) {
	h.t.Helper()
	got := h.labels()
	if strings.Join(got, "|") != strings.Join(want, "|") {
		h.t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestInterceptOpensBarrierForTranslatableItem(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	if !h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody a"}, "thread") {
		t.Fatalf("first item must be emitted immediately")
	}
	h.expect("A")
	p, ok := h.tr.Pending()
	if !ok {
		t.Fatalf("expected open barrier")
	}
	if p.Key != "thread" || p.Title != "Plan" || p.RequestID != 0 {
		t.Fatalf("unexpected pending barrier %+v", p)
	}
	if len(h.tasks) != 1 {
		t.Fatalf("expected one dispatched task, got %d", len(h.tasks))
	}
	if len(h.waker.wakeAfters) != 1 || h.waker.wakeAfters[0] != DefaultMaxWait {
		t.Fatalf("expected timeout wake-up of %s, got %v", DefaultMaxWait, h.waker.wakeAfters)
	}
}

func TestItemsDeferredWhileBarrierOpen(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody a"}, "thread")
	if h.tr.Intercept(plainItem("m1"), "thread") {
		t.Fatalf("item must be deferred while the barrier is open")
	}
	if h.tr.Emit(plainItem("m2")) {
		t.Fatalf("Emit must defer while the barrier is open")
	}
	h.expect("A")
	if h.tr.Deferred() != 2 {
		t.Fatalf("deferred = %d, want 2", h.tr.Deferred())
	}
	h.runTask()
	if h.waker.wakes != 1 {
		t.Fatalf("finished task must wake the host, wakes = %d", h.waker.wakes)
	}
	if !h.tr.Tick("thread") {
		t.Fatalf("tick should report emission")
	}
	h.expect("A", "tr:TR body a", "m1", "m2")
	if _, ok := h.tr.Pending(); ok {
		t.Fatalf("barrier should be closed")
	}
}

func TestFlushStopsWhenDeferredItemReopensBarrier(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(reasoningItem{id: "A", text: "**A**\nalpha"}, "thread")
	h.tr.Intercept(reasoningItem{id: "B", text: "**B**\nbeta"}, "thread")
	h.tr.Intercept(plainItem("C"), "thread")
	if len(h.tasks) != 1 {
		t.Fatalf("only one task may be in flight, got %d", len(h.tasks))
	}

	h.runTask()
	h.tr.Tick("thread")
	h.expect("A", "tr:TR alpha", "B")
	if h.tr.Deferred() != 1 {
		t.Fatalf("C must stay queued behind B's barrier, deferred = %d", h.tr.Deferred())
	}
	p, ok := h.tr.Pending()
	if !ok || p.RequestID != 1 || p.Title != "B" {
		t.Fatalf("expected barrier for B, got %+v (open=%v)", p, ok)
	}

	h.runTask()
	h.tr.Tick("thread")
	h.expect("A", "tr:TR alpha", "B", "tr:TR beta", "C")
}

func TestEmittedItemsNeverOpenBarrierOnFlush(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(reasoningItem{id: "A", text: "**A**\nalpha"}, "thread")
	h.tr.Emit(reasoningItem{id: "B", text: "**B**\nbeta"})
	h.tr.Intercept(plainItem("C"), "thread")

	h.runTask()
	h.tr.Tick("thread")
	h.expect("A", "tr:TR alpha", "B", "C")
	if _, ok := h.tr.Pending(); ok {
		t.Fatalf("emitted item must not open a barrier")
	}
	if len(h.tasks) != 0 {
		t.Fatalf("no task expected, got %d", len(h.tasks))
	}
}

func TestFlushedItemOwnedByInactiveThreadIsNotTranslated(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(threadItem{reasoningItem{id: "one", text: "**One**\nfirst"}, "A"}, "A")
	h.tr.Intercept(threadItem{reasoningItem{id: "two", text: "**Two**\nsecond"}, "A"}, "A")

	h.now = h.now.Add(DefaultMaxWait + time.Second)
	h.tr.Tick("B")
	h.expect("A:one", "fail:One:Translation timeout (5000ms)", "A:two")
	if _, ok := h.tr.Pending(); ok {
		t.Fatalf("item of thread A must not open a barrier while B is active")
	}
	if len(h.tasks) != 1 {
		t.Fatalf("expected only the first task, got %d", len(h.tasks))
	}

	h.runTask()
	if h.tr.Tick("B") {
		t.Fatalf("stale completion must not emit")
	}
	h.expect("A:one", "fail:One:Translation timeout (5000ms)", "A:two")
}

func TestKeyedItemTranslatesForItsActiveThread(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(threadItem{reasoningItem{id: "one", text: "**One**\nfirst"}, "A"}, "A")
	p, ok := h.tr.Pending()
	if !ok || p.Key != "A" {
		t.Fatalf("expected barrier for A, got %+v (open=%v)", p, ok)
	}
	h.runTask()
	h.tr.Tick("A")
	h.expect("A:one", "tr:TR first")
}

func TestTimeoutEmitsFailureReferencingWait(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.env[MaxWaitEnv] = "250"
	h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody"}, "thread")
	h.tr.Intercept(plainItem("next"), "thread")
	if got := h.waker.wakeAfters; len(got) != 1 || got[0] != 250*time.Millisecond {
		t.Fatalf("wake-after = %v, want [250ms]", got)
	}

	h.now = h.now.Add(249 * time.Millisecond)
	if h.tr.Tick("thread") {
		t.Fatalf("tick before the deadline must not emit")
	}
	h.now = h.now.Add(time.Millisecond)
	if !h.tr.Tick("thread") {
		t.Fatalf("tick at the deadline must emit")
	}
	h.expect("A", "fail:Plan:Translation timeout (250ms)", "next")

	// The task eventually finishes; its result is stale.
	h.runTask()
	if h.tr.Tick("thread") {
		t.Fatalf("late completion must be discarded")
	}
	h.expect("A", "fail:Plan:Translation timeout (250ms)", "next")
}

func TestStaleCompletionIgnored(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Inbox().Send(Completion{RequestID: 0, Key: "thread", Translated: "x"})
	if h.tr.Tick("thread") {
		t.Fatalf("completion with no open barrier must be dropped")
	}
	h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody"}, "thread")
	h.tr.Inbox().Send(Completion{RequestID: 7, Key: "thread", Translated: "x"})
	h.tr.Inbox().Send(Completion{RequestID: 0, Key: "other", Translated: "x"})
	if h.tr.Tick("thread") {
		t.Fatalf("mismatched completions must be dropped")
	}
	h.expect("A")
	if _, ok := h.tr.Pending(); !ok {
		t.Fatalf("mismatched completion must not close the barrier")
	}
}

func TestCompletionForInactiveThreadDropped(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody"}, "thread-a")
	h.tr.Intercept(plainItem("later"), "thread-a")
	h.runTask()
	if h.tr.Tick("thread-b") {
		t.Fatalf("completion for a thread that is no longer active must be dropped")
	}
	h.expect("A")
	h.now = h.now.Add(DefaultMaxWait)
	h.tr.Tick("thread-b")
	h.expect("A", "fail:Plan:Translation timeout (5000ms)", "later")
}

func TestProviderFailureEmitsTitleAndReason(t *testing.T) {
	failing := EnricherFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("API error (401): Unauthorized")
	})
	h := newHarness(t, enabled(), failing)
	h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody"}, "thread")
	h.runTask()
	h.tr.Tick("thread")
	h.expect("A", "fail:Plan:API error (401): Unauthorized")
}

func TestTranslationWithoutBodyUsesRawText(t *testing.T) {
	raw := EnricherFunc(func(context.Context, string, string) (string, error) {
		return "plain translated text", nil
	})
	h := newHarness(t, enabled(), raw)
	h.tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody"}, "thread")
	h.runTask()
	h.tr.Tick("thread")
	h.expect("A", "tr:plain translated text")
}

func TestIneligibleItemsNeverOpenBarrier(t *testing.T) {
	cases := []struct {
		name   string
		cfg    Config
		item   Item
		active string
	}{
		{name: "disabled", cfg: Config{}, item: reasoningItem{id: "A", text: "**Plan**\nbody"}, active: "thread"},
		{name: "no active thread", cfg: enabled(), item: reasoningItem{id: "A", text: "**Plan**\nbody"}},
		{name: "not translatable", cfg: enabled(), item: plainItem("A"), active: "thread"},
		{name: "no body", cfg: enabled(), item: reasoningItem{id: "A", text: "**Plan**"}, active: "thread"},
		{name: "no bold", cfg: enabled(), item: reasoningItem{id: "A", text: "just text"}, active: "thread"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, tc.cfg, EnricherFunc(prefixEnricher))
			if !h.tr.Intercept(tc.item, tc.active) {
				t.Fatalf("item must be emitted")
			}
			if _, ok := h.tr.Pending(); ok {
				t.Fatalf("barrier must stay closed")
			}
			if len(h.tasks) != 0 {
				t.Fatalf("no task may be dispatched")
			}
		})
	}
}

func TestDisablingKeepsOpenBarrierResolvable(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.tr.Intercept(reasoningItem{id: "A", text: "**A**\nalpha"}, "thread")
	h.tr.Intercept(reasoningItem{id: "B", text: "**B**\nbeta"}, "thread")
	h.tr.UpdateConfig(Config{})
	h.runTask()
	h.tr.Tick("thread")
	h.expect("A", "tr:TR alpha", "B")
	if _, ok := h.tr.Pending(); ok {
		t.Fatalf("B must not open a barrier once translation is disabled")
	}
}

func TestMaxWaitResolution(t *testing.T) {
	cases := []struct {
		name string
		env  string
		cfg  time.Duration
		want time.Duration
	}{
		{name: "default", want: DefaultMaxWait},
		{name: "env", env: " 1200 ", want: 1200 * time.Millisecond},
		{name: "unparsable env", env: "soon", want: DefaultMaxWait},
		{name: "negative env", env: "-5", cfg: 3 * time.Second, want: 3 * time.Second},
		{name: "config fallback", cfg: 2 * time.Second, want: 2 * time.Second},
		{name: "env beats config", env: "10", cfg: 2 * time.Second, want: 10 * time.Millisecond},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := enabled()
			cfg.MaxWait = tc.cfg
			h := newHarness(t, cfg, EnricherFunc(prefixEnricher))
			if tc.env != "" {
				h.env[MaxWaitEnv] = tc.env
			}
			if got := h.tr.maxWait(); got != tc.want {
				t.Fatalf("maxWait = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestMaxWaitReadOnEveryBarrier(t *testing.T) {
	h := newHarness(t, enabled(), EnricherFunc(prefixEnricher))
	h.env[MaxWaitEnv] = "100"
	h.tr.Intercept(reasoningItem{id: "A", text: "**A**\nalpha"}, "thread")
	h.runTask()
	h.tr.Tick("thread")
	h.env[MaxWaitEnv] = "300"
	h.tr.Intercept(reasoningItem{id: "B", text: "**B**\nbeta"}, "thread")
	p, _ := h.tr.Pending()
	if p.MaxWait != 300*time.Millisecond {
		t.Fatalf("second barrier max wait = %s, want 300ms", p.MaxWait)
	}
}

type chanWaker struct {
	woke chan struct{}
}

func (w chanWaker) Wake() {
	select {
	case w.woke <- struct{}{}:
	default:
	}
}

func (chanWaker) WakeAfter(time.Duration) {}

func TestGoroutineDispatchDeliversThroughInbox(t *testing.T) {
	waker := chanWaker{woke: make(chan struct{}, 1)}
	var out []Item
	tr := New(enabled(), EnricherFunc(prefixEnricher), SinkFunc(func(item Item) { out = append(out, item) }), WithWaker(waker))
	defer tr.Close()
	tr.Intercept(reasoningItem{id: "A", text: "**Plan**\nbody"}, "thread")
	select {
	case <-waker.woke:
	case <-time.After(2 * time.Second):
		t.Fatalf("translation task never woke the host")
	}
	if !tr.Tick("thread") {
		t.Fatalf("expected translation to be emitted")
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}
	if got, ok := out[1].(Translation); !ok || got.Body != "TR body" || got.Key != "thread" {
		t.Fatalf("unexpected translation item %#v", out[1])
	}
}
