package reasoning

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultMaxWait bounds how long the transcript waits for one translation.
	DefaultMaxWait = 5000 * time.Millisecond
	// MaxWaitEnv overrides the wait, in milliseconds. It is read every time a
	// barrier opens.
	MaxWaitEnv = "THOUGHTLINE_TRANSLATION_MAX_WAIT_MS"
)

// Config is the translator's view of the translation settings.
type Config struct {
	Enabled        bool
	TargetLanguage string
	// MaxWait is used when MaxWaitEnv is unset or invalid. Zero means DefaultMaxWait.
	MaxWait time.Duration
}

// Pending describes the open barrier.
type Pending struct {
	RequestID uint64
	Key       string
	Title     string
	MaxWait   time.Duration
	Deadline  time.Time
}

// Option customizes Translator construction.
type Option func(*Translator)

// WithWaker sets the host wake-up hook.
func WithWaker(w Waker) Option {
	return func(t *Translator) {
		if w != nil {
			t.waker = w
		}
	}
}

// WithClock allows tests to control deadlines.
func WithClock(clock func() time.Time) Option {
	return func(t *Translator) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithEnv overrides the environment lookup used for MaxWaitEnv.
func WithEnv(getenv func(string) string) Option {
	return func(t *Translator) {
		if getenv != nil {
			t.getenv = getenv
		}
	}
}

// WithDispatcher overrides how translation tasks are started. The default runs
// each task on its own goroutine.
func WithDispatcher(dispatch func(task func())) Option {
	return func(t *Translator) {
		if dispatch != nil {
			t.dispatch = dispatch
		}
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(t *Translator) {
		if l != nil {
			t.logger = l
		}
	}
}

// Translator orders translations into a transcript. It is owned by a single
// goroutine (the host loop); only the Inbox is shared with translation tasks.
type Translator struct {
	cfg      Config
	enricher Enricher
	sink     Sink
	waker    Waker
	logger   Logger
	clock    func() time.Time
	getenv   func(string) string
	dispatch func(task func())

	gate     barrierGate
	deferred deferredQueue
	inbox    *Inbox
}

// New builds a Translator that emits into sink and translates with enricher.
func New(cfg Config, enricher Enricher, sink Sink, opts ...Option) *Translator {
	t := &Translator{
		cfg:      cfg,
		enricher: enricher,
		sink:     sink,
		waker:    nopWaker{},
		logger:   nopLogger{},
		clock:    time.Now,
		getenv:   os.Getenv,
		dispatch: func(task func()) { go task() },
		inbox:    NewInbox(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.sink == nil {
		t.sink = SinkFunc(nil)
	}
	return t
}

// Config returns the current configuration.
func (t *Translator) Config() Config {
	return t.cfg
}

// Enabled reports whether new translations may start.
func (t *Translator) Enabled() bool {
	return t.cfg.Enabled
}

// UpdateConfig swaps the configuration. An open barrier keeps its deadline
// and is still resolved on Tick even if translation is now disabled.
func (t *Translator) UpdateConfig(cfg Config) {
	t.cfg = cfg
}

// Pending reports the open barrier, if any.
func (t *Translator) Pending() (Pending, bool) {
	b := t.gate.open
	if b == nil {
		return Pending{}, false
	}
	return Pending{
		RequestID: b.requestID,
		Key:       b.key,
		Title:     b.title,
		MaxWait:   b.maxWait,
		Deadline:  b.deadline,
	}, true
}

// Deferred returns the number of items waiting behind the barrier.
func (t *Translator) Deferred() int {
	return t.deferred.len()
}

// Inbox exposes the completion mailbox shared with translation tasks.
func (t *Translator) Inbox() *Inbox {
	return t.inbox
}

// Emit inserts item, deferring it while a barrier is open. It never starts a
// translation, not even when the item is flushed later.
func (t *Translator) Emit(item Item) bool {
	if t.gate.isOpen() {
		t.deferred.push(item, false)
		return false
	}
	t.sink.Insert(item)
	return true
}

// Intercept emits item and, if it is translatable, starts its translation
// for the active thread. It reports whether item reached the sink.
func (t *Translator) Intercept(item Item, active string) bool {
	if t.gate.isOpen() {
		t.deferred.push(item, true)
		return false
	}
	t.sink.Insert(item)
	t.maybeTranslate(item, active)
	return true
}

// Tick drains finished translations and enforces the barrier deadline. It
// reports whether anything was emitted.
func (t *Translator) Tick(active string) bool {
	emitted := false
	for _, msg := range t.inbox.Drain() {
		if t.complete(msg, active) {
			emitted = true
		}
	}
	if t.flushTimeout(active) {
		emitted = true
	}
	return emitted
}

// Close stops accepting completions. Tasks still running finish and their
// results are dropped.
func (t *Translator) Close() {
	t.inbox.Close()
}

func (t *Translator) maybeTranslate(item Item, active string) bool {
	if !t.cfg.Enabled || active == "" || t.enricher == nil {
		return false
	}
	if k, ok := item.(Keyed); ok && k.CorrelationKey() != active {
		return false
	}
	src, ok := item.(Translatable)
	if !ok {
		return false
	}
	text, ok := src.TranslationSource()
	if !ok {
		return false
	}
	title, body := Split(text)
	if strings.TrimSpace(body) == "" {
		return false
	}
	maxWait := t.maxWait()
	requestID, ok := t.gate.begin(active, title, maxWait, t.clock())
	if !ok {
		return false
	}
	t.logger.Printf("reasoning: barrier %d opened for %s (max wait %s)", requestID, active, maxWait)
	t.waker.WakeAfter(maxWait)
	t.startTask(requestID, active, title, text)
	return true
}

func (t *Translator) startTask(requestID uint64, key, title, text string) {
	enricher := t.enricher
	inbox := t.inbox
	waker := t.waker
	target := t.cfg.TargetLanguage
	t.dispatch(func() {
		translated, err := enricher.Enrich(context.Background(), text, target)
		inbox.Send(Completion{
			RequestID:  requestID,
			Key:        key,
			Title:      title,
			Translated: translated,
			Err:        err,
		})
		waker.Wake()
	})
}

func (t *Translator) complete(msg Completion, active string) bool {
	if !t.gate.matches(msg.RequestID, msg.Key) {
		t.logger.Printf("reasoning: dropped stale completion %d for %s", msg.RequestID, msg.Key)
		return false
	}
	if active != msg.Key {
		t.logger.Printf("reasoning: dropped completion %d, thread %s no longer active", msg.RequestID, msg.Key)
		return false
	}
	t.gate.release()
	if msg.Err == nil {
		body := strings.TrimSpace(Body(msg.Translated))
		if body == "" {
			body = msg.Translated
		}
		t.sink.Insert(Translation{Key: msg.Key, Body: body})
	} else {
		t.sink.Insert(TranslationFailure{Key: msg.Key, Title: msg.Title, Reason: msg.Err.Error()})
	}
	t.flush(active)
	return true
}

func (t *Translator) flushTimeout(active string) bool {
	if !t.gate.expired(t.clock()) {
		return false
	}
	b := t.gate.release()
	t.logger.Printf("reasoning: barrier %d timed out after %s", b.requestID, b.maxWait)
	t.sink.Insert(TranslationFailure{
		Key:    b.key,
		Title:  b.title,
		Reason: fmt.Sprintf("Translation timeout (%dms)", b.maxWait.Milliseconds()),
	})
	t.flush(active)
	return true
}

// flush emits deferred items in order and stops as soon as one of them opens
// a new barrier.
func (t *Translator) flush(active string) {
	for {
		d, ok := t.deferred.pop()
		if !ok {
			return
		}
		t.sink.Insert(d.item)
		if d.translate && t.maybeTranslate(d.item, active) {
			return
		}
	}
}

func (t *Translator) maxWait() time.Duration {
	if raw := strings.TrimSpace(t.getenv(MaxWaitEnv)); raw != "" {
		if ms, err := strconv.ParseUint(raw, 10, 64); err == nil {
			return millis(ms)
		}
	}
	if t.cfg.MaxWait > 0 {
		return t.cfg.MaxWait
	}
	return DefaultMaxWait
}

func millis(ms uint64) time.Duration {
	if ms > uint64(math.MaxInt64/int64(time.Millisecond)) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ms) * time.Millisecond
}
