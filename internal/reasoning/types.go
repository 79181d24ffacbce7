package reasoning

import (
	"context"
	"time"
)

// Item is one unit of transcript output. The Translator never inspects it
// beyond checking for Translatable.
type Item any

// Translatable is implemented by items whose text may be translated. ok is
// false when the item has nothing to offer.
type Translatable interface {
	TranslationSource() (text string, ok bool)
}

// Keyed is implemented by items that belong to one correlation key. A keyed
// item only opens a barrier while its key is the active one; otherwise it is
// emitted untranslated.
type Keyed interface {
	CorrelationKey() string
}

// Translation is emitted after a translatable item once its translation
// arrives. Key is the thread the barrier was opened for.
type Translation struct {
	Key  string
	Body string
}

// TranslationFailure is emitted in place of a Translation when the provider
// failed or the barrier timed out.
type TranslationFailure struct {
	Key    string
	Title  string
	Reason string
}

// Sink receives items in display order.
type Sink interface {
	Insert(Item)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc func(Item)

// Insert executes f(item).
func (f SinkFunc) Insert(item Item) {
	if f != nil {
		f(item)
	}
}

// Enricher produces the translation of text into target.
type Enricher interface {
	Enrich(ctx context.Context, text, target string) (string, error)
}

// EnricherFunc adapts a function into an Enricher.
type EnricherFunc func(ctx context.Context, text, target string) (string, error)

// Enrich executes f(ctx, text, target).
func (f EnricherFunc) Enrich(ctx context.Context, text, target string) (string, error) {
	return f(ctx, text, target)
}

// Waker asks the host loop to call Tick again.
type Waker interface {
	// Wake requests a tick as soon as possible.
	Wake()
	// WakeAfter requests a tick once d has elapsed.
	WakeAfter(d time.Duration)
}

// Logger records diagnostics. It matches logging.Logger's signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopWaker struct{}

func (nopWaker) Wake()                   {}
func (nopWaker) WakeAfter(time.Duration) {}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
