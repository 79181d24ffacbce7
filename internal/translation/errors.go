package translation

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies translation failures.
type ErrorKind string

const (
	KindAPIKeyMissing       ErrorKind = "api_key_missing"
	KindNetwork             ErrorKind = "network"
	KindAPI                 ErrorKind = "api"
	KindParse               ErrorKind = "parse"
	KindTimeout             ErrorKind = "timeout"
	KindUnsupportedProvider ErrorKind = "unsupported_provider"
	KindInvalidConfig       ErrorKind = "invalid_config"
)

// Error is returned by Client for every failed translation. Its message is
// shown to the user verbatim.
type Error struct {
	Kind     ErrorKind
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "translation error"
	}
	switch e.Kind {
	case KindAPIKeyMissing:
		return fmt.Sprintf("API key not configured for %s", e.Provider)
	case KindNetwork:
		return fmt.Sprintf("network error: %v", e.Err)
	case KindAPI:
		return fmt.Sprintf("API error (%d): %s", e.Status, e.Message)
	case KindParse:
		return fmt.Sprintf("parse error: %s", e.Message)
	case KindTimeout:
		return "translation timeout"
	case KindUnsupportedProvider:
		return fmt.Sprintf("unsupported provider: %s", e.Provider)
	case KindInvalidConfig:
		return fmt.Sprintf("invalid configuration: %s", e.Message)
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind reports whether err is a translation Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var terr *Error
	return errors.As(err, &terr) && terr.Kind == kind
}

func parseError(message string) *Error {
	return &Error{Kind: KindParse, Message: message}
}

// classifyTransport maps errors that are not protocol specific.
func classifyTransport(err error) error {
	if err == nil {
		return nil
	}
	var terr *Error
	if errors.As(err, &terr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}
