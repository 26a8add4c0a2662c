package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConversationNotFound is returned when an operation names a conversation
	// that is not in the index, e.g. one deleted from another tab.
	ErrConversationNotFound = errors.New("conversation not found")
	// ErrRemoteUnavailable covers network failures, timeouts and non-2xx replies.
	ErrRemoteUnavailable = errors.New("remote provider unavailable")
	// ErrRemoteEmptyResponse is a successful call that produced no text.
	ErrRemoteEmptyResponse = errors.New("remote provider returned empty text")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrInvalidInput        = errors.New("invalid input")
)

// NotFound wraps ErrConversationNotFound with the offending id.
func NotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrConversationNotFound, id)
}

func IsNotFound(err error) bool { return errors.Is(err, ErrConversationNotFound) }

// IsRemoteFailure reports whether err belongs to the recoverable remote taxonomy.
func IsRemoteFailure(err error) bool {
	return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrRemoteEmptyResponse)
}
