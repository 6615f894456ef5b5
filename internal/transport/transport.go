// Package transport defines the delivery boundary for rendered report messages.
//
// A Sender posts one already-rendered message to one channel destination.
// Splitting, escaping and budgeting happen before a message reaches a Sender.
package transport

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnavailable reports that a channel has no usable client in this build
// or that its configuration is incomplete.
var ErrUnavailable = errors.New("channel sender unavailable")

type Sender interface {
	Send(ctx context.Context, text string) error
}

// SenderFunc adapts a plain function to the Sender interface.
type SenderFunc func(ctx context.Context, text string) error

func (f SenderFunc) Send(ctx context.Context, text string) error { return f(ctx, text) }

// Multi fans one message out to every sender in order and stops at the first failure.
type Multi []Sender

func (m Multi) Send(ctx context.Context, text string) error {
	for i, s := range m {
		if err := s.Send(ctx, text); err != nil {
			if len(m) == 1 {
				return err
			}
			return fmt.Errorf("destination %d: %w", i+1, err)
		}
	}
	return nil
}

// Unavailable wraps ErrUnavailable with the channel name and a reason.
func Unavailable(channel, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrUnavailable, channel, reason)
}
