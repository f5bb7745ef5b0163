// Package email delivers outbound notification mail. The engine treats
// delivery as fire and forget; a failed send is logged, never propagated
// into an auth flow result.
package email

import "context"

// Sender is the outbound mail contract consumed by the auth service.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody string) error
}

// NoopSender discards all mail. Used in tests and when SMTP is not
// configured.
type NoopSender struct{}

func (NoopSender) Send(ctx context.Context, to, subject, textBody string) error {
	return nil
}
