package email

import (
	"context"
	"fmt"

	mail "github.com/go-mail/mail"
)

// SMTPSender sends mail through an SMTP relay using STARTTLS negotiation.
type SMTPSender struct {
	host string
	port int
	from string
	user string
	pass string
}

// NewSMTPSender constructs a sender for the given relay settings.
func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{host: host, port: port, from: from, user: user, pass: pass}
}

// Send delivers a plain-text message. The context is honored before dialing;
// go-mail itself does not support cancellation mid-send.
func (s *SMTPSender) Send(ctx context.Context, to, subject, textBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := mail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", textBody)

	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
