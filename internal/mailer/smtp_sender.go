package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPSender delivers emails through an SMTP relay.
type SMTPSender struct {
	client        *mail.Client
	senderName    string
	senderAddress string
}

func NewSMTPSender(host string, port int, username, password, senderName, senderAddress string) (*SMTPSender, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPSender{
		client:        client,
		senderName:    senderName,
		senderAddress: senderAddress,
	}, nil
}

func (sender *SMTPSender) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	msg := mail.NewMsg()

	if err := msg.FromFormat(sender.senderName, sender.senderAddress); err != nil {
		return fmt.Errorf("failed to set From address: %w", err)
	}

	if err := msg.To(email.To...); err != nil {
		return fmt.Errorf("failed to set To address: %w", err)
	}

	msg.Subject(email.Subject)
	msg.SetBodyString(mail.TypeTextHTML, email.HTML)

	if err := sender.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
