package mailer

import (
	"context"
	"errors"
)

var ErrNoRecipient = errors.New("email has no recipient")

// Email is a rendered message ready to be delivered.
type Email struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers rendered emails.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
