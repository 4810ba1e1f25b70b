package mailer

import (
	"context"
	"fmt"

	"resty.dev/v3"
)

const resendBaseURL = "https://api.resend.com"

// ResendSender delivers emails through the Resend HTTP API.
type ResendSender struct {
	client *resty.Client
	from   string
}

func NewResendSender(apiKey, senderName, senderAddress string) *ResendSender {
	return newResendSender(apiKey, senderName, senderAddress, resendBaseURL)
}

func newResendSender(apiKey, senderName, senderAddress, baseURL string) *ResendSender {
	return &ResendSender{
		client: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(apiKey),
		from: formatAddress(senderName, senderAddress),
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID string `json:"id"`
}

type resendError struct {
	StatusCode int    `json:"statusCode"`
	Name       string `json:"name"`
	Message    string `json:"message"`
}

func (sender *ResendSender) Send(ctx context.Context, email Email) error {
	if len(email.To) == 0 {
		return ErrNoRecipient
	}

	var result resendResponse
	var apiErr resendError

	res, err := sender.client.R().
		SetContext(ctx).
		SetBody(resendRequest{
			From:    sender.from,
			To:      email.To,
			Subject: email.Subject,
			HTML:    email.HTML,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to call resend: %w", err)
	}

	if res.IsError() {
		return fmt.Errorf("resend rejected email (status %d): %s %s", res.StatusCode(), apiErr.Name, apiErr.Message)
	}

	return nil
}

func formatAddress(name, address string) string {
	if name == "" {
		return address
	}
	return fmt.Sprintf("%s <%s>", name, address)
}
