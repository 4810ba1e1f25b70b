package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/katatrina/sheep-market-BE/internal/util"
)

const (
	TemplateVerificationCode  = "verification_code"
	TemplatePasswordResetCode = "password_reset_code"
	TemplateOrderConfirmation = "order_confirmation"
	TemplateOrderStatus       = "order_status"
	TemplateVIPDecision       = "vip_decision"
	TemplateReceiptDecision   = "receipt_decision"
)

const layout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2937; max-width: 560px; margin: auto;">
<h2 style="color: #166534;">Sheep Market</h2>
{{template "content" .}}
<p style="font-size: 12px; color: #6b7280;">This is an automated message, please do not reply.</p>
</body>
</html>`

type emailTemplate struct {
	subject string
	body    string
}

var emailTemplates = map[string]emailTemplate{
	TemplateVerificationCode: {
		subject: "Your verification code",
		body: `<p>Hello {{.full_name}},</p>
<p>Use the code below to verify your email address:</p>
<p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.code}}</strong></p>
<p>The code expires in {{.expires_in}}.</p>`,
	},
	TemplatePasswordResetCode: {
		subject: "Reset your password",
		body: `<p>We received a request to reset your password.</p>
<p style="font-size: 28px; letter-spacing: 6px;"><strong>{{.code}}</strong></p>
<p>The code expires in {{.expires_in}}. If you did not ask for a reset, ignore this email.</p>`,
	},
	TemplateOrderConfirmation: {
		subject: "Order {{.order_code}} received",
		body: `<p>Hello {{.full_name}},</p>
<p>Your order <strong>{{.order_code}}</strong> for <strong>{{.sheep_title}}</strong> has been placed.</p>
<table>
<tr><td>Price</td><td>{{dzd .original_price}}</td></tr>
{{if .discount_amount}}<tr><td>VIP discount</td><td>-{{dzd .discount_amount}}</td></tr>{{end}}
<tr><td><strong>Total</strong></td><td><strong>{{dzd .total_amount}}</strong></td></tr>
<tr><td>Payment method</td><td>{{.payment_method}}</td></tr>
</table>
<p>The seller will confirm your order shortly.</p>`,
	},
	TemplateOrderStatus: {
		subject: "Order {{.order_code}} is now {{.status}}",
		body: `<p>Hello {{.full_name}},</p>
<p>The status of your order <strong>{{.order_code}}</strong> changed to <strong>{{.status}}</strong>.</p>
{{if .reason}}<p>Reason: {{.reason}}</p>{{end}}`,
	},
	TemplateVIPDecision: {
		subject: "{{if .approved}}Your VIP membership is active{{else}}Your VIP request was declined{{end}}",
		body: `<p>Hello {{.full_name}},</p>
{{if .approved}}<p>Your VIP membership is active until <strong>{{.expires_at}}</strong>. Enjoy {{.discount_percent}}% off local sheep.</p>
{{else}}<p>Your VIP request was declined.</p>{{if .reason}}<p>Reason: {{.reason}}</p>{{end}}{{end}}`,
	},
	TemplateReceiptDecision: {
		subject: "{{if .approved}}Payment received for order {{.order_code}}{{else}}Receipt rejected for order {{.order_code}}{{end}}",
		body: `<p>Hello {{.full_name}},</p>
{{if .approved}}<p>Your payment of <strong>{{dzd .amount}}</strong> for order <strong>{{.order_code}}</strong> has been verified.</p>
{{else}}<p>Your receipt of {{dzd .amount}} for order <strong>{{.order_code}}</strong> was rejected.</p>{{if .reason}}<p>Reason: {{.reason}}</p>{{end}}
<p>Please upload a valid receipt from your order page.</p>{{end}}`,
	},
}

var funcs = template.FuncMap{
	"dzd": formatAmount,
}

// Render builds the email for a named template.
func Render(name string, to string, data map[string]any) (Email, error) {
	tmpl, ok := emailTemplates[name]
	if !ok {
		return Email{}, fmt.Errorf("unknown email template %q", name)
	}

	subject, err := execute("subject", `{{define "content"}}`+tmpl.subject+`{{end}}{{template "content" .}}`, data)
	if err != nil {
		return Email{}, err
	}

	html, err := execute(name, layout+`{{define "content"}}`+tmpl.body+`{{end}}`, data)
	if err != nil {
		return Email{}, err
	}

	return Email{
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	}, nil
}

func execute(name, text string, data map[string]any) (string, error) {
	t, err := template.New(name).Funcs(funcs).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err = t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}

// formatAmount renders a dinar amount. Payloads decoded from JSON carry numbers as float64.
func formatAmount(value any) string {
	switch v := value.(type) {
	case int64:
		return util.FormatDZD(v)
	case int:
		return util.FormatDZD(int64(v))
	case float64:
		return util.FormatDZD(int64(v))
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return v.String() + " DA"
		}
		return util.FormatDZD(n)
	case nil:
		return util.FormatDZD(0)
	}

	return fmt.Sprintf("%v DA", value)
}
