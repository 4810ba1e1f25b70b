package mailer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation(t *testing.T) {
	email, err := Render(TemplateOrderConfirmation, "buyer@example.com", map[string]any{
		"full_name":       "Yacine Benali",
		"order_code":      "ORD-ABCDEFGHJK",
		"sheep_title":     "Kebch Ouled Djellal",
		"original_price":  int64(125000),
		"discount_amount": int64(12500),
		"total_amount":    int64(112500),
		"payment_method":  "cib",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"buyer@example.com"}, email.To)
	assert.Equal(t, "Order ORD-ABCDEFGHJK received", email.Subject)
	assert.Contains(t, email.HTML, "125,000 DA")
	assert.Contains(t, email.HTML, "-12,500 DA")
	assert.Contains(t, email.HTML, "112,500 DA")
	assert.Contains(t, email.HTML, "Yacine Benali")
}

func TestRenderFromJSONPayload(t *testing.T) {
	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"full_name":"Sara","order_code":"ORD-1","amount":30000,"approved":true}`), &data))

	email, err := Render(TemplateReceiptDecision, "sara@example.com", data)
	require.NoError(t, err)

	assert.Equal(t, "Payment received for order ORD-1", email.Subject)
	assert.Contains(t, email.HTML, "30,000 DA")
	assert.NotContains(t, email.HTML, "rejected")
}

func TestRenderEscapesUserInput(t *testing.T) {
	email, err := Render(TemplateVerificationCode, "x@example.com", map[string]any{
		"full_name":  "<script>alert(1)</script>",
		"code":       "123456",
		"expires_in": "15 minutes",
	})
	require.NoError(t, err)

	assert.NotContains(t, email.HTML, "<script>")
	assert.Contains(t, email.HTML, "123456")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("missing", "x@example.com", nil)
	require.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567 DA", formatAmount(int64(1234567)))
	assert.Equal(t, "500 DA", formatAmount(500))
	assert.Equal(t, "2,000 DA", formatAmount(float64(2000)))
	assert.Equal(t, "0 DA", formatAmount(nil))
}
