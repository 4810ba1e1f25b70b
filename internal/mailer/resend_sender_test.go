package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResendSenderSend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		var body resendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Sheep Market <no-reply@example.com>", body.From)
		assert.Equal(t, []string{"buyer@example.com"}, body.To)

		w.Header().Set("Content-Type", "application/json")
		if body.Subject == "fail" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad request"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"email_1"}`))
	}))
	defer server.Close()

	sender := newResendSender("re_test", "Sheep Market", "no-reply@example.com", server.URL)

	err := sender.Send(context.Background(), Email{To: []string{"buyer@example.com"}, Subject: "hi", HTML: "<p>hi</p>"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), Email{To: []string{"buyer@example.com"}, Subject: "fail", HTML: "<p>hi</p>"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation_error")

	err = sender.Send(context.Background(), Email{Subject: "hi"})
	require.ErrorIs(t, err, ErrNoRecipient)
}
