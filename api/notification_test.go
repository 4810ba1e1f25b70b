package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListNotifications(t *testing.T) {
	user := newUser("buyer-1", db.UserRoleBuyer)

	server, deps := newTestServer(t)
	deps.authenticate(user)
	deps.store.On("ListNotifications", mock.Anything, user.ID, maxPageSize).Return([]db.Notification{
		{ID: "n-2", RecipientID: user.ID, Type: db.NotificationTypeOrder, Title: "Order confirmed"},
		{ID: "n-1", RecipientID: user.ID, Type: db.NotificationTypePayment, Title: "Payment verified", IsRead: true},
	}, nil)

	request := newRequest(t, http.MethodGet, "/v1/users/me/notifications?limit=500", nil)
	addAuthorization(t, server, request, user)

	recorder := serve(server, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	notifications := decodeBody[[]db.Notification](t, recorder)
	require.Len(t, notifications, 2)
	assert.Equal(t, "n-2", notifications[0].ID)
}

func TestMarkNotificationRead(t *testing.T) {
	user := newUser("buyer-1", db.UserRoleBuyer)

	t.Run("OK", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)
		deps.store.On("MarkNotificationRead", mock.Anything, user.ID, "n-1").Return(nil)

		request := newRequest(t, http.MethodPatch, "/v1/users/me/notifications/n-1/read", nil)
		addAuthorization(t, server, request, user)

		assert.Equal(t, http.StatusNoContent, serve(server, request).Code)
	})

	t.Run("SomeoneElses", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)
		deps.store.On("MarkNotificationRead", mock.Anything, user.ID, "n-9").Return(db.ErrRecordNotFound)

		request := newRequest(t, http.MethodPatch, "/v1/users/me/notifications/n-9/read", nil)
		addAuthorization(t, server, request, user)

		assert.Equal(t, http.StatusNotFound, serve(server, request).Code)
	})
}

func TestStreamNotificationsWithQueryToken(t *testing.T) {
	user := newUser("buyer-1", db.UserRoleBuyer)

	server, deps := newTestServer(t)
	deps.authenticate(user)

	accessToken, _, err := server.tokenMaker.CreateToken(user.ID, string(user.Role), time.Minute)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, "/v1/users/me/notifications/stream?access_token="+accessToken, nil)
	require.NoError(t, err)

	recorder := serve(server, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))
}
