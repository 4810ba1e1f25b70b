package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/db"
	mockdb "github.com/katatrina/sheep-market-BE/internal/db/mock"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []mailer.Email
	err  error
}

func (s *recordingSender) Send(_ context.Context, email mailer.Email) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

type recordingEvents struct {
	events []event.Event
}

func (r *recordingEvents) Register(string, chan event.Event)   {}
func (r *recordingEvents) Unregister(string, chan event.Event) {}
func (r *recordingEvents) Run()                                {}
func (r *recordingEvents) Broadcast(e event.Event) {
	r.events = append(r.events, e)
}

type recordingAlerter struct {
	messages []string
}

func (a *recordingAlerter) Alert(_ context.Context, message string) error {
	a.messages = append(a.messages, message)
	return nil
}

func newTask(t *testing.T, taskType string, payload any) *asynq.Task {
	t.Helper()

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	return asynq.NewTask(taskType, data)
}

func TestProcessTaskSendEmail(t *testing.T) {
	sender := &recordingSender{}
	processor := newRedisTaskProcessor(nil, nil, sender, nil, nil)

	task := newTask(t, TaskSendEmail, PayloadSendEmail{
		To:       "buyer@example.com",
		Template: mailer.TemplateVerificationCode,
		Data:     map[string]any{"full_name": "Amine", "code": "482913", "expires_in": "15 minutes"},
	})

	require.NoError(t, processor.ProcessTaskSendEmail(context.Background(), task))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"buyer@example.com"}, sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "482913")
}

func TestProcessTaskSendEmailUnknownTemplateSkipsRetry(t *testing.T) {
	processor := newRedisTaskProcessor(nil, nil, &recordingSender{}, nil, nil)

	task := newTask(t, TaskSendEmail, PayloadSendEmail{To: "x@example.com", Template: "nope"})

	err := processor.ProcessTaskSendEmail(context.Background(), task)
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskSendEmailDeliveryFailureRetries(t *testing.T) {
	processor := newRedisTaskProcessor(nil, nil, &recordingSender{err: errors.New("smtp down")}, nil, nil)

	task := newTask(t, TaskSendEmail, PayloadSendEmail{
		To:       "x@example.com",
		Template: mailer.TemplatePasswordResetCode,
		Data:     map[string]any{"code": "123456"},
	})

	err := processor.ProcessTaskSendEmail(context.Background(), task)
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestProcessTaskSendNotification(t *testing.T) {
	store := new(mockdb.Store)
	events := &recordingEvents{}
	processor := newRedisTaskProcessor(nil, store, nil, events, nil)

	store.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n db.Notification) bool {
		return n.RecipientID == "seller-1" && n.Type == db.NotificationTypeOrder && n.ReferenceID == "order-1"
	})).Return(db.Notification{ID: "notif-1", RecipientID: "seller-1", Title: "New order"}, nil).Once()

	task := newTask(t, TaskSendNotification, PayloadSendNotification{
		RecipientID: "seller-1",
		Title:       "New order",
		Message:     "You received a new order",
		Type:        db.NotificationTypeOrder,
		ReferenceID: "order-1",
	})

	require.NoError(t, processor.ProcessTaskSendNotification(context.Background(), task))
	store.AssertExpectations(t)

	require.Len(t, events.events, 1)
	assert.Equal(t, event.UserTopic("seller-1"), events.events[0].Topic)
	assert.Equal(t, event.EventTypeNotification, events.events[0].Type)
}

func TestProcessTaskAdminAlert(t *testing.T) {
	alerter := &recordingAlerter{}
	processor := newRedisTaskProcessor(nil, nil, nil, nil, alerter)

	task := newTask(t, TaskAdminAlert, PayloadAdminAlert{Message: "New receipt to verify"})

	require.NoError(t, processor.ProcessTaskAdminAlert(context.Background(), task))
	assert.Equal(t, []string{"New receipt to verify"}, alerter.messages)

	err := processor.ProcessTaskAdminAlert(context.Background(), asynq.NewTask(TaskAdminAlert, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
