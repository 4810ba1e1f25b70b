package worker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/notification"
	"github.com/rs/zerolog/log"
)

/*
 This file contains the code that picks up tasks from the Redis queue and processes them.
*/

const (
	QueueCritical = "critical"
	QueueDefault  = "default"
)

type TaskProcessor interface {
	Start() error
	Shutdown()
	ProcessTaskSendEmail(ctx context.Context, task *asynq.Task) error
	ProcessTaskSendNotification(ctx context.Context, task *asynq.Task) error
	ProcessTaskAdminAlert(ctx context.Context, task *asynq.Task) error
}

type RedisTaskProcessor struct {
	server      *asynq.Server
	store       db.Store
	mailer      mailer.Sender
	eventSender event.EventSender
	alerter     notification.Alerter
}

func NewRedisTaskProcessor(
	redisOpt asynq.RedisClientOpt,
	store db.Store,
	mailSender mailer.Sender,
	eventSender event.EventSender,
	alerter notification.Alerter,
) TaskProcessor {
	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Queues: map[string]int{
				QueueCritical: 10,
				QueueDefault:  5,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("type", task.Type()).
					Bytes("payload", task.Payload()).Msg("process task failed")
			}),
			Logger: NewLogger(),
		},
	)

	return newRedisTaskProcessor(server, store, mailSender, eventSender, alerter)
}

func newRedisTaskProcessor(
	server *asynq.Server,
	store db.Store,
	mailSender mailer.Sender,
	eventSender event.EventSender,
	alerter notification.Alerter,
) *RedisTaskProcessor {
	return &RedisTaskProcessor{
		server:      server,
		store:       store,
		mailer:      mailSender,
		eventSender: eventSender,
		alerter:     alerter,
	}
}

// Start registers the task handlers for the mux, attaches the mux to the asynq server, and starts the server.
func (processor *RedisTaskProcessor) Start() error {
	mux := asynq.NewServeMux()

	mux.HandleFunc(TaskSendEmail, processor.ProcessTaskSendEmail)
	mux.HandleFunc(TaskSendNotification, processor.ProcessTaskSendNotification)
	mux.HandleFunc(TaskAdminAlert, processor.ProcessTaskAdminAlert)

	return processor.server.Start(mux)
}

func (processor *RedisTaskProcessor) Shutdown() {
	processor.server.Shutdown()
}
