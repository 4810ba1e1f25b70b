package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/event"
	"github.com/rs/zerolog/log"
)

// PayloadSendNotification contains all data of the task that we want to store in Redis.
type PayloadSendNotification struct {
	RecipientID string              `json:"recipient_id"`
	Title       string              `json:"title"`
	Message     string              `json:"message"`
	Type        db.NotificationType `json:"type"`
	ReferenceID string              `json:"reference_id"`
}

func (distributor *RedisTaskDistributor) DistributeTaskSendNotification(
	ctx context.Context,
	payload *PayloadSendNotification,
	opts ...asynq.Option,
) error {
	return distributor.enqueue(ctx, TaskSendNotification, payload, opts...)
}

// ProcessTaskSendNotification stores the notification and pushes it to the recipient's open streams.
func (processor *RedisTaskProcessor) ProcessTaskSendNotification(ctx context.Context, task *asynq.Task) error {
	var payload PayloadSendNotification
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	created, err := processor.store.CreateNotification(ctx, db.Notification{
		RecipientID: payload.RecipientID,
		Title:       payload.Title,
		Message:     payload.Message,
		Type:        payload.Type,
		ReferenceID: payload.ReferenceID,
	})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}

	if processor.eventSender != nil {
		processor.eventSender.Broadcast(event.Event{
			Topic: event.UserTopic(payload.RecipientID),
			Type:  event.EventTypeNotification,
			Data:  created,
		})
	}

	log.Info().Str("type", task.Type()).Str("recipient_id", payload.RecipientID).
		Str("reference_id", payload.ReferenceID).Msg("task processed")

	return nil
}
