package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/rs/zerolog/log"
)

// PayloadSendEmail names the template to render and the data it needs.
type PayloadSendEmail struct {
	To       string         `json:"to"`
	Template string         `json:"template"`
	Data     map[string]any `json:"data"`
}

func (distributor *RedisTaskDistributor) DistributeTaskSendEmail(
	ctx context.Context,
	payload *PayloadSendEmail,
	opts ...asynq.Option,
) error {
	return distributor.enqueue(ctx, TaskSendEmail, payload, opts...)
}

func (processor *RedisTaskProcessor) ProcessTaskSendEmail(ctx context.Context, task *asynq.Task) error {
	var payload PayloadSendEmail
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	email, err := mailer.Render(payload.Template, payload.To, payload.Data)
	if err != nil {
		return fmt.Errorf("failed to render email: %v: %w", err, asynq.SkipRetry)
	}

	if err = processor.mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().Str("type", task.Type()).Str("template", payload.Template).
		Str("to", payload.To).Msg("task processed")

	return nil
}
