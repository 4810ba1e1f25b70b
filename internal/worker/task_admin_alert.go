package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

type PayloadAdminAlert struct {
	Message string `json:"message"`
}

func (distributor *RedisTaskDistributor) DistributeTaskAdminAlert(
	ctx context.Context,
	payload *PayloadAdminAlert,
	opts ...asynq.Option,
) error {
	return distributor.enqueue(ctx, TaskAdminAlert, payload, opts...)
}

func (processor *RedisTaskProcessor) ProcessTaskAdminAlert(ctx context.Context, task *asynq.Task) error {
	var payload PayloadAdminAlert
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	if err := processor.alerter.Alert(ctx, payload.Message); err != nil {
		return err
	}

	log.Info().Str("type", task.Type()).Msg("task processed")

	return nil
}
