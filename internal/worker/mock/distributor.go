package mockworker

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/stretchr/testify/mock"
)

// TaskDistributor is a testify mock of worker.TaskDistributor. Options are not recorded.
type TaskDistributor struct {
	mock.Mock
}

var _ worker.TaskDistributor = (*TaskDistributor)(nil)

func (m *TaskDistributor) DistributeTaskSendEmail(ctx context.Context, payload *worker.PayloadSendEmail, _ ...asynq.Option) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *TaskDistributor) DistributeTaskSendNotification(ctx context.Context, payload *worker.PayloadSendNotification, _ ...asynq.Option) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *TaskDistributor) DistributeTaskAdminAlert(ctx context.Context, payload *worker.PayloadAdminAlert, _ ...asynq.Option) error {
	return m.Called(ctx, payload).Error(0)
}
