package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/rs/zerolog/log"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// sendEmail enqueues a templated email. Failures are logged, the request itself already succeeded.
func (server *Server) sendEmail(ctx context.Context, to, template string, data map[string]any) {
	payload := &worker.PayloadSendEmail{
		To:       to,
		Template: template,
		Data:     data,
	}

	opts := []asynq.Option{
		asynq.MaxRetry(5),
		asynq.Queue(worker.QueueCritical),
	}

	if err := server.taskDistributor.DistributeTaskSendEmail(ctx, payload, opts...); err != nil {
		log.Err(err).Str("template", template).Str("to", to).Msg("failed to enqueue email")
	}
}

func (server *Server) notify(ctx context.Context, recipientID string, notificationType db.NotificationType, referenceID, title, message string) {
	payload := &worker.PayloadSendNotification{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Type:        notificationType,
		ReferenceID: referenceID,
	}

	if err := server.taskDistributor.DistributeTaskSendNotification(ctx, payload, asynq.Queue(worker.QueueDefault)); err != nil {
		log.Err(err).Str("recipient_id", recipientID).Msg("failed to enqueue notification")
	}
}

func (server *Server) alertAdmins(ctx context.Context, message string) {
	payload := &worker.PayloadAdminAlert{Message: message}

	if err := server.taskDistributor.DistributeTaskAdminAlert(ctx, payload, asynq.Queue(worker.QueueDefault)); err != nil {
		log.Err(err).Msg("failed to enqueue admin alert")
	}
}

// queryLimit reads the "limit" query parameter, falling back to the default page size.
func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultPageSize
	}

	return min(limit, maxPageSize)
}

func formatDuration(d time.Duration) string {
	if d >= time.Hour {
		return strconv.Itoa(int(d.Hours())) + " hours"
	}
	if d >= time.Minute {
		return strconv.Itoa(int(d.Minutes())) + " minutes"
	}
	return strconv.Itoa(int(d.Seconds())) + " seconds"
}
