package housekeeping

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/rs/zerolog/log"
)

// expireVIPMemberships revokes memberships whose end date has passed.
func (h *Housekeeper) expireVIPMemberships(ctx context.Context) (int, error) {
	users, err := h.store.ListExpiredVIPUsers(ctx, h.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list expired VIP users: %w", err)
	}

	expired := 0
	for _, user := range users {
		if err = h.store.RevokeVIP(ctx, user.ID); err != nil {
			log.Err(err).Str("user_id", user.ID).Msg("failed to revoke VIP membership")
			continue
		}
		expired++

		h.notify(ctx, &worker.PayloadSendNotification{
			RecipientID: user.ID,
			Title:       "VIP membership expired",
			Message:     "Your VIP membership has ended. Renew it to keep your discount on local sheep.",
			Type:        db.NotificationTypeVIP,
			ReferenceID: user.ID,
		})
	}

	return expired, nil
}

func (h *Housekeeper) deactivateExpiredAds(ctx context.Context) (int, error) {
	return h.store.DeactivateExpiredAds(ctx, h.now())
}

// purgeExpiredChallenges deletes stale registrations together with their unverified accounts, then expired reset codes.
func (h *Housekeeper) purgeExpiredChallenges(ctx context.Context) (int, error) {
	now := h.now()

	registrations, err := h.store.ListExpiredPendingRegistrations(ctx, now.Add(-pendingRegistrationGrace))
	if err != nil {
		return 0, fmt.Errorf("failed to list expired registrations: %w", err)
	}

	purged := 0
	for _, registration := range registrations {
		if _, err = h.store.GetUserByID(ctx, registration.UID); err == nil {
			log.Warn().Str("email", registration.Email).Msg("pending registration belongs to a verified user, keeping account")
		} else if errors.Is(err, db.ErrRecordNotFound) {
			if err = h.identity.DeleteUser(ctx, registration.UID); err != nil {
				log.Err(err).Str("email", registration.Email).Msg("failed to delete unverified account")
				continue
			}
		} else {
			log.Err(err).Str("email", registration.Email).Msg("failed to look up user")
			continue
		}

		if err = h.store.DeletePendingRegistration(ctx, registration.Email); err != nil {
			log.Err(err).Str("email", registration.Email).Msg("failed to delete pending registration")
			continue
		}
		purged++
	}

	resets, err := h.store.DeleteExpiredPasswordResets(ctx, now)
	if err != nil {
		return purged, fmt.Errorf("failed to delete expired password resets: %w", err)
	}

	return purged + resets, nil
}

// markOverdueInstallments flags unpaid installments past their due date and reminds the buyer.
func (h *Housekeeper) markOverdueInstallments(ctx context.Context) (int, error) {
	installments, err := h.store.ListOverdueInstallments(ctx, h.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue installments: %w", err)
	}

	marked := 0
	for _, installment := range installments {
		if err = h.store.MarkInstallmentOverdue(ctx, installment.ID); err != nil {
			log.Err(err).Str("installment_id", installment.ID).Msg("failed to mark installment overdue")
			continue
		}
		marked++

		h.notify(ctx, &worker.PayloadSendNotification{
			RecipientID: installment.BuyerID,
			Title:       "Installment overdue",
			Message: fmt.Sprintf("Installment #%d of %s was due on %s. Please upload your payment receipt.",
				installment.Sequence, util.FormatDZD(installment.Amount), installment.DueDate.Format("02/01/2006")),
			Type:        db.NotificationTypeInstallment,
			ReferenceID: installment.OrderID,
		})
	}

	return marked, nil
}

func (h *Housekeeper) notify(ctx context.Context, payload *worker.PayloadSendNotification) {
	if err := h.taskDistributor.DistributeTaskSendNotification(ctx, payload, asynq.Queue(worker.QueueDefault)); err != nil {
		log.Err(err).Str("recipient_id", payload.RecipientID).Msg("failed to enqueue notification")
	}
}
