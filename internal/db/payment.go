package db

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func (store *FirestoreStore) CreatePayment(ctx context.Context, payment Payment) (Payment, error) {
	payment.ID = uuid.NewString()
	payment.CreatedAt = store.now()
	if payment.Status == "" {
		payment.Status = PaymentRecordStatusPending
	}

	if _, err := store.collection(CollectionPayments).Doc(payment.ID).Create(ctx, payment); err != nil {
		return Payment{}, translateError(err)
	}

	return payment, nil
}

func (store *FirestoreStore) GetPaymentByID(ctx context.Context, paymentID string) (Payment, error) {
	return getDocument[Payment](ctx, store.collection(CollectionPayments).Doc(paymentID))
}

type ListPaymentsParams struct {
	UserID string
	Type   PaymentType
	Status string
}

func (store *FirestoreStore) ListPayments(ctx context.Context, arg ListPaymentsParams) ([]Payment, error) {
	query := store.collection(CollectionPayments).Query

	if arg.UserID != "" {
		query = query.Where("userId", "==", arg.UserID)
	}
	if arg.Type != "" {
		query = query.Where("type", "==", arg.Type)
	}
	if arg.Status != "" {
		query = query.Where("status", "==", arg.Status)
	}

	return collectDocuments[Payment](query.OrderBy("createdAt", firestore.Desc).Limit(200).Documents(ctx))
}

type ApproveVIPPaymentTxParams struct {
	PaymentID    string
	ReviewerID   string
	DurationDays int64
}

type ApproveVIPPaymentTxResult struct {
	Payment Payment `json:"payment"`
	User    User    `json:"user"`
}

// ApproveVIPPaymentTx accepts a VIP upgrade payment and extends the membership from the later of now and the current expiry.
func (store *FirestoreStore) ApproveVIPPaymentTx(ctx context.Context, arg ApproveVIPPaymentTxParams) (ApproveVIPPaymentTxResult, error) {
	var result ApproveVIPPaymentTxResult

	now := store.now()
	paymentRef := store.collection(CollectionPayments).Doc(arg.PaymentID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		payment, err := getDocumentTx[Payment](tx, paymentRef)
		if err != nil {
			return err
		}
		if payment.Type != PaymentTypeVIP {
			return fmt.Errorf("payment %s is not a VIP payment: %w", payment.ID, ErrRecordNotFound)
		}
		if payment.Status != PaymentRecordStatusPending {
			return ErrAlreadyDecided
		}

		userRef := store.collection(CollectionUsers).Doc(payment.UserID)
		user, err := getDocumentTx[User](tx, userRef)
		if err != nil {
			return fmt.Errorf("failed to get user %s: %w", payment.UserID, err)
		}

		expiresAt := VIPExpiry(user, now, arg.DurationDays)

		payment.Status = PaymentRecordStatusApproved
		payment.ReviewedBy = arg.ReviewerID
		payment.ReviewedAt = &now
		if err = tx.Update(paymentRef, []firestore.Update{
			{Path: "status", Value: payment.Status},
			{Path: "reviewedBy", Value: arg.ReviewerID},
			{Path: "reviewedAt", Value: now},
		}); err != nil {
			return err
		}

		user.IsVIP = true
		user.VIPExpiresAt = &expiresAt
		user.UpdatedAt = now
		if err = tx.Update(userRef, []firestore.Update{
			{Path: "isVip", Value: true},
			{Path: "vipExpiresAt", Value: expiresAt},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}

		result = ApproveVIPPaymentTxResult{Payment: payment, User: user}
		return nil
	})
	if err != nil {
		return ApproveVIPPaymentTxResult{}, translateError(err)
	}

	return result, nil
}

// VIPExpiry stacks a new membership period on top of any running one.
func VIPExpiry(user User, now time.Time, durationDays int64) time.Time {
	start := now
	if user.HasActiveVIP(now) {
		start = *user.VIPExpiresAt
	}

	return start.AddDate(0, 0, int(durationDays))
}

type RejectPaymentTxParams struct {
	PaymentID  string
	ReviewerID string
	Reason     string
}

// RejectPaymentTx declines a pending VIP upgrade payment. Other payment types are reported as not found.
func (store *FirestoreStore) RejectPaymentTx(ctx context.Context, arg RejectPaymentTxParams) (Payment, error) {
	var payment Payment

	now := store.now()
	paymentRef := store.collection(CollectionPayments).Doc(arg.PaymentID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		payment, err = getDocumentTx[Payment](tx, paymentRef)
		if err != nil {
			return err
		}
		if payment.Type != PaymentTypeVIP {
			return fmt.Errorf("payment %s is not a VIP payment: %w", payment.ID, ErrRecordNotFound)
		}
		if payment.Status != PaymentRecordStatusPending {
			return ErrAlreadyDecided
		}

		payment.Status = PaymentRecordStatusRejected
		payment.RejectionReason = arg.Reason
		payment.ReviewedBy = arg.ReviewerID
		payment.ReviewedAt = &now

		return tx.Update(paymentRef, []firestore.Update{
			{Path: "status", Value: payment.Status},
			{Path: "rejectionReason", Value: arg.Reason},
			{Path: "reviewedBy", Value: arg.ReviewerID},
			{Path: "reviewedAt", Value: now},
		})
	})
	if err != nil {
		return Payment{}, translateError(err)
	}

	return payment, nil
}
