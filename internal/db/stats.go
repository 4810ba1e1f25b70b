package db

import (
	"context"
	"time"
)

func (store *FirestoreStore) CountUsers(ctx context.Context, role string) (int64, error) {
	query := store.collection(CollectionUsers).Query
	if role != "" {
		query = query.Where("role", "==", role)
	}

	return countQuery(ctx, query)
}

func (store *FirestoreStore) CountSheep(ctx context.Context, status string) (int64, error) {
	query := store.collection(CollectionSheep).Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	return countQuery(ctx, query)
}

func (store *FirestoreStore) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	return countQuery(ctx, store.collection(CollectionOrders).Where("createdAt", ">=", since))
}

// SumPaymentsSince totals approved payments of a type created since the given time.
func (store *FirestoreStore) SumPaymentsSince(ctx context.Context, paymentType PaymentType, since time.Time) (int64, error) {
	query := store.collection(CollectionPayments).
		Where("type", "==", paymentType).
		Where("status", "==", PaymentRecordStatusApproved).
		Where("createdAt", ">=", since)

	return sumQuery(ctx, query, "amount")
}

func (store *FirestoreStore) CountReceipts(ctx context.Context, status string) (int64, error) {
	query := store.collection(CollectionCIBReceipts).Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	return countQuery(ctx, query)
}

func (store *FirestoreStore) CountPayments(ctx context.Context, paymentType PaymentType, status string) (int64, error) {
	query := store.collection(CollectionPayments).Where("type", "==", paymentType)
	if status != "" {
		query = query.Where("status", "==", status)
	}

	return countQuery(ctx, query)
}

func (store *FirestoreStore) CountAdRequests(ctx context.Context, status string) (int64, error) {
	query := store.collection(CollectionAdRequests).Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	return countQuery(ctx, query)
}
