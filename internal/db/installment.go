package db

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
)

func (store *FirestoreStore) ListInstallmentsByOrder(ctx context.Context, orderID string) ([]Installment, error) {
	iter := store.collection(CollectionInstallments).
		Where("orderId", "==", orderID).
		OrderBy("sequence", firestore.Asc).
		Documents(ctx)

	return collectDocuments[Installment](iter)
}

func (store *FirestoreStore) ListOverdueInstallments(ctx context.Context, now time.Time) ([]Installment, error) {
	iter := store.collection(CollectionInstallments).
		Where("status", "==", InstallmentStatusUnpaid).
		Where("dueDate", "<", now).
		Documents(ctx)

	return collectDocuments[Installment](iter)
}

func (store *FirestoreStore) MarkInstallmentOverdue(ctx context.Context, installmentID string) error {
	_, err := store.collection(CollectionInstallments).Doc(installmentID).Update(ctx, []firestore.Update{
		{Path: "status", Value: InstallmentStatusOverdue},
	})
	return translateError(err)
}
