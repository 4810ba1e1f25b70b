package db

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func (store *FirestoreStore) CreateNotification(ctx context.Context, notification Notification) (Notification, error) {
	notification.ID = uuid.NewString()
	notification.IsRead = false
	notification.CreatedAt = store.now()

	if _, err := store.collection(CollectionNotifications).Doc(notification.ID).Create(ctx, notification); err != nil {
		return Notification{}, translateError(err)
	}

	return notification, nil
}

func (store *FirestoreStore) ListNotifications(ctx context.Context, recipientID string, limit int) ([]Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = defaultListLimit
	}

	iter := store.collection(CollectionNotifications).
		Where("recipientId", "==", recipientID).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	return collectDocuments[Notification](iter)
}

// MarkNotificationRead flags a notification as read; notifications of other users are reported as missing.
func (store *FirestoreStore) MarkNotificationRead(ctx context.Context, recipientID, notificationID string) error {
	ref := store.collection(CollectionNotifications).Doc(notificationID)

	notification, err := getDocument[Notification](ctx, ref)
	if err != nil {
		return err
	}
	if notification.RecipientID != recipientID {
		return ErrRecordNotFound
	}

	_, err = ref.Update(ctx, []firestore.Update{{Path: "isRead", Value: true}})
	return translateError(err)
}
