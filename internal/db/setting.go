package db

import (
	"context"
	"errors"
)

// GetSettings returns the admin settings, falling back to DefaultSettings when never saved.
func (store *FirestoreStore) GetSettings(ctx context.Context) (Settings, error) {
	settings, err := getDocument[Settings](ctx, store.collection(CollectionSettings).Doc(settingsDocumentID))
	if errors.Is(err, ErrRecordNotFound) {
		return DefaultSettings(), nil
	}

	return settings, err
}

func (store *FirestoreStore) UpdateSettings(ctx context.Context, settings Settings) (Settings, error) {
	settings.UpdatedAt = store.now()

	if _, err := store.collection(CollectionSettings).Doc(settingsDocumentID).Set(ctx, settings); err != nil {
		return Settings{}, translateError(err)
	}

	return settings, nil
}
