package db

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func (store *FirestoreStore) CreateAd(ctx context.Context, ad Ad) (Ad, error) {
	now := store.now()
	ad.ID = uuid.NewString()
	ad.CreatedAt = now
	ad.UpdatedAt = now

	if _, err := store.collection(CollectionAds).Doc(ad.ID).Create(ctx, ad); err != nil {
		return Ad{}, translateError(err)
	}

	return ad, nil
}

func (store *FirestoreStore) GetAdByID(ctx context.Context, adID string) (Ad, error) {
	return getDocument[Ad](ctx, store.collection(CollectionAds).Doc(adID))
}

func (store *FirestoreStore) UpdateAd(ctx context.Context, ad Ad) (Ad, error) {
	ad.UpdatedAt = store.now()

	_, err := store.collection(CollectionAds).Doc(ad.ID).Update(ctx, []firestore.Update{
		{Path: "title", Value: ad.Title},
		{Path: "description", Value: ad.Description},
		{Path: "imageUrl", Value: ad.ImageURL},
		{Path: "linkUrl", Value: ad.LinkURL},
		{Path: "position", Value: ad.Position},
		{Path: "active", Value: ad.Active},
		{Path: "startsAt", Value: ad.StartsAt},
		{Path: "endsAt", Value: ad.EndsAt},
		{Path: "updatedAt", Value: ad.UpdatedAt},
	})
	if err != nil {
		return Ad{}, translateError(err)
	}

	return store.GetAdByID(ctx, ad.ID)
}

func (store *FirestoreStore) DeleteAd(ctx context.Context, adID string) error {
	_, err := store.collection(CollectionAds).Doc(adID).Delete(ctx, firestore.Exists)
	return translateError(err)
}

func (store *FirestoreStore) ListAds(ctx context.Context) ([]Ad, error) {
	return collectDocuments[Ad](store.collection(CollectionAds).OrderBy("createdAt", firestore.Desc).Documents(ctx))
}

// ListLiveAds returns the ads to display at now, ordered by position.
func (store *FirestoreStore) ListLiveAds(ctx context.Context, now time.Time) ([]Ad, error) {
	iter := store.collection(CollectionAds).
		Where("active", "==", true).
		Where("endsAt", ">", now).
		Documents(ctx)

	ads, err := collectDocuments[Ad](iter)
	if err != nil {
		return nil, err
	}

	live := make([]Ad, 0, len(ads))
	for _, ad := range ads {
		if ad.IsLive(now) {
			live = append(live, ad)
		}
	}

	sort.SliceStable(live, func(i, j int) bool {
		return live[i].Position < live[j].Position
	})

	return live, nil
}

func (store *FirestoreStore) DeactivateExpiredAds(ctx context.Context, now time.Time) (int, error) {
	iter := store.collection(CollectionAds).
		Where("active", "==", true).
		Where("endsAt", "<=", now).
		Documents(ctx)

	ads, err := collectDocuments[Ad](iter)
	if err != nil {
		return 0, err
	}

	deactivated := 0
	for _, ad := range ads {
		_, err = store.collection(CollectionAds).Doc(ad.ID).Update(ctx, []firestore.Update{
			{Path: "active", Value: false},
			{Path: "updatedAt", Value: now},
		})
		if err != nil {
			return deactivated, translateError(err)
		}
		deactivated++
	}

	return deactivated, nil
}
