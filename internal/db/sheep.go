package db

import (
	"context"
	"slices"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

const defaultListLimit = 50

func (store *FirestoreStore) CreateSheep(ctx context.Context, sheep Sheep) (Sheep, error) {
	now := store.now()
	if sheep.ID == "" {
		sheep.ID = uuid.NewString()
	}
	sheep.Status = SheepStatusPending
	sheep.CreatedAt = now
	sheep.UpdatedAt = now

	if _, err := store.collection(CollectionSheep).Doc(sheep.ID).Create(ctx, sheep); err != nil {
		return Sheep{}, translateError(err)
	}

	return sheep, nil
}

func (store *FirestoreStore) GetSheepByID(ctx context.Context, sheepID string) (Sheep, error) {
	return getDocument[Sheep](ctx, store.collection(CollectionSheep).Doc(sheepID))
}

func (store *FirestoreStore) GetSheepBySlug(ctx context.Context, slug string) (Sheep, error) {
	iter := store.collection(CollectionSheep).Where("slug", "==", slug).Limit(1).Documents(ctx)

	sheep, err := collectDocuments[Sheep](iter)
	if err != nil {
		return Sheep{}, err
	}
	if len(sheep) == 0 {
		return Sheep{}, ErrRecordNotFound
	}

	return sheep[0], nil
}

// UpdateSheep overwrites the seller-editable fields and sends the listing back to review.
// It fails with ErrSheepUnavailable once the listing is approved, reserved or sold.
func (store *FirestoreStore) UpdateSheep(ctx context.Context, sheep Sheep) (Sheep, error) {
	ref := store.collection(CollectionSheep).Doc(sheep.ID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := getDocumentTx[Sheep](tx, ref)
		if err != nil {
			return err
		}

		if !current.Status.Editable() {
			return ErrSheepUnavailable
		}

		return tx.Update(ref, []firestore.Update{
			{Path: "title", Value: sheep.Title},
			{Path: "breed", Value: sheep.Breed},
			{Path: "category", Value: sheep.Category},
			{Path: "origin", Value: sheep.Origin},
			{Path: "ageMonths", Value: sheep.AgeMonths},
			{Path: "weightKg", Value: sheep.WeightKg},
			{Path: "price", Value: sheep.Price},
			{Path: "description", Value: sheep.Description},
			{Path: "images", Value: sheep.Images},
			{Path: "wilaya", Value: sheep.Wilaya},
			{Path: "status", Value: SheepStatusPending},
			{Path: "rejectionReason", Value: ""},
			{Path: "updatedAt", Value: store.now()},
		})
	})
	if err != nil {
		return Sheep{}, translateError(err)
	}

	return getDocument[Sheep](ctx, ref)
}

type UpdateSheepStatusParams struct {
	SheepID         string
	Status          SheepStatus
	RejectionReason string
}

func (store *FirestoreStore) UpdateSheepStatus(ctx context.Context, arg UpdateSheepStatusParams) (Sheep, error) {
	ref := store.collection(CollectionSheep).Doc(arg.SheepID)

	_, err := ref.Update(ctx, []firestore.Update{
		{Path: "status", Value: arg.Status},
		{Path: "rejectionReason", Value: arg.RejectionReason},
		{Path: "updatedAt", Value: store.now()},
	})
	if err != nil {
		return Sheep{}, translateError(err)
	}

	return getDocument[Sheep](ctx, ref)
}

// DeleteSheep removes the listing unless an order holds it, in which case it fails with ErrSheepUnavailable.
func (store *FirestoreStore) DeleteSheep(ctx context.Context, sheepID string) error {
	ref := store.collection(CollectionSheep).Doc(sheepID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		current, err := getDocumentTx[Sheep](tx, ref)
		if err != nil {
			return err
		}

		if !current.Status.Deletable() {
			return ErrSheepUnavailable
		}

		return tx.Delete(ref)
	})
	return translateError(err)
}

type ListSheepParams struct {
	Status   string
	SellerID string
	Category string
	Origin   string
	Wilaya   string
	MinPrice int64
	MaxPrice int64
	Limit    int
}

func (store *FirestoreStore) ListSheep(ctx context.Context, arg ListSheepParams) ([]Sheep, error) {
	query := store.collection(CollectionSheep).Query

	if arg.Status != "" {
		query = query.Where("status", "==", arg.Status)
	}
	if arg.SellerID != "" {
		query = query.Where("sellerId", "==", arg.SellerID)
	}
	if arg.Category != "" {
		query = query.Where("category", "==", arg.Category)
	}
	if arg.Origin != "" {
		query = query.Where("origin", "==", arg.Origin)
	}
	if arg.Wilaya != "" {
		query = query.Where("wilaya", "==", arg.Wilaya)
	}

	limit := arg.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	if arg.MinPrice <= 0 && arg.MaxPrice <= 0 {
		return collectDocuments[Sheep](query.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx))
	}

	// A price range forces the first ordering onto price, so the newest-first order is restored in memory.
	if arg.MinPrice > 0 {
		query = query.Where("price", ">=", arg.MinPrice)
	}
	if arg.MaxPrice > 0 {
		query = query.Where("price", "<=", arg.MaxPrice)
	}

	sheep, err := collectDocuments[Sheep](query.OrderBy("price", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, err
	}

	return newestFirst(sheep, limit), nil
}

// newestFirst sorts sheep by creation time, most recent first, and keeps at most limit of them.
func newestFirst(sheep []Sheep, limit int) []Sheep {
	slices.SortStableFunc(sheep, func(a, b Sheep) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	if len(sheep) > limit {
		sheep = sheep[:limit]
	}
	return sheep
}
