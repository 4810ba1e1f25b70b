package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

func (store *FirestoreStore) CreateAdRequest(ctx context.Context, request AdRequest) (AdRequest, error) {
	request.ID = uuid.NewString()
	request.Status = AdRequestStatusPending
	request.CreatedAt = store.now()

	if _, err := store.collection(CollectionAdRequests).Doc(request.ID).Create(ctx, request); err != nil {
		return AdRequest{}, translateError(err)
	}

	return request, nil
}

func (store *FirestoreStore) GetAdRequestByID(ctx context.Context, requestID string) (AdRequest, error) {
	return getDocument[AdRequest](ctx, store.collection(CollectionAdRequests).Doc(requestID))
}

type ListAdRequestsParams struct {
	SellerID string
	Status   string
}

func (store *FirestoreStore) ListAdRequests(ctx context.Context, arg ListAdRequestsParams) ([]AdRequest, error) {
	query := store.collection(CollectionAdRequests).Query

	if arg.SellerID != "" {
		query = query.Where("sellerId", "==", arg.SellerID)
	}
	if arg.Status != "" {
		query = query.Where("status", "==", arg.Status)
	}

	return collectDocuments[AdRequest](query.OrderBy("createdAt", firestore.Desc).Documents(ctx))
}

// DeleteAdRequest withdraws a pending request. Decided requests fail with ErrAlreadyDecided.
func (store *FirestoreStore) DeleteAdRequest(ctx context.Context, requestID string) error {
	ref := store.collection(CollectionAdRequests).Doc(requestID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		request, err := getDocumentTx[AdRequest](tx, ref)
		if err != nil {
			return err
		}
		if request.Status != AdRequestStatusPending {
			return ErrAlreadyDecided
		}

		return tx.Delete(ref)
	})
	return translateError(err)
}

type ApproveAdRequestTxParams struct {
	RequestID  string
	ApproverID string
	Position   int64
}

type ApproveAdRequestTxResult struct {
	AdRequest AdRequest `json:"ad_request"`
	Ad        Ad        `json:"ad"`
}

// ApproveAdRequestTx publishes the requested ad for its duration starting now.
func (store *FirestoreStore) ApproveAdRequestTx(ctx context.Context, arg ApproveAdRequestTxParams) (ApproveAdRequestTxResult, error) {
	var result ApproveAdRequestTxResult

	now := store.now()
	requestRef := store.collection(CollectionAdRequests).Doc(arg.RequestID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		request, err := getDocumentTx[AdRequest](tx, requestRef)
		if err != nil {
			return err
		}
		if request.Status != AdRequestStatusPending {
			return ErrAlreadyDecided
		}

		ad := Ad{
			ID:              uuid.NewString(),
			Title:           request.Title,
			Description:     request.Description,
			ImageURL:        request.ImageURL,
			LinkURL:         request.LinkURL,
			Position:        arg.Position,
			Active:          true,
			StartsAt:        now,
			EndsAt:          now.AddDate(0, 0, int(request.DurationDays)),
			CreatedBy:       arg.ApproverID,
			SourceRequestID: request.ID,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err = tx.Create(store.collection(CollectionAds).Doc(ad.ID), ad); err != nil {
			return fmt.Errorf("failed to create ad: %w", err)
		}

		request.Status = AdRequestStatusApproved
		request.AdID = ad.ID
		request.DecidedBy = arg.ApproverID
		request.DecidedAt = &now
		if err = tx.Update(requestRef, []firestore.Update{
			{Path: "status", Value: request.Status},
			{Path: "adId", Value: ad.ID},
			{Path: "decidedBy", Value: arg.ApproverID},
			{Path: "decidedAt", Value: now},
		}); err != nil {
			return err
		}

		result = ApproveAdRequestTxResult{AdRequest: request, Ad: ad}
		return nil
	})
	if err != nil {
		return ApproveAdRequestTxResult{}, translateError(err)
	}

	return result, nil
}

type RejectAdRequestTxParams struct {
	RequestID  string
	RejectorID string
	Reason     string
}

func (store *FirestoreStore) RejectAdRequestTx(ctx context.Context, arg RejectAdRequestTxParams) (AdRequest, error) {
	var request AdRequest

	now := store.now()
	requestRef := store.collection(CollectionAdRequests).Doc(arg.RequestID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		request, err = getDocumentTx[AdRequest](tx, requestRef)
		if err != nil {
			return err
		}
		if request.Status != AdRequestStatusPending {
			return ErrAlreadyDecided
		}

		request.Status = AdRequestStatusRejected
		request.RejectionReason = arg.Reason
		request.DecidedBy = arg.RejectorID
		request.DecidedAt = &now

		return tx.Update(requestRef, []firestore.Update{
			{Path: "status", Value: request.Status},
			{Path: "rejectionReason", Value: arg.Reason},
			{Path: "decidedBy", Value: arg.RejectorID},
			{Path: "decidedAt", Value: now},
		})
	})
	if err != nil {
		return AdRequest{}, translateError(err)
	}

	return request, nil
}
