package db

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type CreateOrderTxParams struct {
	Order        Order
	Installments []Installment
}

type CreateOrderTxResult struct {
	Order        Order         `json:"order"`
	Installments []Installment `json:"installments"`
}

// CreateOrderTx reserves the sheep and writes the order with its installment schedule.
// For foreign-origin sheep the yearly national-ID rule is re-checked inside the transaction.
func (store *FirestoreStore) CreateOrderTx(ctx context.Context, arg CreateOrderTxParams) (CreateOrderTxResult, error) {
	var result CreateOrderTxResult

	now := store.now()
	order := arg.Order
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.Status = OrderStatusPending
	order.PaymentStatus = PaymentStatusUnpaid
	order.Year = int64(now.Year())
	order.CreatedAt = now
	order.UpdatedAt = now

	installments := make([]Installment, len(arg.Installments))
	for i, installment := range arg.Installments {
		installment.ID = uuid.NewString()
		installment.OrderID = order.ID
		installment.BuyerID = order.BuyerID
		installment.Status = InstallmentStatusUnpaid
		installments[i] = installment
	}

	sheepRef := store.collection(CollectionSheep).Doc(order.SheepID)
	orderRef := store.collection(CollectionOrders).Doc(order.ID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		sheep, err := getDocumentTx[Sheep](tx, sheepRef)
		if err != nil {
			return fmt.Errorf("failed to get sheep %s: %w", order.SheepID, err)
		}

		if sheep.Status != SheepStatusApproved {
			return ErrSheepUnavailable
		}

		if sheep.Origin == SheepOriginForeign {
			duplicated, err := store.foreignOrderExists(tx.Documents(store.foreignOrdersQuery(order.NationalIDHash, now.Year())))
			if err != nil {
				return err
			}
			if duplicated {
				return ErrDuplicateNationalID
			}
		}

		if err = tx.Update(sheepRef, []firestore.Update{
			{Path: "status", Value: SheepStatusReserved},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}

		if err = tx.Create(orderRef, order); err != nil {
			return err
		}

		for _, installment := range installments {
			ref := store.collection(CollectionInstallments).Doc(installment.ID)
			if err = tx.Create(ref, installment); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return result, translateError(err)
	}

	result.Order = order
	result.Installments = installments
	return result, nil
}

func (store *FirestoreStore) foreignOrdersQuery(nationalIDHash string, year int) firestore.Query {
	return store.collection(CollectionOrders).
		Where("nationalIdHash", "==", nationalIDHash).
		Where("year", "==", year).
		Where("sheepOrigin", "==", SheepOriginForeign)
}

// foreignOrderExists reports whether any order from the iterator still counts against the yearly quota.
func (store *FirestoreStore) foreignOrderExists(iter *firestore.DocumentIterator) (bool, error) {
	orders, err := collectDocuments[Order](iter)
	if err != nil {
		return false, err
	}

	for _, order := range orders {
		if !order.Status.ReleasesSheep() {
			return true, nil
		}
	}

	return false, nil
}

// HasForeignOrderInYear reports whether the national ID already holds a live foreign-sheep order in year.
func (store *FirestoreStore) HasForeignOrderInYear(ctx context.Context, nationalIDHash string, year int) (bool, error) {
	return store.foreignOrderExists(store.foreignOrdersQuery(nationalIDHash, year).Documents(ctx))
}

func (store *FirestoreStore) GetOrderByID(ctx context.Context, orderID string) (Order, error) {
	return getDocument[Order](ctx, store.collection(CollectionOrders).Doc(orderID))
}

type ListOrdersParams struct {
	BuyerID  string
	SellerID string
	Status   string
	Limit    int
}

func (store *FirestoreStore) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	query := store.collection(CollectionOrders).Query

	if arg.BuyerID != "" {
		query = query.Where("buyerId", "==", arg.BuyerID)
	}
	if arg.SellerID != "" {
		query = query.Where("sellerId", "==", arg.SellerID)
	}
	if arg.Status != "" {
		query = query.Where("status", "==", arg.Status)
	}

	limit := arg.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}

	return collectDocuments[Order](query.OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx))
}

type UpdateOrderStatusTxParams struct {
	OrderID string
	Status  OrderStatus
	Reason  string
	// AllowedFrom restricts the current status further than the transition table, e.g. buyers cancel only pending orders.
	AllowedFrom []OrderStatus
}

// UpdateOrderStatusTx moves an order along its lifecycle and keeps the sheep status in step.
// Cancelling or rejecting an installment order voids the installments still owed.
func (store *FirestoreStore) UpdateOrderStatusTx(ctx context.Context, arg UpdateOrderStatusTxParams) (Order, error) {
	var order Order

	now := store.now()
	orderRef := store.collection(CollectionOrders).Doc(arg.OrderID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		order, err = getDocumentTx[Order](tx, orderRef)
		if err != nil {
			return err
		}

		if !order.Status.CanTransitionTo(arg.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, arg.Status)
		}
		if len(arg.AllowedFrom) > 0 && !slices.Contains(arg.AllowedFrom, order.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, arg.Status)
		}

		sheepRef := store.collection(CollectionSheep).Doc(order.SheepID)
		sheep, err := getDocumentTx[Sheep](tx, sheepRef)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		sheepExists := err == nil

		var installments []Installment
		if arg.Status.ReleasesSheep() && order.PaymentMethod == PaymentMethodInstallments {
			iter := tx.Documents(store.collection(CollectionInstallments).Where("orderId", "==", order.ID))
			if installments, err = collectDocuments[Installment](iter); err != nil {
				return err
			}
		}

		updates := []firestore.Update{
			{Path: "status", Value: arg.Status},
			{Path: "updatedAt", Value: now},
		}
		if arg.Status.ReleasesSheep() {
			updates = append(updates, firestore.Update{Path: "cancelReason", Value: arg.Reason})
		}
		// Cash is collected on delivery.
		settleCash := arg.Status == OrderStatusDelivered && order.PaymentMethod == PaymentMethodCash
		if settleCash {
			updates = append(updates, firestore.Update{Path: "paymentStatus", Value: PaymentStatusPaid})
		}
		if err = tx.Update(orderRef, updates); err != nil {
			return err
		}

		if sheepExists {
			var sheepStatus SheepStatus
			switch {
			case arg.Status.ReleasesSheep() && sheep.Status == SheepStatusReserved:
				sheepStatus = SheepStatusApproved
			case arg.Status == OrderStatusDelivered:
				sheepStatus = SheepStatusSold
			}

			if sheepStatus != "" {
				if err = tx.Update(sheepRef, []firestore.Update{
					{Path: "status", Value: sheepStatus},
					{Path: "updatedAt", Value: now},
				}); err != nil {
					return err
				}
			}
		}

		for _, installment := range installments {
			if !installment.Voidable() {
				continue
			}
			if err = tx.Update(store.collection(CollectionInstallments).Doc(installment.ID), []firestore.Update{
				{Path: "status", Value: InstallmentStatusVoid},
			}); err != nil {
				return err
			}
		}

		order.Status = arg.Status
		order.UpdatedAt = now
		if arg.Status.ReleasesSheep() {
			order.CancelReason = arg.Reason
		}
		if settleCash {
			order.PaymentStatus = PaymentStatusPaid
		}
		return nil
	})
	if err != nil {
		return Order{}, translateError(err)
	}

	return order, nil
}
