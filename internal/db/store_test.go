package db

import (
	"context"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

const testMaxAttempts = 5

func savePendingRegistration(t *testing.T, store *FirestoreStore) PendingRegistration {
	t.Helper()

	registration := PendingRegistration{
		Email:    "amina@example.com",
		UID:      "uid-1",
		FullName: "Amina Benali",
		Role:     UserRoleBuyer,
		CodeChallenge: CodeChallenge{
			CodeHash:  "hash",
			ExpiresAt: testNow.Add(10 * time.Minute),
			CreatedAt: testNow,
		},
	}
	require.NoError(t, store.SavePendingRegistration(context.Background(), registration))

	return registration
}

func TestClaimPendingRegistrationAttemptTx(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	savePendingRegistration(t, store)

	for i := range testMaxAttempts {
		claimed, err := store.ClaimPendingRegistrationAttemptTx(ctx, "Amina@Example.com", testMaxAttempts)
		require.NoError(t, err)
		assert.Equal(t, int64(i), claimed.Attempts)
	}

	locked, err := store.ClaimPendingRegistrationAttemptTx(ctx, "amina@example.com", testMaxAttempts)
	require.NoError(t, err)
	assert.Equal(t, int64(testMaxAttempts), locked.Attempts)

	stored, err := store.GetPendingRegistration(ctx, "amina@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(testMaxAttempts), stored.Attempts)

	_, err = store.ClaimPendingRegistrationAttemptTx(ctx, "nobody@example.com", testMaxAttempts)
	require.ErrorIs(t, err, ErrRecordNotFound)
}

func TestClaimAttemptsUnderConcurrency(t *testing.T) {
	store := newTestStore(t)
	savePendingRegistration(t, store)

	var (
		mu      sync.Mutex
		counted = make(map[int64]int)
	)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			claimed, err := store.ClaimPendingRegistrationAttemptTx(context.Background(), "amina@example.com", testMaxAttempts)
			if err != nil {
				// Contention can exhaust the transaction retries; such a claim counts nothing.
				return nil
			}

			if claimed.Attempts < testMaxAttempts {
				mu.Lock()
				counted[claimed.Attempts]++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for attempt, times := range counted {
		assert.Equal(t, 1, times, "attempt %d was handed out more than once", attempt)
	}

	stored, err := store.GetPendingRegistration(context.Background(), "amina@example.com")
	require.NoError(t, err)
	assert.LessOrEqual(t, stored.Attempts, int64(testMaxAttempts))
	assert.Equal(t, int64(len(counted)), stored.Attempts)
}

func TestClaimPasswordResetAttemptTxSkipsExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SavePasswordReset(ctx, PasswordReset{
		Email: "amina@example.com",
		UID:   "uid-1",
		CodeChallenge: CodeChallenge{
			CodeHash:  "hash",
			ExpiresAt: testNow.Add(-time.Minute),
			CreatedAt: testNow.Add(-16 * time.Minute),
		},
	}))

	claimed, err := store.ClaimPasswordResetAttemptTx(ctx, "amina@example.com", testMaxAttempts)
	require.NoError(t, err)
	assert.Zero(t, claimed.Attempts)

	stored, err := store.GetPasswordReset(ctx, "amina@example.com")
	require.NoError(t, err)
	assert.Zero(t, stored.Attempts)
}

func createSheepWithStatus(t *testing.T, store *FirestoreStore, price int64, status SheepStatus) Sheep {
	t.Helper()
	ctx := context.Background()

	sheep, err := store.CreateSheep(ctx, Sheep{
		SellerID: "seller-1",
		Title:    "Ouled Djellal ram",
		Category: SheepCategoryRam,
		Origin:   SheepOriginLocal,
		Price:    price,
		Wilaya:   "Djelfa",
	})
	require.NoError(t, err)

	if status != SheepStatusPending {
		sheep, err = store.UpdateSheepStatus(ctx, UpdateSheepStatusParams{SheepID: sheep.ID, Status: status})
		require.NoError(t, err)
	}

	return sheep
}

func TestUpdateSheepChecksStatusInsideTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rejected := createSheepWithStatus(t, store, 60000, SheepStatusRejected)
	rejected.Title = "Rembi ram"
	updated, err := store.UpdateSheep(ctx, rejected)
	require.NoError(t, err)
	assert.Equal(t, "Rembi ram", updated.Title)
	assert.Equal(t, SheepStatusPending, updated.Status)

	reserved := createSheepWithStatus(t, store, 60000, SheepStatusReserved)
	reserved.Title = "Changed after the order"
	_, err = store.UpdateSheep(ctx, reserved)
	require.ErrorIs(t, err, ErrSheepUnavailable)

	stored, err := store.GetSheepByID(ctx, reserved.ID)
	require.NoError(t, err)
	assert.Equal(t, SheepStatusReserved, stored.Status)
	assert.Equal(t, "Ouled Djellal ram", stored.Title)
}

func TestDeleteSheepKeepsOrderedListing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sold := createSheepWithStatus(t, store, 60000, SheepStatusSold)
	require.ErrorIs(t, store.DeleteSheep(ctx, sold.ID), ErrSheepUnavailable)

	_, err := store.GetSheepByID(ctx, sold.ID)
	require.NoError(t, err)

	approved := createSheepWithStatus(t, store, 60000, SheepStatusApproved)
	require.NoError(t, store.DeleteSheep(ctx, approved.ID))

	_, err = store.GetSheepByID(ctx, approved.ID)
	require.ErrorIs(t, err, ErrRecordNotFound)

	require.ErrorIs(t, store.DeleteSheep(ctx, "missing"), ErrRecordNotFound)
}

func TestDeleteAdRequestOnlyWhilePending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pending, err := store.CreateAdRequest(ctx, AdRequest{SellerID: "seller-1", Title: "Eid offer", DurationDays: 7})
	require.NoError(t, err)
	require.NoError(t, store.DeleteAdRequest(ctx, pending.ID))

	decided, err := store.CreateAdRequest(ctx, AdRequest{SellerID: "seller-1", Title: "Eid offer", DurationDays: 7})
	require.NoError(t, err)
	_, err = store.RejectAdRequestTx(ctx, RejectAdRequestTxParams{RequestID: decided.ID, RejectorID: "admin-1", Reason: "blurry"})
	require.NoError(t, err)

	require.ErrorIs(t, store.DeleteAdRequest(ctx, decided.ID), ErrAlreadyDecided)

	stored, err := store.GetAdRequestByID(ctx, decided.ID)
	require.NoError(t, err)
	assert.Equal(t, AdRequestStatusRejected, stored.Status)
}

func TestCancelledInstallmentOrderVoidsSchedule(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sheep := createSheepWithStatus(t, store, 90000, SheepStatusApproved)

	created, err := store.CreateOrderTx(ctx, CreateOrderTxParams{
		Order: Order{
			BuyerID:          "buyer-1",
			SellerID:         sheep.SellerID,
			SheepID:          sheep.ID,
			TotalAmount:      90000,
			PaymentMethod:    PaymentMethodInstallments,
			InstallmentCount: 3,
		},
		Installments: []Installment{
			{Sequence: 1, Amount: 30000, DueDate: testNow.AddDate(0, -1, 0)},
			{Sequence: 2, Amount: 30000, DueDate: testNow.AddDate(0, 0, -1)},
			{Sequence: 3, Amount: 30000, DueDate: testNow.AddDate(0, 1, 0)},
		},
	})
	require.NoError(t, err)

	_, err = store.collection(CollectionInstallments).Doc(created.Installments[0].ID).Update(ctx, []firestore.Update{
		{Path: "status", Value: InstallmentStatusPaid},
	})
	require.NoError(t, err)

	order, err := store.UpdateOrderStatusTx(ctx, UpdateOrderStatusTxParams{
		OrderID: created.Order.ID,
		Status:  OrderStatusCancelled,
		Reason:  "changed my mind",
	})
	require.NoError(t, err)
	assert.Equal(t, OrderStatusCancelled, order.Status)

	installments, err := store.ListInstallmentsByOrder(ctx, created.Order.ID)
	require.NoError(t, err)
	require.Len(t, installments, 3)
	assert.Equal(t, InstallmentStatusPaid, installments[0].Status)
	assert.Equal(t, InstallmentStatusVoid, installments[1].Status)
	assert.Equal(t, InstallmentStatusVoid, installments[2].Status)

	overdue, err := store.ListOverdueInstallments(ctx, testNow.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Empty(t, overdue)

	released, err := store.GetSheepByID(ctx, sheep.ID)
	require.NoError(t, err)
	assert.Equal(t, SheepStatusApproved, released.Status)
}

func TestRejectPaymentTxOnlyDeclinesVIPPayments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	orderPayment, err := store.CreatePayment(ctx, Payment{UserID: "buyer-1", Type: PaymentTypeOrder, OrderID: "order-1", Amount: 90000})
	require.NoError(t, err)

	_, err = store.RejectPaymentTx(ctx, RejectPaymentTxParams{PaymentID: orderPayment.ID, ReviewerID: "admin-1", Reason: "no"})
	require.ErrorIs(t, err, ErrRecordNotFound)

	stored, err := store.GetPaymentByID(ctx, orderPayment.ID)
	require.NoError(t, err)
	assert.Equal(t, PaymentRecordStatusPending, stored.Status)

	vipPayment, err := store.CreatePayment(ctx, Payment{UserID: "buyer-1", Type: PaymentTypeVIP, Amount: 7500})
	require.NoError(t, err)

	rejected, err := store.RejectPaymentTx(ctx, RejectPaymentTxParams{PaymentID: vipPayment.ID, ReviewerID: "admin-1", Reason: "receipt unreadable"})
	require.NoError(t, err)
	assert.Equal(t, PaymentRecordStatusRejected, rejected.Status)
	assert.Equal(t, "receipt unreadable", rejected.RejectionReason)
}

func TestListSheepPriceRangeKeepsNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createdAt := []time.Duration{-3 * time.Hour, 0, -time.Hour}
	prices := []int64{40000, 70000, 55000}
	ids := make([]string, len(prices))
	for i := range prices {
		store.now = func() time.Time { return testNow.Add(createdAt[i]) }
		ids[i] = createSheepWithStatus(t, store, prices[i], SheepStatusApproved).ID
	}
	store.now = func() time.Time { return testNow }

	sheep, err := store.ListSheep(ctx, ListSheepParams{
		Status:   string(SheepStatusApproved),
		MinPrice: 30000,
		MaxPrice: 80000,
	})
	require.NoError(t, err)
	require.Len(t, sheep, 3)
	assert.Equal(t, ids[1], sheep[0].ID)
	assert.Equal(t, ids[2], sheep[1].ID)
	assert.Equal(t, ids[0], sheep[2].ID)

	limited, err := store.ListSheep(ctx, ListSheepParams{MinPrice: 50000, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, ids[1], limited[0].ID)
}
