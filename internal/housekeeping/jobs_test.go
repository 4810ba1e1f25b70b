package housekeeping

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/katatrina/sheep-market-BE/internal/db"
	mockdb "github.com/katatrina/sheep-market-BE/internal/db/mock"
	mockidentity "github.com/katatrina/sheep-market-BE/internal/identity/mock"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	mockworker "github.com/katatrina/sheep-market-BE/internal/worker/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)

func newTestHousekeeper() (*Housekeeper, *mockdb.Store, *mockidentity.Provider, *mockworker.TaskDistributor) {
	store := new(mockdb.Store)
	provider := new(mockidentity.Provider)
	distributor := new(mockworker.TaskDistributor)

	h := &Housekeeper{
		store:           store,
		identity:        provider,
		taskDistributor: distributor,
		now:             func() time.Time { return fixedNow },
	}

	return h, store, provider, distributor
}

func TestExpireVIPMemberships(t *testing.T) {
	h, store, _, distributor := newTestHousekeeper()
	ctx := context.Background()

	store.On("ListExpiredVIPUsers", ctx, fixedNow).Return([]db.User{{ID: "u1"}, {ID: "u2"}}, nil)
	store.On("RevokeVIP", ctx, "u1").Return(nil)
	store.On("RevokeVIP", ctx, "u2").Return(errors.New("boom"))
	distributor.On("DistributeTaskSendNotification", ctx, mock.MatchedBy(func(p *worker.PayloadSendNotification) bool {
		return p.RecipientID == "u1" && p.Type == db.NotificationTypeVIP
	})).Return(nil).Once()

	expired, err := h.expireVIPMemberships(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	store.AssertExpectations(t)
	distributor.AssertExpectations(t)
}

func TestPurgeExpiredChallenges(t *testing.T) {
	h, store, provider, _ := newTestHousekeeper()
	ctx := context.Background()

	store.On("ListExpiredPendingRegistrations", ctx, fixedNow.Add(-pendingRegistrationGrace)).Return([]db.PendingRegistration{
		{Email: "stale@example.com", UID: "uid-stale"},
		{Email: "verified@example.com", UID: "uid-verified"},
	}, nil)
	store.On("GetUserByID", ctx, "uid-stale").Return(db.User{}, db.ErrRecordNotFound)
	store.On("GetUserByID", ctx, "uid-verified").Return(db.User{ID: "uid-verified"}, nil)
	provider.On("DeleteUser", ctx, "uid-stale").Return(nil).Once()
	store.On("DeletePendingRegistration", ctx, "stale@example.com").Return(nil)
	store.On("DeletePendingRegistration", ctx, "verified@example.com").Return(nil)
	store.On("DeleteExpiredPasswordResets", ctx, fixedNow).Return(3, nil)

	purged, err := h.purgeExpiredChallenges(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, purged)

	provider.AssertExpectations(t)
	provider.AssertNotCalled(t, "DeleteUser", ctx, "uid-verified")
	store.AssertExpectations(t)
}

func TestMarkOverdueInstallments(t *testing.T) {
	h, store, _, distributor := newTestHousekeeper()
	ctx := context.Background()

	installment := db.Installment{
		ID:       "inst-2",
		OrderID:  "order-1",
		BuyerID:  "buyer-1",
		Sequence: 2,
		Amount:   25000,
		DueDate:  fixedNow.AddDate(0, 0, -3),
		Status:   db.InstallmentStatusUnpaid,
	}

	store.On("ListOverdueInstallments", ctx, fixedNow).Return([]db.Installment{installment}, nil)
	store.On("MarkInstallmentOverdue", ctx, "inst-2").Return(nil)
	distributor.On("DistributeTaskSendNotification", ctx, mock.MatchedBy(func(p *worker.PayloadSendNotification) bool {
		return p.RecipientID == "buyer-1" && p.ReferenceID == "order-1" &&
			strings.Contains(p.Message, "25,000 DA")
	})).Return(nil).Once()

	marked, err := h.markOverdueInstallments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	store.AssertExpectations(t)
	distributor.AssertExpectations(t)
}

func TestDeactivateExpiredAds(t *testing.T) {
	h, store, _, _ := newTestHousekeeper()
	ctx := context.Background()

	store.On("DeactivateExpiredAds", ctx, fixedNow).Return(2, nil)

	count, err := h.deactivateExpiredAds(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
