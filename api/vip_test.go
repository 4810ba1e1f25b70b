package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateVIPRequest(t *testing.T) {
	user := newUser("buyer-1", db.UserRoleBuyer)
	body := map[string]any{"receipt_url": "https://i.ibb.co/xyz/vip.jpg", "transaction_ref": "CIB-1"}
	pendingFilter := db.ListPaymentsParams{
		UserID: user.ID,
		Type:   db.PaymentTypeVIP,
		Status: string(db.PaymentRecordStatusPending),
	}

	t.Run("OK", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)

		settings := db.DefaultSettings()
		settings.VIPPrice = 7500
		deps.store.On("ListPayments", mock.Anything, pendingFilter).Return([]db.Payment{}, nil)
		deps.store.On("GetSettings", mock.Anything).Return(settings, nil)
		deps.store.On("CreatePayment", mock.Anything, db.Payment{
			UserID:         user.ID,
			Type:           db.PaymentTypeVIP,
			Amount:         7500,
			Method:         db.PaymentMethodCIB,
			ReceiptURL:     "https://i.ibb.co/xyz/vip.jpg",
			TransactionRef: "CIB-1",
			Status:         db.PaymentRecordStatusPending,
		}).Return(db.Payment{ID: "payment-1", UserID: user.ID, Type: db.PaymentTypeVIP, Amount: 7500, Status: db.PaymentRecordStatusPending}, nil)
		deps.distributor.On("DistributeTaskAdminAlert", mock.Anything, mock.Anything).Return(nil)

		request := newRequest(t, http.MethodPost, "/v1/vip/requests", body)
		addAuthorization(t, server, request, user)

		recorder := serve(server, request)
		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, int64(7500), decodeBody[db.Payment](t, recorder).Amount)
	})

	t.Run("OnePendingPerUser", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(user)
		deps.store.On("ListPayments", mock.Anything, pendingFilter).Return([]db.Payment{{ID: "payment-0"}}, nil)

		request := newRequest(t, http.MethodPost, "/v1/vip/requests", body)
		addAuthorization(t, server, request, user)

		assert.Equal(t, http.StatusConflict, serve(server, request).Code)
	})
}

func TestApproveVIPRequest(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)

	server, deps := newTestServer(t)
	deps.authenticate(admin)

	settings := db.DefaultSettings()
	deps.store.On("GetSettings", mock.Anything).Return(settings, nil)

	member := newUser("buyer-1", db.UserRoleBuyer)
	member.IsVIP = true
	member.VIPExpiresAt = util.TimePointer(testNow.AddDate(0, 0, 365))
	deps.store.On("ApproveVIPPaymentTx", mock.Anything, db.ApproveVIPPaymentTxParams{
		PaymentID:    "payment-1",
		ReviewerID:   admin.ID,
		DurationDays: settings.VIPDurationDays,
	}).Return(db.ApproveVIPPaymentTxResult{
		Payment: db.Payment{ID: "payment-1", Status: db.PaymentRecordStatusApproved},
		User:    member,
	}, nil)
	deps.distributor.On("DistributeTaskSendNotification", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendNotification) bool {
		return p.RecipientID == member.ID && p.Type == db.NotificationTypeVIP
	})).Return(nil)
	deps.distributor.On("DistributeTaskSendEmail", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendEmail) bool {
		return p.To == member.Email && p.Template == mailer.TemplateVIPDecision && p.Data["expires_at"] == "10/03/2027"
	})).Return(nil)

	request := newRequest(t, http.MethodPatch, "/v1/admin/vip-requests/payment-1/approve", nil)
	addAuthorization(t, server, request, admin)

	recorder := serve(server, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, decodeBody[db.ApproveVIPPaymentTxResult](t, recorder).User.IsVIP)
}

func TestRejectVIPRequest(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)
	member := newUser("buyer-1", db.UserRoleBuyer)

	testCases := []struct {
		name       string
		buildStubs func(deps *testDeps)
		wantStatus int
	}{
		{
			name: "OK",
			buildStubs: func(deps *testDeps) {
				deps.store.On("RejectPaymentTx", mock.Anything, db.RejectPaymentTxParams{
					PaymentID:  "payment-1",
					ReviewerID: admin.ID,
					Reason:     "receipt unreadable",
				}).Return(db.Payment{ID: "payment-1", UserID: member.ID, Type: db.PaymentTypeVIP, Status: db.PaymentRecordStatusRejected}, nil)
				deps.store.On("GetUserByID", mock.Anything, member.ID).Return(member, nil)
				deps.distributor.On("DistributeTaskSendNotification", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendNotification) bool {
					return p.RecipientID == member.ID && p.Type == db.NotificationTypeVIP
				})).Return(nil)
				deps.distributor.On("DistributeTaskSendEmail", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendEmail) bool {
					return p.To == member.Email && p.Data["approved"] == false
				})).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "OrderPaymentIsNotAVIPRequest",
			buildStubs: func(deps *testDeps) {
				deps.store.On("RejectPaymentTx", mock.Anything, mock.Anything).
					Return(db.Payment{}, fmt.Errorf("payment payment-1 is not a VIP payment: %w", db.ErrRecordNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, deps := newTestServer(t)
			deps.authenticate(admin)
			tc.buildStubs(deps)

			request := newRequest(t, http.MethodPatch, "/v1/admin/vip-requests/payment-1/reject", map[string]any{
				"reason": "receipt unreadable",
			})
			addAuthorization(t, server, request, admin)

			assert.Equal(t, tc.wantStatus, serve(server, request).Code)
		})
	}
}
