package api

import (
	"net/http"
	"testing"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateReceipt(t *testing.T) {
	buyer := newUser("buyer-1", db.UserRoleBuyer)
	seller := newUser("seller-1", db.UserRoleSeller)

	body := map[string]any{
		"image_url":       "https://i.ibb.co/xyz/receipt.jpg",
		"amount":          31668,
		"installment_id":  "inst-1",
		"transaction_ref": "CIB-778899",
	}

	installmentOrder := newOrder(db.OrderStatusConfirmed)
	installmentOrder.PaymentMethod = db.PaymentMethodInstallments

	testCases := []struct {
		name       string
		user       db.User
		buildStubs func(deps *testDeps)
		wantStatus int
	}{
		{
			name: "OK",
			user: buyer,
			buildStubs: func(deps *testDeps) {
				deps.store.On("CreateReceiptTx", mock.Anything, db.CIBReceipt{
					OrderID:        "order-1",
					BuyerID:        buyer.ID,
					InstallmentID:  "inst-1",
					ImageURL:       "https://i.ibb.co/xyz/receipt.jpg",
					Amount:         31668,
					TransactionRef: "CIB-778899",
				}).Return(db.CIBReceipt{ID: "receipt-1", OrderID: "order-1", Amount: 31668, Status: db.ReceiptStatusPending}, nil)
				deps.distributor.On("DistributeTaskAdminAlert", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "CashOrder",
			user: buyer,
			buildStubs: func(deps *testDeps) {
				deps.store.On("CreateReceiptTx", mock.Anything, mock.Anything).Return(db.CIBReceipt{}, db.ErrOrderNotPayable)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "InstallmentAlreadyPaid",
			user: buyer,
			buildStubs: func(deps *testDeps) {
				deps.store.On("CreateReceiptTx", mock.Anything, mock.Anything).Return(db.CIBReceipt{}, db.ErrInstallmentPaid)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "ForeignInstallment",
			user: buyer,
			buildStubs: func(deps *testDeps) {
				deps.store.On("CreateReceiptTx", mock.Anything, mock.Anything).Return(db.CIBReceipt{}, db.ErrInstallmentMismatch)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "SellerCannotUpload",
			user:       seller,
			buildStubs: func(deps *testDeps) {},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server, deps := newTestServer(t)
			deps.authenticate(tc.user)
			deps.store.On("GetOrderByID", mock.Anything, "order-1").Return(installmentOrder, nil)
			tc.buildStubs(deps)

			request := newRequest(t, http.MethodPost, "/v1/orders/order-1/receipts", body)
			addAuthorization(t, server, request, tc.user)

			recorder := serve(server, request)
			assert.Equal(t, tc.wantStatus, recorder.Code, recorder.Body.String())
		})
	}
}

func TestVerifyReceipt(t *testing.T) {
	admin := newUser("admin-1", db.UserRoleAdmin)
	buyer := newUser("buyer-1", db.UserRoleBuyer)

	t.Run("OK", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)
		deps.authenticate(buyer)

		order := newOrder(db.OrderStatusConfirmed)
		order.PaymentStatus = db.PaymentStatusPartiallyPaid
		deps.store.On("VerifyReceiptTx", mock.Anything, db.ReviewReceiptTxParams{
			ReceiptID:  "receipt-1",
			ReviewerID: admin.ID,
		}).Return(db.VerifyReceiptTxResult{
			Receipt: db.CIBReceipt{ID: "receipt-1", OrderID: order.ID, BuyerID: buyer.ID, Amount: 31668, Status: db.ReceiptStatusVerified},
			Order:   order,
			Payment: db.Payment{ID: "payment-1", Type: db.PaymentTypeOrder, Amount: 31668, Status: db.PaymentRecordStatusApproved},
		}, nil)
		deps.distributor.On("DistributeTaskSendNotification", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendNotification) bool {
			return p.RecipientID == buyer.ID && p.Type == db.NotificationTypePayment
		})).Return(nil)
		deps.distributor.On("DistributeTaskSendEmail", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendEmail) bool {
			return p.Template == mailer.TemplateReceiptDecision && p.Data["approved"] == true && p.Data["order_code"] == order.Code
		})).Return(nil)

		request := newRequest(t, http.MethodPatch, "/v1/admin/receipts/receipt-1/verify", nil)
		addAuthorization(t, server, request, admin)

		recorder := serve(server, request)
		require.Equal(t, http.StatusOK, recorder.Code)

		result := decodeBody[db.VerifyReceiptTxResult](t, recorder)
		assert.Equal(t, db.PaymentStatusPartiallyPaid, result.Order.PaymentStatus)
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)
		deps.store.On("VerifyReceiptTx", mock.Anything, mock.Anything).Return(db.VerifyReceiptTxResult{}, db.ErrAlreadyDecided)

		request := newRequest(t, http.MethodPatch, "/v1/admin/receipts/receipt-1/verify", nil)
		addAuthorization(t, server, request, admin)

		assert.Equal(t, http.StatusConflict, serve(server, request).Code)
	})

	t.Run("RejectNeedsReason", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)

		request := newRequest(t, http.MethodPatch, "/v1/admin/receipts/receipt-1/reject", map[string]any{})
		addAuthorization(t, server, request, admin)

		assert.Equal(t, http.StatusBadRequest, serve(server, request).Code)
	})

	t.Run("Reject", func(t *testing.T) {
		server, deps := newTestServer(t)
		deps.authenticate(admin)
		deps.authenticate(buyer)
		deps.store.On("RejectReceiptTx", mock.Anything, db.ReviewReceiptTxParams{
			ReceiptID:  "receipt-1",
			ReviewerID: admin.ID,
			Reason:     "amount does not match",
		}).Return(db.CIBReceipt{
			ID:              "receipt-1",
			OrderID:         "order-1",
			BuyerID:         buyer.ID,
			Status:          db.ReceiptStatusRejected,
			RejectionReason: "amount does not match",
		}, nil)
		deps.store.On("GetOrderByID", mock.Anything, "order-1").Return(newOrder(db.OrderStatusConfirmed), nil)
		deps.distributor.On("DistributeTaskSendNotification", mock.Anything, mock.Anything).Return(nil)
		deps.distributor.On("DistributeTaskSendEmail", mock.Anything, mock.MatchedBy(func(p *worker.PayloadSendEmail) bool {
			return p.Data["approved"] == false && p.Data["reason"] == "amount does not match"
		})).Return(nil)

		request := newRequest(t, http.MethodPatch, "/v1/admin/receipts/receipt-1/reject", map[string]any{"reason": "amount does not match"})
		addAuthorization(t, server, request, admin)

		assert.Equal(t, http.StatusOK, serve(server, request).Code)
	})
}

func TestListOrderInstallments(t *testing.T) {
	buyer := newUser("buyer-1", db.UserRoleBuyer)

	server, deps := newTestServer(t)
	deps.authenticate(buyer)
	deps.store.On("GetOrderByID", mock.Anything, "order-1").Return(newOrder(db.OrderStatusConfirmed), nil)
	deps.store.On("ListInstallmentsByOrder", mock.Anything, "order-1").Return([]db.Installment{
		{ID: "inst-1", OrderID: "order-1", Sequence: 1, Amount: 31668, Status: db.InstallmentStatusPaid},
		{ID: "inst-2", OrderID: "order-1", Sequence: 2, Amount: 31666, Status: db.InstallmentStatusUnpaid},
	}, nil)

	request := newRequest(t, http.MethodGet, "/v1/orders/order-1/installments", nil)
	addAuthorization(t, server, request, buyer)

	recorder := serve(server, request)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, decodeBody[[]db.Installment](t, recorder), 2)
}
