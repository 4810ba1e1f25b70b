package mockdb

import (
	"context"
	"time"

	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/stretchr/testify/mock"
)

// Store is a testify mock of db.Store.
type Store struct {
	mock.Mock
}

var _ db.Store = (*Store)(nil)

// users
func (m *Store) CreateUser(ctx context.Context, user db.User) (db.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(db.User), args.Error(1)
}

func (m *Store) GetUserByID(ctx context.Context, userID string) (db.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(db.User), args.Error(1)
}

func (m *Store) GetUserByEmail(ctx context.Context, email string) (db.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(db.User), args.Error(1)
}

func (m *Store) UpdateUser(ctx context.Context, arg db.UpdateUserParams) (db.User, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.User), args.Error(1)
}

func (m *Store) ListUsers(ctx context.Context, role string) ([]db.User, error) {
	args := m.Called(ctx, role)
	result, _ := args.Get(0).([]db.User)
	return result, args.Error(1)
}

func (m *Store) ListExpiredVIPUsers(ctx context.Context, now time.Time) ([]db.User, error) {
	args := m.Called(ctx, now)
	result, _ := args.Get(0).([]db.User)
	return result, args.Error(1)
}

func (m *Store) RevokeVIP(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// registration and password reset challenges
func (m *Store) SavePendingRegistration(ctx context.Context, registration db.PendingRegistration) error {
	args := m.Called(ctx, registration)
	return args.Error(0)
}

func (m *Store) GetPendingRegistration(ctx context.Context, email string) (db.PendingRegistration, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(db.PendingRegistration), args.Error(1)
}

func (m *Store) ClaimPendingRegistrationAttemptTx(ctx context.Context, email string, maxAttempts int64) (db.PendingRegistration, error) {
	args := m.Called(ctx, email, maxAttempts)
	return args.Get(0).(db.PendingRegistration), args.Error(1)
}

func (m *Store) DeletePendingRegistration(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *Store) ListExpiredPendingRegistrations(ctx context.Context, before time.Time) ([]db.PendingRegistration, error) {
	args := m.Called(ctx, before)
	result, _ := args.Get(0).([]db.PendingRegistration)
	return result, args.Error(1)
}

func (m *Store) CompleteRegistrationTx(ctx context.Context, email string, user db.User) (db.User, error) {
	args := m.Called(ctx, email, user)
	return args.Get(0).(db.User), args.Error(1)
}

func (m *Store) SavePasswordReset(ctx context.Context, reset db.PasswordReset) error {
	args := m.Called(ctx, reset)
	return args.Error(0)
}

func (m *Store) GetPasswordReset(ctx context.Context, email string) (db.PasswordReset, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(db.PasswordReset), args.Error(1)
}

func (m *Store) ClaimPasswordResetAttemptTx(ctx context.Context, email string, maxAttempts int64) (db.PasswordReset, error) {
	args := m.Called(ctx, email, maxAttempts)
	return args.Get(0).(db.PasswordReset), args.Error(1)
}

func (m *Store) DeletePasswordReset(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *Store) DeleteExpiredPasswordResets(ctx context.Context, before time.Time) (int, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int), args.Error(1)
}

// sheep
func (m *Store) CreateSheep(ctx context.Context, sheep db.Sheep) (db.Sheep, error) {
	args := m.Called(ctx, sheep)
	return args.Get(0).(db.Sheep), args.Error(1)
}

func (m *Store) GetSheepByID(ctx context.Context, sheepID string) (db.Sheep, error) {
	args := m.Called(ctx, sheepID)
	return args.Get(0).(db.Sheep), args.Error(1)
}

func (m *Store) GetSheepBySlug(ctx context.Context, slug string) (db.Sheep, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).(db.Sheep), args.Error(1)
}

func (m *Store) UpdateSheep(ctx context.Context, sheep db.Sheep) (db.Sheep, error) {
	args := m.Called(ctx, sheep)
	return args.Get(0).(db.Sheep), args.Error(1)
}

func (m *Store) UpdateSheepStatus(ctx context.Context, arg db.UpdateSheepStatusParams) (db.Sheep, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.Sheep), args.Error(1)
}

func (m *Store) DeleteSheep(ctx context.Context, sheepID string) error {
	args := m.Called(ctx, sheepID)
	return args.Error(0)
}

func (m *Store) ListSheep(ctx context.Context, arg db.ListSheepParams) ([]db.Sheep, error) {
	args := m.Called(ctx, arg)
	result, _ := args.Get(0).([]db.Sheep)
	return result, args.Error(1)
}

// settings
func (m *Store) GetSettings(ctx context.Context) (db.Settings, error) {
	args := m.Called(ctx)
	return args.Get(0).(db.Settings), args.Error(1)
}

func (m *Store) UpdateSettings(ctx context.Context, settings db.Settings) (db.Settings, error) {
	args := m.Called(ctx, settings)
	return args.Get(0).(db.Settings), args.Error(1)
}

// orders and installments
func (m *Store) CreateOrderTx(ctx context.Context, arg db.CreateOrderTxParams) (db.CreateOrderTxResult, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.CreateOrderTxResult), args.Error(1)
}

func (m *Store) HasForeignOrderInYear(ctx context.Context, nationalIDHash string, year int) (bool, error) {
	args := m.Called(ctx, nationalIDHash, year)
	return args.Get(0).(bool), args.Error(1)
}

func (m *Store) GetOrderByID(ctx context.Context, orderID string) (db.Order, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(db.Order), args.Error(1)
}

func (m *Store) ListOrders(ctx context.Context, arg db.ListOrdersParams) ([]db.Order, error) {
	args := m.Called(ctx, arg)
	result, _ := args.Get(0).([]db.Order)
	return result, args.Error(1)
}

func (m *Store) UpdateOrderStatusTx(ctx context.Context, arg db.UpdateOrderStatusTxParams) (db.Order, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.Order), args.Error(1)
}

func (m *Store) ListInstallmentsByOrder(ctx context.Context, orderID string) ([]db.Installment, error) {
	args := m.Called(ctx, orderID)
	result, _ := args.Get(0).([]db.Installment)
	return result, args.Error(1)
}

func (m *Store) ListOverdueInstallments(ctx context.Context, now time.Time) ([]db.Installment, error) {
	args := m.Called(ctx, now)
	result, _ := args.Get(0).([]db.Installment)
	return result, args.Error(1)
}

func (m *Store) MarkInstallmentOverdue(ctx context.Context, installmentID string) error {
	args := m.Called(ctx, installmentID)
	return args.Error(0)
}

// receipts and payments
func (m *Store) CreateReceiptTx(ctx context.Context, receipt db.CIBReceipt) (db.CIBReceipt, error) {
	args := m.Called(ctx, receipt)
	return args.Get(0).(db.CIBReceipt), args.Error(1)
}

func (m *Store) GetReceiptByID(ctx context.Context, receiptID string) (db.CIBReceipt, error) {
	args := m.Called(ctx, receiptID)
	return args.Get(0).(db.CIBReceipt), args.Error(1)
}

func (m *Store) ListReceiptsByOrder(ctx context.Context, orderID string) ([]db.CIBReceipt, error) {
	args := m.Called(ctx, orderID)
	result, _ := args.Get(0).([]db.CIBReceipt)
	return result, args.Error(1)
}

func (m *Store) ListReceipts(ctx context.Context, status string) ([]db.CIBReceipt, error) {
	args := m.Called(ctx, status)
	result, _ := args.Get(0).([]db.CIBReceipt)
	return result, args.Error(1)
}

func (m *Store) VerifyReceiptTx(ctx context.Context, arg db.ReviewReceiptTxParams) (db.VerifyReceiptTxResult, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.VerifyReceiptTxResult), args.Error(1)
}

func (m *Store) RejectReceiptTx(ctx context.Context, arg db.ReviewReceiptTxParams) (db.CIBReceipt, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.CIBReceipt), args.Error(1)
}

func (m *Store) CreatePayment(ctx context.Context, payment db.Payment) (db.Payment, error) {
	args := m.Called(ctx, payment)
	return args.Get(0).(db.Payment), args.Error(1)
}

func (m *Store) GetPaymentByID(ctx context.Context, paymentID string) (db.Payment, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(db.Payment), args.Error(1)
}

func (m *Store) ListPayments(ctx context.Context, arg db.ListPaymentsParams) ([]db.Payment, error) {
	args := m.Called(ctx, arg)
	result, _ := args.Get(0).([]db.Payment)
	return result, args.Error(1)
}

func (m *Store) ApproveVIPPaymentTx(ctx context.Context, arg db.ApproveVIPPaymentTxParams) (db.ApproveVIPPaymentTxResult, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.ApproveVIPPaymentTxResult), args.Error(1)
}

func (m *Store) RejectPaymentTx(ctx context.Context, arg db.RejectPaymentTxParams) (db.Payment, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.Payment), args.Error(1)
}

// advertisements
func (m *Store) CreateAd(ctx context.Context, ad db.Ad) (db.Ad, error) {
	args := m.Called(ctx, ad)
	return args.Get(0).(db.Ad), args.Error(1)
}

func (m *Store) GetAdByID(ctx context.Context, adID string) (db.Ad, error) {
	args := m.Called(ctx, adID)
	return args.Get(0).(db.Ad), args.Error(1)
}

func (m *Store) UpdateAd(ctx context.Context, ad db.Ad) (db.Ad, error) {
	args := m.Called(ctx, ad)
	return args.Get(0).(db.Ad), args.Error(1)
}

func (m *Store) DeleteAd(ctx context.Context, adID string) error {
	args := m.Called(ctx, adID)
	return args.Error(0)
}

func (m *Store) ListAds(ctx context.Context) ([]db.Ad, error) {
	args := m.Called(ctx)
	result, _ := args.Get(0).([]db.Ad)
	return result, args.Error(1)
}

func (m *Store) ListLiveAds(ctx context.Context, now time.Time) ([]db.Ad, error) {
	args := m.Called(ctx, now)
	result, _ := args.Get(0).([]db.Ad)
	return result, args.Error(1)
}

func (m *Store) DeactivateExpiredAds(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int), args.Error(1)
}

func (m *Store) CreateAdRequest(ctx context.Context, request db.AdRequest) (db.AdRequest, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(db.AdRequest), args.Error(1)
}

func (m *Store) GetAdRequestByID(ctx context.Context, requestID string) (db.AdRequest, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(db.AdRequest), args.Error(1)
}

func (m *Store) ListAdRequests(ctx context.Context, arg db.ListAdRequestsParams) ([]db.AdRequest, error) {
	args := m.Called(ctx, arg)
	result, _ := args.Get(0).([]db.AdRequest)
	return result, args.Error(1)
}

func (m *Store) DeleteAdRequest(ctx context.Context, requestID string) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *Store) ApproveAdRequestTx(ctx context.Context, arg db.ApproveAdRequestTxParams) (db.ApproveAdRequestTxResult, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.ApproveAdRequestTxResult), args.Error(1)
}

func (m *Store) RejectAdRequestTx(ctx context.Context, arg db.RejectAdRequestTxParams) (db.AdRequest, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.AdRequest), args.Error(1)
}

// notifications
func (m *Store) CreateNotification(ctx context.Context, notification db.Notification) (db.Notification, error) {
	args := m.Called(ctx, notification)
	return args.Get(0).(db.Notification), args.Error(1)
}

func (m *Store) ListNotifications(ctx context.Context, recipientID string, limit int) ([]db.Notification, error) {
	args := m.Called(ctx, recipientID, limit)
	result, _ := args.Get(0).([]db.Notification)
	return result, args.Error(1)
}

func (m *Store) MarkNotificationRead(ctx context.Context, recipientID string, notificationID string) error {
	args := m.Called(ctx, recipientID, notificationID)
	return args.Error(0)
}

// dashboard
func (m *Store) CountUsers(ctx context.Context, role string) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) CountSheep(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) CountOrdersSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) SumPaymentsSince(ctx context.Context, paymentType db.PaymentType, since time.Time) (int64, error) {
	args := m.Called(ctx, paymentType, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) CountReceipts(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) CountPayments(ctx context.Context, paymentType db.PaymentType, status string) (int64, error) {
	args := m.Called(ctx, paymentType, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) CountAdRequests(ctx context.Context, status string) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}
