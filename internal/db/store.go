package db

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
)

// Store provides all functions to read and write the marketplace collections.
type Store interface {
	// users
	CreateUser(ctx context.Context, user User) (User, error)
	GetUserByID(ctx context.Context, userID string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error)
	ListUsers(ctx context.Context, role string) ([]User, error)
	ListExpiredVIPUsers(ctx context.Context, now time.Time) ([]User, error)
	RevokeVIP(ctx context.Context, userID string) error

	// registration and password reset challenges
	SavePendingRegistration(ctx context.Context, registration PendingRegistration) error
	GetPendingRegistration(ctx context.Context, email string) (PendingRegistration, error)
	ClaimPendingRegistrationAttemptTx(ctx context.Context, email string, maxAttempts int64) (PendingRegistration, error)
	DeletePendingRegistration(ctx context.Context, email string) error
	ListExpiredPendingRegistrations(ctx context.Context, before time.Time) ([]PendingRegistration, error)
	CompleteRegistrationTx(ctx context.Context, email string, user User) (User, error)
	SavePasswordReset(ctx context.Context, reset PasswordReset) error
	GetPasswordReset(ctx context.Context, email string) (PasswordReset, error)
	ClaimPasswordResetAttemptTx(ctx context.Context, email string, maxAttempts int64) (PasswordReset, error)
	DeletePasswordReset(ctx context.Context, email string) error
	DeleteExpiredPasswordResets(ctx context.Context, before time.Time) (int, error)

	// sheep
	CreateSheep(ctx context.Context, sheep Sheep) (Sheep, error)
	GetSheepByID(ctx context.Context, sheepID string) (Sheep, error)
	GetSheepBySlug(ctx context.Context, slug string) (Sheep, error)
	UpdateSheep(ctx context.Context, sheep Sheep) (Sheep, error)
	UpdateSheepStatus(ctx context.Context, arg UpdateSheepStatusParams) (Sheep, error)
	DeleteSheep(ctx context.Context, sheepID string) error
	ListSheep(ctx context.Context, arg ListSheepParams) ([]Sheep, error)

	// settings
	GetSettings(ctx context.Context) (Settings, error)
	UpdateSettings(ctx context.Context, settings Settings) (Settings, error)

	// orders and installments
	CreateOrderTx(ctx context.Context, arg CreateOrderTxParams) (CreateOrderTxResult, error)
	HasForeignOrderInYear(ctx context.Context, nationalIDHash string, year int) (bool, error)
	GetOrderByID(ctx context.Context, orderID string) (Order, error)
	ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error)
	UpdateOrderStatusTx(ctx context.Context, arg UpdateOrderStatusTxParams) (Order, error)
	ListInstallmentsByOrder(ctx context.Context, orderID string) ([]Installment, error)
	ListOverdueInstallments(ctx context.Context, now time.Time) ([]Installment, error)
	MarkInstallmentOverdue(ctx context.Context, installmentID string) error

	// receipts and payments
	CreateReceiptTx(ctx context.Context, receipt CIBReceipt) (CIBReceipt, error)
	GetReceiptByID(ctx context.Context, receiptID string) (CIBReceipt, error)
	ListReceiptsByOrder(ctx context.Context, orderID string) ([]CIBReceipt, error)
	ListReceipts(ctx context.Context, status string) ([]CIBReceipt, error)
	VerifyReceiptTx(ctx context.Context, arg ReviewReceiptTxParams) (VerifyReceiptTxResult, error)
	RejectReceiptTx(ctx context.Context, arg ReviewReceiptTxParams) (CIBReceipt, error)
	CreatePayment(ctx context.Context, payment Payment) (Payment, error)
	GetPaymentByID(ctx context.Context, paymentID string) (Payment, error)
	ListPayments(ctx context.Context, arg ListPaymentsParams) ([]Payment, error)
	ApproveVIPPaymentTx(ctx context.Context, arg ApproveVIPPaymentTxParams) (ApproveVIPPaymentTxResult, error)
	RejectPaymentTx(ctx context.Context, arg RejectPaymentTxParams) (Payment, error)

	// advertisements
	CreateAd(ctx context.Context, ad Ad) (Ad, error)
	GetAdByID(ctx context.Context, adID string) (Ad, error)
	UpdateAd(ctx context.Context, ad Ad) (Ad, error)
	DeleteAd(ctx context.Context, adID string) error
	ListAds(ctx context.Context) ([]Ad, error)
	ListLiveAds(ctx context.Context, now time.Time) ([]Ad, error)
	DeactivateExpiredAds(ctx context.Context, now time.Time) (int, error)
	CreateAdRequest(ctx context.Context, request AdRequest) (AdRequest, error)
	GetAdRequestByID(ctx context.Context, requestID string) (AdRequest, error)
	ListAdRequests(ctx context.Context, arg ListAdRequestsParams) ([]AdRequest, error)
	DeleteAdRequest(ctx context.Context, requestID string) error
	ApproveAdRequestTx(ctx context.Context, arg ApproveAdRequestTxParams) (ApproveAdRequestTxResult, error)
	RejectAdRequestTx(ctx context.Context, arg RejectAdRequestTxParams) (AdRequest, error)

	// notifications
	CreateNotification(ctx context.Context, notification Notification) (Notification, error)
	ListNotifications(ctx context.Context, recipientID string, limit int) ([]Notification, error)
	MarkNotificationRead(ctx context.Context, recipientID, notificationID string) error

	// dashboard
	CountUsers(ctx context.Context, role string) (int64, error)
	CountSheep(ctx context.Context, status string) (int64, error)
	CountOrdersSince(ctx context.Context, since time.Time) (int64, error)
	SumPaymentsSince(ctx context.Context, paymentType PaymentType, since time.Time) (int64, error)
	CountReceipts(ctx context.Context, status string) (int64, error)
	CountPayments(ctx context.Context, paymentType PaymentType, status string) (int64, error)
	CountAdRequests(ctx context.Context, status string) (int64, error)
}

// FirestoreStore implements Store on top of a Firestore client.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewStore creates a new Store.
func NewStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
		now:    time.Now,
	}
}

func (store *FirestoreStore) collection(name string) *firestore.CollectionRef {
	return store.client.Collection(name)
}
