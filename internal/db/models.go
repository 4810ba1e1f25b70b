package db

import (
	"fmt"
	"time"
)

const (
	CollectionUsers                = "users"
	CollectionSheep                = "sheep"
	CollectionOrders               = "orders"
	CollectionAds                  = "ads"
	CollectionAdRequests           = "ad_requests"
	CollectionPayments             = "payments"
	CollectionCIBReceipts          = "cibReceipts"
	CollectionInstallments         = "installments"
	CollectionSettings             = "settings"
	CollectionPendingRegistrations = "pending_registrations"
	CollectionPasswordResets       = "password_resets"
	CollectionNotifications        = "notifications"

	settingsDocumentID = "general"
)

type UserRole string

const (
	UserRoleBuyer  UserRole = "buyer"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

func IsValidUserRole(role string) error {
	switch UserRole(role) {
	case UserRoleBuyer, UserRoleSeller, UserRoleAdmin:
		return nil
	}
	return fmt.Errorf("invalid user role %q", role)
}

type User struct {
	ID           string     `firestore:"id" json:"id"`
	Email        string     `firestore:"email" json:"email"`
	FullName     string     `firestore:"fullName" json:"full_name"`
	PhoneNumber  string     `firestore:"phoneNumber" json:"phone_number"`
	Role         UserRole   `firestore:"role" json:"role"`
	AvatarURL    string     `firestore:"avatarUrl" json:"avatar_url"`
	Wilaya       string     `firestore:"wilaya" json:"wilaya"`
	Address      string     `firestore:"address" json:"address"`
	IsVIP        bool       `firestore:"isVip" json:"is_vip"`
	VIPExpiresAt *time.Time `firestore:"vipExpiresAt" json:"vip_expires_at"`
	Disabled     bool       `firestore:"disabled" json:"disabled"`
	CreatedAt    time.Time  `firestore:"createdAt" json:"created_at"`
	UpdatedAt    time.Time  `firestore:"updatedAt" json:"updated_at"`
}

// HasActiveVIP reports whether the membership is still running at now.
func (u User) HasActiveVIP(now time.Time) bool {
	return u.IsVIP && u.VIPExpiresAt != nil && u.VIPExpiresAt.After(now)
}

// CodeChallenge is the hashed one-time code shared by email verification and password reset.
type CodeChallenge struct {
	CodeHash  string    `firestore:"codeHash" json:"-"`
	Attempts  int64     `firestore:"attempts" json:"-"`
	ExpiresAt time.Time `firestore:"expiresAt" json:"expires_at"`
	CreatedAt time.Time `firestore:"createdAt" json:"created_at"`
}

type PendingRegistration struct {
	Email       string   `firestore:"email" json:"email"`
	UID         string   `firestore:"uid" json:"-"`
	FullName    string   `firestore:"fullName" json:"full_name"`
	PhoneNumber string   `firestore:"phoneNumber" json:"phone_number"`
	Role        UserRole `firestore:"role" json:"role"`
	CodeChallenge
}

type PasswordReset struct {
	Email string `firestore:"email" json:"email"`
	UID   string `firestore:"uid" json:"-"`
	CodeChallenge
}

type SheepCategory string

const (
	SheepCategoryRam  SheepCategory = "kebch"
	SheepCategoryEwe  SheepCategory = "na3ja"
	SheepCategoryLamb SheepCategory = "kharouf"
)

func IsValidSheepCategory(category string) error {
	switch SheepCategory(category) {
	case SheepCategoryRam, SheepCategoryEwe, SheepCategoryLamb:
		return nil
	}
	return fmt.Errorf("invalid sheep category %q", category)
}

type SheepOrigin string

const (
	SheepOriginLocal   SheepOrigin = "local"
	SheepOriginForeign SheepOrigin = "foreign"
)

func IsValidSheepOrigin(origin string) error {
	switch SheepOrigin(origin) {
	case SheepOriginLocal, SheepOriginForeign:
		return nil
	}
	return fmt.Errorf("invalid sheep origin %q", origin)
}

type SheepStatus string

const (
	SheepStatusPending  SheepStatus = "pending"
	SheepStatusApproved SheepStatus = "approved"
	SheepStatusRejected SheepStatus = "rejected"
	SheepStatusReserved SheepStatus = "reserved"
	SheepStatusSold     SheepStatus = "sold"
)

func IsValidSheepStatus(status string) error {
	switch SheepStatus(status) {
	case SheepStatusPending, SheepStatusApproved, SheepStatusRejected, SheepStatusReserved, SheepStatusSold:
		return nil
	}
	return fmt.Errorf("invalid sheep status %q", status)
}

// Editable reports whether the seller may still change the listing.
func (s SheepStatus) Editable() bool {
	return s == SheepStatusPending || s == SheepStatusRejected
}

// Deletable reports whether the listing can be removed. Sheep tied to an order cannot.
func (s SheepStatus) Deletable() bool {
	return s != SheepStatusReserved && s != SheepStatusSold
}

type Sheep struct {
	ID              string        `firestore:"id" json:"id"`
	Slug            string        `firestore:"slug" json:"slug"`
	SellerID        string        `firestore:"sellerId" json:"seller_id"`
	Title           string        `firestore:"title" json:"title"`
	Breed           string        `firestore:"breed" json:"breed"`
	Category        SheepCategory `firestore:"category" json:"category"`
	Origin          SheepOrigin   `firestore:"origin" json:"origin"`
	AgeMonths       int64         `firestore:"ageMonths" json:"age_months"`
	WeightKg        float64       `firestore:"weightKg" json:"weight_kg"`
	Price           int64         `firestore:"price" json:"price"`
	Description     string        `firestore:"description" json:"description"`
	Images          []string      `firestore:"images" json:"images"`
	Wilaya          string        `firestore:"wilaya" json:"wilaya"`
	Status          SheepStatus   `firestore:"status" json:"status"`
	RejectionReason string        `firestore:"rejectionReason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"created_at"`
	UpdatedAt       time.Time     `firestore:"updatedAt" json:"updated_at"`
}

// PrimaryImage returns the cover image of the listing, or an empty string.
func (s Sheep) PrimaryImage() string {
	if len(s.Images) == 0 {
		return ""
	}
	return s.Images[0]
}

type Settings struct {
	VIPDiscountPercent    int64     `firestore:"vipDiscountPercent" json:"vip_discount_percent"`
	VIPPrice              int64     `firestore:"vipPrice" json:"vip_price"`
	VIPDurationDays       int64     `firestore:"vipDurationDays" json:"vip_duration_days"`
	ForeignSheepMaxSalary int64     `firestore:"foreignSheepMaxSalary" json:"foreign_sheep_max_salary"`
	ForeignOrdersOpen     bool      `firestore:"foreignOrdersOpen" json:"foreign_orders_open"`
	MaxInstallments       int64     `firestore:"maxInstallments" json:"max_installments"`
	ContactEmail          string    `firestore:"contactEmail" json:"contact_email"`
	ContactPhone          string    `firestore:"contactPhone" json:"contact_phone"`
	UpdatedAt             time.Time `firestore:"updatedAt" json:"updated_at"`
	UpdatedBy             string    `firestore:"updatedBy" json:"updated_by,omitempty"`
}

// DefaultSettings is served until an administrator saves the settings document.
func DefaultSettings() Settings {
	return Settings{
		VIPDiscountPercent:    10,
		VIPPrice:              5000,
		VIPDurationDays:       365,
		ForeignSheepMaxSalary: 0,
		ForeignOrdersOpen:     true,
		MaxInstallments:       6,
	}
}

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRejected  OrderStatus = "rejected"
)

func IsValidOrderStatus(status string) error {
	switch OrderStatus(status) {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRejected:
		return nil
	}
	return fmt.Errorf("invalid order status %q", status)
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled, OrderStatusRejected},
	OrderStatusConfirmed: {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransitionTo reports whether an order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// ReleasesSheep reports whether reaching s puts the sheep back on sale.
func (s OrderStatus) ReleasesSheep() bool {
	return s == OrderStatusCancelled || s == OrderStatusRejected
}

type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCIB          PaymentMethod = "cib"
	PaymentMethodEdahabia     PaymentMethod = "edahabia"
	PaymentMethodInstallments PaymentMethod = "installments"
)

func IsValidPaymentMethod(method string) error {
	switch PaymentMethod(method) {
	case PaymentMethodCash, PaymentMethodCIB, PaymentMethodEdahabia, PaymentMethodInstallments:
		return nil
	}
	return fmt.Errorf("invalid payment method %q", method)
}

// AcceptsReceipts reports whether payments for the method are proven by uploaded receipts.
func (m PaymentMethod) AcceptsReceipts() bool {
	return m == PaymentMethodCIB || m == PaymentMethodEdahabia || m == PaymentMethodInstallments
}

type PaymentStatus string

const (
	PaymentStatusUnpaid              PaymentStatus = "unpaid"
	PaymentStatusPendingVerification PaymentStatus = "pending_verification"
	PaymentStatusPartiallyPaid       PaymentStatus = "partially_paid"
	PaymentStatusPaid                PaymentStatus = "paid"
)

type SheepSnapshot struct {
	Title  string      `firestore:"title" json:"title"`
	Origin SheepOrigin `firestore:"origin" json:"origin"`
	Price  int64       `firestore:"price" json:"price"`
	Image  string      `firestore:"image" json:"image"`
	Slug   string      `firestore:"slug" json:"slug"`
}

type Order struct {
	ID               string        `firestore:"id" json:"id"`
	Code             string        `firestore:"code" json:"code"`
	BuyerID          string        `firestore:"buyerId" json:"buyer_id"`
	SellerID         string        `firestore:"sellerId" json:"seller_id"`
	SheepID          string        `firestore:"sheepId" json:"sheep_id"`
	SheepSnapshot    SheepSnapshot `firestore:"sheepSnapshot" json:"sheep_snapshot"`
	SheepOrigin      SheepOrigin   `firestore:"sheepOrigin" json:"sheep_origin"`
	OriginalPrice    int64         `firestore:"originalPrice" json:"original_price"`
	DiscountAmount   int64         `firestore:"discountAmount" json:"discount_amount"`
	TotalAmount      int64         `firestore:"totalAmount" json:"total_amount"`
	VIPApplied       bool          `firestore:"vipApplied" json:"vip_applied"`
	PaymentMethod    PaymentMethod `firestore:"paymentMethod" json:"payment_method"`
	InstallmentCount int64         `firestore:"installmentCount" json:"installment_count"`
	PaymentStatus    PaymentStatus `firestore:"paymentStatus" json:"payment_status"`
	Status           OrderStatus   `firestore:"status" json:"status"`
	NationalIDHash   string        `firestore:"nationalIdHash" json:"-"`
	MonthlySalary    int64         `firestore:"monthlySalary" json:"monthly_salary,omitempty"`
	DeliveryAddress  string        `firestore:"deliveryAddress" json:"delivery_address"`
	PhoneNumber      string        `firestore:"phoneNumber" json:"phone_number"`
	Note             string        `firestore:"note" json:"note,omitempty"`
	CancelReason     string        `firestore:"cancelReason" json:"cancel_reason,omitempty"`
	Year             int64         `firestore:"year" json:"year"`
	CreatedAt        time.Time     `firestore:"createdAt" json:"created_at"`
	UpdatedAt        time.Time     `firestore:"updatedAt" json:"updated_at"`
}

// IsParty reports whether the user is the buyer or the seller of the order.
func (o Order) IsParty(userID string) bool {
	return o.BuyerID == userID || o.SellerID == userID
}

type InstallmentStatus string

const (
	InstallmentStatusUnpaid              InstallmentStatus = "unpaid"
	InstallmentStatusPendingVerification InstallmentStatus = "pending_verification"
	InstallmentStatusPaid                InstallmentStatus = "paid"
	InstallmentStatusOverdue             InstallmentStatus = "overdue"
	// InstallmentStatusVoid marks what is left of a plan after its order was cancelled or rejected.
	InstallmentStatusVoid InstallmentStatus = "void"
)

type Installment struct {
	ID       string            `firestore:"id" json:"id"`
	OrderID  string            `firestore:"orderId" json:"order_id"`
	BuyerID  string            `firestore:"buyerId" json:"buyer_id"`
	Sequence int64             `firestore:"sequence" json:"sequence"`
	Amount   int64             `firestore:"amount" json:"amount"`
	DueDate  time.Time         `firestore:"dueDate" json:"due_date"`
	Status   InstallmentStatus `firestore:"status" json:"status"`
	PaidAt   *time.Time        `firestore:"paidAt" json:"paid_at"`
}

// Voidable reports whether the installment is still owed and can be written off.
func (i Installment) Voidable() bool {
	return i.Status != InstallmentStatusPaid && i.Status != InstallmentStatusVoid
}

// ReopenedStatus is the status the installment returns to when its receipt is rejected.
func (i Installment) ReopenedStatus(now time.Time) InstallmentStatus {
	switch {
	case i.Status == InstallmentStatusVoid:
		return InstallmentStatusVoid
	case i.DueDate.Before(now):
		return InstallmentStatusOverdue
	}
	return InstallmentStatusUnpaid
}

type ReceiptStatus string

const (
	ReceiptStatusPending  ReceiptStatus = "pending"
	ReceiptStatusVerified ReceiptStatus = "verified"
	ReceiptStatusRejected ReceiptStatus = "rejected"
)

func IsValidReceiptStatus(status string) error {
	switch ReceiptStatus(status) {
	case ReceiptStatusPending, ReceiptStatusVerified, ReceiptStatusRejected:
		return nil
	}
	return fmt.Errorf("invalid receipt status %q", status)
}

type CIBReceipt struct {
	ID              string        `firestore:"id" json:"id"`
	OrderID         string        `firestore:"orderId" json:"order_id"`
	BuyerID         string        `firestore:"buyerId" json:"buyer_id"`
	InstallmentID   string        `firestore:"installmentId" json:"installment_id,omitempty"`
	ImageURL        string        `firestore:"imageUrl" json:"image_url"`
	Amount          int64         `firestore:"amount" json:"amount"`
	TransactionRef  string        `firestore:"transactionRef" json:"transaction_ref,omitempty"`
	Status          ReceiptStatus `firestore:"status" json:"status"`
	RejectionReason string        `firestore:"rejectionReason" json:"rejection_reason,omitempty"`
	ReviewedBy      string        `firestore:"reviewedBy" json:"reviewed_by,omitempty"`
	CreatedAt       time.Time     `firestore:"createdAt" json:"created_at"`
	ReviewedAt      *time.Time    `firestore:"reviewedAt" json:"reviewed_at"`
}

type PaymentType string

const (
	PaymentTypeOrder PaymentType = "order"
	PaymentTypeVIP   PaymentType = "vip"
)

type PaymentRecordStatus string

const (
	PaymentRecordStatusPending  PaymentRecordStatus = "pending"
	PaymentRecordStatusApproved PaymentRecordStatus = "approved"
	PaymentRecordStatusRejected PaymentRecordStatus = "rejected"
)

func IsValidPaymentRecordStatus(status string) error {
	switch PaymentRecordStatus(status) {
	case PaymentRecordStatusPending, PaymentRecordStatusApproved, PaymentRecordStatusRejected:
		return nil
	}
	return fmt.Errorf("invalid payment status %q", status)
}

// Payment is the ledger entry for money received: verified order receipts and VIP upgrades.
type Payment struct {
	ID              string              `firestore:"id" json:"id"`
	UserID          string              `firestore:"userId" json:"user_id"`
	Type            PaymentType         `firestore:"type" json:"type"`
	OrderID         string              `firestore:"orderId" json:"order_id,omitempty"`
	ReceiptID       string              `firestore:"receiptId" json:"receipt_id,omitempty"`
	Amount          int64               `firestore:"amount" json:"amount"`
	Method          PaymentMethod       `firestore:"method" json:"method"`
	ReceiptURL      string              `firestore:"receiptUrl" json:"receipt_url,omitempty"`
	TransactionRef  string              `firestore:"transactionRef" json:"transaction_ref,omitempty"`
	Status          PaymentRecordStatus `firestore:"status" json:"status"`
	RejectionReason string              `firestore:"rejectionReason" json:"rejection_reason,omitempty"`
	ReviewedBy      string              `firestore:"reviewedBy" json:"reviewed_by,omitempty"`
	CreatedAt       time.Time           `firestore:"createdAt" json:"created_at"`
	ReviewedAt      *time.Time          `firestore:"reviewedAt" json:"reviewed_at"`
}

type Ad struct {
	ID              string    `firestore:"id" json:"id"`
	Title           string    `firestore:"title" json:"title"`
	Description     string    `firestore:"description" json:"description"`
	ImageURL        string    `firestore:"imageUrl" json:"image_url"`
	LinkURL         string    `firestore:"linkUrl" json:"link_url"`
	Position        int64     `firestore:"position" json:"position"`
	Active          bool      `firestore:"active" json:"active"`
	StartsAt        time.Time `firestore:"startsAt" json:"starts_at"`
	EndsAt          time.Time `firestore:"endsAt" json:"ends_at"`
	CreatedBy       string    `firestore:"createdBy" json:"created_by"`
	SourceRequestID string    `firestore:"sourceRequestId" json:"source_request_id,omitempty"`
	CreatedAt       time.Time `firestore:"createdAt" json:"created_at"`
	UpdatedAt       time.Time `firestore:"updatedAt" json:"updated_at"`
}

// IsLive reports whether the ad should be shown at now.
func (a Ad) IsLive(now time.Time) bool {
	return a.Active && !now.Before(a.StartsAt) && now.Before(a.EndsAt)
}

type AdRequestStatus string

const (
	AdRequestStatusPending  AdRequestStatus = "pending"
	AdRequestStatusApproved AdRequestStatus = "approved"
	AdRequestStatusRejected AdRequestStatus = "rejected"
)

func IsValidAdRequestStatus(status string) error {
	switch AdRequestStatus(status) {
	case AdRequestStatusPending, AdRequestStatusApproved, AdRequestStatusRejected:
		return nil
	}
	return fmt.Errorf("invalid ad request status %q", status)
}

type AdRequest struct {
	ID              string          `firestore:"id" json:"id"`
	SellerID        string          `firestore:"sellerId" json:"seller_id"`
	Title           string          `firestore:"title" json:"title"`
	Description     string          `firestore:"description" json:"description"`
	ImageURL        string          `firestore:"imageUrl" json:"image_url"`
	LinkURL         string          `firestore:"linkUrl" json:"link_url"`
	DurationDays    int64           `firestore:"durationDays" json:"duration_days"`
	ReceiptURL      string          `firestore:"receiptUrl" json:"receipt_url,omitempty"`
	Status          AdRequestStatus `firestore:"status" json:"status"`
	RejectionReason string          `firestore:"rejectionReason" json:"rejection_reason,omitempty"`
	AdID            string          `firestore:"adId" json:"ad_id,omitempty"`
	DecidedBy       string          `firestore:"decidedBy" json:"decided_by,omitempty"`
	CreatedAt       time.Time       `firestore:"createdAt" json:"created_at"`
	DecidedAt       *time.Time      `firestore:"decidedAt" json:"decided_at"`
}

type NotificationType string

const (
	NotificationTypeOrder       NotificationType = "order"
	NotificationTypeListing     NotificationType = "listing"
	NotificationTypePayment     NotificationType = "payment"
	NotificationTypeVIP         NotificationType = "vip"
	NotificationTypeAdRequest   NotificationType = "ad_request"
	NotificationTypeInstallment NotificationType = "installment"
)

type Notification struct {
	ID          string           `firestore:"id" json:"id"`
	RecipientID string           `firestore:"recipientId" json:"recipient_id"`
	Title       string           `firestore:"title" json:"title"`
	Message     string           `firestore:"message" json:"message"`
	Type        NotificationType `firestore:"type" json:"type"`
	ReferenceID string           `firestore:"referenceId" json:"reference_id"`
	IsRead      bool             `firestore:"isRead" json:"is_read"`
	CreatedAt   time.Time        `firestore:"createdAt" json:"created_at"`
}
