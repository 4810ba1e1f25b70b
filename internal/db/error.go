package db

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrRecordNotFound          = errors.New("record not found")
	ErrRecordExists            = errors.New("record already exists")
	ErrSheepUnavailable        = errors.New("sheep is no longer available")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAlreadyDecided          = errors.New("request has already been decided")
	ErrOrderNotPayable         = errors.New("order does not accept receipts")
	ErrInstallmentMismatch     = errors.New("installment does not belong to the order")
	ErrInstallmentPaid         = errors.New("installment is already paid or awaiting verification")
	ErrDuplicateNationalID     = errors.New("national ID already used for a foreign sheep order this year")
	ErrReceiptPending          = errors.New("a receipt is already awaiting verification")
)

// translateError maps Firestore gRPC errors onto the store's sentinel errors.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.NotFound:
		return ErrRecordNotFound
	case codes.AlreadyExists:
		return ErrRecordExists
	}

	return err
}
