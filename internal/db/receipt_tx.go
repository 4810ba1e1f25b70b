package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// CreateReceiptTx records an uploaded CIB/Edahabia receipt and flags what it pays for as awaiting verification.
func (store *FirestoreStore) CreateReceiptTx(ctx context.Context, receipt CIBReceipt) (CIBReceipt, error) {
	now := store.now()
	receipt.ID = uuid.NewString()
	receipt.Status = ReceiptStatusPending
	receipt.CreatedAt = now

	orderRef := store.collection(CollectionOrders).Doc(receipt.OrderID)
	receiptRef := store.collection(CollectionCIBReceipts).Doc(receipt.ID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		order, err := getDocumentTx[Order](tx, orderRef)
		if err != nil {
			return err
		}

		if !order.PaymentMethod.AcceptsReceipts() || order.Status.IsTerminal() || order.PaymentStatus == PaymentStatusPaid {
			return ErrOrderNotPayable
		}

		if order.PaymentMethod == PaymentMethodInstallments {
			if receipt.InstallmentID == "" {
				return ErrInstallmentMismatch
			}

			installmentRef := store.collection(CollectionInstallments).Doc(receipt.InstallmentID)
			installment, err := getDocumentTx[Installment](tx, installmentRef)
			if err != nil {
				return err
			}
			if installment.OrderID != order.ID {
				return ErrInstallmentMismatch
			}
			if installment.Status != InstallmentStatusUnpaid && installment.Status != InstallmentStatusOverdue {
				return ErrInstallmentPaid
			}

			if err = tx.Update(installmentRef, []firestore.Update{
				{Path: "status", Value: InstallmentStatusPendingVerification},
			}); err != nil {
				return err
			}
		} else {
			if order.PaymentStatus == PaymentStatusPendingVerification {
				return ErrReceiptPending
			}
			receipt.InstallmentID = ""

			if err = tx.Update(orderRef, []firestore.Update{
				{Path: "paymentStatus", Value: PaymentStatusPendingVerification},
				{Path: "updatedAt", Value: now},
			}); err != nil {
				return err
			}
		}

		return tx.Create(receiptRef, receipt)
	})
	if err != nil {
		return CIBReceipt{}, translateError(err)
	}

	return receipt, nil
}

func (store *FirestoreStore) GetReceiptByID(ctx context.Context, receiptID string) (CIBReceipt, error) {
	return getDocument[CIBReceipt](ctx, store.collection(CollectionCIBReceipts).Doc(receiptID))
}

func (store *FirestoreStore) ListReceiptsByOrder(ctx context.Context, orderID string) ([]CIBReceipt, error) {
	iter := store.collection(CollectionCIBReceipts).
		Where("orderId", "==", orderID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)

	return collectDocuments[CIBReceipt](iter)
}

func (store *FirestoreStore) ListReceipts(ctx context.Context, status string) ([]CIBReceipt, error) {
	query := store.collection(CollectionCIBReceipts).Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	return collectDocuments[CIBReceipt](query.OrderBy("createdAt", firestore.Desc).Limit(200).Documents(ctx))
}

type ReviewReceiptTxParams struct {
	ReceiptID  string
	ReviewerID string
	Reason     string
}

type VerifyReceiptTxResult struct {
	Receipt     CIBReceipt   `json:"receipt"`
	Order       Order        `json:"order"`
	Payment     Payment      `json:"payment"`
	Installment *Installment `json:"installment,omitempty"`
}

// VerifyReceiptTx accepts a pending receipt, settles the order or installment and writes the ledger payment.
func (store *FirestoreStore) VerifyReceiptTx(ctx context.Context, arg ReviewReceiptTxParams) (VerifyReceiptTxResult, error) {
	var result VerifyReceiptTxResult

	now := store.now()
	receiptRef := store.collection(CollectionCIBReceipts).Doc(arg.ReceiptID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		receipt, err := getDocumentTx[CIBReceipt](tx, receiptRef)
		if err != nil {
			return err
		}
		if receipt.Status != ReceiptStatusPending {
			return ErrAlreadyDecided
		}

		orderRef := store.collection(CollectionOrders).Doc(receipt.OrderID)
		order, err := getDocumentTx[Order](tx, orderRef)
		if err != nil {
			return fmt.Errorf("failed to get order %s: %w", receipt.OrderID, err)
		}

		paymentStatus := PaymentStatusPaid
		var installment *Installment

		if receipt.InstallmentID != "" {
			iter := tx.Documents(store.collection(CollectionInstallments).Where("orderId", "==", order.ID))
			installments, err := collectDocuments[Installment](iter)
			if err != nil {
				return err
			}

			for i := range installments {
				if installments[i].ID == receipt.InstallmentID {
					installments[i].Status = InstallmentStatusPaid
					installments[i].PaidAt = &now
					installment = &installments[i]
				}
			}
			if installment == nil {
				return ErrInstallmentMismatch
			}

			for _, other := range installments {
				if other.Status != InstallmentStatusPaid {
					paymentStatus = PaymentStatusPartiallyPaid
					break
				}
			}

			if err = tx.Update(store.collection(CollectionInstallments).Doc(installment.ID), []firestore.Update{
				{Path: "status", Value: InstallmentStatusPaid},
				{Path: "paidAt", Value: now},
			}); err != nil {
				return err
			}
		}

		receipt.Status = ReceiptStatusVerified
		receipt.ReviewedBy = arg.ReviewerID
		receipt.ReviewedAt = &now
		if err = tx.Update(receiptRef, []firestore.Update{
			{Path: "status", Value: receipt.Status},
			{Path: "reviewedBy", Value: receipt.ReviewedBy},
			{Path: "reviewedAt", Value: now},
		}); err != nil {
			return err
		}

		order.PaymentStatus = paymentStatus
		order.UpdatedAt = now
		if err = tx.Update(orderRef, []firestore.Update{
			{Path: "paymentStatus", Value: paymentStatus},
			{Path: "updatedAt", Value: now},
		}); err != nil {
			return err
		}

		payment := Payment{
			ID:             uuid.NewString(),
			UserID:         receipt.BuyerID,
			Type:           PaymentTypeOrder,
			OrderID:        order.ID,
			ReceiptID:      receipt.ID,
			Amount:         receipt.Amount,
			Method:         order.PaymentMethod,
			ReceiptURL:     receipt.ImageURL,
			TransactionRef: receipt.TransactionRef,
			Status:         PaymentRecordStatusApproved,
			ReviewedBy:     arg.ReviewerID,
			CreatedAt:      now,
			ReviewedAt:     &now,
		}
		if err = tx.Create(store.collection(CollectionPayments).Doc(payment.ID), payment); err != nil {
			return err
		}

		result = VerifyReceiptTxResult{
			Receipt:     receipt,
			Order:       order,
			Payment:     payment,
			Installment: installment,
		}
		return nil
	})
	if err != nil {
		return VerifyReceiptTxResult{}, translateError(err)
	}

	return result, nil
}

// RejectReceiptTx refuses a pending receipt and reopens what it was paying for.
func (store *FirestoreStore) RejectReceiptTx(ctx context.Context, arg ReviewReceiptTxParams) (CIBReceipt, error) {
	var receipt CIBReceipt

	now := store.now()
	receiptRef := store.collection(CollectionCIBReceipts).Doc(arg.ReceiptID)

	err := store.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var err error
		receipt, err = getDocumentTx[CIBReceipt](tx, receiptRef)
		if err != nil {
			return err
		}
		if receipt.Status != ReceiptStatusPending {
			return ErrAlreadyDecided
		}

		orderRef := store.collection(CollectionOrders).Doc(receipt.OrderID)
		order, err := getDocumentTx[Order](tx, orderRef)
		if err != nil {
			return fmt.Errorf("failed to get order %s: %w", receipt.OrderID, err)
		}

		var installment Installment
		installmentRef := store.collection(CollectionInstallments).Doc(receipt.InstallmentID)
		if receipt.InstallmentID != "" {
			installment, err = getDocumentTx[Installment](tx, installmentRef)
			if err != nil {
				return err
			}
		}

		receipt.Status = ReceiptStatusRejected
		receipt.RejectionReason = arg.Reason
		receipt.ReviewedBy = arg.ReviewerID
		receipt.ReviewedAt = &now
		if err = tx.Update(receiptRef, []firestore.Update{
			{Path: "status", Value: receipt.Status},
			{Path: "rejectionReason", Value: arg.Reason},
			{Path: "reviewedBy", Value: arg.ReviewerID},
			{Path: "reviewedAt", Value: now},
		}); err != nil {
			return err
		}

		if receipt.InstallmentID != "" {
			return tx.Update(installmentRef, []firestore.Update{{Path: "status", Value: installment.ReopenedStatus(now)}})
		}

		if order.PaymentStatus == PaymentStatusPendingVerification {
			return tx.Update(orderRef, []firestore.Update{
				{Path: "paymentStatus", Value: PaymentStatusUnpaid},
				{Path: "updatedAt", Value: now},
			})
		}

		return nil
	})
	if err != nil {
		return CIBReceipt{}, translateError(err)
	}

	return receipt, nil
}
