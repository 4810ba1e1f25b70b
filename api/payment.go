package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

type createReceiptRequest struct {
	ImageURL       string `json:"image_url" binding:"required"`
	Amount         int64  `json:"amount" binding:"required"`
	InstallmentID  string `json:"installment_id"`
	TransactionRef string `json:"transaction_ref"`
}

func validateCreateReceiptRequest(req *createReceiptRequest) (violations []*FieldViolation) {
	if err := validator.ValidateImageURL(req.ImageURL); err != nil {
		violations = append(violations, fieldViolation("image_url", err))
	}

	if req.Amount <= 0 {
		violations = append(violations, fieldViolation("amount", errors.New("must be greater than 0")))
	}

	if err := validator.ValidateString(req.TransactionRef, 0, 64); err != nil {
		violations = append(violations, fieldViolation("transaction_ref", err))
	}

	return violations
}

//	@Summary		Upload a payment receipt
//	@Description	CIB, Edahabia and installment orders are paid by bank transfer and proven with a receipt
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string					true	"Order ID"
//	@Param			request	body		createReceiptRequest	true	"Receipt"
//	@Success		201		{object}	db.CIBReceipt
//	@Failure		409		{object}	map[string]string	"Order does not accept receipts"
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/orders/{orderID}/receipts [post]
func (server *Server) createReceipt(c *gin.Context) {
	buyer := currentUser(c)
	req := new(createReceiptRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateCreateReceiptRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	order, ok := server.getOrderForParty(c)
	if !ok {
		return
	}

	if order.BuyerID != buyer.ID {
		c.JSON(http.StatusForbidden, errorResponse(ErrNotOrderParty))
		return
	}

	receipt, err := server.store.CreateReceiptTx(c, db.CIBReceipt{
		OrderID:        order.ID,
		BuyerID:        buyer.ID,
		InstallmentID:  req.InstallmentID,
		ImageURL:       req.ImageURL,
		Amount:         req.Amount,
		TransactionRef: req.TransactionRef,
	})
	if err != nil {
		switch {
		case errors.Is(err, db.ErrOrderNotPayable),
			errors.Is(err, db.ErrInstallmentPaid),
			errors.Is(err, db.ErrReceiptPending):
			c.JSON(http.StatusConflict, errorResponse(err))
		case errors.Is(err, db.ErrInstallmentMismatch), errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusUnprocessableEntity, failedValidationError([]*FieldViolation{
				fieldViolation("installment_id", db.ErrInstallmentMismatch),
			}))
		default:
			log.Err(err).Str("order_id", order.ID).Msg("failed to create receipt")
			c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		}
		return
	}

	server.alertAdmins(c, fmt.Sprintf("🧾 Receipt of %s uploaded for order %s", util.FormatDZD(receipt.Amount), order.Code))

	c.JSON(http.StatusCreated, receipt)
}

//	@Summary		List the receipts of an order
//	@Tags			payments
//	@Produce		json
//	@Security		accessToken
//	@Param			orderID	path		string	true	"Order ID"
//	@Success		200		{array}		db.CIBReceipt
//	@Router			/orders/{orderID}/receipts [get]
func (server *Server) listOrderReceipts(c *gin.Context) {
	order, ok := server.getOrderForParty(c)
	if !ok {
		return
	}

	receipts, err := server.store.ListReceiptsByOrder(c, order.ID)
	if err != nil {
		log.Err(err).Str("order_id", order.ID).Msg("failed to list order receipts")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, receipts)
}

//	@Summary		List receipts for review
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"	Enums(pending, verified, rejected)
//	@Success		200		{array}		db.CIBReceipt
//	@Router			/admin/receipts [get]
func (server *Server) listReceipts(c *gin.Context) {
	status := c.Query("status")
	if status != "" {
		if err := db.IsValidReceiptStatus(status); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	receipts, err := server.store.ListReceipts(c, status)
	if err != nil {
		log.Err(err).Msg("failed to list receipts")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, receipts)
}

//	@Summary		Verify a receipt
//	@Description	Settles the order or installment and records the payment
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			receiptID	path		string	true	"Receipt ID"
//	@Success		200			{object}	db.VerifyReceiptTxResult
//	@Failure		409			{object}	map[string]string	"Receipt already decided"
//	@Router			/admin/receipts/{receiptID}/verify [patch]
func (server *Server) verifyReceipt(c *gin.Context) {
	admin := currentUser(c)

	result, err := server.store.VerifyReceiptTx(c, db.ReviewReceiptTxParams{
		ReceiptID:  c.Param("receiptID"),
		ReviewerID: admin.ID,
	})
	if err != nil {
		server.respondReviewError(c, err, "failed to verify receipt")
		return
	}

	server.announceReceiptDecision(c, result.Receipt, result.Order.Code, true)

	c.JSON(http.StatusOK, result)
}

//	@Summary		Reject a receipt
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			receiptID	path		string			true	"Receipt ID"
//	@Param			request		body		rejectRequest	true	"Reason"
//	@Success		200			{object}	db.CIBReceipt
//	@Failure		409			{object}	map[string]string	"Receipt already decided"
//	@Router			/admin/receipts/{receiptID}/reject [patch]
func (server *Server) rejectReceipt(c *gin.Context) {
	admin := currentUser(c)
	req := new(rejectRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	receipt, err := server.store.RejectReceiptTx(c, db.ReviewReceiptTxParams{
		ReceiptID:  c.Param("receiptID"),
		ReviewerID: admin.ID,
		Reason:     req.Reason,
	})
	if err != nil {
		server.respondReviewError(c, err, "failed to reject receipt")
		return
	}

	orderCode := receipt.OrderID
	if order, err := server.store.GetOrderByID(c, receipt.OrderID); err == nil {
		orderCode = order.Code
	}
	server.announceReceiptDecision(c, receipt, orderCode, false)

	c.JSON(http.StatusOK, receipt)
}

// respondReviewError maps the errors shared by the moderation transactions.
func (server *Server) respondReviewError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, db.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err))
	case errors.Is(err, db.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, errorResponse(err))
	default:
		log.Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
	}
}

func (server *Server) announceReceiptDecision(c *gin.Context, receipt db.CIBReceipt, orderCode string, approved bool) {
	title := "Payment verified"
	message := fmt.Sprintf("Your payment of %s for order %s was verified.", util.FormatDZD(receipt.Amount), orderCode)
	if !approved {
		title = "Receipt rejected"
		message = fmt.Sprintf("Your receipt for order %s was rejected: %s", orderCode, receipt.RejectionReason)
	}
	server.notify(c, receipt.BuyerID, db.NotificationTypePayment, receipt.OrderID, title, message)

	buyer, err := server.store.GetUserByID(c, receipt.BuyerID)
	if err != nil {
		log.Err(err).Str("receipt_id", receipt.ID).Msg("failed to get buyer for receipt email")
		return
	}

	server.sendEmail(c, buyer.Email, mailer.TemplateReceiptDecision, map[string]any{
		"full_name":  buyer.FullName,
		"order_code": orderCode,
		"amount":     receipt.Amount,
		"approved":   approved,
		"reason":     receipt.RejectionReason,
	})
}
