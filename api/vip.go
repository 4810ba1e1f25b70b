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

var ErrVIPRequestPending = errors.New("a VIP request is already awaiting review")

type createVIPRequestRequest struct {
	ReceiptURL     string `json:"receipt_url" binding:"required"`
	TransactionRef string `json:"transaction_ref"`
}

//	@Summary		Request a VIP membership
//	@Description	The membership price is paid by transfer and proven with a receipt
//	@Tags			vip
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		createVIPRequestRequest	true	"Receipt"
//	@Success		201		{object}	db.Payment
//	@Failure		409		{object}	map[string]string	"A request is already pending"
//	@Router			/vip/requests [post]
func (server *Server) createVIPRequest(c *gin.Context) {
	user := currentUser(c)
	req := new(createVIPRequestRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	var violations []*FieldViolation
	if err := validator.ValidateImageURL(req.ReceiptURL); err != nil {
		violations = append(violations, fieldViolation("receipt_url", err))
	}
	if err := validator.ValidateString(req.TransactionRef, 0, 64); err != nil {
		violations = append(violations, fieldViolation("transaction_ref", err))
	}
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	pending, err := server.store.ListPayments(c, db.ListPaymentsParams{
		UserID: user.ID,
		Type:   db.PaymentTypeVIP,
		Status: string(db.PaymentRecordStatusPending),
	})
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to list pending VIP requests")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}
	if len(pending) > 0 {
		c.JSON(http.StatusConflict, errorResponse(ErrVIPRequestPending))
		return
	}

	settings, err := server.store.GetSettings(c)
	if err != nil {
		log.Err(err).Msg("failed to get settings")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	payment, err := server.store.CreatePayment(c, db.Payment{
		UserID:         user.ID,
		Type:           db.PaymentTypeVIP,
		Amount:         settings.VIPPrice,
		Method:         db.PaymentMethodCIB,
		ReceiptURL:     req.ReceiptURL,
		TransactionRef: req.TransactionRef,
		Status:         db.PaymentRecordStatusPending,
	})
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to create VIP request")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.alertAdmins(c, fmt.Sprintf("⭐ VIP request from %s (%s)", user.FullName, util.FormatDZD(payment.Amount)))

	c.JSON(http.StatusCreated, payment)
}

//	@Summary		List own VIP requests
//	@Tags			vip
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{array}	db.Payment
//	@Router			/vip/requests [get]
func (server *Server) listOwnVIPRequests(c *gin.Context) {
	user := currentUser(c)

	payments, err := server.store.ListPayments(c, db.ListPaymentsParams{
		UserID: user.ID,
		Type:   db.PaymentTypeVIP,
	})
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to list VIP requests")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, payments)
}

//	@Summary		List VIP requests for review
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"	Enums(pending, approved, rejected)
//	@Success		200		{array}		db.Payment
//	@Router			/admin/vip-requests [get]
func (server *Server) listVIPRequests(c *gin.Context) {
	status := c.Query("status")
	if status != "" {
		if err := db.IsValidPaymentRecordStatus(status); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	payments, err := server.store.ListPayments(c, db.ListPaymentsParams{
		Type:   db.PaymentTypeVIP,
		Status: status,
	})
	if err != nil {
		log.Err(err).Msg("failed to list VIP requests")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, payments)
}

//	@Summary		Approve a VIP request
//	@Description	Extends the membership from the later of now and the current expiry
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			paymentID	path		string	true	"Payment ID"
//	@Success		200			{object}	db.ApproveVIPPaymentTxResult
//	@Failure		409			{object}	map[string]string	"Request already decided"
//	@Router			/admin/vip-requests/{paymentID}/approve [patch]
func (server *Server) approveVIPRequest(c *gin.Context) {
	admin := currentUser(c)

	settings, err := server.store.GetSettings(c)
	if err != nil {
		log.Err(err).Msg("failed to get settings")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	result, err := server.store.ApproveVIPPaymentTx(c, db.ApproveVIPPaymentTxParams{
		PaymentID:    c.Param("paymentID"),
		ReviewerID:   admin.ID,
		DurationDays: settings.VIPDurationDays,
	})
	if err != nil {
		server.respondReviewError(c, err, "failed to approve VIP request")
		return
	}

	expiresAt := result.User.VIPExpiresAt.Format("02/01/2006")
	server.notify(c, result.User.ID, db.NotificationTypeVIP, result.Payment.ID,
		"VIP membership active", fmt.Sprintf("You are a VIP member until %s.", expiresAt))
	server.sendEmail(c, result.User.Email, mailer.TemplateVIPDecision, map[string]any{
		"full_name":        result.User.FullName,
		"approved":         true,
		"expires_at":       expiresAt,
		"discount_percent": settings.VIPDiscountPercent,
	})

	c.JSON(http.StatusOK, result)
}

//	@Summary		Reject a VIP request
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			paymentID	path		string			true	"Payment ID"
//	@Param			request		body		rejectRequest	true	"Reason"
//	@Success		200			{object}	db.Payment
//	@Failure		409			{object}	map[string]string	"Request already decided"
//	@Router			/admin/vip-requests/{paymentID}/reject [patch]
func (server *Server) rejectVIPRequest(c *gin.Context) {
	admin := currentUser(c)
	req := new(rejectRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	payment, err := server.store.RejectPaymentTx(c, db.RejectPaymentTxParams{
		PaymentID:  c.Param("paymentID"),
		ReviewerID: admin.ID,
		Reason:     req.Reason,
	})
	if err != nil {
		server.respondReviewError(c, err, "failed to reject VIP request")
		return
	}

	server.notify(c, payment.UserID, db.NotificationTypeVIP, payment.ID,
		"VIP request declined", fmt.Sprintf("Your VIP request was declined: %s", req.Reason))

	user, err := server.store.GetUserByID(c, payment.UserID)
	if err != nil {
		log.Err(err).Str("payment_id", payment.ID).Msg("failed to get user for VIP email")
	} else {
		server.sendEmail(c, user.Email, mailer.TemplateVIPDecision, map[string]any{
			"full_name": user.FullName,
			"approved":  false,
			"reason":    req.Reason,
		})
	}

	c.JSON(http.StatusOK, payment)
}
