package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

var (
	ErrAdRequestNotFound = errors.New("ad request not found")
	ErrAdRequestDecided  = errors.New("only pending ad requests can be withdrawn")
)

type createAdRequestRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url" binding:"required"`
	LinkURL      string `json:"link_url"`
	DurationDays int64  `json:"duration_days" binding:"required"`
	ReceiptURL   string `json:"receipt_url"`
}

func validateCreateAdRequestRequest(req *createAdRequestRequest) (violations []*FieldViolation) {
	violations = validateAdContent(req.Title, req.Description, req.ImageURL, req.LinkURL)

	if req.DurationDays < 1 || req.DurationDays > 90 {
		violations = append(violations, fieldViolation("duration_days", errors.New("must be between 1 and 90")))
	}

	if req.ReceiptURL != "" {
		if err := validator.ValidateImageURL(req.ReceiptURL); err != nil {
			violations = append(violations, fieldViolation("receipt_url", err))
		}
	}

	return violations
}

//	@Summary		Request an ad
//	@Tags			seller
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		createAdRequestRequest	true	"Ad request"
//	@Success		201		{object}	db.AdRequest
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/seller/ad-requests [post]
func (server *Server) createAdRequest(c *gin.Context) {
	seller := currentUser(c)
	req := new(createAdRequestRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateCreateAdRequestRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	request, err := server.store.CreateAdRequest(c, db.AdRequest{
		SellerID:     seller.ID,
		Title:        req.Title,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		LinkURL:      req.LinkURL,
		DurationDays: req.DurationDays,
		ReceiptURL:   req.ReceiptURL,
	})
	if err != nil {
		log.Err(err).Str("seller_id", seller.ID).Msg("failed to create ad request")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.alertAdmins(c, fmt.Sprintf("📢 Ad request \"%s\" for %d days from %s",
		util.TruncateContent(request.Title, 60), request.DurationDays, seller.FullName))

	c.JSON(http.StatusCreated, request)
}

//	@Summary		List own ad requests
//	@Tags			seller
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{array}	db.AdRequest
//	@Router			/seller/ad-requests [get]
func (server *Server) listSellerAdRequests(c *gin.Context) {
	seller := currentUser(c)

	requests, err := server.store.ListAdRequests(c, db.ListAdRequestsParams{SellerID: seller.ID})
	if err != nil {
		log.Err(err).Str("seller_id", seller.ID).Msg("failed to list ad requests")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, requests)
}

//	@Summary		Withdraw an ad request
//	@Tags			seller
//	@Security		accessToken
//	@Param			requestID	path	string	true	"Ad request ID"
//	@Success		204
//	@Failure		409	{object}	map[string]string	"Request already decided"
//	@Router			/seller/ad-requests/{requestID} [delete]
func (server *Server) deleteAdRequest(c *gin.Context) {
	seller := currentUser(c)
	requestID := c.Param("requestID")

	request, err := server.store.GetAdRequestByID(c, requestID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrAdRequestNotFound))
			return
		}

		log.Err(err).Str("request_id", requestID).Msg("failed to get ad request")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if request.SellerID != seller.ID {
		c.JSON(http.StatusNotFound, errorResponse(ErrAdRequestNotFound))
		return
	}

	if request.Status != db.AdRequestStatusPending {
		c.JSON(http.StatusConflict, errorResponse(ErrAdRequestDecided))
		return
	}

	if err = server.store.DeleteAdRequest(c, request.ID); err != nil {
		switch {
		case errors.Is(err, db.ErrAlreadyDecided):
			c.JSON(http.StatusConflict, errorResponse(ErrAdRequestDecided))
			return
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrAdRequestNotFound))
			return
		}

		log.Err(err).Str("request_id", requestID).Msg("failed to delete ad request")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.Status(http.StatusNoContent)
}

//	@Summary		List ad requests for review
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"	Enums(pending, approved, rejected)
//	@Success		200		{array}		db.AdRequest
//	@Router			/admin/ad-requests [get]
func (server *Server) listAdRequests(c *gin.Context) {
	status := c.Query("status")
	if status != "" {
		if err := db.IsValidAdRequestStatus(status); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	requests, err := server.store.ListAdRequests(c, db.ListAdRequestsParams{Status: status})
	if err != nil {
		log.Err(err).Msg("failed to list ad requests")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, requests)
}

type approveAdRequestRequest struct {
	Position int64 `json:"position"`
}

//	@Summary		Approve an ad request
//	@Description	Publishes the ad from now for the requested number of days
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			requestID	path		string					true	"Ad request ID"
//	@Param			request		body		approveAdRequestRequest	false	"Display position"
//	@Success		200			{object}	db.ApproveAdRequestTxResult
//	@Failure		409			{object}	map[string]string	"Request already decided"
//	@Router			/admin/ad-requests/{requestID}/approve [patch]
func (server *Server) approveAdRequest(c *gin.Context) {
	admin := currentUser(c)

	req := new(approveAdRequestRequest)
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(req); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	result, err := server.store.ApproveAdRequestTx(c, db.ApproveAdRequestTxParams{
		RequestID:  c.Param("requestID"),
		ApproverID: admin.ID,
		Position:   max(req.Position, 0),
	})
	if err != nil {
		server.respondReviewError(c, err, "failed to approve ad request")
		return
	}

	server.notify(c, result.AdRequest.SellerID, db.NotificationTypeAdRequest, result.AdRequest.ID,
		"Ad approved", fmt.Sprintf("Your ad \"%s\" runs until %s.",
			util.TruncateContent(result.Ad.Title, 60), result.Ad.EndsAt.Format("02/01/2006")))

	c.JSON(http.StatusOK, result)
}

//	@Summary		Reject an ad request
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			requestID	path		string			true	"Ad request ID"
//	@Param			request		body		rejectRequest	true	"Reason"
//	@Success		200			{object}	db.AdRequest
//	@Failure		409			{object}	map[string]string	"Request already decided"
//	@Router			/admin/ad-requests/{requestID}/reject [patch]
func (server *Server) rejectAdRequest(c *gin.Context) {
	admin := currentUser(c)
	req := new(rejectRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	request, err := server.store.RejectAdRequestTx(c, db.RejectAdRequestTxParams{
		RequestID:  c.Param("requestID"),
		RejectorID: admin.ID,
		Reason:     req.Reason,
	})
	if err != nil {
		server.respondReviewError(c, err, "failed to reject ad request")
		return
	}

	server.notify(c, request.SellerID, db.NotificationTypeAdRequest, request.ID,
		"Ad request rejected", fmt.Sprintf("Your ad request \"%s\" was rejected: %s",
			util.TruncateContent(request.Title, 60), req.Reason))

	c.JSON(http.StatusOK, request)
}
