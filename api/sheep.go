package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/util"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

const maxSheepImages = 8

type sheepRequest struct {
	Title       string   `json:"title" binding:"required"`
	Breed       string   `json:"breed"`
	Category    string   `json:"category" binding:"required"`
	Origin      string   `json:"origin" binding:"required"`
	AgeMonths   int64    `json:"age_months"`
	WeightKg    float64  `json:"weight_kg"`
	Price       int64    `json:"price" binding:"required"`
	Description string   `json:"description"`
	Images      []string `json:"images" binding:"required"`
	Wilaya      string   `json:"wilaya" binding:"required"`
}

func validateSheepRequest(req *sheepRequest) (violations []*FieldViolation) {
	if err := validator.ValidateString(req.Title, 3, 120); err != nil {
		violations = append(violations, fieldViolation("title", err))
	}

	if err := validator.ValidateString(req.Breed, 0, 64); err != nil {
		violations = append(violations, fieldViolation("breed", err))
	}

	if err := db.IsValidSheepCategory(req.Category); err != nil {
		violations = append(violations, fieldViolation("category", err))
	}

	if err := db.IsValidSheepOrigin(req.Origin); err != nil {
		violations = append(violations, fieldViolation("origin", err))
	}

	if req.AgeMonths < 0 || req.AgeMonths > 240 {
		violations = append(violations, fieldViolation("age_months", errors.New("must be between 0 and 240")))
	}

	if req.WeightKg < 0 || req.WeightKg > 300 {
		violations = append(violations, fieldViolation("weight_kg", errors.New("must be between 0 and 300")))
	}

	if req.Price <= 0 {
		violations = append(violations, fieldViolation("price", errors.New("must be greater than 0")))
	}

	if err := validator.ValidateString(req.Description, 0, 2000); err != nil {
		violations = append(violations, fieldViolation("description", err))
	}

	if len(req.Images) == 0 || len(req.Images) > maxSheepImages {
		violations = append(violations, fieldViolation("images", fmt.Errorf("must contain from 1 to %d images", maxSheepImages)))
	}
	for i, image := range req.Images {
		if err := validator.ValidateImageURL(image); err != nil {
			violations = append(violations, fieldViolation(fmt.Sprintf("images[%d]", i), err))
		}
	}

	if err := validator.ValidateString(req.Wilaya, 2, 64); err != nil {
		violations = append(violations, fieldViolation("wilaya", err))
	}

	return violations
}

func (req *sheepRequest) toSheep() db.Sheep {
	return db.Sheep{
		Title:       req.Title,
		Breed:       req.Breed,
		Category:    db.SheepCategory(req.Category),
		Origin:      db.SheepOrigin(req.Origin),
		AgeMonths:   req.AgeMonths,
		WeightKg:    req.WeightKg,
		Price:       req.Price,
		Description: req.Description,
		Images:      req.Images,
		Wilaya:      req.Wilaya,
	}
}

// getSheepOr404 loads a listing and answers 404 or 500 itself when it cannot.
func (server *Server) getSheepOr404(c *gin.Context, sheepID string) (db.Sheep, bool) {
	sheep, err := server.store.GetSheepByID(c, sheepID)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
			return db.Sheep{}, false
		}

		log.Err(err).Str("sheep_id", sheepID).Msg("failed to get sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return db.Sheep{}, false
	}

	return sheep, true
}

//	@Summary		List sheep on sale
//	@Description	Approved listings only, newest first
//	@Tags			sheep
//	@Produce		json
//	@Param			category	query		string	false	"Category"	Enums(kebch, na3ja, kharouf)
//	@Param			origin		query		string	false	"Origin"	Enums(local, foreign)
//	@Param			wilaya		query		string	false	"Wilaya"
//	@Param			min_price	query		int		false	"Minimum price in DZD"
//	@Param			max_price	query		int		false	"Maximum price in DZD"
//	@Param			limit		query		int		false	"Page size"
//	@Success		200			{array}		db.Sheep
//	@Router			/sheep [get]
func (server *Server) listSheep(c *gin.Context) {
	arg := db.ListSheepParams{
		Status:   string(db.SheepStatusApproved),
		Category: c.Query("category"),
		Origin:   c.Query("origin"),
		Wilaya:   c.Query("wilaya"),
		Limit:    queryLimit(c),
	}

	if arg.Category != "" {
		if err := db.IsValidSheepCategory(arg.Category); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}
	if arg.Origin != "" {
		if err := db.IsValidSheepOrigin(arg.Origin); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	var err error
	if arg.MinPrice, err = queryInt64(c, "min_price"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}
	if arg.MaxPrice, err = queryInt64(c, "max_price"); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	sheep, err := server.store.ListSheep(c, arg)
	if err != nil {
		log.Err(err).Msg("failed to list sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, sheep)
}

func queryInt64(c *gin.Context, key string) (int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%s must be a positive integer", key)
	}

	return value, nil
}

//	@Summary		Get a sheep listing
//	@Tags			sheep
//	@Produce		json
//	@Param			sheepID	path		string	true	"Sheep ID"
//	@Success		200		{object}	db.Sheep
//	@Failure		404		{object}	map[string]string
//	@Router			/sheep/{sheepID} [get]
func (server *Server) getSheep(c *gin.Context) {
	sheep, ok := server.getSheepOr404(c, c.Param("sheepID"))
	if !ok {
		return
	}

	if !isPubliclyVisible(sheep) {
		c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
		return
	}

	c.JSON(http.StatusOK, sheep)
}

//	@Summary		Get a sheep listing by slug
//	@Tags			sheep
//	@Produce		json
//	@Param			slug	path		string	true	"Listing slug"
//	@Success		200		{object}	db.Sheep
//	@Failure		404		{object}	map[string]string
//	@Router			/sheep/by-slug/{slug} [get]
func (server *Server) getSheepBySlug(c *gin.Context) {
	sheep, err := server.store.GetSheepBySlug(c, c.Param("slug"))
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
			return
		}

		log.Err(err).Msg("failed to get sheep by slug")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if !isPubliclyVisible(sheep) {
		c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
		return
	}

	c.JSON(http.StatusOK, sheep)
}

// isPubliclyVisible hides listings still under review or refused.
func isPubliclyVisible(sheep db.Sheep) bool {
	return sheep.Status == db.SheepStatusApproved ||
		sheep.Status == db.SheepStatusReserved ||
		sheep.Status == db.SheepStatusSold
}

//	@Summary		Create a sheep listing
//	@Description	The listing waits for administrator approval before it is shown
//	@Tags			seller
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		sheepRequest	true	"Listing"
//	@Success		201		{object}	db.Sheep
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/seller/sheep [post]
func (server *Server) createSheep(c *gin.Context) {
	seller := currentUser(c)
	req := new(sheepRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateSheepRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	arg := req.toSheep()
	arg.SellerID = seller.ID
	arg.Slug = util.GenerateRandomSlug(req.Title)

	sheep, err := server.store.CreateSheep(c, arg)
	if err != nil {
		log.Err(err).Str("seller_id", seller.ID).Msg("failed to create sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.alertAdmins(c, fmt.Sprintf("🐑 New listing awaiting review: %s (%s) by %s",
		sheep.Title, util.FormatDZD(sheep.Price), seller.FullName))

	c.JSON(http.StatusCreated, sheep)
}

//	@Summary		List own listings
//	@Tags			seller
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"
//	@Success		200		{array}		db.Sheep
//	@Router			/seller/sheep [get]
func (server *Server) listSellerSheep(c *gin.Context) {
	seller := currentUser(c)

	status := c.Query("status")
	if status != "" {
		if err := db.IsValidSheepStatus(status); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	sheep, err := server.store.ListSheep(c, db.ListSheepParams{
		SellerID: seller.ID,
		Status:   status,
		Limit:    queryLimit(c),
	})
	if err != nil {
		log.Err(err).Str("seller_id", seller.ID).Msg("failed to list seller sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, sheep)
}

//	@Summary		Update a listing
//	@Description	Only pending or rejected listings can be edited. The listing goes back to review.
//	@Tags			seller
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			sheepID	path		string			true	"Sheep ID"
//	@Param			request	body		sheepRequest	true	"Listing"
//	@Success		200		{object}	db.Sheep
//	@Failure		403		{object}	map[string]string
//	@Failure		409		{object}	map[string]string	"Listing is locked"
//	@Router			/seller/sheep/{sheepID} [put]
func (server *Server) updateSheep(c *gin.Context) {
	seller := currentUser(c)
	req := new(sheepRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateSheepRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	sheep, ok := server.getSheepOr404(c, c.Param("sheepID"))
	if !ok {
		return
	}

	if sheep.SellerID != seller.ID {
		c.JSON(http.StatusForbidden, errorResponse(ErrNotSheepOwner))
		return
	}

	if !sheep.Status.Editable() {
		c.JSON(http.StatusConflict, errorResponse(ErrSheepLocked))
		return
	}

	arg := req.toSheep()
	arg.ID = sheep.ID

	updated, err := server.store.UpdateSheep(c, arg)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrSheepUnavailable):
			c.JSON(http.StatusConflict, errorResponse(ErrSheepLocked))
			return
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
			return
		}

		log.Err(err).Str("sheep_id", sheep.ID).Msg("failed to update sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.alertAdmins(c, fmt.Sprintf("✏️ Listing edited and awaiting review: %s", updated.Title))

	c.JSON(http.StatusOK, updated)
}

//	@Summary		Delete a listing
//	@Description	Reserved or sold listings cannot be deleted
//	@Tags			seller
//	@Security		accessToken
//	@Param			sheepID	path	string	true	"Sheep ID"
//	@Success		204
//	@Failure		403	{object}	map[string]string
//	@Failure		409	{object}	map[string]string	"Listing is locked"
//	@Router			/seller/sheep/{sheepID} [delete]
func (server *Server) deleteSheep(c *gin.Context) {
	seller := currentUser(c)

	sheep, ok := server.getSheepOr404(c, c.Param("sheepID"))
	if !ok {
		return
	}

	if sheep.SellerID != seller.ID {
		c.JSON(http.StatusForbidden, errorResponse(ErrNotSheepOwner))
		return
	}

	if !sheep.Status.Deletable() {
		c.JSON(http.StatusConflict, errorResponse(ErrSheepLocked))
		return
	}

	if err := server.store.DeleteSheep(c, sheep.ID); err != nil {
		switch {
		case errors.Is(err, db.ErrSheepUnavailable):
			c.JSON(http.StatusConflict, errorResponse(ErrSheepLocked))
			return
		case errors.Is(err, db.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, errorResponse(ErrSheepNotFound))
			return
		}

		log.Err(err).Str("sheep_id", sheep.ID).Msg("failed to delete sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.Status(http.StatusNoContent)
}

//	@Summary		List listings for moderation
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			status	query		string	false	"Status filter"	Enums(pending, approved, rejected, reserved, sold)
//	@Success		200		{array}		db.Sheep
//	@Router			/admin/sheep [get]
func (server *Server) listSheepForAdmin(c *gin.Context) {
	status := c.Query("status")
	if status != "" {
		if err := db.IsValidSheepStatus(status); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	sheep, err := server.store.ListSheep(c, db.ListSheepParams{Status: status, Limit: queryLimit(c)})
	if err != nil {
		log.Err(err).Msg("failed to list sheep")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, sheep)
}

//	@Summary		Approve a listing
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			sheepID	path		string	true	"Sheep ID"
//	@Success		200		{object}	db.Sheep
//	@Failure		409		{object}	map[string]string	"Listing is not pending"
//	@Router			/admin/sheep/{sheepID}/approve [patch]
func (server *Server) approveSheep(c *gin.Context) {
	server.decideSheep(c, db.SheepStatusApproved, "")
}

type rejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

//	@Summary		Reject a listing
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			sheepID	path		string			true	"Sheep ID"
//	@Param			request	body		rejectRequest	true	"Reason"
//	@Success		200		{object}	db.Sheep
//	@Failure		409		{object}	map[string]string	"Listing is not pending"
//	@Router			/admin/sheep/{sheepID}/reject [patch]
func (server *Server) rejectSheep(c *gin.Context) {
	req := new(rejectRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	server.decideSheep(c, db.SheepStatusRejected, req.Reason)
}

func (server *Server) decideSheep(c *gin.Context, status db.SheepStatus, reason string) {
	sheep, ok := server.getSheepOr404(c, c.Param("sheepID"))
	if !ok {
		return
	}

	if sheep.Status != db.SheepStatusPending {
		c.JSON(http.StatusConflict, errorResponse(fmt.Errorf("listing is %s, only pending listings can be reviewed", sheep.Status)))
		return
	}

	updated, err := server.store.UpdateSheepStatus(c, db.UpdateSheepStatusParams{
		SheepID:         sheep.ID,
		Status:          status,
		RejectionReason: reason,
	})
	if err != nil {
		log.Err(err).Str("sheep_id", sheep.ID).Msg("failed to update sheep status")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	title := "Listing approved"
	message := fmt.Sprintf("Your listing \"%s\" is now visible to buyers.", util.TruncateContent(updated.Title, 60))
	if status == db.SheepStatusRejected {
		title = "Listing rejected"
		message = fmt.Sprintf("Your listing \"%s\" was rejected: %s", util.TruncateContent(updated.Title, 60), reason)
	}
	server.notify(c, updated.SellerID, db.NotificationTypeListing, updated.ID, title, message)

	c.JSON(http.StatusOK, updated)
}
