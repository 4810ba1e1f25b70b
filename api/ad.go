package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

var ErrAdNotFound = errors.New("ad not found")

//	@Summary		List the ads to display
//	@Tags			ads
//	@Produce		json
//	@Success		200	{array}	db.Ad
//	@Router			/ads [get]
func (server *Server) listLiveAds(c *gin.Context) {
	ads, err := server.store.ListLiveAds(c, server.now())
	if err != nil {
		log.Err(err).Msg("failed to list live ads")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, ads)
}

type adRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url" binding:"required"`
	LinkURL     string    `json:"link_url"`
	Position    int64     `json:"position"`
	Active      bool      `json:"active"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
}

func validateAdRequest(req *adRequest) (violations []*FieldViolation) {
	violations = validateAdContent(req.Title, req.Description, req.ImageURL, req.LinkURL)

	if req.Position < 0 {
		violations = append(violations, fieldViolation("position", errors.New("must not be negative")))
	}

	if !req.EndsAt.After(req.StartsAt) {
		violations = append(violations, fieldViolation("ends_at", errors.New("must be after starts_at")))
	}

	return violations
}

// validateAdContent checks the fields shared by ads and seller ad requests.
func validateAdContent(title, description, imageURL, linkURL string) (violations []*FieldViolation) {
	if err := validator.ValidateString(title, 3, 100); err != nil {
		violations = append(violations, fieldViolation("title", err))
	}

	if err := validator.ValidateString(description, 0, 500); err != nil {
		violations = append(violations, fieldViolation("description", err))
	}

	if err := validator.ValidateImageURL(imageURL); err != nil {
		violations = append(violations, fieldViolation("image_url", err))
	}

	if linkURL != "" {
		if err := validator.ValidateImageURL(linkURL); err != nil {
			violations = append(violations, fieldViolation("link_url", err))
		}
	}

	return violations
}

//	@Summary		List all ads
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{array}	db.Ad
//	@Router			/admin/ads [get]
func (server *Server) listAds(c *gin.Context) {
	ads, err := server.store.ListAds(c)
	if err != nil {
		log.Err(err).Msg("failed to list ads")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, ads)
}

//	@Summary		Create an ad
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		adRequest	true	"Ad"
//	@Success		201		{object}	db.Ad
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/admin/ads [post]
func (server *Server) createAd(c *gin.Context) {
	admin := currentUser(c)
	req := new(adRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateAdRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	ad, err := server.store.CreateAd(c, db.Ad{
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		LinkURL:     req.LinkURL,
		Position:    req.Position,
		Active:      req.Active,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		CreatedBy:   admin.ID,
	})
	if err != nil {
		log.Err(err).Msg("failed to create ad")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusCreated, ad)
}

//	@Summary		Update an ad
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			adID	path		string		true	"Ad ID"
//	@Param			request	body		adRequest	true	"Ad"
//	@Success		200		{object}	db.Ad
//	@Failure		404		{object}	map[string]string
//	@Router			/admin/ads/{adID} [put]
func (server *Server) updateAd(c *gin.Context) {
	req := new(adRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateAdRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	ad, err := server.store.UpdateAd(c, db.Ad{
		ID:          c.Param("adID"),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		LinkURL:     req.LinkURL,
		Position:    req.Position,
		Active:      req.Active,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrAdNotFound))
			return
		}

		log.Err(err).Msg("failed to update ad")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, ad)
}

//	@Summary		Delete an ad
//	@Tags			admin
//	@Security		accessToken
//	@Param			adID	path	string	true	"Ad ID"
//	@Success		204
//	@Failure		404	{object}	map[string]string
//	@Router			/admin/ads/{adID} [delete]
func (server *Server) deleteAd(c *gin.Context) {
	if err := server.store.DeleteAd(c, c.Param("adID")); err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(ErrAdNotFound))
			return
		}

		log.Err(err).Msg("failed to delete ad")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.Status(http.StatusNoContent)
}
