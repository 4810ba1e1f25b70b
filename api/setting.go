package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

//	@Summary		Get marketplace settings
//	@Tags			settings
//	@Produce		json
//	@Success		200	{object}	db.Settings
//	@Router			/settings [get]
func (server *Server) getSettings(c *gin.Context) {
	settings, err := server.store.GetSettings(c)
	if err != nil {
		log.Err(err).Msg("failed to get settings")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	VIPDiscountPercent    int64  `json:"vip_discount_percent"`
	VIPPrice              int64  `json:"vip_price"`
	VIPDurationDays       int64  `json:"vip_duration_days"`
	ForeignSheepMaxSalary int64  `json:"foreign_sheep_max_salary"`
	ForeignOrdersOpen     bool   `json:"foreign_orders_open"`
	MaxInstallments       int64  `json:"max_installments"`
	ContactEmail          string `json:"contact_email"`
	ContactPhone          string `json:"contact_phone"`
}

func validateUpdateSettingsRequest(req *updateSettingsRequest) (violations []*FieldViolation) {
	if req.VIPDiscountPercent < 0 || req.VIPDiscountPercent > 100 {
		violations = append(violations, fieldViolation("vip_discount_percent", errors.New("must be between 0 and 100")))
	}

	if req.VIPPrice < 0 {
		violations = append(violations, fieldViolation("vip_price", errors.New("must not be negative")))
	}

	if req.VIPDurationDays < 1 || req.VIPDurationDays > 3650 {
		violations = append(violations, fieldViolation("vip_duration_days", errors.New("must be between 1 and 3650")))
	}

	if req.ForeignSheepMaxSalary < 0 {
		violations = append(violations, fieldViolation("foreign_sheep_max_salary", errors.New("must not be negative")))
	}

	if req.MaxInstallments < 1 || req.MaxInstallments > 24 {
		violations = append(violations, fieldViolation("max_installments", errors.New("must be between 1 and 24")))
	}

	if req.ContactEmail != "" {
		if err := validator.ValidateEmail(req.ContactEmail); err != nil {
			violations = append(violations, fieldViolation("contact_email", err))
		}
	}

	if err := validator.ValidateString(req.ContactPhone, 0, 32); err != nil {
		violations = append(violations, fieldViolation("contact_phone", err))
	}

	return violations
}

//	@Summary		Update marketplace settings
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		updateSettingsRequest	true	"Settings"
//	@Success		200		{object}	db.Settings
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/admin/settings [put]
func (server *Server) updateSettings(c *gin.Context) {
	admin := currentUser(c)
	req := new(updateSettingsRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateUpdateSettingsRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	settings, err := server.store.UpdateSettings(c, db.Settings{
		VIPDiscountPercent:    req.VIPDiscountPercent,
		VIPPrice:              req.VIPPrice,
		VIPDurationDays:       req.VIPDurationDays,
		ForeignSheepMaxSalary: req.ForeignSheepMaxSalary,
		ForeignOrdersOpen:     req.ForeignOrdersOpen,
		MaxInstallments:       req.MaxInstallments,
		ContactEmail:          req.ContactEmail,
		ContactPhone:          req.ContactPhone,
		UpdatedBy:             admin.ID,
	})
	if err != nil {
		log.Err(err).Msg("failed to update settings")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, settings)
}
