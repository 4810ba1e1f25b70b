package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/rs/zerolog/log"
)

//	@Summary		Get current user
//	@Tags			users
//	@Produce		json
//	@Security		accessToken
//	@Success		200	{object}	db.User
//	@Router			/users/me [get]
func (server *Server) getCurrentUser(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

type updateCurrentUserRequest struct {
	FullName    *string `json:"full_name"`
	PhoneNumber *string `json:"phone_number"`
	AvatarURL   *string `json:"avatar_url"`
	Wilaya      *string `json:"wilaya"`
	Address     *string `json:"address"`
}

func validateUpdateCurrentUserRequest(req *updateCurrentUserRequest) (violations []*FieldViolation) {
	if req.FullName != nil {
		if err := validator.ValidateFullName(*req.FullName); err != nil {
			violations = append(violations, fieldViolation("full_name", err))
		}
	}

	if req.PhoneNumber != nil {
		normalized := validator.NormalizePhoneNumber(*req.PhoneNumber)
		if err := validator.ValidatePhoneNumber(normalized); err != nil {
			violations = append(violations, fieldViolation("phone_number", err))
		}
		req.PhoneNumber = &normalized
	}

	if req.AvatarURL != nil && *req.AvatarURL != "" {
		if err := validator.ValidateImageURL(*req.AvatarURL); err != nil {
			violations = append(violations, fieldViolation("avatar_url", err))
		}
	}

	if req.Wilaya != nil {
		if err := validator.ValidateString(*req.Wilaya, 2, 64); err != nil {
			violations = append(violations, fieldViolation("wilaya", err))
		}
	}

	if req.Address != nil {
		if err := validator.ValidateString(*req.Address, 0, 256); err != nil {
			violations = append(violations, fieldViolation("address", err))
		}
	}

	return violations
}

//	@Summary		Update current user profile
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			request	body		updateCurrentUserRequest	true	"Fields to change"
//	@Success		200		{object}	db.User
//	@Failure		422		{object}	FailedValidationResponse
//	@Router			/users/me [patch]
func (server *Server) updateCurrentUser(c *gin.Context) {
	user := currentUser(c)
	req := new(updateCurrentUserRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateUpdateCurrentUserRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	updated, err := server.store.UpdateUser(c, db.UpdateUserParams{
		UserID:      user.ID,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		AvatarURL:   req.AvatarURL,
		Wilaya:      req.Wilaya,
		Address:     req.Address,
	})
	if err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("failed to update user")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, updated)
}

//	@Summary		List users
//	@Tags			admin
//	@Produce		json
//	@Security		accessToken
//	@Param			role	query		string	false	"Filter by role"	Enums(buyer, seller, admin)
//	@Success		200		{array}		db.User
//	@Router			/admin/users [get]
func (server *Server) listUsers(c *gin.Context) {
	role := c.Query("role")
	if role != "" {
		if err := db.IsValidUserRole(role); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse(err))
			return
		}
	}

	users, err := server.store.ListUsers(c, role)
	if err != nil {
		log.Err(err).Msg("failed to list users")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, users)
}

type updateUserRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

//	@Summary		Change a user's role
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			userID	path		string					true	"User ID"
//	@Param			request	body		updateUserRoleRequest	true	"New role"
//	@Success		200		{object}	db.User
//	@Failure		404		{object}	map[string]string
//	@Router			/admin/users/{userID}/role [patch]
func (server *Server) updateUserRole(c *gin.Context) {
	userID := c.Param("userID")
	req := new(updateUserRoleRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := db.IsValidUserRole(req.Role); err != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError([]*FieldViolation{fieldViolation("role", err)}))
		return
	}

	if userID == currentUser(c).ID {
		c.JSON(http.StatusBadRequest, errorResponse(errors.New("administrators cannot change their own role")))
		return
	}

	role := db.UserRole(req.Role)
	updated, err := server.store.UpdateUser(c, db.UpdateUserParams{UserID: userID, Role: &role})
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("user %s not found", userID)))
			return
		}

		log.Err(err).Str("user_id", userID).Msg("failed to update user role")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, updated)
}

type setUserDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

//	@Summary		Disable or enable a user
//	@Description	Also disables the identity account so the user can no longer sign in
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		accessToken
//	@Param			userID	path		string					true	"User ID"
//	@Param			request	body		setUserDisabledRequest	true	"Disabled flag"
//	@Success		200		{object}	db.User
//	@Failure		404		{object}	map[string]string
//	@Router			/admin/users/{userID}/disable [patch]
func (server *Server) setUserDisabled(c *gin.Context) {
	userID := c.Param("userID")
	req := new(setUserDisabledRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if userID == currentUser(c).ID {
		c.JSON(http.StatusBadRequest, errorResponse(errors.New("administrators cannot disable themselves")))
		return
	}

	if _, err := server.store.GetUserByID(c, userID); err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(fmt.Errorf("user %s not found", userID)))
			return
		}

		log.Err(err).Str("user_id", userID).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if err := server.identity.SetDisabled(c, userID, *req.Disabled); err != nil {
		log.Err(err).Str("user_id", userID).Msg("failed to update identity account")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	updated, err := server.store.UpdateUser(c, db.UpdateUserParams{UserID: userID, Disabled: req.Disabled})
	if err != nil {
		log.Err(err).Str("user_id", userID).Msg("failed to update user")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, updated)
}
