package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/rs/zerolog/log"
)

type verifyAccessTokenRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

//	@Summary		Verify access token
//	@Description	Returns the user owning a valid access token
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyAccessTokenRequest	true	"Access token"
//	@Success		200		{object}	db.User
//	@Failure		401		{object}	map[string]string
//	@Router			/tokens/verify [post]
func (server *Server) verifyAccessToken(c *gin.Context) {
	req := new(verifyAccessTokenRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	claims, err := server.tokenMaker.VerifyToken(req.AccessToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(err))
		return
	}

	user, err := server.store.GetUserByID(c, claims.Subject)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, errorResponse(ErrUserNotFound))
			return
		}

		log.Err(err).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if user.Disabled {
		c.JSON(http.StatusForbidden, errorResponse(ErrAccountDisabled))
		return
	}

	c.JSON(http.StatusOK, user)
}
