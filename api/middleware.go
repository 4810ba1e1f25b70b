package api

import (
	"errors"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/token"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	authorizationHeaderKey  = "Authorization"
	authorizationTypeBearer = "Bearer"
	authorizationPayloadKey = "authPayload"
	currentUserKey          = "currentUser"

	// accessTokenQueryKey lets EventSource clients, which cannot set headers, authenticate.
	accessTokenQueryKey = "access_token"

	redactedValue = "REDACTED"
)

// requestLogger writes one structured line per request. Credentials passed in the query string are masked.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		query := redactQuery(ctx.Request.URL.RawQuery)

		ctx.Next()

		event := logger.Info()
		if ctx.Writer.Status() >= http.StatusInternalServerError {
			event = logger.Error()
		}

		event.
			Str("method", ctx.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status_code", ctx.Writer.Status()).
			Str("client_ip", ctx.ClientIP()).
			Dur("latency", time.Since(start)).
			Msg("received HTTP request")
	}
}

func redactQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return redactedValue
	}

	if values.Has(accessTokenQueryKey) {
		values.Set(accessTokenQueryKey, redactedValue)
	}

	return values.Encode()
}

// authMiddleware authenticates the user.
func authMiddleware(tokenMaker token.Maker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		accessToken, err := extractAccessToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		payload, err := tokenMaker.VerifyToken(accessToken)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(err))
			return
		}

		ctx.Set(authorizationPayloadKey, payload)
		ctx.Next()
	}
}

func extractAccessToken(ctx *gin.Context) (string, error) {
	authorizationHeader := ctx.GetHeader(authorizationHeaderKey)
	if authorizationHeader == "" {
		if queryToken := ctx.Query(accessTokenQueryKey); queryToken != "" {
			return queryToken, nil
		}
		return "", errors.New("authorization header is not provided")
	}

	fields := strings.Fields(authorizationHeader)
	if len(fields) != 2 {
		return "", errors.New("invalid authorization header format")
	}

	if fields[0] != authorizationTypeBearer {
		return "", errors.New("unsupported authorization header type")
	}

	return fields[1], nil
}

// requireRole loads the authenticated user, rejects disabled accounts and, when roles are given,
// users holding none of them. The user is stored in the context for the handlers.
func requireRole(store db.Store, roles ...db.UserRole) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var user *db.User
		if value, exists := ctx.Get(currentUserKey); exists {
			user = value.(*db.User)
		} else {
			authPayload := ctx.MustGet(authorizationPayloadKey).(*token.Payload)

			found, err := store.GetUserByID(ctx, authPayload.Subject)
			if err != nil {
				if errors.Is(err, db.ErrRecordNotFound) {
					ctx.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse(ErrUserNotFound))
					return
				}

				log.Err(err).Str("user_id", authPayload.Subject).Msg("failed to load authenticated user")
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
				return
			}

			user = &found
			ctx.Set(currentUserKey, user)
		}

		if user.Disabled {
			ctx.AbortWithStatusJSON(http.StatusForbidden, errorResponse(ErrAccountDisabled))
			return
		}

		if len(roles) > 0 && !slices.Contains(roles, user.Role) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, errorResponse(ErrInsufficientPermission))
			return
		}

		ctx.Next()
	}
}

// currentUser returns the user loaded by requireRole.
func currentUser(ctx *gin.Context) *db.User {
	return ctx.MustGet(currentUserKey).(*db.User)
}
