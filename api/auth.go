package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/katatrina/sheep-market-BE/internal/db"
	"github.com/katatrina/sheep-market-BE/internal/identity"
	"github.com/katatrina/sheep-market-BE/internal/mailer"
	"github.com/katatrina/sheep-market-BE/internal/validator"
	"github.com/katatrina/sheep-market-BE/internal/verification"
	"github.com/rs/zerolog/log"
)

type registerUserRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

type codeSentResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func validateRegisterUserRequest(req *registerUserRequest) (violations []*FieldViolation) {
	if err := validator.ValidateEmail(req.Email); err != nil {
		violations = append(violations, fieldViolation("email", err))
	}

	if err := validator.ValidatePassword(req.Password); err != nil {
		violations = append(violations, fieldViolation("password", err))
	}

	if err := validator.ValidateFullName(req.FullName); err != nil {
		violations = append(violations, fieldViolation("full_name", err))
	}

	if err := validator.ValidatePhoneNumber(validator.NormalizePhoneNumber(req.PhoneNumber)); err != nil {
		violations = append(violations, fieldViolation("phone_number", err))
	}

	if req.Role != string(db.UserRoleBuyer) && req.Role != string(db.UserRoleSeller) {
		violations = append(violations, fieldViolation("role", fmt.Errorf("role must be %s or %s", db.UserRoleBuyer, db.UserRoleSeller)))
	}

	return violations
}

//	@Summary		Register a new account
//	@Description	Creates the account and emails a six digit verification code. The profile is created once the email is verified.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		registerUserRequest	true	"Registration details"
//	@Success		201		{object}	codeSentResponse
//	@Failure		409		{object}	map[string]string	"Email already registered"
//	@Failure		422		{object}	FailedValidationResponse
//	@Failure		429		{object}	map[string]string	"Code requested too often"
//	@Router			/auth/register [post]
func (server *Server) registerUser(c *gin.Context) {
	req := new(registerUserRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	violations := validateRegisterUserRequest(req)
	if violations != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError(violations))
		return
	}

	email := db.NormalizeEmail(req.Email)

	staleUID, err := server.unfinishedIdentity(c, email)
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			c.JSON(http.StatusConflict, errorResponse(fmt.Errorf("email %s is already registered", email)))
			return
		}

		log.Err(err).Str("email", email).Msg("failed to look up identity account")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	// Nothing about an existing account may change before the resend interval allows a new code.
	if !server.allowCodeSend(c, verification.PurposeRegistration, email) {
		return
	}

	code, challenge, err := verification.NewChallenge(server.now(), server.config.VerificationCodeTTL)
	if err != nil {
		log.Err(err).Msg("failed to create verification challenge")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	uid, err := server.replaceIdentity(c, staleUID, email, req.Password, req.FullName)
	if err != nil {
		log.Err(err).Str("email", email).Msg("failed to create identity account")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	registration := db.PendingRegistration{
		Email:         email,
		UID:           uid,
		FullName:      req.FullName,
		PhoneNumber:   validator.NormalizePhoneNumber(req.PhoneNumber),
		Role:          db.UserRole(req.Role),
		CodeChallenge: challenge,
	}

	if err = server.store.SavePendingRegistration(c, registration); err != nil {
		log.Err(err).Str("email", email).Msg("failed to save pending registration")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.sendEmail(c, email, mailer.TemplateVerificationCode, map[string]any{
		"full_name":  req.FullName,
		"code":       code,
		"expires_in": formatDuration(server.config.VerificationCodeTTL),
	})

	c.JSON(http.StatusCreated, codeSentResponse{Email: email, ExpiresAt: challenge.ExpiresAt})
}

// unfinishedIdentity returns the UID of an identity account that never completed verification,
// or an empty string when the email has no account. It fails with identity.ErrEmailExists when
// the account already has a profile.
func (server *Server) unfinishedIdentity(c *gin.Context, email string) (string, error) {
	account, err := server.identity.GetUserByEmail(c, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return "", nil
		}
		return "", err
	}

	_, err = server.store.GetUserByID(c, account.UID)
	if err == nil {
		return "", identity.ErrEmailExists
	}
	if !errors.Is(err, db.ErrRecordNotFound) {
		return "", err
	}

	return account.UID, nil
}

// replaceIdentity creates a fresh identity account for the registration. An unverified account
// left by an earlier attempt is deleted first so its password is never carried over or rewritten.
func (server *Server) replaceIdentity(c *gin.Context, staleUID, email, password, fullName string) (string, error) {
	if staleUID != "" {
		if err := server.identity.DeleteUser(c, staleUID); err != nil {
			return "", err
		}
	}

	return server.identity.CreateUser(c, email, password, fullName)
}

// allowCodeSend applies the per-address resend interval. It writes the response when the send is refused.
func (server *Server) allowCodeSend(c *gin.Context, purpose, email string) bool {
	allowed, retryAfter, err := server.codeLimiter.Allow(c, purpose, email)
	if err != nil {
		log.Err(err).Str("email", email).Msg("failed to check code rate limit")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return false
	}

	if !allowed {
		seconds := int(math.Ceil(retryAfter.Seconds()))
		c.Header("Retry-After", fmt.Sprint(seconds))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":               "a code was sent recently, please wait before asking for another one",
			"retry_after_seconds": seconds,
		})
		return false
	}

	return true
}

// respondChallengeError maps code check failures onto HTTP statuses.
func respondChallengeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, verification.ErrCodeExpired):
		c.JSON(http.StatusGone, errorResponse(err))
	case errors.Is(err, verification.ErrTooManyAttempts):
		c.JSON(http.StatusTooManyRequests, errorResponse(err))
	default:
		c.JSON(http.StatusBadRequest, errorResponse(err))
	}
}

type verifyEmailRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

//	@Summary		Verify email address
//	@Description	Checks the emailed code, creates the user profile and logs the user in
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		verifyEmailRequest	true	"Email and code"
//	@Success		200		{object}	loginUserResponse
//	@Failure		400		{object}	map[string]string	"Wrong code"
//	@Failure		404		{object}	map[string]string	"No pending registration"
//	@Failure		410		{object}	map[string]string	"Code expired"
//	@Failure		429		{object}	map[string]string	"Too many attempts"
//	@Router			/auth/verify-email [post]
func (server *Server) verifyEmail(c *gin.Context) {
	req := new(verifyEmailRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	registration, err := server.store.ClaimPendingRegistrationAttemptTx(c, req.Email, verification.MaxAttempts)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(errors.New("no pending registration for this email")))
			return
		}

		log.Err(err).Msg("failed to claim verification attempt")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if err = verification.Check(registration.CodeChallenge, req.Code, server.now()); err != nil {
		respondChallengeError(c, err)
		return
	}

	if err = server.identity.MarkEmailVerified(c, registration.UID); err != nil {
		log.Err(err).Str("uid", registration.UID).Msg("failed to mark email verified")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	user, err := server.store.CompleteRegistrationTx(c, registration.Email, db.User{
		ID:          registration.UID,
		Email:       registration.Email,
		FullName:    registration.FullName,
		PhoneNumber: registration.PhoneNumber,
		Role:        registration.Role,
	})
	if err != nil {
		if errors.Is(err, db.ErrRecordExists) {
			c.JSON(http.StatusConflict, errorResponse(errors.New("email is already verified")))
			return
		}

		log.Err(err).Str("email", registration.Email).Msg("failed to complete registration")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.respondWithLogin(c, user)
}

type resendCodeRequest struct {
	Email string `json:"email" binding:"required"`
}

//	@Summary		Resend verification code
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		resendCodeRequest	true	"Email"
//	@Success		200		{object}	codeSentResponse
//	@Failure		404		{object}	map[string]string	"No pending registration"
//	@Failure		429		{object}	map[string]string	"Code requested too often"
//	@Router			/auth/resend-code [post]
func (server *Server) resendVerificationCode(c *gin.Context) {
	req := new(resendCodeRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	registration, err := server.store.GetPendingRegistration(c, req.Email)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(errors.New("no pending registration for this email")))
			return
		}

		log.Err(err).Msg("failed to get pending registration")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if !server.allowCodeSend(c, verification.PurposeRegistration, registration.Email) {
		return
	}

	code, challenge, err := verification.NewChallenge(server.now(), server.config.VerificationCodeTTL)
	if err != nil {
		log.Err(err).Msg("failed to create verification challenge")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	registration.CodeChallenge = challenge
	if err = server.store.SavePendingRegistration(c, registration); err != nil {
		log.Err(err).Str("email", registration.Email).Msg("failed to save pending registration")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.sendEmail(c, registration.Email, mailer.TemplateVerificationCode, map[string]any{
		"full_name":  registration.FullName,
		"code":       code,
		"expires_in": formatDuration(server.config.VerificationCodeTTL),
	})

	c.JSON(http.StatusOK, codeSentResponse{Email: registration.Email, ExpiresAt: challenge.ExpiresAt})
}

type loginUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginUserResponse struct {
	User                 db.User   `json:"user"`
	AccessToken          string    `json:"access_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

//	@Summary		Login with email and password
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginUserRequest	true	"Credentials"
//	@Success		200		{object}	loginUserResponse
//	@Failure		401		{object}	map[string]string	"Invalid credentials"
//	@Failure		403		{object}	map[string]string	"Email not verified or account disabled"
//	@Failure		429		{object}	map[string]string	"Sign-in temporarily blocked after repeated failures"
//	@Router			/auth/login [post]
func (server *Server) loginUser(c *gin.Context) {
	req := new(loginUserRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	uid, err := server.identity.SignInWithPassword(c, db.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, errorResponse(err))
		case errors.Is(err, identity.ErrUserDisabled):
			c.JSON(http.StatusForbidden, errorResponse(ErrAccountDisabled))
		case errors.Is(err, identity.ErrTooManyRequests):
			c.JSON(http.StatusTooManyRequests, errorResponse(err))
		default:
			log.Err(err).Msg("failed to sign in")
			c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		}
		return
	}

	server.loginByUID(c, uid)
}

type loginUserWithFirebaseRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

//	@Summary		Login with a Firebase ID token
//	@Description	Used after a client-side Firebase sign-in such as Google
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginUserWithFirebaseRequest	true	"Firebase ID token"
//	@Success		200		{object}	loginUserResponse
//	@Failure		401		{object}	map[string]string
//	@Failure		403		{object}	map[string]string
//	@Router			/auth/firebase-login [post]
func (server *Server) loginUserWithFirebase(c *gin.Context) {
	req := new(loginUserWithFirebaseRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	uid, err := server.identity.VerifyIDToken(c, req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse(identity.ErrInvalidIDToken))
		return
	}

	server.loginByUID(c, uid)
}

func (server *Server) loginByUID(c *gin.Context, uid string) {
	user, err := server.store.GetUserByID(c, uid)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, errorResponse(ErrEmailNotVerified))
			return
		}

		log.Err(err).Str("uid", uid).Msg("failed to get user")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if user.Disabled {
		c.JSON(http.StatusForbidden, errorResponse(ErrAccountDisabled))
		return
	}

	server.respondWithLogin(c, user)
}

func (server *Server) respondWithLogin(c *gin.Context, user db.User) {
	accessToken, accessPayload, err := server.tokenMaker.CreateToken(user.ID, string(user.Role), server.config.AccessTokenDuration)
	if err != nil {
		log.Err(err).Msg("failed to create access token")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	c.JSON(http.StatusOK, loginUserResponse{
		User:                 user,
		AccessToken:          accessToken,
		AccessTokenExpiresAt: accessPayload.ExpiresAt.Time,
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

//	@Summary		Request a password reset code
//	@Description	Always answers 200 so that registered emails cannot be discovered
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		forgotPasswordRequest	true	"Email"
//	@Success		200		{object}	map[string]string
//	@Router			/auth/password/forgot [post]
func (server *Server) forgotPassword(c *gin.Context) {
	req := new(forgotPasswordRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	email := db.NormalizeEmail(req.Email)
	resp := gin.H{"message": "if an account exists for this email, a reset code has been sent"}

	user, err := server.store.GetUserByEmail(c, email)
	if err != nil {
		if !errors.Is(err, db.ErrRecordNotFound) {
			log.Err(err).Msg("failed to get user by email")
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	allowed, _, err := server.codeLimiter.Allow(c, verification.PurposePasswordReset, email)
	if err != nil || !allowed {
		if err != nil {
			log.Err(err).Str("email", email).Msg("failed to check code rate limit")
		}
		c.JSON(http.StatusOK, resp)
		return
	}

	code, challenge, err := verification.NewChallenge(server.now(), server.config.VerificationCodeTTL)
	if err != nil {
		log.Err(err).Msg("failed to create reset challenge")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	reset := db.PasswordReset{
		Email:         email,
		UID:           user.ID,
		CodeChallenge: challenge,
	}
	if err = server.store.SavePasswordReset(c, reset); err != nil {
		log.Err(err).Str("email", email).Msg("failed to save password reset")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	server.sendEmail(c, email, mailer.TemplatePasswordResetCode, map[string]any{
		"code":       code,
		"expires_in": formatDuration(server.config.VerificationCodeTTL),
	})

	c.JSON(http.StatusOK, resp)
}

type resetPasswordRequest struct {
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

//	@Summary		Reset password with a code
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		resetPasswordRequest	true	"Email, code and new password"
//	@Success		200		{object}	map[string]string
//	@Failure		400		{object}	map[string]string	"Wrong code"
//	@Failure		404		{object}	map[string]string	"No reset requested"
//	@Failure		410		{object}	map[string]string	"Code expired"
//	@Failure		422		{object}	FailedValidationResponse
//	@Failure		429		{object}	map[string]string	"Too many attempts"
//	@Router			/auth/password/reset [post]
func (server *Server) resetPassword(c *gin.Context) {
	req := new(resetPasswordRequest)

	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err))
		return
	}

	if err := validator.ValidatePassword(req.NewPassword); err != nil {
		c.JSON(http.StatusUnprocessableEntity, failedValidationError([]*FieldViolation{fieldViolation("new_password", err)}))
		return
	}

	reset, err := server.store.ClaimPasswordResetAttemptTx(c, req.Email, verification.MaxAttempts)
	if err != nil {
		if errors.Is(err, db.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, errorResponse(errors.New("no password reset requested for this email")))
			return
		}

		log.Err(err).Msg("failed to claim password reset attempt")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if err = verification.Check(reset.CodeChallenge, req.Code, server.now()); err != nil {
		respondChallengeError(c, err)
		return
	}

	if err = server.identity.UpdatePassword(c, reset.UID, req.NewPassword); err != nil {
		log.Err(err).Str("uid", reset.UID).Msg("failed to update password")
		c.JSON(http.StatusInternalServerError, errorResponse(ErrInternalServer))
		return
	}

	if err = server.store.DeletePasswordReset(c, reset.Email); err != nil {
		log.Err(err).Str("email", reset.Email).Msg("failed to delete password reset")
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
