package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"firebase.google.com/go/v4/auth"
	"resty.dev/v3"
)

const identityToolkitBaseURL = "https://identitytoolkit.googleapis.com/v1"

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user account is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidIDToken     = errors.New("invalid identity token")
	ErrTooManyRequests    = errors.New("too many sign-in attempts, try again later")
)

// Account is the subset of a Firebase user record the API relies on.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	Disabled      bool
}

// Provider authenticates users against the identity backend.
type Provider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	SignInWithPassword(ctx context.Context, email, password string) (string, error)
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
	GetUserByEmail(ctx context.Context, email string) (Account, error)
	MarkEmailVerified(ctx context.Context, uid string) error
	UpdatePassword(ctx context.Context, uid, password string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	DeleteUser(ctx context.Context, uid string) error
}

// FirebaseProvider implements Provider with the Firebase Admin SDK and the Identity Toolkit REST API.
type FirebaseProvider struct {
	authClient  *auth.Client
	restyClient *resty.Client
	webAPIKey   string
}

func NewFirebaseProvider(authClient *auth.Client, webAPIKey string) *FirebaseProvider {
	return newFirebaseProvider(authClient, webAPIKey, identityToolkitBaseURL)
}

func newFirebaseProvider(authClient *auth.Client, webAPIKey, baseURL string) *FirebaseProvider {
	return &FirebaseProvider{
		authClient:  authClient,
		restyClient: resty.New().SetBaseURL(baseURL),
		webAPIKey:   webAPIKey,
	}
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(false)

	record, err := p.authClient.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", ErrEmailExists
		}
		return "", fmt.Errorf("failed to create firebase user: %w", err)
	}

	return record.UID, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type identityToolkitError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword checks the credentials through accounts:signInWithPassword and returns the user's uid.
func (p *FirebaseProvider) SignInWithPassword(ctx context.Context, email, password string) (string, error) {
	var result signInResponse
	var apiErr identityToolkitError

	res, err := p.restyClient.R().
		SetContext(ctx).
		SetQueryParam("key", p.webAPIKey).
		SetBody(signInRequest{Email: email, Password: password, ReturnSecureToken: true}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/accounts:signInWithPassword")
	if err != nil {
		return "", fmt.Errorf("failed to call identity toolkit: %w", err)
	}

	if res.IsError() {
		return "", mapSignInError(apiErr.Error.Message)
	}

	if result.LocalID == "" {
		return "", fmt.Errorf("identity toolkit returned no user id")
	}

	return result.LocalID, nil
}

// mapSignInError translates Identity Toolkit error messages such as "INVALID_PASSWORD" or
// "TOO_MANY_ATTEMPTS_TRY_LATER : ..." into package errors.
func mapSignInError(message string) error {
	code, _, _ := strings.Cut(message, " ")

	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return ErrInvalidCredentials
	case "USER_DISABLED":
		return ErrUserDisabled
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return ErrTooManyRequests
	}

	return fmt.Errorf("identity toolkit sign-in failed: %s", message)
}

func (p *FirebaseProvider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := p.authClient.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIDToken, err)
	}

	return token.UID, nil
}

func (p *FirebaseProvider) GetUserByEmail(ctx context.Context, email string) (Account, error) {
	record, err := p.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return Account{}, ErrUserNotFound
		}
		return Account{}, fmt.Errorf("failed to get firebase user: %w", err)
	}

	return Account{
		UID:           record.UID,
		Email:         record.Email,
		DisplayName:   record.DisplayName,
		EmailVerified: record.EmailVerified,
		Disabled:      record.Disabled,
	}, nil
}

func (p *FirebaseProvider) MarkEmailVerified(ctx context.Context, uid string) error {
	return p.updateUser(ctx, uid, (&auth.UserToUpdate{}).EmailVerified(true))
}

func (p *FirebaseProvider) UpdatePassword(ctx context.Context, uid, password string) error {
	return p.updateUser(ctx, uid, (&auth.UserToUpdate{}).Password(password))
}

func (p *FirebaseProvider) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return p.updateUser(ctx, uid, (&auth.UserToUpdate{}).Disabled(disabled))
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	err := p.authClient.DeleteUser(ctx, uid)
	if err != nil && !auth.IsUserNotFound(err) {
		return fmt.Errorf("failed to delete firebase user: %w", err)
	}

	return nil
}

func (p *FirebaseProvider) updateUser(ctx context.Context, uid string, params *auth.UserToUpdate) error {
	if _, err := p.authClient.UpdateUser(ctx, uid, params); err != nil {
		if auth.IsUserNotFound(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update firebase user: %w", err)
	}

	return nil
}
