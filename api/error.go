package api

import (
	"errors"

	"github.com/gin-gonic/gin"
)

var (
	ErrInternalServer         = errors.New("internal server error")
	ErrUserNotFound           = errors.New("user not found")
	ErrAccountDisabled        = errors.New("account is disabled")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrEmailNotVerified       = errors.New("email not verified")
	ErrSheepNotFound          = errors.New("sheep not found")
	ErrOrderNotFound          = errors.New("order not found")
	ErrNotSheepOwner          = errors.New("sheep belongs to another seller")
	ErrNotOrderParty          = errors.New("order belongs to other users")
	ErrSheepLocked            = errors.New("sheep cannot be changed in its current status")
	ErrOwnSheep               = errors.New("cannot order your own sheep")
	ErrForeignOrdersClosed    = errors.New("orders for foreign sheep are closed")
)

type FailedValidationResponse struct {
	Message         string            `json:"message"`
	FieldViolations []*FieldViolation `json:"field_violations"`
}

type FieldViolation struct {
	Field       string `json:"field"`
	Description string `json:"description"`
}

func fieldViolation(field string, err error) *FieldViolation {
	return &FieldViolation{
		Field:       field,
		Description: err.Error(),
	}
}

func errorResponse(err error) gin.H {
	return gin.H{"error": err.Error()}
}

func failedValidationError(violations []*FieldViolation) *FailedValidationResponse {
	return &FailedValidationResponse{
		Message:         "Invalid request parameters",
		FieldViolations: violations,
	}
}
