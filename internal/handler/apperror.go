package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrUnauthenticated    = &AppError{http.StatusUnauthorized, "UNAUTHENTICATED", "Session is invalid"}
	ErrInvalidCredentials = &AppError{http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password"}
	ErrInvalidRequest     = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed   = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound   = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError      = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}
	ErrServerState        = &AppError{http.StatusInternalServerError, "SERVER_STATE_INVALID", "Server state invalid"}

	ErrInsufficientFunds = &AppError{http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Insufficient funds"}
	ErrWalletNotFound    = &AppError{http.StatusBadRequest, "WALLET_NOT_FOUND", "Wallet not found"}
	ErrNoCard            = &AppError{http.StatusBadRequest, "NO_CARD", "No card available"}
	ErrEmailTaken        = &AppError{http.StatusConflict, "EMAIL_TAKEN", "Email is already registered"}

	ErrIdempotencyConflict   = &AppError{http.StatusConflict, "IDEMPOTENCY_CONFLICT", "Idempotency key already used with a different request"}
	ErrIdempotencyInProgress = &AppError{http.StatusConflict, "IDEMPOTENCY_IN_PROGRESS", "A request with this idempotency key is still in progress"}
	ErrRateLimited           = &AppError{http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down"}
)
