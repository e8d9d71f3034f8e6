package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"foodsafe/internal/domain"
	"foodsafe/internal/inference"
	"foodsafe/internal/middleware"
)

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	var (
		missing   *domain.MissingInputError
		ocrErr    *domain.OCRFailureError
		rateLimit *inference.RateLimitError
		remote    *domain.RemoteServiceError
	)

	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, "MISSING_INPUT", missing.Field + " is required"
	case errors.Is(err, domain.ErrInvalidModel):
		return http.StatusBadRequest, "INVALID_MODEL", "unsupported model; see /api/v1/options"
	case errors.Is(err, domain.ErrInvalidLanguage):
		return http.StatusBadRequest, "INVALID_LANGUAGE", "unsupported language; see /api/v1/options"
	case errors.Is(err, domain.ErrUnsupportedFileType):
		return http.StatusBadRequest, "UNSUPPORTED_FILE_TYPE", "unsupported file type; allowed: jpg, jpeg, png"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT", "analysis did not finish in time"
	case errors.As(err, &ocrErr):
		return http.StatusUnprocessableEntity, "OCR_FAILED", "could not read text from the image"
	case errors.As(err, &rateLimit):
		return http.StatusTooManyRequests, "RATE_LIMITED", "inference provider rate limit reached; retry later"
	case errors.As(err, &remote):
		return http.StatusBadGateway, "REMOTE_SERVICE_ERROR", "inference provider request failed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError maps a domain error and sends the appropriate error response.
func HandleError(c *gin.Context, err error) {
	status, code, msg := MapDomainError(err)

	log := middleware.GetLogger(c)
	if status >= 500 {
		log.Error("request failed", zap.String("code", code), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("code", code), zap.Error(err))
	}

	var rateLimit *inference.RateLimitError
	if errors.As(err, &rateLimit) {
		c.Header("Retry-After", strconv.Itoa(int(rateLimit.RetryAfter.Seconds())))
	}
	RespondError(c, status, code, msg)
}
