package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	authdomain "github.com/Yassinesbr/support-center/internal/auth/domain"
	billingdomain "github.com/Yassinesbr/support-center/internal/billing/domain"
	classdomain "github.com/Yassinesbr/support-center/internal/class/domain"
	studentdomain "github.com/Yassinesbr/support-center/internal/student/domain"
	teacherdomain "github.com/Yassinesbr/support-center/internal/teacher/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ErrorHandlingMiddleware turns the last gin error into the JSON error
// envelope. Handlers only call AbortWithError and never shape status
// codes themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, authdomain.ErrUserExists):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	case isNotFound(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}
	case isBadRequest(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, billingdomain.ErrInvoiceNotFound) ||
		errors.Is(err, billingdomain.ErrInvoiceItemNotFound) ||
		errors.Is(err, billingdomain.ErrStudentNotFound) ||
		errors.Is(err, studentdomain.ErrStudentNotFound) ||
		errors.Is(err, studentdomain.ErrClassNotFound) ||
		errors.Is(err, teacherdomain.ErrTeacherNotFound) ||
		errors.Is(err, classdomain.ErrClassNotFound) ||
		errors.Is(err, classdomain.ErrStudentNotFound) ||
		errors.Is(err, classdomain.ErrTeacherNotFound) ||
		errors.Is(err, authdomain.ErrUserNotFound)
}

func isBadRequest(err error) bool {
	return errors.Is(err, billingdomain.ErrInvalidAmount) ||
		errors.Is(err, billingdomain.ErrAmountExceedsDue) ||
		errors.Is(err, billingdomain.ErrInvalidMonth) ||
		errors.Is(err, studentdomain.ErrEmailRequired) ||
		errors.Is(err, teacherdomain.ErrEmailRequired) ||
		errors.Is(err, classdomain.ErrNameRequired) ||
		errors.Is(err, classdomain.ErrInvalidPricingMode) ||
		errors.Is(err, authdomain.ErrInvalidEmail) ||
		errors.Is(err, authdomain.ErrInvalidRole)
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= 500 {
		return "server_error", payload.Type
	}
	return "client_error", payload.Type
}
