package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agiledatalabs/booking-management-system/internal/core/domain"
)

const (
	codeInvalidBody   = "invalid_request_body"
	codeValidation    = "validation_failed"
	codeNotFound      = "not_found"
	codeConflict      = "block_exists"
	codeCapacity      = "insufficient_capacity"
	codeRateLimit     = "hold_limit_exceeded"
	codeState         = "no_block_found"
	codeInternalError = "internal_error"
)

type errorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

var errorStatus = []struct {
	kind   error
	status int
	code   string
}{
	{domain.ErrValidation, http.StatusBadRequest, codeValidation},
	{domain.ErrNotFound, http.StatusNotFound, codeNotFound},
	{domain.ErrConflict, http.StatusConflict, codeConflict},
	{domain.ErrCapacity, http.StatusConflict, codeCapacity},
	{domain.ErrRateLimit, http.StatusTooManyRequests, codeRateLimit},
	{domain.ErrState, http.StatusBadRequest, codeState},
}

func (h *BookingHandler) writeError(c *gin.Context, err error) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		for _, e := range errorStatus {
			if errors.Is(derr, e.kind) {
				c.JSON(e.status, errorResponse{
					Error:   derr.Message,
					Code:    e.code,
					Field:   derr.Field,
					Details: derr.Details,
				})
				return
			}
		}
	}

	h.log.Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: codeInternalError})
}

// bindJSON decodes the request body into obj. A value of the wrong JSON type
// is reported as a validation failure on that field.
func bindJSON(c *gin.Context, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if err == nil {
		return true
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error: fmt.Sprintf("%s must be of type %s, got %s", typeErr.Field, typeErr.Type, typeErr.Value),
			Code:  codeValidation,
			Field: typeErr.Field,
		})
		return false
	}

	c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid json body", Code: codeInvalidBody})
	return false
}
