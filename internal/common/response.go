package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse standard API response structure
type APIResponse struct {
	Data  interface{} `json:"data"`
	Meta  *Meta       `json:"meta,omitempty"`
	Error *ErrorInfo  `json:"error,omitempty"`
}

// Meta pagination and additional metadata
type Meta struct {
	Page  int   `json:"page,omitempty"`
	Limit int   `json:"limit,omitempty"`
	Total int64 `json:"total,omitempty"`
}

// ErrorInfo error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse returns a successful JSON response
func SuccessResponse(c *gin.Context, data interface{}, meta *Meta) {
	c.JSON(http.StatusOK, APIResponse{
		Data: data,
		Meta: meta,
	})
}

// ErrorResponse returns an error JSON response
func ErrorResponse(c *gin.Context, status int, message string, err error) {
	errInfo := &ErrorInfo{
		Code:    getErrorCode(status),
		Message: message,
	}

	c.JSON(status, gin.H{
		"error": errInfo,
	})
}

// ServiceErrorResponse maps a service error to its HTTP status.
// Unrecognized errors become 500.
func ServiceErrorResponse(c *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		ErrorResponse(c, http.StatusNotFound, message, err)
	case errors.Is(err, ErrNotOwner):
		ErrorResponse(c, http.StatusForbidden, message, err)
	case errors.Is(err, ErrSelfMessage), errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidSignature):
		ErrorResponse(c, http.StatusBadRequest, message, err)
	case errors.Is(err, ErrGateway):
		ErrorResponse(c, http.StatusBadGateway, message, err)
	default:
		ErrorResponse(c, http.StatusInternalServerError, message, err)
	}
}

// getErrorCode generates error code from HTTP status
func getErrorCode(status int) string {
	switch status {
	case 400:
		return "BAD_REQUEST"
	case 401:
		return "UNAUTHORIZED"
	case 403:
		return "FORBIDDEN"
	case 404:
		return "NOT_FOUND"
	case 409:
		return "CONFLICT"
	case 502:
		return "BAD_GATEWAY"
	case 500:
		return "INTERNAL_SERVER_ERROR"
	default:
		return "ERROR"
	}
}
