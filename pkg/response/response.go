package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// APIResponse is the envelope every endpoint returns.
type APIResponse[T any] struct {
	Status    string `json:"status"` // success or fail
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Success writes a success envelope with the given HTTP status code.
func Success[T any](ctx *gin.Context, code int, data T, message string) APIResponse[T] {
	if code == 0 {
		code = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    StatusSuccess,
		Message:   message,
		Data:      data,
		RequestID: ctx.GetString("request_id"),
	}
	ctx.JSON(code, resp)
	return resp
}

// Error writes a fail envelope. details typically carries field-level
// validation messages.
func Error[T any](ctx *gin.Context, code int, message string, details any) APIResponse[T] {
	if code == 0 {
		code = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    StatusFail,
		Message:   message,
		Details:   details,
		RequestID: ctx.GetString("request_id"),
	}
	ctx.JSON(code, resp)
	return resp
}
