package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	KindNotFound           = "NOT_FOUND"
	KindInvalidTransition  = "INVALID_TRANSITION"
	KindTokenInvalid       = "TOKEN_INVALID"
	KindTokenAlreadyUsed   = "TOKEN_ALREADY_USED"
	KindVotingWindowClosed = "VOTING_WINDOW_CLOSED"
	KindUnauthorized       = "UNAUTHORIZED"
	KindValidationError    = "VALIDATION_ERROR"
	KindStoreTimeout       = "STORE_TIMEOUT"
	KindInternal           = "INTERNAL"
)

// Err is the error envelope every non-2xx response carries. The kind
// is machine-readable; the message is for humans and log lines.
type Err struct {
	statusCode int

	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e *Err) Error() string {
	return e.Message
}

func ErrNotFound(resource, fieldName string, fieldValue interface{}) *Err {
	return &Err{
		statusCode: http.StatusNotFound,
		Kind:       KindNotFound,
		Message:    fmt.Sprintf("%v with %v (%v) not found", resource, fieldName, fieldValue),
	}
}

func ErrBadRequest(err error) *Err {
	return &Err{
		statusCode: http.StatusBadRequest,
		Kind:       KindValidationError,
		Message:    err.Error(),
	}
}

func ErrInvalidTransition(err error) *Err {
	return &Err{
		statusCode: http.StatusConflict,
		Kind:       KindInvalidTransition,
		Message:    err.Error(),
	}
}

func ErrTokenInvalid(err error) *Err {
	return &Err{
		statusCode: http.StatusUnauthorized,
		Kind:       KindTokenInvalid,
		Message:    err.Error(),
	}
}

func ErrTokenAlreadyUsed(err error) *Err {
	return &Err{
		statusCode: http.StatusConflict,
		Kind:       KindTokenAlreadyUsed,
		Message:    err.Error(),
	}
}

func ErrVotingWindowClosed(err error) *Err {
	return &Err{
		statusCode: http.StatusConflict,
		Kind:       KindVotingWindowClosed,
		Message:    err.Error(),
	}
}

func ErrPermissionDenied(err error) *Err {
	return &Err{
		statusCode: http.StatusForbidden,
		Kind:       KindUnauthorized,
		Message:    err.Error(),
	}
}

// ErrStoreTimeout marks the request as retryable; the client may try
// again and will hit the idempotency guards if the first attempt
// actually landed.
func ErrStoreTimeout(err error) *Err {
	return &Err{
		statusCode: http.StatusServiceUnavailable,
		Kind:       KindStoreTimeout,
		Message:    err.Error(),
	}
}

// ErrInternalServerError logs the cause and hides it from the wire.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	return &Err{
		statusCode: http.StatusInternalServerError,
		Kind:       KindInternal,
		Message:    "something went wrong",
	}
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.JSON(err.statusCode, err)
}
