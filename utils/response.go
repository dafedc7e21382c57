package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse is the uniform API envelope. Falsy fields are omitted from
// the payload entirely rather than sent as null or empty values.
type JSONResponse struct {
	Error   bool              `json:"error,omitempty"`
	Status  int               `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Respond writes the envelope with the given HTTP status.
func Respond(ctx *gin.Context, isError bool, status int, message string, data interface{}, errs map[string]string) {
	ctx.JSON(status, JSONResponse{
		Error:   isError,
		Status:  status,
		Message: message,
		Data:    data,
		Errors:  errs,
	})
}

// SuccessResponse returns a 200 success envelope.
func SuccessResponse(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, false, http.StatusOK, message, data, nil)
}

// CreatedResponse returns a 201 success envelope.
func CreatedResponse(ctx *gin.Context, message string, data interface{}) {
	Respond(ctx, false, http.StatusCreated, message, data, nil)
}

// ErrorResponse returns a generic error envelope.
func ErrorResponse(ctx *gin.Context, status int, message string) {
	if message == "" {
		message = "An error occurred"
	}
	Respond(ctx, true, status, message, nil, nil)
}

// NotFoundResponse returns a 404 envelope.
func NotFoundResponse(ctx *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	ErrorResponse(ctx, http.StatusNotFound, message)
}

// UnauthorizedResponse returns a 401 envelope.
func UnauthorizedResponse(ctx *gin.Context, message string) {
	if message == "" {
		message = "Unauthorized access"
	}
	ErrorResponse(ctx, http.StatusUnauthorized, message)
}

// ValidationErrorResponse returns a 422 envelope with per-field messages.
func ValidationErrorResponse(ctx *gin.Context, message string, errs map[string]string) {
	if message == "" {
		message = "Validation error"
	}
	Respond(ctx, true, http.StatusUnprocessableEntity, message, nil, errs)
}

// InternalErrorResponse returns a 500 envelope; internals are logged by the
// caller, never echoed.
func InternalErrorResponse(ctx *gin.Context, message string) {
	if message == "" {
		message = "Internal Error"
	}
	ErrorResponse(ctx, http.StatusInternalServerError, message)
}
