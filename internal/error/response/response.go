package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sampoornaangan-backend/internal/error/code"
)

// Response is the unified JSON envelope for every endpoint
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Created writes a 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail writes a failure response using the code's default message
func Fail(c *gin.Context, errorCode int, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: code.GetMessage(errorCode),
		Data:    data,
	})
}

// FailWithMessage writes a failure response with a custom message
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// AbortFail writes a failure response and stops the handler chain
func AbortFail(c *gin.Context, errorCode int, data interface{}) {
	c.Abort()
	Fail(c, errorCode, data)
}

// AbortFailWithMessage writes a custom-message failure response and stops the handler chain
func AbortFailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.Abort()
	FailWithMessage(c, errorCode, message, data)
}

// ParamError writes a validation failure
func ParamError(c *gin.Context, message string) {
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// ServerError writes an opaque internal error
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound writes a not-found failure
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	FailWithMessage(c, code.ErrUserNotFound, message, nil)
}

// Unauthorized writes an authentication failure
func Unauthorized(c *gin.Context) {
	Fail(c, code.ErrTokenInvalid, nil)
}
