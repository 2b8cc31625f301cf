package dto

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "campus-qa-api/pkg/errors"
)

// ErrorDetail 错误详情
type ErrorDetail struct {
	ErrorCode string `json:"error_code,omitempty"`
	Details   string `json:"details,omitempty"`
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	TraceID string       `json:"trace_id,omitempty"`
}

// Error 返回错误响应
func Error(c *gin.Context, httpCode int, message string) {
	c.JSON(httpCode, ErrorResponse{
		Code:    httpCode,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

// ErrorWithDetail 返回带详情的错误响应
func ErrorWithDetail(c *gin.Context, httpCode int, message string, detail *ErrorDetail) {
	c.JSON(httpCode, ErrorResponse{
		Code:    httpCode,
		Message: message,
		Error:   detail,
		TraceID: c.GetString("trace_id"),
	})
}

// AppError 按应用错误的状态码与错误码返回，不暴露底层错误
func AppError(c *gin.Context, err *apperrors.AppError) {
	ErrorWithDetail(c, err.HTTPStatus, err.Message, &ErrorDetail{ErrorCode: string(err.Code)})
}

// BadRequest 返回 400 错误
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// TooManyRequests 返回 429 错误
func TooManyRequests(c *gin.Context) {
	c.Abort()
	AppError(c, apperrors.ErrTooManyRequests)
}

// Apology 返回 500 与面向用户的致歉回答，不暴露内部错误
func Apology(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, AskResponse{Answer: message})
}
