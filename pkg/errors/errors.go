// Package errors 定义带错误码的应用错误及其 HTTP 状态映射
package errors

import (
	stderrors "errors"
	"net/http"
	"strings"
)

// ErrorCode 对外暴露的业务错误码
type ErrorCode string

const (
	// 通用 1xxx
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeUnauthorized       ErrorCode = "1002"
	CodeForbidden          ErrorCode = "1003"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 认证 2xxx
	CodeTokenExpired ErrorCode = "2001"
	CodeTokenInvalid ErrorCode = "2002"
	CodeTokenMissing ErrorCode = "2003"

	// 过滤 4xxx
	CodeEmbeddingFailed ErrorCode = "4006"

	// 依赖 5xxx
	CodeCacheError ErrorCode = "5002"
)

// 未列出的错误码按 500 处理
var httpStatus = map[ErrorCode]int{
	CodeInvalidParam:       http.StatusBadRequest,
	CodeUnauthorized:       http.StatusUnauthorized,
	CodeTokenExpired:       http.StatusUnauthorized,
	CodeTokenInvalid:       http.StatusUnauthorized,
	CodeTokenMissing:       http.StatusUnauthorized,
	CodeForbidden:          http.StatusForbidden,
	CodeTooManyRequests:    http.StatusTooManyRequests,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeEmbeddingFailed:    http.StatusBadGateway,
}

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString("[" + string(e.Code) + "] " + e.Message)
	if e.Detail != "" {
		b.WriteString(" (" + e.Detail + ")")
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 同错误码即视为同一错误，便于 errors.Is(err, ErrInvalidParam)
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// WithDetail 返回副本；预定义错误是共享的，不能原地修改
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: statusOf(code)}
}

// Wrap 以指定错误码包装底层错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	e := New(code, message)
	e.Err = err
	return e
}

func statusOf(code ErrorCode) int {
	if s, ok := httpStatus[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrForbidden          = New(CodeForbidden, "forbidden")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrTokenExpired = New(CodeTokenExpired, "token expired")
	ErrTokenInvalid = New(CodeTokenInvalid, "token invalid")
	ErrTokenMissing = New(CodeTokenMissing, "token missing")
)

// IsAppError 错误链中是否有 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 取错误链中的 AppError，没有时包装为 CodeUnknown
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// IsCode 错误链中的 AppError 是否为指定错误码
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Code == code
}
