// Package apperr 定义业务错误类型
//
// 业务错误携带显式状态码与可直接返回客户端的消息；
// 其它错误一律视为未分类内部错误，细节只记日志，不出站。
package apperr

import (
	"errors"
	"net/http"
)

// Error 业务错误
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New 创建 400 业务错误
func New(message string) *Error {
	return &Error{Code: http.StatusBadRequest, Message: message}
}

// WithCode 创建指定状态码的业务错误
func WithCode(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// NotFound 创建 404 业务错误
func NotFound(message string) *Error {
	return &Error{Code: http.StatusNotFound, Message: message}
}

// Unauthorized 创建 401 业务错误
func Unauthorized(message string) *Error {
	return &Error{Code: http.StatusUnauthorized, Message: message}
}

// As 判断 err 是否为业务错误
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
