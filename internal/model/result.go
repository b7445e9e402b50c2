package model

// Result API 统一响应外壳 {code, message, data}
//
// 成功响应 code 为 200，失败响应 code 为业务选择的状态码。
type Result struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Success 构造成功响应
func Success(data any) Result {
	return Result{Code: 200, Message: "success", Data: data}
}

// Failure 构造失败响应
func Failure(code int, message string) Result {
	return Result{Code: code, Message: message}
}
