package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// 传输层失败时给用户看的通用描述
const transportErrorMessage = "Network Error: unable to reach the community API"

// APIError 上游调用失败。StatusCode 为 0 表示请求没有拿到响应（网络不可达、超时）
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Err        error  `json:"-"`
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream transport failure: %s", e.Message)
	}
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func newTransportError(err error) *APIError {
	return &APIError{Message: transportErrorMessage, Err: err}
}

func newStatusError(status int, serverMessage string) *APIError {
	msg := serverMessage
	if msg == "" {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}
	return &APIError{StatusCode: status, Message: msg}
}

// AsAPIError 取出错误链中的 APIError
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func hasStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == status
}

// IsTransport 网络不可达或超时
func IsTransport(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.StatusCode == 0
}

// IsUnauthorized 上游返回 401，会话失效
func IsUnauthorized(err error) bool { return hasStatus(err, http.StatusUnauthorized) }

// IsForbidden 上游返回 403，角色不足
func IsForbidden(err error) bool { return hasStatus(err, http.StatusForbidden) }

// IsNotFound 上游返回 404
func IsNotFound(err error) bool { return hasStatus(err, http.StatusNotFound) }

// IsValidation 其余 4xx，消息原样展示给用户
func IsValidation(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	}
	return apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
