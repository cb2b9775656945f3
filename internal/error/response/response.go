package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"community-console-service/internal/domain/services/gate"
	"community-console-service/internal/domain/services/gateway"
	"community-console-service/internal/domain/services/reporting"
	"community-console-service/internal/error/code"
	"community-console-service/pkg/logger"
)

// Response 定义统一的响应格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Hint 附在错误响应里，告诉前端下一步怎么处理
type Hint struct {
	Redirect string      `json:"redirect,omitempty"`
	Notice   string      `json:"notice,omitempty"`
	Retry    bool        `json:"retry,omitempty"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code.ErrSuccess,
		Message: code.GetMessage(code.ErrSuccess),
		Data:    data,
	})
}

// Fail 失败响应
func Fail(c *gin.Context, errorCode int, data interface{}) {
	FailWithMessage(c, errorCode, code.GetMessage(errorCode), data)
}

// FailWithMessage 失败响应（自定义消息）
func FailWithMessage(c *gin.Context, errorCode int, message string, data interface{}) {
	c.JSON(code.GetStatus(errorCode), Response{
		Code:    errorCode,
		Message: message,
		Data:    data,
	})
}

// Abort 失败响应并终止后续处理，供中间件使用
func Abort(c *gin.Context, errorCode int, data interface{}) {
	Fail(c, errorCode, data)
	c.Abort()
}

// ParamError 参数错误响应
func ParamError(c *gin.Context, message string) {
	if message == "" {
		message = code.GetMessage(code.ErrValidation)
	}
	FailWithMessage(c, code.ErrValidation, message, nil)
}

// ServerError 服务器错误响应
func ServerError(c *gin.Context) {
	Fail(c, code.ErrUnknown, nil)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "资源不存在"
	}
	FailWithMessage(c, code.ErrRecordNotFound, message, nil)
}

// Unauthorized 未授权响应，前端跳转登录页
func Unauthorized(c *gin.Context) {
	Fail(c, code.ErrTokenInvalid, Hint{Redirect: gate.SignInPath})
}

// UpstreamError 把上游错误映射为统一响应。payload 是用户提交的数据，校验失败时原样带回
func UpstreamError(c *gin.Context, err error, payload interface{}) {
	// 统计聚合失败整体报错，会话失效和无权限仍按各自的跳转处理
	if errors.Is(err, reporting.ErrAggregationFailed) && !gateway.IsUnauthorized(err) && !gateway.IsForbidden(err) {
		logger.Error("Aggregation failed: %v", err)
		Fail(c, code.ErrAggregationFailed, Hint{Retry: true})
		return
	}

	apiErr, ok := gateway.AsAPIError(err)
	if !ok {
		logger.Error("Unexpected error: %v", err)
		ServerError(c)
		return
	}

	switch {
	case gateway.IsTransport(err):
		logger.Error("Upstream unreachable: %v", err)
		FailWithMessage(c, code.ErrUpstreamUnavailable, apiErr.Message, Hint{Retry: true})
	case gateway.IsUnauthorized(err):
		logger.Warning("Upstream rejected session: %v", err)
		Fail(c, code.ErrSessionExpired, Hint{Redirect: gate.SignInPath})
	case gateway.IsForbidden(err):
		logger.Warning("Upstream denied action: %v", err)
		Fail(c, code.ErrForbidden, Hint{
			Redirect: gate.DashboardPath,
			Notice:   apiErr.Message,
		})
	case gateway.IsNotFound(err):
		FailWithMessage(c, code.ErrUpstreamNotFound, apiErr.Message, Hint{Retry: true})
	case gateway.IsValidation(err):
		FailWithMessage(c, code.ErrUpstreamValidation, apiErr.Message, Hint{Payload: payload})
	default:
		logger.Error("Upstream server error: %v", err)
		FailWithMessage(c, code.ErrUpstreamUnavailable, apiErr.Message, Hint{Retry: true})
	}
}

// GateDecision 输出访问判定：放行 200，未登录 401，角色不足 403，缺少档案 428
func GateDecision(c *gin.Context, d gate.Decision) {
	switch d.State {
	case gate.StateAllowed:
		Success(c, d)
	case gate.StateBlockedPrompt:
		Fail(c, code.ErrProfileRequired, d)
	case gate.StateRedirect:
		if d.Target == gate.SignInPath {
			Fail(c, code.ErrSignInRequired, d)
			return
		}
		Fail(c, code.ErrForbidden, d)
	default:
		ServerError(c)
	}
}
