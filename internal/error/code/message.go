package code

// 错误码消息映射
var codeMessageMap = map[int]string{
	// 通用错误码
	ErrSuccess:         "成功",
	ErrUnknown:         "未知错误",
	ErrBind:            "请求参数绑定错误",
	ErrValidation:      "请求参数验证错误",
	ErrTokenInvalid:    "无效的认证令牌",
	ErrTooManyRequests: "请求频率过高，请稍后再试",

	// 用户与会话相关错误码
	ErrUserNotFound:          "用户不存在",
	ErrUserPasswordIncorrect: "用户名或密码错误",
	ErrSessionExpired:        "会话已过期，请重新登录",
	ErrInvalidRole:           "无效的角色",

	// 居民与户口相关错误码
	ErrResidentNotFound:     "居民不存在",
	ErrHouseholdNotFound:    "户口不存在",
	ErrProfileAlreadyLinked: "个人档案已关联",

	// 数据库相关错误码
	ErrDatabase:       "数据库错误",
	ErrRecordNotFound: "记录不存在",

	// 访问控制相关错误码
	ErrForbidden:       "权限不足",
	ErrProfileRequired: "请先完善个人档案",
	ErrSignInRequired:  "请先登录",

	// 上游服务相关错误码
	ErrUpstreamUnavailable: "无法连接到服务器，请稍后重试",
	ErrUpstreamValidation:  "提交的数据无效",
	ErrUpstreamNotFound:    "请求的数据不存在",

	// 统计报表相关错误码
	ErrAggregationFailed: "统计数据获取失败",
	ErrExportFailed:      "报表导出失败",
}

// 错误码HTTP状态码映射
var codeStatusMap = map[int]int{
	// 通用错误码
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	// 用户与会话相关错误码
	ErrUserNotFound:          StatusNotFound,
	ErrUserPasswordIncorrect: StatusUnauthorized,
	ErrSessionExpired:        StatusUnauthorized,
	ErrInvalidRole:           StatusBadRequest,

	// 居民与户口相关错误码
	ErrResidentNotFound:     StatusNotFound,
	ErrHouseholdNotFound:    StatusNotFound,
	ErrProfileAlreadyLinked: StatusBadRequest,

	// 数据库相关错误码
	ErrDatabase:       StatusInternalServerError,
	ErrRecordNotFound: StatusNotFound,

	// 访问控制相关错误码
	ErrForbidden:       StatusForbidden,
	ErrProfileRequired: StatusPreconditionRequired,
	ErrSignInRequired:  StatusUnauthorized,

	// 上游服务相关错误码
	ErrUpstreamUnavailable: StatusBadGateway,
	ErrUpstreamValidation:  StatusBadRequest,
	ErrUpstreamNotFound:    StatusNotFound,

	// 统计报表相关错误码
	ErrAggregationFailed: StatusBadGateway,
	ErrExportFailed:      StatusInternalServerError,
}

// GetMessage 获取错误码对应的消息
func GetMessage(code int) string {
	if msg, ok := codeMessageMap[code]; ok {
		return msg
	}
	return "未知错误"
}

// GetStatus 获取错误码对应的HTTP状态码
func GetStatus(code int) int {
	if status, ok := codeStatusMap[code]; ok {
		return status
	}
	return StatusInternalServerError
}
