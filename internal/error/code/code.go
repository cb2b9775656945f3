package code

// HTTP状态码.
const (
	// StatusOK - 200: 成功.
	StatusOK = 200
	// StatusBadRequest - 400: 请求参数错误.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: 未授权.
	StatusUnauthorized = 401
	// StatusForbidden - 403: 禁止访问.
	StatusForbidden = 403
	// StatusNotFound - 404: 资源不存在.
	StatusNotFound = 404
	// StatusPreconditionRequired - 428: 需要先完成前置步骤.
	StatusPreconditionRequired = 428
	// StatusTooManyRequests - 429: 请求过多.
	StatusTooManyRequests = 429
	// StatusInternalServerError - 500: 服务器内部错误.
	StatusInternalServerError = 500
	// StatusBadGateway - 502: 上游服务不可用.
	StatusBadGateway = 502
)

// 通用错误码 (100xxx).
const (
	// ErrSuccess - 200: 成功.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: 未知错误.
	ErrUnknown
	// ErrBind - 400: 请求参数绑定错误.
	ErrBind
	// ErrValidation - 400: 请求参数验证错误.
	ErrValidation
	// ErrTokenInvalid - 401: 令牌无效.
	ErrTokenInvalid
	// ErrTooManyRequests - 429: 请求频率过高.
	ErrTooManyRequests
)

// 用户与会话相关错误码 (101xxx).
const (
	// ErrUserNotFound - 404: 用户不存在.
	ErrUserNotFound int = iota + 101000
	// ErrUserPasswordIncorrect - 401: 用户名或密码错误.
	ErrUserPasswordIncorrect
	// ErrSessionExpired - 401: 会话已过期.
	ErrSessionExpired
	// ErrInvalidRole - 400: 无效的角色.
	ErrInvalidRole
)

// 居民与户口相关错误码 (103xxx).
const (
	// ErrResidentNotFound - 404: 居民不存在.
	ErrResidentNotFound int = iota + 103000
	// ErrHouseholdNotFound - 404: 户口不存在.
	ErrHouseholdNotFound
	// ErrProfileAlreadyLinked - 400: 个人档案已关联.
	ErrProfileAlreadyLinked
)

// 数据库相关错误码 (105xxx).
const (
	// ErrDatabase - 500: 数据库错误.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: 记录不存在.
	ErrRecordNotFound
)

// 访问控制相关错误码 (106xxx).
const (
	// ErrForbidden - 403: 权限不足.
	ErrForbidden int = iota + 106000
	// ErrProfileRequired - 428: 需要先完善个人档案.
	ErrProfileRequired
	// ErrSignInRequired - 401: 需要登录.
	ErrSignInRequired
)

// 上游服务相关错误码 (107xxx).
const (
	// ErrUpstreamUnavailable - 502: 上游服务不可用.
	ErrUpstreamUnavailable int = iota + 107000
	// ErrUpstreamValidation - 400: 上游校验失败.
	ErrUpstreamValidation
	// ErrUpstreamNotFound - 404: 上游资源不存在.
	ErrUpstreamNotFound
)

// 统计报表相关错误码 (108xxx).
const (
	// ErrAggregationFailed - 502: 统计数据获取失败.
	ErrAggregationFailed int = iota + 108000
	// ErrExportFailed - 500: 报表导出失败.
	ErrExportFailed
)
