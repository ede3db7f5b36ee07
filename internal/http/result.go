package httpapi

// Result 前端统一响应格式
// - code: 2000 成功，-1 失败
// - type: 'success' | 'error'
// - message: string
// - result: any
type Result[T any] struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

const (
	ResultSuccess = 2000
	ResultError   = -1
	// ResultUnauthorized 未登录/会话过期，配合 HTTP 401
	ResultUnauthorized = 60401
)

func Ok[T any](result T) Result[T] {
	return Result[T]{Code: ResultSuccess, Type: "success", Message: "ok", Result: result}
}

func Fail(message string) Result[any] {
	return Result[any]{Code: ResultError, Type: "error", Message: message, Result: nil}
}

// AdvisorResponse 选购顾问接口响应（独立于 Result 的固定格式）
type AdvisorResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Tiers      any    `json:"tiers,omitempty"`
	Thresholds any    `json:"thresholds,omitempty"`
}
