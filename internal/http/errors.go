package httpapi

import (
	"errors"
	"net/http"

	"banmaytinh/internal/domain"

	"go.uber.org/zap"
)

// statusFor 领域错误 -> HTTP 状态码
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyCriteria),
		errors.Is(err, domain.ErrInvalidSelection),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrNotInGroup):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateItem),
		errors.Is(err, domain.ErrDuplicateTag),
		errors.Is(err, domain.ErrDuplicateName),
		errors.Is(err, domain.ErrInUse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError 按错误类型写响应；5xx 不向客户端暴露内部错误
func writeError(w http.ResponseWriter, logger *zap.Logger, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(op+" failed", zap.Error(err))
		writeJSON(w, status, Fail("internal server error"))
		return
	}
	logger.Debug(op+" rejected", zap.Int("status", status), zap.Error(err))
	if status == http.StatusUnauthorized {
		writeJSON(w, status, Result[any]{Code: ResultUnauthorized, Type: "error", Message: err.Error()})
		return
	}
	writeJSON(w, status, Fail(err.Error()))
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, Fail(message))
}
