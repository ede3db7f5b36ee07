package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"
)

// HealthHandler GET /healthz；db 为 nil 时（内存模式）只返回进程状态
func HealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok", "database": "disabled"}
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				status["status"] = "degraded"
				status["database"] = err.Error()
				writeJSON(w, http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		writeJSON(w, http.StatusOK, status)
	}
}
