package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// dbReadyTimeout はDB疎通確認のタイムアウト。
const dbReadyTimeout = 5 * time.Second

// maxDBErrorLength はDB疎通確認のエラーメッセージの最大長。
const maxDBErrorLength = 200

// HealthChecker はDB疎通確認のインターフェース。*sql.DBが実装する。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	db HealthChecker
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db HealthChecker) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health はプロセスの生存を返す。DBには触れない。
// GET /health, GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DBReady はDBへの疎通を確認する。失敗時もステータスは200のまま結果をボディで返す。
// GET /db/ready
func (h *HealthHandler) DBReady(w http.ResponseWriter, r *http.Request) {
	err := errors.New("database is not configured")
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), dbReadyTimeout)
		defer cancel()
		err = h.db.PingContext(ctx)
	}

	if err != nil {
		slog.Warn("database readiness check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusOK, map[string]string{
			"db":    "err",
			"error": truncate(err.Error(), maxDBErrorLength),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"db": "ok"})
}

// truncate は文字列を先頭maxRunes文字に切り詰める。
func truncate(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}
