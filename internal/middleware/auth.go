// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/predictpix/predictpix-api/internal/auth"
	"github.com/predictpix/predictpix-api/internal/model"
)

// APIKeyHeader は静的APIキーを受け取るリクエストヘッダー名。
const APIKeyHeader = "X-API-Key"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	// identityContextKey はリクエストコンテキストに認証済み主体を格納するためのキー。
	identityContextKey = contextKey("identity")
	// identitySlotContextKey はアクセスログが認証結果を受け取るためのキー。
	identitySlotContextKey = contextKey("identity_slot")
)

// identitySlot は外側のミドルウェアが内側で確定した主体を参照するための入れ物。
type identitySlot struct {
	identity *auth.Identity
}

// Authenticator は認証判定のインターフェース。auth.Gateが実装する。
type Authenticator interface {
	Authenticate(apiKey, authorization string) (*auth.Identity, error)
}

// AuthRecorder は認証試行の記録インターフェース。metrics.Collectorの部分集合。
type AuthRecorder interface {
	RecordAuthAttempt(mode, outcome string)
}

// NewAuthMiddleware はX-API-KeyまたはBearerトークンでリクエストを認証するミドルウェアを返す。
// 認証済みの主体をリクエストコンテキストに注入する。
// 失敗時はどの検査で失敗したかを伏せた汎用メッセージで401を返す。
func NewAuthMiddleware(authenticator Authenticator, recorder AuthRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)
			authorization := r.Header.Get("Authorization")
			mode := attemptedMode(apiKey, authorization)

			identity, err := authenticator.Authenticate(apiKey, authorization)
			if err != nil {
				reason := auth.FailureReason(err)
				if recorder != nil {
					recorder.RecordAuthAttempt(mode, reason)
				}
				slog.Warn("authentication failed",
					slog.String("mode", mode),
					slog.String("reason", reason),
					slog.String("path", r.URL.Path),
				)
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			if recorder != nil {
				recorder.RecordAuthAttempt(string(identity.Mode), "success")
			}
			if slot, ok := r.Context().Value(identitySlotContextKey).(*identitySlot); ok {
				slot.identity = identity
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// attemptedMode はメトリクス・ログ用に、どの資格情報が提示されたかを返す。
func attemptedMode(apiKey, authorization string) string {
	switch {
	case apiKey != "":
		return string(auth.ModeAPIKey)
	case strings.HasPrefix(authorization, "Bearer "):
		return string(auth.ModeToken)
	default:
		return "none"
	}
}

// IdentityFromContext はリクエストコンテキストから認証済み主体を取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (*auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(*auth.Identity)
	return identity, ok && identity != nil
}

// ContextWithIdentity はコンテキストに認証済み主体を注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity *auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}
