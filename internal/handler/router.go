package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/predictpix/predictpix-api/internal/metrics"
	"github.com/predictpix/predictpix-api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger         *slog.Logger
	AllowedOrigins []string
	RateLimiter    *middleware.RateLimiter
	Authenticator  middleware.Authenticator

	// メトリクス（nilの場合は記録・公開しない）
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	SessionService SessionServiceInterface

	// マーケット・ポジション
	MarketService   MarketServiceInterface
	PositionService PositionServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS
//
// /api 配下にはRateLimit(General)を、保護対象ルートにはさらにAuthを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.AllowedOrigins))

	var (
		authRecorder  middleware.AuthRecorder
		issueRecorder TokenIssueRecorder
	)
	if deps.Metrics != nil {
		authRecorder = deps.Metrics
		issueRecorder = deps.Metrics
	}

	healthHandler := NewHealthHandler(deps.HealthChecker)
	authHandler := NewAuthHandler(deps.SessionService, issueRecorder)
	marketHandler := NewMarketHandler(deps.MarketService)
	positionHandler := NewPositionHandler(deps.PositionService)

	// --- 認証不要のルート ---
	r.Get("/health", healthHandler.Health)
	r.Get("/db/ready", healthHandler.DBReady)
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/health", healthHandler.Health)

		// トークン発行・再発行
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.Refresh)

		// マーケット一覧は公開
		r.Get("/markets", marketHandler.ListMarkets)

		// --- 認証が必要なルート ---
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(deps.Authenticator, authRecorder))

			// 予測作成（予測専用レート制限を追加）
			r.With(deps.RateLimiter.PredictionMiddleware()).
				Post("/markets/{market_id}/predict", positionHandler.Predict)

			r.Get("/positions", positionHandler.ListPositions)
		})
	})

	return r
}
