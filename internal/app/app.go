// Package app はコマンドの解析と依存関係のワイヤリングを行い、各モードを起動する。
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/predictpix/predictpix-api/internal/auth"
	"github.com/predictpix/predictpix-api/internal/config"
	"github.com/predictpix/predictpix-api/internal/database"
	"github.com/predictpix/predictpix-api/internal/handler"
	"github.com/predictpix/predictpix-api/internal/logger"
	"github.com/predictpix/predictpix-api/internal/market"
	"github.com/predictpix/predictpix-api/internal/metrics"
	"github.com/predictpix/predictpix-api/internal/middleware"
	"github.com/predictpix/predictpix-api/internal/position"
	"github.com/predictpix/predictpix-api/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// shutdownTimeout はグレースフルシャットダウンの待ち時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. ルーターの構築
	router, cleanup, err := NewServerHandler(cfg, db, prometheus.NewRegistry())
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// NewServerHandler は設定とDB接続から全依存関係をワイヤリングし、HTTPハンドラーを返す。
// 返却するcleanupはレートリミッターのバックグラウンド処理を停止する。
// 署名アルゴリズムが不正な場合はエラーを返す。署名鍵やAPIキーの欠落は警告に留める。
func NewServerHandler(cfg *config.Config, db *sql.DB, registry *prometheus.Registry) (http.Handler, func(), error) {
	// 1. 認証の初期化
	keys := auth.NewKeyStore(cfg.APIKey, cfg.APIKeysCSV)
	codec, err := auth.NewTokenCodec(auth.TokenConfig{
		Secret:    cfg.JWTSecret,
		Issuer:    cfg.JWTIssuer,
		Audience:  cfg.JWTAudience,
		Algorithm: cfg.JWTAlgorithm,
		Lifetime:  cfg.JWTLifetime,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	if !codec.Configured() {
		slog.Warn("JWT_SECRET is not set: token login and bearer authentication are disabled")
	}
	if keys.Len() == 0 {
		slog.Warn("no API keys configured: API_KEY and API_KEYS_CSV are empty")
	}
	slog.Info("auth configured",
		slog.Int("api_keys", keys.Len()),
		slog.Bool("token_signing", codec.Configured()),
		slog.String("algorithm", cfg.JWTAlgorithm),
		slog.Duration("token_lifetime", cfg.JWTLifetime),
	)

	// 2. リポジトリとドメインサービスの初期化
	marketRepo := repository.NewPostgresMarketRepo(db)
	positionRepo := repository.NewPostgresPositionRepo(db)

	marketService := market.NewService(marketRepo)
	positionService := position.NewService(positionRepo)

	// 3. メトリクスの初期化
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 4. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitPredict),
	)

	deps := &handler.RouterDeps{
		Logger:         slog.Default(),
		AllowedOrigins: middleware.ParseAllowedOrigins(cfg.FrontendOrigin),
		RateLimiter:    rateLimiter,
		Authenticator:  auth.NewGate(keys, codec),

		Metrics:         collector,
		MetricsGatherer: registry,

		HealthChecker: db,

		SessionService: auth.NewSessionService(keys, codec),

		MarketService:   marketService,
		PositionService: positionService,
	}

	return handler.NewRouter(deps), rateLimiter.Stop, nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.MigrationVersion(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
