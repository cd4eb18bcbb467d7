package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 認証関連の既定値
const (
	DefaultJWTIssuer     = "predictpix"
	DefaultJWTAudience   = "predictpix-clients"
	DefaultJWTAlgorithm  = "HS256"
	DefaultJWTExpiresMin = 15
)

// supportedJWTAlgorithms は署名に使えるHMACアルゴリズム。
var supportedJWTAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// API Key
	APIKey     string
	APIKeysCSV string

	// Token
	JWTSecret    string
	JWTIssuer    string
	JWTAudience  string
	JWTAlgorithm string
	JWTLifetime  time.Duration

	// Rate Limit（req/min/client）
	RateLimitGeneral int
	RateLimitPredict int

	// Server
	ServerPort string

	// CORS（カンマ区切り、"*" で全許可）
	FrontendOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、または署名アルゴリズムが未対応の場合はエラーを返す。
// JWT_SECRETとAPIキーは未設定でも起動できる。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.JWTAlgorithm = strings.ToUpper(strings.TrimSpace(getEnvString("JWT_ALG", DefaultJWTAlgorithm)))
	if !supportedJWTAlgorithms[cfg.JWTAlgorithm] {
		return nil, fmt.Errorf("unsupported JWT_ALG %q: must be one of HS256, HS384, HS512", cfg.JWTAlgorithm)
	}

	// Optional fields with defaults
	cfg.APIKey = os.Getenv("API_KEY")
	cfg.APIKeysCSV = os.Getenv("API_KEYS_CSV")
	cfg.JWTSecret = strings.TrimSpace(os.Getenv("JWT_SECRET"))
	cfg.JWTIssuer = getEnvString("JWT_ISSUER", DefaultJWTIssuer)
	cfg.JWTAudience = getEnvString("JWT_AUDIENCE", DefaultJWTAudience)

	expiresMin := getEnvInt("JWT_EXPIRES_MIN", DefaultJWTExpiresMin)
	if expiresMin <= 0 {
		expiresMin = DefaultJWTExpiresMin
	}
	cfg.JWTLifetime = time.Duration(expiresMin) * time.Minute

	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitPredict = getEnvInt("RATE_LIMIT_PREDICT", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.FrontendOrigin = getEnvString("FRONTEND_ORIGIN", "*")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return defaultVal
	}
	return i
}
