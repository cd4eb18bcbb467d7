package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/predictpix/predictpix-api/internal/auth"
	"github.com/predictpix/predictpix-api/internal/middleware"
	"github.com/predictpix/predictpix-api/internal/model"
)

// maxLoginBodyBytes はログインリクエストボディの上限。
const maxLoginBodyBytes = 4 << 10

// SessionServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type SessionServiceInterface interface {
	Login(bodyKey, headerKey string) (*auth.TokenResponse, error)
	Refresh(authorization string) (*auth.TokenResponse, error)
}

// TokenIssueRecorder はトークン発行の記録インターフェース。metrics.Collectorの部分集合。
type TokenIssueRecorder interface {
	RecordTokenIssued(kind string)
}

// AuthHandler はトークン発行・再発行のHTTPハンドラー。
type AuthHandler struct {
	service  SessionServiceInterface
	recorder TokenIssueRecorder
}

// NewAuthHandler はAuthHandlerを生成する。recorderはnilでもよい。
func NewAuthHandler(service SessionServiceInterface, recorder TokenIssueRecorder) *AuthHandler {
	return &AuthHandler{
		service:  service,
		recorder: recorder,
	}
}

// loginRequest はログインリクエストのボディ。ボディ自体も省略できる。
type loginRequest struct {
	APIKey string `json:"api_key"`
}

// Login はAPIキーを検証し、アクセストークンを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if r.Body != nil {
		err := json.NewDecoder(io.LimitReader(r.Body, maxLoginBodyBytes)).Decode(&req)
		if err != nil && !errors.Is(err, io.EOF) {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestBodyError())
			return
		}
	}

	resp, err := h.service.Login(req.APIKey, r.Header.Get(middleware.APIKeyHeader))
	if err != nil {
		if errors.Is(err, auth.ErrNotConfigured) {
			writeAuthError(w, err)
			return
		}
		slog.Warn("login failed", slog.String("reason", auth.FailureReason(err)))
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewInvalidAPIKeyError())
		return
	}

	h.recordIssued("login")
	writeJSON(w, http.StatusOK, resp)
}

// Refresh は有効なトークンと同じsubjectで新しいトークンを発行する。
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Refresh(r.Header.Get("Authorization"))
	if err != nil {
		slog.Warn("token refresh failed", slog.String("reason", auth.FailureReason(err)))
		writeAuthError(w, err)
		return
	}

	h.recordIssued("refresh")
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) recordIssued(kind string) {
	if h.recorder != nil {
		h.recorder.RecordTokenIssued(kind)
	}
}

// writeAuthError は認証エラーの種別に応じたレスポンスを書き込む。
// 署名鍵の未設定はクライアントの認証失敗ではないため500とする。
func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		slog.Error("token signing secret is not configured")
		middleware.WriteErrorResponse(w, http.StatusInternalServerError, model.NewAuthNotConfiguredError())
	case errors.Is(err, auth.ErrTokenExpired):
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenExpiredError())
	case errors.Is(err, auth.ErrTokenInvalid):
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenInvalidError())
	case errors.Is(err, auth.ErrUnauthenticated):
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
	default:
		handleServiceError(w, err)
	}
}
