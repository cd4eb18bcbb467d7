// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, market, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "TOKEN_INVALID"
	ErrCodeAuthNotConfigured  = "AUTH_NOT_CONFIGURED"
	ErrCodeInvalidParameter   = "INVALID_PARAMETER"
	ErrCodeInvalidSide        = "INVALID_SIDE"
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	ErrCodeMarketNotFound     = "MARKET_NOT_FOUND"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewUnauthorizedError は保護対象APIの認証失敗エラーを生成する。
// どの検査で失敗したかは含めない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "invalid or missing auth",
		Category: "auth",
		Action:   "X-API-Key ヘッダーまたは Authorization: Bearer ヘッダーを指定してください。",
	}
}

// NewInvalidAPIKeyError はログイン時のAPIキー不一致エラーを生成する。
func NewInvalidAPIKeyError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "invalid or missing API key",
		Category: "auth",
		Action:   "正しいAPIキーを指定してください。",
	}
}

// NewTokenExpiredError はトークン期限切れエラーを生成する。
func NewTokenExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenExpired,
		Message:  "token expired",
		Category: "auth",
		Action:   "APIキーで再ログインしてください。",
	}
}

// NewTokenInvalidError は不正なトークンのエラーを生成する。
func NewTokenInvalidError() *APIError {
	return &APIError{
		Code:     ErrCodeTokenInvalid,
		Message:  "invalid token",
		Category: "auth",
		Action:   "APIキーで再ログインしてください。",
	}
}

// NewAuthNotConfiguredError はトークン署名鍵が未設定の場合のエラーを生成する。
func NewAuthNotConfiguredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthNotConfigured,
		Message:  "token signing is not configured",
		Category: "system",
		Action:   "管理者に連絡してください。",
	}
}

// NewInvalidParameterError はクエリ・パスパラメータの検証エラーを生成する。
func NewInvalidParameterError(name, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidParameter,
		Message:  fmt.Sprintf("invalid %s: %s", name, reason),
		Category: "validation",
		Action:   "パラメータの値を確認してください。",
	}
}

// NewInvalidSideError はsideが yes/no 以外の場合のエラーを生成する。
func NewInvalidSideError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSide,
		Message:  "side must be 'yes' or 'no'",
		Category: "validation",
		Action:   "side には yes または no を指定してください。",
	}
}

// NewInvalidAmountError はamountが正の数でない場合のエラーを生成する。
func NewInvalidAmountError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidAmount,
		Message:  "amount must be a positive number",
		Category: "validation",
		Action:   "amount には0より大きい数値を指定してください。",
	}
}

// NewInvalidRequestBodyError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequestBody,
		Message:  "request body must be a JSON object",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewMarketNotFoundError はマーケット未検出エラーを生成する。
func NewMarketNotFoundError(marketID string) *APIError {
	return &APIError{
		Code:     ErrCodeMarketNotFound,
		Message:  fmt.Sprintf("market not found: %s", marketID),
		Category: "market",
		Action:   "マーケットIDを確認してください。",
	}
}

// NewInternalError は内部エラーを生成する。詳細はログにのみ残す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "internal server error",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
