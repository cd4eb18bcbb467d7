// Package auth はAPIキーとベアラートークンによる認証を提供する。
//
// 構成要素:
//   - KeyStore: 起動時に読み込む静的APIキーの集合
//   - TokenCodec: 署名付き・有効期限付きセッショントークンの発行と検証
//   - Gate: 保護対象エンドポイントが共通で使う認可判定
//   - SessionService: APIキーからのトークン発行とトークンの再発行
package auth

import "errors"

// 認証エラーの種別。呼び出し側はerrors.Isで判定する。
var (
	// ErrNotConfigured は署名シークレットが未設定でトークンを発行できないことを示す。
	// クライアント認証の失敗ではなくサーバー設定の不備として扱う。
	ErrNotConfigured = errors.New("auth: token signing secret is not configured")

	// ErrUnauthenticated は資格情報が存在しない、または無効であることを示す。
	ErrUnauthenticated = errors.New("auth: invalid or missing credentials")

	// ErrTokenExpired はトークンの有効期限が切れていることを示す。
	ErrTokenExpired = errors.New("auth: token expired")

	// ErrTokenInvalid は署名・形式・issuer・audienceのいずれかの検証に失敗したことを示す。
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// FailureReason はログ・メトリクス用に認証エラーの種別を短いラベルへ変換する。
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
