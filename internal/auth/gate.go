package auth

import "strings"

// Mode は認証に使われた資格情報の種類。
type Mode string

const (
	// ModeAPIKey はX-API-Keyヘッダーの静的APIキーで認証されたことを示す。
	ModeAPIKey Mode = "api_key"
	// ModeToken はベアラートークンで認証されたことを示す。
	ModeToken Mode = "token"
)

const bearerPrefix = "Bearer "

// Identity は認証済みリクエストの主体。リクエスト単位で生成し、永続化しない。
type Identity struct {
	Mode    Mode
	Subject string
}

// CredentialChecker はAPIキーの照合インターフェース。
type CredentialChecker interface {
	IsValid(candidate string) bool
}

// TokenVerifier はトークン検証インターフェース。
type TokenVerifier interface {
	Verify(token string) (*Claims, error)
}

// Gate は保護対象の全操作が使う認可判定。状態を持たず、副作用もない。
type Gate struct {
	keys     CredentialChecker
	verifier TokenVerifier
}

// NewGate はGateを生成する。
func NewGate(keys CredentialChecker, verifier TokenVerifier) *Gate {
	return &Gate{
		keys:     keys,
		verifier: verifier,
	}
}

// Authenticate はAPIキーヘッダー値とAuthorizationヘッダー値からリクエストの主体を決定する。
//
// 判定順序（最初に該当したものを採用）:
//  1. APIキーがある場合はその照合結果のみで決める。不一致ならベアラートークンは見ない。
//  2. "Bearer "で始まるAuthorizationがある場合はトークンを検証する。
//  3. どちらもなければ ErrUnauthenticated。
func (g *Gate) Authenticate(apiKey, authorization string) (*Identity, error) {
	if apiKey != "" {
		if g.keys.IsValid(apiKey) {
			return &Identity{Mode: ModeAPIKey, Subject: DefaultSubject}, nil
		}
		return nil, ErrUnauthenticated
	}

	if token, ok := BearerToken(authorization); ok {
		claims, err := g.verifier.Verify(token)
		if err != nil {
			return nil, err
		}
		return &Identity{Mode: ModeToken, Subject: claims.Subject}, nil
	}

	return nil, ErrUnauthenticated
}

// BearerToken はAuthorizationヘッダー値からトークン部分を取り出す。
// プレフィックスは大文字小文字を区別する。
func BearerToken(authorization string) (string, bool) {
	if !strings.HasPrefix(authorization, bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(authorization[len(bearerPrefix):]), true
}
