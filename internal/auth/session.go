package auth

import (
	"strings"
	"time"
)

// TokenTypeBearer はトークンレスポンスのtoken_type。
const TokenTypeBearer = "bearer"

// Codec はセッションエンドポイントが必要とするトークン操作。
type Codec interface {
	TokenVerifier
	Mint(subject string) (string, error)
	Lifetime() time.Duration
}

// TokenResponse はログイン・リフレッシュのレスポンス。
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"` // 秒
}

// SessionService はAPIキーとトークンの交換、およびトークンの再発行を行う。
type SessionService struct {
	keys  CredentialChecker
	codec Codec
}

// NewSessionService はSessionServiceを生成する。
func NewSessionService(keys CredentialChecker, codec Codec) *SessionService {
	return &SessionService{
		keys:  keys,
		codec: codec,
	}
}

// Login はAPIキーを検証し、新しいトークンを発行する。
// ボディの値が空でなければボディをそのまま使い、空ならトリムしたヘッダーの値を使う。
func (s *SessionService) Login(bodyKey, headerKey string) (*TokenResponse, error) {
	key := bodyKey
	if key == "" {
		key = strings.TrimSpace(headerKey)
	}
	if key == "" || !s.keys.IsValid(key) {
		return nil, ErrUnauthenticated
	}

	return s.issue(DefaultSubject)
}

// Refresh は現在有効なトークンと同じsubjectで新しいトークンを発行する。
// 期限切れのトークンは猶予なしで拒否する。
func (s *SessionService) Refresh(authorization string) (*TokenResponse, error) {
	old, ok := BearerToken(authorization)
	if !ok {
		return nil, ErrUnauthenticated
	}

	claims, err := s.codec.Verify(old)
	if err != nil {
		return nil, err
	}

	return s.issue(claims.Subject)
}

func (s *SessionService) issue(subject string) (*TokenResponse, error) {
	token, err := s.codec.Mint(subject)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   TokenTypeBearer,
		ExpiresIn:   int(s.codec.Lifetime() / time.Second),
	}, nil
}
