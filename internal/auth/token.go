package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSubject はAPIキーでログインしたクライアントに発行するトークンのsubject。
// subjectクレームを持たないトークンを検証した場合もこの値を補う。
const DefaultSubject = "api-key"

// TokenConfig はトークンの署名・検証設定。プロセス起動時に1回だけ決定する。
type TokenConfig struct {
	Secret    string
	Issuer    string
	Audience  string
	Algorithm string        // HS256, HS384, HS512
	Lifetime  time.Duration // 発行から失効までの期間
}

// Claims は検証済みトークンから取り出したクレーム。
type Claims struct {
	Subject   string
	Issuer    string
	Audience  string
	ID        string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec はセッショントークン（HMAC署名のJWT）を発行・検証する。
// 設定はイミュータブルで、Mint/Verifyは並行に呼び出してよい。
type TokenCodec struct {
	secret   []byte
	method   *jwt.SigningMethodHMAC
	issuer   string
	audience string
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenCodec はTokenCodecを生成する。
// AlgorithmがHMAC系以外の場合はエラーを返す。Secretが空でも生成は成功し、
// その場合Mintは ErrNotConfigured、Verifyは ErrUnauthenticated を返す。
func NewTokenCodec(cfg TokenConfig) (*TokenCodec, error) {
	alg := cfg.Algorithm
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}

	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("unsupported signing algorithm %q: only HS256, HS384 and HS512 are supported", alg)
	}
	if cfg.Lifetime <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", cfg.Lifetime)
	}

	return &TokenCodec{
		secret:   []byte(cfg.Secret),
		method:   method,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: cfg.Lifetime,
		now:      time.Now,
	}, nil
}

// Configured は署名シークレットが設定されているかを返す。
func (c *TokenCodec) Configured() bool {
	return len(c.secret) > 0
}

// Lifetime はトークンの有効期間を返す。
func (c *TokenCodec) Lifetime() time.Duration {
	return c.lifetime
}

// Mint はsubjectを持つ新しいトークンを発行する。
// iatは秒単位に切り捨てた現在時刻、expはiat+有効期間。
// jtiにランダムなUUIDを入れるため、同じ秒に発行したトークン同士も一致しない。
func (c *TokenCodec) Mint(subject string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	issuedAt := c.now().UTC().Truncate(time.Second)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(c.lifetime)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify はトークンの署名・アルゴリズム・有効期限・issuer・audienceを検証し、クレームを返す。
// 期限切れは ErrTokenExpired、それ以外の検証失敗は ErrTokenInvalid を返す。
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	if !c.Configured() {
		return nil, ErrUnauthenticated
	}

	var registered jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &registered,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	claims := &Claims{
		Subject:  registered.Subject,
		Issuer:   registered.Issuer,
		Audience: c.audience,
		ID:       registered.ID,
	}
	if claims.Subject == "" {
		claims.Subject = DefaultSubject
	}
	if registered.IssuedAt != nil {
		claims.IssuedAt = registered.IssuedAt.Time
	}
	if registered.ExpiresAt != nil {
		claims.ExpiresAt = registered.ExpiresAt.Time
	}

	return claims, nil
}
