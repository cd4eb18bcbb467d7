package auth

import (
	"errors"
	"testing"
	"time"
)

// mockVerifier はTokenVerifierのモック実装。
type mockVerifier struct {
	verifyFn func(token string) (*Claims, error)
	calls    int
}

func (m *mockVerifier) Verify(token string) (*Claims, error) {
	m.calls++
	if m.verifyFn != nil {
		return m.verifyFn(token)
	}
	return nil, ErrTokenInvalid
}

var _ TokenVerifier = (*mockVerifier)(nil)

func TestGate_Authenticate(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, testTokenConfig(), clock)
	valid, err := codec.Mint("api-key")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	gate := NewGate(NewKeyStore("abc123", ""), codec)

	tests := []struct {
		name          string
		apiKey        string
		authorization string
		wantMode      Mode
		wantErr       error
	}{
		{
			name:     "valid api key",
			apiKey:   "abc123",
			wantMode: ModeAPIKey,
		},
		{
			name:          "valid bearer token",
			authorization: "Bearer " + valid,
			wantMode:      ModeToken,
		},
		{
			name:          "bearer token with surrounding spaces",
			authorization: "Bearer   " + valid + "  ",
			wantMode:      ModeToken,
		},
		{
			name:          "valid api key wins over invalid bearer",
			apiKey:        "abc123",
			authorization: "Bearer garbage",
			wantMode:      ModeAPIKey,
		},
		{
			name:          "invalid api key does not fall through to valid bearer",
			apiKey:        "wrong",
			authorization: "Bearer " + valid,
			wantErr:       ErrUnauthenticated,
		},
		{
			name:          "invalid bearer",
			authorization: "Bearer garbage",
			wantErr:       ErrTokenInvalid,
		},
		{
			name:          "empty bearer",
			authorization: "Bearer ",
			wantErr:       ErrTokenInvalid,
		},
		{
			name:          "lowercase scheme is not a bearer token",
			authorization: "bearer " + valid,
			wantErr:       ErrUnauthenticated,
		},
		{
			name:          "basic auth is ignored",
			authorization: "Basic dXNlcjpwYXNz",
			wantErr:       ErrUnauthenticated,
		},
		{
			name:    "no credentials",
			wantErr: ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity, err := gate.Authenticate(tt.apiKey, tt.authorization)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if identity != nil {
					t.Errorf("identity = %+v, want nil", identity)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity.Mode != tt.wantMode {
				t.Errorf("Mode = %q, want %q", identity.Mode, tt.wantMode)
			}
			if identity.Subject != "api-key" {
				t.Errorf("Subject = %q, want %q", identity.Subject, "api-key")
			}
		})
	}
}

func TestGate_Authenticate_ExpiredTokenIsDistinguishable(t *testing.T) {
	clock := newFakeClock()
	codec := newTestCodec(t, testTokenConfig(), clock)
	token, err := codec.Mint("api-key")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}
	clock.Advance(time.Hour)

	gate := NewGate(NewKeyStore("abc123", ""), codec)
	_, err = gate.Authenticate("", "Bearer "+token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("error = %v, want ErrTokenExpired", err)
	}
}

func TestGate_Authenticate_APIKeyNeverConsultsVerifier(t *testing.T) {
	verifier := &mockVerifier{}
	gate := NewGate(NewKeyStore("abc123", ""), verifier)

	if _, err := gate.Authenticate("abc123", "Bearer whatever"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := gate.Authenticate("wrong", "Bearer whatever"); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("error = %v, want ErrUnauthenticated", err)
	}

	if verifier.calls != 0 {
		t.Errorf("verifier called %d times, want 0", verifier.calls)
	}
}

func TestGate_Authenticate_TokenSubjectComesFromClaims(t *testing.T) {
	verifier := &mockVerifier{
		verifyFn: func(token string) (*Claims, error) {
			if token != "tok" {
				t.Errorf("token = %q, want %q", token, "tok")
			}
			return &Claims{Subject: "service-7"}, nil
		},
	}
	gate := NewGate(NewKeyStore("", ""), verifier)

	identity, err := gate.Authenticate("", "Bearer tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if identity.Mode != ModeToken || identity.Subject != "service-7" {
		t.Errorf("identity = %+v, want {token service-7}", identity)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header    string
		wantToken string
		wantOK    bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", true},
		{"Bearer", "", false},
		{"bearer abc", "", false},
		{"Token abc", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		token, ok := BearerToken(tt.header)
		if token != tt.wantToken || ok != tt.wantOK {
			t.Errorf("BearerToken(%q) = (%q, %v), want (%q, %v)", tt.header, token, ok, tt.wantToken, tt.wantOK)
		}
	}
}
