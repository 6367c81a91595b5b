package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestCodec(t *testing.T, secret string) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(secret, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenCodec error: %v", err)
	}
	return codec
}

func TestIssueAndVerify_Success(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "super-secret")

	tok, issued, err := codec.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := codec.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID() != "user-123" {
		t.Fatalf("userID mismatch: got %q want %q", claims.UserID(), "user-123")
	}
	if claims.ID == "" || claims.ID != issued.ID {
		t.Fatalf("jti mismatch: got %q want %q", claims.ID, issued.ID)
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		t.Fatalf("expected iat and exp claims")
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "secret")
	start := time.Now()
	codec.now = func() time.Time { return start }

	tok, _, err := codec.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	codec.now = func() time.Time { return start.Add(time.Hour + time.Minute) }

	_, err = codec.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expired token must be unauthenticated, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, _, err := newTestCodec(t, "right-secret").Issue("u2")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// A rotated secret invalidates every outstanding token
	_, err = newTestCodec(t, "wrong-secret").Verify(tok)
	if !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "k")
	for _, tok := range []string{"not.a.jwt", "logout", "a.b"} {
		if _, err := codec.Verify(tok); !errors.Is(err, ErrUnauthenticated) {
			t.Errorf("Verify(%q) = %v, want unauthenticated", tok, err)
		}
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "k")
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti",
		Subject:   "u3",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := codec.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := codec.Verify(none); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected unsigned token to be rejected, got %v", err)
	}
}

func TestVerify_RequiresExpiry(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, "k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:      "jti",
		Subject: "u4",
	}}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := codec.Verify(tok); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected token without exp to be rejected, got %v", err)
	}
}

func TestNewTokenCodec_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewTokenCodec("", time.Hour); err == nil || !strings.Contains(err.Error(), "secret") {
		t.Errorf("expected missing secret error, got %v", err)
	}
	if _, err := NewTokenCodec("k", 0); err == nil {
		t.Errorf("expected error for zero TTL")
	}
	if _, _, err := newTestCodec(t, "k").Issue(""); err == nil {
		t.Errorf("expected error for empty subject")
	}
}
