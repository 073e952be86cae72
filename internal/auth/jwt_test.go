package auth_test

import (
	"testing"
	"time"

	"github.com/inkwell/bloghub/internal/auth"
)

func newTestManager() *auth.Manager {
	return auth.NewManager("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)
}

func TestGenerateTokenPairClaimsRoundTrip(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateTokenPair("user-1", "jo@example.com", "user")

	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	access, err := m.VerifyAccessToken(pair.AccessToken)

	if err != nil {
		t.Fatalf("verify access: %v", err)
	}

	if access.UserID != "user-1" || access.Email != "jo@example.com" || access.Role != "user" {
		t.Fatalf("access claims mismatch: %+v", access)
	}

	refresh, err := m.VerifyRefreshToken(pair.RefreshToken)

	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}

	if refresh.UserID != access.UserID || refresh.Email != access.Email || refresh.Role != access.Role {
		t.Fatalf("refresh claims should mirror access claims: %+v vs %+v", refresh, access)
	}

	if refresh.JTI != pair.RefreshJTI {
		t.Fatalf("refresh jti mismatch: got %s want %s", refresh.JTI, pair.RefreshJTI)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := newTestManager()
	other := auth.NewManager("other-access", "other-refresh", 15*time.Minute, 30*24*time.Hour)

	pair, err := m.GenerateTokenPair("user-1", "jo@example.com", "user")

	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := other.VerifyRefreshToken(pair.RefreshToken); err == nil {
		t.Fatalf("refresh token signed with another secret must be rejected")
	}

	if _, err := other.VerifyAccessToken(pair.AccessToken); err == nil {
		t.Fatalf("access token signed with another secret must be rejected")
	}
}

func TestVerifyRejectsCrossTypeTokens(t *testing.T) {
	m := newTestManager()

	pair, err := m.GenerateTokenPair("user-1", "jo@example.com", "user")

	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	// Secrets differ per kind, so a swapped token fails the signature check
	// before it ever reaches the type check.
	if _, err := m.VerifyRefreshToken(pair.AccessToken); err == nil {
		t.Fatalf("access token must not verify as a refresh token")
	}

	if _, err := m.VerifyAccessToken(pair.RefreshToken); err == nil {
		t.Fatalf("refresh token must not verify as an access token")
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	m := auth.NewManager("access-secret", "refresh-secret", -1*time.Minute, -1*time.Minute)

	pair, err := m.GenerateTokenPair("user-1", "jo@example.com", "user")

	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}

	if _, err := m.VerifyRefreshToken(pair.RefreshToken); err == nil {
		t.Fatalf("expired refresh token must be rejected")
	}
}

func TestHashRefreshTokenIsDeterministic(t *testing.T) {
	m := newTestManager()

	a := m.HashRefreshToken("raw-token")
	b := m.HashRefreshToken("raw-token")

	if a != b {
		t.Fatalf("hash must be deterministic: %s vs %s", a, b)
	}

	if a == "raw-token" || a == "" {
		t.Fatalf("hash output looks wrong: %q", a)
	}

	if m.HashRefreshToken("other-token") == a {
		t.Fatalf("different inputs must not collide")
	}
}
