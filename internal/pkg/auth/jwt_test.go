package auth

import (
	"testing"
	"time"

	"github.com/your-org/thangka-store-backend/internal/config"
)

func testJWTManager(t *testing.T) *JWTManager {
	t.Helper()

	return NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "thangka-store-test"},
		JWT: config.JWTConfig{
			Secret:             "test-secret-key",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: 7 * 24 * time.Hour,
		},
	})
}

func TestTokenRoundTrip(t *testing.T) {
	mgr := testJWTManager(t)

	t.Run("access token carries identity and role", func(t *testing.T) {
		token, err := mgr.GenerateAccessToken(7, "pema@example.com", true)
		if err != nil {
			t.Fatalf("GenerateAccessToken failed: %v", err)
		}

		claims, err := mgr.ValidateAccessToken(token)
		if err != nil {
			t.Fatalf("ValidateAccessToken failed: %v", err)
		}
		if claims.UserID != 7 || claims.Email != "pema@example.com" || !claims.IsAdmin {
			t.Errorf("unexpected claims: %+v", claims)
		}
		if claims.TokenType != TokenTypeAccess {
			t.Errorf("expected access token type, got %q", claims.TokenType)
		}
	})

	t.Run("refresh token never carries the admin flag", func(t *testing.T) {
		token, err := mgr.GenerateRefreshToken(7, "pema@example.com")
		if err != nil {
			t.Fatalf("GenerateRefreshToken failed: %v", err)
		}

		claims, err := mgr.ValidateRefreshToken(token)
		if err != nil {
			t.Fatalf("ValidateRefreshToken failed: %v", err)
		}
		if claims.IsAdmin {
			t.Error("refresh token should not carry admin status")
		}
	})
}

func TestTokenTypeEnforcement(t *testing.T) {
	mgr := testJWTManager(t)

	access, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	refresh, err := mgr.GenerateRefreshToken(1, "a@example.com")
	if err != nil {
		t.Fatalf("GenerateRefreshToken failed: %v", err)
	}

	if _, err := mgr.ValidateAccessToken(refresh); err == nil {
		t.Error("expected access validation to reject a refresh token")
	}
	if _, err := mgr.ValidateRefreshToken(access); err == nil {
		t.Error("expected refresh validation to reject an access token")
	}
	if _, err := mgr.ValidateToken("not-a-token"); err == nil {
		t.Error("expected garbage token to be rejected")
	}
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	mgr := testJWTManager(t)
	other := NewJWTManager(&config.Config{
		App: config.AppConfig{Name: "thangka-store-test"},
		JWT: config.JWTConfig{
			Secret:            "a-different-secret",
			AccessTokenExpiry: 15 * time.Minute,
		},
	})

	token, err := other.GenerateAccessToken(1, "a@example.com", false)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	if _, err := mgr.ValidateToken(token); err == nil {
		t.Error("expected token signed with another secret to be rejected")
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	if got := ExtractTokenFromHeader("Bearer abc.def.ghi"); got != "abc.def.ghi" {
		t.Errorf("expected bearer token extracted, got %q", got)
	}
	if got := ExtractTokenFromHeader("abc.def.ghi"); got != "" {
		t.Errorf("expected empty result without Bearer prefix, got %q", got)
	}
	if got := ExtractTokenFromHeader(""); got != "" {
		t.Errorf("expected empty result for empty header, got %q", got)
	}
}
