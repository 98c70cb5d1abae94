package user

import (
	"errors"
	"testing"
	"time"

	"github.com/your-org/thangka-store-backend/internal/config"
	"github.com/your-org/thangka-store-backend/internal/pkg/apperr"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&User{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()

	cfg := &config.Config{
		JWT: config.JWTConfig{
			Secret:             "test-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost: 4, // bcrypt.MinCost, keeps tests fast
		},
	}
	return NewService(db, cfg)
}

func validRegistration() *RegisterRequest {
	return &RegisterRequest{
		Email:           "Pema@Example.com",
		Password:        "Thangka#2026",
		ConfirmPassword: "Thangka#2026",
		FirstName:       "Pema",
		LastName:        "Sherpa",
	}
}

func TestRegister(t *testing.T) {
	t.Run("creates account and issues tokens", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)

		resp, err := svc.Register(validRegistration())
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}

		if resp.AccessToken == "" || resp.RefreshToken == "" {
			t.Error("expected token pair")
		}
		if resp.User.Password != "" {
			t.Error("expected password blanked in response")
		}
		if resp.User.Email != "pema@example.com" {
			t.Errorf("expected lowercased email, got %q", resp.User.Email)
		}
		if resp.User.IsAdmin {
			t.Error("expected regular account")
		}
	})

	t.Run("rejects mismatched confirmation", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)

		req := validRegistration()
		req.ConfirmPassword = "Different#2026"
		if _, err := svc.Register(req); !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)

		if _, err := svc.Register(validRegistration()); err != nil {
			t.Fatalf("first registration failed: %v", err)
		}
		if _, err := svc.Register(validRegistration()); !apperr.IsValidation(err) {
			t.Errorf("expected validation error for duplicate email, got %v", err)
		}
	})

	t.Run("rejects weak password", func(t *testing.T) {
		db := setupTestDB(t)
		svc := newTestService(t, db)

		req := validRegistration()
		req.Password = "short"
		req.ConfirmPassword = "short"
		if _, err := svc.Register(req); err == nil {
			t.Error("expected weak password to be rejected")
		}
	})
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	if _, err := svc.Register(validRegistration()); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("authenticates with correct credentials", func(t *testing.T) {
		resp, err := svc.Login(&LoginRequest{
			Email:    "pema@example.com",
			Password: "Thangka#2026",
		})
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if resp.AccessToken == "" {
			t.Error("expected access token")
		}
		if resp.User.LastLoginAt == nil {
			t.Error("expected last login timestamp to be set")
		}
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{
			Email:    "pema@example.com",
			Password: "Wrong#2026pw",
		})
		if err == nil {
			t.Error("expected login to fail")
		}
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		_, err := svc.Login(&LoginRequest{
			Email:    "nobody@example.com",
			Password: "Thangka#2026",
		})
		if err == nil {
			t.Error("expected login to fail")
		}
	})
}

func TestRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	resp, err := svc.Register(validRegistration())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("exchanges refresh token for a new pair", func(t *testing.T) {
		refreshed, err := svc.RefreshToken(resp.RefreshToken)
		if err != nil {
			t.Fatalf("RefreshToken failed: %v", err)
		}
		if refreshed.AccessToken == "" || refreshed.RefreshToken == "" {
			t.Error("expected new token pair")
		}
	})

	t.Run("rejects an access token", func(t *testing.T) {
		if _, err := svc.RefreshToken(resp.AccessToken); err == nil {
			t.Error("expected access token to be rejected")
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, err := svc.RefreshToken("not-a-token"); err == nil {
			t.Error("expected invalid token to be rejected")
		}
	})
}

func TestProfile(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(t, db)

	resp, err := svc.Register(validRegistration())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("retrieves profile without password", func(t *testing.T) {
		u, err := svc.GetProfile(resp.User.ID)
		if err != nil {
			t.Fatalf("GetProfile failed: %v", err)
		}
		if u.Password != "" {
			t.Error("expected password blanked")
		}
		if u.GetFullName() != "Pema Sherpa" {
			t.Errorf("unexpected full name %q", u.GetFullName())
		}
	})

	t.Run("applies partial update", func(t *testing.T) {
		phone := "+9779812345678"
		u, err := svc.UpdateProfile(resp.User.ID, &UpdateProfileRequest{Phone: &phone})
		if err != nil {
			t.Fatalf("UpdateProfile failed: %v", err)
		}
		if u.Phone != phone {
			t.Errorf("expected phone updated, got %q", u.Phone)
		}
		if u.FirstName != "Pema" {
			t.Errorf("expected first name untouched, got %q", u.FirstName)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := svc.GetProfile(999); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
