// internal/pkg/auth/jwt.go
package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/your-org/thangka-store-backend/internal/config"
)

// Token types carried in the token_type claim
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims carries the identity encoded in a signed token
type Claims struct {
	UserID    uint   `json:"user_id"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies the HS256 tokens used for API auth
type JWTManager struct {
	secret        []byte
	issuer        string
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewJWTManager builds a manager from the JWT section of the config
func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret:        []byte(cfg.JWT.Secret),
		issuer:        cfg.App.Name,
		accessExpiry:  cfg.JWT.AccessTokenExpiry,
		refreshExpiry: cfg.JWT.RefreshTokenExpiry,
	}
}

// GenerateAccessToken issues a short-lived token carrying the user's role
func (j *JWTManager) GenerateAccessToken(userID uint, email string, isAdmin bool) (string, error) {
	return j.sign(userID, email, isAdmin, TokenTypeAccess, j.accessExpiry)
}

// GenerateRefreshToken issues a long-lived token. The admin flag is never
// carried on refresh tokens; it is re-read from the user on exchange.
func (j *JWTManager) GenerateRefreshToken(userID uint, email string) (string, error) {
	return j.sign(userID, email, false, TokenTypeRefresh, j.refreshExpiry)
}

func (j *JWTManager) sign(userID uint, email string, isAdmin bool, tokenType string, expiry time.Duration) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		UserID:    userID,
		Email:     email,
		IsAdmin:   isAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.issuer,
			Subject:   fmt.Sprintf("user:%d", userID),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// ValidateToken verifies a token's signature and returns its claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims.TokenType == "" {
		return nil, fmt.Errorf("token type not specified")
	}

	return claims, nil
}

// ValidateAccessToken verifies a token and requires it to be an access token
func (j *JWTManager) ValidateAccessToken(tokenString string) (*Claims, error) {
	return j.validateTyped(tokenString, TokenTypeAccess)
}

// ValidateRefreshToken verifies a token and requires it to be a refresh token
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.validateTyped(tokenString, TokenTypeRefresh)
}

func (j *JWTManager) validateTyped(tokenString, wantType string) (*Claims, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != wantType {
		return nil, fmt.Errorf("invalid token type: expected %s, got %s", wantType, claims.TokenType)
	}
	return claims, nil
}

// ExtractTokenFromHeader pulls the bearer token out of an Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(authHeader, prefix) {
		return strings.TrimPrefix(authHeader, prefix)
	}
	return ""
}
