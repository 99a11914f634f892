package server

import (
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hanapwede/job-recommender/internal/config"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func setupTestJWTService(_ *testing.T) *JWTService {
	return NewJWTService(&config.AuthConfig{JWTSecret: testJWTSecret})
}

// signTestToken mints a token the way the job board's auth service does.
func signTestToken(t *testing.T, secret, issuer string, userID int64, expiresIn time.Duration) string {
	t.Helper()
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJWTService_ValidateToken_Success(t *testing.T) {
	service := setupTestJWTService(t)
	token := signTestToken(t, testJWTSecret, "", 19, time.Hour)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(19), claims.UserID)
	assert.Equal(t, "19", claims.Subject)
	assert.Equal(t, int64(19), claims.GetUserID())
}

func TestJWTService_ValidateToken_InvalidSignature(t *testing.T) {
	service := setupTestJWTService(t)
	token := signTestToken(t, "another-secret-entirely", "", 19, time.Hour)

	_, err := service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_ValidateToken_Errors(t *testing.T) {
	service := setupTestJWTService(t)

	tests := []struct {
		name    string
		token   string
		wantErr string
	}{
		{"empty", "", "token string is empty"},
		{"garbage", "not-a-jwt", "malformed token"},
		{"two parts", "abc.def", "malformed token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.ValidateToken(tt.token)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJWTService_TokenExpiration(t *testing.T) {
	service := setupTestJWTService(t)
	token := signTestToken(t, testJWTSecret, "", 19, -time.Hour)

	_, err := service.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_Leeway(t *testing.T) {
	tests := []struct {
		name    string
		leeway  time.Duration
		wantErr bool
	}{
		{name: "no leeway", leeway: 0, wantErr: true},
		{name: "leeway covers skew", leeway: time.Minute, wantErr: false},
		{name: "leeway too short", leeway: 10 * time.Second, wantErr: true},
	}

	// Expired 30 seconds ago, as seen by a slightly fast clock.
	token := signTestToken(t, testJWTSecret, "", 19, -30*time.Second)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewJWTService(&config.AuthConfig{JWTSecret: testJWTSecret, Leeway: tt.leeway})
			_, err := service.ValidateToken(token)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "token expired")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestJWTService_Issuer(t *testing.T) {
	token := signTestToken(t, testJWTSecret, "hanapwede-auth", 7, time.Hour)

	tests := []struct {
		name    string
		issuer  string
		wantErr string
	}{
		{name: "issuer not checked", issuer: ""},
		{name: "matching issuer", issuer: "hanapwede-auth"},
		{name: "other issuer", issuer: "someone-else", wantErr: "invalid token issuer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewJWTService(&config.AuthConfig{JWTSecret: testJWTSecret, JWTIssuer: tt.issuer})
			_, err := service.ValidateToken(token)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJWTService_RejectsNoneAlgorithm(t *testing.T) {
	service := setupTestJWTService(t)

	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 19}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)
	assert.Error(t, err)
}

func TestClaims_GetUserID(t *testing.T) {
	tests := []struct {
		name   string
		claims Claims
		want   int64
	}{
		{"user_id claim", Claims{UserID: 5}, 5},
		{"numeric subject", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "12"}}, 12},
		{"non-numeric subject", Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "alice"}}, 0},
		{"empty", Claims{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.claims.GetUserID())
		})
	}
}

func TestAsTokenValidator(t *testing.T) {
	service := setupTestJWTService(t)
	token := signTestToken(t, testJWTSecret, "", 42, time.Hour)

	getter, err := service.AsTokenValidator().ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), getter.GetUserID())

	_, err = service.AsTokenValidator().ValidateToken("bad")
	assert.Error(t, err)
}
