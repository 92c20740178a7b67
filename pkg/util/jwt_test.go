package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signingSecret = "storely-jwt-signing-secret"

func TestGenerateTokenPair(t *testing.T) {
	tests := []struct {
		name   string
		userID uint
		email  string
		role   string
	}{
		{
			name:   "Customer token",
			userID: 7,
			email:  "shopper@storely.dev",
			role:   "user",
		},
		{
			name:   "Admin token",
			userID: 1,
			email:  "ops@storely.dev",
			role:   "admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := GenerateTokenPair(
				tt.userID,
				tt.email,
				tt.role,
				signingSecret,
				15*time.Minute,
				7*24*time.Hour,
			)
			require.NoError(t, err)
			require.NotNil(t, tokens)
			assert.NotEmpty(t, tokens.AccessToken)
			assert.NotEmpty(t, tokens.RefreshToken)
			assert.NotEqual(t, tokens.AccessToken, tokens.RefreshToken)
		})
	}
}

func TestValidateToken(t *testing.T) {
	tokens, err := GenerateTokenPair(
		42,
		"shopper@storely.dev",
		"user",
		signingSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{
			name:   "Valid access token",
			token:  tokens.AccessToken,
			secret: signingSecret,
		},
		{
			name:   "Valid refresh token",
			token:  tokens.RefreshToken,
			secret: signingSecret,
		},
		{
			name:    "Wrong secret",
			token:   tokens.AccessToken,
			secret:  "some-other-secret",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Garbage token",
			token:   "not.a.jwt",
			secret:  signingSecret,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "Empty token",
			token:   "",
			secret:  signingSecret,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ValidateToken(tt.token, tt.secret)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, claims)
			assert.Equal(t, uint(42), claims.UserID)
			assert.Equal(t, "shopper@storely.dev", claims.Email)
			assert.Equal(t, "user", claims.Role)
		})
	}
}

func TestValidateToken_Expired(t *testing.T) {
	tokens, err := GenerateTokenPair(
		1,
		"shopper@storely.dev",
		"user",
		signingSecret,
		1*time.Nanosecond,
		1*time.Nanosecond,
	)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	claims, err := ValidateToken(tokens.AccessToken, signingSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestTokenClaims_RoundTrip(t *testing.T) {
	tokens, err := GenerateTokenPair(
		9,
		"ops@storely.dev",
		"admin",
		signingSecret,
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	claims, err := ValidateToken(tokens.AccessToken, signingSecret)
	require.NoError(t, err)
	require.NotNil(t, claims)

	assert.Equal(t, uint(9), claims.UserID)
	assert.Equal(t, "ops@storely.dev", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.IssuedAt.Before(claims.ExpiresAt.Time))
}

func TestValidateToken_SecretRotation(t *testing.T) {
	tokens, err := GenerateTokenPair(
		1,
		"shopper@storely.dev",
		"user",
		"old-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	// A token signed under the old secret must die with the rotation
	claims, err := ValidateToken(tokens.AccessToken, "new-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
