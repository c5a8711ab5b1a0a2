package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericlong128/reimbursement-service/internal/domain"
)

type staticSecret []byte

func (s staticSecret) Current() []byte { return []byte(s) }

func testUser() *domain.User {
	return &domain.User{
		UserID:   "u-1",
		Username: "alice",
		Role:     domain.RoleManager,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	tm := NewTokenManager(staticSecret("secret"), 60)

	token, exp, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleManager, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager(staticSecret("secret"), 60)
	other := NewTokenManager(staticSecret("different"), 60)

	token, _, err := tm.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager(staticSecret("secret"), 60)

	_, err := tm.ParseToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenManagerDefaultsTTL(t *testing.T) {
	tm := NewTokenManager(staticSecret("secret"), 0)

	_, exp, err := tm.GenerateToken(testUser())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)
}
