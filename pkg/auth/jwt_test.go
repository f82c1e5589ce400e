package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.GenerateToken("2", "admin@test.com", RoleStoreAdmin, "store1")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "2", claims.UserID)
	assert.Equal(t, "store1", claims.StoreID)
	assert.True(t, claims.IsStoreAdmin())
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	token, err := NewTokenManager("one", time.Hour).GenerateToken("1", "", RoleCustomer, "")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ValidateToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("secret", time.Nanosecond)
	token, err := m.GenerateToken("1", "", RoleCustomer, "")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateValidation(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	_, err := m.GenerateToken("", "", RoleCustomer, "")
	assert.Error(t, err)

	_, err = m.GenerateToken("1", "", "root", "")
	assert.Error(t, err)

	_, err = m.GenerateToken("1", "", RoleStoreAdmin, "")
	assert.Error(t, err)
}

func TestParseBearer(t *testing.T) {
	token, err := ParseBearer("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = ParseBearer("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = ParseBearer("Token abc")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseBearer("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
