package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	m := NewTokenManager("signing-key", time.Hour, "eventhub")

	token, err := m.Generate("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := m.Validate(token)
	require.NoError(t, err)
	require.Equal(t, "user-123", userID)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	m := NewTokenManager("signing-key", time.Hour, "eventhub")
	other := NewTokenManager("different-key", time.Hour, "eventhub")

	token, err := m.Generate("user-123")
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewTokenManager("signing-key", -time.Minute, "eventhub")

	token, err := m.Generate("user-123")
	require.NoError(t, err)

	_, err = m.Validate(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	m := NewTokenManager("signing-key", time.Hour, "eventhub")

	_, err := m.Validate("not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.Validate("")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestGenerateRequiresUserID(t *testing.T) {
	m := NewTokenManager("signing-key", time.Hour, "eventhub")

	_, err := m.Generate("")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	token, err = TokenFromHeader("bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	_, err = TokenFromHeader("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Bearer")
	require.ErrorIs(t, err, ErrMissingToken)
}
