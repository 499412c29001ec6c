package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_Roundtrip(t *testing.T) {
	svc := NewBallotTokenService("test-signing-key", 0)

	token, err := svc.Issue(7, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	payload, err := svc.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, uint(7), payload.VoterID)
	assert.Equal(t, uint(42), payload.ElectionID)
	assert.NotEmpty(t, payload.Nonce)
	assert.WithinDuration(t, time.Now(), payload.IssuedAt, time.Minute)
}

func TestIssue_MissingIdentifiers(t *testing.T) {
	svc := NewBallotTokenService("test-signing-key", 0)

	_, err := svc.Issue(0, 42)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Issue(7, 0)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssue_NoncesNeverCollide(t *testing.T) {
	svc := NewBallotTokenService("test-signing-key", 0)

	first, err := svc.Issue(7, 42)
	require.NoError(t, err)
	second, err := svc.Issue(7, 42)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NotEqual(t, svc.Hash(first), svc.Hash(second))
}

func TestVerify_ExpiredToken(t *testing.T) {
	svc := NewBallotTokenService("test-signing-key", 0)
	svc.now = func() time.Time {
		return time.Now().Add(-DefaultBallotTTL - time.Hour)
	}

	token, err := svc.Issue(7, 42)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_TamperedToken(t *testing.T) {
	svc := NewBallotTokenService("test-signing-key", 0)

	token, err := svc.Issue(7, 42)
	require.NoError(t, err)

	_, err = svc.Verify(token + "x")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.Verify("")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_WrongSigningKey(t *testing.T) {
	minter := NewBallotTokenService("key-one", 0)
	verifier := NewBallotTokenService("key-two", 0)

	token, err := minter.Issue(7, 42)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestHash_Deterministic(t *testing.T) {
	svc := NewBallotTokenService("test-signing-key", 0)

	token, err := svc.Issue(7, 42)
	require.NoError(t, err)

	assert.Equal(t, svc.Hash(token), svc.Hash(token))
	assert.Len(t, svc.Hash(token), 64)
	assert.NotContains(t, svc.Hash(token), token)
}
