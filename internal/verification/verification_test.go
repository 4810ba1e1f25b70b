package verification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestNewChallenge(t *testing.T) {
	now := time.Now()

	code, challenge, err := NewChallenge(now, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.NotEqual(t, code, challenge.CodeHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)))
	assert.Zero(t, challenge.Attempts)
	assert.Equal(t, now.Add(15*time.Minute), challenge.ExpiresAt)
	assert.Equal(t, now, challenge.CreatedAt)
}

func TestCheck(t *testing.T) {
	now := time.Now()

	code, challenge, err := NewChallenge(now, time.Minute)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	testCases := []struct {
		name     string
		attempts int64
		code     string
		at       time.Time
		wantErr  error
	}{
		{name: "OK", code: code, at: now},
		{name: "Mismatch", code: wrong, at: now, wantErr: ErrCodeMismatch},
		{name: "BadFormat", code: "12345", at: now, wantErr: ErrInvalidFormat},
		{name: "Expired", code: code, at: now.Add(time.Minute), wantErr: ErrCodeExpired},
		{name: "Locked", code: code, attempts: MaxAttempts, at: now, wantErr: ErrTooManyAttempts},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := challenge
			c.Attempts = tc.attempts

			err := Check(c, tc.code, tc.at)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}
