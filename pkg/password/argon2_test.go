package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheap = Params{Memory: 1024, Time: 1, Threads: 1, SaltLen: 8, KeyLen: 16}

func TestHashAndVerify(t *testing.T) {
	encoded, err := HashWith("correct horse", cheap)
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$m=1024,t=1,p=1$")

	ok, err := Verify("correct horse", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("wrong horse", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUsesFreshSalt(t *testing.T) {
	a, err := HashWith("same", cheap)
	require.NoError(t, err)
	b, err := HashWith("same", cheap)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain-text",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$a2V5",
	} {
		_, err := Verify("x", encoded)
		assert.ErrorIs(t, err, ErrMalformedHash, encoded)
	}

	_, err := Verify("x", "$argon2id$v=16$m=1,t=1,p=1$c2FsdA$a2V5")
	assert.ErrorIs(t, err, ErrUnknownVersion)
}
