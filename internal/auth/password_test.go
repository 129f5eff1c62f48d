package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword("", "s3cret!"))
}

func TestCheckLegacyPassword(t *testing.T) {
	assert.True(t, CheckLegacyPassword("hunter2", "hunter2"))
	assert.False(t, CheckLegacyPassword("hunter2", "hunter3"))
	assert.False(t, CheckLegacyPassword("", ""))
}
