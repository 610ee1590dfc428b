package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	prev := SetCost(bcrypt.MinCost)
	defer SetCost(prev)

	hash, err := Hash("password123")
	require.NoError(t, err)
	assert.True(t, Verify("password123", hash))
	assert.False(t, Verify("password124", hash))
}

func TestHashTokenIsStable(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
	assert.Len(t, HashToken("abc"), 64)
}

func TestEqualCodeComparesFullString(t *testing.T) {
	assert.True(t, EqualCode("483920", "483920"))
	assert.False(t, EqualCode("483920", "4839"))
	assert.False(t, EqualCode("4839", "483920"))
	assert.False(t, EqualCode("483920", "483921"))
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("longenough"))
}
