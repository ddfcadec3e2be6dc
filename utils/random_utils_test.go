package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetToken(t *testing.T) {
	token, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, token, 32)

	other, err := GenerateResetToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestGenerateTempPassword(t *testing.T) {
	password, err := GenerateTempPassword()
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(password), 8)
}

func TestGenerateDirectUID(t *testing.T) {
	uid := GenerateDirectUID()

	assert.True(t, strings.HasPrefix(uid, DirectUIDPrefix))
	assert.True(t, IsDirectUID(uid))
	assert.False(t, IsDirectUID("firebase-uid-abc"))
}
