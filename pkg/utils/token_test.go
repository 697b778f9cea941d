package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomString(t *testing.T) {
	s, err := RandomString(APITokenLength)
	require.NoError(t, err)
	assert.Len(t, s, APITokenLength)

	for _, c := range s {
		assert.Contains(t, tokenAlphabet, string(c))
	}

	other, err := RandomString(APITokenLength)
	require.NoError(t, err)
	assert.NotEqual(t, s, other)
}
