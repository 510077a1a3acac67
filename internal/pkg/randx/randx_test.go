package randx

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntityID(t *testing.T) {
	id := EntityID()

	_, err := uuid.Parse(id)
	assert.NoError(t, err)

	assert.NotEqual(t, id, EntityID())
}

func TestStateToken(t *testing.T) {
	token, err := StateToken()
	require.NoError(t, err)

	assert.Len(t, token, StateTokenLength)
	assert.True(t, IsValidStateToken(token))

	other, err := StateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestIsValidStateToken(t *testing.T) {
	assert.False(t, IsValidStateToken(""))
	assert.False(t, IsValidStateToken("short"))
	assert.False(t, IsValidStateToken("!!!!!!!!!!!!!!!!!!!!!!!!"))
}
