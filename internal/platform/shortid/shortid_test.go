package shortid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	id := uuid.NewString()

	slug, err := FromUUID(id)
	require.NoError(t, err)
	assert.Less(t, len(slug), len(id))

	back, err := ToUUID(slug)
	require.NoError(t, err)
	assert.Equal(t, id, back)
}

func TestInvalid(t *testing.T) {
	_, err := FromUUID("not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ToUUID("0OIl")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = ToUUID("2g")
	assert.ErrorIs(t, err, ErrInvalid)
}
