package credential

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	hasher := NewHasher(bcrypt.MinCost)

	t.Run("hash then verify round-trips", func(t *testing.T) {
		hash, err := hasher.Hash("longpass1")
		require.NoError(t, err)
		assert.NotEqual(t, "longpass1", hash)
		assert.True(t, hasher.Verify("longpass1", hash))
	})

	t.Run("verify rejects a different password", func(t *testing.T) {
		hash, err := hasher.Hash("longpass1")
		require.NoError(t, err)
		assert.False(t, hasher.Verify("longpass2", hash))
	})

	t.Run("verify rejects a garbage hash", func(t *testing.T) {
		assert.False(t, hasher.Verify("longpass1", "not-a-hash"))
	})

	t.Run("salting makes equal passwords hash differently", func(t *testing.T) {
		first, err := hasher.Hash("longpass1")
		require.NoError(t, err)
		second, err := hasher.Hash("longpass1")
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("out-of-range cost falls back to default", func(t *testing.T) {
		h := NewHasher(99)
		hash, err := h.Hash("longpass1")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(hash))
		require.NoError(t, err)
		assert.Equal(t, bcrypt.DefaultCost, cost)
	})
}
