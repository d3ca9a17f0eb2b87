package timestamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInherentPayload(t *testing.T) {
	raw := EncodeInherent(1_700_000_000)
	require.Len(t, raw, 8)

	decoded, err := DecodeInherent(raw)
	require.NoError(t, err)
	assert.Equal(t, InherentType(1_700_000_000), decoded)

	_, err = DecodeInherent(raw[:7])
	require.Error(t, err)
}

func TestCallPayload(t *testing.T) {
	t.Run("small values use a single byte", func(t *testing.T) {
		assert.Equal(t, []byte{69}, EncodeCall[uint64](69))
	})

	t.Run("decode", func(t *testing.T) {
		raw := EncodeCall[uint64](1_700_000_000)
		decoded, err := DecodeCall[uint64](raw)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_700_000_000), decoded)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		raw := append(EncodeCall[uint64](42), 0x00)
		_, err := DecodeCall[uint64](raw)
		require.Error(t, err)
	})

	t.Run("overflowing target type", func(t *testing.T) {
		raw := EncodeCall[uint64](1 << 20)
		_, err := DecodeCall[uint16](raw)
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := DecodeCall[uint64](nil)
		require.Error(t, err)
	})
}

func TestSaturatingArithmetic(t *testing.T) {
	assert.Equal(t, uint64(47), SaturatingAdd[uint64](42, 5))
	assert.Equal(t, uint8(255), SaturatingAdd[uint8](250, 10))
	assert.Equal(t, ^uint64(0), SaturatingAdd(^uint64(0)-1, uint64(60)))

	assert.Equal(t, uint16(65535), FromInherent[uint16](70_000))
	assert.Equal(t, uint32(69), FromInherent[uint32](69))
}

func TestDefaultGenesis(t *testing.T) {
	assert.Equal(t, uint64(5), DefaultGenesis[uint64]().Period)
	assert.Equal(t, "timestamp genesis (period=5)", DefaultGenesis[uint32]().String())
}
