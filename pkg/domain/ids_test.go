package domain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "gatepass/pkg/domain-errors"
)

func TestParsePassID(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParsePassID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects negative and non-numeric", func(t *testing.T) {
		for _, in := range []string{"-1", "abc", "1.5", "0x01"} {
			_, err := ParsePassID(in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
		}
	})

	t.Run("accepts zero so lookups can report it as unissued", func(t *testing.T) {
		id, err := ParsePassID("0")
		require.NoError(t, err)
		assert.True(t, id.IsNil())
	})

	t.Run("round trips through String", func(t *testing.T) {
		id, err := ParsePassID(" 42 ")
		require.NoError(t, err)
		assert.Equal(t, PassID(42), id)
		assert.Equal(t, "42", id.String())
		assert.Equal(t, big.NewInt(42), id.BigInt())
	})
}

func TestParseAddress(t *testing.T) {
	const hex = "0x5B38Da6a701c568545dCfcB03FcB875f56beddC4"

	t.Run("accepts checksummed and lowercase", func(t *testing.T) {
		a, err := ParseAddress(hex)
		require.NoError(t, err)
		b, err := ParseAddress("0x5b38da6a701c568545dcfcb03fcb875f56beddc4")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Equal(t, common.HexToAddress(hex), a)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, in := range []string{"", "0x123", "not-an-address"} {
			_, err := ParseAddress(in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput), in)
		}
	})

	t.Run("RequireAddress rejects the zero address", func(t *testing.T) {
		_, err := RequireAddress("0x0000000000000000000000000000000000000000", "recipient")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), "recipient")
	})
}

func TestParseAmount(t *testing.T) {
	v, err := ParseAmount("4990000")
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(big.NewInt(4_990_000)))

	_, err = ParseAmount("-5")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseAmount("12e3")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
