package decoder

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/mint-sync/internal/domain"
)

const testCreator = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

func packData(t *testing.T, name string, coolness uint8) []byte {
	t.Helper()
	data, err := mintedABI.Events["CoolMinted"].Inputs.NonIndexed().Pack(name, coolness)
	require.NoError(t, err)
	return data
}

func rawMint(t *testing.T, tokenID int64, creator string, name string, coolness uint8) domain.RawEvent {
	t.Helper()
	return domain.RawEvent{
		Topics: []common.Hash{
			domain.MintedEventSignature,
			common.BigToHash(big.NewInt(tokenID)),
			common.HexToHash(common.HexToAddress(creator).Hex()),
		},
		Data:   packData(t, name, coolness),
		Block:  42,
		Index:  3,
		TxHash: "0xfeed",
	}
}

func TestDecodeValid(t *testing.T) {
	ev := rawMint(t, 7, testCreator, "Sunset Over Jakarta", 88)

	mint, err := Decode(ev)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), mint.TokenID)
	assert.Equal(t, common.HexToAddress(testCreator).Hex(), mint.Creator)
	assert.Equal(t, "Sunset Over Jakarta", mint.Name)
	assert.Equal(t, uint8(88), mint.CoolnessFactor)
	assert.Equal(t, uint64(42), mint.Block)
	assert.Equal(t, uint32(3), mint.Index)
}

func TestDecodeDeterministic(t *testing.T) {
	ev := rawMint(t, 9, testCreator, "Replayed", 12)

	first, err := Decode(ev)
	require.NoError(t, err)
	second, err := Decode(ev)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestDecodeTrimsName(t *testing.T) {
	mint, err := Decode(rawMint(t, 1, testCreator, "  padded  ", 50))
	require.NoError(t, err)
	assert.Equal(t, "padded", mint.Name)
}

func TestDecodeRejections(t *testing.T) {
	tests := []struct {
		name string
		ev   domain.RawEvent
	}{
		{
			name: "missing topics",
			ev:   domain.RawEvent{Topics: []common.Hash{domain.MintedEventSignature}},
		},
		{
			name: "wrong signature",
			ev: domain.RawEvent{Topics: []common.Hash{
				common.HexToHash("0x1234"),
				common.BigToHash(big.NewInt(1)),
				common.HexToHash(common.HexToAddress(testCreator).Hex()),
			}},
		},
		{
			name: "token id out of range",
			ev: domain.RawEvent{
				Topics: []common.Hash{
					domain.MintedEventSignature,
					common.BigToHash(new(big.Int).Lsh(big.NewInt(1), 64)),
					common.HexToHash(common.HexToAddress(testCreator).Hex()),
				},
				Data: packData(t, "too big", 10),
			},
		},
		{
			name: "zero creator",
			ev: domain.RawEvent{
				Topics: []common.Hash{
					domain.MintedEventSignature,
					common.BigToHash(big.NewInt(1)),
					{},
				},
				Data: packData(t, "orphan", 10),
			},
		},
		{
			name: "empty name",
			ev:   rawMint(t, 2, testCreator, "   ", 10),
		},
		{
			name: "coolness below range",
			ev:   rawMint(t, 3, testCreator, "cold", 0),
		},
		{
			name: "coolness above range",
			ev:   rawMint(t, 4, testCreator, "too cool", 101),
		},
		{
			name: "truncated data",
			ev: domain.RawEvent{
				Topics: []common.Hash{
					domain.MintedEventSignature,
					common.BigToHash(big.NewInt(5)),
					common.HexToHash(common.HexToAddress(testCreator).Hex()),
				},
				Data: []byte{0x01, 0x02},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.ev)
			assert.ErrorIs(t, err, domain.ErrRejected)
		})
	}
}
