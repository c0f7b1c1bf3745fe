// Package decoder turns raw ledger log records into typed mint events.
package decoder

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/feral-file/mint-sync/internal/domain"
)

const mintedABIJSON = `[{
	"anonymous": false,
	"inputs": [
		{"indexed": true, "name": "tokenId", "type": "uint256"},
		{"indexed": true, "name": "creator", "type": "address"},
		{"indexed": false, "name": "name", "type": "string"},
		{"indexed": false, "name": "coolness", "type": "uint8"}
	],
	"name": "CoolMinted",
	"type": "event"
}]`

var mintedABI abi.ABI

func init() {
	var err error
	mintedABI, err = abi.JSON(strings.NewReader(mintedABIJSON))
	if err != nil {
		panic(fmt.Sprintf("parse minted event ABI: %v", err))
	}
}

// Decode validates and decodes a raw log into a mint event. It is a pure
// function: the same input always yields the same result, so replayed logs
// decode identically. Failures wrap domain.ErrRejected with the reason.
func Decode(ev domain.RawEvent) (*domain.MintEvent, error) {
	if len(ev.Topics) != 3 {
		return nil, fmt.Errorf("%w: expected 3 topics, got %d", domain.ErrRejected, len(ev.Topics))
	}
	if ev.Topics[0] != domain.MintedEventSignature {
		return nil, fmt.Errorf("%w: unexpected event signature %s", domain.ErrRejected, ev.Topics[0].Hex())
	}

	tokenID := new(big.Int).SetBytes(ev.Topics[1].Bytes())
	if !tokenID.IsUint64() {
		return nil, fmt.Errorf("%w: token id %s out of range", domain.ErrRejected, tokenID.String())
	}

	creator := common.BytesToAddress(ev.Topics[2].Bytes())
	if creator == (common.Address{}) {
		return nil, fmt.Errorf("%w: zero creator address", domain.ErrRejected)
	}

	values, err := mintedABI.Unpack("CoolMinted", ev.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: unpack data: %v", domain.ErrRejected, err)
	}
	if len(values) != 2 {
		return nil, fmt.Errorf("%w: expected 2 data fields, got %d", domain.ErrRejected, len(values))
	}

	name, ok := values[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: name is not a string", domain.ErrRejected)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", domain.ErrRejected)
	}

	coolness, ok := values[1].(uint8)
	if !ok {
		return nil, fmt.Errorf("%w: coolness is not a uint8", domain.ErrRejected)
	}
	if coolness < domain.MinCoolnessFactor || coolness > domain.MaxCoolnessFactor {
		return nil, fmt.Errorf("%w: coolness %d outside [%d, %d]",
			domain.ErrRejected, coolness, domain.MinCoolnessFactor, domain.MaxCoolnessFactor)
	}

	return &domain.MintEvent{
		TokenID:        tokenID.Uint64(),
		Creator:        creator.Hex(),
		Name:           name,
		CoolnessFactor: coolness,
		Block:          ev.Block,
		Index:          ev.Index,
		TxHash:         ev.TxHash,
	}, nil
}
