// Package ethereum implements the ledger interface against an Ethereum
// JSON-RPC endpoint.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sort"

	goethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/feral-file/mint-sync/internal/adapter"
	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/ledger"
)

// Ledger polls mint logs from an Ethereum node.
type Ledger struct {
	client        adapter.EthClient
	contract      common.Address
	startBlock    uint64
	confirmations uint64
	maxBlockRange uint64
}

// NewLedger dials the endpoint and returns a ledger scoped to one collection
// contract. confirmations blocks behind the head are considered final;
// maxBlockRange caps the span of a single eth_getLogs call.
func NewLedger(
	ctx context.Context,
	dialer adapter.EthClientDialer,
	endpoint string,
	contract string,
	startBlock uint64,
	confirmations uint64,
	maxBlockRange uint64,
) (*Ledger, error) {
	client, err := dialer.Dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("dial ethereum endpoint: %w", err)
	}
	if maxBlockRange == 0 {
		maxBlockRange = 1000
	}
	return &Ledger{
		client:        client,
		contract:      common.HexToAddress(contract),
		startBlock:    startBlock,
		confirmations: confirmations,
		maxBlockRange: maxBlockRange,
	}, nil
}

// Poll implements ledger.Ledger.
func (l *Ledger) Poll(ctx context.Context, cur domain.Cursor) (*ledger.PollResult, error) {
	if err := l.checkCanonical(ctx, cur); err != nil {
		return nil, err
	}

	head, err := l.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch head: %v", domain.ErrUnavailable, err)
	}
	headNum := head.Number.Uint64()
	if headNum < l.confirmations {
		return &ledger.PollResult{Next: cur}, nil
	}
	safeHead := headNum - l.confirmations

	from := cur.Block
	switch {
	case cur.IsZero():
		from = l.startBlock
	case cur.Index == domain.IndexEndOfBlock:
		// the cursor block is fully scanned
		from = cur.Block + 1
	}

	if from > safeHead {
		return &ledger.PollResult{Next: cur}, nil
	}

	to := safeHead
	if span := from + l.maxBlockRange - 1; span < to {
		to = span
	}

	logs, err := l.client.FilterLogs(ctx, goethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		ToBlock:   new(big.Int).SetUint64(to),
		Addresses: []common.Address{l.contract},
		Topics:    [][]common.Hash{{domain.MintedEventSignature}},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: filter logs [%d, %d]: %v", domain.ErrUnavailable, from, to, err)
	}

	toHeader, err := l.client.HeaderByNumber(ctx, new(big.Int).SetUint64(to))
	if err != nil {
		return nil, fmt.Errorf("%w: fetch block %d header: %v", domain.ErrUnavailable, to, err)
	}

	sort.Slice(logs, func(i, j int) bool {
		if logs[i].BlockNumber != logs[j].BlockNumber {
			return logs[i].BlockNumber < logs[j].BlockNumber
		}
		return logs[i].Index < logs[j].Index
	})

	events := make([]domain.RawEvent, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed || cur.Covers(lg.BlockNumber, uint32(lg.Index)) {
			continue
		}
		events = append(events, toRawEvent(lg))
	}

	return &ledger.PollResult{
		Events: events,
		Next: domain.Cursor{
			Block:     to,
			Index:     domain.IndexEndOfBlock,
			BlockHash: toHeader.Hash().Hex(),
		},
	}, nil
}

// checkCanonical verifies the cursor's block hash still sits on the canonical
// chain. An empty hash skips the check.
func (l *Ledger) checkCanonical(ctx context.Context, cur domain.Cursor) error {
	if cur.BlockHash == "" {
		return nil
	}
	header, err := l.client.HeaderByNumber(ctx, new(big.Int).SetUint64(cur.Block))
	if err != nil {
		return fmt.Errorf("%w: fetch block %d header: %v", domain.ErrUnavailable, cur.Block, err)
	}
	if header.Hash().Hex() != cur.BlockHash {
		return fmt.Errorf("%w: block %d hash %s, cursor has %s",
			domain.ErrReorg, cur.Block, header.Hash().Hex(), cur.BlockHash)
	}
	return nil
}

// Close releases the RPC connection.
func (l *Ledger) Close() {
	l.client.Close()
}

func toRawEvent(lg types.Log) domain.RawEvent {
	return domain.RawEvent{
		Topics:    lg.Topics,
		Data:      lg.Data,
		Block:     lg.BlockNumber,
		Index:     uint32(lg.Index),
		TxHash:    lg.TxHash.Hex(),
		BlockHash: lg.BlockHash.Hex(),
	}
}
