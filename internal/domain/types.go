package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Chain represents the blockchain network identifier using CAIP-2 format
type Chain string

const (
	ChainEthereumMainnet Chain = "eip155:1"
	ChainEthereumSepolia Chain = "eip155:11155111"
)

// IsValidChain checks if a chain is valid
func IsValidChain(chain Chain) bool {
	return chain == ChainEthereumMainnet || chain == ChainEthereumSepolia
}

// MintedEventSignature is the topic hash of the collection's mint event:
// CoolMinted(uint256 indexed tokenId, address indexed creator, string name, uint8 coolness)
var MintedEventSignature = crypto.Keccak256Hash([]byte("CoolMinted(uint256,address,string,uint8)"))

// IndexEndOfBlock marks a cursor that covers every log of its block.
// A cursor with this index resumes polling at the next block.
const IndexEndOfBlock = math.MaxUint32

const (
	// MinCoolnessFactor is the lowest coolness a mint may carry
	MinCoolnessFactor = 1
	// MaxCoolnessFactor is the highest coolness a mint may carry
	MaxCoolnessFactor = 100
)

// Cursor is the durable bookmark of the last fully processed ledger position.
// Block and Index locate the last applied event (or the end of the last
// scanned block when Index is IndexEndOfBlock). BlockHash records the hash
// observed at Block so a later poll can detect a chain reorganization; it is
// empty when unknown, which skips the check.
type Cursor struct {
	Block     uint64
	Index     uint32
	BlockHash string
}

// IsZero reports whether the cursor has never been advanced
func (c Cursor) IsZero() bool {
	return c.Block == 0 && c.Index == 0 && c.BlockHash == ""
}

// Covers reports whether an event at (block, index) is at or before the
// cursor, i.e. already processed
func (c Cursor) Covers(block uint64, index uint32) bool {
	if block != c.Block {
		return block < c.Block
	}
	return index <= c.Index
}

// String serializes the cursor as "block:index:blockHash"
func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d:%s", c.Block, c.Index, c.BlockHash)
}

// ParseCursor parses a cursor serialized by Cursor.String.
// The empty string parses to the zero cursor.
func ParseCursor(s string) (Cursor, error) {
	if s == "" {
		return Cursor{}, nil
	}

	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 {
		return Cursor{}, fmt.Errorf("malformed cursor %q", s)
	}

	block, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor block in %q: %w", s, err)
	}

	index, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Cursor{}, fmt.Errorf("malformed cursor index in %q: %w", s, err)
	}

	return Cursor{Block: block, Index: uint32(index), BlockHash: parts[2]}, nil
}

// RawEvent is a raw log record as read from the ledger, before decoding
type RawEvent struct {
	Topics    []common.Hash
	Data      []byte
	Block     uint64
	Index     uint32 // log index within the block
	TxHash    string
	BlockHash string
}

// Position returns the event's ledger position as a cursor
func (e RawEvent) Position() Cursor {
	return Cursor{Block: e.Block, Index: e.Index, BlockHash: e.BlockHash}
}

// MintEvent is a decoded issuance event. Immutable once decoded; TokenID is
// the natural idempotency key (assigned by the ledger, never reused).
type MintEvent struct {
	TokenID        uint64
	Creator        string // EIP-55 normalized
	Name           string
	CoolnessFactor uint8
	Block          uint64
	Index          uint32
	TxHash         string
}

// IsValidAddress checks whether an address is a well-formed hex address
func IsValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NormalizeAddress normalizes an address to its EIP-55 checksummed form.
// Profiles are keyed by the normalized form so lookups are case-insensitive.
func NormalizeAddress(address string) string {
	return common.HexToAddress(address).Hex()
}
