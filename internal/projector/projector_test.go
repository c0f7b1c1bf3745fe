package projector

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/mint-sync/internal/domain"
	"github.com/feral-file/mint-sync/internal/logger"
	"github.com/feral-file/mint-sync/internal/store/schema"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	m.Run()
}

type fakeStore struct {
	items       map[uint64]*schema.Item
	profiles    map[string]*schema.Profile
	applyErr    error
	failOnToken uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:    make(map[uint64]*schema.Item),
		profiles: make(map[string]*schema.Profile),
	}
}

func (f *fakeStore) GetCursor(_ context.Context, _ string) (domain.Cursor, error) {
	return domain.Cursor{}, nil
}

func (f *fakeStore) SetCursor(_ context.Context, _ string, _ domain.Cursor) error {
	return nil
}

func (f *fakeStore) ApplyMint(_ context.Context, item *schema.Item) (bool, error) {
	if f.applyErr != nil {
		return false, f.applyErr
	}
	if f.failOnToken != 0 && item.TokenID == f.failOnToken {
		return false, errors.New("connection reset")
	}
	if _, ok := f.items[item.TokenID]; ok {
		return false, nil
	}
	f.items[item.TokenID] = item

	profile, ok := f.profiles[item.Creator]
	if !ok {
		profile = &schema.Profile{OwnerKey: item.Creator}
		f.profiles[item.Creator] = profile
	}
	profile.OwnedTokenIDs = append(profile.OwnedTokenIDs, item.TokenID)
	profile.TotalCoolness += uint64(item.CoolnessFactor)
	return true, nil
}

func (f *fakeStore) GetItem(_ context.Context, tokenID uint64) (*schema.Item, error) {
	return f.items[tokenID], nil
}

func (f *fakeStore) GetProfile(_ context.Context, ownerKey string) (*schema.Profile, error) {
	return f.profiles[ownerKey], nil
}

func (f *fakeStore) CreatePendingItem(_ context.Context, _ *schema.PendingItem) error {
	return nil
}

func (f *fakeStore) GetPendingItem(_ context.Context, _ string) (*schema.PendingItem, error) {
	return nil, nil
}

func mintEvent(tokenID uint64, coolness uint8) *domain.MintEvent {
	return &domain.MintEvent{
		TokenID:        tokenID,
		Creator:        "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		Name:           "test mint",
		CoolnessFactor: coolness,
		Block:          100,
		Index:          2,
		TxHash:         "0xabc",
	}
}

func TestApplyProjectsItem(t *testing.T) {
	s := newFakeStore()
	p := NewProjector(s, "https://media.example.com/items", 0)

	outcome, err := p.Apply(context.Background(), mintEvent(7, 42))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	item := s.items[7]
	require.NotNil(t, item)
	assert.Equal(t, "test mint", item.Name)
	assert.Equal(t, "https://media.example.com/items/7.png", item.ImageRef)
	assert.Equal(t, uint8(42), item.CoolnessFactor)

	var attrs []Attribute
	require.NoError(t, json.Unmarshal(item.Attributes, &attrs))
	require.Len(t, attrs, 2)
	assert.Equal(t, Attribute{TraitType: "Coolness Factor", Value: "42"}, attrs[0])
	assert.Equal(t, Attribute{TraitType: "Creator", Value: item.Creator}, attrs[1])
}

func TestApplyTwiceIsNoOp(t *testing.T) {
	s := newFakeStore()
	p := NewProjector(s, "", 0)

	outcome, err := p.Apply(context.Background(), mintEvent(5, 30))
	require.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	outcome, err = p.Apply(context.Background(), mintEvent(5, 30))
	require.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyApplied, outcome)

	profile := s.profiles[mintEvent(5, 30).Creator]
	require.NotNil(t, profile)
	assert.Equal(t, uint64(30), profile.TotalCoolness)
	assert.Equal(t, []uint64{5}, []uint64(profile.OwnedTokenIDs))
}

func TestApplyStoreError(t *testing.T) {
	s := newFakeStore()
	s.applyErr = errors.New("connection reset")
	p := NewProjector(s, "", 0)

	_, err := p.Apply(context.Background(), mintEvent(1, 10))
	assert.Error(t, err)
}

func batchEvent(tokenID uint64, block uint64, index uint32) BatchEvent {
	ev := mintEvent(tokenID, 10)
	ev.Block = block
	ev.Index = index
	return BatchEvent{
		Event:    ev,
		Position: domain.Cursor{Block: block, Index: index, BlockHash: "0xblock"},
	}
}

func TestApplyBatchAdvancesAfterEachCommit(t *testing.T) {
	s := newFakeStore()
	p := NewProjector(s, "", 0)

	batch := []BatchEvent{
		batchEvent(1, 100, 0),
		batchEvent(2, 100, 3),
		batchEvent(3, 101, 1),
	}

	var advanced []domain.Cursor
	err := p.ApplyBatch(context.Background(), batch, func(pos domain.Cursor) error {
		advanced = append(advanced, pos)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, advanced, 3)
	assert.Equal(t, batch[0].Position, advanced[0])
	assert.Equal(t, batch[1].Position, advanced[1])
	assert.Equal(t, batch[2].Position, advanced[2])
	assert.Len(t, s.items, 3)
}

func TestApplyBatchAbortsOnStoreError(t *testing.T) {
	s := newFakeStore()
	s.failOnToken = 2
	p := NewProjector(s, "", 0)

	batch := []BatchEvent{
		batchEvent(1, 100, 0),
		batchEvent(2, 100, 3),
		batchEvent(3, 101, 1),
	}

	var advanced []domain.Cursor
	err := p.ApplyBatch(context.Background(), batch, func(pos domain.Cursor) error {
		advanced = append(advanced, pos)
		return nil
	})
	require.Error(t, err)

	// only the committed prefix is advanced; nothing past the failure applies
	require.Len(t, advanced, 1)
	assert.Equal(t, batch[0].Position, advanced[0])
	assert.Nil(t, s.items[2])
	assert.Nil(t, s.items[3])
}

func TestApplyBatchAdvanceError(t *testing.T) {
	s := newFakeStore()
	p := NewProjector(s, "", 0)

	err := p.ApplyBatch(context.Background(), []BatchEvent{batchEvent(1, 100, 0)}, func(domain.Cursor) error {
		return errors.New("cursor write failed")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "advance cursor")
}
