package maker

import (
	"testing"

	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		HalfSpreadBase:      2,
		InventoryWidenAlpha: 0.5,
		SkewBeta:            0.1,
		QuoteSize:           10,
	}
}

func TestDueAt(t *testing.T) {
	assert.True(t, DueAt(20, 20))
	assert.True(t, DueAt(40, 20))
	assert.False(t, DueAt(21, 20))
	assert.False(t, DueAt(20, 0))
	assert.False(t, DueAt(20, -1))
}

func TestRefreshEventFalseWithoutMid(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	_, ok := m.RefreshEvent(1, domain.Snapshot{})
	assert.False(t, ok)
}

func TestRefreshEventQuotesAroundMidAtZeroInventory(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	snap := domain.Snapshot{HasMid: true, Mid: 100}

	event, ok := m.RefreshEvent(1, snap)
	require.True(t, ok)
	require.Equal(t, domain.KindQuoteRefresh, event.Kind)

	r := event.Refresh
	assert.Equal(t, int64(98), r.BidPrice)
	assert.Equal(t, int64(102), r.AskPrice)
	assert.False(t, r.HasOldBid)
	assert.False(t, r.HasOldAsk)
	assert.True(t, m.HasActiveBid)
	assert.True(t, m.HasActiveAsk)
}

func TestRefreshEventWidensWithInventoryAndSkews(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	m.Inventory = 10
	snap := domain.Snapshot{HasMid: true, Mid: 100}

	event, ok := m.RefreshEvent(1, snap)
	require.True(t, ok)
	r := event.Refresh

	// half-spread = 2 + 0.5*10 = 7; skew = -0.1*10 = -1
	assert.Equal(t, int64(92), r.BidPrice)
	assert.Equal(t, int64(106), r.AskPrice)
}

func TestRefreshEventStampsDistinctClientRefsPerSide(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	snap := domain.Snapshot{HasMid: true, Mid: 100}

	event, ok := m.RefreshEvent(1, snap)
	require.True(t, ok)

	r := event.Refresh
	assert.NotEqual(t, uuid.Nil, r.BidClientRef)
	assert.NotEqual(t, uuid.Nil, r.AskClientRef)
	assert.NotEqual(t, r.BidClientRef, r.AskClientRef)
}

func TestRefreshEventSecondCallCarriesOldIDs(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	snap := domain.Snapshot{HasMid: true, Mid: 100}

	first, _ := m.RefreshEvent(1, snap)
	second, ok := m.RefreshEvent(2, snap)
	require.True(t, ok)

	assert.True(t, second.Refresh.HasOldBid)
	assert.Equal(t, first.Refresh.NewBidID, second.Refresh.OldBidID)
	assert.True(t, second.Refresh.HasOldAsk)
	assert.Equal(t, first.Refresh.NewAskID, second.Refresh.OldAskID)
}

func TestApplyRefreshResultRollsBackCrossedSide(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	snap := domain.Snapshot{HasMid: true, Mid: 100}
	m.RefreshEvent(1, snap)

	m.ApplyRefreshResult([]domain.Side{domain.Bid})
	assert.False(t, m.HasActiveBid)
	assert.True(t, m.HasActiveAsk)
}

func TestOnFillUpdatesInventoryAndCashOnBidLift(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	snap := domain.Snapshot{HasMid: true, Mid: 100}
	m.RefreshEvent(1, snap)
	bidID := m.ActiveBidID

	m.OnFill(domain.Trade{MakerOrderID: bidID, MakerOwner: domain.MarketMakerOwner, Price: 98, Qty: 3})

	assert.Equal(t, int64(3), m.Inventory)
	assert.Equal(t, int64(-294), m.Cash)
}

func TestOnFillUpdatesInventoryAndCashOnAskHit(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	snap := domain.Snapshot{HasMid: true, Mid: 100}
	m.RefreshEvent(1, snap)
	askID := m.ActiveAskID

	m.OnFill(domain.Trade{MakerOrderID: askID, MakerOwner: domain.MarketMakerOwner, Price: 102, Qty: 4})

	assert.Equal(t, int64(-4), m.Inventory)
	assert.Equal(t, int64(408), m.Cash)
}

func TestOnFillIgnoresTradeNotInvolvingThisMaker(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	m.OnFill(domain.Trade{MakerOrderID: 999, MakerOwner: domain.FlowOwner, Price: 100, Qty: 5})
	assert.Equal(t, int64(0), m.Inventory)
	assert.Equal(t, int64(0), m.Cash)
}

func TestMarkToMarket(t *testing.T) {
	m := New(testConfig(), domain.NewIDAllocator())
	m.Cash = -500
	m.Inventory = 5
	assert.Equal(t, 0.0, m.MarkToMarket(100))
}
