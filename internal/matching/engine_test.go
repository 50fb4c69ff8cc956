package matching

import (
	"testing"

	"github.com/eliyataleb/lobsim/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLimitOnEmptyBookRests(t *testing.T) {
	e := New()
	res := e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, Side: domain.Bid, Price: 100, Qty: 10})
	assert.Empty(t, res.Trades)
	assert.True(t, res.Snapshot.HasBid)
	assert.Equal(t, int64(100), res.Snapshot.BidPrice)
}

func TestApplyMarketSweepsMultipleAskLevels(t *testing.T) {
	e := New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, Side: domain.Ask, Price: 100, Qty: 5})
	e.Apply(&domain.Event{Seq: 2, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 2, Side: domain.Ask, Price: 101, Qty: 5})

	res := e.Apply(&domain.Event{Seq: 3, Kind: domain.KindMarketOrder, Owner: domain.MarketMakerOwner, ID: 3, Side: domain.Bid, Qty: 8})

	require.Len(t, res.Trades, 2)
	assert.Equal(t, int64(100), res.Trades[0].Price)
	assert.Equal(t, int64(5), res.Trades[0].Qty)
	assert.Equal(t, int64(101), res.Trades[1].Price)
	assert.Equal(t, int64(3), res.Trades[1].Qty)
	assert.False(t, res.ExhaustedBook)
}

func TestApplyMarketReportsExhaustedBook(t *testing.T) {
	e := New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, Side: domain.Ask, Price: 100, Qty: 3})

	res := e.Apply(&domain.Event{Seq: 2, Kind: domain.KindMarketOrder, Owner: domain.MarketMakerOwner, ID: 2, Side: domain.Bid, Qty: 10})

	require.Len(t, res.Trades, 1)
	assert.Equal(t, int64(3), res.Trades[0].Qty)
	assert.True(t, res.ExhaustedBook)
}

func TestApplyLimitRestsResidualAtAggressorPrice(t *testing.T) {
	e := New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, Side: domain.Ask, Price: 100, Qty: 4})

	res := e.Apply(&domain.Event{Seq: 2, Kind: domain.KindLimitOrder, Owner: domain.MarketMakerOwner, ID: 2, Side: domain.Bid, Price: 102, Qty: 10})

	require.Len(t, res.Trades, 1)
	assert.Equal(t, int64(100), res.Trades[0].Price)
	assert.Equal(t, int64(4), res.Trades[0].Qty)

	order, ok := e.Book.NextMatchable(domain.Bid, "nobody")
	require.True(t, ok)
	assert.Equal(t, domain.OrderID(2), order.ID)
	assert.Equal(t, int64(102), order.Price)
	assert.Equal(t, int64(6), order.Qty)
}

func TestApplyLimitCarriesClientRefOntoRestingOrder(t *testing.T) {
	e := New()
	ref := uuid.New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, ClientRef: ref, Side: domain.Bid, Price: 100, Qty: 10})

	order, ok := e.Book.NextMatchable(domain.Bid, "nobody")
	require.True(t, ok)
	assert.Equal(t, ref, order.ClientRef)
}

func TestSelfTradeGuardSkipsSameOwnerResting(t *testing.T) {
	e := New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, Side: domain.Bid, Price: 99, Qty: 5})

	res := e.Apply(&domain.Event{Seq: 2, Kind: domain.KindMarketOrder, Owner: domain.FlowOwner, ID: 2, Side: domain.Ask, Qty: 5})

	assert.Empty(t, res.Trades)
	assert.True(t, res.ExhaustedBook)

	order, ok := e.Book.NextMatchable(domain.Bid, "nobody")
	require.True(t, ok)
	assert.Equal(t, domain.OrderID(1), order.ID)
}

func TestApplyCancelReportsRejectedForUnknownID(t *testing.T) {
	e := New()
	res := e.Apply(&domain.Event{Seq: 1, Kind: domain.KindCancel, Owner: domain.FlowOwner, ID: 1, CancelID: 999})
	assert.True(t, res.RejectedCancel)
}

func TestApplyQuoteRefreshInsertsBothSidesAndCancelsOld(t *testing.T) {
	e := New()
	first := e.Apply(&domain.Event{
		Seq: 1, Kind: domain.KindQuoteRefresh, Owner: domain.MarketMakerOwner,
		Refresh: &domain.QuoteRefresh{NewBidID: 1, BidPrice: 98, NewAskID: 2, AskPrice: 102, Qty: 10},
	})
	assert.Empty(t, first.CrossedQuotes)
	assert.True(t, first.Snapshot.HasBid)
	assert.True(t, first.Snapshot.HasAsk)

	second := e.Apply(&domain.Event{
		Seq: 2, Kind: domain.KindQuoteRefresh, Owner: domain.MarketMakerOwner,
		Refresh: &domain.QuoteRefresh{
			HasOldBid: true, OldBidID: 1, HasOldAsk: true, OldAskID: 2,
			NewBidID: 3, BidPrice: 97, NewAskID: 4, AskPrice: 103, Qty: 10,
		},
	})
	assert.Empty(t, second.CrossedQuotes)
	_, _, oldBidLives := e.Book.Location(1)
	assert.False(t, oldBidLives)
	_, _, newBidLives := e.Book.Location(3)
	assert.True(t, newBidLives)
}

func TestApplyQuoteRefreshSkipsCrossingSideOnly(t *testing.T) {
	e := New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.FlowOwner, ID: 1, Side: domain.Ask, Price: 100, Qty: 5})

	res := e.Apply(&domain.Event{
		Seq: 2, Kind: domain.KindQuoteRefresh, Owner: domain.MarketMakerOwner,
		Refresh: &domain.QuoteRefresh{NewBidID: 2, BidPrice: 100, NewAskID: 3, AskPrice: 105, Qty: 10},
	})

	require.Len(t, res.CrossedQuotes, 1)
	assert.Equal(t, domain.Bid, res.CrossedQuotes[0])
	_, _, bidLives := e.Book.Location(2)
	assert.False(t, bidLives)
	_, _, askLives := e.Book.Location(3)
	assert.True(t, askLives)
}

func TestMMInvolvedFlagsTradeWithMakerOnEitherSide(t *testing.T) {
	e := New()
	e.Apply(&domain.Event{Seq: 1, Kind: domain.KindLimitOrder, Owner: domain.MarketMakerOwner, ID: 1, Side: domain.Ask, Price: 100, Qty: 5})
	res := e.Apply(&domain.Event{Seq: 2, Kind: domain.KindMarketOrder, Owner: domain.FlowOwner, ID: 2, Side: domain.Bid, Qty: 5})
	require.Len(t, res.Trades, 1)
	assert.True(t, res.Trades[0].MMInvolved)
}
