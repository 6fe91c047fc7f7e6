package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// --- Setup & Helpers --------------------------------------------------------

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newLimit(t testing.TB, id string, side Side, price, size string) *LimitOrder {
	t.Helper()
	order, err := NewLimitOrder(id, side, price, size)
	require.NoError(t, err)
	return order
}

func newBid(t testing.TB, id, price, size string) *LimitOrder {
	t.Helper()
	return newLimit(t, id, Bid, price, size)
}

func newAsk(t testing.TB, id, price, size string) *LimitOrder {
	t.Helper()
	return newLimit(t, id, Ask, price, size)
}

func newMarket(t testing.TB, id string, side Side, size, funds string) *MarketOrder {
	t.Helper()
	order, err := NewMarketOrder(id, side, size, funds)
	require.NoError(t, err)
	return order
}

func newTestBook(t testing.TB, cfg Config) *Book {
	t.Helper()
	book, err := NewBook(cfg)
	require.NoError(t, err)
	return book
}

// restingVolume sums sizeRemaining over every order on one side, without
// trusting the levels' running totals.
func restingVolume(q *LevelQueue) string {
	sum := decimal.Zero
	for _, level := range q.Levels() {
		for o := level.head; o != nil; o = o.next {
			sum = sum.Add(o.sizeRemaining)
		}
	}
	return sum.String()
}

func ids(makers []*LimitOrder) []string {
	out := make([]string, len(makers))
	for i, maker := range makers {
		out[i] = maker.ID()
	}
	return out
}
