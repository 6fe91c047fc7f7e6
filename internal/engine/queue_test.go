package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed rests the same four orders the side tests below start from.
func seed(t *testing.T, q *LevelQueue) {
	t.Helper()
	side := q.Side()
	q.Add(newLimit(t, "00", side, "10", "1"))
	q.Add(newLimit(t, "01", side, "10", "2"))
	q.Add(newLimit(t, "02", side, "20", "2"))
	q.Add(newLimit(t, "03", side, "5", "2"))
}

func assertBest(t *testing.T, q *LevelQueue, price, volume string) {
	t.Helper()
	best := q.Peek()
	require.NotNil(t, best)
	assert.Equal(t, price, best.Price().String())
	assert.Equal(t, volume, best.Volume().String())
}

func TestLevelQueue_AddPeekRemoveClear_Asks(t *testing.T) {
	asks := NewLevelQueue(Ask, one)
	seed(t, asks)

	assertBest(t, asks, "5", "2")
	assert.NotNil(t, asks.Remove(dec("5"), "03"))

	assertBest(t, asks, "10", "3")
	assert.NotNil(t, asks.Remove(dec("10"), "01"))

	assertBest(t, asks, "10", "1")
	assert.NotNil(t, asks.Remove(dec("20"), "02"))

	assertBest(t, asks, "10", "1")
	assert.Equal(t, 1, asks.Len())

	asks.Clear()
	assert.Nil(t, asks.Remove(dec("10"), "00"))
	assert.Nil(t, asks.Peek())
	assert.Equal(t, 0, asks.Len())
}

func TestLevelQueue_AddPeekRemoveClear_Bids(t *testing.T) {
	bids := NewLevelQueue(Bid, one)
	seed(t, bids)

	assertBest(t, bids, "20", "2")
	assert.NotNil(t, bids.Remove(dec("20"), "02"))

	assertBest(t, bids, "10", "3")
	assert.NotNil(t, bids.Remove(dec("10"), "01"))

	assertBest(t, bids, "10", "1")
	assert.NotNil(t, bids.Remove(dec("10"), "00"))

	assertBest(t, bids, "5", "2")

	bids.Clear()
	assert.Nil(t, bids.Remove(dec("5"), "03"))
	assert.Nil(t, bids.Peek())
}

func TestLevelQueue_SortedAfterEveryInsert(t *testing.T) {
	asks := NewLevelQueue(Ask, one)
	bids := NewLevelQueue(Bid, one)
	for i, price := range []string{"7", "3", "11", "3.0", "9", "1"} {
		id := string(rune('a' + i))
		asks.Add(newAsk(t, id, price, "1"))
		bids.Add(newBid(t, id, price, "1"))
	}

	prices := func(q *LevelQueue) []string {
		var out []string
		for _, level := range q.Levels() {
			out = append(out, level.Price().String())
		}
		return out
	}
	assert.Equal(t, []string{"1", "3", "7", "9", "11"}, prices(asks))
	assert.Equal(t, []string{"11", "9", "7", "3", "1"}, prices(bids))

	// "3" and "3.0" share one level.
	assert.Equal(t, 2, asks.Get(dec("3")).Len())
	assert.Equal(t, "6", asks.Volume().String())
}

func TestLevelQueue_ReduceDropsEmptyLevel(t *testing.T) {
	asks := NewLevelQueue(Ask, one)
	seed(t, asks)

	order := asks.Reduce(dec("5"), "03", dec("1"))
	require.NotNil(t, order)
	assertBest(t, asks, "5", "1")

	order = asks.Reduce(dec("5"), "03", dec("0"))
	require.NotNil(t, order)
	assert.Nil(t, asks.Get(dec("5")))
	assertBest(t, asks, "10", "3")

	assert.Nil(t, asks.Reduce(dec("5"), "03", dec("0")))
	assert.Nil(t, asks.Reduce(dec("10"), "nope", dec("0")))
}

func TestLevelQueue_TakeAsks(t *testing.T) {
	asks := NewLevelQueue(Ask, one)
	seed(t, asks)
	bid := newBid(t, "b", "15", "5")

	makers := asks.TakeSizeFromBestLevel(bid)
	assert.Equal(t, "3", bid.SizeRemaining().String())
	require.Len(t, makers, 1)
	assert.Equal(t, "5", makers[0].Price().String())
	assert.Equal(t, "0", makers[0].SizeRemaining().String())

	makers = asks.TakeSizeFromBestLevel(bid)
	assert.Equal(t, "0", bid.SizeRemaining().String())
	assert.Equal(t, []string{"00", "01"}, ids(makers))

	assert.Empty(t, asks.TakeSizeFromBestLevel(bid))

	bid = newBid(t, "b2", "20", "3")
	makers = asks.TakeSizeFromBestLevel(bid)
	assert.Equal(t, "1", bid.SizeRemaining().String())
	assert.Equal(t, []string{"02"}, ids(makers))

	assert.Empty(t, asks.TakeSizeFromBestLevel(bid))
	assert.Nil(t, asks.Peek())
}

func TestLevelQueue_TakeBids(t *testing.T) {
	bids := NewLevelQueue(Bid, one)
	seed(t, bids)
	ask := newAsk(t, "a", "15", "5")

	makers := bids.TakeSizeFromBestLevel(ask)
	assert.Equal(t, "3", ask.SizeRemaining().String())
	assert.Equal(t, []string{"02"}, ids(makers))

	// 10 does not cross an ask at 15.
	assert.Empty(t, bids.TakeSizeFromBestLevel(ask))
	assert.Equal(t, "3", ask.SizeRemaining().String())

	ask = newAsk(t, "a2", "5", "5")
	makers = bids.TakeSizeFromBestLevel(ask)
	assert.Equal(t, "2", ask.SizeRemaining().String())
	assert.Equal(t, []string{"00", "01"}, ids(makers))

	makers = bids.TakeSizeFromBestLevel(ask)
	assert.Equal(t, "0", ask.SizeRemaining().String())
	assert.Equal(t, []string{"03"}, ids(makers))

	assert.Empty(t, bids.TakeSizeFromBestLevel(ask))
	assert.Nil(t, bids.Peek())
}

func TestLevelQueue_TakeWithMarketTakers(t *testing.T) {
	for _, side := range []Side{Ask, Bid} {
		t.Run(side.String(), func(t *testing.T) {
			q := NewLevelQueue(side, one)
			seed(t, q)
			first, second, last := "5", "10", "20"
			if side == Bid {
				first, last = "20", "5"
			}

			taker := newMarket(t, "m", side.Opposite(), "5", "0")
			makers := q.TakeSizeFromBestLevel(taker)
			assert.Equal(t, "2", taker.Filled().String())
			require.Len(t, makers, 1)
			assert.Equal(t, first, makers[0].Price().String())

			makers = q.TakeSizeFromBestLevel(taker)
			assert.Equal(t, "5", taker.Filled().String())
			assert.Equal(t, "0", taker.SizeRemaining().String())
			require.Len(t, makers, 2)
			assert.Equal(t, second, makers[1].Price().String())

			assert.Empty(t, q.TakeSizeFromBestLevel(taker))

			taker = newMarket(t, "m2", side.Opposite(), "3", "0")
			makers = q.TakeSizeFromBestLevel(taker)
			assert.Equal(t, "2", taker.Filled().String())
			assert.Equal(t, "1", taker.SizeRemaining().String())
			require.Len(t, makers, 1)
			assert.Equal(t, last, makers[0].Price().String())

			assert.Empty(t, q.TakeSizeFromBestLevel(taker))
			assert.Nil(t, q.Peek())
		})
	}
}

func TestLevelQueue_MarketFundsStopAtUnaffordableLevel(t *testing.T) {
	asks := NewLevelQueue(Ask, one)
	asks.Add(newAsk(t, "a", "4", "1"))
	asks.Add(newAsk(t, "b", "9", "1"))

	taker := newMarket(t, "m", Bid, "0", "12")
	assert.Len(t, asks.TakeSizeFromBestLevel(taker), 1)
	assert.Equal(t, "8", taker.FundsRemaining().String())

	// 8 cannot buy a whole unit at 9.
	assert.Empty(t, asks.TakeSizeFromBestLevel(taker))
	assertBest(t, asks, "9", "1")
}

func TestLevelQueue_Depth(t *testing.T) {
	bids := NewLevelQueue(Bid, one)
	seed(t, bids)

	depth := bids.Depth(2)
	require.Len(t, depth, 2)
	assert.Equal(t, "20", depth[0].Price.String())
	assert.Equal(t, "10", depth[1].Price.String())
	assert.Equal(t, "3", depth[1].Volume.String())
	assert.Equal(t, 2, depth[1].Orders)

	assert.Len(t, bids.Depth(0), 3)
}
