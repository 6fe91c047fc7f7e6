package engine

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

type levelTree = btree.BTreeG[*Level]

// LevelQueue is one side of the book: levels kept in price priority with a
// price index next to them. A price is indexed iff its level is non-empty.
type LevelQueue struct {
	side     Side
	sizeStep decimal.Decimal
	levels   *levelTree
	byPrice  map[string]*Level
}

func newLevelTree(side Side) *levelTree {
	less := func(a, b *Level) bool {
		// Sorted least first.
		return a.price.LessThan(b.price)
	}
	if side == Bid {
		// Sorted greatest first.
		less = func(a, b *Level) bool {
			return a.price.GreaterThan(b.price)
		}
	}
	// The book has a single writer, the tree needs no locking of its own.
	return btree.NewBTreeGOptions(less, btree.Options{NoLocks: true})
}

func NewLevelQueue(side Side, sizeStep decimal.Decimal) *LevelQueue {
	return &LevelQueue{
		side:     side,
		sizeStep: sizeStep,
		levels:   newLevelTree(side),
		byPrice:  make(map[string]*Level),
	}
}

func (q *LevelQueue) Side() Side { return q.side }

// Len is the number of live price levels.
func (q *LevelQueue) Len() int { return q.levels.Len() }

func (q *LevelQueue) configure(sizeStep decimal.Decimal) {
	q.sizeStep = sizeStep
	q.levels.Scan(func(level *Level) bool {
		level.configure(sizeStep)
		return true
	})
}

// Peek returns the best level: lowest ask or highest bid.
func (q *LevelQueue) Peek() *Level {
	level, ok := q.levels.Min()
	if !ok {
		return nil
	}
	return level
}

// Get returns the level at price, or nil.
func (q *LevelQueue) Get(price decimal.Decimal) *Level {
	return q.byPrice[price.String()]
}

// Levels returns the live levels best first.
func (q *LevelQueue) Levels() []*Level {
	return q.levels.Items()
}

// Volume is the open size summed over every level.
func (q *LevelQueue) Volume() decimal.Decimal {
	total := decimal.Zero
	q.levels.Scan(func(level *Level) bool {
		total = total.Add(level.volume)
		return true
	})
	return total
}

// Add rests order at its price, creating the level on first use.
func (q *LevelQueue) Add(order *LimitOrder) {
	key := order.price.String()
	level, ok := q.byPrice[key]
	if !ok {
		level = NewLevel(order.price, q.sizeStep)
		q.byPrice[key] = level
		q.levels.Set(level)
	}
	level.Add(order)
}

func (q *LevelQueue) Reduce(price decimal.Decimal, orderID string, size decimal.Decimal) *LimitOrder {
	level := q.Get(price)
	if level == nil {
		return nil
	}
	order := level.Reduce(orderID, size)
	if order != nil && level.Empty() {
		q.drop(level)
	}
	return order
}

func (q *LevelQueue) Remove(price decimal.Decimal, orderID string) *LimitOrder {
	level := q.Get(price)
	if level == nil {
		return nil
	}
	order := level.Remove(orderID)
	if order != nil && level.Empty() {
		q.drop(level)
	}
	return order
}

func (q *LevelQueue) drop(level *Level) {
	delete(q.byPrice, level.price.String())
	q.levels.Delete(level)
}

// isTaken reports whether taker crosses level.
func (q *LevelQueue) isTaken(level *Level, taker Order) bool {
	if m, ok := taker.(*MarketOrder); ok {
		return m.SizeFor(level.price, q.sizeStep).IsPositive()
	}
	if taker.Side() == Bid {
		return taker.Price().GreaterThanOrEqual(level.price)
	}
	return taker.Price().LessThanOrEqual(level.price)
}

// TakeSizeFromBestLevel matches taker against the best level if it crosses
// and drops the level once drained. Returns the makers touched.
func (q *LevelQueue) TakeSizeFromBestLevel(taker Order) []*LimitOrder {
	level := q.Peek()
	if level == nil || !q.isTaken(level, taker) {
		return nil
	}
	makers := level.TakeSize(taker)
	if len(makers) > 0 && level.Empty() {
		q.drop(level)
	}
	return makers
}

// Depth snapshots up to n levels best first. n <= 0 means all of them.
func (q *LevelQueue) Depth(n int) []LevelSnapshot {
	var depth []LevelSnapshot
	q.levels.Scan(func(level *Level) bool {
		depth = append(depth, level.Snapshot())
		return n <= 0 || len(depth) < n
	})
	return depth
}

func (q *LevelQueue) Clear() {
	q.levels.Scan(func(level *Level) bool {
		level.Clear()
		return true
	})
	q.levels = newLevelTree(q.side)
	q.byPrice = make(map[string]*Level)
}
