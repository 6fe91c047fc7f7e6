package engine

import (
	"github.com/shopspring/decimal"
)

// Level is the FIFO queue of orders resting at one price. Orders are linked
// through their prev/next fields so removal by id does not scan the queue.
type Level struct {
	price    decimal.Decimal
	volume   decimal.Decimal // Sum of sizeRemaining over the queue
	sizeStep decimal.Decimal
	head     *LimitOrder
	tail     *LimitOrder
	orders   map[string]*LimitOrder
}

func NewLevel(price, sizeStep decimal.Decimal) *Level {
	return &Level{
		price:    price,
		volume:   decimal.Zero,
		sizeStep: sizeStep,
		orders:   make(map[string]*LimitOrder),
	}
}

func (l *Level) Price() decimal.Decimal  { return l.price }
func (l *Level) Volume() decimal.Decimal { return l.volume }
func (l *Level) Len() int                { return len(l.orders) }
func (l *Level) Empty() bool             { return l.head == nil }

// Peek returns the order with time priority, or nil.
func (l *Level) Peek() *LimitOrder { return l.head }

// Get looks up a resting order by id.
func (l *Level) Get(orderID string) *LimitOrder { return l.orders[orderID] }

func (l *Level) configure(sizeStep decimal.Decimal) {
	l.sizeStep = sizeStep
}

// Add appends order at the tail of the queue.
func (l *Level) Add(order *LimitOrder) {
	if l.tail == nil {
		l.head = order
		l.tail = order
	} else {
		l.tail.next = order
		order.prev = l.tail
		l.tail = order
	}
	l.orders[order.id] = order
	l.volume = l.volume.Add(order.sizeRemaining)
}

// Reduce caps a resting order to size. An order left with nothing open is
// dropped from the level. Returns nil if the id does not rest here.
func (l *Level) Reduce(orderID string, size decimal.Decimal) *LimitOrder {
	order, ok := l.orders[orderID]
	if !ok {
		return nil
	}
	removed := order.Reduce(size)
	l.volume = l.volume.Sub(removed)
	if !order.sizeRemaining.IsPositive() {
		l.unlink(order)
	}
	return order
}

// Remove detaches a resting order. Returns nil if the id does not rest here.
func (l *Level) Remove(orderID string) *LimitOrder {
	order, ok := l.orders[orderID]
	if !ok {
		return nil
	}
	l.unlink(order)
	l.volume = l.volume.Sub(order.sizeRemaining)
	return order
}

func (l *Level) unlink(order *LimitOrder) {
	if order.prev != nil {
		order.prev.next = order.next
	} else {
		l.head = order.next
	}
	if order.next != nil {
		order.next.prev = order.prev
	} else {
		l.tail = order.prev
	}
	order.prev, order.next = nil, nil
	delete(l.orders, order.id)
}

// takeSizeFor is how much taker can still absorb at this price.
func (l *Level) takeSizeFor(taker Order) decimal.Decimal {
	if m, ok := taker.(*MarketOrder); ok {
		return m.SizeFor(l.price, l.sizeStep)
	}
	return taker.SizeRemaining()
}

// TakeSize matches taker against the queue head first. The take size is
// recomputed after every maker because a funds bounded market taker loses
// capacity as value is consumed. Every maker touched is returned in fill
// order, including a partially filled last one.
func (l *Level) TakeSize(taker Order) []*LimitOrder {
	var makers []*LimitOrder
	for size := l.takeSizeFor(taker); size.IsPositive(); size = l.takeSizeFor(taker) {
		maker := l.head
		if maker == nil {
			break
		}
		taken := maker.TakeSize(size)
		if !maker.sizeRemaining.IsPositive() {
			l.unlink(maker)
		}
		l.volume = l.volume.Sub(taken)
		taker.Subtract(taken, maker.price, l.sizeStep)
		makers = append(makers, maker)
	}
	return makers
}

// Orders returns snapshots of the queue in time priority.
func (l *Level) Orders() []Snapshot {
	snapshots := make([]Snapshot, 0, len(l.orders))
	for o := l.head; o != nil; o = o.next {
		snapshots = append(snapshots, o.Snapshot())
	}
	return snapshots
}

func (l *Level) Clear() {
	for o := l.head; o != nil; {
		next := o.next
		o.prev, o.next = nil, nil
		o = next
	}
	l.head, l.tail = nil, nil
	l.orders = make(map[string]*LimitOrder)
	l.volume = decimal.Zero
}

// LevelSnapshot summarises one price level.
type LevelSnapshot struct {
	Price  decimal.Decimal `json:"price"`
	Volume decimal.Decimal `json:"volume"`
	Orders int             `json:"orders"`
}

func (l *Level) Snapshot() LevelSnapshot {
	return LevelSnapshot{Price: l.price, Volume: l.volume, Orders: len(l.orders)}
}
