package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Order is the capability set shared by limit and market orders. The set of
// implementations is closed: *LimitOrder and *MarketOrder.
type Order interface {
	ID() string
	Side() Side
	Type() OrderType
	Price() decimal.Decimal
	Size() decimal.Decimal
	SizeRemaining() decimal.Decimal
	Filled() decimal.Decimal
	FilledValue() decimal.Decimal
	// Subtract books size traded at the maker's price against a taker and
	// returns the amount actually deducted.
	Subtract(size, price, sizeStep decimal.Decimal) decimal.Decimal
	Snapshot() Snapshot
	core() *base
}

type base struct {
	id            string          // Caller supplied identity
	side          Side            //
	price         decimal.Decimal // Zero for market orders
	size          decimal.Decimal // Requested size, capped by Reduce
	sizeRemaining decimal.Decimal // Size still open
	filled        decimal.Decimal // Size filled in the current matching cycle
	filledValue   decimal.Decimal // Sum of size*price for filled
}

func newBase(id string, side Side, price, size string) (base, error) {
	if id == "" {
		return base{}, ErrMissingOrderID
	}
	if !side.Valid() {
		return base{}, fmt.Errorf("%w: %d", ErrInvalidSide, int(side))
	}
	p, err := parseDecimal("price", price)
	if err != nil {
		return base{}, err
	}
	s, err := parseDecimal("size", size)
	if err != nil {
		return base{}, err
	}
	return base{
		id:            id,
		side:          side,
		price:         p,
		size:          s,
		sizeRemaining: s,
		filled:        decimal.Zero,
		filledValue:   decimal.Zero,
	}, nil
}

func (o *base) ID() string                     { return o.id }
func (o *base) Side() Side                     { return o.side }
func (o *base) Price() decimal.Decimal         { return o.price }
func (o *base) Size() decimal.Decimal          { return o.size }
func (o *base) SizeRemaining() decimal.Decimal { return o.sizeRemaining }
func (o *base) Filled() decimal.Decimal        { return o.filled }
func (o *base) FilledValue() decimal.Decimal   { return o.filledValue }
func (o *base) core() *base                    { return o }

// ClearFilled resets the per-cycle fill counters.
func (o *base) ClearFilled() {
	o.filled = decimal.Zero
	o.filledValue = decimal.Zero
}

// Reduce caps the order to size and returns how much open size was removed.
// Sizes at or above the current size are a no-op.
func (o *base) Reduce(size decimal.Decimal) decimal.Decimal {
	before := o.sizeRemaining
	o.size = decimal.Min(size, o.size)
	o.sizeRemaining = decimal.Min(o.sizeRemaining, o.size)
	return before.Sub(o.sizeRemaining)
}

// LimitOrder rests at its price until filled, reduced or removed. The prev
// and next links belong to the Level the order rests in.
type LimitOrder struct {
	base
	prev, next *LimitOrder
}

func NewLimitOrder(id string, side Side, price, size string) (*LimitOrder, error) {
	b, err := newBase(id, side, price, size)
	if err != nil {
		return nil, err
	}
	return &LimitOrder{base: b}, nil
}

func (o *LimitOrder) Type() OrderType { return Limit }

// TakeSize fills up to size of this maker at its own price and returns the
// amount taken.
func (o *LimitOrder) TakeSize(size decimal.Decimal) decimal.Decimal {
	size = decimal.Min(size, o.sizeRemaining)
	o.sizeRemaining = o.sizeRemaining.Sub(size)
	o.filled = o.filled.Add(size)
	o.filledValue = o.filledValue.Add(o.price.Mul(size))
	return size
}

// Subtract only moves the open size of a limit taker. Its fill totals are
// reported from the makers' side by the Result.
func (o *LimitOrder) Subtract(size, _, _ decimal.Decimal) decimal.Decimal {
	size = decimal.Min(size, o.sizeRemaining)
	o.sizeRemaining = o.sizeRemaining.Sub(size)
	return size
}

// Snapshot omits the fill counters while nothing has been filled.
func (o *LimitOrder) Snapshot() Snapshot {
	s := Snapshot{
		Type:          Limit,
		ID:            o.id,
		Side:          o.side,
		Price:         o.price,
		Size:          o.size,
		SizeRemaining: o.sizeRemaining,
	}
	if o.filled.IsPositive() {
		s.Filled = decimalPtr(o.filled)
		s.FilledValue = decimalPtr(o.filledValue)
	}
	return s
}

// MarketOrder takes liquidity at maker prices, bounded by size, funds or
// both. It never rests.
type MarketOrder struct {
	base
	funds          decimal.Decimal
	fundsRemaining decimal.Decimal
}

// NewMarketOrder builds a market order. An empty funds string means no funds
// bound.
func NewMarketOrder(id string, side Side, size, funds string) (*MarketOrder, error) {
	b, err := newBase(id, side, "0", size)
	if err != nil {
		return nil, err
	}
	if funds == "" {
		funds = "0"
	}
	f, err := parseDecimal("funds", funds)
	if err != nil {
		return nil, err
	}
	return &MarketOrder{base: b, funds: f, fundsRemaining: f}, nil
}

func (o *MarketOrder) Type() OrderType                 { return Market }
func (o *MarketOrder) Funds() decimal.Decimal          { return o.funds }
func (o *MarketOrder) FundsRemaining() decimal.Decimal { return o.fundsRemaining }

// SizeFor is how much this order may still take at price, on the size grid.
func (o *MarketOrder) SizeFor(price, sizeStep decimal.Decimal) decimal.Decimal {
	bySize := o.size.IsPositive()
	byFunds := o.funds.IsPositive()
	switch {
	case bySize && byFunds:
		return decimal.Min(fundsToSize(o.fundsRemaining, price, sizeStep), o.sizeRemaining)
	case byFunds:
		return fundsToSize(o.fundsRemaining, price, sizeStep)
	case bySize:
		return o.sizeRemaining
	}
	return decimal.Zero
}

func (o *MarketOrder) Subtract(size, price, sizeStep decimal.Decimal) decimal.Decimal {
	size = decimal.Min(size, o.SizeFor(price, sizeStep))
	value := price.Mul(size)
	o.sizeRemaining = decimal.Max(o.sizeRemaining.Sub(size), decimal.Zero)
	o.fundsRemaining = decimal.Max(o.fundsRemaining.Sub(value), decimal.Zero)
	o.filled = o.filled.Add(size)
	o.filledValue = o.filledValue.Add(value)
	return size
}

func (o *MarketOrder) Snapshot() Snapshot {
	return Snapshot{
		Type:           Market,
		ID:             o.id,
		Side:           o.side,
		Price:          o.price,
		Size:           o.size,
		SizeRemaining:  o.sizeRemaining,
		Filled:         decimalPtr(o.filled),
		FilledValue:    decimalPtr(o.filledValue),
		Funds:          decimalPtr(o.funds),
		FundsRemaining: decimalPtr(o.fundsRemaining),
	}
}

// Snapshot is a detached copy of an order. Optional fields are nil when the
// order kind or its state does not report them.
type Snapshot struct {
	Type           OrderType        `json:"type"`
	ID             string           `json:"orderId"`
	Side           Side             `json:"side"`
	Price          decimal.Decimal  `json:"price"`
	Size           decimal.Decimal  `json:"size"`
	SizeRemaining  decimal.Decimal  `json:"sizeRemaining"`
	Filled         *decimal.Decimal `json:"filled,omitempty"`
	FilledValue    *decimal.Decimal `json:"filledValue,omitempty"`
	Funds          *decimal.Decimal `json:"funds,omitempty"`
	FundsRemaining *decimal.Decimal `json:"fundsRemaining,omitempty"`
}

func (s Snapshot) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type:          %v\n", s.Type)
	fmt.Fprintf(&sb, "OrderID:       %s\n", s.ID)
	fmt.Fprintf(&sb, "Side:          %v\n", s.Side)
	fmt.Fprintf(&sb, "Price:         %s\n", s.Price)
	fmt.Fprintf(&sb, "Size:          %s (Remaining: %s)", s.Size, s.SizeRemaining)
	if s.Filled != nil {
		fmt.Fprintf(&sb, "\nFilled:        %s (Value: %s)", s.Filled, optional(s.FilledValue))
	}
	if s.Funds != nil {
		fmt.Fprintf(&sb, "\nFunds:         %s (Remaining: %s)", s.Funds, optional(s.FundsRemaining))
	}
	return sb.String()
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

func optional(d *decimal.Decimal) string {
	if d == nil {
		return "0"
	}
	return d.String()
}
