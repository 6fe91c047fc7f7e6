package engine

import "fmt"

type Side int

const (
	Bid Side = iota
	Ask
)

var sideName = map[Side]string{
	Bid: "bid",
	Ask: "ask",
}

// ParseSide accepts the "bid" and "ask" labels.
func ParseSide(s string) (Side, error) {
	switch s {
	case "bid":
		return Bid, nil
	case "ask":
		return Ask, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidSide, s)
}

func (s Side) Valid() bool {
	return s == Bid || s == Ask
}

// Opposite is the side a taker on s matches against.
func (s Side) Opposite() Side {
	if s == Bid {
		return Ask
	}
	return Bid
}

func (s Side) String() string {
	if name, ok := sideName[s]; ok {
		return name
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSide, int(s))
	}
	return []byte(s.String()), nil
}

type OrderType int

const (
	// Limit orders are an order to buy or sell at a specified price or
	// better. Limit orders may rest on the order book until filled.
	Limit OrderType = iota
	// Market orders execute immediately against whatever rests on the
	// other side, at the maker's price. They are bounded by size, by
	// funds, or by both, and never rest.
	Market
)

func (t OrderType) String() string {
	switch t {
	case Limit:
		return "limit"
	case Market:
		return "market"
	}
	return fmt.Sprintf("OrderType(%d)", int(t))
}

func (t OrderType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}
