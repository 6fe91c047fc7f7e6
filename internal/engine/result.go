package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Result reports one call to Book.Add: the taker after matching, every
// maker touched, and the filled totals summed over the makers.
type Result struct {
	Symbol      string          `json:"symbol"`
	Taker       Snapshot        `json:"taker"`
	Makers      []Snapshot      `json:"makers"`
	Filled      decimal.Decimal `json:"filled"`
	FilledValue decimal.Decimal `json:"filledValue"`
}

// NewResult sums the makers' fills and writes the totals onto the taker
// snapshot as well.
func NewResult(symbol string, taker Snapshot, makers []Snapshot) *Result {
	filled := decimal.Zero
	filledValue := decimal.Zero
	for _, maker := range makers {
		if maker.Filled != nil {
			filled = filled.Add(*maker.Filled)
		}
		if maker.FilledValue != nil {
			filledValue = filledValue.Add(*maker.FilledValue)
		}
	}
	taker.Filled = decimalPtr(filled)
	taker.FilledValue = decimalPtr(filledValue)
	if makers == nil {
		makers = []Snapshot{}
	}
	return &Result{
		Symbol:      symbol,
		Taker:       taker,
		Makers:      makers,
		Filled:      filled,
		FilledValue: filledValue,
	}
}

func (r Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Symbol:         %s\n", r.Symbol)
	fmt.Fprintf(&sb, "Taker:  [\n%s]\n", r.Taker)
	for i, maker := range r.Makers {
		fmt.Fprintf(&sb, "Maker %d: [\n%s]\n", i, maker)
	}
	fmt.Fprintf(&sb, "Filled:         %s\n", r.Filled)
	fmt.Fprintf(&sb, "FilledValue:    %s", r.FilledValue)
	return sb.String()
}
