package engine

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Config describes one instrument. Empty steps default to "1".
type Config struct {
	Symbol    string
	PriceStep string
	SizeStep  string
}

type Option func(*Book)

// WithLogger sets the logger used for rejections and matches. The global
// zerolog logger is used otherwise.
func WithLogger(logger zerolog.Logger) Option {
	return func(book *Book) {
		book.logger = logger
	}
}

// Book is a single instrument limit order book matching in price-time
// priority. It is not safe for concurrent use; callers sharing a book must
// serialize every call (see package dispatch).
type Book struct {
	symbol    string
	priceStep decimal.Decimal
	sizeStep  decimal.Decimal

	// Price levels to orders sat on the price level, in time priority.
	asks *LevelQueue
	bids *LevelQueue

	// Resting orders by id, for reduce and remove without a price.
	orders map[string]*LimitOrder

	logger zerolog.Logger
}

func NewBook(cfg Config, opts ...Option) (*Book, error) {
	book := &Book{
		symbol: cfg.Symbol,
		asks:   NewLevelQueue(Ask, one),
		bids:   NewLevelQueue(Bid, one),
		orders: make(map[string]*LimitOrder),
		logger: log.Logger,
	}
	if err := book.Configure(cfg); err != nil {
		return nil, err
	}
	for _, opt := range opts {
		opt(book)
	}
	return book, nil
}

// Configure applies the step sizes of cfg to the book and every live level.
// The symbol is fixed at construction.
func (book *Book) Configure(cfg Config) error {
	priceStep, err := parseStep("price step", cfg.PriceStep)
	if err != nil {
		return err
	}
	sizeStep, err := parseStep("size step", cfg.SizeStep)
	if err != nil {
		return err
	}
	book.priceStep = priceStep
	book.sizeStep = sizeStep
	book.asks.configure(sizeStep)
	book.bids.configure(sizeStep)
	return nil
}

func (book *Book) Symbol() string             { return book.symbol }
func (book *Book) PriceStep() decimal.Decimal { return book.priceStep }
func (book *Book) SizeStep() decimal.Decimal  { return book.sizeStep }

// Len is the number of resting orders.
func (book *Book) Len() int { return len(book.orders) }

func (book *Book) levels(side Side) *LevelQueue {
	if side == Ask {
		return book.asks
	}
	return book.bids
}

func (book *Book) validate(order Order) error {
	if order == nil {
		return fmt.Errorf("%w: nil order", ErrMalformed)
	}
	o := order.core()
	funds := decimal.Zero
	market, isMarket := order.(*MarketOrder)
	if isMarket {
		funds = market.funds
	}

	if !isMarket && !o.price.IsPositive() {
		return ErrPriceNotPositive
	}
	if !isMarket && !o.size.IsPositive() {
		return ErrSizeNotPositive
	}
	if o.size.IsNegative() || funds.IsNegative() {
		return ErrNegative
	}
	if !o.size.IsPositive() && !funds.IsPositive() {
		return ErrNoBound
	}
	if !isMultiple(o.price, book.priceStep) {
		return fmt.Errorf("%w: %s by %s", ErrPriceStep, o.price, book.priceStep)
	}
	if !isMultiple(o.size, book.sizeStep) {
		return fmt.Errorf("%w: %s by %s", ErrSizeStep, o.size, book.sizeStep)
	}
	if _, ok := book.orders[o.id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateOrder, o.id)
	}
	return nil
}

// Add matches order against the opposite side while the best level crosses,
// then rests whatever is left of a limit order. Market orders never rest.
// A rejected order leaves the book untouched.
func (book *Book) Add(order Order) (*Result, error) {
	if err := book.validate(order); err != nil {
		book.logger.Debug().
			Err(err).
			Str("symbol", book.symbol).
			Msg("order rejected")
		return nil, err
	}

	// Sweep the opposite side one level at a time. A pull that touches no
	// maker means the best level no longer crosses or the side is empty.
	contra := book.levels(order.Side().Opposite())
	var makers []*LimitOrder
	for {
		next := contra.TakeSizeFromBestLevel(order)
		if len(next) == 0 {
			break
		}
		makers = append(makers, next...)
	}

	if limit, ok := order.(*LimitOrder); ok && limit.sizeRemaining.IsPositive() {
		book.levels(limit.side).Add(limit)
		book.orders[limit.id] = limit
	}

	copies := make([]Snapshot, len(makers))
	for i, maker := range makers {
		copies[i] = maker.Snapshot()
	}
	for _, maker := range makers {
		maker.ClearFilled()
		book.removeIfEmpty(maker)
	}

	result := NewResult(book.symbol, order.Snapshot(), copies)
	if len(makers) > 0 {
		book.logger.Debug().
			Str("symbol", book.symbol).
			Str("taker", order.ID()).
			Int("makers", len(makers)).
			Stringer("filled", result.Filled).
			Stringer("filledValue", result.FilledValue).
			Msg("order matched")
	}
	return result, nil
}

func (book *Book) removeIfEmpty(order *LimitOrder) {
	if order.sizeRemaining.IsPositive() {
		return
	}
	delete(book.orders, order.id)
}

// Reduce caps a resting order to size. Returns a nil snapshot if the id is
// not resting.
func (book *Book) Reduce(orderID string, size string) (*Snapshot, error) {
	s, err := parseDecimal("size", size)
	if err != nil {
		return nil, err
	}
	if s.IsNegative() {
		return nil, ErrNegative
	}
	if !isMultiple(s, book.sizeStep) {
		return nil, fmt.Errorf("%w: %s by %s", ErrSizeStep, s, book.sizeStep)
	}

	order, ok := book.orders[orderID]
	if !ok {
		return nil, nil
	}
	book.levels(order.side).Reduce(order.price, orderID, s)
	book.removeIfEmpty(order)
	snapshot := order.Snapshot()
	return &snapshot, nil
}

// Remove evicts a resting order. Returns nil if the id is not resting.
func (book *Book) Remove(orderID string) *Snapshot {
	order, ok := book.orders[orderID]
	if !ok {
		return nil
	}
	delete(book.orders, orderID)
	book.levels(order.side).Remove(order.price, orderID)
	snapshot := order.Snapshot()
	return &snapshot
}

func (book *Book) Clear() {
	book.orders = make(map[string]*LimitOrder)
	book.asks.Clear()
	book.bids.Clear()
}

// Order returns a snapshot of a resting order.
func (book *Book) Order(orderID string) (Snapshot, bool) {
	order, ok := book.orders[orderID]
	if !ok {
		return Snapshot{}, false
	}
	return order.Snapshot(), true
}

// Volume is the resting open size on one side.
func (book *Book) Volume(side Side) decimal.Decimal {
	return book.levels(side).Volume()
}

func (book *Book) BestBid() (LevelSnapshot, bool) { return best(book.bids) }
func (book *Book) BestAsk() (LevelSnapshot, bool) { return best(book.asks) }

func best(q *LevelQueue) (LevelSnapshot, bool) {
	level := q.Peek()
	if level == nil {
		return LevelSnapshot{}, false
	}
	return level.Snapshot(), true
}

// Spread is best ask minus best bid. ok is false while either side is empty.
func (book *Book) Spread() (spread decimal.Decimal, ok bool) {
	ask, askOk := book.BestAsk()
	bid, bidOk := book.BestBid()
	if !askOk || !bidOk {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}

// Depth is a top of book view, best level first on each side.
type Depth struct {
	Symbol string          `json:"symbol"`
	Bids   []LevelSnapshot `json:"bids"`
	Asks   []LevelSnapshot `json:"asks"`
}

// Depth snapshots up to n levels per side. n <= 0 returns every level.
func (book *Book) Depth(n int) Depth {
	return Depth{
		Symbol: book.symbol,
		Bids:   book.bids.Depth(n),
		Asks:   book.asks.Depth(n),
	}
}
