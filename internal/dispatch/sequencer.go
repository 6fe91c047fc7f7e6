// Package dispatch puts a Book behind a single writer goroutine so that many
// callers can share it.
package dispatch

import (
	"context"
	"errors"

	"lob/internal/engine"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	tomb "gopkg.in/tomb.v2"
)

const (
	REQUEST_CHAN_SIZE = 100
)

var (
	ErrNotStarted = errors.New("sequencer not started")
	ErrStopped    = errors.New("sequencer stopped")
)

// request is one unit of work for the writer goroutine. done is closed once
// apply has returned.
type request struct {
	op    string
	apply func(book *engine.Book)
	done  chan struct{}
}

// Sequencer owns a Book and applies every request to it from one goroutine,
// in arrival order.
type Sequencer struct {
	book     *engine.Book
	requests chan request
	t        *tomb.Tomb
}

func New(book *engine.Book) *Sequencer {
	return &Sequencer{
		book:     book,
		requests: make(chan request, REQUEST_CHAN_SIZE),
	}
}

// Start runs the writer goroutine until Stop is called or ctx is done. It must
// be called once, before any request.
func (s *Sequencer) Start(ctx context.Context) {
	s.t, _ = tomb.WithContext(ctx)
	s.t.Go(s.run)
	log.Info().Str("symbol", s.book.Symbol()).Msg("sequencer running")
}

// Stop kills the writer goroutine and waits for it. Requests still queued are
// dropped and their callers get ErrStopped.
func (s *Sequencer) Stop() error {
	if s.t == nil {
		return nil
	}
	s.t.Kill(nil)
	err := s.t.Wait()
	log.Info().Str("symbol", s.book.Symbol()).Msg("sequencer stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Sequencer) run() error {
	for {
		select {
		case <-s.t.Dying():
			return nil
		case req := <-s.requests:
			req.apply(s.book)
			close(req.done)
		}
	}
}

// do queues fn and blocks until it has run. If ctx is done after the request
// was queued the request still runs, only the caller stops waiting.
func (s *Sequencer) do(ctx context.Context, op string, fn func(book *engine.Book)) error {
	if s.t == nil {
		return ErrNotStarted
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-s.t.Dying():
		return ErrStopped
	default:
	}

	req := request{op: op, apply: fn, done: make(chan struct{})}
	select {
	case <-s.t.Dying():
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	case s.requests <- req:
	}

	select {
	case <-req.done:
		return nil
	case <-s.t.Dying():
		// The writer may have finished the request on its way out.
		select {
		case <-req.done:
			return nil
		default:
		}
		return ErrStopped
	case <-ctx.Done():
		log.Warn().
			Err(ctx.Err()).
			Str("op", op).
			Msg("caller gave up on a queued request")
		return ctx.Err()
	}
}

// Add submits order to the book. See engine.Book.Add.
func (s *Sequencer) Add(ctx context.Context, order engine.Order) (*engine.Result, error) {
	var (
		result *engine.Result
		err    error
	)
	if serr := s.do(ctx, "add", func(book *engine.Book) {
		result, err = book.Add(order)
	}); serr != nil {
		return nil, serr
	}
	return result, err
}

// Reduce caps a resting order. A nil snapshot with a nil error means the id
// was not resting.
func (s *Sequencer) Reduce(ctx context.Context, orderID, size string) (*engine.Snapshot, error) {
	var (
		snapshot *engine.Snapshot
		err      error
	)
	if serr := s.do(ctx, "reduce", func(book *engine.Book) {
		snapshot, err = book.Reduce(orderID, size)
	}); serr != nil {
		return nil, serr
	}
	return snapshot, err
}

// Remove evicts a resting order. A nil snapshot means the id was not resting.
func (s *Sequencer) Remove(ctx context.Context, orderID string) (*engine.Snapshot, error) {
	var snapshot *engine.Snapshot
	err := s.do(ctx, "remove", func(book *engine.Book) {
		snapshot = book.Remove(orderID)
	})
	return snapshot, err
}

func (s *Sequencer) Clear(ctx context.Context) error {
	return s.do(ctx, "clear", func(book *engine.Book) {
		book.Clear()
	})
}

func (s *Sequencer) Configure(ctx context.Context, cfg engine.Config) error {
	var err error
	if serr := s.do(ctx, "configure", func(book *engine.Book) {
		err = book.Configure(cfg)
	}); serr != nil {
		return serr
	}
	return err
}

func (s *Sequencer) Depth(ctx context.Context, n int) (engine.Depth, error) {
	var depth engine.Depth
	err := s.do(ctx, "depth", func(book *engine.Book) {
		depth = book.Depth(n)
	})
	return depth, err
}

func (s *Sequencer) Order(ctx context.Context, orderID string) (engine.Snapshot, bool, error) {
	var (
		snapshot engine.Snapshot
		ok       bool
	)
	err := s.do(ctx, "order", func(book *engine.Book) {
		snapshot, ok = book.Order(orderID)
	})
	return snapshot, ok, err
}

// Spread is best ask minus best bid; ok is false while a side is empty.
func (s *Sequencer) Spread(ctx context.Context) (spread decimal.Decimal, ok bool, err error) {
	err = s.do(ctx, "spread", func(book *engine.Book) {
		spread, ok = book.Spread()
	})
	return spread, ok, err
}
