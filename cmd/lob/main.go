package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lob/internal/dispatch"
	"lob/internal/engine"
	"lob/internal/script"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	symbol := flag.String("symbol", "BTCUSD", "Instrument symbol")
	priceStep := flag.String("price-step", "1", "Price grid every order price must sit on")
	sizeStep := flag.String("size-step", "1", "Size grid every order size must sit on")
	scriptPath := flag.String("script", "", "Order script to replay (default stdin)")
	depth := flag.Int("depth", 5, "Levels per side to report once the script is done, 0 for all")
	logLevel := flag.String("log-level", "info", "Log level: ['debug', 'info', 'warn', 'error']")
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid -log-level %q\n", *logLevel)
		flag.Usage()
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()

	if err := run(ctx, engine.Config{
		Symbol:    *symbol,
		PriceStep: *priceStep,
		SizeStep:  *sizeStep,
	}, *scriptPath, *depth, os.Stdout); err != nil {
		log.Error().Err(err).Msg("replay failed")
		os.Exit(1)
	}
}

func openScript(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// run replays the script at path through a sequenced book, writes every
// result to out and logs the top of book at the end.
func run(ctx context.Context, cfg engine.Config, path string, depth int, out io.Writer) error {
	book, err := engine.NewBook(cfg)
	if err != nil {
		return fmt.Errorf("unable to create book: %w", err)
	}

	r, err := openScript(path)
	if err != nil {
		return fmt.Errorf("unable to open script: %w", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Error().Err(err).Str("script", path).Msg("unable to close script")
		}
	}()

	commands, err := script.Parse(r, nil)
	if err != nil {
		return err
	}

	seq := dispatch.New(book)
	seq.Start(ctx)
	defer func() {
		if err := seq.Stop(); err != nil {
			log.Error().Err(err).Msg("sequencer exited with error")
		}
	}()

	for _, command := range commands {
		outcome, err := command.Apply(ctx, seq)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Rejections only fail the one line.
			log.Warn().
				Err(err).
				Int("line", command.Line).
				Stringer("kind", command.Kind).
				Str("order", command.OrderID).
				Msg("command rejected")
			continue
		}
		report(out, command, outcome)
	}

	top, err := seq.Depth(ctx, depth)
	if err != nil {
		return err
	}
	event := log.Info().
		Str("symbol", top.Symbol).
		Int("bids", len(top.Bids)).
		Int("asks", len(top.Asks))
	if len(top.Bids) > 0 {
		event = event.Stringer("bestBid", top.Bids[0].Price)
	}
	if len(top.Asks) > 0 {
		event = event.Stringer("bestAsk", top.Asks[0].Price)
	}
	spread, ok, err := seq.Spread(ctx)
	if err != nil {
		return err
	}
	if ok {
		event = event.Stringer("spread", spread)
	}
	event.Msg("replay finished")

	for _, level := range top.Asks {
		fmt.Fprintf(out, "ASK %s x %s (%d orders)\n", level.Price, level.Volume, level.Orders)
	}
	for _, level := range top.Bids {
		fmt.Fprintf(out, "BID %s x %s (%d orders)\n", level.Price, level.Volume, level.Orders)
	}
	return nil
}

func report(out io.Writer, command script.Command, outcome script.Outcome) {
	switch {
	case outcome.Result != nil:
		log.Info().
			Int("line", command.Line).
			Str("order", command.OrderID).
			Int("makers", len(outcome.Result.Makers)).
			Stringer("filled", outcome.Result.Filled).
			Stringer("filledValue", outcome.Result.FilledValue).
			Msg("order applied")
		fmt.Fprintf(out, "%s\n\n", outcome.Result)
	case outcome.Snapshot != nil:
		log.Info().
			Int("line", command.Line).
			Stringer("kind", command.Kind).
			Str("order", command.OrderID).
			Stringer("sizeRemaining", outcome.Snapshot.SizeRemaining).
			Msg("order updated")
	case command.Kind == script.Reduce || command.Kind == script.Remove:
		log.Info().
			Int("line", command.Line).
			Stringer("kind", command.Kind).
			Str("order", command.OrderID).
			Msg("order not resting")
	default:
		log.Info().Int("line", command.Line).Stringer("kind", command.Kind).Msg("book cleared")
	}
}
