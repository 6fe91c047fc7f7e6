// Package script reads order flow written one command per line:
//
//	limit  <bid|ask> <price> <size> [id]
//	market <bid|ask> <size> <funds> [id]
//	reduce <id> <size>
//	remove <id>
//	clear
//
// Blank lines and lines starting with # are skipped.
package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"lob/internal/dispatch"
	"lob/internal/engine"

	"github.com/google/uuid"
)

var ErrSyntax = errors.New("script syntax error")

type Kind int

const (
	Limit Kind = iota
	Market
	Reduce
	Remove
	Clear
)

var kindName = map[Kind]string{
	Limit:  "limit",
	Market: "market",
	Reduce: "reduce",
	Remove: "remove",
	Clear:  "clear",
}

func (k Kind) String() string {
	if name, ok := kindName[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IDGenerator mints ids for order lines that leave theirs out.
type IDGenerator func() string

// Command is one parsed line.
type Command struct {
	Line    int
	Kind    Kind
	OrderID string
	Side    engine.Side
	Price   string
	Size    string
	Funds   string
}

// Order builds a fresh engine order for a limit or market command.
func (c Command) Order() (engine.Order, error) {
	switch c.Kind {
	case Limit:
		return engine.NewLimitOrder(c.OrderID, c.Side, c.Price, c.Size)
	case Market:
		return engine.NewMarketOrder(c.OrderID, c.Side, c.Size, c.Funds)
	}
	return nil, fmt.Errorf("%w: line %d: %s carries no order", ErrSyntax, c.Line, c.Kind)
}

// Outcome holds whatever the book returned for a command. Result is set for
// order commands, Snapshot for reduce and remove when the id was resting.
type Outcome struct {
	Result   *engine.Result
	Snapshot *engine.Snapshot
}

// Apply runs the command through seq.
func (c Command) Apply(ctx context.Context, seq *dispatch.Sequencer) (Outcome, error) {
	switch c.Kind {
	case Limit, Market:
		order, err := c.Order()
		if err != nil {
			return Outcome{}, err
		}
		result, err := seq.Add(ctx, order)
		return Outcome{Result: result}, err
	case Reduce:
		snapshot, err := seq.Reduce(ctx, c.OrderID, c.Size)
		return Outcome{Snapshot: snapshot}, err
	case Remove:
		snapshot, err := seq.Remove(ctx, c.OrderID)
		return Outcome{Snapshot: snapshot}, err
	case Clear:
		return Outcome{}, seq.Clear(ctx)
	}
	return Outcome{}, fmt.Errorf("%w: line %d: unknown command %s", ErrSyntax, c.Line, c.Kind)
}

// Parse reads every command from r. A nil gen mints uuids.
func Parse(r io.Reader, gen IDGenerator) ([]Command, error) {
	if gen == nil {
		gen = uuid.NewString
	}

	var commands []Command
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		command, err := parseLine(line, strings.Fields(text), gen)
		if err != nil {
			return nil, err
		}
		commands = append(commands, command)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return commands, nil
}

func syntaxError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, line, fmt.Sprintf(format, args...))
}

func parseLine(line int, fields []string, gen IDGenerator) (Command, error) {
	c := Command{Line: line}
	args := fields[1:]
	switch strings.ToLower(fields[0]) {
	case "limit", "market":
		c.Kind = Limit
		if strings.EqualFold(fields[0], "market") {
			c.Kind = Market
		}
		if len(args) != 4 && len(args) != 3 {
			usage := "limit wants <side> <price> <size> [id]"
			if c.Kind == Market {
				usage = "market wants <side> <size> <funds> [id]"
			}
			return c, syntaxError(line, "%s", usage)
		}
		side, err := engine.ParseSide(strings.ToLower(args[0]))
		if err != nil {
			return c, fmt.Errorf("%w: line %d: %w", ErrSyntax, line, err)
		}
		c.Side = side
		if c.Kind == Limit {
			c.Price, c.Size = args[1], args[2]
		} else {
			c.Size, c.Funds = args[1], args[2]
		}
		if len(args) == 4 {
			c.OrderID = args[3]
		} else {
			c.OrderID = gen()
		}
		// Catch malformed numbers here rather than when the line is applied.
		if _, err := c.Order(); err != nil {
			return c, fmt.Errorf("%w: line %d: %w", ErrSyntax, line, err)
		}
	case "reduce":
		if len(args) != 2 {
			return c, syntaxError(line, "reduce wants <id> <size>")
		}
		c.Kind, c.OrderID, c.Size = Reduce, args[0], args[1]
	case "remove":
		if len(args) != 1 {
			return c, syntaxError(line, "remove wants <id>")
		}
		c.Kind, c.OrderID = Remove, args[0]
	case "clear":
		if len(args) != 0 {
			return c, syntaxError(line, "clear takes no arguments")
		}
		c.Kind = Clear
	default:
		return c, syntaxError(line, "unknown command %q", fields[0])
	}
	return c, nil
}
