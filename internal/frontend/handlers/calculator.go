// Package handlers implements the Telnet session handlers for the odds
// calculator front end.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/diceodds/internal/chart"
	"github.com/cory-johannsen/diceodds/internal/dice"
	"github.com/cory-johannsen/diceodds/internal/frontend/telnet"
	"github.com/cory-johannsen/diceodds/internal/preset"
)

// chartWidth is the column count for the widest rendered bar.
const chartWidth = 40

// RecordedRoll is one row of roll history as shown to a session.
type RecordedRoll struct {
	Expression    string
	Outcome       float64
	ExpectedValue float64
	RolledAt      time.Time
}

// RollStore persists simulated rolls and serves recent history.
//
// Precondition: expression must be non-empty; limit must be >= 1.
// Postcondition: Record returns nil on success; Recent returns rows newest first.
type RollStore interface {
	Record(ctx context.Context, expression string, outcome, expectedValue float64) error
	Recent(ctx context.Context, limit int) ([]RecordedRoll, error)
}

// Calculator is the interactive odds-calculator session handler. Each
// connected client gets a command loop over the dice engine: exact odds,
// charts, expected values, comparisons, simulated rolls, presets, and roll
// history.
type Calculator struct {
	analyzer     *dice.Analyzer
	presets      *preset.Library // may be nil (presets disabled)
	store        RollStore       // may be nil (history disabled)
	historyLimit int
	logger       *zap.Logger
}

// NewCalculator creates a Calculator session handler.
//
// Precondition: analyzer and logger must be non-nil; historyLimit must be >= 1.
// presets and store may be nil to disable the respective commands.
func NewCalculator(
	analyzer *dice.Analyzer,
	presets *preset.Library,
	store RollStore,
	historyLimit int,
	logger *zap.Logger,
) *Calculator {
	return &Calculator{
		analyzer:     analyzer,
		presets:      presets,
		store:        store,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// HandleSession runs the command loop for one client until quit, disconnect,
// or context cancellation.
//
// Postcondition: Returns nil on clean quit, or the underlying read error.
func (c *Calculator) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	if err := c.writeWelcome(conn); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteLine("Server shutting down. Goodbye!")
			return ctx.Err()
		default:
		}

		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightGreen, "odds> ")); err != nil {
			return err
		}

		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		command, args := splitCommand(line)
		if command == "" {
			continue
		}

		if command == "quit" || command == "exit" {
			return conn.WriteLine("Goodbye!")
		}

		if err := c.dispatch(ctx, conn, command, args); err != nil {
			return err
		}
	}
}

// dispatch routes one command line. Command errors are reported to the
// client; only transport errors propagate.
func (c *Calculator) dispatch(ctx context.Context, conn *telnet.Conn, command, args string) error {
	switch command {
	case "help":
		return c.writeHelp(conn)
	case "odds":
		return c.handleOdds(conn, args)
	case "chart":
		return c.handleChart(conn, args)
	case "ev":
		return c.handleExpectedValue(conn, args)
	case "roll":
		return c.handleRoll(ctx, conn, args)
	case "cmp":
		return c.handleCompare(conn, args)
	case "presets":
		return c.handlePresetList(conn)
	case "preset":
		return c.handlePreset(conn, args)
	case "history":
		return c.handleHistory(ctx, conn)
	default:
		return conn.WriteLine(telnet.Colorf(telnet.Red,
			"Unknown command %q. Type 'help' for commands.", command))
	}
}

func (c *Calculator) writeWelcome(conn *telnet.Conn) error {
	lines := []string{
		telnet.Colorize(telnet.BrightCyan, "diceodds: exact probabilities for dice expressions"),
		"Type 'odds 2d6+3' for a probability table, or 'help' for all commands.",
		"",
	}
	for _, line := range lines {
		if err := conn.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) writeHelp(conn *telnet.Conn) error {
	help := []string{
		telnet.Colorize(telnet.Bold, "Commands:"),
		"  odds <expr>          exact outcome probabilities, e.g. odds 2d6+3",
		"  chart <expr>         bar chart of the distribution",
		"  ev <expr>            expected value and outcome range",
		"  roll <expr>          one simulated roll",
		"  cmp <a> <op> <b>     compare expressions, op is one of < <= > >=",
		"  presets              list named preset expressions",
		"  preset <name>        show odds for a preset",
		"  history              recent simulated rolls",
		"  quit                 disconnect",
	}
	for _, line := range help {
		if err := conn.WriteLine(line); err != nil {
			return err
		}
	}
	return nil
}

// resolveExpression turns a command argument into a dice expression,
// accepting a preset name in place of raw notation.
func (c *Calculator) resolveExpression(args string) string {
	if c.presets != nil {
		if p, ok := c.presets.Get(args); ok {
			return p.Expression
		}
	}
	return args
}

func (c *Calculator) handleOdds(conn *telnet.Conn, args string) error {
	if args == "" {
		return conn.WriteLine("Usage: odds <expression>")
	}
	expr := c.resolveExpression(args)

	d, err := c.analyzer.Analyze(expr)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	bars, err := chart.Series(d)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	if err := conn.WriteLine(telnet.Colorf(telnet.Bold, "%s (%g equally likely cases)",
		expr, d.TotalWeight())); err != nil {
		return err
	}
	for _, b := range bars {
		if err := conn.Writef("  %6s  %6.2f%%\r\n", b.Outcome.String(), b.Percent); err != nil {
			return err
		}
	}
	ev, err := d.ExpectedValue()
	if err != nil {
		return c.writeExpressionError(conn, err)
	}
	return conn.WriteLine(telnet.Colorf(telnet.Dim, "  expected value %.2f", ev))
}

func (c *Calculator) handleChart(conn *telnet.Conn, args string) error {
	if args == "" {
		return conn.WriteLine("Usage: chart <expression>")
	}
	expr := c.resolveExpression(args)

	d, err := c.analyzer.Analyze(expr)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}
	bars, err := chart.Series(d)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	rendered := strings.ReplaceAll(chart.Render(bars, chartWidth), "\n", "\r\n")
	if err := conn.WriteLine(telnet.Colorize(telnet.Bold, expr)); err != nil {
		return err
	}
	return conn.Write([]byte(rendered))
}

func (c *Calculator) handleExpectedValue(conn *telnet.Conn, args string) error {
	if args == "" {
		return conn.WriteLine("Usage: ev <expression>")
	}
	expr := c.resolveExpression(args)

	d, err := c.analyzer.Analyze(expr)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}
	ev, err := d.ExpectedValue()
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	outcomes := d.Outcomes()
	low, high := outcomes[0], outcomes[len(outcomes)-1]
	return conn.WriteLine(fmt.Sprintf("%s: expected value %s, range [%s, %s]",
		expr, telnet.Colorf(telnet.BrightYellow, "%.2f", ev), low.String(), high.String()))
}

func (c *Calculator) handleRoll(ctx context.Context, conn *telnet.Conn, args string) error {
	if args == "" {
		return conn.WriteLine("Usage: roll <expression>")
	}
	expr := c.resolveExpression(args)

	outcome, d, err := c.analyzer.Evaluate(expr)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	if c.store != nil && outcome.Kind == dice.KindNumber {
		ev, evErr := d.ExpectedValue()
		if evErr == nil {
			if err := c.store.Record(ctx, expr, outcome.Value(), ev); err != nil {
				// History is best-effort; the roll still stands.
				c.logger.Warn("recording roll", zap.String("expression", expr), zap.Error(err))
			}
		}
	}

	return conn.WriteLine(fmt.Sprintf("%s → %s",
		expr, telnet.Colorf(telnet.BrightYellow, "%s", outcome.String())))
}

func (c *Calculator) handleCompare(conn *telnet.Conn, args string) error {
	fields := strings.Fields(args)
	if len(fields) != 3 {
		return conn.WriteLine("Usage: cmp <expression> <op> <expression>, op is one of < <= > >=")
	}

	op, ok := compareOps[fields[1]]
	if !ok {
		return conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown operator %q.", fields[1]))
	}

	left, err := dice.Parse(c.resolveExpression(fields[0]))
	if err != nil {
		return c.writeExpressionError(conn, err)
	}
	right, err := dice.Parse(c.resolveExpression(fields[2]))
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	cmp, err := left.Combine(right, op).Normalized(100.0)
	if err != nil {
		return c.writeExpressionError(conn, err)
	}

	return conn.WriteLine(fmt.Sprintf("%s %s %s: %s true, %s false",
		fields[0], fields[1], fields[2],
		telnet.Colorf(telnet.Green, "%.2f%%", cmp.Weight(dice.Boolean(true))),
		telnet.Colorf(telnet.Red, "%.2f%%", cmp.Weight(dice.Boolean(false)))))
}

// compareOps maps the cmp command's operator tokens onto engine operations.
var compareOps = map[string]dice.Op{
	"<":  dice.OpLess,
	"<=": dice.OpLessOrEqual,
	">":  dice.OpGreater,
	">=": dice.OpGreaterOrEqual,
}

func (c *Calculator) handlePresetList(conn *telnet.Conn) error {
	if c.presets == nil || c.presets.Len() == 0 {
		return conn.WriteLine("No presets loaded.")
	}
	for _, name := range c.presets.Names() {
		p, _ := c.presets.Get(name)
		desc := p.Description
		if desc != "" {
			desc = "  " + telnet.Colorize(telnet.Dim, desc)
		}
		if err := conn.Writef("  %-16s %s%s\r\n", p.Name, p.Expression, desc); err != nil {
			return err
		}
	}
	return nil
}

func (c *Calculator) handlePreset(conn *telnet.Conn, args string) error {
	if c.presets == nil {
		return conn.WriteLine("No presets loaded.")
	}
	p, ok := c.presets.Get(args)
	if !ok {
		return conn.WriteLine(telnet.Colorf(telnet.Red, "Unknown preset %q.", args))
	}
	return c.handleOdds(conn, p.Expression)
}

func (c *Calculator) handleHistory(ctx context.Context, conn *telnet.Conn) error {
	if c.store == nil {
		return conn.WriteLine("Roll history is disabled.")
	}
	rolls, err := c.store.Recent(ctx, c.historyLimit)
	if err != nil {
		c.logger.Error("reading roll history", zap.Error(err))
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Could not read roll history."))
	}
	if len(rolls) == 0 {
		return conn.WriteLine("No rolls recorded yet.")
	}
	for _, r := range rolls {
		if err := conn.Writef("  %s  %-12s → %g (ev %.2f)\r\n",
			r.RolledAt.Format("15:04:05"), r.Expression, r.Outcome, r.ExpectedValue); err != nil {
			return err
		}
	}
	return nil
}

// writeExpressionError reports a malformed expression or empty distribution
// back to the client without tearing down the session.
func (c *Calculator) writeExpressionError(conn *telnet.Conn, err error) error {
	var parseErr *dice.ParseError
	if errors.As(err, &parseErr) {
		return conn.WriteLine(telnet.Colorf(telnet.Red, "%s", parseErr.Error()))
	}
	return conn.WriteLine(telnet.Colorf(telnet.Red, "Error: %s", err.Error()))
}

// splitCommand splits an input line into a lower-cased command word and the
// remaining argument string.
func splitCommand(line string) (string, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", ""
	}
	parts := strings.SplitN(trimmed, " ", 2)
	command := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return command, ""
	}
	return command, strings.TrimSpace(parts[1])
}
