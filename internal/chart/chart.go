// Package chart renders dice distributions as outcome-ordered percentage
// series and plain-text bar charts. It consumes finished distributions and
// performs no drawing beyond text; richer front ends can build on Series.
package chart

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/diceodds/internal/dice"
)

// Bar is one chart row: an outcome and its percentage of the total weight.
type Bar struct {
	Outcome dice.Outcome
	Percent float64
}

// Series normalizes d to a total of 100 and returns one Bar per outcome in
// ascending outcome order, suitable for a bar chart.
//
// Postcondition: the percents sum to 100 up to rounding; returns
// dice.ErrEmptyDistribution when d has no outcomes.
func Series(d dice.Distribution) ([]Bar, error) {
	normalized, err := d.Normalized(100.0)
	if err != nil {
		return nil, err
	}
	outcomes := normalized.Outcomes()
	bars := make([]Bar, 0, len(outcomes))
	for _, o := range outcomes {
		bars = append(bars, Bar{Outcome: o, Percent: normalized.Weight(o)})
	}
	return bars, nil
}

// Render draws bars as a plain-text horizontal bar chart. Bar lengths scale
// so the largest percentage fills width columns; every non-zero bar gets at
// least one column.
//
// Precondition: width must be >= 1.
// Postcondition: returns one line per bar, each "<outcome> | <bar> <pct>%".
func Render(bars []Bar, width int) string {
	if width < 1 {
		panic("chart: Render precondition violated: width must be >= 1")
	}
	var max float64
	labelWidth := 0
	for _, b := range bars {
		if b.Percent > max {
			max = b.Percent
		}
		if l := len(b.Outcome.String()); l > labelWidth {
			labelWidth = l
		}
	}

	var sb strings.Builder
	for _, b := range bars {
		cols := 0
		if max > 0 {
			cols = int(b.Percent / max * float64(width))
			if cols == 0 && b.Percent > 0 {
				cols = 1
			}
		}
		fmt.Fprintf(&sb, "%*s | %s %.2f%%\n",
			labelWidth, b.Outcome.String(), strings.Repeat("#", cols), b.Percent)
	}
	return sb.String()
}
