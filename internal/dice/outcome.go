// Package dice computes exact discrete probability distributions for
// dice-notation expressions such as "2d6+3" or "1d20-1d4", and supports
// combining, comparing, normalizing, and sampling those distributions.
package dice

import (
	"fmt"
	"strconv"
)

// OutcomeKind discriminates the two outcome families a Distribution can hold.
type OutcomeKind uint8

const (
	// KindNumber is a numeric outcome produced by dice, literals, and arithmetic.
	KindNumber OutcomeKind = iota
	// KindBoolean is a truth-value outcome produced by comparison operations.
	KindBoolean
)

// Outcome is a single point in a Distribution's event space: either a numeric
// value or a boolean truth value. Outcomes are comparable and are used directly
// as map keys.
//
// Invariant: exactly one of the two payload fields is meaningful, selected by Kind.
type Outcome struct {
	Kind    OutcomeKind
	Number  float64
	Boolean bool
}

// Number returns a numeric Outcome holding v.
func Number(v float64) Outcome {
	return Outcome{Kind: KindNumber, Number: v}
}

// Boolean returns a truth-value Outcome holding b.
func Boolean(b bool) Outcome {
	return Outcome{Kind: KindBoolean, Boolean: b}
}

// Value returns the outcome as a float64. Boolean outcomes map to 1 (true)
// and 0 (false) so that expected values over comparison results read as the
// probability mass of "true".
func (o Outcome) Value() float64 {
	if o.Kind == KindBoolean {
		if o.Boolean {
			return 1
		}
		return 0
	}
	return o.Number
}

// Less orders outcomes: false < true for booleans, numeric order for numbers,
// and numbers before booleans across kinds. Used to present distributions in
// a stable outcome order.
func (o Outcome) Less(other Outcome) bool {
	if o.Kind != other.Kind {
		return o.Kind < other.Kind
	}
	if o.Kind == KindBoolean {
		return !o.Boolean && other.Boolean
	}
	return o.Number < other.Number
}

// String renders the outcome for display: "7", "3.5", "true", "false".
func (o Outcome) String() string {
	if o.Kind == KindBoolean {
		return strconv.FormatBool(o.Boolean)
	}
	return strconv.FormatFloat(o.Number, 'f', -1, 64)
}

// GoString implements fmt.GoStringer for readable test failure output.
func (o Outcome) GoString() string {
	if o.Kind == KindBoolean {
		return fmt.Sprintf("dice.Boolean(%v)", o.Boolean)
	}
	return fmt.Sprintf("dice.Number(%v)", o.Number)
}
