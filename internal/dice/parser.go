package dice

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseError describes a malformed dice expression. It reports the offending
// term so interactive callers can echo it back.
type ParseError struct {
	Expression string // full expression, whitespace stripped
	Term       string // the term that failed, may be empty for stray characters
	Reason     string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Term == "" {
		return fmt.Sprintf("dice: parsing %q: %s", e.Expression, e.Reason)
	}
	return fmt.Sprintf("dice: parsing %q: term %q: %s", e.Expression, e.Term, e.Reason)
}

// Parse evaluates a dice-notation expression into its exact outcome
// distribution. An expression is a concatenation of signed terms, each either
// a dice term "[+-]N?dM" (N defaults to 1, N == 0 is a no-op term; the die is
// uniform over 1..M) or a signed integer literal. Terms fold left to right
// into an accumulator starting at the fixed value 0; a leading minus on a dice term subtracts
// that die's distribution instead of adding it. Whitespace is ignored and the
// 'd' separator is case-insensitive.
//
// "2d6" convolves two independent d6 distributions: outcome range [2,12],
// total weight 36.
//
// Postcondition: returns a non-empty Distribution, or a *ParseError when the
// expression contains a malformed term, a missing or non-positive side count,
// or a character outside the grammar. Malformed input never falls back to a
// default distribution.
func Parse(expression string) (Distribution, error) {
	cleaned := stripSpace(expression)
	acc := FromValue(0)

	s := scanner{expr: cleaned}
	for !s.done() {
		term, err := s.next()
		if err != nil {
			return Distribution{}, err
		}
		if term.sides == 0 {
			// Literal term: the sign is already folded into the value.
			acc = acc.Add(FromValue(term.value))
			continue
		}

		die := Empty()
		for face := 1; face <= term.sides; face++ {
			die.AddEvent(Number(float64(face)), 1.0)
		}

		op := OpAdd
		if term.negative {
			op = OpSubtract
		}
		// Each die instance is an independent convolution; 2d6 is d6+d6,
		// not a doubled d6.
		for i := 0; i < term.count; i++ {
			acc = acc.Combine(die, op)
		}
	}

	return acc, nil
}

// term is one parsed expression term. sides == 0 marks a literal.
type term struct {
	negative bool
	count    int
	sides    int
	value    float64 // literal value, sign included
}

// scanner walks the cleaned expression one term at a time: an optional sign,
// an optional digit run, an optional 'd'/'D', an optional digit run. This is
// the same term shape a non-overlapping match of `[+-]?\d*[dD]?\d*` yields,
// minus the empty matches such a pattern produces between real tokens.
type scanner struct {
	expr string
	pos  int
}

func (s *scanner) done() bool {
	return s.pos >= len(s.expr)
}

// next consumes and parses one term.
//
// Precondition: !s.done().
func (s *scanner) next() (term, error) {
	start := s.pos

	negative := false
	if c := s.expr[s.pos]; c == '+' || c == '-' {
		negative = c == '-'
		s.pos++
	}
	countDigits := s.digits()

	hasDie := false
	if s.pos < len(s.expr) && (s.expr[s.pos] == 'd' || s.expr[s.pos] == 'D') {
		hasDie = true
		s.pos++
	}
	sideDigits := s.digits()

	raw := s.expr[start:s.pos]

	if !hasDie {
		if countDigits == "" {
			// A bare sign, or a character outside the grammar entirely.
			if raw == "" {
				return term{}, &ParseError{
					Expression: s.expr,
					Reason:     fmt.Sprintf("unexpected character %q", s.expr[s.pos]),
				}
			}
			return term{}, &ParseError{Expression: s.expr, Term: raw, Reason: "dangling sign"}
		}
		value, err := strconv.ParseFloat(countDigits, 64)
		if err != nil {
			return term{}, &ParseError{Expression: s.expr, Term: raw, Reason: "invalid literal"}
		}
		if negative {
			value = -value
		}
		return term{value: value}, nil
	}

	count := 1
	if countDigits != "" {
		n, err := strconv.Atoi(countDigits)
		if err != nil {
			return term{}, &ParseError{Expression: s.expr, Term: raw, Reason: "invalid die count"}
		}
		// A zero count combines zero times; "0d6" contributes nothing.
		count = n
	}

	if sideDigits == "" {
		return term{}, &ParseError{Expression: s.expr, Term: raw, Reason: "missing die sides"}
	}
	sides, err := strconv.Atoi(sideDigits)
	if err != nil {
		return term{}, &ParseError{Expression: s.expr, Term: raw, Reason: "invalid die sides"}
	}
	if sides < 1 {
		return term{}, &ParseError{Expression: s.expr, Term: raw, Reason: "die sides must be >= 1"}
	}

	return term{negative: negative, count: count, sides: sides}, nil
}

// digits consumes and returns a maximal run of ASCII digits.
func (s *scanner) digits() string {
	start := s.pos
	for s.pos < len(s.expr) && s.expr[s.pos] >= '0' && s.expr[s.pos] <= '9' {
		s.pos++
	}
	return s.expr[start:s.pos]
}

// stripSpace removes all whitespace, so "2d6 + 3" and "2d6+3" parse alike.
func stripSpace(expression string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, expression)
}
