package dice

import (
	"encoding/binary"
	"errors"
	"hash/fnv"
	"math"
	"sort"
)

// ErrEmptyDistribution is returned when a statistic or draw is requested from
// a Distribution with no outcomes.
var ErrEmptyDistribution = errors.New("dice: empty distribution")

// Op is a closed enumeration of the binary operations Combine supports.
type Op uint8

const (
	// OpAdd sums two numeric outcomes.
	OpAdd Op = iota
	// OpSubtract subtracts the right numeric outcome from the left.
	OpSubtract
	// OpLess compares outcomes with <, yielding a boolean outcome.
	OpLess
	// OpLessOrEqual compares outcomes with <=, yielding a boolean outcome.
	OpLessOrEqual
	// OpGreater compares outcomes with >, yielding a boolean outcome.
	OpGreater
	// OpGreaterOrEqual compares outcomes with >=, yielding a boolean outcome.
	OpGreaterOrEqual
)

// String returns the operator symbol for logging and error messages.
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	}
	return "?"
}

// apply evaluates the operation over two numeric operand values.
func (op Op) apply(a, b float64) Outcome {
	switch op {
	case OpAdd:
		return Number(a + b)
	case OpSubtract:
		return Number(a - b)
	case OpLess:
		return Boolean(a < b)
	case OpLessOrEqual:
		return Boolean(a <= b)
	case OpGreater:
		return Boolean(a > b)
	case OpGreaterOrEqual:
		return Boolean(a >= b)
	}
	panic("dice: unknown operation")
}

// Distribution is a finite discrete weight distribution: a mapping from
// outcome to non-negative weight. Weights need not sum to 1; for a plain die
// each face carries weight 1 and the total weight is the sample-space size.
//
// A Distribution owns its mapping outright. Every operation that would modify
// a Distribution returns a new one instead; treat any Distribution handed to
// another component as immutable. AddEvent is the single construction-time
// exception.
type Distribution struct {
	events map[Outcome]float64
}

// Empty returns a Distribution with no outcomes. This is a transient builder
// state: populate it with AddEvent before handing it to a consumer.
func Empty() Distribution {
	return Distribution{events: make(map[Outcome]float64)}
}

// FromValue returns a Distribution with the single numeric outcome v at weight 1.
func FromValue(v float64) Distribution {
	return Distribution{events: map[Outcome]float64{Number(v): 1.0}}
}

// FromOutcomes returns a Distribution over the given outcome→weight mapping.
// The mapping is copied; the caller keeps ownership of its argument.
//
// Precondition: all weights must be strictly positive.
func FromOutcomes(events map[Outcome]float64) Distribution {
	d := Distribution{events: make(map[Outcome]float64, len(events))}
	for o, w := range events {
		d.events[o] = w
	}
	return d
}

// AddEvent accumulates weight into the entry for outcome, creating the entry
// if absent. It is the only mutating primitive and must only be used while a
// Distribution is being constructed, before it is shared.
//
// Precondition: weight must be strictly positive.
func (d Distribution) AddEvent(outcome Outcome, weight float64) {
	d.events[outcome] += weight
}

// Combine convolves d with other under op: for every pair of outcomes, the
// operation result accumulates the product of the pair's weights. Outcome
// collisions sum, which keeps the result bounded by the distinct result
// values rather than the full cross product.
//
// Complexity: O(len(d) * len(other)).
//
// Precondition: every outcome in both operands must be numeric. Comparison
// results cannot be combined further; doing so panics.
// Postcondition: the result is a fresh Distribution; neither operand changes.
func (d Distribution) Combine(other Distribution, op Op) Distribution {
	result := Distribution{events: make(map[Outcome]float64, len(d.events))}
	for o1, w1 := range d.events {
		if o1.Kind != KindNumber {
			panic("dice: Combine precondition violated: boolean outcome operand")
		}
		for o2, w2 := range other.events {
			if o2.Kind != KindNumber {
				panic("dice: Combine precondition violated: boolean outcome operand")
			}
			result.events[op.apply(o1.Number, o2.Number)] += w1 * w2
		}
	}
	return result
}

// Add returns the distribution of the sum of d and other.
func (d Distribution) Add(other Distribution) Distribution {
	return d.Combine(other, OpAdd)
}

// Subtract returns the distribution of d minus other.
func (d Distribution) Subtract(other Distribution) Distribution {
	return d.Combine(other, OpSubtract)
}

// LessThan returns the boolean distribution of d < other.
func (d Distribution) LessThan(other Distribution) Distribution {
	return d.Combine(other, OpLess)
}

// LessOrEqual returns the boolean distribution of d <= other.
func (d Distribution) LessOrEqual(other Distribution) Distribution {
	return d.Combine(other, OpLessOrEqual)
}

// GreaterThan returns the boolean distribution of d > other.
func (d Distribution) GreaterThan(other Distribution) Distribution {
	return d.Combine(other, OpGreater)
}

// GreaterOrEqual returns the boolean distribution of d >= other.
func (d Distribution) GreaterOrEqual(other Distribution) Distribution {
	return d.Combine(other, OpGreaterOrEqual)
}

// Len returns the number of distinct outcomes.
func (d Distribution) Len() int {
	return len(d.events)
}

// Weight returns the weight of outcome, or 0 if absent.
func (d Distribution) Weight(outcome Outcome) float64 {
	return d.events[outcome]
}

// Events returns a copy of the outcome→weight mapping. Mutating the returned
// map does not affect the Distribution.
func (d Distribution) Events() map[Outcome]float64 {
	events := make(map[Outcome]float64, len(d.events))
	for o, w := range d.events {
		events[o] = w
	}
	return events
}

// Outcomes returns all outcomes in ascending order (numbers before booleans,
// false before true).
func (d Distribution) Outcomes() []Outcome {
	outcomes := make([]Outcome, 0, len(d.events))
	for o := range d.events {
		outcomes = append(outcomes, o)
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Less(outcomes[j]) })
	return outcomes
}

// TotalWeight returns the sum of all weights. For a distribution built from
// unit-weight die faces this is the sample-space size, e.g. 36 for 2d6.
func (d Distribution) TotalWeight() float64 {
	var total float64
	for _, w := range d.events {
		total += w
	}
	return total
}

// ExpectedValue returns the weight-weighted mean of the outcomes. Boolean
// outcomes count as 1 (true) and 0 (false), so the expected value of a
// comparison distribution is the probability of "true".
//
// Postcondition: returns ErrEmptyDistribution when d has no outcomes.
func (d Distribution) ExpectedValue() (float64, error) {
	if len(d.events) == 0 {
		return 0, ErrEmptyDistribution
	}
	var sum, total float64
	for o, w := range d.events {
		sum += o.Value() * w
		total += w
	}
	return sum / total, nil
}

// Normalized returns a new Distribution with every weight scaled so the
// weights sum to target. Pass 1 for probabilities or 100 for percentages.
//
// Postcondition: returns ErrEmptyDistribution when d has no outcomes;
// otherwise the result's TotalWeight equals target up to rounding.
func (d Distribution) Normalized(target float64) (Distribution, error) {
	total := d.TotalWeight()
	if total == 0 {
		return Distribution{}, ErrEmptyDistribution
	}
	result := Distribution{events: make(map[Outcome]float64, len(d.events))}
	for o, w := range d.events {
		result.events[o] = w * target / total
	}
	return result, nil
}

// Sample draws one outcome at random with probability proportional to weight.
// The draw walks outcomes in sorted order against a single uniform variate
// from src, so a deterministic Source yields a deterministic outcome.
//
// Postcondition: returns ErrEmptyDistribution when d has no outcomes.
func (d Distribution) Sample(src Source) (Outcome, error) {
	total := d.TotalWeight()
	if total == 0 {
		return Outcome{}, ErrEmptyDistribution
	}
	target := src.Float64() * total
	outcomes := d.Outcomes()
	var cum float64
	for _, o := range outcomes {
		cum += d.events[o]
		if target < cum {
			return o, nil
		}
	}
	// Float64 returns values in [0, 1); rounding can still leave target at
	// the very top of the last bucket.
	return outcomes[len(outcomes)-1], nil
}

// Equal reports whether d and other hold the same outcome→weight mapping.
// Comparison is exact and order-independent.
func (d Distribution) Equal(other Distribution) bool {
	if len(d.events) != len(other.events) {
		return false
	}
	for o, w := range d.events {
		ow, ok := other.events[o]
		if !ok || ow != w {
			return false
		}
	}
	return true
}

// Hash returns an order-independent hash of the outcome→weight mapping.
//
// Postcondition: d.Equal(other) implies d.Hash() == other.Hash().
func (d Distribution) Hash() uint64 {
	var h uint64
	for o, w := range d.events {
		entry := fnv.New64a()
		var buf [18]byte
		buf[0] = byte(o.Kind)
		binary.LittleEndian.PutUint64(buf[1:9], math.Float64bits(o.Number))
		if o.Boolean {
			buf[9] = 1
		}
		binary.LittleEndian.PutUint64(buf[10:18], math.Float64bits(w))
		_, _ = entry.Write(buf[:])
		h ^= entry.Sum64()
	}
	return h
}
