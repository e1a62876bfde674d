package dice_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/diceodds/internal/dice"
)

// uniformDie builds the distribution of a single M-sided die: outcomes 1..M,
// weight 1 each.
func uniformDie(t *testing.T, sides int) dice.Distribution {
	t.Helper()
	d := dice.Empty()
	for face := 1; face <= sides; face++ {
		d.AddEvent(dice.Number(float64(face)), 1.0)
	}
	return d
}

// fixedSource is a deterministic Source returning a constant variate.
type fixedSource struct{ v float64 }

func (f fixedSource) Float64() float64 { return f.v }

func TestFromValue(t *testing.T) {
	d := dice.FromValue(7)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 1.0, d.Weight(dice.Number(7)))
	assert.Equal(t, 1.0, d.TotalWeight())
}

// TestAddEvent_Accumulates verifies that adding the same outcome twice sums
// the weights instead of replacing the entry.
func TestAddEvent_Accumulates(t *testing.T) {
	d := dice.Empty()
	d.AddEvent(dice.Number(3), 1.0)
	d.AddEvent(dice.Number(3), 2.5)
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 3.5, d.Weight(dice.Number(3)))
}

// TestCombine_Add verifies the convolution core on d6+d6: 36 total weight,
// outcomes 2..12, and 7 as the heaviest outcome.
func TestCombine_Add(t *testing.T) {
	d6 := uniformDie(t, 6)
	sum := d6.Add(d6)

	assert.Equal(t, 11, sum.Len())
	assert.Equal(t, 36.0, sum.TotalWeight())
	assert.Equal(t, 1.0, sum.Weight(dice.Number(2)))
	assert.Equal(t, 6.0, sum.Weight(dice.Number(7)))
	assert.Equal(t, 1.0, sum.Weight(dice.Number(12)))
	assert.Equal(t, 0.0, sum.Weight(dice.Number(1)))
	assert.Equal(t, 0.0, sum.Weight(dice.Number(13)))
}

// TestCombine_DoesNotMutateOperands verifies combination allocates a fresh
// mapping rather than touching either operand.
func TestCombine_DoesNotMutateOperands(t *testing.T) {
	d6 := uniformDie(t, 6)
	before := d6.Events()
	_ = d6.Add(d6)
	assert.Equal(t, before, d6.Events())
}

func TestCombine_Subtract(t *testing.T) {
	d4 := uniformDie(t, 4)
	diff := dice.FromValue(0).Subtract(d4)
	assert.Equal(t, 1.0, diff.Weight(dice.Number(-1)))
	assert.Equal(t, 1.0, diff.Weight(dice.Number(-4)))
	assert.Equal(t, 4.0, diff.TotalWeight())
}

// TestCombine_GreaterThan verifies the comparison example: d6 > 3 is an even
// split, three faces at or below 3 and three above.
func TestCombine_GreaterThan(t *testing.T) {
	d6 := uniformDie(t, 6)
	cmp := d6.GreaterThan(dice.FromValue(3))

	assert.Equal(t, 2, cmp.Len())
	assert.Equal(t, 3.0, cmp.Weight(dice.Boolean(false)))
	assert.Equal(t, 3.0, cmp.Weight(dice.Boolean(true)))
}

func TestCombine_Comparisons(t *testing.T) {
	d6 := uniformDie(t, 6)
	three := dice.FromValue(3)

	tests := []struct {
		name      string
		result    dice.Distribution
		wantTrue  float64
		wantFalse float64
	}{
		{"less_than", d6.LessThan(three), 2, 4},
		{"less_or_equal", d6.LessOrEqual(three), 3, 3},
		{"greater_than", d6.GreaterThan(three), 3, 3},
		{"greater_or_equal", d6.GreaterOrEqual(three), 4, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantTrue, tc.result.Weight(dice.Boolean(true)))
			assert.Equal(t, tc.wantFalse, tc.result.Weight(dice.Boolean(false)))
		})
	}
}

// TestCombine_AlwaysTrue verifies a one-point boolean distribution when the
// comparison can never fail.
func TestCombine_AlwaysTrue(t *testing.T) {
	d6 := uniformDie(t, 6)
	cmp := d6.GreaterThan(dice.FromValue(0))
	assert.Equal(t, 1, cmp.Len())
	assert.Equal(t, 6.0, cmp.Weight(dice.Boolean(true)))
}

func TestCombine_EmptyOperands(t *testing.T) {
	empty := dice.Empty()
	assert.Equal(t, 0, empty.Add(empty).Len())
}

// TestCombine_BooleanOperandPanics verifies the documented precondition:
// comparison results cannot be combined further.
func TestCombine_BooleanOperandPanics(t *testing.T) {
	cmp := uniformDie(t, 6).GreaterThan(dice.FromValue(3))
	assert.Panics(t, func() { _ = cmp.Add(dice.FromValue(1)) })
}

func TestExpectedValue(t *testing.T) {
	twoD6 := uniformDie(t, 6).Add(uniformDie(t, 6))
	ev, err := twoD6.ExpectedValue()
	require.NoError(t, err)
	assert.InDelta(t, 7.0, ev, 1e-9)
}

// TestExpectedValue_Boolean verifies that a comparison distribution's
// expected value reads as the probability of "true".
func TestExpectedValue_Boolean(t *testing.T) {
	cmp := uniformDie(t, 6).GreaterThan(dice.FromValue(3))
	ev, err := cmp.ExpectedValue()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, ev, 1e-9)
}

func TestExpectedValue_EmptyFails(t *testing.T) {
	_, err := dice.Empty().ExpectedValue()
	assert.ErrorIs(t, err, dice.ErrEmptyDistribution)
}

func TestNormalized(t *testing.T) {
	twoD6 := uniformDie(t, 6).Add(uniformDie(t, 6))

	probs, err := twoD6.Normalized(1.0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, probs.TotalWeight(), 1e-9)
	assert.InDelta(t, 6.0/36.0, probs.Weight(dice.Number(7)), 1e-9)

	pcts, err := twoD6.Normalized(100.0)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, pcts.TotalWeight(), 1e-9)
}

func TestNormalized_EmptyFails(t *testing.T) {
	_, err := dice.Empty().Normalized(1.0)
	assert.ErrorIs(t, err, dice.ErrEmptyDistribution)
}

// TestSample_Deterministic pins the draw for fixed variates: the walk is over
// sorted outcomes, so 0 lands on the lowest outcome and a value just under 1
// on the highest.
func TestSample_Deterministic(t *testing.T) {
	d6 := uniformDie(t, 6)

	low, err := d6.Sample(fixedSource{0})
	require.NoError(t, err)
	assert.Equal(t, dice.Number(1), low)

	high, err := d6.Sample(fixedSource{0.999999})
	require.NoError(t, err)
	assert.Equal(t, dice.Number(6), high)

	mid, err := d6.Sample(fixedSource{0.5})
	require.NoError(t, err)
	assert.Equal(t, dice.Number(4), mid)
}

func TestSample_EmptyFails(t *testing.T) {
	_, err := dice.Empty().Sample(fixedSource{0.5})
	assert.ErrorIs(t, err, dice.ErrEmptyDistribution)
}

// TestSample_InSupport verifies every pseudo-random draw lands on an actual
// outcome of the distribution.
func TestSample_InSupport(t *testing.T) {
	d := uniformDie(t, 20)
	src := dice.NewPseudoSource(42)
	for i := 0; i < 1000; i++ {
		o, err := d.Sample(src)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, o.Value(), 1.0)
		assert.LessOrEqual(t, o.Value(), 20.0)
	}
}

func TestEqual(t *testing.T) {
	a := uniformDie(t, 6)
	b := uniformDie(t, 6)
	c := uniformDie(t, 8)

	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(dice.Empty()))
}

// TestHash_ConsistentWithEqual verifies the hash contract: equal mappings
// hash equal, regardless of construction order.
func TestHash_ConsistentWithEqual(t *testing.T) {
	a := dice.Empty()
	a.AddEvent(dice.Number(1), 1.0)
	a.AddEvent(dice.Number(2), 2.0)

	b := dice.Empty()
	b.AddEvent(dice.Number(2), 2.0)
	b.AddEvent(dice.Number(1), 1.0)

	require.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())

	c := dice.Empty()
	c.AddEvent(dice.Number(1), 1.0)
	assert.NotEqual(t, a.Hash(), c.Hash())
}

// TestEvents_ReturnsCopy verifies the read-only view: mutating the returned
// map must not leak into the Distribution.
func TestEvents_ReturnsCopy(t *testing.T) {
	d := dice.FromValue(1)
	events := d.Events()
	events[dice.Number(99)] = 5.0
	assert.Equal(t, 1, d.Len())
	assert.Equal(t, 0.0, d.Weight(dice.Number(99)))
}

// TestFromOutcomes_CopiesInput verifies ownership: the caller's map stays the
// caller's.
func TestFromOutcomes_CopiesInput(t *testing.T) {
	events := map[dice.Outcome]float64{dice.Number(1): 1.0}
	d := dice.FromOutcomes(events)
	events[dice.Number(2)] = 1.0
	assert.Equal(t, 1, d.Len())
}

func TestOutcomes_Sorted(t *testing.T) {
	d := dice.Empty()
	d.AddEvent(dice.Number(5), 1)
	d.AddEvent(dice.Number(-3), 1)
	d.AddEvent(dice.Number(1), 1)
	assert.Equal(t,
		[]dice.Outcome{dice.Number(-3), dice.Number(1), dice.Number(5)},
		d.Outcomes())
}

// TestNormalized_Property verifies that for arbitrary distributions and
// targets, the normalized total weight equals the target.
func TestNormalized_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(rt, "outcomes")
		d := dice.Empty()
		for i := 0; i < n; i++ {
			d.AddEvent(dice.Number(float64(i)), rapid.Float64Range(0.01, 100).Draw(rt, "weight"))
		}
		target := rapid.Float64Range(0.1, 1000).Draw(rt, "target")

		normalized, err := d.Normalized(target)
		require.NoError(rt, err)
		assert.InDelta(rt, target, normalized.TotalWeight(), 1e-6*target)
	})
}

// TestAdd_Commutative_Property verifies combine(a, b, add) == combine(b, a, add)
// for arbitrary dice pairs.
func TestAdd_Commutative_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := uniformDie(t, rapid.IntRange(1, 12).Draw(rt, "sidesA"))
		b := uniformDie(t, rapid.IntRange(1, 12).Draw(rt, "sidesB"))
		assert.True(rt, a.Add(b).Equal(b.Add(a)), "addition must be commutative")
	})
}

// TestNdM_Property verifies the NdM invariants: outcome range [N, N*M], total
// weight M^N, and symmetry around the expected value N*(M+1)/2.
func TestNdM_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 4).Draw(rt, "count")
		m := rapid.IntRange(1, 8).Draw(rt, "sides")

		d := dice.FromValue(0)
		for i := 0; i < n; i++ {
			d = d.Add(uniformDie(t, m))
		}

		assert.InDelta(rt, math.Pow(float64(m), float64(n)), d.TotalWeight(), 1e-6)
		assert.Equal(rt, 1.0, d.Weight(dice.Number(float64(n))), "minimum outcome N")
		assert.Equal(rt, 1.0, d.Weight(dice.Number(float64(n*m))), "maximum outcome N*M")
		assert.Equal(rt, 0.0, d.Weight(dice.Number(float64(n-1))))
		assert.Equal(rt, 0.0, d.Weight(dice.Number(float64(n*m+1))))

		ev, err := d.ExpectedValue()
		require.NoError(rt, err)
		assert.InDelta(rt, float64(n)*float64(m+1)/2, ev, 1e-9)

		// Symmetry: weight(o) == weight(min+max-o).
		for o := n; o <= n*m; o++ {
			mirror := n + n*m - o
			assert.InDelta(rt, d.Weight(dice.Number(float64(mirror))),
				d.Weight(dice.Number(float64(o))), 1e-9,
				"NdM must be symmetric around its expected value")
		}
	})
}

// TestFoldOrder_Property verifies associativity up to outcome grouping:
// folding a list of dice in any order yields the same final mapping.
func TestFoldOrder_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sides := rapid.SliceOfN(rapid.IntRange(1, 8), 1, 4).Draw(rt, "dice")

		forward := dice.FromValue(0)
		for _, s := range sides {
			forward = forward.Add(uniformDie(t, s))
		}
		backward := dice.FromValue(0)
		for i := len(sides) - 1; i >= 0; i-- {
			backward = backward.Add(uniformDie(t, sides[i]))
		}

		assert.True(rt, forward.Equal(backward),
			"fold order must not change the final mapping")
		assert.Equal(rt, forward.Hash(), backward.Hash())
	})
}
