package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/diceodds/internal/dice"
)

// TestPseudoSource_Range verifies the postcondition: every value is in [0, 1).
func TestPseudoSource_Range(t *testing.T) {
	src := dice.NewPseudoSource(1)
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

// TestPseudoSource_Deterministic verifies same seed, same sequence.
func TestPseudoSource_Deterministic(t *testing.T) {
	a := dice.NewPseudoSource(1234)
	b := dice.NewPseudoSource(1234)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestCryptoSource_Range(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}
