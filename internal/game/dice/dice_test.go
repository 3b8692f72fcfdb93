package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/goodnight/internal/game/dice"
)

func TestRoll_String(t *testing.T) {
	r := dice.Roll{Kind: dice.KindDamage, Lo: 2, Hi: 5, Value: 3}
	assert.Equal(t, "damage [2..5] = 3", r.String())
}

func TestRange_UsesSourceOffset(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSequenceSource(2), zap.NewNop())
	assert.Equal(t, 7, r.Range(dice.KindDamage, 5, 9))
}

func TestRange_NegativeBounds(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSequenceSource(0, 5), zap.NewNop())
	assert.Equal(t, -10, r.Range(dice.KindDamage, -10, -5))
	assert.Equal(t, -5, r.Range(dice.KindDamage, -10, -5))
}

func TestRange_PanicsWhenInverted(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSequenceSource(0), zap.NewNop())
	assert.PanicsWithValue(t, "dice: Range called with lo > hi", func() {
		r.Range(dice.KindDamage, 3, 2)
	})
}

func TestRange_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewSequenceSource(1), zap.New(core))
	r.Range(dice.KindRounds, 1, 3)

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "rounds [1..3] = 2", entries[0].ContextMap()["roll"])
}

func TestWeighted_CumulativeSampling(t *testing.T) {
	weights := []int{1, 0, 3}
	// total 4: draw 0 -> index 0, draws 1..3 -> index 2
	src := dice.NewSequenceSource(0, 1, 2, 3)
	r := dice.NewLoggedRoller(src, zap.NewNop())
	assert.Equal(t, 0, r.Weighted(weights))
	assert.Equal(t, 2, r.Weighted(weights))
	assert.Equal(t, 2, r.Weighted(weights))
	assert.Equal(t, 2, r.Weighted(weights))
}

func TestWeighted_PanicsWithoutPositiveWeight(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewSequenceSource(0), zap.NewNop())
	assert.Panics(t, func() { r.Weighted([]int{0, -1}) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}

func TestSequenceSource_Wraps(t *testing.T) {
	s := dice.NewSequenceSource(1, 2)
	assert.Equal(t, 1, s.Intn(10))
	assert.Equal(t, 2, s.Intn(10))
	assert.Equal(t, 1, s.Intn(10))
	assert.Equal(t, 3, s.Draws())
}

func TestCryptoSource_PanicsOnNonPositive(t *testing.T) {
	assert.PanicsWithValue(t, "dice: Intn called with n <= 0", func() {
		dice.NewCryptoSource().Intn(0)
	})
}

func TestProperty_RangeWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+200).Draw(rt, "hi")
		seed := rapid.Uint64().Draw(rt, "seed")
		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
		v := r.Range(dice.KindDamage, lo, hi)
		if v < lo || v > hi {
			rt.Fatalf("Range(%d,%d) = %d out of bounds", lo, hi, v)
		}
	})
}

func TestProperty_WeightedNeverPicksZeroWeight(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.IntRange(0, 5), 1, 8).Draw(rt, "weights")
		weights = append(weights, 1)
		seed := rapid.Uint64().Draw(rt, "seed")
		r := dice.NewLoggedRoller(dice.NewSeededSource(seed), zap.NewNop())
		i := r.Weighted(weights)
		if weights[i] <= 0 {
			rt.Fatalf("picked index %d with weight %d", i, weights[i])
		}
	})
}
