package region

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htm-project/cortical-region/internal/domain/htm"
)

func TestInitHardcoded_MapsColumnsToInputBitsIdentically(t *testing.T) {
	cfg := &htm.TemporalPoolerConfig{
		InputWidth: 4, InputHeight: 1,
		ColGridWidth: 4, ColGridHeight: 1,
		CellsPerCol: 1, SegActiveThreshold: 1,
		HardcodedSpatial: true,
	}
	r, err := NewRegion(cfg)
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.InhibitionRadius(), "hardcoded mode runs no inhibition")
	for i := range r.columns {
		assert.Equal(t, i, r.columns[i].ix)
		assert.Empty(t, r.columns[i].proximal.synapses, "hardcoded columns carry no proximal synapses")
	}
}

func TestInitTrained_FullDefaultPermanence_SeedsAtFullPermanence(t *testing.T) {
	cfg := &htm.TemporalPoolerConfig{
		InputWidth: 8, InputHeight: 8,
		ColGridWidth: 4, ColGridHeight: 4,
		PctInputPerCol: 0.5, PctMinOverlap: 0.1, PctLocalActivity: 0.1,
		CellsPerCol: 1, SegActiveThreshold: 1,
		HardcodedSpatial:             false,
		FullDefaultSpatialPermanence: true,
		Seed:                         3,
	}
	r, err := NewRegion(cfg)
	require.NoError(t, err)

	for ci := range r.columns {
		require.NotEmpty(t, r.columns[ci].proximal.synapses, "trained columns must sample at least one input bit")
		for _, syn := range r.columns[ci].proximal.synapses {
			assert.Equal(t, 1.0, syn.Permanence(), "full-default policy seeds every proximal synapse at full permanence")
		}
	}
}

func TestInitTrained_LocalityBiasedPermanence_StaysClamped(t *testing.T) {
	cfg := &htm.TemporalPoolerConfig{
		InputWidth: 8, InputHeight: 8,
		ColGridWidth: 4, ColGridHeight: 4,
		PctInputPerCol: 0.5, PctMinOverlap: 0.1, PctLocalActivity: 0.1,
		CellsPerCol: 1, SegActiveThreshold: 1,
		HardcodedSpatial:             false,
		FullDefaultSpatialPermanence: false,
		Seed:                         11,
	}
	r, err := NewRegion(cfg)
	require.NoError(t, err)

	for ci := range r.columns {
		for _, syn := range r.columns[ci].proximal.synapses {
			p := syn.Permanence()
			assert.GreaterOrEqual(t, p, 0.0)
			assert.LessOrEqual(t, p, 1.0)
		}
	}
}

func TestLocalInputBits_ClipsToInputPlane(t *testing.T) {
	r := &Region{config: htm.TemporalPoolerConfig{InputWidth: 3, InputHeight: 3}}

	bits := r.localInputBits(0, 0, 1)

	for _, b := range bits {
		x, y := b%3, b/3
		assert.LessOrEqual(t, x, 1)
		assert.LessOrEqual(t, y, 1)
	}
	assert.Len(t, bits, 4, "a corner cell's 1-radius neighborhood is clipped to a 2x2 block")
}

func TestSampleInputBits_NeverExceedsRequestedCountOrCandidates(t *testing.T) {
	r := &Region{rng: rand.New(rand.NewSource(2))}
	candidates := []int{1, 2, 3, 4, 5}

	chosen := r.sampleInputBits(candidates, 3)
	assert.Len(t, chosen, 3)

	chosen = r.sampleInputBits(candidates, 99)
	assert.Len(t, chosen, len(candidates), "requesting more than available must clamp to all candidates")
}
