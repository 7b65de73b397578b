package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/htm-project/cortical-region/internal/domain/htm"
)

func hardcodedTwoColumnConfig() *htm.TemporalPoolerConfig {
	return &htm.TemporalPoolerConfig{
		InputWidth:         2,
		InputHeight:        1,
		ColGridWidth:       2,
		ColGridHeight:      1,
		CellsPerCol:        1,
		SegActiveThreshold: 1,
		NewSynapseCount:    1,
		SpatialLearning:    false,
		TemporalLearning:   true,
		HardcodedSpatial:   true,
		Seed:               7,
		PermanenceInc:      0.015,
		PermanenceDec:      0.005,
	}
}

func TestNewRegion_RejectsNilConfig(t *testing.T) {
	_, err := NewRegion(nil)
	require.Error(t, err)
}

func TestNewRegion_RejectsInvalidConfig(t *testing.T) {
	cfg := hardcodedTwoColumnConfig()
	cfg.ColGridWidth = 3 // now mismatches InputWidth*InputHeight under hardcoded mode
	_, err := NewRegion(cfg)
	require.Error(t, err)
}

func TestRegion_SetInput_RejectsLengthMismatch(t *testing.T) {
	r, err := NewRegion(hardcodedTwoColumnConfig())
	require.NoError(t, err)

	err = r.SetInput([]int{1, 0, 1})
	require.Error(t, err)

	var regionErr *htm.RegionError
	require.ErrorAs(t, err, &regionErr)
	assert.Equal(t, htm.RegionErrorInputShape, regionErr.ErrorType)
}

func TestRegion_HardcodedSpatial_DirectColumnMapping(t *testing.T) {
	r, err := NewRegion(hardcodedTwoColumnConfig())
	require.NoError(t, err)

	require.NoError(t, r.SetInput([]int{1, 0}))
	require.NoError(t, r.RunOnce())

	assert.Equal(t, []int{0}, r.ActiveColumns())
	assert.Equal(t, int64(1), r.Iterations())
}

// TestRegion_LearnsTwoColumnSequence walks a tiny two-column region through
// an A,B,A,B input sequence with one cell per column and a single required
// synapse, and checks that by the time A repeats, the region predicts B,
// and that the subsequent B is reported as both active and correctly
// predicted.
func TestRegion_LearnsTwoColumnSequence(t *testing.T) {
	r, err := NewRegion(hardcodedTwoColumnConfig())
	require.NoError(t, err)

	colA := []int{1, 0}
	colB := []int{0, 1}

	require.NoError(t, r.SetInput(colA))
	require.NoError(t, r.RunOnce()) // step 1: A

	require.NoError(t, r.SetInput(colB))
	require.NoError(t, r.RunOnce()) // step 2: B

	require.NoError(t, r.SetInput(colA))
	require.NoError(t, r.RunOnce()) // step 3: A again

	assert.Contains(t, r.PredictedColumns(), 1, "after A repeats, column B must be predicted")

	require.NoError(t, r.SetInput(colB))
	require.NoError(t, r.RunOnce()) // step 4: B, as predicted

	assert.Equal(t, []int{1}, r.ActiveColumns())
	activation, prediction := r.LastAccuracy()
	assert.Equal(t, 1.0, activation)
	assert.Equal(t, 1.0, prediction)

	assert.Greater(t, r.NumSegments(0), 0, "sequence learning must have grown at least one distal segment")
}

func TestRegion_Deterministic_SameSeedSameTrajectory(t *testing.T) {
	cfg := &htm.TemporalPoolerConfig{
		InputWidth:         6,
		InputHeight:        1,
		ColGridWidth:       4,
		ColGridHeight:      1,
		PctInputPerCol:     0.6,
		PctMinOverlap:      0.1,
		PctLocalActivity:   0.2,
		CellsPerCol:        2,
		SegActiveThreshold: 2,
		NewSynapseCount:    3,
		SpatialLearning:    true,
		TemporalLearning:   true,
		HardcodedSpatial:   false,
		Seed:               99,
		PermanenceInc:      0.015,
		PermanenceDec:      0.005,
	}

	r1, err := NewRegion(cfg)
	require.NoError(t, err)
	r2, err := NewRegion(cfg)
	require.NoError(t, err)

	inputs := [][]int{
		{1, 1, 0, 0, 0, 0},
		{0, 0, 1, 1, 0, 0},
		{0, 0, 0, 0, 1, 1},
		{1, 1, 0, 0, 0, 0},
	}

	for _, in := range inputs {
		require.NoError(t, r1.SetInput(in))
		require.NoError(t, r1.RunOnce())
		require.NoError(t, r2.SetInput(in))
		require.NoError(t, r2.RunOnce())

		assert.Equal(t, r1.ActiveColumns(), r2.ActiveColumns())
		assert.Equal(t, r1.PredictedColumns(), r2.PredictedColumns())
		assert.Equal(t, r1.Metrics(), r2.Metrics())
	}
}

func TestRegion_Phase3_LeavesNoPendingUpdatesBehind(t *testing.T) {
	r, err := NewRegion(hardcodedTwoColumnConfig())
	require.NoError(t, err)

	require.NoError(t, r.SetInput([]int{1, 0}))
	require.NoError(t, r.RunOnce())
	require.NoError(t, r.SetInput([]int{0, 1}))
	require.NoError(t, r.RunOnce())

	for ci := range r.columns {
		for ii := range r.columns[ci].cells {
			assert.Empty(t, r.columns[ci].cells[ii].pendingUpdates,
				"phase 3 must apply or discard every queued update before RunOnce returns")
		}
	}
}

func TestRegion_TemporalLearningDisabled_NeverGrowsSegments(t *testing.T) {
	cfg := hardcodedTwoColumnConfig()
	cfg.TemporalLearning = false
	r, err := NewRegion(cfg)
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		in := []int{1, 0}
		if i%2 == 1 {
			in = []int{0, 1}
		}
		require.NoError(t, r.SetInput(in))
		require.NoError(t, r.RunOnce())
	}

	assert.Equal(t, 0, r.NumSegments(0), "no segments should grow while temporal learning is off")
}

// TestRegion_Parallel_MatchesSequentialTrajectory uses NewSynapseCount: 0 so
// that neither trajectory ever draws from the region's shared PRNG — with
// sampling in play, Parallel mode's goroutine scheduling order would make
// RNG draw order (and so the exact synapses sampled) nondeterministic
// between runs even though both trajectories stay race-free.
func TestRegion_Parallel_MatchesSequentialTrajectory(t *testing.T) {
	baseCfg := &htm.TemporalPoolerConfig{
		InputWidth:         6,
		InputHeight:        1,
		ColGridWidth:       6,
		ColGridHeight:      1,
		CellsPerCol:        2,
		SegActiveThreshold: 1,
		NewSynapseCount:    0,
		SpatialLearning:    false,
		TemporalLearning:   true,
		HardcodedSpatial:   true,
		Seed:               5,
		PermanenceInc:      0.015,
		PermanenceDec:      0.005,
	}
	seqCfg := *baseCfg
	parCfg := *baseCfg
	parCfg.Parallel = true

	seq, err := NewRegion(&seqCfg)
	require.NoError(t, err)
	par, err := NewRegion(&parCfg)
	require.NoError(t, err)

	inputs := [][]int{
		{1, 0, 0, 0, 0, 0},
		{0, 1, 0, 0, 0, 0},
		{0, 0, 1, 0, 0, 0},
		{1, 0, 0, 0, 0, 0},
		{0, 1, 0, 0, 0, 0},
	}

	for _, in := range inputs {
		require.NoError(t, seq.SetInput(in))
		require.NoError(t, seq.RunOnce())
		require.NoError(t, par.SetInput(in))
		require.NoError(t, par.RunOnce())

		assert.Equal(t, seq.ActiveColumns(), par.ActiveColumns())
		assert.Equal(t, seq.PredictedColumns(), par.PredictedColumns())
	}
}
