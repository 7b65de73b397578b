package region

import (
	"fmt"

	"github.com/htm-project/cortical-region/internal/cortical/spatial"
	"github.com/htm-project/cortical-region/internal/domain/htm"
)

// DelegatedSpatialPooler drives a Region's sequence-memory graph from the
// full spatial-pooler engine (overlap + inhibition + boosting + duty
// cycles, gonum-backed) instead of the region's own lightweight trained
// pooler. The region underneath is constructed in hardcoded-spatial mode
// (one column per input bit, no proximal learning of its own) and simply
// receives whichever columns the delegated pooler selected as active for
// this step; temporal pooling then runs exactly as it would standalone.
//
// This is how the existing column-overlap/inhibition/boosting machinery
// stays in service rather than being duplicated by Region's own trained
// mode: callers who want the richer spatial pooler pick this bridge,
// callers happy with Region's built-in trained pooler construct a Region
// directly with HardcodedSpatial=false.
type DelegatedSpatialPooler struct {
	pooler *spatial.SpatialPooler
	region *Region
	nextID int64
}

// NewDelegatedSpatialPooler builds a bridge from a spatial-pooler config
// (column_count must equal the temporal config's column-grid area) and a
// temporal-pooler config (which must have HardcodedSpatial set).
func NewDelegatedSpatialPooler(spCfg *htm.SpatialPoolerConfig, regionCfg *htm.TemporalPoolerConfig) (*DelegatedSpatialPooler, error) {
	if !regionCfg.HardcodedSpatial {
		return nil, htm.NewRegionConfigError("hardcoded_spatial", "delegated spatial pooling requires the region to run in hardcoded mode")
	}
	if spCfg.ColumnCount != regionCfg.NumColumns() {
		return nil, htm.NewRegionConfigError("column_count", fmt.Sprintf(
			"spatial pooler column_count (%d) must equal region column grid area (%d)",
			spCfg.ColumnCount, regionCfg.NumColumns()))
	}

	sp, err := spatial.NewSpatialPooler(spCfg)
	if err != nil {
		return nil, fmt.Errorf("delegated spatial pooler: %w", err)
	}
	r, err := NewRegion(regionCfg)
	if err != nil {
		return nil, fmt.Errorf("delegated spatial pooler: %w", err)
	}

	return &DelegatedSpatialPooler{pooler: sp, region: r}, nil
}

// RunOnce runs one full step: the delegated spatial pooler selects active
// columns from the raw encoder bits, those columns become this step's
// region input, and temporal pooling runs on top of them.
func (d *DelegatedSpatialPooler) RunOnce(encoderWidth int, activeBits []int, learn bool) (*htm.PoolingResult, error) {
	d.nextID++
	input := &htm.PoolingInput{
		EncoderOutput: htm.EncoderOutput{
			Width:      encoderWidth,
			ActiveBits: activeBits,
			Sparsity:   float64(len(activeBits)) / float64(encoderWidth),
		},
		InputWidth:      encoderWidth,
		InputID:         fmt.Sprintf("delegated-%d", d.nextID),
		LearningEnabled: learn,
	}

	result, err := d.pooler.Process(input)
	if err != nil {
		return nil, fmt.Errorf("delegated spatial pooler: process: %w", err)
	}

	columnBits := make([]int, d.region.NumColumns())
	for _, col := range result.ActiveColumns {
		if col >= 0 && col < len(columnBits) {
			columnBits[col] = 1
		}
	}
	if err := d.region.SetInput(columnBits); err != nil {
		return nil, fmt.Errorf("delegated spatial pooler: %w", err)
	}
	if err := d.region.RunOnce(); err != nil {
		return nil, fmt.Errorf("delegated spatial pooler: %w", err)
	}

	return result, nil
}

// Region exposes the underlying region for inspection (cell/column state,
// metrics, accuracy) after a RunOnce call.
func (d *DelegatedSpatialPooler) Region() *Region { return d.region }
