package region

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/htm-project/cortical-region/internal/domain/htm"
)

// Region is a single HTM cortical region: a grid of columns, each holding
// CellsPerCol cells, driven one time step at a time through RunOnce. A
// Region owns every column, cell, segment, and synapse it contains —
// nothing escapes it by pointer, only by value or by the cellID/index
// handles Synapse and SegmentUpdate use internally.
type Region struct {
	params Params
	config htm.TemporalPoolerConfig

	columns []Column

	inputBuffer     []int
	prevInputBuffer []int

	colGridWidth, colGridHeight int

	minOverlap            int
	desiredLocalActivity  int
	inhibitionRadius      float64
	newSynapseCount       int

	spatialLearning  bool
	temporalLearning bool
	hardcodedSpatial bool

	// xSpace/ySpace are the input-space-per-column-grid-unit scale factors
	// used by trained-mode column placement and by averageReceptiveFieldRadius
	// to convert input-space synapse distances back into column-grid units.
	xSpace, ySpace float64

	iters int64

	// rng backs both reservoir-tail learning-cell sampling and (in trained
	// mode) init-time receptive-field sampling. rngMu guards it because
	// Parallel mode shards temporal pooling's per-column update queueing
	// across goroutines, and math/rand.Rand is not safe for concurrent use.
	rng   *rand.Rand
	rngMu sync.Mutex
}

func (r *Region) randIntn(n int) int {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.Intn(n)
}

func (r *Region) randNormFloat64() float64 {
	r.rngMu.Lock()
	defer r.rngMu.Unlock()
	return r.rng.NormFloat64()
}

// NewRegion validates cfg and constructs a Region: either a hardcoded
// identity mapping from input to columns (no proximal learning, one column
// per input bit) or a trained spatial pooler with randomly placed,
// locality-biased proximal receptive fields.
func NewRegion(cfg *htm.TemporalPoolerConfig) (*Region, error) {
	if cfg == nil {
		return nil, htm.NewRegionError(htm.RegionErrorConfiguration, "config must not be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	params := DefaultParams()
	params.SegActiveThreshold = cfg.SegActiveThreshold
	if cfg.PermanenceInc > 0 {
		params.PermanenceInc = cfg.PermanenceInc
	}
	if cfg.PermanenceDec > 0 {
		params.PermanenceDec = cfg.PermanenceDec
	}

	r := &Region{
		params:           params,
		config:           *cfg,
		inputBuffer:      make([]int, cfg.NumInputBits()),
		prevInputBuffer:  make([]int, cfg.NumInputBits()),
		colGridWidth:     cfg.ColGridWidth,
		colGridHeight:    cfg.ColGridHeight,
		newSynapseCount:  cfg.NewSynapseCount,
		spatialLearning:  cfg.SpatialLearning && !cfg.HardcodedSpatial,
		temporalLearning: cfg.TemporalLearning,
		hardcodedSpatial: cfg.HardcodedSpatial,
		rng:              rand.New(rand.NewSource(cfg.Seed)),
	}

	numCols := cfg.NumColumns()
	r.columns = make([]Column, numCols)
	for i := range r.columns {
		cx, cy := i%r.colGridWidth, i/r.colGridWidth
		r.columns[i] = newColumn(cx, cy, cfg.CellsPerCol, cfg.SegActiveThreshold)
		for ci := range r.columns[i].cells {
			r.columns[i].cells[ci].column = i
		}
	}

	if cfg.HardcodedSpatial {
		r.initHardcoded()
	} else {
		r.initTrained()
	}

	return r, nil
}

// SetInput loads the next input vector. It must be called before every
// RunOnce after the first; RunOnce consumes whatever is currently loaded.
func (r *Region) SetInput(bits []int) error {
	if len(bits) != len(r.inputBuffer) {
		return htm.NewRegionError(htm.RegionErrorInputShape,
			fmt.Sprintf("input length %d does not match region input length %d", len(bits), len(r.inputBuffer)))
	}
	copy(r.inputBuffer, bits)
	return nil
}

// RunOnce advances the region by exactly one time step: every column, cell,
// and segment advances its bookkeeping, spatial pooling selects the active
// columns for this step, temporal pooling selects active/learning/predicting
// cells and commits or discards queued segment updates, then the iteration
// counter increments.
func (r *Region) RunOnce() error {
	r.advance()
	if err := r.spatialPool(); err != nil {
		return err
	}
	r.temporalPool()
	r.iters++
	copy(r.prevInputBuffer, r.inputBuffer)
	return nil
}

func (r *Region) advance() {
	r.forEachColumn(func(i int) {
		col := &r.columns[i]
		col.proximal.AdvanceTimeStep()
		for ci := range col.cells {
			col.cells[ci].AdvanceTimeStep()
		}
	})
}

func (r *Region) spatialPool() error {
	if r.hardcodedSpatial {
		return r.spatialPoolHardcoded()
	}
	return r.spatialPoolTrained()
}

func (r *Region) spatialPoolHardcoded() error {
	if len(r.inputBuffer) != len(r.columns) {
		return htm.NewRegionError(htm.RegionErrorInputShape,
			fmt.Sprintf("hardcoded spatial pooling requires input length (%d) to equal column count (%d)",
				len(r.inputBuffer), len(r.columns)))
	}
	for i := range r.columns {
		r.columns[i].isActive = r.inputBuffer[i] != 0
	}
	return nil
}

func (r *Region) spatialPoolTrained() error {
	// Phase 1: overlap.
	r.forEachColumn(func(i int) {
		r.columns[i].proximal.ProcessSegment(r)
		r.columns[i].computeOverlap(r)
	})

	// Phase 2: inhibition.
	overlaps := make([]int, len(r.columns))
	for i := range r.columns {
		overlaps[i] = r.columns[i].overlap
	}
	r.forEachColumn(func(i int) {
		neighbors := r.neighbors(i)
		kth := r.kthScore(neighbors, overlaps, r.desiredLocalActivity)
		r.columns[i].isActive = overlaps[i] > 0 && overlaps[i] >= kth
	})

	// Phase 3: learning (permanence update + boosting), spatial-learning only.
	if r.spatialLearning {
		r.forEachColumn(func(i int) {
			if r.columns[i].isActive {
				r.columns[i].updatePermanences(r)
			}
		})
		r.forEachColumn(func(i int) {
			neighbors := r.neighbors(i)
			maxActiveDuty := 0.0
			for _, n := range neighbors {
				if r.columns[n].activeDutyCycle > maxActiveDuty {
					maxActiveDuty = r.columns[n].activeDutyCycle
				}
			}
			r.columns[i].performBoosting(r, maxActiveDuty)
		})
		r.inhibitionRadius = r.averageReceptiveFieldRadius()
	}
	return nil
}

// neighbors returns the column indices within the current inhibition
// radius of column i, inclusive on the low side and extended by one extra
// column on the high side before clipping to the grid.
func (r *Region) neighbors(i int) []int {
	cx := i % r.colGridWidth
	cy := i / r.colGridWidth
	rad := int(math.Ceil(r.inhibitionRadius))
	if rad < 0 {
		rad = 0
	}

	x0, x1 := cx-rad, cx+rad
	if x0 < 0 {
		x0 = 0
	}
	x1 = min(r.colGridWidth, x1+1)

	y0, y1 := cy-rad, cy+rad
	if y0 < 0 {
		y0 = 0
	}
	y1 = min(r.colGridHeight, y1+1)

	out := make([]int, 0, (x1-x0)*(y1-y0))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			out = append(out, y*r.colGridWidth+x)
		}
	}
	return out
}

func (r *Region) kthScore(neighbors []int, overlaps []int, k int) int {
	if len(neighbors) == 0 || k <= 0 {
		return 0
	}
	vals := make([]int, len(neighbors))
	for i, n := range neighbors {
		vals[i] = overlaps[n]
	}
	sort.Ints(vals)
	idx := len(vals) - k
	if idx < 0 {
		idx = 0
	}
	return vals[idx]
}

func (r *Region) averageReceptiveFieldRadius() float64 {
	total := 0.0
	count := 0
	for i := range r.columns {
		col := &r.columns[i]
		for j := range col.proximal.synapses {
			syn := &col.proximal.synapses[j]
			if !syn.connected {
				continue
			}
			ix := syn.inputBit % r.config.InputWidth
			iy := syn.inputBit / r.config.InputWidth
			dx := float64(ix-col.ix) / r.xSpace
			dy := float64(iy-col.iy) / r.ySpace
			total += math.Hypot(dx, dy)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// temporalPool runs the three-phase sequence-memory update: activation and
// learning-cell selection over active columns, segment processing and
// prediction (and update queueing) over every cell, then deferred update
// commit or discard.
func (r *Region) temporalPool() {
	r.temporalPhase1()
	r.temporalPhase2()
	r.temporalPhase3()
}

func (r *Region) temporalPhase1() {
	r.forEachColumn(func(ci int) {
		col := &r.columns[ci]
		if !col.isActive {
			return
		}

		bottomUpPredicted := false
		learningCellChosen := false

		for ii := range col.cells {
			cell := &col.cells[ii]
			if !cell.wasPredicted {
				continue
			}
			segIdx, found := cell.GetPreviousActiveSegment()
			if !found || !cell.segments[segIdx].isSequence {
				continue
			}
			bottomUpPredicted = true
			cell.isActive = true
			if cell.segments[segIdx].WasActiveFromLearning(r) {
				cell.isLearning = true
				learningCellChosen = true
			}
		}

		if !bottomUpPredicted {
			for ii := range col.cells {
				col.cells[ii].isActive = true
			}
		}

		if !learningCellChosen && r.temporalLearning {
			cellIdx, segIdx, found := col.getBestMatchingCell(r, 1, true)
			cell := &col.cells[cellIdx]
			cell.isLearning = true
			target := -1
			if found {
				target = segIdx
			}
			cell.QueueSegmentUpdate(r, target, true, true, 1)
		}
	})
}

func (r *Region) temporalPhase2() {
	r.forEachColumn(func(ci int) {
		col := &r.columns[ci]
		for ii := range col.cells {
			cell := &col.cells[ii]
			for si := range cell.segments {
				cell.segments[si].ProcessSegment(r)
			}
		}
	})

	r.forEachColumn(func(ci int) {
		col := &r.columns[ci]
		for ii := range col.cells {
			cell := &col.cells[ii]

			anyActive := false
			for si := range cell.segments {
				if !cell.segments[si].isActive {
					continue
				}
				anyActive = true
				if r.temporalLearning {
					cell.QueueSegmentUpdate(r, si, false, false, 1)
				}
			}
			if anyActive {
				cell.SetPredicting(true, r.params.MaxTimeSteps)
			}

			if cell.isPredicting && r.temporalLearning {
				k := cell.predictionSteps + 1
				segIdx, found := cell.GetBestMatchingSegment(k, true, r.params.MinSynapsesPerSegmentThreshold)
				target := -1
				if found {
					target = segIdx
				}
				cell.QueueSegmentUpdate(r, target, true, true, k)
			}
		}
	})
}

func (r *Region) temporalPhase3() {
	if !r.temporalLearning {
		r.forEachColumn(func(ci int) {
			col := &r.columns[ci]
			for ii := range col.cells {
				col.cells[ii].DiscardPendingUpdates()
			}
		})
		return
	}
	r.forEachColumn(func(ci int) {
		col := &r.columns[ci]
		for ii := range col.cells {
			cell := &col.cells[ii]
			switch {
			case cell.isLearning:
				cell.ApplyPendingUpdates(r, true)
			case !cell.isPredicting && cell.wasPredicted:
				cell.ApplyPendingUpdates(r, false)
			default:
				cell.DiscardPendingUpdates()
			}
		}
	})
}

// eligibleLearningCells lists cells outside excludeColumn that were
// learning at the previous step and are not already a source of any
// synapse on the update's target segment.
func (r *Region) eligibleLearningCells(excludeColumn int, existingSources map[cellID]bool) []cellID {
	var out []cellID
	for ci := range r.columns {
		if ci == excludeColumn {
			continue
		}
		col := &r.columns[ci]
		for idx := range col.cells {
			if !col.cells[idx].wasLearning {
				continue
			}
			id := cellID{Column: ci, Index: idx}
			if existingSources[id] {
				continue
			}
			out = append(out, id)
		}
	}
	return out
}

// sampleCells draws up to m elements from candidates without replacement
// using a Fisher-Yates prefix shuffle against the region's single seeded
// PRNG. With Parallel off, runs with the same seed and input sequence make
// the same learning-cell choices; with Parallel on, the order in which
// columns draw from the shared PRNG follows goroutine scheduling, so the
// choices can differ between runs.
func (r *Region) sampleCells(candidates []cellID, m int) []cellID {
	n := len(candidates)
	if m > n {
		m = n
	}
	if m <= 0 {
		return nil
	}
	pool := make([]cellID, n)
	copy(pool, candidates)
	for i := 0; i < m; i++ {
		j := i + r.randIntn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:m]
}

// ColumnActive reports whether column i is active at the current step.
func (r *Region) ColumnActive(i int) bool { return r.columns[i].isActive }

// ActiveColumns returns the indices of every column active at the current step.
func (r *Region) ActiveColumns() []int {
	var out []int
	for i := range r.columns {
		if r.columns[i].isActive {
			out = append(out, i)
		}
	}
	return out
}

// PredictedColumns returns the indices of every column with at least one
// predicting cell at the current step.
func (r *Region) PredictedColumns() []int {
	var out []int
	for i := range r.columns {
		if r.ColumnPredictionSteps(i) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// NumColumns returns the column count.
func (r *Region) NumColumns() int { return len(r.columns) }

// CellsPerColumn returns the per-column cell count.
func (r *Region) CellsPerColumn() int {
	if len(r.columns) == 0 {
		return 0
	}
	return len(r.columns[0].cells)
}

// CellActive reports whether cell (col, idx) is active at the current step.
func (r *Region) CellActive(col, idx int) bool { return r.columns[col].cells[idx].isActive }

// CellPredicting reports whether cell (col, idx) is predicting at the
// current step.
func (r *Region) CellPredicting(col, idx int) bool { return r.columns[col].cells[idx].isPredicting }

// CellLearning reports whether cell (col, idx) is a learning cell at the
// current step.
func (r *Region) CellLearning(col, idx int) bool { return r.columns[col].cells[idx].isLearning }

// ColumnPredictionSteps returns the nearest (smallest) predictionSteps
// among this column's currently predicting cells, or 0 if none predict.
func (r *Region) ColumnPredictionSteps(col int) int {
	best := 0
	for i := range r.columns[col].cells {
		c := &r.columns[col].cells[i]
		if !c.isPredicting {
			continue
		}
		if best == 0 || c.predictionSteps < best {
			best = c.predictionSteps
		}
	}
	return best
}

// NumSegments counts distal segments across the region targeting
// prediction depth k, or every distal segment if k == 0.
func (r *Region) NumSegments(k int) int {
	count := 0
	for ci := range r.columns {
		for i := range r.columns[ci].cells {
			for _, sg := range r.columns[ci].cells[i].segments {
				if k == 0 || sg.predictionSteps == k {
					count++
				}
			}
		}
	}
	return count
}

// Iterations returns the number of completed RunOnce calls.
func (r *Region) Iterations() int64 { return r.iters }

// InhibitionRadius returns the current (trained-mode) inhibition radius.
func (r *Region) InhibitionRadius() float64 { return r.inhibitionRadius }

// LastAccuracy reports activation accuracy (fraction of active columns that
// were correctly predicted) and prediction accuracy (fraction of predicted
// columns that went on to activate), both evaluated over the step just run.
func (r *Region) LastAccuracy() (activation, prediction float64) {
	var active, predicted, both int
	for ci := range r.columns {
		col := &r.columns[ci]
		wasPredictedHere := false
		for ii := range col.cells {
			cell := &col.cells[ii]
			if !cell.wasPredicted {
				continue
			}
			segIdx, found := cell.GetPreviousActiveSegment()
			if found && cell.segments[segIdx].wasActive && cell.segments[segIdx].isSequence {
				wasPredictedHere = true
			}
		}
		if col.isActive {
			active++
		}
		if wasPredictedHere {
			predicted++
		}
		if col.isActive && wasPredictedHere {
			both++
		}
	}
	if active > 0 {
		activation = float64(both) / float64(active)
	}
	if predicted > 0 {
		prediction = float64(both) / float64(predicted)
	}
	return activation, prediction
}
