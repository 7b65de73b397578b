package region

import "math"

// Column is a fixed-size array of cells sharing one proximal segment into
// the input space, plus the overlap/boost/duty-cycle bookkeeping spatial
// pooling maintains per column.
type Column struct {
	cells    []Cell
	proximal Segment

	isActive bool
	overlap  int
	boost    float64

	activeDutyCycle  float64
	overlapDutyCycle float64

	// Position of this column's receptive-field center in input space
	// (trained mode) or on the identity-mapped input grid (hardcoded mode).
	ix, iy int
	// Position of this column within the column grid.
	cx, cy int
}

func newColumn(cx, cy, cellsPerCol, segThreshold int) Column {
	cells := make([]Cell, cellsPerCol)
	for i := range cells {
		cells[i] = newCell(0, i) // column index patched by caller once known
	}
	return Column{
		cells:    cells,
		proximal: newSegment(segThreshold),
		boost:    1.0,
		cx:       cx,
		cy:       cy,
	}
}

// computeOverlap derives the column's overlap score from its proximal
// segment's connected-active synapse count, floored to zero below the
// region's minimum overlap and otherwise scaled by the column's boost.
func (col *Column) computeOverlap(r *Region) {
	n := col.proximal.nActiveConn
	if n < r.minOverlap {
		col.overlap = 0
		return
	}
	col.overlap = int(math.Floor(float64(n) * col.boost))
}

// updatePermanences reinforces the proximal segment of an active column:
// synapses whose input bit is currently active are strengthened, all
// others are weakened.
func (col *Column) updatePermanences(r *Region) {
	for i := range col.proximal.synapses {
		syn := &col.proximal.synapses[i]
		if syn.isSourceActive(r) {
			syn.Increase(r.params.PermanenceInc)
		} else {
			syn.Decrease(r.params.PermanenceDec)
		}
	}
}

// increasePermanences strengthens every proximal synapse unconditionally —
// used to rescue columns whose overlap duty cycle has collapsed.
func (col *Column) increasePermanences(amount float64) {
	for i := range col.proximal.synapses {
		col.proximal.synapses[i].Increase(amount)
	}
}

func (col *Column) updateActiveDutyCycle(alpha float64) {
	ind := 0.0
	if col.isActive {
		ind = 1.0
	}
	col.activeDutyCycle = (1-alpha)*col.activeDutyCycle + alpha*ind
}

func (col *Column) updateOverlapDutyCycle(alpha float64, minOverlap int) {
	ind := 0.0
	if col.overlap > minOverlap {
		ind = 1.0
	}
	col.overlapDutyCycle = (1-alpha)*col.overlapDutyCycle + alpha*ind
}

// boostFunction derives the next boost value from the column's active duty
// cycle relative to its neighborhood's minimum acceptable duty cycle.
func (col *Column) boostFunction(minDutyCycle float64) float64 {
	switch {
	case col.activeDutyCycle > minDutyCycle:
		return 1.0
	case col.activeDutyCycle == 0:
		return col.boost * 1.05
	default:
		return minDutyCycle / col.activeDutyCycle
	}
}

// performBoosting runs the full per-step boost/duty-cycle update for a
// column, given the maximum active duty cycle among its inhibition
// neighbors.
func (col *Column) performBoosting(r *Region, neighborMaxActiveDuty float64) {
	minDutyCycle := 0.01 * neighborMaxActiveDuty

	col.updateActiveDutyCycle(r.params.EMAAlpha)
	col.boost = col.boostFunction(minDutyCycle)

	col.updateOverlapDutyCycle(r.params.EMAAlpha, r.minOverlap)
	if col.overlapDutyCycle < minDutyCycle {
		col.increasePermanences(0.1 * r.params.ConnectedPerm)
	}
}

// getBestMatchingCell finds the cell/segment pair in this column with the
// strongest match for prediction depth k (see Cell.GetBestMatchingSegment),
// falling back to the cell with the fewest segments (ties to lowest index)
// when no segment qualifies.
func (col *Column) getBestMatchingCell(r *Region, k int, previous bool) (cellIdx, segIdx int, found bool) {
	bestCell, bestSeg := -1, -1
	bestCount := r.params.MinSynapsesPerSegmentThreshold
	for ci := range col.cells {
		si, ok := col.cells[ci].GetBestMatchingSegment(k, previous, r.params.MinSynapsesPerSegmentThreshold)
		if !ok {
			continue
		}
		sg := &col.cells[ci].segments[si]
		count := sg.nActiveAll
		if previous {
			count = sg.nPrevActiveAll
		}
		if count > bestCount {
			bestCount = count
			bestCell = ci
			bestSeg = si
		}
	}
	if bestCell != -1 {
		return bestCell, bestSeg, true
	}

	fewest := 0
	fewestCount := len(col.cells[0].segments)
	for ci := 1; ci < len(col.cells); ci++ {
		if len(col.cells[ci].segments) < fewestCount {
			fewestCount = len(col.cells[ci].segments)
			fewest = ci
		}
	}
	return fewest, -1, false
}
