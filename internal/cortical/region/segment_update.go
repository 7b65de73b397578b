package region

// SegmentUpdate is a deferred reinforcement decision captured during
// temporal pooling's activation/prediction phase and committed (or
// discarded) only once the phase's learning outcome is known. It never
// stores a raw segment pointer — only a segment index into the owning
// cell's segments slice (the cell itself is passed to Apply) — so it stays
// valid when an update applied before it appends a new segment to that
// slice.
type SegmentUpdate struct {
	segIdx int // index into the owning cell's segments slice; -1 means "new segment"

	// capturedSynapses freezes, at construction time, the indices of the
	// synapses that were both active and connected on the target segment —
	// the set to reinforce on a positive outcome.
	capturedSynapses []int

	// learningCells holds the cells chosen (by reservoir-tail sampling) to
	// become new synapse sources if this update is applied positively with
	// addNewSynapses set.
	learningCells []cellID

	addNewSynapses     bool
	numPredictionSteps int
}

// newSegmentUpdate builds a SegmentUpdate for cell's segment segIdx
// (or a brand-new segment, if segIdx < 0). previous selects whether the
// "active and connected" snapshot is read from the current or prior step;
// addNew requests sampling replacement/additional synapse sources.
func newSegmentUpdate(r *Region, cell *Cell, segIdx int, previous, addNew bool, numPredictionSteps int) SegmentUpdate {
	upd := SegmentUpdate{
		segIdx:             segIdx,
		addNewSynapses:     addNew,
		numPredictionSteps: numPredictionSteps,
	}
	if upd.numPredictionSteps < 1 {
		upd.numPredictionSteps = 1
	}

	existingSources := make(map[cellID]bool)
	if segIdx >= 0 {
		sg := &cell.segments[segIdx]
		for i := range sg.synapses {
			syn := &sg.synapses[i]
			var active, connected bool
			if previous {
				active = syn.isSourceWasActive(r)
				connected = syn.wasConnected
			} else {
				active = syn.isSourceActive(r)
				connected = syn.connected
			}
			if active && connected {
				upd.capturedSynapses = append(upd.capturedSynapses, i)
			}
			if syn.kind == sourceCell {
				existingSources[syn.source] = true
			}
		}
	}

	if addNew {
		need := r.newSynapseCount - len(upd.capturedSynapses)
		if need > 0 {
			candidates := r.eligibleLearningCells(cell.column, existingSources)
			upd.learningCells = r.sampleCells(candidates, need)
		}
	}

	return upd
}

// Apply commits the update against the owning cell. On a positive outcome,
// captured synapses are reinforced, everything else on the target segment
// is weakened, and (if requested) new synapses are grown from the sampled
// learning cells — creating the segment itself first if segIdx was -1. On
// a negative outcome only the captured synapses are punished; no growth
// happens regardless of addNewSynapses.
func (u *SegmentUpdate) Apply(r *Region, cell *Cell, positive bool) {
	captured := make(map[int]bool, len(u.capturedSynapses))
	for _, idx := range u.capturedSynapses {
		captured[idx] = true
	}

	if u.segIdx >= 0 {
		sg := &cell.segments[u.segIdx]
		if positive {
			for i := range sg.synapses {
				if captured[i] {
					sg.synapses[i].Increase(r.params.PermanenceInc)
				} else {
					sg.synapses[i].Decrease(r.params.PermanenceDec)
				}
			}
		} else {
			for idx := range captured {
				sg.synapses[idx].Decrease(r.params.PermanenceDec)
			}
		}
	}

	if !positive || !u.addNewSynapses {
		return
	}

	if u.segIdx < 0 {
		newSeg := newSegment(r.params.SegActiveThreshold)
		for _, lc := range u.learningCells {
			newSeg.CreateSynapse(newDistalSynapse(lc, r.params.InitialPermanence))
		}
		newSeg.SetPredictionSteps(u.numPredictionSteps, r.params.MaxTimeSteps)
		cell.segments = append(cell.segments, newSeg)
		return
	}

	sg := &cell.segments[u.segIdx]
	for _, lc := range u.learningCells {
		sg.CreateSynapse(newDistalSynapse(lc, r.params.InitialPermanence))
	}
}
