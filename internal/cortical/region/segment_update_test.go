package region

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSyncRegionForUpdates(cellsPerColumn int) *Region {
	r := &Region{params: newTestParams(), newSynapseCount: 1, rng: rand.New(rand.NewSource(1))}
	r.columns = make([]Column, 2)
	for ci := range r.columns {
		r.columns[ci] = newColumn(ci, 0, cellsPerColumn, 1)
		for ii := range r.columns[ci].cells {
			r.columns[ci].cells[ii].column = ci
		}
	}
	return r
}

func TestSegmentUpdate_ExcludesOwnColumnFromCandidates(t *testing.T) {
	r := newSyncRegionForUpdates(1)
	r.columns[0].cells[0].wasLearning = true // same column as the update's target
	r.columns[1].cells[0].wasLearning = true // eligible, different column

	cell := &r.columns[0].cells[0]
	upd := newSegmentUpdate(r, cell, -1, true, true, 1)

	require.Len(t, upd.learningCells, 1)
	assert.Equal(t, cellID{Column: 1, Index: 0}, upd.learningCells[0])
}

func TestSegmentUpdate_CapturesActiveConnectedSynapses(t *testing.T) {
	r := newSyncRegionForUpdates(1)
	r.columns[1].cells[0].isActive = true

	cell := &r.columns[0].cells[0]
	sg := newSegment(1)
	syn := newDistalSynapse(cellID{Column: 1, Index: 0}, 0.30)
	syn.connected = true
	sg.CreateSynapse(syn)
	cell.segments = []Segment{sg}

	upd := newSegmentUpdate(r, cell, 0, false, false, 1)

	require.Len(t, upd.capturedSynapses, 1)
	assert.Equal(t, 0, upd.capturedSynapses[0])
}

func TestSegmentUpdate_Apply_PositiveReinforcesCapturedAndPunishesRest(t *testing.T) {
	r := newSyncRegionForUpdates(1)
	cell := &r.columns[0].cells[0]
	sg := newSegment(1)
	sg.CreateSynapse(newDistalSynapse(cellID{Column: 1, Index: 0}, 0.30)) // captured
	sg.CreateSynapse(newDistalSynapse(cellID{Column: 1, Index: 0}, 0.30)) // not captured
	cell.segments = []Segment{sg}

	upd := SegmentUpdate{segIdx: 0, capturedSynapses: []int{0}}
	upd.Apply(r, cell, true)

	assert.InDelta(t, 0.30+r.params.PermanenceInc, cell.segments[0].synapses[0].Permanence(), 1e-9)
	assert.InDelta(t, 0.30-r.params.PermanenceDec, cell.segments[0].synapses[1].Permanence(), 1e-9)
}

func TestSegmentUpdate_Apply_NegativeOnlyPunishesCaptured(t *testing.T) {
	r := newSyncRegionForUpdates(1)
	cell := &r.columns[0].cells[0]
	sg := newSegment(1)
	sg.CreateSynapse(newDistalSynapse(cellID{Column: 1, Index: 0}, 0.30))
	sg.CreateSynapse(newDistalSynapse(cellID{Column: 1, Index: 0}, 0.30))
	cell.segments = []Segment{sg}

	upd := SegmentUpdate{segIdx: 0, capturedSynapses: []int{0}, addNewSynapses: true, learningCells: []cellID{{Column: 1, Index: 0}}}
	upd.Apply(r, cell, false)

	assert.InDelta(t, 0.30-r.params.PermanenceDec, cell.segments[0].synapses[0].Permanence(), 1e-9)
	assert.InDelta(t, 0.30, cell.segments[0].synapses[1].Permanence(), 1e-9, "uncaptured synapses are untouched on a negative outcome")
	assert.Len(t, cell.segments[0].synapses, 2, "a negative outcome must never grow new synapses")
}

func TestSegmentUpdate_Apply_PositiveGrowsNewSegmentWhenSegIdxIsNegative(t *testing.T) {
	r := newSyncRegionForUpdates(1)
	cell := &r.columns[0].cells[0]
	require.Empty(t, cell.segments)

	upd := SegmentUpdate{segIdx: -1, addNewSynapses: true, learningCells: []cellID{{Column: 1, Index: 0}}, numPredictionSteps: 2}
	upd.Apply(r, cell, true)

	require.Len(t, cell.segments, 1)
	assert.Len(t, cell.segments[0].synapses, 1)
	assert.Equal(t, 2, cell.segments[0].predictionSteps)
	assert.False(t, cell.segments[0].isSequence)
}
