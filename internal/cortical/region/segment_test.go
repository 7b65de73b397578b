package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestParams() Params {
	return Params{
		ConnectedPerm:                  0.20,
		InitialPermanence:              0.30,
		PermanenceInc:                  0.015,
		PermanenceDec:                  0.005,
		EMAAlpha:                       0.005,
		MaxTimeSteps:                   10,
		MinSynapsesPerSegmentThreshold: 1,
		SegActiveThreshold:             2,
	}
}

func TestSegment_ProcessSegment_CountsOnlyConnectedActive(t *testing.T) {
	r := &Region{
		params:      newTestParams(),
		inputBuffer: []int{1, 1, 0},
	}
	sg := newSegment(2)
	sg.CreateSynapse(newProximalSynapse(0, 0.30)) // connected, active
	sg.CreateSynapse(newProximalSynapse(1, 0.05)) // unconnected, active
	sg.CreateSynapse(newProximalSynapse(2, 0.30)) // connected, inactive

	sg.ProcessSegment(r)

	assert.Equal(t, 1, sg.nActiveConn, "only the connected+active synapse counts toward nActiveConn")
	assert.Equal(t, 2, sg.nActiveAll, "both active synapses count toward nActiveAll regardless of connection")
	assert.False(t, sg.isActive, "one connected-active synapse is below the threshold of 2")

	sg.synapses[1].Increase(0.20) // now 0.25, connected
	sg.ProcessSegment(r)
	assert.Equal(t, 2, sg.nActiveConn)
	assert.True(t, sg.isActive)
}

func TestSegment_AdvanceTimeStep_ShiftsAndResets(t *testing.T) {
	sg := newSegment(1)
	sg.CreateSynapse(newProximalSynapse(0, 0.30))
	sg.isActive = true
	sg.nActiveConn = 3
	sg.nActiveAll = 4
	sg.synapses[0].connected = true

	sg.AdvanceTimeStep()

	assert.True(t, sg.wasActive)
	assert.Equal(t, 3, sg.nPrevActiveConn)
	assert.Equal(t, 4, sg.nPrevActiveAll)
	assert.False(t, sg.isActive)
	assert.Equal(t, 0, sg.nActiveConn)
	assert.Equal(t, 0, sg.nActiveAll)
	assert.True(t, sg.synapses[0].wasConnected, "connected state must be snapshotted before the next ProcessSegment")
}

func TestSegment_SetPredictionSteps_ClampsAndMarksSequence(t *testing.T) {
	sg := newSegment(1)

	sg.SetPredictionSteps(0, 10)
	assert.Equal(t, 1, sg.predictionSteps)
	assert.True(t, sg.isSequence)

	sg.SetPredictionSteps(3, 10)
	assert.Equal(t, 3, sg.predictionSteps)
	assert.False(t, sg.isSequence)

	sg.SetPredictionSteps(25, 10)
	assert.Equal(t, 10, sg.predictionSteps)
}

func TestSegment_WasActiveFromLearning_ReachesThreshold(t *testing.T) {
	r := &Region{
		columns: []Column{
			{cells: []Cell{
				{wasActive: true, wasLearning: true},
				{wasActive: true, wasLearning: true},
			}},
		},
	}
	sg := newSegment(2)
	sg.CreateSynapse(newDistalSynapse(cellID{Column: 0, Index: 0}, 0.30))
	sg.CreateSynapse(newDistalSynapse(cellID{Column: 0, Index: 1}, 0.30))
	for i := range sg.synapses {
		sg.synapses[i].wasConnected = true
	}

	assert.True(t, sg.WasActiveFromLearning(r))

	r.columns[0].cells[1].wasLearning = false
	assert.False(t, sg.WasActiveFromLearning(r), "only one of two required sources was learning")
}
