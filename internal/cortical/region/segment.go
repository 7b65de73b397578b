package region

// Segment is a dendrite segment: a bag of synapses with a single firing
// threshold, shared by both the proximal (one per column, spatial pooling)
// and distal (many per cell, temporal pooling) roles.
type Segment struct {
	synapses        []Synapse
	threshold       int
	predictionSteps int
	isSequence      bool

	isActive  bool
	wasActive bool

	nActiveConn     int
	nPrevActiveConn int
	nActiveAll      int
	nPrevActiveAll  int
}

func newSegment(threshold int) Segment {
	return Segment{threshold: threshold, predictionSteps: 1, isSequence: true}
}

// ProcessSegment recomputes each synapse's connected state against the
// current permanence, then recounts active-and-connected and active-total
// synapses and derives isActive from the threshold.
func (sg *Segment) ProcessSegment(r *Region) {
	nConn, nAll := 0, 0
	for i := range sg.synapses {
		syn := &sg.synapses[i]
		syn.connected = syn.permanence >= r.params.ConnectedPerm
		if syn.isSourceActive(r) {
			nAll++
			if syn.connected {
				nConn++
			}
		}
	}
	sg.nActiveConn = nConn
	sg.nActiveAll = nAll
	sg.isActive = nConn >= sg.threshold
}

// AdvanceTimeStep shifts this step's computed fields into the "previous"
// slot and resets the current slot, ready for the next ProcessSegment.
func (sg *Segment) AdvanceTimeStep() {
	sg.wasActive = sg.isActive
	sg.nPrevActiveConn = sg.nActiveConn
	sg.nPrevActiveAll = sg.nActiveAll

	sg.isActive = false
	sg.nActiveConn = 0
	sg.nActiveAll = 0

	for i := range sg.synapses {
		sg.synapses[i].wasConnected = sg.synapses[i].connected
	}
}

// SetPredictionSteps clamps k to [1, maxSteps] and marks the segment as a
// sequence segment iff k == 1.
func (sg *Segment) SetPredictionSteps(k, maxSteps int) {
	if k < 1 {
		k = 1
	}
	if k > maxSteps {
		k = maxSteps
	}
	sg.predictionSteps = k
	sg.isSequence = k == 1
}

// WasActiveFromLearning recounts synapses whose source was both active
// (connected, previous step) and itself learning at that step; true once
// that count reaches the segment's threshold.
func (sg *Segment) WasActiveFromLearning(r *Region) bool {
	count := 0
	for i := range sg.synapses {
		if sg.synapses[i].WasActiveFromLearning(r) {
			count++
			if count >= sg.threshold {
				return true
			}
		}
	}
	return false
}

// CreateSynapse appends a new synapse, preserving the index of every
// existing synapse (SegmentUpdate handles reference segments and synapses
// by index and relies on this).
func (sg *Segment) CreateSynapse(syn Synapse) int {
	sg.synapses = append(sg.synapses, syn)
	return len(sg.synapses) - 1
}
