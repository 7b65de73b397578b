// Package region implements the HTM cortical-region core: the synapse,
// segment, cell, and column graph that carries both spatial pooling
// (sparse column activation over an input vector) and temporal pooling
// (sequence memory over cell activations) for a single region.
package region

// Params holds the region's global learning constants. These are fixed
// biological-style defaults; only PermanenceInc/PermanenceDec are commonly
// tuned per deployment, which TemporalPoolerConfig exposes.
type Params struct {
	ConnectedPerm float64
	InitialPermanence float64
	PermanenceInc float64
	PermanenceDec float64
	EMAAlpha      float64
	MaxTimeSteps  int

	MinSynapsesPerSegmentThreshold int
	SegActiveThreshold             int
}

// DefaultParams returns the canonical permanence/duty-cycle constants.
func DefaultParams() Params {
	return Params{
		ConnectedPerm:                   0.20,
		InitialPermanence:               0.30,
		PermanenceInc:                   0.015,
		PermanenceDec:                   0.005,
		EMAAlpha:                        0.005,
		MaxTimeSteps:                    10,
		MinSynapsesPerSegmentThreshold:  1,
		SegActiveThreshold:              1,
	}
}
