package region

import (
	"gonum.org/v1/gonum/stat"

	"github.com/htm-project/cortical-region/internal/domain/htm"
)

// Metrics summarizes the region's state as of the most recent RunOnce:
// column/cell census, overlap and boost distributions, and a segment
// census broken down by prediction depth.
func (r *Region) Metrics() *htm.TemporalPoolerMetrics {
	activation, prediction := r.LastAccuracy()

	activeCols, predictedCols := 0, 0
	overlaps := make([]float64, len(r.columns))
	boosts := make([]float64, len(r.columns))
	for i := range r.columns {
		col := &r.columns[i]
		overlaps[i] = float64(col.overlap)
		boosts[i] = float64(col.boost)
		if col.isActive {
			activeCols++
		}
		if r.ColumnPredictionSteps(i) > 0 {
			predictedCols++
		}
	}

	meanOverlap, overlapVariance := 0.0, 0.0
	if len(overlaps) > 0 {
		meanOverlap, overlapVariance = stat.MeanVariance(overlaps, nil)
	}
	meanBoost := 0.0
	if len(boosts) > 0 {
		meanBoost = stat.Mean(boosts, nil)
	}

	segsByStep := make(map[int]int)
	total := 0
	for ci := range r.columns {
		for i := range r.columns[ci].cells {
			for _, sg := range r.columns[ci].cells[i].segments {
				segsByStep[sg.predictionSteps]++
				total++
			}
		}
	}

	return &htm.TemporalPoolerMetrics{
		Iteration:          r.iters,
		ActiveColumns:      activeCols,
		PredictedColumns:   predictedCols,
		ActivationAccuracy: activation,
		PredictionAccuracy: prediction,
		MeanOverlap:        meanOverlap,
		OverlapVariance:    overlapVariance,
		MeanBoost:          meanBoost,
		InhibitionRadius:   r.inhibitionRadius,
		NumSegments:        total,
		SegmentsByStep:     segsByStep,
	}
}
