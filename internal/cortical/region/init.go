package region

import (
	"math"
)

// initHardcoded wires a one-to-one column-to-input-bit mapping: column i
// maps to input bit i, no proximal synapses are created, and spatial
// learning never runs (RunOnce short-circuits to direct assignment).
func (r *Region) initHardcoded() {
	for i := range r.columns {
		r.columns[i].ix = i % r.config.InputWidth
		r.columns[i].iy = i / r.config.InputWidth
	}
	r.inhibitionRadius = 0
	r.minOverlap = 0
	r.desiredLocalActivity = 0
}

// initTrained places each column's receptive-field center on the input
// plane (scaled by the grid-size ratio), grows its proximal segment over a
// pctInputPerCol-sized random sample of that local neighborhood, and seeds
// permanences either at full permanence (FullDefaultSpatialPermanence) or
// with a Gaussian locality bias favoring inputs nearer the center.
func (r *Region) initTrained() {
	r.xSpace = float64(r.config.InputWidth) / float64(r.colGridWidth)
	r.ySpace = float64(r.config.InputHeight) / float64(r.colGridHeight)

	radius := r.config.LocalityRadius
	if radius <= 0 {
		radius = int(math.Ceil(math.Max(r.xSpace, r.ySpace)))
		if radius < 1 {
			radius = 1
		}
	}

	synapsesPerSeg := int(math.Round(r.config.PctInputPerCol * float64((2*radius+1)*(2*radius+1))))
	if synapsesPerSeg < 1 {
		synapsesPerSeg = 1
	}

	for i := range r.columns {
		col := &r.columns[i]
		col.ix = int(math.Round(float64(col.cx) * r.xSpace))
		col.iy = int(math.Round(float64(col.cy) * r.ySpace))

		candidates := r.localInputBits(col.ix, col.iy, radius)
		chosen := r.sampleInputBits(candidates, synapsesPerSeg)

		for _, bit := range chosen {
			perm := 1.0
			if !r.config.FullDefaultSpatialPermanence {
				bx, by := bit%r.config.InputWidth, bit/r.config.InputWidth
				dist := math.Hypot(float64(bx-col.ix), float64(by-col.iy))
				// Locality bias: peak 0.8 (scaled by 1/0.4), std dev 0.25 of the
				// input plane's longer side.
				longerSide := float64(max(r.config.InputWidth, r.config.InputHeight))
				ratio := dist / (longerSide * 0.25)
				localityBias := (0.8 / 0.4) * math.Exp(-ratio*ratio/2)
				perm = math.Max(0, r.params.ConnectedPerm+r.params.PermanenceInc*r.randNormFloat64()) * localityBias
				perm = clampPermanence(perm)
			}
			col.proximal.CreateSynapse(newProximalSynapse(bit, perm))
		}
	}

	dla := r.config.PctLocalActivity * float64((2*radius+1)*(2*radius+1))
	if dla < 2 {
		dla = 2
	}
	r.desiredLocalActivity = int(math.Round(dla))
	r.minOverlap = int(math.Round(r.config.PctMinOverlap * float64(synapsesPerSeg)))
	r.inhibitionRadius = float64(radius)
}

func clampPermanence(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// localInputBits lists every input bit within radius of (cx, cy) on the
// input plane.
func (r *Region) localInputBits(cx, cy, radius int) []int {
	x0, x1 := max(0, cx-radius), min(r.config.InputWidth-1, cx+radius)
	y0, y1 := max(0, cy-radius), min(r.config.InputHeight-1, cy+radius)
	out := make([]int, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			out = append(out, y*r.config.InputWidth+x)
		}
	}
	return out
}

func (r *Region) sampleInputBits(candidates []int, m int) []int {
	n := len(candidates)
	if m > n {
		m = n
	}
	pool := make([]int, n)
	copy(pool, candidates)
	for i := 0; i < m; i++ {
		j := i + r.randIntn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:m]
}
