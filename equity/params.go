package equity

import (
	"lukechampine.com/frand"
)

const (
	cornerWorth       = 5.0
	xSquareCoeff      = 0.01
	stableDiscWeight  = 0.75
	moveSideSurplus   = 0.25
	discDiffCeiling   = 10
	minMobility       = 1.0
	mobilityExtra     = 1.0
	randomFactorCoeff = 0.05

	edgeStableFactor  = 0.2
	line3StableFactor = 1.5

	edgeNormalization    = 5.0
	emptiesOffset        = 10
	singleDiscNearCorner = -0.012
)

// edgeValues are indexed by the length of a run of discs starting next to
// an empty corner.
var edgeValues = [7]float64{
	0,
	-0.002 * edgeNormalization,
	-0.004 * edgeNormalization,
	-0.001 * edgeNormalization,
	-0.001 * edgeNormalization,
	-0.0001 * edgeNormalization,
	0.002 * edgeNormalization,
}

// Disc weight stages, by the number of moves played.
type stage struct {
	from, to int // moves played, [from, to)
	w0, w1   float64
}

var discStages = []stage{
	{0, 12, -0.25, -0.25},
	{12, 16, -0.25, -0.18},
	{16, 19, -0.18, -0.18},
	{18, 30, -0.18, -0.12},
	{30, 36, -0.12, -0.12},
	{36, 44, -0.12, -0.08},
	{44, 48, -0.08, -0.08},
	{48, 52, -0.08, -0.05},
	{52, 56, -0.05, 0.05},
	{56, 60, 0.05, 0.05},
}

// Params are the tunable coefficients of one evaluator. They are derived
// once per move selection and not changed while a search runs.
type Params struct {
	CornerValue  float64
	XSquareCoeff float64
	// DiscWeights is indexed by the number of empty squares.
	DiscWeights [61]float64
}

// DefaultDiscWeights interpolates the staged weights: disc count is worth
// less than nothing early and slightly positive in the last few moves.
func DefaultDiscWeights() [61]float64 {
	var w [61]float64
	for _, st := range discStages {
		for i := st.from; i < st.to; i++ {
			v := st.w0
			if st.w1 != st.w0 {
				v += (st.w1 - st.w0) * float64(i-st.from) / float64(st.to-st.from)
			}
			w[60-i] = v
		}
	}
	return w
}

// ParamsForDepth scales the corner and X-square terms to the search
// depth. Deep searches see corner consequences by themselves, so the
// static bonus shrinks as depth grows.
func ParamsForDepth(depth int) Params {
	p := Params{DiscWeights: DefaultDiscWeights()}
	switch {
	case depth <= 4:
		p.XSquareCoeff = 4 * xSquareCoeff
	case depth <= 6:
		p.XSquareCoeff = 2 * xSquareCoeff
	default:
		p.XSquareCoeff = xSquareCoeff
	}
	c := 1 / 1.5
	switch {
	case depth <= 4:
		p.CornerValue = cornerWorth / c
	case depth <= 6:
		p.CornerValue = cornerWorth
	case depth <= 8:
		p.CornerValue = cornerWorth * c
	case depth <= 10:
		p.CornerValue = cornerWorth * c * c
	default:
		p.CornerValue = cornerWorth * c * c * c
	}
	return p
}

// Perturb scales all disc weights by a single random factor whose spread
// grows with level. Levels below 2 leave the weights unchanged.
func (p *Params) Perturb(level int) {
	if level < 2 {
		return
	}
	r := float64(frand.Intn(4096))/4096 - 0.5
	coeff := 1 + float64(level)*r*randomFactorCoeff
	for i := 1; i <= 60; i++ {
		p.DiscWeights[i] *= coeff
	}
}
