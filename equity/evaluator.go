// Package equity holds the static evaluation of midgame positions and the
// terminal scores used when a game ends inside the search.
package equity

import (
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/lines"
	"github.com/domino14/othello/movegen"
)

// EndScale converts a final disc margin into a midgame score so that any
// decided game outranks every heuristic value.
const EndScale = 1 << 10

// EndScore is the midgame value of a finished game for the side owning
// self discs. The winner is credited with the empty squares.
func EndScore(self, opp int) float64 {
	switch {
	case self > opp:
		return float64((64 - 2*opp) << 10)
	case self < opp:
		return float64((2*self - 64) << 10)
	}
	return 0
}

// Evaluator scores positions from one side's point of view.
type Evaluator struct {
	params Params
}

func NewEvaluator(p Params) *Evaluator {
	return &Evaluator{params: p}
}

func (e *Evaluator) Params() Params {
	return e.params
}

// Evaluate scores the position in pos for forWhom, who owns self discs
// against opp. whoseTurn is the side to move.
func (e *Evaluator) Evaluate(pos *movegen.Position, forWhom, whoseTurn board.Cell, self, opp int) float64 {
	if self == 0 {
		return -64 * EndScale
	}
	if opp == 0 {
		return 64 * EndScale
	}
	b := &pos.Board
	me, them := forWhom, forWhom.Opponent()
	nEmp := 64 - self - opp

	selfMob := float64(pos.Mobility(me))
	oppMob := float64(pos.Mobility(them))
	ratio := (max(selfMob, minMobility) + mobilityExtra) / (max(oppMob, minMobility) + mobilityExtra)
	result := ratio - 1/ratio

	discWeight := e.params.DiscWeights[nEmp]
	deficit := min(opp-self, discDiffCeiling)
	result += discWeight * float64(-deficit)

	xPenalty := e.params.XSquareCoeff * float64(nEmp)
	stableWeight := stableDiscWeight - discWeight

	for i, corner := range board.Corners {
		dirs := board.CornerDirs[i]
		switch b[corner] {
		case me:
			result += e.params.CornerValue
			result += stableDiscScore(b, me, corner, dirs[0], dirs[1], stableWeight)
		case them:
			result -= e.params.CornerValue
			result -= stableDiscScore(b, them, corner, dirs[0], dirs[1], stableWeight)
		default:
			switch b[board.XSquares[i]] {
			case me:
				result -= xPenalty
			case them:
				result += xPenalty
			}
			for j := 0; j < 2; j++ {
				if b[board.FarCorners[i][j]] != board.Empty {
					continue
				}
				switch b[board.CSquares[i][j]] {
				case me:
					result += edgeValue(b, pos.NumEmpty(), me, corner, dirs[j])
				case them:
					result -= edgeValue(b, pos.NumEmpty(), them, corner, dirs[j])
				}
			}
		}
	}

	result += float64(stableEdgeGain(b, &pos.Lines, me)) * stableWeight

	if forWhom == whoseTurn {
		result -= moveSideSurplus
	} else {
		result += moveSideSurplus
	}
	return result
}

// stableEdgeGain counts, for black minus white and signed for me, the
// discs locked on full edges between two corners of the other colour.
func stableEdgeGain(b *board.Board, ix *lines.Index, me board.Cell) int {
	c := board.Corners
	edges := [4]struct {
		a, z board.Square
		cfg  uint16
	}{
		{c[0], c[1], ix.Row(0)},
		{c[2], c[3], ix.Row(7)},
		{c[0], c[2], ix.Column(0)},
		{c[1], c[3], ix.Column(7)},
	}
	gain := 0
	for _, e := range edges {
		if b[e.a] != b[e.z] || b[e.a] == board.Empty {
			continue
		}
		n := lines.StableEdgeDiscs(e.cfg, b[e.a])
		// the locked discs belong to the colour opposite the corners
		if b[e.a].Opponent() == me {
			gain += n
		} else {
			gain -= n
		}
	}
	return gain
}

// stableDiscScore approximates the stable discs anchored on an owned
// corner: runs along both edges, then the second and third lines while
// they stay shorter than the runs below them.
func stableDiscScore(b *board.Board, color board.Cell, corner board.Square, d1, d2 int, w float64) float64 {
	edgeW := w * edgeStableFactor
	line3W := w * line3StableFactor
	result := 0.0
	c := int(corner)

	walkEdge := func(d int) (bound, count int) {
		bound, count = c+d, 1
		for k := 0; k < 7 && b[bound] == color; k++ {
			switch {
			case k == 0:
				result += edgeW * 2
				count = 2
			case k == 1:
				result += edgeW
				count = 3
			case k < 5:
				result += edgeW
			}
			bound += d
		}
		return bound, count
	}
	bound1, count1 := walkEdge(d1)
	bound2, count2 := walkEdge(d2)

	bound1 += d2 - d1
	bound2 += d1 - d2
	diag := c + d1 + d2
	if count1 < 3 || count2 < 3 || b[diag] != color {
		return result
	}
	result += w
	i, j := diag+d1, diag+d2
	line2a, line2b := 2, 2
	for i != bound1 && b[i] == color {
		result += w
		i += d1
		line2a++
	}
	for j != bound2 && b[j] == color {
		result += w
		j += d2
		line2b++
	}
	diag3 := diag + d1 + d2
	if line2a < 4 || line2b < 4 || b[diag3] != color {
		return result
	}
	result += line3W
	i += d2 - d1
	j += d1 - d2
	for k := diag3 + d1; k != i && b[k] == color; k += d1 {
		result += line3W
	}
	for k := diag3 + d2; k != j && b[k] == color; k += d2 {
		result += line3W
	}
	return result
}

// edgeValue scores a run of color's discs starting next to an empty
// corner along dir, when the far corner of that edge is empty too. Its
// weight fades as the board fills.
func edgeValue(b *board.Board, empties int, color board.Cell, corner board.Square, dir int) float64 {
	mult := float64(max(empties-emptiesOffset, 0))
	count := 1
	p := int(corner) + 2*dir
	switch b[p] {
	case color:
		count++
		for p += dir; count < 6 && b[p] == color; p += dir {
			count++
		}
	case board.Empty:
		p += dir
		if b[p] == board.Empty {
			p += dir
			if b[p] != color {
				return singleDiscNearCorner * edgeNormalization * mult
			}
		} else if b[p] != color {
			p += dir
			if b[p] == board.Empty {
				p += dir
				if b[p] != color {
					return edgeValues[1] * mult * 1.5
				}
			}
		}
	}
	return edgeValues[count] * mult
}
