package equity

import (
	"math"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/movegen"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestEndScore(t *testing.T) {
	is := is.New(t)
	is.Equal(EndScore(40, 20), float64(24<<10))
	is.Equal(EndScore(20, 40), float64(-24<<10))
	is.Equal(EndScore(32, 32), 0.0)
	// winner takes the empties
	is.Equal(EndScore(30, 10), float64(44<<10))
}

func TestDiscWeights(t *testing.T) {
	w := DefaultDiscWeights()
	assert.Equal(t, 0.0, w[0])
	assert.Equal(t, -0.25, w[60])
	assert.Equal(t, -0.25, w[49])
	assert.InDelta(t, -0.215, w[46], 1e-9)
	assert.Equal(t, -0.18, w[42])
	assert.Equal(t, -0.12, w[28])
	assert.Equal(t, -0.08, w[14])
	assert.Equal(t, -0.05, w[8])
	assert.InDelta(t, 0.0, w[6], 1e-9)
	assert.Equal(t, 0.05, w[1])
}

func TestParamsForDepth(t *testing.T) {
	assert.InDelta(t, 7.5, ParamsForDepth(3).CornerValue, 1e-9)
	assert.InDelta(t, 0.04, ParamsForDepth(3).XSquareCoeff, 1e-9)
	assert.InDelta(t, 5.0, ParamsForDepth(6).CornerValue, 1e-9)
	assert.InDelta(t, 10.0/3, ParamsForDepth(8).CornerValue, 1e-9)
	assert.InDelta(t, 5*8.0/27, ParamsForDepth(12).CornerValue, 1e-9)
	assert.InDelta(t, 0.01, ParamsForDepth(12).XSquareCoeff, 1e-9)
}

func TestPerturbBounded(t *testing.T) {
	is := is.New(t)
	base := ParamsForDepth(8)
	p := base
	p.Perturb(1)
	is.Equal(p, base)
	for i := 0; i < 20; i++ {
		p = base
		p.Perturb(9)
		ratio := p.DiscWeights[60] / base.DiscWeights[60]
		is.True(math.Abs(ratio-1) <= 9*0.5*0.05+1e-9)
		is.Equal(p.DiscWeights[0], 0.0)
	}
}

func TestEvaluateStart(t *testing.T) {
	is := is.New(t)
	e := NewEvaluator(ParamsForDepth(8))
	pos := movegen.NewPosition(board.New(false))
	is.Equal(e.Evaluate(pos, board.Black, board.Black, 2, 2), -0.25)
	is.Equal(e.Evaluate(pos, board.White, board.Black, 2, 2), 0.25)
	is.Equal(e.Evaluate(pos, board.Black, board.Black, 0, 4), float64(-64*EndScale))
	is.Equal(e.Evaluate(pos, board.Black, board.Black, 4, 0), float64(64*EndScale))
}

func swapColours(b *board.Board) *board.Board {
	s := *b
	for i := range s {
		if s[i] == board.Black || s[i] == board.White {
			s[i] = s[i].Opponent()
		}
	}
	return &s
}

// Evaluation only depends on who owns what, not on which colour is which.
func TestEvaluateColourSymmetry(t *testing.T) {
	is := is.New(t)
	e := NewEvaluator(ParamsForDepth(6))
	rng := rand.New(rand.NewPCG(3, 5))
	for g := 0; g < 20; g++ {
		pos := movegen.NewPosition(board.New(false))
		side := board.Black
		var f movegen.Flips
		for ply := 0; ply < 20+rng.IntN(30); ply++ {
			moves := pos.LegalMoves(side, nil)
			if len(moves) == 0 {
				side = side.Opponent()
				continue
			}
			pos.Apply(side, moves[rng.IntN(len(moves))], &f)
			side = side.Opponent()
		}
		nb, nw := pos.Count(board.Black), pos.Count(board.White)
		v1 := e.Evaluate(pos, board.Black, side, nb, nw)
		swapped := movegen.NewPosition(swapColours(&pos.Board))
		v2 := e.Evaluate(swapped, board.White, side.Opponent(), nb, nw)
		is.True(math.Abs(v1-v2) < 1e-9)
	}
}

func TestStableDiscScore(t *testing.T) {
	b, err := board.FromRows([]string{
		"XXXX....",
		"XXX.....",
		"XX......",
		"X.......",
		"........",
		"........",
		"........",
		"........",
	})
	assert.NoError(t, err)
	w := 1.0
	edgeW := w * edgeStableFactor
	// two runs of three past the corner, then a diagonal disc with one more
	// disc on each second-line arm.
	want := 2*(edgeW*2+edgeW+edgeW) + w + w + w
	assert.InDelta(t, want, stableDiscScore(b, board.Black, 10, 1, 9, w), 1e-9)
	// white owns nothing here
	assert.Equal(t, 0.0, stableDiscScore(b, board.White, 10, 1, 9, w))
}

func TestEdgeValue(t *testing.T) {
	b, err := board.FromRows([]string{
		".XX.....",
		"........",
		".O......",
		"........",
		"........",
		"........",
		"........",
		"........",
	})
	assert.NoError(t, err)
	// 52 empties: multiplier 42; a run of two from b1.
	assert.InDelta(t, edgeValues[2]*42, edgeValue(b, 52, board.Black, 10, 1), 1e-9)

	b, err = board.FromRows([]string{
		".X..O...",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	})
	assert.NoError(t, err)
	assert.InDelta(t, singleDiscNearCorner*edgeNormalization*42, edgeValue(b, 52, board.Black, 10, 1), 1e-9)
	// no weight once the board is nearly full
	assert.Equal(t, 0.0, edgeValue(b, 8, board.Black, 10, 1))
}

func TestStableEdgeGain(t *testing.T) {
	is := is.New(t)
	b, err := board.FromRows([]string{
		"OXXXXXXO",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
	})
	is.NoErr(err)
	pos := movegen.NewPosition(b)
	is.Equal(stableEdgeGain(&pos.Board, &pos.Lines, board.Black), 6)
	is.Equal(stableEdgeGain(&pos.Board, &pos.Lines, board.White), -6)
}
