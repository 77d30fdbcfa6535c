package search

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/movegen"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

// randomPosition plays plies random moves from the start and returns the
// position with the side to move.
func randomPosition(rng *rand.Rand, plies int) (*movegen.Position, board.Cell) {
	pos := movegen.NewPosition(board.New(false))
	side := board.Black
	var f movegen.Flips
	for i := 0; i < plies; i++ {
		moves := pos.LegalMoves(side, nil)
		if len(moves) == 0 {
			side = side.Opponent()
			if !pos.HasMove(side) {
				break
			}
			continue
		}
		pos.Apply(side, moves[rng.IntN(len(moves))], &f)
		side = side.Opponent()
	}
	if !pos.HasMove(side) && pos.HasMove(side.Opponent()) {
		side = side.Opponent()
	}
	return pos, side
}

func rootNode(pos *movegen.Position, side board.Cell, limit int) Node {
	return Node{
		Last: board.NoMove, SecondLast: board.NoMove, Color: side,
		Limit: limit, Self: pos.Count(side), Opp: pos.Count(side.Opponent()),
	}
}

func TestAlphaBetaMatchesMinimax(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(42, 1))
	for trial := 0; trial < 12; trial++ {
		pos, side := randomPosition(rng, 10+rng.IntN(44))
		if !pos.HasMove(side) {
			continue
		}
		depth := 2 + trial%3
		ev := equity.NewEvaluator(equity.ParamsForDepth(depth))
		snapshot := *pos
		base := pos.Board.Discs() - 4
		s := NewSearcher(pos, ev, Params{Base: base}, nil)
		n := rootNode(pos, side, depth)
		got, err := s.Max(context.Background(), n, -Large, Large)
		is.NoErr(err)
		is.Equal(*pos, snapshot)
		want := Minimax(pos, ev, n)
		is.Equal(*pos, snapshot)
		is.Equal(got, want)
	}
}

func TestSearchCountsAndRestores(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(9, 9))
	pos, side := randomPosition(rng, 20)
	snapshot := *pos
	ev := equity.NewEvaluator(equity.ParamsForDepth(6))
	stats := &Stats{}
	s := NewSearcher(pos, ev, Params{Base: pos.Board.Discs() - 4, Quiescence: true, MPC: true, NewCornerQuiescence: true}, stats)
	v, err := s.Max(context.Background(), rootNode(pos, side, 6), -Large, Large)
	is.NoErr(err)
	is.True(v > -Large && v < Large)
	is.True(stats.Nodes.Load() > 0)
	is.True(stats.Evaluated.Load() > 0)
	is.True(stats.Evaluated.Load() <= stats.Nodes.Load())
	is.NoErr(pos.Validate())
	is.Equal(*pos, snapshot)
}

func TestCancelledSearchIsIncomplete(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(1, 2))
	pos, side := randomPosition(rng, 16)
	snapshot := *pos
	ev := equity.NewEvaluator(equity.ParamsForDepth(8))
	s := NewSearcher(pos, ev, Params{Base: pos.Board.Discs() - 4, Quiescence: true}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Max(ctx, rootNode(pos, side, 8), -Large, Large)
	is.True(errors.Is(err, ErrIncomplete))
	// every applied move was undone on the way out
	is.NoErr(pos.Validate())
	is.Equal(*pos, snapshot)
}

func TestFullBoardScores(t *testing.T) {
	is := is.New(t)
	// One empty square left; black to move on h8 flips along the row, the
	// column and the diagonal.
	b, err := board.FromRows([]string{
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"XXXXXXXX",
		"OOOOOOOO",
		"OOOOOOOO",
		"OOOOOOOO",
		"XOOOOOO.",
	})
	is.NoErr(err)
	pos := movegen.NewPosition(b)
	is.Equal(pos.CountFlips(board.Black, board.SquareAt(7, 7)), 12)
	ev := equity.NewEvaluator(equity.ParamsForDepth(4))
	s := NewSearcher(pos, ev, Params{Base: 59}, nil)
	n := Node{Last: board.NoMove, Color: board.Black, Limit: 4, Self: 33, Opp: 30}
	v, err := s.Max(context.Background(), n, -Large, Large)
	is.NoErr(err)
	is.Equal(v, equity.EndScore(33+12+1, 30-12))
	is.Equal(v, Minimax(pos, ev, n))
}

func TestOrderKeepsAllMovesWithoutMPC(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(5, 8))
	pos, side := randomPosition(rng, 14)
	ev := equity.NewEvaluator(equity.ParamsForDepth(8))
	s := NewSearcher(pos, ev, Params{Base: pos.Board.Discs() - 4}, nil)
	moves := pos.LegalMoves(side, nil)
	vals := make([]float64, len(moves))
	ordered, err := s.Order(context.Background(), rootNode(pos, side, 8), append([]board.Square(nil), moves...), vals, true)
	is.NoErr(err)
	is.Equal(len(ordered), len(moves))
	for i := 1; i < len(vals); i++ {
		is.True(vals[i-1] >= vals[i])
	}
}
