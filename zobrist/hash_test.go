package zobrist

import (
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/movegen"
)

func TestHashAfterMove(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()

	pos := movegen.NewPosition(board.New(false))
	start := z.Hash(&pos.Board, board.Black)
	is.True(start != z.Hash(&pos.Board, board.White))

	var f movegen.Flips
	sq, _ := board.ParseSquare("f5")
	pos.Apply(board.Black, sq, &f)
	incremental := z.AddMove(start, board.Black, sq, f.Squares())
	is.Equal(incremental, z.Hash(&pos.Board, board.White))

	passed := z.AddMove(incremental, board.White, board.Pass, nil)
	is.Equal(passed, z.Hash(&pos.Board, board.Black))

	pos.Undo(board.Black, sq, &f)
	is.Equal(z.Hash(&pos.Board, board.Black), start)
}

func TestIncrementalMatchesFullHash(t *testing.T) {
	is := is.New(t)
	z := &Zobrist{}
	z.Initialize()
	rng := rand.New(rand.NewPCG(7, 11))
	pos := movegen.NewPosition(board.New(false))
	side := board.Black
	key := z.Hash(&pos.Board, side)
	var f movegen.Flips
	for ply := 0; ply < 70; ply++ {
		moves := pos.LegalMoves(side, nil)
		if len(moves) == 0 {
			if !pos.HasMove(side.Opponent()) {
				break
			}
			key = z.AddMove(key, side, board.Pass, nil)
		} else {
			sq := moves[rng.IntN(len(moves))]
			pos.Apply(side, sq, &f)
			key = z.AddMove(key, side, sq, f.Squares())
		}
		side = side.Opponent()
		is.Equal(key, z.Hash(&pos.Board, side))
	}
}
