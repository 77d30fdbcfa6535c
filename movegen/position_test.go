package movegen

import (
	"math/rand/v2"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/othello/board"
)

func bruteMoves(b *board.Board, side board.Cell) map[board.Square]bool {
	m := map[board.Square]bool{}
	for n := 0; n < 64; n++ {
		sq := board.To91(n)
		if BruteForceLegal(b, side, sq) {
			m[sq] = true
		}
	}
	return m
}

func TestOpeningMoves(t *testing.T) {
	is := is.New(t)
	p := NewPosition(board.New(false))
	moves := p.LegalMoves(board.Black, nil)
	is.Equal(len(moves), 4)
	is.Equal(p.Mobility(board.White), 4)
	for _, m := range moves {
		is.True(BruteForceLegal(&p.Board, board.Black, m))
	}
	is.True(p.IsLegal(board.Black, board.To91(37)))
	is.True(!p.IsLegal(board.Black, board.To91(0)))
}

func TestApplyUndo(t *testing.T) {
	is := is.New(t)
	p := NewPosition(board.New(false))
	snapshot := *p
	var f Flips
	sq := board.To91(37)
	n := p.Apply(board.Black, sq, &f)
	is.Equal(n, 1)
	is.Equal(f.Squares()[0], board.SquareAt(4, 4))
	is.Equal(p.Count(board.Black), 4)
	is.Equal(p.Count(board.White), 1)
	is.Equal(p.NumEmpty(), 59)
	is.NoErr(p.Validate())

	p.Undo(board.Black, sq, &f)
	is.NoErr(p.Validate())
	is.Equal(*p, snapshot)
}

func TestApplyNoop(t *testing.T) {
	is := is.New(t)
	p := NewPosition(board.New(false))
	snapshot := *p
	var f Flips
	// occupied
	is.Equal(p.Apply(board.Black, board.SquareAt(3, 3), &f), 0)
	// brackets nothing
	is.Equal(p.Apply(board.Black, board.To91(0), &f), 0)
	is.Equal(p.ApplyBoard(board.White, board.To91(37), &f), 0)
	is.Equal(*p, snapshot)
}

func TestCountFlipsMatchesApply(t *testing.T) {
	is := is.New(t)
	b, err := board.FromRows([]string{
		"XOOOOOO.",
		"O.......",
		"O.......",
		"O.......",
		"O.......",
		"O.......",
		"O.......",
		"X.......",
	})
	is.NoErr(err)
	p := NewPosition(b)
	sq := board.SquareAt(7, 0)
	is.Equal(p.CountFlips(board.Black, sq), 6)
	is.Equal(p.CountFlips(board.White, sq), 0)
	var f Flips
	is.Equal(p.Apply(board.Black, sq, &f), 6)
	is.Equal(p.Board.Count(board.White), 6)
	is.NoErr(p.Validate())
}

// Random games: the table-driven legality must agree with the brute-force
// walker everywhere, and unwinding the whole game must restore the start.
func TestRandomPlayoutsAgreeAndReverse(t *testing.T) {
	is := is.New(t)
	rng := rand.New(rand.NewPCG(7, 11))
	for game := 0; game < 40; game++ {
		p := NewPosition(board.New(game%2 == 1))
		start := *p
		type played struct {
			side board.Cell
			sq   board.Square
			f    Flips
		}
		var history []played
		side := board.Black
		passes := 0
		for passes < 2 {
			moves := p.LegalMoves(side, nil)
			brute := bruteMoves(&p.Board, side)
			is.Equal(len(moves), len(brute))
			for _, m := range moves {
				is.True(brute[m])
			}
			if len(moves) == 0 {
				passes++
				side = side.Opponent()
				continue
			}
			passes = 0
			sq := moves[rng.IntN(len(moves))]
			var pl played
			pl.side, pl.sq = side, sq
			before := p.Count(board.Black) + p.Count(board.White)
			n := p.Apply(side, sq, &pl.f)
			is.True(n > 0)
			is.Equal(n, pl.f.N)
			// one disc added, flipped discs change owner
			is.Equal(p.Count(board.Black)+p.Count(board.White), before+1)
			is.Equal(p.NumEmpty(), 64-before-1)
			history = append(history, pl)
			side = side.Opponent()
		}
		is.NoErr(p.Validate())
		for i := len(history) - 1; i >= 0; i-- {
			h := history[i]
			p.Undo(h.side, h.sq, &h.f)
		}
		is.NoErr(p.Validate())
		is.Equal(*p, start)
	}
}

func TestApplyBoardKeepsRegistry(t *testing.T) {
	is := is.New(t)
	p := NewPosition(board.New(false))
	snapshot := *p
	var f1, f2 Flips
	is.Equal(p.ApplyBoard(board.Black, board.To91(37), &f1), 1)
	is.Equal(p.NumEmpty(), 59)
	is.NoErr(p.Empties.Validate(&p.Board))
	moves := 0
	for sq := p.Empties.First(); sq != board.ListEnd; sq = p.Empties.Next(sq) {
		if p.CountFlips(board.White, sq) > 0 {
			moves++
		}
	}
	is.Equal(moves, 3)
	sq := board.To91(45)
	is.True(p.ApplyBoard(board.White, sq, &f2) > 0)
	p.UndoBoard(board.White, sq, &f2)
	p.UndoBoard(board.Black, board.To91(37), &f1)
	is.Equal(*p, snapshot)
}
