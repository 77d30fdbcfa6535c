package player

import (
	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/movegen"
)

var (
	f5 = board.SquareAt(5, 4)
	c5 = board.SquareAt(2, 4)
)

// secondMoves are the replies to each first move: perpendicular, diagonal
// and parallel, in that order. Keys and values are 64-square indices.
var secondMoves = map[int][3]int{
	37: {43, 45, 29},
	44: {29, 45, 43},
	43: {26, 42, 44},
	34: {44, 42, 26},
	26: {20, 18, 34},
	19: {34, 18, 20},
	20: {37, 21, 19},
	29: {19, 21, 37},
}

// thirdMoveAvoid are the second-line squares that make poor third moves.
var thirdMoveAvoid = map[board.Square]bool{
	21: true, 24: true, 29: true, 34: true,
	56: true, 61: true, 66: true, 69: true,
}

// openingMove picks the first two moves of the game without searching.
// ok is false when the position is not one it knows.
func (p *Player) openingMove(pos *movegen.Position, color board.Cell, base int,
	last board.Square, moves []board.Square) (sq board.Square, value float64, ok bool) {

	switch base {
	case 0:
		if p.opts.Randomness == 0 {
			sq = f5
			if pos.Board.Mirrored() {
				sq = c5
			}
			return sq, 0, pos.IsLegal(color, sq)
		}
		return moves[frand.Intn(len(moves))], 0, true
	case 1:
		choices, found := secondMoves[board.To64(last)]
		if !found {
			return board.NoMove, 0, false
		}
		idx := 0
		switch {
		case p.opts.Randomness == 0:
		case p.opts.Randomness < 8:
			idx = frand.Intn(2)
		default:
			idx = frand.Intn(3)
			if idx == 2 {
				value = -0.5
			}
		}
		sq = board.To91(choices[idx])
		return sq, value, pos.IsLegal(color, sq)
	}
	return board.NoMove, 0, false
}
