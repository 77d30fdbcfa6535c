package zobrist

import (
	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
)

const bignum = 1<<63 - 2

// Zobrist generates a zobrist hash for an Othello position: the owner of
// every square plus the side to move.
// https://en.wikipedia.org/wiki/Zobrist_hashing
type Zobrist struct {
	whiteToMove uint64
	posTable    [board.NumCells][3]uint64
}

func (z *Zobrist) Initialize() {
	for i := range z.posTable {
		// index 0 (empty) stays zero so empty squares never touch the key.
		z.posTable[i][board.Black] = frand.Uint64n(bignum) + 1
		z.posTable[i][board.White] = frand.Uint64n(bignum) + 1
	}
	z.whiteToMove = frand.Uint64n(bignum) + 1
}

func (z *Zobrist) Hash(b *board.Board, toMove board.Cell) uint64 {
	key := uint64(0)
	for i, c := range b {
		if c == board.Black || c == board.White {
			key ^= z.posTable[i][c]
		}
	}
	if toMove == board.White {
		key ^= z.whiteToMove
	}
	return key
}

// AddMove updates key for side playing sq and turning flipped. A pass is
// just a change of turn.
func (z *Zobrist) AddMove(key uint64, side board.Cell, sq board.Square, flipped []board.Square) uint64 {
	key ^= z.whiteToMove
	if sq == board.Pass {
		return key
	}
	key ^= z.posTable[sq][side]
	opp := side.Opponent()
	for _, s := range flipped {
		key ^= z.posTable[s][opp] ^ z.posTable[s][side]
	}
	return key
}
