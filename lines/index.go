// Package lines keeps a 16-bit configuration for every row, column and
// diagonal of the board, two bits per square, and answers legality
// questions by table lookup on those configurations.
package lines

import (
	"github.com/domino14/othello/board"
)

const (
	NumLines = 47
	// dummyLine absorbs updates for border cells.
	dummyLine = 46
)

// Index is the line configuration of a whole board. Lines 0-7 are rows,
// 8-15 columns, 16-30 diagonals (x-y) and 31-45 anti-diagonals (x+y).
type Index [NumLines]uint16

// Membership of each square: the four lines through it and its position
// inside each line.
var (
	lineOf [board.NumCells][4]uint8
	posOf  [board.NumCells][4]uint8
)

func init() {
	for i := range lineOf {
		lineOf[i] = [4]uint8{dummyLine, dummyLine, dummyLine, dummyLine}
	}
	for y := 0; y < board.Dim; y++ {
		for x := 0; x < board.Dim; x++ {
			sq := board.SquareAt(x, y)
			lineOf[sq] = [4]uint8{
				uint8(y),
				uint8(8 + x),
				uint8(x - y + 23),
				uint8(x + y + 31),
			}
			posOf[sq] = [4]uint8{uint8(x), uint8(y), uint8(x), uint8(x)}
		}
	}
}

// Lines returns the four line numbers through sq.
func Lines(sq board.Square) [4]uint8 {
	return lineOf[sq]
}

func (ix *Index) Reset(b *board.Board) {
	*ix = Index{}
	for y := 0; y < board.Dim; y++ {
		for x := 0; x < board.Dim; x++ {
			sq := board.SquareAt(x, y)
			if b[sq] != board.Empty {
				ix.Place(sq, b[sq])
			}
		}
	}
}

// Place records a disc of colour c on the empty square sq.
func (ix *Index) Place(sq board.Square, c board.Cell) {
	l, p := &lineOf[sq], &posOf[sq]
	ix[l[0]] |= uint16(c) << (2 * p[0])
	ix[l[1]] |= uint16(c) << (2 * p[1])
	ix[l[2]] |= uint16(c) << (2 * p[2])
	ix[l[3]] |= uint16(c) << (2 * p[3])
}

// Flip swaps the colour of the disc on sq.
func (ix *Index) Flip(sq board.Square) {
	l, p := &lineOf[sq], &posOf[sq]
	ix[l[0]] ^= 3 << (2 * p[0])
	ix[l[1]] ^= 3 << (2 * p[1])
	ix[l[2]] ^= 3 << (2 * p[2])
	ix[l[3]] ^= 3 << (2 * p[3])
}

// Remove clears sq.
func (ix *Index) Remove(sq board.Square) {
	l, p := &lineOf[sq], &posOf[sq]
	ix[l[0]] &^= 3 << (2 * p[0])
	ix[l[1]] &^= 3 << (2 * p[1])
	ix[l[2]] &^= 3 << (2 * p[2])
	ix[l[3]] &^= 3 << (2 * p[3])
}

// Legal reports whether c may play on sq: some line through sq has sq
// among its legal positions for c.
func (ix *Index) Legal(sq board.Square, c board.Cell) bool {
	l, p := &lineOf[sq], &posOf[sq]
	shift := (uint(c) - 1) * 8
	return oracle[ix[l[0]]]>>(shift+uint(p[0]))&1 != 0 ||
		oracle[ix[l[1]]]>>(shift+uint(p[1]))&1 != 0 ||
		oracle[ix[l[2]]]>>(shift+uint(p[2]))&1 != 0 ||
		oracle[ix[l[3]]]>>(shift+uint(p[3]))&1 != 0
}

// Row returns the configuration of row y (0 is row 1).
func (ix *Index) Row(y int) uint16 {
	return ix[y]
}

// Column returns the configuration of column x (0 is column a).
func (ix *Index) Column(x int) uint16 {
	return ix[8+x]
}
