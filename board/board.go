package board

import (
	"errors"
	"fmt"
	"strings"
)

// Board is the padded 9x10+1 cell array. Border cells are OutOfBounds, so
// a walk in any direction from a board square stops without bounds checks.
type Board [NumCells]Cell

var ErrBadBoard = errors.New("bad board description")

// New returns the starting position. The standard start has white on d4
// and e5; a mirrored start swaps the colours on the centre diagonal.
func New(mirrored bool) *Board {
	b := &Board{}
	b.Clear()
	w, bl := White, Black
	if mirrored {
		w, bl = Black, White
	}
	b[SquareAt(3, 3)] = w
	b[SquareAt(4, 4)] = w
	b[SquareAt(4, 3)] = bl
	b[SquareAt(3, 4)] = bl
	return b
}

// Clear empties every board square and re-marks the border.
func (b *Board) Clear() {
	for i := range b {
		if Square(i).OnBoard() {
			b[i] = Empty
		} else {
			b[i] = OutOfBounds
		}
	}
}

// FromRows builds a board from 8 rows of 8 characters, row 1 first.
// 'X', 'B' and '*' are black; 'O', 'W' are white; '.', '-' and '_' empty.
func FromRows(rows []string) (*Board, error) {
	if len(rows) != Dim {
		return nil, fmt.Errorf("%w: need %d rows, got %d", ErrBadBoard, Dim, len(rows))
	}
	b := &Board{}
	b.Clear()
	for y, row := range rows {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != Dim {
			return nil, fmt.Errorf("%w: row %d has %d cells", ErrBadBoard, y+1, len(row))
		}
		for x, ch := range row {
			c, err := cellFromRune(ch)
			if err != nil {
				return nil, err
			}
			b[SquareAt(x, y)] = c
		}
	}
	return b, nil
}

// FromString is FromRows on a whitespace-separated or contiguous
// 64-character string.
func FromString(s string) (*Board, error) {
	flat := strings.Join(strings.Fields(s), "")
	if len(flat) != Dim*Dim {
		return nil, fmt.Errorf("%w: need %d cells, got %d", ErrBadBoard, Dim*Dim, len(flat))
	}
	rows := make([]string, Dim)
	for y := range rows {
		rows[y] = flat[y*Dim : (y+1)*Dim]
	}
	return FromRows(rows)
}

func cellFromRune(ch rune) (Cell, error) {
	switch ch {
	case 'X', 'x', 'B', 'b', '*':
		return Black, nil
	case 'O', 'o', 'W', 'w':
		return White, nil
	case '.', '-', '_':
		return Empty, nil
	}
	return Empty, fmt.Errorf("%w: unexpected cell %q", ErrBadBoard, ch)
}

// Count returns the number of discs of colour c.
func (b *Board) Count(c Cell) int {
	n := 0
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			if b[SquareAt(x, y)] == c {
				n++
			}
		}
	}
	return n
}

// Discs is the total number of discs on the board.
func (b *Board) Discs() int {
	return b.Count(Black) + b.Count(White)
}

// Mirrored reports whether a board with only the four centre discs uses
// the mirrored start.
func (b *Board) Mirrored() bool {
	return b[SquareAt(3, 3)] == Black && b[SquareAt(4, 4)] == Black
}

// Compact is the 64-character row-major form accepted by FromString.
func (b *Board) Compact() string {
	var sb strings.Builder
	for y := 0; y < Dim; y++ {
		for x := 0; x < Dim; x++ {
			sb.WriteRune(b[SquareAt(x, y)].Rune())
		}
	}
	return sb.String()
}

func (b *Board) String() string {
	return b.Display(nil)
}

// Display renders the board with column letters and row numbers. Squares
// in marks are drawn as '+'.
func (b *Board) Display(marks []Square) string {
	marked := map[Square]bool{}
	for _, m := range marks {
		marked[m] = true
	}
	var sb strings.Builder
	sb.WriteString("   a b c d e f g h\n")
	for y := 0; y < Dim; y++ {
		fmt.Fprintf(&sb, "%2d ", y+1)
		for x := 0; x < Dim; x++ {
			sq := SquareAt(x, y)
			r := b[sq].Rune()
			if b[sq] == Empty && marked[sq] {
				r = '+'
			}
			sb.WriteRune(r)
			if x < Dim-1 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "   X: %d  O: %d\n", b.Count(Black), b.Count(White))
	return sb.String()
}
