package board

import (
	"errors"
	"fmt"
	"strings"
)

// A Cell is the content of a single board position.
type Cell uint8

const (
	Empty Cell = iota
	Black
	White
	OutOfBounds
)

// Opponent maps Black to White and vice versa.
func (c Cell) Opponent() Cell {
	return c ^ 3
}

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Black:
		return "black"
	case White:
		return "white"
	}
	return "border"
}

// Rune is the single-character display form of a cell.
func (c Cell) Rune() rune {
	switch c {
	case Black:
		return 'X'
	case White:
		return 'O'
	case Empty:
		return '.'
	}
	return '#'
}

const (
	// NumCells is the size of the padded board array. Rows are 9 cells wide;
	// a single padding column separates the right edge of a row from the
	// left edge of the next one.
	NumCells = 91
	Width    = 9
	Dim      = 8
)

// A Square is an index into the padded board array. Board squares run
// from 10 (a1) to 80 (h8).
type Square int8

const (
	// Pass is the move a side makes when it has no legal move.
	Pass Square = -1
	// NoMove stands for the previous move before the first move of a game.
	NoMove Square = 0
)

var ErrBadSquare = errors.New("bad square")

// SquareAt returns the padded index of the zero-based column x and row y.
func SquareAt(x, y int) Square {
	return Square(10 + x + Width*y)
}

// To91 converts a 64-index (x + 8*y) into a padded index.
func To91(n int) Square {
	return Square(10 + (n & 7) + 9*(n>>3))
}

// To64 converts a padded index into a 64-index.
func To64(sq Square) int {
	n := int(sq)
	return (n - (n/9)*9 - 1) + ((n/9 - 1) << 3)
}

func (sq Square) X() int {
	return int(sq)%Width - 1
}

func (sq Square) Y() int {
	return int(sq)/Width - 1
}

// OnBoard reports whether sq is a playable square.
func (sq Square) OnBoard() bool {
	if sq < 10 || sq > 80 {
		return false
	}
	return int(sq)%Width != 0
}

func (sq Square) String() string {
	if sq == Pass {
		return "pass"
	}
	if !sq.OnBoard() {
		return fmt.Sprintf("?%d", int(sq))
	}
	return fmt.Sprintf("%c%d", 'a'+sq.X(), sq.Y()+1)
}

// ParseSquare accepts coordinates like "f5", "F5", "c 8", "a-1" and "pass".
func ParseSquare(s string) (Square, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "pass" || s == "pa" {
		return Pass, nil
	}
	s = strings.NewReplacer(" ", "", "-", "", "\t", "").Replace(s)
	if len(s) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	x := int(s[0]) - 'a'
	y := int(s[1]) - '1'
	if x < 0 || x >= Dim || y < 0 || y >= Dim {
		return 0, fmt.Errorf("%w: %q", ErrBadSquare, s)
	}
	return SquareAt(x, y), nil
}
