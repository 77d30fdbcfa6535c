// Package movegen owns the mutable search state: the board together with
// the structures that are kept in step with it (empty-square list, liberty
// map and line index). Every move applied through a Position is undone in
// reverse order through the same Position.
package movegen

import (
	"fmt"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/lines"
)

// MaxFlips bounds the discs a single move can turn: at most 6 along each of
// the 4 lines through the square.
const MaxFlips = 24

// Flips records the discs turned by one move, so the move can be undone.
type Flips struct {
	N  int
	Sq [MaxFlips]board.Square
}

func (f *Flips) Squares() []board.Square {
	return f.Sq[:f.N]
}

// Position is the search context. Only one Position should be mutated per
// search; copies are made only for snapshots.
type Position struct {
	Board   board.Board
	Empties board.EmptyList
	Libs    board.LibertyMap
	Lines   lines.Index
}

func NewPosition(b *board.Board) *Position {
	p := &Position{}
	p.Reset(b)
	return p
}

// Reset loads b and rebuilds every derived structure.
func (p *Position) Reset(b *board.Board) {
	p.Board = *b
	p.Empties.Reset(&p.Board)
	p.Libs.Reset(&p.Board)
	p.Lines.Reset(&p.Board)
}

// Count returns the discs of colour c.
func (p *Position) Count(c board.Cell) int {
	return p.Board.Count(c)
}

// NumEmpty is the number of empty squares.
func (p *Position) NumEmpty() int {
	return p.Empties.Len()
}

// IsLegal reports whether side may play on sq. Squares without an occupied
// neighbour are rejected before the line lookup.
func (p *Position) IsLegal(side board.Cell, sq board.Square) bool {
	if !p.Libs.HasNeighbour(sq) {
		return false
	}
	return p.Lines.Legal(sq, side)
}

// flip turns every bracketed run and records it in f. The placed disc is
// not written.
func (p *Position) flip(side board.Cell, sq board.Square, f *Flips) int {
	b := &p.Board
	opp := side.Opponent()
	mask := board.DirMask[sq]
	f.N = 0
	for i, d := range board.Directions {
		if mask&(1<<i) == 0 {
			continue
		}
		c := int(sq) + d
		if b[c] != opp {
			continue
		}
		c += d
		for b[c] == opp {
			c += d
		}
		if b[c] != side {
			continue
		}
		for c -= d; c != int(sq); c -= d {
			b[c] = side
			f.Sq[f.N] = board.Square(c)
			f.N++
		}
	}
	return f.N
}

// Apply plays side on sq and returns the number of flipped discs. A move
// that flips nothing changes nothing and returns 0.
func (p *Position) Apply(side board.Cell, sq board.Square, f *Flips) int {
	if p.Board[sq] != board.Empty {
		return 0
	}
	n := p.flip(side, sq, f)
	if n == 0 {
		return 0
	}
	p.Board[sq] = side
	p.Empties.Remove(sq)
	p.Libs.Place(sq)
	p.Lines.Place(sq, side)
	for _, s := range f.Sq[:n] {
		p.Lines.Flip(s)
	}
	return n
}

// Undo reverses an Apply of side on sq that produced f.
func (p *Position) Undo(side board.Cell, sq board.Square, f *Flips) {
	p.Lines.Remove(sq)
	for _, s := range f.Sq[:f.N] {
		p.Lines.Flip(s)
	}
	p.Libs.Lift(sq)
	p.revert(side, sq, f)
}

// ApplyBoard is Apply without the liberty map and line index. Callers that
// use it must not call IsLegal or LegalMoves until the matching UndoBoard.
func (p *Position) ApplyBoard(side board.Cell, sq board.Square, f *Flips) int {
	if p.Board[sq] != board.Empty {
		return 0
	}
	n := p.flip(side, sq, f)
	if n == 0 {
		return 0
	}
	p.Board[sq] = side
	p.Empties.Remove(sq)
	return n
}

// UndoBoard reverses ApplyBoard.
func (p *Position) UndoBoard(side board.Cell, sq board.Square, f *Flips) {
	p.revert(side, sq, f)
}

func (p *Position) revert(side board.Cell, sq board.Square, f *Flips) {
	opp := side.Opponent()
	p.Board[sq] = board.Empty
	for _, s := range f.Sq[:f.N] {
		p.Board[s] = opp
	}
	p.Empties.Restore(sq)
}

// LegalMoves appends the legal moves of side to dst, best-ranked first.
func (p *Position) LegalMoves(side board.Cell, dst []board.Square) []board.Square {
	for sq := p.Empties.First(); sq != board.ListEnd; sq = p.Empties.Next(sq) {
		if p.IsLegal(side, sq) {
			dst = append(dst, sq)
		}
	}
	return dst
}

// Mobility counts the legal moves of side.
func (p *Position) Mobility(side board.Cell) int {
	n := 0
	for sq := p.Empties.First(); sq != board.ListEnd; sq = p.Empties.Next(sq) {
		if p.IsLegal(side, sq) {
			n++
		}
	}
	return n
}

// HasMove reports whether side has any legal move.
func (p *Position) HasMove(side board.Cell) bool {
	for sq := p.Empties.First(); sq != board.ListEnd; sq = p.Empties.Next(sq) {
		if p.IsLegal(side, sq) {
			return true
		}
	}
	return false
}

// CountFlips returns how many discs side would turn by playing sq,
// without touching the board. It does not rely on the liberty map or the
// line index.
func (p *Position) CountFlips(side board.Cell, sq board.Square) int {
	return countFlips(&p.Board, side, sq)
}

func countFlips(b *board.Board, side board.Cell, sq board.Square) int {
	opp := side.Opponent()
	mask := board.DirMask[sq]
	n := 0
	for i, d := range board.Directions {
		if mask&(1<<i) == 0 {
			continue
		}
		c := int(sq) + d
		if b[c] != opp {
			continue
		}
		run := 0
		for b[c] == opp {
			c += d
			run++
		}
		if b[c] == side {
			n += run
		}
	}
	return n
}

// BruteForceLegal walks all eight directions from sq without any
// precomputed table.
func BruteForceLegal(b *board.Board, side board.Cell, sq board.Square) bool {
	if b[sq] != board.Empty {
		return false
	}
	opp := side.Opponent()
	for _, d := range board.Directions {
		c := int(sq) + d
		if c < 0 || c >= board.NumCells || b[c] != opp {
			continue
		}
		for c >= 0 && c < board.NumCells && b[c] == opp {
			c += d
		}
		if c >= 0 && c < board.NumCells && b[c] == side {
			return true
		}
	}
	return false
}

// Validate rebuilds the derived structures from the board and compares.
func (p *Position) Validate() error {
	if err := p.Empties.Validate(&p.Board); err != nil {
		return err
	}
	var libs board.LibertyMap
	libs.Reset(&p.Board)
	for n := 0; n < 64; n++ {
		sq := board.To91(n)
		if libs[sq] != p.Libs[sq] {
			return fmt.Errorf("liberties of %v: have %d, want %d", sq, p.Libs[sq], libs[sq])
		}
	}
	var ix lines.Index
	ix.Reset(&p.Board)
	for i := 0; i < lines.NumLines-1; i++ {
		if ix[i] != p.Lines[i] {
			return fmt.Errorf("line %d: have %#04x, want %#04x", i, p.Lines[i], ix[i])
		}
	}
	return nil
}
