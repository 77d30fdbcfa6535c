// Package game keeps the state of one Othello game: the position after
// every move, the move ledger with undo and redo, and the final result.
package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/movegen"
)

var (
	ErrIllegalMove = errors.New("illegal move")
	ErrNoMoreUndo  = errors.New("no more moves to undo")
	ErrNoMoreRedo  = errors.New("no more moves to redo")
	ErrGameOver    = errors.New("the game is over")
)

// Game is a game in progress. Passes are moves like any other, so the side
// to move follows from the move number alone.
type Game struct {
	mirrored bool
	// boards[i] is the position before moves[i].
	boards []board.Board
	moves  []board.Square
	// m is the number of moves played; moves[m:] can be redone.
	m int
}

// New starts a game from the standard or the mirrored start position.
func New(mirrored bool) *Game {
	return &Game{
		mirrored: mirrored,
		boards:   []board.Board{*board.New(mirrored)},
	}
}

// Replay builds a game by playing moves in order, then undoing back to
// move m.
func Replay(mirrored bool, moves []board.Square, m int) (*Game, error) {
	if m < 0 || m > len(moves) {
		return nil, fmt.Errorf("move number %d outside 0..%d", m, len(moves))
	}
	g := New(mirrored)
	for i, sq := range moves {
		if err := g.Play(sq); err != nil {
			return nil, fmt.Errorf("move %d (%v): %w", i+1, sq, err)
		}
	}
	for g.m > m {
		g.Undo()
	}
	return g, nil
}

func (g *Game) Mirrored() bool {
	return g.mirrored
}

// Board returns a copy of the current position.
func (g *Game) Board() *board.Board {
	b := g.boards[g.m]
	return &b
}

// ToMove is the colour whose turn it is.
func (g *Game) ToMove() board.Cell {
	if g.m%2 == 0 {
		return board.Black
	}
	return board.White
}

// MoveNumber is the number of moves played, passes included.
func (g *Game) MoveNumber() int {
	return g.m
}

// Top is the number of moves in the ledger, including undone ones.
func (g *Game) Top() int {
	return len(g.moves)
}

// LastMove is the most recent move, or board.NoMove at the start.
func (g *Game) LastMove() board.Square {
	if g.m == 0 {
		return board.NoMove
	}
	return g.moves[g.m-1]
}

// History returns the moves played so far.
func (g *Game) History() []board.Square {
	return append([]board.Square(nil), g.moves[:g.m]...)
}

// Ledger returns every move, including those that can be redone.
func (g *Game) Ledger() []board.Square {
	return append([]board.Square(nil), g.moves...)
}

// LegalMoves lists the legal moves of the side to move.
func (g *Game) LegalMoves() []board.Square {
	pos := movegen.NewPosition(&g.boards[g.m])
	return pos.LegalMoves(g.ToMove(), nil)
}

// Play makes a move for the side to move. board.Pass is accepted only when
// there is no legal move. Playing discards any moves that could be redone.
func (g *Game) Play(sq board.Square) error {
	if sq == board.Pass {
		return g.Pass()
	}
	if g.IsOver() {
		return ErrGameOver
	}
	side := g.ToMove()
	pos := movegen.NewPosition(&g.boards[g.m])
	if !sq.OnBoard() || !pos.IsLegal(side, sq) {
		return fmt.Errorf("%w: %v for %v", ErrIllegalMove, sq, side)
	}
	var f movegen.Flips
	pos.Apply(side, sq, &f)
	g.push(sq, &pos.Board)
	log.Debug().Stringer("move", sq).Stringer("side", side).Int("flips", f.N).Msg("played")
	return nil
}

// Pass gives up the turn. It is only legal when the side to move has no
// move and the opponent does.
func (g *Game) Pass() error {
	if g.IsOver() {
		return ErrGameOver
	}
	pos := movegen.NewPosition(&g.boards[g.m])
	if pos.HasMove(g.ToMove()) {
		return fmt.Errorf("%w: cannot pass with a legal move", ErrIllegalMove)
	}
	g.push(board.Pass, &pos.Board)
	return nil
}

func (g *Game) push(sq board.Square, after *board.Board) {
	g.moves = append(g.moves[:g.m], sq)
	g.boards = append(g.boards[:g.m+1], *after)
	g.m++
}

func (g *Game) Undo() error {
	if g.m == 0 {
		return ErrNoMoreUndo
	}
	g.m--
	return nil
}

func (g *Game) Redo() error {
	if g.m == len(g.moves) {
		return ErrNoMoreRedo
	}
	g.m++
	return nil
}

// UndoN undoes up to n moves and returns how many were undone.
func (g *Game) UndoN(n int) int {
	done := 0
	for ; done < n && g.Undo() == nil; done++ {
	}
	return done
}

// RedoN redoes up to n moves and returns how many were redone.
func (g *Game) RedoN(n int) int {
	done := 0
	for ; done < n && g.Redo() == nil; done++ {
	}
	return done
}

func (g *Game) UndoAll() {
	g.m = 0
}

func (g *Game) RedoAll() {
	g.m = len(g.moves)
}

// IsOver reports whether neither side can move.
func (g *Game) IsOver() bool {
	pos := movegen.NewPosition(&g.boards[g.m])
	return !pos.HasMove(board.Black) && !pos.HasMove(board.White)
}

// Score returns the disc counts.
func (g *Game) Score() (black, white int) {
	b := &g.boards[g.m]
	return b.Count(board.Black), b.Count(board.White)
}

// Margin is black's final margin, with the empty squares going to the
// winner.
func (g *Game) Margin() int {
	black, white := g.Score()
	empties := board.Dim*board.Dim - black - white
	switch {
	case black > white:
		return black - white + empties
	case black < white:
		return black - white - empties
	}
	return 0
}

// Winner is the colour that won, or board.Empty for a draw or a game that
// is not over.
func (g *Game) Winner() board.Cell {
	if !g.IsOver() {
		return board.Empty
	}
	switch m := g.Margin(); {
	case m > 0:
		return board.Black
	case m < 0:
		return board.White
	}
	return board.Empty
}

// Display renders the position with legal moves marked and a status line.
func (g *Game) Display() string {
	var sb strings.Builder
	moves := g.LegalMoves()
	b := g.boards[g.m]
	sb.WriteString(b.Display(moves))
	if g.IsOver() {
		black, white := g.Score()
		switch w := g.Winner(); w {
		case board.Empty:
			fmt.Fprintf(&sb, "Game over. Draw %d-%d.\n", black, white)
		default:
			m := g.Margin()
			fmt.Fprintf(&sb, "Game over. %v wins by %d.\n", w, max(m, -m))
		}
		return sb.String()
	}
	fmt.Fprintf(&sb, "Move %d, %v to play", g.m+1, g.ToMove())
	if len(moves) == 0 {
		sb.WriteString(" (must pass)\n")
		return sb.String()
	}
	names := lo.Map(moves, func(sq board.Square, _ int) string { return sq.String() })
	fmt.Fprintf(&sb, ": %s\n", strings.Join(names, " "))
	return sb.String()
}
