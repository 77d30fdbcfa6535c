// Package endgame solves positions with few empty squares exactly. Scores
// are final disc differences for the side to move, with the empty squares
// going to the winner.
package endgame

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/movegen"
	"github.com/domino14/othello/search"
)

const (
	// MaxEmpties is the most empty squares the solver takes on.
	MaxEmpties = 32
	// MinEmpties is the fewest empty squares worth handing to the solver;
	// below that the midgame search reaches the end just as fast.
	MinEmpties = 6

	ttMinEmpties      = 10
	timeCheckInterval = 1024
	worstScore        = -1000
)

var ErrTooManyEmpties = errors.New("too many empty squares for the endgame solver")

// Solver is an exact negamax over one movegen.Position. Move ordering is
// delegated to an Orderer that changes as the board fills up.
type Solver struct {
	pos        *movegen.Position
	eval       *equity.Evaluator
	stats      *search.Stats
	ttable     *TranspositionTable
	quiescence bool
	deadline   time.Time
	lastCheck  uint64

	// holeID maps every empty square to the bit of its region; parities
	// has a bit set for every region with an odd number of empties.
	holeID   [board.NumCells]uint32
	parities uint32

	// per-empties scratch space for the orderers
	moveBuf [board.Dim*board.Dim + 1][board.Dim * board.Dim]board.Square
	valBuf  [board.Dim*board.Dim + 1][board.Dim * board.Dim]float64
}

func NewSolver(pos *movegen.Position, ev *equity.Evaluator, stats *search.Stats) *Solver {
	if stats == nil {
		stats = &search.Stats{}
	}
	return &Solver{pos: pos, eval: ev, stats: stats}
}

// SetTranspositionTable enables caching of results. The table must have
// been Reset.
func (s *Solver) SetTranspositionTable(tt *TranspositionTable) {
	s.ttable = tt
}

// SetQuiescence sets the corner-trade extension of the shallow searches
// used for ordering.
func (s *Solver) SetQuiescence(q bool) {
	s.quiescence = q
}

func (s *Solver) SetDeadline(t time.Time) {
	s.deadline = t
}

func (s *Solver) Stats() *search.Stats {
	return s.stats
}

// Solve returns the final disc margin for color, who is to move after last
// was played. The result is exact when it falls strictly inside
// (alpha, beta); otherwise it is a bound on the correct side.
func (s *Solver) Solve(ctx context.Context, last board.Square, color board.Cell, alpha, beta float64) (int, error) {
	return s.SolveWith(ctx, nil, last, color, alpha, beta)
}

// SolveWith is Solve with the root orderer forced. A nil orderer picks one
// from the number of empties.
func (s *Solver) SolveWith(ctx context.Context, ord Orderer, last board.Square, color board.Cell,
	alpha, beta float64) (int, error) {

	empties := s.pos.NumEmpty()
	if empties > MaxEmpties {
		return 0, fmt.Errorf("%w: %d", ErrTooManyEmpties, empties)
	}
	a := int(max(min(64, alpha), -64))
	b := int(max(min(64, beta), -64))
	if a >= b {
		return b, nil
	}
	s.setUpParity()
	if ord == nil {
		ord = OrdererFor(empties)
	}
	discDiff := s.pos.Count(color) - s.pos.Count(color.Opponent())
	log.Debug().Int("empties", empties).Stringer("orderer", ord).
		Int("alpha", a).Int("beta", b).Msg("endgame-solve")
	return s.solve(ctx, ord, last, color, empties, discDiff, a, b)
}

// SolveMove plays sq for color, solves the reply and returns the margin
// for color.
func (s *Solver) SolveMove(ctx context.Context, color board.Cell, sq board.Square, alpha, beta float64) (int, error) {
	var f movegen.Flips
	if s.pos.Apply(color, sq, &f) == 0 {
		panic(fmt.Sprintf("endgame: %v is not a legal move for %v", sq, color))
	}
	v, err := s.Solve(ctx, sq, color.Opponent(), -beta, -alpha)
	s.pos.Undo(color, sq, &f)
	if err != nil {
		return 0, err
	}
	return -v, nil
}

func (s *Solver) solve(ctx context.Context, ord Orderer, last board.Square, color board.Cell,
	empties, discDiff, alpha, beta int) (int, error) {

	s.stats.Nodes.Add(1)
	if err := s.checkTime(ctx); err != nil {
		return 0, err
	}
	pos := s.pos
	other := color.Opponent()

	alphaOrig := alpha
	hint := board.NoMove
	var key uint64
	useTT := s.ttable != nil && empties >= ttMinEmpties
	if useTT {
		key = s.ttable.zobrist.Hash(&pos.Board, color)
		if e := s.ttable.lookup(key); e.valid() && int(e.depth()) == empties {
			score := int(e.score)
			switch e.flag() {
			case TTExact:
				return score, nil
			case TTLower:
				alpha = max(alpha, score)
			case TTUpper:
				beta = min(beta, score)
			}
			if alpha >= beta {
				return score, nil
			}
			hint = e.best
		}
	}

	moves, err := ord.Order(ctx, s, last, color, empties, discDiff, s.moveBuf[empties][:0])
	if err != nil {
		return 0, err
	}
	if hint != board.NoMove {
		promote(moves, hint)
	}

	indexed := ord.Indexed(empties)
	child := ord.Child(empties)
	score := worstScore
	best := board.NoMove
	var f movegen.Flips
	for _, sq := range moves {
		var nf int
		if indexed {
			nf = pos.Apply(color, sq, &f)
		} else {
			nf = pos.ApplyBoard(color, sq, &f)
		}
		if nf == 0 {
			continue
		}
		hole := s.holeID[sq]
		s.parities ^= hole
		var v int
		if empties == 2 {
			v = s.lastSquare(color, discDiff, nf)
		} else {
			v, err = s.solve(ctx, child, sq, other, empties-1, -discDiff-2*nf-1, -beta, -alpha)
			v = -v
		}
		s.parities ^= hole
		if indexed {
			pos.Undo(color, sq, &f)
		} else {
			pos.UndoBoard(color, sq, &f)
		}
		if err != nil {
			return 0, err
		}
		if v > score {
			score = v
			best = sq
			if score > alpha {
				alpha = score
				if alpha >= beta {
					s.stats.Pruned.Add(1)
					break
				}
			}
		}
	}

	if best == board.NoMove {
		if last == board.Pass {
			s.stats.Evaluated.Add(1)
			return finalScore(discDiff, empties), nil
		}
		v, err := s.solve(ctx, ord, board.Pass, other, empties, -discDiff, -beta, -alpha)
		if err != nil {
			return 0, err
		}
		score = -v
	}

	if useTT {
		var flag uint8
		switch {
		case score <= alphaOrig:
			flag = TTUpper
		case score >= beta:
			flag = TTLower
		default:
			flag = TTExact
		}
		s.ttable.store(key, TableEntry{
			score:        int8(score),
			flagAndDepth: flag<<6 | uint8(empties),
			best:         best,
		})
	}
	return score, nil
}

// lastSquare scores the position after color's move left a single empty
// square. discDiff is color's margin before that move, nf its flip count.
func (s *Solver) lastSquare(color board.Cell, discDiff, nf int) int {
	s.stats.Nodes.Add(1)
	s.stats.Evaluated.Add(1)
	sq := s.pos.Empties.First()
	if n := s.pos.CountFlips(color.Opponent(), sq); n > 0 {
		return discDiff + 2*(nf-n)
	}
	if n := s.pos.CountFlips(color, sq); n > 0 {
		return discDiff + 2*(nf+n+1)
	}
	// nobody can take it; it goes to the winner
	v := discDiff + 2*nf
	if v >= 0 {
		v += 2
	}
	return v
}

// finalScore is the margin of a finished game.
func finalScore(discDiff, empties int) int {
	switch {
	case discDiff > 0:
		return discDiff + empties
	case discDiff < 0:
		return discDiff - empties
	}
	return 0
}

func (s *Solver) checkTime(ctx context.Context) error {
	n := s.stats.Nodes.Load()
	if n-s.lastCheck < timeCheckInterval {
		return nil
	}
	s.lastCheck = n
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", search.ErrIncomplete, ctx.Err())
	}
	if !s.deadline.IsZero() && time.Now().After(s.deadline) {
		return search.ErrIncomplete
	}
	return nil
}
