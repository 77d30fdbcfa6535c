// Package search is the midgame alpha-beta searcher. It is a negamax over a
// single movegen.Position, with shallow-search move ordering, a forward
// pruning cut on the ordered move list, and a short extension that looks
// for corner trades right at the search horizon.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/movegen"
)

// ErrIncomplete is returned when the time budget runs out mid-search.
var ErrIncomplete = errors.New("search incomplete")

const (
	// Large bounds every score; decided games are at most 64<<10.
	Large = 1e30

	timeCheckInterval = 1024

	minDepthForOrdering   = 3
	maxOrderingDepth      = 8
	orderingDepthOffset   = 4
	onePlyOrderingDepth   = 5
	mobOrderingDepth      = 4
	minEmptiesForOrdering = 14
	minEmptiesForEval     = 12

	mpcThreshold     = 3.0
	minDepthForMPC   = 4
	minEmptiesForMPC = 20
	minMovesForMPC   = 3
	mpcBaseMinMoves  = 8
	mpcTopBound      = 100.5
)

// Params fixes the behaviour of one search. They are set once by the
// caller and never changed during the search.
type Params struct {
	// Base is the number of moves played at the root (discs - 4).
	Base int
	// Quiescence enables the corner-trade extension at the horizon.
	Quiescence bool
	// MPC enables cutting the tail of the ordered move list.
	MPC bool
	// NewCornerQuiescence also extends moves that hand the opponent a
	// corner that was not available before.
	NewCornerQuiescence bool
	// Deadline, if set, stops the search with ErrIncomplete.
	Deadline time.Time
}

// Stats are shared between every search working for one move selection.
type Stats struct {
	Nodes     atomic.Uint64
	Evaluated atomic.Uint64
	Pruned    atomic.Uint64
}

func (s *Stats) Reset() {
	s.Nodes.Store(0)
	s.Evaluated.Store(0)
	s.Pruned.Store(0)
}

// Node is the state passed down the recursion. Depth counts moves from the
// root; passes do not advance it. Limit is the horizon for this subtree and
// Passes the parity of passes on the path.
type Node struct {
	Last       board.Square
	SecondLast board.Square
	Color      board.Cell
	Depth      int
	Limit      int
	Passes     int
	Self       int
	Opp        int
}

// Searcher runs searches over one Position.
type Searcher struct {
	pos       *movegen.Position
	eval      *equity.Evaluator
	params    Params
	stats     *Stats
	lastCheck uint64
}

func NewSearcher(pos *movegen.Position, ev *equity.Evaluator, p Params, stats *Stats) *Searcher {
	if stats == nil {
		stats = &Stats{}
	}
	return &Searcher{pos: pos, eval: ev, params: p, stats: stats}
}

func (s *Searcher) Params() Params {
	return s.params
}

func (s *Searcher) Stats() *Stats {
	return s.stats
}

// Evaluate is the counted static evaluation.
func (s *Searcher) Evaluate(forWhom, whoseTurn board.Cell, self, opp int) float64 {
	s.stats.Evaluated.Add(1)
	s.stats.Nodes.Add(1)
	return s.eval.Evaluate(s.pos, forWhom, whoseTurn, self, opp)
}

func (s *Searcher) endScore(self, opp int) float64 {
	s.stats.Evaluated.Add(1)
	s.stats.Nodes.Add(1)
	return equity.EndScore(self, opp)
}

// CheckTime returns ErrIncomplete if the context is done or the deadline
// passed. It only looks at the clock once every 1024 nodes.
func (s *Searcher) CheckTime(ctx context.Context) error {
	n := s.stats.Nodes.Load()
	if n-s.lastCheck < timeCheckInterval {
		return nil
	}
	s.lastCheck = n
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrIncomplete, ctx.Err())
	}
	if !s.params.Deadline.IsZero() && time.Now().After(s.params.Deadline) {
		return ErrIncomplete
	}
	return nil
}

// Max returns the value of n for n.Color within the window (alpha, beta).
func (s *Searcher) Max(ctx context.Context, n Node, alpha, beta float64) (float64, error) {
	s.stats.Nodes.Add(1)
	if err := s.CheckTime(ctx); err != nil {
		return 0, err
	}
	pos := s.pos
	if discs := s.params.Base + n.Depth + 4; discs+pos.NumEmpty() != 64 {
		panic(fmt.Sprintf("search: %d discs at depth %d but %d empties", discs, n.Depth, pos.NumEmpty()))
	}
	other := n.Color.Opponent()
	var f movegen.Flips

	if pos.NumEmpty() == 1 {
		sq := pos.Empties.First()
		if nf := pos.ApplyBoard(n.Color, sq, &f); nf > 0 {
			v := s.endScore(n.Self+nf+1, n.Opp-nf)
			pos.UndoBoard(n.Color, sq, &f)
			return v, nil
		}
		if nf := pos.ApplyBoard(other, sq, &f); nf > 0 {
			v := s.endScore(n.Self-nf, n.Opp+nf+1)
			pos.UndoBoard(other, sq, &f)
			return v, nil
		}
		return s.endScore(n.Self, n.Opp), nil
	}

	var buf [64]board.Square
	moves := pos.LegalMoves(n.Color, buf[:0])
	if len(moves) == 0 {
		if n.Last == board.Pass {
			return s.endScore(n.Self, n.Opp), nil
		}
		child := Node{
			Last: board.Pass, SecondLast: n.Last, Color: other,
			Depth: n.Depth, Limit: n.Limit, Passes: 1 - n.Passes,
			Self: n.Opp, Opp: n.Self,
		}
		v, err := s.Max(ctx, child, -beta, -alpha)
		return -v, err
	}

	remaining := n.Limit - n.Depth
	if remaining >= minDepthForOrdering && s.params.Base+n.Depth <= 64-minEmptiesForOrdering {
		var vals [64]float64
		var err error
		moves, err = s.Order(ctx, n, moves, vals[:len(moves)], false)
		if err != nil {
			return 0, err
		}
	}

	var cornerAvail [4]bool
	if s.params.Quiescence && s.params.NewCornerQuiescence {
		for i, c := range board.Corners {
			cornerAvail[i] = pos.IsLegal(other, c)
		}
	}

	best := -Large
	for _, sq := range moves {
		nf := pos.Apply(n.Color, sq, &f)
		if nf == 0 {
			panic(fmt.Sprintf("search: listed move %v for %v flips nothing", sq, n.Color))
		}
		self, opp := n.Self+nf+1, n.Opp-nf
		var v float64
		var err error
		if n.Depth+1 >= n.Limit+n.Passes {
			if s.params.Quiescence {
				v, err = s.quiesce(ctx, n, sq, self, opp, alpha, beta, &cornerAvail)
			} else {
				v = -s.Evaluate(other, other, opp, self)
			}
		} else {
			child := Node{
				Last: sq, SecondLast: n.Last, Color: other,
				Depth: n.Depth + 1, Limit: n.Limit, Passes: n.Passes,
				Self: opp, Opp: self,
			}
			v, err = s.Max(ctx, child, -beta, -alpha)
			v = -v
		}
		pos.Undo(n.Color, sq, &f)
		if err != nil {
			return 0, err
		}
		if v > best {
			best = v
			if best > alpha {
				alpha = best
				if alpha >= beta {
					s.stats.Pruned.Add(1)
					return alpha, nil
				}
			}
		}
	}
	return best, nil
}

// Order sorts moves best first by a shallow search and, when MPC is on,
// drops the moves that trail the best one by too much. vals receives the
// shallow values in the new order. At the root every move is valued by a
// full-window search; below it cheaper measures are used when little depth
// remains.
func (s *Searcher) Order(ctx context.Context, n Node, moves []board.Square, vals []float64, root bool) ([]board.Square, error) {
	pos := s.pos
	other := n.Color.Opponent()
	remaining := n.Limit - n.Depth
	ordDepth := min(remaining-orderingDepthOffset, maxOrderingDepth, pos.NumEmpty()-minEmptiesForEval)
	var f movegen.Flips

	for i := range moves {
		sq := moves[i]
		nf := pos.Apply(n.Color, sq, &f)
		if nf == 0 {
			panic(fmt.Sprintf("search: ordering move %v for %v flips nothing", sq, n.Color))
		}
		var v float64
		var err error
		switch {
		case !root && remaining <= mobOrderingDepth:
			v = -float64(pos.Mobility(other))
		case !root && remaining <= onePlyOrderingDepth:
			v = -s.Evaluate(other, other, n.Opp-nf, n.Self+nf+1)
		default:
			child := Node{
				Last: sq, SecondLast: n.Last, Color: other,
				Depth: n.Depth + 1, Limit: n.Depth + ordDepth, Passes: n.Passes,
				Self: n.Opp - nf, Opp: n.Self + nf + 1,
			}
			v, err = s.Max(ctx, child, -Large, Large)
			v = -v
		}
		pos.Undo(n.Color, sq, &f)
		if err != nil {
			return nil, err
		}
		// insertion keeps equal values in generation order
		idx := 0
		for idx < i && v <= vals[idx] {
			idx++
		}
		copy(moves[idx+1:i+1], moves[idx:i])
		copy(vals[idx+1:i+1], vals[idx:i])
		moves[idx] = sq
		vals[idx] = v
	}

	if s.params.MPC && ordDepth >= minDepthForMPC && len(moves) >= minMovesForMPC &&
		pos.NumEmpty() >= minEmptiesForMPC {
		top := vals[0]
		if top >= -mpcTopBound && top <= mpcTopBound {
			threshold := mpcThreshold / float64(ordDepth)
			j := 1
			for j < len(moves) && top-vals[j] <= threshold {
				j++
			}
			keep := max(j, min(len(moves), mpcBaseMinMoves-ordDepth/2))
			moves = moves[:keep]
		}
	}
	return moves, nil
}

// quiesce values the position after n.Color played place, when the move
// reached the horizon. Corner trades in progress are followed two more
// plies; otherwise it is the static evaluation.
func (s *Searcher) quiesce(ctx context.Context, n Node, place board.Square, self, opp int,
	alpha, beta float64, cornerAvail *[4]bool) (float64, error) {

	pos := s.pos
	other := n.Color.Opponent()
	cur := -Large
	updated := false
	var f movegen.Flips

	// After the opponent's reply lands on a square, search color's answer
	// from there with two more plies of horizon.
	reply := func(sq board.Square, nfp int) (float64, error) {
		child := Node{
			Last: sq, SecondLast: place, Color: n.Color,
			Depth: n.Depth + 2, Limit: n.Limit + 2, Passes: n.Passes,
			Self: self - nfp, Opp: opp + nfp + 1,
		}
		return s.Max(ctx, child, alpha, beta)
	}
	take := func(v float64, ok bool) {
		if ok && v > cur {
			cur = v
			updated = true
		}
	}

	// A corner was taken two plies ago: the opponent may take another one.
	if board.IsCorner(n.SecondLast) {
		worst, found := Large, false
		for _, c := range board.Corners {
			nfp := pos.Apply(other, c, &f)
			if nfp == 0 {
				continue
			}
			v, err := reply(c, nfp)
			pos.Undo(other, c, &f)
			if err != nil {
				return 0, err
			}
			if v < worst {
				worst, found = v, true
			}
		}
		take(worst, found)
	}

	// place is a corner: the opponent may answer along an edge to open the
	// far corner for itself.
	if idx := board.CornerIndex(place); idx >= 0 {
		worst, found := Large, false
		for j := 0; j < 2; j++ {
			sq := board.CSquares[idx][j]
			dir := int(sq) - int(place)
			for pos.Board[sq] == other || pos.Board[sq] == n.Color {
				sq = board.Square(int(sq) + dir)
			}
			if pos.Board[sq] != board.Empty || pos.Board[int(sq)+dir] != n.Color {
				continue
			}
			nfp := pos.Apply(other, sq, &f)
			if nfp == 0 {
				continue
			}
			if pos.IsLegal(other, board.FarCorners[idx][j]) {
				v, err := reply(sq, nfp)
				if err != nil {
					pos.Undo(other, sq, &f)
					return 0, err
				}
				if v < worst {
					worst, found = v, true
				}
			}
			pos.Undo(other, sq, &f)
		}
		take(worst, found)
	}

	// The opponent just took a corner and place may have opened a corner
	// for color in return.
	if idx := board.CornerIndex(n.Last); idx >= 0 {
		if pos.IsLegal(n.Color, board.FarCorners[idx][0]) || pos.IsLegal(n.Color, board.FarCorners[idx][1]) {
			child := Node{
				Last: place, SecondLast: n.Last, Color: other,
				Depth: n.Depth + 1, Limit: n.Limit + 2, Passes: n.Passes,
				Self: opp, Opp: self,
			}
			v, err := s.Max(ctx, child, -beta, -alpha)
			if err != nil {
				return 0, err
			}
			take(-v, true)
		}
	}

	// place handed the opponent a corner it did not have before.
	if s.params.NewCornerQuiescence && !board.IsCorner(place) {
		worst, found := Large, false
		for i, c := range board.Corners {
			if cornerAvail[i] || !pos.IsLegal(other, c) {
				continue
			}
			nfp := pos.Apply(other, c, &f)
			if nfp == 0 {
				continue
			}
			v, err := reply(c, nfp)
			pos.Undo(other, c, &f)
			if err != nil {
				return 0, err
			}
			if v < worst {
				worst, found = v, true
			}
		}
		take(worst, found)
	}

	if !updated {
		return -s.Evaluate(other, other, opp, self), nil
	}
	return cur, nil
}
