// Package player is the automatic Othello player. It turns a game
// position and a set of Options into a move, using the midgame searcher,
// the exact endgame solver and a few opening rules.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"lukechampine.com/frand"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/endgame"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/game"
	"github.com/domino14/othello/movegen"
	"github.com/domino14/othello/search"
)

const (
	// ordering the root moves needs at least this much depth
	minDepthForRootOrdering = 3
	maxBaseForRootOrdering  = 50
	extraPliesMinBase       = 30
	extraPliesMaxBase       = 56
	maxMidgameDiscs         = 52
	minQuiescenceBase       = 12
	put2endValue            = -1000
)

// Result is the outcome of one move selection.
type Result struct {
	Move board.Square
	// Value is the final disc margin when Exact is set and a heuristic
	// score otherwise, from the mover's point of view.
	Value     float64
	Exact     bool
	WDL       endgame.Outcome
	Depth     int
	Nodes     uint64
	Evaluated uint64
	Pruned    uint64
	Elapsed   time.Duration
}

func (r *Result) String() string {
	if r.Exact {
		return fmt.Sprintf("%v (exact %+d)", r.Move, int(r.Value))
	}
	if r.WDL != endgame.Unknown {
		return fmt.Sprintf("%v (%.2f, %v)", r.Move, r.Value, r.WDL)
	}
	return fmt.Sprintf("%v (%.2f)", r.Move, r.Value)
}

// Player selects moves. A Player is not safe for concurrent use; give
// every goroutine its own.
type Player struct {
	opts   Options
	ttable *endgame.TranspositionTable
}

func New(opts Options) *Player {
	return &Player{opts: opts}
}

func (p *Player) Options() Options {
	return p.opts
}

func (p *Player) SetOptions(opts Options) {
	p.opts = opts
}

// SelectMove picks a move for the side to move in g. If the search runs
// out of time the error wraps search.ErrIncomplete and no move is given.
func (p *Player) SelectMove(ctx context.Context, g *game.Game) (*Result, error) {
	start := time.Now()
	pos := movegen.NewPosition(g.Board())
	color := g.ToMove()
	base := pos.Board.Discs() - 4
	res := &Result{Move: board.Pass}

	moves := pos.LegalMoves(color, nil)
	switch len(moves) {
	case 0:
		res.Elapsed = time.Since(start)
		return res, nil
	case 1:
		res.Move = moves[0]
		res.Elapsed = time.Since(start)
		log.Debug().Stringer("move", res.Move).Msg("forced-move")
		return res, nil
	}
	if sq, v, ok := p.openingMove(pos, color, base, g.LastMove(), moves); ok {
		res.Move, res.Value = sq, v
		res.Elapsed = time.Since(start)
		log.Debug().Stringer("move", sq).Int("base", base).Msg("opening-move")
		return res, nil
	}

	var deadline time.Time
	if p.opts.TimeLimit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.TimeLimit)
		defer cancel()
		deadline = start.Add(p.opts.TimeLimit)
	}

	secondLast := board.NoMove
	if h := g.History(); len(h) >= 2 {
		secondLast = h[len(h)-2]
	}

	stats := &search.Stats{}
	eg := errgroup.Group{}
	done := make(chan bool)
	eg.Go(func() error {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()
		var lastNodes uint64
		for {
			select {
			case <-done:
				return nil
			case <-ticker.C:
				nodes := stats.Nodes.Load()
				log.Debug().Uint64("nps", nodes-lastNodes).Msg("nodes-per-second")
				lastNodes = nodes
			}
		}
	})
	eg.Go(func() error {
		err := p.search(ctx, pos, color, base, g.LastMove(), secondLast, moves, deadline, stats, res)
		done <- true
		return err
	})
	err := eg.Wait()

	res.Nodes = stats.Nodes.Load()
	res.Evaluated = stats.Evaluated.Load()
	res.Pruned = stats.Pruned.Load()
	res.Elapsed = time.Since(start)
	if err != nil {
		log.Debug().Err(err).Uint64("nodes", res.Nodes).Msg("search-abandoned")
		return nil, err
	}
	log.Debug().
		Stringer("move", res.Move).
		Float64("value", res.Value).
		Bool("exact", res.Exact).
		Stringer("wdl", res.WDL).
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Float64("time-elapsed-sec", res.Elapsed.Seconds()).
		Msg("move-selected")
	return res, nil
}

func (p *Player) newSolver(pos *movegen.Position, ev *equity.Evaluator, stats *search.Stats,
	quiescence bool, deadline time.Time) *endgame.Solver {

	s := endgame.NewSolver(pos, ev, stats)
	s.SetQuiescence(quiescence)
	s.SetDeadline(deadline)
	if p.opts.TTFraction > 0 {
		if p.ttable == nil {
			p.ttable = &endgame.TranspositionTable{}
		}
		p.ttable.Reset(p.opts.TTFraction)
		s.SetTranspositionTable(p.ttable)
	}
	return s
}

// search runs the root of the game-tree search and fills in res.
func (p *Player) search(ctx context.Context, pos *movegen.Position, color board.Cell, base int,
	last, secondLast board.Square, moves []board.Square, deadline time.Time,
	stats *search.Stats, res *Result) error {

	o := p.opts
	other := color.Opponent()
	empties := pos.NumEmpty()
	self, opp := pos.Count(color), pos.Count(other)

	depth := o.Depth
	searchDepth := depth
	inEndGame, useSolver := false, false
	if base+4+o.Exact >= 64 {
		searchDepth = 64
		inEndGame = true
		useSolver = empties >= endgame.MinEmpties
	} else {
		if o.ExtraPlies && base >= extraPliesMinBase && base+depth < extraPliesMaxBase {
			depth += 2
		}
		for depth > 4 && base+4+depth > maxMidgameDiscs {
			depth -= 2
		}
		searchDepth = depth
	}
	res.Depth = searchDepth
	quiescence := base+depth >= minQuiescenceBase

	params := equity.ParamsForDepth(searchDepth)
	params.Perturb(o.Randomness)
	ev := equity.NewEvaluator(params)
	s := search.NewSearcher(pos, ev, search.Params{
		Base:                base,
		Quiescence:          quiescence,
		MPC:                 !inEndGame,
		NewCornerQuiescence: o.NewCornerQuiescence,
		Deadline:            deadline,
	}, stats)
	var solver *endgame.Solver
	if useSolver {
		solver = p.newSolver(pos, ev, stats, quiescence, deadline)
	}
	log.Debug().Int("base", base).Int("depth", searchDepth).Bool("endgame", inEndGame).
		Bool("solver", useSolver).Int("moves", len(moves)).Msg("search-start")

	allMoves := append([]board.Square(nil), moves...)
	root := search.Node{
		Last: last, SecondLast: secondLast, Color: color,
		Limit: searchDepth, Self: self, Opp: opp,
	}
	if searchDepth >= minDepthForRootOrdering && base <= maxBaseForRootOrdering {
		vals := make([]float64, len(moves))
		var err error
		moves, err = s.Order(ctx, root, moves, vals, true)
		if err != nil {
			return err
		}
	}

	alpha, beta := -search.Large, search.Large
	solverWindow := useSolver && empties <= endgame.MaxEmpties
	if solverWindow {
		alpha, beta = -64, 64
	}
	best, bestValue := moves[0], -2*search.Large
	var finals []board.Square
	var finalVals []float64
	var f movegen.Flips

	for _, sq := range moves {
		nf := pos.Apply(color, sq, &f)
		if nf == 0 {
			panic(fmt.Sprintf("player: listed move %v for %v flips nothing", sq, color))
		}
		child := search.Node{
			Last: sq, SecondLast: last, Color: other,
			Depth: 1, Limit: searchDepth,
			Self: opp - nf, Opp: self + nf + 1,
		}
		var v float64
		var err error
		switch {
		case inEndGame && useSolver && pos.NumEmpty() <= endgame.MaxEmpties:
			var sv int
			if o.WinLarge {
				sv, err = solver.Solve(ctx, sq, other, -beta, -alpha)
			} else {
				sv, err = solver.Solve(ctx, sq, other, -1, -max(alpha, -1))
			}
			v = -float64(sv)
		case inEndGame:
			if o.WinLarge {
				v, err = s.Max(ctx, child, -beta, -alpha)
			} else {
				v, err = s.Max(ctx, child, -1, -max(alpha, -1))
			}
			v = -v
		case searchDepth == 1 && !hasCornerMove(pos, other):
			v = -s.Evaluate(other, other, opp-nf, self+nf+1)
		default:
			v, err = s.Max(ctx, child, -beta, -alpha)
			v = -v
		}
		if err == nil && base <= 2 {
			finals, finalVals = insertOpening(finals, finalVals, sq, v,
				avoidInOpening(pos, other, sq, opp-nf))
		}
		pos.Undo(color, sq, &f)
		if err != nil {
			return err
		}
		if v > bestValue {
			best, bestValue = sq, v
			if bestValue > alpha {
				alpha = bestValue
				if solverWindow && !o.WinLarge && alpha >= 1 {
					break
				}
				if alpha >= beta {
					break
				}
			}
		}
	}

	if o.Randomness > 0 && base == 2 {
		idx := frand.Intn(3)
		// a 4-move reply means the perpendicular opening
		if idx < len(finals) && (o.Randomness >= 8 || pos.Mobility(other) == 4) {
			best, bestValue = finals[idx], finalVals[idx]
		}
	}
	if inEndGame && !useSolver {
		bestValue /= equity.EndScale
	}

	exact := false
	if o.WDLMargin > 0 && empties > o.Exact && empties <= o.Exact+o.WDLMargin &&
		empties-1 <= endgame.MaxEmpties {
		wdlSolver := solver
		if wdlSolver == nil {
			wdlSolver = p.newSolver(pos, ev, stats, quiescence, deadline)
		}
		mv, outcome, err := wdlSolver.WDL(ctx, color, allMoves, best)
		if err != nil {
			return err
		}
		res.WDL = outcome
		switch outcome {
		case endgame.Win:
			best = mv
			if bestValue <= 0 {
				bestValue = 2
			}
		case endgame.Draw:
			best, bestValue, exact = mv, 0, true
		case endgame.Loss:
			if bestValue >= 0 {
				bestValue = -2
			}
		}
	}

	switch {
	case bestValue >= equity.EndScale:
		bestValue /= equity.EndScale
		exact = bestValue == 64
	case bestValue <= -equity.EndScale:
		bestValue /= equity.EndScale
		exact = true
	case inEndGame:
		exact = true
	}
	res.Move, res.Value, res.Exact = best, bestValue, exact
	return nil
}

func hasCornerMove(pos *movegen.Position, side board.Cell) bool {
	return lo.SomeBy(board.Corners[:], func(c board.Square) bool {
		return pos.IsLegal(side, c)
	})
}

// avoidInOpening reports whether sq, just played, is a poor early move:
// one that leaves the opponent few discs but three replies, one that opens
// six replies, or a second-line square.
func avoidInOpening(pos *movegen.Position, other board.Cell, sq board.Square, oppDiscs int) bool {
	nlm := pos.Mobility(other)
	return (nlm == 3 && oppDiscs == 2) || nlm == 6 || thirdMoveAvoid[sq]
}

// insertOpening keeps the opening candidates best first. Moves to avoid go
// to the back with a very low value.
func insertOpening(moves []board.Square, vals []float64, sq board.Square, v float64,
	avoid bool) ([]board.Square, []float64) {

	idx := 0
	for idx < len(moves) && (avoid || v <= vals[idx]) {
		idx++
	}
	if avoid {
		v = put2endValue
	}
	moves = append(moves, 0)
	vals = append(vals, 0)
	copy(moves[idx+1:], moves[idx:])
	copy(vals[idx+1:], vals[idx:])
	moves[idx], vals[idx] = sq, v
	return moves, vals
}
