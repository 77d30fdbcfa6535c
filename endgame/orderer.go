package endgame

import (
	"context"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/movegen"
	"github.com/domino14/othello/search"
)

const (
	minEmptiesForSearch   = 18
	minEmptiesForEval     = 17
	minEmptiesForMobility = 8
	minEmptiesForParity   = 5

	maxShallowDepth = 8
)

// An Orderer decides in which order the solver tries the moves of a node,
// and which orderer the children get.
type Orderer interface {
	// Order appends the squares to try to dst, most promising first. It
	// may return squares that turn out not to be legal.
	Order(ctx context.Context, s *Solver, last board.Square, color board.Cell,
		empties, discDiff int, dst []board.Square) ([]board.Square, error)
	// Indexed reports whether the moves of a node with this many empties
	// must keep the line index and liberty map current.
	Indexed(empties int) bool
	// Child is the orderer for the children of a node with empties.
	Child(empties int) Orderer
	String() string
}

var (
	// FixedOrder tries the empty squares in their static ranking.
	FixedOrder Orderer = fixedOrder{}
	// ParityOrder tries squares in odd regions before squares in even ones.
	ParityOrder Orderer = parityOrder{}
	// MobilityOrder tries first the moves that leave the opponent the
	// fewest replies.
	MobilityOrder Orderer = mobilityOrder{}
	// EvalOrder ranks moves by the static evaluation of the opponent.
	EvalOrder Orderer = evalOrder{}
	// ShallowSearchOrder ranks moves by a short midgame search.
	ShallowSearchOrder Orderer = shallowSearchOrder{}
)

// OrdererFor picks the orderer for a root with the given empties.
func OrdererFor(empties int) Orderer {
	switch {
	case empties >= minEmptiesForSearch:
		return ShallowSearchOrder
	case empties >= minEmptiesForEval:
		return EvalOrder
	case empties >= minEmptiesForMobility:
		return MobilityOrder
	case empties >= minEmptiesForParity:
		return ParityOrder
	}
	return FixedOrder
}

type fixedOrder struct{}

func (fixedOrder) Order(_ context.Context, s *Solver, _ board.Square, _ board.Cell,
	_, _ int, dst []board.Square) ([]board.Square, error) {

	return s.pos.Empties.Squares(dst), nil
}

func (fixedOrder) Indexed(int) bool  { return false }
func (fixedOrder) Child(int) Orderer { return FixedOrder }
func (fixedOrder) String() string    { return "fixed" }

type parityOrder struct{}

func (parityOrder) Order(_ context.Context, s *Solver, _ board.Square, _ board.Cell,
	_, _ int, dst []board.Square) ([]board.Square, error) {

	em := &s.pos.Empties
	mask := s.parities
	for pass := 0; pass < 2; pass++ {
		for sq := em.First(); sq != board.ListEnd; sq = em.Next(sq) {
			if s.holeID[sq]&mask != 0 {
				dst = append(dst, sq)
			}
		}
		mask = ^mask
	}
	return dst, nil
}

func (parityOrder) Indexed(int) bool { return false }

func (parityOrder) Child(empties int) Orderer {
	if empties < minEmptiesForParity+1 {
		return FixedOrder
	}
	return ParityOrder
}

func (parityOrder) String() string { return "parity" }

type mobilityOrder struct{}

func (mobilityOrder) Order(_ context.Context, s *Solver, _ board.Square, color board.Cell,
	empties, _ int, dst []board.Square) ([]board.Square, error) {

	pos := s.pos
	other := color.Opponent()
	vals := s.valBuf[empties][:0]
	var f movegen.Flips
	for sq := pos.Empties.First(); sq != board.ListEnd; sq = pos.Empties.Next(sq) {
		if pos.Apply(color, sq, &f) == 0 {
			continue
		}
		mob := pos.Mobility(other)
		pos.Undo(color, sq, &f)
		dst, vals = insertAscending(dst, vals, sq, float64(mob))
	}
	return dst, nil
}

func (mobilityOrder) Indexed(empties int) bool {
	return empties >= minEmptiesForMobility+1
}

func (mobilityOrder) Child(empties int) Orderer {
	if empties < minEmptiesForMobility+1 {
		return ParityOrder
	}
	return MobilityOrder
}

func (mobilityOrder) String() string { return "mobility" }

type evalOrder struct{}

func (evalOrder) Order(_ context.Context, s *Solver, _ board.Square, color board.Cell,
	empties, discDiff int, dst []board.Square) ([]board.Square, error) {

	pos := s.pos
	other := color.Opponent()
	self, opp := pieces(empties, discDiff)
	vals := s.valBuf[empties][:0]
	var f movegen.Flips
	for sq := pos.Empties.First(); sq != board.ListEnd; sq = pos.Empties.Next(sq) {
		nf := pos.Apply(color, sq, &f)
		if nf == 0 {
			continue
		}
		// evaluated for the opponent, so self and opp swap
		v := s.eval.Evaluate(pos, other, other, opp-nf, self+nf+1)
		pos.Undo(color, sq, &f)
		dst, vals = insertAscending(dst, vals, sq, v)
	}
	return dst, nil
}

func (evalOrder) Indexed(int) bool { return true }

func (evalOrder) Child(empties int) Orderer {
	if empties < minEmptiesForEval+1 {
		return MobilityOrder
	}
	return EvalOrder
}

func (evalOrder) String() string { return "eval" }

type shallowSearchOrder struct{}

func (shallowSearchOrder) Order(ctx context.Context, s *Solver, last board.Square, color board.Cell,
	empties, discDiff int, dst []board.Square) ([]board.Square, error) {

	pos := s.pos
	other := color.Opponent()
	self, opp := pieces(empties, discDiff)
	sr := search.NewSearcher(pos, s.eval, search.Params{
		Base:       64 - empties - 4,
		Quiescence: s.quiescence,
		Deadline:   s.deadline,
	}, s.stats)
	limit := min(maxShallowDepth, empties-minEmptiesForSearch+2)
	vals := s.valBuf[empties][:0]
	var f movegen.Flips
	for sq := pos.Empties.First(); sq != board.ListEnd; sq = pos.Empties.Next(sq) {
		nf := pos.Apply(color, sq, &f)
		if nf == 0 {
			continue
		}
		v, err := sr.Max(ctx, search.Node{
			Last: sq, SecondLast: last, Color: other,
			Depth: 1, Limit: limit,
			Self: opp - nf, Opp: self + nf + 1,
		}, -search.Large, search.Large)
		pos.Undo(color, sq, &f)
		if err != nil {
			return nil, err
		}
		dst, vals = insertAscending(dst, vals, sq, v)
	}
	return dst, nil
}

func (shallowSearchOrder) Indexed(int) bool { return true }

func (shallowSearchOrder) Child(empties int) Orderer {
	switch {
	case empties < minEmptiesForEval+1:
		return MobilityOrder
	case empties < minEmptiesForSearch+1:
		return EvalOrder
	}
	return ShallowSearchOrder
}

func (shallowSearchOrder) String() string { return "shallow-search" }

// pieces splits the board into the disc counts of the side to move and its
// opponent.
func pieces(empties, discDiff int) (self, opp int) {
	self = (64 - empties + discDiff) >> 1
	return self, 64 - empties - self
}

// insertAscending adds sq to the list kept in ascending order of vals,
// after any entries with an equal value.
func insertAscending(moves []board.Square, vals []float64, sq board.Square, v float64) ([]board.Square, []float64) {
	j := len(moves)
	moves = append(moves, sq)
	vals = append(vals, v)
	for j > 0 && v < vals[j-1] {
		moves[j], vals[j] = moves[j-1], vals[j-1]
		j--
	}
	moves[j], vals[j] = sq, v
	return moves, vals
}

// promote moves sq to the front of moves, if it is there.
func promote(moves []board.Square, sq board.Square) {
	for i, m := range moves {
		if m == sq {
			copy(moves[1:i+1], moves[:i])
			moves[0] = sq
			return
		}
	}
}
