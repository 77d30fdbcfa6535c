package search

import (
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/equity"
	"github.com/domino14/othello/movegen"
)

// Minimax is a plain full-width negamax with the same horizon, pass and
// terminal rules as Searcher.Max but no pruning, ordering or extensions.
// It exists to check the searcher.
func Minimax(pos *movegen.Position, ev *equity.Evaluator, n Node) float64 {
	other := n.Color.Opponent()
	var f movegen.Flips
	if pos.NumEmpty() == 1 {
		sq := pos.Empties.First()
		if nf := pos.CountFlips(n.Color, sq); nf > 0 {
			return equity.EndScore(n.Self+nf+1, n.Opp-nf)
		}
		if nf := pos.CountFlips(other, sq); nf > 0 {
			return equity.EndScore(n.Self-nf, n.Opp+nf+1)
		}
		return equity.EndScore(n.Self, n.Opp)
	}
	moves := pos.LegalMoves(n.Color, nil)
	if len(moves) == 0 {
		if n.Last == board.Pass || pos.NumEmpty() == 0 {
			return equity.EndScore(n.Self, n.Opp)
		}
		child := n
		child.Last, child.SecondLast, child.Color = board.Pass, n.Last, other
		child.Passes = 1 - n.Passes
		child.Self, child.Opp = n.Opp, n.Self
		return -Minimax(pos, ev, child)
	}
	best := -Large
	for _, sq := range moves {
		nf := pos.Apply(n.Color, sq, &f)
		self, opp := n.Self+nf+1, n.Opp-nf
		var v float64
		if n.Depth+1 >= n.Limit+n.Passes {
			v = -ev.Evaluate(pos, other, other, opp, self)
		} else {
			v = -Minimax(pos, ev, Node{
				Last: sq, SecondLast: n.Last, Color: other,
				Depth: n.Depth + 1, Limit: n.Limit, Passes: n.Passes,
				Self: opp, Opp: self,
			})
		}
		pos.Undo(n.Color, sq, &f)
		best = max(best, v)
	}
	return best
}
