package endgame

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
)

// Outcome is the game-theoretic result of a move.
type Outcome int8

const (
	Unknown Outcome = iota
	Win
	Draw
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "Win"
	case Draw:
		return "Draw"
	case Loss:
		return "Loss"
	}
	return "UNKNOWN"
}

// WDL settles whether color can win, draw or only lose. guess is tried
// first; if it does not win, every one of moves is searched with a
// (-1, 1) window. The returned move is guess unless another move does
// better than guess.
func (s *Solver) WDL(ctx context.Context, color board.Cell, moves []board.Square, guess board.Square) (board.Square, Outcome, error) {
	guessValue, err := s.SolveMove(ctx, color, guess, -1, 1)
	if err != nil {
		return board.NoMove, Unknown, err
	}
	log.Debug().Stringer("move", guess).Int("value", guessValue).Msg("wdl-guess")
	if guessValue > 0 {
		return guess, Win, nil
	}

	alpha, beta := -1, 1
	best, bestValue := board.NoMove, worstScore
	for _, sq := range moves {
		v := guessValue
		if sq != guess {
			v, err = s.SolveMove(ctx, color, sq, float64(alpha), float64(beta))
			if err != nil {
				return board.NoMove, Unknown, err
			}
		}
		if v > bestValue {
			best, bestValue = sq, v
			if bestValue > alpha {
				alpha = bestValue
				if alpha >= beta {
					break
				}
			}
		}
	}
	switch {
	case bestValue > 0:
		return best, Win, nil
	case bestValue == 0:
		return best, Draw, nil
	}
	return guess, Loss, nil
}
