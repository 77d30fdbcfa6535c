// Package automatic plays computer-vs-computer Othello matches: many games
// between two option sets, spread over a pool of workers, with the results
// logged and summarised.
package automatic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"lukechampine.com/frand"

	"github.com/domino14/othello/ai/player"
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/game"
)

// GameResult is one finished game.
type GameResult struct {
	ID         string
	Black      string
	White      string
	BlackDiscs int
	WhiteDiscs int
	// Margin is black's final margin, empties to the winner.
	Margin  int
	Moves   []board.Square
	Nodes   uint64
	Elapsed time.Duration
}

// MarginFor is the margin from the named player's side.
func (r *GameResult) MarginFor(name string) int {
	if name == r.White {
		return -r.Margin
	}
	return r.Margin
}

// MoveString is the game as space-separated moves.
func (r *GameResult) MoveString() string {
	return strings.Join(lo.Map(r.Moves, func(sq board.Square, _ int) string {
		return sq.String()
	}), " ")
}

// GameID hashes a move sequence. Identical games share an ID.
func GameID(moves []board.Square) string {
	b := make([]byte, len(moves))
	for i, sq := range moves {
		b[i] = byte(sq)
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// GameRunner plays games between two players. It is used by one goroutine
// at a time.
type GameRunner struct {
	names       [2]string
	players     [2]*player.Player
	mirrored    bool
	randomPlies int
}

func NewGameRunner(m *Match) *GameRunner {
	return &GameRunner{
		names:       m.Names,
		players:     [2]*player.Player{player.New(m.Options[0]), player.New(m.Options[1])},
		mirrored:    m.Mirrored,
		randomPlies: m.RandomPlies,
	}
}

// PlayGame plays game number n to the end. Players swap colours every
// game; player 0 has black in even games.
func (r *GameRunner) PlayGame(ctx context.Context, n int) (*GameResult, error) {
	first := n % 2
	g := game.New(r.mirrored)
	r.playRandomOpening(g)

	var nodes uint64
	start := time.Now()
	for !g.IsOver() {
		idx := first
		if g.ToMove() == board.White {
			idx = 1 - first
		}
		res, err := r.players[idx].SelectMove(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("game %d, move %d: %w", n, g.MoveNumber()+1, err)
		}
		if err := g.Play(res.Move); err != nil {
			return nil, fmt.Errorf("game %d, %s played %v: %w", n, r.names[idx], res.Move, err)
		}
		nodes += res.Nodes
	}

	black, white := g.Score()
	moves := g.History()
	result := &GameResult{
		ID:         GameID(moves),
		Black:      r.names[first],
		White:      r.names[1-first],
		BlackDiscs: black,
		WhiteDiscs: white,
		Margin:     g.Margin(),
		Moves:      moves,
		Nodes:      nodes,
		Elapsed:    time.Since(start),
	}
	log.Debug().Str("id", result.ID).Str("black", result.Black).Str("white", result.White).
		Int("margin", result.Margin).Uint64("nodes", nodes).Msg("game-finished")
	return result, nil
}

func (r *GameRunner) playRandomOpening(g *game.Game) {
	for g.MoveNumber() < r.randomPlies && !g.IsOver() {
		moves := g.LegalMoves()
		if len(moves) == 0 {
			g.Pass()
			continue
		}
		g.Play(moves[frand.Intn(len(moves))])
	}
}
