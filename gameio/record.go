package gameio

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/game"
)

// Record is a human-readable game record.
type Record struct {
	Black      string   `yaml:"black,omitempty"`
	White      string   `yaml:"white,omitempty"`
	Mirrored   bool     `yaml:"mirrored"`
	MoveNumber int      `yaml:"move_number"`
	Moves      []string `yaml:"moves"`
	Result     *Result  `yaml:"result,omitempty"`
}

// Result is filled in for finished games only.
type Result struct {
	BlackDiscs int    `yaml:"black_discs"`
	WhiteDiscs int    `yaml:"white_discs"`
	Margin     int    `yaml:"margin"`
	Winner     string `yaml:"winner"`
}

// NewRecord describes g, including any moves that could be redone.
func NewRecord(g *game.Game) *Record {
	r := &Record{
		Mirrored:   g.Mirrored(),
		MoveNumber: g.MoveNumber(),
		Moves:      lo.Map(g.Ledger(), func(sq board.Square, _ int) string { return sq.String() }),
	}
	if g.IsOver() {
		black, white := g.Score()
		winner := "draw"
		if w := g.Winner(); w != board.Empty {
			winner = w.String()
		}
		r.Result = &Result{BlackDiscs: black, WhiteDiscs: white, Margin: g.Margin(), Winner: winner}
	}
	return r
}

// Game replays the record.
func (r *Record) Game() (*game.Game, error) {
	moves := make([]board.Square, len(r.Moves))
	for i, s := range r.Moves {
		sq, err := board.ParseSquare(s)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d: %w", ErrBadSaveFile, i+1, err)
		}
		moves[i] = sq
	}
	g, err := game.Replay(r.Mirrored, moves, r.MoveNumber)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSaveFile, err)
	}
	return g, nil
}

func WriteYAML(w io.Writer, r *Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

func ReadYAML(rd io.Reader) (*Record, error) {
	r := &Record{}
	if err := yaml.NewDecoder(rd).Decode(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSaveFile, err)
	}
	return r, nil
}
