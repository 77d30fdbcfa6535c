// Package gameio reads and writes saved games: the plain text .sav format
// and a YAML game record.
package gameio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/game"
)

// SavExtension is appended to save file names that have no extension.
const SavExtension = ".sav"

var ErrBadSaveFile = errors.New("save file is invalid or damaged")

// SavName adds the .sav extension to name unless its last path element
// already has one.
func SavName(name string) string {
	name = strings.TrimRight(name, " \r\n")
	if filepath.Ext(filepath.Base(name)) == "" {
		return name + SavExtension
	}
	return name
}

// WriteSav writes g as "mirrored m top move1 move2 ...". Moves past m are
// kept so they can be redone after loading.
func WriteSav(w io.Writer, g *game.Game) error {
	mirrored := 0
	if g.Mirrored() {
		mirrored = 1
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d %d %d ", mirrored, g.MoveNumber(), g.Top())
	for _, sq := range g.Ledger() {
		fmt.Fprintf(bw, "%s ", sq)
	}
	return bw.Flush()
}

// ReadSav parses a .sav stream and replays it. Every move is checked for
// legality; the game is left at move m with the rest available to redo.
func ReadSav(r io.Reader) (*game.Game, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	header := make([]int, 0, 3)
	for len(header) < 3 && sc.Scan() {
		v, err := strconv.Atoi(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: header: %w", ErrBadSaveFile, err)
		}
		header = append(header, v)
	}
	if len(header) < 3 {
		return nil, fmt.Errorf("%w: short header", ErrBadSaveFile)
	}
	mirrored, m, top := header[0], header[1], header[2]
	if mirrored != 0 && mirrored != 1 {
		return nil, fmt.Errorf("%w: mirrored flag %d", ErrBadSaveFile, mirrored)
	}
	if top < 0 || m < 0 || m > top {
		return nil, fmt.Errorf("%w: move %d of %d", ErrBadSaveFile, m, top)
	}
	moves := make([]board.Square, 0, top)
	for len(moves) < top && sc.Scan() {
		sq, err := board.ParseSquare(sc.Text())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadSaveFile, err)
		}
		moves = append(moves, sq)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(moves) < top {
		return nil, fmt.Errorf("%w: expected %d moves, found %d", ErrBadSaveFile, top, len(moves))
	}
	g, err := game.Replay(mirrored == 1, moves, m)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSaveFile, err)
	}
	return g, nil
}

// SaveFile writes g to name, adding the .sav extension if needed, and
// returns the file name used.
func SaveFile(name string, g *game.Game) (string, error) {
	name = SavName(name)
	f, err := os.Create(name)
	if err != nil {
		return "", err
	}
	if err := WriteSav(f, g); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	log.Debug().Str("file", name).Int("moves", g.Top()).Msg("game-saved")
	return name, nil
}

// LoadFile reads a saved game, adding the .sav extension if needed.
func LoadFile(name string) (*game.Game, error) {
	name = SavName(name)
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadSav(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	log.Debug().Str("file", name).Int("move", g.MoveNumber()).Msg("game-loaded")
	return g, nil
}
