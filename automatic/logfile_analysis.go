package automatic

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/domino14/othello/board"
)

func parseRow(rec []string) (*GameResult, error) {
	ints := make([]int, 3)
	for i := range ints {
		v, err := strconv.Atoi(rec[3+i])
		if err != nil {
			return nil, err
		}
		ints[i] = v
	}
	nodes, err := strconv.ParseUint(rec[6], 10, 64)
	if err != nil {
		return nil, err
	}
	var moves []board.Square
	for _, f := range strings.Fields(rec[7]) {
		sq, err := board.ParseSquare(f)
		if err != nil {
			return nil, err
		}
		moves = append(moves, sq)
	}
	return &GameResult{
		ID:         rec[0],
		Black:      rec[1],
		White:      rec[2],
		BlackDiscs: ints[0],
		WhiteDiscs: ints[1],
		Margin:     ints[2],
		Nodes:      nodes,
		Moves:      moves,
	}, nil
}

// AnalyzeLogFile summarises a game CSV file written by Play. The first
// game's black player is reported first.
func AnalyzeLogFile(path string) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	results, err := ReadResults(f)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("%s: no games", path)
	}
	s := NewSummary([2]string{results[0].Black, results[0].White})
	for _, r := range results {
		s.Add(r)
	}
	return s, nil
}
