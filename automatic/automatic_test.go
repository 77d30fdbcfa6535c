package automatic

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/othello/ai/player"
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func fastOptions() player.Options {
	o := player.DefaultOptions()
	o.Depth = 1
	o.Exact = 6
	o.WDLMargin = 0
	return o
}

func TestPlayGame(t *testing.T) {
	is := is.New(t)
	m := &Match{
		Names:   [2]string{"one", "two"},
		Options: [2]player.Options{fastOptions(), fastOptions()},
	}
	r := NewGameRunner(m)
	res, err := r.PlayGame(context.Background(), 1)
	is.NoErr(err)
	is.Equal(res.Black, "two")
	is.Equal(res.White, "one")
	is.True(res.BlackDiscs+res.WhiteDiscs <= 64)
	is.Equal(res.MarginFor("two"), res.Margin)
	is.Equal(res.MarginFor("one"), -res.Margin)
	is.Equal(res.ID, GameID(res.Moves))
	is.True(len(res.Moves) >= 9)
}

func TestGameID(t *testing.T) {
	is := is.New(t)
	a := []board.Square{board.SquareAt(5, 4), board.SquareAt(3, 5)}
	b := []board.Square{board.SquareAt(5, 4), board.SquareAt(5, 5)}
	is.Equal(GameID(a), GameID(append([]board.Square(nil), a...)))
	is.True(GameID(a) != GameID(b))
	is.Equal(len(GameID(a)), 16)
}

func TestMatch(t *testing.T) {
	is := is.New(t)
	dir := t.TempDir()
	m := &Match{
		Names:       [2]string{"fast", "faster"},
		Options:     [2]player.Options{fastOptions(), fastOptions()},
		Games:       6,
		Workers:     3,
		RandomPlies: 2,
		CSVPath:     filepath.Join(dir, "games.csv"),
		DBPath:      filepath.Join(dir, "games.db"),
	}
	summary, err := Play(context.Background(), m)
	is.NoErr(err)
	is.Equal(summary.Games(), 6)
	is.Equal(summary.BlackTally.Games(), 6)
	is.Equal(IsPlaying.Value(), int64(0))
	is.Equal(CVCCounter.Value(), int64(6))
	is.True(strings.Contains(summary.String(), "Games played: 6"))

	analyzed, err := AnalyzeLogFile(m.CSVPath)
	is.NoErr(err)
	is.Equal(analyzed.Games(), 6)
	is.Equal(analyzed.Distinct(), summary.Distinct())
	is.Equal(analyzed.BlackTally, summary.BlackTally)

	store, err := OpenStore(context.Background(), m.DBPath)
	is.NoErr(err)
	defer store.Close()
	n, err := store.Count(context.Background())
	is.NoErr(err)
	is.Equal(n, 6)
	w, d, l, err := store.Record(context.Background(), "fast")
	is.NoErr(err)
	assert.Equal(t, summary.Tally.Wins, w)
	assert.Equal(t, summary.Tally.Draws, d)
	assert.Equal(t, summary.Tally.Losses, l)
}

func TestMatchCancelled(t *testing.T) {
	is := is.New(t)
	m := &Match{
		Names:   [2]string{"a", "b"},
		Options: [2]player.Options{player.DefaultOptions(), player.DefaultOptions()},
		Games:   4,
		Workers: 2,
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := Play(ctx, m)
	is.NoErr(err)
	is.True(summary.Games() < 4)
}

func TestMatchValidation(t *testing.T) {
	is := is.New(t)
	_, err := Play(context.Background(), &Match{Names: [2]string{"x", "x"}, Games: 1})
	is.True(err != nil)

	m, err := MatchFromConfig(config.DefaultConfig(), 3)
	is.NoErr(err)
	is.Equal(m.Workers, 1)
	is.NoErr(m.Validate())
}
