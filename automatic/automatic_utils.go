package automatic

// Computer vs computer matches.

import (
	"context"
	"encoding/csv"
	"errors"
	"expvar"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/othello/ai/player"
	"github.com/domino14/othello/config"
)

var (
	CVCCounter *expvar.Int
	IsPlaying  *expvar.Int
)

func init() {
	CVCCounter = expvar.NewInt("cvcCounter")
	IsPlaying = expvar.NewInt("isPlaying")
}

var ErrAlreadyPlaying = errors.New("games are already being played, please wait till complete")

var csvHeader = []string{"id", "black", "white", "black_discs", "white_discs", "margin", "nodes", "moves"}

// Match describes a series of games between two option sets.
type Match struct {
	Names   [2]string
	Options [2]player.Options
	Games   int
	Workers int
	// RandomPlies opening moves are played at random before the players
	// take over.
	RandomPlies int
	Mirrored    bool
	// CSVPath and DBPath, if set, receive one row per game.
	CSVPath string
	DBPath  string
}

// MatchFromConfig sets up a match of the configured player against
// itself.
func MatchFromConfig(cfg *config.Config, games int) (*Match, error) {
	opts, err := player.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &Match{
		Names:    [2]string{"p1", "p2"},
		Options:  [2]player.Options{opts, opts},
		Games:    games,
		Workers:  cfg.GetInt(config.ConfigAutoplayWorkers),
		Mirrored: cfg.GetBool(config.ConfigFlipBoard),
	}, nil
}

func (m *Match) Validate() error {
	if m.Names[0] == m.Names[1] {
		return fmt.Errorf("players need distinct names, both are %q", m.Names[0])
	}
	if m.Games < 1 {
		return fmt.Errorf("need at least one game, got %d", m.Games)
	}
	for _, o := range m.Options {
		if err := o.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Play runs the match. Games are handed out to m.Workers runners; every
// finished game is added to the summary and written to the CSV file and
// database when those are configured. A cancelled context stops the match
// early; the summary then covers the games that finished.
func Play(ctx context.Context, m *Match) (*Summary, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if IsPlaying.Value() > 0 {
		return nil, ErrAlreadyPlaying
	}
	workers := max(1, m.Workers)

	var csvw *csv.Writer
	if m.CSVPath != "" {
		f, err := os.Create(m.CSVPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		csvw = csv.NewWriter(f)
		csvw.Write(csvHeader)
	}
	var store *Store
	if m.DBPath != "" {
		var err error
		store, err = OpenStore(ctx, m.DBPath)
		if err != nil {
			return nil, err
		}
		defer store.Close()
	}

	log.Info().Int("games", m.Games).Int("workers", workers).Msg("starting-match")
	CVCCounter.Set(0)
	jobs := make(chan int, 100)
	results := make(chan *GameResult, 100)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < m.Games; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				log.Info().Msg("Got stop signal, exiting soon...")
				return nil
			}
		}
		return nil
	})
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			r := NewGameRunner(m)
			IsPlaying.Add(1)
			defer IsPlaying.Add(-1)
			for n := range jobs {
				res, err := r.PlayGame(gctx, n)
				if err != nil {
					return err
				}
				CVCCounter.Add(1)
				select {
				case results <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	errc := make(chan error, 1)
	go func() {
		errc <- g.Wait()
		close(results)
	}()

	summary := NewSummary(m.Names)
	var sinkErr error
	for res := range results {
		summary.Add(res)
		if csvw != nil {
			csvw.Write(csvRow(res))
		}
		if store != nil && sinkErr == nil {
			sinkErr = store.Insert(ctx, res)
		}
	}
	err := <-errc
	if csvw != nil {
		csvw.Flush()
		sinkErr = errors.Join(sinkErr, csvw.Error())
	}
	log.Info().Int("games", summary.Games()).Msg("match-finished")
	if err != nil && ctx.Err() != nil {
		// stopped from outside; the finished games still count
		log.Info().Err(err).Msg("match-stopped")
		err = nil
	}
	return summary, errors.Join(err, sinkErr)
}

func csvRow(r *GameResult) []string {
	return []string{
		r.ID, r.Black, r.White,
		strconv.Itoa(r.BlackDiscs), strconv.Itoa(r.WhiteDiscs), strconv.Itoa(r.Margin),
		strconv.FormatUint(r.Nodes, 10), r.MoveString(),
	}
}

// ReadResults reads back the game rows written by Play.
func ReadResults(rd io.Reader) ([]*GameResult, error) {
	cr := csv.NewReader(rd)
	cr.FieldsPerRecord = len(csvHeader)
	var out []*GameResult
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if rec[0] == csvHeader[0] {
			continue
		}
		r, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("game %s: %w", rec[0], err)
		}
		out = append(out, r)
	}
	return out, nil
}
