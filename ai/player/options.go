package player

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/domino14/othello/config"
)

var ErrUnknownLevel = errors.New("unknown level")

// Options control how a Player searches.
type Options struct {
	// Depth is the midgame search depth in plies.
	Depth int
	// Exact is the number of empty squares at which the search goes to
	// the end of the game.
	Exact int
	// Randomness, 0 to 9, perturbs the evaluation and varies the opening.
	Randomness int
	// WinLarge asks for the biggest win rather than any win.
	WinLarge bool
	// TimeLimit bounds one move selection; zero means no limit.
	TimeLimit time.Duration
	// ExtraPlies searches two plies deeper in the later middle game.
	ExtraPlies bool
	// WDLMargin is how many empties above Exact a win/draw/loss check runs.
	WDLMargin           int
	NewCornerQuiescence bool
	// TTFraction is the fraction of system memory given to the endgame
	// transposition table. Zero disables the table.
	TTFraction float64
}

func DefaultOptions() Options {
	return Options{
		Depth:      8,
		Exact:      16,
		Randomness: 1,
		WinLarge:   true,
		WDLMargin:  2,
	}
}

// Level is a named depth and exact-solve setting.
type Level struct {
	Name  string
	Depth int
	Exact int
}

var Levels = []Level{
	{"stooge", 1, 8},
	{"mindless", 2, 10},
	{"novice", 4, 12},
	{"beginner", 6, 14},
	{"amateur", 8, 16},
	{"experienced", 10, 18},
}

// ParseLevel looks up a level by name. A trailing "+" solves the endgame
// two empties earlier.
func ParseLevel(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	plus := strings.HasSuffix(name, "+")
	name = strings.TrimSuffix(name, "+")
	for _, l := range Levels {
		if l.Name == name {
			if plus {
				l.Name += "+"
				l.Exact += 2
			}
			return l, nil
		}
	}
	return Level{}, fmt.Errorf("%w: %q", ErrUnknownLevel, name)
}

// WithLevel returns o with depth and exact taken from l.
func (o Options) WithLevel(l Level) Options {
	o.Depth = l.Depth
	o.Exact = l.Exact
	return o
}

// OptionsFromConfig reads the search options; a level, if set, overrides
// depth and exact.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	o := Options{
		Depth:               cfg.GetInt(config.ConfigDepth),
		Exact:               cfg.GetInt(config.ConfigExact),
		Randomness:          cfg.GetInt(config.ConfigRandomness),
		WinLarge:            cfg.GetBool(config.ConfigWinLarge),
		TimeLimit:           cfg.GetDuration(config.ConfigTimeLimit),
		ExtraPlies:          cfg.GetBool(config.ConfigExtraPlies),
		WDLMargin:           cfg.GetInt(config.ConfigWDLMargin),
		NewCornerQuiescence: cfg.GetBool(config.ConfigNewCornerQuiescence),
		TTFraction:          cfg.GetFloat64(config.ConfigEndgameTTFraction),
	}
	if name := cfg.GetString(config.ConfigLevel); name != "" {
		l, err := ParseLevel(name)
		if err != nil {
			return o, err
		}
		o = o.WithLevel(l)
	}
	return o, o.Validate()
}

// Validate checks the ranges the search relies on.
func (o Options) Validate() error {
	switch {
	case o.Depth < 1 || o.Depth > 60:
		return fmt.Errorf("depth %d out of range 1..60", o.Depth)
	case o.Exact < 0 || o.Exact > 60:
		return fmt.Errorf("exact %d out of range 0..60", o.Exact)
	case o.Randomness < 0 || o.Randomness > 9:
		return fmt.Errorf("randomness %d out of range 0..9", o.Randomness)
	case o.WDLMargin < 0:
		return fmt.Errorf("negative wdl margin %d", o.WDLMargin)
	case o.TTFraction < 0 || o.TTFraction > 0.5:
		return fmt.Errorf("transposition table fraction %g out of range 0..0.5", o.TTFraction)
	}
	return nil
}
