package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ConfigDebug               = "debug"
	ConfigDepth               = "depth"
	ConfigExact               = "exact"
	ConfigRandomness          = "randomness"
	ConfigWinLarge            = "win-large"
	ConfigTimeLimit           = "time-limit"
	ConfigExtraPlies          = "extra-plies"
	ConfigLevel               = "level"
	ConfigWDLMargin           = "wdl-margin"
	ConfigFlipBoard           = "flip-board"
	ConfigEndgameTTFraction   = "endgame-tt-fraction"
	ConfigNewCornerQuiescence = "new-corner-quiescence"
	ConfigDataPath            = "data-path"
	ConfigAutoplayWorkers     = "autoplay-workers"
	ConfigCPUProfile          = "cpu-profile"
)

// Config is the engine configuration: defaults, then a config file in the
// data path, then OTHELLO_* environment variables, then flags.
type Config struct {
	viper.Viper
	args []string
}

func (c *Config) setDefaults() {
	c.SetDefault(ConfigDebug, false)
	c.SetDefault(ConfigDepth, 8)
	c.SetDefault(ConfigExact, 16)
	c.SetDefault(ConfigRandomness, 1)
	c.SetDefault(ConfigWinLarge, true)
	c.SetDefault(ConfigTimeLimit, "0s")
	c.SetDefault(ConfigExtraPlies, false)
	c.SetDefault(ConfigLevel, "")
	c.SetDefault(ConfigWDLMargin, 2)
	c.SetDefault(ConfigFlipBoard, false)
	c.SetDefault(ConfigEndgameTTFraction, 0.0)
	c.SetDefault(ConfigNewCornerQuiescence, false)
	c.SetDefault(ConfigDataPath, "./data")
	c.SetDefault(ConfigAutoplayWorkers, 1)
	c.SetDefault(ConfigCPUProfile, "")
}

// Load reads the configuration, with command-line args taking precedence.
func (c *Config) Load(args []string) error {
	c.Viper = *viper.New()
	c.setDefaults()

	fs := pflag.NewFlagSet("othello", pflag.ContinueOnError)
	fs.Bool(ConfigDebug, false, "debug logging on")
	fs.Int(ConfigDepth, 8, "midgame search depth")
	fs.Int(ConfigExact, 16, "solve exactly with this many empty squares or fewer")
	fs.Int(ConfigRandomness, 1, "randomness level, 0 to 9")
	fs.Bool(ConfigWinLarge, true, "look for the largest win, not just any win")
	fs.Duration(ConfigTimeLimit, 0, "time limit per move, 0 for none")
	fs.Bool(ConfigExtraPlies, false, "search 2 plies deeper late in the middle game")
	fs.String(ConfigLevel, "", "strength level name; overrides depth and exact")
	fs.Int(ConfigWDLMargin, 2, "empties above exact where a win/draw/loss check runs")
	fs.Bool(ConfigFlipBoard, false, "start from the mirrored position")
	fs.Float64(ConfigEndgameTTFraction, 0, "fraction of memory for the endgame transposition table")
	fs.Bool(ConfigNewCornerQuiescence, false, "extend moves that give away a new corner")
	fs.String(ConfigDataPath, "./data", "directory for saved games and results")
	fs.Int(ConfigAutoplayWorkers, 1, "parallel games in autoplay")
	fs.String(ConfigCPUProfile, "", "write a CPU profile to this file")
	// flags come first; the rest of the line is left to the caller
	fs.SetInterspersed(false)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return err
		}
		return fmt.Errorf("parsing flags: %w", err)
	}
	// only flags that were actually given override other sources
	fs.Visit(func(f *pflag.Flag) {
		c.Set(f.Name, f.Value.String())
	})
	c.args = fs.Args()

	c.SetEnvPrefix("othello")
	c.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.AutomaticEnv()

	c.SetConfigName("config")
	c.SetConfigType("yaml")
	c.AddConfigPath(c.GetString(ConfigDataPath))
	if err := c.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			return fmt.Errorf("reading config file: %w", err)
		}
		log.Debug().Msg("no-config-file")
	}
	return nil
}

// Args returns the command-line arguments left after the flags.
func (c *Config) Args() []string {
	return c.args
}

// AdjustRelativePaths resolves a relative data path against basePath.
func (c *Config) AdjustRelativePaths(basePath string) {
	p := c.GetString(ConfigDataPath)
	if !filepath.IsAbs(p) {
		c.Set(ConfigDataPath, filepath.Join(basePath, p))
	}
}

// SanitizedSettings returns the settings for logging. Nothing here is
// secret yet.
func (c *Config) SanitizedSettings() map[string]any {
	return c.AllSettings()
}

// DefaultConfig is a configuration with every default and no sources.
func DefaultConfig() *Config {
	c := &Config{Viper: *viper.New()}
	c.setDefaults()
	return c
}
