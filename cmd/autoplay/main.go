// Command autoplay plays a match between two engine settings and prints
// the summary.
//
//	autoplay [flags] <games> [opponent-level] [results.csv] [results.db]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/domino14/othello/ai/player"
	"github.com/domino14/othello/automatic"
	"github.com/domino14/othello/config"
)

func setupLogging(debug bool) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
}

func resolve(dataPath, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dataPath, name)
}

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	setupLogging(cfg.GetBool(config.ConfigDebug))

	args := cfg.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: autoplay [flags] <games> [opponent-level] [results.csv] [results.db]")
		os.Exit(2)
	}
	games, err := strconv.Atoi(args[0])
	if err != nil {
		log.Fatal().Err(err).Msg("bad game count")
	}
	m, err := automatic.MatchFromConfig(cfg, games)
	if err != nil {
		log.Fatal().Err(err).Msg("bad configuration")
	}
	if len(args) > 1 {
		l, err := player.ParseLevel(args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("bad opponent")
		}
		m.Options[1] = m.Options[1].WithLevel(l)
		m.Names[1] = l.Name
	}
	dataPath := cfg.GetString(config.ConfigDataPath)
	if len(args) > 2 {
		m.CSVPath = resolve(dataPath, args[2])
	}
	if len(args) > 3 {
		m.DBPath = resolve(dataPath, args[3])
	}

	if p := cfg.GetString(config.ConfigCPUProfile); p != "" {
		f, err := os.Create(p)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	summary, err := automatic.Play(ctx, m)
	if err != nil {
		log.Error().Err(err).Msg("match-failed")
	}
	if summary != nil {
		fmt.Println(summary)
	}
}
