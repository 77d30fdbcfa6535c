package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/domino14/othello/ai/player"
	"github.com/domino14/othello/automatic"
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/game"
	"github.com/domino14/othello/gameio"
)

const defaultAutoplayGames = 100

type settingKind int

const (
	intSetting settingKind = iota
	boolSetting
	floatSetting
	durationSetting
)

// settable lists the config keys the set command may change.
var settable = map[string]settingKind{
	config.ConfigDepth:               intSetting,
	config.ConfigExact:               intSetting,
	config.ConfigRandomness:          intSetting,
	config.ConfigWinLarge:            boolSetting,
	config.ConfigTimeLimit:           durationSetting,
	config.ConfigExtraPlies:          boolSetting,
	config.ConfigWDLMargin:           intSetting,
	config.ConfigFlipBoard:           boolSetting,
	config.ConfigEndgameTTFraction:   floatSetting,
	config.ConfigNewCornerQuiescence: boolSetting,
	config.ConfigAutoplayWorkers:     intSetting,
}

func (sc *ShellController) display() *Response {
	return msg(sc.game.Display())
}

func (sc *ShellController) newGame(cmd *shellcmd) (*Response, error) {
	mirrored := sc.cfg.GetBool(config.ConfigFlipBoard)
	if v, ok := cmd.options["flip"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("flip: %w", err)
		}
		mirrored = b
	}
	sc.game = game.New(mirrored)
	return sc.display(), nil
}

func (sc *ShellController) play(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: play <square>")
	}
	sq, err := board.ParseSquare(cmd.args[0])
	if err != nil {
		return nil, err
	}
	if err := sc.game.Play(sq); err != nil {
		return nil, err
	}
	return sc.display(), nil
}

func (sc *ShellController) pass(cmd *shellcmd) (*Response, error) {
	if err := sc.game.Pass(); err != nil {
		return nil, err
	}
	return sc.display(), nil
}

// gen asks the engine for a move and plays it, unless -play false is
// given.
func (sc *ShellController) gen(cmd *shellcmd) (*Response, error) {
	if sc.game.IsOver() {
		return nil, game.ErrGameOver
	}
	doPlay := true
	if v, ok := cmd.options["play"]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("play: %w", err)
		}
		doPlay = b
	}
	side := sc.game.ToMove()
	res, err := sc.player.SelectMove(context.Background(), sc.game)
	if err != nil {
		return nil, err
	}
	p := message.NewPrinter(language.English)
	var sb strings.Builder
	p.Fprintf(&sb, "%v: %v\n", side, res)
	if res.Nodes > 0 {
		nps := 0.0
		if secs := res.Elapsed.Seconds(); secs > 0 {
			nps = float64(res.Nodes) / secs
		}
		p.Fprintf(&sb, "depth %d, %d nodes, %d evaluated, %d pruned, %.0f nodes/s, %v\n",
			res.Depth, res.Nodes, res.Evaluated, res.Pruned, nps, res.Elapsed.Round(time.Millisecond))
	}
	if doPlay {
		if err := sc.game.Play(res.Move); err != nil {
			return nil, err
		}
		sb.WriteString(sc.game.Display())
	}
	return msg(strings.TrimRight(sb.String(), "\n")), nil
}

// stepCount reads the optional "n" or "all" argument of undo and redo.
func stepCount(args []string) (n int, all bool, err error) {
	if len(args) == 0 {
		return 1, false, nil
	}
	if args[0] == "all" {
		return 0, true, nil
	}
	n, err = strconv.Atoi(args[0])
	if err != nil {
		return 0, false, err
	}
	if n < 1 {
		return 0, false, fmt.Errorf("need a positive count, got %d", n)
	}
	return n, false, nil
}

func (sc *ShellController) undo(cmd *shellcmd) (*Response, error) {
	n, all, err := stepCount(cmd.args)
	if err != nil {
		return nil, err
	}
	if sc.game.MoveNumber() == 0 {
		return nil, game.ErrNoMoreUndo
	}
	if all {
		sc.game.UndoAll()
	} else {
		sc.game.UndoN(n)
	}
	return sc.display(), nil
}

func (sc *ShellController) redo(cmd *shellcmd) (*Response, error) {
	n, all, err := stepCount(cmd.args)
	if err != nil {
		return nil, err
	}
	if sc.game.MoveNumber() == sc.game.Top() {
		return nil, game.ErrNoMoreRedo
	}
	if all {
		sc.game.RedoAll()
	} else {
		sc.game.RedoN(n)
	}
	return sc.display(), nil
}

func (sc *ShellController) show(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return sc.display(), nil
	}
	switch cmd.args[0] {
	case "moves", "history":
		ledger := sc.game.Ledger()
		if len(ledger) == 0 {
			return msg("No moves yet."), nil
		}
		lines := lo.Map(ledger, func(sq board.Square, i int) string {
			mark := ""
			if i == sc.game.MoveNumber()-1 {
				mark = " <"
			}
			return fmt.Sprintf("%3d. %v%s", i+1, sq, mark)
		})
		return msg(strings.Join(lines, "\n")), nil
	case "options", "settings":
		return sc.settings(), nil
	}
	return nil, fmt.Errorf("nothing to show for %q", cmd.args[0])
}

func (sc *ShellController) settings() *Response {
	keys := append(lo.Keys(settable), config.ConfigLevel)
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString("Settings:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s: %v\n", k, sc.cfg.Get(k))
	}
	return msg(strings.TrimRight(sb.String(), "\n"))
}

func parseSetting(kind settingKind, val string) (any, error) {
	switch kind {
	case intSetting:
		return strconv.Atoi(val)
	case boolSetting:
		return strconv.ParseBool(val)
	case floatSetting:
		return strconv.ParseFloat(val, 64)
	case durationSetting:
		d, err := time.ParseDuration(val)
		if err != nil {
			return nil, err
		}
		return d.String(), nil
	}
	return nil, fmt.Errorf("unknown setting kind %d", kind)
}

// updateConfig applies changes to the config and rebuilds the engine
// options, rolling everything back if the options do not validate.
func (sc *ShellController) updateConfig(changes map[string]any) error {
	old := map[string]any{}
	for k, v := range changes {
		old[k] = sc.cfg.Get(k)
		sc.cfg.Set(k, v)
	}
	opts, err := player.OptionsFromConfig(sc.cfg)
	if err != nil {
		for k, v := range old {
			sc.cfg.Set(k, v)
		}
		return err
	}
	sc.player.SetOptions(opts)
	log.Debug().Interface("options", opts).Msg("options-updated")
	return nil
}

func (sc *ShellController) set(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return sc.settings(), nil
	}
	key := cmd.args[0]
	kind, ok := settable[key]
	if !ok && key != config.ConfigLevel {
		return nil, fmt.Errorf("no such option: %s", key)
	}
	if len(cmd.args) == 1 {
		return msg(fmt.Sprintf("%s: %v", key, sc.cfg.Get(key))), nil
	}
	if key == config.ConfigLevel {
		return sc.level(&shellcmd{cmd: "level", args: cmd.args[1:]})
	}
	val, err := parseSetting(kind, cmd.args[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	changes := map[string]any{key: val}
	if key == config.ConfigDepth || key == config.ConfigExact {
		// an explicit depth replaces the level
		changes[config.ConfigLevel] = ""
	}
	if err := sc.updateConfig(changes); err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("%s set to %v", key, sc.cfg.Get(key))), nil
}

func (sc *ShellController) level(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		opts := sc.player.Options()
		names := lo.Map(player.Levels, func(l player.Level, _ int) string {
			return fmt.Sprintf("  %-12s depth %2d, exact %2d", l.Name, l.Depth, l.Exact)
		})
		return msg(fmt.Sprintf("Current: depth %d, exact %d\nLevels:\n%s",
			opts.Depth, opts.Exact, strings.Join(names, "\n"))), nil
	}
	l, err := player.ParseLevel(cmd.args[0])
	if err != nil {
		return nil, err
	}
	err = sc.updateConfig(map[string]any{
		config.ConfigLevel: l.Name,
		config.ConfigDepth: l.Depth,
		config.ConfigExact: l.Exact,
	})
	if err != nil {
		return nil, err
	}
	return msg(fmt.Sprintf("Level %s: depth %d, exact %d", l.Name, l.Depth, l.Exact)), nil
}

// dataFile resolves a relative file name against the data path.
func (sc *ShellController) dataFile(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(sc.cfg.GetString(config.ConfigDataPath), name)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}

func (sc *ShellController) save(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: save <file>")
	}
	name := sc.dataFile(cmd.args[0])
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return nil, err
	}
	if !isYAML(name) {
		saved, err := gameio.SaveFile(name, sc.game)
		if err != nil {
			return nil, err
		}
		return msg("Saved to " + saved), nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	if err := gameio.WriteYAML(f, gameio.NewRecord(sc.game)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return msg("Saved to " + name), nil
}

func (sc *ShellController) load(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) != 1 {
		return nil, errors.New("usage: load <file>")
	}
	name := sc.dataFile(cmd.args[0])
	var g *game.Game
	if isYAML(name) {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		rec, err := gameio.ReadYAML(f)
		if err != nil {
			return nil, err
		}
		if g, err = rec.Game(); err != nil {
			return nil, err
		}
	} else {
		var err error
		if g, err = gameio.LoadFile(name); err != nil {
			return nil, err
		}
	}
	sc.game = g
	return sc.display(), nil
}

func (sc *ShellController) autoplayRunning() bool {
	if sc.autoplayDone == nil {
		return false
	}
	select {
	case <-sc.autoplayDone:
		return false
	default:
		return true
	}
}

// autoplay starts a self-play match in the background, stops it, or
// summarises the games in an earlier match's log file.
func (sc *ShellController) autoplay(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) > 0 {
		switch cmd.args[0] {
		case "stop":
			if !sc.autoplayRunning() {
				return nil, errors.New("autoplay is not running")
			}
			sc.autoplayCancel()
			return msg("Stopping autoplay..."), nil
		case "analyze":
			if len(cmd.args) != 2 {
				return nil, errors.New("usage: autoplay analyze <file>")
			}
			s, err := automatic.AnalyzeLogFile(sc.dataFile(cmd.args[1]))
			if err != nil {
				return nil, err
			}
			return msg(s.String()), nil
		}
	}
	if sc.autoplayRunning() {
		return nil, automatic.ErrAlreadyPlaying
	}
	games := defaultAutoplayGames
	if len(cmd.args) > 0 {
		n, err := strconv.Atoi(cmd.args[0])
		if err != nil {
			return nil, fmt.Errorf("games: %w", err)
		}
		games = n
	}
	m, err := automatic.MatchFromConfig(sc.cfg, games)
	if err != nil {
		return nil, err
	}
	if err := sc.matchOptions(m, cmd.options); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.autoplayCancel = cancel
	sc.autoplayDone = done
	go func() {
		defer close(done)
		defer cancel()
		summary, err := automatic.Play(ctx, m)
		if err != nil {
			log.Err(err).Msg("autoplay-error")
			sc.showError(err)
			return
		}
		sc.showMessage(summary.String())
	}()
	return msg(fmt.Sprintf("Started %d games: %s vs %s", m.Games, m.Names[0], m.Names[1])), nil
}

// matchOptions applies autoplay's -options to m.
func (sc *ShellController) matchOptions(m *automatic.Match, options map[string]string) error {
	for k, v := range options {
		switch k {
		case "opp":
			l, err := player.ParseLevel(v)
			if err != nil {
				return err
			}
			m.Options[1] = m.Options[1].WithLevel(l)
			m.Names[1] = l.Name
		case "workers":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("workers: %w", err)
			}
			m.Workers = n
		case "random":
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("random: %w", err)
			}
			m.RandomPlies = n
		case "file":
			m.CSVPath = sc.dataFile(v)
		case "db":
			m.DBPath = sc.dataFile(v)
		default:
			return fmt.Errorf("unknown autoplay option -%s", k)
		}
	}
	for _, p := range []string{m.CSVPath, m.DBPath} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	return nil
}
