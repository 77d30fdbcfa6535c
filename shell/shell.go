// Package shell is the interactive command line for playing and analysing
// Othello games against the engine.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/othello/ai/player"
	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/game"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errExit              = errors.New("sending quit signal")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type Response struct {
	message string
}

func msg(message string) *Response {
	return &Response{message: message}
}

type ShellController struct {
	l   *readline.Instance
	out io.Writer

	cfg *config.Config

	game   *game.Game
	player *player.Player

	autoplayCancel context.CancelFunc
	autoplayDone   chan struct{}
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func writeln(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController sets up a shell with a fresh game. It fails if the
// configured engine options are invalid.
func NewShellController(cfg *config.Config) (*ShellController, error) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32mothello>\033[0m ",
		HistoryFile:     "/tmp/othello-readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		return nil, err
	}
	sc, err := newController(cfg, l.Stderr())
	if err != nil {
		l.Close()
		return nil, err
	}
	sc.l = l
	return sc, nil
}

func newController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	opts, err := player.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return &ShellController{
		out:    out,
		cfg:    cfg,
		game:   game.New(cfg.GetBool(config.ConfigFlipBoard)),
		player: player.New(opts),
	}, nil
}

func (sc *ShellController) showMessage(msg string) {
	writeln(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// extractFields splits a line into a command, its arguments and its
// -option value pairs.
func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") && len(fields[i]) > 1 {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[fields[i][1:]] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{
		cmd:     cmd,
		args:    args,
		options: options,
	}, nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "new":
		return sc.newGame(cmd)
	case "play", "p":
		return sc.play(cmd)
	case "pass":
		return sc.pass(cmd)
	case "gen", "g":
		return sc.gen(cmd)
	case "undo", "u":
		return sc.undo(cmd)
	case "redo", "r":
		return sc.redo(cmd)
	case "show", "s":
		return sc.show(cmd)
	case "set":
		return sc.set(cmd)
	case "level":
		return sc.level(cmd)
	case "save":
		return sc.save(cmd)
	case "load":
		return sc.load(cmd)
	case "autoplay":
		return sc.autoplay(cmd)
	case "script":
		return sc.script(cmd)
	case "help":
		return sc.help(cmd)
	case "exit", "bye":
		return nil, errExit
	default:
		// a bare square is a move
		if _, err := board.ParseSquare(cmd.cmd); err == nil && len(cmd.args) == 0 {
			return sc.play(&shellcmd{cmd: "play", args: []string{cmd.cmd}})
		}
		return nil, fmt.Errorf("command %v not found", strconv.Quote(cmd.cmd))
	}
}

func (sc *ShellController) standardModeSwitch(line string, sig chan os.Signal) error {
	cmd, err := extractFields(line)
	if err != nil {
		if err != errNoData {
			sc.showError(err)
		}
		return nil
	}
	resp, err := sc.dispatch(cmd)
	if errors.Is(err, errExit) {
		sig <- syscall.SIGINT
		return err
	}
	if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		sc.showMessage(resp.message)
	}
	return nil
}

// Execute runs a single command line, as given on the command line of the
// binary.
func (sc *ShellController) Execute(sig chan os.Signal, line string) {
	if err := sc.standardModeSwitch(line, sig); err != nil {
		log.Debug().Err(err).Msg("execute")
	}
	sc.waitAutoplay()
}

func (sc *ShellController) Loop(sig chan os.Signal) {
	defer sc.l.Close()
	sc.showMessage(sc.game.Display())

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				sig <- syscall.SIGINT
				break
			}
			continue
		} else if err == io.EOF {
			sig <- syscall.SIGINT
			break
		}
		line = strings.TrimSpace(line)
		if err := sc.standardModeSwitch(line, sig); err != nil {
			log.Debug().Err(err).Msg("leaving-loop")
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
}

// Cleanup stops a running autoplay and waits for it to wind down.
func (sc *ShellController) Cleanup() {
	if sc.autoplayCancel != nil {
		sc.autoplayCancel()
	}
	sc.waitAutoplay()
	log.Info().Msg("shell-cleanup-done")
}

func (sc *ShellController) waitAutoplay() {
	if sc.autoplayDone != nil {
		<-sc.autoplayDone
	}
}
