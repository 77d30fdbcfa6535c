package shell

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/othello/board"
	"github.com/domino14/othello/config"
	"github.com/domino14/othello/game"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func testController(t *testing.T) (*ShellController, *bytes.Buffer) {
	cfg := config.DefaultConfig()
	cfg.Set(config.ConfigDataPath, t.TempDir())
	cfg.Set(config.ConfigRandomness, 0)
	cfg.Set(config.ConfigLevel, "stooge")
	var buf bytes.Buffer
	sc, err := newController(cfg, &buf)
	if err != nil {
		t.Fatal(err)
	}
	return sc, &buf
}

func run(t *testing.T, sc *ShellController, line string) (*Response, error) {
	cmd, err := extractFields(line)
	if err != nil {
		t.Fatal(err)
	}
	return sc.dispatch(cmd)
}

func mustRun(t *testing.T, sc *ShellController, line string) string {
	r, err := run(t, sc, line)
	if err != nil {
		t.Fatalf("%s: %v", line, err)
	}
	if r == nil {
		return ""
	}
	return r.message
}

func TestExtractFields(t *testing.T) {
	is := is.New(t)
	type testdata struct {
		line   string
		expCmd *shellcmd
		expErr error
	}
	cases := []testdata{
		{"", nil, errNoData},
		{"autoplay -file /path/to/log.csv",
			&shellcmd{"autoplay", nil, map[string]string{"file": "/path/to/log.csv"}},
			nil},
		{"autoplay stop",
			&shellcmd{"autoplay", []string{"stop"}, map[string]string{}},
			nil},
		{"autoplay 50 -opp novice+ -file foo.csv ",
			&shellcmd{"autoplay",
				[]string{"50"},
				map[string]string{"opp": "novice+", "file": "foo.csv"}},
			nil,
		},
		{`play "c 8"`,
			&shellcmd{"play", []string{"c 8"}, map[string]string{}},
			nil},
		{"play a-1",
			&shellcmd{"play", []string{"a-1"}, map[string]string{}},
			nil},
		{"autoplay 50 -opp",
			nil, errWrongOptionSyntax},
	}
	for _, t := range cases {
		cmd, err := extractFields(t.line)
		is.Equal(cmd, t.expCmd)
		is.Equal(err, t.expErr)
	}
}

func TestPlayUndoRedo(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	out := mustRun(t, sc, "play f5")
	is.True(strings.Contains(out, "white to play"))
	mustRun(t, sc, "D6")
	mustRun(t, sc, `p "c 3"`)
	is.Equal(sc.game.MoveNumber(), 3)

	mustRun(t, sc, "undo 2")
	is.Equal(sc.game.MoveNumber(), 1)
	mustRun(t, sc, "redo")
	is.Equal(sc.game.MoveNumber(), 2)
	mustRun(t, sc, "redo all")
	is.Equal(sc.game.MoveNumber(), 3)
	_, err := run(t, sc, "redo")
	is.True(errors.Is(err, game.ErrNoMoreRedo))

	out = mustRun(t, sc, "show moves")
	is.Equal(out, "  1. f5\n  2. d6\n  3. c3 <")

	mustRun(t, sc, "undo all")
	is.Equal(sc.game.MoveNumber(), 0)
	_, err = run(t, sc, "undo")
	is.True(errors.Is(err, game.ErrNoMoreUndo))
	_, err = run(t, sc, "undo zero")
	is.True(err != nil)
}

func TestBadCommands(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	_, err := run(t, sc, "play a1")
	is.True(errors.Is(err, game.ErrIllegalMove))
	_, err = run(t, sc, "play z9")
	is.True(errors.Is(err, board.ErrBadSquare))
	_, err = run(t, sc, "pass")
	is.True(errors.Is(err, game.ErrIllegalMove))
	_, err = run(t, sc, "frobnicate")
	is.True(err != nil)
	_, err = run(t, sc, "show nothing")
	is.True(err != nil)
}

func TestNewGame(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	mustRun(t, sc, "f5")
	mustRun(t, sc, "new -flip true")
	is.Equal(sc.game.MoveNumber(), 0)
	is.True(sc.game.Mirrored())
	_, err := run(t, sc, "f5")
	is.True(errors.Is(err, game.ErrIllegalMove))
	mustRun(t, sc, "new")
	is.True(!sc.game.Mirrored())
}

func TestGen(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)

	out := mustRun(t, sc, "gen -play false")
	is.True(strings.HasPrefix(out, "black: f5"))
	is.Equal(sc.game.MoveNumber(), 0)

	mustRun(t, sc, "gen")
	is.Equal(sc.game.History(), []board.Square{board.SquareAt(5, 4)})

	for !sc.game.IsOver() {
		mustRun(t, sc, "gen")
	}
	_, err := run(t, sc, "gen")
	is.True(errors.Is(err, game.ErrGameOver))
}

func TestSetAndLevel(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	is.Equal(sc.player.Options().Depth, 1)

	mustRun(t, sc, "set depth 3")
	is.Equal(sc.player.Options().Depth, 3)
	is.Equal(sc.cfg.GetString(config.ConfigLevel), "")

	_, err := run(t, sc, "set depth 99")
	is.True(err != nil)
	is.Equal(sc.cfg.GetInt(config.ConfigDepth), 3)
	is.Equal(sc.player.Options().Depth, 3)

	_, err = run(t, sc, "set randomness lots")
	is.True(err != nil)
	_, err = run(t, sc, "set colour blue")
	is.True(err != nil)

	mustRun(t, sc, "set time-limit 2s")
	is.Equal(sc.player.Options().TimeLimit.Seconds(), 2.0)
	mustRun(t, sc, "set win-large false")
	is.True(!sc.player.Options().WinLarge)

	out := mustRun(t, sc, "set depth")
	is.Equal(out, "depth: 3")

	mustRun(t, sc, "level novice+")
	is.Equal(sc.player.Options().Depth, 4)
	is.Equal(sc.player.Options().Exact, 14)
	mustRun(t, sc, "set level beginner")
	is.Equal(sc.player.Options().Exact, 14)
	is.Equal(sc.player.Options().Depth, 6)
	_, err = run(t, sc, "level grandmaster")
	is.True(err != nil)

	out = mustRun(t, sc, "show options")
	assert.Contains(t, out, "level: beginner")
	assert.Contains(t, mustRun(t, sc, "level"), "experienced")
}

func TestSaveLoad(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	for _, m := range []string{"f5", "d6", "c3"} {
		mustRun(t, sc, m)
	}
	mustRun(t, sc, "undo")

	out := mustRun(t, sc, "save game1")
	savPath := filepath.Join(sc.cfg.GetString(config.ConfigDataPath), "game1.sav")
	is.Equal(out, "Saved to "+savPath)
	mustRun(t, sc, "save game1.yaml")

	for _, name := range []string{"game1", "game1.yaml"} {
		mustRun(t, sc, "new")
		mustRun(t, sc, "load "+name)
		is.Equal(sc.game.MoveNumber(), 2)
		is.Equal(sc.game.Top(), 3)
		mustRun(t, sc, "redo")
		is.Equal(sc.game.LastMove().String(), "c3")
		mustRun(t, sc, "undo")
	}

	_, err := run(t, sc, "load nosuchgame")
	is.True(err != nil)
}

func TestScript(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	dir := t.TempDir()
	script := filepath.Join(dir, "selfplay.lua")
	err := os.WriteFile(script, []byte(`
othello_level("stooge")
assert(othello_last_move() == nil)
othello_play("f5")
assert(othello_last_move() == "f5")
assert(othello_to_move() == "white")
local out = othello_play("a1")
assert(string.find(out, "ERROR: ") == 1)
while not othello_over() do
	othello_gen("")
end
local b, w = othello_score()
assert(b + w > 0)
assert(othello_margin() ~= nil)
othello_save(args[1])
`), 0o644)
	is.NoErr(err)

	_, err = run(t, sc, "script "+script+" finished")
	is.NoErr(err)
	is.True(sc.game.IsOver())
	_, err = os.Stat(filepath.Join(sc.cfg.GetString(config.ConfigDataPath), "finished.sav"))
	is.NoErr(err)

	bad := filepath.Join(dir, "bad.lua")
	is.NoErr(os.WriteFile(bad, []byte(`error("boom")`), 0o644))
	_, err = run(t, sc, "script "+bad)
	is.True(err != nil)
}

func TestAutoplay(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)

	_, err := run(t, sc, "autoplay stop")
	is.True(err != nil)
	_, err = run(t, sc, "autoplay 2 -colour red")
	is.True(err != nil)

	out := mustRun(t, sc, "autoplay 2 -opp mindless -random 2 -file log.csv")
	is.Equal(out, "Started 2 games: p1 vs mindless")
	sc.waitAutoplay()
	assert.Contains(t, buf.String(), "Games played: 2")

	out = mustRun(t, sc, "autoplay analyze log.csv")
	assert.Contains(t, out, "Games played: 2")
	assert.Contains(t, out, "p1 vs mindless")
}

func TestHelp(t *testing.T) {
	is := is.New(t)
	sc, _ := testController(t)
	is.True(strings.HasPrefix(mustRun(t, sc, "help"), "Commands:"))
	is.True(strings.HasPrefix(mustRun(t, sc, "help autoplay"), "autoplay [games]"))
	is.Equal(mustRun(t, sc, "help nosuch"), "There is no help text for the topic nosuch")
}

func TestExit(t *testing.T) {
	is := is.New(t)
	sc, buf := testController(t)
	sig := make(chan os.Signal, 1)
	is.NoErr(sc.standardModeSwitch("frobnicate", sig))
	assert.Contains(t, buf.String(), "Error: command \"frobnicate\" not found")
	is.NoErr(sc.standardModeSwitch("   ", sig))

	err := sc.standardModeSwitch("exit", sig)
	is.True(errors.Is(err, errExit))
	is.Equal(<-sig, os.Signal(syscall.SIGINT))
}
