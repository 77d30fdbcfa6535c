package shell

import (
	"errors"

	"github.com/rs/zerolog/log"
	lua "github.com/yuin/gopher-lua"
)

const luaShellGlobal = "othello_shell"

// scriptCommands are the shell commands a script can run. Each one is
// available as othello_<name>(argstring) and returns the command output,
// or a string starting with "ERROR: ".
var scriptCommands = []string{
	"new", "play", "pass", "gen", "undo", "redo", "show",
	"set", "level", "save", "load", "autoplay",
}

func getShell(L *lua.LState) *ShellController {
	shell := L.GetGlobal(luaShellGlobal)
	ud, ok := shell.(*lua.LUserData)
	if !ok {
		panic("luserdata not right type")
	}
	sc, ok := ud.Value.(*ShellController)
	if !ok {
		panic("shellcontroller not right type")
	}
	return sc
}

func command(name string) lua.LGFunction {
	return func(L *lua.LState) int {
		line := name
		if lv := L.OptString(1, ""); lv != "" {
			line += " " + lv
		}
		sc := getShell(L)
		cmd, err := extractFields(line)
		var r *Response
		if err == nil {
			r, err = sc.dispatch(cmd)
		}
		if err != nil {
			log.Err(err).Str("command", name).Msg("error-executing-command")
			L.Push(lua.LString("ERROR: " + err.Error()))
			return 1
		}
		if r == nil {
			L.Push(lua.LString(""))
			return 1
		}
		L.Push(lua.LString(r.message))
		// return number of results pushed to stack.
		return 1
	}
}

// Score pushes the black and white disc counts.
func Score(L *lua.LState) int {
	sc := getShell(L)
	black, white := sc.game.Score()
	L.Push(lua.LNumber(black))
	L.Push(lua.LNumber(white))
	return 2
}

func Over(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LBool(sc.game.IsOver()))
	return 1
}

func ToMove(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LString(sc.game.ToMove().String()))
	return 1
}

func LastMove(L *lua.LState) int {
	sc := getShell(L)
	if sc.game.MoveNumber() == 0 {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(sc.game.LastMove().String()))
	return 1
}

func Margin(L *lua.LState) int {
	sc := getShell(L)
	L.Push(lua.LNumber(sc.game.Margin()))
	return 1
}

// script runs a Lua file. Extra arguments are passed in the global table
// args.
func (sc *ShellController) script(cmd *shellcmd) (*Response, error) {
	if len(cmd.args) == 0 {
		return nil, errors.New("need arguments for script")
	}
	filepath := cmd.args[0]

	L := lua.NewState()
	defer L.Close()

	lsc := L.NewUserData()
	lsc.Value = sc
	L.SetGlobal(luaShellGlobal, lsc)
	for _, name := range scriptCommands {
		L.SetGlobal("othello_"+name, L.NewFunction(command(name)))
	}
	L.SetGlobal("othello_score", L.NewFunction(Score))
	L.SetGlobal("othello_over", L.NewFunction(Over))
	L.SetGlobal("othello_to_move", L.NewFunction(ToMove))
	L.SetGlobal("othello_last_move", L.NewFunction(LastMove))
	L.SetGlobal("othello_margin", L.NewFunction(Margin))

	args := L.NewTable()
	for _, a := range cmd.args[1:] {
		args.Append(lua.LString(a))
	}
	L.SetGlobal("args", args)

	if err := L.DoFile(filepath); err != nil {
		log.Err(err).Str("file", filepath).Msg("script-error")
		return nil, err
	}
	return nil, nil
}
