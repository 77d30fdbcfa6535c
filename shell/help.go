package shell

import (
	"embed"
	"io/fs"
	"strings"
)

//go:embed helptext/*.txt
var helptext embed.FS

func usageTopic(topic string) (string, error) {
	dat, err := fs.ReadFile(helptext, "helptext/"+topic+".txt")
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(dat), "\n"), nil
}

func (sc *ShellController) help(cmd *shellcmd) (*Response, error) {
	topic := "usage"
	if len(cmd.args) > 0 {
		topic = cmd.args[0]
	}
	text, err := usageTopic(topic)
	if err != nil {
		return msg("There is no help text for the topic " + topic), nil
	}
	return msg(text), nil
}
