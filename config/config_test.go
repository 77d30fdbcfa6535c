package config

import (
	"os"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	os.Exit(m.Run())
}

func TestDefaults(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	is.Equal(c.GetInt(ConfigDepth), 8)
	is.Equal(c.GetInt(ConfigExact), 16)
	is.Equal(c.GetInt(ConfigWDLMargin), 2)
	is.True(c.GetBool(ConfigWinLarge))
	is.Equal(c.GetDuration(ConfigTimeLimit), time.Duration(0))
}

func TestLoadFlagsAndEnv(t *testing.T) {
	is := is.New(t)
	t.Setenv("OTHELLO_RANDOMNESS", "5")
	t.Setenv("OTHELLO_DATA_PATH", t.TempDir())
	c := &Config{}
	err := c.Load([]string{"--depth", "10", "--time-limit", "3s", "--level", "novice+"})
	is.NoErr(err)
	is.Equal(c.GetInt(ConfigDepth), 10)
	is.Equal(c.GetDuration(ConfigTimeLimit), 3*time.Second)
	is.Equal(c.GetString(ConfigLevel), "novice+")
	is.Equal(c.GetInt(ConfigRandomness), 5)
	// untouched keys keep their defaults
	is.Equal(c.GetInt(ConfigExact), 16)
}

func TestAdjustRelativePaths(t *testing.T) {
	is := is.New(t)
	c := DefaultConfig()
	c.AdjustRelativePaths("/opt/othello")
	is.Equal(c.GetString(ConfigDataPath), "/opt/othello/data")
}

func TestLoadLeavesCommand(t *testing.T) {
	is := is.New(t)
	t.Setenv("OTHELLO_DATA_PATH", t.TempDir())
	c := &Config{}
	err := c.Load([]string{"--debug", "--level", "stooge", "autoplay", "10", "-opp", "novice"})
	is.NoErr(err)
	is.True(c.GetBool(ConfigDebug))
	is.Equal(c.Args(), []string{"autoplay", "10", "-opp", "novice"})
}
