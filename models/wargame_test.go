package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWargame(t *testing.T) {
	w, err := ParseWargame("oswap")
	require.NoError(t, err)
	assert.Equal(t, WargameOswap, w)

	w, err = ParseWargame("unixit")
	require.NoError(t, err)
	assert.Equal(t, WargameUnixit, w)

	_, err = ParseWargame("bandit")
	assert.Error(t, err)

	_, err = ParseWargame("")
	assert.Error(t, err)

	// Column injection attempts never parse.
	_, err = ParseWargame("oswap; DROP TABLE scoreboard")
	assert.Error(t, err)
}

func TestWargameSpecs(t *testing.T) {
	assert.Equal(t, 25, WargameOswap.MaxLevel())
	assert.Equal(t, 20, WargameUnixit.MaxLevel())

	assert.Equal(t, "oswap", WargameOswap.Column())
	assert.Equal(t, "oswap", WargameOswap.FlagTable())
	assert.Equal(t, "unixit", WargameUnixit.Column())

	assert.Equal(t, "OSWAP", WargameOswap.Title())
	assert.Equal(t, "UnixIT", WargameUnixit.Title())

	assert.Equal(t, []Wargame{WargameOswap, WargameUnixit}, Wargames())
}

func TestChannelName(t *testing.T) {
	assert.Equal(t, "oswap-3", WargameOswap.ChannelName(3))
	assert.Equal(t, "unixit-0", WargameUnixit.ChannelName(0))
}

func TestProgressionLevel(t *testing.T) {
	prog := Progression{Oswap: 4, Unixit: 7}
	assert.Equal(t, 4, prog.Level(WargameOswap))
	assert.Equal(t, 7, prog.Level(WargameUnixit))
}
