package models

import (
	"fmt"
)

// Wargame is the closed set of tracked wargames. Each value maps to a fixed
// progression column and flag table, so an unvalidated string can never reach
// a query.
type Wargame string

const (
	WargameOswap  Wargame = "oswap"
	WargameUnixit Wargame = "unixit"
)

// wargameSpec pins the per-wargame identifiers at compile time.
type wargameSpec struct {
	column   string // column in progressions holding the current level
	table    string // flag table for this wargame
	maxLevel int
	title    string // display name for scoreboards
}

var wargameSpecs = map[Wargame]wargameSpec{
	WargameOswap:  {column: "oswap", table: "oswap", maxLevel: 25, title: "OSWAP"},
	WargameUnixit: {column: "unixit", table: "unixit", maxLevel: 20, title: "UnixIT"},
}

// Wargames returns every configured wargame, in a stable order.
func Wargames() []Wargame {
	return []Wargame{WargameOswap, WargameUnixit}
}

// ParseWargame validates a raw identifier from an inbound command.
func ParseWargame(raw string) (Wargame, error) {
	w := Wargame(raw)
	if _, ok := wargameSpecs[w]; !ok {
		return "", fmt.Errorf("unknown wargame %q", raw)
	}
	return w, nil
}

func (w Wargame) String() string { return string(w) }

// Column is the progressions column tracking this wargame's level.
func (w Wargame) Column() string { return wargameSpecs[w].column }

// FlagTable is the table holding this wargame's flag records.
func (w Wargame) FlagTable() string { return wargameSpecs[w].table }

// MaxLevel is the final level of the wargame. Completing it sets the stored
// level to MaxLevel+1 and unlocks nothing further.
func (w Wargame) MaxLevel() int { return wargameSpecs[w].maxLevel }

// Title is the display name used by the scoreboard presentation.
func (w Wargame) Title() string { return wargameSpecs[w].title }

// ChannelName resolves the gated channel for a level ("oswap-3").
func (w Wargame) ChannelName(level int) string {
	return fmt.Sprintf("%s-%d", w, level)
}
