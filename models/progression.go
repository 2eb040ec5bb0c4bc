package models

import (
	"time"
)

// Progression tracks a participant's current level in every wargame
// (one denormalized column per wargame, matching the scoreboard schema).
// Rows are created lazily on first interaction and never deleted.
type Progression struct {
	ID       string `gorm:"primaryKey;type:char(36)" json:"id"`
	Identity string `gorm:"uniqueIndex;not null" json:"identity"` // opaque chat identity from the gateway

	Oswap  int `json:"oswap" gorm:"default:0"`
	Unixit int `json:"unixit" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Level returns the stored level for one wargame.
func (p *Progression) Level(w Wargame) int {
	switch w {
	case WargameOswap:
		return p.Oswap
	case WargameUnixit:
		return p.Unixit
	}
	return 0
}

// ScoreboardEntry is a derived (identity, level) pair for one wargame,
// never persisted.
type ScoreboardEntry struct {
	Identity string `json:"identity"`
	Level    int    `json:"level"`
}
