package models

// FlagRecord mirrors one row of a per-wargame flag table (read-only reference
// data, provisioned by the wargame content pipeline). The table itself is
// selected at query time from the Wargame enum, so the struct carries no
// TableName on purpose.
type FlagRecord struct {
	Level int    `gorm:"column:chall"`
	Flag  string `gorm:"column:flag"`
}
