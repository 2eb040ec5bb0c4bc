package services

import (
	"context"
	"errors"
	"fmt"

	"wargame-progression-system/models"
	"wargame-progression-system/store"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrFlagNotFound means no flag record exists for a (wargame, level) pair.
// The state machine treats it as a verification failure, never a crash.
var ErrFlagNotFound = errors.New("flag record not found")

// ProgressionService owns the progressions table. No other component writes
// to it.
type ProgressionService struct {
	Store *store.Manager
}

func NewProgressionService(m *store.Manager) *ProgressionService {
	return &ProgressionService{Store: m}
}

// GetOrCreate fetches a participant's progression row, inserting the default
// row (level 0 everywhere) on first interaction. Safe under concurrent calls
// for the same identity: the insert is insert-if-absent, so concurrent
// creators neither error nor duplicate.
func (s *ProgressionService) GetOrCreate(ctx context.Context, identity string) (*models.Progression, error) {
	db, err := s.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var prog models.Progression
	err = db.WithContext(ctx).Where("identity = ?", identity).First(&prog).Error
	if err == nil {
		return &prog, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fetch progression for %s: %w", identity, err)
	}

	fresh := models.Progression{
		ID:       uuid.NewString(),
		Identity: identity,
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&fresh).Error; err != nil {
		return nil, fmt.Errorf("create progression for %s: %w", identity, err)
	}

	// Re-read: a concurrent creator may have won the insert.
	if err := db.WithContext(ctx).Where("identity = ?", identity).First(&prog).Error; err != nil {
		return nil, fmt.Errorf("re-read progression for %s: %w", identity, err)
	}
	return &prog, nil
}

// ExpectedFlag returns the stored flag for a (wargame, level) pair.
func (s *ProgressionService) ExpectedFlag(ctx context.Context, wargame models.Wargame, level int) (string, error) {
	db, err := s.Store.Conn(ctx)
	if err != nil {
		return "", err
	}

	var rec models.FlagRecord
	err = db.WithContext(ctx).
		Table(wargame.FlagTable()).
		Where("chall = ?", level).
		Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrFlagNotFound
	}
	if err != nil {
		return "", fmt.Errorf("fetch flag for %s level %d: %w", wargame, level, err)
	}
	return rec.Flag, nil
}

// SetLevel overwrites the stored level for one wargame. Last writer wins;
// the submission flow's ordering check makes regressions unreachable in
// practice.
func (s *ProgressionService) SetLevel(ctx context.Context, identity string, wargame models.Wargame, level int) error {
	db, err := s.Store.Conn(ctx)
	if err != nil {
		return err
	}

	res := db.WithContext(ctx).
		Model(&models.Progression{}).
		Where("identity = ?", identity).
		Update(wargame.Column(), level)
	if res.Error != nil {
		return fmt.Errorf("set %s level for %s: %w", wargame, identity, res.Error)
	}
	return nil
}

// Leaderboard returns every participant's level for one wargame, highest
// first. Level-0 entries are included here; the presentation layer skips
// them.
func (s *ProgressionService) Leaderboard(ctx context.Context, wargame models.Wargame) ([]models.ScoreboardEntry, error) {
	db, err := s.Store.Conn(ctx)
	if err != nil {
		return nil, err
	}

	var entries []models.ScoreboardEntry
	if err := db.WithContext(ctx).
		Model(&models.Progression{}).
		Select("identity, "+wargame.Column()+" AS level").
		Order(wargame.Column() + " DESC").
		Scan(&entries).Error; err != nil {
		return nil, fmt.Errorf("fetch %s leaderboard: %w", wargame, err)
	}
	return entries, nil
}

// RecordAttempt writes one audit row for a decided submission. Callers treat
// failures as non-fatal.
func (s *ProgressionService) RecordAttempt(ctx context.Context, attempt *models.SubmissionAttempt) error {
	db, err := s.Store.Conn(ctx)
	if err != nil {
		return err
	}
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	return db.WithContext(ctx).Create(attempt).Error
}
