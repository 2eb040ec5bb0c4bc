package services

import (
	"context"
	"errors"
	"log"

	"wargame-progression-system/models"
)

// Outcome is the decided result of one flag submission.
type Outcome int

const (
	// Accepted: correct flag at the participant's current level; level
	// advanced and the access cascade completed.
	Accepted Outcome = iota
	// Rejected: wrong flag at the right level. No mutation.
	Rejected
	// OutOfOrder: claimed level is not the participant's current level
	// (replay of a completed level, a skip ahead, or beyond the wargame's
	// max). No mutation, no flag lookup.
	OutOfOrder
	// Error: infrastructure failure: store unavailable, or an access
	// change failed after the score was already advanced.
	Error
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case OutOfOrder:
		return "out_of_order"
	default:
		return "error"
	}
}

// ProgressionRepository is the slice of the progression service the state
// machine depends on.
type ProgressionRepository interface {
	GetOrCreate(ctx context.Context, identity string) (*models.Progression, error)
	ExpectedFlag(ctx context.Context, wargame models.Wargame, level int) (string, error)
	SetLevel(ctx context.Context, identity string, wargame models.Wargame, level int) error
	RecordAttempt(ctx context.Context, attempt *models.SubmissionAttempt) error
}

// ChannelAccess grants or revokes a participant's visibility of a named
// channel. Implementations must be idempotent.
type ChannelAccess interface {
	SetVisibility(ctx context.Context, channelName, identity string, visible bool) error
}

// SubmissionService drives a submission from ordering check through flag
// verification, score advance and the channel access cascade.
type SubmissionService struct {
	Repo   ProgressionRepository
	Access ChannelAccess
}

func NewSubmissionService(repo ProgressionRepository, access ChannelAccess) *SubmissionService {
	return &SubmissionService{Repo: repo, Access: access}
}

// Submit decides one flag submission.
//
// The level check is strict equality against the stored level: resubmitting
// an already-completed level is out of order even with the objectively
// correct flag. The score write always commits before any access change, and
// a failed access change is never rolled back; the progressions table is
// the source of truth, the mismatch is surfaced for operator attention.
func (s *SubmissionService) Submit(ctx context.Context, identity string, wargame models.Wargame, claimedLevel int, flag string) Outcome {
	prog, err := s.Repo.GetOrCreate(ctx, identity)
	if err != nil {
		log.Printf("submit: fetching progression for %s failed: %v", identity, err)
		return s.decided(ctx, identity, wargame, claimedLevel, Error)
	}
	currentLevel := prog.Level(wargame)

	if claimedLevel != currentLevel || claimedLevel > wargame.MaxLevel() {
		log.Printf("%s - %s - %d attempted level %d out of order", identity, wargame, currentLevel, claimedLevel)
		return s.decided(ctx, identity, wargame, claimedLevel, OutOfOrder)
	}

	expected, err := s.Repo.ExpectedFlag(ctx, wargame, claimedLevel)
	if errors.Is(err, ErrFlagNotFound) {
		// Missing reference data reads as a wrong flag, never a crash.
		log.Printf("%s - %s - %d submitted but no flag record exists", identity, wargame, claimedLevel)
		return s.decided(ctx, identity, wargame, claimedLevel, Rejected)
	}
	if err != nil {
		log.Printf("submit: fetching flag for %s level %d failed: %v", wargame, claimedLevel, err)
		return s.decided(ctx, identity, wargame, claimedLevel, Error)
	}

	if flag != expected {
		// Audit log only; the expected flag never reaches the reply.
		log.Printf("%s - %s - %d submitted wrong flag, wrong: %s correct: %s", identity, wargame, currentLevel, flag, expected)
		return s.decided(ctx, identity, wargame, claimedLevel, Rejected)
	}

	// Durable advance first. If this fails nothing else happens: old level,
	// old access, consistent state.
	if err := s.Repo.SetLevel(ctx, identity, wargame, claimedLevel+1); err != nil {
		log.Printf("submit: advancing %s to %s level %d failed: %v", identity, wargame, claimedLevel+1, err)
		return s.decided(ctx, identity, wargame, claimedLevel, Error)
	}

	// Access cascade. Completing the final level keeps the last channel
	// visible and changes nothing.
	if claimedLevel < wargame.MaxLevel() {
		failed := false
		if err := s.Access.SetVisibility(ctx, wargame.ChannelName(claimedLevel), identity, false); err != nil {
			log.Printf("submit: revoking %s for %s failed: %v", wargame.ChannelName(claimedLevel), identity, err)
			failed = true
		}
		if err := s.Access.SetVisibility(ctx, wargame.ChannelName(claimedLevel+1), identity, true); err != nil {
			log.Printf("submit: granting %s for %s failed: %v", wargame.ChannelName(claimedLevel+1), identity, err)
			failed = true
		}
		if failed {
			// Score stays advanced; access now disagrees with it until an
			// operator (or the reconciler) steps in.
			return s.decided(ctx, identity, wargame, claimedLevel, Error)
		}
	}

	log.Printf("%s - %s - %d submitted correct flag", identity, wargame, currentLevel)
	return s.decided(ctx, identity, wargame, claimedLevel, Accepted)
}

// decided records the audit row and passes the outcome through. Audit
// failures are logged and swallowed.
func (s *SubmissionService) decided(ctx context.Context, identity string, wargame models.Wargame, claimedLevel int, outcome Outcome) Outcome {
	attempt := &models.SubmissionAttempt{
		Identity:     identity,
		Wargame:      wargame.String(),
		ClaimedLevel: claimedLevel,
		Outcome:      outcome.String(),
	}
	if err := s.Repo.RecordAttempt(ctx, attempt); err != nil {
		log.Printf("submit: recording attempt for %s failed: %v", identity, err)
	}
	return outcome
}
