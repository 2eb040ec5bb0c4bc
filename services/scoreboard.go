package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"wargame-progression-system/models"
	"wargame-progression-system/utils"

	"github.com/gosimple/slug"
)

// LeaderboardSource is the slice of the progression service the scoreboard
// presentation depends on.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, wargame models.Wargame) ([]models.ScoreboardEntry, error)
}

// Embed is a chat-embed shaped scoreboard reply.
type Embed struct {
	Title  string       `json:"title"`
	Color  string       `json:"color"`
	Fields []EmbedField `json:"fields"`
}

type EmbedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ScoreboardService renders leaderboards for chat replies and publishes
// JSON snapshots for the public site.
type ScoreboardService struct {
	Repo LeaderboardSource
	// Upload pushes one snapshot document; defaults to the R2 uploader.
	// Tests swap it out, like the store manager's opener.
	Upload func(ctx context.Context, key string, body []byte) (string, error)
}

func NewScoreboardService(repo LeaderboardSource) *ScoreboardService {
	return &ScoreboardService{Repo: repo, Upload: utils.UploadJSONToR2}
}

// Render builds the embed for one wargame. Participants still at level 0
// are skipped here, not in the repository.
func (s *ScoreboardService) Render(ctx context.Context, wargame models.Wargame) (*Embed, error) {
	entries, err := s.Repo.Leaderboard(ctx, wargame)
	if err != nil {
		return nil, err
	}

	embed := &Embed{
		Title: wargame.Title() + " Scores",
		Color: "0x0099ff",
	}
	for _, entry := range entries {
		if entry.Level == 0 {
			continue
		}
		embed.Fields = append(embed.Fields, EmbedField{
			Name:  entry.Identity,
			Value: fmt.Sprintf("%d", entry.Level),
		})
	}
	return embed, nil
}

// snapshot is the JSON document uploaded per wargame.
type snapshot struct {
	Wargame     string                   `json:"wargame"`
	Title       string                   `json:"title"`
	GeneratedAt time.Time                `json:"generated_at"`
	Entries     []models.ScoreboardEntry `json:"entries"`
}

// PublishSnapshots uploads one leaderboard snapshot per wargame to R2.
func (s *ScoreboardService) PublishSnapshots(ctx context.Context) error {
	for _, wargame := range models.Wargames() {
		entries, err := s.Repo.Leaderboard(ctx, wargame)
		if err != nil {
			return err
		}

		doc := snapshot{
			Wargame:     wargame.String(),
			Title:       wargame.Title(),
			GeneratedAt: time.Now().UTC(),
			Entries:     make([]models.ScoreboardEntry, 0, len(entries)),
		}
		for _, entry := range entries {
			if entry.Level == 0 {
				continue
			}
			doc.Entries = append(doc.Entries, entry)
		}

		body, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode %s snapshot: %w", wargame, err)
		}

		key := fmt.Sprintf("scoreboards/%s.json", slug.Make(wargame.Title()))
		if _, err := s.Upload(ctx, key, body); err != nil {
			return fmt.Errorf("failed to publish %s snapshot: %w", wargame, err)
		}
	}
	return nil
}
