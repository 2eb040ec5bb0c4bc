package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"wargame-progression-system/models"
	"wargame-progression-system/utils"
)

// CommandRegistrar replaces the guild's registered slash commands at startup
// so the gateway only ever dispatches the current definitions. The bulk PUT
// overwrites everything, dropping stale commands from earlier deploys.
type CommandRegistrar struct {
	BaseURL    string
	Token      string
	AppID      string
	GuildID    string
	HTTPClient *http.Client
}

func NewCommandRegistrar(baseURL, token, appID, guildID string) *CommandRegistrar {
	return &CommandRegistrar{
		BaseURL:    baseURL,
		Token:      token,
		AppID:      appID,
		GuildID:    guildID,
		HTTPClient: utils.HTTPClient,
	}
}

type commandOption struct {
	Type        string          `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Required    bool            `json:"required"`
	MinValue    *int            `json:"min_value,omitempty"`
	MaxValue    *int            `json:"max_value,omitempty"`
	Choices     []commandChoice `json:"choices,omitempty"`
}

type commandChoice struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type commandDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Options     []commandOption `json:"options"`
	// DefaultPermission false hides the command until the guild grants it
	// to specific roles (scoreboard is operator-only).
	DefaultPermission *bool `json:"default_permission,omitempty"`
}

func wargameChoices() []commandChoice {
	var choices []commandChoice
	for _, w := range models.Wargames() {
		choices = append(choices, commandChoice{Name: w.String(), Value: w.String()})
	}
	return choices
}

func commandDefinitions() []commandDefinition {
	maxLevel := 0
	for _, w := range models.Wargames() {
		if w.MaxLevel() > maxLevel {
			maxLevel = w.MaxLevel()
		}
	}
	minLevel := 0
	restricted := false

	return []commandDefinition{
		{
			Name:        "submit",
			Description: "Submit your wargames flags",
			Options: []commandOption{
				{
					Type:        "string",
					Name:        "wargame",
					Description: "The wargame you are submitting the flag for.",
					Required:    true,
					Choices:     wargameChoices(),
				},
				{
					Type:        "integer",
					Name:        "level",
					Description: "The level of the wargame.",
					Required:    true,
					MinValue:    &minLevel,
					MaxValue:    &maxLevel,
				},
				{
					Type:        "string",
					Name:        "flag",
					Description: "Your flag",
					Required:    true,
				},
			},
		},
		{
			Name:              "scoreboard",
			Description:       "View the scoreboard of wargames",
			DefaultPermission: &restricted,
			Options: []commandOption{
				{
					Type:        "string",
					Name:        "wargame",
					Description: "The wargame you want the scoreboard for.",
					Required:    true,
					Choices:     wargameChoices(),
				},
			},
		},
	}
}

// RegisterCommands clears any stale global commands left by earlier deploys,
// then overwrites the guild's slash commands with the current
// submit/scoreboard definitions.
func (r *CommandRegistrar) RegisterCommands(ctx context.Context) error {
	globalURL := fmt.Sprintf("%s/applications/%s/commands", r.BaseURL, r.AppID)
	if err := r.overwrite(ctx, globalURL, []commandDefinition{}); err != nil {
		return fmt.Errorf("failed to clear global commands: %w", err)
	}

	guildURL := fmt.Sprintf("%s/applications/%s/guilds/%s/commands", r.BaseURL, r.AppID, r.GuildID)
	if err := r.overwrite(ctx, guildURL, commandDefinitions()); err != nil {
		return fmt.Errorf("failed to register guild commands: %w", err)
	}
	return nil
}

// overwrite bulk-replaces a command set; the platform drops anything not in
// the payload.
func (r *CommandRegistrar) overwrite(ctx context.Context, url string, defs []commandDefinition) error {
	payload, err := json.Marshal(defs)
	if err != nil {
		return fmt.Errorf("failed to encode command definitions: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+r.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
