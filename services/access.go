package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"wargame-progression-system/utils"
)

// ErrResourceNotFound means the named channel does not exist on the chat
// platform: a misconfigured naming scheme or a not-yet-created channel.
// Reported, never retried.
var ErrResourceNotFound = errors.New("channel not found")

// viewChannelBit is the chat platform's VIEW_CHANNEL permission bit.
const viewChannelBit = "1024"

// ChannelAccessClient edits per-participant channel visibility through the
// chat platform's REST API.
type ChannelAccessClient struct {
	BaseURL    string
	Token      string
	GuildID    string
	HTTPClient *http.Client
}

func NewChannelAccessClient(baseURL, token, guildID string) *ChannelAccessClient {
	return &ChannelAccessClient{
		BaseURL:    baseURL,
		Token:      token,
		GuildID:    guildID,
		HTTPClient: utils.HTTPClient,
	}
}

type guildChannel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// resolveChannel looks a channel up by name in the guild's channel list.
func (c *ChannelAccessClient) resolveChannel(ctx context.Context, name string) (string, error) {
	u := fmt.Sprintf("%s/guilds/%s/channels", c.BaseURL, url.PathEscape(c.GuildID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create channel list request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.Token)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to list guild channels: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("channel list returned status %d: %s", resp.StatusCode, string(body))
	}

	var channels []guildChannel
	if err := json.NewDecoder(resp.Body).Decode(&channels); err != nil {
		return "", fmt.Errorf("failed to decode channel list: %w", err)
	}

	for _, ch := range channels {
		if ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrResourceNotFound, name)
}

// SetVisibility overwrites the participant's VIEW_CHANNEL permission on the
// named channel. The overwrite is a full replace, so repeating the same call
// is a no-op on the platform side.
func (c *ChannelAccessClient) SetVisibility(ctx context.Context, channelName, identity string, visible bool) error {
	channelID, err := c.resolveChannel(ctx, channelName)
	if err != nil {
		return err
	}

	overwrite := map[string]string{
		"type":  "member",
		"allow": "0",
		"deny":  "0",
	}
	if visible {
		overwrite["allow"] = viewChannelBit
	} else {
		overwrite["deny"] = viewChannelBit
	}

	payload, err := json.Marshal(overwrite)
	if err != nil {
		return fmt.Errorf("failed to encode permission overwrite: %w", err)
	}

	u := fmt.Sprintf("%s/channels/%s/permissions/%s", c.BaseURL, channelID, url.PathEscape(identity))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create permission request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to edit permissions on %s: %w", channelName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrResourceNotFound, channelName)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("permission edit on %s returned status %d: %s", channelName, resp.StatusCode, string(body))
	}
	return nil
}
