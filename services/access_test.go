package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatAPI is a minimal chat-platform API: a channel list and a store of
// permission overwrites keyed by channel/identity.
type fakeChatAPI struct {
	channels   []guildChannel
	overwrites map[string]map[string]string // channelID -> identity -> payload
	puts       int
}

func newFakeChatAPI() *fakeChatAPI {
	return &fakeChatAPI{
		channels: []guildChannel{
			{ID: "100", Name: "oswap-3"},
			{ID: "101", Name: "oswap-4"},
			{ID: "200", Name: "unixit-0"},
		},
		overwrites: map[string]map[string]string{},
	}
}

func (f *fakeChatAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))

		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/channels"):
			_ = json.NewEncoder(w).Encode(f.channels)
		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/permissions/"):
			parts := strings.Split(r.URL.Path, "/")
			channelID := parts[2]
			identity := parts[4]

			found := false
			for _, ch := range f.channels {
				if ch.ID == channelID {
					found = true
				}
			}
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}

			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if f.overwrites[channelID] == nil {
				f.overwrites[channelID] = map[string]string{}
			}
			f.overwrites[channelID][identity] = body["allow"] + "/" + body["deny"]
			f.puts++
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func newTestAccessClient(t *testing.T, api *fakeChatAPI) *ChannelAccessClient {
	t.Helper()
	srv := httptest.NewServer(api.handler(t))
	t.Cleanup(srv.Close)

	client := NewChannelAccessClient(srv.URL, "test-token", "guild-1")
	client.HTTPClient = srv.Client()
	return client
}

func TestSetVisibilityGrant(t *testing.T) {
	api := newFakeChatAPI()
	client := newTestAccessClient(t, api)

	err := client.SetVisibility(context.Background(), "oswap-4", "alice", true)
	require.NoError(t, err)
	assert.Equal(t, "1024/0", api.overwrites["101"]["alice"])
}

func TestSetVisibilityRevoke(t *testing.T) {
	api := newFakeChatAPI()
	client := newTestAccessClient(t, api)

	err := client.SetVisibility(context.Background(), "oswap-3", "alice", false)
	require.NoError(t, err)
	assert.Equal(t, "0/1024", api.overwrites["100"]["alice"])
}

func TestSetVisibilityIsIdempotent(t *testing.T) {
	api := newFakeChatAPI()
	client := newTestAccessClient(t, api)

	require.NoError(t, client.SetVisibility(context.Background(), "oswap-4", "alice", true))
	after := api.overwrites["101"]["alice"]

	// Second identical call: same observable state, no error.
	require.NoError(t, client.SetVisibility(context.Background(), "oswap-4", "alice", true))
	assert.Equal(t, after, api.overwrites["101"]["alice"])
}

func TestSetVisibilityUnknownChannel(t *testing.T) {
	api := newFakeChatAPI()
	client := newTestAccessClient(t, api)

	err := client.SetVisibility(context.Background(), "oswap-99", "alice", true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceNotFound)
	assert.Zero(t, api.puts)
}
