package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCommandsOverwritesGuildCommands(t *testing.T) {
	puts := map[string][]commandDefinition{}
	var order []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "Bot test-token", r.Header.Get("Authorization"))
		var defs []commandDefinition
		require.NoError(t, json.NewDecoder(r.Body).Decode(&defs))
		puts[r.URL.Path] = defs
		order = append(order, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	reg := NewCommandRegistrar(srv.URL, "test-token", "app-1", "guild-1")
	reg.HTTPClient = srv.Client()

	require.NoError(t, reg.RegisterCommands(context.Background()))

	// Stale global commands are wiped before the guild set is installed.
	require.Equal(t, []string{
		"/applications/app-1/commands",
		"/applications/app-1/guilds/guild-1/commands",
	}, order)
	assert.Empty(t, puts["/applications/app-1/commands"])

	got := puts["/applications/app-1/guilds/guild-1/commands"]
	require.Len(t, got, 2)
	assert.Equal(t, "submit", got[0].Name)
	assert.Nil(t, got[0].DefaultPermission)
	assert.Equal(t, "scoreboard", got[1].Name)
	// scoreboard is hidden by default; the guild grants it to operator roles.
	require.NotNil(t, got[1].DefaultPermission)
	assert.False(t, *got[1].DefaultPermission)

	// submit carries wargame choices, level bounds and the flag option.
	require.Len(t, got[0].Options, 3)
	assert.Equal(t, []commandChoice{
		{Name: "oswap", Value: "oswap"},
		{Name: "unixit", Value: "unixit"},
	}, got[0].Options[0].Choices)
	require.NotNil(t, got[0].Options[1].MaxValue)
	assert.Equal(t, 25, *got[0].Options[1].MaxValue)
	assert.Equal(t, "flag", got[0].Options[2].Name)
}

func TestRegisterCommandsSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing access", http.StatusForbidden)
	}))
	defer srv.Close()

	reg := NewCommandRegistrar(srv.URL, "test-token", "app-1", "guild-1")
	reg.HTTPClient = srv.Client()

	err := reg.RegisterCommands(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
