package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscordSendsEmbeds(t *testing.T) {
	var got []DiscordMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var msg DiscordMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		got = append(got, msg)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := &Discord{ErrorURL: server.URL, SuccessURL: server.URL}
	require.NoError(t, d.SendSuccess(context.Background(), "9 artifacts in output"))
	require.NoError(t, d.SendError(context.Background(), "band not found"))

	require.Len(t, got, 2)
	assert.Equal(t, colorGreen, got[0].Embeds[0].Color)
	assert.Equal(t, "9 artifacts in output", got[0].Embeds[0].Description)
	assert.Equal(t, colorRed, got[1].Embeds[0].Color)
	assert.Contains(t, got[1].Embeds[0].Description, "band not found")
}

func TestDiscordSkipsWithoutURL(t *testing.T) {
	d := &Discord{}
	assert.NoError(t, d.SendError(context.Background(), "ignored"))
	assert.NoError(t, d.SendSuccess(context.Background(), "ignored"))
}

func TestDiscordRejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := (&Discord{ErrorURL: server.URL}).SendError(context.Background(), "boom")
	assert.ErrorContains(t, err, "status code: 400")
}

func TestNewDiscordReadsEnvironment(t *testing.T) {
	t.Setenv("DISCORD_ERROR_NOTIFICATION_URL", "http://errors.invalid")
	t.Setenv("DISCORD_SUCCESS_NOTIFICATION_URL", "")
	d := NewDiscord()
	assert.Equal(t, "http://errors.invalid", d.ErrorURL)
	assert.Empty(t, d.SuccessURL)
}
