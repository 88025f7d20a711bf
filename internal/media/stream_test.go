package media

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojosearch/dojosearch/internal/models"
)

func TestStreamClientResolve(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody signRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		expires := time.Now().Add(time.Hour).UTC()
		_ = json.NewEncoder(w).Encode(signResponse{
			URL:       "https://cdn.example/vid-belts?sig=abc",
			Title:     "Belt ranks explained",
			ExpiresAt: &expires,
		})
	}))
	t.Cleanup(srv.Close)

	client, err := NewStreamClient(srv.URL, "secret-token", 30*time.Minute, 5*time.Second)
	require.NoError(t, err)

	ref, err := client.Resolve(context.Background(), "vid-belts", models.MediaVideo)
	require.NoError(t, err)

	assert.Equal(t, "/media/vid-belts/sign", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, 1800, gotBody.TTLSeconds)

	assert.Equal(t, "vid-belts", ref.ID)
	assert.Equal(t, models.MediaVideo, ref.Kind)
	assert.Equal(t, "https://cdn.example/vid-belts?sig=abc", ref.URL)
	assert.Equal(t, "Belt ranks explained", ref.Title)
	require.NotNil(t, ref.ExpiresAt)
}

func TestStreamClientResolveNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(signResponse{URL: "https://cdn.example/x"})
	}))
	t.Cleanup(srv.Close)

	client, err := NewStreamClient(srv.URL, "", time.Minute, time.Second)
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "x", models.MediaImage)
	require.NoError(t, err)
}

func TestStreamClientCDNError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "asset not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client, err := NewStreamClient(srv.URL, "", time.Minute, time.Second)
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "gone", models.MediaVideo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestStreamClientEmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(signResponse{})
	}))
	t.Cleanup(srv.Close)

	client, err := NewStreamClient(srv.URL, "", time.Minute, time.Second)
	require.NoError(t, err)

	_, err = client.Resolve(context.Background(), "x", models.MediaVideo)
	assert.Error(t, err)
}

func TestNewStreamClientRequiresBaseURL(t *testing.T) {
	_, err := NewStreamClient("", "token", time.Minute, time.Second)
	assert.Error(t, err)
}
