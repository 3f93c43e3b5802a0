package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bskyscraper/pkg/bluesky"
	"bskyscraper/pkg/config"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockXRPCServer serves createSession, resolveHandle and a two page search
type mockXRPCServer struct {
	server *httptest.Server

	mu          sync.Mutex
	searchCalls []map[string][]string
	failSearch  bool
}

func newMockXRPCServer(t *testing.T) *mockXRPCServer {
	t.Helper()
	m := &mockXRPCServer{}

	mux := http.NewServeMux()
	mux.HandleFunc("/xrpc/"+bluesky.CreateSessionMethod, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "app-pass" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "AuthenticationRequired", "message": "Invalid identifier or password"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{
			"accessJwt": "jwt-" + body["identifier"],
			"did":       "did:plc:me",
			"handle":    body["identifier"],
		})
	})
	mux.HandleFunc("/xrpc/"+bluesky.ResolveHandleMethod, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("handle") == "bob.test" {
			_ = json.NewEncoder(w).Encode(map[string]string{"did": "did:plc:bob"})
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "InvalidRequest", "message": "Unable to resolve handle"})
	})
	mux.HandleFunc("/xrpc/"+bluesky.SearchPostsMethod, m.handleSearch)

	m.server = httptest.NewServer(mux)
	t.Cleanup(m.server.Close)
	return m
}

func (m *mockXRPCServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.searchCalls = append(m.searchCalls, map[string][]string(r.URL.Query()))
	fail := m.failSearch
	m.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer jwt-alice.test" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	post := func(handle, id, text string) map[string]interface{} {
		return map[string]interface{}{
			"uri":       "at://did:plc:x/app.bsky.feed.post/" + id,
			"author":    map[string]string{"handle": handle},
			"record":    map[string]string{"$type": "app.bsky.feed.post", "text": text},
			"indexedAt": "2024-05-01T10:00:00.000Z",
		}
	}

	switch r.URL.Query().Get("cursor") {
	case "":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"posts":  []interface{}{post("bob.test", "a1", "first"), map[string]interface{}{"uri": "at://x/y/broken"}},
			"cursor": "page2",
		})
	case "page2":
		if fail {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"posts": []interface{}{post("bob.test", "b1", "second")},
		})
	}
}

func pipelineConfig(t *testing.T, baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bluesky.BaseURL = baseURL
	cfg.Bluesky.Timeout = 5 * time.Second
	cfg.Output.Directory = t.TempDir()
	return cfg
}

func TestPipelineAgainstXRPCServer(t *testing.T) {
	srv := newMockXRPCServer(t)
	cfg := pipelineConfig(t, srv.server.URL)
	log := logger.NewTestLogger()

	s := NewFromConfig(cfg, log)
	require.NoError(t, s.Authenticate(context.Background(), "alice.test", "app-pass"))

	result, err := s.Run(context.Background(), bluesky.QueryParams{
		Query:    "release notes",
		Author:   "bob.test",
		Mentions: "unknown.test",
		Tags:     []string{"go", "oss"},
	})
	require.NoError(t, err)

	require.Len(t, srv.searchCalls, 2)
	first := srv.searchCalls[0]
	assert.Equal(t, []string{"release notes"}, first["q"])
	assert.Equal(t, []string{"did:plc:bob"}, first["author"])
	assert.Equal(t, []string{"unknown.test"}, first["mentions"])
	assert.Equal(t, []string{"go", "oss"}, first["tag"])
	assert.Equal(t, []string{"25"}, first["limit"])
	assert.Equal(t, []string{"page2"}, srv.searchCalls[1]["cursor"])
	assert.True(t, log.HasMessage("Error resolving handle, using it unchanged"))

	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 2, result.Saved)

	saved, err := storage.ReadDataset(result.Path)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "https://bsky.app/profile/bob.test/post/b1", saved[0].PostLink)
	assert.Equal(t, "second", saved[0].Content)
	assert.Equal(t, "https://bsky.app/profile/bob.test/post/a1", saved[1].PostLink)
	assert.True(t, log.HasMessage("Skipping post with missing field"))
}

func TestPipelineSavesPartialResultsOnServerError(t *testing.T) {
	srv := newMockXRPCServer(t)
	srv.failSearch = true
	cfg := pipelineConfig(t, srv.server.URL)

	s := NewFromConfig(cfg, logger.NewNopLogger())
	require.NoError(t, s.Authenticate(context.Background(), "alice.test", "app-pass"))

	result, err := s.Run(context.Background(), bluesky.QueryParams{Query: "golang"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Saved)
	assert.FileExists(t, result.Path)
}

func TestPipelineRejectsBadPassword(t *testing.T) {
	srv := newMockXRPCServer(t)
	s := NewFromConfig(pipelineConfig(t, srv.server.URL), logger.NewNopLogger())

	err := s.Authenticate(context.Background(), "alice.test", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}
