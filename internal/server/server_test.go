package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dojosearch/dojosearch/internal/cache"
	"github.com/dojosearch/dojosearch/internal/feedback"
	"github.com/dojosearch/dojosearch/internal/index"
	"github.com/dojosearch/dojosearch/internal/metrics"
	"github.com/dojosearch/dojosearch/internal/models"
	"github.com/dojosearch/dojosearch/internal/pipeline"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (stubEmbedder) Model() string { return "stub-embed" }

type stubGenerator struct {
	mu     sync.Mutex
	answer string
	err    error
	calls  int
}

func (g *stubGenerator) SynthesizeAnswer(_ context.Context, _, _ string, onToken func(string) error) (string, int, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if g.err != nil {
		return "", 0, g.err
	}
	if onToken != nil {
		for _, word := range strings.SplitAfter(g.answer, " ") {
			if err := onToken(word); err != nil {
				return "", 0, err
			}
		}
	}
	return g.answer, 7, nil
}

func (g *stubGenerator) Model() string { return "stub-gen" }

func testServer(t *testing.T, gen *stubGenerator) (*Server, *feedback.Memory, *metrics.Collector) {
	t.Helper()

	idx := index.NewMemory()
	require.NoError(t, idx.Add(models.RetrievedDocument{
		ID:      "document:belts",
		Title:   "Karate belt ranks",
		URL:     "https://dojo.example/belts",
		Content: "White through black.",
	}, []float32{1, 0, 0}))

	store := cache.NewMemory()
	t.Cleanup(store.Close)

	mc := metrics.NewCollector()
	p, err := pipeline.New(pipeline.Config{
		CacheTTL:           time.Hour,
		TopK:               5,
		TopKMax:            20,
		RetrievalRetries:   1,
		RetryBackoff:       time.Millisecond,
		ContextTokenBudget: 3000,
		MaxSuggestions:     3,
		EmbedTimeout:       time.Second,
		SearchTimeout:      time.Second,
		GenerateTimeout:    time.Second,
		MediaTimeout:       time.Second,
	}, pipeline.Deps{
		Embedder:  stubEmbedder{},
		Index:     idx,
		Generator: gen,
		Cache:     store,
		Metrics:   mc,
	})
	require.NoError(t, err)

	fb := feedback.NewMemory()
	return New(":0", p, fb, mc, testLogger()), fb, mc
}

func TestHandleAnswer(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{answer: "Belts run white to black."})

	body, _ := json.Marshal(map[string]any{"query": "karate belt ranks", "user_id": "u-1"})
	req := httptest.NewRequest(http.MethodPost, "/v1/answer", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result models.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Belts run white to black.", result.Answer)
	assert.NotEmpty(t, result.ID)
	require.Len(t, result.Citations, 1)
	assert.Equal(t, "document:belts", result.Citations[0].ID)
}

func TestHandleAnswerCacheHit(t *testing.T) {
	gen := &stubGenerator{answer: "cached answer"}
	srv, _, mc := testServer(t, gen)

	post := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(map[string]any{"query": "Karate   BELT ranks"})
		req := httptest.NewRequest(http.MethodPost, "/v1/answer", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		srv.http.Handler.ServeHTTP(rec, req)
		return rec
	}

	first := post()
	second := post()
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)

	gen.mu.Lock()
	calls := gen.calls
	gen.mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), mc.Snapshot().CacheHits)
}

func TestHandleAnswerBadRequest(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{answer: "a"})

	t.Run("empty query", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"query":""}`))
		rec := httptest.NewRecorder()
		srv.http.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		srv.http.Handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleAnswerPipelineError(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{err: errors.New("model overloaded")})

	req := httptest.NewRequest(http.MethodPost, "/v1/answer", strings.NewReader(`{"query":"karate"}`))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "generation failed")
	assert.True(t, resp.Retryable)
}

func TestHandleFeedback(t *testing.T) {
	srv, fb, _ := testServer(t, &stubGenerator{answer: "a"})

	body := `{"result_id":"r-1","helpful":true,"comment":"good"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	require.Eventually(t, func() bool {
		return len(fb.Records()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, "r-1", fb.Records()[0].ResultID)
}

func TestHandleFeedbackMissingResultID(t *testing.T) {
	srv, fb, _ := testServer(t, &stubGenerator{answer: "a"})

	req := httptest.NewRequest(http.MethodPost, "/v1/feedback", strings.NewReader(`{"helpful":true}`))
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, fb.Records())
}

func TestHandleStats(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{answer: "a"})

	req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var snap metrics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.GreaterOrEqual(t, snap.UptimeSeconds, 0.0)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{answer: "a"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())
}

func TestHandleAnswerStream(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{answer: "white yellow black"})

	ts := httptest.NewServer(srv.http.Handler)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/answer/stream?query=belt+order"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	var tokens strings.Builder
	var gotResult bool
	for {
		var msg streamMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch msg.Type {
		case "token":
			tokens.WriteString(msg.Token)
		case "result":
			gotResult = true
		case "error":
			t.Fatalf("unexpected error frame: %s", msg.Error)
		}
		if gotResult {
			break
		}
	}

	assert.Equal(t, "white yellow black", tokens.String())
}

func TestHandleAnswerStreamMissingQuery(t *testing.T) {
	srv, _, _ := testServer(t, &stubGenerator{answer: "a"})

	req := httptest.NewRequest(http.MethodGet, "/v1/answer/stream", nil)
	rec := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
