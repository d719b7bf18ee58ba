package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicewriter-go/internal/model"
)

func writeEnvelope(w http.ResponseWriter, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "data": data, "message": message})
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL+"/api/v1/", WithTimeout(2*time.Second))
	require.NoError(t, err)
	return c
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
	_, err = New("/api/v1")
	assert.Error(t, err)
}

func TestClient_Paths(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.URL.Path {
		case "/api/v1/scenes":
			writeEnvelope(w, 0, []map[string]any{{"id": 1, "name": "Home", "icon": "home"}, {"id": 2, "name": "Travel", "icon": "travel"}}, "success")
		case "/api/v1/scenes/2":
			writeEnvelope(w, 0, map[string]any{"id": 2, "name": "Travel", "icon": "travel"}, "success")
		case "/api/v1/sentences", "/api/v1/sentences/scene/1":
			writeEnvelope(w, 0, []map[string]any{{"id": 9, "scene_id": 1, "content": "I love coffee.", "difficulty": "easy"}}, "success")
		case "/api/v1/sentences/9":
			writeEnvelope(w, 0, map[string]any{"id": 9, "scene_id": 1, "content": "I love coffee.", "translation": "我爱咖啡。", "difficulty": "easy"}, "success")
		case "/api/v1/audio/9":
			writeEnvelope(w, 0, map[string]any{"url": "/audio/9.mp3"}, "success")
		case "/api/v1/progress/u%201", "/api/v1/progress/u 1":
			writeEnvelope(w, 0, []map[string]any{{"id": 3, "user_id": "u 1", "sentence_id": 9, "completed": true, "attempts": 2}}, "success")
		default:
			http.NotFound(w, r)
		}
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	scenes, err := c.Scenes(ctx)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "Travel", scenes[1].Name)
	assert.Equal(t, model.IconTravel, scenes[1].Icon)

	scene, err := c.Scene(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), scene.ID)

	all, err := c.Sentences(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	byScene, err := c.SentencesByScene(ctx, 1)
	require.NoError(t, err)
	require.Len(t, byScene, 1)
	assert.Equal(t, int64(1), byScene[0].SceneID)

	sentence, err := c.Sentence(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "我爱咖啡。", sentence.Translation)
	assert.Equal(t, model.DifficultyEasy, sentence.Difficulty)

	audioURL, err := c.AudioURL(ctx, 9)
	require.NoError(t, err)
	assert.Contains(t, audioURL, "http://")
	assert.Contains(t, audioURL, "/audio/9.mp3")
	assert.NotContains(t, audioURL, "/api/v1/audio")

	progress, err := c.Progress(ctx, "u 1")
	require.NoError(t, err)
	require.Len(t, progress, 1)
	assert.True(t, progress[0].Completed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /api/v1/scenes",
		"GET /api/v1/scenes/2",
		"GET /api/v1/sentences",
		"GET /api/v1/sentences/scene/1",
		"GET /api/v1/sentences/9",
		"GET /api/v1/audio/9",
		"GET /api/v1/progress/u 1",
	}, seen)
}

func TestClient_SaveProgressPostsJSON(t *testing.T) {
	var (
		got         model.UserProgress
		method      string
		path        string
		contentType string
	)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		writeEnvelope(w, 0, nil, "Progress saved successfully")
	}))

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	err := c.SaveProgress(context.Background(), model.UserProgress{
		UserID: "u1", SentenceID: 9, Completed: true, Attempts: 3, LastAttempt: &now,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/api/v1/progress", path)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, 3, got.Attempts)
	require.NotNil(t, got.LastAttempt)
	assert.True(t, now.Equal(*got.LastAttempt))
}

func TestClient_StatusErrorIsNotTransport(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		writeEnvelope(w, 500, nil, "Failed to get scenes")
	}))

	scenes, err := c.Scenes(context.Background())
	require.Error(t, err)
	assert.Nil(t, scenes)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 500, se.Code)
	assert.Equal(t, "Failed to get scenes", se.Message)
	assert.False(t, errors.Is(err, ErrTransport))
}

func TestClient_NonEnvelopeIsTransport(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	_, err := c.Sentence(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTransport))
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestClient_DialFailureIsTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base)
	require.NoError(t, err)
	_, err = c.Scenes(context.Background())
	assert.True(t, errors.Is(err, ErrTransport))
}

func TestClient_CancelledContext(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Scenes(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_ProgressRequiresUser(t *testing.T) {
	c, err := New("http://localhost:1")
	require.NoError(t, err)
	_, err = c.Progress(context.Background(), "")
	assert.Error(t, err)
}

func TestResolveURL(t *testing.T) {
	c, err := New("http://api.example:8080/api/v1")
	require.NoError(t, err)

	tests := []struct{ in, want string }{
		{"", ""},
		{"/audio/1.mp3", "http://api.example:8080/audio/1.mp3"},
		{"https://cdn.example/a/1.mp3", "https://cdn.example/a/1.mp3"},
	}
	for _, tt := range tests {
		got, err := c.ResolveURL(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
