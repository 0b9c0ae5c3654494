package tts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestElevenLabsSynthesizer_Synthesize(t *testing.T) {
	audio := []byte("not really mp3 bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/voice-1", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var req synthesisRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Hello, this is a test message!", req.Text)
		assert.Equal(t, "eleven_monolingual_v1", req.ModelID)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(audio)
	}))
	defer server.Close()

	dir := t.TempDir()
	synth := NewElevenLabsSynthesizer(discardLogger(), "test-key", "voice-1", dir, server.URL, server.Client())

	urlPath, err := synth.Synthesize(context.Background(), "Hello, this is a test message!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(urlPath, "/audio/"))
	assert.True(t, strings.HasSuffix(urlPath, ".mp3"))

	written, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(urlPath, "/audio/")))
	require.NoError(t, err)
	assert.Equal(t, audio, written)
}

func TestElevenLabsSynthesizer_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid api key"}`))
	}))
	defer server.Close()

	dir := t.TempDir()
	synth := NewElevenLabsSynthesizer(discardLogger(), "bad-key", "voice-1", dir, server.URL, server.Client())

	_, err := synth.Synthesize(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")

	// No stray audio files on failure.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
