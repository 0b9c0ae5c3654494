// Package tts synthesizes speech for voice callbacks via the ElevenLabs API.
// Synthesis is best-effort: when it fails the caller falls back to the
// provider's built-in <Say> text-to-speech.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const defaultBaseURL = "https://api.elevenlabs.io"

type ElevenLabsSynthesizer struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	voiceID    string
	audioDir   string
}

// NewElevenLabsSynthesizer creates a synthesizer writing MP3 files into
// audioDir. baseURL is overridable for tests; pass "" for the production API.
func NewElevenLabsSynthesizer(logger *slog.Logger, apiKey, voiceID, audioDir, baseURL string, httpClient *http.Client) *ElevenLabsSynthesizer {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &ElevenLabsSynthesizer{
		logger:     logger.With("component", "elevenlabs"),
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		voiceID:    voiceID,
		audioDir:   audioDir,
	}
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

// Synthesize renders text to an MP3 file under the audio directory and
// returns the URL path ("/audio/<name>.mp3") it will be served from.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) (string, error) {
	reqBody, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: "eleven_monolingual_v1",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.5,
			Style:           0.5,
			UseSpeakerBoost: true,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal synthesis request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.voiceID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("build synthesis request: %w", err)
	}
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", s.apiKey)

	httpResp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("synthesis request: %w", err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 512))
		return "", fmt.Errorf("elevenlabs returned status %d: %s", httpResp.StatusCode, string(body))
	}

	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}

	filename := uuid.NewString() + ".mp3"
	path := filepath.Join(s.audioDir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create audio file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, httpResp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write audio file: %w", err)
	}

	s.logger.InfoContext(ctx, "synthesized speech audio", "file", filename)
	return "/audio/" + filename, nil
}
