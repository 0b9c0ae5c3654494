package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full HTTP surface: health check, SMS and voice
// webhooks, and static serving of synthesized audio.
func NewRouter(sms *SMSHandler, voice *VoiceHandler, audioDir string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Twilio SMS Webhook Server is running!"})
	})

	sms.RegisterRoutes(r)
	voice.RegisterRoutes(r)

	// Synthesized MP3s must be publicly fetchable for Twilio's <Play>.
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(audioDir))))

	return r
}
