package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/talkbacklabs/talkback/internal/app"
	"github.com/talkbacklabs/talkback/internal/callstore"
	"github.com/talkbacklabs/talkback/internal/platform/config"
	"github.com/talkbacklabs/talkback/internal/platform/logger"
	"github.com/talkbacklabs/talkback/internal/provider/twilio"
	transport "github.com/talkbacklabs/talkback/internal/transport/http"
	"github.com/talkbacklabs/talkback/internal/tts"
)

const serviceName = "webhook_server"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Webhook server starting...", "port", cfg.ServerPort)

	if err := os.MkdirAll(cfg.AudioDir, 0o755); err != nil {
		appLogger.Error("Failed to create audio directory", "dir", cfg.AudioDir, "error", err)
		os.Exit(1)
	}

	twilioClient := twilio.NewClient(appLogger, cfg.TwilioAccountSID, cfg.TwilioAuthToken, "", nil)

	var synth transport.SpeechSynthesizer
	if cfg.ElevenLabsAPIKey != "" {
		synth = tts.NewElevenLabsSynthesizer(appLogger, cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.AudioDir, "", nil)
		appLogger.Info("ElevenLabs synthesis enabled", "voice_id", cfg.ElevenLabsVoiceID)
	} else {
		appLogger.Warn("ELEVENLABS_API_KEY not set; voice prompts will use provider text-to-speech")
	}

	store := callstore.New()
	relay := app.NewRelayService(twilioClient, twilioClient, store, cfg.TwilioPhoneNumber, appLogger)

	validate := validator.New()
	smsHandler := transport.NewSMSHandler(relay, validate, appLogger)
	voiceHandler := transport.NewVoiceHandler(store, synth, appLogger)
	router := transport.NewRouter(smsHandler, voiceHandler, cfg.AudioDir)

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.ServerPort), Handler: router}
	appLogger.Info(fmt.Sprintf("Webhook server listening on port %d", cfg.ServerPort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	appLogger.Info("Shutdown signal received, shutting down HTTP server...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Webhook server shut down.")
}
