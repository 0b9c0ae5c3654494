package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the webhook server. Values come from
// config.defaults.yaml (optional) overridden by environment variables.
type Config struct {
	ServerPort int    `mapstructure:"SERVER_PORT"`
	LogLevel   string `mapstructure:"LOG_LEVEL"`

	// Twilio credentials and the number outbound calls/messages are placed from.
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioPhoneNumber string `mapstructure:"TWILIO_PHONE_NUMBER"`

	// ElevenLabs speech synthesis. Optional: when the API key is empty the
	// voice webhook falls back to Twilio <Say> text-to-speech.
	ElevenLabsAPIKey  string `mapstructure:"ELEVENLABS_API_KEY"`
	ElevenLabsVoiceID string `mapstructure:"ELEVENLABS_VOICE_ID"`

	// AudioDir is where synthesized MP3 files are written and served from.
	AudioDir string `mapstructure:"AUDIO_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config.defaults")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("SERVER_PORT", 5002)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_PHONE_NUMBER", "")
	v.SetDefault("ELEVENLABS_API_KEY", "")
	// Default to the "Rachel" stock voice.
	v.SetDefault("ELEVENLABS_VOICE_ID", "21m00Tcm4TlvDq8ikWAM")
	v.SetDefault("AUDIO_DIR", "audio_files")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Configuration file ('config.defaults.yaml') not found; using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the credentials the service cannot run without. A missing
// Twilio credential is a startup-fatal configuration error; callers are
// expected to exit rather than start a server that cannot place calls.
func (c *Config) Validate() error {
	if c.TwilioAccountSID == "" {
		return errors.New("TWILIO_ACCOUNT_SID is not set")
	}
	if c.TwilioAuthToken == "" {
		return errors.New("TWILIO_AUTH_TOKEN is not set")
	}
	if c.TwilioPhoneNumber == "" {
		return errors.New("TWILIO_PHONE_NUMBER is not set")
	}
	return nil
}
