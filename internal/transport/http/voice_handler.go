package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"

	"github.com/talkbacklabs/talkback/internal/callstore"
	"github.com/talkbacklabs/talkback/internal/twiml"
)

// promptVoice is the Twilio TTS voice used for call prompts when synthesized
// audio is unavailable.
const promptVoice = "Polly.Emma"

// SpeechSynthesizer renders text to an audio file and returns its URL path.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (string, error)
}

type VoiceHandler struct {
	store  *callstore.Store
	synth  SpeechSynthesizer
	logger *slog.Logger
}

// NewVoiceHandler creates the handler for voice callbacks. synth may be nil;
// prompts then use the provider's <Say> text-to-speech.
func NewVoiceHandler(store *callstore.Store, synth SpeechSynthesizer, logger *slog.Logger) *VoiceHandler {
	return &VoiceHandler{
		store:  store,
		synth:  synth,
		logger: logger.With("handler", "voice"),
	}
}

func (h *VoiceHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook/voice", h.HandleFallback)
	// Twilio may fetch call webhooks with either method.
	r.MethodFunc(http.MethodGet, "/webhook/voice/call/{call_id}", h.HandleCallPrompt)
	r.MethodFunc(http.MethodPost, "/webhook/voice/call/{call_id}", h.HandleCallPrompt)
	r.MethodFunc(http.MethodGet, "/webhook/voice/input/{call_id}", h.HandleCallInput)
	r.MethodFunc(http.MethodPost, "/webhook/voice/input/{call_id}", h.HandleCallInput)
}

// HandleCallPrompt is fetched by Twilio once the outbound call connects. It
// reads the stored message back, preferring synthesized audio, then gathers
// a keypad choice.
func (h *VoiceHandler) HandleCallPrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := chi.URLParam(r, "call_id")
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "call_id", callID)

	data, ok := h.store.Get(callID)
	if !ok {
		logger.WarnContext(ctx, "call data not found for voice callback")
		resp := &twiml.VoiceResponse{}
		resp.Say("Sorry, there was an error processing your call.", promptVoice)
		resp.Hangup()
		writeTwiML(w, http.StatusOK, resp)
		return
	}

	logger.InfoContext(ctx, "serving voice prompt", "message_sid", data.MessageSID)

	resp := &twiml.VoiceResponse{}
	h.speak(ctx, logger, resp, r, data.SpokenText)
	resp.Pause(1)

	gather := &twiml.Gather{
		NumDigits: 1,
		Timeout:   10,
		Action:    "/webhook/voice/input/" + callID,
		Method:    http.MethodPost,
	}
	gather.Say("Press 1 to end the call, or press 2 for a special message.", promptVoice)
	resp.Gather(gather)

	resp.Say("I didn't receive any input. Goodbye!", promptVoice)
	resp.Hangup()
	writeTwiML(w, http.StatusOK, resp)
}

// speak appends either a <Play> of synthesized audio or a <Say> fallback.
func (h *VoiceHandler) speak(ctx context.Context, logger *slog.Logger, resp *twiml.VoiceResponse, r *http.Request, text string) {
	if h.synth != nil {
		audioPath, err := h.synth.Synthesize(ctx, text)
		if err == nil {
			resp.Play(requestBaseURL(r) + audioPath)
			return
		}
		logger.WarnContext(ctx, "speech synthesis failed, falling back to <Say>", "error", err)
	}
	resp.Say(text, promptVoice)
}

// HandleCallInput processes the keypad digit gathered by HandleCallPrompt
// and cleans up the stored call data.
func (h *VoiceHandler) HandleCallInput(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	callID := chi.URLParam(r, "call_id")
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx), "call_id", callID)

	// FormValue covers both the POST form and GET query variants.
	digits := r.FormValue("Digits")
	logger.InfoContext(ctx, "received call input", "digits", digits)

	resp := &twiml.VoiceResponse{}
	switch digits {
	case "1":
		resp.Say("Goodbye!", promptVoice)
	case "2":
		resp.Say("Thanks for picking up the phone dude!", promptVoice)
		resp.Pause(1)
		resp.Say("Have a great day!", promptVoice)
	default:
		resp.Say("Invalid option. Goodbye!", promptVoice)
	}
	resp.Hangup()

	h.store.Delete(callID)
	writeTwiML(w, http.StatusOK, resp)
}

// HandleFallback is the stateless voice endpoint: the text to speak travels
// in the Body query parameter of the callback URL, since no server-side
// session exists. Without one it answers with a generic greeting.
func (h *VoiceHandler) HandleFallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	resp := &twiml.VoiceResponse{}
	if body := r.URL.Query().Get("Body"); body != "" {
		logger.InfoContext(ctx, "speaking correlated body from query")
		resp.Say(body, promptVoice)
	} else {
		resp.Say("Hello! This is a voice webhook response.", "alice")
	}
	resp.Hangup()
	writeTwiML(w, http.StatusOK, resp)
}
