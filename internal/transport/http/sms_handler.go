package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/talkbacklabs/talkback/internal/app"
	"github.com/talkbacklabs/talkback/internal/domain"
	"github.com/talkbacklabs/talkback/internal/twiml"
)

// InboundProcessor runs the call-and-confirm flow for one inbound message.
// Defined here so handler tests can mock the orchestration.
type InboundProcessor interface {
	ProcessInbound(ctx context.Context, event domain.InboundMessageEvent, baseURL string) app.InboundResult
}

type SMSHandler struct {
	relay    InboundProcessor
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSMSHandler(relay InboundProcessor, validate *validator.Validate, logger *slog.Logger) *SMSHandler {
	return &SMSHandler{
		relay:    relay,
		validate: validate,
		logger:   logger.With("handler", "sms"),
	}
}

func (h *SMSHandler) RegisterRoutes(r chi.Router) {
	r.Post("/webhook/sms", h.HandleInbound)
	r.Post("/webhook/sms/status", h.HandleStatus)
}

// HandleInbound receives an inbound SMS event, places a readback call to the
// sender and answers with the markup reply. Provider failures downstream are
// recovered inside the relay service, so any request that passes validation
// is acknowledged with 200 and Twilio does not redeliver it.
func (h *SMSHandler) HandleInbound(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "failed to parse inbound SMS form", "error", err)
		writeTwiML(w, http.StatusBadRequest, &twiml.MessagingResponse{})
		return
	}

	req := inboundSMSFromForm(r)
	if err := h.validate.StructCtx(ctx, req); err != nil {
		logger.WarnContext(ctx, "inbound SMS missing required fields", "error", err, "message_sid", req.MessageSID)
		writeTwiML(w, http.StatusBadRequest, &twiml.MessagingResponse{})
		return
	}

	logger.InfoContext(ctx, "received SMS",
		"message_sid", req.MessageSID,
		"from", req.From,
		"to", req.To,
		"body", req.Body)
	if req.NumMedia > 0 {
		logger.InfoContext(ctx, "media attached", "num_media", req.NumMedia, "media_urls", req.MediaURLs)
	}

	result := h.relay.ProcessInbound(ctx, req.toDomain(), requestBaseURL(r))

	resp := &twiml.MessagingResponse{}
	resp.Message(result.ReplyBody)
	writeTwiML(w, http.StatusOK, resp)
}

// HandleStatus logs delivery-status callbacks. No outbound calls are made
// and the response is always an empty markup body.
func (h *SMSHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := h.logger.With("request_id", chi_middleware.GetReqID(ctx))

	if err := r.ParseForm(); err != nil {
		logger.WarnContext(ctx, "failed to parse status callback form", "error", err)
		writeTwiML(w, http.StatusOK, &twiml.MessagingResponse{})
		return
	}

	event := statusCallbackFromForm(r).toDomain()
	logger.InfoContext(ctx, "SMS status update",
		"message_sid", event.MessageSID,
		"status", event.Status,
		"from", event.From,
		"to", event.To)

	writeTwiML(w, http.StatusOK, &twiml.MessagingResponse{})
}

type renderer interface {
	Render() (string, error)
}

func writeTwiML(w http.ResponseWriter, status int, doc renderer) {
	body, err := doc.Render()
	if err != nil {
		http.Error(w, "failed to render response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
