// Package app orchestrates the inbound-SMS flow: place a readback call to
// the sender, then confirm by SMS. Provider failures are recovered locally
// so the webhook can always acknowledge the inbound message with a 200.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talkbacklabs/talkback/internal/callstore"
	"github.com/talkbacklabs/talkback/internal/domain"
)

// CallPlacer places an outbound voice call via the telephony provider.
type CallPlacer interface {
	PlaceCall(ctx context.Context, req domain.OutboundCallRequest) (*domain.CallResult, error)
}

// MessageSender sends an SMS via the telephony provider.
type MessageSender interface {
	SendMessage(ctx context.Context, req domain.OutboundMessageRequest) (*domain.MessageResult, error)
}

// InboundResult is what the webhook handler renders back to the provider.
type InboundResult struct {
	// ReplyBody is the text-message reply returned synchronously as markup.
	ReplyBody string
	// CallSID is set when the readback call was placed successfully.
	CallSID    string
	CallPlaced bool
}

type RelayService struct {
	calls      CallPlacer
	messages   MessageSender
	store      *callstore.Store
	fromNumber string
	logger     *slog.Logger
}

func NewRelayService(calls CallPlacer, messages MessageSender, store *callstore.Store, fromNumber string, logger *slog.Logger) *RelayService {
	return &RelayService{
		calls:      calls,
		messages:   messages,
		store:      store,
		fromNumber: fromNumber,
		logger:     logger.With("component", "relay_service"),
	}
}

// SpokenTextFor is the greeting the call reads to the sender. The inbound
// body is embedded verbatim.
func SpokenTextFor(body string) string {
	return fmt.Sprintf("Hello! You sent the following message: %s. Thank you for your message. Goodbye!", body)
}

// ProcessInbound runs the full flow for one inbound message: store the call
// data, place the readback call, then send a confirmation SMS. Exactly one
// call attempt is made per event. baseURL is the externally reachable root
// of this server, used to build the voice callback URL.
//
// A failed call is a local recovery boundary: it is logged as a warning, a
// best-effort apology SMS is sent, and the reply still tells the sender what
// happened. The caller should return HTTP 200 either way so the provider
// does not redeliver the inbound message.
func (s *RelayService) ProcessInbound(ctx context.Context, event domain.InboundMessageEvent, baseURL string) InboundResult {
	logger := s.logger.With("message_sid", event.MessageSID, "from", event.From)

	callID := s.store.Put(callstore.CallData{
		MessageSID: event.MessageSID,
		From:       event.From,
		To:         event.To,
		Body:       event.Body,
		SpokenText: SpokenTextFor(event.Body),
	})

	callResult, err := s.calls.PlaceCall(ctx, domain.OutboundCallRequest{
		To:          event.From,
		From:        s.fromNumber,
		CallbackURL: fmt.Sprintf("%s/webhook/voice/call/%s", baseURL, callID),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to place readback call", "error", err)
		s.store.Delete(callID)

		reply := fmt.Sprintf("Received your message: '%s'. Sorry, I couldn't call you back due to an error.", event.Body)
		s.sendBestEffort(ctx, logger, event.From, "Sorry, I couldn't call you back.")
		return InboundResult{ReplyBody: reply}
	}

	logger.InfoContext(ctx, "readback call placed", "call_sid", callResult.SID, "call_id", callID)

	confirmation := fmt.Sprintf("Thanks for your message! I'm calling you now to read it back. Call SID: %s", callResult.SID)
	s.sendBestEffort(ctx, logger, event.From, confirmation)

	return InboundResult{
		ReplyBody:  confirmation,
		CallSID:    callResult.SID,
		CallPlaced: true,
	}
}

// sendBestEffort sends an SMS and logs on failure. Message-send failures
// never escalate; the inbound webhook has already been processed.
func (s *RelayService) sendBestEffort(ctx context.Context, logger *slog.Logger, to, body string) {
	result, err := s.messages.SendMessage(ctx, domain.OutboundMessageRequest{
		To:   to,
		From: s.fromNumber,
		Body: body,
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to send confirmation message", "error", err)
		return
	}
	logger.InfoContext(ctx, "confirmation message sent", "message_sid", result.SID)
}
