// Package domain defines the request-scoped types the webhook server passes
// between its transport, orchestration and provider layers. Nothing here is
// persisted; every value lives for a single webhook invocation.
package domain

// InboundMessageEvent is an inbound SMS delivered by the provider's webhook.
type InboundMessageEvent struct {
	MessageSID string
	From       string
	To         string
	Body       string
	AccountSID string
	NumMedia   int
	MediaURLs  []string
}

// OutboundCallRequest asks the provider to place a voice call. CallbackURL is
// fetched by the provider during the call to obtain voice instructions.
type OutboundCallRequest struct {
	To          string
	From        string
	CallbackURL string
}

// OutboundMessageRequest asks the provider to send an SMS.
type OutboundMessageRequest struct {
	To   string
	From string
	Body string
}

// CallResult is the provider's acknowledgement of a placed call.
type CallResult struct {
	SID string
}

// MessageResult is the provider's acknowledgement of a sent message.
type MessageResult struct {
	SID string
}

// DeliveryStatusEvent is a delivery-status callback for a previously sent
// message. Purely observational; the server only logs it.
type DeliveryStatusEvent struct {
	MessageSID string
	Status     string
	From       string
	To         string
}
