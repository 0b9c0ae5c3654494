package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/talkbacklabs/talkback/internal/domain"
)

// InboundSMSRequest is the form-encoded payload Twilio posts for an inbound
// message. Only From, To and Body are required; a request missing any of
// them is malformed and rejected before any outbound call is attempted.
type InboundSMSRequest struct {
	MessageSID string
	From       string `validate:"required"`
	To         string `validate:"required"`
	Body       string `validate:"required"`
	AccountSID string
	NumMedia   int
	MediaURLs  []string
}

// StatusCallbackRequest is the form-encoded payload for delivery-status
// callbacks. Purely observational, so nothing is required.
type StatusCallbackRequest struct {
	MessageSID    string
	MessageStatus string
	From          string
	To            string
	AccountSID    string
}

// inboundSMSFromForm maps Twilio's form fields onto the DTO. r.ParseForm
// must have been called.
func inboundSMSFromForm(r *http.Request) InboundSMSRequest {
	req := InboundSMSRequest{
		MessageSID: r.PostForm.Get("MessageSid"),
		From:       r.PostForm.Get("From"),
		To:         r.PostForm.Get("To"),
		Body:       r.PostForm.Get("Body"),
		AccountSID: r.PostForm.Get("AccountSid"),
	}
	if n, err := strconv.Atoi(r.PostForm.Get("NumMedia")); err == nil && n > 0 {
		req.NumMedia = n
		for i := 0; i < n; i++ {
			if u := r.PostForm.Get(fmt.Sprintf("MediaUrl%d", i)); u != "" {
				req.MediaURLs = append(req.MediaURLs, u)
			}
		}
	}
	return req
}

func statusCallbackFromForm(r *http.Request) StatusCallbackRequest {
	return StatusCallbackRequest{
		MessageSID:    r.PostForm.Get("MessageSid"),
		MessageStatus: r.PostForm.Get("MessageStatus"),
		From:          r.PostForm.Get("From"),
		To:            r.PostForm.Get("To"),
		AccountSID:    r.PostForm.Get("AccountSid"),
	}
}

func (r InboundSMSRequest) toDomain() domain.InboundMessageEvent {
	return domain.InboundMessageEvent{
		MessageSID: r.MessageSID,
		From:       r.From,
		To:         r.To,
		Body:       r.Body,
		AccountSID: r.AccountSID,
		NumMedia:   r.NumMedia,
		MediaURLs:  r.MediaURLs,
	}
}

func (r StatusCallbackRequest) toDomain() domain.DeliveryStatusEvent {
	return domain.DeliveryStatusEvent{
		MessageSID: r.MessageSID,
		Status:     r.MessageStatus,
		From:       r.From,
		To:         r.To,
	}
}

// requestBaseURL derives the externally reachable root of this server from
// the request, so callback URLs survive tunnels and reverse proxies without
// a config knob.
func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}
