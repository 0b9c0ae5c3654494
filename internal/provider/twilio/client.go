// Package twilio is a thin REST adapter for the Twilio API surface this
// service uses: placing a call and sending a message. SDK-style failures are
// converted to explicit error values at this boundary so callers can branch
// on them instead of intercepting panics or wrapped exception types.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/talkbacklabs/talkback/internal/domain"
)

const defaultBaseURL = "https://api.twilio.com"

type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
}

// NewClient creates a Twilio REST client. httpClient may be nil, in which
// case a client with a 10 second timeout is used. baseURL is overridable for
// tests; pass "" for the production API.
func NewClient(logger *slog.Logger, accountSID, authToken, baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		logger:     logger.With("provider", "twilio"),
		httpClient: httpClient,
		baseURL:    baseURL,
		accountSID: accountSID,
		authToken:  authToken,
	}
}

// apiResource captures the fields we need from call and message resources.
type apiResource struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// apiError is Twilio's error envelope for non-2xx responses.
type apiError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

// PlaceCall asks Twilio to dial req.To from req.From. Twilio fetches
// req.CallbackURL once the callee answers to learn what to say. A single
// attempt is made; failures are returned, never retried here.
func (c *Client) PlaceCall(ctx context.Context, req domain.OutboundCallRequest) (*domain.CallResult, error) {
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Url", req.CallbackURL)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	resource, err := c.post(ctx, endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("place call to %s: %w", req.To, err)
	}

	c.logger.InfoContext(ctx, "outbound call initiated", "call_sid", resource.SID, "to", req.To)
	return &domain.CallResult{SID: resource.SID}, nil
}

// SendMessage asks Twilio to send an SMS.
func (c *Client) SendMessage(ctx context.Context, req domain.OutboundMessageRequest) (*domain.MessageResult, error) {
	form := url.Values{}
	form.Set("To", req.To)
	form.Set("From", req.From)
	form.Set("Body", req.Body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	resource, err := c.post(ctx, endpoint, form)
	if err != nil {
		return nil, fmt.Errorf("send message to %s: %w", req.To, err)
	}

	c.logger.InfoContext(ctx, "outbound message sent", "message_sid", resource.SID, "to", req.To)
	return &domain.MessageResult{SID: resource.SID}, nil
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) (*apiResource, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(c.accountSID, c.authToken)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("http post: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response (status %d): %w", httpResp.StatusCode, err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var apiErr apiError
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("twilio error %d (status %d): %s", apiErr.Code, httpResp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("twilio returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resource apiResource
	if err := json.Unmarshal(respBody, &resource); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resource, nil
}
