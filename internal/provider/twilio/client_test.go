package twilio

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkbacklabs/talkback/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClient_PlaceCall_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Calls.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "secret-token", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "+15551234567", r.PostForm.Get("To"))
		assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "https://example.com/webhook/voice/call/abc", r.PostForm.Get("Url"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"CA123","status":"queued"}`))
	}))
	defer server.Close()

	client := NewClient(discardLogger(), "AC123", "secret-token", server.URL, server.Client())

	result, err := client.PlaceCall(context.Background(), domain.OutboundCallRequest{
		To:          "+15551234567",
		From:        "+15550001111",
		CallbackURL: "https://example.com/webhook/voice/call/abc",
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "CA123", result.SID)
}

func TestClient_PlaceCall_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":21217,"message":"Phone number is not a valid number.","more_info":"https://www.twilio.com/docs/errors/21217"}`))
	}))
	defer server.Close()

	client := NewClient(discardLogger(), "AC123", "secret-token", server.URL, server.Client())

	result, err := client.PlaceCall(context.Background(), domain.OutboundCallRequest{To: "bogus"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "21217")
	assert.Contains(t, err.Error(), "not a valid number")
}

func TestClient_SendMessage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "Thanks for your message! I'm calling you now to read it back. Call SID: CA123", r.PostForm.Get("Body"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid":"SM456","status":"queued"}`))
	}))
	defer server.Close()

	client := NewClient(discardLogger(), "AC123", "secret-token", server.URL, server.Client())

	result, err := client.SendMessage(context.Background(), domain.OutboundMessageRequest{
		To:   "+15551234567",
		From: "+15550001111",
		Body: "Thanks for your message! I'm calling you now to read it back. Call SID: CA123",
	})
	require.NoError(t, err)
	assert.Equal(t, "SM456", result.SID)
}

func TestClient_SendMessage_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	}))
	defer server.Close()

	client := NewClient(discardLogger(), "AC123", "secret-token", server.URL, server.Client())

	_, err := client.SendMessage(context.Background(), domain.OutboundMessageRequest{To: "+15551234567"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
