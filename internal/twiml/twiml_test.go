package twiml

import (
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingResponse_Render(t *testing.T) {
	resp := &MessagingResponse{}
	resp.Message("Thanks for your message! I'm calling you now to read it back. Call SID: CA123")

	out, err := resp.Render()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, out, "<Response><Message>")
	assert.Contains(t, out, "Call SID: CA123")
}

func TestMessagingResponse_Render_Empty(t *testing.T) {
	out, err := (&MessagingResponse{}).Render()
	require.NoError(t, err)
	assert.Contains(t, out, "<Response></Response>")
}

func TestMessagingResponse_EscapesSpecialCharacters(t *testing.T) {
	resp := &MessagingResponse{}
	resp.Message(`Received your message: 'a < b & c'`)

	out, err := resp.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "a &lt; b &amp; c")

	// The escaped body must decode back to the original, byte for byte.
	var decoded MessagingResponse
	require.NoError(t, xml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Messages, 1)
	assert.Equal(t, `Received your message: 'a < b & c'`, decoded.Messages[0].Body)
}

func TestVoiceResponse_Render(t *testing.T) {
	resp := &VoiceResponse{}
	resp.Say("Hello! You sent the following message: Hi. Thank you for your message. Goodbye!", "Polly.Emma")
	resp.Pause(1)
	resp.Hangup()

	out, err := resp.Render()
	require.NoError(t, err)

	assert.Contains(t, out, `<Say voice="Polly.Emma">Hello! You sent the following message: Hi. Thank you for your message. Goodbye!</Say>`)
	assert.Contains(t, out, `<Pause length="1"></Pause>`)
	assert.Contains(t, out, "<Hangup></Hangup>")
}

func TestVoiceResponse_Play(t *testing.T) {
	resp := &VoiceResponse{}
	resp.Play("https://example.com/audio/abc.mp3")

	out, err := resp.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "<Play>https://example.com/audio/abc.mp3</Play>")
}

func TestVoiceResponse_GatherNesting(t *testing.T) {
	gather := &Gather{NumDigits: 1, Timeout: 10, Action: "/webhook/voice/input/abc", Method: "POST"}
	gather.Say("Press 1 to end the call, or press 2 for a special message.", "Polly.Emma")

	resp := &VoiceResponse{}
	resp.Gather(gather)
	resp.Say("I didn't receive any input. Goodbye!", "Polly.Emma")
	resp.Hangup()

	out, err := resp.Render()
	require.NoError(t, err)

	assert.Contains(t, out, `<Gather numDigits="1" timeout="10" action="/webhook/voice/input/abc" method="POST">`)
	assert.Contains(t, out, "Press 1 to end the call")

	// The gather prompt must sit inside the Gather element.
	gatherStart := strings.Index(out, "<Gather")
	gatherEnd := strings.Index(out, "</Gather>")
	prompt := strings.Index(out, "Press 1")
	require.Greater(t, gatherEnd, gatherStart)
	assert.Greater(t, prompt, gatherStart)
	assert.Less(t, prompt, gatherEnd)
}

func TestVoiceResponse_PreservesUnicode(t *testing.T) {
	body := "héllo wörld 你好 — punctuation!?;:"
	resp := &VoiceResponse{}
	resp.Say(body, "")

	out, err := resp.Render()
	require.NoError(t, err)

	var decoded struct {
		Say []struct {
			Text string `xml:",chardata"`
		} `xml:"Say"`
	}
	require.NoError(t, xml.Unmarshal([]byte(out), &decoded))
	require.Len(t, decoded.Say, 1)
	assert.Equal(t, body, decoded.Say[0].Text)
}
