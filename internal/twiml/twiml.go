// Package twiml builds the XML documents Twilio interprets as call and
// message instructions. Only the verbs this service emits are modeled.
package twiml

import (
	"encoding/xml"
	"fmt"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// MessagingResponse is the markup reply to an inbound SMS webhook. Twilio
// sends each <Message> body back to the sender as the synchronous reply.
type MessagingResponse struct {
	XMLName  xml.Name  `xml:"Response"`
	Messages []Message `xml:"Message"`
}

type Message struct {
	Body string `xml:",chardata"`
}

// Message appends a text reply to the response.
func (r *MessagingResponse) Message(body string) *MessagingResponse {
	r.Messages = append(r.Messages, Message{Body: body})
	return r
}

func (r *MessagingResponse) Render() (string, error) {
	return render(r)
}

// VoiceResponse is the markup fetched by Twilio while a call is active.
// Verbs are executed in order.
type VoiceResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any
}

type Say struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type Play struct {
	XMLName xml.Name `xml:"Play"`
	URL     string   `xml:",chardata"`
}

type Pause struct {
	XMLName xml.Name `xml:"Pause"`
	Length  int      `xml:"length,attr"`
}

type Hangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// Gather collects keypad digits and posts them to Action.
type Gather struct {
	XMLName   xml.Name `xml:"Gather"`
	NumDigits int      `xml:"numDigits,attr,omitempty"`
	Timeout   int      `xml:"timeout,attr,omitempty"`
	Action    string   `xml:"action,attr,omitempty"`
	Method    string   `xml:"method,attr,omitempty"`
	Verbs     []any
}

func (g *Gather) Say(text, voice string) *Gather {
	g.Verbs = append(g.Verbs, Say{Text: text, Voice: voice})
	return g
}

func (r *VoiceResponse) Say(text, voice string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Say{Text: text, Voice: voice})
	return r
}

func (r *VoiceResponse) Play(url string) *VoiceResponse {
	r.Verbs = append(r.Verbs, Play{URL: url})
	return r
}

func (r *VoiceResponse) Pause(length int) *VoiceResponse {
	r.Verbs = append(r.Verbs, Pause{Length: length})
	return r
}

func (r *VoiceResponse) Gather(g *Gather) *VoiceResponse {
	r.Verbs = append(r.Verbs, g)
	return r
}

func (r *VoiceResponse) Hangup() *VoiceResponse {
	r.Verbs = append(r.Verbs, Hangup{})
	return r
}

func (r *VoiceResponse) Render() (string, error) {
	return render(r)
}

func render(doc any) (string, error) {
	b, err := xml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal twiml: %w", err)
	}
	return header + string(b), nil
}
