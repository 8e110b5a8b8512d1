// Package protocol defines the message envelope exchanged with clients:
// a closed set of inbound message kinds decoded once at the transport
// boundary, and one payload struct per outbound shape.
package protocol

import "time"

type Kind string

const (
	KindHello        Kind = "hello"
	KindSetLang      Kind = "set_lang"
	KindChat         Kind = "chat"
	KindPersonalChat Kind = "personal_chat"
	KindHeadsetAudio Kind = "headset_audio"
	KindHeadsetRelay Kind = "headset_to_relay"
	KindError        Kind = "error"
	KindHeartbeat    Kind = "heartbeat"
)

// Now is the wall-clock timestamp carried by every outbound payload.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Hello is sent once, right after a connection is registered.
type Hello struct {
	Type          Kind   `json:"type"`
	ClientID      string `json:"client_id"`
	PreferredLang string `json:"preferred_lang"`
	DisplayName   string `json:"display_name,omitempty"`
	IsRelay       bool   `json:"is_relay"`
	Time          string `json:"time"`
}

// SetLangAck acknowledges a language change to the originator only.
type SetLangAck struct {
	Type        Kind   `json:"type"`
	Text        string `json:"text"`
	Lang        string `json:"lang"`
	ClientID    string `json:"client_id,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Time        string `json:"time"`
}

// Delivery carries translated text to one receiver. Used for broadcast
// chat, personal chat (both directions) and relay-forwarded transcripts;
// Type tells them apart.
type Delivery struct {
	Type              Kind   `json:"type"`
	SourceID          string `json:"source_id,omitempty"`
	TargetID          string `json:"target_id,omitempty"`
	SourceLang        string `json:"source_lang,omitempty"`
	TargetLang        string `json:"target_lang,omitempty"`
	SourceDisplayName string `json:"source_display_name,omitempty"`
	TargetDisplayName string `json:"target_display_name,omitempty"`
	OriginalText      string `json:"original_text"`
	TranslatedText    string `json:"translated_text"`
	DisplayText       string `json:"display_text"`
	Time              string `json:"time"`
}

// ErrorPayload reports protocol errors to the originating connection.
type ErrorPayload struct {
	Type Kind   `json:"type"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// Heartbeat is the periodic liveness payload.
type Heartbeat struct {
	Type Kind   `json:"type"`
	Text string `json:"text"`
	Time string `json:"time"`
}

func NewError(text string) ErrorPayload {
	return ErrorPayload{Type: KindError, Text: text, Time: Now()}
}

func NewHeartbeat(text string) Heartbeat {
	return Heartbeat{Type: KindHeartbeat, Text: text, Time: Now()}
}
