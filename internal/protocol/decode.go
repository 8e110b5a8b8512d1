package protocol

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformed = errors.New("malformed message")

// Inbound is the closed set of client-originated message kinds. Unknown
// discriminants decode to Unrecognized, never to a lookup failure.
type Inbound interface {
	inbound()
}

type SetLang struct {
	Lang        string
	DisplayName string
}

type Chat struct {
	Text string
}

type PersonalChat struct {
	Text     string
	TargetID string
}

type HeadsetAudio struct {
	Audio        []byte
	SampleRate   int
	LanguageHint string
}

type Unrecognized struct {
	Type string
}

func (SetLang) inbound()      {}
func (Chat) inbound()         {}
func (PersonalChat) inbound() {}
func (HeadsetAudio) inbound() {}
func (Unrecognized) inbound() {}

// wire is the superset of inbound fields; Decode narrows it to one
// variant so illegal field combinations are unrepresentable downstream.
type wire struct {
	Type         string `json:"type"`
	Lang         string `json:"lang"`
	DisplayName  string `json:"display_name"`
	Text         string `json:"text"`
	TargetID     string `json:"target_id"`
	AudioBase64  string `json:"audio_base64"`
	SampleRate   int    `json:"sample_rate"`
	LanguageHint string `json:"language_hint"`
}

// Decode parses one inbound frame. It returns ErrMalformed-wrapped
// errors for undecodable envelopes and missing required fields; an
// unknown type is not an error.
func Decode(data []byte) (Inbound, error) {
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch Kind(w.Type) {
	case KindSetLang:
		return SetLang{Lang: w.Lang, DisplayName: w.DisplayName}, nil
	case KindChat:
		if w.Text == "" {
			return nil, fmt.Errorf("%w: chat without text", ErrMalformed)
		}
		return Chat{Text: w.Text}, nil
	case KindPersonalChat:
		if w.Text == "" || w.TargetID == "" {
			return nil, fmt.Errorf("%w: personal_chat needs text and target_id", ErrMalformed)
		}
		return PersonalChat{Text: w.Text, TargetID: w.TargetID}, nil
	case KindHeadsetAudio:
		if w.AudioBase64 == "" {
			return nil, fmt.Errorf("%w: headset_audio without audio_base64", ErrMalformed)
		}
		audio, err := base64.StdEncoding.DecodeString(w.AudioBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad audio encoding: %v", ErrMalformed, err)
		}
		return HeadsetAudio{Audio: audio, SampleRate: w.SampleRate, LanguageHint: w.LanguageHint}, nil
	default:
		return Unrecognized{Type: w.Type}, nil
	}
}
