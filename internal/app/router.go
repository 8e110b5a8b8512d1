package app

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/subtext-live/subtext/internal/asr"
	"github.com/subtext-live/subtext/internal/domain"
	"github.com/subtext-live/subtext/internal/protocol"
	"github.com/subtext-live/subtext/internal/translate"
)

// Router decides who receives what. It is stateless: all session state
// lives in the registry, and the translation/transcription collaborators
// are invoked per message, never under the registry lock.
type Router struct {
	Registry    *Registry
	Translator  translate.Translator
	Transcriber asr.Transcriber
}

// HandleMessage dispatches one decoded inbound message from sess.
// Called inline from the connection's read loop, so messages from one
// sender are processed strictly in arrival order.
func (rt *Router) HandleMessage(ctx context.Context, sess *domain.Session, msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.SetLang:
		rt.handleSetLang(sess, m)
	case protocol.Chat:
		rt.handleChat(ctx, sess, m)
	case protocol.PersonalChat:
		rt.handlePersonal(ctx, sess, m)
	case protocol.HeadsetAudio:
		rt.handleHeadsetAudio(ctx, sess, m)
	case protocol.Unrecognized:
		log.Warn().Str("module", "app.router").Str("sid", string(sess.ID)).Str("type", m.Type).Msg("unrecognized message type")
		rt.send(sess, protocol.NewError("Unknown message type: "+m.Type))
	}
}

// HandleMalformed reports an undecodable frame back to its sender.
func (rt *Router) HandleMalformed(sess *domain.Session, err error) {
	log.Warn().Err(err).Str("module", "app.router").Str("sid", string(sess.ID)).Msg("malformed message")
	rt.send(sess, protocol.NewError("Malformed message"))
}

func (rt *Router) handleSetLang(sess *domain.Session, m protocol.SetLang) {
	resolved := rt.Registry.SetLanguage(sess, m.Lang, m.DisplayName)
	rt.send(sess, protocol.SetLangAck{
		Type:        protocol.KindSetLang,
		Text:        "Language set to " + resolved,
		Lang:        resolved,
		ClientID:    string(sess.ID),
		DisplayName: sess.DisplayName(),
		Time:        protocol.Now(),
	})
}

// handleChat fans a message out to every other live session, translated
// per receiver. A failed translation degrades to the marker-wrapped
// original for that receiver only.
func (rt *Router) handleChat(ctx context.Context, sess *domain.Session, m protocol.Chat) {
	sourceLang := sess.PreferredLang()
	sourceLabel := sess.DisplayName()

	for _, receiver := range rt.Registry.AllSessions() {
		if receiver.ID == sess.ID {
			continue
		}
		targetLang := receiver.PreferredLang()
		translated := rt.translateOrFallback(ctx, m.Text, sourceLang, targetLang)
		rt.send(receiver, protocol.Delivery{
			Type:              protocol.KindChat,
			SourceID:          string(sess.ID),
			TargetID:          string(receiver.ID),
			SourceLang:        sourceLang,
			TargetLang:        targetLang,
			SourceDisplayName: sourceLabel,
			TargetDisplayName: receiver.DisplayName(),
			OriginalText:      m.Text,
			TranslatedText:    translated,
			DisplayText:       BuildDisplayText(DisplayIncoming, sourceLabel, translated),
			Time:              protocol.Now(),
		})
	}
}

func (rt *Router) handlePersonal(ctx context.Context, sess *domain.Session, m protocol.PersonalChat) {
	target, ok := rt.Registry.FindByID(domain.SessionID(m.TargetID))
	if !ok {
		log.Warn().Str("module", "app.router").Str("sid", string(sess.ID)).Str("target", m.TargetID).Msg("personal chat target not found")
		rt.send(sess, protocol.NewError("Unknown target: "+m.TargetID))
		return
	}

	sourceLang := sess.PreferredLang()
	targetLang := target.PreferredLang()
	translated := rt.translateOrFallback(ctx, m.Text, sourceLang, targetLang)
	rt.deliverPair(protocol.KindPersonalChat, sess, target, m.Text, translated, sourceLang, targetLang)
}

// handleHeadsetAudio runs the relay-forwarding pipeline: transcribe the
// audio with the sender's language as a hint, then push the transcript
// through the personal path to the relay device. Empty transcripts and
// transcription failures drop silently; there is nothing to forward.
func (rt *Router) handleHeadsetAudio(ctx context.Context, sess *domain.Session, m protocol.HeadsetAudio) {
	relay, ok := rt.Registry.RelaySession()
	if !ok {
		log.Warn().Str("module", "app.router").Str("sid", string(sess.ID)).Msg("headset audio with no relay registered")
		return
	}

	hint := m.LanguageHint
	if hint == "" {
		hint = sess.PreferredLang()
	}
	transcript, err := rt.Transcriber.Transcribe(ctx, m.Audio, m.SampleRate, hint)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("sid", string(sess.ID)).Msg("transcription failed")
		return
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		log.Debug().Str("module", "app.router").Str("sid", string(sess.ID)).Msg("empty transcript; nothing recognized")
		return
	}

	sourceLang := sess.PreferredLang()
	targetLang := relay.PreferredLang()
	translated := rt.translateOrFallback(ctx, transcript, sourceLang, targetLang)
	rt.deliverPair(protocol.KindHeadsetRelay, sess, relay, transcript, translated, sourceLang, targetLang)
}

// deliverPair sends the incoming payload to the target and the outgoing
// echo to the source, with identical text and language metadata.
func (rt *Router) deliverPair(kind protocol.Kind, source, target *domain.Session, original, translated, sourceLang, targetLang string) {
	sourceLabel := source.DisplayName()
	targetLabel := target.DisplayName()
	now := protocol.Now()

	rt.send(target, protocol.Delivery{
		Type:              kind,
		SourceID:          string(source.ID),
		TargetID:          string(target.ID),
		SourceLang:        sourceLang,
		TargetLang:        targetLang,
		SourceDisplayName: sourceLabel,
		TargetDisplayName: targetLabel,
		OriginalText:      original,
		TranslatedText:    translated,
		DisplayText:       BuildDisplayText(DisplayIncoming, sourceLabel, translated),
		Time:              now,
	})
	rt.send(source, protocol.Delivery{
		Type:              kind,
		SourceID:          string(source.ID),
		TargetID:          string(target.ID),
		SourceLang:        sourceLang,
		TargetLang:        targetLang,
		SourceDisplayName: sourceLabel,
		TargetDisplayName: targetLabel,
		OriginalText:      original,
		TranslatedText:    translated,
		DisplayText:       BuildDisplayText(DisplayOutgoing, targetLabel, translated),
		Time:              now,
	})
}

// translateOrFallback skips same-family pairs and degrades failures to
// the visibly-untranslated original, so delivery never aborts.
func (rt *Router) translateOrFallback(ctx context.Context, text, sourceLang, targetLang string) string {
	if text == "" || translate.SameBase(sourceLang, targetLang) {
		return text
	}
	translated, err := rt.Translator.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("target_lang", targetLang).Msg("translation failed")
		return translate.UntranslatedMarker(translate.MapTargetLang(targetLang), text)
	}
	return translated
}

func (rt *Router) send(sess *domain.Session, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.router").Msg("marshal payload")
		return
	}
	if err := sess.Peer.TrySend(data); err != nil {
		log.Warn().Err(err).Str("module", "app.router").Str("sid", string(sess.ID)).Msg("send failed")
	}
}
