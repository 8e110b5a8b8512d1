package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/subtext-live/subtext/internal/domain"
	"github.com/subtext-live/subtext/internal/protocol"
)

// Side-channel entry points for non-interactive sources that inject
// subtitles over HTTP instead of holding a connection.

// BroadcastSubtitle translates text once per language group and fans it
// out to every member, excluding the originating session if excludeID
// names one. The sender label comes from the originating session when
// it exists, else the raw id, else the text passes through unlabeled.
func (rt *Router) BroadcastSubtitle(ctx context.Context, text, sourceLang, excludeID string) {
	sourceLabel := excludeID
	if src, ok := rt.Registry.FindByID(domain.SessionID(excludeID)); ok {
		sourceLabel = src.DisplayName()
	}

	for _, lang := range rt.Registry.Languages() {
		group := rt.Registry.SessionsForLanguage(lang)
		if len(group) == 0 {
			continue
		}
		translated := rt.translateOrFallback(ctx, text, sourceLang, lang)
		display := BuildDisplayText(DisplayIncoming, sourceLabel, translated)
		for _, receiver := range group {
			if excludeID != "" && receiver.ID == domain.SessionID(excludeID) {
				continue
			}
			rt.send(receiver, protocol.Delivery{
				Type:              protocol.KindChat,
				SourceID:          excludeID,
				TargetID:          string(receiver.ID),
				SourceLang:        sourceLang,
				TargetLang:        lang,
				SourceDisplayName: sourceLabel,
				TargetDisplayName: receiver.DisplayName(),
				OriginalText:      text,
				TranslatedText:    translated,
				DisplayText:       display,
				Time:              protocol.Now(),
			})
		}
	}
}

// SendSubtitleOne translates text once and delivers the personal pair
// between two named ids. Either end may be absent; the present ones
// still get their payload, with raw ids standing in for missing labels.
// Returns the translated text for the synchronous acknowledgement.
func (rt *Router) SendSubtitleOne(ctx context.Context, text, sourceLang, targetLang, fromID, toID string) string {
	translated := rt.translateOrFallback(ctx, text, sourceLang, targetLang)
	now := protocol.Now()

	source, sourceOK := rt.Registry.FindByID(domain.SessionID(fromID))
	target, targetOK := rt.Registry.FindByID(domain.SessionID(toID))

	sourceLabel := fromID
	if sourceOK {
		sourceLabel = source.DisplayName()
	}
	targetLabel := toID
	if targetOK {
		targetLabel = target.DisplayName()
	}

	if targetOK {
		rt.send(target, protocol.Delivery{
			Type:              protocol.KindPersonalChat,
			SourceID:          fromID,
			TargetID:          toID,
			SourceLang:        sourceLang,
			TargetLang:        targetLang,
			SourceDisplayName: sourceLabel,
			TargetDisplayName: targetLabel,
			OriginalText:      text,
			TranslatedText:    translated,
			DisplayText:       BuildDisplayText(DisplayIncoming, sourceLabel, translated),
			Time:              now,
		})
	} else {
		log.Warn().Str("module", "app.router").Str("target", toID).Msg("subtitle target not found")
	}

	if sourceOK {
		rt.send(source, protocol.Delivery{
			Type:              protocol.KindPersonalChat,
			SourceID:          fromID,
			TargetID:          toID,
			SourceLang:        sourceLang,
			TargetLang:        targetLang,
			SourceDisplayName: sourceLabel,
			TargetDisplayName: targetLabel,
			OriginalText:      text,
			TranslatedText:    translated,
			DisplayText:       BuildDisplayText(DisplayOutgoing, targetLabel, translated),
			Time:              now,
		})
	}

	return translated
}
