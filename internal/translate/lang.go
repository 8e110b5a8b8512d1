package translate

import "strings"

// DeepL's vocabulary is asymmetric: a source language may be a bare
// family code (auto-detectable), but a target must always be a concrete
// regional code. Plain "en"/"pt"/"zh" therefore diverge between the two
// tables.

var sourceLangMap = map[string]string{
	"en": "EN", "en-us": "EN", "en-gb": "EN",
	"es": "ES", "es-419": "ES",
	"pt": "PT", "pt-br": "PT", "pt-pt": "PT",
	"zh": "ZH", "zh-hans": "ZH", "zh-hant": "ZH",
	"ar": "AR", "bg": "BG", "cs": "CS", "da": "DA", "de": "DE",
	"el": "EL", "et": "ET", "fi": "FI", "fr": "FR", "he": "HE",
	"hu": "HU", "id": "ID", "it": "IT", "ja": "JA", "ko": "KO",
	"lt": "LT", "lv": "LV", "nb": "NB", "nl": "NL", "pl": "PL",
	"ro": "RO", "ru": "RU", "sk": "SK", "sl": "SL", "sv": "SV",
	"th": "TH", "tr": "TR", "uk": "UK", "vi": "VI",
}

var targetLangMap = map[string]string{
	"en": "EN-US", "en-us": "EN-US", "en-gb": "EN-GB",
	"es": "ES", "es-419": "ES-419",
	"pt": "PT-PT", "pt-pt": "PT-PT", "pt-br": "PT-BR",
	"zh": "ZH-HANS", "zh-hans": "ZH-HANS", "zh-hant": "ZH-HANT",
	"ar": "AR", "bg": "BG", "cs": "CS", "da": "DA", "de": "DE",
	"el": "EL", "et": "ET", "fi": "FI", "fr": "FR", "he": "HE",
	"hu": "HU", "id": "ID", "it": "IT", "ja": "JA", "ko": "KO",
	"lt": "LT", "lv": "LV", "nb": "NB", "nl": "NL", "pl": "PL",
	"ro": "RO", "ru": "RU", "sk": "SK", "sl": "SL", "sv": "SV",
	"th": "TH", "tr": "TR", "uk": "UK", "vi": "VI",
}

// MapSourceLang maps an app-level code to a DeepL source code. Empty
// input maps to empty, which callers pass through as "auto-detect".
// Unlisted codes fall back to the first two letters upper-cased.
func MapSourceLang(lang string) string {
	norm := strings.ToLower(strings.TrimSpace(lang))
	if norm == "" {
		return ""
	}
	if mapped, ok := sourceLangMap[norm]; ok {
		return mapped
	}
	return fallback(norm)
}

// MapTargetLang maps an app-level code to a DeepL target code. The
// fallback avoids the deprecated bare "EN" target by coercing it to
// "EN-US". Empty input maps to empty; a target is always required, so
// callers must not pass blanks.
func MapTargetLang(lang string) string {
	norm := strings.ToLower(strings.TrimSpace(lang))
	if norm == "" {
		return ""
	}
	if mapped, ok := targetLangMap[norm]; ok {
		return mapped
	}
	fb := fallback(norm)
	if fb == "EN" {
		return "EN-US"
	}
	return fb
}

func fallback(norm string) string {
	if len(norm) < 2 {
		return strings.ToUpper(norm)
	}
	return strings.ToUpper(norm[:2])
}

// SameBase reports whether two app-level codes resolve to the same
// language family, i.e. translation between them is a no-op.
func SameBase(sourceLang, targetLang string) bool {
	src := MapSourceLang(sourceLang)
	dst := MapTargetLang(targetLang)
	if src == "" || dst == "" {
		return false
	}
	return base(src) == base(dst)
}

func base(code string) string {
	if len(code) < 2 {
		return code
	}
	return code[:2]
}

// UntranslatedMarker wraps text that could not be translated so the
// receiver still sees the message, visibly tagged with the intended
// target language.
func UntranslatedMarker(targetLang, text string) string {
	return "[" + targetLang + " untranslated] " + text
}
