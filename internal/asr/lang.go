package asr

import "strings"

// MapWhisperLang maps app-level codes (en-us, es-419, zh-hans, ...) to
// the two-letter codes whisper understands. Empty means auto-detect.
func MapWhisperLang(appLang string) string {
	norm := strings.ToLower(strings.TrimSpace(appLang))
	if norm == "" {
		return ""
	}
	switch norm {
	case "en", "en-us", "en-gb":
		return "en"
	case "es", "es-419":
		return "es"
	case "pt", "pt-br", "pt-pt":
		return "pt"
	case "zh", "zh-hans", "zh-hant":
		return "zh"
	}
	if len(norm) < 2 {
		return norm
	}
	return norm[:2]
}
