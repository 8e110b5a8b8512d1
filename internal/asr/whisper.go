// Package asr wraps the speech-to-text collaborator. The reference
// implementation shells base64-decoded WAV audio through a temp file
// into a local whisper CLI.
package asr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrDisabled = errors.New("transcriber disabled")

// Transcriber converts audio bytes into recognized text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte, sampleRate int, languageHint string) (string, error)
}

// WhisperCLI runs a whisper-compatible binary on a temp WAV file and
// reads the transcript from stdout.
type WhisperCLI struct {
	binary string
	model  string
}

func NewWhisperCLI(binary, model string) *WhisperCLI {
	return &WhisperCLI{binary: binary, model: model}
}

func (w *WhisperCLI) Transcribe(ctx context.Context, wav []byte, sampleRate int, languageHint string) (string, error) {
	tmp, err := os.CreateTemp("", "subtext-*.wav")
	if err != nil {
		return "", fmt.Errorf("create temp wav: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(wav); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp wav: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp wav: %w", err)
	}

	args := []string{"--model", w.model, "--output_format", "txt", "--no_timestamps"}
	if lang := MapWhisperLang(languageHint); lang != "" {
		args = append(args, "--language", lang)
	}
	args = append(args, tmp.Name())

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, w.binary, args...)
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("run whisper: %w", err)
	}
	return strings.TrimSpace(out.String()), nil
}

// Disabled is the Transcriber used when no whisper binary is
// configured; the forwarding pipeline drops with a warning.
type Disabled struct{}

func (Disabled) Transcribe(ctx context.Context, wav []byte, sampleRate int, languageHint string) (string, error) {
	return "", ErrDisabled
}

// FromConfig picks the CLI transcriber or the disabled stub.
func FromConfig(binary, model string) Transcriber {
	if binary == "" {
		log.Warn().Str("module", "asr").Msg("whisper binary not set; headset audio will be dropped")
		return Disabled{}
	}
	log.Info().Str("module", "asr").Str("binary", binary).Str("model", model).Msg("whisper transcriber initialized")
	return &WhisperCLI{binary: binary, model: model}
}
