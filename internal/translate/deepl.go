// Package translate maps app-level language codes onto the DeepL
// vocabulary and wraps the DeepL REST API behind the Translator
// collaborator interface.
package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const DefaultAPIURL = "https://api-free.deepl.com/v2/translate"

var ErrDisabled = errors.New("translator disabled")

// Translator converts text between app-level language codes.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// APIError reports a non-2xx response from DeepL.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("deepl api error %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Client calls the DeepL translate endpoint.
type Client struct {
	apiURL     string
	authKey    string
	httpClient *http.Client
}

func NewClient(apiURL, authKey string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		apiURL:  apiURL,
		authKey: authKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Translate maps both codes to DeepL's vocabulary and performs one
// translation call. An empty mapped source lets DeepL auto-detect.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	form := url.Values{}
	form.Set("text", text)
	form.Set("target_lang", MapTargetLang(targetLang))
	if src := MapSourceLang(sourceLang); src != "" {
		form.Set("source_lang", src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "DeepL-Auth-Key "+c.authKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: body}
	}

	var parsed struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Translations) == 0 {
		return "", errors.New("empty translation result")
	}
	return parsed.Translations[0].Text, nil
}

// Disabled is the Translator used when no API key is configured. Every
// call fails with ErrDisabled, which the router degrades to the
// untranslated-marker fallback.
type Disabled struct{}

func (Disabled) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	return "", ErrDisabled
}

// FromConfig picks the real client or the disabled stub.
func FromConfig(apiURL, authKey string) Translator {
	if authKey == "" {
		log.Warn().Str("module", "translate").Msg("DEEPL auth key not set; messages will not be auto-translated")
		return Disabled{}
	}
	log.Info().Str("module", "translate").Msg("DeepL translator initialized")
	return NewClient(apiURL, authKey)
}
