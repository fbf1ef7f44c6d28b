package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const defaultTranslateBase = "https://libretranslate.com"

// languageCodes maps spoken language names onto service codes; already-coded
// input ("es") passes through.
var languageCodes = map[string]string{
	"english":    "en",
	"spanish":    "es",
	"french":     "fr",
	"german":     "de",
	"italian":    "it",
	"portuguese": "pt",
	"russian":    "ru",
	"japanese":   "ja",
	"chinese":    "zh",
	"korean":     "ko",
	"arabic":     "ar",
	"hindi":      "hi",
	"dutch":      "nl",
	"polish":     "pl",
	"turkish":    "tr",
}

type TranslateClient struct {
	http *http.Client
	base string
}

func NewTranslateClient(client *http.Client) *TranslateClient {
	return &TranslateClient{http: client, base: defaultTranslateBase}
}

// Translate renders text into the target language, which may be a spoken
// name or a two-letter code.
func (t *TranslateClient) Translate(ctx context.Context, text, lang string) (string, error) {
	code := LanguageCode(lang)
	if code == "" {
		return "", fmt.Errorf("translate: unknown language %q", lang)
	}

	payload, _ := json.Marshal(map[string]string{
		"q":      text,
		"source": "auto",
		"target": code,
	})
	body, err := t.post(ctx, t.base+"/translate", payload)
	if err != nil {
		return "", fmt.Errorf("translate to %s: %w", code, err)
	}

	out := gjson.GetBytes(body, "translatedText").String()
	if out == "" {
		return "", fmt.Errorf("translate to %s: empty result", code)
	}
	return out, nil
}

// DetectLanguage guesses the language code of text.
func (t *TranslateClient) DetectLanguage(ctx context.Context, text string) (string, error) {
	payload, _ := json.Marshal(map[string]string{"q": text})
	body, err := t.post(ctx, t.base+"/detect", payload)
	if err != nil {
		return "", fmt.Errorf("detect language: %w", err)
	}

	code := gjson.GetBytes(body, "0.language").String()
	if code == "" {
		return "", fmt.Errorf("detect language: empty result")
	}
	return code, nil
}

func (t *TranslateClient) post(ctx context.Context, url string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return buf.Bytes(), nil
}

// LanguageCode resolves a spoken language name to a service code, or ""
// when the language is unknown.
func LanguageCode(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if code, ok := languageCodes[lang]; ok {
		return code
	}
	if len(lang) == 2 {
		return lang
	}
	return ""
}
