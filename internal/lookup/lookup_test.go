package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestWeatherCurrent(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"main": {"temp": 18.4, "humidity": 72},
		"weather": [{"description": "light rain"}]
	}`)
	defer srv.Close()

	w := NewWeatherClient(srv.Client(), "key")
	w.base = srv.URL

	got, err := w.Current(context.Background(), "London")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	want := "Weather in London: light rain, 18 degrees, humidity 72%"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWeatherUnknownCity(t *testing.T) {
	srv := jsonServer(t, 404, `{"cod":"404"}`)
	defer srv.Close()

	w := NewWeatherClient(srv.Client(), "key")
	w.base = srv.URL

	got, err := w.Current(context.Background(), "Atlantis")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !strings.Contains(got, "Atlantis") {
		t.Errorf("got %q, want message naming the city", got)
	}
}

func TestWeatherMalformed(t *testing.T) {
	srv := jsonServer(t, 200, `{"unexpected": true}`)
	defer srv.Close()

	w := NewWeatherClient(srv.Client(), "key")
	w.base = srv.URL

	if _, err := w.Current(context.Background(), "London"); err == nil {
		t.Error("malformed response must error")
	}
}

func TestStockQuote(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"quoteResponse": {"result": [
			{"shortName": "Apple Inc.", "regularMarketPrice": 189.71}
		]}
	}`)
	defer srv.Close()

	s := NewStockClient(srv.Client())
	s.base = srv.URL

	got, err := s.Quote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if got != "Apple Inc. stock price is $189.71" {
		t.Errorf("got %q", got)
	}
}

func TestStockUnknownSymbol(t *testing.T) {
	srv := jsonServer(t, 200, `{"quoteResponse": {"result": []}}`)
	defer srv.Close()

	s := NewStockClient(srv.Client())
	s.base = srv.URL

	got, err := s.Quote(context.Background(), "ZZZZZ")
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if !strings.Contains(got, "ZZZZZ") {
		t.Errorf("got %q, want message naming the symbol", got)
	}
}

func TestWikiSummary(t *testing.T) {
	srv := jsonServer(t, 200, `{
		"type": "standard",
		"extract": "Alan Turing was an English mathematician. He is widely considered to be the father of computer science. He was born in London."
	}`)
	defer srv.Close()

	w := NewWikiClient(srv.Client())
	w.base = srv.URL

	got, err := w.Summary(context.Background(), "alan turing")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.HasPrefix(got, "According to Wikipedia: ") {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "born in London") {
		t.Errorf("summary not trimmed to two sentences: %q", got)
	}
}

func TestWikiDisambiguation(t *testing.T) {
	srv := jsonServer(t, 200, `{"type": "disambiguation", "extract": "may refer to"}`)
	defer srv.Close()

	w := NewWikiClient(srv.Client())
	w.base = srv.URL

	got, err := w.Summary(context.Background(), "mercury")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(got, "more specific") {
		t.Errorf("got %q", got)
	}
}

func TestWikiNotFound(t *testing.T) {
	srv := jsonServer(t, 404, `{"type":"not_found"}`)
	defer srv.Close()

	w := NewWikiClient(srv.Client())
	w.base = srv.URL

	got, err := w.Summary(context.Background(), "qwzx")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if !strings.Contains(got, "No encyclopedia page found") {
		t.Errorf("got %q", got)
	}
}

func TestTranslate(t *testing.T) {
	srv := jsonServer(t, 200, `{"translatedText": "buenos días"}`)
	defer srv.Close()

	tr := NewTranslateClient(srv.Client())
	tr.base = srv.URL

	got, err := tr.Translate(context.Background(), "good morning", "spanish")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "buenos días" {
		t.Errorf("got %q", got)
	}

	if _, err := tr.Translate(context.Background(), "hi", "klingon"); err == nil {
		t.Error("unknown language must error")
	}
}

func TestDetectLanguage(t *testing.T) {
	srv := jsonServer(t, 200, `[{"language": "fr", "confidence": 92}]`)
	defer srv.Close()

	tr := NewTranslateClient(srv.Client())
	tr.base = srv.URL

	got, err := tr.DetectLanguage(context.Background(), "bonjour")
	if err != nil {
		t.Fatalf("DetectLanguage: %v", err)
	}
	if got != "fr" {
		t.Errorf("got %q, want fr", got)
	}
}

func TestLanguageCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"spanish", "es"},
		{"Spanish", "es"},
		{"fr", "fr"},
		{"klingon", ""},
	}
	for _, tt := range tests {
		if got := LanguageCode(tt.in); got != tt.want {
			t.Errorf("LanguageCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
