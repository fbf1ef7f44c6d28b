// Package tts is the speech output adapter. Playback is a single shared
// resource: a mutex serializes the main loop and reminder goroutines so
// speech never overlaps. Synthesis failures fall back to printing.
package tts

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "log/slog"
)

// Translator localizes a response before synthesis. Optional.
type Translator interface {
	Translate(ctx context.Context, text, lang string) (string, error)
}

type Speaker struct {
	mu         sync.Mutex
	translator Translator
	synth      func(text, lang string) error
}

func NewSpeaker(translator Translator) *Speaker {
	return &Speaker{
		translator: translator,
		synth:      synthesize,
	}
}

// Say speaks text in lang, best effort. Non-English output is translated
// first when a translator is wired; translation failure keeps the English
// text rather than dropping the response.
func (s *Speaker) Say(text, lang string) {
	if text == "" {
		return
	}

	if lang != "" && lang != "en" && s.translator != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		translated, err := s.translator.Translate(ctx, text, lang)
		cancel()
		if err != nil {
			log.Warn("Response translation failed", "lang", lang, "err", err)
		} else {
			text = translated
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fmt.Printf("assistant: %s\n", text)
	if err := s.synth(text, lang); err != nil {
		log.Error("Speech synthesis failed, text-only response", "err", err)
	}
}
