// Package remind fires one-shot spoken reminders independently of the main
// listening loop.
package remind

import (
	"fmt"
	"time"

	log "log/slog"

	"github.com/google/uuid"
)

// Speaker is the shared speech output; the tts package serializes playback.
type Speaker interface {
	Say(text, lang string)
}

// Scheduler defers reminder speech. Each reminder runs on its own timer and
// never blocks, or is blocked by, the session loop.
type Scheduler struct {
	speaker Speaker
	alive   func() bool
}

// New builds a scheduler. alive is consulted at fire time: a reminder whose
// session has already stopped is dropped silently.
func New(speaker Speaker, alive func() bool) *Scheduler {
	return &Scheduler{speaker: speaker, alive: alive}
}

// Schedule returns a confirmation immediately; the reminder itself fires
// after delay, exactly once.
func (s *Scheduler) Schedule(message string, delay time.Duration) string {
	id := uuid.NewString()
	log.Info("Reminder scheduled", "id", id, "delay", delay)

	time.AfterFunc(delay, func() {
		if !s.alive() {
			log.Info("Reminder dropped, session stopped", "id", id)
			return
		}
		log.Info("Reminder fired", "id", id)
		s.speaker.Say("Reminder: "+message, "en")
	})

	return fmt.Sprintf("Reminder set for %s: %s", formatDelay(delay), message)
}

func formatDelay(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%d seconds", int(d.Seconds()))
	}
	mins := int(d.Minutes())
	if mins == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", mins)
}
