// Package notify plays the short acknowledgement tone heard when a wake
// phrase is detected. Best effort: a missing file or audio device only logs.
package notify

import (
	"os"
	"sync"
	"time"

	log "log/slog"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

var initOnce sync.Once

// Beep plays the tone at path and waits for it to finish.
func Beep(path string) {
	f, err := os.Open(path)
	if err != nil {
		log.Warn("Wake tone unavailable", "path", path, "err", err)
		return
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		log.Warn("Failed to decode wake tone", "err", err)
		return
	}
	defer streamer.Close()

	initOnce.Do(func() {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			log.Warn("Failed to init speaker", "err", err)
		}
	})

	done := make(chan bool)
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		done <- true
	})))
	<-done
}
