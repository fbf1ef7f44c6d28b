// Package session owns the wake-word loop: Idle until a wake phrase is
// heard, Awake for one command window, back to Idle after one dispatch or a
// timeout. Pause is an orthogonal flag; Stopped is terminal.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "log/slog"

	"harken/internal/dispatch"
	"harken/internal/intent"
	"harken/internal/stt"
)

type State int

const (
	Idle State = iota
	Awake
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Awake:
		return "awake"
	default:
		return "stopped"
	}
}

// Capturer yields one utterance of lowercased text per call.
type Capturer interface {
	Capture(ctx context.Context, timeout time.Duration) (string, error)
}

// Speaker is the serialized speech output.
type Speaker interface {
	Say(text, lang string)
}

// Dispatcher handles one classified intent per cycle.
type Dispatcher interface {
	Dispatch(ctx context.Context, it intent.Intent) dispatch.Response
}

type Options struct {
	WakeWords       []string
	DefaultLanguage string
	IdleTimeout     time.Duration // capture window while waiting for a wake phrase
	AwakeTimeout    time.Duration // capture window for the follow-up command
	Cooldown        time.Duration // backoff after a failed cycle
	// OnWake runs when a wake phrase is detected, before the prompt is
	// spoken. Used for the acknowledgement beep; may be nil.
	OnWake func()
	// Detect guesses the language of a captured command so the response
	// is spoken back in it. Optional; failures keep the default language.
	Detect func(ctx context.Context, text string) (string, error)
}

type Session struct {
	opts       Options
	capture    Capturer
	speaker    Speaker
	classifier *intent.Classifier
	dispatcher Dispatcher

	paused  atomic.Bool
	running atomic.Bool

	// state and lang belong to the loop goroutine alone.
	state State
	lang  string

	done     chan struct{}
	stopOnce sync.Once
}

func New(opts Options, capture Capturer, speaker Speaker, classifier *intent.Classifier, dispatcher Dispatcher) *Session {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = time.Second
	}
	if opts.AwakeTimeout <= 0 {
		opts.AwakeTimeout = 5 * time.Second
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = time.Second
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	s := &Session{
		opts:       opts,
		capture:    capture,
		speaker:    speaker,
		classifier: classifier,
		dispatcher: dispatcher,
		state:      Idle,
		lang:       opts.DefaultLanguage,
		done:       make(chan struct{}),
	}
	s.running.Store(true)
	return s
}

// Run drives the listen/classify/dispatch loop until Stop. It is the only
// goroutine that mutates the session state.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-s.done
		cancel()
	}()

	log.Info("Session loop started", "wake_words", s.opts.WakeWords)

	for s.Running() {
		if s.Paused() {
			s.sleep(s.opts.IdleTimeout)
			continue
		}
		if err := s.step(ctx); err != nil {
			log.Error("Cycle failed", "err", err)
			s.sleep(s.opts.Cooldown)
		}
	}

	s.state = Stopped
	log.Info("Session loop stopped")
}

// step runs one cycle of the state machine and never panics out.
func (s *Session) step(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New("cycle panic")
			log.Error("Recovered from cycle panic", "panic", r)
		}
	}()

	switch s.state {
	case Idle:
		text, cerr := s.capture.Capture(ctx, s.opts.IdleTimeout)
		if cerr != nil {
			return captureError(cerr)
		}
		if intent.ContainsWake(text, s.opts.WakeWords) {
			s.state = Awake
			if s.opts.OnWake != nil {
				s.opts.OnWake()
			}
			s.speaker.Say("Yes, how can I help you?", s.lang)
		}

	case Awake:
		text, cerr := s.capture.Capture(ctx, s.opts.AwakeTimeout)
		if cerr != nil || text == "" {
			// Timed out or heard nothing usable: back to Idle, silently.
			s.reset()
			return captureError(cerr)
		}
		cmd := intent.StripWake(text, s.opts.WakeWords)
		if s.opts.Detect != nil {
			if code, derr := s.opts.Detect(ctx, cmd); derr == nil && code != "" {
				s.lang = code
			}
		}
		it := s.classifier.Classify(cmd)
		log.Info("Command classified", "kind", it.Kind, "text", cmd)

		resp := s.dispatcher.Dispatch(ctx, it)
		if resp.Kind != dispatch.Normal {
			// Control effects (pause flag, shutdown) ran inside the
			// dispatcher; here the kind only marks the acknowledgement.
			log.Info("Control command acknowledged", "kind", resp.Kind)
		}
		s.speaker.Say(resp.Text, s.lang)
		s.reset()
	}
	return nil
}

func (s *Session) reset() {
	s.state = Idle
	s.lang = s.opts.DefaultLanguage
}

// captureError filters the benign capture outcomes; only transport-level
// failures surface, and those get the cycle cooldown.
func captureError(err error) error {
	switch {
	case err == nil,
		errors.Is(err, context.Canceled),
		errors.Is(err, stt.ErrTimeout),
		errors.Is(err, stt.ErrUnrecognized):
		return nil
	default:
		return err
	}
}

// SetPaused toggles the pause flag; callers may be the dispatcher (voice
// command) or the control socket.
func (s *Session) SetPaused(paused bool) {
	s.paused.Store(paused)
	log.Info("Pause flag changed", "paused", paused)
}

func (s *Session) Paused() bool {
	return s.paused.Load()
}

// Running reports liveness; reminders consult this before speaking.
func (s *Session) Running() bool {
	return s.running.Load()
}

// Stop is terminal and idempotent. The loop observes it within one capture
// window because the run context is cancelled alongside the flag.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.running.Store(false)
		close(s.done)
	})
}

// Done is closed when Stop has been requested.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) sleep(d time.Duration) {
	select {
	case <-s.done:
	case <-time.After(d):
	}
}
