// Package dispatch routes classified intents to adapter calls and turns
// their results into spoken responses. Every dispatch produces exactly one
// response and at most one external side effect; adapter failures become
// apologies, never faults.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "log/slog"

	"harken/internal/capability"
	"harken/internal/intent"
	"harken/pkg/mathexpr"
)

// ResponseKind lets the session react to control responses without
// sniffing substrings, which would misfire on AI-generated text.
type ResponseKind int

const (
	Normal ResponseKind = iota
	PauseAck
	ResumeAck
	ExitAck
)

func (k ResponseKind) String() string {
	switch k {
	case PauseAck:
		return "pause"
	case ResumeAck:
		return "resume"
	case ExitAck:
		return "exit"
	default:
		return "normal"
	}
}

type Response struct {
	Text string
	Kind ResponseKind
}

// Adapter contracts. Implementations live in internal/lookup, internal/ai,
// internal/sysctl and internal/remind; tests substitute fakes.
type (
	WeatherService interface {
		Current(ctx context.Context, city string) (string, error)
	}
	StockService interface {
		Quote(ctx context.Context, symbol string) (string, error)
	}
	WikiService interface {
		Summary(ctx context.Context, topic string) (string, error)
	}
	Translator interface {
		Translate(ctx context.Context, text, lang string) (string, error)
	}
	AIService interface {
		Ask(ctx context.Context, query string) (string, error)
	}
	ActionRunner interface {
		Run(kind, arg string) error
		Info() (SystemInfo, error)
	}
	ReminderService interface {
		Schedule(message string, delay time.Duration) string
	}
	PauseControl interface {
		SetPaused(paused bool)
	}
	Recorder interface {
		Record(utterance, kind, response string) error
	}
)

// SystemInfo mirrors what the status and system-info intents report.
type SystemInfo struct {
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   float64
	AvailableGB   float64
}

const fallbackResponse = "I didn't understand that command. Say 'help' to hear what I can do."

type Dispatcher struct {
	reg       *capability.Registry
	weather   WeatherService
	stocks    StockService
	wiki      WikiService
	translate Translator
	ai        AIService
	actions   ActionRunner
	reminders ReminderService
	pause     PauseControl
	history   Recorder

	now func() time.Time
}

type Deps struct {
	Registry  *capability.Registry
	Weather   WeatherService
	Stocks    StockService
	Wiki      WikiService
	Translate Translator
	AI        AIService
	Actions   ActionRunner
	Reminders ReminderService
	Pause     PauseControl
	History   Recorder
}

func New(d Deps) *Dispatcher {
	return &Dispatcher{
		reg:       d.Registry,
		weather:   d.Weather,
		stocks:    d.Stocks,
		wiki:      d.Wiki,
		translate: d.Translate,
		ai:        d.AI,
		actions:   d.Actions,
		reminders: d.Reminders,
		pause:     d.Pause,
		history:   d.History,
		now:       time.Now,
	}
}

// Dispatch handles one intent and always returns a speakable response.
func (d *Dispatcher) Dispatch(ctx context.Context, it intent.Intent) Response {
	resp := d.dispatch(ctx, it)
	if d.history != nil {
		if err := d.history.Record(it.Query, string(it.Kind), resp.Text); err != nil {
			log.Warn("Failed to record dispatch", "err", err)
		}
	}
	return resp
}

func (d *Dispatcher) dispatch(ctx context.Context, it intent.Intent) Response {
	switch it.Kind {
	case intent.AIQuery:
		return d.askAI(ctx, it.Query, fallbackResponse)

	case intent.Weather:
		if !d.reg.Enabled(capability.Weather) {
			return say(unavailable("weather"))
		}
		text, err := d.weather.Current(ctx, it.Params["city"])
		if err != nil {
			log.Error("Weather lookup failed", "city", it.Params["city"], "err", err)
			return say(apology("weather"))
		}
		return say(text)

	case intent.Math:
		return say(evalMath(it.Params["expression"]))

	case intent.InvalidExpression:
		return say("Invalid mathematical expression")

	case intent.StockPrice:
		if !d.reg.Enabled(capability.Stocks) {
			return say(unavailable("stock"))
		}
		text, err := d.stocks.Quote(ctx, it.Params["symbol"])
		if err != nil {
			log.Error("Stock lookup failed", "symbol", it.Params["symbol"], "err", err)
			return say(apology("stock"))
		}
		return say(text)

	case intent.Encyclopedia:
		topic := it.Params["topic"]
		if topic == "" {
			return say("What would you like me to look up?")
		}
		if !d.reg.Enabled(capability.Wikipedia) {
			return say(unavailable("encyclopedia"))
		}
		text, err := d.wiki.Summary(ctx, topic)
		if err != nil {
			log.Error("Encyclopedia lookup failed", "topic", topic, "err", err)
			return say(apology("encyclopedia"))
		}
		return say(text)

	case intent.Translate:
		text, lang := it.Params["text"], it.Params["lang"]
		if text == "" || lang == "" {
			return say("Please say: translate some text to a language")
		}
		if !d.reg.Enabled(capability.Translation) {
			return say(unavailable("translation"))
		}
		out, err := d.translate.Translate(ctx, text, lang)
		if err != nil {
			log.Error("Translation failed", "lang", lang, "err", err)
			return say(apology("translation"))
		}
		return say("Translation: " + out)

	case intent.Reminder:
		msg, mins := it.Params["message"], it.Params["minutes"]
		if msg == "" || mins == "" {
			return say("Please say: remind me about something in a number of minutes")
		}
		n, err := strconv.Atoi(mins)
		if err != nil || n <= 0 {
			return say("I couldn't work out when to remind you")
		}
		return say(d.reminders.Schedule(msg, time.Duration(n)*time.Minute))

	case intent.Pause:
		d.pause.SetPaused(true)
		return Response{Text: "I'm paused. Say resume, or use the control client", Kind: PauseAck}

	case intent.Resume:
		d.pause.SetPaused(false)
		return Response{Text: "I'm now listening again!", Kind: ResumeAck}

	case intent.Status:
		return say(d.statusText())

	case intent.OpenApp:
		app := it.Params["app"]
		if err := d.actions.Run("open", app); err != nil {
			log.Error("Open application failed", "app", app, "err", err)
			return say(fmt.Sprintf("Sorry, I couldn't open %s", app))
		}
		return say("Opening " + app)

	case intent.VolumeUp:
		if err := d.actions.Run("volume_up", ""); err != nil {
			return say("Volume control not available")
		}
		return say("Volume increased")

	case intent.VolumeDown:
		if err := d.actions.Run("volume_down", ""); err != nil {
			return say("Volume control not available")
		}
		return say("Volume decreased")

	case intent.SystemInfo:
		info, err := d.actions.Info()
		if err != nil {
			log.Error("System info probe failed", "err", err)
			return say(apology("system information"))
		}
		return say(fmt.Sprintf("System status: CPU %.1f%%, Memory %.1f%%, Disk %.1f%%",
			info.CPUPercent, info.MemoryPercent, info.DiskPercent))

	case intent.Time:
		return say("The current time is " + d.now().Format("3:04 PM"))

	case intent.Date:
		return say("Today's date is " + d.now().Format("January 2, 2006"))

	case intent.WebSearch:
		term := it.Params["term"]
		if term == "" {
			return say("What would you like me to search for?")
		}
		if err := d.actions.Run("web_search", term); err != nil {
			log.Error("Web search failed", "term", term, "err", err)
			return say(apology("web search"))
		}
		return say("Searching for " + term)

	case intent.Shutdown:
		if err := d.actions.Run("shutdown", ""); err != nil {
			return say(apology("shutdown"))
		}
		return say("Shutting down the computer in 10 seconds")

	case intent.Restart:
		if err := d.actions.Run("restart", ""); err != nil {
			return say(apology("restart"))
		}
		return say("Restarting the computer in 10 seconds")

	case intent.Lock:
		if err := d.actions.Run("lock", ""); err != nil {
			return say(apology("lock"))
		}
		return say("Locking the computer")

	case intent.Help:
		return say(d.helpText())

	case intent.Exit:
		return Response{
			Text: "Goodbye! I'll keep listening in the background",
			Kind: ExitAck,
		}

	default: // intent.NoMatch
		return d.askAI(ctx, it.Query, fallbackResponse)
	}
}

// askAI routes an utterance to the AI service and falls back to the given
// text when the capability is off, the call fails, or the answer is empty.
func (d *Dispatcher) askAI(ctx context.Context, query, fallback string) Response {
	if d.ai == nil || !d.reg.Enabled(capability.AI) {
		return say(fallback)
	}
	answer, err := d.ai.Ask(ctx, query)
	if err != nil {
		log.Error("AI request failed", "err", err)
		return say(fallback)
	}
	if strings.TrimSpace(answer) == "" {
		return say(fallback)
	}
	return say(answer)
}

func (d *Dispatcher) statusText() string {
	text := fmt.Sprintf("I'm running in background mode with %d services enabled", d.reg.Count())
	if info, err := d.actions.Info(); err == nil {
		text += fmt.Sprintf(". CPU usage: %.1f%%", info.CPUPercent)
	}
	return text
}

func (d *Dispatcher) helpText() string {
	features := []string{}
	if d.reg.Enabled(capability.Weather) {
		features = append(features, "weather lookups")
	}
	if d.reg.Enabled(capability.Stocks) {
		features = append(features, "stock prices")
	}
	if d.reg.Enabled(capability.Wikipedia) {
		features = append(features, "encyclopedia searches")
	}
	if d.reg.Enabled(capability.Translation) {
		features = append(features, "translations")
	}
	if d.reg.Enabled(capability.AI) {
		features = append(features, "AI-powered answers")
	}
	extra := "basic system controls"
	if len(features) > 0 {
		extra = strings.Join(features, ", ")
	}
	return "I can open applications, control volume, report system status, " +
		"tell the time and date, search the web, do arithmetic and set reminders. " +
		"Also available: " + extra + ". Say pause, resume or status to control me."
}

func evalMath(expr string) string {
	v, err := mathexpr.Eval(expr)
	switch {
	case errors.Is(err, mathexpr.ErrDivideByZero):
		return "Cannot divide by zero"
	case errors.Is(err, mathexpr.ErrOutOfRange):
		return "That result is too large for me"
	case err != nil:
		return "Invalid mathematical expression"
	}
	return "The result is " + strconv.FormatFloat(v, 'f', -1, 64)
}

func say(text string) Response {
	return Response{Text: text, Kind: Normal}
}

func apology(name string) string {
	return fmt.Sprintf("Sorry, the %s service had a problem. Try again in a moment", name)
}

func unavailable(name string) string {
	return fmt.Sprintf("Sorry, the %s service is not available", name)
}
