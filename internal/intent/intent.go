// Package intent turns a normalized utterance into a classified command.
// Rules live in one ordered list; the first match wins, so priority is the
// slice order and nothing else.
package intent

import (
	"regexp"
	"sort"
	"strings"

	"harken/internal/capability"
)

type Kind string

const (
	AIQuery           Kind = "ai_query"
	Weather           Kind = "weather"
	Math              Kind = "math"
	InvalidExpression Kind = "invalid_expression"
	StockPrice        Kind = "stock_price"
	Encyclopedia      Kind = "encyclopedia"
	Translate         Kind = "translate"
	Reminder          Kind = "reminder"
	Pause             Kind = "pause"
	Resume            Kind = "resume"
	Status            Kind = "status"
	OpenApp           Kind = "open_app"
	VolumeUp          Kind = "volume_up"
	VolumeDown        Kind = "volume_down"
	SystemInfo        Kind = "system_info"
	Time              Kind = "time"
	Date              Kind = "date"
	WebSearch         Kind = "web_search"
	Shutdown          Kind = "shutdown"
	Restart           Kind = "restart"
	Lock              Kind = "lock"
	Help              Kind = "help"
	Exit              Kind = "exit"
	NoMatch           Kind = "no_match"
)

// Intent is a classified utterance with extracted parameters.
type Intent struct {
	Kind   Kind
	Params map[string]string
	Query  string
}

// Rule pairs a predicate with a builder. Build is only called after Match
// returned true for the same text.
type Rule struct {
	Name  string
	Match func(text string) bool
	Build func(text string) Intent
}

// Defaults applied when an expected capture is absent.
const (
	DefaultCity   = "London"
	DefaultSymbol = "AAPL"
)

// aiCueWords mark free-form questions that go straight to the AI service
// when it is enabled, ahead of every domain rule.
var aiCueWords = []string{"how", "why", "what", "explain", "tell me", "advice", "help me", "should i"}

var (
	cityRe      = regexp.MustCompile(`(?:weather|temperature|forecast)\s+(?:in |for )?([a-z][a-z ]*)`)
	mathRe      = regexp.MustCompile(`(?:calculate|compute|solve|math)\s+(.+)$`)
	symbolRe    = regexp.MustCompile(`STOCK PRICE (?:OF |FOR )?([A-Z]{1,5})\b`)
	wikiRe      = regexp.MustCompile(`(?:wikipedia|tell me about|what is|who is)\s+(.+)$`)
	translateRe = regexp.MustCompile(`translate (.+?) to ([a-z]+)`)
	reminderRe  = regexp.MustCompile(`remind me (?:to |about )?(.+?) in (\d+) minutes?`)
	searchRe    = regexp.MustCompile(`(?:search for|google|look up)\s+(.+)$`)
)

// mathAllowed is the full character set an expression may use after
// normalization. Anything else is rejected before evaluation.
const mathAllowed = "0123456789+-*/().^ "

type Classifier struct {
	reg   *capability.Registry
	rules []Rule
}

func NewClassifier(reg *capability.Registry) *Classifier {
	c := &Classifier{reg: reg}
	c.rules = c.buildRules()
	return c
}

// Classify evaluates the rules in order against pre-lowercased, pre-trimmed
// text. It consults nothing but the text and the startup registry, so equal
// inputs always produce equal intents.
func (c *Classifier) Classify(text string) Intent {
	text = strings.TrimSpace(text)
	for _, r := range c.rules {
		if r.Match(text) {
			return r.Build(text)
		}
	}
	return Intent{Kind: NoMatch, Query: text}
}

// Rules exposes the ordered rule list, for tests exercising one rule alone.
func (c *Classifier) Rules() []Rule {
	return c.rules
}

func (c *Classifier) buildRules() []Rule {
	return []Rule{
		{
			Name: "ai-query",
			Match: func(t string) bool {
				return c.reg.Enabled(capability.AI) && hasAICue(t)
			},
			Build: func(t string) Intent {
				return Intent{Kind: AIQuery, Query: t}
			},
		},
		{
			Name:  "weather",
			Match: containsAny("weather", "temperature", "forecast"),
			Build: func(t string) Intent {
				city := DefaultCity
				if m := cityRe.FindStringSubmatch(t); m != nil {
					city = strings.TrimSpace(m[1])
				}
				return Intent{Kind: Weather, Params: map[string]string{"city": city}, Query: t}
			},
		},
		{
			Name:  "math",
			Match: containsAny("calculate", "math", "compute", "solve"),
			Build: buildMath,
		},
		{
			Name: "stock-price",
			Match: func(t string) bool {
				return strings.Contains(t, "stock") && strings.Contains(t, "price")
			},
			Build: func(t string) Intent {
				symbol := DefaultSymbol
				if m := symbolRe.FindStringSubmatch(strings.ToUpper(t)); m != nil {
					symbol = m[1]
				}
				return Intent{Kind: StockPrice, Params: map[string]string{"symbol": symbol}, Query: t}
			},
		},
		{
			Name:  "encyclopedia",
			Match: containsAny("wikipedia", "tell me about", "what is", "who is"),
			Build: func(t string) Intent {
				params := map[string]string{}
				if m := wikiRe.FindStringSubmatch(t); m != nil {
					params["topic"] = strings.TrimSpace(m[1])
				}
				return Intent{Kind: Encyclopedia, Params: params, Query: t}
			},
		},
		{
			Name:  "translate",
			Match: containsAny("translate"),
			Build: func(t string) Intent {
				params := map[string]string{}
				if m := translateRe.FindStringSubmatch(t); m != nil {
					params["text"] = m[1]
					params["lang"] = m[2]
				}
				return Intent{Kind: Translate, Params: params, Query: t}
			},
		},
		{
			Name:  "reminder",
			Match: containsAny("remind me", "set reminder"),
			Build: func(t string) Intent {
				params := map[string]string{}
				if m := reminderRe.FindStringSubmatch(t); m != nil {
					params["message"] = m[1]
					params["minutes"] = m[2]
				}
				return Intent{Kind: Reminder, Params: params, Query: t}
			},
		},
		{Name: "pause", Match: containsAny("pause", "stop listening"), Build: plain(Pause)},
		{Name: "resume", Match: containsAny("resume", "start listening"), Build: plain(Resume)},
		{Name: "status", Match: containsAny("status", "how are you"), Build: plain(Status)},
		{
			Name:  "open-app",
			Match: func(t string) bool { return strings.HasPrefix(t, "open ") },
			Build: func(t string) Intent {
				return Intent{Kind: OpenApp, Params: map[string]string{"app": strings.TrimSpace(t[len("open "):])}, Query: t}
			},
		},
		{Name: "volume-up", Match: containsAny("volume up", "increase volume"), Build: plain(VolumeUp)},
		{Name: "volume-down", Match: containsAny("volume down", "decrease volume"), Build: plain(VolumeDown)},
		{Name: "system-info", Match: containsAny("system info", "system status", "performance"), Build: plain(SystemInfo)},
		{Name: "time", Match: containsAny("what time", "current time", "time"), Build: plain(Time)},
		{Name: "date", Match: containsAny("what date", "today's date", "date"), Build: plain(Date)},
		{
			Name:  "web-search",
			Match: containsAny("search for", "google", "look up"),
			Build: func(t string) Intent {
				params := map[string]string{}
				if m := searchRe.FindStringSubmatch(t); m != nil {
					params["term"] = strings.TrimSpace(m[1])
				}
				return Intent{Kind: WebSearch, Params: params, Query: t}
			},
		},
		{Name: "shutdown", Match: containsAny("shutdown", "shut down"), Build: plain(Shutdown)},
		{Name: "restart", Match: containsAny("restart", "reboot"), Build: plain(Restart)},
		{Name: "lock", Match: containsAny("lock"), Build: plain(Lock)},
		{Name: "help", Match: containsAny("help", "what can you do"), Build: plain(Help)},
		{Name: "exit", Match: containsAny("goodbye", "exit", "quit", "stop"), Build: plain(Exit)},
	}
}

func buildMath(t string) Intent {
	expr := ""
	if m := mathRe.FindStringSubmatch(t); m != nil {
		expr = m[1]
	}
	expr = NormalizeExpression(expr)
	if !ValidExpression(expr) {
		return Intent{Kind: InvalidExpression, Query: t}
	}
	return Intent{Kind: Math, Params: map[string]string{"expression": expr}, Query: t}
}

// NormalizeExpression maps spoken operator spellings onto real operators.
func NormalizeExpression(expr string) string {
	r := strings.NewReplacer(
		"x", "*",
		"×", "*",
		"÷", "/",
		"plus", "+",
		"minus", "-",
		"divided by", "/",
		",", "",
	)
	return strings.TrimSpace(r.Replace(expr))
}

// ValidExpression reports whether expr uses only the allowed character set.
// An empty expression is invalid.
func ValidExpression(expr string) bool {
	if expr == "" {
		return false
	}
	for _, c := range expr {
		if !strings.ContainsRune(mathAllowed, c) {
			return false
		}
	}
	return true
}

// hasAICue matches single-word cues on word boundaries so "show" does not
// trip the "how" cue, and phrase cues by substring.
func hasAICue(t string) bool {
	words := strings.Fields(t)
	for _, cue := range aiCueWords {
		if strings.Contains(cue, " ") {
			if strings.Contains(t, cue) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.Trim(w, "?.,!") == cue {
				return true
			}
		}
	}
	return false
}

func containsAny(phrases ...string) func(string) bool {
	return func(t string) bool {
		for _, p := range phrases {
			if strings.Contains(t, p) {
				return true
			}
		}
		return false
	}
}

func plain(k Kind) func(string) Intent {
	return func(t string) Intent { return Intent{Kind: k, Query: t} }
}

// StripWake removes the matched wake phrase from the front of text.
// When several wake words prefix the text the longest one is stripped, so
// "hey harken" never leaves a dangling "harken".
func StripWake(text string, wakeWords []string) string {
	text = strings.TrimSpace(text)
	sorted := append([]string(nil), wakeWords...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, w := range sorted {
		if strings.HasPrefix(text, w) {
			rest := text[len(w):]
			if rest == "" || rest[0] == ' ' || rest[0] == ',' {
				return strings.TrimLeft(rest, " ,")
			}
		}
	}
	return text
}

// ContainsWake reports whether any wake word occurs in text.
func ContainsWake(text string, wakeWords []string) bool {
	for _, w := range wakeWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
