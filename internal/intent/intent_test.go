package intent

import (
	"testing"

	"harken/internal/capability"
)

func allEnabled() *capability.Registry {
	return capability.New(map[string]capability.Status{
		capability.Weather:     capability.Enabled,
		capability.Stocks:      capability.Enabled,
		capability.Wikipedia:   capability.Enabled,
		capability.Translation: capability.Enabled,
		capability.AI:          capability.Enabled,
	})
}

func noAI() *capability.Registry {
	return capability.New(map[string]capability.Status{
		capability.Weather: capability.Enabled,
		capability.Stocks:  capability.Enabled,
		capability.AI:      capability.NotConfigured,
	})
}

func TestClassify(t *testing.T) {
	c := NewClassifier(noAI())

	tests := []struct {
		name       string
		text       string
		wantKind   Kind
		wantParams map[string]string
	}{
		{"weather-city", "weather in paris", Weather, map[string]string{"city": "paris"}},
		{"weather-for", "weather for new york", Weather, map[string]string{"city": "new york"}},
		{"weather-default", "weather", Weather, map[string]string{"city": "London"}},
		{"forecast", "forecast for oslo", Weather, map[string]string{"city": "oslo"}},

		{"math-basic", "calculate 2 + 2", Math, map[string]string{"expression": "2 + 2"}},
		{"math-spoken", "calculate 6 x 7", Math, map[string]string{"expression": "6 * 7"}},
		{"math-div-zero", "calculate 1/0", Math, map[string]string{"expression": "1/0"}},
		{"math-solve", "solve (3 + 4) * 2", Math, map[string]string{"expression": "(3 + 4) * 2"}},

		{"stock-symbol", "stock price of msft", StockPrice, map[string]string{"symbol": "MSFT"}},
		{"stock-default", "stock price", StockPrice, map[string]string{"symbol": "AAPL"}},

		{"wiki", "tell me about alan turing", Encyclopedia, map[string]string{"topic": "alan turing"}},
		{"wiki-what-is", "what is entropy", Encyclopedia, map[string]string{"topic": "entropy"}},

		{"translate", "translate good morning to spanish", Translate, map[string]string{"text": "good morning", "lang": "spanish"}},
		{"translate-incomplete", "translate this", Translate, map[string]string{}},

		{"reminder", "remind me to stretch in 15 minutes", Reminder, map[string]string{"message": "stretch", "minutes": "15"}},
		{"reminder-about", "remind me about the meeting in 5 minutes", Reminder, map[string]string{"message": "the meeting", "minutes": "5"}},
		{"reminder-incomplete", "remind me to stretch", Reminder, map[string]string{}},

		{"open", "open notepad", OpenApp, map[string]string{"app": "notepad"}},
		{"search", "search for go concurrency patterns", WebSearch, map[string]string{"term": "go concurrency patterns"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Kind != tt.wantKind {
				t.Fatalf("kind: got %q, want %q", got.Kind, tt.wantKind)
			}
			for k, want := range tt.wantParams {
				if got.Params[k] != want {
					t.Errorf("param %q: got %q, want %q", k, got.Params[k], want)
				}
			}
		})
	}
}

func TestClassifyPlainKinds(t *testing.T) {
	c := NewClassifier(noAI())

	tests := []struct {
		text string
		want Kind
	}{
		{"pause", Pause},
		{"stop listening", Pause},
		{"resume", Resume},
		{"start listening", Resume},
		{"status", Status},
		{"volume up", VolumeUp},
		{"increase volume", VolumeUp},
		{"volume down", VolumeDown},
		{"system info", SystemInfo},
		{"performance", SystemInfo},
		{"current time", Time},
		{"today's date", Date},
		{"shutdown", Shutdown},
		{"reboot", Restart},
		{"lock", Lock},
		{"goodbye", Exit},
		{"quit", Exit},
		{"stop", Exit},
		{"blargh flarp", NoMatch},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := c.Classify(tt.text); got.Kind != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.text, got.Kind, tt.want)
			}
		})
	}
}

// The AI cue rule sits ahead of every domain rule, so a cue word wins even
// when a domain keyword is present — but only while the capability is on.
func TestAICuePriority(t *testing.T) {
	withAI := NewClassifier(allEnabled())
	withoutAI := NewClassifier(noAI())

	cued := []string{
		"what is the weather in paris",
		"explain how stocks price in",
		"how are you",
		"should i open notepad",
	}
	for _, text := range cued {
		if got := withAI.Classify(text); got.Kind != AIQuery {
			t.Errorf("with ai: Classify(%q) = %q, want %q", text, got.Kind, AIQuery)
		}
		if got := withoutAI.Classify(text); got.Kind == AIQuery {
			t.Errorf("without ai: Classify(%q) must not reach the ai rule", text)
		}
	}

	// No cue word: domain rules win even with AI enabled.
	if got := withAI.Classify("weather in paris"); got.Kind != Weather {
		t.Errorf("uncued weather query classified as %q", got.Kind)
	}
	// "show" must not trip the "how" cue.
	if got := withAI.Classify("show status"); got.Kind != Status {
		t.Errorf("Classify(\"show status\") = %q, want %q", got.Kind, Status)
	}
}

func TestMathCharacterSet(t *testing.T) {
	c := NewClassifier(noAI())

	for _, text := range []string{
		"calculate import os",
		"calculate 2 + foo",
		"calculate rm -rf",
		"calculate",
	} {
		if got := c.Classify(text); got.Kind != InvalidExpression {
			t.Errorf("Classify(%q) = %q, want %q", text, got.Kind, InvalidExpression)
		}
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := NewClassifier(allEnabled())
	inputs := []string{"weather in rome", "calculate 2 + 2", "what is love", "open chrome", "blargh"}

	for _, text := range inputs {
		first := c.Classify(text)
		for i := 0; i < 3; i++ {
			again := c.Classify(text)
			if again.Kind != first.Kind {
				t.Fatalf("Classify(%q) unstable: %q then %q", text, first.Kind, again.Kind)
			}
			for k, v := range first.Params {
				if again.Params[k] != v {
					t.Fatalf("Classify(%q) param %q unstable", text, k)
				}
			}
		}
	}
}

func TestStripWake(t *testing.T) {
	wake := []string{"hey harken", "harken", "okay harken", "listen up"}

	tests := []struct {
		in   string
		want string
	}{
		{"hey harken what time is it", "what time is it"},
		{"harken weather in paris", "weather in paris"},
		{"hey harken", ""},
		{"harken, open notepad", "open notepad"},
		{"no wake phrase here", "no wake phrase here"},
		{"harkenstein is a name", "harkenstein is a name"}, // prefix must end at a word boundary
	}

	for _, tt := range tests {
		if got := StripWake(tt.in, wake); got != tt.want {
			t.Errorf("StripWake(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// Stripping a wake phrase then classifying matches classifying the bare
// command directly, for every wake phrase.
func TestStripWakeClassifyEquivalence(t *testing.T) {
	wake := []string{"hey harken", "harken"}
	c := NewClassifier(allEnabled())

	commands := []string{"weather in tokyo", "calculate 2 + 2", "open notepad", "status"}
	for _, w := range wake {
		for _, cmd := range commands {
			direct := c.Classify(cmd)
			stripped := c.Classify(StripWake(w+" "+cmd, wake))
			if stripped.Kind != direct.Kind {
				t.Errorf("%q + %q: got %q, want %q", w, cmd, stripped.Kind, direct.Kind)
			}
		}
	}
}

func TestContainsWake(t *testing.T) {
	wake := []string{"hey harken", "harken"}
	if !ContainsWake("um hey harken hello", wake) {
		t.Error("wake phrase mid-sentence not detected")
	}
	if ContainsWake("nothing to see", wake) {
		t.Error("false wake detection")
	}
}
