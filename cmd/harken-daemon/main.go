package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	cli "github.com/spf13/pflag"

	"github.com/lmittmann/tint"
	log "log/slog"

	"harken/internal/ai"
	"harken/internal/capability"
	"harken/internal/config"
	"harken/internal/dispatch"
	"harken/internal/history"
	"harken/internal/intent"
	"harken/internal/ipc"
	"harken/internal/lookup"
	"harken/internal/notify"
	"harken/internal/proxy"
	"harken/internal/remind"
	"harken/internal/session"
	"harken/internal/stt"
	"harken/internal/sysctl"
	"harken/internal/tts"
)

var logLevelMap = map[string]log.Level{
	"debug": log.LevelDebug,
	"info":  log.LevelInfo,
	"warn":  log.LevelWarn,
	"error": log.LevelError,
}

// pauseFunc lets the dispatcher flip the session pause flag without a
// construction-order cycle between the two.
type pauseFunc func(bool)

func (f pauseFunc) SetPaused(p bool) { f(p) }

func main() {
	envFile := cli.StringP("env", "e", ".env", "Env file path")
	configPath := cli.StringP("config", "c", "config.json", "Config file path")
	proxyAddr := cli.StringP("proxy", "p", "", "SOCKS proxy address, empty for direct")
	socketPath := cli.StringP("socket", "s", ipc.DefaultSocketPath, "Control socket path")
	historyPath := cli.String("history", "harken.sqlite", "Dispatch history database")
	tonePath := cli.String("tone", "beep.mp3", "Wake acknowledgement tone")
	logLevel := cli.StringP("log", "l", "info", "Log level")
	cli.Parse()

	log.SetDefault(log.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: logLevelMap[*logLevel],
	})))

	log.Info("Booting up")

	godotenv.Load(*envFile)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("Failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	reg := cfg.Capabilities()
	log.Info("Capabilities resolved", "enabled", reg.Summary())

	httpClient, err := proxy.NewClient(*proxyAddr)
	if err != nil {
		log.Error("Failed to dial socks proxy", "proxy", *proxyAddr, "err", err)
		os.Exit(1)
	}

	translate := lookup.NewTranslateClient(httpClient)

	var speakerTranslate tts.Translator
	if reg.Enabled(capability.Translation) {
		speakerTranslate = translate
	}
	speaker := tts.NewSpeaker(speakerTranslate)

	var aiClient dispatch.AIService
	if reg.Enabled(capability.AI) {
		aiClient = ai.New(cfg.OpenAIKey(), httpClient)
	}

	var recorder dispatch.Recorder
	store, err := history.Open(*historyPath)
	if err != nil {
		log.Warn("History disabled", "path", *historyPath, "err", err)
	} else {
		defer store.Close()
		recorder = store
	}

	capturer := stt.NewClient(cfg.System.RecognizerURL, cfg.System.DefaultLanguage)

	var sess *session.Session
	reminders := remind.New(speaker, func() bool {
		return sess != nil && sess.Running()
	})

	dispatcher := dispatch.New(dispatch.Deps{
		Registry:  reg,
		Weather:   lookup.NewWeatherClient(httpClient, cfg.OpenWeatherKey()),
		Stocks:    lookup.NewStockClient(httpClient),
		Wiki:      lookup.NewWikiClient(httpClient),
		Translate: translate,
		AI:        aiClient,
		Actions:   sysctl.NewRunner(),
		Reminders: reminders,
		Pause: pauseFunc(func(p bool) {
			if sess != nil {
				sess.SetPaused(p)
			}
		}),
		History: recorder,
	})

	classifier := intent.NewClassifier(reg)
	opts := session.Options{
		WakeWords:       cfg.System.WakeWords,
		DefaultLanguage: cfg.System.DefaultLanguage,
		IdleTimeout:     time.Second,
		AwakeTimeout:    time.Duration(cfg.System.CaptureTimeoutSec) * time.Second,
		OnWake:          func() { notify.Beep(*tonePath) },
	}
	if reg.Enabled(capability.Translation) {
		opts.Detect = translate.DetectLanguage
	}
	sess = session.New(opts, capturer, speaker, classifier, dispatcher)

	start := time.Now()
	server, err := ipc.StartServer(*socketPath, func(msg ipc.ControlMessage) ipc.ControlReply {
		return handleControl(msg, sess, reg, store, speaker, start)
	})
	if err != nil {
		log.Error("Failed to start control socket", "path", *socketPath, "err", err)
		os.Exit(1)
	}
	defer server.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal", "signal", sig)
		sess.Stop()
	}()

	log.Info("Boot up - successful")
	speaker.Say(fmt.Sprintf("Hello! I'm listening in the background. Say %s to wake me up.",
		cfg.System.WakeWords[0]), cfg.System.DefaultLanguage)

	sess.Run(context.Background())
	log.Info("Shutting down")
}

func handleControl(msg ipc.ControlMessage, sess *session.Session, reg *capability.Registry,
	store *history.Store, speaker *tts.Speaker, start time.Time) ipc.ControlReply {

	switch msg.Cmd {
	case "pause":
		sess.SetPaused(true)
		return ipc.ControlReply{OK: true, Text: "paused"}

	case "resume":
		sess.SetPaused(false)
		return ipc.ControlReply{OK: true, Text: "resumed"}

	case "status":
		state := "active"
		if sess.Paused() {
			state = "paused"
		}
		return ipc.ControlReply{OK: true, Text: fmt.Sprintf(
			"%s | services: %s | uptime: %s",
			state, reg.Summary(), time.Since(start).Round(time.Second))}

	case "history":
		if store == nil {
			return ipc.ControlReply{OK: false, Text: "history disabled"}
		}
		entries, err := store.Recent(5)
		if err != nil {
			return ipc.ControlReply{OK: false, Text: err.Error()}
		}
		var b strings.Builder
		for _, e := range entries {
			fmt.Fprintf(&b, "%s  %-12s %s\n", e.At.Format("15:04:05"), e.Kind, e.Utterance)
		}
		if b.Len() == 0 {
			return ipc.ControlReply{OK: true, Text: "no history yet"}
		}
		return ipc.ControlReply{OK: true, Text: strings.TrimRight(b.String(), "\n")}

	case "say":
		speaker.Say(msg.Arg, "en")
		return ipc.ControlReply{OK: true, Text: "spoken"}

	case "exit":
		sess.Stop()
		return ipc.ControlReply{OK: true, Text: "stopping"}

	default:
		log.Warn("Unknown command", "cmd", msg.Cmd)
		return ipc.ControlReply{OK: false, Text: "unknown command " + msg.Cmd}
	}
}
