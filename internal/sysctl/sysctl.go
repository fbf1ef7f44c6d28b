// Package sysctl runs the local side effects behind system intents:
// launching applications, volume, power actions and web searches. Every
// action is fire-and-forget; failures surface as errors for the dispatcher.
package sysctl

import (
	"fmt"
	"net/url"
	"os/exec"

	log "log/slog"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"harken/internal/dispatch"
)

// appCommands maps spoken application names onto launch commands.
var appCommands = map[string][]string{
	"browser":       {"xdg-open", "https://duckduckgo.com"},
	"firefox":       {"firefox"},
	"chrome":        {"google-chrome"},
	"files":         {"xdg-open", "."},
	"file explorer": {"xdg-open", "."},
	"terminal":      {"x-terminal-emulator"},
	"editor":        {"gedit"},
	"notepad":       {"gedit"},
	"calculator":    {"gnome-calculator"},
	"code":          {"code"},
	"vscode":        {"code"},
	"music":         {"rhythmbox"},
	"settings":      {"gnome-control-center"},
}

var actionCommands = map[string][]string{
	"volume_up":   {"pactl", "set-sink-volume", "@DEFAULT_SINK@", "+5%"},
	"volume_down": {"pactl", "set-sink-volume", "@DEFAULT_SINK@", "-5%"},
	"shutdown":    {"sh", "-c", "sleep 10 && systemctl poweroff"},
	"restart":     {"sh", "-c", "sleep 10 && systemctl reboot"},
	"lock":        {"loginctl", "lock-session"},
}

const searchURL = "https://www.google.com/search?q="

type Runner struct {
	// start launches a command without waiting; swapped out in tests.
	start func(name string, args ...string) error
}

func NewRunner() *Runner {
	return &Runner{start: startCommand}
}

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Run executes one named action. arg carries the application name for
// "open" and the query for "web_search".
func (r *Runner) Run(kind, arg string) error {
	switch kind {
	case "open":
		cmd, ok := appCommands[arg]
		if !ok {
			return fmt.Errorf("unknown application %q", arg)
		}
		log.Info("Opening application", "app", arg)
		return r.start(cmd[0], cmd[1:]...)

	case "web_search":
		log.Info("Opening web search", "term", arg)
		return r.start("xdg-open", searchURL+url.QueryEscape(arg))

	default:
		cmd, ok := actionCommands[kind]
		if !ok {
			return fmt.Errorf("unknown action %q", kind)
		}
		log.Info("Running system action", "action", kind)
		return r.start(cmd[0], cmd[1:]...)
	}
}

// Info probes CPU, memory and disk usage for status responses.
func (r *Runner) Info() (dispatch.SystemInfo, error) {
	var info dispatch.SystemInfo

	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return info, fmt.Errorf("cpu usage: %w", err)
	}
	info.CPUPercent = percents[0]

	vm, err := mem.VirtualMemory()
	if err != nil {
		return info, fmt.Errorf("memory usage: %w", err)
	}
	info.MemoryPercent = vm.UsedPercent
	info.AvailableGB = float64(vm.Available) / (1 << 30)

	du, err := disk.Usage("/")
	if err != nil {
		return info, fmt.Errorf("disk usage: %w", err)
	}
	info.DiskPercent = du.UsedPercent

	return info, nil
}
