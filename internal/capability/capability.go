// Package capability tracks which optional services are usable.
// The registry is computed once at startup and read-only afterwards.
package capability

import (
	"fmt"
	"sort"
	"strings"
)

type Status string

const (
	Enabled       Status = "enabled"
	Disabled      Status = "disabled"
	NotConfigured Status = "not_configured"
)

// Canonical capability names.
const (
	Weather     = "weather"
	Stocks      = "stocks"
	Wikipedia   = "wikipedia"
	Translation = "translation"
	AI          = "ai"
)

type Registry struct {
	status map[string]Status
}

// New builds a registry from explicit capability states. Unknown names are
// allowed so features can be added without touching this package.
func New(status map[string]Status) *Registry {
	m := make(map[string]Status, len(status))
	for k, v := range status {
		m[k] = v
	}
	return &Registry{status: m}
}

func (r *Registry) Enabled(name string) bool {
	return r.status[name] == Enabled
}

// Status reports the state of a capability; unknown names are NotConfigured.
func (r *Registry) Status(name string) Status {
	if s, ok := r.status[name]; ok {
		return s
	}
	return NotConfigured
}

// Count returns the number of enabled capabilities.
func (r *Registry) Count() int {
	n := 0
	for _, s := range r.status {
		if s == Enabled {
			n++
		}
	}
	return n
}

// Summary lists enabled capabilities in stable order, for status output.
func (r *Registry) Summary() string {
	var names []string
	for k, s := range r.status {
		if s == Enabled {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return "no optional services"
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func (r *Registry) String() string {
	return fmt.Sprintf("capabilities{%d enabled}", r.Count())
}
