// Package booking implements the barbershop booking dialogue: state is
// re-derived from the conversation history on every turn and a single-turn
// stepper decides the next prompt. Nothing in this package performs I/O
// except the HTTP handler.
package booking

import (
	"fmt"
	"strings"
)

// NameMatching selects how the extractor treats a message that is a bare name.
type NameMatching int

const (
	// NameMatchingLegacy tests the bare-name pattern against the lower-cased
	// message, so it never matches. Names given as "my name is ..." are kept
	// lower-cased. A transport that replays history (webchat, the booking
	// endpoint) cannot complete a booking after a bare-name answer in this
	// mode, because the name is never re-derived; such transports should run
	// NameMatchingCaseAware.
	NameMatchingLegacy NameMatching = iota
	// NameMatchingCaseAware tests the original message and keeps its casing.
	NameMatchingCaseAware
)

func (m NameMatching) String() string {
	switch m {
	case NameMatchingCaseAware:
		return "case-aware"
	default:
		return "legacy"
	}
}

// ParseNameMatching parses the configuration value for NameMatching.
func ParseNameMatching(value string) (NameMatching, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "legacy":
		return NameMatchingLegacy, nil
	case "case-aware", "case_aware", "caseaware":
		return NameMatchingCaseAware, nil
	default:
		return NameMatchingLegacy, fmt.Errorf("booking: unknown name matching %q", value)
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithNameMatching sets the extractor's bare-name behavior.
func WithNameMatching(m NameMatching) Option {
	return func(e *Engine) {
		e.nameMatching = m
	}
}

// Engine ties the extractor and the stepper together. The zero value is
// ready to use with legacy name matching. An Engine holds no per-conversation
// data and is safe for concurrent use.
type Engine struct {
	nameMatching NameMatching
}

// NewEngine creates an engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NameMatching reports the configured bare-name behavior.
func (e *Engine) NameMatching() NameMatching {
	return e.nameMatching
}

// Extract folds the user messages of history into a State. Completed is
// always false; only the stepper marks a booking complete.
func (e *Engine) Extract(history []Message) State {
	state := State{}
	for _, msg := range history {
		if msg.Role != RoleUser {
			continue
		}
		state = e.applyMessage(state, msg.Content)
	}
	return state
}

func (e *Engine) applyMessage(state State, raw string) State {
	content := strings.ToLower(raw)

	for _, svc := range mentionedServices(content) {
		state.Service = svc
	}
	if day := mentionedDay(content); day != "" {
		state.Date = day
	}
	if t := findTime(content); t != "" {
		state.Time = t
	}
	if phone := findPhone(content); phone != "" {
		state.Phone = phone
	}

	if state.Name == "" {
		source := content
		if e.nameMatching == NameMatchingCaseAware {
			source = raw
		}
		if name, ok := introducedName(source); ok {
			state.Name = name
		} else if isBareName(source) {
			state.Name = source
		}
	}
	return state
}

// Respond re-derives state from history and answers message.
func (e *Engine) Respond(message string, history []Message) Reply {
	return Step(message, e.Extract(history))
}
