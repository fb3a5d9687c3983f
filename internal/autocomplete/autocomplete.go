// Package autocomplete implements a multi-select text input: the user filters
// a fixed option list by typing, picks several options, optionally creates new
// ones, and optionally has to type an activation character (such as "#") to
// switch a free-text field into option mode.
//
// The package holds behaviour only. Rendering and key decoding belong to the
// host, which feeds text through SetValue and special keys through HandleKey.
package autocomplete

import (
	"context"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

// DefaultMaxSuggestions caps Matches when Config.MaxSuggestions is zero
const DefaultMaxSuggestions = 10

// MatchFunc reports whether an option label matches the query
type MatchFunc func(label, query string) bool

// AddNewFunc creates an option from the raw query. Returning ok=false (or an
// error) means nothing was created.
type AddNewFunc[T any] func(ctx context.Context, text string) (option T, ok bool, err error)

// Config describes the options and behaviour of an Input
type Config[T any] struct {
	Options []T
	Label   func(T) string
	ID      func(T) string

	// Match defaults to a case-insensitive prefix match.
	Match MatchFunc
	// MaxSuggestions caps the match list. Zero means DefaultMaxSuggestions,
	// negative means unlimited.
	MaxSuggestions int

	// ActivationChar, when set, must be typed before the input filters
	// options. Text before its last occurrence is the remainder.
	ActivationChar string
	// ShowResultsOnActivation lists every option as soon as the activation
	// character is typed, before any query.
	ShowResultsOnActivation bool

	AllowAddNew bool
	AddNew      AddNewFunc[T]

	// DisableEscapeReset makes Escape only blur instead of wiping the input
	// and the selection.
	DisableEscapeReset bool
}

// Input is the state machine behind the widget
type Input[T any] struct {
	cfg       Config[T]
	selection Selection[T]
	text      TextState
	focus     Focuser

	activated       bool
	suggestionIndex int
}

// New creates an input that keeps its own query and remainder text
func New[T any](cfg Config[T], selection Selection[T]) *Input[T] {
	return NewControlled(cfg, selection, &LocalText{})
}

// NewControlled creates an input whose query and remainder text live in a
// caller-owned TextState.
func NewControlled[T any](cfg Config[T], selection Selection[T], text TextState) *Input[T] {
	if cfg.Match == nil {
		cfg.Match = PrefixMatch
	}
	if cfg.Label == nil {
		panic("autocomplete: Config.Label is required")
	}
	if cfg.ID == nil {
		panic("autocomplete: Config.ID is required")
	}
	return &Input[T]{
		cfg:       cfg,
		selection: selection,
		text:      text,
		focus:     noopFocuser{},
		activated: cfg.ActivationChar == "",
	}
}

// PrefixMatch is the default MatchFunc. A Caser is stateful, so each call
// gets its own.
func PrefixMatch(label, query string) bool {
	fold := cases.Fold()
	return strings.HasPrefix(fold.String(label), fold.String(query))
}

// SetFocuser wires focus side effects to the host's text field
func (in *Input[T]) SetFocuser(f Focuser) {
	if f == nil {
		f = noopFocuser{}
	}
	in.focus = f
}

// SetOptions replaces the option list, e.g. when a new snapshot arrives
func (in *Input[T]) SetOptions(options []T) {
	in.cfg.Options = options
	in.clampIndex()
}

// Options returns the configured option list
func (in *Input[T]) Options() []T { return in.cfg.Options }

// Query is the text currently used to filter options
func (in *Input[T]) Query() string { return in.text.Query() }

// Remainder is the free text outside the activation segment
func (in *Input[T]) Remainder() string { return in.text.Remainder() }

// Activated reports whether the input is filtering options
func (in *Input[T]) Activated() bool { return in.activated }

// SuggestionIndex is the highlighted position in Matches
func (in *Input[T]) SuggestionIndex() int { return in.suggestionIndex }

// Selected returns the external selection
func (in *Input[T]) Selected() []T { return in.selection.Selected() }

// Value rebuilds the full text the user sees in the field
func (in *Input[T]) Value() string {
	if in.cfg.ActivationChar == "" {
		return in.text.Query()
	}
	if in.activated {
		return in.text.Remainder() + in.cfg.ActivationChar + in.text.Query()
	}
	return in.text.Remainder()
}

// SetValue applies the full field text after a keystroke
func (in *Input[T]) SetValue(full string) {
	before := in.Value()
	if in.cfg.ActivationChar == "" {
		in.text.SetQuery(full)
	} else {
		existing, relevant, ok := splitActivation(full, in.cfg.ActivationChar)
		in.text.SetQuery(relevant)
		in.text.SetRemainder(existing)
		in.activated = ok
	}
	if in.Value() != before {
		in.suggestionIndex = 0
	}
}

// splitActivation splits on the last occurrence of char
func splitActivation(input, char string) (existing, relevant string, ok bool) {
	i := strings.LastIndex(input, char)
	if i < 0 {
		return input, "", false
	}
	return input[:i], input[i+len(char):], true
}

// ShowOptions reports whether suggestions are visible at all
func (in *Input[T]) ShowOptions() bool {
	return in.activated && (in.text.Query() != "" || in.cfg.ShowResultsOnActivation)
}

// Matches returns the options matching the query that are not already
// selected, in option order, capped at MaxSuggestions.
func (in *Input[T]) Matches() []T {
	if !in.ShowOptions() {
		return nil
	}
	limit := in.cfg.MaxSuggestions
	if limit == 0 {
		limit = DefaultMaxSuggestions
	}
	query := in.text.Query()
	var matches []T
	for _, o := range in.cfg.Options {
		if limit >= 0 && len(matches) >= limit {
			break
		}
		if in.cfg.Match(in.cfg.Label(o), query) && !in.isSelected(o) {
			matches = append(matches, o)
		}
	}
	return matches
}

func (in *Input[T]) isSelected(o T) bool {
	id := in.cfg.ID(o)
	for _, s := range in.selection.Selected() {
		if in.cfg.ID(s) == id {
			return true
		}
	}
	return false
}

// OfferCreate reports whether the "add new option" choice is available
func (in *Input[T]) OfferCreate() bool {
	return in.cfg.AllowAddNew && in.cfg.AddNew != nil &&
		in.activated && in.text.Query() != "" && len(in.Matches()) == 0
}

// Select appends an option to the selection and resets the query
func (in *Input[T]) Select(o T) {
	if !in.isSelected(o) {
		selected := in.selection.Selected()
		next := make([]T, 0, len(selected)+1)
		next = append(next, selected...)
		in.selection.SetSelected(append(next, o))
	}
	in.focus.Focus()
	in.text.SetQuery("")
	in.text.SetRemainder(strings.TrimRightFunc(in.text.Remainder(), unicode.IsSpace))
	if in.cfg.ActivationChar != "" {
		in.activated = false
	}
	in.suggestionIndex = 0
}

// Remove drops an option from the selection by identity
func (in *Input[T]) Remove(o T) {
	id := in.cfg.ID(o)
	var kept []T
	for _, s := range in.selection.Selected() {
		if in.cfg.ID(s) != id {
			kept = append(kept, s)
		}
	}
	in.selection.SetSelected(kept)
	in.focus.Focus()
}

// CreateFunc captures the current query and returns a function that runs the
// creation callback with it. The returned function touches no input state, so
// hosts may run it off their UI loop and pass the result to CompleteCreate.
func (in *Input[T]) CreateFunc() func(ctx context.Context) (T, bool, error) {
	query := in.text.Query()
	addNew := in.cfg.AddNew
	return func(ctx context.Context) (T, bool, error) {
		var zero T
		if addNew == nil {
			return zero, false, nil
		}
		option, ok, err := addNew(ctx, query)
		if err != nil {
			return zero, false, err
		}
		return option, ok, nil
	}
}

// CompleteCreate folds a creation result into the input. A missing result is
// a no-op.
func (in *Input[T]) CompleteCreate(option T, ok bool) bool {
	if !ok {
		return false
	}
	in.Select(option)
	return true
}

// CreateAndSelect creates an option from the current query and selects it.
// Failures leave the input unchanged; the error is returned for logging only.
func (in *Input[T]) CreateAndSelect(ctx context.Context) (bool, error) {
	option, ok, err := in.CreateFunc()(ctx)
	if err != nil {
		return false, err
	}
	return in.CompleteCreate(option, ok), nil
}

// Reset clears query, remainder and selection and deactivates
func (in *Input[T]) Reset() {
	in.text.SetQuery("")
	in.text.SetRemainder("")
	in.selection.SetSelected(nil)
	in.activated = in.cfg.ActivationChar == ""
	in.suggestionIndex = 0
}

func (in *Input[T]) clampIndex() {
	n := len(in.Matches())
	if in.suggestionIndex >= n {
		in.suggestionIndex = 0
	}
}
