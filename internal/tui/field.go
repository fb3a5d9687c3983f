package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/hangs-tui/internal/autocomplete"
	"github.com/pdxmph/hangs-tui/internal/tagcolor"
)

// acField puts an autocomplete.Input behind a textinput. The textinput
// always shows the input's combined Value.
type acField[T any] struct {
	input textinput.Model
	ac    *autocomplete.Input[T]
	label func(T) string
	// chip renders a selected option, defaulting to its label
	chip func(T) string
}

func newACField[T any](cfg autocomplete.Config[T], sel autocomplete.Selection[T], text autocomplete.TextState) *acField[T] {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 120

	f := &acField[T]{input: ti, label: cfg.Label}
	if text != nil {
		f.ac = autocomplete.NewControlled(cfg, sel, text)
	} else {
		f.ac = autocomplete.New(cfg, sel)
	}
	f.ac.SetFocuser(f)
	return f
}

// Focus implements autocomplete.Focuser
func (f *acField[T]) Focus() { f.input.Focus() }

// Blur implements autocomplete.Focuser
func (f *acField[T]) Blur() { f.input.Blur() }

func (f *acField[T]) Focused() bool { return f.input.Focused() }

// sync copies the widget's text back into the textinput
func (f *acField[T]) sync() {
	if f.input.Value() != f.ac.Value() {
		f.input.SetValue(f.ac.Value())
		f.input.CursorEnd()
	}
}

func specialKey(msg tea.KeyMsg) (autocomplete.Key, bool) {
	switch msg.Type {
	case tea.KeyEnter:
		return autocomplete.KeyEnter, true
	case tea.KeyBackspace:
		return autocomplete.KeyBackspace, true
	case tea.KeyUp:
		return autocomplete.KeyUp, true
	case tea.KeyDown:
		return autocomplete.KeyDown, true
	case tea.KeyEsc:
		return autocomplete.KeyEscape, true
	}
	return 0, false
}

// Update feeds a key to the widget first and to the textinput when the
// widget leaves it alone.
func (f *acField[T]) Update(msg tea.KeyMsg) (autocomplete.KeyResult, tea.Cmd) {
	if k, ok := specialKey(msg); ok {
		if res := f.ac.HandleKey(k); res != autocomplete.KeyIgnored {
			f.sync()
			return res, nil
		}
	}
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.ac.SetValue(f.input.Value())
	return autocomplete.KeyIgnored, cmd
}

// Reset clears text and selection
func (f *acField[T]) Reset() {
	f.ac.Reset()
	f.sync()
}

func (f *acField[T]) chipFor(o T) string {
	if f.chip != nil {
		return f.chip(o)
	}
	return "[" + f.label(o) + "]"
}

// View renders chips, the text field and, when open, the suggestions
func (f *acField[T]) View() string {
	var b strings.Builder
	for _, o := range f.ac.Selected() {
		b.WriteString(f.chipFor(o))
		b.WriteString(" ")
	}
	b.WriteString(f.input.View())

	if !f.Focused() || !f.ac.ShowOptions() {
		return b.String()
	}
	matches := f.ac.Matches()
	for i, o := range matches {
		line := "  " + f.label(o)
		if i == f.ac.SuggestionIndex() {
			line = selectedStyle.Render(line)
		} else {
			line = suggestionStyle.Render(line)
		}
		b.WriteString("\n" + line)
	}
	if f.ac.OfferCreate() {
		b.WriteString("\n" + createStyle.Render(fmt.Sprintf("  + Create %q (enter)", f.ac.Query())))
	}
	return b.String()
}

// tagChip renders a tag in its palette colour
func tagChip(name string) string {
	return tagcolor.Style(name).Render(name)
}
