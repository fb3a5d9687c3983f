package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pdxmph/hangs-tui/internal/autocomplete"
	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
)

const dateLayout = "2006-01-02"

// Friend form field indices
const (
	friendFieldFirst = iota
	friendFieldLast
	friendFieldRelation
	friendFieldLongDistance
	friendFieldAmount
	friendFieldUnit
	friendFieldTags
	friendFieldCount
)

type friendForm struct {
	id    string
	field int

	first        textinput.Model
	last         textinput.Model
	relation     textinput.Model
	longDistance bool
	amount       textinput.Model
	unit         int
	tags         *acField[db.Tag]

	err string
}

func newTextInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 100
	ti.Width = 36
	return ti
}

func newFriendForm(opts Options, tags []db.Tag, existing *db.Contact, addNew autocomplete.AddNewFunc[db.Tag]) *friendForm {
	f := &friendForm{
		first:    newTextInput("First name"),
		last:     newTextInput("Last name"),
		relation: newTextInput("e.g. college roommate"),
		amount:   newTextInput("blank for no goal"),
		unit:     1,
	}
	f.amount.CharLimit = 4

	var selected []db.Tag
	if existing != nil {
		f.id = existing.ID
		f.first.SetValue(existing.FirstName)
		f.last.SetValue(existing.LastName.String)
		f.relation.SetValue(existing.Relation.String)
		f.longDistance = existing.LongDistance
		if freq := existing.MaxTimeBetweenContact; freq != nil {
			f.amount.SetValue(strconv.Itoa(freq.Amount))
			for i, u := range db.TimeUnits {
				if u == freq.Unit {
					f.unit = i
				}
			}
		}
		selected = existing.Tags
	}

	f.tags = newACField(autocomplete.Config[db.Tag]{
		Options:        tags,
		Label:          tagLabel,
		ID:             tagID,
		MaxSuggestions: opts.MaxSuggestions,
		AllowAddNew:    true,
		AddNew:         addNew,
	}, autocomplete.NewSliceSelection(selected...), nil)
	f.tags.input.Placeholder = "type to add tags"
	f.tags.chip = func(t db.Tag) string { return tagChip(t.Name) }

	f.focus()
	return f
}

// textField returns the text input behind the current field, if any
func (f *friendForm) textField() *textinput.Model {
	switch f.field {
	case friendFieldFirst:
		return &f.first
	case friendFieldLast:
		return &f.last
	case friendFieldRelation:
		return &f.relation
	case friendFieldAmount:
		return &f.amount
	}
	return nil
}

func (f *friendForm) focus() {
	f.first.Blur()
	f.last.Blur()
	f.relation.Blur()
	f.amount.Blur()
	f.tags.Blur()
	if ti := f.textField(); ti != nil {
		ti.Focus()
	} else if f.field == friendFieldTags {
		f.tags.Focus()
	}
}

func (f *friendForm) move(delta int) {
	f.field = (f.field + delta + friendFieldCount) % friendFieldCount
	f.focus()
}

// frequency reads the cadence fields. A blank amount means no goal.
func (f *friendForm) frequency() (*db.HangFrequency, error) {
	raw := strings.TrimSpace(f.amount.Value())
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"max_time_between_contact.amount": "must be a whole number"})
	}
	return &db.HangFrequency{Amount: n, Unit: db.TimeUnits[f.unit]}, nil
}

func (f *friendForm) tagIDs() []string {
	ids := []string{}
	for _, t := range f.tags.ac.Selected() {
		ids = append(ids, t.ID)
	}
	return ids
}

func (m Model) updateFriendForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.friendForm
	if f == nil {
		m.goBack()
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.goBack()
		return m, nil
	case "ctrl+s":
		return m, m.saveFriend(f)
	case "tab":
		f.move(1)
		return m, textinput.Blink
	case "shift+tab":
		f.move(-1)
		return m, textinput.Blink
	}

	switch f.field {
	case friendFieldLongDistance:
		switch msg.String() {
		case " ", "space", "enter", "x":
			f.longDistance = !f.longDistance
		}
		return m, nil

	case friendFieldUnit:
		switch msg.String() {
		case "left", "h":
			f.unit = (f.unit + len(db.TimeUnits) - 1) % len(db.TimeUnits)
		case "right", "l", " ", "space", "enter":
			f.unit = (f.unit + 1) % len(db.TimeUnits)
		}
		return m, nil

	case friendFieldTags:
		res, cmd := f.tags.Update(msg)
		if res == autocomplete.KeyCreate {
			return m, m.createTag(f, f.tags.ac.CreateFunc())
		}
		return m, cmd
	}

	if msg.String() == "enter" {
		f.move(1)
		return m, textinput.Blink
	}
	ti := f.textField()
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return m, cmd
}

func (m Model) saveFriend(f *friendForm) tea.Cmd {
	ctx, store := m.ctx, m.store
	freq, freqErr := f.frequency()
	first := strings.TrimSpace(f.first.Value())
	last := strings.TrimSpace(f.last.Value())
	relation := strings.TrimSpace(f.relation.Value())
	longDistance := f.longDistance
	tagIDs := f.tagIDs()
	name := strings.TrimSpace(first + " " + last)
	id := f.id

	return func() tea.Msg {
		if freqErr != nil {
			return savedMsg{err: freqErr}
		}
		if id == "" {
			_, err := store.CreateContact(ctx, db.ContactInput{
				FirstName:             first,
				LastName:              last,
				Relation:              relation,
				LongDistance:          longDistance,
				MaxTimeBetweenContact: freq,
				TagIDs:                tagIDs,
			})
			return savedMsg{status: "Added " + name, err: err, back: true}
		}
		err := store.UpdateContact(ctx, id, db.ContactPatch{
			FirstName:             &first,
			LastName:              &last,
			Relation:              &relation,
			LongDistance:          &longDistance,
			MaxTimeBetweenContact: freq,
			ClearMaxTime:          freq == nil,
			TagIDs:                &tagIDs,
		})
		return savedMsg{status: "Saved " + name, err: err, back: true}
	}
}

// formBox wraps form lines in the shared overlay box
func formBox(lines []string) string {
	return borderStyle.
		Padding(1).
		Width(64).
		Background(lipgloss.Color("235")).
		Render(strings.Join(lines, "\n"))
}

func fieldLabel(label string, focused bool) string {
	label = fmt.Sprintf("%-14s", label+":")
	if focused {
		return titleStyle.Render(label)
	}
	return labelStyle.Render(label)
}

func (f *friendForm) View(title string) string {
	var lines []string
	lines = append(lines, titleStyle.Render(title))
	lines = append(lines, strings.Repeat("─", 40))
	lines = append(lines, "")

	lines = append(lines, fieldLabel("First name", f.field == friendFieldFirst)+f.first.View())
	lines = append(lines, fieldLabel("Last name", f.field == friendFieldLast)+f.last.View())
	lines = append(lines, fieldLabel("Relation", f.field == friendFieldRelation)+f.relation.View())

	check := "[ ]"
	if f.longDistance {
		check = "[x]"
	}
	if f.field == friendFieldLongDistance {
		check = selectedStyle.Render(check)
	}
	lines = append(lines, fieldLabel("Long distance", f.field == friendFieldLongDistance)+check)
	lines = append(lines, "")

	lines = append(lines, fieldLabel("Hang every", f.field == friendFieldAmount)+f.amount.View())
	unit := string(db.TimeUnits[f.unit]) + "(s)"
	if f.field == friendFieldUnit {
		unit = selectedStyle.Render("< " + unit + " >")
	} else {
		unit = "  " + unit
	}
	lines = append(lines, fieldLabel("Unit", f.field == friendFieldUnit)+unit)
	if freq, err := f.frequency(); err == nil && freq != nil && freq.Amount > 0 {
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%14severy %s", "", cadence.FormatHangFrequency(*freq))))
	}
	lines = append(lines, "")

	lines = append(lines, fieldLabel("Tags", f.field == friendFieldTags)+f.tags.View())
	lines = append(lines, "")

	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err), "")
	}
	lines = append(lines, "Tab: next field • Shift+Tab: previous • Ctrl+S: save • Esc: cancel")
	return formBox(lines)
}

// Hang form field indices
const (
	hangFieldDate = iota
	hangFieldFriends
	hangFieldNotes
	hangFieldCount
)

type hangForm struct {
	id    string
	field int

	// base is the timestamp kept when the date text is left unchanged
	base    time.Time
	date    textinput.Model
	friends *acField[db.Contact]
	notes   textarea.Model

	err string
}

func contactLabel(c db.Contact) string { return cadence.FullName(c) }
func contactID(c db.Contact) string    { return c.ID }

// wordPrefixMatch matches the query against the start of any word, so
// "chen" finds "Sarah Chen".
func wordPrefixMatch(label, query string) bool {
	if autocomplete.PrefixMatch(label, query) {
		return true
	}
	for _, word := range strings.Fields(label) {
		if autocomplete.PrefixMatch(word, query) {
			return true
		}
	}
	return false
}

func newHangForm(opts Options, contacts []db.Contact, existing *db.Hang, preset []db.Contact, now time.Time) *hangForm {
	f := &hangForm{
		base: now,
		date: newTextInput(dateLayout),
	}
	f.date.CharLimit = len(dateLayout)

	ta := textarea.New()
	ta.Placeholder = "What did you get up to?"
	ta.SetHeight(4)
	ta.SetWidth(46)
	ta.ShowLineNumbers = false
	f.notes = ta

	if existing != nil {
		f.id = existing.ID
		f.base = existing.DateContacted.In(now.Location())
		f.notes.SetValue(existing.Notes.String)
	}
	f.date.SetValue(f.base.Format(dateLayout))

	f.friends = newACField(autocomplete.Config[db.Contact]{
		Options:        contacts,
		Label:          contactLabel,
		ID:             contactID,
		Match:          wordPrefixMatch,
		MaxSuggestions: opts.MaxSuggestions,
	}, autocomplete.NewSliceSelection(preset...), nil)
	f.friends.input.Placeholder = "type a name"

	if len(preset) > 0 && existing == nil {
		f.field = hangFieldNotes
	}
	f.focus()
	return f
}

func (f *hangForm) focus() {
	f.date.Blur()
	f.friends.Blur()
	f.notes.Blur()
	switch f.field {
	case hangFieldDate:
		f.date.Focus()
	case hangFieldFriends:
		f.friends.Focus()
	case hangFieldNotes:
		f.notes.Focus()
	}
}

func (f *hangForm) move(delta int) {
	f.field = (f.field + delta + hangFieldCount) % hangFieldCount
	f.focus()
}

// dateContacted parses the date field. An unchanged date keeps the original
// time of day so same-day hangs stay ordered.
func (f *hangForm) dateContacted() (time.Time, error) {
	raw := strings.TrimSpace(f.date.Value())
	if raw == f.base.Format(dateLayout) {
		return f.base, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, f.base.Location())
	if err != nil {
		return time.Time{}, domainerrors.ValidationWithDetails("validation failed",
			map[string]string{"date_contacted": "must look like " + dateLayout})
	}
	return t, nil
}

func (f *hangForm) friendIDs() []string {
	ids := []string{}
	for _, c := range f.friends.ac.Selected() {
		ids = append(ids, c.ID)
	}
	return ids
}

func (m Model) updateHangForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.hangForm
	if f == nil {
		m.goBack()
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.goBack()
		return m, nil
	case "ctrl+s":
		return m, m.saveHang(f)
	case "tab":
		f.move(1)
		return m, textinput.Blink
	case "shift+tab":
		f.move(-1)
		return m, textinput.Blink
	}

	var cmd tea.Cmd
	switch f.field {
	case hangFieldDate:
		if msg.String() == "enter" {
			f.move(1)
			return m, textinput.Blink
		}
		f.date, cmd = f.date.Update(msg)
	case hangFieldFriends:
		_, cmd = f.friends.Update(msg)
	case hangFieldNotes:
		f.notes, cmd = f.notes.Update(msg)
	}
	return m, cmd
}

func (m Model) saveHang(f *hangForm) tea.Cmd {
	ctx, store := m.ctx, m.store
	date, dateErr := f.dateContacted()
	friendIDs := f.friendIDs()
	notes := strings.TrimSpace(f.notes.Value())
	id := f.id

	return func() tea.Msg {
		if dateErr != nil {
			return savedMsg{err: dateErr}
		}
		if id == "" {
			_, err := store.CreateHang(ctx, db.HangInput{
				DateContacted: date,
				FriendIDs:     friendIDs,
				Notes:         notes,
			})
			return savedMsg{status: "Recorded hang", err: err, back: true}
		}
		err := store.UpdateHang(ctx, id, db.HangPatch{
			DateContacted: &date,
			FriendIDs:     &friendIDs,
			Notes:         &notes,
		})
		return savedMsg{status: "Saved hang", err: err, back: true}
	}
}

func (f *hangForm) View(title string) string {
	var lines []string
	lines = append(lines, titleStyle.Render(title))
	lines = append(lines, strings.Repeat("─", 40))
	lines = append(lines, "")

	lines = append(lines, fieldLabel("Date", f.field == hangFieldDate)+f.date.View())
	lines = append(lines, "")
	lines = append(lines, fieldLabel("With", f.field == hangFieldFriends)+f.friends.View())
	lines = append(lines, "")
	lines = append(lines, fieldLabel("Notes", f.field == hangFieldNotes))
	lines = append(lines, f.notes.View())
	lines = append(lines, "")

	if f.err != "" {
		lines = append(lines, errorStyle.Render(f.err), "")
	}
	lines = append(lines, "Tab: next field • Shift+Tab: previous • Ctrl+S: save • Esc: cancel")
	return formBox(lines)
}
