package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/hangs-tui/internal/autocomplete"
	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
	"github.com/pdxmph/hangs-tui/internal/nav"
	"github.com/pdxmph/hangs-tui/internal/tagcolor"
)

// searchText holds the search bar text. The part before the activation
// character filters names, the part after it picks tags.
type searchText struct {
	query string
	name  string
}

func (t *searchText) Query() string         { return t.query }
func (t *searchText) SetQuery(s string)     { t.query = s }
func (t *searchText) Remainder() string     { return t.name }
func (t *searchText) SetRemainder(s string) { t.name = s }

func tagLabel(t db.Tag) string { return t.Name }
func tagID(t db.Tag) string    { return t.ID }

func newSearchField(opts Options, text *searchText) *acField[db.Tag] {
	char := opts.ActivationChar
	if char == "" {
		char = "#"
	}
	f := newACField(autocomplete.Config[db.Tag]{
		Label:                   tagLabel,
		ID:                      tagID,
		MaxSuggestions:          opts.MaxSuggestions,
		ActivationChar:          char,
		ShowResultsOnActivation: true,
		DisableEscapeReset:      true,
	}, autocomplete.NewSliceSelection[db.Tag](), text)
	f.input.Prompt = "> "
	f.input.Placeholder = "Search, " + char + " for tags..."
	f.input.CharLimit = 50
	f.chip = func(t db.Tag) string {
		return tagcolor.Style(t.Name).Render(char + t.Name)
	}
	return f
}

// visibleFriends applies the search bar then ranks by urgency
func (m Model) visibleFriends() []db.Contact {
	if m.snap == nil {
		return nil
	}
	filtered := cadence.FilterByQueryAndTags(m.snap.Contacts, m.searchText.name, m.search.ac.Selected())
	ranked, err := cadence.Ranked(filtered, m.now())
	if err != nil {
		m.log.WithError(err).Warn("ranking friends")
		return filtered
	}
	return ranked
}

func (m Model) ensureValidSelection() int {
	friends := m.visibleFriends()
	if len(friends) == 0 {
		return 0
	}
	if m.selected >= len(friends) {
		return len(friends) - 1
	}
	if m.selected < 0 {
		return 0
	}
	return m.selected
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.updateSearch(msg)
	}

	friends := m.visibleFriends()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.selected < len(friends)-1 {
			m.selected++
		}
	case "k", "up":
		if m.selected > 0 {
			m.selected--
		}
	case "/":
		m.searching = true
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		m.search.Reset()
		m.selected = 0
	case "enter":
		if c, ok := m.currentFriend(); ok {
			m.navigate(nav.FriendDetail{ID: c.ID})
		}
	case "e":
		if c, ok := m.currentFriend(); ok {
			m.navigate(nav.EditFriend{ID: c.ID})
		}
	case "a":
		m.navigate(nav.AddFriend{})
		return m, textinput.Blink
	case "h":
		m.navigate(nav.RecordHang{})
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	showing := m.search.ac.ShowOptions()
	switch msg.String() {
	case "enter":
		if !showing {
			m.searching = false
			m.search.Blur()
			return m, nil
		}
	case "up", "down":
		if !showing {
			m.searching = false
			m.search.Blur()
			return m.updateList(msg)
		}
	case "esc":
		m.search.Update(msg)
		m.searching = false
		return m, nil
	}

	_, cmd := m.search.Update(msg)
	m.selected = m.ensureValidSelection()
	return m, cmd
}

// renderList renders the ranked friend list
func (m Model) renderList(width, height int) string {
	var lines []string

	if m.searching || m.search.ac.Value() != "" || len(m.search.ac.Selected()) > 0 {
		search := m.search.View()
		lines = append(lines, strings.Split(search, "\n")...)
		lines = append(lines, "")
	}
	height -= len(lines)

	friends := m.visibleFriends()
	now := m.now()

	visibleHeight := height - 2
	startIdx := 0
	if m.selected >= visibleHeight {
		startIdx = m.selected - visibleHeight + 1
	}

	header := fmt.Sprintf("Friends (%d)", len(friends))
	overdue := 0
	for _, c := range friends {
		if cadence.IsOverdue(c, now) {
			overdue++
		}
	}
	if overdue > 0 {
		header += " " + overdueStyle.Render(fmt.Sprintf("[%d overdue]", overdue))
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))

	for i := startIdx; i < len(friends) && i < startIdx+visibleHeight; i++ {
		c := friends[i]

		marker := "  "
		switch urgency(c, now) {
		case urgencyOverdue:
			marker = "* "
		case urgencyDueSoon:
			marker = "• "
		}

		line := marker + cadence.FullName(c)
		if last, ok := cadence.LastHangDate(c); ok {
			line += " " + labelStyle.Render(cadence.FormatTimeSinceLastHang(last, now))
		} else {
			line += " " + labelStyle.Render("never")
		}

		if i == m.selected {
			line = selectedStyle.Render(line)
		} else {
			switch urgency(c, now) {
			case urgencyOverdue:
				line = overdueStyle.Render("*") + line[1:]
			case urgencyDueSoon:
				line = dueSoonStyle.Render("•") + line[len("•"):]
			}
		}
		lines = append(lines, line)
	}

	if len(friends) == 0 {
		lines = append(lines, labelStyle.Render("No friends match"))
	}

	return strings.Join(lines, "\n")
}

// renderPreview shows the highlighted friend next to the list
func (m Model) renderPreview(width int) string {
	c, ok := m.currentFriend()
	if !ok {
		return "No friend selected"
	}
	return strings.Join(m.friendSummary(c, width), "\n")
}

type urgencyLevel int

const (
	urgencyNone urgencyLevel = iota
	urgencyDueSoon
	urgencyOverdue
)

// dueSoonDays is how close to the cadence a friend is flagged
const dueSoonDays = 7

func urgency(c db.Contact, now time.Time) urgencyLevel {
	days, ok, err := cadence.DaysOverdue(c, now)
	switch {
	case err != nil || !ok:
		return urgencyNone
	case days > 0:
		return urgencyOverdue
	case days > -dueSoonDays:
		return urgencyDueSoon
	}
	return urgencyNone
}
