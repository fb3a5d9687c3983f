package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
	"github.com/pdxmph/hangs-tui/internal/nav"
)

// currentFriend is the friend on the detail page, or the one highlighted in
// the list everywhere else.
func (m Model) currentFriend() (db.Contact, bool) {
	if v, ok := m.view.(nav.FriendDetail); ok {
		return m.contact(v.ID)
	}
	friends := m.visibleFriends()
	if len(friends) == 0 || m.selected >= len(friends) {
		return db.Contact{}, false
	}
	return friends[m.selected], true
}

// friendHangs returns a friend's hangs newest first
func friendHangs(c db.Contact) []db.Hang {
	hangs := make([]db.Hang, len(c.Hangs))
	copy(hangs, c.Hangs)
	cadence.SortHangsByRecency(hangs)
	return hangs
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c, ok := m.currentFriend()
	if !ok {
		m.goBack()
		return m, nil
	}
	hangs := friendHangs(c)

	switch msg.String() {
	case "esc", "backspace":
		m.goBack()
	case "g":
		if nav.ShowHome(m.history) {
			m.goHome()
		}
	case "j", "down":
		if m.hangSelected < len(hangs)-1 {
			m.hangSelected++
		}
	case "k", "up":
		if m.hangSelected > 0 {
			m.hangSelected--
		}
	case "enter":
		if m.hangSelected < len(hangs) {
			m.navigate(nav.EditHang{ID: hangs[m.hangSelected].ID})
		}
	case "e":
		m.navigate(nav.EditFriend{ID: c.ID})
	case "h":
		m.navigate(nav.RecordHang{})
	case "d":
		m.confirm = &confirmation{
			prompt: fmt.Sprintf("Delete %s?", cadence.FullName(c)),
			run:    m.deleteFriend(c),
		}
	case "x":
		if m.hangSelected < len(hangs) {
			h := hangs[m.hangSelected]
			m.confirm = &confirmation{
				prompt: fmt.Sprintf("Delete hang on %s?", m.localDate(h.DateContacted)),
				run:    m.deleteHang(h),
			}
		}
	}
	return m, nil
}

func (m Model) deleteFriend(c db.Contact) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		err := store.DeleteContact(ctx, c.ID)
		return savedMsg{status: "Deleted " + cadence.FullName(c), err: err, back: true}
	}
}

func (m Model) deleteHang(h db.Hang) tea.Cmd {
	ctx, store := m.ctx, m.store
	return func() tea.Msg {
		err := store.DeleteHang(ctx, h.ID)
		return savedMsg{status: "Deleted hang", err: err}
	}
}

// friendSummary renders name, cadence, status and tags
func (m Model) friendSummary(c db.Contact, width int) []string {
	now := m.now()
	var lines []string

	header := titleStyle.Render(cadence.FullName(c))
	if c.Relation.Valid && c.Relation.String != "" {
		header += " (" + c.Relation.String + ")"
	}
	lines = append(lines, header)
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))
	lines = append(lines, "")

	if c.MaxTimeBetweenContact != nil {
		lines = append(lines, fmt.Sprintf("Hang every: %s", cadence.FormatHangFrequency(*c.MaxTimeBetweenContact)))
	} else {
		lines = append(lines, "Hang every: "+labelStyle.Render("no goal"))
	}

	if last, ok := cadence.LastHangDate(c); ok {
		lines = append(lines, fmt.Sprintf("Last hang: %s (%s)",
			m.localDate(last), cadence.FormatTimeSinceLastHang(last, now)))
	} else {
		lines = append(lines, "Last hang: Never")
	}

	if status := cadenceStatus(c, now); status != "" {
		style := labelStyle
		switch urgency(c, now) {
		case urgencyOverdue:
			style = overdueStyle
		case urgencyDueSoon:
			style = dueSoonStyle
		}
		lines = append(lines, "Status: "+style.Render(status))
	}

	if c.LongDistance {
		lines = append(lines, "Long distance")
	}

	if len(c.Tags) > 0 {
		tags := make([]db.Tag, len(c.Tags))
		copy(tags, c.Tags)
		cadence.SortTags(tags)
		chips := make([]string, 0, len(tags))
		for _, t := range tags {
			chips = append(chips, tagChip(t.Name))
		}
		lines = append(lines, "Tags: "+strings.Join(chips, " "))
	}

	return lines
}

// cadenceStatus describes where a friend stands against their goal
func cadenceStatus(c db.Contact, now time.Time) string {
	if c.MaxTimeBetweenContact == nil {
		return ""
	}
	days, ok, err := cadence.DaysOverdue(c, now)
	switch {
	case err != nil:
		return err.Error()
	case !ok:
		return "haven't hung out yet"
	case days > 0:
		return pluralDays(days) + " overdue"
	case days == 0:
		return "due today"
	default:
		return "due in " + pluralDays(-days)
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// renderFriendPage renders the full detail view with the hang history
func (m Model) renderFriendPage(width, height int) string {
	c, ok := m.currentFriend()
	if !ok {
		return "No friend selected"
	}

	lines := m.friendSummary(c, width)
	lines = append(lines, "")

	hangs := friendHangs(c)
	lines = append(lines, fmt.Sprintf("Hangs (%d):", len(hangs)))
	lines = append(lines, strings.Repeat("─", max(width-2, 0)))
	if len(hangs) == 0 {
		lines = append(lines, labelStyle.Render("No hangs yet. Press h to record one."))
	}

	for i, h := range hangs {
		line := m.localDate(h.DateContacted)
		if others := m.otherNames(h, c.ID); len(others) > 0 {
			line += " with " + strings.Join(others, ", ")
		}
		if i == m.hangSelected {
			line = selectedStyle.Render(line)
		}
		lines = append(lines, line)
		if h.Notes.Valid && h.Notes.String != "" {
			for _, noteLine := range wrapText(h.Notes.String, width-4) {
				lines = append(lines, "  "+labelStyle.Render(noteLine))
			}
		}
	}

	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

// otherNames lists the other friends at a hang
// localDate shows the calendar day t falls on in the clock's zone
func (m Model) localDate(t time.Time) string {
	return t.In(m.now().Location()).Format(dateLayout)
}

func (m Model) otherNames(h db.Hang, self string) []string {
	var names []string
	for _, id := range h.FriendIDs {
		if id == self {
			continue
		}
		if c, ok := m.contact(id); ok {
			names = append(names, cadence.FullName(c))
		}
	}
	return names
}
