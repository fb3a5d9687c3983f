package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/pdxmph/hangs-tui/internal/autocomplete"
	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/logger"
	"github.com/pdxmph/hangs-tui/internal/nav"
)

// Store is the part of *db.DB the UI talks to
type Store interface {
	Subscribe(ctx context.Context) (<-chan *db.Snapshot, error)
	CreateContact(ctx context.Context, in db.ContactInput) (*db.Contact, error)
	UpdateContact(ctx context.Context, id string, patch db.ContactPatch) error
	DeleteContact(ctx context.Context, id string) error
	CreateHang(ctx context.Context, in db.HangInput) (*db.Hang, error)
	UpdateHang(ctx context.Context, id string, patch db.HangPatch) error
	DeleteHang(ctx context.Context, id string) error
	CreateTag(ctx context.Context, name string) (*db.Tag, error)
}

// Options tune the UI
type Options struct {
	Logger         *logger.Logger
	Now            func() time.Time
	MaxSuggestions int
	ActivationChar string
}

type snapshotMsg struct{ snap *db.Snapshot }

type subscriptionClosedMsg struct{}

// savedMsg reports the outcome of a store write started by a form or prompt
type savedMsg struct {
	status string
	err    error
	// back returns to the previous view on success
	back bool
}

// tagCreatedMsg reports a tag created from form's tag field
type tagCreatedMsg struct {
	form *friendForm
	tag  db.Tag
	ok   bool
	err  error
}

// confirmation is a pending y/n prompt
type confirmation struct {
	prompt string
	run    tea.Cmd
}

// Model represents the main application state
type Model struct {
	ctx     context.Context
	store   Store
	log     *logger.Logger
	now     func() time.Time
	opts    Options
	updates <-chan *db.Snapshot
	snap    *db.Snapshot

	view    nav.View
	history nav.History

	width  int
	height int

	// list cursor and detail hang cursor
	selected     int
	hangSelected int

	searching  bool
	search     *acField[db.Tag]
	searchText *searchText

	friendForm *friendForm
	hangForm   *hangForm
	confirm    *confirmation

	status string
	err    error
}

// New subscribes to the store and creates the application model
func New(ctx context.Context, store Store, opts Options) (*Model, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	updates, err := store.Subscribe(ctx)
	if err != nil {
		return nil, fmt.Errorf("subscribing to store: %w", err)
	}

	m := &Model{
		ctx:     ctx,
		store:   store,
		log:     opts.Logger,
		now:     opts.Now,
		opts:    opts,
		updates: updates,
		view:    nav.Home,
	}
	m.searchText = &searchText{}
	m.search = newSearchField(opts, m.searchText)
	return m, nil
}

func waitForSnapshot(ch <-chan *db.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg{snap: snap}
	}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.updates)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.width > 0 {
			m.search.input.Width = m.width/3 - 4
		}
		return m, nil

	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, waitForSnapshot(m.updates)

	case subscriptionClosedMsg:
		m.log.Warn("snapshot subscription closed")
		m.err = fmt.Errorf("lost connection to the database")
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Error("saving changes")
			if m.friendForm != nil {
				m.friendForm.err = describeError(msg.err)
			} else if m.hangForm != nil {
				m.hangForm.err = describeError(msg.err)
			} else {
				m.status = describeError(msg.err)
			}
			return m, nil
		}
		m.status = msg.status
		if msg.back {
			m.goBack()
		}
		return m, nil

	case tagCreatedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Error("creating tag")
			m.status = describeError(msg.err)
			return m, nil
		}
		// the form may have been closed or replaced while the tag was saved
		if m.friendForm == msg.form && msg.ok {
			f := m.friendForm.tags
			f.ac.SetOptions(appendTag(f.ac.Options(), msg.tag))
			f.ac.CompleteCreate(msg.tag, msg.ok)
			f.sync()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		m.status = ""
		switch m.view.(type) {
		case nav.FriendList:
			return m.updateList(msg)
		case nav.FriendDetail:
			return m.updateDetail(msg)
		case nav.AddFriend, nav.EditFriend:
			return m.updateFriendForm(msg)
		case nav.RecordHang, nav.EditHang:
			return m.updateHangForm(msg)
		}
	}
	return m, nil
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := m.confirm
	m.confirm = nil
	switch msg.String() {
	case "y", "Y":
		return m, c.run
	}
	return m, nil
}

// navigate moves to a new view, building any form it needs
func (m *Model) navigate(next nav.View) {
	m.view, m.history = nav.Navigate(m.view, next, m.history)
	m.enterView()
}

func (m *Model) goBack() {
	m.view, m.history = nav.GoBack(m.history)
	m.enterView()
}

func (m *Model) goHome() {
	m.view, m.history = nav.GoHome()
	m.enterView()
}

// enterView sets up per-view state after a transition
func (m *Model) enterView() {
	m.friendForm = nil
	m.hangForm = nil
	switch v := m.view.(type) {
	case nav.AddFriend:
		m.friendForm = newFriendForm(m.opts, m.tags(), nil, m.tagCreator())
	case nav.EditFriend:
		if c, ok := m.contact(v.ID); ok {
			m.friendForm = newFriendForm(m.opts, m.tags(), &c, m.tagCreator())
		}
	case nav.RecordHang:
		var preset []db.Contact
		if prev, ok := m.lastHistory().(nav.FriendDetail); ok {
			if c, ok := m.contact(prev.ID); ok {
				preset = append(preset, c)
			}
		} else if c, ok := m.currentFriend(); ok {
			preset = append(preset, c)
		}
		m.hangForm = newHangForm(m.opts, m.contacts(), nil, preset, m.now())
	case nav.EditHang:
		if h, ok := m.hang(v.ID); ok {
			m.hangForm = newHangForm(m.opts, m.contacts(), &h, m.friendsOf(h), m.now())
		}
	case nav.FriendDetail:
		m.hangSelected = 0
	}
}

func (m Model) lastHistory() nav.View {
	if len(m.history) == 0 {
		return nil
	}
	return m.history[len(m.history)-1]
}

func (m *Model) applySnapshot(snap *db.Snapshot) {
	m.snap = snap
	m.search.ac.SetOptions(m.tags())
	if m.friendForm != nil {
		m.friendForm.tags.ac.SetOptions(m.tags())
	}
	if m.hangForm != nil {
		m.hangForm.friends.ac.SetOptions(m.contacts())
	}

	// A friend or hang deleted elsewhere cannot stay on screen
	switch v := m.view.(type) {
	case nav.FriendDetail:
		if _, ok := snap.Contact(v.ID); !ok {
			m.goHome()
			m.status = "Friend no longer exists"
		}
	case nav.EditFriend:
		if _, ok := snap.Contact(v.ID); !ok {
			m.goHome()
			m.status = "Friend no longer exists"
		}
	case nav.EditHang:
		if _, ok := snap.Hang(v.ID); !ok {
			m.goHome()
			m.status = "Hang no longer exists"
		}
	}
	m.selected = m.ensureValidSelection()
}

func (m Model) contact(id string) (db.Contact, bool) {
	if m.snap == nil {
		return db.Contact{}, false
	}
	return m.snap.Contact(id)
}

func (m Model) hang(id string) (db.Hang, bool) {
	if m.snap == nil {
		return db.Hang{}, false
	}
	return m.snap.Hang(id)
}

func (m Model) tags() []db.Tag {
	if m.snap == nil {
		return nil
	}
	return m.snap.Tags
}

// contacts returns every friend sorted by name, for pickers
func (m Model) contacts() []db.Contact {
	if m.snap == nil {
		return nil
	}
	out := make([]db.Contact, len(m.snap.Contacts))
	copy(out, m.snap.Contacts)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(cadence.FullName(out[i])) < strings.ToLower(cadence.FullName(out[j]))
	})
	return out
}

// friendsOf resolves a hang's friend ids, skipping deleted friends
func (m Model) friendsOf(h db.Hang) []db.Contact {
	var out []db.Contact
	for _, id := range h.FriendIDs {
		if c, ok := m.contact(id); ok {
			out = append(out, c)
		}
	}
	return out
}

func (m Model) tagCreator() autocomplete.AddNewFunc[db.Tag] {
	store := m.store
	return func(ctx context.Context, text string) (db.Tag, bool, error) {
		text = strings.TrimSpace(text)
		if text == "" {
			return db.Tag{}, false, nil
		}
		tag, err := store.CreateTag(ctx, text)
		if err != nil {
			return db.Tag{}, false, err
		}
		return *tag, true, nil
	}
}

// createTag runs the widget's creation callback off the update loop
func (m Model) createTag(form *friendForm, create func(context.Context) (db.Tag, bool, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		tag, ok, err := create(ctx)
		return tagCreatedMsg{form: form, tag: tag, ok: ok, err: err}
	}
}

func appendTag(tags []db.Tag, tag db.Tag) []db.Tag {
	for _, t := range tags {
		if t.ID == tag.ID {
			return tags
		}
	}
	out := make([]db.Tag, 0, len(tags)+1)
	out = append(out, tags...)
	return append(out, tag)
}

// describeError turns a store error into one status line
func describeError(err error) string {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		if details, ok := domainErr.Details.(map[string]string); ok && len(details) > 0 {
			fields := make([]string, 0, len(details))
			for field := range details {
				fields = append(fields, field)
			}
			sort.Strings(fields)
			parts := make([]string, 0, len(fields))
			for _, field := range fields {
				parts = append(parts, field+" "+details[field])
			}
			return strings.Join(parts, "; ")
		}
		return domainErr.Message
	}
	return err.Error()
}

// View renders the current screen
func (m Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err)
	}

	if m.width == 0 || m.height == 0 || m.snap == nil {
		return "Loading..."
	}

	if m.confirm != nil {
		return m.renderConfirmation()
	}

	switch m.view.(type) {
	case nav.AddFriend, nav.EditFriend:
		if m.friendForm != nil {
			return centered(m.width, m.height, m.friendForm.View(m.view.Title()))
		}
	case nav.RecordHang, nav.EditHang:
		if m.hangForm != nil {
			return centered(m.width, m.height, m.hangForm.View(m.view.Title()))
		}
	case nav.FriendDetail:
		return lipgloss.JoinVertical(lipgloss.Left,
			borderStyle.Width(m.width-2).Height(m.height-3).Render(m.renderFriendPage(m.width-2, m.height-3)),
			m.renderHelp(),
		)
	}

	// Calculate pane widths
	listWidth := m.width / 3
	detailWidth := m.width - listWidth - 3

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		borderStyle.Width(listWidth).Height(m.height-3).Render(m.renderList(listWidth, m.height-3)),
		borderStyle.Width(detailWidth).Height(m.height-3).Render(m.renderPreview(detailWidth)),
	)
	return lipgloss.JoinVertical(lipgloss.Left, content, m.renderHelp())
}

// renderHelp renders the help line
func (m Model) renderHelp() string {
	if m.status != "" {
		return " " + errorStyle.Render(m.status)
	}

	switch m.view.(type) {
	case nav.FriendDetail:
		help := " j/k: hangs • enter: edit hang • e: edit • h: record hang • d: delete friend • x: delete hang"
		if nav.CanGoBack(m.history) {
			help += " • esc: back"
		}
		if nav.ShowHome(m.history) {
			help += " • g: home"
		}
		return help
	case nav.FriendList:
		if m.searching {
			return " Type to filter • #: tag • ↑/↓: suggestions • enter: pick/done • esc: done"
		}
		help := " j/k: navigate • enter: open • /: search • a: add • h: record hang • e: edit"
		if m.search.ac.Value() != "" || len(m.search.ac.Selected()) > 0 {
			help += " • esc: clear search"
		}
		return help + " • q: quit"
	}
	return ""
}

// renderConfirmation renders a y/n prompt
func (m Model) renderConfirmation() string {
	width := 60
	height := 7

	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-4).
		Align(lipgloss.Center, lipgloss.Center).
		Render(m.confirm.prompt + " (y/n)")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Width(width).
		Height(height).
		Render(content)

	return centered(m.width, m.height, box)
}

// wrapText wraps text to width display cells. Existing line breaks are kept.
func wrapText(text string, width int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if width <= 0 {
		return []string{text}
	}
	return strings.Split(wordwrap.String(text, width), "\n")
}
