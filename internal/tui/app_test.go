package tui

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/hangs-tui/internal/db"
	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/nav"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu   sync.Mutex
	snap *db.Snapshot
	ch   chan *db.Snapshot

	createdContacts []db.ContactInput
	updatedContacts map[string]db.ContactPatch
	deletedContacts []string
	createdHangs    []db.HangInput
	deletedHangs    []string
	createdTags     []string
	tagErr          error
}

func newFakeStore(snap *db.Snapshot) *fakeStore {
	return &fakeStore{snap: snap, ch: make(chan *db.Snapshot, 1), updatedContacts: map[string]db.ContactPatch{}}
}

func (s *fakeStore) Subscribe(ctx context.Context) (<-chan *db.Snapshot, error) {
	s.ch <- s.snap
	return s.ch, nil
}

func (s *fakeStore) CreateContact(ctx context.Context, in db.ContactInput) (*db.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if in.FirstName == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"first_name": "is required"})
	}
	s.createdContacts = append(s.createdContacts, in)
	return &db.Contact{ID: "friend-new", FirstName: in.FirstName}, nil
}

func (s *fakeStore) UpdateContact(ctx context.Context, id string, patch db.ContactPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedContacts[id] = patch
	return nil
}

func (s *fakeStore) DeleteContact(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedContacts = append(s.deletedContacts, id)
	return nil
}

func (s *fakeStore) CreateHang(ctx context.Context, in db.HangInput) (*db.Hang, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createdHangs = append(s.createdHangs, in)
	return &db.Hang{ID: "hang-new", DateContacted: in.DateContacted, FriendIDs: in.FriendIDs}, nil
}

func (s *fakeStore) UpdateHang(ctx context.Context, id string, patch db.HangPatch) error {
	return nil
}

func (s *fakeStore) DeleteHang(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletedHangs = append(s.deletedHangs, id)
	return nil
}

func (s *fakeStore) CreateTag(ctx context.Context, name string) (*db.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tagErr != nil {
		return nil, s.tagErr
	}
	s.createdTags = append(s.createdTags, name)
	return &db.Tag{ID: "tag-" + name, Name: name}, nil
}

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

// testSnapshot: Alice is 13 days overdue, Carol is within her month, Bob has
// no goal.
func testSnapshot() *db.Snapshot {
	work := db.Tag{ID: "tag-work", Name: "work"}
	family := db.Tag{ID: "tag-family", Name: "family"}

	hangAlice := db.Hang{ID: "hang-1", DateContacted: daysAgo(20), FriendIDs: []string{"friend-alice"}}
	hangBob := db.Hang{ID: "hang-2", DateContacted: daysAgo(3), FriendIDs: []string{"friend-bob", "friend-carol"}}

	alice := db.Contact{
		ID:                    "friend-alice",
		FirstName:             "Alice",
		LastName:              db.NewNullString("Anders"),
		MaxTimeBetweenContact: &db.HangFrequency{Amount: 1, Unit: db.UnitWeek},
		TagIDs:                []string{work.ID},
		Tags:                  []db.Tag{work},
		Hangs:                 []db.Hang{hangAlice},
	}
	bob := db.Contact{
		ID:        "friend-bob",
		FirstName: "Bob",
		TagIDs:    []string{family.ID},
		Tags:      []db.Tag{family},
		Hangs:     []db.Hang{hangBob},
	}
	carol := db.Contact{
		ID:                    "friend-carol",
		FirstName:             "Carol",
		MaxTimeBetweenContact: &db.HangFrequency{Amount: 1, Unit: db.UnitMonth},
		TagIDs:                []string{work.ID},
		Tags:                  []db.Tag{work},
		Hangs:                 []db.Hang{hangBob},
	}

	return &db.Snapshot{
		Contacts: []db.Contact{bob, carol, alice},
		Tags:     []db.Tag{family, work},
		Hangs:    []db.Hang{hangBob, hangAlice},
		TakenAt:  testNow,
	}
}

func setup(t *testing.T) (Model, *fakeStore) {
	t.Helper()
	store := newFakeStore(testSnapshot())
	m, err := New(context.Background(), store, Options{Now: func() time.Time { return testNow }})
	require.NoError(t, err)

	model := *m
	msg := model.Init()()
	model = update(t, model, msg)
	model = update(t, model, tea.WindowSizeMsg{Width: 120, Height: 40})
	return model, store
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// press sends keys and returns the last command
func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func names(friends []db.Contact) []string {
	var out []string
	for _, c := range friends {
		out = append(out, c.FirstName)
	}
	return out
}

func TestListIsRankedByUrgency(t *testing.T) {
	m, _ := setup(t)

	assert.Equal(t, []string{"Alice", "Carol", "Bob"}, names(m.visibleFriends()))
	assert.Contains(t, m.View(), "Friends (3)")
	assert.Contains(t, m.View(), "[1 overdue]")
}

func TestSearchByName(t *testing.T) {
	m, _ := setup(t)

	m, _ = press(t, m, "/", "car")
	assert.True(t, m.searching)
	assert.Equal(t, []string{"Carol"}, names(m.visibleFriends()))

	m, _ = press(t, m, "enter")
	assert.False(t, m.searching)
	assert.Equal(t, []string{"Carol"}, names(m.visibleFriends()))

	m, _ = press(t, m, "esc")
	assert.Len(t, m.visibleFriends(), 3)
}

func TestSearchByTag(t *testing.T) {
	m, _ := setup(t)

	m, _ = press(t, m, "/", "#wo")
	require.True(t, m.search.ac.ShowOptions())
	assert.Equal(t, []string{"work"}, tagNames(m.search.ac.Matches()))

	m, _ = press(t, m, "enter")
	assert.True(t, m.searching, "picking a tag keeps the search open")
	assert.Equal(t, []string{"work"}, tagNames(m.search.ac.Selected()))
	assert.Equal(t, []string{"Alice", "Carol"}, names(m.visibleFriends()))

	t.Run("escape keeps the filter", func(t *testing.T) {
		m, _ := press(t, m, "esc")
		assert.False(t, m.searching)
		assert.Equal(t, []string{"work"}, tagNames(m.search.ac.Selected()))
	})

	t.Run("backspace drops the tag", func(t *testing.T) {
		m, _ := press(t, m, "backspace")
		assert.Empty(t, m.search.ac.Selected())
		assert.Len(t, m.visibleFriends(), 3)
	})
}

func tagNames(tags []db.Tag) []string {
	var out []string
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}

func TestDetailNavigation(t *testing.T) {
	m, _ := setup(t)

	m, _ = press(t, m, "enter")
	assert.Equal(t, nav.FriendDetail{ID: "friend-alice"}, m.view)
	assert.Contains(t, m.View(), "13 days overdue")
	assert.Contains(t, m.renderHelp(), "esc: back")

	orphan := m
	orphan.history = nil
	assert.NotContains(t, orphan.renderHelp(), "esc: back")

	m, _ = press(t, m, "e")
	assert.Equal(t, nav.EditFriend{ID: "friend-alice"}, m.view)
	require.NotNil(t, m.friendForm)
	assert.Equal(t, "Alice", m.friendForm.first.Value())
	assert.Equal(t, "1", m.friendForm.amount.Value())
	assert.True(t, nav.ShowHome(m.history))

	m, _ = press(t, m, "esc")
	assert.Equal(t, nav.FriendDetail{ID: "friend-alice"}, m.view)
	assert.Nil(t, m.friendForm)

	m, _ = press(t, m, "esc")
	assert.Equal(t, nav.Home, m.view)
	assert.Empty(t, m.history)
}

func TestRecordHangFromDetail(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "enter", "h")
	require.NotNil(t, m.hangForm)
	assert.Equal(t, []string{"Alice"}, names(m.hangForm.friends.ac.Selected()))
	assert.Equal(t, hangFieldNotes, m.hangForm.field)

	m, _ = press(t, m, "dinner")
	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	require.Len(t, store.createdHangs, 1)
	got := store.createdHangs[0]
	assert.Equal(t, []string{"friend-alice"}, got.FriendIDs)
	assert.Equal(t, testNow, got.DateContacted)
	assert.Equal(t, "dinner", got.Notes)

	assert.Equal(t, nav.FriendDetail{ID: "friend-alice"}, m.view)
	assert.Equal(t, "Recorded hang", m.status)
}

func TestRecordHangPicksFriends(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "down", "down", "h")
	require.NotNil(t, m.hangForm)
	assert.Equal(t, []string{"Bob"}, names(m.hangForm.friends.ac.Selected()))

	m, _ = press(t, m, "shift+tab")
	assert.Equal(t, hangFieldFriends, m.hangForm.field)

	// "and" matches Alice's last name
	m, _ = press(t, m, "and")
	assert.Equal(t, []string{"Alice"}, names(m.hangForm.friends.ac.Matches()))
	m, _ = press(t, m, "enter")
	assert.Equal(t, []string{"Bob", "Alice"}, names(m.hangForm.friends.ac.Selected()))

	m, _ = press(t, m, "shift+tab")
	for i := 0; i < len(dateLayout); i++ {
		m, _ = press(t, m, "backspace")
	}
	m, _ = press(t, m, "2024-06-01")
	m, cmd := press(t, m, "ctrl+s")
	update(t, m, cmd())

	require.Len(t, store.createdHangs, 1)
	assert.Equal(t, []string{"friend-bob", "friend-alice"}, store.createdHangs[0].FriendIDs)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), store.createdHangs[0].DateContacted)
}

func TestHangFormRejectsBadDate(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "h", "shift+tab", "shift+tab", "backspace", "x")
	assert.Equal(t, hangFieldDate, m.hangForm.field)
	m, cmd := press(t, m, "ctrl+s")
	m = update(t, m, cmd())

	assert.Empty(t, store.createdHangs)
	assert.Equal(t, nav.RecordHang{}, m.view)
	assert.Contains(t, m.hangForm.err, "date_contacted")
}

func TestAddFriendWithNewTag(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "a", "Dana")
	require.NotNil(t, m.friendForm)
	m, _ = press(t, m, "tab", "tab", "tab", "tab", "2", "tab", "tab")
	assert.Equal(t, friendFieldTags, m.friendForm.field)

	m, _ = press(t, m, "climbing")
	assert.True(t, m.friendForm.tags.ac.OfferCreate())
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, []string{"climbing"}, store.createdTags)
	assert.Equal(t, []string{"climbing"}, tagNames(m.friendForm.tags.ac.Selected()))
	assert.Empty(t, m.friendForm.tags.input.Value())

	m, cmd = press(t, m, "ctrl+s")
	m = update(t, m, cmd())

	require.Len(t, store.createdContacts, 1)
	got := store.createdContacts[0]
	assert.Equal(t, "Dana", got.FirstName)
	assert.Equal(t, []string{"tag-climbing"}, got.TagIDs)
	require.NotNil(t, got.MaxTimeBetweenContact)
	assert.Equal(t, db.HangFrequency{Amount: 2, Unit: db.UnitWeek}, *got.MaxTimeBetweenContact)
	assert.Equal(t, nav.Home, m.view)
}

func TestTagCreationFailureLeavesFormAlone(t *testing.T) {
	m, store := setup(t)
	store.tagErr = fmt.Errorf("disk full")

	m, _ = press(t, m, "a", "tab", "tab", "tab", "tab", "tab", "tab", "climbing")
	m, cmd := press(t, m, "enter")
	m = update(t, m, cmd())

	assert.Empty(t, m.friendForm.tags.ac.Selected())
	assert.Equal(t, "climbing", m.friendForm.tags.input.Value())
	assert.Equal(t, "disk full", m.status)
}

func TestCreatedTagIgnoredAfterFormCloses(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "a", "tab", "tab", "tab", "tab", "tab", "tab", "climbing")
	m, cmd := press(t, m, "enter")
	require.NotNil(t, cmd)

	m, _ = press(t, m, "esc", "e")
	require.NotNil(t, m.friendForm)
	require.Equal(t, nav.EditFriend{ID: "friend-alice"}, m.view)

	m = update(t, m, cmd())
	assert.Equal(t, []string{"climbing"}, store.createdTags)
	assert.Equal(t, []string{"work"}, tagNames(m.friendForm.tags.ac.Selected()))
}

func TestAddFriendValidation(t *testing.T) {
	m, store := setup(t)

	m, cmd := press(t, m, "a", "ctrl+s")
	m = update(t, m, cmd())

	assert.Empty(t, store.createdContacts)
	assert.Equal(t, nav.AddFriend{}, m.view)
	assert.Equal(t, "first_name is required", m.friendForm.err)
}

func TestEditFriendClearsCadence(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "e", "tab", "tab", "tab", "tab", "backspace")
	assert.Empty(t, m.friendForm.amount.Value())
	m, cmd := press(t, m, "ctrl+s")
	update(t, m, cmd())

	patch, ok := store.updatedContacts["friend-alice"]
	require.True(t, ok)
	assert.True(t, patch.ClearMaxTime)
	assert.Nil(t, patch.MaxTimeBetweenContact)
	require.NotNil(t, patch.TagIDs)
	assert.Equal(t, []string{"tag-work"}, *patch.TagIDs)
}

func TestDeleteFriendAsksFirst(t *testing.T) {
	m, store := setup(t)

	m, _ = press(t, m, "enter", "d")
	require.NotNil(t, m.confirm)
	assert.Contains(t, m.View(), "Delete Alice Anders?")

	m, cmd := press(t, m, "n")
	assert.Nil(t, m.confirm)
	assert.Nil(t, cmd)

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	require.NotNil(t, cmd)
	m = update(t, m, cmd())

	assert.Equal(t, []string{"friend-alice"}, store.deletedContacts)
	assert.Equal(t, nav.Home, m.view)
}

func TestSnapshotWithoutViewedFriendGoesHome(t *testing.T) {
	m, _ := setup(t)
	m, _ = press(t, m, "enter")

	snap := testSnapshot()
	snap.Contacts = snap.Contacts[:2]
	m = update(t, m, snapshotMsg{snap: snap})

	assert.Equal(t, nav.Home, m.view)
	assert.Equal(t, "Friend no longer exists", m.status)
}

func TestWrapTextCountsCellsNotBytes(t *testing.T) {
	// "café crème" is ten cells but twelve bytes
	assert.Equal(t, []string{"café crème", "brûlée"}, wrapText("café crème brûlée", 11))
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two\nthree", 20))
	assert.Nil(t, wrapText("   ", 20))
	assert.Equal(t, []string{"no width"}, wrapText("no width", 0))
}

func TestDescribeError(t *testing.T) {
	err := domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"friend_ids":     "must have at least 1 item(s)",
		"date_contacted": "is required",
	})
	assert.Equal(t, "date_contacted is required; friend_ids must have at least 1 item(s)", describeError(err))
	assert.Equal(t, "friend not found", describeError(domainerrors.NotFoundf("friend not found")))
	assert.Equal(t, "boom", describeError(fmt.Errorf("boom")))
}
