package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
)

// Preference is the order NewManager tries backends in when none is named
var Preference = []string{"taskwarrior", "dstask", "noop"}

// Manager handles task backend selection and operations
type Manager struct {
	backend Backend
}

// NewManager creates a task manager with the named backend. An empty name
// picks the first enabled backend in Preference.
func NewManager(backendName string) (*Manager, error) {
	if backendName != "" {
		backend, err := CreateBackend(backendName)
		if err != nil {
			return nil, fmt.Errorf("creating backend %s: %w", backendName, err)
		}
		return &Manager{backend: backend}, nil
	}

	for _, name := range Preference {
		b, err := CreateBackend(name)
		if err != nil {
			continue
		}
		if b.IsEnabled() {
			return &Manager{backend: b}, nil
		}
	}
	return &Manager{backend: NewNoopBackend()}, nil
}

// NewManagerWith wraps an existing backend
func NewManagerWith(b Backend) *Manager {
	return &Manager{backend: b}
}

// Backend returns the current backend
func (m *Manager) Backend() Backend { return m.backend }

// Name returns the name of the current backend
func (m *Manager) Name() string { return m.backend.Name() }

// IsEnabled returns whether the current backend is enabled
func (m *Manager) IsEnabled() bool { return m.backend.IsEnabled() }

// RemindResult summarises a Remind run
type RemindResult struct {
	Created []Reminder
	// Skipped friends already have a pending reminder
	Skipped []string
}

// Reminders lists the reminders due for contacts: everyone past their
// cadence, plus friends with a cadence who have never been seen. The order
// follows cadence ranking.
func Reminders(contacts []db.Contact, now time.Time) ([]Reminder, error) {
	ranked, err := cadence.Ranked(contacts, now)
	if err != nil {
		return nil, err
	}

	var out []Reminder
	for _, c := range ranked {
		if c.MaxTimeBetweenContact == nil {
			continue
		}
		days, ok, err := cadence.DaysOverdue(c, now)
		if err != nil {
			return nil, err
		}
		if ok && days <= 0 {
			continue
		}
		out = append(out, Reminder{
			FriendID:    c.ID,
			FriendName:  cadence.FullName(c),
			DaysOverdue: days,
			NeverMet:    !ok,
			Due:         now,
		})
	}
	return out, nil
}

// Remind creates a task for every overdue friend that does not already have
// a pending one.
func (m *Manager) Remind(ctx context.Context, contacts []db.Contact, now time.Time) (*RemindResult, error) {
	if !m.backend.IsEnabled() {
		return nil, fmt.Errorf("%s: %w", m.backend.Name(), ErrNoBackend)
	}
	due, err := Reminders(contacts, now)
	if err != nil {
		return nil, err
	}

	res := &RemindResult{}
	for _, r := range due {
		pending, err := m.backend.FriendTasks(ctx, r.FriendID)
		if err != nil {
			return res, fmt.Errorf("checking tasks for %s: %w", r.FriendName, err)
		}
		if len(pending) > 0 {
			res.Skipped = append(res.Skipped, r.FriendName)
			continue
		}
		if err := m.backend.CreateReminder(ctx, r); err != nil {
			return res, fmt.Errorf("creating reminder for %s: %w", r.FriendName, err)
		}
		res.Created = append(res.Created, r)
	}
	return res, nil
}
