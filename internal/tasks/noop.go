package tasks

import (
	"context"
	"errors"
)

// ErrNoBackend means reminders cannot be written anywhere
var ErrNoBackend = errors.New("no task backend available")

// NoopBackend stands in when neither taskwarrior nor dstask is installed.
// It reports no pending tasks and refuses writes.
type NoopBackend struct{}

func NewNoopBackend() Backend {
	return &NoopBackend{}
}

func (n *NoopBackend) Name() string    { return "noop" }
func (n *NoopBackend) IsEnabled() bool { return false }

func (n *NoopBackend) CreateReminder(context.Context, Reminder) error {
	return ErrNoBackend
}

func (n *NoopBackend) FriendTasks(context.Context, string) ([]Task, error) {
	return nil, nil
}

func (n *NoopBackend) CompleteTask(context.Context, string, string) error {
	return ErrNoBackend
}

func init() {
	Register("noop", NewNoopBackend)
}
