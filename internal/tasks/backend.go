package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Task represents a task in any backend system
type Task struct {
	ID          string // Backend-specific ID (int as string, UUID, etc.)
	Description string
	Status      string
	Tags        []string
	Created     time.Time
	Due         *time.Time
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// Reminder asks the task manager to nudge the user about a friend
type Reminder struct {
	FriendID    string
	FriendName  string
	DaysOverdue int
	// NeverMet is set for friends with a cadence and no hangs yet
	NeverMet bool
	Due      time.Time
}

// Description is the task text
func (r Reminder) Description() string {
	switch {
	case r.NeverMet:
		return fmt.Sprintf("Hang out with %s (never met up)", r.FriendName)
	case r.DaysOverdue == 1:
		return fmt.Sprintf("Hang out with %s (1 day overdue)", r.FriendName)
	default:
		return fmt.Sprintf("Hang out with %s (%d days overdue)", r.FriendName, r.DaysOverdue)
	}
}

// Tag links tasks back to a friend
func (r Reminder) Tag() string {
	return FriendTag(r.FriendID)
}

var tagUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// FriendTag is the task tag used for a friend. Task managers are picky about
// tag characters, so only letters, digits and underscores survive.
func FriendTag(friendID string) string {
	return "hangs_" + tagUnsafe.ReplaceAllString(strings.TrimPrefix(friendID, "friend-"), "_")
}

// Backend defines the interface that all task management backends implement
type Backend interface {
	// Name returns the backend identifier (e.g., "taskwarrior", "dstask")
	Name() string

	// IsEnabled checks if the backend is available and properly configured
	IsEnabled() bool

	// CreateReminder creates a task reminding the user to see a friend
	CreateReminder(ctx context.Context, r Reminder) error

	// FriendTasks returns pending tasks tagged for a friend
	FriendTasks(ctx context.Context, friendID string) ([]Task, error)

	// CompleteTask marks a task as completed, optionally with a note
	CompleteTask(ctx context.Context, taskID string, completionNote string) error
}

// BackendFactory is a function that creates a new instance of a Backend
type BackendFactory func() Backend
