package dstask

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdxmph/hangs-tui/internal/tasks"
)

// dstaskTask represents a dstask task in its native format
type dstaskTask struct {
	ID      int      `json:"id"`
	UUID    string   `json:"uuid"`
	Summary string   `json:"summary"`
	Status  string   `json:"status"`
	Tags    []string `json:"tags"`
	Created string   `json:"created"`
	Due     string   `json:"due,omitempty"`
}

// Backend implements tasks.Backend by shelling out to `dstask`
type Backend struct {
	run     tasks.Runner
	enabled bool
}

// NewBackend creates a dstask backend using the real binary
func NewBackend() tasks.Backend {
	return NewBackendWith(tasks.ExecRunner)
}

// NewBackendWith creates a backend that runs commands through run
func NewBackendWith(run tasks.Runner) *Backend {
	_, err := run(context.Background(), "dstask", "version")
	return &Backend{run: run, enabled: err == nil}
}

func (b *Backend) Name() string { return "dstask" }

func (b *Backend) IsEnabled() bool { return b.enabled }

// CreateReminder adds a task tagged +hangs and with the friend's tag
func (b *Backend) CreateReminder(ctx context.Context, r tasks.Reminder) error {
	if !b.enabled {
		return fmt.Errorf("dstask not available")
	}

	args := []string{"add", "+hangs", "+" + r.Tag(), "--", r.Description()}
	if _, err := b.run(ctx, "dstask", args...); err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// FriendTasks lists open tasks and keeps those with the friend's tag.
// dstask has no tag filter on show-open --json.
func (b *Backend) FriendTasks(ctx context.Context, friendID string) ([]tasks.Task, error) {
	if !b.enabled {
		return nil, fmt.Errorf("dstask not available")
	}

	output, err := b.run(ctx, "dstask", "show-open", "--json")
	if err != nil {
		return nil, fmt.Errorf("getting tasks: %w", err)
	}

	var all []dstaskTask
	if len(strings.TrimSpace(string(output))) > 0 {
		if err := json.Unmarshal(output, &all); err != nil {
			return nil, fmt.Errorf("parsing task JSON: %w", err)
		}
	}

	tag := tasks.FriendTag(friendID)
	var out []tasks.Task
	for _, t := range all {
		for _, have := range t.Tags {
			if have == tag {
				out = append(out, convertToGenericTask(t))
				break
			}
		}
	}
	return out, nil
}

// CompleteTask appends the note, if any, then resolves the task
func (b *Backend) CompleteTask(ctx context.Context, taskID string, completionNote string) error {
	if !b.enabled {
		return fmt.Errorf("dstask not available")
	}

	if completionNote != "" {
		// Notes are best effort; resolving is what matters.
		b.run(ctx, "dstask", taskID, "note", "Completion: "+completionNote)
	}
	if _, err := b.run(ctx, "dstask", taskID, "done"); err != nil {
		return fmt.Errorf("completing task: %w", err)
	}
	return nil
}

func convertToGenericTask(t dstaskTask) tasks.Task {
	task := tasks.Task{
		ID:          t.UUID,
		Description: t.Summary,
		Status:      t.Status,
		Tags:        t.Tags,
		Metadata: map[string]any{
			"dstask_id": t.ID,
		},
	}
	if ts, err := time.Parse(time.RFC3339, t.Created); err == nil {
		task.Created = ts
	}
	if ts, err := time.Parse(time.RFC3339, t.Due); err == nil && t.Due != "" {
		task.Due = &ts
	}
	return task
}

func init() {
	tasks.Register("dstask", func() tasks.Backend { return NewBackend() })
}
