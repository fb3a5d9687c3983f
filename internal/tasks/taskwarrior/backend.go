package taskwarrior

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pdxmph/hangs-tui/internal/tasks"
)

// exportTime is the timestamp layout of `task export`
const exportTime = "20060102T150405Z"

// taskWarriorTask represents a TaskWarrior task in its native format
type taskWarriorTask struct {
	ID          int      `json:"id"`
	UUID        string   `json:"uuid"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Tags        []string `json:"tags"`
	Entry       string   `json:"entry"`
	Due         string   `json:"due,omitempty"`
}

// Backend implements tasks.Backend by shelling out to `task`
type Backend struct {
	run     tasks.Runner
	enabled bool
}

// NewBackend creates a TaskWarrior backend using the real `task` binary
func NewBackend() tasks.Backend {
	return NewBackendWith(tasks.ExecRunner)
}

// NewBackendWith creates a backend that runs commands through run
func NewBackendWith(run tasks.Runner) *Backend {
	_, err := run(context.Background(), "task", "version")
	return &Backend{run: run, enabled: err == nil}
}

func (b *Backend) Name() string { return "taskwarrior" }

// IsEnabled returns whether `task` answered the version probe
func (b *Backend) IsEnabled() bool { return b.enabled }

// CreateReminder adds a task tagged +hangs and with the friend's tag
func (b *Backend) CreateReminder(ctx context.Context, r tasks.Reminder) error {
	if !b.enabled {
		return fmt.Errorf("TaskWarrior not available")
	}

	args := []string{"add", r.Description(), "+hangs", "+" + r.Tag()}
	if !r.Due.IsZero() {
		args = append(args, "due:"+r.Due.Format("2006-01-02"))
	}
	if _, err := b.run(ctx, "task", args...); err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

// FriendTasks returns pending tasks carrying the friend's tag
func (b *Backend) FriendTasks(ctx context.Context, friendID string) ([]tasks.Task, error) {
	if !b.enabled {
		return nil, fmt.Errorf("TaskWarrior not available")
	}

	args := []string{"+" + tasks.FriendTag(friendID), "status:pending", "export"}
	output, err := b.run(ctx, "task", args...)
	if err != nil {
		if strings.Contains(string(output), "No matching tasks") {
			return []tasks.Task{}, nil
		}
		return nil, fmt.Errorf("getting tasks with command 'task %s': %w", strings.Join(args, " "), err)
	}

	var twTasks []taskWarriorTask
	if len(strings.TrimSpace(string(output))) > 0 {
		if err := json.Unmarshal(output, &twTasks); err != nil {
			return nil, fmt.Errorf("parsing task JSON: %w", err)
		}
	}

	out := make([]tasks.Task, len(twTasks))
	for i, t := range twTasks {
		out[i] = convertToGenericTask(t)
	}
	return out, nil
}

// CompleteTask annotates the task with the note, if any, then marks it done
func (b *Backend) CompleteTask(ctx context.Context, taskID string, completionNote string) error {
	if !b.enabled {
		return fmt.Errorf("TaskWarrior not available")
	}

	if completionNote != "" {
		if _, err := b.run(ctx, "task", taskID, "annotate", completionNote); err != nil {
			return fmt.Errorf("adding annotation: %w", err)
		}
	}
	if _, err := b.run(ctx, "task", taskID, "done"); err != nil {
		return fmt.Errorf("completing task: %w", err)
	}
	return nil
}

func convertToGenericTask(t taskWarriorTask) tasks.Task {
	task := tasks.Task{
		ID:          t.UUID,
		Description: t.Description,
		Status:      t.Status,
		Tags:        t.Tags,
		Metadata: map[string]any{
			"taskwarrior_id": t.ID,
		},
	}
	if ts, err := time.Parse(exportTime, t.Entry); err == nil {
		task.Created = ts
	}
	if t.Due != "" {
		if ts, err := time.Parse(exportTime, t.Due); err == nil {
			task.Due = &ts
		}
	}
	return task
}

func init() {
	tasks.Register("taskwarrior", func() tasks.Backend { return NewBackend() })
}
