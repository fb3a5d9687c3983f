package taskwarrior

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/hangs-tui/internal/tasks"
)

type call []string

type fakeTask struct {
	calls  []call
	output map[string]string
	fail   map[string]error
}

func (f *fakeTask) run(_ context.Context, name string, args ...string) ([]byte, error) {
	c := append(call{name}, args...)
	f.calls = append(f.calls, c)
	key := strings.Join(c, " ")
	return []byte(f.output[key]), f.fail[key]
}

func TestDisabledWhenTaskIsMissing(t *testing.T) {
	f := &fakeTask{fail: map[string]error{"task version": errors.New("not found")}}
	b := NewBackendWith(f.run)
	assert.False(t, b.IsEnabled())
	assert.Error(t, b.CreateReminder(context.Background(), tasks.Reminder{}))
}

func TestCreateReminder(t *testing.T) {
	f := &fakeTask{}
	b := NewBackendWith(f.run)
	require.True(t, b.IsEnabled())

	err := b.CreateReminder(context.Background(), tasks.Reminder{
		FriendID:    "friend-abc",
		FriendName:  "Alice Smith",
		DaysOverdue: 6,
		Due:         time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, call{"task", "add", "Hang out with Alice Smith (6 days overdue)", "+hangs", "+hangs_abc", "due:2024-06-15"}, f.calls[1])
}

func TestFriendTasks(t *testing.T) {
	f := &fakeTask{output: map[string]string{
		"task +hangs_abc status:pending export": `[{"id":3,"uuid":"u-1","description":"Hang out with Alice","status":"pending","tags":["hangs","hangs_abc"],"entry":"20240601T120000Z","due":"20240615T000000Z"}]`,
	}}
	b := NewBackendWith(f.run)

	got, err := b.FriendTasks(context.Background(), "friend-abc")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u-1", got[0].ID)
	assert.Equal(t, 3, got[0].Metadata["taskwarrior_id"])
	assert.Equal(t, time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC), got[0].Created)
	require.NotNil(t, got[0].Due)
}

func TestFriendTasksNoMatches(t *testing.T) {
	f := &fakeTask{
		output: map[string]string{"task +hangs_abc status:pending export": "No matching tasks."},
		fail:   map[string]error{"task +hangs_abc status:pending export": errors.New("exit status 1")},
	}
	got, err := NewBackendWith(f.run).FriendTasks(context.Background(), "friend-abc")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCompleteTask(t *testing.T) {
	f := &fakeTask{}
	b := NewBackendWith(f.run)
	require.NoError(t, b.CompleteTask(context.Background(), "u-1", "saw her at the market"))
	assert.Equal(t, []call{
		{"task", "version"},
		{"task", "u-1", "annotate", "saw her at the market"},
		{"task", "u-1", "done"},
	}, f.calls)
}
