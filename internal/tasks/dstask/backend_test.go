package dstask

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/hangs-tui/internal/tasks"
)

type fakeDstask struct {
	calls  [][]string
	output map[string]string
	fail   map[string]error
}

func (f *fakeDstask) run(_ context.Context, name string, args ...string) ([]byte, error) {
	c := append([]string{name}, args...)
	f.calls = append(f.calls, c)
	key := strings.Join(c, " ")
	return []byte(f.output[key]), f.fail[key]
}

func TestCreateReminder(t *testing.T) {
	f := &fakeDstask{}
	b := NewBackendWith(f.run)
	require.True(t, b.IsEnabled())

	require.NoError(t, b.CreateReminder(context.Background(), tasks.Reminder{
		FriendID:   "friend-xyz",
		FriendName: "Bob",
		NeverMet:   true,
	}))
	assert.Equal(t, []string{"dstask", "add", "+hangs", "+hangs_xyz", "--", "Hang out with Bob (never met up)"}, f.calls[1])
}

func TestFriendTasksFiltersByTag(t *testing.T) {
	f := &fakeDstask{output: map[string]string{
		"dstask show-open --json": `[
			{"id":1,"uuid":"a","summary":"Hang out with Bob","status":"pending","tags":["hangs","hangs_xyz"],"created":"2024-06-01T12:00:00Z"},
			{"id":2,"uuid":"b","summary":"Buy milk","status":"pending","tags":["errands"]}
		]`,
	}}
	got, err := NewBackendWith(f.run).FriendTasks(context.Background(), "friend-xyz")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[0].Due)
}

func TestCompleteTaskIgnoresNoteFailure(t *testing.T) {
	f := &fakeDstask{fail: map[string]error{"dstask 1 note Completion: done": errors.New("nope")}}
	b := NewBackendWith(f.run)
	require.NoError(t, b.CompleteTask(context.Background(), "1", "done"))
	assert.Equal(t, []string{"dstask", "1", "done"}, f.calls[len(f.calls)-1])
}

func TestDisabled(t *testing.T) {
	f := &fakeDstask{fail: map[string]error{"dstask version": errors.New("missing")}}
	b := NewBackendWith(f.run)
	assert.False(t, b.IsEnabled())
	_, err := b.FriendTasks(context.Background(), "friend-1")
	assert.Error(t, err)
}
