package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/hangs-tui/internal/config"
	"github.com/pdxmph/hangs-tui/internal/db"
)

// run executes the root command with args, isolated from the user's config
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.EnvDatabase, "")
	t.Setenv(config.EnvLogLevel, "")
	t.Setenv(config.EnvAddr, "")

	cmd := NewRootCommand()
	var out, logs bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"init", "fixtures", "list", "serve", "remind", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{"config", "db", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hangs version "+Version)
	assert.Contains(t, out, "Go version:")
}

func TestInitCreatesDatabaseAndConfig(t *testing.T) {
	t.Setenv(config.EnvDatabase, "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "hangs.db")
	configPath := filepath.Join(dir, "config.toml")

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "--db", dbPath, "init"})
	require.NoError(t, cmd.Execute())

	assert.FileExists(t, dbPath)
	assert.FileExists(t, configPath)
	assert.Contains(t, out.String(), "Created database at "+dbPath)

	cfg, err := config.LoadFrom(configPath)
	require.NoError(t, err)
	assert.Equal(t, dbPath, cfg.Database.Path)

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := run(t, "--db", dbPath, "init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}

func TestListWithoutDatabase(t *testing.T) {
	_, err := run(t, "--db", filepath.Join(t.TempDir(), "missing.db"), "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hangs init")
}

func fixturesDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixtures.db")
	out, err := run(t, "fixtures", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created fixtures database")
	return path
}

func listJSON(t *testing.T, args ...string) []string {
	t.Helper()
	out, err := run(t, append(args, "--json")...)
	require.NoError(t, err)

	var rows []listedFriend
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func TestListFixtures(t *testing.T) {
	path := fixturesDB(t)

	t.Run("everyone", func(t *testing.T) {
		names := listJSON(t, "--db", path, "list")
		assert.Len(t, names, 12)
		// never met with a cadence outranks everyone
		assert.Equal(t, "David Kim", names[0])
	})

	t.Run("by tag", func(t *testing.T) {
		names := listJSON(t, "--db", path, "list", "--tag", "family")
		assert.ElementsMatch(t, []string{"Mom", "Alex Thompson"}, names)
	})

	t.Run("by tag and query", func(t *testing.T) {
		names := listJSON(t, "--db", path, "list", "-t", "close", "-q", "mar")
		assert.Equal(t, []string{"Marcus Williams"}, names)
	})

	t.Run("overdue", func(t *testing.T) {
		names := listJSON(t, "--db", path, "list", "--overdue")
		assert.Contains(t, names, "Marcus Williams")
		assert.NotContains(t, names, "Sarah Chen")
		assert.NotContains(t, names, "David Kim")
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "--db", path, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "Marcus Williams")
		assert.Contains(t, out, "days overdue")
		assert.Contains(t, out, "never")
	})
}

func TestRemindDryRun(t *testing.T) {
	path := fixturesDB(t)

	out, err := run(t, "--db", path, "remind", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Hang out with David Kim (never met up)")
	assert.Contains(t, out, "Hang out with Marcus Williams")
	assert.NotContains(t, out, "Sarah Chen")
}

func TestRemindWithoutBackend(t *testing.T) {
	path := fixturesDB(t)

	_, err := run(t, "--db", path, "remind", "--backend", "noop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--dry-run")
}

func TestPrintFriends(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	weekly := &db.HangFrequency{Amount: 1, Unit: db.UnitWeek}
	snap := &db.Snapshot{Contacts: []db.Contact{
		{ID: "b", FirstName: "Bob"},
		{
			ID:                    "a",
			FirstName:             "Alice",
			MaxTimeBetweenContact: weekly,
			Tags:                  []db.Tag{{ID: "t1", Name: "work"}},
			Hangs:                 []db.Hang{{ID: "h1", DateContacted: now.AddDate(0, 0, -10)}},
		},
	}}

	var out bytes.Buffer
	require.NoError(t, printFriends(&out, snap, &listOptions{json: true}, now))

	var rows []listedFriend
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, "one week", rows[0].HangEvery)
	assert.Equal(t, "2024-06-05", rows[0].LastHang)
	require.NotNil(t, rows[0].DaysOverdue)
	assert.Equal(t, 3, *rows[0].DaysOverdue)
	assert.Equal(t, []string{"work"}, rows[0].Tags)

	assert.Equal(t, "Bob", rows[1].Name)
	assert.Nil(t, rows[1].DaysOverdue)
	assert.Empty(t, rows[1].Tags)
}

func TestMain(m *testing.M) {
	// keep the real home directory out of reach
	home, err := os.MkdirTemp("", "hangs-cli-home")
	if err != nil {
		panic(err)
	}
	os.Setenv("HOME", home)
	code := m.Run()
	os.RemoveAll(home)
	os.Exit(code)
}
