package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/hangs-tui/internal/db"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	*Server
	db *db.DB
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServer(t, testNow, nil)
}

// newTestServer serves a fresh database with a fixed clock. wrap, when set,
// puts a store in front of the database.
func newTestServer(t *testing.T, now time.Time, wrap func(*db.DB) Store) *testServer {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hangs.db")
	require.NoError(t, db.Initialize(path))
	database, err := db.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	var store Store = database
	if wrap != nil {
		store = wrap(database)
	}
	s := NewServer(store, Options{
		AllowedOrigins: []string{"http://localhost:*"},
		Now:            func() time.Time { return now },
	})
	return &testServer{Server: s, db: database}
}

type envelope struct {
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
	Success bool              `json:"success"`
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", decodeData[map[string]string](t, env)["status"])
}

func TestCreateFriendWithTag(t *testing.T) {
	ts := setupTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/tags", map[string]string{"name": "work"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tag := decodeData[TagResponse](t, env)
	assert.Equal(t, "work", tag.Name)
	assert.NotEmpty(t, tag.Color)
	assert.Empty(t, tag.FriendIDs)

	rec, env = ts.do(t, http.MethodPost, "/api/friends", map[string]any{
		"first_name":               "Alice",
		"last_name":                "Smith",
		"max_time_between_contact": map[string]any{"amount": 2, "unit": "week"},
		"tag_ids":                  []string{tag.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)

	friend := decodeData[FriendResponse](t, env)
	assert.Equal(t, "Alice Smith", friend.FullName)
	assert.Equal(t, "two weeks", friend.HangEvery)
	require.Len(t, friend.Tags, 1)
	assert.Equal(t, tag.ID, friend.Tags[0].ID)
	assert.Equal(t, tag.Color, friend.Tags[0].Color)
	assert.False(t, friend.Overdue)
	assert.Nil(t, friend.LastHang)
	assert.Empty(t, friend.Meetings)

	rec, env = ts.do(t, http.MethodGet, "/api/tags", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tags := decodeData[[]TagResponse](t, env)
	require.Len(t, tags, 1)
	assert.Equal(t, []string{friend.ID}, tags[0].FriendIDs)
}

func TestCreateFriendValidation(t *testing.T) {
	ts := setupTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/friends", map[string]any{
		"max_time_between_contact": map[string]any{"amount": 0, "unit": "fortnight"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "first_name")
	assert.Contains(t, env.Details, "max_time_between_contact.amount")
	assert.Contains(t, env.Details, "max_time_between_contact.unit")
}

func TestRejectsMalformedBodies(t *testing.T) {
	ts := setupTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/friends", `{"first_name": "Al", "nickname": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Error, "invalid request body")

	rec, _ = ts.do(t, http.MethodPost, "/api/hangs", `{"date_contacted": "last tuesday", "friend_ids": ["x"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// seed creates Alice (weekly, last seen 14 days ago, tagged work) and Bob
// (no goal, seen 2 days ago).
func seed(t *testing.T, ts *testServer) (alice, bob FriendResponse) {
	t.Helper()

	_, env := ts.do(t, http.MethodPost, "/api/tags", map[string]string{"name": "work"})
	work := decodeData[TagResponse](t, env)

	_, env = ts.do(t, http.MethodPost, "/api/friends", map[string]any{
		"first_name":               "Alice",
		"max_time_between_contact": map[string]any{"amount": 1, "unit": "week"},
		"tag_ids":                  []string{work.ID},
	})
	alice = decodeData[FriendResponse](t, env)

	_, env = ts.do(t, http.MethodPost, "/api/friends", map[string]any{"first_name": "Bob"})
	bob = decodeData[FriendResponse](t, env)

	rec, env := ts.do(t, http.MethodPost, "/api/hangs", map[string]any{
		"date_contacted": "2024-06-01",
		"friend_ids":     []string{alice.ID},
		"notes":          "coffee",
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)

	rec, env = ts.do(t, http.MethodPost, "/api/hangs", map[string]any{
		"date_contacted": "2024-06-13T18:00:00Z",
		"friend_ids":     []string{bob.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	return alice, bob
}

func names(friends []FriendResponse) []string {
	var out []string
	for _, f := range friends {
		out = append(out, f.FirstName)
	}
	return out
}

func TestListFriendsRankedAndFiltered(t *testing.T) {
	ts := setupTestServer(t)
	seed(t, ts)

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"ranked", "/api/friends", []string{"Alice", "Bob"}},
		{"by name", "/api/friends?q=BO", []string{"Bob"}},
		{"by tag", "/api/friends?tag=work", []string{"Alice"}},
		{"unknown tag", "/api/friends?tag=nope", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := ts.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, names(decodeData[[]FriendResponse](t, env)))
		})
	}

	_, env := ts.do(t, http.MethodGet, "/api/friends", nil)
	friends := decodeData[[]FriendResponse](t, env)
	require.NotNil(t, friends[0].DaysOverdue)
	assert.Equal(t, 7, *friends[0].DaysOverdue)
	assert.True(t, friends[0].Overdue)
	assert.Nil(t, friends[1].DaysOverdue)
}

func TestGetFriend(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := seed(t, ts)

	rec, env := ts.do(t, http.MethodGet, "/api/friends/"+alice.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeData[FriendResponse](t, env)
	require.Len(t, got.Meetings, 1)
	assert.Equal(t, "coffee", got.Meetings[0].Notes)
	require.NotNil(t, got.LastHang)
	assert.Equal(t, "2024-06-01", got.LastHang.UTC().Format(time.DateOnly))

	rec, env = ts.do(t, http.MethodGet, "/api/friends/friend-missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestUpdateAndDeleteFriend(t *testing.T) {
	ts := setupTestServer(t)
	alice, _ := seed(t, ts)

	rec, env := ts.do(t, http.MethodPatch, "/api/friends/"+alice.ID, map[string]any{
		"last_name":                      "Anders",
		"clear_max_time_between_contact": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	got := decodeData[FriendResponse](t, env)
	assert.Equal(t, "Alice Anders", got.FullName)
	assert.Nil(t, got.MaxTimeBetweenContact)

	rec, _ = ts.do(t, http.MethodDelete, "/api/friends/"+alice.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = ts.do(t, http.MethodPatch, "/api/friends/"+alice.ID, map[string]any{"last_name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// hangs outlive the friend
	_, env = ts.do(t, http.MethodGet, "/api/hangs?friend="+alice.ID, nil)
	assert.Len(t, decodeData[[]HangResponse](t, env), 1)
}

func TestHangLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	alice, bob := seed(t, ts)

	_, env := ts.do(t, http.MethodGet, "/api/hangs", nil)
	hangs := decodeData[[]HangResponse](t, env)
	require.Len(t, hangs, 2)
	assert.Equal(t, []string{bob.ID}, hangs[0].FriendIDs, "newest first")

	rec, env := ts.do(t, http.MethodPatch, "/api/hangs/"+hangs[0].ID, map[string]any{
		"friend_ids": []string{bob.ID, alice.ID},
		"notes":      "dinner",
	})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)
	updated := decodeData[HangResponse](t, env)
	assert.ElementsMatch(t, []string{bob.ID, alice.ID}, updated.FriendIDs)
	assert.Equal(t, "dinner", updated.Notes)

	rec, env = ts.do(t, http.MethodPatch, "/api/hangs/"+hangs[0].ID, map[string]any{"friend_ids": []string{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Details, "friend_ids")

	rec, _ = ts.do(t, http.MethodDelete, "/api/hangs/"+hangs[0].ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec, _ = ts.do(t, http.MethodDelete, "/api/hangs/"+hangs[0].ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlainHangDatesUseTheClockZone(t *testing.T) {
	pacific := time.FixedZone("PDT", -7*60*60)
	ts := newTestServer(t, time.Date(2024, time.June, 15, 10, 0, 0, 0, pacific), nil)

	_, env := ts.do(t, http.MethodPost, "/api/friends", map[string]any{
		"first_name":               "Alice",
		"max_time_between_contact": map[string]any{"amount": 1, "unit": "week"},
	})
	alice := decodeData[FriendResponse](t, env)

	rec, env := ts.do(t, http.MethodPost, "/api/hangs", map[string]any{
		"date_contacted": "2024-06-14",
		"friend_ids":     []string{alice.ID},
	})
	require.Equal(t, http.StatusCreated, rec.Code, env.Error)
	hang := decodeData[HangResponse](t, env)

	_, env = ts.do(t, http.MethodGet, "/api/friends/"+alice.ID, nil)
	got := decodeData[FriendResponse](t, env)
	require.NotNil(t, got.LastHang)
	assert.Equal(t, "2024-06-14 00:00", got.LastHang.In(pacific).Format("2006-01-02 15:04"))
	require.NotNil(t, got.DaysOverdue)
	assert.Equal(t, 1-7, *got.DaysOverdue)

	rec, env = ts.do(t, http.MethodPatch, "/api/hangs/"+hang.ID, map[string]any{"date_contacted": "2024-06-10"})
	require.Equal(t, http.StatusOK, rec.Code, env.Error)

	_, env = ts.do(t, http.MethodGet, "/api/friends/"+alice.ID, nil)
	got = decodeData[FriendResponse](t, env)
	require.NotNil(t, got.DaysOverdue)
	assert.Equal(t, 5-7, *got.DaysOverdue)
}

// vanishingStore deletes a hang right after updating it, as a concurrent
// client would.
type vanishingStore struct {
	*db.DB
}

func (s vanishingStore) UpdateHang(ctx context.Context, id string, patch db.HangPatch) error {
	if err := s.DB.UpdateHang(ctx, id, patch); err != nil {
		return err
	}
	return s.DB.DeleteHang(ctx, id)
}

func TestUpdateHangDeletedConcurrently(t *testing.T) {
	ts := newTestServer(t, testNow, func(d *db.DB) Store { return vanishingStore{d} })
	_, bob := seed(t, ts)

	_, env := ts.do(t, http.MethodGet, "/api/hangs?friend="+bob.ID, nil)
	hangs := decodeData[[]HangResponse](t, env)
	require.Len(t, hangs, 1)

	rec, env := ts.do(t, http.MethodPatch, "/api/hangs/"+hangs[0].ID, map[string]any{"notes": "late"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/friends", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthCheckFailure(t *testing.T) {
	ts := setupTestServer(t)
	require.NoError(t, ts.db.Close())

	rec, env := ts.do(t, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "database unavailable", env.Error)
}

