package cadence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdxmph/hangs-tui/internal/db"
)

func TestFilterByQuery(t *testing.T) {
	contacts := []db.Contact{
		friend("Maria", "Lopez", nil),
		friend("Mark", "", nil),
		friend("Lou", "Reed", nil),
	}
	assert.Equal(t, []string{"Maria Lopez", "Mark"}, names(FilterByQuery(contacts, "MAR")))
	assert.Equal(t, []string{"Maria Lopez", "Lou Reed"}, names(FilterByQuery(contacts, "lo")))
	assert.Len(t, FilterByQuery(contacts, "  "), 3)
}

func TestFilterByTags(t *testing.T) {
	work := db.Tag{ID: "t1", Name: "work"}
	climbing := db.Tag{ID: "t2", Name: "climbing"}

	a := friend("A", "", nil)
	a.Tags = []db.Tag{work, climbing}
	b := friend("B", "", nil)
	b.Tags = []db.Tag{work}
	c := friend("C", "", nil)

	contacts := []db.Contact{a, b, c}
	assert.Equal(t, []string{"A", "B"}, names(FilterByTags(contacts, []db.Tag{work})))
	assert.Equal(t, []string{"A"}, names(FilterByTags(contacts, []db.Tag{work, climbing})))
	assert.Len(t, FilterByTags(contacts, nil), 3)

	// Tags match by name, not id.
	dup := db.Tag{ID: "other", Name: "work"}
	assert.Equal(t, []string{"A", "B"}, names(FilterByTags(contacts, []db.Tag{dup})))

	assert.Equal(t, []string{"A"}, names(FilterByQueryAndTags(contacts, "a", []db.Tag{work})))
}

func TestSortHangsAndTags(t *testing.T) {
	hangs := []db.Hang{
		{ID: "old", DateContacted: daysAgo(30)},
		{ID: "new", DateContacted: daysAgo(1)},
		{ID: "mid", DateContacted: daysAgo(10)},
	}
	SortHangsByRecency(hangs)
	assert.Equal(t, "new", hangs[0].ID)
	assert.Equal(t, "old", hangs[2].ID)

	tags := []db.Tag{{Name: "work"}, {Name: "book club"}, {Name: "family"}}
	SortTags(tags)
	assert.Equal(t, "book club", tags[0].Name)
	assert.Equal(t, "work", tags[2].Name)
}
