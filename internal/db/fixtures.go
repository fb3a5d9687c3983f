package db

import (
	"context"
	"fmt"
	"time"
)

type fixtureFriend struct {
	first, last, relation string
	longDistance          bool
	every                 *HangFrequency
	tags                  []string
	// days ago of each one-on-one hang; shared hangs are in groupHangs
	hangsAgo []int
}

func every(n int, unit TimeUnit) *HangFrequency {
	return &HangFrequency{Amount: n, Unit: unit}
}

var fixtureFriends = []fixtureFriend{
	{first: "Sarah", last: "Chen", relation: "college roommate", every: every(2, UnitWeek), tags: []string{"college", "close"}, hangsAgo: []int{15, 40}},
	{first: "Marcus", last: "Williams", relation: "design buddy", every: every(1, UnitMonth), tags: []string{"close", "work"}, hangsAgo: []int{35}},
	{first: "Mom", relation: "mother", longDistance: true, every: every(1, UnitWeek), tags: []string{"family"}, hangsAgo: []int{7, 14, 21}},
	{first: "Alex", last: "Thompson", relation: "cousin", longDistance: true, every: every(3, UnitMonth), tags: []string{"family"}, hangsAgo: []int{45}},
	{first: "Jennifer", last: "Rodriguez", relation: "old coworker", every: every(2, UnitMonth), tags: []string{"work"}, hangsAgo: []int{10}},
	{first: "David", last: "Kim", every: every(6, UnitWeek), tags: []string{"work"}},
	{first: "Lisa", last: "Park", relation: "met at a conference", tags: []string{"climbing"}, hangsAgo: []int{60}},
	{first: "Mike", last: "Johnson", relation: "hiking group", every: every(3, UnitWeek), tags: []string{"climbing", "close"}, hangsAgo: []int{25}},
	{first: "Rachel", last: "Green", relation: "book club", every: every(1, UnitMonth), tags: []string{"books"}, hangsAgo: []int{40, 70}},
	{first: "Emily", last: "Zhang", tags: []string{"books"}, hangsAgo: []int{95}},
	{first: "Robert", last: "Martinez", longDistance: true, every: every(1, UnitYear), hangsAgo: []int{300}},
	{first: "Tom"},
}

// groupHangs are hangs with several friends, by first name
var groupHangs = []struct {
	daysAgo int
	friends []string
	notes   string
}{
	{daysAgo: 3, friends: []string{"Sarah", "Mike"}, notes: "Bouldering, then tacos"},
	{daysAgo: 28, friends: []string{"Rachel", "Emily", "Lisa"}, notes: "Book club at Rachel's"},
}

// CreateFixturesDatabase creates a database with realistic sample data
func CreateFixturesDatabase(dbPath string) error {
	if err := Initialize(dbPath); err != nil {
		return fmt.Errorf("initializing fixtures database: %w", err)
	}

	database, err := Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening fixtures database: %w", err)
	}
	defer database.Close()

	return database.LoadFixtures(context.Background(), time.Now())
}

// LoadFixtures fills the database with sample friends, tags and hangs dated
// relative to now.
func (db *DB) LoadFixtures(ctx context.Context, now time.Time) error {
	tagIDs := make(map[string]string)
	friendIDs := make(map[string]string)

	for _, f := range fixtureFriends {
		var ids []string
		for _, name := range f.tags {
			if _, ok := tagIDs[name]; !ok {
				t, err := db.CreateTag(ctx, name)
				if err != nil {
					return fmt.Errorf("creating fixture tag %s: %w", name, err)
				}
				tagIDs[name] = t.ID
			}
			ids = append(ids, tagIDs[name])
		}

		c, err := db.CreateContact(ctx, ContactInput{
			FirstName:             f.first,
			LastName:              f.last,
			Relation:              f.relation,
			LongDistance:          f.longDistance,
			MaxTimeBetweenContact: f.every,
			TagIDs:                ids,
		})
		if err != nil {
			return fmt.Errorf("creating fixture friend %s: %w", f.first, err)
		}
		friendIDs[f.first] = c.ID

		for _, ago := range f.hangsAgo {
			if _, err := db.CreateHang(ctx, HangInput{
				DateContacted: now.AddDate(0, 0, -ago),
				FriendIDs:     []string{c.ID},
			}); err != nil {
				return fmt.Errorf("creating fixture hang for %s: %w", f.first, err)
			}
		}
	}

	for _, g := range groupHangs {
		var ids []string
		for _, name := range g.friends {
			ids = append(ids, friendIDs[name])
		}
		if _, err := db.CreateHang(ctx, HangInput{
			DateContacted: now.AddDate(0, 0, -g.daysAgo),
			FriendIDs:     ids,
			Notes:         g.notes,
		}); err != nil {
			return fmt.Errorf("creating group hang: %w", err)
		}
	}

	db.log.Info("loaded fixtures", "friends", len(fixtureFriends), "tags", len(tagIDs))
	return nil
}
