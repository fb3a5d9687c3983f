package db

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type link struct {
	Left  string `db:"left_id"`
	Right string `db:"right_id"`
}

// Snapshot reads every friend, hang and tag in one transaction and joins
// them: friends get their hangs and tags, tags get their friends.
func (db *DB) Snapshot(ctx context.Context) (*Snapshot, error) {
	takenAt := db.timestamp()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	var friends []friendRow
	if err := selectAll(ctx, tx, &friends, sq.Select(friendColumns...).
		From("friends").OrderBy("created_at", "id")); err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}

	var tags []Tag
	if err := selectAll(ctx, tx, &tags, sq.Select("id", "name", "created_at").
		From("tags").OrderBy("name", "id")); err != nil {
		return nil, fmt.Errorf("querying tags: %w", err)
	}

	var hangs []Hang
	if err := selectAll(ctx, tx, &hangs, sq.Select("id", "date_contacted", "notes", "created_at").
		From("hangs").OrderBy("date_contacted DESC", "id")); err != nil {
		return nil, fmt.Errorf("querying hangs: %w", err)
	}

	var friendTags []link
	if err := selectAll(ctx, tx, &friendTags, sq.Select("friend_id AS left_id", "tag_id AS right_id").
		From("friend_tags").OrderBy("rowid")); err != nil {
		return nil, fmt.Errorf("querying friend tags: %w", err)
	}

	var hangFriends []link
	if err := selectAll(ctx, tx, &hangFriends, sq.Select("hang_id AS left_id", "friend_id AS right_id").
		From("hang_friends").OrderBy("rowid")); err != nil {
		return nil, fmt.Errorf("querying hang friends: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing read: %w", err)
	}

	return assemble(friends, tags, hangs, friendTags, hangFriends, takenAt), nil
}

func selectAll(ctx context.Context, tx *sqlx.Tx, dest any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	return tx.SelectContext(ctx, dest, query, args...)
}

func assemble(rows []friendRow, tags []Tag, hangs []Hang, friendTags, hangFriends []link, takenAt time.Time) *Snapshot {
	for _, l := range hangFriends {
		for i := range hangs {
			if hangs[i].ID == l.Left {
				hangs[i].FriendIDs = append(hangs[i].FriendIDs, l.Right)
			}
		}
	}

	tagByID := make(map[string]Tag, len(tags))
	for _, t := range tags {
		tagByID[t.ID] = t
	}
	tagIDsByFriend := make(map[string][]string)
	for _, l := range friendTags {
		tagIDsByFriend[l.Left] = append(tagIDsByFriend[l.Left], l.Right)
	}
	hangsByFriend := make(map[string][]Hang)
	for _, h := range hangs {
		for _, friendID := range h.FriendIDs {
			hangsByFriend[friendID] = append(hangsByFriend[friendID], h)
		}
	}

	contacts := make([]Contact, len(rows))
	for i, r := range rows {
		c := r.contact()
		c.TagIDs = tagIDsByFriend[c.ID]
		c.Hangs = hangsByFriend[c.ID]
		for _, tagID := range c.TagIDs {
			if t, ok := tagByID[tagID]; ok {
				c.Tags = append(c.Tags, t)
			}
		}
		contacts[i] = c
	}

	// Tagged friends are shallow: their own Tags are left empty.
	for i := range tags {
		for _, c := range contacts {
			for _, tagID := range c.TagIDs {
				if tagID == tags[i].ID {
					shallow := c
					shallow.Tags = nil
					tags[i].TaggedFriends = append(tags[i].TaggedFriends, shallow)
				}
			}
		}
	}

	return &Snapshot{
		Contacts: contacts,
		Tags:     tags,
		Hangs:    hangs,
		TakenAt:  takenAt,
	}
}
