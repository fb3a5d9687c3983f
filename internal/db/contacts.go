package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/id"
)

var friendColumns = []string{
	"id", "first_name", "last_name", "relation", "long_distance",
	"max_time_amount", "max_time_unit", "created_at",
}

// friendRow carries the flattened cadence columns
type friendRow struct {
	Contact
	MaxTimeAmount sql.NullInt64  `db:"max_time_amount"`
	MaxTimeUnit   sql.NullString `db:"max_time_unit"`
}

func (r friendRow) contact() Contact {
	c := r.Contact
	if r.MaxTimeAmount.Valid && r.MaxTimeUnit.Valid {
		c.MaxTimeBetweenContact = &HangFrequency{
			Amount: int(r.MaxTimeAmount.Int64),
			Unit:   TimeUnit(r.MaxTimeUnit.String),
		}
	}
	return c
}

func frequencyColumns(f *HangFrequency) (sql.NullInt64, sql.NullString) {
	if f == nil {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: int64(f.Amount), Valid: true},
		sql.NullString{String: string(f.Unit), Valid: true}
}

// CreateContact adds a friend and links their tags
func (db *DB) CreateContact(ctx context.Context, in ContactInput) (*Contact, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	if err := db.validate.Validate(in); err != nil {
		return nil, err
	}

	friendID, err := id.Generate(id.Friend)
	if err != nil {
		return nil, err
	}
	now := db.timestamp()
	c := &Contact{
		ID:                    friendID,
		FirstName:             in.FirstName,
		LastName:              NewNullString(strings.TrimSpace(in.LastName)),
		Relation:              NewNullString(strings.TrimSpace(in.Relation)),
		LongDistance:          in.LongDistance,
		MaxTimeBetweenContact: in.MaxTimeBetweenContact,
		TagIDs:                uniqueIDs(in.TagIDs),
		CreatedAt:             now,
	}
	amount, unit := frequencyColumns(c.MaxTimeBetweenContact)

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	insert := sq.Insert("friends").
		Columns("id", "first_name", "last_name", "relation", "long_distance",
			"max_time_amount", "max_time_unit", "created_at", "updated_at").
		Values(c.ID, c.FirstName, c.LastName, c.Relation, c.LongDistance,
			amount, unit, now, now)
	if _, err := exec(ctx, tx, insert); err != nil {
		return nil, fmt.Errorf("inserting friend: %w", err)
	}
	if err := setFriendTags(ctx, tx, c.ID, c.TagIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing friend: %w", err)
	}

	db.changed(ctx)
	return c, nil
}

// UpdateContact applies a partial update. Unknown ids give ErrNotFound.
func (db *DB) UpdateContact(ctx context.Context, friendID string, patch ContactPatch) error {
	if patch.FirstName != nil {
		trimmed := strings.TrimSpace(*patch.FirstName)
		patch.FirstName = &trimmed
	}
	if err := db.validate.Validate(patch); err != nil {
		return err
	}

	set := map[string]any{"updated_at": db.timestamp()}
	if patch.FirstName != nil {
		set["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		set["last_name"] = NewNullString(strings.TrimSpace(*patch.LastName))
	}
	if patch.Relation != nil {
		set["relation"] = NewNullString(strings.TrimSpace(*patch.Relation))
	}
	if patch.LongDistance != nil {
		set["long_distance"] = *patch.LongDistance
	}
	switch {
	case patch.ClearMaxTime:
		set["max_time_amount"], set["max_time_unit"] = frequencyColumns(nil)
	case patch.MaxTimeBetweenContact != nil:
		set["max_time_amount"], set["max_time_unit"] = frequencyColumns(patch.MaxTimeBetweenContact)
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := exec(ctx, tx, sq.Update("friends").SetMap(set).Where(sq.Eq{"id": friendID}))
	if err != nil {
		return fmt.Errorf("updating friend: %w", err)
	}
	if n == 0 {
		return domainerrors.NotFoundf("friend %s not found", friendID)
	}
	if patch.TagIDs != nil {
		if _, err := exec(ctx, tx, sq.Delete("friend_tags").Where(sq.Eq{"friend_id": friendID})); err != nil {
			return fmt.Errorf("clearing friend tags: %w", err)
		}
		if err := setFriendTags(ctx, tx, friendID, uniqueIDs(*patch.TagIDs)); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing friend: %w", err)
	}

	db.changed(ctx)
	return nil
}

// DeleteContact removes a friend and their tag links. Hangs keep the id.
func (db *DB) DeleteContact(ctx context.Context, friendID string) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := exec(ctx, tx, sq.Delete("friend_tags").Where(sq.Eq{"friend_id": friendID})); err != nil {
		return fmt.Errorf("deleting friend tags: %w", err)
	}
	n, err := exec(ctx, tx, sq.Delete("friends").Where(sq.Eq{"id": friendID}))
	if err != nil {
		return fmt.Errorf("deleting friend: %w", err)
	}
	if n == 0 {
		return domainerrors.NotFoundf("friend %s not found", friendID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	db.changed(ctx)
	return nil
}

func setFriendTags(ctx context.Context, tx *sqlx.Tx, friendID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	insert := sq.Insert("friend_tags").Columns("friend_id", "tag_id")
	for _, tagID := range tagIDs {
		insert = insert.Values(friendID, tagID)
	}
	if _, err := exec(ctx, tx, insert); err != nil {
		return fmt.Errorf("linking friend tags: %w", err)
	}
	return nil
}

// uniqueIDs drops blanks and duplicates, keeping first-seen order
func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
