package db

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/id"
)

// CreateHang records a get-together with one or more friends
func (db *DB) CreateHang(ctx context.Context, in HangInput) (*Hang, error) {
	in.FriendIDs = uniqueIDs(in.FriendIDs)
	if err := db.validate.Validate(in); err != nil {
		return nil, err
	}

	hangID, err := id.Generate(id.Hang)
	if err != nil {
		return nil, err
	}
	now := db.timestamp()
	h := &Hang{
		ID:            hangID,
		DateContacted: in.DateContacted,
		FriendIDs:     in.FriendIDs,
		Notes:         NewNullString(strings.TrimSpace(in.Notes)),
		CreatedAt:     now,
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	insert := sq.Insert("hangs").
		Columns("id", "date_contacted", "notes", "created_at", "updated_at").
		Values(h.ID, h.DateContacted, h.Notes, now, now)
	if _, err := exec(ctx, tx, insert); err != nil {
		return nil, fmt.Errorf("inserting hang: %w", err)
	}
	if err := setHangFriends(ctx, tx, h.ID, h.FriendIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing hang: %w", err)
	}

	db.changed(ctx)
	return h, nil
}

// UpdateHang applies a partial update to a hang
func (db *DB) UpdateHang(ctx context.Context, hangID string, patch HangPatch) error {
	if patch.FriendIDs != nil {
		ids := uniqueIDs(*patch.FriendIDs)
		patch.FriendIDs = &ids
	}
	if err := db.validate.Validate(patch); err != nil {
		return err
	}

	set := map[string]any{"updated_at": db.timestamp()}
	if patch.DateContacted != nil {
		set["date_contacted"] = *patch.DateContacted
	}
	if patch.Notes != nil {
		set["notes"] = NewNullString(strings.TrimSpace(*patch.Notes))
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := exec(ctx, tx, sq.Update("hangs").SetMap(set).Where(sq.Eq{"id": hangID}))
	if err != nil {
		return fmt.Errorf("updating hang: %w", err)
	}
	if n == 0 {
		return domainerrors.NotFoundf("hang %s not found", hangID)
	}
	if patch.FriendIDs != nil {
		if _, err := exec(ctx, tx, sq.Delete("hang_friends").Where(sq.Eq{"hang_id": hangID})); err != nil {
			return fmt.Errorf("clearing hang friends: %w", err)
		}
		if err := setHangFriends(ctx, tx, hangID, *patch.FriendIDs); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing hang: %w", err)
	}

	db.changed(ctx)
	return nil
}

// DeleteHang removes a hang
func (db *DB) DeleteHang(ctx context.Context, hangID string) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := exec(ctx, tx, sq.Delete("hang_friends").Where(sq.Eq{"hang_id": hangID})); err != nil {
		return fmt.Errorf("deleting hang friends: %w", err)
	}
	n, err := exec(ctx, tx, sq.Delete("hangs").Where(sq.Eq{"id": hangID}))
	if err != nil {
		return fmt.Errorf("deleting hang: %w", err)
	}
	if n == 0 {
		return domainerrors.NotFoundf("hang %s not found", hangID)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	db.changed(ctx)
	return nil
}

func setHangFriends(ctx context.Context, tx *sqlx.Tx, hangID string, friendIDs []string) error {
	insert := sq.Insert("hang_friends").Columns("hang_id", "friend_id")
	for _, friendID := range friendIDs {
		insert = insert.Values(hangID, friendID)
	}
	if _, err := exec(ctx, tx, insert); err != nil {
		return fmt.Errorf("linking hang friends: %w", err)
	}
	return nil
}
