package api

import (
	"time"

	"github.com/pdxmph/hangs-tui/internal/cadence"
	"github.com/pdxmph/hangs-tui/internal/db"
	"github.com/pdxmph/hangs-tui/internal/tagcolor"
)

// TagRef is a tag as embedded in a friend
type TagRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// TagResponse is a tag with the friends carrying it
type TagResponse struct {
	TagRef
	FriendIDs []string  `json:"friend_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// HangResponse is a hang in API responses
type HangResponse struct {
	ID            string    `json:"id"`
	DateContacted time.Time `json:"date_contacted"`
	FriendIDs     []string  `json:"friend_ids"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FriendResponse is a friend with cadence figures computed at request time
type FriendResponse struct {
	ID                    string            `json:"id"`
	FirstName             string            `json:"first_name"`
	LastName              string            `json:"last_name,omitempty"`
	FullName              string            `json:"full_name"`
	Relation              string            `json:"relation,omitempty"`
	LongDistance          bool              `json:"long_distance"`
	MaxTimeBetweenContact *db.HangFrequency `json:"max_time_between_contact,omitempty"`
	HangEvery             string            `json:"hang_every,omitempty"`
	Tags                  []TagRef          `json:"tags"`
	LastHang              *time.Time        `json:"last_hang,omitempty"`
	DaysOverdue           *int              `json:"days_overdue,omitempty"`
	Overdue               bool              `json:"overdue"`
	CreatedAt             time.Time         `json:"created_at"`
	Meetings              []HangResponse    `json:"meetings,omitempty"`
}

func tagRef(t db.Tag) TagRef {
	return TagRef{ID: t.ID, Name: t.Name, Color: string(tagcolor.For(t.Name))}
}

func toTagResponse(t db.Tag) TagResponse {
	ids := []string{}
	for _, c := range t.TaggedFriends {
		ids = append(ids, c.ID)
	}
	return TagResponse{TagRef: tagRef(t), FriendIDs: ids, CreatedAt: t.CreatedAt}
}

func toHangResponse(h db.Hang) HangResponse {
	ids := h.FriendIDs
	if ids == nil {
		ids = []string{}
	}
	return HangResponse{
		ID:            h.ID,
		DateContacted: h.DateContacted,
		FriendIDs:     ids,
		Notes:         h.Notes.String,
		CreatedAt:     h.CreatedAt,
	}
}

// toFriendResponse converts a contact. withHangs adds the hang history,
// newest first.
func toFriendResponse(c db.Contact, now time.Time, withHangs bool) FriendResponse {
	resp := FriendResponse{
		ID:                    c.ID,
		FirstName:             c.FirstName,
		LastName:              c.LastName.String,
		FullName:              cadence.FullName(c),
		Relation:              c.Relation.String,
		LongDistance:          c.LongDistance,
		MaxTimeBetweenContact: c.MaxTimeBetweenContact,
		Tags:                  []TagRef{},
		Overdue:               cadence.IsOverdue(c, now),
		CreatedAt:             c.CreatedAt,
	}
	if c.MaxTimeBetweenContact != nil {
		resp.HangEvery = cadence.FormatHangFrequency(*c.MaxTimeBetweenContact)
	}
	for _, t := range c.Tags {
		resp.Tags = append(resp.Tags, tagRef(t))
	}
	if last, ok := cadence.LastHangDate(c); ok {
		resp.LastHang = &last
	}
	if days, ok, err := cadence.DaysOverdue(c, now); err == nil && ok {
		resp.DaysOverdue = &days
	}
	if withHangs {
		hangs := make([]db.Hang, len(c.Hangs))
		copy(hangs, c.Hangs)
		cadence.SortHangsByRecency(hangs)
		resp.Meetings = []HangResponse{}
		for _, h := range hangs {
			resp.Meetings = append(resp.Meetings, toHangResponse(h))
		}
	}
	return resp
}
