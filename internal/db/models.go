package db

import (
	"database/sql"
	"time"
)

// TimeUnit is the unit of a desired hang frequency
type TimeUnit string

const (
	UnitDay   TimeUnit = "day"
	UnitWeek  TimeUnit = "week"
	UnitMonth TimeUnit = "month"
	UnitYear  TimeUnit = "year"
)

// TimeUnits lists the units in display order
var TimeUnits = []TimeUnit{UnitDay, UnitWeek, UnitMonth, UnitYear}

// HangFrequency is the longest a person wants to go between hangs
type HangFrequency struct {
	Amount int      `json:"amount" validate:"gt=0"`
	Unit   TimeUnit `json:"unit" validate:"oneof=day week month year"`
}

// Contact represents a friend in the database
type Contact struct {
	ID                    string         `db:"id" json:"id"`
	FirstName             string         `db:"first_name" json:"first_name"`
	LastName              sql.NullString `db:"last_name" json:"-"`
	Relation              sql.NullString `db:"relation" json:"-"`
	LongDistance          bool           `db:"long_distance" json:"long_distance"`
	MaxTimeBetweenContact *HangFrequency `db:"-" json:"max_time_between_contact,omitempty"`
	TagIDs                []string       `db:"-" json:"tag_ids"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`

	// Joined records
	Hangs []Hang `db:"-" json:"meetings"`
	Tags  []Tag  `db:"-" json:"tags"`
}

// Hang represents a logged get-together with one or more friends
type Hang struct {
	ID            string         `db:"id" json:"id"`
	DateContacted time.Time      `db:"date_contacted" json:"date_contacted"`
	FriendIDs     []string       `db:"-" json:"friend_ids"`
	Notes         sql.NullString `db:"notes" json:"-"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

// Tag represents a free-form label attached to friends
type Tag struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	TaggedFriends []Contact `db:"-" json:"tagged_friends,omitempty"`
}

// Snapshot is a consistent read of everything in the store
type Snapshot struct {
	Contacts []Contact
	Tags     []Tag
	Hangs    []Hang
	TakenAt  time.Time
}

// Contact looks up a contact in the snapshot by ID
func (s *Snapshot) Contact(id string) (Contact, bool) {
	for _, c := range s.Contacts {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}

// Hang looks up a hang in the snapshot by ID
func (s *Snapshot) Hang(id string) (Hang, bool) {
	for _, h := range s.Hangs {
		if h.ID == id {
			return h, true
		}
	}
	return Hang{}, false
}

// ContactInput holds the fields needed to create a contact
type ContactInput struct {
	FirstName             string         `json:"first_name" validate:"required"`
	LastName              string         `json:"last_name"`
	Relation              string         `json:"relation"`
	LongDistance          bool           `json:"long_distance"`
	MaxTimeBetweenContact *HangFrequency `json:"max_time_between_contact" validate:"omitempty"`
	TagIDs                []string       `json:"tag_ids"`
}

// ContactPatch holds a partial contact update. Nil fields are left alone.
type ContactPatch struct {
	FirstName    *string `json:"first_name" validate:"omitempty,min=1"`
	LastName     *string `json:"last_name"`
	Relation     *string `json:"relation"`
	LongDistance *bool   `json:"long_distance"`
	// ClearMaxTime removes the cadence; it wins over MaxTimeBetweenContact.
	MaxTimeBetweenContact *HangFrequency `json:"max_time_between_contact" validate:"omitempty"`
	ClearMaxTime          bool           `json:"clear_max_time_between_contact"`
	TagIDs                *[]string      `json:"tag_ids"`
}

// HangInput holds the fields needed to record a hang
type HangInput struct {
	DateContacted time.Time `json:"date_contacted" validate:"required"`
	FriendIDs     []string  `json:"friend_ids" validate:"min=1,dive,required"`
	Notes         string    `json:"notes"`
}

// HangPatch holds a partial hang update
type HangPatch struct {
	DateContacted *time.Time `json:"date_contacted"`
	FriendIDs     *[]string  `json:"friend_ids" validate:"omitempty,min=1"`
	Notes         *string    `json:"notes"`
}

// NewNullString creates a sql.NullString from a string
func NewNullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
