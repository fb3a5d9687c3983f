// Package cadence computes how overdue each friend is for a hang and orders
// friend lists by urgency. Every function is pure: callers pass the current
// time explicitly and the package never touches the store.
package cadence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pdxmph/hangs-tui/internal/db"
)

// ErrInvalidUnit is returned when a hang frequency carries a unit outside the
// day/week/month/year table.
var ErrInvalidUnit = errors.New("invalid hang frequency unit")

// unitDays is an approximation; month and year are not calendar accurate.
var unitDays = map[db.TimeUnit]int{
	db.UnitDay:   1,
	db.UnitWeek:  7,
	db.UnitMonth: 30,
	db.UnitYear:  365,
}

// ApproximateDays converts a hang frequency into a day count
func ApproximateDays(f db.HangFrequency) (int, error) {
	days, ok := unitDays[f.Unit]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, f.Unit)
	}
	return days * f.Amount, nil
}

// FullName joins first and last name with a single space
func FullName(c db.Contact) string {
	if c.LastName.Valid && c.LastName.String != "" {
		return c.FirstName + " " + c.LastName.String
	}
	return c.FirstName
}

// LastHangDate returns the most recent hang date for a contact
func LastHangDate(c db.Contact) (time.Time, bool) {
	var last time.Time
	found := false
	for _, h := range c.Hangs {
		if !found || h.DateContacted.After(last) {
			last = h.DateContacted
			found = true
		}
	}
	return last, found
}

// DaysSinceLastHang returns the number of calendar days between the last hang
// and now, evaluated in now's location.
func DaysSinceLastHang(c db.Contact, now time.Time) (int, bool) {
	last, ok := LastHangDate(c)
	if !ok {
		return 0, false
	}
	return CalendarDaysBetween(last, now), true
}

// CalendarDaysBetween counts midnights crossed going from -> to. 23:00 and
// 01:00 the next morning are one day apart.
// Both dates are read in to's location. Counting goes through day numbers,
// not a time.Duration, so dates centuries apart stay exact.
func CalendarDaysBetween(from, to time.Time) int {
	from = from.In(to.Location())
	return dayNumber(to) - dayNumber(from)
}

// dayNumber is the proleptic Gregorian day count of t's calendar date,
// zero at 1970-01-01.
func dayNumber(t time.Time) int {
	y, m, d := t.Year(), int(t.Month()), t.Day()
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 {
		era = (y - 399) / 400
	}
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// DaysOverdue is days since the last hang minus the desired cadence. It is only
// defined for contacts with a cadence who have hung out at least once.
func DaysOverdue(c db.Contact, now time.Time) (int, bool, error) {
	if c.MaxTimeBetweenContact == nil {
		return 0, false, nil
	}
	desired, err := ApproximateDays(*c.MaxTimeBetweenContact)
	if err != nil {
		return 0, false, err
	}
	since, ok := DaysSinceLastHang(c, now)
	if !ok {
		return 0, false, nil
	}
	return since - desired, true, nil
}

// IsOverdue reports whether the contact is past their desired cadence
func IsOverdue(c db.Contact, now time.Time) bool {
	days, ok, err := DaysOverdue(c, now)
	return err == nil && ok && days > 0
}

// rankKey holds everything the comparator needs so ranking computes each
// contact's figures once.
type rankKey struct {
	wantsCadence bool
	// never met sorts as infinitely neglected
	infinite bool
	urgency  int
	name     string
}

func keyFor(c db.Contact, now time.Time) (rankKey, error) {
	k := rankKey{
		wantsCadence: c.MaxTimeBetweenContact != nil,
		name:         FullName(c),
	}
	if k.wantsCadence {
		days, ok, err := DaysOverdue(c, now)
		if err != nil {
			return rankKey{}, fmt.Errorf("ranking %s: %w", k.name, err)
		}
		k.urgency, k.infinite = days, !ok
		return k, nil
	}
	days, ok := DaysSinceLastHang(c, now)
	k.urgency, k.infinite = days, !ok
	return k, nil
}

func compareKeys(a, b rankKey) int {
	if a.wantsCadence != b.wantsCadence {
		if a.wantsCadence {
			return -1
		}
		return 1
	}
	// Most urgent first; two infinities tie and fall through to the name.
	switch {
	case a.infinite && !b.infinite:
		return -1
	case !a.infinite && b.infinite:
		return 1
	case !a.infinite && !b.infinite && a.urgency != b.urgency:
		if a.urgency > b.urgency {
			return -1
		}
		return 1
	}
	return strings.Compare(a.name, b.name)
}

// Compare orders two contacts for display: contacts with a cadence first, then
// most overdue (or longest neglected) first, then by full name.
func Compare(a, b db.Contact, now time.Time) (int, error) {
	ka, err := keyFor(a, now)
	if err != nil {
		return 0, err
	}
	kb, err := keyFor(b, now)
	if err != nil {
		return 0, err
	}
	return compareKeys(ka, kb), nil
}

// Rank sorts contacts in place by urgency then name. On error the slice is
// left in its original order.
func Rank(contacts []db.Contact, now time.Time) error {
	keys := make([]rankKey, len(contacts))
	for i, c := range contacts {
		k, err := keyFor(c, now)
		if err != nil {
			return err
		}
		keys[i] = k
	}
	sort.Stable(byKey{contacts: contacts, keys: keys})
	return nil
}

// Ranked returns a ranked copy and leaves the input alone
func Ranked(contacts []db.Contact, now time.Time) ([]db.Contact, error) {
	out := make([]db.Contact, len(contacts))
	copy(out, contacts)
	if err := Rank(out, now); err != nil {
		return nil, err
	}
	return out, nil
}

type byKey struct {
	contacts []db.Contact
	keys     []rankKey
}

func (s byKey) Len() int           { return len(s.contacts) }
func (s byKey) Less(i, j int) bool { return compareKeys(s.keys[i], s.keys[j]) < 0 }
func (s byKey) Swap(i, j int) {
	s.contacts[i], s.contacts[j] = s.contacts[j], s.contacts[i]
	s.keys[i], s.keys[j] = s.keys[j], s.keys[i]
}
