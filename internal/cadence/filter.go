package cadence

import (
	"sort"
	"strings"

	"github.com/pdxmph/hangs-tui/internal/db"
)

// FilterByQuery keeps contacts whose full name contains query, ignoring case
func FilterByQuery(contacts []db.Contact, query string) []db.Contact {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return contacts
	}
	var filtered []db.Contact
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(FullName(c)), query) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterByTags keeps contacts carrying every one of the given tags. Tags are
// compared by name, so two tags sharing a name are interchangeable.
func FilterByTags(contacts []db.Contact, tags []db.Tag) []db.Contact {
	if len(tags) == 0 {
		return contacts
	}
	var filtered []db.Contact
	for _, c := range contacts {
		names := make(map[string]bool, len(c.Tags))
		for _, t := range c.Tags {
			names[t.Name] = true
		}
		all := true
		for _, t := range tags {
			if !names[t.Name] {
				all = false
				break
			}
		}
		if all {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// FilterByQueryAndTags applies both filters
func FilterByQueryAndTags(contacts []db.Contact, query string, tags []db.Tag) []db.Contact {
	return FilterByTags(FilterByQuery(contacts, query), tags)
}

// SortHangsByRecency sorts hangs newest first, in place
func SortHangsByRecency(hangs []db.Hang) {
	sort.SliceStable(hangs, func(i, j int) bool {
		return hangs[i].DateContacted.After(hangs[j].DateContacted)
	})
}

// SortTags sorts tags by name, in place
func SortTags(tags []db.Tag) {
	sort.SliceStable(tags, func(i, j int) bool {
		return tags[i].Name < tags[j].Name
	})
}
