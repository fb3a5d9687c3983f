package validation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdxmph/hangs-tui/internal/db"
	domainerrors "github.com/pdxmph/hangs-tui/internal/errors"
	"github.com/pdxmph/hangs-tui/internal/validation"
)

func details(t *testing.T, err error) map[string]string {
	t.Helper()
	var e *domainerrors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, domainerrors.CodeValidation, e.Code)
	fields, ok := e.Details.(map[string]string)
	require.True(t, ok)
	return fields
}

func TestValidContactInput(t *testing.T) {
	v := validation.New()
	err := v.Validate(db.ContactInput{
		FirstName:             "Alice",
		MaxTimeBetweenContact: &db.HangFrequency{Amount: 2, Unit: db.UnitWeek},
	})
	assert.NoError(t, err)
}

func TestContactInputMissingName(t *testing.T) {
	fields := details(t, validation.New().Validate(db.ContactInput{}))
	assert.Equal(t, "is required", fields["first_name"])
}

func TestContactInputBadFrequency(t *testing.T) {
	fields := details(t, validation.New().Validate(db.ContactInput{
		FirstName:             "Alice",
		MaxTimeBetweenContact: &db.HangFrequency{Amount: 0, Unit: "fortnight"},
	}))
	assert.Equal(t, "must be greater than 0", fields["max_time_between_contact.amount"])
	assert.Equal(t, "must be one of: day week month year", fields["max_time_between_contact.unit"])
}

func TestHangInputNeedsFriends(t *testing.T) {
	fields := details(t, validation.New().Validate(db.HangInput{DateContacted: time.Now()}))
	assert.Equal(t, "must have at least 1 item(s)", fields["friend_ids"])

	assert.NoError(t, validation.New().Validate(db.HangInput{
		DateContacted: time.Now(),
		FriendIDs:     []string{"friend-1"},
	}))
}
