package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sp(s string) *string { return &s }

func TestNewDateFieldDueOnly(t *testing.T) {
	d := NewDateField(Fields{DueAt: sp("2024-03-01T17:00:00Z")}, nil)

	got, ok := d.Time()
	require.True(t, ok)
	assert.Equal(t, 12, got.Hour())
	assert.Equal(t, "America/New_York", got.Location().String())
}

func TestNewDateFieldCandidateOrder(t *testing.T) {
	d := NewDateField(Fields{
		CreatedAt: sp("2024-01-01T00:00:00Z"),
		DueAt:     sp("2024-02-01T00:00:00Z"),
	}, nil)

	got, _ := d.Time()
	assert.Equal(t, time.January, got.UTC().Month())
}

func TestNewDateFieldDetailFallback(t *testing.T) {
	var fetched string
	fetch := func(url string) (map[string]any, error) {
		fetched = url
		return map[string]any{"created_at": "2024-05-05T12:00:00Z"}, nil
	}

	d := NewDateField(Fields{URL: "https://lms/api/v1/x"}, fetch)

	assert.Equal(t, "https://lms/api/v1/x", fetched)
	assert.False(t, d.IsZero())
}

func TestNewDateFieldDetailFailure(t *testing.T) {
	fetch := func(string) (map[string]any, error) { return nil, errors.New("boom") }

	d := NewDateField(Fields{URL: "https://lms/api/v1/x"}, fetch)

	assert.True(t, d.IsZero())
	assert.Equal(t, "", d.SmartLabel())
}

func TestDateFromStringNaive(t *testing.T) {
	d := DateFromString("2024-07-04T09:30:00")
	got, ok := d.Time()
	require.True(t, ok)
	assert.Equal(t, 9, got.Hour())

	assert.True(t, DateFromString("not a date").IsZero())
}

func TestDateLabel(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, DisplayZone)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"today", time.Date(2024, 3, 10, 9, 5, 0, 0, DisplayZone), "Today at 9:05 AM"},
		{"yesterday", time.Date(2024, 3, 9, 21, 0, 0, 0, DisplayZone), "Yesterday at 9:00 PM"},
		{"older", time.Date(2024, 1, 2, 13, 4, 0, 0, DisplayZone), "Jan 2, 2024 at 1:04 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DateAt(tt.at).Label(now))
		})
	}
}

func TestDateSortKey(t *testing.T) {
	var absent DateField
	present := DateAt(time.Unix(100, 0))

	assert.Less(t, absent.SortKey(), present.SortKey())
	assert.Equal(t, int64(100), present.SortKey())
}
