package service

import (
	"testing"
	"time"

	"ticketops-web/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestEventMatcher_Match(t *testing.T) {
	events := []models.Event{
		{ID: 1, Name: "The Eras Tour", Venue: "Madison Square Garden", EventDate: datePtr(2026, time.August, 2)},
		{ID: 2, Name: "The Eras Tour", Venue: "Madison Square Garden", EventDate: datePtr(2026, time.August, 3)},
		{ID: 3, Name: "Hamilton An American Musical", Venue: "Richard Rodgers Theatre", RawDate: "Fri, Sep 18, 2026"},
	}
	matcher := NewEventMatcher(events)

	tests := []struct {
		name   string
		row    ReceiptRow
		wantID int64 // 0 means no match
	}{
		{
			name: "containment name and exact date",
			row: ReceiptRow{
				EventName: "Taylor Swift | The Eras Tour",
				Venue:     "Madison Square Garden",
				EventDate: datePtr(2026, time.August, 2),
			},
			wantID: 1,
		},
		{
			name: "second date picks second event",
			row: ReceiptRow{
				EventName: "The Eras Tour",
				Venue:     "Madison Square Garden",
				EventDate: datePtr(2026, time.August, 3),
			},
			wantID: 2,
		},
		{
			name: "venue normalized before comma",
			row: ReceiptRow{
				EventName: "The Eras Tour",
				Venue:     "Madison Square Garden, New York",
				EventDate: datePtr(2026, time.August, 2),
			},
			wantID: 1,
		},
		{
			name: "first three tokens match",
			row: ReceiptRow{
				EventName: "Hamilton An American Story Entirely Different",
				Venue:     "Richard Rodgers Theatre",
				DateRaw:   "Sep 18, 2026 7:00 PM",
			},
			wantID: 3,
		},
		{
			name: "raw date fallback",
			row: ReceiptRow{
				EventName: "Hamilton An American Musical",
				Venue:     "Richard Rodgers Theatre",
				DateRaw:   "September 18, 2026",
			},
			wantID: 0, // month spelled differently than candidate raw
		},
		{
			name: "date mismatch",
			row: ReceiptRow{
				EventName: "The Eras Tour",
				Venue:     "Madison Square Garden",
				EventDate: datePtr(2026, time.August, 9),
			},
			wantID: 0,
		},
		{
			name: "venue mismatch",
			row: ReceiptRow{
				EventName: "The Eras Tour",
				Venue:     "Barclays Center",
				EventDate: datePtr(2026, time.August, 2),
			},
			wantID: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := matcher.Match(&tt.row)
			if tt.wantID == 0 {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.ID)
		})
	}
}

func TestEventMatcher_FirstMatchWins(t *testing.T) {
	// Two candidates satisfy every predicate; the earlier one is returned.
	events := []models.Event{
		{ID: 10, Name: "Big Show", Venue: "The Arena", EventDate: datePtr(2026, time.May, 1)},
		{ID: 11, Name: "Big Show", Venue: "The Arena", EventDate: datePtr(2026, time.May, 1)},
	}
	matcher := NewEventMatcher(events)

	got := matcher.Match(&ReceiptRow{
		EventName: "Big Show",
		Venue:     "The Arena",
		EventDate: datePtr(2026, time.May, 1),
	})
	require.NotNil(t, got)
	assert.Equal(t, int64(10), got.ID)
}

func TestEventMatcher_RawDateFallback(t *testing.T) {
	events := []models.Event{
		{ID: 1, Name: "Big Show", Venue: "The Arena", RawDate: "Sat Aug 2, 2026"},
	}
	matcher := NewEventMatcher(events)

	got := matcher.Match(&ReceiptRow{
		EventName: "Big Show",
		Venue:     "The Arena",
		DateRaw:   "Aug 2 2026 8:00 PM",
	})
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.ID)
}

func TestEventMatcher_Suggest(t *testing.T) {
	events := []models.Event{
		{ID: 1, Name: "The Eras Tour"},
		{ID: 2, Name: "Hamilton"},
		{ID: 3, Name: "Wicked"},
	}
	matcher := NewEventMatcher(events)

	got := matcher.Suggest("The Era Tour", 2)
	require.Len(t, got, 2)
	assert.Equal(t, "The Eras Tour", got[0])
}
