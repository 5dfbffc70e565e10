package models

import "time"

// Event mirrors a ticketing-system event populated by the sync job. The
// importer only matches against existing events, it never creates them.
type Event struct {
	ID        int64      `db:"id" json:"id"`
	TmEventID string     `db:"tm_event_id" json:"tm_event_id"`
	Name      string     `db:"name" json:"name"`
	Artist    string     `db:"artist" json:"artist"`
	Venue     string     `db:"venue" json:"venue"`
	EventDate *time.Time `db:"event_date" json:"event_date"`
	RawDate   string     `db:"raw_date" json:"raw_date"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

type EventRequest struct {
	TmEventID string `json:"tm_event_id"`
	Name      string `json:"name" validate:"required"`
	Artist    string `json:"artist"`
	Venue     string `json:"venue"`
	RawDate   string `json:"raw_date"`
}
