package models

import "time"

// Generator is one worker in the external queue-position generator pool.
// Coordination is plain row reads/writes: workers heartbeat, operators
// pause/resume, and stale heartbeats are reported as offline.
type Generator struct {
	ID            int64     `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Status        string    `db:"status" json:"status"` // running, paused
	LastHeartbeat time.Time `db:"last_heartbeat" json:"last_heartbeat"`
	JobsCompleted int       `db:"jobs_completed" json:"jobs_completed"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// GeneratorStatus is the Generator row plus the derived offline flag.
type GeneratorStatus struct {
	Generator
	Offline bool `json:"offline"`
}
