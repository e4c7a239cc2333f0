package profiles

import "time"

// Profile carries what the blocker and the sorter need from a user page.
// UserID is the numeric identifier the relation endpoint expects; the
// counters feed the sorting metrics.
type Profile struct {
	Username     string    `json:"username"`
	UserID       string    `json:"user_id"`
	EntryCount   int       `json:"entry_count"`
	Followers    int       `json:"followers"`
	Following    int       `json:"following"`
	Rating       string    `json:"rating"`
	Level        string    `json:"level"`
	RatingPoints int       `json:"rating_points"`
	AgeYears     int       `json:"age_years"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// Source is the read-only view sorting extraction works against. Lookups
// must be synchronous and must never reach the network.
type Source interface {
	Get(username string) (*Profile, bool)
}
