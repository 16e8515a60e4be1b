package domain

import "time"

// LibraryEntry is a held item: a book in a user's personal library together
// with the user's rating (nil if unrated) and reading progress.
type LibraryEntry struct {
	Book            Book      `json:"book"`
	Rating          *float64  `json:"rating,omitempty"`
	ProgressPercent float64   `json:"progress_percent"`
	AddedAt         time.Time `json:"added_at"`
}
