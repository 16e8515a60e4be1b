package domain

import "time"

type Book struct {
	ID              int64     `json:"id"`
	Title           string    `json:"title"`
	Genre           string    `json:"genre"`
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	Tags            []string  `json:"tags"`
	Rating          float64   `json:"rating"`
	TotalReaders    int       `json:"total_readers"`
	RecentAdditions int       `json:"recent_additions"`
	PublishedAt     time.Time `json:"published_at"`
	Visible         bool      `json:"visible"`
	IsFree          bool      `json:"is_free"`
	PageCount       int       `json:"page_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// CatalogFilter is an immutable set of criteria for catalog queries. The
// repository translates it into SQL; callers never build query fragments.
type CatalogFilter struct {
	Genres             []string
	Author             string
	ExcludeIDs         []int64
	MinRating          float64
	MinRecentAdditions int
	PublishedAfter     time.Time
	VisibleOnly        bool
}

type CatalogOrder string

const (
	OrderByRating          CatalogOrder = "rating"
	OrderByRecentAdditions CatalogOrder = "recent_additions"
	OrderByPublishedAt     CatalogOrder = "published_at"
)
