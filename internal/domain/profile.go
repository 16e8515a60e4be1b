package domain

type PreferredLength string

const (
	LengthShort  PreferredLength = "short"
	LengthMedium PreferredLength = "medium"
	LengthLong   PreferredLength = "long"
)

type ActivityLevel string

const (
	ActivityHigh   ActivityLevel = "high"
	ActivityMedium ActivityLevel = "medium"
	ActivityLow    ActivityLevel = "low"
)

// UserProfile is the derived preference profile for one user. It is built on
// demand from library state, cached with a TTL and never mutated afterwards.
type UserProfile struct {
	UserID             int64           `json:"user_id"`
	FavoriteGenres     []string        `json:"favorite_genres"`
	FavoriteAuthors    []string        `json:"favorite_authors"`
	FavoritePublishers []string        `json:"favorite_publishers"`
	FavoriteTags       []string        `json:"favorite_tags"`
	AvgRating          float64         `json:"avg_rating"`
	PreferredLength    PreferredLength `json:"preferred_length"`
	ActivityLevel      ActivityLevel   `json:"activity_level"`
	TotalRead          int             `json:"total_read"`
	TotalHeld          int             `json:"total_held"`
	RecencyScore       float64         `json:"recency_score"`
	GenreDiversity     int             `json:"genre_diversity"`
	CompletionRate     float64         `json:"completion_rate"`
}

// SimilarUser pairs another user with the similarity of their library to the
// requesting user's, in [0,1].
type SimilarUser struct {
	UserID      int64   `json:"user_id"`
	Similarity  float64 `json:"similarity"`
	SharedItems int     `json:"shared_items"`
}
