package shelf

import "time"

// Status tracks where a book sits in the reader's pipeline.
type Status string

const (
	StatusWantToRead Status = "want_to_read"
	StatusReading    Status = "reading"
	StatusRead       Status = "read"
)

// Item is a book on a user's shelf. Items are unique per (AuthorID, BookKey)
// and are upserted rather than strictly created; BookKey is the external
// catalog key (Open Library style, always with a leading "/").
type Item struct {
	ID       string `bson:"uid" json:"uid"`
	AuthorID string `bson:"authorId" json:"authorId"`
	BookKey  string `bson:"ol_key" json:"ol_key"`

	Title       string   `bson:"title" json:"title"`
	Status      Status   `bson:"status" json:"status"`
	CoverID     *int     `bson:"cover_id" json:"cover_id"`
	AuthorNames []string `bson:"author_names" json:"author_names"`
	PageCount   int      `bson:"page_count" json:"page_count"`

	ProgressPercent int  `bson:"progress_percent" json:"progress_percent"`
	Favorite        bool `bson:"is_favorite" json:"is_favorite"`
	SortOrder       int  `bson:"sort_order" json:"sort_order"`

	CreatedAt time.Time `bson:"creationTime" json:"creationTime"`
}
