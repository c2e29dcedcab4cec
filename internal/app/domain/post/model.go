package post

import "time"

// Link is an external reference attached to a post.
type Link struct {
	Label string `bson:"label" json:"label"`
	URL   string `bson:"url" json:"url"`
}

// Post is a public feed entry authored by a user. Likes is derived state: it
// is recomputed from the like set on every read and never persisted as an
// authoritative counter.
type Post struct {
	ID       string `bson:"uid" json:"uid"`
	AuthorID string `bson:"authorId" json:"authorId"`
	Title    string `bson:"title" json:"title"`
	Content  string `bson:"content" json:"content"`
	Links    []Link `bson:"links" json:"links"`
	ImageURL string `bson:"imageUrl" json:"imageUrl"`

	CreatedAt  time.Time  `bson:"creationTime" json:"creationTime"`
	LastLikeAt *time.Time `bson:"lastLike" json:"lastLike"`

	Likes int `bson:"-" json:"likes"`
}

// Comment belongs to a post. The post foreign key is not enforced by storage;
// the posts service validates it before writing.
type Comment struct {
	ID        string    `bson:"uid" json:"uid"`
	PostID    string    `bson:"postId" json:"postId"`
	AuthorID  string    `bson:"authorId" json:"authorId"`
	Content   string    `bson:"content" json:"content"`
	CreatedAt time.Time `bson:"creationTime" json:"creationTime"`
}

// Like records that a user liked a post. The (PostID, UserID) pair is unique;
// repeated likes are no-ops.
type Like struct {
	PostID    string    `bson:"postId" json:"postId"`
	UserID    string    `bson:"userId" json:"userId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
