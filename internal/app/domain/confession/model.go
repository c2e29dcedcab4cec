// Package confession holds the anonymous confession model. The author is
// recorded for accountability but never surfaced alongside the content.
package confession

import "time"

// Confession is an anonymous post on the shared confession wall.
type Confession struct {
	ID        string    `bson:"uid" json:"uid"`
	AuthorID  string    `bson:"authorId" json:"authorId"`
	Content   string    `bson:"content" json:"content"`
	Tags      []string  `bson:"tags" json:"tags"`
	CreatedAt time.Time `bson:"creationTime" json:"creationTime"`
}
