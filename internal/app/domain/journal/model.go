package journal

import "time"

// Mood tags an entry with the author's state of mind.
type Mood int

const (
	MoodHeartbroken Mood = iota + 1
	MoodHealing
	MoodEmpowered
)

// Entry is a private journal record. Entries are created, updated and deleted
// by their author only.
type Entry struct {
	ID          string   `bson:"uid" json:"uid"`
	AuthorID    string   `bson:"authorId" json:"authorId"`
	Title       string   `bson:"title" json:"title"`
	Content     string   `bson:"content" json:"content"`
	Mood        Mood     `bson:"mood" json:"mood"`
	Tags        []string `bson:"tags" json:"tags"`
	Favorite    bool     `bson:"favorite" json:"favorite"`
	WritingTime int      `bson:"writingTime" json:"writingTime"` // seconds spent writing

	CreatedAt time.Time `bson:"creationTime" json:"creationTime"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
