package letter

import "time"

// Type distinguishes letters written to the future from reflections on the
// past.
type Type string

const (
	TypeFuture Type = "future"
	TypePast   Type = "past"
)

// Status is the letter lifecycle state. A letter transitions from scheduled
// to opened exactly once.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusOpened    Status = "opened"
)

// Letter is a message a user schedules for a target date.
type Letter struct {
	ID         string    `bson:"uid" json:"uid"`
	AuthorID   string    `bson:"authorId" json:"authorId"`
	Content    string    `bson:"content" json:"content"`
	TargetDate time.Time `bson:"target_date" json:"target_date"`
	Type       Type      `bson:"type" json:"type"`
	WordCount  int       `bson:"word_count" json:"word_count"`

	Status    Status     `bson:"status" json:"status"`
	OpenedAt  *time.Time `bson:"opened_at" json:"opened_at"`
	CreatedAt time.Time  `bson:"creationTime" json:"creationTime"`
}
