package user

import "time"

// Role classifies an account. Values are stable wire identifiers.
type Role int

const (
	RoleStandard Role = iota + 1
	RolePublisher
	RoleEditor
)

// User is a registered account. The credential hash is produced by the caller
// (authentication is outside this layer); the streak fields are mutated only
// through the journal streak engine.
type User struct {
	ID           string `bson:"uid" json:"uid"`
	Email        string `bson:"email" json:"email"`
	Name         string `bson:"name" json:"name"`
	PasswordHash string `bson:"password" json:"password"`
	Description  string `bson:"description" json:"description"`
	Role         Role   `bson:"role" json:"role"`
	Link         string `bson:"link" json:"link"`
	Location     string `bson:"location" json:"location"`
	Active       bool   `bson:"active" json:"active"`

	CreatedAt time.Time `bson:"creationTime" json:"creationTime"`

	// Journaling streak state. StreakStart and LastJournalDate are nil until
	// the first entry; both are always midnight-normalized UTC dates.
	CurrentStreak   int        `bson:"currentStreak" json:"currentStreak"`
	LongestStreak   int        `bson:"longestStreak" json:"longestStreak"`
	StreakStart     *time.Time `bson:"currentStreakStart" json:"currentStreakStart"`
	LastJournalDate *time.Time `bson:"lastJournalDate" json:"lastJournalDate"`
}
