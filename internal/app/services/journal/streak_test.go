package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func TestUpdateStreak(t *testing.T) {
	today := day(2026, 8, 28)

	tests := []struct {
		name      string
		entryDate time.Time
		user      user.User
		changed   bool
		check     func(t *testing.T, upd storage.StreakUpdate)
	}{
		{
			name:      "first entry starts a streak",
			entryDate: today.Add(14 * time.Hour),
			user:      user.User{},
			changed:   true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 1, *upd.CurrentStreak)
				require.NotNil(t, upd.LongestStreak)
				assert.Equal(t, 1, *upd.LongestStreak)
				require.NotNil(t, upd.StreakStart)
				assert.Equal(t, today, *upd.StreakStart)
				require.NotNil(t, upd.LastJournalDate)
				assert.Equal(t, today, *upd.LastJournalDate)
			},
		},
		{
			name:      "first entry never lowers a historic longest streak",
			entryDate: today,
			user:      user.User{LongestStreak: 7},
			changed:   true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				assert.Nil(t, upd.LongestStreak)
			},
		},
		{
			name:      "same day entry is a no-op",
			entryDate: today.Add(23 * time.Hour),
			user: user.User{
				CurrentStreak: 3, StreakStart: dayPtr(2026, 8, 26), LastJournalDate: dayPtr(2026, 8, 28),
			},
			changed: false,
		},
		{
			name:      "backdated entry before the last day is ignored",
			entryDate: day(2026, 8, 20),
			user: user.User{
				CurrentStreak: 3, StreakStart: dayPtr(2026, 8, 26), LastJournalDate: dayPtr(2026, 8, 28),
			},
			changed: false,
		},
		{
			name:      "next day extends the streak from its start",
			entryDate: day(2026, 8, 28),
			user: user.User{
				CurrentStreak: 3, LongestStreak: 10,
				StreakStart: dayPtr(2026, 8, 25), LastJournalDate: dayPtr(2026, 8, 27),
			},
			changed: true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 4, *upd.CurrentStreak)
				assert.Nil(t, upd.LongestStreak, "longest streak of 10 is not beaten by 4")
				require.NotNil(t, upd.LastJournalDate)
				assert.Equal(t, day(2026, 8, 28), *upd.LastJournalDate)
			},
		},
		{
			name:      "extending past the record updates the longest streak",
			entryDate: day(2026, 8, 28),
			user: user.User{
				CurrentStreak: 4, LongestStreak: 4,
				StreakStart: dayPtr(2026, 8, 24), LastJournalDate: dayPtr(2026, 8, 27),
			},
			changed: true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 5, *upd.CurrentStreak)
				require.NotNil(t, upd.LongestStreak)
				assert.Equal(t, 5, *upd.LongestStreak)
			},
		},
		{
			name:      "next day with a lost anchor re-anchors on the previous entry",
			entryDate: day(2026, 8, 28),
			user: user.User{
				CurrentStreak: 1, LongestStreak: 1, LastJournalDate: dayPtr(2026, 8, 27),
			},
			changed: true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 2, *upd.CurrentStreak)
				require.NotNil(t, upd.StreakStart)
				assert.Equal(t, day(2026, 8, 27), *upd.StreakStart)
				require.NotNil(t, upd.LongestStreak, "a pair of days must lift a shorter record")
				assert.Equal(t, 2, *upd.LongestStreak)
			},
		},
		{
			name:      "re-anchoring never lowers a longer record",
			entryDate: day(2026, 8, 28),
			user: user.User{
				CurrentStreak: 0, LongestStreak: 6, LastJournalDate: dayPtr(2026, 8, 27),
			},
			changed: true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 2, *upd.CurrentStreak)
				assert.Nil(t, upd.LongestStreak)
			},
		},
		{
			name:      "gap broken by writing today starts fresh",
			entryDate: today.Add(9 * time.Hour),
			user: user.User{
				CurrentStreak: 6, LongestStreak: 6,
				StreakStart: dayPtr(2026, 8, 19), LastJournalDate: dayPtr(2026, 8, 24),
			},
			changed: true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 1, *upd.CurrentStreak)
				require.NotNil(t, upd.StreakStart)
				assert.Equal(t, today, *upd.StreakStart)
				assert.False(t, upd.ClearStreakStart)
			},
		},
		{
			name:      "gap filled by a backdated entry only clears the streak",
			entryDate: day(2026, 8, 26),
			user: user.User{
				CurrentStreak: 6, LongestStreak: 6,
				StreakStart: dayPtr(2026, 8, 19), LastJournalDate: dayPtr(2026, 8, 24),
			},
			changed: true,
			check: func(t *testing.T, upd storage.StreakUpdate) {
				require.NotNil(t, upd.CurrentStreak)
				assert.Equal(t, 0, *upd.CurrentStreak)
				assert.True(t, upd.ClearStreakStart)
				require.NotNil(t, upd.LastJournalDate)
				assert.Equal(t, day(2026, 8, 26), *upd.LastJournalDate)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upd, changed := updateStreak(tt.entryDate, tt.user, today)
			require.Equal(t, tt.changed, changed)
			if tt.check != nil {
				tt.check(t, upd)
			}
		})
	}
}

func TestMidnightNormalizesZones(t *testing.T) {
	zone := time.FixedZone("UTC+5", 5*3600)
	late := time.Date(2026, 8, 28, 2, 30, 0, 0, zone) // 21:30 UTC the day before
	assert.Equal(t, day(2026, 8, 27), midnight(late))
}
