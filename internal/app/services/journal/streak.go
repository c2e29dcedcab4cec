package journal

import (
	"time"

	"github.com/booklovin/backend/internal/app/domain/user"
	"github.com/booklovin/backend/internal/app/storage"
)

// streakOutcome labels a streak transition for metrics.
func streakOutcome(upd storage.StreakUpdate, changed bool) string {
	switch {
	case !changed:
		return "unchanged"
	case upd.ClearStreakStart:
		return "broken"
	case upd.CurrentStreak != nil && *upd.CurrentStreak == 1:
		return "started"
	default:
		return "continued"
	}
}

// midnight normalizes an instant to 00:00 UTC of its calendar day. All streak
// arithmetic happens on these day anchors.
func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// updateStreak computes the streak transition caused by writing an entry on
// entryDate. It returns the sparse update to persist and whether anything
// changed. today anchors the "did the streak just restart" decision for
// gapped entries.
//
// The transitions, keyed by the day gap since the last recorded entry:
//
//	no history   first entry starts a streak of one
//	gap == 0     same-day entries never move the streak
//	gap == 1     the streak continues; length is measured from its start day
//	gap  > 1     the streak broke; writing today starts a fresh one, while a
//	             backdated entry only clears the stale state
//
// Entries dated before the last recorded day are ignored entirely.
func updateStreak(entryDate time.Time, u user.User, today time.Time) (storage.StreakUpdate, bool) {
	entryDay := midnight(entryDate)
	todayDay := midnight(today)

	if u.LastJournalDate == nil {
		one := 1
		upd := storage.StreakUpdate{
			CurrentStreak:   &one,
			StreakStart:     &entryDay,
			LastJournalDate: &entryDay,
		}
		if u.LongestStreak < 1 {
			upd.LongestStreak = &one
		}
		return upd, true
	}

	lastDay := midnight(*u.LastJournalDate)
	gap := int(entryDay.Sub(lastDay).Hours() / 24)

	switch {
	case gap <= 0:
		return storage.StreakUpdate{}, false

	case gap == 1:
		if u.StreakStart == nil {
			// Continuing a streak whose anchor was lost: re-anchor it on the
			// previous entry's day so the pair counts as two.
			two := 2
			start := lastDay
			upd := storage.StreakUpdate{
				CurrentStreak:   &two,
				StreakStart:     &start,
				LastJournalDate: &entryDay,
			}
			if u.LongestStreak < 2 {
				upd.LongestStreak = &two
			}
			return upd, true
		}
		length := int(entryDay.Sub(midnight(*u.StreakStart)).Hours()/24) + 1
		upd := storage.StreakUpdate{
			CurrentStreak:   &length,
			LastJournalDate: &entryDay,
		}
		if length > u.LongestStreak {
			upd.LongestStreak = &length
		}
		return upd, true

	default: // gap > 1, the streak broke
		if entryDay.Equal(todayDay) {
			one := 1
			return storage.StreakUpdate{
				CurrentStreak:   &one,
				StreakStart:     &entryDay,
				LastJournalDate: &entryDay,
			}, true
		}
		zero := 0
		return storage.StreakUpdate{
			CurrentStreak:    &zero,
			ClearStreakStart: true,
			LastJournalDate:  &entryDay,
		}, true
	}
}
