package event

import (
	"github.com/kalendo/kalendo/internal/dateutil"
)

// Conflicts reports whether the candidate placement overlaps any occurrence
// in existingOnSameDay. The caller pre-filters the list to the candidate's
// day; entries on other days are skipped, not treated as conflicts.
//
// An untimed candidate never conflicts. Occurrences belonging to the
// candidate itself are skipped, so editing or moving an event does not
// collide with its own slot.
func Conflicts(candidate Event, existingOnSameDay []Occurrence) bool {
	if !candidate.Timed() {
		return false
	}

	candidateStart := candidate.StartTime.At(candidate.Date)
	candidateEnd := candidate.EndTime.At(candidate.Date)

	for _, existing := range existingOnSameDay {
		if existing.ID == candidate.ID || existing.InstanceID == candidate.ID {
			continue
		}
		if !existing.Timed() || !dateutil.SameDay(existing.Date, candidate.Date) {
			continue
		}

		existingStart := existing.StartTime.At(existing.Date)
		existingEnd := existing.EndTime.At(existing.Date)

		// Half-open interval overlap. Identical spans are also named
		// explicitly, even though the first clause already covers them.
		if (candidateStart.Before(existingEnd) && candidateEnd.After(existingStart)) ||
			(candidateStart.Equal(existingStart) && candidateEnd.Equal(existingEnd)) {
			return true
		}
	}
	return false
}
