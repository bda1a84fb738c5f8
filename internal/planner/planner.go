// Package planner partitions a set of time slots into maximal contiguous
// same-room runs, each of which becomes a single upstream meeting.
package planner

import (
	"sort"

	"github.com/cnluzhang/tencent-meeting-service/internal/domain"
)

// Plan buckets slots by RoomLabel, sorts each bucket by StartInstant, and
// greedily merges adjacent slots whose boundaries touch exactly into a
// single run. Overlapping (not merely touching) slots are treated as
// non-contiguous and land in separate runs — the source system's observed
// behavior for this edge case, documented rather than rejected.
//
// Bucket iteration order is not stable across calls (map iteration), but
// every input slot appears in exactly one output run regardless of order.
func Plan(slots []domain.TimeSlot) []domain.PlannedRun {
	if len(slots) == 0 {
		return nil
	}

	buckets := make(map[string][]domain.TimeSlot)
	for _, s := range slots {
		buckets[s.RoomLabel] = append(buckets[s.RoomLabel], s)
	}

	var runs []domain.PlannedRun
	for room, bucket := range buckets {
		sort.Slice(bucket, func(i, j int) bool {
			return bucket[i].StartInstant.Before(bucket[j].StartInstant)
		})

		current := []domain.TimeSlot{bucket[0]}
		for _, s := range bucket[1:] {
			last := current[len(current)-1]
			if last.EndInstant.Equal(s.StartInstant) {
				current = append(current, s)
				continue
			}
			runs = append(runs, domain.PlannedRun{RoomLabel: room, Slots: current})
			current = []domain.TimeSlot{s}
		}
		runs = append(runs, domain.PlannedRun{RoomLabel: room, Slots: current})
	}

	return runs
}
