package plans

import "sort"

// pickNext returns the first workout, by position, not completed in the current cycle.
// When every workout is completed the cycle starts over from the first one.
func pickNext(workouts []Workout, completed map[int64]bool) (*Workout, error) {
	if len(workouts) == 0 {
		return nil, ErrNoWorkouts
	}

	ordered := make([]Workout, len(workouts))
	copy(ordered, workouts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	for i := range ordered {
		if !completed[ordered[i].ID] {
			return &ordered[i], nil
		}
	}
	return &ordered[0], nil
}

func allCompleted(workoutIDs []int64, completed map[int64]bool) bool {
	for _, id := range workoutIDs {
		if !completed[id] {
			return false
		}
	}
	return len(workoutIDs) > 0
}
