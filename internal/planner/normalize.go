package planner

import (
	"fmt"
	"math"
	"strings"
)

const (
	minSets         = 1
	maxSets         = 10
	defaultSets     = 3
	minReps         = 1
	maxReps         = 50
	defaultReps     = 12
	defaultHoldReps = 30
	defaultRestTime = 60
	// rest_time is an INT column
	maxRestTime = math.MaxInt32
)

// holdExercises are matched as case-insensitive substrings of the exercise name.
var holdExercises = []string{
	"plank",
	"wall sit",
	"dead hang",
	"hollow hold",
	"l-sit",
	"side plank",
	"forearm plank",
	"high plank",
}

// number is a numeric field read from generated JSON.
// valid is false when the field is missing, not a number or not finite.
type number struct {
	value float64
	valid bool
}

func someNumber(v float64) number {
	return number{value: v, valid: !math.IsNaN(v) && !math.IsInf(v, 0)}
}

func isHoldExercise(name string) bool {
	lowerName := strings.ToLower(name)
	for _, hold := range holdExercises {
		if strings.Contains(lowerName, hold) {
			return true
		}
	}
	return false
}

func defaultRepsFor(name string) int {
	if isHoldExercise(name) {
		return defaultHoldReps
	}
	return defaultReps
}

func normalizeExercise(name string, sets, reps, weight, restTime number) PlanExerciseSpec {
	spec := PlanExerciseSpec{
		ExerciseName: name,
	}

	if !reps.valid || reps.value < minReps {
		spec.Reps = defaultRepsFor(name)
	} else {
		spec.Reps = roundClamped(reps.value, maxReps)
	}

	if !sets.valid || sets.value < minSets {
		spec.Sets = defaultSets
	} else {
		spec.Sets = roundClamped(sets.value, maxSets)
	}

	if !weight.valid || weight.value < 0 {
		spec.Weight = 0
	} else {
		spec.Weight = weight.value
	}

	if !restTime.valid || restTime.value < 0 {
		spec.RestTime = defaultRestTime
	} else {
		spec.RestTime = roundClamped(restTime.value, maxRestTime)
	}

	return spec
}

// roundClamped clamps in float space before converting, huge values would overflow int.
func roundClamped(v float64, upper int) int {
	if v >= float64(upper) {
		return upper
	}
	return int(math.Round(v))
}

// NormalizeExercise applies the default and clamping rules to an exercise prescription.
// Normalized values are fixed points, so normalizing twice changes nothing.
func NormalizeExercise(spec PlanExerciseSpec) PlanExerciseSpec {
	return normalizeExercise(
		spec.ExerciseName,
		someNumber(float64(spec.Sets)),
		someNumber(float64(spec.Reps)),
		someNumber(spec.Weight),
		someNumber(float64(spec.RestTime)),
	)
}

// checkExerciseBounds re-validates a normalized prescription.
func checkExerciseBounds(field string, spec PlanExerciseSpec) error {
	if spec.Sets < minSets || spec.Sets > maxSets {
		return schemaViolation(field+".sets", "sets %d out of range [%d,%d]", spec.Sets, minSets, maxSets)
	}
	if spec.Reps < minReps || spec.Reps > maxReps {
		return schemaViolation(field+".reps", "reps %d out of range [%d,%d]", spec.Reps, minReps, maxReps)
	}
	if spec.RestTime < 0 {
		return schemaViolation(field+".restTime", "negative rest time %d", spec.RestTime)
	}
	if spec.Weight < 0 || math.IsNaN(spec.Weight) || math.IsInf(spec.Weight, 0) {
		return schemaViolation(field+".weight", "invalid weight %v", spec.Weight)
	}
	return nil
}

func exerciseField(workoutIdx, exerciseIdx int) string {
	return fmt.Sprintf("workouts[%d].exercises[%d]", workoutIdx, exerciseIdx)
}
