package planner

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/textgen"
)

// decodeGenerated parses untrusted model output into an untyped JSON document.
func decodeGenerated(content string) (any, error) {
	var doc any
	if err := textgen.DecodeJSON(content, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func numberField(obj map[string]any, key string) number {
	v, ok := obj[key].(float64)
	if !ok {
		return number{}
	}
	return someNumber(v)
}

func stringField(obj map[string]any, key string) (string, bool) {
	v, ok := obj[key].(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// draftBuilder validates the generated document structure and normalizes every exercise
// in one pass, collecting names that are missing from the catalog snapshot.
type draftBuilder struct {
	snapshot catalog.Index
	missing  []string
	seen     map[string]bool
}

func newDraftBuilder(snapshot catalog.Index) *draftBuilder {
	return &draftBuilder{
		snapshot: snapshot,
		seen:     make(map[string]bool),
	}
}

func (b *draftBuilder) build(doc any) (*PlanDraft, error) {
	root, ok := doc.(map[string]any)
	if !ok {
		return nil, schemaViolation("", "generated document is not an object")
	}

	name, ok := stringField(root, "name")
	if !ok {
		return nil, schemaViolation("name", "missing or not a string")
	}
	if n := utf8.RuneCountInString(name); n < minPlanNameLength || n > maxPlanNameLength {
		return nil, schemaViolation("name", "length %d out of range [%d,%d]", n, minPlanNameLength, maxPlanNameLength)
	}

	rawWorkouts, ok := root["workouts"].([]any)
	if !ok {
		return nil, schemaViolation("workouts", "missing or not an array")
	}

	wpw, ok := root["workoutsPerWeek"].(float64)
	if !ok {
		return nil, schemaViolation("workoutsPerWeek", "missing or not a number")
	}
	if wpw != math.Trunc(wpw) || wpw < minWorkoutsPerWeek || wpw > maxWorkoutsPerWeek {
		return nil, schemaViolation("workoutsPerWeek", "%v is not an integer in [%d,%d]", wpw, minWorkoutsPerWeek, maxWorkoutsPerWeek)
	}

	description, _ := stringField(root, "description")
	draft := &PlanDraft{
		Name:            name,
		Description:     description,
		WorkoutsPerWeek: int(wpw),
		Workouts:        make([]WorkoutSpec, 0, len(rawWorkouts)),
	}

	for i, rawWorkout := range rawWorkouts {
		workout, err := b.buildWorkout(i, rawWorkout)
		if err != nil {
			return nil, err
		}
		draft.Workouts = append(draft.Workouts, *workout)
	}

	return draft, nil
}

func (b *draftBuilder) buildWorkout(idx int, rawWorkout any) (*WorkoutSpec, error) {
	field := fmt.Sprintf("workouts[%d]", idx)
	obj, ok := rawWorkout.(map[string]any)
	if !ok {
		return nil, schemaViolation(field, "workout is not an object")
	}

	name, ok := stringField(obj, "name")
	if !ok || name == "" {
		return nil, schemaViolation(field+".name", "missing or empty")
	}

	rawExercises, ok := obj["exercises"].([]any)
	if !ok {
		return nil, schemaViolation(field+".exercises", "missing or not an array")
	}

	workout := &WorkoutSpec{
		Name:      name,
		Exercises: make([]PlanExerciseSpec, 0, len(rawExercises)),
	}
	for j, rawExercise := range rawExercises {
		exField := exerciseField(idx, j)
		exObj, ok := rawExercise.(map[string]any)
		if !ok {
			return nil, schemaViolation(exField, "exercise is not an object")
		}
		exerciseName, ok := stringField(exObj, "exerciseName")
		if !ok || exerciseName == "" {
			return nil, schemaViolation(exField+".exerciseName", "missing or empty")
		}

		spec := normalizeExercise(
			exerciseName,
			numberField(exObj, "sets"),
			numberField(exObj, "reps"),
			numberField(exObj, "weight"),
			numberField(exObj, "restTime"),
		)
		if err := checkExerciseBounds(exField, spec); err != nil {
			return nil, err
		}

		b.trackMissing(exerciseName)
		workout.Exercises = append(workout.Exercises, spec)
	}

	return workout, nil
}

func (b *draftBuilder) trackMissing(name string) {
	if _, known := b.snapshot.Lookup(name); known {
		return
	}
	key := catalog.NameKey(name)
	if b.seen[key] {
		return
	}
	b.seen[key] = true
	b.missing = append(b.missing, name)
}
