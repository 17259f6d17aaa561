package planner

import (
	"github.com/2beens/gymplan/internal/textgen"
)

const (
	MaxPromptLength = 2000

	minPlanNameLength  = 3
	maxPlanNameLength  = 100
	minWorkoutsPerWeek = 1
	maxWorkoutsPerWeek = 7
)

// PlanExerciseSpec is one exercise prescription inside a generated workout.
type PlanExerciseSpec struct {
	ExerciseName string  `json:"exerciseName"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight"`
	RestTime     int     `json:"restTime"`
}

type WorkoutSpec struct {
	Name      string             `json:"name"`
	Exercises []PlanExerciseSpec `json:"exercises"`
}

// PlanDraft is the validated, not yet persisted output of a generation.
type PlanDraft struct {
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	WorkoutsPerWeek int           `json:"workoutsPerWeek"`
	Workouts        []WorkoutSpec `json:"workouts"`
}

// ExerciseNames returns every exercise reference in the plan, in plan order.
func (p *PlanDraft) ExerciseNames() []string {
	var names []string
	for _, w := range p.Workouts {
		for _, e := range w.Exercises {
			names = append(names, e.ExerciseName)
		}
	}
	return names
}

type Result struct {
	Plan             PlanDraft `json:"plan"`
	CreatedExercises []string  `json:"createdExercises"`
	// Usage is reported by the plan generation call only, TotalUsage adds the exercise detail calls.
	Usage      textgen.Usage `json:"usage"`
	TotalUsage textgen.Usage `json:"totalUsage"`
}
