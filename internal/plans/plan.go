package plans

import (
	"errors"
	"time"
)

var (
	ErrPlanNotFound    = errors.New("plan not found")
	ErrWorkoutNotFound = errors.New("workout not found")
	// ErrNoWorkouts is returned when the next workout is requested for a plan without workouts.
	ErrNoWorkouts      = errors.New("plan has no workouts")
	ErrInvalidPosition = errors.New("invalid workout position")
)

type Plan struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	WorkoutsPerWeek int       `json:"workoutsPerWeek"`
	IsActive        bool      `json:"isActive"`
	CycleStartedAt  time.Time `json:"cycleStartedAt"`
	CreatedAt       time.Time `json:"createdAt"`
	Workouts        []Workout `json:"workouts,omitempty"`
}

type Workout struct {
	ID        int64             `json:"id"`
	PlanID    int64             `json:"planId"`
	Name      string            `json:"name"`
	Position  int               `json:"position"`
	Exercises []WorkoutExercise `json:"exercises"`
}

type WorkoutExercise struct {
	ID           int64   `json:"id"`
	WorkoutID    int64   `json:"workoutId"`
	ExerciseName string  `json:"exerciseName"`
	Sets         int     `json:"sets"`
	Reps         int     `json:"reps"`
	Weight       float64 `json:"weight"`
	RestTime     int     `json:"restTime"`
	Position     int     `json:"position"`
}
