package planner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/2beens/gymplan/internal/catalog"
)

const planJSONShape = `{
  "name": "string (3-100 characters)",
  "description": "string (optional)",
  "workoutsPerWeek": 3,
  "workouts": [
    {
      "name": "string",
      "exercises": [
        {
          "exerciseName": "string",
          "sets": 3,
          "reps": 12,
          "weight": 0,
          "restTime": 60
        }
      ]
    }
  ]
}`

const exerciseDetailJSONShape = `{
  "name": "string",
  "muscleGroup": "one of: %s",
  "equipment": "one of: %s (optional)",
  "description": "string (optional)"
}`

type catalogPromptEntry struct {
	Name        string `json:"name"`
	MuscleGroup string `json:"muscleGroup"`
	Equipment   string `json:"equipment,omitempty"`
}

func catalogContext(exercises []catalog.Exercise) string {
	entries := make([]catalogPromptEntry, 0, len(exercises))
	for _, e := range exercises {
		entries = append(entries, catalogPromptEntry{
			Name:        e.Name,
			MuscleGroup: string(e.MuscleGroup),
			Equipment:   string(e.Equipment),
		})
	}
	entriesJson, err := json.Marshal(entries)
	if err != nil {
		// plain strings and enums only, cannot fail
		return "[]"
	}
	return string(entriesJson)
}

func planSystemPrompt(exercises []catalog.Exercise) string {
	var sb strings.Builder
	sb.WriteString("You are an experienced strength and conditioning coach creating workout plans.\n")
	sb.WriteString("Respond with a single JSON object only, no markdown and no commentary.\n\n")
	sb.WriteString("The JSON object must have this shape:\n")
	sb.WriteString(planJSONShape)
	sb.WriteString("\n\nConstraints:\n")
	sb.WriteString(fmt.Sprintf("- name: %d to %d characters\n", minPlanNameLength, maxPlanNameLength))
	sb.WriteString(fmt.Sprintf("- workoutsPerWeek: integer from %d to %d\n", minWorkoutsPerWeek, maxWorkoutsPerWeek))
	sb.WriteString(fmt.Sprintf("- sets: integer from %d to %d\n", minSets, maxSets))
	sb.WriteString(fmt.Sprintf("- reps: integer from %d to %d; for timed holds (plank, wall sit, dead hang) reps are seconds\n", minReps, maxReps))
	sb.WriteString("- weight: kilograms, 0 or more; use 0 for bodyweight exercises\n")
	sb.WriteString("- restTime: seconds of rest between sets, 0 or more\n\n")
	sb.WriteString("Prefer exercises from the catalog below and use their names exactly as written. ")
	sb.WriteString("You may use other well-known exercises when the catalog has nothing suitable; ")
	sb.WriteString("give them their common English name.\n\n")
	sb.WriteString("Exercise catalog:\n")
	sb.WriteString(catalogContext(exercises))
	return sb.String()
}

func planUserPrompt(request string) string {
	return fmt.Sprintf(
		"Create a workout plan as JSON with exactly this shape:\n%s\n\nRequest: %s",
		planJSONShape, request,
	)
}

func exerciseDetailSystemPrompt(examples []catalog.Exercise) string {
	muscleGroups := make([]string, 0, len(catalog.MuscleGroups))
	for _, mg := range catalog.MuscleGroups {
		muscleGroups = append(muscleGroups, string(mg))
	}
	equipment := make([]string, 0, len(catalog.EquipmentTypes))
	for _, eq := range catalog.EquipmentTypes {
		equipment = append(equipment, string(eq))
	}

	var sb strings.Builder
	sb.WriteString("You describe gym exercises for an exercise catalog.\n")
	sb.WriteString("Respond with a single JSON object only, no markdown and no commentary.\n\n")
	sb.WriteString("The JSON object must have this shape:\n")
	sb.WriteString(fmt.Sprintf(exerciseDetailJSONShape, strings.Join(muscleGroups, ", "), strings.Join(equipment, ", ")))
	sb.WriteString("\n\nUse the common English name of the exercise in title case. ")
	sb.WriteString("Keep the description to one or two sentences.\n\n")
	sb.WriteString("Existing catalog entries, for style:\n")
	sb.WriteString(catalogContext(examples))
	return sb.String()
}

func exerciseDetailUserPrompt(name string) string {
	return fmt.Sprintf("Describe the exercise: %s", name)
}
