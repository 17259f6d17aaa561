package progress

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	DateLayout     = "Jan 2, 2006"
	maxRecentItems = 5
	hoursInWeek    = 7 * 24
)

type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierModerate         Tier = "moderate"
	TierNeedsImprovement Tier = "needs improvement"
)

type WorkoutLog struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"userId"`
	PlanID      int64     `json:"planId"`
	WorkoutID   int64     `json:"workoutId"`
	WorkoutName string    `json:"workoutName"`
	CompletedAt time.Time `json:"completedAt"`
}

type Activity struct {
	Name string `json:"name"`
	Date string `json:"date"`
}

type Summary struct {
	TotalCompleted  int        `json:"totalCompleted"`
	Recent          []Activity `json:"recent"`
	WorkoutsPerWeek float64    `json:"workoutsPerWeek"`
	Consistency     Tier       `json:"consistency"`
	Encouragement   string     `json:"encouragement"`
}

var encouragements = map[Tier]string{
	TierExcellent:        "Outstanding consistency! You are training like a pro, keep it up.",
	TierGood:             "Great work staying consistent. A little push and you will be unstoppable.",
	TierModerate:         "You are building a habit. Try adding one more session a week.",
	TierNeedsImprovement: "Every workout counts. Let's plan your next session and build momentum.",
}

func tierFor(perWeek float64) Tier {
	switch {
	case perWeek >= 3:
		return TierExcellent
	case perWeek >= 2:
		return TierGood
	case perWeek >= 1:
		return TierModerate
	default:
		return TierNeedsImprovement
	}
}

// ZeroSummary is the summary of an empty workout history.
func ZeroSummary() Summary {
	return Summary{
		TotalCompleted: 0,
		Recent:         []Activity{},
		Consistency:    TierNeedsImprovement,
		Encouragement:  "No workouts logged yet. Complete your first workout to start tracking progress.",
	}
}

// Summarize condenses completed workout logs into a progress summary.
// The consistency rate is completed / max(1, floor(weeks spanned by the logs)).
func Summarize(logs []WorkoutLog) Summary {
	if len(logs) == 0 {
		return ZeroSummary()
	}

	sorted := make([]WorkoutLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompletedAt.After(sorted[j].CompletedAt)
	})

	recent := make([]Activity, 0, maxRecentItems)
	for i := 0; i < len(sorted) && i < maxRecentItems; i++ {
		recent = append(recent, Activity{
			Name: sorted[i].WorkoutName,
			Date: sorted[i].CompletedAt.Format(DateLayout),
		})
	}

	newest := sorted[0].CompletedAt
	oldest := sorted[len(sorted)-1].CompletedAt
	weeksSpanned := math.Floor(newest.Sub(oldest).Hours() / hoursInWeek)
	perWeek := float64(len(sorted)) / math.Max(1, weeksSpanned)
	tier := tierFor(perWeek)

	return Summary{
		TotalCompleted:  len(sorted),
		Recent:          recent,
		WorkoutsPerWeek: math.Round(perWeek*10) / 10,
		Consistency:     tier,
		Encouragement:   encouragements[tier],
	}
}

// ContextText renders the summary as plain text for a language model prompt.
func (s Summary) ContextText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total workouts completed: %d\n", s.TotalCompleted))
	if len(s.Recent) > 0 {
		sb.WriteString("Recent workouts:\n")
		for _, a := range s.Recent {
			sb.WriteString(fmt.Sprintf("- %s (%s)\n", a.Name, a.Date))
		}
	}
	sb.WriteString(fmt.Sprintf("Consistency: %s (%.1f workouts per week)\n", s.Consistency, s.WorkoutsPerWeek))
	sb.WriteString(s.Encouragement)
	return sb.String()
}
