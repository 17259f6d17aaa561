package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/internal/progress"
)

var (
	ErrInvalidMuscleGroup = errors.New("invalid muscle group")
	ErrMissingUserID      = errors.New("user_id is required")
)

type catalogSearcher interface {
	Search(ctx context.Context, params catalog.SearchParams) ([]catalog.Exercise, error)
}

type summaryProvider interface {
	Summary(ctx context.Context, userID string) (progress.Summary, error)
}

type planReader interface {
	List(ctx context.Context, userID string) ([]plans.Plan, error)
	Get(ctx context.Context, userID string, planID int64) (*plans.Plan, error)
}

// contextService provides gymplan context data. Used by Handler for testability.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	ExerciseCatalog(ctx context.Context, muscleGroup string) ([]catalog.Exercise, error)
	ProgressSummary(ctx context.Context, userID string) (*ProgressContext, error)
	ActivePlan(ctx context.Context, userID string) (*plans.Plan, error)
}

// ProgressContext is a progress summary together with the text the coach is primed with.
type ProgressContext struct {
	Summary progress.Summary `json:"summary"`
	Context string           `json:"context"`
}

type ContextService struct {
	schema   SchemaRepo
	catalog  catalogSearcher
	progress summaryProvider
	plans    planReader
}

func NewContextService(schemaRepo SchemaRepo, exercises catalogSearcher, summaries summaryProvider, planSource planReader) *ContextService {
	return &ContextService{
		schema:   schemaRepo,
		catalog:  exercises,
		progress: summaries,
		plans:    planSource,
	}
}

func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatSchema(cols), nil
}

func formatSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# Gymplan DB Schema\n\nNo gymplan tables found in the database.\n"
	}

	byTable := make(map[string][]SchemaColumn)
	for _, c := range cols {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	tableOrder := make([]string, 0, len(byTable))
	for t := range byTable {
		tableOrder = append(tableOrder, t)
	}
	sort.Strings(tableOrder)

	var b strings.Builder
	b.WriteString("# Gymplan DB Schema\n\n")
	b.WriteString(fmt.Sprintf("Tables: %s (schema: public).\n\n", strings.Join(gymplanTables, ", ")))

	for _, tableName := range tableOrder {
		b.WriteString("## ")
		b.WriteString(tableName)
		b.WriteString("\n\n| Column | Type | Nullable | Default |\n|--------|------|----------|--------|\n")
		for _, c := range byTable[tableName] {
			def := "-"
			if c.ColumnDef != nil && *c.ColumnDef != "" {
				def = *c.ColumnDef
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def))
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n") + "\n"
}

// ExerciseCatalog returns the catalog, optionally limited to one muscle group.
func (s *ContextService) ExerciseCatalog(ctx context.Context, muscleGroup string) ([]catalog.Exercise, error) {
	muscleGroup = strings.ToLower(strings.TrimSpace(muscleGroup))
	if muscleGroup != "" && !catalog.MuscleGroup(muscleGroup).IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMuscleGroup, muscleGroup)
	}
	return s.catalog.Search(ctx, catalog.SearchParams{MuscleGroup: muscleGroup})
}

func (s *ContextService) ProgressSummary(ctx context.Context, userID string) (*ProgressContext, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	summary, err := s.progress.Summary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProgressContext{
		Summary: summary,
		Context: summary.ContextText(),
	}, nil
}

// ActivePlan returns the user's active plan with its workouts, or nil when no plan is active.
func (s *ContextService) ActivePlan(ctx context.Context, userID string) (*plans.Plan, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUserID
	}
	userPlans, err := s.plans.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, p := range userPlans {
		if p.IsActive {
			return s.plans.Get(ctx, userID, p.ID)
		}
	}
	return nil, nil
}
