package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/2beens/gymplan/internal/catalog"
	"github.com/2beens/gymplan/internal/plans"
	"github.com/2beens/gymplan/internal/progress"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type mockContextService struct {
	schema     string
	schemaErr  error
	exercises  []catalog.Exercise
	catalogErr error
	progress   *ProgressContext
	progErr    error
	plan       *plans.Plan
	planErr    error
}

func (m *mockContextService) GetSchema(ctx context.Context) (string, error) {
	return m.schema, m.schemaErr
}

func (m *mockContextService) ExerciseCatalog(ctx context.Context, muscleGroup string) ([]catalog.Exercise, error) {
	return m.exercises, m.catalogErr
}

func (m *mockContextService) ProgressSummary(ctx context.Context, userID string) (*ProgressContext, error) {
	return m.progress, m.progErr
}

func (m *mockContextService) ActivePlan(ctx context.Context, userID string) (*plans.Plan, error) {
	return m.plan, m.planErr
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestHandler_GetSchemaTool(t *testing.T) {
	t.Run("returns_schema", func(t *testing.T) {
		want := "## workout_plan\n| col | type |\n"
		h := NewHandler(&mockContextService{schema: want})
		res, _, err := h.GetSchemaTool()(context.Background(), &mcp.CallToolRequest{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected IsError")
		}
		if got := resultText(t, res); got != want {
			t.Fatalf("content text = %q, want %q", got, want)
		}
	})

	t.Run("returns_error_when_schema_fails", func(t *testing.T) {
		h := NewHandler(&mockContextService{schemaErr: errors.New("db gone")})
		res, _, err := h.GetSchemaTool()(context.Background(), &mcp.CallToolRequest{}, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if got := resultText(t, res); got != "Error fetching schema: db gone" {
			t.Fatalf("content text = %q", got)
		}
	})
}

func TestHandler_GetExerciseCatalogTool(t *testing.T) {
	t.Run("returns_exercises", func(t *testing.T) {
		h := NewHandler(&mockContextService{exercises: []catalog.Exercise{
			{ID: 1, Name: "Goblet Squat", MuscleGroup: catalog.MuscleGroupLegs},
		}})
		res, _, err := h.GetExerciseCatalogTool()(context.Background(), &mcp.CallToolRequest{}, ExerciseCatalogInput{MuscleGroup: "legs"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var got []catalog.Exercise
		if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(got) != 1 || got[0].Name != "Goblet Squat" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("invalid_muscle_group", func(t *testing.T) {
		h := NewHandler(&mockContextService{catalogErr: ErrInvalidMuscleGroup})
		res, _, err := h.GetExerciseCatalogTool()(context.Background(), &mcp.CallToolRequest{}, ExerciseCatalogInput{MuscleGroup: "neck"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if got := resultText(t, res); !strings.Contains(got, "invalid muscle group") {
			t.Fatalf("content text = %q", got)
		}
	})
}

func TestHandler_GetProgressSummaryTool(t *testing.T) {
	h := NewHandler(&mockContextService{progress: &ProgressContext{
		Summary: progress.ZeroSummary(),
		Context: "No workouts completed yet.",
	}})
	res, _, err := h.GetProgressSummaryTool()(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected IsError")
	}
	var got ProgressContext
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Context != "No workouts completed yet." {
		t.Fatalf("context = %q", got.Context)
	}

	h = NewHandler(&mockContextService{progErr: ErrMissingUserID})
	res, _, err = h.GetProgressSummaryTool()(context.Background(), &mcp.CallToolRequest{}, UserInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatalf("expected IsError")
	}
}

func TestHandler_GetActivePlanTool(t *testing.T) {
	h := NewHandler(&mockContextService{})
	res, _, err := h.GetActivePlanTool()(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, res); got != "No active plan." {
		t.Fatalf("content text = %q", got)
	}

	h = NewHandler(&mockContextService{plan: &plans.Plan{ID: 4, Name: "PPL", IsActive: true}})
	res, _, err = h.GetActivePlanTool()(context.Background(), &mcp.CallToolRequest{}, UserInput{UserID: "user-1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got plans.Plan
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.ID != 4 || !got.IsActive {
		t.Fatalf("got %+v", got)
	}
}

func TestNewServer(t *testing.T) {
	s := NewServer(&mockSchemaRepo{}, &mockCatalog{}, &mockSummaries{}, &mockPlans{})
	if s == nil {
		t.Fatal("expected server")
	}
	if NewHTTPHandler(s) == nil {
		t.Fatal("expected http handler")
	}
}
