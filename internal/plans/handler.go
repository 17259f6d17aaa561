package plans

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/2beens/gymplan/internal/identity"
	"github.com/2beens/gymplan/internal/planner"
	"github.com/2beens/gymplan/internal/progress"
	"github.com/2beens/gymplan/internal/telemetry/metrics"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=plans_test

type planGenerator interface {
	Generate(ctx context.Context, prompt string) (*planner.Result, error)
}

type plansStore interface {
	SaveDraft(ctx context.Context, userID string, draft planner.PlanDraft) (*Plan, error)
	Get(ctx context.Context, userID string, planID int64) (*Plan, error)
	List(ctx context.Context, userID string) ([]Plan, error)
	Activate(ctx context.Context, userID string, planID int64) error
	DeleteWorkout(ctx context.Context, userID string, planID, workoutID int64) error
	MoveWorkout(ctx context.Context, userID string, planID, workoutID int64, to Position) ([]Workout, error)
	NextWorkout(ctx context.Context, userID string, planID int64) (*Workout, error)
	CompleteWorkout(ctx context.Context, userID string, planID, workoutID int64) (*progress.WorkoutLog, error)
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

type GenerateResponse struct {
	Plan             *Plan         `json:"plan"`
	CreatedExercises []string      `json:"createdExercises"`
	Usage            UsageResponse `json:"usage"`
}

type UsageResponse struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
	// AllCallsTotal counts the tokens of exercise detail calls too.
	AllCallsTotal    int `json:"allCallsTotal"`
}

// GenerateErrorResponse is written for failed generations, so clients learn which
// exercises were already added to the catalog.
type GenerateErrorResponse struct {
	Error            string   `json:"error"`
	Kind             string   `json:"kind"`
	Field            string   `json:"field,omitempty"`
	Exercises        []string `json:"exercises,omitempty"`
	CreatedExercises []string `json:"createdExercises"`
}

type MoveRequest struct {
	Direction string `json:"direction,omitempty"`
	Index     *int   `json:"index,omitempty"`
}

type ListResponse struct {
	Plans []Plan `json:"plans"`
	Total int    `json:"total"`
}

type Handler struct {
	generator      planGenerator
	store          plansStore
	metricsManager *metrics.Manager
}

func NewHandler(generator planGenerator, store plansStore, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		generator:      generator,
		store:          store,
		metricsManager: metricsManager,
	}
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, planner.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, planner.ErrSchemaViolation):
		return "schema_violation"
	case errors.Is(err, planner.ErrGenerationFailed):
		return "generation_failed"
	case errors.Is(err, planner.ErrExerciseCreationFailed):
		return "exercise_creation_failed"
	case errors.Is(err, planner.ErrUnresolvedExercises):
		return "unresolved_exercises"
	case errors.Is(err, planner.ErrCatalogUnavailable):
		return "catalog_unavailable"
	default:
		return "unknown"
	}
}

func generationStatus(err error) int {
	switch {
	case errors.Is(err, planner.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrSchemaViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, planner.ErrGenerationFailed):
		return http.StatusBadGateway
	case errors.Is(err, planner.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (handler *Handler) writeGenerationError(w http.ResponseWriter, userID string, err error) {
	kind := failureKind(err)
	handler.metricsManager.CounterPlanGenerationFails.WithLabelValues(kind).Inc()

	resp := GenerateErrorResponse{
		Error:            err.Error(),
		Kind:             kind,
		CreatedExercises: []string{},
	}
	var genErr *planner.Error
	if errors.As(err, &genErr) {
		resp.Field = genErr.Field
		resp.Exercises = genErr.Names
		if len(genErr.Created) > 0 {
			resp.CreatedExercises = genErr.Created
			handler.metricsManager.CounterExercisesCreated.Add(float64(len(genErr.Created)))
		}
	}

	status := generationStatus(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("generate plan for user [%s]: %s", userID, err)
	} else {
		log.Warnf("generate plan for user [%s]: %s", userID, err)
	}
	pkg.WriteJSON(w, resp, status)
}

func (handler *Handler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.generate")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var genReq GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&genReq); err != nil {
		log.Errorf("generate plan, unmarshal json params: %s", err)
		http.Error(w, "invalid generate request", http.StatusBadRequest)
		return
	}

	result, err := handler.generator.Generate(ctx, genReq.Prompt)
	if err != nil {
		handler.writeGenerationError(w, userID, err)
		return
	}
	handler.metricsManager.CounterExercisesCreated.Add(float64(len(result.CreatedExercises)))

	plan, err := handler.store.SaveDraft(ctx, userID, result.Plan)
	if err != nil {
		handler.metricsManager.CounterPlanGenerationFails.WithLabelValues("save_failed").Inc()
		log.Errorf("generate plan for user [%s], save: %s", userID, err)
		pkg.WriteJSON(w, GenerateErrorResponse{
			Error:            "failed to save generated plan",
			Kind:             "save_failed",
			CreatedExercises: result.CreatedExercises,
		}, http.StatusInternalServerError)
		return
	}
	handler.metricsManager.CounterPlansGenerated.Inc()
	span.SetAttributes(attribute.Int64("plan.id", plan.ID))

	log.Debugf("plan %d generated for user [%s], %d exercises created", plan.ID, userID, len(result.CreatedExercises))
	pkg.WriteJSON(w, GenerateResponse{
		Plan:             plan,
		CreatedExercises: result.CreatedExercises,
		Usage: UsageResponse{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
			AllCallsTotal:    result.TotalUsage.TotalTokens,
		},
	}, http.StatusCreated)
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.list")
	defer span.End()

	userID, ok := identity.UserID(ctx)
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return
	}

	plans, err := handler.store.List(ctx, userID)
	if err != nil {
		log.Errorf("list plans for user [%s]: %s", userID, err)
		http.Error(w, "failed to list plans", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{Plans: plans, Total: len(plans)}, http.StatusOK)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.get")
	defer span.End()

	userID, planID, ok := userAndPlan(w, r)
	if !ok {
		return
	}

	plan, err := handler.store.Get(ctx, userID, planID)
	if err != nil {
		writeStoreError(w, "get plan", err)
		return
	}

	pkg.WriteJSON(w, plan, http.StatusOK)
}

func (handler *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.activate")
	defer span.End()

	userID, planID, ok := userAndPlan(w, r)
	if !ok {
		return
	}

	if err := handler.store.Activate(ctx, userID, planID); err != nil {
		writeStoreError(w, "activate plan", err)
		return
	}

	pkg.WriteTextResponseOK(w, "ok")
}

func (handler *Handler) HandleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.delete_workout")
	defer span.End()

	userID, planID, ok := userAndPlan(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "wid")
	if !ok {
		return
	}

	if err := handler.store.DeleteWorkout(ctx, userID, planID, workoutID); err != nil {
		writeStoreError(w, "delete workout", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (handler *Handler) HandleMoveWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.move_workout")
	defer span.End()

	userID, planID, ok := userAndPlan(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "wid")
	if !ok {
		return
	}

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var moveReq MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&moveReq); err != nil {
		log.Errorf("move workout, unmarshal json params: %s", err)
		http.Error(w, "invalid move request", http.StatusBadRequest)
		return
	}

	to, err := ParsePosition(moveReq.Direction, moveReq.Index)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	workouts, err := handler.store.MoveWorkout(ctx, userID, planID, workoutID, to)
	if err != nil {
		writeStoreError(w, "move workout", err)
		return
	}

	pkg.WriteJSON(w, workouts, http.StatusOK)
}

func (handler *Handler) HandleNext(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.next_workout")
	defer span.End()

	userID, planID, ok := userAndPlan(w, r)
	if !ok {
		return
	}

	workout, err := handler.store.NextWorkout(ctx, userID, planID)
	if err != nil {
		writeStoreError(w, "next workout", err)
		return
	}

	pkg.WriteJSON(w, workout, http.StatusOK)
}

func (handler *Handler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.plans.complete_workout")
	defer span.End()

	userID, planID, ok := userAndPlan(w, r)
	if !ok {
		return
	}
	workoutID, ok := pathID(w, r, "wid")
	if !ok {
		return
	}

	workoutLog, err := handler.store.CompleteWorkout(ctx, userID, planID, workoutID)
	if err != nil {
		writeStoreError(w, "complete workout", err)
		return
	}

	pkg.WriteJSON(w, workoutLog, http.StatusCreated)
}

func userAndPlan(w http.ResponseWriter, r *http.Request) (string, int64, bool) {
	userID, ok := identity.UserID(r.Context())
	if !ok {
		http.Error(w, "missing user", http.StatusUnauthorized)
		return "", 0, false
	}
	planID, ok := pathID(w, r, "id")
	if !ok {
		return "", 0, false
	}
	return userID, planID, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrPlanNotFound):
		http.Error(w, "plan not found", http.StatusNotFound)
	case errors.Is(err, ErrWorkoutNotFound):
		http.Error(w, "workout not found", http.StatusNotFound)
	case errors.Is(err, ErrNoWorkouts):
		http.Error(w, "plan has no workouts", http.StatusConflict)
	case errors.Is(err, ErrInvalidPosition):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		log.Errorf("%s: %s", op, err)
		http.Error(w, "failed to "+op, http.StatusInternalServerError)
	}
}
