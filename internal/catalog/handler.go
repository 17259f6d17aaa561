package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/2beens/gymplan/internal/identity"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=catalog_test

type exercisesStore interface {
	Search(ctx context.Context, params SearchParams) ([]Exercise, error)
	Create(ctx context.Context, exercise Exercise) (*Exercise, error)
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

type Handler struct {
	store exercisesStore
}

func NewHandler(store exercisesStore) *Handler {
	return &Handler{
		store: store,
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.list")
	defer span.End()

	params := SearchParams{
		Query:       strings.TrimSpace(r.URL.Query().Get("q")),
		MuscleGroup: r.URL.Query().Get("muscleGroup"),
	}
	if params.MuscleGroup != "" && !MuscleGroup(params.MuscleGroup).IsValid() {
		http.Error(w, "invalid muscle group", http.StatusBadRequest)
		return
	}

	exercises, err := handler.store.Search(ctx, params)
	if err != nil {
		log.Errorf("list exercises [%s] [%s]: %s", params.Query, params.MuscleGroup, err)
		http.Error(w, "failed to get exercises", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, ListResponse{
		Exercises: exercises,
		Total:     len(exercises),
	}, http.StatusOK)
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.catalog.create")
	defer span.End()

	if r.Header.Get("Content-Type") != pkg.ContentType.JSON {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var exercise Exercise
	if err := json.NewDecoder(r.Body).Decode(&exercise); err != nil {
		log.Errorf("new exercise, unmarshal json params: %s", err)
		http.Error(w, "add exercise failed", http.StatusBadRequest)
		return
	}

	exercise.Name = strings.TrimSpace(exercise.Name)
	if exercise.Name == "" || utf8.RuneCountInString(exercise.Name) > 100 {
		http.Error(w, "error, exercise name must be 1-100 characters", http.StatusBadRequest)
		return
	}
	if !exercise.MuscleGroup.IsValid() {
		http.Error(w, "error, invalid muscle group", http.StatusBadRequest)
		return
	}
	if exercise.Equipment != "" && !exercise.Equipment.IsValid() {
		http.Error(w, "error, invalid equipment", http.StatusBadRequest)
		return
	}

	exercise.ID = 0
	exercise.CreatedBy, _ = identity.UserID(ctx)

	created, err := handler.store.Create(ctx, exercise)
	if err != nil {
		if errors.Is(err, ErrExerciseExists) {
			http.Error(w, "error, exercise already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to add new exercise [%s]: %s", exercise.Name, err)
		http.Error(w, "error, failed to add new exercise", http.StatusInternalServerError)
		return
	}

	log.Debugf("new exercise added: [%s] [%s]: %d", created.MuscleGroup, created.Name, created.ID)

	pkg.WriteJSON(w, created, http.StatusCreated)
}
