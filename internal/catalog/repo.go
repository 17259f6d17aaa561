package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrExerciseNotFound = errors.New("exercise not found")
	// ErrExerciseExists is returned by Create when a row with the same name is already stored.
	ErrExerciseExists = errors.New("exercise already exists")
)

type SearchParams struct {
	Query       string
	MuscleGroup string
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// List returns the full catalog snapshot.
func (r *Repo) List(ctx context.Context) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, muscle_group, equipment, description, created_by, created_at
			FROM exercise_catalog
			ORDER BY name;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	span.SetAttributes(attribute.Int("catalog.size", len(exercises)))

	return exercises, nil
}

func (r *Repo) Search(ctx context.Context, params SearchParams) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.search")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	if params.Query != "" {
		span.SetAttributes(attribute.String("params.query", params.Query))
	}
	if params.MuscleGroup != "" {
		span.SetAttributes(attribute.String("params.muscleGroup", params.MuscleGroup))
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, muscle_group, equipment, description, created_by, created_at
			FROM exercise_catalog
			WHERE ($1::text = '' OR name ILIKE '%' || $1 || '%')
				AND ($2::text = '' OR muscle_group = $2)
			ORDER BY name;`,
		params.Query, params.MuscleGroup,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, fmt.Errorf("rows2exercises: %w", err)
	}
	return exercises, nil
}

// GetByName finds an exercise by case-insensitive name.
func (r *Repo) GetByName(ctx context.Context, name string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.get_by_name")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", name))

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, name, muscle_group, equipment, description, created_by, created_at
			FROM exercise_catalog
			WHERE lower(name) = lower(trim($1))
			ORDER BY id
			LIMIT 1;`,
		name,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	exercises, err := r.rows2exercises(rows)
	if err != nil {
		return nil, err
	}
	if len(exercises) != 1 {
		return nil, ErrExerciseNotFound
	}
	return &exercises[0], nil
}

// Create stores a new exercise. The store enforces name uniqueness (case-sensitive),
// a collision is reported as ErrExerciseExists.
func (r *Repo) Create(ctx context.Context, exercise Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("name", exercise.Name))

	if exercise.CreatedAt.IsZero() {
		exercise.CreatedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO exercise_catalog
				(name, muscle_group, equipment, description, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id;`,
		exercise.Name,
		string(exercise.MuscleGroup),
		nullIfEmpty(string(exercise.Equipment)),
		nullIfEmpty(exercise.Description),
		nullIfEmpty(exercise.CreatedBy),
		exercise.CreatedAt,
	).Scan(&exercise.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, fmt.Errorf("%w: %s", ErrExerciseExists, exercise.Name)
		}
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	span.SetAttributes(attribute.Int64("exercise.id", exercise.ID))
	return &exercise, nil
}

func (r *Repo) rows2exercises(rows pgx.Rows) ([]Exercise, error) {
	exercises := make([]Exercise, 0)
	for rows.Next() {
		var e Exercise
		var muscleGroup string
		var equipment, description, createdBy *string
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&muscleGroup,
			&equipment,
			&description,
			&createdBy,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}

		e.MuscleGroup = MuscleGroup(muscleGroup)
		if equipment != nil {
			e.Equipment = Equipment(*equipment)
		}
		if description != nil {
			e.Description = *description
		}
		if createdBy != nil {
			e.CreatedBy = *createdBy
		}
		exercises = append(exercises, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return exercises, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
