package plans

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/gymplan/internal/planner"
	"github.com/2beens/gymplan/internal/progress"
	"github.com/2beens/gymplan/internal/telemetry/tracing"
	"github.com/2beens/gymplan/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{
		db: db,
	}
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	return fn(tx)
}

// SaveDraft persists a generated plan with its workouts and exercises in one transaction.
func (s *Store) SaveDraft(ctx context.Context, userID string, draft planner.PlanDraft) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.save_draft")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("workouts", len(draft.Workouts)),
	)

	plan := &Plan{
		UserID:          userID,
		Name:            draft.Name,
		Description:     draft.Description,
		WorkoutsPerWeek: draft.WorkoutsPerWeek,
		Workouts:        make([]Workout, 0, len(draft.Workouts)),
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(
			ctx,
			`
				INSERT INTO workout_plan (user_id, name, description, workouts_per_week)
				VALUES ($1, $2, $3, $4)
				RETURNING id, is_active, cycle_started_at, created_at;`,
			userID, draft.Name, draft.Description, draft.WorkoutsPerWeek,
		).Scan(&plan.ID, &plan.IsActive, &plan.CycleStartedAt, &plan.CreatedAt); err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}

		for i, w := range draft.Workouts {
			workout := Workout{
				PlanID:    plan.ID,
				Name:      w.Name,
				Position:  i + 1,
				Exercises: make([]WorkoutExercise, 0, len(w.Exercises)),
			}
			if err := tx.QueryRow(
				ctx,
				`INSERT INTO plan_workout (plan_id, name, position) VALUES ($1, $2, $3) RETURNING id;`,
				plan.ID, workout.Name, workout.Position,
			).Scan(&workout.ID); err != nil {
				return fmt.Errorf("insert workout [%s]: %w", w.Name, err)
			}

			for j, e := range w.Exercises {
				exercise := WorkoutExercise{
					WorkoutID:    workout.ID,
					ExerciseName: e.ExerciseName,
					Sets:         e.Sets,
					Reps:         e.Reps,
					Weight:       e.Weight,
					RestTime:     e.RestTime,
					Position:     j + 1,
				}
				if err := tx.QueryRow(
					ctx,
					`
						INSERT INTO plan_workout_exercise
							(workout_id, exercise_name, sets, reps, weight, rest_time, position)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id;`,
					exercise.WorkoutID,
					exercise.ExerciseName,
					exercise.Sets,
					exercise.Reps,
					exercise.Weight,
					exercise.RestTime,
					exercise.Position,
				).Scan(&exercise.ID); err != nil {
					return fmt.Errorf("insert workout exercise [%s]: %w", e.ExerciseName, err)
				}
				workout.Exercises = append(workout.Exercises, exercise)
			}

			plan.Workouts = append(plan.Workouts, workout)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("plan.id", plan.ID))
	return plan, nil
}

func (s *Store) Get(ctx context.Context, userID string, planID int64) (_ *Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("plan.id", planID))

	return getPlan(ctx, s.db, userID, planID)
}

func getPlan(ctx context.Context, q querier, userID string, planID int64) (*Plan, error) {
	plan := &Plan{}
	err := q.QueryRow(
		ctx,
		`
			SELECT
				id, user_id, name, description, workouts_per_week, is_active, cycle_started_at, created_at
			FROM workout_plan
			WHERE id = $1 AND user_id = $2;`,
		planID, userID,
	).Scan(
		&plan.ID,
		&plan.UserID,
		&plan.Name,
		&plan.Description,
		&plan.WorkoutsPerWeek,
		&plan.IsActive,
		&plan.CycleStartedAt,
		&plan.CreatedAt,
	)
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("select plan: %w", err)
	}

	workouts, err := listWorkouts(ctx, q, planID)
	if err != nil {
		return nil, err
	}
	plan.Workouts = workouts

	return plan, nil
}

func listWorkouts(ctx context.Context, q querier, planID int64) ([]Workout, error) {
	rows, err := q.Query(
		ctx,
		`SELECT id, plan_id, name, position FROM plan_workout WHERE plan_id = $1 ORDER BY position, id;`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}

	workouts := make([]Workout, 0)
	workoutIdx := make(map[int64]int)
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.PlanID, &w.Name, &w.Position); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		w.Exercises = make([]WorkoutExercise, 0)
		workoutIdx[w.ID] = len(workouts)
		workouts = append(workouts, w)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workout rows: %w", err)
	}

	rows, err = q.Query(
		ctx,
		`
			SELECT
				e.id, e.workout_id, e.exercise_name, e.sets, e.reps, e.weight, e.rest_time, e.position
			FROM plan_workout_exercise e
			JOIN plan_workout w ON w.id = e.workout_id
			WHERE w.plan_id = $1
			ORDER BY e.workout_id, e.position, e.id;`,
		planID,
	)
	if err != nil {
		return nil, fmt.Errorf("query workout exercises: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e WorkoutExercise
		if err := rows.Scan(
			&e.ID,
			&e.WorkoutID,
			&e.ExerciseName,
			&e.Sets,
			&e.Reps,
			&e.Weight,
			&e.RestTime,
			&e.Position,
		); err != nil {
			return nil, fmt.Errorf("scan workout exercise: %w", err)
		}
		if idx, ok := workoutIdx[e.WorkoutID]; ok {
			workouts[idx].Exercises = append(workouts[idx].Exercises, e)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("workout exercise rows: %w", err)
	}

	return workouts, nil
}

// List returns the user's plans, newest first, without their workouts.
func (s *Store) List(ctx context.Context, userID string) (_ []Plan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := s.db.Query(
		ctx,
		`
			SELECT
				id, user_id, name, description, workouts_per_week, is_active, cycle_started_at, created_at
			FROM workout_plan
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	plans := make([]Plan, 0)
	for rows.Next() {
		var p Plan
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.Name,
			&p.Description,
			&p.WorkoutsPerWeek,
			&p.IsActive,
			&p.CycleStartedAt,
			&p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return plans, nil
}

// lockPlan locks the user's plan row for the rest of the transaction.
func lockPlan(ctx context.Context, tx pgx.Tx, userID string, planID int64) (cycleStartedAt time.Time, err error) {
	err = tx.QueryRow(
		ctx,
		`SELECT cycle_started_at FROM workout_plan WHERE id = $1 AND user_id = $2 FOR UPDATE;`,
		planID, userID,
	).Scan(&cycleStartedAt)
	if err != nil {
		if pkg.IsNoRowsError(err) {
			return time.Time{}, ErrPlanNotFound
		}
		return time.Time{}, fmt.Errorf("lock plan: %w", err)
	}
	return cycleStartedAt, nil
}

// Activate makes the plan the user's only active one and starts a new workout cycle.
func (s *Store) Activate(ctx context.Context, userID string, planID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.activate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("plan.id", planID))

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockPlan(ctx, tx, userID, planID); err != nil {
			return err
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE workout_plan SET is_active = FALSE WHERE user_id = $1 AND id <> $2 AND is_active;`,
			userID, planID,
		); err != nil {
			return fmt.Errorf("deactivate plans: %w", err)
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE workout_plan SET is_active = TRUE, cycle_started_at = now() WHERE id = $1;`,
			planID,
		); err != nil {
			return fmt.Errorf("activate plan: %w", err)
		}
		return nil
	})
}

// DeleteWorkout removes a workout and closes the gap in the positions of the following ones.
func (s *Store) DeleteWorkout(ctx context.Context, userID string, planID, workoutID int64) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.delete_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("plan.id", planID),
		attribute.Int64("workout.id", workoutID),
	)

	return s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockPlan(ctx, tx, userID, planID); err != nil {
			return err
		}

		var position int
		err := tx.QueryRow(
			ctx,
			`DELETE FROM plan_workout WHERE id = $1 AND plan_id = $2 RETURNING position;`,
			workoutID, planID,
		).Scan(&position)
		if err != nil {
			if pkg.IsNoRowsError(err) {
				return ErrWorkoutNotFound
			}
			return fmt.Errorf("delete workout: %w", err)
		}

		tag, err := tx.Exec(
			ctx,
			`UPDATE plan_workout SET position = position - 1 WHERE plan_id = $1 AND position > $2;`,
			planID, position,
		)
		if err != nil {
			return fmt.Errorf("renumber workouts: %w", err)
		}
		log.Debugf("workout %d deleted from plan %d, %d workouts renumbered", workoutID, planID, tag.RowsAffected())
		return nil
	})
}

// MoveWorkout moves a workout to the resolved position and renumbers the plan's workouts densely.
func (s *Store) MoveWorkout(ctx context.Context, userID string, planID, workoutID int64, to Position) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.move_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("plan.id", planID),
		attribute.Int64("workout.id", workoutID),
		attribute.String("position", to.String()),
	)

	var workouts []Workout
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := lockPlan(ctx, tx, userID, planID); err != nil {
			return err
		}

		rows, err := tx.Query(ctx, `SELECT id FROM plan_workout WHERE plan_id = $1 ORDER BY position, id;`, planID)
		if err != nil {
			return fmt.Errorf("query workout ids: %w", err)
		}
		ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("collect workout ids: %w", err)
		}

		current := 0
		for i, id := range ids {
			if id == workoutID {
				current = i + 1
				break
			}
		}
		if current == 0 {
			return ErrWorkoutNotFound
		}

		target, err := to.Resolve(current, len(ids))
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for i, id := range reorder(ids, current, target) {
			batch.Queue(`UPDATE plan_workout SET position = $1 WHERE id = $2;`, i+1, id)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("update positions: %w", err)
		}

		workouts, err = listWorkouts(ctx, tx, planID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return workouts, nil
}

func completedSince(ctx context.Context, q querier, planID int64, since time.Time) (map[int64]bool, error) {
	rows, err := q.Query(
		ctx,
		`
			SELECT DISTINCT workout_id
			FROM workout_log
			WHERE plan_id = $1 AND workout_id IS NOT NULL AND completed_at > $2;`,
		planID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query completed workouts: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("collect completed workouts: %w", err)
	}

	completed := make(map[int64]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

// NextWorkout returns the first workout not completed in the plan's current cycle.
func (s *Store) NextWorkout(ctx context.Context, userID string, planID int64) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.next_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int64("plan.id", planID))

	plan, err := getPlan(ctx, s.db, userID, planID)
	if err != nil {
		return nil, err
	}

	completed, err := completedSince(ctx, s.db, planID, plan.CycleStartedAt)
	if err != nil {
		return nil, err
	}

	return pickNext(plan.Workouts, completed)
}

// CompleteWorkout logs a completed workout. Completing the last open workout of
// the cycle starts a new cycle.
func (s *Store) CompleteWorkout(ctx context.Context, userID string, planID, workoutID int64) (_ *progress.WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.complete_workout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int64("plan.id", planID),
		attribute.Int64("workout.id", workoutID),
	)

	workoutLog := &progress.WorkoutLog{
		UserID:    userID,
		PlanID:    planID,
		WorkoutID: workoutID,
	}
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		cycleStartedAt, err := lockPlan(ctx, tx, userID, planID)
		if err != nil {
			return err
		}

		err = tx.QueryRow(
			ctx,
			`SELECT name FROM plan_workout WHERE id = $1 AND plan_id = $2;`,
			workoutID, planID,
		).Scan(&workoutLog.WorkoutName)
		if err != nil {
			if pkg.IsNoRowsError(err) {
				return ErrWorkoutNotFound
			}
			return fmt.Errorf("select workout: %w", err)
		}

		if err := tx.QueryRow(
			ctx,
			`
				INSERT INTO workout_log (user_id, plan_id, workout_id, workout_name)
				VALUES ($1, $2, $3, $4)
				RETURNING id, completed_at;`,
			userID, planID, workoutID, workoutLog.WorkoutName,
		).Scan(&workoutLog.ID, &workoutLog.CompletedAt); err != nil {
			return fmt.Errorf("insert workout log: %w", err)
		}

		rows, err := tx.Query(ctx, `SELECT id FROM plan_workout WHERE plan_id = $1;`, planID)
		if err != nil {
			return fmt.Errorf("query workout ids: %w", err)
		}
		workoutIDs, err := pgx.CollectRows(rows, pgx.RowTo[int64])
		if err != nil {
			return fmt.Errorf("collect workout ids: %w", err)
		}

		completed, err := completedSince(ctx, tx, planID, cycleStartedAt)
		if err != nil {
			return err
		}
		if !allCompleted(workoutIDs, completed) {
			return nil
		}

		// logs written in this transaction share now() and stay in the finished cycle
		if _, err := tx.Exec(ctx, `UPDATE workout_plan SET cycle_started_at = now() WHERE id = $1;`, planID); err != nil {
			return fmt.Errorf("start new cycle: %w", err)
		}
		log.Debugf("plan %d cycle completed by user [%s], new cycle started", planID, userID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return workoutLog, nil
}
