package progress

import (
	"context"
	"fmt"

	"github.com/2beens/gymplan/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// ListCompleted returns the user's most recent completed workouts, newest first.
func (r *Repo) ListCompleted(ctx context.Context, userID string, limit int) (_ []WorkoutLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.progress.list_completed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.Int("limit", limit),
	)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT
				id, user_id, COALESCE(plan_id, 0), COALESCE(workout_id, 0), workout_name, completed_at
			FROM workout_log
			WHERE user_id = $1
			ORDER BY completed_at DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	logs := make([]WorkoutLog, 0)
	for rows.Next() {
		var l WorkoutLog
		if err := rows.Scan(
			&l.ID,
			&l.UserID,
			&l.PlanID,
			&l.WorkoutID,
			&l.WorkoutName,
			&l.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		logs = append(logs, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return logs, nil
}
