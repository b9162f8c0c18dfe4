package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planhub/planhub/internal/domain/task"
	"github.com/planhub/planhub/internal/observability"
)

// TasksRepo scopes every read and mutation by user_id, so a task that exists
// but belongs to someone else is indistinguishable from a missing one.
type TasksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewTasksRepo(pool *pgxpool.Pool, prom *observability.Prom) *TasksRepo {
	return &TasksRepo{pool: pool, prom: prom}
}

func (r *TasksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

const taskColumns = `id, title, description, task_time, priority, completed, user_id, category, day_of_week, created_at`

func scanTask(row pgx.Row) (task.Task, error) {
	var t task.Task

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.TaskTime,
		&t.Priority,
		&t.Completed,
		&t.UserID,
		&t.Category,
		&t.DayOfWeek,
		&t.CreatedAt,
	)

	return t, err
}

func (r *TasksRepo) ListForUser(ctx context.Context, userID string) ([]task.Task, error) {
	var out []task.Task

	err := r.observe("tasks.list_for_user", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1`,
			userID,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0)

		for rows.Next() {
			t, err := scanTask(rows)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// ListForUserAndDay orders by task_time ascending; lexicographic order on
// "HH:MM" strings matches chronological order.
func (r *TasksRepo) ListForUserAndDay(ctx context.Context, userID string, day task.Weekday) ([]task.Task, error) {
	var out []task.Task

	err := r.observe("tasks.list_for_user_and_day", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+taskColumns+`
			 FROM tasks
			 WHERE user_id = $1 AND day_of_week = $2
			 ORDER BY task_time ASC, id ASC`,
			userID, day,
		)

		if err != nil {
			return err
		}

		defer rows.Close()

		out = make([]task.Task, 0)

		for rows.Next() {
			t, err := scanTask(rows)

			if err != nil {
				return err
			}

			out = append(out, t)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *TasksRepo) Create(ctx context.Context, req task.CreateTaskRequest, userID string) (task.Task, error) {
	t := task.NewFromCreateRequest(req, userID)

	err := r.observe("tasks.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO tasks (id, title, description, task_time, priority, completed, user_id, category, day_of_week, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			t.ID, t.Title, t.Description, t.TaskTime, t.Priority, t.Completed, t.UserID, t.Category, t.DayOfWeek, t.CreatedAt,
		)
		return err
	})

	if err != nil {
		return task.Task{}, err
	}

	return t, nil
}

// Toggle flips completed in a single ownership-scoped statement and returns
// the new state. Missing and not-owned rows both come back as ErrNotFound.
func (r *TasksRepo) Toggle(ctx context.Context, taskID, userID string) (bool, error) {
	var completed bool

	err := r.observe("tasks.toggle", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE tasks
			 SET completed = NOT completed
			 WHERE id = $1 AND user_id = $2
			 RETURNING completed`,
			taskID, userID,
		).Scan(&completed)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, task.ErrNotFound
		}

		return false, err
	}

	return completed, nil
}

func (r *TasksRepo) Delete(ctx context.Context, taskID, userID string) error {
	var tag int64

	err := r.observe("tasks.delete", func() error {
		res, err := r.pool.Exec(ctx,
			`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
			taskID, userID,
		)

		if err != nil {
			return err
		}

		tag = res.RowsAffected()

		return nil
	})

	if err != nil {
		return err
	}

	if tag == 0 {
		return task.ErrNotFound
	}

	return nil
}
