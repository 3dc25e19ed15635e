package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskdeck/models"
)

// TaskStore persists task records in Postgres. Ownership is not filtered
// here except in ForOwner; mutation handlers check ownership before calling
// Update or Delete.
type TaskStore struct {
	db *pgxpool.Pool
}

func NewTaskStore(db *pgxpool.Pool) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, ownerID int, title string, description *string) (models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "INSERT INTO tasks (title, description, owner_id) VALUES ($1, $2, $3) RETURNING id;"
	task := models.Task{Title: title, Description: description, OwnerID: ownerID}
	err := s.db.QueryRow(ctx, stmt, title, description, ownerID).Scan(&task.ID)
	if err != nil {
		return models.Task{}, fmt.Errorf("inserting task: %w", err)
	}
	return task, nil
}

func (s *TaskStore) ByID(ctx context.Context, id int) (models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := "SELECT id, title, description, owner_id FROM tasks WHERE id = $1;"
	var task models.Task
	err := s.db.QueryRow(ctx, stmt, id).Scan(&task.ID, &task.Title, &task.Description, &task.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("querying task: %w", err)
	}
	return task, nil
}

// ForOwner returns one user's tasks. Order is unspecified; callers must not
// depend on it.
func (s *TaskStore) ForOwner(ctx context.Context, ownerID int) ([]models.Task, error) {
	stmt := "SELECT id, title, description, owner_id FROM tasks WHERE owner_id = $1;"
	return s.queryTasks(ctx, stmt, ownerID)
}

// All returns every task across all owners. Admin/debug use.
func (s *TaskStore) All(ctx context.Context) ([]models.Task, error) {
	stmt := "SELECT id, title, description, owner_id FROM tasks;"
	return s.queryTasks(ctx, stmt)
}

func (s *TaskStore) queryTasks(ctx context.Context, stmt string, args ...any) ([]models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.OwnerID); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading task rows: %w", err)
	}
	return tasks, nil
}

// Update applies the non-nil fields of patch and returns the updated record.
// Nil fields keep their stored value.
func (s *TaskStore) Update(ctx context.Context, id int, patch models.TaskPatch) (models.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	stmt := `UPDATE tasks
		SET title = COALESCE($1, title), description = COALESCE($2, description)
		WHERE id = $3
		RETURNING id, title, description, owner_id;`
	var task models.Task
	err := s.db.QueryRow(ctx, stmt, patch.Title, patch.Description, id).
		Scan(&task.ID, &task.Title, &task.Description, &task.OwnerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("updating task: %w", err)
	}
	return task, nil
}

// Delete removes the task. Deleting an id that no longer exists returns
// ErrNotFound, so a second delete on a stale handle fails.
func (s *TaskStore) Delete(ctx context.Context, id int) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, "DELETE FROM tasks WHERE id = $1;", id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
