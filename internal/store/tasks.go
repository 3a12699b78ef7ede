package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Task is a user-named grouping of captures.
type Task struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

func (s *Store) CreateTask(name string) (int64, error) {
	res, err := s.db.Exec(`INSERT INTO tasks (name, created_at) VALUES (?, ?)`,
		name, time.Now().UTC().Format(captureTimeFmt))
	if err != nil {
		return 0, fmt.Errorf("create_task: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) GetAllTasks() ([]*Task, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM tasks ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("get_all_tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("get_all_tasks: scan: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTaskByID(id int64) (*Task, error) {
	row := s.db.QueryRow(`SELECT id, name, created_at FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get_task_by_id: %w", err)
	}
	return t, nil
}

// TaskExists is the narrow existence check CaptureController needs for
// TASK SET ACTIVE, without pulling in the full Task shape.
func (s *Store) TaskExists(id int64) (bool, error) {
	t, err := s.GetTaskByID(id)
	return t != nil, err
}

// GetTaskName is the narrow lookup CaptureController needs for its status
// message, without pulling in the full Task shape. Returns "" if id is
// unknown.
func (s *Store) GetTaskName(id int64) (string, error) {
	t, err := s.GetTaskByID(id)
	if err != nil || t == nil {
		return "", err
	}
	return t.Name, nil
}

func (s *Store) UpdateTaskName(id int64, name string) error {
	_, err := s.db.Exec(`UPDATE tasks SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("update_task_name: %w", err)
	}
	return nil
}

// AssignEntriesToTask bulk-reassigns the given captures' task_id.
func (s *Store) AssignEntriesToTask(uuids []string, taskID *int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`UPDATE captures SET task_id = ? WHERE uuid = ?`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, u := range uuids {
		if _, err := stmt.Exec(taskID, u); err != nil {
			tx.Rollback()
			return fmt.Errorf("assign_entries_to_task: %w", err)
		}
	}
	return tx.Commit()
}

func scanTask(row rowScanner) (*Task, error) {
	t := &Task{}
	var createdAt string
	if err := row.Scan(&t.ID, &t.Name, &createdAt); err != nil {
		return nil, err
	}
	if parsed, err := time.Parse(captureTimeFmt, createdAt); err == nil {
		t.CreatedAt = parsed
	}
	return t, nil
}
