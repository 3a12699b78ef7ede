package store

import (
	"database/sql"
	"fmt"
)

// GetActiveTask returns the currently active task id, or nil if none.
func (s *Store) GetActiveTask() (*int64, error) {
	var taskID sql.NullInt64
	err := s.db.QueryRow(`SELECT task_id FROM active_task WHERE id = 1`).Scan(&taskID)
	if err != nil {
		return nil, fmt.Errorf("get_active_task: %w", err)
	}
	if !taskID.Valid {
		return nil, nil
	}
	return &taskID.Int64, nil
}

// SetActiveTask sets or clears the singleton active-task pointer.
func (s *Store) SetActiveTask(taskID *int64) error {
	_, err := s.db.Exec(`UPDATE active_task SET task_id = ? WHERE id = 1`, taskID)
	if err != nil {
		return fmt.Errorf("set_active_task: %w", err)
	}
	return nil
}
