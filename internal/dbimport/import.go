// Package dbimport implements the --import flag: merging a prior
// prodlog.sqlite database's captures and tasks into the active store.
package dbimport

import (
	"fmt"

	"github.com/nielsreijers/prodlog/internal/logger"
	"github.com/nielsreijers/prodlog/internal/store"
)

// Import opens the sqlite database at path (read-only use; it is migrated
// in place like any other store if its schema is stale) and re-inserts
// every task and capture it holds into dst.
//
// Tasks are imported first and remapped to fresh ids in dst, since task
// ids are autoincrement and may collide across the two databases.
// add_entry always stamps task_id from dst's own active task, so a
// straight capture-by-capture copy would silently reassign every
// imported capture to whatever task happens to be active during the
// import; instead captures are added un-annotated and then their task_id
// is corrected in bulk per source task via assign_entries_to_task, which
// performs a direct column update.
func Import(dst *store.Store, path string) (captures int, tasks int, err error) {
	src, err := store.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("dbimport: open %s: %w", path, err)
	}
	defer src.Close()

	srcTasks, err := src.GetAllTasks()
	if err != nil {
		return 0, 0, fmt.Errorf("dbimport: read tasks: %w", err)
	}
	taskIDMap := make(map[int64]int64, len(srcTasks))
	for _, t := range srcTasks {
		newID, err := dst.CreateTask(t.Name)
		if err != nil {
			return 0, 0, fmt.Errorf("dbimport: create task %q: %w", t.Name, err)
		}
		taskIDMap[t.ID] = newID
		tasks++
	}

	entries, err := src.GetEntries(store.Filters{ShowNoop: true})
	if err != nil {
		return 0, tasks, fmt.Errorf("dbimport: read entries: %w", err)
	}

	uuidsByNewTask := make(map[int64][]string)
	var untasked []string
	for _, c := range entries {
		srcTaskID := c.TaskID
		if err := dst.AddEntry(c); err != nil {
			logger.Warn("dbimport: failed to import capture", "uuid", c.UUID, "error", err)
			continue
		}
		captures++
		if srcTaskID != nil {
			if newID, ok := taskIDMap[*srcTaskID]; ok {
				uuidsByNewTask[newID] = append(uuidsByNewTask[newID], c.UUID)
				continue
			}
		}
		untasked = append(untasked, c.UUID)
	}

	if len(untasked) > 0 {
		if err := dst.AssignEntriesToTask(untasked, nil); err != nil {
			return captures, tasks, fmt.Errorf("dbimport: clear task of captures: %w", err)
		}
	}

	for newID, uuids := range uuidsByNewTask {
		id := newID
		if err := dst.AssignEntriesToTask(uuids, &id); err != nil {
			return captures, tasks, fmt.Errorf("dbimport: assign captures to task %d: %w", newID, err)
		}
	}

	return captures, tasks, nil
}
