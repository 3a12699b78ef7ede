package store

import "strings"

// Filters narrows GetEntries to captures matching every provided
// predicate. A zero-value Filters matches everything.
type Filters struct {
	DateFrom      string // "2026-01-02", compared against start_time with a T00:00:00 suffix
	DateTo        string // compared with a T23:59:59 suffix
	Host          string
	Search        string // matches cmd OR message, case-insensitive substring
	SearchContent string // matches cmd, message, output, original_content, edited_content
	ShowNoop      bool
}

func (f Filters) whereClause() (string, []any) {
	var clauses []string
	var args []any

	if f.DateFrom != "" {
		clauses = append(clauses, "start_time >= ?")
		args = append(args, f.DateFrom+"T00:00:00")
	}
	if f.DateTo != "" {
		clauses = append(clauses, "start_time <= ?")
		args = append(args, f.DateTo+"T23:59:59")
	}
	if f.Host != "" {
		clauses = append(clauses, "host LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(f.Host)+"%")
	}
	if f.Search != "" {
		clauses = append(clauses, "(cmd LIKE ? ESCAPE '\\' OR message LIKE ? ESCAPE '\\')")
		needle := "%" + escapeLike(f.Search) + "%"
		args = append(args, needle, needle)
	}
	if f.SearchContent != "" {
		clauses = append(clauses, `(cmd LIKE ? ESCAPE '\' OR message LIKE ? ESCAPE '\'
			OR CAST(output AS TEXT) LIKE ? ESCAPE '\'
			OR CAST(original_content AS TEXT) LIKE ? ESCAPE '\'
			OR CAST(edited_content AS TEXT) LIKE ? ESCAPE '\')`)
		needle := "%" + escapeLike(f.SearchContent) + "%"
		args = append(args, needle, needle, needle, needle, needle)
	}
	if !f.ShowNoop {
		clauses = append(clauses, "is_noop = 0")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func escapeLike(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "%", "\\%", "_", "\\_")
	return r.Replace(s)
}
