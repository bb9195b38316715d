package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rohanthewiz/serr"
)

// Execution is one row of tool execution history.
type Execution struct {
	ID             string    `json:"id"`
	PluginID       string    `json:"plugin_id"`
	ToolID         string    `json:"tool_id"`
	ConversationID string    `json:"conversation_id,omitempty"`
	UserID         string    `json:"user_id,omitempty"`
	Params         string    `json:"params,omitempty"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// RecordExecution writes one history row. It is a no-op before Init, so
// handlers keep working without a database.
func RecordExecution(e Execution) error {
	d := get()
	if d == nil {
		return nil
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := d.Exec(`
		INSERT INTO executions
			(execution_id, plugin_id, tool_id, conversation_id, user_id, params, success, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?::JSON, ?, ?, ?)`,
		e.ID, e.PluginID, e.ToolID,
		nullableString(e.ConversationID), nullableString(e.UserID), nullableString(e.Params),
		e.Success, nullableString(e.Error), e.DurationMS,
	)
	if err != nil {
		return serr.Wrap(err, "failed to record execution", "plugin", e.PluginID, "tool", e.ToolID)
	}
	return nil
}

// RecentExecutions returns up to limit history rows, newest first. Before
// Init it returns an empty list.
func RecentExecutions(limit int) ([]Execution, error) {
	d := get()
	if d == nil {
		return nil, nil
	}

	if limit < 1 {
		limit = 20
	}
	rows, err := d.Query(`
		SELECT execution_id, plugin_id, tool_id, conversation_id, user_id, params,
			success, error, duration_ms, created_at
		FROM executions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, serr.Wrap(err, "failed to query executions")
	}
	defer rows.Close()

	var out []Execution
	for rows.Next() {
		var e Execution
		var convID, userID, params, execErr sql.NullString
		if err := rows.Scan(&e.ID, &e.PluginID, &e.ToolID,
			&convID, &userID, &params,
			&e.Success, &execErr, &e.DurationMS, &e.CreatedAt); err != nil {
			return nil, serr.Wrap(err, "failed to scan execution row")
		}
		e.ConversationID = convID.String
		e.UserID = userID.String
		e.Params = params.String
		e.Error = execErr.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// nullableString converts an empty string to sql.NullString.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
