// internal/domain/models.go
package domain

import "time"

// TableKind is an immutable catalog entry describing one source table.
type TableKind struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Alias    string   `json:"alias"`
	FormType FormType `json:"form_type"`
	Columns  []string `json:"columns"`
}

// SelectedTable is a TableKind the user added to a session, with its form values.
type SelectedTable struct {
	Kind   TableKind
	Fields Fields
}

// ID returns the catalog id; at most one instance per kind exists in a session.
func (t SelectedTable) ID() string {
	return t.Kind.ID
}

// JoinSpec describes one JOIN against the base table.
// TableID may be empty while the join is still a draft; drafts are skipped when rendering.
type JoinSpec struct {
	ID      string   `json:"id"`
	TableID string   `json:"table_id"`
	Type    JoinType `json:"join_type"`
	Key     string   `json:"join_key"`
}

// DefaultJoinKey is used when a join is added without a key.
const DefaultJoinKey = "msisdn"

// GenerationRecord tracks one table being materialized by a generation run.
type GenerationRecord struct {
	Name              string           `json:"name"`
	Status            GenerationStatus `json:"status"`
	ElapsedSeconds    float64          `json:"elapsed_seconds"`
	ParametersSummary string           `json:"parameters"`
	Columns           []string         `json:"columns"`
	RowCount          int              `json:"row_count"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
}

// GeneratedTable is a completed record as kept in the generated tables history.
type GeneratedTable struct {
	ID    int64  `json:"id"`
	RunID string `json:"run_id"`
	GenerationRecord
}
