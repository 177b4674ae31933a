// api/models/session_models.go
package models

import (
	"time"

	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/generation"
)

// --- Session Request Structs ---

// CreateSessionRequest defines the body of POST /sessions. An empty postfix uses the configured default.
type CreateSessionRequest struct {
	Postfix string `json:"postfix" binding:"omitempty,postfix"`
}

type SetPostfixRequest struct {
	Postfix string `json:"postfix" binding:"required,postfix"`
}

type AddTableRequest struct {
	TableID string `json:"table_id" binding:"required"`
}

// SetBaseTableRequest clears the base table when TableID is empty.
type SetBaseTableRequest struct {
	TableID string `json:"table_id"`
}

// SetResultTableRequest clears the result table name when Name is empty.
type SetResultTableRequest struct {
	Name string `json:"name" binding:"omitempty,identifier"`
}

// AddJoinRequest adds a join; an empty TableID creates a draft.
type AddJoinRequest struct {
	TableID  string `json:"table_id"`
	JoinType string `json:"join_type" binding:"omitempty,jointype"`
	JoinKey  string `json:"join_key" binding:"omitempty,identifier"`
}

// UpdateJoinRequest changes only the fields that are present.
type UpdateJoinRequest struct {
	TableID  *string `json:"table_id"`
	JoinType *string `json:"join_type" binding:"omitempty,jointype"`
	JoinKey  *string `json:"join_key" binding:"omitempty,identifier"`
}

// --- Session Response Structs ---

// SelectedTableView is a selected table as the dashboard renders it.
type SelectedTableView struct {
	ID                 string          `json:"id"`
	Label              string          `json:"label"`
	Alias              string          `json:"alias"`
	FormType           domain.FormType `json:"form_type"`
	Fields             domain.Fields   `json:"fields"`
	EffectiveTableName string          `json:"effective_table_name"`
	Parameters         string          `json:"parameters"`
	IsBase             bool            `json:"is_base"`
}

type SessionResponse struct {
	ID               string               `json:"session_id"`
	Postfix          string               `json:"postfix"`
	Tables           []SelectedTableView  `json:"tables"`
	BaseTableID      string               `json:"base_table_id"`
	Joins            []domain.JoinSpec    `json:"joins"`
	ResultTableName  string               `json:"result_table_name"`
	GeneratedSQL     string               `json:"generated_sql"`
	AvailableKinds   []domain.TableKind   `json:"available_tables"`
	AvailableForJoin []string             `json:"available_for_join"`
	Generation       *generation.Snapshot `json:"generation,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type SQLResponse struct {
	SQL string `json:"sql"`
}

// GeneratedTablesResponse is one page of the generated tables history.
type GeneratedTablesResponse struct {
	Tables []domain.GeneratedTable `json:"tables"`
	Total  int                     `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}
