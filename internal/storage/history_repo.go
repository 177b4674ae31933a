// internal/storage/history_repo.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/Annany2002/cvm-baseprep/internal/core"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
)

var ErrGeneratedTableNotFound = errors.New("generated table not found")

var historyColumns = []string{
	"id", "run_id", "table_name", "status", "elapsed_seconds",
	"parameters", "columns", "row_count", "completed_at",
}

// HistoryRepo appends to and reads the generated tables history. Entries are
// never updated or pruned.
type HistoryRepo struct {
	db *sql.DB
	qb squirrel.StatementBuilderType
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo {
	return &HistoryRepo{
		db: db,
		qb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// InsertGeneratedTable appends one completed record and returns its row id.
func (r *HistoryRepo) InsertGeneratedTable(ctx context.Context, runID string, rec domain.GenerationRecord) (int64, error) {
	cols, err := json.Marshal(rec.Columns)
	if err != nil {
		return 0, fmt.Errorf("failed to encode columns for %s: %w", rec.Name, err)
	}
	completedAt := time.Now().UTC()
	if rec.CompletedAt != nil {
		completedAt = rec.CompletedAt.UTC()
	}

	query, args, err := r.qb.Insert("generated_tables").
		Columns("run_id", "table_name", "status", "elapsed_seconds", "parameters", "columns", "row_count", "completed_at").
		Values(runID, rec.Name, string(rec.Status), rec.ElapsedSeconds, rec.ParametersSummary, string(cols), rec.RowCount, completedAt).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build history insert: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert history entry %s (run %s): %v", rec.Name, runID, err)
		return 0, fmt.Errorf("database error inserting history entry: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve history entry id: %w", err)
	}
	return id, nil
}

// ListGeneratedTables returns one page of history plus the total count of
// entries matching the filter.
func (r *HistoryRepo) ListGeneratedTables(ctx context.Context, opts *core.ListQueryOptions) ([]domain.GeneratedTable, int, error) {
	if opts == nil {
		opts = &core.ListQueryOptions{Limit: core.DefaultLimit, SortBy: core.DefaultSortBy, SortOrder: core.DefaultOrder}
	}
	if !core.SortableHistoryColumns[opts.SortBy] {
		return nil, 0, fmt.Errorf("unsupported sort column %q", opts.SortBy)
	}
	order := "ASC"
	if strings.EqualFold(opts.SortOrder, "desc") {
		order = "DESC"
	}

	countQ := r.qb.Select("COUNT(*)").From("generated_tables")
	listQ := r.qb.Select(historyColumns...).From("generated_tables").
		OrderBy(fmt.Sprintf("%s %s", opts.SortBy, order), "id "+order).
		Limit(uint64(opts.Limit)).
		Offset(uint64(opts.Offset))
	if opts.RunID != "" {
		countQ = countQ.Where(squirrel.Eq{"run_id": opts.RunID})
		listQ = listQ.Where(squirrel.Eq{"run_id": opts.RunID})
	}

	query, args, err := countQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build history count: %w", err)
	}
	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		customLog.Warnf("Storage: Failed to count history entries: %v", err)
		return nil, 0, fmt.Errorf("database error counting history: %w", err)
	}

	query, args, err = listQ.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build history query: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed to list history entries: %v", err)
		return nil, 0, fmt.Errorf("database error listing history: %w", err)
	}
	defer rows.Close()

	entries := []domain.GeneratedTable{}
	for rows.Next() {
		entry, err := scanGeneratedTable(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating history rows: %w", err)
	}
	return entries, total, nil
}

// FindGeneratedTableByName returns the most recent entry with the given name.
func (r *HistoryRepo) FindGeneratedTableByName(ctx context.Context, name string) (*domain.GeneratedTable, error) {
	query, args, err := r.qb.Select(historyColumns...).From("generated_tables").
		Where(squirrel.Eq{"table_name": name}).
		OrderBy("completed_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build history lookup: %w", err)
	}

	entry, err := scanGeneratedTable(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrGeneratedTableNotFound, name)
		}
		customLog.Warnf("Storage: Failed to find history entry %s: %v", name, err)
		return nil, err
	}
	return &entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGeneratedTable(row rowScanner) (domain.GeneratedTable, error) {
	var (
		entry       domain.GeneratedTable
		status      string
		columns     string
		completedAt time.Time
	)
	err := row.Scan(&entry.ID, &entry.RunID, &entry.Name, &status, &entry.ElapsedSeconds,
		&entry.ParametersSummary, &columns, &entry.RowCount, &completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("failed to scan history row: %w", err)
	}
	entry.Status = domain.GenerationStatus(status)
	if err := json.Unmarshal([]byte(columns), &entry.Columns); err != nil {
		return entry, fmt.Errorf("failed to decode columns of %s: %w", entry.Name, err)
	}
	completedAt = completedAt.UTC()
	entry.CompletedAt = &completedAt
	return entry, nil
}
