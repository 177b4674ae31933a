// api/handlers/generation_handler.go
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/cvm-baseprep/api/middleware"
	"github.com/Annany2002/cvm-baseprep/api/models"
	"github.com/Annany2002/cvm-baseprep/internal/catalog"
	"github.com/Annany2002/cvm-baseprep/internal/core"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/generation"
	"github.com/Annany2002/cvm-baseprep/internal/metrics"
	"github.com/Annany2002/cvm-baseprep/internal/storage"
)

// historyWriteTimeout bounds a history insert made from a simulator callback.
const historyWriteTimeout = 5 * time.Second

// GenerationHandler starts simulated table builds and serves the generated tables history.
type GenerationHandler struct {
	Catalog   *catalog.Registry
	Sessions  *storage.SessionStore
	Simulator *generation.Simulator
	History   *storage.HistoryRepo
	Metrics   *metrics.Metrics
}

func NewGenerationHandler(cat *catalog.Registry, sessions *storage.SessionStore, sim *generation.Simulator,
	history *storage.HistoryRepo, m *metrics.Metrics) *GenerationHandler {
	return &GenerationHandler{Catalog: cat, Sessions: sessions, Simulator: sim, History: history, Metrics: m}
}

// StartGeneration plans one record per selected table (plus the join result
// table when configured) and starts a run. A session runs at most one
// generation at a time.
func (h *GenerationHandler) StartGeneration(c *gin.Context) {
	entry, err := h.Sessions.Update(c.Param("session_id"), func(e *storage.SessionEntry) error {
		if e.Run != nil && e.Run.IsGenerating() {
			return fmt.Errorf("%w: run %s", middleware.ErrGenerationInProgress, e.Run.ID)
		}
		records, err := generation.Plan(e.Session, h.Catalog)
		if err != nil {
			return err
		}
		if h.Metrics != nil {
			h.Metrics.RunStarted()
		}
		e.Run = h.Simulator.Start(records, h.hooks())
		return nil
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	snap := entry.Run.Snapshot()
	customLog.Printf("Handler: Session %s started generation run %s with %d table(s)", entry.ID, snap.ID, snap.Total)
	c.JSON(http.StatusAccepted, snap)
}

// GetGeneration reports the progress of the session's latest run.
func (h *GenerationHandler) GetGeneration(c *gin.Context) {
	entry, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if entry.Run == nil {
		_ = c.Error(middleware.ErrNoGenerationRun)
		return
	}
	c.JSON(http.StatusOK, entry.Run.Snapshot())
}

// ListGeneratedTables pages through the history of completed tables.
func (h *GenerationHandler) ListGeneratedTables(c *gin.Context) {
	opts, err := core.ParseListQueryOptions(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", middleware.ErrBadRequest, err))
		return
	}
	tables, total, err := h.History.ListGeneratedTables(c.Request.Context(), opts)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.GeneratedTablesResponse{Tables: tables, Total: total, Limit: opts.Limit, Offset: opts.Offset})
}

// GetGeneratedTable returns the latest history entry for a table name.
func (h *GenerationHandler) GetGeneratedTable(c *gin.Context) {
	name := c.Param("table_name")
	if !core.IsValidIdentifier(name) {
		_ = c.Error(fmt.Errorf("%w: invalid table name %q", middleware.ErrBadRequest, name))
		return
	}
	table, err := h.History.FindGeneratedTableByName(c.Request.Context(), name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// hooks persist each completed table as soon as it finishes so the history
// fills in while the rest of the run is still going.
func (h *GenerationHandler) hooks() generation.Hooks {
	return generation.Hooks{
		OnRecordComplete: func(runID string, rec domain.GenerationRecord) {
			if h.Metrics != nil {
				h.Metrics.TableGenerated(rec.ElapsedSeconds, rec.RowCount)
			}
			ctx, cancel := context.WithTimeout(context.Background(), historyWriteTimeout)
			defer cancel()
			if _, err := h.History.InsertGeneratedTable(ctx, runID, rec); err != nil {
				customLog.Warnf("Handler: run %s could not record %s in history: %v", runID, rec.Name, err)
				if h.Metrics != nil {
					h.Metrics.HistoryWriteFailed()
				}
			}
		},
		OnRunComplete: func(runID string, records []domain.GenerationRecord) {
			if h.Metrics != nil {
				h.Metrics.RunFinished()
			}
			customLog.Printf("Handler: run %s finished with %d table(s)", runID, len(records))
		},
	}
}
