// api/handlers/session_handler.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Annany2002/cvm-baseprep/api/middleware"
	"github.com/Annany2002/cvm-baseprep/api/models"
	"github.com/Annany2002/cvm-baseprep/config"
	"github.com/Annany2002/cvm-baseprep/internal/catalog"
	"github.com/Annany2002/cvm-baseprep/internal/core"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/metrics"
	"github.com/Annany2002/cvm-baseprep/internal/session"
	"github.com/Annany2002/cvm-baseprep/internal/sqlbuilder"
	"github.com/Annany2002/cvm-baseprep/internal/storage"
)

// SessionHandler serves the base table wizard: table selection, form fields,
// joins and SQL generation for one draft session.
type SessionHandler struct {
	Catalog  *catalog.Registry
	Sessions *storage.SessionStore
	Metrics  *metrics.Metrics
	Cfg      *config.Config
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(cat *catalog.Registry, sessions *storage.SessionStore, m *metrics.Metrics, cfg *config.Config) *SessionHandler {
	return &SessionHandler{Catalog: cat, Sessions: sessions, Metrics: m, Cfg: cfg}
}

// CreateSession starts an empty draft.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req models.CreateSessionRequest
	if err := bindJSON(c, &req, true); err != nil {
		_ = c.Error(err)
		return
	}
	postfix := req.Postfix
	if postfix == "" {
		postfix = h.Cfg.DefaultPostfix
	}

	entry := h.Sessions.Create(session.New(postfix))
	customLog.Printf("Handler: Created session %s with postfix %s", entry.ID, entry.Session.Postfix)
	c.JSON(http.StatusCreated, buildSessionResponse(entry, h.Catalog))
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	entry, err := h.Sessions.Get(c.Param("session_id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, buildSessionResponse(entry, h.Catalog))
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.Sessions.Delete(c.Param("session_id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) SetPostfix(c *gin.Context) {
	var req models.SetPostfixRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	h.update(c, func(s session.Session) (session.Session, error) {
		return s.SetPostfix(req.Postfix), nil
	})
}

// AddTable selects a catalog kind. Unlike the session transition, the API
// reports unknown and duplicate ids instead of ignoring them.
func (h *SessionHandler) AddTable(c *gin.Context) {
	var req models.AddTableRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	if _, ok := h.Catalog.Lookup(req.TableID); !ok {
		_ = c.Error(fmt.Errorf("%w: %s", middleware.ErrUnknownTableKind, req.TableID))
		return
	}
	h.updateWithStatus(c, http.StatusCreated, func(s session.Session) (session.Session, error) {
		if s.HasTable(req.TableID) {
			return s, fmt.Errorf("%w: %s", middleware.ErrTableAlreadySelected, req.TableID)
		}
		return s.AddTable(h.Catalog, req.TableID), nil
	})
}

func (h *SessionHandler) RemoveTable(c *gin.Context) {
	tableID := c.Param("table_id")
	h.update(c, func(s session.Session) (session.Session, error) {
		if !s.HasTable(tableID) {
			return s, fmt.Errorf("%w: %s", session.ErrTableNotSelected, tableID)
		}
		return s.RemoveTable(tableID), nil
	})
}

// UpdateFields replaces the form values of one selected table. The body is
// the field object of the table's form type.
func (h *SessionHandler) UpdateFields(c *gin.Context) {
	tableID := c.Param("table_id")
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: failed to read body: %v", middleware.ErrBadRequest, err))
		return
	}
	if len(raw) > 0 && !json.Valid(raw) {
		_ = c.Error(fmt.Errorf("%w: body is not valid JSON", middleware.ErrBadRequest))
		return
	}

	h.update(c, func(s session.Session) (session.Session, error) {
		t, ok := s.Table(tableID)
		if !ok {
			return s, fmt.Errorf("%w: %s", session.ErrTableNotSelected, tableID)
		}
		fields, err := domain.DecodeFields(t.Kind.FormType, raw)
		if err != nil {
			return s, fmt.Errorf("%w: %v", middleware.ErrBadRequest, err)
		}
		if !core.IsValidOptionalIdentifier(fields.ExplicitTableName()) {
			return s, fmt.Errorf("%w: invalid table_name %q", middleware.ErrBadRequest, fields.ExplicitTableName())
		}
		return s.UpdateFields(tableID, fields)
	})
}

func (h *SessionHandler) SetBaseTable(c *gin.Context) {
	var req models.SetBaseTableRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	h.update(c, func(s session.Session) (session.Session, error) {
		return s.SetBaseTable(req.TableID)
	})
}

func (h *SessionHandler) SetResultTable(c *gin.Context) {
	var req models.SetResultTableRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	h.update(c, func(s session.Session) (session.Session, error) {
		return s.SetResultTableName(req.Name), nil
	})
}

// AddJoin appends a join with a generated id. Without a base table the
// join is rejected since there is nothing to join against.
func (h *SessionHandler) AddJoin(c *gin.Context) {
	var req models.AddJoinRequest
	if err := bindJSON(c, &req, true); err != nil {
		_ = c.Error(err)
		return
	}
	joinType, err := domain.ParseJoinType(req.JoinType)
	if err != nil {
		_ = c.Error(fmt.Errorf("%w: %v", middleware.ErrBadRequest, err))
		return
	}

	h.updateWithStatus(c, http.StatusCreated, func(s session.Session) (session.Session, error) {
		if s.BaseTableID == "" {
			return s, sqlbuilder.ErrNoBaseTable
		}
		return s.AddJoin(uuid.New().String(), req.TableID, joinType, req.JoinKey)
	})
}

func (h *SessionHandler) UpdateJoin(c *gin.Context) {
	var req models.UpdateJoinRequest
	if err := bindJSON(c, &req, false); err != nil {
		_ = c.Error(err)
		return
	}
	upd := session.JoinUpdate{TableID: req.TableID, Key: req.JoinKey}
	if req.JoinType != nil {
		jt, err := domain.ParseJoinType(*req.JoinType)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: %v", middleware.ErrBadRequest, err))
			return
		}
		upd.Type = &jt
	}

	joinID := c.Param("join_id")
	h.update(c, func(s session.Session) (session.Session, error) {
		return s.UpdateJoin(joinID, upd)
	})
}

func (h *SessionHandler) RemoveJoin(c *gin.Context) {
	joinID := c.Param("join_id")
	h.update(c, func(s session.Session) (session.Session, error) {
		if _, ok := s.Join(joinID); !ok {
			return s, fmt.Errorf("%w: %s", session.ErrJoinNotFound, joinID)
		}
		return s.RemoveJoin(joinID), nil
	})
}

// GenerateSQL renders the join statement and stores it on the session. With
// no base table the previously generated SQL is left untouched.
func (h *SessionHandler) GenerateSQL(c *gin.Context) {
	var sql string
	_, err := h.Sessions.Update(c.Param("session_id"), func(e *storage.SessionEntry) error {
		out, err := sqlbuilder.Generate(e.Session, h.Catalog)
		if err != nil {
			return err
		}
		sql = out
		e.Session = e.Session.WithGeneratedSQL(out)
		return nil
	})
	if err != nil {
		if h.Metrics != nil && errors.Is(err, sqlbuilder.ErrNoBaseTable) {
			h.Metrics.SQLGenerated("no_base_table")
		}
		_ = c.Error(err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.SQLGenerated("ok")
	}
	c.JSON(http.StatusOK, models.SQLResponse{SQL: sql})
}

func (h *SessionHandler) update(c *gin.Context, fn func(session.Session) (session.Session, error)) {
	h.updateWithStatus(c, http.StatusOK, fn)
}

func (h *SessionHandler) updateWithStatus(c *gin.Context, status int, fn func(session.Session) (session.Session, error)) {
	entry, err := h.Sessions.Update(c.Param("session_id"), func(e *storage.SessionEntry) error {
		next, err := fn(e.Session)
		if err != nil {
			return err
		}
		e.Session = next
		return nil
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, buildSessionResponse(entry, h.Catalog))
}

func buildSessionResponse(entry storage.SessionEntry, cat *catalog.Registry) models.SessionResponse {
	s := entry.Session
	resp := models.SessionResponse{
		ID:               entry.ID,
		Postfix:          s.Postfix,
		Tables:           make([]models.SelectedTableView, 0, len(s.Tables)),
		BaseTableID:      s.BaseTableID,
		Joins:            append([]domain.JoinSpec{}, s.Joins...),
		ResultTableName:  s.ResultTableName,
		GeneratedSQL:     s.GeneratedSQL,
		AvailableKinds:   cat.ListAvailable(s.SelectedIDs()),
		AvailableForJoin: []string{},
		CreatedAt:        entry.CreatedAt,
		UpdatedAt:        entry.UpdatedAt,
	}
	for _, t := range s.Tables {
		resp.Tables = append(resp.Tables, models.SelectedTableView{
			ID:                 t.ID(),
			Label:              t.Kind.Label,
			Alias:              cat.Alias(t.ID()),
			FormType:           t.Kind.FormType,
			Fields:             t.Fields,
			EffectiveTableName: s.EffectiveTableName(t),
			Parameters:         session.ParametersSummary(t),
			IsBase:             t.ID() == s.BaseTableID,
		})
	}
	if s.BaseTableID != "" {
		for _, t := range s.AvailableForJoin() {
			resp.AvailableForJoin = append(resp.AvailableForJoin, t.ID())
		}
	}
	if entry.Run != nil {
		snap := entry.Run.Snapshot()
		resp.Generation = &snap
	}
	return resp
}
