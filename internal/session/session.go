// internal/session/session.go
package session

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Annany2002/cvm-baseprep/internal/domain"
)

var (
	ErrTableNotSelected = errors.New("table is not selected in this session")
	ErrFieldsMismatch   = errors.New("fields do not match the table form type")
	ErrJoinNotFound     = errors.New("join not found")
	ErrJoinTableIsBase  = errors.New("join table cannot be the base table")
	ErrJoinTableInUse   = errors.New("table is already joined")
	ErrJoinIDConflict   = errors.New("join id already exists")
	ErrEmptyJoinID      = errors.New("join id is required")
)

// KindLookup resolves catalog entries by id.
type KindLookup interface {
	Lookup(id string) (domain.TableKind, bool)
}

// Session is the base table draft of one user. It is a value: every
// transition returns a new Session and leaves the receiver untouched.
type Session struct {
	Postfix         string
	Tables          []domain.SelectedTable
	BaseTableID     string
	Joins           []domain.JoinSpec
	ResultTableName string
	// GeneratedSQL is only refreshed by an explicit generate action.
	GeneratedSQL string
}

// New returns an empty session with the given postfix.
func New(postfix string) Session {
	return Session{Postfix: strings.ToUpper(postfix)}
}

func (s Session) clone() Session {
	s.Tables = slices.Clone(s.Tables)
	s.Joins = slices.Clone(s.Joins)
	return s
}

// Table returns the selected table with the given id.
func (s Session) Table(id string) (domain.SelectedTable, bool) {
	for _, t := range s.Tables {
		if t.ID() == id {
			return t, true
		}
	}
	return domain.SelectedTable{}, false
}

// HasTable reports whether the kind id is already selected.
func (s Session) HasTable(id string) bool {
	_, ok := s.Table(id)
	return ok
}

// BaseTable returns the selected base table, if any.
func (s Session) BaseTable() (domain.SelectedTable, bool) {
	if s.BaseTableID == "" {
		return domain.SelectedTable{}, false
	}
	return s.Table(s.BaseTableID)
}

// SelectedIDs returns the set of selected kind ids.
func (s Session) SelectedIDs() map[string]bool {
	ids := make(map[string]bool, len(s.Tables))
	for _, t := range s.Tables {
		ids[t.ID()] = true
	}
	return ids
}

// Join returns the join with the given id.
func (s Session) Join(id string) (domain.JoinSpec, bool) {
	for _, j := range s.Joins {
		if j.ID == id {
			return j, true
		}
	}
	return domain.JoinSpec{}, false
}

// AvailableForJoin lists selected tables that are neither the base nor joined yet.
func (s Session) AvailableForJoin() []domain.SelectedTable {
	joined := make(map[string]bool, len(s.Joins))
	for _, j := range s.Joins {
		joined[j.TableID] = true
	}
	var out []domain.SelectedTable
	for _, t := range s.Tables {
		if t.ID() == s.BaseTableID || joined[t.ID()] {
			continue
		}
		out = append(out, t)
	}
	return out
}

// SetPostfix stores the postfix upper-cased.
func (s Session) SetPostfix(postfix string) Session {
	s = s.clone()
	s.Postfix = strings.ToUpper(postfix)
	return s
}

// SetResultTableName stores the name of the SQL join result table upper-cased.
func (s Session) SetResultTableName(name string) Session {
	s = s.clone()
	s.ResultTableName = strings.ToUpper(strings.TrimSpace(name))
	return s
}

// WithGeneratedSQL records the output of the last generate action.
func (s Session) WithGeneratedSQL(sql string) Session {
	s = s.clone()
	s.GeneratedSQL = sql
	return s
}

// AddTable instantiates the kind with empty fields and appends it.
// It is a no-op when kindID is empty, unknown or already selected.
func (s Session) AddTable(kinds KindLookup, kindID string) Session {
	if kindID == "" || s.HasTable(kindID) {
		return s
	}
	kind, ok := kinds.Lookup(kindID)
	if !ok {
		return s
	}
	fields, err := domain.EmptyFields(kind.FormType)
	if err != nil {
		return s
	}
	s = s.clone()
	s.Tables = append(s.Tables, domain.SelectedTable{Kind: kind, Fields: fields})
	return s
}

// RemoveTable drops the table and every join referencing it. Removing the
// base table also clears the base, all joins and the generated SQL.
func (s Session) RemoveTable(id string) Session {
	if !s.HasTable(id) {
		return s
	}
	s = s.clone()
	s.Tables = slices.DeleteFunc(s.Tables, func(t domain.SelectedTable) bool { return t.ID() == id })
	if s.BaseTableID == id {
		s.BaseTableID = ""
		s.Joins = nil
		s.GeneratedSQL = ""
		return s
	}
	s.Joins = slices.DeleteFunc(s.Joins, func(j domain.JoinSpec) bool { return j.TableID == id })
	return s
}

// UpdateFields replaces the whole fields record of a selected table.
func (s Session) UpdateFields(id string, fields domain.Fields) (Session, error) {
	idx := slices.IndexFunc(s.Tables, func(t domain.SelectedTable) bool { return t.ID() == id })
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrTableNotSelected, id)
	}
	if fields == nil || fields.FormType() != s.Tables[idx].Kind.FormType {
		return s, fmt.Errorf("%w: table %s expects %s", ErrFieldsMismatch, id, s.Tables[idx].Kind.FormType)
	}
	s = s.clone()
	s.Tables[idx].Fields = fields
	return s, nil
}

// SetBaseTable selects the FROM table. An empty id clears the base and all joins.
// A join that pointed at the new base is dropped.
func (s Session) SetBaseTable(id string) (Session, error) {
	if id == "" {
		s = s.clone()
		s.BaseTableID = ""
		s.Joins = nil
		return s, nil
	}
	if !s.HasTable(id) {
		return s, fmt.Errorf("%w: %s", ErrTableNotSelected, id)
	}
	s = s.clone()
	s.BaseTableID = id
	s.Joins = slices.DeleteFunc(s.Joins, func(j domain.JoinSpec) bool { return j.TableID == id })
	return s, nil
}

// AddJoin appends a join. tableID may be empty to create a draft; a
// non-empty tableID must be selected, not the base and not joined already.
func (s Session) AddJoin(joinID, tableID string, joinType domain.JoinType, key string) (Session, error) {
	if joinID == "" {
		return s, ErrEmptyJoinID
	}
	if _, exists := s.Join(joinID); exists {
		return s, fmt.Errorf("%w: %s", ErrJoinIDConflict, joinID)
	}
	if err := s.checkJoinTable(joinID, tableID); err != nil {
		return s, err
	}
	if joinType == "" {
		joinType = domain.JoinInner
	}
	if key == "" {
		key = domain.DefaultJoinKey
	}
	s = s.clone()
	s.Joins = append(s.Joins, domain.JoinSpec{ID: joinID, TableID: tableID, Type: joinType, Key: key})
	return s, nil
}

// JoinUpdate carries the join attributes to change; nil leaves a value as is.
type JoinUpdate struct {
	TableID *string
	Type    *domain.JoinType
	Key     *string
}

// UpdateJoin changes one join in place, keeping its position in the list.
// Clearing the key restores DefaultJoinKey.
func (s Session) UpdateJoin(joinID string, upd JoinUpdate) (Session, error) {
	idx := slices.IndexFunc(s.Joins, func(j domain.JoinSpec) bool { return j.ID == joinID })
	if idx < 0 {
		return s, fmt.Errorf("%w: %s", ErrJoinNotFound, joinID)
	}
	if upd.TableID != nil {
		if err := s.checkJoinTable(joinID, *upd.TableID); err != nil {
			return s, err
		}
	}
	s = s.clone()
	j := &s.Joins[idx]
	if upd.TableID != nil {
		j.TableID = *upd.TableID
	}
	if upd.Type != nil {
		j.Type = *upd.Type
	}
	if upd.Key != nil {
		j.Key = strings.TrimSpace(*upd.Key)
		if j.Key == "" {
			j.Key = domain.DefaultJoinKey
		}
	}
	return s, nil
}

// RemoveJoin drops a single join; unknown ids are ignored.
func (s Session) RemoveJoin(joinID string) Session {
	if _, ok := s.Join(joinID); !ok {
		return s
	}
	s = s.clone()
	s.Joins = slices.DeleteFunc(s.Joins, func(j domain.JoinSpec) bool { return j.ID == joinID })
	return s
}

func (s Session) checkJoinTable(joinID, tableID string) error {
	if tableID == "" {
		return nil
	}
	if !s.HasTable(tableID) {
		return fmt.Errorf("%w: %s", ErrTableNotSelected, tableID)
	}
	if tableID == s.BaseTableID {
		return fmt.Errorf("%w: %s", ErrJoinTableIsBase, tableID)
	}
	for _, j := range s.Joins {
		if j.ID != joinID && j.TableID == tableID {
			return fmt.Errorf("%w: %s", ErrJoinTableInUse, tableID)
		}
	}
	return nil
}
