// internal/sqlbuilder/builder.go
package sqlbuilder

import (
	"errors"
	"slices"
	"strings"

	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/session"
)

var ErrNoBaseTable = errors.New("no base table")

// Catalog resolves the alias and output columns of a table kind.
type Catalog interface {
	Alias(kindID string) string
	Columns(kindID string) []string
}

// Generate renders the SELECT ... FROM ... JOIN statement of the session.
// Joins are emitted in list order. A join whose table is no longer selected,
// or that has no join key, is skipped. The output depends only on the
// session and catalog, so repeated calls return identical text.
// A kind missing from the catalog is qualified with the catalog fallback alias.
func Generate(s session.Session, cat Catalog) (string, error) {
	base, ok := s.BaseTable()
	if !ok {
		return "", ErrNoBaseTable
	}
	baseAlias := cat.Alias(base.ID())

	var sb strings.Builder
	sb.WriteString("SELECT \n  ")
	sb.WriteString(baseAlias)
	sb.WriteString(".*")
	joins := renderable(s)
	for _, j := range joins {
		sb.WriteString(",\n  ")
		sb.WriteString(cat.Alias(j.join.TableID))
		sb.WriteString(".*")
	}

	sb.WriteString("\nFROM ")
	sb.WriteString(s.EffectiveTableName(base))
	sb.WriteString(" ")
	sb.WriteString(baseAlias)

	for _, j := range joins {
		alias := cat.Alias(j.join.TableID)
		sb.WriteString("\n")
		sb.WriteString(j.join.Type.Keyword())
		sb.WriteString(" ")
		sb.WriteString(s.EffectiveTableName(j.table))
		sb.WriteString(" ")
		sb.WriteString(alias)
		sb.WriteString("\n  ON ")
		sb.WriteString(baseAlias + "." + j.join.Key)
		sb.WriteString(" = ")
		sb.WriteString(alias + "." + j.join.Key)
	}

	sb.WriteString(";")
	return sb.String(), nil
}

type resolvedJoin struct {
	join  domain.JoinSpec
	table domain.SelectedTable
}

// renderable keeps the joins that point at a selected table and carry a key,
// so the select list and the JOIN clauses always agree.
func renderable(s session.Session) []resolvedJoin {
	out := make([]resolvedJoin, 0, len(s.Joins))
	for _, j := range s.Joins {
		t, ok := s.Table(j.TableID)
		if !ok || j.Key == "" {
			continue
		}
		out = append(out, resolvedJoin{join: j, table: t})
	}
	return out
}

// JoinedColumns lists the base columns followed by the columns each rendered
// join adds, without duplicates. It is empty when no base table is set.
func JoinedColumns(s session.Session, cat Catalog) []string {
	if s.BaseTableID == "" {
		return nil
	}
	cols := slices.Clone(cat.Columns(s.BaseTableID))
	for _, j := range renderable(s) {
		for _, c := range cat.Columns(j.table.ID()) {
			if !slices.Contains(cols, c) {
				cols = append(cols, c)
			}
		}
	}
	return cols
}
