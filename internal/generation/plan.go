package generation

import (
	"errors"

	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/session"
	"github.com/Annany2002/cvm-baseprep/internal/sqlbuilder"
)

var ErrNoTablesSelected = errors.New("no tables selected")

// JoinResultParameters is the parameters summary of the SQL join result table.
const JoinResultParameters = "SQL Join Result"

// Plan builds one pending record per selected table, in display order, plus
// the SQL join result table when both a result name and a base table are set.
func Plan(s session.Session, cat sqlbuilder.Catalog) ([]domain.GenerationRecord, error) {
	if len(s.Tables) == 0 {
		return nil, ErrNoTablesSelected
	}

	records := make([]domain.GenerationRecord, 0, len(s.Tables)+1)
	for _, t := range s.Tables {
		records = append(records, domain.GenerationRecord{
			Name:              s.EffectiveTableName(t),
			Status:            domain.StatusPending,
			ParametersSummary: session.ParametersSummary(t),
			Columns:           cat.Columns(t.ID()),
		})
	}

	if s.ResultTableName != "" && s.BaseTableID != "" {
		records = append(records, domain.GenerationRecord{
			Name:              s.ResultTableName,
			Status:            domain.StatusPending,
			ParametersSummary: JoinResultParameters,
			Columns:           sqlbuilder.JoinedColumns(s, cat),
		})
	}
	return records, nil
}
