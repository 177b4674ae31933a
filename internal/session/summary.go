package session

import (
	"fmt"
	"strings"

	"github.com/Annany2002/cvm-baseprep/internal/domain"
)

const notAvailable = "N/A"

// EffectiveTableName is the explicit table_name when set, otherwise the
// label with spaces replaced by underscores followed by _<postfix>.
func EffectiveTableName(t domain.SelectedTable, postfix string) string {
	if t.Fields != nil {
		if name := t.Fields.ExplicitTableName(); name != "" {
			return name
		}
	}
	return strings.ReplaceAll(t.Kind.Label, " ", "_") + "_" + postfix
}

// EffectiveTableName resolves the name of a selected table using the session postfix.
func (s Session) EffectiveTableName(t domain.SelectedTable) string {
	return EffectiveTableName(t, s.Postfix)
}

// ParametersSummary renders the form values of a table for display.
func ParametersSummary(t domain.SelectedTable) string {
	switch f := t.Fields.(type) {
	case domain.ActiveCustomersFields:
		return fmt.Sprintf("%s, %s days", orNA(f.TableName), orNA(f.ActiveFor))
	case domain.VLRAttachedFields:
		return fmt.Sprintf("%s, Days %s-%s", orNA(f.TableName), orNA(f.DayFrom), orNA(f.DayTo))
	case domain.DateFormatFields:
		return fmt.Sprintf("%s, %s", orNA(f.TableName), orNA(string(f.DataFormat)))
	case domain.BalanceThresholdFields:
		return fmt.Sprintf("%s, %s %s", orNA(f.TableName), orNA(string(f.Comparison)), orNA(f.BalanceThreshold))
	case domain.TargetedCustomersFields:
		return fmt.Sprintf("%s, %s days", orNA(f.TableName), orNA(f.TargetedForLast))
	case domain.RewardFromAccountFields:
		return fmt.Sprintf("%s, Account: %s", orNA(f.TableName), orNA(f.AccountNumber))
	default:
		return notAvailable
	}
}

func orNA(v string) string {
	if v == "" {
		return notAvailable
	}
	return v
}
