package sqlbuilder

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/cvm-baseprep/internal/catalog"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/session"
)

func sessionWith(t *testing.T, base string, ids ...string) session.Session {
	t.Helper()
	cat := catalog.Default()
	s := session.New("NOV29")
	for _, id := range ids {
		s = s.AddTable(cat, id)
	}
	if base != "" {
		var err error
		s, err = s.SetBaseTable(base)
		require.NoError(t, err)
	}
	return s
}

func TestGenerateWithoutBaseTable(t *testing.T) {
	s := sessionWith(t, "", "active", "vlr").WithGeneratedSQL("previous")

	sql, err := Generate(s, catalog.Default())
	assert.ErrorIs(t, err, ErrNoBaseTable)
	assert.Empty(t, sql)
	assert.Equal(t, "previous", s.GeneratedSQL)
}

func TestGenerateSingleLeftJoin(t *testing.T) {
	s := sessionWith(t, "active", "active", "vlr")
	s, err := s.AddJoin("j1", "vlr", domain.JoinLeft, "msisdn")
	require.NoError(t, err)

	sql, err := Generate(s, catalog.Default())
	require.NoError(t, err)

	want := "SELECT \n" +
		"  act.*,\n" +
		"  vlr.*\n" +
		"FROM ACTIVE_CUSTOMERS_NOV29 act\n" +
		"LEFT JOIN VLR_ATTACHED_CUSTOMERS_NOV29 vlr\n" +
		"  ON act.msisdn = vlr.msisdn;"
	assert.Equal(t, want, sql)
}

func TestGenerateBaseOnly(t *testing.T) {
	s := sessionWith(t, "balance", "balance")
	s, _ = s.UpdateFields("balance", domain.BalanceThresholdFields{TableName: "BAL_HIGH"})

	sql, err := Generate(s, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, "SELECT \n  bal.*\nFROM BAL_HIGH bal;", sql)
}

func TestGenerateKeepsJoinOrder(t *testing.T) {
	s := sessionWith(t, "active", "active", "vlr", "balance", "targeted")
	var err error
	s, err = s.AddJoin("j1", "targeted", domain.JoinInner, "msisdn")
	require.NoError(t, err)
	s, err = s.AddJoin("j2", "vlr", domain.JoinLeft, "msisdn")
	require.NoError(t, err)
	s, err = s.AddJoin("j3", "balance", domain.JoinInner, "subscriber_id")
	require.NoError(t, err)

	sql, err := Generate(s, catalog.Default())
	require.NoError(t, err)

	assert.Equal(t, 4, strings.Count(sql, ".*"), "base plus one alias per join")
	assert.Equal(t, 3, strings.Count(sql, "JOIN "))
	assert.Equal(t, 1, strings.Count(sql, "LEFT JOIN "))

	tgt := strings.Index(sql, "JOIN TARGETED_CUSTOMERS_NOV29 tgt")
	vlr := strings.Index(sql, "LEFT JOIN VLR_ATTACHED_CUSTOMERS_NOV29 vlr")
	bal := strings.Index(sql, "JOIN BALANCE_THRESHOLD_NOV29 bal")
	require.True(t, tgt > 0 && vlr > 0 && bal > 0, sql)
	assert.Less(t, tgt, vlr)
	assert.Less(t, vlr, bal)
	assert.Contains(t, sql, "ON act.subscriber_id = bal.subscriber_id")
	assert.Less(t, strings.Index(sql, "tgt.*"), strings.Index(sql, "vlr.*"))
}

func TestGenerateIsIdempotent(t *testing.T) {
	s := sessionWith(t, "active", "active", "vlr")
	s, _ = s.AddJoin("j1", "vlr", domain.JoinInner, "msisdn")

	first, err := Generate(s, catalog.Default())
	require.NoError(t, err)
	second, err := Generate(s, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenerateSkipsUnresolvableJoins(t *testing.T) {
	s := sessionWith(t, "active", "active", "vlr", "balance")
	s, _ = s.AddJoin("draft", "", domain.JoinInner, "")
	s, _ = s.AddJoin("nokey", "balance", domain.JoinInner, "")
	s, _ = s.AddJoin("stale", "vlr", domain.JoinLeft, "msisdn")

	// Simulate stale state that bypassed the removal cascade and the key default.
	s.Joins = slices.Clone(s.Joins)
	s.Joins[1].Key = ""
	s.Tables = []domain.SelectedTable{s.Tables[0], s.Tables[2]}

	sql, err := Generate(s, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, "SELECT \n  act.*\nFROM ACTIVE_CUSTOMERS_NOV29 act;", sql)
	assert.Equal(t, []string{"msisdn", "activation_date", "last_activity", "status"}, JoinedColumns(s, catalog.Default()),
		"result columns follow the rendered joins")
}

func TestGenerateAfterClearingJoinKey(t *testing.T) {
	s := sessionWith(t, "active", "active", "vlr")
	s, err := s.AddJoin("j1", "vlr", domain.JoinLeft, "imsi")
	require.NoError(t, err)
	empty := ""
	s, err = s.UpdateJoin("j1", session.JoinUpdate{Key: &empty})
	require.NoError(t, err)

	sql, err := Generate(s, catalog.Default())
	require.NoError(t, err)
	assert.Contains(t, sql, "  vlr.*\n")
	assert.True(t, strings.HasSuffix(sql, "LEFT JOIN VLR_ATTACHED_CUSTOMERS_NOV29 vlr\n  ON act.msisdn = vlr.msisdn;"), sql)
}

func TestGenerateFallbackAlias(t *testing.T) {
	custom := catalog.New([]domain.TableKind{
		{ID: "custom", Label: "CUSTOM LIST", Alias: "cus", FormType: domain.FormRewardFromAccount},
	})
	s := session.New("NOV29").AddTable(custom, "custom")
	s, err := s.SetBaseTable("custom")
	require.NoError(t, err)

	sql, err := Generate(s, catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, "SELECT \n  "+catalog.FallbackAlias+".*\nFROM CUSTOM_LIST_NOV29 "+catalog.FallbackAlias+";", sql)
}

func TestJoinedColumns(t *testing.T) {
	s := sessionWith(t, "active", "active", "vlr", "balance")
	s, _ = s.AddJoin("j1", "vlr", domain.JoinLeft, "")
	s, _ = s.AddJoin("j2", "balance", domain.JoinInner, "")

	got := JoinedColumns(s, catalog.Default())
	assert.Equal(t, []string{
		"msisdn", "activation_date", "last_activity", "status",
		"vlr_id", "attach_date", "detach_date",
		"balance", "last_update",
	}, got)

	assert.Nil(t, JoinedColumns(sessionWith(t, "", "active"), catalog.Default()))
}
