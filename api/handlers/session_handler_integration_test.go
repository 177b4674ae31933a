// api/handlers/session_handler_integration_test.go
package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/cvm-baseprep/api"
	"github.com/Annany2002/cvm-baseprep/api/models"
	"github.com/Annany2002/cvm-baseprep/config"
	"github.com/Annany2002/cvm-baseprep/internal/auth"
	"github.com/Annany2002/cvm-baseprep/internal/domain"
	"github.com/Annany2002/cvm-baseprep/internal/generation"
	"github.com/Annany2002/cvm-baseprep/internal/mediation"
	"github.com/Annany2002/cvm-baseprep/internal/storage"
)

var epoch = time.Date(2024, 11, 29, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	router *gin.Engine
	sched  *generation.FakeScheduler
	cfg    *config.Config
	token  string
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		ServerPort:         "0",
		JWTExpiration:      5 * time.Minute,
		MetadataDbDir:      t.TempDir(),
		MetadataDbFile:     "test_metadata.db",
		DefaultPostfix:     "NOV29",
		GenerationStagger:  2 * time.Second,
		GenerationTick:     time.Second,
		GenerationMinTime:  5 * time.Second,
		GenerationMaxTime:  5 * time.Second,
		MediationAPIURL:    "http://127.0.0.1:1/api/",
		DashboardAPIURL:    "http://127.0.0.1:1",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
}

// setupTestRouter builds the full router over a temporary SQLite history and
// a virtual clock.
func setupTestRouter(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.ConnectMetadataDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	sched := generation.NewFakeScheduler(epoch)
	env := &testEnv{router: api.SetupRouter(db, cfg, sched), sched: sched, cfg: cfg}
	if cfg.JWTSecret != "" {
		env.token, err = auth.GenerateJWT("tester", cfg.JWTSecret, cfg.JWTExpiration)
		require.NoError(t, err)
	}
	return env
}

// sessionView mirrors models.SessionResponse with form fields left raw,
// since they decode per form type.
type sessionView struct {
	ID               string             `json:"session_id"`
	Postfix          string             `json:"postfix"`
	Tables           []tableView        `json:"tables"`
	BaseTableID      string             `json:"base_table_id"`
	Joins            []domain.JoinSpec  `json:"joins"`
	ResultTableName  string             `json:"result_table_name"`
	GeneratedSQL     string             `json:"generated_sql"`
	AvailableKinds   []domain.TableKind `json:"available_tables"`
	AvailableForJoin []string           `json:"available_for_join"`
}

type tableView struct {
	ID                 string          `json:"id"`
	Fields             json.RawMessage `json:"fields"`
	EffectiveTableName string          `json:"effective_table_name"`
	Parameters         string          `json:"parameters"`
	IsBase             bool            `json:"is_base"`
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (e *testEnv) createSession(t *testing.T, postfix string) string {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"postfix": postfix})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[sessionView](t, rec).ID
}

func TestBaseTableWorkflow(t *testing.T) {
	env := setupTestRouter(t, testConfig(t))
	id := env.createSession(t, "nov29")
	base := "/api/v1/sessions/" + id

	rec := env.do(t, http.MethodPost, base+"/tables", map[string]string{"table_id": "active"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = env.do(t, http.MethodPost, base+"/tables", map[string]string{"table_id": "vlr"})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("duplicate table conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/tables", map[string]string{"table_id": "active"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("unknown kind is not found", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/tables", map[string]string{"table_id": "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
	t.Run("sql without base table", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/sql", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec = env.do(t, http.MethodPut, base+"/base", map[string]string{"table_id": "active"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[sessionView](t, rec)
	assert.Equal(t, []string{"vlr"}, view.AvailableForJoin)

	rec = env.do(t, http.MethodPost, base+"/joins", map[string]string{"table_id": "vlr", "join_type": "LEFT"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view = decode[sessionView](t, rec)
	require.Len(t, view.Joins, 1)
	assert.Equal(t, domain.JoinSpec{ID: view.Joins[0].ID, TableID: "vlr", Type: domain.JoinLeft, Key: "msisdn"}, view.Joins[0])
	assert.Empty(t, view.AvailableForJoin)

	rec = env.do(t, http.MethodPost, base+"/sql", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	wantSQL := "SELECT \n  act.*,\n  vlr.*\nFROM ACTIVE_CUSTOMERS_NOV29 act\nLEFT JOIN VLR_ATTACHED_CUSTOMERS_NOV29 vlr\n  ON act.msisdn = vlr.msisdn;"
	assert.Equal(t, wantSQL, decode[models.SQLResponse](t, rec).SQL)

	rec = env.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode[sessionView](t, rec)
	assert.Equal(t, "NOV29", view.Postfix)
	assert.Equal(t, wantSQL, view.GeneratedSQL)
	require.Len(t, view.Tables, 2)
	assert.Equal(t, "ACTIVE_CUSTOMERS_NOV29", view.Tables[0].EffectiveTableName)
	assert.Equal(t, "N/A, N/A days", view.Tables[0].Parameters)
	assert.True(t, view.Tables[0].IsBase)
	assert.Len(t, view.AvailableKinds, 6)

	rec = env.do(t, http.MethodPut, base+"/result-table", map[string]string{"name": "joined_base_nov29"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "JOINED_BASE_NOV29", decode[sessionView](t, rec).ResultTableName)

	// Generation: three jobs staggered 2s apart, each taking 5s.
	rec = env.do(t, http.MethodPost, base+"/generate", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	snap := decode[generation.Snapshot](t, rec)
	assert.True(t, snap.IsGenerating)
	require.Equal(t, 3, snap.Total)
	assert.Equal(t, "JOINED_BASE_NOV29", snap.Records[2].Name)
	assert.Equal(t, generation.JoinResultParameters, snap.Records[2].ParametersSummary)

	rec = env.do(t, http.MethodPost, base+"/generate", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "one run at a time")

	env.sched.Advance(8 * time.Second)
	rec = env.do(t, http.MethodGet, base+"/generation", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap = decode[generation.Snapshot](t, rec)
	assert.True(t, snap.IsGenerating)
	assert.Equal(t, 2, snap.Completed)

	env.sched.Advance(time.Second)
	snap = decode[generation.Snapshot](t, env.do(t, http.MethodGet, base+"/generation", nil))
	assert.False(t, snap.IsGenerating)
	assert.Equal(t, 3, snap.Completed)
	require.NotNil(t, snap.FinishedAt)
	assert.GreaterOrEqual(t, snap.FinishedAt.Sub(snap.StartedAt), 4*time.Second)

	rec = env.do(t, http.MethodGet, "/api/v1/generated-tables?sort=table_name&order=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	page := decode[models.GeneratedTablesResponse](t, rec)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Tables, 3)
	assert.Equal(t, "ACTIVE_CUSTOMERS_NOV29", page.Tables[0].Name)
	assert.Equal(t, snap.ID, page.Tables[0].RunID)

	rec = env.do(t, http.MethodGet, "/api/v1/generated-tables/VLR_ATTACHED_CUSTOMERS_NOV29", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[domain.GeneratedTable](t, rec)
	assert.Equal(t, domain.StatusCompleted, detail.Status)
	assert.Equal(t, 5.0, detail.ElapsedSeconds)
	assert.Equal(t, []string{"msisdn", "vlr_id", "attach_date", "detach_date"}, detail.Columns)

	rec = env.do(t, http.MethodPost, base+"/generate", nil)
	assert.Equal(t, http.StatusAccepted, rec.Code, "a finished run can be followed by a new one")
}

func TestSessionEdits(t *testing.T) {
	env := setupTestRouter(t, testConfig(t))
	id := env.createSession(t, "")
	base := "/api/v1/sessions/" + id

	for _, kind := range []string{"active", "vlr", "balance"} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, base+"/tables", map[string]string{"table_id": kind}).Code)
	}

	t.Run("default postfix", func(t *testing.T) {
		view := decode[sessionView](t, env.do(t, http.MethodGet, base, nil))
		assert.Equal(t, "NOV29", view.Postfix)
	})

	t.Run("fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, base+"/tables/balance/fields", `{"table_name":"BAL_HIGH","comparison":"greater_than","balance_threshold":"100"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		view := decode[sessionView](t, rec)
		assert.Equal(t, "BAL_HIGH", view.Tables[2].EffectiveTableName)
		assert.Equal(t, "BAL_HIGH, greater_than 100", view.Tables[2].Parameters)

		rec = env.do(t, http.MethodPut, base+"/tables/balance/fields", `{"table_name":"BAL HIGH"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(t, http.MethodPut, base+"/tables/balance/fields", `{"table_name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(t, http.MethodPut, base+"/tables/targeted/fields", `{}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("date fields", func(t *testing.T) {
		testCases := []struct {
			name     string
			dataFrom string
			want     string
		}{
			{"date only", `"2024-11-29"`, `"data_from":"2024-11-29"`},
			{"timestamp", `"2024-11-29T08:00:00Z"`, `"data_from":"2024-11-29"`},
			{"emptied", `""`, ""},
			{"null", `null`, ""},
			{"unparseable", `"next tuesday"`, ""},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				rec := env.do(t, http.MethodPut, base+"/tables/active/fields", `{"data_from":`+tc.dataFrom+`,"active_for":"30"}`)
				require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
				view := decode[sessionView](t, rec)
				fields := string(view.Tables[0].Fields)
				if tc.want == "" {
					assert.NotContains(t, fields, "data_from")
				} else {
					assert.Contains(t, fields, tc.want)
				}
				assert.Equal(t, "N/A, 30 days", view.Tables[0].Parameters)
			})
		}
	})

	t.Run("postfix", func(t *testing.T) {
		rec := env.do(t, http.MethodPut, base+"/postfix", map[string]string{"postfix": "dec01"})
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode[sessionView](t, rec)
		assert.Equal(t, "VLR_ATTACHED_CUSTOMERS_DEC01", view.Tables[1].EffectiveTableName)

		rec = env.do(t, http.MethodPut, base+"/postfix", map[string]string{"postfix": "DEC 01"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("joins", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/joins", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "no base table yet")

		require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, base+"/base", map[string]string{"table_id": "active"}).Code)

		rec = env.do(t, http.MethodPost, base+"/joins", nil)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		draft := decode[sessionView](t, rec).Joins[0]
		assert.Empty(t, draft.TableID)

		rec = env.do(t, http.MethodPatch, base+"/joins/"+draft.ID, map[string]string{"table_id": "active"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "base table cannot be joined")

		rec = env.do(t, http.MethodPatch, base+"/joins/"+draft.ID, map[string]string{"table_id": "vlr", "join_type": "left join", "join_key": "imsi"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		j := decode[sessionView](t, rec).Joins[0]
		assert.Equal(t, domain.JoinLeft, j.Type)
		assert.Equal(t, "imsi", j.Key)

		rec = env.do(t, http.MethodPatch, base+"/joins/"+draft.ID, map[string]string{"join_key": "msisdn; DROP TABLE x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "join keys are spliced into SQL and must be identifiers")

		rec = env.do(t, http.MethodPatch, base+"/joins/"+draft.ID, map[string]string{"join_key": ""})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, domain.DefaultJoinKey, decode[sessionView](t, rec).Joins[0].Key)

		rec = env.do(t, http.MethodPost, base+"/joins", map[string]string{"table_id": "vlr"})
		assert.Equal(t, http.StatusConflict, rec.Code)
		rec = env.do(t, http.MethodPost, base+"/joins", map[string]string{"table_id": "balance", "join_type": "CROSS"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = env.do(t, http.MethodDelete, base+"/joins/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("removing base clears joins", func(t *testing.T) {
		rec := env.do(t, http.MethodDelete, base+"/tables/active", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode[sessionView](t, rec)
		assert.Empty(t, view.BaseTableID)
		assert.Empty(t, view.Joins)
		assert.Len(t, view.Tables, 2)

		rec = env.do(t, http.MethodDelete, base+"/tables/active", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("generation before any run", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, base+"/generation", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete session", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, nil).Code)
	})
}

func TestGenerateEmptySession(t *testing.T) {
	env := setupTestRouter(t, testConfig(t))
	id := env.createSession(t, "NOV29")

	rec := env.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/generate", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGeneratedTablesValidation(t *testing.T) {
	env := setupTestRouter(t, testConfig(t))

	rec := env.do(t, http.MethodGet, "/api/v1/generated-tables?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/generated-tables/NOT_THERE", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/generated-tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.GeneratedTablesResponse](t, rec)
	assert.Equal(t, 0, page.Total)
	assert.NotNil(t, page.Tables)
}

func TestCatalogAndPing(t *testing.T) {
	env := setupTestRouter(t, testConfig(t))

	rec := env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Tables []domain.TableKind `json:"tables"`
	}](t, rec)
	require.Len(t, body.Tables, 8)
	assert.Equal(t, "active", body.Tables[0].ID)

	rec = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `baseprep_http_requests_total{method="GET",route="/api/v1/catalog",status="200"} 1`)
}

func TestAuthRequiredWhenSecretSet(t *testing.T) {
	cfg := testConfig(t)
	cfg.JWTSecret = "test_secret_key_for_integration_tests_1234567890"
	env := setupTestRouter(t, cfg)

	rec := env.do(t, http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	token := env.token
	env.token = ""
	rec = env.do(t, http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.token = token + "x"
	rec = env.do(t, http.MethodGet, "/api/v1/catalog", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.token = ""
	rec = env.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "ping stays public")
}

func TestDashboardCards(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/active-users/card-view" {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"daily_count":12,"30day_count":300,"90day_count":900,"data_retrieved_at":"2024-11-29"}`))
	}))
	defer backend.Close()

	t.Run("partial refresh", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.DashboardAPIURL = backend.URL
		env := setupTestRouter(t, cfg)

		rec := env.do(t, http.MethodGet, "/api/v1/dashboard/cards", nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		cards := decode[mediation.Cards](t, rec)
		assert.Equal(t, int64(300), cards.Data["active-total"].ThirtyDayCount)
		assert.Equal(t, []string{"active-existing", "active-new"}, cards.Failed)
		assert.Len(t, cards.Metrics, 12)
	})

	t.Run("nothing answered", func(t *testing.T) {
		env := setupTestRouter(t, testConfig(t))
		rec := env.do(t, http.MethodGet, "/api/v1/dashboard/cards", nil)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
}
