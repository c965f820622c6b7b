package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mubench-review/internal/aggregate"
	"mubench-review/internal/api"
	"mubench-review/internal/db"
	"mubench-review/internal/services"
	"mubench-review/models"
)

type fakeProcessor struct {
	index      []models.ProjectIndex
	err        error
	names      []string
	lastTable  string
	lastPrefix string
}

func (f *fakeProcessor) GetPotentialHitsIndex(_ context.Context, table string) ([]models.ProjectIndex, error) {
	f.lastTable = table
	return f.index, f.err
}

func (f *fakeProcessor) GetDatasets(_ context.Context, prefix string) ([]string, error) {
	f.lastPrefix = prefix
	return f.names, f.err
}

func (f *fakeProcessor) GetDetectors(_ context.Context, prefix string) ([]string, error) {
	f.lastPrefix = prefix
	return f.names, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHits_Success(t *testing.T) {
	proc := &fakeProcessor{index: []models.ProjectIndex{{
		Project:  "P1",
		Versions: []string{"v1"},
		Stats:    []models.Stats{{ID: "ex1_P1_v1", Result: "success"}},
		Misuse:   map[string][]string{"v1": {"bufferOverflow"}},
	}}}
	app := api.NewApp(proc, fakePinger{})

	rec := serve(t, app.Handler(), "/api/hits/ex1_mubench_mudetect")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ex1_mubench_mudetect", proc.lastTable)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var got []models.ProjectIndex
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, proc.index, got)
}

func TestHits_ErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"tabela inválida", fmt.Errorf("%w: %q", db.ErrInvalidTableName, "x;y"), http.StatusBadRequest},
		{"fora de ordem", fmt.Errorf("x: %w", aggregate.ErrMissingVersionContext), http.StatusUnprocessableEntity},
		{"banco", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := api.NewApp(&fakeProcessor{err: tt.err}, fakePinger{})
			rec := serve(t, app.Handler(), "/api/hits/ex1")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestHits_InternalErrorHidesDetail(t *testing.T) {
	app := api.NewApp(&fakeProcessor{err: errors.New(`pq: relation "ex1" does not exist`)}, fakePinger{})

	rec := serve(t, app.Handler(), "/api/hits/ex1")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
	assert.Contains(t, rec.Body.String(), http.StatusText(http.StatusInternalServerError))

	app = api.NewApp(&fakeProcessor{err: fmt.Errorf("%w: %q", db.ErrInvalidTableName, "x;y")}, fakePinger{})
	rec = serve(t, app.Handler(), "/api/hits/ex1")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nome de tabela inválido")
}

func TestDatasets(t *testing.T) {
	proc := &fakeProcessor{names: []string{"mubench", "bigdata"}}
	app := api.NewApp(proc, fakePinger{})

	rec := serve(t, app.Handler(), "/api/datasets?prefix=ex1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ex1", proc.lastPrefix)

	var names []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&names))
	assert.Equal(t, []string{"mubench", "bigdata"}, names)
}

func TestDatasetsAndDetectors_MissingPrefix(t *testing.T) {
	app := api.NewApp(&fakeProcessor{}, fakePinger{})
	for _, target := range []string{"/api/datasets", "/api/detectors"} {
		rec := serve(t, app.Handler(), target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestHealthz(t *testing.T) {
	rec := serve(t, api.NewApp(&fakeProcessor{}, fakePinger{}).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(t, api.NewApp(&fakeProcessor{}, fakePinger{err: errors.New("down")}).Handler(), "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID_Propagated(t *testing.T) {
	app := api.NewApp(&fakeProcessor{}, fakePinger{})
	const id = "7f1c2a9e-3b4d-4c5e-8f6a-1b2c3d4e5f60"

	req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("X-Request-ID", id)
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	req.Header.Set("X-Request-ID", "not-a-uuid")
	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get("X-Request-ID"))
}

func TestMetrics(t *testing.T) {
	app := api.NewApp(&fakeProcessor{names: []string{}}, fakePinger{})
	h := app.Handler()

	serve(t, h, "/api/detectors?prefix=ex1")
	rec := serve(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `review_http_requests_total{method="GET",route="/api/detectors",status="200"} 1`)
}

// Fluxo completo sobre SQLite em memória: store, DataProcessor e roteador.
func TestHits_SQLite(t *testing.T) {
	database := db.NewDatabase()
	store, err := database.Connect(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	_, err = store.DB.Exec(`
	CREATE TABLE ex1_mubench_mudetect (project TEXT, version TEXT, misuse TEXT);
	CREATE TABLE stats (id TEXT PRIMARY KEY, result TEXT, runtime REAL, number_of_findings INTEGER);
	INSERT INTO ex1_mubench_mudetect VALUES ('P1', 'v1', 'bufferOverflow');
	INSERT INTO ex1_mubench_mudetect VALUES ('P1', 'v1', 'nullDeref');
	INSERT INTO ex1_mubench_mudetect VALUES ('P1', 'v2', 'bufferOverflow');
	INSERT INTO ex1_mubench_mudetect VALUES ('P2', 'v1', 'raceCondition');
	INSERT INTO stats VALUES ('ex1_mubench_mudetect_P1_v1', 'success', 1.0, 2);
	INSERT INTO stats VALUES ('ex1_mubench_mudetect_P1_v2', 'timeout', 60.0, 0);
	INSERT INTO stats VALUES ('ex1_mubench_mudetect_P2_v1', 'error', 0.5, 0);
	`)
	require.NoError(t, err)

	app := api.NewApp(services.NewDataProcessor(store), store)
	h := app.Handler()

	rec := serve(t, h, "/api/hits/ex1_mubench_mudetect")
	require.Equal(t, http.StatusOK, rec.Code)

	var got []models.ProjectIndex
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.Len(t, got, 2)
	assert.Equal(t, []string{"v1", "v2"}, got[0].Versions)
	assert.Equal(t, "timeout", got[0].Stats[1].Result)
	assert.Equal(t, map[string][]string{"v1": {"bufferOverflow", "nullDeref"}, "v2": {"bufferOverflow"}}, got[0].Misuse)
	assert.Equal(t, "error", got[1].Stats[0].Result)

	rec = serve(t, h, "/api/detectors?prefix=ex1")
	require.Equal(t, http.StatusOK, rec.Code)
	var detectors []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&detectors))
	assert.Equal(t, []string{"mudetect"}, detectors)

	rec = serve(t, h, "/api/hits/no_such_table")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
