package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/notify"
	"github.com/sanskrutikanthale01/coddle-sleep-coach/internal/storage"
)

type testApp struct {
	logger  internal.Logger
	clock   internal.Clock
	store   storage.Store
	planner *notify.Planner
}

func (a *testApp) Logger() internal.Logger  { return a.logger }
func (a *testApp) Clock() internal.Clock    { return a.clock }
func (a *testApp) Store() storage.Store     { return a.store }
func (a *testApp) Planner() *notify.Planner { return a.planner }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := internal.NewNopLogger()
	store, err := storage.NewFileBackend(filepath.Join(t.TempDir(), "store.json"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	app := &testApp{
		logger: logger,
		clock: internal.FixedClock{
			T:   time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC),
			Loc: time.UTC,
		},
		store:   store,
		planner: notify.NewPlanner(notify.NewLocalDelivery(), logger),
	}

	r := gin.New()
	Register(r, app)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var parsed map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func createProfile(t *testing.T, r *gin.Engine) string {
	w, resp := doJSON(t, r, "POST", "/profiles", `{"name":"Ada","birth_date":"2023-12-15"}`)
	require.Equal(t, 200, w.Code)
	data := resp["data"].(map[string]any)
	return data["id"].(string)
}

func TestProfileLifecycle(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "GET", "/profiles/"+id, "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, "Ada", resp["data"].(map[string]any)["name"])

	w, _ = doJSON(t, r, "POST", "/profiles", `{"name":"Ada","birth_date":"2030-01-01"}`)
	assert.Equal(t, 400, w.Code)
}

func TestSessionValidation(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, _ := doJSON(t, r, "POST", "/profiles/"+id+"/sessions",
		`{"start_time":"2024-06-14T09:00:00Z","end_time":"2024-06-14T10:00:00Z","quality":4,"source":"manual"}`)
	assert.Equal(t, 200, w.Code)

	// Inverted range fails validation.
	w, _ = doJSON(t, r, "POST", "/profiles/"+id+"/sessions",
		`{"start_time":"2024-06-14T10:00:00Z","end_time":"2024-06-14T09:00:00Z","source":"manual"}`)
	assert.Equal(t, 400, w.Code)

	// Quality out of the 1-5 range fails.
	w, _ = doJSON(t, r, "POST", "/profiles/"+id+"/sessions",
		`{"start_time":"2024-06-14T09:00:00Z","end_time":"2024-06-14T10:00:00Z","quality":9,"source":"manual"}`)
	assert.Equal(t, 400, w.Code)
}

func TestScheduleEndpointFallsBackToBaseline(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "GET", "/profiles/"+id+"/schedule", "")
	require.Equal(t, 200, w.Code)

	data := resp["data"].(map[string]any)
	today := data["today"].([]any)
	require.NotEmpty(t, today)
	first := today[0].(map[string]any)
	assert.Contains(t, strings.ToLower(first["rationale"].(string)), "baseline")
}

func TestScheduleWhatIfParam(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "GET", "/profiles/"+id+"/schedule?what_if_min=100", "")
	require.Equal(t, 200, w.Code)
	today := resp["data"].(map[string]any)["today"].([]any)
	require.NotEmpty(t, today)
	assert.Contains(t, today[0].(map[string]any)["rationale"].(string), "What-if")

	w, _ = doJSON(t, r, "GET", "/profiles/"+id+"/schedule?what_if_min=abc", "")
	assert.Equal(t, 400, w.Code)
}

func TestCoachTipsEmptyWithLittleData(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "GET", "/profiles/"+id+"/coach/tips", "")
	require.Equal(t, 200, w.Code)
	assert.EqualValues(t, 0, resp["meta"].(map[string]any)["count"])
}

func TestLearnerRefreshColdStart(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "POST", "/profiles/"+id+"/learner/refresh", "")
	require.Equal(t, 200, w.Code)
	state := resp["data"].(map[string]any)
	assert.InDelta(t, 0.1, state["confidence"].(float64), 0.0001)
}

func TestNotificationSyncWritesHistory(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "POST", "/profiles/"+id+"/notifications/sync", "")
	require.Equal(t, 200, w.Code)
	count := resp["meta"].(map[string]any)["count"].(float64)
	assert.Greater(t, count, 0.0)

	w, resp = doJSON(t, r, "GET", "/profiles/"+id+"/notifications", "")
	require.Equal(t, 200, w.Code)
	assert.EqualValues(t, count, resp["meta"].(map[string]any)["count"])
}

func TestNotificationSyncWithoutPermission(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "POST", "/profiles/"+id+"/notifications/sync?permission=denied", "")
	require.Equal(t, 200, w.Code)

	items := resp["data"].([]any)
	require.NotEmpty(t, items)
	for _, raw := range items {
		item := raw.(map[string]any)
		assert.Equal(t, "canceled", item["status"])
	}
}

func TestCancelSingleNotification(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "POST", "/profiles/"+id+"/notifications/sync", "")
	require.Equal(t, 200, w.Code)
	items := resp["data"].([]any)
	require.NotEmpty(t, items)
	first := items[0].(map[string]any)
	require.Equal(t, "scheduled", first["status"])
	itemID := first["id"].(string)

	w, resp = doJSON(t, r, "DELETE", "/profiles/"+id+"/notifications/"+itemID, "")
	require.Equal(t, 200, w.Code)

	var canceled, stillScheduled int
	for _, raw := range resp["data"].([]any) {
		item := raw.(map[string]any)
		switch {
		case item["id"] == itemID:
			assert.Equal(t, "canceled", item["status"])
			canceled++
		case item["status"] == "scheduled":
			stillScheduled++
		}
	}
	assert.Equal(t, 1, canceled)
	assert.Greater(t, stillScheduled, 0)
}

func TestDeleteSessionIsSoft(t *testing.T) {
	r := setupRouter(t)
	id := createProfile(t, r)

	w, resp := doJSON(t, r, "POST", "/profiles/"+id+"/sessions",
		`{"start_time":"2024-06-14T09:00:00Z","end_time":"2024-06-14T10:00:00Z","source":"timer"}`)
	require.Equal(t, 200, w.Code)
	sessionID := resp["data"].(map[string]any)["id"].(string)

	w, resp = doJSON(t, r, "DELETE", "/sessions/"+sessionID, "")
	require.Equal(t, 200, w.Code)
	assert.Equal(t, true, resp["data"].(map[string]any)["deleted"])

	// Gone from the visible list.
	w, resp = doJSON(t, r, "GET", "/profiles/"+id+"/sessions", "")
	require.Equal(t, 200, w.Code)
	assert.Nil(t, resp["data"])
}
