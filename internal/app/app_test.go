package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dentalcare/internal/config"
	"github.com/jwalitptl/dentalcare/internal/kv"
	"github.com/jwalitptl/dentalcare/internal/model"
	"github.com/jwalitptl/dentalcare/pkg/logger"
)

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	app    *App
	engine *gin.Engine
}

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{MaxUploadBytes: 1 << 20},
		Storage: kv.Config{Driver: kv.DriverMemory},
		Broker:  config.BrokerConfig{Driver: "memory"},
		Auth:    config.AuthConfig{JWTSecret: "test-secret", TokenExpiry: time.Hour, BcryptCost: 4},
		Clinic:  config.ClinicConfig{Timezone: "UTC", Seed: true},
		Metrics: config.MetricsConfig{Enabled: true, Path: "/metrics", Namespace: "test"},
	}
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(ctx, testConfig(), logger.Nop())
	require.NoError(t, err)
	require.NoError(t, a.Start(ctx))
	t.Cleanup(func() {
		cancel()
		a.Close()
	})

	return &testAPI{t: t, app: a, engine: a.Router().Engine()}
}

func (api *testAPI) do(method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	return w
}

func (api *testAPI) json(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(api.t, err)
		r = bytes.NewReader(b)
	}
	w := api.do(method, path, token, r, "application/json")
	var env envelope
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(api.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func (api *testAPI) login(email, password string) string {
	w, env := api.json(http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Email: email, Password: password})
	require.Equal(api.t, http.StatusOK, w.Code, w.Body.String())
	var tokens model.TokenResponse
	require.NoError(api.t, json.Unmarshal(env.Data, &tokens))
	return tokens.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w, _ := api.json(http.MethodGet, "/api/v1/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.json(http.MethodGet, "/api/v1/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginAndRoles(t *testing.T) {
	api := newTestAPI(t)

	w, env := api.json(http.MethodPost, "/api/v1/auth/login", "", model.LoginRequest{Email: "admin@dentalcare.test", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", env.Status)

	w, _ = api.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	admin := api.login("admin@dentalcare.test", "admin123")
	patient := api.login("john@dentalcare.test", "patient123")

	w, _ = api.json(http.MethodGet, "/api/v1/patients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = api.json(http.MethodGet, "/api/v1/patients", patient, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = api.json(http.MethodGet, "/api/v1/me/profile", admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = api.json(http.MethodGet, "/api/v1/auth/me", patient, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[model.User](t, env)
	assert.Equal(t, "p1", me.PatientID)
	assert.Empty(t, me.Password)

	w, env = api.json(http.MethodGet, "/api/v1/users", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[[]model.User](t, env)
	assert.Len(t, users, 3)
	for _, u := range users {
		assert.Empty(t, u.Password)
	}

	w, _ = api.json(http.MethodPost, "/api/v1/auth/logout", patient, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	session, err := api.app.Repos.Session.Get(context.Background())
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestPatientAndIncidentLifecycle(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@dentalcare.test", "admin123")

	w, env := api.json(http.MethodGet, "/api/v1/patients?search=jane", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	found := decode[[]model.Patient](t, env)
	require.Len(t, found, 1)
	assert.Equal(t, "Jane Smith", found[0].Name)

	w, env = api.json(http.MethodPost, "/api/v1/patients", admin, model.Patient{Contact: "555"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, string(env.Data), `"field":"name"`)

	w, env = api.json(http.MethodPost, "/api/v1/patients", admin, model.Patient{
		Name: "Ada Lovelace", DOB: "1815-12-10", Contact: "5550100",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ada := decode[model.Patient](t, env)
	require.NotEmpty(t, ada.ID)

	w, _ = api.json(http.MethodPost, "/api/v1/incidents", admin, model.Incident{
		PatientID: "missing", Title: "Checkup", Description: "Yearly",
		AppointmentDate: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC), Status: model.StatusScheduled,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.json(http.MethodPost, "/api/v1/incidents", admin, model.Incident{
		PatientID: ada.ID, Title: "Checkup", Description: "Yearly",
		AppointmentDate: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Cost:            model.Float(90), Status: model.StatusScheduled,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inc := decode[model.Incident](t, env)

	// Upload, download and remove an attachment.
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w = api.do(http.MethodPost, "/api/v1/incidents/"+inc.ID+"/files", admin, &body, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var upEnv envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upEnv))
	att := decode[model.Attachment](t, upEnv)
	assert.Equal(t, int64(11), att.Size)
	assert.True(t, strings.HasPrefix(att.Type, "text/plain"))

	w = api.do(http.MethodGet, "/api/v1/incidents/"+inc.ID+"/files/"+att.ID, admin, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello world", w.Body.String())

	// A chunked upload past the limit is rejected as too large.
	var big bytes.Buffer
	bw := multipart.NewWriter(&big)
	fw, err = bw.CreateFormFile("file", "scan.bin")
	require.NoError(t, err)
	_, err = fw.Write(bytes.Repeat([]byte("x"), 1<<20+1))
	require.NoError(t, err)
	require.NoError(t, bw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/incidents/"+inc.ID+"/files", &big)
	req.ContentLength = -1
	req.Header.Set("Authorization", "Bearer "+admin)
	req.Header.Set("Content-Type", bw.FormDataContentType())
	w = httptest.NewRecorder()
	api.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code, w.Body.String())

	// A body without files keeps the attachment.
	inc.Title = "Checkup and cleaning"
	inc.Files = nil
	w, env = api.json(http.MethodPut, "/api/v1/incidents/"+inc.ID, admin, inc)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[model.Incident](t, env).Files, 1)

	w = api.do(http.MethodDelete, "/api/v1/incidents/"+inc.ID+"/files/"+att.ID, admin, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = api.do(http.MethodDelete, "/api/v1/incidents/"+inc.ID+"/files/"+att.ID, admin, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env = api.json(http.MethodGet, "/api/v1/patients/"+ada.ID+"/incidents", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]model.Incident](t, env), 1)

	// Deleting the patient removes its incidents.
	w = api.do(http.MethodDelete, "/api/v1/patients/"+ada.ID, admin, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w, env = api.json(http.MethodGet, "/api/v1/incidents?patientId="+ada.ID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]model.IncidentEntry](t, env))
	w, _ = api.json(http.MethodGet, "/api/v1/patients/"+ada.ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsFollowWrites(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login("admin@dentalcare.test", "admin123")

	revenue := func() float64 {
		w, env := api.json(http.MethodGet, "/api/v1/stats/revenue", admin, nil)
		require.Equal(t, http.StatusOK, w.Code)
		return decode[model.RevenueReport](t, env).Total
	}
	assert.Equal(t, float64(1170), revenue())

	w, _ := api.json(http.MethodPost, "/api/v1/incidents", admin, model.Incident{
		PatientID: "p3", Title: "Whitening", Description: "Cosmetic",
		AppointmentDate: time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC),
		Cost:            model.Float(30), Status: model.StatusCompleted,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	assert.Eventually(t, func() bool { return revenue() == 1200 }, time.Second, 10*time.Millisecond)

	w, _ = api.json(http.MethodGet, "/api/v1/stats/calendar?month=2025-13", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, env := api.json(http.MethodGet, "/api/v1/stats/day?date=2025-01-15", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	day := decode[[]model.IncidentEntry](t, env)
	require.Len(t, day, 1)
	assert.Equal(t, "John Doe", day[0].PatientName)

	w, _ = api.json(http.MethodPost, "/api/v1/stats/snapshots", admin, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	w, _ = api.json(http.MethodGet, "/api/v1/stats/compare", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = api.json(http.MethodGet, "/api/v1/stats/compare?month=2020-01", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/metrics", "", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
	assert.Contains(t, w.Body.String(), "test_worker_snapshots_written_total 1")
}

func TestPatientSelfService(t *testing.T) {
	api := newTestAPI(t)
	john := api.login("john@dentalcare.test", "patient123")

	w, env := api.json(http.MethodGet, "/api/v1/me/profile", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "John Doe", decode[model.Patient](t, env).Name)

	w, env = api.json(http.MethodGet, "/api/v1/me/summary", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[model.PatientSummary](t, env)
	assert.Equal(t, 1, sum.Completed)
	assert.Equal(t, float64(120), sum.TotalCost)

	w, env = api.json(http.MethodGet, "/api/v1/me/appointments?view=completed", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	done := decode[[]model.Incident](t, env)
	require.Len(t, done, 1)
	assert.Equal(t, "i1", done[0].ID)

	w, _ = api.json(http.MethodGet, "/api/v1/me/appointments?view=bogus", john, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = api.json(http.MethodGet, "/api/v1/me/records?year=2025", john, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[model.PatientRecords](t, env).Incidents, 2)
}
