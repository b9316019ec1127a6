package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dotplatform/internal/domain/payroll"
	"dotplatform/internal/platform/config"
)

func testConfig(t *testing.T) config.Config {
	dir := t.TempDir()
	return config.Config{
		Addr:               ":0",
		Environment:        "test",
		StoreDriver:        config.DriverSQLite,
		SQLitePath:         filepath.Join(dir, "app.db"),
		RunMigrations:      true,
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 1000,
		CORSAllowedOrigins: []string{"https://dot.example.com"},
		PayslipDir:         filepath.Join(dir, "payslips"),
		Timezone:           "Asia/Seoul",
		PremiumPolicy:      "stack",
		PayrollWorkers:     2,
		JobQueueSize:       8,
		SpouseAllowance:    40000,
		ChildAllowance:     20000,
		LongevityPerYear:   10000,
	}
}

func newApp(t *testing.T) *App {
	t.Helper()
	app, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return app
}

func TestHealthAndReadiness(t *testing.T) {
	app := newApp(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = "mysql"
	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestCORSPreflight(t *testing.T) {
	app := newApp(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/payroll/calculate", nil)
	req.Header.Set("Origin", "https://dot.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)

	assert.Equal(t, "https://dot.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestIssueStatementCreatesNotification(t *testing.T) {
	app := newApp(t)
	in := time.Date(2025, time.January, 6, 9, 0, 0, 0, payroll.DefaultLocation())
	out := in.Add(8 * time.Hour)
	input := payroll.PayrollInput{
		BusinessID: "biz-1",
		UserID:     "u-1",
		Year:       2025,
		Month:      1,
		WageType:   payroll.WageTypeMonthly,
		BaseWage:   2500000,
		WorkRecords: []payroll.WorkRecord{
			{CheckInTime: in, CheckOutTime: &out},
		},
	}
	body, err := json.Marshal(input)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payroll/statements", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?userId=u-1", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
	assert.Contains(t, rec.Body.String(), "급여명세서 발급")

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payroll/statements", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?userId=u-1", nil))
	assert.Equal(t, "1", rec.Header().Get("X-Total-Count"))
}

func TestPayrollRoutesAreRateLimited(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitPerMinute = 1
	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	send := func(method, path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(method, path, bytes.NewReader([]byte("{}"))))
		return rec
	}
	first := send(http.MethodPost, "/api/v1/payroll/calculate")
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))
	second := send(http.MethodPost, "/api/v1/payroll/calculate")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Contains(t, second.Body.String(), "rate_limited")

	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/healthz").Code)
	assert.Equal(t, http.StatusOK, send(http.MethodGet, "/api/v1/notifications?userId=u-1").Code)
}

func TestSyncRunReplaysIdempotencyKey(t *testing.T) {
	app := newApp(t)
	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/businesses/biz-1/runs?sync=true",
			bytes.NewReader([]byte(`{"year":2025,"month":1}`)))
		req.Header.Set("Idempotency-Key", "close-2025-01")
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	assert.Contains(t, first.Body.String(), `"period":"2025-01"`)

	second := send()
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	var a, b struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &a))
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &b))
	assert.JSONEq(t, string(a.Data), string(b.Data))
}

func TestBodyLimitApplies(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxBodyBytes = 1024
	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	payload := bytes.Repeat([]byte(" "), 4096)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/payroll/calculate", bytes.NewReader(append(payload, '{', '}'))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
