package notificationshandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dotplatform/internal/domain/notifications"
	"dotplatform/internal/platform/sqlite"
	"dotplatform/internal/transport/http/middleware"
)

func newRouter(t *testing.T) (http.Handler, *notifications.Service) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "notifications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.Migrate(db))

	svc := notifications.New(notifications.NewSQLiteStore(db))
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Route("/api/v1", NewHandler(svc).RegisterRoutes)
	return r, svc
}

func serve(router http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestListNotifications(t *testing.T) {
	router, svc := newRouter(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "biz-1", "u-1", notifications.TypePayslipIssued, "급여명세서 발급", "2025년 1월"))
	require.NoError(t, svc.Create(ctx, "biz-1", "u-1", notifications.TypePayslipIssued, "급여명세서 발급", "2025년 2월"))

	rec := serve(router, http.MethodGet, "/api/v1/notifications?userId=u-1&limit=1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	var body struct {
		Success bool                         `json:"success"`
		Data    []notifications.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "u-1", body.Data[0].UserID)
}

func TestListRequiresUser(t *testing.T) {
	router, _ := newRouter(t)
	rec := serve(router, http.MethodGet, "/api/v1/notifications")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkRead(t *testing.T) {
	router, svc := newRouter(t)
	ctx := context.Background()
	require.NoError(t, svc.Create(ctx, "biz-1", "u-1", notifications.TypePayslipIssued, "title", "body"))
	items, err := svc.List(ctx, "u-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)

	rec := serve(router, http.MethodPost, "/api/v1/notifications/"+items[0].ID+"/read?userId=u-1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodPost, "/api/v1/notifications/"+items[0].ID+"/read?userId=u-2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
