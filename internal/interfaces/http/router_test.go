package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/floradex/billing/internal/infrastructure/config"
	"github.com/floradex/billing/internal/infrastructure/migration"
	"github.com/floradex/billing/internal/shared/authorization"
	sharedConfig "github.com/floradex/billing/internal/shared/config"
	"github.com/floradex/billing/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	log := logger.NewNopLogger()
	require.NoError(t, migration.NewAutoMigrateStrategy(log).Migrate(context.Background(), db))

	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := &config.Config{
		Redis: sharedConfig.RedisConfig{Enabled: true, Host: mr.Host(), Port: port},
		Auth: sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{
			Secret:           "test-secret",
			Issuer:           "billing-test",
			AccessExpMinutes: 5,
		}},
		Payment: sharedConfig.PaymentConfig{
			DefaultReturnURL:       "http://localhost/return",
			WebhookDedupTTLMinutes: 60,
			StatusCacheTTLSeconds:  60,
		},
		Scheduler: sharedConfig.SchedulerConfig{Enabled: false},
	}

	r, err := NewRouter(db, cfg, log)
	require.NoError(t, err)
	r.SetupRoutes()
	r.Start(context.Background())
	t.Cleanup(r.Shutdown)
	return r
}

func serve(r *Router, method, path, token string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.GetEngine().ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Dependencies["database"])
	assert.Equal(t, "ok", body.Dependencies["redis"])
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodGet, "/api/admin/pricing", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	userToken, _, err := r.jwtSvc.Generate(2, authorization.RoleUser, 0)
	require.NoError(t, err)
	w = serve(r, http.MethodGet, "/api/admin/pricing", userToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_GatewaysSeededAtStart(t *testing.T) {
	r := newTestRouter(t)

	token, _, err := r.jwtSvc.Generate(1, authorization.RoleAdmin, 0)
	require.NoError(t, err)

	w := serve(r, http.MethodGet, "/api/admin/pricing", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			Provider string `json:"provider"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 5)
}

func TestRouter_PlanLifecycle(t *testing.T) {
	r := newTestRouter(t)
	token, _, err := r.jwtSvc.Generate(1, authorization.RoleSuperAdmin, 0)
	require.NoError(t, err)

	w := serve(r, http.MethodPost, "/api/admin/pricing-plans", token,
		`{"slug":"pro","name":"Pro","interval":"monthly","prices":{"USD":1200}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = serve(r, http.MethodGet, "/api/plans", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"slug":"pro"`)

	w = serve(r, http.MethodDelete, "/api/admin/pricing-plans/1", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodGet, "/api/plans", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"slug":"pro"`)
}

func TestRouter_UnknownWebhookProvider(t *testing.T) {
	r := newTestRouter(t)

	w := serve(r, http.MethodPost, "/api/webhooks/acme", "", `{}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
