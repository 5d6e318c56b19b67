package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/api/handlers"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/api/handlers/testmocks"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/keywords"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/middleware"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestRouter(svc *testmocks.MockDashboardService, db *testmocks.MockHealthChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()

	router := gin.New()
	SetupRoutes(router,
		handlers.NewDashboardHandler(svc, logger),
		handlers.NewHealthHandler(db, nil, svc, "test"),
		middleware.NewAdminMiddleware("admin-key"),
	)
	return router
}

func TestSetupRoutes_RegistersEndpoints(t *testing.T) {
	router := setupTestRouter(new(testmocks.MockDashboardService), new(testmocks.MockHealthChecker))

	registered := make(map[string]bool)
	for _, r := range router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"GET /health",
		"GET /api/v1/tickers",
		"GET /api/v1/date-range",
		"GET /api/v1/dashboard",
		"POST /api/v1/admin/refresh",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestSetupRoutes_AdminRefreshRequiresKey(t *testing.T) {
	svc := new(testmocks.MockDashboardService)
	router := setupTestRouter(svc, new(testmocks.MockHealthChecker))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "Refresh", mock.Anything)

	svc.On("Refresh", mock.Anything).Return(&models.Snapshot{ID: uuid.New()}, nil).Once()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/refresh", nil)
	req.Header.Set("X-API-Key", "admin-key")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestSetupRoutes_Tickers(t *testing.T) {
	svc := new(testmocks.MockDashboardService)
	svc.On("Tickers").Return(keywords.Mag7().Entries())
	router := setupTestRouter(svc, new(testmocks.MockHealthChecker))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/tickers", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ticker":"AAPL"`)
}

func TestSetupRoutes_Health(t *testing.T) {
	svc := new(testmocks.MockDashboardService)
	svc.On("Snapshot").Return(&models.Snapshot{ID: uuid.New()})
	db := new(testmocks.MockHealthChecker)
	db.On("HealthCheck", mock.Anything).Return(nil)
	router := setupTestRouter(svc, db)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
