package testmocks

import (
	"context"
	"time"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/keywords"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockDashboardService implements handlers.DashboardService and
// handlers.SnapshotSource for testing
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Tickers() []keywords.Entry {
	args := m.Called()
	return args.Get(0).([]keywords.Entry)
}

func (m *MockDashboardService) DateBounds() (models.DateRange, bool) {
	args := m.Called()
	return args.Get(0).(models.DateRange), args.Bool(1)
}

func (m *MockDashboardService) BuildView(ctx context.Context, ticker string, start, end *time.Time) (*models.DashboardView, error) {
	args := m.Called(ctx, ticker, start, end)
	if view := args.Get(0); view != nil {
		return view.(*models.DashboardView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardService) Refresh(ctx context.Context) (*models.Snapshot, error) {
	args := m.Called(ctx)
	if snap := args.Get(0); snap != nil {
		return snap.(*models.Snapshot), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDashboardService) Snapshot() *models.Snapshot {
	args := m.Called()
	if snap := args.Get(0); snap != nil {
		return snap.(*models.Snapshot)
	}
	return nil
}

// MockHealthChecker mocks database and Redis health checks
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
