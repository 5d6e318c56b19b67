package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/config"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/keywords"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/loader"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/logging"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/middleware"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/services"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/utils"
	"github.com/sirupsen/logrus"
)

// DashboardService is the part of services.DashboardService the handlers use.
type DashboardService interface {
	Tickers() []keywords.Entry
	DateBounds() (models.DateRange, bool)
	BuildView(ctx context.Context, ticker string, start, end *time.Time) (*models.DashboardView, error)
	Refresh(ctx context.Context) (*models.Snapshot, error)
}

type DashboardHandler struct {
	service DashboardService
	logger  *logrus.Entry
}

func NewDashboardHandler(service DashboardService, logger logrus.FieldLogger) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		logger:  logging.WithComponent(logger, "dashboard_handler"),
	}
}

// TickersResponse lists the selectable tickers in display order.
type TickersResponse struct {
	Tickers []keywords.Entry `json:"tickers"`
}

// DateRangeResponse gives the date selector bounds as calendar days.
type DateRangeResponse struct {
	Available bool   `json:"available"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
}

// RefreshResponse describes the snapshot installed by a refresh.
type RefreshResponse struct {
	SnapshotID string            `json:"snapshot_id"`
	LoadedAt   time.Time         `json:"loaded_at"`
	Report     models.LoadReport `json:"report"`
}

// GetTickers handles GET /api/v1/tickers.
func (h *DashboardHandler) GetTickers(c *gin.Context) {
	c.JSON(http.StatusOK, TickersResponse{Tickers: h.service.Tickers()})
}

// GetDateRange handles GET /api/v1/date-range.
func (h *DashboardHandler) GetDateRange(c *gin.Context) {
	bounds, ok := h.service.DateBounds()
	if !ok {
		c.JSON(http.StatusOK, DateRangeResponse{Available: false})
		return
	}
	c.JSON(http.StatusOK, DateRangeResponse{
		Available: true,
		Start:     bounds.Start.Format(config.DateLayout),
		End:       bounds.End.Format(config.DateLayout),
	})
}

// GetDashboard handles GET /api/v1/dashboard?ticker=&start=&end=.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))

	start, err := parseDateParam(c, "start")
	if err != nil {
		h.writeError(c, err)
		return
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		h.writeError(c, err)
		return
	}

	view, err := h.service.BuildView(c.Request.Context(), ticker, start, end)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RefreshSnapshot handles POST /api/v1/admin/refresh.
func (h *DashboardHandler) RefreshSnapshot(c *gin.Context) {
	snap, err := h.service.Refresh(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"request_id":  middleware.RequestID(c),
		"snapshot_id": snap.ID.String(),
	}).Info("Snapshot refreshed")

	c.JSON(http.StatusOK, RefreshResponse{
		SnapshotID: snap.ID.String(),
		LoadedAt:   snap.LoadedAt,
		Report:     snap.Report,
	})
}

func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(config.DateLayout, raw)
	if err != nil {
		return nil, utils.NewValidationErrorf(name, "invalid date %q, expected YYYY-MM-DD", raw)
	}
	return &t, nil
}

// writeError maps service errors onto HTTP status codes.
func (h *DashboardHandler) writeError(c *gin.Context, err error) {
	var validationErr *utils.ValidationError
	var sourceErr *loader.SourceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
	case errors.As(err, &sourceErr):
		h.logger.WithError(err).WithField("request_id", middleware.RequestID(c)).Error("Data source unavailable")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":  "data source unavailable",
			"source": sourceErr.Source,
			"detail": sourceErr.Error(),
		})
	case errors.Is(err, services.ErrSnapshotNotLoaded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.WithError(err).WithField("request_id", middleware.RequestID(c)).Error("Dashboard request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	_ = c.Error(err)
}
