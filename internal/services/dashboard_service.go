package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/config"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/keywords"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/logging"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/telemetry"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/utils"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// SelectTickerPrompt is the message of the view returned when no ticker is chosen.
const SelectTickerPrompt = "Please select a ticker."

// Panel messages for empty results.
const (
	noPriceDataMessage     = "No stock data for this ticker & date range."
	noSentimentDataMessage = "No sentiment/return data for this ticker."
	noNewsMessage          = "No news in this date range."
	noPostsMessage         = "No tweets in this date range."
)

// ErrSnapshotNotLoaded is returned by views requested before the first successful load.
var ErrSnapshotNotLoaded = errors.New("dashboard snapshot not loaded")

// SnapshotLoader produces a fresh snapshot from the sources.
type SnapshotLoader interface {
	Load(ctx context.Context) (*models.Snapshot, error)
}

// SnapshotCache shares a loaded snapshot across processes.
type SnapshotCache interface {
	Get(ctx context.Context) (*models.Snapshot, bool)
	Set(ctx context.Context, snapshot *models.Snapshot) error
	Invalidate(ctx context.Context) error
}

// DashboardService holds the current snapshot and derives dashboard views from it.
type DashboardService struct {
	loader    SnapshotLoader
	cache     SnapshotCache
	keywords  *keywords.TickerKeywordMap
	topN      int
	smaPeriod int
	logger    *logrus.Entry

	current   atomic.Pointer[models.Snapshot]
	refreshMu sync.Mutex
}

// NewDashboardService creates the service. cache may be nil.
func NewDashboardService(loader SnapshotLoader, cache SnapshotCache, kw *keywords.TickerKeywordMap, cfg config.DashboardConfig, logger logrus.FieldLogger) *DashboardService {
	topN := cfg.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &DashboardService{
		loader:    loader,
		cache:     cache,
		keywords:  kw,
		topN:      topN,
		smaPeriod: cfg.SMAPeriod,
		logger:    logging.WithComponent(logger, "dashboard_service"),
	}
}

// Load installs the cached snapshot if one exists, otherwise loads from the
// sources and caches the result.
func (s *DashboardService) Load(ctx context.Context) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.cache != nil {
		if snap, ok := s.cache.Get(ctx); ok {
			s.current.Store(snap)
			s.logger.WithField("snapshot_id", snap.ID.String()).Info("Using cached snapshot")
			return nil
		}
	}

	_, err := s.loadAndStore(ctx)
	return err
}

// Refresh discards any cached snapshot and reloads from the sources. On
// failure the previous snapshot stays current.
func (s *DashboardService) Refresh(ctx context.Context) (*models.Snapshot, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate snapshot cache")
		}
	}
	return s.loadAndStore(ctx)
}

func (s *DashboardService) loadAndStore(ctx context.Context) (*models.Snapshot, error) {
	start := time.Now()
	snap, err := s.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	s.current.Store(snap)

	s.logger.WithFields(logrus.Fields{
		"snapshot_id": snap.ID.String(),
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Snapshot installed")

	if s.cache != nil {
		if err := s.cache.Set(ctx, snap); err != nil {
			s.logger.WithError(err).Warn("Failed to cache snapshot")
		}
	}
	return snap, nil
}

// Snapshot returns the current snapshot, or nil before the first load.
func (s *DashboardService) Snapshot() *models.Snapshot {
	return s.current.Load()
}

// Tickers returns the selectable tickers with their keywords.
func (s *DashboardService) Tickers() []keywords.Entry {
	return s.keywords.Entries()
}

// DateBounds returns the earliest and latest day across news, posts and
// prices. ok is false when no snapshot is loaded or all three are empty.
func (s *DashboardService) DateBounds() (models.DateRange, bool) {
	snap := s.current.Load()
	if snap == nil {
		return models.DateRange{}, false
	}
	return dateBounds(snap)
}

func dateBounds(snap *models.Snapshot) (bounds models.DateRange, ok bool) {
	extend := func(t time.Time) {
		day := models.Day(t)
		if !ok {
			bounds = models.DateRange{Start: day, End: day}
			ok = true
			return
		}
		if day.Before(bounds.Start) {
			bounds.Start = day
		}
		if day.After(bounds.End) {
			bounds.End = day
		}
	}
	for _, n := range snap.News {
		extend(n.Date)
	}
	for _, p := range snap.Posts {
		extend(p.Date)
	}
	for _, p := range snap.Prices {
		extend(p.Date)
	}
	return bounds, ok
}

// BuildView assembles the dashboard for ticker over [start, end]. A nil start
// or end defaults to the corresponding date bound. An empty ticker yields an
// unselected view carrying SelectTickerPrompt.
func (s *DashboardService) BuildView(ctx context.Context, ticker string, start, end *time.Time) (*models.DashboardView, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrSnapshotNotLoaded
	}

	if ticker == "" {
		return &models.DashboardView{
			SnapshotID: snap.ID,
			Selected:   false,
			Message:    SelectTickerPrompt,
		}, nil
	}

	kw, known := s.keywords.Keywords(ticker)
	if !known {
		return nil, utils.NewValidationErrorf("ticker", "unknown ticker %q", ticker)
	}

	_, span := telemetry.StartSpan(ctx, "dashboard.BuildView", attribute.String("ticker", ticker))
	defer span.End()

	rng, _ := dateBounds(snap)
	if start != nil {
		rng.Start = models.Day(*start)
	}
	if end != nil {
		rng.End = models.Day(*end)
	}

	records := FilterSentiment(snap.Sentiment, ticker)
	view := &models.DashboardView{
		SnapshotID: snap.ID,
		Ticker:     ticker,
		Selected:   true,
		Range:      &rng,
		Keywords:   kw,
		Price:      s.pricePanel(FilterPrices(snap.Prices, ticker, rng)),
		Sentiment:  sentimentPanel(records),
		TopNews:    newsPanel(RankNews(snap.News, kw, rng, s.topN)),
		TopPosts:   postsPanel(RankPosts(snap.Posts, kw, rng, s.topN)),
	}

	s.logger.WithFields(logrus.Fields{
		"ticker":    ticker,
		"start":     rng.Start.Format(config.DateLayout),
		"end":       rng.End.Format(config.DateLayout),
		"prices":    len(view.Price.Points),
		"sentiment": len(records),
		"news":      len(view.TopNews.Items),
		"posts":     len(view.TopPosts.Items),
	}).Debug("Built dashboard view")

	return view, nil
}

func (s *DashboardService) pricePanel(points []models.PricePoint) *models.PricePanel {
	if len(points) == 0 {
		return &models.PricePanel{
			PanelState: noData(noPriceDataMessage),
			Points:     points,
		}
	}
	panel := &models.PricePanel{
		PanelState: models.PanelState{Status: models.PanelOK},
		Points:     points,
	}
	if ma := MovingAverage(points, s.smaPeriod); ma != nil {
		panel.MovingAverage = ma
		panel.SMAPeriod = s.smaPeriod
	}
	return panel
}

func sentimentPanel(records []models.SentimentReturnRecord) *models.SentimentPanel {
	signal, ok := OverallSignal(records)
	if !ok {
		return &models.SentimentPanel{
			PanelState: noData(noSentimentDataMessage),
			Records:    records,
		}
	}
	counts := CountPolarity(records)
	newsScatter, tweetScatter := Scatter(records)
	return &models.SentimentPanel{
		PanelState:   models.PanelState{Status: models.PanelOK},
		Records:      records,
		Polarity:     &counts,
		PolarityBars: PolarityBars(counts),
		NewsScatter:  newsScatter,
		TweetScatter: tweetScatter,
		Signal:       &signal,
	}
}

func newsPanel(items []models.RankedNews) *models.NewsPanel {
	if len(items) == 0 {
		return &models.NewsPanel{PanelState: noData(noNewsMessage), Items: items}
	}
	return &models.NewsPanel{PanelState: models.PanelState{Status: models.PanelOK}, Items: items}
}

func postsPanel(items []models.RankedPost) *models.PostsPanel {
	if len(items) == 0 {
		return &models.PostsPanel{PanelState: noData(noPostsMessage), Items: items}
	}
	return &models.PostsPanel{PanelState: models.PanelState{Status: models.PanelOK}, Items: items}
}

func noData(message string) models.PanelState {
	return models.PanelState{Status: models.PanelNoData, Message: message}
}
