// Package loader reads the news, stock, post and sentiment tables and
// normalizes them into a models.Snapshot.
package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/config"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/logging"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// Source names used in errors, logs and spans.
const (
	SourceNews      = "news"
	SourceStock     = "stock"
	SourcePosts     = "posts"
	SourceSentiment = "sentiment"
)

// Querier is the subset of pgxpool.Pool the loader needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// SourceError reports a source that could not be read at all. Row-level
// problems never produce a SourceError.
type SourceError struct {
	Source   string
	Location string
	Err      error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s (%s) unavailable: %v", e.Source, e.Location, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// Loader produces snapshots from the relational store and the flat files.
type Loader struct {
	db      Querier
	sources config.SourcesConfig
	cutoff  time.Time
	logger  *logrus.Entry
}

// New creates a loader. Rows dated before cutoff are excluded from every dated table.
func New(db Querier, sources config.SourcesConfig, cutoff time.Time, logger logrus.FieldLogger) *Loader {
	return &Loader{
		db:      db,
		sources: sources,
		cutoff:  models.Day(cutoff),
		logger:  logging.WithComponent(logger, "loader"),
	}
}

// Cutoff returns the earliest day the loader keeps.
func (l *Loader) Cutoff() time.Time {
	return l.cutoff
}

// Load reads all four sources. It fails on the first unavailable source.
func (l *Loader) Load(ctx context.Context) (snapshot *models.Snapshot, err error) {
	ctx, span := telemetry.StartSpan(ctx, "loader.Load")
	defer func() { telemetry.FinishSpan(span, err) }()

	if l.db == nil {
		return nil, &SourceError{Source: SourceNews, Location: l.sources.NewsTable, Err: fmt.Errorf("database is not configured")}
	}

	snap := &models.Snapshot{
		ID:       uuid.New(),
		LoadedAt: time.Now().UTC(),
	}

	if err := l.loadSource(ctx, SourceNews, func(ctx context.Context) (models.SourceStats, error) {
		var stats models.SourceStats
		var err error
		snap.News, stats, err = l.loadNews(ctx)
		return stats, err
	}, &snap.Report.News); err != nil {
		return nil, err
	}

	if err := l.loadSource(ctx, SourcePosts, func(ctx context.Context) (models.SourceStats, error) {
		var stats models.SourceStats
		var err error
		snap.Posts, stats, err = l.loadPosts()
		return stats, err
	}, &snap.Report.Posts); err != nil {
		return nil, err
	}

	if err := l.loadSource(ctx, SourceStock, func(ctx context.Context) (models.SourceStats, error) {
		var stats models.SourceStats
		var err error
		snap.Prices, stats, err = l.loadPrices(ctx)
		return stats, err
	}, &snap.Report.Prices); err != nil {
		return nil, err
	}

	if err := l.loadSource(ctx, SourceSentiment, func(ctx context.Context) (models.SourceStats, error) {
		var stats models.SourceStats
		var err error
		snap.Sentiment, stats, err = l.loadSentiment()
		return stats, err
	}, &snap.Report.Sentiment); err != nil {
		return nil, err
	}

	l.logger.WithFields(logrus.Fields{
		"snapshot_id": snap.ID.String(),
		"news":        len(snap.News),
		"posts":       len(snap.Posts),
		"prices":      len(snap.Prices),
		"sentiment":   len(snap.Sentiment),
	}).Info("Snapshot loaded")

	return snap, nil
}

func (l *Loader) loadSource(ctx context.Context, source string, load func(context.Context) (models.SourceStats, error), out *models.SourceStats) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "loader."+source, attribute.String("source", source))
	defer func() { telemetry.FinishSpan(span, err) }()

	stats, err := load(ctx)
	if err != nil {
		l.logger.WithField("source", source).WithError(err).Error("Source load failed")
		return err
	}

	span.SetAttributes(
		attribute.Int("rows.read", stats.Read),
		attribute.Int("rows.kept", stats.Kept),
		attribute.Int("rows.dropped", stats.Dropped),
	)
	entry := l.logger.WithFields(logrus.Fields{
		"source":  source,
		"read":    stats.Read,
		"kept":    stats.Kept,
		"dropped": stats.Dropped,
	})
	if stats.Dropped > 0 {
		entry.Debug("Dropped malformed or out-of-range rows")
	}
	*out = stats
	return nil
}

// keep reports whether a parsed date is on or after the cutoff day.
func (l *Loader) keep(t time.Time) bool {
	return !models.Day(t).Before(l.cutoff)
}
