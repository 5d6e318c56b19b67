package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// tableIdentifier quotes a possibly schema-qualified table name.
func tableIdentifier(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func newsQuery(table string) string {
	return fmt.Sprintf(`SELECT COALESCE("Date"::text, ''), COALESCE(headline::text, ''), COALESCE(summary::text, ''), COALESCE(url::text, '') FROM %s`,
		tableIdentifier(table))
}

func stockQuery(table string) string {
	return fmt.Sprintf(`SELECT COALESCE("Date"::text, ''), COALESCE("Company"::text, ''), COALESCE("Close"::text, '') FROM %s`,
		tableIdentifier(table))
}

func (l *Loader) loadNews(ctx context.Context) ([]models.NewsItem, models.SourceStats, error) {
	var stats models.SourceStats
	table := l.sources.NewsTable

	rows, err := l.db.Query(ctx, newsQuery(table))
	if err != nil {
		return nil, stats, &SourceError{Source: SourceNews, Location: table, Err: err}
	}
	defer rows.Close()

	items := make([]models.NewsItem, 0)
	for rows.Next() {
		var rawDate, headline, summary, url string
		if err := rows.Scan(&rawDate, &headline, &summary, &url); err != nil {
			return nil, stats, &SourceError{Source: SourceNews, Location: table, Err: fmt.Errorf("scan: %w", err)}
		}
		stats.Read++

		date, ok := parseDate(rawDate)
		if !ok || strings.TrimSpace(summary) == "" || !l.keep(date) {
			stats.Dropped++
			continue
		}
		items = append(items, models.NewsItem{
			Date:     date,
			Headline: headline,
			Summary:  summary,
			URL:      url,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, stats, &SourceError{Source: SourceNews, Location: table, Err: err}
	}

	stats.Kept = len(items)
	return items, stats, nil
}

func (l *Loader) loadPrices(ctx context.Context) ([]models.PricePoint, models.SourceStats, error) {
	var stats models.SourceStats
	table := l.sources.StockTable

	rows, err := l.db.Query(ctx, stockQuery(table))
	if err != nil {
		return nil, stats, &SourceError{Source: SourceStock, Location: table, Err: err}
	}
	defer rows.Close()

	points := make([]models.PricePoint, 0)
	for rows.Next() {
		var rawDate, company, rawClose string
		if err := rows.Scan(&rawDate, &company, &rawClose); err != nil {
			return nil, stats, &SourceError{Source: SourceStock, Location: table, Err: fmt.Errorf("scan: %w", err)}
		}
		stats.Read++

		date, ok := parseStockDate(rawDate)
		if !ok || !l.keep(date) {
			stats.Dropped++
			continue
		}
		closePrice, err := decimal.NewFromString(strings.TrimSpace(rawClose))
		if err != nil {
			stats.Dropped++
			continue
		}
		points = append(points, models.PricePoint{
			Date:    date,
			Company: strings.TrimSpace(company),
			Close:   closePrice,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, stats, &SourceError{Source: SourceStock, Location: table, Err: err}
	}

	stats.Kept = len(points)
	return points, stats, nil
}
