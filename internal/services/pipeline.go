package services

import (
	"slices"
	"strings"
	"time"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/keywords"
	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
)

// DefaultTopN is the number of ranked rows shown per text source.
const DefaultTopN = 10

// RankNews filters news to the range, tags each item against kw and returns
// at most n items ordered relevant-first, then newest-first.
func RankNews(items []models.NewsItem, kw []string, r models.DateRange, n int) []models.RankedNews {
	ranked := make([]models.RankedNews, 0)
	for _, item := range items {
		if !r.Contains(item.Date) {
			continue
		}
		ranked = append(ranked, models.RankedNews{
			NewsItem: item,
			Relevant: keywords.IsRelevant(kw, item.Headline, item.Summary),
		})
	}
	return rankTopN(ranked, func(row models.RankedNews) (bool, time.Time) {
		return row.Relevant, row.Date
	}, n)
}

// RankPosts is RankNews for social posts, matching on the post text.
func RankPosts(posts []models.SocialPost, kw []string, r models.DateRange, n int) []models.RankedPost {
	ranked := make([]models.RankedPost, 0)
	for _, post := range posts {
		if !r.Contains(post.Date) {
			continue
		}
		ranked = append(ranked, models.RankedPost{
			SocialPost: post,
			Relevant:   keywords.IsRelevant(kw, post.Text),
		})
	}
	return rankTopN(ranked, func(row models.RankedPost) (bool, time.Time) {
		return row.Relevant, row.Date
	}, n)
}

// rankTopN stable-sorts rows relevant-first then by date descending and keeps the first n.
func rankTopN[T any](rows []T, key func(T) (bool, time.Time), n int) []T {
	slices.SortStableFunc(rows, func(a, b T) int {
		relA, dateA := key(a)
		relB, dateB := key(b)
		if relA != relB {
			if relA {
				return -1
			}
			return 1
		}
		return dateB.Compare(dateA)
	})
	if n >= 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// FilterPrices returns the ticker's prices within the range in date order.
// Company names match the ticker case-insensitively but exactly.
func FilterPrices(points []models.PricePoint, ticker string, r models.DateRange) []models.PricePoint {
	out := make([]models.PricePoint, 0)
	for _, p := range points {
		if strings.EqualFold(p.Company, ticker) && r.Contains(p.Date) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, func(a, b models.PricePoint) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// FilterSentiment returns the records whose Company equals ticker exactly.
// The records are not dated, so no range applies.
func FilterSentiment(records []models.SentimentReturnRecord, ticker string) []models.SentimentReturnRecord {
	out := make([]models.SentimentReturnRecord, 0)
	for _, rec := range records {
		if rec.Company == ticker {
			out = append(out, rec)
		}
	}
	return out
}
