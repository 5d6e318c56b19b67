package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewsItem is a classified news article from the relational store.
type NewsItem struct {
	Date     time.Time `json:"date"`
	Headline string    `json:"headline"`
	Summary  string    `json:"summary"`
	URL      string    `json:"url"`
}

// SocialPost is a post read from the posts-with-sentiment file.
type SocialPost struct {
	Date time.Time `json:"date"`
	Text string    `json:"text"`
}

// PricePoint is a daily closing price for one company.
type PricePoint struct {
	Date    time.Time       `json:"date"`
	Company string          `json:"company"`
	Close   decimal.Decimal `json:"close"`
}

// SentimentReturnRecord is one precomputed sentiment/return aggregate row.
type SentimentReturnRecord struct {
	Company                string  `json:"company"`
	AvgNewsSentiment       float64 `json:"avg_news_sentiment"`
	AvgTweetSentiment      float64 `json:"avg_tweet_sentiment"`
	ReturnNext             float64 `json:"return_next"`
	CountNewsControversial int     `json:"count_news_controversial"`
}

// SourceStats counts what happened to the rows of one source during a load.
type SourceStats struct {
	Read    int `json:"read"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

// LoadReport summarizes a load per source.
type LoadReport struct {
	News      SourceStats `json:"news"`
	Posts     SourceStats `json:"posts"`
	Prices    SourceStats `json:"prices"`
	Sentiment SourceStats `json:"sentiment"`
}

// Snapshot is the full set of tables produced by one load. It is never
// mutated after construction; a refresh produces a new Snapshot.
type Snapshot struct {
	ID        uuid.UUID               `json:"id"`
	LoadedAt  time.Time               `json:"loaded_at"`
	News      []NewsItem              `json:"news"`
	Posts     []SocialPost            `json:"posts"`
	Prices    []PricePoint            `json:"prices"`
	Sentiment []SentimentReturnRecord `json:"sentiment"`
	Report    LoadReport              `json:"report"`
}

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Day truncates t to its calendar day, keeping the wall-clock date of t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls on a day within the range.
func (r DateRange) Contains(t time.Time) bool {
	day := Day(t)
	return !day.Before(Day(r.Start)) && !day.After(Day(r.End))
}
