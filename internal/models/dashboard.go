package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Signal labels.
const (
	SignalUp   = "UP"
	SignalDown = "DOWN"
)

// Panel statuses.
const (
	PanelOK     = "ok"
	PanelNoData = "no_data"
)

// PolarityCounts holds positive/negative counts per text source.
type PolarityCounts struct {
	NewsPositive  int `json:"news_positive"`
	NewsNegative  int `json:"news_negative"`
	TweetPositive int `json:"tweet_positive"`
	TweetNegative int `json:"tweet_negative"`
}

// PolarityBar is one row of the grouped polarity bar chart.
type PolarityBar struct {
	Source   string `json:"source"`
	Polarity string `json:"polarity"`
	Count    int    `json:"count"`
}

// OverallSignal is the combined mean sentiment and its directional label.
type OverallSignal struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// ScatterPoint is one (sentiment, next-day return) observation.
type ScatterPoint struct {
	Sentiment  float64 `json:"sentiment"`
	ReturnNext float64 `json:"return_next"`
}

// SeriesPoint is a dated value on the price chart.
type SeriesPoint struct {
	Date  time.Time       `json:"date"`
	Value decimal.Decimal `json:"value"`
}

// RankedNews is a news row with its relevance tag.
type RankedNews struct {
	NewsItem
	Relevant bool `json:"relevant"`
}

// RankedPost is a post row with its relevance tag.
type RankedPost struct {
	SocialPost
	Relevant bool `json:"relevant"`
}

// PanelState reports whether a panel has data to render.
type PanelState struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type PricePanel struct {
	PanelState
	Points        []PricePoint  `json:"points"`
	MovingAverage []SeriesPoint `json:"moving_average,omitempty"`
	SMAPeriod     int           `json:"sma_period,omitempty"`
}

type SentimentPanel struct {
	PanelState
	Records      []SentimentReturnRecord `json:"records"`
	Polarity     *PolarityCounts         `json:"polarity,omitempty"`
	PolarityBars []PolarityBar           `json:"polarity_bars,omitempty"`
	NewsScatter  []ScatterPoint          `json:"news_scatter,omitempty"`
	TweetScatter []ScatterPoint          `json:"tweet_scatter,omitempty"`
	Signal       *OverallSignal          `json:"signal,omitempty"`
}

type NewsPanel struct {
	PanelState
	Items []RankedNews `json:"items"`
}

type PostsPanel struct {
	PanelState
	Items []RankedPost `json:"items"`
}

// DashboardView is everything the renderer needs for one selection.
type DashboardView struct {
	SnapshotID uuid.UUID       `json:"snapshot_id"`
	Ticker     string          `json:"ticker"`
	Selected   bool            `json:"selected"`
	Message    string          `json:"message,omitempty"`
	Range      *DateRange      `json:"range,omitempty"`
	Keywords   []string        `json:"keywords,omitempty"`
	Price      *PricePanel     `json:"price,omitempty"`
	Sentiment  *SentimentPanel `json:"sentiment,omitempty"`
	TopNews    *NewsPanel      `json:"top_news,omitempty"`
	TopPosts   *PostsPanel     `json:"top_posts,omitempty"`
}
