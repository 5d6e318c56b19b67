package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/config"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	newsColumns  = []string{"Date", "headline", "summary", "url"}
	stockColumns = []string{"Date", "Company", "Close"}
	cutoff       = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testSources(t *testing.T, tweets, sentiment string) config.SourcesConfig {
	dir := t.TempDir()
	return config.SourcesConfig{
		NewsTable:    "classified_news",
		StockTable:   "stock_data",
		TweetsCSV:    writeFile(t, dir, "tweets.csv", tweets),
		SentimentCSV: writeFile(t, dir, "sentiment.csv", sentiment),
	}
}

const (
	tweetsCSV = `,date.1,fullText,sentiment
0,2021-03-04 12:00:00,Apple is up,0.4
1,2019-12-31 23:59:59,Too old,0.1
2,not a date,Broken,0.0
3,2022-06-01T08:00:00Z,"Quoted, text",-0.2
`
	sentimentCSV = `Company,avg_news_sentiment,avg_tweet_sentiment,return_next,count_controversial.1
AAPL,0.2,0.1,0.01,3
AAPL,-0.1,0.0,-0.02,1.0
MSFT,abc,0.3,0.02,0
TSLA,0.5,,0.03,2
`
)

func TestLoader_Load(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "classified_news"`).WillReturnRows(
		pgxmock.NewRows(newsColumns).
			AddRow("2021-03-04 10:00:00", "Apple beats", "iPhone sales rise", "http://a").
			AddRow("2021-03-05 10:00:00+00", "Empty", "", "http://b").
			AddRow("2019-06-01", "Old", "Old summary", "http://c").
			AddRow("", "No date", "Summary", "http://d"),
	)
	mock.ExpectQuery(`FROM "stock_data"`).WillReturnRows(
		pgxmock.NewRows(stockColumns).
			AddRow("2021-03-04 00:00:00", "AAPL", "120.50").
			AddRow("2021-03-05", "aapl", "121").
			AddRow("2019-12-31", "AAPL", "100").
			AddRow("2021-03-06", "AAPL", "").
			AddRow("2021-03-07", "AAPL", "NaN"),
	)

	l := New(mock, testSources(t, tweetsCSV, sentimentCSV), cutoff, quietLogger())
	snap, err := l.Load(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.NotEmpty(t, snap.ID.String())
	assert.False(t, snap.LoadedAt.IsZero())

	require.Len(t, snap.News, 1)
	assert.Equal(t, "Apple beats", snap.News[0].Headline)
	assert.Equal(t, time.Date(2021, 3, 4, 10, 0, 0, 0, time.UTC), snap.News[0].Date)
	assert.Equal(t, 4, snap.Report.News.Read)
	assert.Equal(t, 1, snap.Report.News.Kept)
	assert.Equal(t, 3, snap.Report.News.Dropped)

	require.Len(t, snap.Posts, 2)
	assert.Equal(t, "Apple is up", snap.Posts[0].Text)
	assert.Equal(t, "Quoted, text", snap.Posts[1].Text)
	assert.Equal(t, 2, snap.Report.Posts.Dropped)

	require.Len(t, snap.Prices, 2)
	assert.True(t, decimal.RequireFromString("120.50").Equal(snap.Prices[0].Close))
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), snap.Prices[0].Date)
	assert.Equal(t, "aapl", snap.Prices[1].Company)
	assert.Equal(t, 3, snap.Report.Prices.Dropped)

	require.Len(t, snap.Sentiment, 2)
	assert.Equal(t, 3, snap.Sentiment[0].CountNewsControversial)
	assert.Equal(t, 1, snap.Sentiment[1].CountNewsControversial)
	assert.InDelta(t, -0.02, snap.Sentiment[1].ReturnNext, 1e-12)
	assert.Equal(t, 2, snap.Report.Sentiment.Dropped)
}

func TestLoader_Load_NewsQueryFails(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "classified_news"`).WillReturnError(errors.New("relation does not exist"))

	l := New(mock, testSources(t, tweetsCSV, sentimentCSV), cutoff, quietLogger())
	snap, err := l.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, snap)

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, SourceNews, srcErr.Source)
	assert.Equal(t, "classified_news", srcErr.Location)
	assert.Contains(t, err.Error(), "relation does not exist")
}

func TestLoader_Load_MissingPostsFile(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "classified_news"`).WillReturnRows(pgxmock.NewRows(newsColumns))

	sources := testSources(t, tweetsCSV, sentimentCSV)
	sources.TweetsCSV = filepath.Join(t.TempDir(), "missing.csv")

	_, err = New(mock, sources, cutoff, quietLogger()).Load(context.Background())
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, SourcePosts, srcErr.Source)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoader_Load_MissingColumns(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "classified_news"`).WillReturnRows(pgxmock.NewRows(newsColumns))
	mock.ExpectQuery(`FROM "stock_data"`).WillReturnRows(pgxmock.NewRows(stockColumns))

	sources := testSources(t, tweetsCSV, "Company,avg_news_sentiment\nAAPL,0.1\n")
	_, err = New(mock, sources, cutoff, quietLogger()).Load(context.Background())

	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, SourceSentiment, srcErr.Source)
	assert.Contains(t, err.Error(), "missing required columns")
}

func TestLoader_Load_NilDatabase(t *testing.T) {
	_, err := New(nil, testSources(t, tweetsCSV, sentimentCSV), cutoff, quietLogger()).Load(context.Background())
	var srcErr *SourceError
	require.ErrorAs(t, err, &srcErr)
	assert.Equal(t, SourceNews, srcErr.Source)
}

func TestLoader_PostColumnAliases(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`FROM "classified_news"`).WillReturnRows(pgxmock.NewRows(newsColumns))
	mock.ExpectQuery(`FROM "stock_data"`).WillReturnRows(pgxmock.NewRows(stockColumns))

	tweets := "\ufeffDate,Tweet\n2020-01-01,first day\n"
	snap, err := New(mock, testSources(t, tweets, sentimentCSV), cutoff, quietLogger()).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Posts, 1)
	assert.Equal(t, "first day", snap.Posts[0].Text)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"2021-03-04", time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"2021-03-04 10:11:12", time.Date(2021, 3, 4, 10, 11, 12, 0, time.UTC), true},
		{"2021-03-04 10:11:12.5", time.Date(2021, 3, 4, 10, 11, 12, 500000000, time.UTC), true},
		{"2021-03-04T10:11:12Z", time.Date(2021, 3, 4, 10, 11, 12, 0, time.UTC), true},
		{"03/04/2021", time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"  2021-03-04  ", time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), true},
		{"", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := parseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}

func TestParseDate_WithOffset(t *testing.T) {
	got, ok := parseDate("2021-03-04 23:30:00+05")
	require.True(t, ok)
	y, m, d := got.Date()
	assert.Equal(t, 2021, y)
	assert.Equal(t, time.March, m)
	assert.Equal(t, 4, d)
}

func TestParseStockDate(t *testing.T) {
	got, ok := parseStockDate("2021-03-04 00:00:00+00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC), got)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 3, parseCount("3"))
	assert.Equal(t, 2, parseCount("2.0"))
	assert.Equal(t, 0, parseCount(""))
	assert.Equal(t, 0, parseCount("n/a"))
}

func TestTableIdentifier(t *testing.T) {
	assert.Equal(t, `"classified_news"`, tableIdentifier("classified_news"))
	assert.Equal(t, `"public"."stock_data"`, tableIdentifier("public.stock_data"))
}
