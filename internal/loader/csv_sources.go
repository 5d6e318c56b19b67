package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/irfndi/mag7-sentiment-dashboard/internal/models"
)

// Accepted column names, in order of preference.
var (
	postDateColumns    = []string{"date.1", "Date", "date"}
	postTextColumns    = []string{"fullText", "Tweet", "text"}
	controversyColumns = []string{"count_controversial.1", "count_news_controversial"}
)

// csvTable streams the records of a headed CSV file.
type csvTable struct {
	file    *os.File
	reader  *csv.Reader
	columns map[string]int
}

func openCSV(path string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		f.Close()
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file has no header row")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	return &csvTable{file: f, reader: r, columns: columns}, nil
}

func (t *csvTable) Close() error {
	return t.file.Close()
}

// column returns the index of the first present name, or -1.
func (t *csvTable) column(names ...string) int {
	for _, name := range names {
		if i, ok := t.columns[name]; ok {
			return i
		}
	}
	return -1
}

// next returns the next record. A malformed record is reported with ok=false
// and a nil error so callers can count it and move on.
func (t *csvTable) next() (record []string, ok bool, err error) {
	record, err = t.reader.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return record, true, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}

func (l *Loader) loadPosts() ([]models.SocialPost, models.SourceStats, error) {
	var stats models.SourceStats
	path := l.sources.TweetsCSV

	table, err := openCSV(path)
	if err != nil {
		return nil, stats, &SourceError{Source: SourcePosts, Location: path, Err: err}
	}
	defer table.Close()

	dateCol := table.column(postDateColumns...)
	textCol := table.column(postTextColumns...)
	if dateCol < 0 || textCol < 0 {
		return nil, stats, &SourceError{
			Source:   SourcePosts,
			Location: path,
			Err:      fmt.Errorf("missing required columns: need one of %v and one of %v", postDateColumns, postTextColumns),
		}
	}

	posts := make([]models.SocialPost, 0)
	for {
		record, ok, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, &SourceError{Source: SourcePosts, Location: path, Err: err}
		}
		stats.Read++
		if !ok {
			stats.Dropped++
			continue
		}

		date, parsed := parseDate(field(record, dateCol))
		if !parsed || !l.keep(date) {
			stats.Dropped++
			continue
		}
		posts = append(posts, models.SocialPost{Date: date, Text: field(record, textCol)})
	}

	stats.Kept = len(posts)
	return posts, stats, nil
}

func (l *Loader) loadSentiment() ([]models.SentimentReturnRecord, models.SourceStats, error) {
	var stats models.SourceStats
	path := l.sources.SentimentCSV

	table, err := openCSV(path)
	if err != nil {
		return nil, stats, &SourceError{Source: SourceSentiment, Location: path, Err: err}
	}
	defer table.Close()

	companyCol := table.column("Company")
	newsCol := table.column("avg_news_sentiment")
	tweetCol := table.column("avg_tweet_sentiment")
	returnCol := table.column("return_next")
	countCol := table.column(controversyColumns...)
	if companyCol < 0 || newsCol < 0 || tweetCol < 0 || returnCol < 0 {
		return nil, stats, &SourceError{
			Source:   SourceSentiment,
			Location: path,
			Err:      errors.New("missing required columns: Company, avg_news_sentiment, avg_tweet_sentiment, return_next"),
		}
	}

	records := make([]models.SentimentReturnRecord, 0)
	for {
		record, ok, err := table.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, &SourceError{Source: SourceSentiment, Location: path, Err: err}
		}
		stats.Read++
		if !ok {
			stats.Dropped++
			continue
		}

		newsScore, err1 := parseFloat(field(record, newsCol))
		tweetScore, err2 := parseFloat(field(record, tweetCol))
		returnNext, err3 := parseFloat(field(record, returnCol))
		if err := errors.Join(err1, err2, err3); err != nil {
			stats.Dropped++
			continue
		}

		records = append(records, models.SentimentReturnRecord{
			Company:                field(record, companyCol),
			AvgNewsSentiment:       newsScore,
			AvgTweetSentiment:      tweetScore,
			ReturnNext:             returnNext,
			CountNewsControversial: parseCount(field(record, countCol)),
		})
	}

	stats.Kept = len(records)
	return records, stats, nil
}

// parseFloat rejects blanks and non-finite values.
func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", raw)
	}
	return v, nil
}

// parseCount accepts integer or integral float text; anything else counts as zero.
func parseCount(raw string) int {
	s := strings.TrimSpace(raw)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int(f)
	}
	return 0
}
