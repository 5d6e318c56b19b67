// Package keywords maps tracked tickers to the aliases used to spot them in free text.
package keywords

import (
	"strings"

	"golang.org/x/text/cases"
)

// TickerKeywordMap maps a ticker symbol to its ordered alias list.
type TickerKeywordMap struct {
	order   []string
	aliases map[string][]string
}

// Entry is a ticker with its aliases.
type Entry struct {
	Ticker   string   `json:"ticker"`
	Keywords []string `json:"keywords"`
}

// NewTickerKeywordMap builds a map from entries, keeping their order.
func NewTickerKeywordMap(entries ...Entry) *TickerKeywordMap {
	m := &TickerKeywordMap{
		order:   make([]string, 0, len(entries)),
		aliases: make(map[string][]string, len(entries)),
	}
	for _, e := range entries {
		if _, exists := m.aliases[e.Ticker]; !exists {
			m.order = append(m.order, e.Ticker)
		}
		m.aliases[e.Ticker] = append([]string(nil), e.Keywords...)
	}
	return m
}

// Mag7 returns the keyword map for the seven tracked technology companies.
func Mag7() *TickerKeywordMap {
	return NewTickerKeywordMap(
		Entry{Ticker: "AAPL", Keywords: []string{"AAPL", "Apple"}},
		Entry{Ticker: "MSFT", Keywords: []string{"MSFT", "Microsoft"}},
		Entry{Ticker: "NVDA", Keywords: []string{"NVDA", "Nvidia"}},
		Entry{Ticker: "META", Keywords: []string{"META", "Meta", "Facebook", "facebook"}},
		Entry{Ticker: "GOOGL", Keywords: []string{"GOOGL", "Alphabet", "Google"}},
		Entry{Ticker: "AMZN", Keywords: []string{"AMZN", "Amazon"}},
		Entry{Ticker: "TSLA", Keywords: []string{"TSLA", "Tesla"}},
	)
}

// Tickers returns the tickers in declaration order.
func (m *TickerKeywordMap) Tickers() []string {
	return append([]string(nil), m.order...)
}

// Keywords returns a copy of the aliases for ticker and whether the ticker is known.
func (m *TickerKeywordMap) Keywords(ticker string) ([]string, bool) {
	kws, ok := m.aliases[ticker]
	if !ok {
		return nil, false
	}
	return append([]string(nil), kws...), true
}

// Entries returns every ticker with its aliases in declaration order.
func (m *TickerKeywordMap) Entries() []Entry {
	entries := make([]Entry, 0, len(m.order))
	for _, t := range m.order {
		kws, _ := m.Keywords(t)
		entries = append(entries, Entry{Ticker: t, Keywords: kws})
	}
	return entries
}

// IsRelevant joins fields with a space and reports whether any keyword occurs
// in the result as a case-folded substring. There is no word-boundary check,
// so "Apple" also matches "Appleton".
func IsRelevant(keywords []string, fields ...string) bool {
	folder := cases.Fold()
	text := folder.String(strings.Join(fields, " "))
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(text, folder.String(kw)) {
			return true
		}
	}
	return false
}
