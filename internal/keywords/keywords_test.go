package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMag7_TickerOrder(t *testing.T) {
	m := Mag7()
	assert.Equal(t, []string{"AAPL", "MSFT", "NVDA", "META", "GOOGL", "AMZN", "TSLA"}, m.Tickers())

	kws, ok := m.Keywords("META")
	assert.True(t, ok)
	assert.Equal(t, []string{"META", "Meta", "Facebook", "facebook"}, kws)

	_, ok = m.Keywords("IBM")
	assert.False(t, ok)
}

func TestTickerKeywordMap_ReturnsCopies(t *testing.T) {
	m := Mag7()
	kws, _ := m.Keywords("AAPL")
	kws[0] = "changed"

	again, _ := m.Keywords("AAPL")
	assert.Equal(t, "AAPL", again[0])

	tickers := m.Tickers()
	tickers[0] = "changed"
	assert.Equal(t, "AAPL", m.Tickers()[0])
}

func TestTickerKeywordMap_Entries(t *testing.T) {
	m := NewTickerKeywordMap(
		Entry{Ticker: "B", Keywords: []string{"bee"}},
		Entry{Ticker: "A", Keywords: []string{"ay"}},
	)
	assert.Equal(t, []Entry{
		{Ticker: "B", Keywords: []string{"bee"}},
		{Ticker: "A", Keywords: []string{"ay"}},
	}, m.Entries())
}

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		fields   []string
		want     bool
	}{
		{name: "case insensitive", keywords: []string{"apple"}, fields: []string{"iPhone news from APPLE"}, want: true},
		{name: "keyword upper text lower", keywords: []string{"Apple"}, fields: []string{"apple earnings"}, want: true},
		{name: "substring without word boundary", keywords: []string{"Apple"}, fields: []string{"Appleton council meets"}, want: true},
		{name: "match in second field", keywords: []string{"Tesla"}, fields: []string{"EV makers rally", "tesla leads gains"}, want: true},
		{name: "no match", keywords: []string{"NVDA", "Nvidia"}, fields: []string{"Apple earnings", "Microsoft cloud"}, want: false},
		{name: "empty fields", keywords: []string{"AAPL"}, fields: []string{"", ""}, want: false},
		{name: "empty keyword ignored", keywords: []string{""}, fields: []string{"anything"}, want: false},
		{name: "no keywords", keywords: nil, fields: []string{"Apple"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRelevant(tt.keywords, tt.fields...))
		})
	}
}

func TestIsRelevant_FieldsJoinedWithSpace(t *testing.T) {
	// "Goo" + "gle" across two fields must not form "Google".
	assert.False(t, IsRelevant([]string{"Google"}, "Goo", "gle"))
}
