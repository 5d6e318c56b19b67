package services

import "github.com/irfndi/mag7-sentiment-dashboard/internal/models"

// CountSigns counts strictly positive and strictly negative values. Zeros count as neither.
func CountSigns(values []float64) (positive, negative int) {
	for _, v := range values {
		switch {
		case v > 0:
			positive++
		case v < 0:
			negative++
		}
	}
	return positive, negative
}

// CountPolarity counts positive and negative news and post sentiment across records.
func CountPolarity(records []models.SentimentReturnRecord) models.PolarityCounts {
	news := make([]float64, len(records))
	tweets := make([]float64, len(records))
	for i, rec := range records {
		news[i] = rec.AvgNewsSentiment
		tweets[i] = rec.AvgTweetSentiment
	}

	var counts models.PolarityCounts
	counts.NewsPositive, counts.NewsNegative = CountSigns(news)
	counts.TweetPositive, counts.TweetNegative = CountSigns(tweets)
	return counts
}

// PolarityBars flattens counts into chart rows.
func PolarityBars(c models.PolarityCounts) []models.PolarityBar {
	return []models.PolarityBar{
		{Source: "News", Polarity: "Positive", Count: c.NewsPositive},
		{Source: "News", Polarity: "Negative", Count: c.NewsNegative},
		{Source: "Tweets", Polarity: "Positive", Count: c.TweetPositive},
		{Source: "Tweets", Polarity: "Negative", Count: c.TweetNegative},
	}
}

// OverallSignal averages news and post sentiment of the records as one population.
func OverallSignal(records []models.SentimentReturnRecord) (models.OverallSignal, bool) {
	values := make([]float64, 0, 2*len(records))
	for _, rec := range records {
		values = append(values, rec.AvgNewsSentiment)
	}
	for _, rec := range records {
		values = append(values, rec.AvgTweetSentiment)
	}
	return SignalOf(values)
}

// SignalOf labels the mean of values UP when strictly positive and DOWN
// otherwise, so a mean of exactly zero is DOWN. ok is false for no values.
func SignalOf(values []float64) (signal models.OverallSignal, ok bool) {
	if len(values) == 0 {
		return models.OverallSignal{}, false
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	score := sum / float64(len(values))

	label := models.SignalDown
	if score > 0 {
		label = models.SignalUp
	}
	return models.OverallSignal{Score: score, Label: label}, true
}

// Scatter returns the (news sentiment, return) and (post sentiment, return) series.
func Scatter(records []models.SentimentReturnRecord) (news, tweets []models.ScatterPoint) {
	news = make([]models.ScatterPoint, len(records))
	tweets = make([]models.ScatterPoint, len(records))
	for i, rec := range records {
		news[i] = models.ScatterPoint{Sentiment: rec.AvgNewsSentiment, ReturnNext: rec.ReturnNext}
		tweets[i] = models.ScatterPoint{Sentiment: rec.AvgTweetSentiment, ReturnNext: rec.ReturnNext}
	}
	return news, tweets
}
