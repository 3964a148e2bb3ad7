package news

import (
	"strings"
	"sync"

	"github.com/jonreiter/govader"

	"cryptoSignalWatch/internal/domain"
)

// analyzer loads the VADER lexicon on first use.
var analyzer = sync.OnceValue(govader.NewSentimentIntensityAnalyzer)

// Score returns the VADER compound polarity of a headline in [-1, 1].
// Blank headlines score 0.
func Score(headline string) float64 {
	if strings.TrimSpace(headline) == "" {
		return 0
	}
	return analyzer().PolarityScores(headline).Compound
}

// Aggregate returns the mean score of headlines, undefined when there are none.
func Aggregate(headlines []string) float64 {
	if len(headlines) == 0 {
		return domain.Undefined()
	}
	sum := 0.0
	for _, h := range headlines {
		sum += Score(h)
	}
	return sum / float64(len(headlines))
}
