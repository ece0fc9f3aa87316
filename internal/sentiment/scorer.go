// Package sentiment scores free-form financial text. The combined score
// blends a general lexicon, a graded polarity pass, and a finance-specific
// keyword layer; the finance layer carries half the weight because headline
// language is dominated by domain terms.
package sentiment

import (
	"stock-advisor/internal/types"
)

// Component weights of the combined score.
const (
	lexiconWeight  = 0.3
	polarityWeight = 0.2
	financeWeight  = 0.5
)

// Labels switch at +/-0.15 of combined score.
const labelThreshold = 0.15

// Article components: titles carry more signal than truncated descriptions.
const (
	titleWeight       = 0.6
	descriptionWeight = 0.4
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"
)

// Scorer holds the word tables. Safe for concurrent use once constructed.
type Scorer struct {
	positiveWords map[string]bool
	negativeWords map[string]bool
	valences      map[string]float64
	intensifiers  map[string]float64
	financePos    map[string]float64
	financeNeg    map[string]float64
}

// NewScorer builds a scorer with the built-in word tables.
func NewScorer() *Scorer {
	return &Scorer{
		positiveWords: loadPositiveWords(),
		negativeWords: loadNegativeWords(),
		valences:      loadValences(),
		intensifiers:  loadIntensifiers(),
		financePos:    loadFinancePositive(),
		financeNeg:    loadFinanceNegative(),
	}
}

// Score analyzes a single text. Empty input yields a neutral result with
// zero confidence.
func (s *Scorer) Score(text string) types.SentimentResult {
	if text == "" {
		return types.SentimentResult{Label: LabelNeutral}
	}

	words := tokenize(text)
	combined := clamp(s.lexiconScore(words)*lexiconWeight+
		s.polarityScore(words)*polarityWeight+
		s.financeScore(text)*financeWeight, -1, 1)

	var label string
	var confidence float64
	switch {
	case combined >= labelThreshold:
		label = LabelPositive
		confidence = clamp(abs(combined)*1.5, 0, 1)
	case combined <= -labelThreshold:
		label = LabelNegative
		confidence = clamp(abs(combined)*1.5, 0, 1)
	default:
		label = LabelNeutral
		confidence = 1 - abs(combined)
	}

	return types.SentimentResult{
		Label:      label,
		Confidence: types.JSONFloat(confidence),
		Score:      types.JSONFloat(combined),
	}
}

// ScoreHeadline blends the title and description scores into one record.
func (s *Scorer) ScoreHeadline(h types.Headline) types.SentimentRecord {
	title := s.Score(h.Title)
	desc := s.Score(h.Description)
	combined := float64(title.Score)*titleWeight + float64(desc.Score)*descriptionWeight
	return types.SentimentRecord{
		Headline: h,
		Score:    types.JSONFloat(combined),
	}
}

// ScoreHeadlines preserves source order.
func (s *Scorer) ScoreHeadlines(headlines []types.Headline) []types.SentimentRecord {
	out := make([]types.SentimentRecord, len(headlines))
	for i, h := range headlines {
		out[i] = s.ScoreHeadline(h)
	}
	return out
}

// Aggregate averages record scores into the pipeline-level sentiment signal
// and its confidence. Empty input is a neutral zero-confidence signal.
func Aggregate(records []types.SentimentRecord) (score, confidence float64) {
	if len(records) == 0 {
		return 0, 0
	}
	total := 0.0
	for _, r := range records {
		total += float64(r.Score)
	}
	score = total / float64(len(records))
	confidence = clamp(abs(score)*100, 0, 100) / 100
	return score, confidence
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
