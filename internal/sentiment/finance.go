package sentiment

import (
	"regexp"
	"strconv"
	"strings"
)

var percentPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// Direction terms that give a bare percentage its sign.
var (
	upTerms   = []string{"rose", "up", "climb", "gain", "higher"}
	downTerms = []string{"down", "fall", "drop", "lower", "decline"}
)

// financeScore is the domain-specific component of the combined score. It
// layers weighted finance keywords, signed percentage moves, moving-average
// crossover phrases, and market-action phrases on top of each other; the
// result is unclamped by itself and only bounded in Score.
func (s *Scorer) financeScore(text string) float64 {
	lower := strings.ToLower(text)
	words := strings.Fields(lower)
	score := 0.0

	// A percentage move counts in proportion to its size, signed by the
	// direction language around it.
	for _, m := range percentPattern.FindAllStringSubmatch(text, -1) {
		pct, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if containsAny(lower, upTerms) {
			score += pct * 0.15
		} else if containsAny(lower, downTerms) {
			score -= pct * 0.15
		}
	}

	if strings.Contains(lower, "moving average") {
		if strings.Contains(lower, "crossed below") || strings.Contains(lower, "below") {
			score -= 1.2
		} else if strings.Contains(lower, "crossed above") || strings.Contains(lower, "above") {
			score += 1.2
		}
	}

	if strings.Contains(lower, "sell-off") || strings.Contains(lower, "selloff") {
		score -= 1.3
	}
	if strings.Contains(lower, "recovery") || strings.Contains(lower, "recovers") {
		score += 1.3
	}

	pos, neg := 0.0, 0.0
	for _, w := range words {
		pos += s.financePos[w]
		neg += s.financeNeg[w]
	}
	if pos != 0 || neg != 0 {
		score += (pos - neg) / (pos + neg)
	}

	return score
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Finance keyword weights. Stronger market-moving verbs carry more weight
// than generic direction words.
func loadFinancePositive() map[string]float64 {
	return map[string]float64{
		"strong":        1.2,
		"climbed":       1.3,
		"up":            1.1,
		"higher":        1.1,
		"beat":          1.2,
		"exceeded":      1.2,
		"growth":        1.1,
		"profit":        1.1,
		"gain":          1.1,
		"positive":      1.1,
		"bullish":       1.3,
		"outperform":    1.2,
		"buy":           1.1,
		"upgrade":       1.2,
		"recovers":      1.3,
		"rose":          1.3,
		"closed higher": 1.4,
	}
}

func loadFinanceNegative() map[string]float64 {
	return map[string]float64{
		"weak":          1.2,
		"fell":          1.3,
		"down":          1.1,
		"lower":         1.1,
		"miss":          1.2,
		"missed":        1.2,
		"decline":       1.1,
		"loss":          1.1,
		"negative":      1.1,
		"bearish":       1.3,
		"underperform":  1.2,
		"sell":          1.1,
		"downgrade":     1.2,
		"sell-off":      1.4,
		"rattled":       1.3,
		"correction":    1.3,
		"crossed below": 1.4,
		"pain":          1.3,
	}
}
