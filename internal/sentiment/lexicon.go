package sentiment

import (
	"strings"
	"unicode"
)

// tokenize splits text into lowercase alphanumeric words.
func tokenize(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(r)
		} else if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

// lexiconScore computes a general-purpose sentiment score in [-1, 1] from
// the net positive/negative word ratio, amplified the way short headline
// text needs. Negation within a two-word lookback flips a hit.
func (s *Scorer) lexiconScore(words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	pos, neg := 0, 0
	for i, word := range words {
		hit := 0
		if s.positiveWords[word] {
			hit = 1
		} else if s.negativeWords[word] {
			hit = -1
		}
		if hit == 0 {
			continue
		}
		if negatedAt(words, i) {
			hit = -hit
		}
		if hit > 0 {
			pos++
		} else {
			neg++
		}
	}
	net := float64(pos-neg) / float64(len(words))
	return clamp(net*10, -1, 1)
}

// polarityScore averages per-word valences, honoring negation and the
// intensifier immediately before a valenced word.
func (s *Scorer) polarityScore(words []string) float64 {
	total, count := 0.0, 0
	for i, word := range words {
		v, ok := s.valences[word]
		if !ok {
			continue
		}
		if i > 0 {
			if boost, ok := s.intensifiers[words[i-1]]; ok {
				v *= boost
			}
		}
		if negatedAt(words, i) {
			v = -v * 0.5
		}
		total += v
		count++
	}
	if count == 0 {
		return 0
	}
	return clamp(total/float64(count), -1, 1)
}

func negatedAt(words []string, i int) bool {
	for back := 1; back <= 2 && i-back >= 0; back++ {
		switch words[i-back] {
		case "not", "no", "never", "isnt", "wasnt", "wont", "didnt", "doesnt":
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func loadPositiveWords() map[string]bool {
	words := []string{
		"achieve", "advance", "benefit", "better", "boom", "boost", "bright",
		"confident", "delight", "enhance", "excellent", "exceptional",
		"expand", "favorable", "gain", "good", "great", "grew", "growth",
		"healthy", "improve", "improved", "improvement", "increase",
		"innovative", "leader", "leading", "momentum", "opportunity",
		"optimistic", "outperform", "positive", "profit", "profitable",
		"progress", "rally", "rebound", "record", "recover", "resilient",
		"robust", "soar", "solid", "strength", "strong", "succeed",
		"success", "successful", "surge", "surpass", "upbeat", "upside",
		"win", "winning",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func loadNegativeWords() map[string]bool {
	words := []string{
		"adverse", "bad", "bankrupt", "bankruptcy", "challenge",
		"challenging", "collapse", "concern", "concerns", "crash", "crisis",
		"damage", "debt", "decline", "decrease", "deficit", "deteriorate",
		"difficult", "disappoint", "disappointing", "downturn", "drop",
		"fail", "failure", "falling", "fear", "fraud", "headwind", "hurt",
		"inadequate", "lawsuit", "loss", "losses", "miss", "missed",
		"negative", "plunge", "poor", "pressure", "problem", "recession",
		"restructuring", "risk", "risks", "slowdown", "slump", "struggle",
		"tumble", "uncertain", "uncertainty", "underperform", "unfavorable",
		"volatile", "volatility", "warn", "warning", "weak", "weakness",
		"worse", "worst",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// loadValences assigns a graded polarity to common evaluative words,
// including a handful of everyday terms the binary lexicon skips.
func loadValences() map[string]float64 {
	return map[string]float64{
		"excellent": 0.9, "exceptional": 0.9, "great": 0.8, "amazing": 0.8,
		"strong": 0.6, "good": 0.5, "solid": 0.5, "positive": 0.5,
		"healthy": 0.4, "steady": 0.2, "stable": 0.2, "fine": 0.2,
		"mixed": -0.1, "flat": -0.1, "sluggish": -0.3, "soft": -0.3,
		"weak": -0.5, "poor": -0.6, "bad": -0.6, "negative": -0.5,
		"terrible": -0.9, "awful": -0.9, "disastrous": -1.0,
		"disappointing": -0.6, "worrying": -0.6, "alarming": -0.7,
		"promising": 0.6, "encouraging": 0.6, "impressive": 0.7,
	}
}

func loadIntensifiers() map[string]float64 {
	return map[string]float64{
		"very": 1.3, "extremely": 1.5, "highly": 1.3, "really": 1.2,
		"slightly": 0.5, "somewhat": 0.6, "fairly": 0.8, "quite": 1.1,
	}
}
