package advisor

import (
	"math"

	"stock-advisor/internal/types"
)

// Action names used across the decision layer.
const (
	ActionBuy  = "buy"
	ActionSell = "sell"
	ActionHold = "hold"
)

// Strategy names.
const (
	strategyMomentum      = "momentum"
	strategyMeanReversion = "mean_reversion"
	strategySentiment     = "sentiment_driven"
	strategyHold          = "hold"
)

// missingConfidence substitutes for an absent confidence insight.
const missingConfidence = 0.5

func confOf(insights types.Insights, key string) float64 {
	if v, ok := insights[key]; ok {
		return v
	}
	return missingConfidence
}

// applyStrategies runs every strategy over the insight map. The fixed hold
// strategy guarantees a non-empty vote set.
func applyStrategies(insights types.Insights) map[string]types.StrategyVote {
	return map[string]types.StrategyVote{
		strategyMomentum:      momentumStrategy(insights),
		strategyMeanReversion: meanReversionStrategy(insights),
		strategySentiment:     sentimentStrategy(insights),
		strategyHold:          {Action: ActionHold, Confidence: 0.5, Score: 0},
	}
}

// momentumStrategy buys into an established upward move. It accumulates the
// medium-term forecast, the ensemble prediction, and the trend signal, each
// weighted by its confidence.
func momentumStrategy(insights types.Insights) types.StrategyVote {
	score, confidence := 0.0, 0.0
	if v, ok := insights[keyForecastMedium]; ok && v > 0.05 {
		score += v * confOf(insights, keyForecastConfidence)
		confidence += confOf(insights, keyForecastConfidence)
	}
	if v, ok := insights[keyModelPred]; ok && v > 0.03 {
		score += v * confOf(insights, keyModelConfidence)
		confidence += confOf(insights, keyModelConfidence)
	}
	if v, ok := insights[keyTechTrend]; ok && v > 0 {
		score += 0.5 * confOf(insights, keyTechConfidence)
		confidence += confOf(insights, keyTechConfidence)
	}
	if confidence > 0 {
		confidence /= 3
	} else {
		confidence = missingConfidence
	}
	return vote(score, confidence, 0.5)
}

// meanReversionStrategy buys oversold and sells overbought, leaning against
// large ensemble moves.
func meanReversionStrategy(insights types.Insights) types.StrategyVote {
	score, confidence := 0.0, 0.0
	if v, ok := insights[keyTechRSI]; ok {
		score += v * confOf(insights, keyTechConfidence)
		confidence += confOf(insights, keyTechConfidence)
	}
	if v, ok := insights[keyModelPred]; ok {
		if math.Abs(v) > 0.05 {
			score += -v * confOf(insights, keyModelConfidence)
		}
		confidence += confOf(insights, keyModelConfidence)
	}
	if confidence > 0 {
		confidence /= 2
	} else {
		confidence = missingConfidence
	}
	return vote(score, confidence, 0.5)
}

// sentimentStrategy follows the news signal, amplified by ensemble agreement
// once sentiment is strong enough to trust. Tighter thresholds than the
// price-based strategies since sentiment alone is noisier.
func sentimentStrategy(insights types.Insights) types.StrategyVote {
	score, confidence := 0.0, 0.0
	sent, hasSent := insights[keyNewsSentiment]
	if hasSent {
		score += sent * confOf(insights, keyNewsConfidence)
		confidence += confOf(insights, keyNewsConfidence)
	}
	if v, ok := insights[keyModelPred]; ok && hasSent && math.Abs(sent) > 0.2 {
		score += v * confOf(insights, keyModelConfidence) * 0.5
		confidence += confOf(insights, keyModelConfidence) * 0.5
	}
	if confidence > 0 {
		confidence /= 2
	} else {
		confidence = missingConfidence
	}
	return vote(score, confidence, 0.3)
}

func vote(score, confidence, threshold float64) types.StrategyVote {
	action := ActionHold
	if score > threshold {
		action = ActionBuy
	} else if score < -threshold {
		action = ActionSell
	}
	return types.StrategyVote{
		Action:     action,
		Confidence: types.JSONFloat(confidence),
		Score:      types.JSONFloat(score),
	}
}
