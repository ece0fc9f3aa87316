// Package advisor is the governing decision layer. It folds the forecast,
// ensemble, sentiment, and technical signals into a sparse insight map,
// votes three trading strategies plus a fixed hold over it, and emits the
// final action with a narrative a human can audit.
package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

// Trade sizing parameters for the paper-trade sketch.
const (
	stopLossPct   = 0.05
	takeProfitPct = 0.10
)

// Recommend is a pure function over its inputs: all randomness lives in the
// ensemble's training, not here. Any upstream input may be nil or empty;
// only the insights it would contribute disappear.
func Recommend(ctx context.Context, symbol string, series types.PriceSeries, fc *types.SeasonalForecast, ens *types.EnsembleResult, records []types.SentimentRecord, snap *ta.Snapshot) types.Decision {
	currentPrice := series.LastClose()
	insights := synthesizeInsights(currentPrice, fc, ens, records, snap)
	strategies := applyStrategies(insights)

	action, confidence := weightedVote(strategies)
	narrative := buildNarrative(action, confidence, insights)

	logger.Info(ctx, "Recommendation generated",
		"symbol", symbol, "action", action, "confidence", confidence, "insights", len(insights))

	return types.Decision{
		ID:         uuid.New().String(),
		Symbol:     symbol,
		Action:     action,
		Confidence: types.JSONFloat(confidence),
		Narrative:  narrative,
		Strategies: strategies,
		Insights:   types.Floats(insights),
	}
}

// weightedVote sums confidence*score per action over the strategies that
// chose it, normalized by total confidence across all strategies. Ties
// resolve in buy, sell, hold order.
func weightedVote(strategies map[string]types.StrategyVote) (string, float64) {
	totalConf := 0.0
	actionScore := map[string]float64{}
	for _, v := range strategies {
		totalConf += float64(v.Confidence)
		actionScore[v.Action] += float64(v.Confidence) * float64(v.Score)
	}
	if totalConf == 0 {
		return ActionHold, 0
	}

	best, bestScore := "", 0.0
	for _, action := range []string{ActionBuy, ActionSell, ActionHold} {
		score := actionScore[action] / totalConf
		if best == "" || score > bestScore {
			best, bestScore = action, score
		}
	}
	return best, bestScore
}

// buildNarrative surfaces the contributing reasons whose sign agrees with
// the winning action.
func buildNarrative(action string, confidence float64, insights types.Insights) string {
	var reasons []string
	switch action {
	case ActionBuy:
		if v, ok := insights[keyForecastMedium]; ok && v > 0 {
			reasons = append(reasons, fmt.Sprintf("Seasonal model forecasts a %.1f%% increase in 30 days.", v*100))
		}
		if v, ok := insights[keyModelPred]; ok && v > 0 {
			reasons = append(reasons, fmt.Sprintf("Multi-model ensemble predicts a %.1f%% rise.", v*100))
		}
		if v, ok := insights[keyNewsSentiment]; ok && v > 0 {
			reasons = append(reasons, fmt.Sprintf("Positive news sentiment with %.1f%% confidence.", v*100))
		}
		if v, ok := insights[keyTechTrend]; ok && v > 0 {
			reasons = append(reasons, "Technical indicators show a bullish trend.")
		}
	case ActionSell:
		if v, ok := insights[keyForecastMedium]; ok && v < 0 {
			reasons = append(reasons, fmt.Sprintf("Seasonal model forecasts a %.1f%% decrease in 30 days.", v*100))
		}
		if v, ok := insights[keyModelPred]; ok && v < 0 {
			reasons = append(reasons, fmt.Sprintf("Multi-model ensemble predicts a %.1f%% drop.", v*100))
		}
		if v, ok := insights[keyNewsSentiment]; ok && v < 0 {
			reasons = append(reasons, fmt.Sprintf("Negative news sentiment with %.1f%% confidence.", v*100))
		}
		if v, ok := insights[keyTechTrend]; ok && v < 0 {
			reasons = append(reasons, "Technical indicators show a bearish trend.")
		}
	default:
		reasons = append(reasons, "Mixed signals from models and indicators suggest a neutral stance.")
	}

	head := fmt.Sprintf("Recommendation: %s with %.1f%% confidence.", strings.ToUpper(action), confidence*100)
	if len(reasons) == 0 {
		return head
	}
	return head + " " + strings.Join(reasons, " ")
}

// SimulateTrade sketches a mock position from a decision. It never reaches
// a broker. Returns nil when there is no price to anchor the entry.
func SimulateTrade(d types.Decision, currentPrice float64) *types.PaperTrade {
	if currentPrice <= 0 {
		return nil
	}
	confidence := float64(d.Confidence)

	// Risk-adjusted sizing, capped at the full position.
	positionSize := confidence * 2
	if positionSize > 1 {
		positionSize = 1
	}
	if positionSize < 0 {
		positionSize = 0
	}

	stopMult, profitMult := 1-stopLossPct, 1+takeProfitPct
	if d.Action == ActionSell {
		stopMult, profitMult = 1+stopLossPct, 1-takeProfitPct
	}
	stop := currentPrice * stopMult
	take := currentPrice * profitMult

	potentialProfit := (take - currentPrice) * positionSize
	potentialLoss := (currentPrice - stop) * positionSize
	if d.Action == ActionSell {
		potentialProfit = (currentPrice - take) * positionSize
		potentialLoss = (stop - currentPrice) * positionSize
	}

	return &types.PaperTrade{
		Symbol:          d.Symbol,
		Action:          d.Action,
		EntryPrice:      types.JSONFloat(currentPrice),
		PositionSize:    types.JSONFloat(positionSize),
		StopLoss:        types.JSONFloat(stop),
		TakeProfit:      types.JSONFloat(take),
		Confidence:      d.Confidence,
		PotentialProfit: types.JSONFloat(potentialProfit),
		PotentialLoss:   types.JSONFloat(potentialLoss),
	}
}
