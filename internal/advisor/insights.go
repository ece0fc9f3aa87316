package advisor

import (
	"math"

	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

// Insight keys. Each upstream component that produced output contributes its
// keys; a missing component simply omits them.
const (
	keyForecastShort      = "prophet_short_term"
	keyForecastMedium     = "prophet_medium_term"
	keyForecastConfidence = "prophet_confidence"
	keyModelPred          = "multi_model_pred"
	keyModelConfidence    = "multi_model_confidence"
	keyModelConsensus     = "multi_model_consensus"
	keyNewsSentiment      = "news_sentiment"
	keyNewsConfidence     = "news_confidence"
	keyTechTrend          = "technical_trend"
	keyTechRSI            = "technical_rsi"
	keyTechConfidence     = "technical_confidence"
)

// Forecast offsets into the horizon, in business days.
const (
	shortTermOffset  = 7
	mediumTermOffset = 30
)

// Technical signals carry a fixed confidence; they are rule-based and have
// no dispersion to derive one from.
const technicalConfidence = 0.8

// synthesizeInsights normalizes every available upstream signal into a
// percentage-of-current-price or directional scalar.
func synthesizeInsights(currentPrice float64, fc *types.SeasonalForecast, ens *types.EnsembleResult, records []types.SentimentRecord, snap *ta.Snapshot) types.Insights {
	insights := types.Insights{}
	if currentPrice <= 0 {
		return insights
	}

	if fc != nil && len(fc.Points) > 0 {
		short := float64(fc.Points[minInt(shortTermOffset, len(fc.Points)-1)].Yhat)
		medium := float64(fc.Points[minInt(mediumTermOffset, len(fc.Points)-1)].Yhat)
		insights[keyForecastShort] = (short - currentPrice) / currentPrice
		insights[keyForecastMedium] = (medium - currentPrice) / currentPrice
		if w, ok := meanRelativeWidth(fc.Points); ok {
			insights[keyForecastConfidence] = 1 - w
		}
	}

	if ens != nil {
		insights[keyModelPred] = (float64(ens.Prediction) - currentPrice) / currentPrice
		insights[keyModelConfidence] = float64(ens.ConfidenceScore)
		if len(ens.PerModel) > 0 {
			above := 0
			for _, p := range ens.PerModel {
				if float64(p) > currentPrice {
					above++
				}
			}
			insights[keyModelConsensus] = float64(above) / float64(len(ens.PerModel))
		}
	}

	if len(records) > 0 {
		total := 0.0
		for _, r := range records {
			total += float64(r.Score)
		}
		weighted := total / float64(len(records))
		insights[keyNewsSentiment] = weighted
		insights[keyNewsConfidence] = math.Min(math.Abs(weighted)*100, 100) / 100
	}

	if snap != nil {
		if snap.MA20 > snap.MA50 {
			insights[keyTechTrend] = 1
		} else {
			insights[keyTechTrend] = -1
		}
		switch {
		case snap.RSI < 30:
			insights[keyTechRSI] = 1
		case snap.RSI > 70:
			insights[keyTechRSI] = -1
		default:
			insights[keyTechRSI] = 0
		}
		insights[keyTechConfidence] = technicalConfidence
	}

	return insights
}

// meanRelativeWidth averages (upper-lower)/yhat over points with a nonzero
// center. Reports false when no point qualifies.
func meanRelativeWidth(points []types.ForecastPoint) (float64, bool) {
	total, count := 0.0, 0
	for _, p := range points {
		y := float64(p.Yhat)
		if y == 0 {
			continue
		}
		total += (float64(p.Upper) - float64(p.Lower)) / y
		count++
	}
	if count == 0 {
		return 0, false
	}
	return total / float64(count), true
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
