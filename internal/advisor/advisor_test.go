package advisor

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"stock-advisor/internal/ta"
	"stock-advisor/internal/types"
)

func TestRecommendBullishSignals(t *testing.T) {
	series := flatSeries(60, 100)

	fc := &types.SeasonalForecast{Points: risingPoints(31, 100, 120)}
	ens := &types.EnsembleResult{
		Prediction:      110,
		ConfidenceScore: 0.9,
		PerModel: map[string]types.JSONFloat{
			"SequenceModel":   111,
			"XGBoostEnsemble": 109,
		},
	}
	records := []types.SentimentRecord{
		{Headline: types.Headline{Title: "positive"}, Score: 0.8},
	}
	snap := &ta.Snapshot{MA20: 105, MA50: 100, RSI: 50}

	d := Recommend(context.Background(), "AAPL", series, fc, ens, records, snap)

	if d.Action != ActionBuy {
		t.Errorf("Expected buy for uniformly bullish signals, got %s", d.Action)
	}
	if d.Confidence <= 0 || d.Confidence > 1 {
		t.Errorf("Expected confidence in (0,1], got %f", float64(d.Confidence))
	}
	if d.ID == "" {
		t.Error("Expected a decision ID")
	}
	if d.Symbol != "AAPL" {
		t.Errorf("Expected symbol AAPL, got %s", d.Symbol)
	}
	if len(d.Strategies) != 4 {
		t.Errorf("Expected 4 strategy votes, got %d", len(d.Strategies))
	}
	if !strings.Contains(d.Narrative, "BUY") {
		t.Errorf("Expected narrative to name the action, got %q", d.Narrative)
	}
	if !strings.Contains(d.Narrative, "increase") {
		t.Errorf("Expected narrative to cite the forecast, got %q", d.Narrative)
	}
}

func TestRecommendNoUpstreamSignals(t *testing.T) {
	series := flatSeries(60, 100)
	d := Recommend(context.Background(), "MSFT", series, nil, nil, nil, nil)

	// Every strategy votes hold with a zero score, so all three actions tie
	// at zero and the fixed resolution order picks buy with no conviction.
	if d.Action != ActionBuy {
		t.Errorf("Expected buy on the zero-score tie, got %s", d.Action)
	}
	if d.Confidence != 0 {
		t.Errorf("Expected zero confidence with no upstream signals, got %f", float64(d.Confidence))
	}
	if len(d.Strategies) != 4 {
		t.Errorf("Expected 4 strategy votes, got %d", len(d.Strategies))
	}
}

func TestWeightedVote(t *testing.T) {
	strategies := map[string]types.StrategyVote{
		"a": {Action: ActionBuy, Confidence: 0.8, Score: 0.6},
		"b": {Action: ActionHold, Confidence: 0.5, Score: 0},
	}
	action, confidence := weightedVote(strategies)
	if action != ActionBuy {
		t.Errorf("Expected buy, got %s", action)
	}
	want := 0.8 * 0.6 / (0.8 + 0.5)
	if math.Abs(confidence-want) > 1e-9 {
		t.Errorf("Expected confidence %f, got %f", want, confidence)
	}
}

func TestWeightedVoteEmpty(t *testing.T) {
	action, confidence := weightedVote(nil)
	if action != ActionHold || confidence != 0 {
		t.Errorf("Expected hold with zero confidence, got %s %f", action, confidence)
	}
}

func TestSynthesizeInsights(t *testing.T) {
	fc := &types.SeasonalForecast{Points: risingPoints(31, 100, 110)}
	ens := &types.EnsembleResult{
		Prediction:      105,
		ConfidenceScore: 0.7,
		PerModel:        map[string]types.JSONFloat{"a": 106, "b": 98},
	}
	records := []types.SentimentRecord{{Score: 0.4}, {Score: -0.2}}
	snap := &ta.Snapshot{MA20: 95, MA50: 100, RSI: 25}

	insights := synthesizeInsights(100, fc, ens, records, snap)

	if v := insights[keyModelPred]; math.Abs(v-0.05) > 1e-9 {
		t.Errorf("Expected model prediction insight 0.05, got %f", v)
	}
	if v := insights[keyModelConsensus]; v != 0.5 {
		t.Errorf("Expected consensus 0.5, got %f", v)
	}
	if v := insights[keyNewsSentiment]; math.Abs(v-0.1) > 1e-9 {
		t.Errorf("Expected mean sentiment 0.1, got %f", v)
	}
	if v := insights[keyTechTrend]; v != -1 {
		t.Errorf("Expected bearish trend for MA20 < MA50, got %f", v)
	}
	if v := insights[keyTechRSI]; v != 1 {
		t.Errorf("Expected oversold RSI signal, got %f", v)
	}
	if v := insights[keyTechConfidence]; v != technicalConfidence {
		t.Errorf("Expected fixed technical confidence, got %f", v)
	}
	if _, ok := insights[keyForecastMedium]; !ok {
		t.Error("Expected medium-term forecast insight")
	}
}

func TestSynthesizeInsightsZeroPrice(t *testing.T) {
	insights := synthesizeInsights(0, nil, nil, nil, &ta.Snapshot{MA20: 1, MA50: 1, RSI: 50})
	if len(insights) != 0 {
		t.Errorf("Expected no insights without a current price, got %d", len(insights))
	}
}

func TestSimulateTradeBuy(t *testing.T) {
	d := types.Decision{Symbol: "AAPL", Action: ActionBuy, Confidence: 0.4}
	trade := SimulateTrade(d, 100)
	if trade == nil {
		t.Fatal("Expected a paper trade")
	}
	if float64(trade.PositionSize) != 0.8 {
		t.Errorf("Expected position size 0.8, got %f", float64(trade.PositionSize))
	}
	if float64(trade.StopLoss) != 95 {
		t.Errorf("Expected stop at 95, got %f", float64(trade.StopLoss))
	}
	if math.Abs(float64(trade.TakeProfit)-110) > 1e-9 {
		t.Errorf("Expected take profit at 110, got %f", float64(trade.TakeProfit))
	}
	if float64(trade.PotentialProfit) <= 0 || float64(trade.PotentialLoss) <= 0 {
		t.Error("Expected positive potential profit and loss magnitudes")
	}
}

func TestSimulateTradeSell(t *testing.T) {
	d := types.Decision{Symbol: "AAPL", Action: ActionSell, Confidence: 0.6}
	trade := SimulateTrade(d, 100)
	if trade == nil {
		t.Fatal("Expected a paper trade")
	}
	if float64(trade.StopLoss) != 105 {
		t.Errorf("Expected sell stop above entry, got %f", float64(trade.StopLoss))
	}
	if float64(trade.TakeProfit) != 90 {
		t.Errorf("Expected sell target below entry, got %f", float64(trade.TakeProfit))
	}
	if float64(trade.PotentialProfit) <= 0 {
		t.Errorf("Expected positive potential profit, got %f", float64(trade.PotentialProfit))
	}
}

func TestSimulateTradeNoPrice(t *testing.T) {
	if trade := SimulateTrade(types.Decision{Action: ActionBuy}, 0); trade != nil {
		t.Error("Expected nil trade without an entry price")
	}
}

func flatSeries(n int, price float64) types.PriceSeries {
	series := make(types.PriceSeries, 0, n)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		series = append(series, types.Candle{
			Date: date, Open: price, High: price + 1, Low: price - 1, Close: price, Vol: 1e6,
		})
		date = date.AddDate(0, 0, 1)
	}
	return series
}

func risingPoints(n int, from, to float64) []types.ForecastPoint {
	points := make([]types.ForecastPoint, n)
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := range points {
		y := from + (to-from)*float64(i)/float64(n-1)
		points[i] = types.ForecastPoint{
			Date:  date,
			Yhat:  types.JSONFloat(y),
			Lower: types.JSONFloat(y * 0.98),
			Upper: types.JSONFloat(y * 1.02),
		}
		date = date.AddDate(0, 0, 1)
	}
	return points
}
