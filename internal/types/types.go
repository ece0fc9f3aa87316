package types

import "time"

// Candle is one row of the OHLCV table the pipeline operates on.
type Candle struct {
	Date                        time.Time
	Open, High, Low, Close, Vol float64
}

// PriceSeries is an ordered-by-date OHLCV table. Owned by the caller,
// passed by reference into each component and never mutated.
type PriceSeries []Candle

// Closes extracts the closing prices in series order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// LastClose returns the most recent closing price, or 0 for an empty series.
func (s PriceSeries) LastClose() float64 {
	if len(s) == 0 {
		return 0
	}
	return s[len(s)-1].Close
}

// Validate checks the strictly-increasing-dates invariant.
func (s PriceSeries) Validate() error {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.After(s[i-1].Date) {
			return &SeriesOrderError{Index: i}
		}
	}
	return nil
}

// Headline is one news item from the external news provider.
type Headline struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// SentimentRecord is a scored headline. Score lies in [-1, 1]; list order
// follows source order.
type SentimentRecord struct {
	Headline
	Score JSONFloat `json:"score"`
}

// SentimentResult is the outcome of scoring a single text.
type SentimentResult struct {
	Label      string    `json:"label"` // "positive", "negative", "neutral"
	Confidence JSONFloat `json:"confidence"`
	Score      JSONFloat `json:"score"`
}

// EnsembleResult is the combined one-step-ahead prediction of the model
// panel. Immutable once created.
type EnsembleResult struct {
	Prediction      JSONFloat            `json:"prediction"`
	LowerBound      JSONFloat            `json:"lower_bound"`
	UpperBound      JSONFloat            `json:"upper_bound"`
	ConfidenceScore JSONFloat            `json:"confidence_score"`
	PerModel        map[string]JSONFloat `json:"individual_predictions"`
}

// ForecastPoint is one business day of the seasonal forecast.
type ForecastPoint struct {
	Date  time.Time `json:"date"`
	Yhat  JSONFloat `json:"yhat"`
	Lower JSONFloat `json:"yhat_lower"`
	Upper JSONFloat `json:"yhat_upper"`
}

// SeasonalForecast covers the requested horizon on business days only.
// FallbackUsed reports degradation to the linear extrapolation, which is an
// observable event rather than an error.
type SeasonalForecast struct {
	Points       []ForecastPoint `json:"points"`
	FallbackUsed bool            `json:"fallback_used"`
}

// Insights is the transient normalized-signal map the governing model votes
// over. Missing upstream signals simply omit their key.
type Insights map[string]float64

// StrategyVote is one strategy's (action, confidence, score) tuple.
type StrategyVote struct {
	Action     string    `json:"action"`
	Confidence JSONFloat `json:"confidence"`
	Score      JSONFloat `json:"score"`
}

// Decision is the terminal output of the governing model.
type Decision struct {
	ID         string                  `json:"id"`
	Symbol     string                  `json:"symbol"`
	Action     string                  `json:"action"` // "buy", "sell", "hold"
	Confidence JSONFloat               `json:"confidence"`
	Narrative  string                  `json:"narrative"`
	Strategies map[string]StrategyVote `json:"strategies"`
	Insights   map[string]JSONFloat    `json:"insights"`
}

// PaperTrade is a mock trade sketched from a decision. It never reaches a
// broker.
type PaperTrade struct {
	Symbol          string    `json:"symbol"`
	Action          string    `json:"action"`
	EntryPrice      JSONFloat `json:"entry_price"`
	PositionSize    JSONFloat `json:"position_size"`
	StopLoss        JSONFloat `json:"stop_loss"`
	TakeProfit      JSONFloat `json:"take_profit"`
	Confidence      JSONFloat `json:"confidence"`
	PotentialProfit JSONFloat `json:"potential_profit"`
	PotentialLoss   JSONFloat `json:"potential_loss"`
}

// ScheduleRow is one day of the trade scheduler's execution plan.
type ScheduleRow struct {
	Date          time.Time `json:"date"`
	ForecastPrice JSONFloat `json:"forecast_price"`
	LowerBound    JSONFloat `json:"lower_bound"`
	UpperBound    JSONFloat `json:"upper_bound"`
	Action        string    `json:"action"` // "BUY", "SELL", "HOLD"
	ProfitLossPct JSONFloat `json:"profit_loss_pct"`
	Position      string    `json:"position"` // "Open" or "Closed"
}

// ScheduleSummary aggregates the chosen buy/sell points and the extremes
// seen while the position was open.
type ScheduleSummary struct {
	BuyDate         time.Time `json:"buy_date"`
	BuyPrice        JSONFloat `json:"buy_price"`
	SellDate        time.Time `json:"sell_date"`
	SellPrice       JSONFloat `json:"sell_price"`
	ExpectedProfit  JSONFloat `json:"expected_profit_pct"`
	MaxProfit       JSONFloat `json:"max_profit_pct"`
	MaxLoss         JSONFloat `json:"max_loss_pct"`
	ConfidenceLevel JSONFloat `json:"confidence_level"`
}

// TradeSchedule is the trade scheduler's full output.
type TradeSchedule struct {
	Symbol       string          `json:"symbol"`
	Rows         []ScheduleRow   `json:"rows"`
	Summary      ScheduleSummary `json:"summary"`
	FallbackUsed bool            `json:"fallback_used"`
}

// Recommendation bundles everything one pipeline run produced for a symbol.
type Recommendation struct {
	Decision  Decision          `json:"decision"`
	Trade     *PaperTrade       `json:"paper_trade,omitempty"`
	Ensemble  *EnsembleResult   `json:"ensemble,omitempty"`
	Forecast  *SeasonalForecast `json:"forecast,omitempty"`
	Sentiment []SentimentRecord `json:"sentiment,omitempty"`
	Schedule  *TradeSchedule    `json:"schedule,omitempty"`
}
