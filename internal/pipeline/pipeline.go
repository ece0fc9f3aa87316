// Package pipeline orchestrates one symbol's recommendation end to end:
// price history, indicators, features, the model ensemble, the seasonal
// forecast, news sentiment, the governing decision, and the trade schedule.
// A run is single-threaded and request-scoped; partial upstream failures
// degrade the recommendation instead of aborting it.
package pipeline

import (
	"context"
	"fmt"

	"stock-advisor/internal/advisor"
	"stock-advisor/internal/ensemble"
	"stock-advisor/internal/features"
	"stock-advisor/internal/forecast"
	"stock-advisor/internal/interfaces"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/news"
	"stock-advisor/internal/schedule"
	"stock-advisor/internal/store"
	"stock-advisor/internal/ta"
	"stock-advisor/internal/telemetry"
	"stock-advisor/internal/types"
)

// Pipeline wires the components for repeated runs. Construct once, call
// Recommend per symbol.
type Pipeline struct {
	cfg      *store.Config
	prices   interfaces.PriceProvider
	news     *news.Service
	listener interfaces.PipelineListener
	weights  ensemble.WeightProfile
}

// New builds a pipeline from configuration. listener may be nil.
func New(cfg *store.Config, prices interfaces.PriceProvider, newsSvc *news.Service, listener interfaces.PipelineListener) (*Pipeline, error) {
	weights := ensemble.WeightProfile{}
	if len(cfg.Ensemble.Weights) > 0 {
		for name, w := range cfg.Ensemble.Weights {
			weights[ensemble.Kind(name)] = w
		}
	} else {
		p, ok := ensemble.Profile(cfg.Ensemble.Profile)
		if !ok {
			return nil, fmt.Errorf("unknown weight profile %q", cfg.Ensemble.Profile)
		}
		weights = p
	}
	return &Pipeline{
		cfg:      cfg,
		prices:   prices,
		news:     newsSvc,
		listener: listener,
		weights:  weights,
	}, nil
}

// Recommend runs the full pipeline for one symbol. The returned
// recommendation always carries a decision; ensemble, forecast, sentiment,
// and schedule sections are present when their stage succeeded.
func (p *Pipeline) Recommend(ctx context.Context, symbol string) (*types.Recommendation, error) {
	timer := logger.StartOperation(ctx, "pipeline.recommend", "symbol", symbol)
	ctx = timer.GetContext()

	series, err := p.prices.HistoricalSeries(ctx, symbol, p.cfg.HistoryDays)
	if err != nil {
		telemetry.RecordPipelineError("prices")
		timer.EndWithError(err, "symbol", symbol)
		return nil, fmt.Errorf("fetch price history for %s: %w", symbol, err)
	}
	if err := series.Validate(); err != nil {
		telemetry.RecordPipelineError("prices")
		timer.EndWithError(err, "symbol", symbol)
		return nil, err
	}

	ens := p.runEnsemble(ctx, symbol, series)
	fc := p.runForecast(ctx, symbol, series)
	records := p.runSentiment(ctx, symbol)

	var snap *ta.Snapshot
	if s, ok := ta.LatestSnapshot(series); ok {
		snap = &s
	}

	decision := advisor.Recommend(ctx, symbol, series, fc, ens, records, snap)
	if p.listener != nil {
		p.listener.OnDecision(symbol, decision)
	}
	logger.Decision(ctx, symbol, decision.Action, float64(decision.Confidence), decision.Narrative)
	telemetry.RecordRecommendation(symbol, decision.Action)

	sched := p.runSchedule(ctx, symbol, series)

	timer.End("action", decision.Action)
	return &types.Recommendation{
		Decision:  decision,
		Trade:     advisor.SimulateTrade(decision, series.LastClose()),
		Ensemble:  ens,
		Forecast:  fc,
		Sentiment: records,
		Schedule:  sched,
	}, nil
}

// runEnsemble trains the model panel. Failure of the whole panel degrades
// to a nil section; individual model failures are counted and excluded
// inside the predictor.
func (p *Pipeline) runEnsemble(ctx context.Context, symbol string, series types.PriceSeries) *types.EnsembleResult {
	cols := ta.Compute(series)
	matrix, err := features.Build(series, cols)
	if err != nil {
		telemetry.RecordPipelineError("features")
		logger.ErrorWithErr(ctx, "Feature extraction failed", err, "symbol", symbol)
		return nil
	}

	result, modelErrs, err := ensemble.Predict(ctx, matrix, p.weights, p.cfg.Ensemble.Window)
	for kind := range modelErrs {
		telemetry.RecordModelFailure(string(kind))
	}
	if err != nil {
		telemetry.RecordPipelineError("ensemble")
		logger.ErrorWithErr(ctx, "Ensemble prediction failed", err, "symbol", symbol)
		return nil
	}

	if p.listener != nil {
		p.listener.OnEnsemble(symbol, result)
	}
	return result
}

func (p *Pipeline) runForecast(ctx context.Context, symbol string, series types.PriceSeries) *types.SeasonalForecast {
	fc := forecast.Forecast(ctx, series, p.cfg.Forecast.HorizonDays)
	if fc.FallbackUsed {
		telemetry.RecordFallback("forecast")
	}
	if p.listener != nil {
		p.listener.OnForecast(symbol, fc)
	}
	return fc
}

func (p *Pipeline) runSentiment(ctx context.Context, symbol string) []types.SentimentRecord {
	if p.news == nil {
		return nil
	}
	records := p.news.ScoredHeadlines(ctx, symbol)
	if p.listener != nil {
		p.listener.OnSentiment(symbol, records)
	}
	return records
}

// runSchedule is best-effort: a schedule that cannot be built leaves the
// section empty rather than failing the recommendation.
func (p *Pipeline) runSchedule(ctx context.Context, symbol string, series types.PriceSeries) *types.TradeSchedule {
	sched, err := schedule.Build(ctx, symbol, series, p.cfg.Schedule.HorizonDays, p.cfg.Schedule.ConfidenceLevel)
	if err != nil {
		telemetry.RecordPipelineError("schedule")
		logger.ErrorWithErr(ctx, "Trade schedule failed", err, "symbol", symbol)
		return nil
	}
	if sched.FallbackUsed {
		telemetry.RecordFallback("schedule")
	}
	return sched
}
