package interfaces

import "stock-advisor/internal/types"

// PipelineListener observes intermediate pipeline stages as they complete.
// Every method may be called with the zero value of its stage when that
// stage was skipped. Implementations must not block.
type PipelineListener interface {
	OnEnsemble(symbol string, result *types.EnsembleResult)
	OnForecast(symbol string, forecast *types.SeasonalForecast)
	OnSentiment(symbol string, records []types.SentimentRecord)
	OnDecision(symbol string, decision types.Decision)
}
