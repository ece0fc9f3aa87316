package types

import "fmt"

// InsufficientDataError reports too few historical rows for the requested
// window. Fatal to the request that raised it.
type InsufficientDataError struct {
	Need, Have int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: need %d rows, have %d", e.Need, e.Have)
}

// FeatureExtractionError reports that no usable rows survived feature
// construction and cleaning.
type FeatureExtractionError struct {
	Reason string
}

func (e *FeatureExtractionError) Error() string {
	return "feature extraction failed: " + e.Reason
}

// AllModelsFailedError reports that every model in the ensemble panel failed
// to train. Individual model failures are absorbed; this one is not.
type AllModelsFailedError struct {
	Attempted int
}

func (e *AllModelsFailedError) Error() string {
	return fmt.Sprintf("all %d ensemble models failed to train", e.Attempted)
}

// SeriesOrderError reports a violation of the strictly-increasing-dates
// invariant of a PriceSeries.
type SeriesOrderError struct {
	Index int
}

func (e *SeriesOrderError) Error() string {
	return fmt.Sprintf("price series dates not strictly increasing at row %d", e.Index)
}
