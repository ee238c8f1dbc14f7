package usecase

// PipelineObserver receives notable stage outcomes for counting. The serving
// process wires a metrics-backed implementation; a nil observer disables
// observation entirely. Calls must be cheap: they run on the request path.
type PipelineObserver interface {
	// ExtractionFallback fires when the LLM constraint extraction failed and
	// the rule-based strategy answered instead.
	ExtractionFallback()
	// ScoringFallback fires at most once per rerank pass, when at least one
	// candidate fell back from the relevance oracle to the rule formula.
	ScoringFallback()
	// BalanceApplied fires when balancing actually reordered the ranking,
	// not on pass-through.
	BalanceApplied(strategy string)
	// EmptyResult fires when retrieval produced no candidates.
	EmptyResult()
	// PaddedResult fires when the pad stage appended at least one entry.
	PaddedResult()
}
