package analysis

import "context"

// Store port (interface untuk record persistence). Records live for the
// process lifetime; there is no eviction. Implementations must serialize
// concurrent calls for the same id.
type Store interface {
	Create(ctx context.Context, a *Analysis) error
	Get(ctx context.Context, id AnalysisID) (*Analysis, error)
	Put(ctx context.Context, a *Analysis) error
	Latest(ctx context.Context, limit int) ([]*Analysis, error)
}

// Analyzer port: the five stage functions of the pipeline. Each stage's
// inputs are exactly the outputs of specific earlier stages; only stage 1
// sees the raw repository URL on its own.
type Analyzer interface {
	AnalyzeTechnical(ctx context.Context, repositoryURL string) (TechnicalAssessment, error)
	AnalyzeProduct(ctx context.Context, repositoryURL string, tech TechnicalAssessment) (ProductFunction, error)
	FindComparables(ctx context.Context, product ProductFunction) ([]ComparableCompany, error)
	SizeMarket(ctx context.Context, product ProductFunction, comparables []ComparableCompany) (MarketSizing, error)
	EstimateValuation(ctx context.Context, market MarketSizing, comparables []ComparableCompany) (Valuation, error)
}

// ReportArchive port (interface untuk penyimpanan laporan akhir)
type ReportArchive interface {
	Store(ctx context.Context, a *Analysis) (string, error)
}

// FailureJournal port: records stage failures for later inspection.
type FailureJournal interface {
	Record(ctx context.Context, f StageFailure) error
	Latest(ctx context.Context, limit int) ([]StageFailure, error)
}
