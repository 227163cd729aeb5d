package analysis

import (
	"time"
)

// ID tipe untuk Analysis
type AnalysisID string

// Status enum
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// NumStages is the number of pipeline stages; the final stage is the
// completion transition itself and produces no section of its own.
const NumStages = 6

// SimilarProject value object (part of the technical assessment)
type SimilarProject struct {
	Name        string  `json:"name"`
	URL         string  `json:"url"`
	Similarity  float64 `json:"similarity"`
	Description string  `json:"description,omitempty"`
}

// TechnicalAssessment is the output of stage 1.
type TechnicalAssessment struct {
	Stack           []string         `json:"stack"`
	Complexity      int              `json:"complexity"`
	FileCount       int              `json:"fileCount"`
	ProjectType     string           `json:"projectType"`
	SimilarProjects []SimilarProject `json:"similarProjects"`
	Confidence      float64          `json:"confidence"`
}

// ProductFunction is the output of stage 2.
type ProductFunction struct {
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	UseCase     string   `json:"useCase"`
	Confidence  float64  `json:"confidence"`
	Description string   `json:"description,omitempty"`
}

// ComparableCompany is one entry of the stage-3 output.
type ComparableCompany struct {
	Name      string `json:"name"`
	Sector    string `json:"sector"`
	Pitch     string `json:"pitch"`
	Revenue   string `json:"revenue"`
	Users     string `json:"users"`
	Funding   string `json:"funding"`
	Employees int    `json:"employees"`
	Growth    string `json:"growth"`
	Source    string `json:"source"`
}

// Hypothesis is one bounded, user-adjustable numeric assumption.
// Invariant: Min <= Value <= Max must hold before the recalculation
// engine is invoked; the engine itself neither clamps nor rejects.
type Hypothesis struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

// MarketTrends value object inside the market-sizing model
type MarketTrends struct {
	CAGR            float64 `json:"cagr"`
	Forecast10Years float64 `json:"forecast10Years"`
}

// MarketSizing is the output of stage 4. Invariant: 0 <= SOM <= SAM <= TAM.
type MarketSizing struct {
	TAM         float64      `json:"tam"`
	SAM         float64      `json:"sam"`
	SOM         float64      `json:"som"`
	Methodology string       `json:"methodology"`
	Assumptions []Hypothesis `json:"assumptions"`
	Trends      MarketTrends `json:"marketTrends"`
}

// Multiples value object inside the valuation model
type Multiples struct {
	Revenue float64 `json:"revenue"`
	Users   float64 `json:"users"`
	Growth  float64 `json:"growth"`
}

// Valuation is the output of stage 5. Range is [minimum, maximum].
type Valuation struct {
	Range       [2]float64 `json:"range"`
	Methodology string     `json:"methodology"`
	Confidence  float64    `json:"confidence"`
	Multiples   Multiples  `json:"multiples"`
}

// Aggregate Root: Analysis, the progressively-filled result record for
// one pipeline run. CurrentStep counts completed stages, so a reader
// observing CurrentStep == N can rely on sections 1..N being populated.
type Analysis struct {
	ID            AnalysisID          `json:"id"`
	RepositoryURL string              `json:"repositoryUrl"`
	CreatedAt     time.Time           `json:"timestamp"`
	Status        Status              `json:"status"`
	CurrentStep   int                 `json:"currentStep"`
	Technical     TechnicalAssessment `json:"technicalAnalysis"`
	Product       ProductFunction     `json:"productFunction"`
	Comparables   []ComparableCompany `json:"similarCompanies"`
	Market        MarketSizing        `json:"marketAnalysis"`
	Valuation     Valuation           `json:"valuationEstimate"`
}

// NewAnalysis builds a pending record with every section at its empty
// default and the default hypothesis set attached as initial assumptions.
func NewAnalysis(id AnalysisID, repositoryURL string, createdAt time.Time) *Analysis {
	return &Analysis{
		ID:            id,
		RepositoryURL: repositoryURL,
		CreatedAt:     createdAt,
		Status:        StatusPending,
		CurrentStep:   0,
		Technical: TechnicalAssessment{
			Stack:           []string{},
			SimilarProjects: []SimilarProject{},
		},
		Product: ProductFunction{
			Tags: []string{},
		},
		Comparables: []ComparableCompany{},
		Market: MarketSizing{
			Assumptions: DefaultHypotheses(),
		},
	}
}

// Terminal reports whether no further transition can occur.
func (a *Analysis) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusError
}

// Clone returns a deep copy so store readers never share slices with
// the record the orchestrator is still mutating.
func (a *Analysis) Clone() *Analysis {
	c := *a
	c.Technical.Stack = append([]string(nil), a.Technical.Stack...)
	c.Technical.SimilarProjects = append([]SimilarProject(nil), a.Technical.SimilarProjects...)
	c.Product.Tags = append([]string(nil), a.Product.Tags...)
	c.Comparables = append([]ComparableCompany(nil), a.Comparables...)
	c.Market.Assumptions = append([]Hypothesis(nil), a.Market.Assumptions...)
	return &c
}

// DefaultHypotheses returns the initial assumption set for the market
// model. Bounds and values mirror the hypothesis sliders exposed to
// users; the recalculation engine falls back to these values when a
// submitted set is missing a key.
func DefaultHypotheses() []Hypothesis {
	return []Hypothesis{
		{
			Key:         "avgRevenue",
			Label:       "Average Revenue per User",
			Value:       20,
			Unit:        "€/month",
			Min:         5,
			Max:         500,
			Description: "Average monthly revenue per SaaS user",
		},
		{
			Key:         "marketShare",
			Label:       "Target Market Share",
			Value:       1,
			Unit:        "%",
			Min:         0.1,
			Max:         10,
			Description: "Realistic market share for MVP launch",
		},
		{
			Key:         "margin",
			Label:       "Gross Margin",
			Value:       60,
			Unit:        "%",
			Min:         20,
			Max:         90,
			Description: "Expected gross profit margin",
		},
		{
			Key:         "growthRate",
			Label:       "Market Growth Rate",
			Value:       20,
			Unit:        "%/year",
			Min:         5,
			Max:         50,
			Description: "Annual market growth rate",
		},
	}
}

// StageFailure is a journal entry for a stage that aborted a run.
type StageFailure struct {
	AnalysisID AnalysisID `json:"analysis_id"`
	Stage      int        `json:"stage"`
	StageName  string     `json:"stage_name"`
	Message    string     `json:"message"`
	OccurredAt time.Time  `json:"occurred_at"`
}
