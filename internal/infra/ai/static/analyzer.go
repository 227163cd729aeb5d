// Package static implements the Analyzer port with deterministic canned
// sections. It serves deployments without an OpenAI key and keeps local
// development and demos reproducible. An optional per-stage delay makes
// the polling contract observable.
package static

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "github.com/gitworth/gitworth/internal/domain/analysis"
)

type Analyzer struct {
	// StageDelay is slept before each stage returns, to simulate the
	// outbound work a real stage function performs.
	StageDelay time.Duration
}

func NewAnalyzer(stageDelay time.Duration) *Analyzer {
	return &Analyzer{StageDelay: stageDelay}
}

// wait sleeps for the configured delay, honouring cancellation.
func (a *Analyzer) wait(ctx context.Context) error {
	if a.StageDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(a.StageDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// repoName extracts "owner/name" from a validated repository URL.
func repoName(repositoryURL string) string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(repositoryURL, "https://github.com/"), "/")
	return trimmed
}

func (a *Analyzer) AnalyzeTechnical(ctx context.Context, repositoryURL string) (domain.TechnicalAssessment, error) {
	if err := a.wait(ctx); err != nil {
		return domain.TechnicalAssessment{}, err
	}
	return domain.TechnicalAssessment{
		Stack:       []string{"TypeScript", "React", "Next.js", "Tailwind CSS"},
		Complexity:  7,
		FileCount:   156,
		ProjectType: "Web Application",
		SimilarProjects: []domain.SimilarProject{
			{
				Name:        "Next.js",
				URL:         "https://github.com/vercel/next.js",
				Similarity:  0.85,
				Description: "React framework for production",
			},
			{
				Name:        "Create React App",
				URL:         "https://github.com/facebook/create-react-app",
				Similarity:  0.72,
				Description: "Set up modern web app by running one command",
			},
		},
		Confidence: 0.88,
	}, nil
}

func (a *Analyzer) AnalyzeProduct(ctx context.Context, repositoryURL string, tech domain.TechnicalAssessment) (domain.ProductFunction, error) {
	if err := a.wait(ctx); err != nil {
		return domain.ProductFunction{}, err
	}
	return domain.ProductFunction{
		Title:       "Repository Analysis Platform",
		Tags:        []string{"SaaS", "Developer Tools", "Analytics"},
		UseCase:     "Developers analyze GitHub repositories to understand market potential and technical complexity",
		Confidence:  0.82,
		Description: fmt.Sprintf("AI-powered analysis of %s (%s)", repoName(repositoryURL), tech.ProjectType),
	}, nil
}

func (a *Analyzer) FindComparables(ctx context.Context, product domain.ProductFunction) ([]domain.ComparableCompany, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	return []domain.ComparableCompany{
		{
			Name:      "GitHub",
			Sector:    "Developer Tools",
			Pitch:     "Platform for version control and collaboration",
			Revenue:   "$1B+",
			Users:     "100M+",
			Funding:   "Acquired by Microsoft for $7.5B",
			Employees: 3000,
			Growth:    "20%",
			Source:    "crunchbase",
		},
		{
			Name:      "GitLab",
			Sector:    "DevOps Platform",
			Pitch:     "Complete DevOps platform",
			Revenue:   "$400M",
			Users:     "30M+",
			Funding:   "IPO - $11B market cap",
			Employees: 1500,
			Growth:    "35%",
			Source:    "crunchbase",
		},
	}, nil
}

func (a *Analyzer) SizeMarket(ctx context.Context, product domain.ProductFunction, comparables []domain.ComparableCompany) (domain.MarketSizing, error) {
	if err := a.wait(ctx); err != nil {
		return domain.MarketSizing{}, err
	}
	return domain.MarketSizing{
		TAM:         50_000_000_000,
		SAM:         5_000_000_000,
		SOM:         50_000_000,
		Methodology: "Bottom-up analysis based on developer tools market",
		Assumptions: domain.DefaultHypotheses(),
		Trends: domain.MarketTrends{
			CAGR:            22,
			Forecast10Years: 125_000_000_000,
		},
	}, nil
}

func (a *Analyzer) EstimateValuation(ctx context.Context, market domain.MarketSizing, comparables []domain.ComparableCompany) (domain.Valuation, error) {
	if err := a.wait(ctx); err != nil {
		return domain.Valuation{}, err
	}
	return domain.Valuation{
		Range:       [2]float64{500_000, 2_000_000},
		Methodology: "Revenue multiples based on similar SaaS companies",
		Confidence:  0.75,
		Multiples:   domain.Multiples{Revenue: 8.5, Users: 25, Growth: 15},
	}, nil
}
