// Package prompt builds the system/user messages for the five analysis
// stages. Each system prompt pins the model to a single JSON object whose
// keys match the corresponding record section exactly.
package prompt

import (
	"encoding/json"
	"fmt"
)

const outputRules = `You must produce one valid JSON object only (no markdown, no commentary, no code fences) that follows the schema below. Confidence values are in [0,1]. Monetary figures are plain numbers in USD.`

// TechnicalSystemPrompt directs stage 1: assess the repository's stack
// and complexity.
func TechnicalSystemPrompt() string {
	return `You are a senior software due-diligence analyst. ` + outputRules + `

Schema (example with empty values):
{
  "stack": ["<language or framework>"],
  "complexity": 0,
  "fileCount": 0,
  "projectType": "<string>",
  "similarProjects": [
    {"name": "<string>", "url": "<string>", "similarity": 0.0, "description": "<string>"}
  ],
  "confidence": 0.0
}

complexity is an integer from 1 (trivial) to 10 (very complex). similarity is in [0,1].`
}

// TechnicalUserPrompt asks for the stage-1 assessment of one repository.
func TechnicalUserPrompt(repositoryURL string) string {
	return fmt.Sprintf("Assess the GitHub repository at this URL and respond with the JSON per schema. URL: %s", repositoryURL)
}

// ProductSystemPrompt directs stage 2: describe the product function the
// repository implements.
func ProductSystemPrompt() string {
	return `You are a product strategist evaluating an open-source repository as a potential commercial product. ` + outputRules + `

Schema (example with empty values):
{
  "title": "<short product name>",
  "tags": ["<market tag>"],
  "useCase": "<one sentence: who uses it and why>",
  "confidence": 0.0,
  "description": "<string>"
}`
}

// ProductUserPrompt carries the repository URL plus the stage-1 output.
func ProductUserPrompt(repositoryURL string, technical any) string {
	b, _ := json.Marshal(technical)
	return fmt.Sprintf("Repository: %s\nTechnical assessment: %s\nDescribe the product function as JSON per schema.", repositoryURL, b)
}

// ComparablesSystemPrompt directs stage 3: list comparable companies.
func ComparablesSystemPrompt() string {
	return `You are a market researcher. ` + outputRules + `

Schema (example with empty values):
{
  "companies": [
    {
      "name": "<string>",
      "sector": "<string>",
      "pitch": "<one sentence>",
      "revenue": "<human figure, e.g. $400M>",
      "users": "<human figure, e.g. 30M+>",
      "funding": "<string>",
      "employees": 0,
      "growth": "<percent string, e.g. 35%>",
      "source": "crunchbase|estimated"
    }
  ]
}

List 2 to 5 companies whose product is closest to the described function. Use "estimated" as source when figures are inferred.`
}

// ComparablesUserPrompt carries the stage-2 output.
func ComparablesUserPrompt(product any) string {
	b, _ := json.Marshal(product)
	return fmt.Sprintf("Product function: %s\nList comparable companies as JSON per schema.", b)
}

// MarketSystemPrompt directs stage 4: size the market.
func MarketSystemPrompt() string {
	return `You are a market analyst producing a TAM/SAM/SOM model. ` + outputRules + `

Schema (example with empty values):
{
  "tam": 0,
  "sam": 0,
  "som": 0,
  "methodology": "<one sentence>",
  "marketTrends": {"cagr": 0, "forecast10Years": 0}
}

Invariant: 0 <= som <= sam <= tam. cagr is a percentage.`
}

// MarketUserPrompt carries the stage-2 and stage-3 outputs.
func MarketUserPrompt(product, comparables any) string {
	p, _ := json.Marshal(product)
	c, _ := json.Marshal(comparables)
	return fmt.Sprintf("Product function: %s\nComparable companies: %s\nSize the market as JSON per schema.", p, c)
}

// ValuationSystemPrompt directs stage 5: estimate a valuation range.
func ValuationSystemPrompt() string {
	return `You are a venture analyst estimating an early-stage valuation. ` + outputRules + `

Schema (example with empty values):
{
  "range": [0, 0],
  "methodology": "<one sentence>",
  "confidence": 0.0,
  "multiples": {"revenue": 0, "users": 0, "growth": 0}
}

range is [minimum, maximum] with minimum <= maximum. Multiples are non-negative factors.`
}

// ValuationUserPrompt carries the stage-4 and stage-3 outputs.
func ValuationUserPrompt(market, comparables any) string {
	m, _ := json.Marshal(market)
	c, _ := json.Marshal(comparables)
	return fmt.Sprintf("Market model: %s\nComparable companies: %s\nEstimate the valuation as JSON per schema.", m, c)
}
