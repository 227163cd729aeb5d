// Package openai implements the Analyzer port on the OpenAI chat
// completion API: one JSON-constrained completion per pipeline stage.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	domain "github.com/gitworth/gitworth/internal/domain/analysis"
	"github.com/gitworth/gitworth/internal/infra/ai/prompt"
)

const maxTokens = 2048

const defaultModel = "gpt-4o-mini"

type Client struct {
	*openai.Client
	Model string
}

func NewClient(apiKey, model string) *Client {
	return &Client{Client: openai.NewClient(apiKey), Model: model}
}

// complete runs one JSON-object chat completion and unmarshals the reply.
func (c *Client) complete(ctx context.Context, system, user string, out any) error {
	model := c.Model
	if model == "" {
		model = defaultModel
	}
	req := openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.CreateChatCompletion(ctx, req)
	if err != nil {
		return fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("chat completion returned no choices")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("decode model reply: %w", err)
	}
	return nil
}

func (c *Client) AnalyzeTechnical(ctx context.Context, repositoryURL string) (domain.TechnicalAssessment, error) {
	var tech domain.TechnicalAssessment
	err := c.complete(ctx, prompt.TechnicalSystemPrompt(), prompt.TechnicalUserPrompt(repositoryURL), &tech)
	if err != nil {
		return domain.TechnicalAssessment{}, err
	}
	return tech, nil
}

func (c *Client) AnalyzeProduct(ctx context.Context, repositoryURL string, tech domain.TechnicalAssessment) (domain.ProductFunction, error) {
	var product domain.ProductFunction
	err := c.complete(ctx, prompt.ProductSystemPrompt(), prompt.ProductUserPrompt(repositoryURL, tech), &product)
	if err != nil {
		return domain.ProductFunction{}, err
	}
	return product, nil
}

func (c *Client) FindComparables(ctx context.Context, product domain.ProductFunction) ([]domain.ComparableCompany, error) {
	var reply struct {
		Companies []domain.ComparableCompany `json:"companies"`
	}
	err := c.complete(ctx, prompt.ComparablesSystemPrompt(), prompt.ComparablesUserPrompt(product), &reply)
	if err != nil {
		return nil, err
	}
	return reply.Companies, nil
}

func (c *Client) SizeMarket(ctx context.Context, product domain.ProductFunction, comparables []domain.ComparableCompany) (domain.MarketSizing, error) {
	var market domain.MarketSizing
	err := c.complete(ctx, prompt.MarketSystemPrompt(), prompt.MarketUserPrompt(product, comparables), &market)
	if err != nil {
		return domain.MarketSizing{}, err
	}
	if market.SOM < 0 || market.SOM > market.SAM || market.SAM > market.TAM {
		return domain.MarketSizing{}, fmt.Errorf("model reply violates som <= sam <= tam (tam=%v sam=%v som=%v)",
			market.TAM, market.SAM, market.SOM)
	}
	// The model sizes the market; the assumption sliders always start
	// from the default hypothesis set.
	market.Assumptions = domain.DefaultHypotheses()
	return market, nil
}

func (c *Client) EstimateValuation(ctx context.Context, market domain.MarketSizing, comparables []domain.ComparableCompany) (domain.Valuation, error) {
	var val domain.Valuation
	err := c.complete(ctx, prompt.ValuationSystemPrompt(), prompt.ValuationUserPrompt(market, comparables), &val)
	if err != nil {
		return domain.Valuation{}, err
	}
	if val.Range[0] > val.Range[1] {
		return domain.Valuation{}, fmt.Errorf("model reply has inverted valuation range [%v, %v]", val.Range[0], val.Range[1])
	}
	return val, nil
}
