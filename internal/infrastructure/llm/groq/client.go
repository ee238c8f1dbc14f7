// Package groq integrates an OpenAI-compatible chat/embeddings endpoint
// (Groq Cloud by default) behind the extraction, scoring and embedding ports.
package groq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/infrastructure/resilience"
)

const (
	analysisMaxTokens = 1024
	scoringMaxTokens  = 200
	// Low temperature keeps extraction output consistent between calls.
	chatTemperature = 0.1
)

type Client struct {
	api        *openai.Client
	chatModel  string
	embedModel string
	executor   *resilience.Executor
}

type Config struct {
	APIKey     string
	BaseURL    string
	ChatModel  string
	EmbedModel string
	Executor   *resilience.Executor
}

func New(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	executor := cfg.Executor
	if executor == nil {
		executor = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		api:        openai.NewClientWithConfig(clientCfg),
		chatModel:  cfg.ChatModel,
		embedModel: cfg.EmbedModel,
		executor:   executor,
	}
}

// Extractor converts a free-text query into structured constraints.
type Extractor struct {
	client *Client
}

func NewExtractor(client *Client) *Extractor {
	return &Extractor{client: client}
}

func (e *Extractor) AnalyzeQuery(ctx context.Context, query string) (domain.QueryConstraints, error) {
	respText, err := e.client.chat(ctx, analysisSystemPrompt, buildAnalysisPrompt(query), analysisMaxTokens, "analyze query")
	if err != nil {
		return domain.QueryConstraints{}, err
	}

	raw, ok := extractJSONObject(respText)
	if !ok {
		return domain.QueryConstraints{}, domain.WrapError(domain.ErrExtraction, "analyze query",
			fmt.Errorf("no JSON object in response"))
	}

	var analysis struct {
		PrimaryRole         string   `json:"primary_role"`
		TechnicalSkills     []string `json:"technical_skills"`
		BehavioralSkills    []string `json:"behavioral_skills"`
		DurationConstraints struct {
			MinDurationMinutes *int `json:"min_duration_minutes"`
			MaxDurationMinutes *int `json:"max_duration_minutes"`
		} `json:"duration_constraints"`
		PreferredTestTypes []string `json:"preferred_test_types"`
	}
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return domain.QueryConstraints{}, domain.WrapError(domain.ErrExtraction, "analyze query", err)
	}

	role := analysis.PrimaryRole
	if role == "" {
		role = "Professional"
	}
	skills := make([]string, 0, len(analysis.TechnicalSkills)+len(analysis.BehavioralSkills))
	skills = append(skills, analysis.TechnicalSkills...)
	skills = append(skills, analysis.BehavioralSkills...)
	preferred := analysis.PreferredTestTypes
	if preferred == nil {
		preferred = []string{}
	}

	return domain.QueryConstraints{
		PrimaryRole:        role,
		RequiredSkills:     skills,
		IsTechnical:        len(analysis.TechnicalSkills) > 0,
		IsBehavioral:       len(analysis.BehavioralSkills) > 0,
		MinDuration:        analysis.DurationConstraints.MinDurationMinutes,
		MaxDuration:        analysis.DurationConstraints.MaxDurationMinutes,
		PreferredTestTypes: preferred,
	}, nil
}

// Scorer is the per-candidate relevance oracle.
type Scorer struct {
	client *Client
}

func NewScorer(client *Client) *Scorer {
	return &Scorer{client: client}
}

func (s *Scorer) ScoreRelevance(ctx context.Context, query string, assessment domain.Assessment) (float64, error) {
	respText, err := s.client.chat(ctx, scoringSystemPrompt, buildScoringPrompt(query, assessment), scoringMaxTokens, "score relevance")
	if err != nil {
		return 0, err
	}

	raw, ok := extractJSONObject(respText)
	if !ok {
		return 0, domain.WrapError(domain.ErrExtraction, "score relevance",
			fmt.Errorf("no JSON object in response"))
	}

	var scores struct {
		SkillRelevance   float64 `json:"skill_relevance"`
		RoleRelevance    float64 `json:"role_relevance"`
		OverallRelevance float64 `json:"overall_relevance"`
	}
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return 0, domain.WrapError(domain.ErrExtraction, "score relevance", err)
	}

	overall := scores.OverallRelevance
	if overall < 0 {
		overall = 0
	}
	if overall > 1 {
		overall = 1
	}
	return overall, nil
}

// Embedder builds vectors through the same endpoint.
type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var resp openai.EmbeddingResponse
	err := e.client.executor.Execute(ctx, "embed", func(callCtx context.Context) error {
		var callErr error
		resp, callErr = e.client.api.CreateEmbeddings(callCtx, openai.EmbeddingRequest{
			Input:          texts,
			Model:          openai.EmbeddingModel(e.client.embedModel),
			EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		})
		return callErr
	}, classifyAPIError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embed: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(resp.Data))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, fmt.Errorf("embed: vector index %d out of range", item.Index)
		}
		out[item.Index] = item.Embedding
	}
	return out, nil
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

func (c *Client) chat(ctx context.Context, system, prompt string, maxTokens int, operation string) (string, error) {
	var resp openai.ChatCompletionResponse
	err := c.executor.Execute(ctx, operation, func(callCtx context.Context) error {
		var callErr error
		resp, callErr = c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:       c.chatModel,
			Temperature: chatTemperature,
			MaxTokens:   maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
		})
		return callErr
	}, classifyAPIError)
	if err != nil {
		return "", wrapTemporaryIfNeeded(operation, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: empty completion", operation)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// extractJSONObject returns the first JSON object found in free text. The
// completion may wrap it in prose or code fences.
func extractJSONObject(raw string) (string, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1], true
	}
	return "", false
}
