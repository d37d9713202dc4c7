package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/abhinawagoo/guestloops-sub000/internal/config"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ollama/ollama/api"
	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Analyzer request content is capped before being sent upstream.
const maxAnalyzerContentLen = 4000

// jsonBlockRegex extracts the first JSON object from a model response that
// may wrap it in prose or a markdown fence.
var jsonBlockRegex = regexp.MustCompile(`(?s)\{.*\}`)

// AnalyzerService calls the external content analysis LLM. It is a black-box
// dependency: callers rely only on the request/response contract, and every
// transport or parse failure degrades to the neutral default result.
type AnalyzerService struct {
	cfg *config.AnalyzerConfig
}

func NewAnalyzerService(cfg *config.AnalyzerConfig) *AnalyzerService {
	return &AnalyzerService{cfg: cfg}
}

// AnalyzeRequest carries one record's text plus optional context.
type AnalyzeRequest struct {
	Content    string
	StarRating *int
	Source     string // "review" or "feedback"
}

// AnalysisResult is the structured sentiment/topic/keyword analysis.
type AnalysisResult struct {
	Sentiment        string   `json:"sentiment"` // positive, neutral, negative
	SentimentScore   float64  `json:"sentiment_score"`
	EmotionLabel     string   `json:"emotion_label"`
	Topics           []string `json:"topics"`
	TrendTags        []string `json:"trend_tags"`
	LocalSEOKeywords []string `json:"local_seo_keywords"`
}

// NeutralAnalysis is the substitute result for any analyzer failure.
func NeutralAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Sentiment:        "neutral",
		SentimentScore:   50,
		EmotionLabel:     "neutral",
		Topics:           []string{},
		TrendTags:        []string{},
		LocalSEOKeywords: []string{},
	}
}

// Analyze runs content analysis for one record. It never returns an error:
// analysis failure must not block score computation, so any failure path
// yields the neutral default.
func (s *AnalyzerService) Analyze(ctx context.Context, req *AnalyzeRequest) *AnalysisResult {
	if strings.TrimSpace(req.Content) == "" {
		return NeutralAnalysis()
	}

	prompt := buildAnalysisPrompt(req)

	raw, err := s.callLLM(ctx, prompt)
	if err != nil {
		logger.Warnf("[Analyzer] LLM call failed, using neutral result: %v", err)
		return NeutralAnalysis()
	}

	result, err := parseAnalysisResponse(raw)
	if err != nil {
		logger.Warnf("[Analyzer] Unparseable response, using neutral result: %v", err)
		return NeutralAnalysis()
	}

	return result
}

func buildAnalysisPrompt(req *AnalyzeRequest) string {
	content := req.Content
	if len(content) > maxAnalyzerContentLen {
		content = content[:maxAnalyzerContentLen]
	}

	var b strings.Builder
	b.WriteString(`You analyze guest feedback for a local hospitality business. Respond with JSON only, no other text, in this exact shape:
{"sentiment":"positive|neutral|negative","sentiment_score":0-100,"emotion_label":"one word","topics":["..."],"trend_tags":["..."],"local_seo_keywords":["..."]}

Limits: topics max 10, trend_tags max 5, local_seo_keywords max 10.
`)
	if req.Source != "" {
		fmt.Fprintf(&b, "Source: %s\n", req.Source)
	}
	if req.StarRating != nil {
		fmt.Fprintf(&b, "Star rating: %d/5\n", *req.StarRating)
	}
	b.WriteString("\nText:\n")
	b.WriteString(content)
	return b.String()
}

// parseAnalysisResponse extracts and validates the JSON analysis payload.
// Label and list limits follow the analyzer contract; the sentiment score is
// clamped to [0,100].
func parseAnalysisResponse(raw string) (*AnalysisResult, error) {
	block := jsonBlockRegex.FindString(raw)
	if block == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var result AnalysisResult
	if err := json.Unmarshal([]byte(block), &result); err != nil {
		return nil, err
	}

	switch result.Sentiment {
	case "positive", "neutral", "negative":
	default:
		result.Sentiment = "neutral"
	}
	if result.SentimentScore < 0 {
		result.SentimentScore = 0
	}
	if result.SentimentScore > 100 {
		result.SentimentScore = 100
	}
	if result.EmotionLabel == "" {
		result.EmotionLabel = "neutral"
	}
	result.Topics = truncateList(result.Topics, 10)
	result.TrendTags = truncateList(result.TrendTags, 5)
	result.LocalSEOKeywords = truncateList(result.LocalSEOKeywords, 10)

	return &result, nil
}

func truncateList(items []string, max int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > max {
		return items[:max]
	}
	return items
}

// callLLM dispatches to the provider-specific function based on config.
func (s *AnalyzerService) callLLM(ctx context.Context, prompt string) (string, error) {
	switch s.cfg.Provider {
	case "anthropic":
		return s.callAnthropic(ctx, prompt)
	case "ollama":
		return s.callOllama(ctx, prompt)
	case "gemini":
		return s.callGemini(ctx, prompt)
	default:
		// openai and other OpenAI-compatible services
		return s.callOpenAI(ctx, prompt)
	}
}

// callOpenAI handles OpenAI and OpenAI-compatible APIs (including custom endpoints)
func (s *AnalyzerService) callOpenAI(ctx context.Context, prompt string) (string, error) {
	clientConfig := openai.DefaultConfig(s.cfg.APIKey)
	if s.cfg.BaseURL != "" {
		clientConfig.BaseURL = s.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	temperature := float32(0.2)
	if s.cfg.Temperature > 0 {
		temperature = float32(s.cfg.Temperature)
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}

// callAnthropic handles Anthropic Claude API using the native SDK
func (s *AnalyzerService) callAnthropic(ctx context.Context, prompt string) (string, error) {
	client := anthropic.NewClient(
		option.WithAPIKey(s.cfg.APIKey),
	)

	maxTokens := int64(s.cfg.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}

	model := s.cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	resp, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	return content, nil
}

// callOllama handles Ollama API using the native SDK
func (s *AnalyzerService) callOllama(ctx context.Context, prompt string) (string, error) {
	baseURL := s.cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid Ollama base URL: %w", err)
	}
	client := api.NewClient(u, http.DefaultClient)

	model := s.cfg.Model
	if model == "" {
		model = "llama3"
	}

	var content strings.Builder
	err = client.Chat(ctx, &api.ChatRequest{
		Model: model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Options: map[string]interface{}{
			"temperature": s.cfg.Temperature,
		},
	}, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("Ollama API error: %w", err)
	}

	return content.String(), nil
}

// callGemini handles Google Gemini API using the native SDK
func (s *AnalyzerService) callGemini(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: s.cfg.APIKey,
	})
	if err != nil {
		return "", fmt.Errorf("Gemini client error: %w", err)
	}

	model := s.cfg.Model
	if model == "" {
		model = "gemini-3.0-flash"
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return resp.Text(), nil
}
