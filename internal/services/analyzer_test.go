package services

import (
	"context"
	"strings"
	"testing"

	"github.com/abhinawagoo/guestloops-sub000/internal/config"
)

func TestNeutralAnalysis(t *testing.T) {
	result := NeutralAnalysis()

	if result.Sentiment != "neutral" {
		t.Errorf("Sentiment = %q, expected %q", result.Sentiment, "neutral")
	}
	if result.SentimentScore != 50 {
		t.Errorf("SentimentScore = %v, expected 50", result.SentimentScore)
	}
	if result.Topics == nil || result.TrendTags == nil || result.LocalSEOKeywords == nil {
		t.Error("list fields should be empty, not nil")
	}
}

func TestParseAnalysisResponse_CleanJSON(t *testing.T) {
	raw := `{"sentiment":"positive","sentiment_score":85,"emotion_label":"delighted","topics":["breakfast","staff"],"trend_tags":["improving"],"local_seo_keywords":["best breakfast in town"]}`

	result, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("parseAnalysisResponse() error = %v", err)
	}

	if result.Sentiment != "positive" {
		t.Errorf("Sentiment = %q, expected positive", result.Sentiment)
	}
	if result.SentimentScore != 85 {
		t.Errorf("SentimentScore = %v, expected 85", result.SentimentScore)
	}
	if len(result.Topics) != 2 {
		t.Errorf("Topics = %v, expected 2 entries", result.Topics)
	}
}

func TestParseAnalysisResponse_MarkdownFence(t *testing.T) {
	raw := "Here is the analysis:\n```json\n{\"sentiment\":\"negative\",\"sentiment_score\":15,\"emotion_label\":\"frustrated\"}\n```\nHope this helps."

	result, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("parseAnalysisResponse() error = %v", err)
	}
	if result.Sentiment != "negative" {
		t.Errorf("Sentiment = %q, expected negative", result.Sentiment)
	}
}

func TestParseAnalysisResponse_NoJSON(t *testing.T) {
	if _, err := parseAnalysisResponse("I cannot analyze this"); err == nil {
		t.Error("expected error for a response without JSON")
	}
	if _, err := parseAnalysisResponse(""); err == nil {
		t.Error("expected error for an empty response")
	}
}

func TestParseAnalysisResponse_ClampsAndDefaults(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantSentiment string
		wantScore     float64
	}{
		{"score above range", `{"sentiment":"positive","sentiment_score":140}`, "positive", 100},
		{"score below range", `{"sentiment":"negative","sentiment_score":-20}`, "negative", 0},
		{"unknown sentiment label", `{"sentiment":"ecstatic","sentiment_score":70}`, "neutral", 70},
		{"missing label", `{"sentiment_score":60}`, "neutral", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseAnalysisResponse(tt.raw)
			if err != nil {
				t.Fatalf("parseAnalysisResponse() error = %v", err)
			}
			if result.Sentiment != tt.wantSentiment {
				t.Errorf("Sentiment = %q, expected %q", result.Sentiment, tt.wantSentiment)
			}
			if result.SentimentScore != tt.wantScore {
				t.Errorf("SentimentScore = %v, expected %v", result.SentimentScore, tt.wantScore)
			}
			if result.EmotionLabel == "" {
				t.Error("EmotionLabel should default to a non-empty label")
			}
		})
	}
}

func TestParseAnalysisResponse_TruncatesLists(t *testing.T) {
	var topics, tags, keywords []string
	for i := 0; i < 20; i++ {
		topics = append(topics, "topic")
		tags = append(tags, "tag")
		keywords = append(keywords, "keyword")
	}
	raw := `{"sentiment":"neutral","sentiment_score":50,` +
		`"topics":["` + strings.Join(topics, `","`) + `"],` +
		`"trend_tags":["` + strings.Join(tags, `","`) + `"],` +
		`"local_seo_keywords":["` + strings.Join(keywords, `","`) + `"]}`

	result, err := parseAnalysisResponse(raw)
	if err != nil {
		t.Fatalf("parseAnalysisResponse() error = %v", err)
	}
	if len(result.Topics) != 10 {
		t.Errorf("Topics = %d entries, expected cap 10", len(result.Topics))
	}
	if len(result.TrendTags) != 5 {
		t.Errorf("TrendTags = %d entries, expected cap 5", len(result.TrendTags))
	}
	if len(result.LocalSEOKeywords) != 10 {
		t.Errorf("LocalSEOKeywords = %d entries, expected cap 10", len(result.LocalSEOKeywords))
	}
}

func TestBuildAnalysisPrompt(t *testing.T) {
	req := &AnalyzeRequest{
		Content:    "The breakfast was amazing",
		StarRating: intPtr(5),
		Source:     "review",
	}

	prompt := buildAnalysisPrompt(req)

	if !strings.Contains(prompt, "The breakfast was amazing") {
		t.Error("prompt should contain the record text")
	}
	if !strings.Contains(prompt, "Star rating: 5/5") {
		t.Error("prompt should mention the star rating")
	}
	if !strings.Contains(prompt, "Source: review") {
		t.Error("prompt should mention the source")
	}
	if !strings.Contains(prompt, "JSON") {
		t.Error("prompt should demand JSON output")
	}
}

func TestBuildAnalysisPrompt_TruncatesContent(t *testing.T) {
	req := &AnalyzeRequest{Content: strings.Repeat("a", maxAnalyzerContentLen+500)}

	prompt := buildAnalysisPrompt(req)

	if strings.Contains(prompt, strings.Repeat("a", maxAnalyzerContentLen+1)) {
		t.Error("content should be capped before being sent upstream")
	}
}

func TestAnalyze_EmptyContentIsNeutral(t *testing.T) {
	svc := NewAnalyzerService(&config.AnalyzerConfig{Provider: "openai"})

	result := svc.Analyze(context.Background(), &AnalyzeRequest{Content: "   "})

	if result.Sentiment != "neutral" || result.SentimentScore != 50 {
		t.Errorf("empty content should yield the neutral result, got %+v", result)
	}
}

func TestAnalyze_UnreachableProviderDegradesToNeutral(t *testing.T) {
	svc := NewAnalyzerService(&config.AnalyzerConfig{
		Provider: "openai",
		BaseURL:  "http://127.0.0.1:1", // nothing listens here
		APIKey:   "test",
		Model:    "gpt-4o-mini",
	})

	result := svc.Analyze(context.Background(), &AnalyzeRequest{Content: "great stay"})

	if result.Sentiment != "neutral" || result.SentimentScore != 50 {
		t.Errorf("analyzer failure should yield the neutral result, got %+v", result)
	}
}

func TestTruncateList(t *testing.T) {
	if got := truncateList(nil, 5); got == nil || len(got) != 0 {
		t.Errorf("truncateList(nil) = %v, expected empty slice", got)
	}
	if got := truncateList([]string{"a", "b"}, 5); len(got) != 2 {
		t.Errorf("truncateList short list = %v, expected unchanged", got)
	}
	if got := truncateList([]string{"a", "b", "c"}, 2); len(got) != 2 {
		t.Errorf("truncateList = %v, expected cap 2", got)
	}
}
