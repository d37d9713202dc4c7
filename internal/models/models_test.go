package models

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestFeedback_AnalysisSentiment(t *testing.T) {
	f := &Feedback{SentimentScore: fptr(80), AnalysisStatus: AnalysisStatusCompleted}
	score, ok := f.AnalysisSentiment()
	if !ok || score != 80 {
		t.Errorf("AnalysisSentiment() = (%v, %v), expected (80, true)", score, ok)
	}

	// Pending analysis contributes nothing even if a score is present
	f = &Feedback{SentimentScore: fptr(80), AnalysisStatus: AnalysisStatusPending}
	if _, ok := f.AnalysisSentiment(); ok {
		t.Error("pending feedback should report no sentiment")
	}

	f = &Feedback{AnalysisStatus: AnalysisStatusCompleted}
	if _, ok := f.AnalysisSentiment(); ok {
		t.Error("completed feedback without a score should report no sentiment")
	}
}

func TestReview_AnalysisSentiment(t *testing.T) {
	r := &Review{SentimentScore: fptr(35), AnalysisStatus: AnalysisStatusCompleted}
	score, ok := r.AnalysisSentiment()
	if !ok || score != 35 {
		t.Errorf("AnalysisSentiment() = (%v, %v), expected (35, true)", score, ok)
	}

	r = &Review{SentimentScore: fptr(35), AnalysisStatus: AnalysisStatusFailed}
	if _, ok := r.AnalysisSentiment(); ok {
		t.Error("failed review should report no sentiment")
	}
}

func TestAnalyzedRecord_Interface(t *testing.T) {
	records := []AnalyzedRecord{
		&Feedback{SentimentScore: fptr(60), Keywords: []string{"staff"}, AnalysisStatus: AnalysisStatusCompleted},
		&Review{SentimentScore: fptr(40), Keywords: []string{"wifi"}, AnalysisStatus: AnalysisStatusCompleted},
	}

	var sum float64
	var keywords []string
	for _, rec := range records {
		if score, ok := rec.AnalysisSentiment(); ok {
			sum += score
		}
		keywords = append(keywords, rec.AnalysisKeywords()...)
	}

	if sum != 100 {
		t.Errorf("sentiment sum = %v, expected 100", sum)
	}
	if len(keywords) != 2 {
		t.Errorf("keywords = %v, expected both kinds to contribute", keywords)
	}
}

func TestFeedback_AnalysisText(t *testing.T) {
	f := &Feedback{Answers: map[string]string{
		"q2_improve": "More parking",
		"q1_liked":   "The breakfast",
		"q3_other":   "   ",
	}}

	text := f.AnalysisText()
	expected := "The breakfast\nMore parking"
	if text != expected {
		t.Errorf("AnalysisText() = %q, expected %q", text, expected)
	}

	if (&Feedback{}).AnalysisText() != "" {
		t.Error("no answers should yield empty analysis text")
	}
}

func TestFeedback_OverallScore(t *testing.T) {
	f := &Feedback{Scores: map[string]int{"overall": 4, "service": 5}}
	if v, ok := f.OverallScore(); !ok || v != 4 {
		t.Errorf("OverallScore() = (%d, %v), expected (4, true)", v, ok)
	}

	f = &Feedback{Scores: map[string]int{"service": 5}}
	if _, ok := f.OverallScore(); ok {
		t.Error("missing overall aspect should report not ok")
	}
}

func TestReview_HasReply(t *testing.T) {
	if (&Review{}).HasReply() {
		t.Error("empty reply should report false")
	}
	if !(&Review{Reply: "thank you"}).HasReply() {
		t.Error("non-empty reply should report true")
	}
}
