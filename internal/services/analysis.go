package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
	"gorm.io/gorm"
)

// AnalysisService processes analysis tasks: it loads the record, calls the
// external analyzer, and persists the result. Analyzer failures degrade to
// the neutral result, so a processed record always ends up completed; only a
// store failure leaves it for the retry sweeper.
type AnalysisService struct {
	db        *gorm.DB
	analyzer  *AnalyzerService
	feedbacks *FeedbackService
	reviews   *ReviewService
}

func NewAnalysisService(db *gorm.DB, analyzer *AnalyzerService, feedbacks *FeedbackService, reviews *ReviewService) *AnalysisService {
	return &AnalysisService{
		db:        db,
		analyzer:  analyzer,
		feedbacks: feedbacks,
		reviews:   reviews,
	}
}

// ProcessTask handles one queued analysis task. Idempotent: a record that is
// already analyzed for its current content is skipped.
func (s *AnalysisService) ProcessTask(ctx context.Context, task *AnalysisTask) error {
	switch task.RecordKind {
	case RecordKindFeedback:
		return s.processFeedback(ctx, task)
	case RecordKindReview:
		return s.processReview(ctx, task)
	default:
		logger.Warnf("[Analysis] Unknown record kind %q, dropping task", task.RecordKind)
		return nil
	}
}

func (s *AnalysisService) processFeedback(ctx context.Context, task *AnalysisTask) error {
	var feedback models.Feedback
	err := s.db.Where("id = ? AND tenant_id = ?", task.RecordID, task.TenantID).First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnf("[Analysis] Feedback %s not found, dropping task", task.RecordID)
			return nil
		}
		return err
	}

	if feedback.AnalysisStatus == models.AnalysisStatusCompleted {
		return nil
	}

	var overall *int
	if v, ok := feedback.OverallScore(); ok {
		overall = &v
	}
	result := s.analyzer.Analyze(ctx, &AnalyzeRequest{
		Content:    feedback.AnalysisText(),
		StarRating: overall,
		Source:     "feedback",
	})

	if err := s.feedbacks.ApplyAnalysis(task.TenantID, feedback.ID, result); err != nil {
		s.feedbacks.MarkAnalysisFailed(task.TenantID, feedback.ID)
		return fmt.Errorf("persist feedback analysis: %w", err)
	}

	logger.Infof("[Analysis] Feedback %s analyzed: sentiment=%s score=%.0f",
		feedback.ID, result.Sentiment, result.SentimentScore)
	return nil
}

func (s *AnalysisService) processReview(ctx context.Context, task *AnalysisTask) error {
	var review models.Review
	err := s.db.Where("id = ? AND tenant_id = ?", task.RecordID, task.TenantID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warnf("[Analysis] Review %s not found, dropping task", task.RecordID)
			return nil
		}
		return err
	}

	// Already analyzed for the current content
	if review.AnalysisStatus == models.AnalysisStatusCompleted && review.AnalyzedHash == review.ContentHash {
		return nil
	}

	result := s.analyzer.Analyze(ctx, &AnalyzeRequest{
		Content:    review.Comment,
		StarRating: review.StarRating,
		Source:     "review",
	})

	if err := s.reviews.ApplyAnalysis(task.TenantID, review.ID, review.ContentHash, result); err != nil {
		s.reviews.MarkAnalysisFailed(task.TenantID, review.ID)
		return fmt.Errorf("persist review analysis: %w", err)
	}

	logger.Infof("[Analysis] Review %s analyzed: sentiment=%s score=%.0f",
		review.ID, result.Sentiment, result.SentimentScore)
	return nil
}
