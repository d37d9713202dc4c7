package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackService persists guest survey submissions and hands them to the
// analysis queue.
type FeedbackService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewFeedbackService(db *gorm.DB, queue TaskQueue) *FeedbackService {
	return &FeedbackService{db: db, queue: queue}
}

// SubmitFeedbackRequest is one guest survey submission.
type SubmitFeedbackRequest struct {
	Scores  map[string]int    `json:"scores" binding:"required"`
	Answers map[string]string `json:"answers"`
}

// Create validates and stores a feedback record, then enqueues its content
// analysis. The record is visible immediately with analysis_status=pending.
func (s *FeedbackService) Create(tenantID string, req *SubmitFeedbackRequest) (*models.Feedback, error) {
	if len(req.Scores) == 0 {
		return nil, errors.New("at least one aspect score is required")
	}
	for aspect, score := range req.Scores {
		if aspect == "" {
			return nil, errors.New("aspect name must not be empty")
		}
		if score < 1 || score > 5 {
			return nil, fmt.Errorf("score for %q must be between 1 and 5", aspect)
		}
	}

	feedback := &models.Feedback{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		Scores:         req.Scores,
		Answers:        req.Answers,
		AnalysisStatus: models.AnalysisStatusPending,
	}

	if err := s.db.Create(feedback).Error; err != nil {
		return nil, err
	}

	if s.queue != nil && feedback.AnalysisText() != "" {
		if err := s.queue.Enqueue(&AnalysisTask{
			RecordKind: RecordKindFeedback,
			RecordID:   feedback.ID,
			TenantID:   tenantID,
		}); err != nil {
			// The retry sweeper will pick the record up later.
			logger.Warnf("[Feedback] Failed to enqueue analysis for %s: %v", feedback.ID, err)
		}
	}

	return feedback, nil
}

// ListByTenant returns all feedback records for one tenant, newest first.
func (s *FeedbackService) ListByTenant(tenantID string) ([]models.Feedback, error) {
	var feedbacks []models.Feedback
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&feedbacks).Error
	return feedbacks, err
}

// ApplyAnalysis writes analysis fields onto a feedback record. The write is
// idempotent: a record already analyzed is left untouched.
func (s *FeedbackService) ApplyAnalysis(tenantID, feedbackID string, result *AnalysisResult) error {
	now := time.Now()
	return s.db.Model(&models.Feedback{}).
		Where("id = ? AND tenant_id = ? AND analysis_status <> ?",
			feedbackID, tenantID, models.AnalysisStatusCompleted).
		Updates(map[string]interface{}{
			"sentiment_score": result.SentimentScore,
			"sentiment":       result.Sentiment,
			"emotion_label":   result.EmotionLabel,
			"keywords":        result.LocalSEOKeywords,
			"analysis_status": models.AnalysisStatusCompleted,
			"analyzed_at":     now,
		}).Error
}

// MarkAnalysisFailed flags a record whose analysis could not be persisted so
// the retry sweeper re-enqueues it.
func (s *FeedbackService) MarkAnalysisFailed(tenantID, feedbackID string) {
	if err := s.db.Model(&models.Feedback{}).
		Where("id = ? AND tenant_id = ? AND analysis_status = ?",
			feedbackID, tenantID, models.AnalysisStatusPending).
		Update("analysis_status", models.AnalysisStatusFailed).Error; err != nil {
		logger.Warnf("[Feedback] Failed to mark analysis failed for %s: %v", feedbackID, err)
	}
}
