package services

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReviewService syncs third-party reviews into the tenant's store and hands
// new or changed content to the analysis queue.
type ReviewService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewReviewService(db *gorm.DB, queue TaskQueue) *ReviewService {
	return &ReviewService{db: db, queue: queue}
}

// ComputeContentHash returns the SHA-256 hex digest of a review's upstream
// content. A changed hash means the review must be re-analyzed.
func ComputeContentHash(comment string, starRating *int) string {
	star := 0
	if starRating != nil {
		star = *starRating
	}
	h := sha256.Sum256([]byte(fmt.Sprintf("%d\x00%s", star, comment)))
	return fmt.Sprintf("%x", h)
}

// SyncReviewInput is one review as delivered by the external profile sync.
type SyncReviewInput struct {
	ID           string `json:"id"` // external id; empty means new record
	ReviewerName string `json:"reviewer_name"`
	StarRating   *int   `json:"star_rating"`
	Comment      string `json:"comment"`
}

// Sync upserts a batch of reviews for one tenant. A review is re-queued for
// analysis only when its upstream content changed since the last analysis.
// Returns the number of records created or updated.
func (s *ReviewService) Sync(tenantID string, items []SyncReviewInput) (int, error) {
	now := time.Now()
	synced := 0

	for i := range items {
		item := &items[i]
		if item.StarRating != nil && (*item.StarRating < 1 || *item.StarRating > 5) {
			return synced, fmt.Errorf("star rating for review %q must be between 1 and 5", item.ID)
		}

		hash := ComputeContentHash(item.Comment, item.StarRating)

		var existing models.Review
		err := gorm.ErrRecordNotFound
		if item.ID != "" {
			err = s.db.Where("id = ? AND tenant_id = ?", item.ID, tenantID).First(&existing).Error
		}
		switch {
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return synced, err

		case errors.Is(err, gorm.ErrRecordNotFound):
			review := &models.Review{
				ID:             item.ID,
				TenantID:       tenantID,
				ReviewerName:   item.ReviewerName,
				StarRating:     item.StarRating,
				Comment:        item.Comment,
				ContentHash:    hash,
				AnalysisStatus: models.AnalysisStatusPending,
				LastSyncedAt:   now,
			}
			if review.ID == "" {
				review.ID = uuid.NewString()
			}
			if err := s.db.Create(review).Error; err != nil {
				return synced, err
			}
			synced++
			s.enqueueAnalysis(review)

		case existing.ContentHash != hash:
			updates := map[string]interface{}{
				"reviewer_name":   item.ReviewerName,
				"star_rating":     item.StarRating,
				"comment":         item.Comment,
				"content_hash":    hash,
				"analysis_status": models.AnalysisStatusPending,
				"last_synced_at":  now,
			}
			if err := s.db.Model(&models.Review{}).
				Where("id = ? AND tenant_id = ?", existing.ID, tenantID).
				Updates(updates).Error; err != nil {
				return synced, err
			}
			synced++
			existing.Comment = item.Comment
			existing.StarRating = item.StarRating
			s.enqueueAnalysis(&existing)

		default:
			// Content unchanged; just record that we saw it
			s.db.Model(&models.Review{}).
				Where("id = ? AND tenant_id = ?", existing.ID, tenantID).
				Update("last_synced_at", now)
		}
	}

	return synced, nil
}

func (s *ReviewService) enqueueAnalysis(review *models.Review) {
	if s.queue == nil || review.Comment == "" {
		return
	}
	if err := s.queue.Enqueue(&AnalysisTask{
		RecordKind: RecordKindReview,
		RecordID:   review.ID,
		TenantID:   review.TenantID,
	}); err != nil {
		logger.Warnf("[Review] Failed to enqueue analysis for %s: %v", review.ID, err)
	}
}

// ListByTenant returns all reviews for one tenant, newest first.
func (s *ReviewService) ListByTenant(tenantID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.Where("tenant_id = ?", tenantID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// Reply stores the reply text and timestamp on a review. Outbound delivery
// of the reply is not handled here.
func (s *ReviewService) Reply(tenantID, reviewID, reply string) (*models.Review, error) {
	if reply == "" {
		return nil, errors.New("reply text is required")
	}

	var review models.Review
	err := s.db.Where("id = ? AND tenant_id = ?", reviewID, tenantID).First(&review).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&review).Updates(map[string]interface{}{
		"reply":      reply,
		"replied_at": now,
	}).Error; err != nil {
		return nil, err
	}

	review.Reply = reply
	review.RepliedAt = &now
	return &review, nil
}

// ApplyAnalysis writes analysis fields onto a review. The analyzed hash is
// recorded so an unchanged review is never analyzed twice; a review whose
// content changed after this analysis keeps pending status via the hash
// mismatch on the next sync.
func (s *ReviewService) ApplyAnalysis(tenantID, reviewID, contentHash string, result *AnalysisResult) error {
	now := time.Now()
	return s.db.Model(&models.Review{}).
		Where("id = ? AND tenant_id = ? AND content_hash = ?", reviewID, tenantID, contentHash).
		Updates(map[string]interface{}{
			"sentiment_score": result.SentimentScore,
			"sentiment":       result.Sentiment,
			"emotion_label":   result.EmotionLabel,
			"keywords":        result.LocalSEOKeywords,
			"analysis_status": models.AnalysisStatusCompleted,
			"analyzed_hash":   contentHash,
			"analyzed_at":     now,
		}).Error
}

// MarkAnalysisFailed flags a review whose analysis did not complete so the
// retry sweeper re-enqueues it.
func (s *ReviewService) MarkAnalysisFailed(tenantID, reviewID string) {
	if err := s.db.Model(&models.Review{}).
		Where("id = ? AND tenant_id = ? AND analysis_status = ?",
			reviewID, tenantID, models.AnalysisStatusPending).
		Update("analysis_status", models.AnalysisStatusFailed).Error; err != nil {
		logger.Warnf("[Review] Failed to mark analysis failed for %s: %v", reviewID, err)
	}
}
