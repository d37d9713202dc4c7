package services

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
)

const retrySweepBatchSize = 50

// RetrySweeper periodically re-enqueues records whose analysis is still
// pending or has failed, so a dropped task or an analyzer outage eventually
// resolves. The sweep plus the queue's own retries give at-least-once
// processing; ApplyAnalysis is idempotent, so duplicate delivery is harmless.
type RetrySweeper struct {
	db            *gorm.DB
	queue         TaskQueue
	cronScheduler *cron.Cron
}

func NewRetrySweeper(db *gorm.DB, queue TaskQueue) *RetrySweeper {
	return &RetrySweeper{db: db, queue: queue}
}

// Start schedules the sweep every 5 minutes.
func (s *RetrySweeper) Start() {
	s.cronScheduler = cron.New()
	if _, err := s.cronScheduler.AddFunc("*/5 * * * *", s.Sweep); err != nil {
		logger.Errorf("[RetrySweeper] Failed to schedule sweep: %v", err)
		return
	}
	s.cronScheduler.Start()
	logger.Infof("[RetrySweeper] Analysis retry sweep scheduled every 5 minutes")
}

func (s *RetrySweeper) Stop() {
	if s.cronScheduler != nil {
		s.cronScheduler.Stop()
	}
}

// Sweep re-enqueues a bounded batch of unfinished records, oldest first.
func (s *RetrySweeper) Sweep() {
	statuses := []string{models.AnalysisStatusPending, models.AnalysisStatusFailed}

	var feedbacks []models.Feedback
	if err := s.db.Where("analysis_status IN ?", statuses).
		Order("created_at ASC").Limit(retrySweepBatchSize).Find(&feedbacks).Error; err != nil {
		logger.Warnf("[RetrySweeper] Failed to load feedbacks: %v", err)
	}
	for i := range feedbacks {
		f := &feedbacks[i]
		if f.AnalysisText() == "" {
			continue
		}
		s.enqueue(&AnalysisTask{
			RecordKind: RecordKindFeedback,
			RecordID:   f.ID,
			TenantID:   f.TenantID,
		})
	}

	var reviews []models.Review
	if err := s.db.Where("analysis_status IN ?", statuses).
		Order("created_at ASC").Limit(retrySweepBatchSize).Find(&reviews).Error; err != nil {
		logger.Warnf("[RetrySweeper] Failed to load reviews: %v", err)
	}
	for i := range reviews {
		r := &reviews[i]
		if r.Comment == "" {
			continue
		}
		s.enqueue(&AnalysisTask{
			RecordKind: RecordKindReview,
			RecordID:   r.ID,
			TenantID:   r.TenantID,
		})
	}

	if len(feedbacks) > 0 || len(reviews) > 0 {
		logger.Infof("[RetrySweeper] Re-enqueued %d feedbacks, %d reviews", len(feedbacks), len(reviews))
	}
}

func (s *RetrySweeper) enqueue(task *AnalysisTask) {
	if err := s.queue.Enqueue(task); err != nil {
		logger.Warnf("[RetrySweeper] Failed to enqueue %s %s: %v", task.RecordKind, task.RecordID, err)
	}
}
