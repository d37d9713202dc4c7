package services

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/abhinawagoo/guestloops-sub000/internal/models"
	"github.com/abhinawagoo/guestloops-sub000/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Window bounds for trend comparison
const (
	MinWindowDays     = 7
	MaxWindowDays     = 365
	DefaultWindowDays = 30
)

// Reference ceilings for linear normalization
const (
	velocityWeeklyCeiling  = 5.0  // 5 new records per week scores 100
	keywordCoverageCeiling = 20.0 // 20 distinct keywords scores 100
)

// Composite weights
const (
	weightVelocity  = 0.15
	weightRating    = 0.25
	weightReplyRate = 0.20
	weightSentiment = 0.15
	weightKeyword   = 0.10
	weightTrend     = 0.15
)

// Narrative list bounds
const (
	maxStrengths       = 6
	maxWeakAreas       = 5
	maxRecommendations = 5
)

const (
	genericRecommendation = "Keep collecting guest feedback to unlock tailored recommendations"
	noDataRecommendation  = "Collect more guest feedback and reviews to generate insights"
	fallbackKeywordGap    = "Encourage guests to mention your location and services in their reviews"
)

// localSEOTargets are the topics a well-covered local profile mentions; any
// target absent from the tenant's analyzed keywords becomes a keyword gap.
var localSEOTargets = []string{
	"location",
	"service",
	"staff",
	"cleanliness",
	"breakfast",
	"wifi",
	"parking",
	"value",
	"family friendly",
}

// ErrTenantNotFound is returned when the tenant identifier does not resolve.
// It is the only scoring failure surfaced as a client error.
var ErrTenantNotFound = errors.New("tenant not found")

// SubScores are the six normalized 0-100 inputs to the composite.
type SubScores struct {
	Velocity  int `json:"review_velocity_score"`
	Rating    int `json:"avg_rating_score"`
	ReplyRate int `json:"reply_rate_score"`
	Sentiment int `json:"sentiment_strength_score"`
	Keyword   int `json:"keyword_coverage_score"`
	Trend     int `json:"trend_improvement_score"`
}

// GrowthScoreService computes the Local Growth Score for one tenant: six
// normalized sub-scores, a weighted composite, and a rule-based narrative.
// Computation is request-driven; concurrent computations for the same tenant
// are allowed, and the idempotent upsert makes the last write win.
type GrowthScoreService struct {
	db       *gorm.DB
	tenants  *TenantService
	analyzer *AnalyzerService
	feedback *FeedbackService
	reviews  *ReviewService

	now func() time.Time
}

func NewGrowthScoreService(db *gorm.DB, tenants *TenantService, analyzer *AnalyzerService,
	feedback *FeedbackService, reviews *ReviewService) *GrowthScoreService {
	return &GrowthScoreService{
		db:       db,
		tenants:  tenants,
		analyzer: analyzer,
		feedback: feedback,
		reviews:  reviews,
		now:      time.Now,
	}
}

// ClampWindowDays bounds a requested window length to [7, 365] days;
// non-positive values fall back to the 30-day default.
func ClampWindowDays(days int) int {
	if days <= 0 {
		return DefaultWindowDays
	}
	if days < MinWindowDays {
		return MinWindowDays
	}
	if days > MaxWindowDays {
		return MaxWindowDays
	}
	return days
}

// Compute runs the full scoring pipeline for one tenant and upserts the
// result. Every store read below is filtered by the resolved tenant id; that
// filter is the tenant isolation mechanism.
func (s *GrowthScoreService) Compute(ctx context.Context, tenantID string, windowDays int) (*models.GrowthScore, error) {
	window := ClampWindowDays(windowDays)

	tenant, err := s.tenants.ResolveByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	var feedbacks []models.Feedback
	if err := s.db.Where("tenant_id = ?", tenant.ID).Find(&feedbacks).Error; err != nil {
		return nil, err
	}
	var reviews []models.Review
	if err := s.db.Where("tenant_id = ?", tenant.ID).Find(&reviews).Error; err != nil {
		return nil, err
	}

	now := s.now()

	// No data at all: fixed fallback, no analyzer call, no durable write.
	if len(feedbacks) == 0 && len(reviews) == 0 {
		return EmptyGrowthScore(tenant.ID, now), nil
	}

	s.backfillAnalysis(ctx, tenant.ID, feedbacks, reviews)

	sub := computeSubScores(feedbacks, reviews, window, now)
	keywords := distinctKeywords(feedbacks, reviews)
	strengths, weakAreas, recommendations, keywordGaps := buildNarrative(sub, keywords)

	result := &models.GrowthScore{
		TenantID:        tenant.ID,
		VelocityScore:   sub.Velocity,
		RatingScore:     sub.Rating,
		ReplyRateScore:  sub.ReplyRate,
		SentimentScore:  sub.Sentiment,
		KeywordScore:    sub.Keyword,
		TrendScore:      sub.Trend,
		OverallScore:    compositeScore(sub),
		Strengths:       strengths,
		WeakAreas:       weakAreas,
		Recommendations: recommendations,
		KeywordGaps:     keywordGaps,
		ComputedAt:      now,
	}

	// Insert-or-replace keyed by tenant: one result per tenant at a time.
	if err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "tenant_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"velocity_score", "rating_score", "reply_rate_score",
			"sentiment_score", "keyword_score", "trend_score", "overall_score",
			"strengths", "weak_areas", "recommendations", "keyword_gaps",
			"computed_at", "updated_at",
		}),
	}).Create(result).Error; err != nil {
		// The caller still gets the computed result; the next computation
		// will overwrite whatever is stored.
		logger.Warnf("[GrowthScore] Failed to persist result for tenant %s: %v", tenant.ID, err)
	}

	logger.Infof("[GrowthScore] Tenant %s scored %d (window=%dd, %d feedbacks, %d reviews)",
		tenant.ID, result.OverallScore, window, len(feedbacks), len(reviews))

	return result, nil
}

// Get returns the last stored result for a tenant, or nil when none exists.
func (s *GrowthScoreService) Get(tenantID string) (*models.GrowthScore, error) {
	tenant, err := s.tenants.ResolveByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	var score models.GrowthScore
	err = s.db.Where("tenant_id = ?", tenant.ID).First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &score, nil
}

// backfillAnalysis analyzes records that have no analysis yet, or whose
// upstream content changed since the last analysis. Per-record failures are
// absorbed: the record simply contributes defaults to the aggregation.
func (s *GrowthScoreService) backfillAnalysis(ctx context.Context, tenantID string,
	feedbacks []models.Feedback, reviews []models.Review) {

	for i := range feedbacks {
		f := &feedbacks[i]
		if f.AnalysisStatus == models.AnalysisStatusCompleted {
			continue
		}
		text := f.AnalysisText()
		if text == "" {
			continue
		}

		var overall *int
		if v, ok := f.OverallScore(); ok {
			overall = &v
		}
		result := s.analyzer.Analyze(ctx, &AnalyzeRequest{
			Content:    text,
			StarRating: overall,
			Source:     "feedback",
		})
		if err := s.feedback.ApplyAnalysis(tenantID, f.ID, result); err != nil {
			logger.Warnf("[GrowthScore] Failed to persist feedback analysis %s: %v", f.ID, err)
			continue
		}

		score := result.SentimentScore
		f.SentimentScore = &score
		f.Sentiment = result.Sentiment
		f.EmotionLabel = result.EmotionLabel
		f.Keywords = result.LocalSEOKeywords
		f.AnalysisStatus = models.AnalysisStatusCompleted
	}

	for i := range reviews {
		r := &reviews[i]
		if r.AnalysisStatus == models.AnalysisStatusCompleted && r.AnalyzedHash == r.ContentHash {
			continue
		}
		if r.Comment == "" {
			continue
		}

		result := s.analyzer.Analyze(ctx, &AnalyzeRequest{
			Content:    r.Comment,
			StarRating: r.StarRating,
			Source:     "review",
		})
		if err := s.reviews.ApplyAnalysis(tenantID, r.ID, r.ContentHash, result); err != nil {
			logger.Warnf("[GrowthScore] Failed to persist review analysis %s: %v", r.ID, err)
			continue
		}

		score := result.SentimentScore
		r.SentimentScore = &score
		r.Sentiment = result.Sentiment
		r.EmotionLabel = result.EmotionLabel
		r.Keywords = result.LocalSEOKeywords
		r.AnalysisStatus = models.AnalysisStatusCompleted
		r.AnalyzedHash = r.ContentHash
	}
}

// EmptyGrowthScore is the fixed result for a tenant with no records.
func EmptyGrowthScore(tenantID string, now time.Time) *models.GrowthScore {
	return &models.GrowthScore{
		TenantID:        tenantID,
		VelocityScore:   0,
		RatingScore:     0,
		ReplyRateScore:  0,
		SentimentScore:  0,
		KeywordScore:    0,
		TrendScore:      50,
		OverallScore:    0,
		Strengths:       []string{},
		WeakAreas:       []string{},
		Recommendations: []string{noDataRecommendation},
		KeywordGaps:     []string{fallbackKeywordGap},
		ComputedAt:      now,
	}
}

// computeSubScores derives the six sub-scores from a tenant's full record
// set. The "current" window is [now-window, now] and "previous" is
// [now-2*window, now-window]; a record landing exactly on the boundary under
// concurrent writes may fall in either window, which is acceptable for an
// advisory metric.
func computeSubScores(feedbacks []models.Feedback, reviews []models.Review, windowDays int, now time.Time) SubScores {
	currentStart := now.AddDate(0, 0, -windowDays)
	previousStart := now.AddDate(0, 0, -2*windowDays)

	var sub SubScores

	// Review velocity: current-window volume against the weekly ceiling
	countCurrent := 0
	for i := range reviews {
		if inWindow(reviews[i].CreatedAt, currentStart, now) {
			countCurrent++
		}
	}
	for i := range feedbacks {
		if inWindow(feedbacks[i].CreatedAt, currentStart, now) {
			countCurrent++
		}
	}
	perWeek := float64(countCurrent) / (float64(windowDays) / 7.0)
	sub.Velocity = normalizeScore(perWeek, 0, velocityWeeklyCeiling)

	// Average rating: all-time mean of stars and feedback overall scores
	ratingSum, ratingN := 0.0, 0
	for i := range reviews {
		if reviews[i].StarRating != nil {
			ratingSum += float64(*reviews[i].StarRating)
			ratingN++
		}
	}
	for i := range feedbacks {
		if v, ok := feedbacks[i].OverallScore(); ok {
			ratingSum += float64(v)
			ratingN++
		}
	}
	if ratingN > 0 {
		sub.Rating = normalizeScore(ratingSum/float64(ratingN), 1, 5)
	}

	// Reply rate: share of all-time reviews carrying a non-empty reply
	if len(reviews) > 0 {
		replied := 0
		for i := range reviews {
			if reviews[i].HasReply() {
				replied++
			}
		}
		sub.ReplyRate = int(math.Round(float64(replied) / float64(len(reviews)) * 100))
	}

	// Sentiment strength: mean stored sentiment, neutral 50 when unanalyzed
	sentimentSum, sentimentN := 0.0, 0
	forEachAnalyzed(feedbacks, reviews, func(rec models.AnalyzedRecord) {
		if score, ok := rec.AnalysisSentiment(); ok {
			sentimentSum += score
			sentimentN++
		}
	})
	if sentimentN > 0 {
		sub.Sentiment = clampInt(int(math.Round(sentimentSum/float64(sentimentN))), 0, 100)
	} else {
		sub.Sentiment = 50
	}

	// Keyword coverage: distinct keywords against the reference ceiling
	sub.Keyword = normalizeScore(float64(len(distinctKeywords(feedbacks, reviews))), 0, keywordCoverageCeiling)

	// Trend improvement: rating delta and volume growth across the windows
	sub.Trend = trendScore(feedbacks, reviews, previousStart, currentStart, now)

	return sub
}

func trendScore(feedbacks []models.Feedback, reviews []models.Review, previousStart, currentStart, now time.Time) int {
	var (
		countCur, countPrev         int
		ratingSumCur, ratingSumPrev float64
		ratingNCur, ratingNPrev     int
	)

	observe := func(created time.Time, rating float64, rated bool) {
		switch {
		case inWindow(created, currentStart, now):
			countCur++
			if rated {
				ratingSumCur += rating
				ratingNCur++
			}
		case inWindow(created, previousStart, currentStart):
			countPrev++
			if rated {
				ratingSumPrev += rating
				ratingNPrev++
			}
		}
	}

	for i := range reviews {
		r := &reviews[i]
		if r.StarRating != nil {
			observe(r.CreatedAt, float64(*r.StarRating), true)
		} else {
			observe(r.CreatedAt, 0, false)
		}
	}
	for i := range feedbacks {
		f := &feedbacks[i]
		if v, ok := f.OverallScore(); ok {
			observe(f.CreatedAt, float64(v), true)
		} else {
			observe(f.CreatedAt, 0, false)
		}
	}

	raw := 50.0

	// An empty previous window contributes nothing beyond the base of 50.
	if ratingNPrev > 0 && ratingNCur > 0 {
		avgCur := ratingSumCur / float64(ratingNCur)
		avgPrev := ratingSumPrev / float64(ratingNPrev)
		raw += 20 * (avgCur - avgPrev)
	}
	if countPrev > 0 {
		growth := float64(countCur-countPrev) / float64(countPrev)
		raw += 100 * math.Min(0.5, growth)
	}

	return clampInt(int(math.Round(raw)), 0, 100)
}

// compositeScore combines the six sub-scores with fixed weights.
func compositeScore(sub SubScores) int {
	weighted := weightVelocity*float64(sub.Velocity) +
		weightRating*float64(sub.Rating) +
		weightReplyRate*float64(sub.ReplyRate) +
		weightSentiment*float64(sub.Sentiment) +
		weightKeyword*float64(sub.Keyword) +
		weightTrend*float64(sub.Trend)
	return clampInt(int(math.Round(weighted)), 0, 100)
}

// buildNarrative converts the sub-scores into strengths, weak areas with
// paired recommendations, and keyword gaps. Rules fire independently in a
// fixed order so the output is deterministic for a given input.
func buildNarrative(sub SubScores, keywords []string) (strengths, weakAreas, recommendations, keywordGaps []string) {
	strengths = []string{}
	weakAreas = []string{}
	recommendations = []string{}

	if sub.Rating >= 70 {
		strengths = append(strengths, "Guests consistently rate their experience highly")
	}
	if sub.ReplyRate >= 70 {
		strengths = append(strengths, "Strong review response rate")
	}
	if sub.Sentiment >= 65 {
		strengths = append(strengths, "Positive sentiment across guest feedback")
	}
	if sub.Velocity >= 60 {
		strengths = append(strengths, "Healthy flow of new reviews and feedback")
	}
	if sub.Keyword >= 60 {
		strengths = append(strengths, "Guest reviews cover a broad range of topics")
	}
	if sub.Trend >= 60 {
		strengths = append(strengths, "Ratings and review volume are trending upward")
	}

	if sub.Rating < 50 {
		weakAreas = append(weakAreas, "Below-average guest ratings")
		recommendations = append(recommendations, "Follow up with unhappy guests and fix the most-mentioned issues")
	}
	if sub.ReplyRate < 40 {
		weakAreas = append(weakAreas, "Most reviews go unanswered")
		recommendations = append(recommendations, "Reply to new reviews within 24-48 hours")
	}
	if sub.Sentiment < 40 {
		weakAreas = append(weakAreas, "Negative sentiment in guest feedback")
		recommendations = append(recommendations, "Address the recurring complaints called out in feedback text")
	}
	if sub.Velocity < 30 {
		weakAreas = append(weakAreas, "Few new reviews coming in")
		recommendations = append(recommendations, "Ask happy guests for a review at checkout")
	}
	if sub.Keyword < 40 {
		weakAreas = append(weakAreas, "Guests mention few searchable topics")
		recommendations = append(recommendations, "Encourage guests to mention specific services and your location")
	}
	if sub.Trend < 40 {
		weakAreas = append(weakAreas, "Scores are trending down versus the previous period")
		recommendations = append(recommendations, "Investigate what changed over the last period")
	}

	if len(recommendations) == 0 {
		recommendations = append(recommendations, genericRecommendation)
	}

	keywordGaps = keywordGapsFor(keywords)

	if len(strengths) > maxStrengths {
		strengths = strengths[:maxStrengths]
	}
	if len(weakAreas) > maxWeakAreas {
		weakAreas = weakAreas[:maxWeakAreas]
	}
	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}

	return strengths, weakAreas, recommendations, keywordGaps
}

// keywordGapsFor lists the local SEO targets absent from the tenant's
// analyzed keywords. Without any analyzed keywords the fixed fallback string
// is returned instead.
func keywordGapsFor(keywords []string) []string {
	if len(keywords) == 0 {
		return []string{fallbackKeywordGap}
	}

	gaps := []string{}
	for _, target := range localSEOTargets {
		found := false
		for _, kw := range keywords {
			if strings.Contains(kw, target) {
				found = true
				break
			}
		}
		if !found {
			gaps = append(gaps, target)
		}
	}
	return gaps
}

// distinctKeywords collects the case-insensitive distinct keyword strings
// across all analyzed records, sorted for stable output.
func distinctKeywords(feedbacks []models.Feedback, reviews []models.Review) []string {
	seen := make(map[string]struct{})
	forEachAnalyzed(feedbacks, reviews, func(rec models.AnalyzedRecord) {
		for _, kw := range rec.AnalysisKeywords() {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				seen[kw] = struct{}{}
			}
		}
	})

	keywords := make([]string, 0, len(seen))
	for kw := range seen {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return keywords
}

// forEachAnalyzed visits every record through the shared AnalyzedRecord view.
func forEachAnalyzed(feedbacks []models.Feedback, reviews []models.Review, visit func(models.AnalyzedRecord)) {
	for i := range feedbacks {
		visit(&feedbacks[i])
	}
	for i := range reviews {
		visit(&reviews[i])
	}
}

// inWindow reports start < t <= end.
func inWindow(t, start, end time.Time) bool {
	return t.After(start) && !t.After(end)
}

// normalizeScore linearly maps value from [min, max] to [0, 100], clamped at
// both ends.
func normalizeScore(value, min, max float64) int {
	if max <= min {
		return 0
	}
	score := (value - min) / (max - min) * 100
	return clampInt(int(math.Round(score)), 0, 100)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
