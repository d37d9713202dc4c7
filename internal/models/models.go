package models

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Tenant lifecycle statuses
const (
	TenantStatusActive    = "active"
	TenantStatusSuspended = "suspended"
)

// Analysis states for feedback and review records
const (
	AnalysisStatusPending   = "pending"
	AnalysisStatusCompleted = "completed"
	AnalysisStatusFailed    = "failed"
)

// User represents a system user
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Password  string         `gorm:"size:255" json:"-"` // Hashed password
	Email     string         `gorm:"size:255" json:"email"`
	Role      string         `gorm:"size:50;default:user" json:"role"` // admin, user
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	LastLogin *time.Time     `json:"last_login"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Tenant represents one business account. Slug and ID are each globally
// unique; every record below is partitioned by TenantID.
type Tenant struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Slug      string         `gorm:"uniqueIndex;size:100;not null" json:"slug"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Status    string         `gorm:"size:20;default:active" json:"status"` // active, suspended
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Feedback represents one guest survey submission.
type Feedback struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	TenantID string `gorm:"index;size:36;not null" json:"tenant_id"`

	// Aspect scores 1-5, keyed overall/cleanliness/service/...
	Scores  map[string]int    `gorm:"serializer:json" json:"scores"`
	Answers map[string]string `gorm:"serializer:json" json:"answers"`

	// Analysis fields, written at most once per record content
	SentimentScore *float64   `json:"sentiment_score"` // 0-100
	Sentiment      string     `gorm:"size:20" json:"sentiment"`
	EmotionLabel   string     `gorm:"size:50" json:"emotion_label"`
	Keywords       []string   `gorm:"serializer:json" json:"keywords"`
	AnalysisStatus string     `gorm:"size:20;default:pending" json:"analysis_status"` // pending, completed, failed
	AnalyzedAt     *time.Time `json:"analyzed_at"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review represents one third-party review synced from an external profile.
type Review struct {
	ID       string `gorm:"primaryKey;size:36" json:"id"`
	TenantID string `gorm:"index;size:36;not null" json:"tenant_id"`

	ReviewerName string     `gorm:"size:200" json:"reviewer_name"`
	StarRating   *int       `json:"star_rating"` // 1-5, absent when the source carries none
	Comment      string     `gorm:"type:text" json:"comment"`
	Reply        string     `gorm:"type:text" json:"reply"`
	RepliedAt    *time.Time `json:"replied_at"`

	// ContentHash tracks upstream content; AnalyzedHash is the hash the
	// current analysis was computed from. They differ after an upstream edit.
	ContentHash  string `gorm:"size:64" json:"-"`
	AnalyzedHash string `gorm:"size:64" json:"-"`

	SentimentScore *float64   `json:"sentiment_score"` // 0-100
	Sentiment      string     `gorm:"size:20" json:"sentiment"`
	EmotionLabel   string     `gorm:"size:50" json:"emotion_label"`
	Keywords       []string   `gorm:"serializer:json" json:"keywords"`
	AnalysisStatus string     `gorm:"size:20;default:pending" json:"analysis_status"`
	AnalyzedAt     *time.Time `json:"analyzed_at"`

	LastSyncedAt time.Time `json:"last_synced_at"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GrowthScore is the computed composite result for one tenant. One row per
// tenant; each computation replaces the previous one.
type GrowthScore struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	TenantID string `gorm:"uniqueIndex;size:36;not null" json:"tenant_id"`

	VelocityScore  int `json:"review_velocity_score"`
	RatingScore    int `json:"avg_rating_score"`
	ReplyRateScore int `json:"reply_rate_score"`
	SentimentScore int `json:"sentiment_strength_score"`
	KeywordScore   int `json:"keyword_coverage_score"`
	TrendScore     int `json:"trend_improvement_score"`
	OverallScore   int `json:"overall_score"`

	Strengths       []string `gorm:"serializer:json" json:"strengths"`
	WeakAreas       []string `gorm:"serializer:json" json:"weak_areas"`
	Recommendations []string `gorm:"serializer:json" json:"recommendations"`
	KeywordGaps     []string `gorm:"serializer:json" json:"keyword_gaps"`

	ComputedAt time.Time `json:"computed_at"`
	UpdatedAt  time.Time `json:"-"`
}

// TableName overrides
func (User) TableName() string        { return "users" }
func (Tenant) TableName() string      { return "tenants" }
func (Feedback) TableName() string    { return "feedbacks" }
func (Review) TableName() string      { return "reviews" }
func (GrowthScore) TableName() string { return "growth_scores" }

// AnalyzedRecord is the shared view over the two analyzable record kinds.
// The scoring engine aggregates sentiment and keywords through it without
// caring which variant a record is.
type AnalyzedRecord interface {
	AnalysisSentiment() (score float64, ok bool)
	AnalysisKeywords() []string
}

func (f *Feedback) AnalysisSentiment() (float64, bool) {
	if f.AnalysisStatus != AnalysisStatusCompleted || f.SentimentScore == nil {
		return 0, false
	}
	return *f.SentimentScore, true
}

func (f *Feedback) AnalysisKeywords() []string {
	if f.AnalysisStatus != AnalysisStatusCompleted {
		return nil
	}
	return f.Keywords
}

func (r *Review) AnalysisSentiment() (float64, bool) {
	if r.AnalysisStatus != AnalysisStatusCompleted || r.SentimentScore == nil {
		return 0, false
	}
	return *r.SentimentScore, true
}

func (r *Review) AnalysisKeywords() []string {
	if r.AnalysisStatus != AnalysisStatusCompleted {
		return nil
	}
	return r.Keywords
}

// AnalysisText joins the free-text answers into the analyzer input, in
// stable question order.
func (f *Feedback) AnalysisText() string {
	if len(f.Answers) == 0 {
		return ""
	}
	questions := make([]string, 0, len(f.Answers))
	for q := range f.Answers {
		questions = append(questions, q)
	}
	sort.Strings(questions)

	parts := make([]string, 0, len(questions))
	for _, q := range questions {
		if v := strings.TrimSpace(f.Answers[q]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}

// OverallScore returns the "overall" aspect score when the guest provided one.
func (f *Feedback) OverallScore() (int, bool) {
	v, ok := f.Scores["overall"]
	return v, ok
}

// HasReply reports whether a non-empty reply has been posted.
func (r *Review) HasReply() bool {
	return r.Reply != ""
}
