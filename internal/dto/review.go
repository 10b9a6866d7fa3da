package dto

import "github.com/scholarhub/college-review-api/internal/models"

// ReviewScoreItem is a per-criteria score attached to a review decision.
type ReviewScoreItem struct {
	CriterionCode string  `json:"criterion_code" validate:"required"`
	Score         float64 `json:"score" validate:"min=0,max=100"`
	Note          string  `json:"note"`
}

// SubmitReviewRequest captures the reviewer decision for an application.
type SubmitReviewRequest struct {
	Recommendation models.ReviewStatus `json:"recommendation" validate:"required,oneof=APPROVED REJECTED"`
	Items          []ReviewScoreItem   `json:"items" validate:"dive"`
	Comments       string              `json:"comments"`
}

// RedistributionInfo tells the client what happened to the ranking as a side
// effect of a review decision. Absent when no executed distribution was
// affected.
type RedistributionInfo struct {
	Executed       bool `json:"executed"`
	Blocked        bool `json:"blocked"`
	AllocatedCount int  `json:"allocated_count"`
	TotalQuota     int  `json:"total_quota"`
}

// ReviewResult is the review submission response.
type ReviewResult struct {
	Application        *models.Application `json:"application"`
	RedistributionInfo *RedistributionInfo `json:"redistribution_info,omitempty"`
}
