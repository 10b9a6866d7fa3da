// Package client is a typed SDK for the college review API. It mirrors the
// wire contract of the server and carries the reorder/save state machine the
// ranking editor builds on.
package client

import "encoding/json"

// RankingItem is one applicant entry in a ranking roster.
type RankingItem struct {
	ItemID                string `json:"item_id"`
	ApplicationID         string `json:"application_id"`
	ApplicantID           string `json:"applicant_id"`
	ApplicantName         string `json:"applicant_name"`
	ApplicantExternalCode string `json:"applicant_external_code"`
	RankPosition          int    `json:"rank_position"`
	IsAllocated           bool   `json:"is_allocated"`
	ReviewStatus          string `json:"review_status"`
}

// RankingSummary is the list-endpoint projection of a ranking.
type RankingSummary struct {
	ID                   string  `json:"id"`
	RankingName          string  `json:"ranking_name"`
	SubTypeCode          string  `json:"sub_type_code"`
	AcademicYear         string  `json:"academic_year"`
	Semester             *string `json:"semester,omitempty"`
	TotalQuota           int     `json:"total_quota"`
	CollegeQuota         int     `json:"college_quota"`
	IsFinalized          bool    `json:"is_finalized"`
	DistributionExecuted bool    `json:"distribution_executed"`
	ItemCount            int     `json:"item_count"`
}

// CollegeQuotaRow is one row of the quota matrix in a ranking detail.
type CollegeQuotaRow struct {
	CollegeID   string `json:"college_id"`
	CollegeName string `json:"college_name"`
	Quota       int    `json:"quota"`
	Allocated   int    `json:"allocated"`
}

// RankingDetail is a ranking with its ordered items and quota context.
type RankingDetail struct {
	ID                    string            `json:"id"`
	RankingName           string            `json:"ranking_name"`
	SubTypeCode           string            `json:"sub_type_code"`
	SubTypeMetadata       json.RawMessage   `json:"sub_type_metadata,omitempty"`
	AcademicYear          string            `json:"academic_year"`
	Semester              *string           `json:"semester,omitempty"`
	TotalQuota            int               `json:"total_quota"`
	CollegeQuota          int               `json:"college_quota"`
	CollegeQuotaBreakdown []CollegeQuotaRow `json:"college_quota_breakdown"`
	IsFinalized           bool              `json:"is_finalized"`
	DistributionExecuted  bool              `json:"distribution_executed"`
	Items                 []RankingItem     `json:"items"`
}

// OrderEntry pins one item to a 1-based position in a persisted order.
type OrderEntry struct {
	ItemID   string `json:"item_id"`
	Position int    `json:"position"`
}

// CreateRankingRequest is the create-ranking payload. ForceNew is always
// serialized so the server never silently reuses an existing ranking without
// the caller asking for it.
type CreateRankingRequest struct {
	ScholarshipTypeID string  `json:"scholarship_type_id"`
	SubTypeCode       string  `json:"sub_type_code"`
	AcademicYear      string  `json:"academic_year"`
	Semester          *string `json:"semester,omitempty"`
	RankingName       string  `json:"ranking_name,omitempty"`
	ForceNew          bool    `json:"force_new"`
}

// ReviewScoreItem is a per-criteria score attached to a review decision.
type ReviewScoreItem struct {
	CriterionCode string  `json:"criterion_code"`
	Score         float64 `json:"score"`
	Note          string  `json:"note,omitempty"`
}

// SubmitReviewRequest captures a reviewer decision for an application.
type SubmitReviewRequest struct {
	Recommendation string            `json:"recommendation"`
	Items          []ReviewScoreItem `json:"items,omitempty"`
	Comments       string            `json:"comments,omitempty"`
}

// RedistributionInfo reports what happened to the ranking as a side effect of
// a review decision.
type RedistributionInfo struct {
	Executed       bool `json:"executed"`
	Blocked        bool `json:"blocked"`
	AllocatedCount int  `json:"allocated_count"`
	TotalQuota     int  `json:"total_quota"`
}

// Application is a scholarship application as seen by review screens.
type Application struct {
	ID           string  `json:"id"`
	StudentID    string  `json:"student_id"`
	StudentName  string  `json:"student_name"`
	ExternalCode string  `json:"external_code"`
	SubTypeCode  string  `json:"sub_type_code"`
	AcademicYear string  `json:"academic_year"`
	Semester     *string `json:"semester,omitempty"`
	ReviewStatus string  `json:"review_status"`
}

// ReviewOutcome is the review submission response. RedistributionInfo is nil
// when the decision had no distribution side effect.
type ReviewOutcome struct {
	Application        *Application        `json:"application"`
	RedistributionInfo *RedistributionInfo `json:"redistribution_info,omitempty"`
}

// ApplicationPage is one page of an application listing.
type ApplicationPage struct {
	Items []Application `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Size  int           `json:"size"`
	Pages int           `json:"pages"`
}

// DistributionResult reports the outcome of a distribution run.
type DistributionResult struct {
	RankingID        string `json:"ranking_id"`
	AllocatedCount   int    `json:"allocated_count"`
	DeallocatedCount int    `json:"deallocated_count"`
	TotalQuota       int    `json:"total_quota"`
	CollegeQuota     int    `json:"college_quota"`
}
