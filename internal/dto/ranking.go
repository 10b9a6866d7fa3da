package dto

import (
	"encoding/json"

	"github.com/scholarhub/college-review-api/internal/models"
)

// CreateRankingRequest payload for creating a ranking. ForceNew skips the
// reuse of an existing ranking for the same year/semester/sub-type scope.
type CreateRankingRequest struct {
	ScholarshipTypeID string  `json:"scholarship_type_id" validate:"required"`
	SubTypeCode       string  `json:"sub_type_code" validate:"required"`
	AcademicYear      string  `json:"academic_year" validate:"required"`
	Semester          *string `json:"semester"`
	RankingName       string  `json:"ranking_name"`
	ForceNew          bool    `json:"force_new"`
}

// OrderEntry pins one item to a 1-based position in the new order.
type OrderEntry struct {
	ItemID   string `json:"item_id" validate:"required"`
	Position int    `json:"position" validate:"required,min=1"`
}

// RankingSummary is the list-endpoint projection of a ranking.
type RankingSummary struct {
	ID                   string  `db:"id" json:"id"`
	RankingName          string  `db:"name" json:"ranking_name"`
	SubTypeCode          string  `db:"sub_type_code" json:"sub_type_code"`
	AcademicYear         string  `db:"academic_year" json:"academic_year"`
	Semester             *string `db:"semester" json:"semester,omitempty"`
	TotalQuota           int     `db:"total_quota" json:"total_quota"`
	CollegeQuota         int     `db:"college_quota" json:"college_quota"`
	IsFinalized          bool    `db:"is_finalized" json:"is_finalized"`
	DistributionExecuted bool    `db:"distribution_executed" json:"distribution_executed"`
	ItemCount            int     `db:"item_count" json:"item_count"`
}

// CollegeQuotaRow is one row of the quota matrix in a ranking detail.
type CollegeQuotaRow struct {
	CollegeID   string `db:"college_id" json:"college_id"`
	CollegeName string `db:"college_name" json:"college_name"`
	Quota       int    `db:"quota" json:"quota"`
	Allocated   int    `db:"allocated" json:"allocated"`
}

// RankingDetail materializes a ranking with its ordered items and quota context.
type RankingDetail struct {
	ID                    string               `json:"id"`
	RankingName           string               `json:"ranking_name"`
	CollegeID             string               `json:"college_id"`
	SubTypeCode           string               `json:"sub_type_code"`
	SubTypeMetadata       json.RawMessage      `json:"sub_type_metadata,omitempty"`
	AcademicYear          string               `json:"academic_year"`
	Semester              *string              `json:"semester,omitempty"`
	TotalQuota            int                  `json:"total_quota"`
	CollegeQuota          int                  `json:"college_quota"`
	CollegeQuotaBreakdown []CollegeQuotaRow    `json:"college_quota_breakdown"`
	IsFinalized           bool                 `json:"is_finalized"`
	DistributionExecuted  bool                 `json:"distribution_executed"`
	Items                 []models.RankingItem `json:"items"`
}

// DistributionResult reports the outcome of a quota-matrix distribution run.
type DistributionResult struct {
	RankingID        string `json:"ranking_id"`
	AllocatedCount   int    `json:"allocated_count"`
	DeallocatedCount int    `json:"deallocated_count"`
	TotalQuota       int    `json:"total_quota"`
	CollegeQuota     int    `json:"college_quota"`
}
