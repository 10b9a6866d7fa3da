package models

import "time"

// SemesterYearRound is the legacy sentinel some backends stored for rankings
// that span the whole academic year. The API collapses it to an absent
// semester; it never leaves the storage layer.
const SemesterYearRound = "yearly"

// Ranking is an ordered applicant roster for one scholarship sub-type within
// a college. Items do not outlive their ranking.
type Ranking struct {
	ID                   string    `db:"id" json:"id"`
	Name                 string    `db:"name" json:"ranking_name"`
	ScholarshipTypeID    string    `db:"scholarship_type_id" json:"scholarship_type_id"`
	SubTypeCode          string    `db:"sub_type_code" json:"sub_type_code"`
	CollegeID            string    `db:"college_id" json:"college_id"`
	AcademicYear         string    `db:"academic_year" json:"academic_year"`
	Semester             *string   `db:"semester" json:"semester,omitempty"`
	TotalQuota           int       `db:"total_quota" json:"total_quota"`
	CollegeQuota         int       `db:"college_quota" json:"college_quota"`
	IsFinalized          bool      `db:"is_finalized" json:"is_finalized"`
	DistributionExecuted bool      `db:"distribution_executed" json:"distribution_executed"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time `db:"updated_at" json:"updated_at"`
}

// RankingItem is one applicant entry in a ranking. RankPosition is 1-based
// and dense: the positions of a ranking's items are always a permutation of
// 1..N.
type RankingItem struct {
	ID                    string       `db:"id" json:"item_id"`
	RankingID             string       `db:"ranking_id" json:"-"`
	ApplicationID         string       `db:"application_id" json:"application_id"`
	ApplicantID           string       `db:"applicant_id" json:"applicant_id"`
	ApplicantName         string       `db:"applicant_name" json:"applicant_name"`
	ApplicantExternalCode string       `db:"applicant_external_code" json:"applicant_external_code"`
	RankPosition          int          `db:"rank_position" json:"rank_position"`
	IsAllocated           bool         `db:"is_allocated" json:"is_allocated"`
	ReviewStatus          ReviewStatus `db:"review_status" json:"review_status"`
	CreatedAt             time.Time    `db:"created_at" json:"-"`
}

// RankingFilter captures list endpoint filters.
type RankingFilter struct {
	CollegeID    string
	AcademicYear string
	Semester     string
}
