package models

import (
	"encoding/json"
	"time"
)

// ScholarshipType groups sub-types under a named programme for an academic year.
type ScholarshipType struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// ScholarshipSubType carries the quota envelope distributed across colleges.
type ScholarshipSubType struct {
	ID                string          `db:"id" json:"id"`
	ScholarshipTypeID string          `db:"scholarship_type_id" json:"scholarship_type_id"`
	Code              string          `db:"code" json:"code"`
	Name              string          `db:"name" json:"name"`
	TotalQuota        int             `db:"total_quota" json:"total_quota"`
	Metadata          json.RawMessage `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// CollegeQuota is one row of the quota matrix for a sub-type.
type CollegeQuota struct {
	SubTypeID   string `db:"sub_type_id" json:"sub_type_id"`
	CollegeID   string `db:"college_id" json:"college_id"`
	CollegeName string `db:"college_name" json:"college_name"`
	Quota       int    `db:"quota" json:"quota"`
}
