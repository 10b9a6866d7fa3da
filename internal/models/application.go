package models

import (
	"encoding/json"
	"time"
)

// ReviewStatus tracks the professor/college review decision on an application.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "PENDING"
	ReviewApproved ReviewStatus = "APPROVED"
	ReviewRejected ReviewStatus = "REJECTED"
)

// Application is a student scholarship application under college review.
type Application struct {
	ID                string          `db:"id" json:"id"`
	StudentID         string          `db:"student_id" json:"student_id"`
	StudentName       string          `db:"student_name" json:"student_name"`
	ExternalCode      string          `db:"external_code" json:"external_code"`
	ScholarshipTypeID string          `db:"scholarship_type_id" json:"scholarship_type_id"`
	SubTypeCode       string          `db:"sub_type_code" json:"sub_type_code"`
	CollegeID         string          `db:"college_id" json:"college_id"`
	AcademicYear      string          `db:"academic_year" json:"academic_year"`
	Semester          *string         `db:"semester" json:"semester,omitempty"`
	ReviewStatus      ReviewStatus    `db:"review_status" json:"review_status"`
	ReviewComments    *string         `db:"review_comments" json:"review_comments,omitempty"`
	ReviewScores      json.RawMessage `db:"review_scores" json:"review_scores,omitempty"`
	ReviewedBy        *string         `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewedAt        *time.Time      `db:"reviewed_at" json:"reviewed_at,omitempty"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// ApplicationFilter captures filtering criteria for listing applications.
type ApplicationFilter struct {
	CollegeID    string
	SubTypeCode  string
	AcademicYear string
	Semester     string
	ReviewStatus *ReviewStatus
	Page         int
	PageSize     int
}
