package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/scholarhub/college-review-api/internal/models"
)

// ApplicationRepository provides persistence for scholarship applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// FindByID loads a single application.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	const query = `SELECT * FROM applications WHERE id = $1`

	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications matching the filter with the total row count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	if filter.CollegeID == "" {
		return nil, 0, fmt.Errorf("college_id is required")
	}

	where := strings.Builder{}
	where.WriteString("WHERE college_id = $1")
	args := []interface{}{filter.CollegeID}

	if filter.SubTypeCode != "" {
		args = append(args, filter.SubTypeCode)
		fmt.Fprintf(&where, " AND sub_type_code = $%d", len(args))
	}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		fmt.Fprintf(&where, " AND academic_year = $%d", len(args))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		fmt.Fprintf(&where, " AND semester = $%d", len(args))
	}
	if filter.ReviewStatus != nil {
		args = append(args, *filter.ReviewStatus)
		fmt.Fprintf(&where, " AND review_status = $%d", len(args))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM applications " + where.String()
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	args = append(args, pageSize, (page-1)*pageSize)
	listQuery := fmt.Sprintf("SELECT * FROM applications %s ORDER BY created_at ASC LIMIT $%d OFFSET $%d",
		where.String(), len(args)-1, len(args))

	var apps []models.Application
	if err := r.db.SelectContext(ctx, &apps, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}
	return apps, total, nil
}

// UpdateReview stores the review decision. Ranking positions are untouched.
func (r *ApplicationRepository) UpdateReview(ctx context.Context, id string, status models.ReviewStatus, comments *string, scores json.RawMessage, reviewerID string, ts time.Time) error {
	const query = `
UPDATE applications
SET review_status = $2,
	review_comments = $3,
	review_scores = $4,
	reviewed_by = $5,
	reviewed_at = $6,
	updated_at = $6
WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, status, comments, scores, reviewerID, ts)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("inspect review update: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
