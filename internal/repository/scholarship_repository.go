package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
)

// ScholarshipRepository reads scholarship types, sub-types and the quota matrix.
type ScholarshipRepository struct {
	db *sqlx.DB
}

// NewScholarshipRepository constructs the repository.
func NewScholarshipRepository(db *sqlx.DB) *ScholarshipRepository {
	return &ScholarshipRepository{db: db}
}

// FindSubType loads a sub-type by scholarship type and code.
func (r *ScholarshipRepository) FindSubType(ctx context.Context, scholarshipTypeID, code string) (*models.ScholarshipSubType, error) {
	const query = `SELECT * FROM scholarship_sub_types WHERE scholarship_type_id = $1 AND code = $2`

	var subType models.ScholarshipSubType
	if err := r.db.GetContext(ctx, &subType, query, scholarshipTypeID, code); err != nil {
		return nil, err
	}
	return &subType, nil
}

// CollegeQuota returns the quota matrix cell for one college, zero when the
// college has no row.
func (r *ScholarshipRepository) CollegeQuota(ctx context.Context, subTypeID, collegeID string) (int, error) {
	const query = `SELECT COALESCE(SUM(quota), 0) FROM college_quotas WHERE sub_type_id = $1 AND college_id = $2`

	var quota int
	if err := r.db.GetContext(ctx, &quota, query, subTypeID, collegeID); err != nil {
		return 0, fmt.Errorf("college quota: %w", err)
	}
	return quota, nil
}

// QuotaBreakdown returns the full quota matrix for a sub-type together with
// current allocation counts per college.
func (r *ScholarshipRepository) QuotaBreakdown(ctx context.Context, subType *models.ScholarshipSubType) ([]dto.CollegeQuotaRow, error) {
	const query = `
SELECT
	cq.college_id,
	cq.college_name,
	cq.quota,
	COALESCE(al.allocated, 0) AS allocated
FROM college_quotas cq
LEFT JOIN (
	SELECT r.college_id, COUNT(*) AS allocated
	FROM ranking_items ri
	JOIN rankings r ON r.id = ri.ranking_id
	WHERE r.scholarship_type_id = $1
		AND r.sub_type_code = $2
		AND ri.is_allocated
	GROUP BY r.college_id
) al ON al.college_id = cq.college_id
WHERE cq.sub_type_id = $3
ORDER BY cq.college_name ASC`

	var rows []dto.CollegeQuotaRow
	if err := r.db.SelectContext(ctx, &rows, query, subType.ScholarshipTypeID, subType.Code, subType.ID); err != nil {
		return nil, fmt.Errorf("quota breakdown: %w", err)
	}
	return rows, nil
}
