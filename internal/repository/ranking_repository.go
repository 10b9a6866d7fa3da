package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
)

// RankingRepository provides persistence for rankings and their ordered items.
type RankingRepository struct {
	db *sqlx.DB
}

// NewRankingRepository constructs the repository.
func NewRankingRepository(db *sqlx.DB) *RankingRepository {
	return &RankingRepository{db: db}
}

// List returns ranking summaries for a college, optionally filtered by
// academic year and semester.
func (r *RankingRepository) List(ctx context.Context, filter models.RankingFilter) ([]dto.RankingSummary, error) {
	if filter.CollegeID == "" {
		return nil, fmt.Errorf("college_id is required")
	}

	query := strings.Builder{}
	query.WriteString(`
SELECT
	r.id,
	r.name,
	r.sub_type_code,
	r.academic_year,
	r.semester,
	r.total_quota,
	r.college_quota,
	r.is_finalized,
	r.distribution_executed,
	COUNT(ri.id) AS item_count
FROM rankings r
LEFT JOIN ranking_items ri ON ri.ranking_id = r.id
WHERE r.college_id = $1`)

	args := []interface{}{filter.CollegeID}
	if filter.AcademicYear != "" {
		args = append(args, filter.AcademicYear)
		fmt.Fprintf(&query, " AND r.academic_year = $%d", len(args))
	}
	if filter.Semester != "" {
		args = append(args, filter.Semester)
		fmt.Fprintf(&query, " AND r.semester = $%d", len(args))
	}
	query.WriteString("\nGROUP BY r.id\nORDER BY r.created_at DESC")

	var items []dto.RankingSummary
	if err := r.db.SelectContext(ctx, &items, query.String(), args...); err != nil {
		return nil, fmt.Errorf("list rankings: %w", err)
	}
	return items, nil
}

// FindByID loads a single ranking row.
func (r *RankingRepository) FindByID(ctx context.Context, id string) (*models.Ranking, error) {
	const query = `SELECT * FROM rankings WHERE id = $1`

	var ranking models.Ranking
	if err := r.db.GetContext(ctx, &ranking, query, id); err != nil {
		return nil, err
	}
	return &ranking, nil
}

// FindByScope returns the ranking covering a sub-type scope, if any. Used to
// reuse an existing ranking when force_new is not requested.
func (r *RankingRepository) FindByScope(ctx context.Context, typeID, subTypeCode, collegeID, academicYear string, semester *string) (*models.Ranking, error) {
	const query = `
SELECT * FROM rankings
WHERE scholarship_type_id = $1
	AND sub_type_code = $2
	AND college_id = $3
	AND academic_year = $4
	AND semester IS NOT DISTINCT FROM $5
ORDER BY created_at DESC
LIMIT 1`

	var ranking models.Ranking
	if err := r.db.GetContext(ctx, &ranking, query, typeID, subTypeCode, collegeID, academicYear, semester); err != nil {
		return nil, err
	}
	return &ranking, nil
}

// ListItems returns the ranking's items in rank order, with applicant fields
// and review status joined from the owning applications.
func (r *RankingRepository) ListItems(ctx context.Context, rankingID string) ([]models.RankingItem, error) {
	const query = `
SELECT
	ri.id,
	ri.ranking_id,
	ri.application_id,
	a.student_id AS applicant_id,
	a.student_name AS applicant_name,
	a.external_code AS applicant_external_code,
	ri.rank_position,
	ri.is_allocated,
	a.review_status,
	ri.created_at
FROM ranking_items ri
JOIN applications a ON a.id = ri.application_id
WHERE ri.ranking_id = $1
ORDER BY ri.rank_position ASC`

	var items []models.RankingItem
	if err := r.db.SelectContext(ctx, &items, query, rankingID); err != nil {
		return nil, fmt.Errorf("list ranking items: %w", err)
	}
	return items, nil
}

// Create inserts the ranking and seeds its items from matching applications,
// assigning dense initial positions by application submission time.
func (r *RankingRepository) Create(ctx context.Context, ranking *models.Ranking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ranking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertRanking = `
INSERT INTO rankings (id, name, scholarship_type_id, sub_type_code, college_id, academic_year, semester,
	total_quota, college_quota, is_finalized, distribution_executed, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE, $10, $10)`
	if _, err = tx.ExecContext(ctx, insertRanking,
		ranking.ID, ranking.Name, ranking.ScholarshipTypeID, ranking.SubTypeCode, ranking.CollegeID,
		ranking.AcademicYear, ranking.Semester, ranking.TotalQuota, ranking.CollegeQuota, ranking.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert ranking: %w", err)
	}

	const seedItems = `
INSERT INTO ranking_items (id, ranking_id, application_id, rank_position, is_allocated, created_at)
SELECT gen_random_uuid(), $1, a.id,
	ROW_NUMBER() OVER (ORDER BY a.created_at ASC, a.id ASC),
	FALSE, $2
FROM applications a
WHERE a.scholarship_type_id = $3
	AND a.sub_type_code = $4
	AND a.college_id = $5
	AND a.academic_year = $6
	AND a.semester IS NOT DISTINCT FROM $7`
	if _, err = tx.ExecContext(ctx, seedItems,
		ranking.ID, ranking.CreatedAt, ranking.ScholarshipTypeID, ranking.SubTypeCode,
		ranking.CollegeID, ranking.AcademicYear, ranking.Semester,
	); err != nil {
		return fmt.Errorf("seed ranking items: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit ranking: %w", err)
	}
	return nil
}

// UpdateOrder persists a full reorder in one transaction. Every item of the
// ranking must appear in entries; the caller validates the permutation.
func (r *RankingRepository) UpdateOrder(ctx context.Context, rankingID string, entries []dto.OrderEntry) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reorder transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedIDs []string
	if err = tx.SelectContext(ctx, &lockedIDs, `SELECT id FROM ranking_items WHERE ranking_id = $1 FOR UPDATE`, rankingID); err != nil {
		return fmt.Errorf("lock ranking items: %w", err)
	}
	if len(lockedIDs) != len(entries) {
		return fmt.Errorf("order carries %d entries, ranking has %d items", len(entries), len(lockedIDs))
	}

	values := strings.Builder{}
	args := []interface{}{rankingID}
	for i, entry := range entries {
		if i > 0 {
			values.WriteString(", ")
		}
		args = append(args, entry.ItemID, entry.Position)
		fmt.Fprintf(&values, "($%d::uuid, $%d::int)", len(args)-1, len(args))
	}

	query := fmt.Sprintf(`
UPDATE ranking_items AS ri
SET rank_position = v.position
FROM (VALUES %s) AS v(item_id, position)
WHERE ri.id = v.item_id AND ri.ranking_id = $1`, values.String())

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ranking order: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("inspect reorder result: %w", err)
	}
	if int(affected) != len(entries) {
		return fmt.Errorf("order references %d unknown items", len(entries)-int(affected))
	}

	if _, err = tx.ExecContext(ctx, `UPDATE rankings SET updated_at = $2 WHERE id = $1`, rankingID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch ranking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}

// ApplyAllocations replaces the allocation marks of a ranking and records
// that distribution has been executed.
func (r *RankingRepository) ApplyAllocations(ctx context.Context, rankingID string, allocatedItemIDs []string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin distribution transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE ranking_items SET is_allocated = FALSE WHERE ranking_id = $1`, rankingID); err != nil {
		return fmt.Errorf("clear allocations: %w", err)
	}
	if len(allocatedItemIDs) > 0 {
		if _, err = tx.ExecContext(ctx,
			`UPDATE ranking_items SET is_allocated = TRUE WHERE ranking_id = $1 AND id = ANY($2)`,
			rankingID, pq.Array(allocatedItemIDs),
		); err != nil {
			return fmt.Errorf("apply allocations: %w", err)
		}
	}
	if _, err = tx.ExecContext(ctx,
		`UPDATE rankings SET distribution_executed = TRUE, updated_at = $2 WHERE id = $1`,
		rankingID, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("mark distribution executed: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit distribution: %w", err)
	}
	return nil
}

// SetFinalized toggles the finalize lock.
func (r *RankingRepository) SetFinalized(ctx context.Context, id string, finalized bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE rankings SET is_finalized = $2, updated_at = $3 WHERE id = $1`,
		id, finalized, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set finalized: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("inspect finalize result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the ranking and its items.
func (r *RankingRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM ranking_items WHERE ranking_id = $1`, id); err != nil {
		return fmt.Errorf("delete ranking items: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM rankings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete ranking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("inspect delete result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// CountAllocatedElsewhere counts allocations in other rankings of the same
// sub-type scope, so distribution can honor the shared total quota.
func (r *RankingRepository) CountAllocatedElsewhere(ctx context.Context, typeID, subTypeCode, academicYear string, semester *string, excludeRankingID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM ranking_items ri
JOIN rankings r ON r.id = ri.ranking_id
WHERE r.scholarship_type_id = $1
	AND r.sub_type_code = $2
	AND r.academic_year = $3
	AND r.semester IS NOT DISTINCT FROM $4
	AND r.id <> $5
	AND ri.is_allocated`

	var count int
	if err := r.db.GetContext(ctx, &count, query, typeID, subTypeCode, academicYear, semester, excludeRankingID); err != nil {
		return 0, fmt.Errorf("count allocations elsewhere: %w", err)
	}
	return count, nil
}

// FindForApplication returns the ranking holding an item for the application,
// or sql.ErrNoRows when the application is not ranked.
func (r *RankingRepository) FindForApplication(ctx context.Context, applicationID string) (*models.Ranking, error) {
	const query = `
SELECT r.*
FROM rankings r
JOIN ranking_items ri ON ri.ranking_id = r.id
WHERE ri.application_id = $1
ORDER BY r.created_at DESC
LIMIT 1`

	var ranking models.Ranking
	if err := r.db.GetContext(ctx, &ranking, query, applicationID); err != nil {
		return nil, err
	}
	return &ranking, nil
}
