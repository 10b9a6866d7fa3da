package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholarhub/college-review-api/internal/dto"
	"github.com/scholarhub/college-review-api/internal/models"
)

func newRankingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestRankingRepositoryList(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "sub_type_code", "academic_year", "semester",
		"total_quota", "college_quota", "is_finalized", "distribution_executed", "item_count"}).
		AddRow("r1", "Merit 2026", "merit", "2026/2027", nil, 10, 4, false, false, 7)
	mock.ExpectQuery("SELECT(.|\n)+FROM rankings r").
		WithArgs("college-1", "2026/2027").
		WillReturnRows(rows)

	result, err := repo.List(context.Background(), models.RankingFilter{CollegeID: "college-1", AcademicYear: "2026/2027"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Merit 2026", result[0].RankingName)
	assert.Equal(t, 7, result[0].ItemCount)
}

func TestRankingRepositoryListRequiresCollege(t *testing.T) {
	db, _, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	_, err := repo.List(context.Background(), models.RankingFilter{})
	assert.Error(t, err)
}

func TestRankingRepositoryFindByScope(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	rows := sqlmock.NewRows([]string{"id", "name", "scholarship_type_id", "sub_type_code", "college_id",
		"academic_year", "semester", "total_quota", "college_quota", "is_finalized", "distribution_executed",
		"created_at", "updated_at"}).
		AddRow("r1", "Merit 2026", "st1", "merit", "college-1", "2026/2027", nil, 10, 4, false, false, time.Now(), time.Now())
	mock.ExpectQuery("SELECT \\* FROM rankings").
		WithArgs("st1", "merit", "college-1", "2026/2027", nil).
		WillReturnRows(rows)

	ranking, err := repo.FindByScope(context.Background(), "st1", "merit", "college-1", "2026/2027", nil)
	require.NoError(t, err)
	assert.Equal(t, "r1", ranking.ID)
	assert.Nil(t, ranking.Semester)
}

func TestRankingRepositoryCreateSeedsItems(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rankings").
		WithArgs("r1", "Merit 2026", "st1", "merit", "college-1", "2026/2027", nil, 10, 4, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO ranking_items").
		WithArgs("r1", now, "st1", "merit", "college-1", "2026/2027", nil).
		WillReturnResult(sqlmock.NewResult(1, 5))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Ranking{
		ID:                "r1",
		Name:              "Merit 2026",
		ScholarshipTypeID: "st1",
		SubTypeCode:       "merit",
		CollegeID:         "college-1",
		AcademicYear:      "2026/2027",
		TotalQuota:        10,
		CollegeQuota:      4,
		CreatedAt:         now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRankingRepositoryUpdateOrder(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM ranking_items").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i1").AddRow("i2").AddRow("i3"))
	mock.ExpectExec("UPDATE ranking_items AS ri").
		WithArgs("r1", "i3", 1, "i2", 2, "i1", 3).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE rankings SET updated_at").
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateOrder(context.Background(), "r1", []dto.OrderEntry{
		{ItemID: "i3", Position: 1},
		{ItemID: "i2", Position: 2},
		{ItemID: "i1", Position: 3},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRankingRepositoryUpdateOrderCountMismatch(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM ranking_items").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i1").AddRow("i2").AddRow("i3"))
	mock.ExpectRollback()

	err := repo.UpdateOrder(context.Background(), "r1", []dto.OrderEntry{
		{ItemID: "i1", Position: 1},
		{ItemID: "i2", Position: 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 entries")
}

func TestRankingRepositoryUpdateOrderUnknownItem(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM ranking_items").
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("i1").AddRow("i2"))
	mock.ExpectExec("UPDATE ranking_items AS ri").
		WithArgs("r1", "i1", 1, "zz", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	err := repo.UpdateOrder(context.Background(), "r1", []dto.OrderEntry{
		{ItemID: "i1", Position: 1},
		{ItemID: "zz", Position: 2},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown items")
}

func TestRankingRepositoryApplyAllocations(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ranking_items SET is_allocated = FALSE").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("UPDATE ranking_items SET is_allocated = TRUE").
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE rankings SET distribution_executed").
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.ApplyAllocations(context.Background(), "r1", []string{"i1", "i2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRankingRepositoryApplyAllocationsEmpty(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE ranking_items SET is_allocated = FALSE").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("UPDATE rankings SET distribution_executed").
		WithArgs("r1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ApplyAllocations(context.Background(), "r1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRankingRepositorySetFinalizedMissing(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	mock.ExpectExec("UPDATE rankings SET is_finalized").
		WithArgs("missing", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetFinalized(context.Background(), "missing", true)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRankingRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM ranking_items").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM rankings").
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRankingRepositoryCountAllocatedElsewhere(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("st1", "merit", "2026/2027", nil, "r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	count, err := repo.CountAllocatedElsewhere(context.Background(), "st1", "merit", "2026/2027", nil, "r1")
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestRankingRepositoryFindForApplicationNotRanked(t *testing.T) {
	db, mock, cleanup := newRankingRepoMock(t)
	defer cleanup()

	repo := NewRankingRepository(db)
	mock.ExpectQuery("SELECT r\\.\\*").
		WithArgs("app-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindForApplication(context.Background(), "app-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
