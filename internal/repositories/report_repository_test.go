package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jestfly/community-backend/internal/apperrors"
	"github.com/jestfly/community-backend/internal/models"
)

func TestDuplicateReportIsConflict(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresReportRepository(db)
	alice := createTestUser(t, db, "alice")
	postID := "65f000000000000000000001"

	require.NoError(t, repo.CreateReport(&models.Report{
		ReporterID: alice.ID, PostID: &postID, Reason: "spam", Status: models.ReportPending,
	}))

	err := repo.CreateReport(&models.Report{
		ReporterID: alice.ID, PostID: &postID, Reason: "spam again", Status: models.ReportPending,
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestPendingReportsExcludeResolved(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresReportRepository(db)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	postID := "65f000000000000000000001"
	commentID := uint(7)

	first := &models.Report{ReporterID: alice.ID, PostID: &postID, Reason: "spam", Status: models.ReportPending}
	require.NoError(t, repo.CreateReport(first))
	require.NoError(t, repo.CreateReport(&models.Report{
		ReporterID: bob.ID, CommentID: &commentID, Reason: "abuse", Status: models.ReportPending,
	}))

	require.NoError(t, repo.UpdateStatus(first.ID, models.ReportDismissed))

	pending, total, err := repo.GetPendingReports(0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, bob.ID, pending[0].ReporterID)

	got, err := repo.GetReportByID(first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportDismissed, got.Status)
}

func TestUpdateMissingReportIsNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostgresReportRepository(db)

	err := repo.UpdateStatus(999, models.ReportReviewed)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
