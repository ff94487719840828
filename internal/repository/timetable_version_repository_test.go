package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

var versionRowColumns = []string{"id", "year", "group_name", "version", "session_count", "published_by", "meta", "snapshot_key", "created_at"}

func TestTimetableVersionRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_versions WHERE year = $1 AND group_name = $2")).
		WithArgs("Y1", "G1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_versions")).
		WithArgs(sqlmock.AnyArg(), "Y1", "G1", 3, 12, "admin-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	version := &models.TimetableVersion{Year: "Y1", GroupName: "G1", SessionCount: 12, PublishedBy: "admin-1"}
	require.NoError(t, repo.CreateVersioned(context.Background(), nil, version))
	assert.Equal(t, 3, version.Version)
	assert.Equal(t, types.JSONText(`{}`), version.Meta)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositoryRequiresGroup(t *testing.T) {
	repo := NewTimetableVersionRepository(nil)
	err := repo.CreateVersioned(context.Background(), nil, &models.TimetableVersion{Year: "Y1"})
	assert.Error(t, err)
}

func TestTimetableVersionRepositoryListByGroup(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	rows := sqlmock.NewRows(versionRowColumns).
		AddRow("v2", "Y1", "G1", 2, 10, "admin-1", types.JSONText(`{}`), nil, time.Now()).
		AddRow("v1", "Y1", "G1", 1, 8, "admin-1", types.JSONText(`{}`), "snapshots/Y1/G1/v1.pdf", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_versions WHERE year = $1 AND group_name = $2 ORDER BY version DESC")).
		WithArgs("Y1", "G1").
		WillReturnRows(rows)

	versions, err := repo.ListByGroup(context.Background(), models.GroupKey{Year: "Y1", Group: "G1"})
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Nil(t, versions[0].SnapshotKey)
	require.NotNil(t, versions[1].SnapshotKey)
	assert.Equal(t, "snapshots/Y1/G1/v1.pdf", *versions[1].SnapshotKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositoryFindVersion(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	query := regexp.QuoteMeta("FROM timetable_versions WHERE year = $1 AND group_name = $2 AND version = $3")
	mock.ExpectQuery(query).WithArgs("Y1", "G1", 4).
		WillReturnRows(sqlmock.NewRows(versionRowColumns).AddRow("v4", "Y1", "G1", 4, 3, "admin-1", types.JSONText(`{}`), nil, time.Now()))
	mock.ExpectQuery(query).WithArgs("Y1", "G1", 9).WillReturnError(sql.ErrNoRows)

	key := models.GroupKey{Year: "Y1", Group: "G1"}
	version, err := repo.FindVersion(context.Background(), key, 4)
	require.NoError(t, err)
	assert.Equal(t, "v4", version.ID)

	_, err = repo.FindVersion(context.Background(), key, 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableVersionRepositorySetSnapshot(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewTimetableVersionRepository(db)

	query := regexp.QuoteMeta("UPDATE timetable_versions SET snapshot_key = $1")
	mock.ExpectExec(query).WithArgs("snapshots/Y1/G1/v2.pdf", "Y1", "G1", 2).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("snapshots/Y1/G1/v3.pdf", "Y1", "G1", 3).WillReturnResult(sqlmock.NewResult(0, 0))

	key := models.GroupKey{Year: "Y1", Group: "G1"}
	require.NoError(t, repo.SetSnapshot(context.Background(), key, 2, "snapshots/Y1/G1/v2.pdf"))
	assert.ErrorIs(t, repo.SetSnapshot(context.Background(), key, 3, "snapshots/Y1/G1/v3.pdf"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
