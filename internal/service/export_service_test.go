package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

type publishedReaderStub struct {
	view *dto.GridView
	err  error
}

func (p publishedReaderStub) ReadPublished(ctx context.Context, year, group string) (*dto.GridView, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.view, nil
}

type snapshotVersionStub struct {
	versions map[int]*models.TimetableVersion
}

func (s *snapshotVersionStub) FindVersion(ctx context.Context, key models.GroupKey, version int) (*models.TimetableVersion, error) {
	record, ok := s.versions[version]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

func (s *snapshotVersionStub) SetSnapshot(ctx context.Context, key models.GroupKey, version int, snapshotKey string) error {
	record, ok := s.versions[version]
	if !ok {
		return sql.ErrNoRows
	}
	record.SnapshotKey = &snapshotKey
	return nil
}

func sampleGridView(t *testing.T) *dto.GridView {
	t.Helper()
	key := models.GroupKey{Year: "Y1", Group: "G1"}
	split, err := sameTimePayload("s2", "P1", "R1", "P2", "R2").ToSession()
	require.NoError(t, err)
	canceled := mustSession(t, "s1", "P3", "R3")
	canceled.Status = models.SessionStatusCanceled
	g := gridFromRecords(key, []models.SessionRecord{
		models.NewSessionRecord(key, models.Cell{Day: models.Monday, Slot: 1}, models.GridCopyPublished, canceled),
		models.NewSessionRecord(key, models.Cell{Day: models.Tuesday, Slot: 2}, models.GridCopyPublished, split),
	})
	return gridView(key, models.GridCopyPublished, g.Placements())
}

func newExportServiceForTest(t *testing.T, reader publishedReader) (*ExportService, *storage.LocalStorage, *snapshotVersionStub) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	versions := &snapshotVersionStub{versions: map[int]*models.TimetableVersion{
		1: {ID: "version-1", Year: "Y1", GroupName: "G1", Version: 1},
	}}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	svc := NewExportService(reader, versions, store, signer, ExportConfig{APIPrefix: "/api/v1"}, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store, versions
}

func TestExportServiceCSV(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, publishedReaderStub{view: sampleGridView(t)})

	file, err := svc.Export(context.Background(), "Y1", "G1", "")
	require.NoError(t, err)
	assert.Equal(t, "timetable_Y1_G1.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 4, "header, canceled plain session, two halves of the split")
	assert.Contains(t, lines[1], "CANCELED")
	assert.Contains(t, lines[2], "P1")
	assert.Contains(t, lines[3], "P2")
}

func TestExportServicePDF(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, publishedReaderStub{view: sampleGridView(t)})

	file, err := svc.Export(context.Background(), "Y1", "G1", dto.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	_, err = svc.Export(context.Background(), "Y1", "G1", "xlsx")
	assert.Error(t, err)
}

func TestExportServicePropagatesReadErrors(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t, publishedReaderStub{err: errors.New("boom")})

	_, err := svc.Export(context.Background(), "Y1", "G1", dto.ExportFormatCSV)
	assert.Error(t, err)
}

func TestWeekDatasetLaysOutSlotsByDay(t *testing.T) {
	data := weekDataset(sampleGridView(t))

	assert.Equal(t, []string{"Time", "MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY"}, data.Headers)
	require.Len(t, data.Rows, models.SlotsPerDay)
	assert.Contains(t, data.Rows[0][1], "[CANCELED]")
	assert.Contains(t, data.Rows[1][2], "(1)")
	assert.Contains(t, data.Rows[1][2], "(2)")
	assert.Empty(t, data.Rows[2][1])
}

func TestExportServiceSnapshotLifecycle(t *testing.T) {
	svc, store, versions := newExportServiceForTest(t, publishedReaderStub{view: sampleGridView(t)})
	ctx := context.Background()
	key := models.GroupKey{Year: "Y1", Group: "G1"}

	_, err := svc.SnapshotLink(ctx, "Y1", "G1", 1)
	require.Error(t, err, "no snapshot stored yet")

	stored, err := svc.GenerateSnapshot(ctx, key, 1)
	require.NoError(t, err)
	assert.Equal(t, "snapshots/Y1/G1/v1.pdf", stored)
	require.NotNil(t, versions.versions[1].SnapshotKey)
	assert.FileExists(t, store.Path(stored))

	link, err := svc.SnapshotLink(ctx, "Y1", "G1", 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link.URL, "/api/v1/snapshots/"))

	file, err := svc.OpenSnapshot(ctx, link.Token)
	require.NoError(t, err)
	assert.Equal(t, "v1.pdf", file.Filename)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	_, err = svc.OpenSnapshot(ctx, "garbage")
	assert.Error(t, err)

	_, err = svc.SnapshotLink(ctx, "Y1", "G1", 7)
	assert.Error(t, err)
}

func TestSnapshotWorkerSchedulesAndHandles(t *testing.T) {
	svc, _, versions := newExportServiceForTest(t, publishedReaderStub{view: sampleGridView(t)})
	worker := NewSnapshotWorker(svc, zap.NewNop())
	key := models.GroupKey{Year: "Y1", Group: "G1"}

	assert.Error(t, worker.ScheduleSnapshot(key, 1), "queue not attached")

	queue := &queueStub{}
	worker.AttachQueue(queue)
	require.NoError(t, worker.ScheduleSnapshot(key, 1))
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, SnapshotJobType, queue.jobs[0].Type)
	assert.Equal(t, "Y1/G1/v1", queue.jobs[0].Key)

	require.NoError(t, worker.Handle(context.Background(), queue.jobs[0]))
	require.NotNil(t, versions.versions[1].SnapshotKey)

	assert.NoError(t, worker.Handle(context.Background(), jobs.Job{ID: "bad", Payload: "nope"}))
	assert.Error(t, worker.Handle(context.Background(), jobs.Job{ID: "missing", Payload: SnapshotPayload{Key: key, Version: 9}}))
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}
