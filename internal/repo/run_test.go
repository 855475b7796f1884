package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/google/uuid"
)

func TestRunRepo_StartAndFinish(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	started := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(`INSERT INTO reporter_runs`).
		WithArgs(sqlmock.AnyArg(), 1, models.TriggerSchedule, models.RunRunning, started).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reporter_runs SET status`).
		WithArgs(models.RunFailed, "slack: 500", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reporter_runs SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewRunRepo(db)
	run := models.ReporterRun{ID: id, ReporterID: 1, Trigger: models.TriggerSchedule, StartedAt: started}
	if err := r.Start(context.Background(), run); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := r.Finish(context.Background(), id, models.RunFailed, "slack: 500"); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if err := r.Finish(context.Background(), uuid.New(), models.RunSucceeded, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRunRepo_ListByReporter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	id := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`FROM reporter_runs`).
		WithArgs(1, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "reporter_id", "trigger", "status", "error", "started_at", "finished_at"}).
			AddRow(id.String(), 1, "manual", "succeeded", "", now, now).
			AddRow(uuid.New().String(), 1, "schedule", "running", "", now.Add(-time.Minute), nil))

	list, err := NewRunRepo(db).ListByReporter(context.Background(), 1, 20)
	if err != nil {
		t.Fatalf("ListByReporter: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(list))
	}
	if list[0].ID != id || list[0].FinishedAt == nil {
		t.Errorf("unexpected first run: %+v", list[0])
	}
	if list[1].FinishedAt != nil || list[1].Status != models.RunRunning {
		t.Errorf("unexpected second run: %+v", list[1])
	}
}
