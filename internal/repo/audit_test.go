package repo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/reporthub/internal/models"
)

func TestAuditRepo_LogAndList(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "create", models.ResourceSchedule, 7, "Daily digest").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM audit_log`).
		WithArgs(models.ResourceSchedule, 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "action", "resource_type", "resource_id", "details", "created_at"}).
			AddRow(1, 1, "create", "schedule", 7, "Daily digest", time.Now()))

	r := NewAuditRepo(db)
	if err := r.Log(context.Background(), 1, "create", models.ResourceSchedule, 7, "Daily digest"); err != nil {
		t.Fatalf("Log: %v", err)
	}
	entries, err := r.List(context.Background(), models.ResourceSchedule, 20, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ResourceID != 7 {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
