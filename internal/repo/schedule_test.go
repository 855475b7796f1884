package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var scheduleCols = []string{"id", "name", "cron", "timezone", "created_at", "updated_at"}

func TestScheduleRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, cron, timezone, created_at, updated_at`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(scheduleCols).
			AddRow(2, "Daily digest", "0 8 * * *", "UTC", now, now).
			AddRow(1, "Weekly summary", "30 9 * * MON", "Europe/Paris", now.Add(-time.Hour), now))

	r := NewScheduleRepo(db)
	list, err := r.List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 items, got %d", len(list))
	}
	if list[0].ID != 2 || list[0].Name != "Daily digest" || list[0].Cron != "0 8 * * *" || list[0].Timezone != "UTC" {
		t.Errorf("unexpected first item: %+v", list[0])
	}
	if list[1].Timezone != "Europe/Paris" || !list[1].CreatedAt.Before(list[0].CreatedAt) {
		t.Errorf("unexpected second item: %+v", list[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_List_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM schedules`).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(scheduleCols))

	r := NewScheduleRepo(db)
	list, err := r.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected empty list, got %d", len(list))
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_Count(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := NewScheduleRepo(db).Count(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("Count: n=%d err=%v", n, err)
	}
}

func TestScheduleRepo_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM schedules WHERE id`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows(scheduleCols).AddRow(1, "Daily digest", "0 8 * * *", "UTC", now, now))

	r := NewScheduleRepo(db)
	s, err := r.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if s.ID != 1 || s.Name != "Daily digest" || s.Cron != "0 8 * * *" {
		t.Errorf("unexpected schedule: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM schedules WHERE id`).
		WithArgs(999).
		WillReturnError(sql.ErrNoRows)

	r := NewScheduleRepo(db)
	_, err = r.GetByID(context.Background(), 999)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO schedules`).
		WithArgs("New Schedule", "0 8 * * *", "UTC").
		WillReturnRows(sqlmock.NewRows(scheduleCols).AddRow(1, "New Schedule", "0 8 * * *", "UTC", now, now))

	r := NewScheduleRepo(db)
	s, err := r.Create(context.Background(), "New Schedule", "0 8 * * *", "UTC")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID != 1 || s.Name != "New Schedule" || s.Timezone != "UTC" {
		t.Errorf("unexpected schedule: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE schedules`).
		WithArgs("Weekdays", "0 8 * * MON,TUE,WED,THU,FRI", "Asia/Tokyo", 1).
		WillReturnRows(sqlmock.NewRows(scheduleCols).AddRow(1, "Weekdays", "0 8 * * MON,TUE,WED,THU,FRI", "Asia/Tokyo", now, now))

	r := NewScheduleRepo(db)
	s, err := r.Update(context.Background(), 1, "Weekdays", "0 8 * * MON,TUE,WED,THU,FRI", "Asia/Tokyo")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if s.Timezone != "Asia/Tokyo" {
		t.Errorf("unexpected schedule: %+v", s)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestScheduleRepo_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE schedules`).WillReturnError(sql.ErrNoRows)

	_, err = NewScheduleRepo(db).Update(context.Background(), 7, "x", "0 8 * * *", "UTC")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM schedules WHERE id`).
		WithArgs(1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM schedules WHERE id`).
		WithArgs(2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewScheduleRepo(db)
	if err := r.Delete(context.Background(), 1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Delete(context.Background(), 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing row, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
