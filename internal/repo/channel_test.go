package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/reporthub/internal/models"
)

var channelCols = []string{"id", "name", "description", "type", "settings", "created_at", "updated_at"}

func TestChannelRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM notification_channels ORDER BY name`).
		WithArgs(50, 0).
		WillReturnRows(sqlmock.NewRows(channelCols).
			AddRow(1, "Ops hook", "", "WEBHOOK", []byte(`{"url":"https://example.com/hook"}`), now, now).
			AddRow(2, "Team slack", "alerts", "SLACK", []byte(`{"webhook_url":"https://hooks.slack.com/x"}`), now, now))

	list, err := NewChannelRepo(db).List(context.Background(), 50, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(list))
	}
	if list[0].Type != models.ChannelWebhook || string(list[0].Settings) != `{"url":"https://example.com/hook"}` {
		t.Errorf("unexpected first channel: %+v", list[0])
	}
	if list[1].Description != "alerts" {
		t.Errorf("unexpected second channel: %+v", list[1])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestChannelRepo_ListByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`WHERE id = ANY`).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(channelCols).
			AddRow(3, "Hook", "", "WEBHOOK", []byte(`{}`), now, now))

	r := NewChannelRepo(db)
	list, err := r.ListByIDs(context.Background(), []int{3, 4})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(list) != 1 || list[0].ID != 3 {
		t.Errorf("unexpected channels: %+v", list)
	}

	empty, err := r.ListByIDs(context.Background(), nil)
	if err != nil || empty != nil {
		t.Errorf("expected no query for empty ids, got %v %v", empty, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestChannelRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM notification_channels WHERE id`).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err = NewChannelRepo(db).GetByID(context.Background(), 9)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestChannelRepo_Upsert_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	settings := []byte(`{"url":"https://example.com"}`)
	mock.ExpectQuery(`INSERT INTO notification_channels`).
		WithArgs("Hook", "desc", "WEBHOOK", settings).
		WillReturnRows(sqlmock.NewRows(channelCols).AddRow(5, "Hook", "desc", "WEBHOOK", settings, now, now))

	c, err := NewChannelRepo(db).Upsert(context.Background(), models.NotificationChannel{
		Name: "Hook", Description: "desc", Type: models.ChannelWebhook, Settings: settings,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if c.ID != 5 {
		t.Errorf("expected id 5, got %d", c.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestChannelRepo_Upsert_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	settings := []byte(`{"webhook_url":"https://hooks.slack.com/x"}`)
	mock.ExpectQuery(`UPDATE notification_channels`).
		WithArgs("Slack", "", "SLACK", settings, 5).
		WillReturnRows(sqlmock.NewRows(channelCols).AddRow(5, "Slack", "", "SLACK", settings, now, now))

	c, err := NewChannelRepo(db).Upsert(context.Background(), models.NotificationChannel{
		ID: 5, Name: "Slack", Type: models.ChannelSlack, Settings: settings,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if c.Type != models.ChannelSlack {
		t.Errorf("unexpected channel: %+v", c)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestChannelRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM notification_channels WHERE id`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := NewChannelRepo(db).Delete(context.Background(), 5); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
