package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/crucial707/reporthub/internal/analytics"
	"github.com/crucial707/reporthub/internal/models"
	"github.com/crucial707/reporthub/internal/notify"
	"github.com/crucial707/reporthub/internal/repo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	fail map[int]bool
	msgs []notify.Message
}

func (f *fakeNotifier) Send(ctx context.Context, ch models.NotificationChannel, msg notify.Message) notify.Result {
	f.msgs = append(f.msgs, msg)
	if f.fail[ch.ID] {
		return notify.Result{StatusCode: 500}
	}
	return notify.Result{StatusCode: 200}
}

type countingCounter struct{ statuses []string }

func (c *countingCounter) Incr(ctx context.Context, reporterID int, status string, at time.Time) error {
	c.statuses = append(c.statuses, status)
	return nil
}

func (c *countingCounter) Daily(context.Context, int, string, int, time.Time) ([]analytics.DayCount, error) {
	return nil, nil
}

var (
	reporterCols = []string{"id", "name", "description", "schedule_id", "enabled", "created_at", "updated_at", "channels"}
	channelCols  = []string{"id", "name", "description", "type", "settings", "created_at", "updated_at"}
	scheduleCols = []string{"id", "name", "cron", "timezone", "created_at", "updated_at"}
)

func newRunner(t *testing.T) (*Runner, sqlmock.Sqlmock, *fakeNotifier, *countingCounter) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	n := &fakeNotifier{fail: map[int]bool{}}
	c := &countingCounter{}
	fixed := time.Date(2026, 10, 12, 8, 0, 5, 0, time.UTC)
	return &Runner{
		Reporters: repo.NewReporterRepo(db),
		Schedules: repo.NewScheduleRepo(db),
		Channels:  repo.NewChannelRepo(db),
		Runs:      repo.NewRunRepo(db),
		Notifier:  n,
		Counter:   c,
		Now:       func() time.Time { return fixed },
	}, mock, n, c
}

func TestRunner_Run_Success(t *testing.T) {
	r, mock, n, c := newRunner(t)
	now := time.Now()
	scheduledAt := time.Date(2026, 10, 12, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM reporters r`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(reporterCols).AddRow(4, "Daily sales", "Totals per region", 2, true, now, now, []byte("{1,2}")))
	mock.ExpectExec(`INSERT INTO reporter_runs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE id = ANY`).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(channelCols).
			AddRow(1, "Hook", "", "WEBHOOK", []byte(`{"url":"https://example.com"}`), now, now).
			AddRow(2, "Slack", "", "SLACK", []byte(`{"webhook_url":"https://hooks.slack.com/x"}`), now, now))
	mock.ExpectQuery(`FROM schedules WHERE id`).WithArgs(2).
		WillReturnRows(sqlmock.NewRows(scheduleCols).AddRow(2, "Mornings", "0 8 * * *", "UTC", now, now))
	mock.ExpectExec(`UPDATE reporter_runs SET status`).
		WithArgs(models.RunSucceeded, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := r.Run(context.Background(), 4, models.TriggerSchedule, scheduledAt)
	require.NoError(t, err)
	assert.Equal(t, models.RunSucceeded, run.Status)
	assert.NotNil(t, run.FinishedAt)
	require.Len(t, n.msgs, 2)
	assert.NotEqual(t, n.msgs[0].EventID, n.msgs[1].EventID)
	assert.Equal(t, run.ID.String(), n.msgs[0].RunID)
	assert.Equal(t, "Daily sales ran on schedule at 2026-10-12T08:00:00Z (Runs at 08:00 every day in UTC). Totals per region", n.msgs[0].Text)
	assert.Equal(t, []string{models.RunSucceeded}, c.statuses)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Run_PartialFailure(t *testing.T) {
	r, mock, n, _ := newRunner(t)
	n.fail[2] = true
	now := time.Now()

	mock.ExpectQuery(`FROM reporters r`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(reporterCols).AddRow(4, "Daily sales", "", nil, true, now, now, []byte("{1,2}")))
	mock.ExpectExec(`INSERT INTO reporter_runs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`WHERE id = ANY`).WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(channelCols).
			AddRow(1, "Hook", "", "WEBHOOK", []byte(`{}`), now, now).
			AddRow(2, "Slack", "", "SLACK", []byte(`{}`), now, now))
	mock.ExpectExec(`UPDATE reporter_runs SET status`).
		WithArgs(models.RunFailed, "Slack: unexpected status 500", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := r.Run(context.Background(), 4, models.TriggerManual, now)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, run.Status)
	assert.True(t, strings.Contains(n.msgs[0].Text, "was run manually"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Run_NoChannels(t *testing.T) {
	r, mock, n, _ := newRunner(t)
	now := time.Now()

	mock.ExpectQuery(`FROM reporters r`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(reporterCols).AddRow(4, "Lonely", "", nil, true, now, now, []byte("{}")))
	mock.ExpectExec(`INSERT INTO reporter_runs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE reporter_runs SET status`).
		WithArgs(models.RunFailed, "reporter has no notification channels", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	run, err := r.Run(context.Background(), 4, models.TriggerManual, now)
	require.NoError(t, err)
	assert.Equal(t, models.RunFailed, run.Status)
	assert.Empty(t, n.msgs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Run_DisabledOnSchedule(t *testing.T) {
	r, mock, _, _ := newRunner(t)
	now := time.Now()
	mock.ExpectQuery(`FROM reporters r`).WithArgs(4).
		WillReturnRows(sqlmock.NewRows(reporterCols).AddRow(4, "Off", "", 1, false, now, now, []byte("{1}")))

	_, err := r.Run(context.Background(), 4, models.TriggerSchedule, now)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_Run_MissingReporter(t *testing.T) {
	r, mock, _, _ := newRunner(t)
	mock.ExpectQuery(`FROM reporters r`).WithArgs(9).WillReturnError(errors.New("connection refused"))

	_, err := r.Run(context.Background(), 9, models.TriggerManual, time.Now())
	assert.Error(t, err)
}
