package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
)

func newTimetableRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTimetableRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetables")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	timetable := &models.Timetable{
		Name:        "Grade 10",
		WorkingDays: pq.StringArray{"Monday", "Tuesday", "Wednesday"},
		HoursPerDay: 6,
	}
	require.NoError(t, repo.Create(context.Background(), timetable))
	require.Equal(t, 1, timetable.Version)

	schedule := `{"days":[{"day":"Monday","slots":[{"start":"08:00","end":"09:00"}]}]}`
	rows := sqlmock.NewRows([]string{"id", "name", "description", "working_days", "hours_per_day", "schedule", "version", "created_at", "updated_at"}).
		AddRow(timetable.ID, timetable.Name, "", `{Monday,Tuesday,Wednesday}`, 6, schedule, 1, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, working_days")).
		WithArgs(timetable.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), timetable.ID)
	require.NoError(t, err)
	require.Len(t, found.Schedule.Days, 1)
	require.Equal(t, "Monday", found.Schedule.Days[0].Day)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceSchedule(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE timetables SET")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow(4))

	grid := models.ScheduleGrid{Days: []models.DaySchedule{{Day: "Monday"}}}
	version, err := repo.ReplaceSchedule(context.Background(), "tt-1", grid, 3)
	require.NoError(t, err)
	require.Equal(t, 4, version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceScheduleVersionConflict(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE timetables SET")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}))

	_, err := repo.ReplaceSchedule(context.Background(), "tt-1", models.ScheduleGrid{}, 2)
	require.ErrorIs(t, err, ErrVersionConflict)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryList(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()

	repo := NewTimetableRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetables")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	rows := sqlmock.NewRows([]string{"id", "name", "description", "working_days", "hours_per_day", "schedule", "version", "created_at", "updated_at"}).
		AddRow("tt-1", "Grade 10", "", `{Monday}`, 6, `{"days":[]}`, 1, time.Now(), time.Now()).
		AddRow("tt-2", "Grade 11", "", `{Monday}`, 8, `{"days":[]}`, 2, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, description, working_days")).
		WillReturnRows(rows)

	records, total, err := repo.List(context.Background(), models.TimetableFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, records, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}
