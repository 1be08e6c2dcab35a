package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/service"
)

type timetableRepoMock struct {
	timetable *models.Timetable
}

func (m *timetableRepoMock) Create(ctx context.Context, timetable *models.Timetable) error {
	timetable.ID = "tt-1"
	timetable.Version = 1
	m.timetable = timetable
	return nil
}

func (m *timetableRepoMock) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	if m.timetable == nil || m.timetable.ID != id {
		return nil, sql.ErrNoRows
	}
	clone := *m.timetable
	return &clone, nil
}

func (m *timetableRepoMock) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	if m.timetable == nil {
		return nil, 0, nil
	}
	return []models.Timetable{*m.timetable}, 1, nil
}

func (m *timetableRepoMock) Update(ctx context.Context, timetable *models.Timetable) error {
	m.timetable = timetable
	return nil
}

func (m *timetableRepoMock) ReplaceSchedule(ctx context.Context, id string, schedule models.ScheduleGrid, fromVersion int) (int, error) {
	m.timetable.Schedule = schedule
	m.timetable.Version++
	return m.timetable.Version, nil
}

func (m *timetableRepoMock) Delete(ctx context.Context, id string) error {
	m.timetable = nil
	return nil
}

type emptyCourseSource struct{}

func (emptyCourseSource) ListAll(ctx context.Context) ([]models.Course, error) { return nil, nil }

type emptyStaffSource struct{}

func (emptyStaffSource) ListAll(ctx context.Context) ([]models.Staff, error) { return nil, nil }

func newTimetableHandler(repo *timetableRepoMock) *TimetableHandler {
	svc := service.NewTimetableService(repo, emptyCourseSource{}, emptyStaffSource{}, nil, nil,
		service.GeneratorOptions{AllowConsecutiveSameCourse: true}, nil, nil)
	return NewTimetableHandler(svc)
}

func TestTimetableHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableHandler(&timetableRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/timetables/missing", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestTimetableHandlerCreateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableHandler(&timetableRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetables", bytes.NewReader([]byte(`{"name":""}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerUpdateSlotNonNumericIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newTimetableHandler(&timetableRepoMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/timetables/tt-1/slots/x/0", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}, {Key: "dayIndex", Value: "x"}, {Key: "slotIndex", Value: "0"}}

	handler.UpdateSlot(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimetableHandlerGeneratePreconditionFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &timetableRepoMock{timetable: &models.Timetable{
		ID:          "tt-1",
		Name:        "Grade 10",
		WorkingDays: []string{"Monday"},
		HoursPerDay: 4,
		Version:     1,
	}}
	handler := newTimetableHandler(repo)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/timetables/tt-1/generate", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "tt-1"}}

	handler.Generate(c)
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
}
