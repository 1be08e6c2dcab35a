package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/dto"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/repository"
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
)

type timetableRepoStub struct {
	items    map[string]models.Timetable
	err      error
	conflict bool
}

func newTimetableRepoStub() *timetableRepoStub {
	return &timetableRepoStub{items: make(map[string]models.Timetable)}
}

func (s *timetableRepoStub) Create(ctx context.Context, timetable *models.Timetable) error {
	if s.err != nil {
		return s.err
	}
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	timetable.Version = 1
	s.items[timetable.ID] = *timetable
	return nil
}

func (s *timetableRepoStub) GetByID(ctx context.Context, id string) (*models.Timetable, error) {
	if s.err != nil {
		return nil, s.err
	}
	if timetable, ok := s.items[id]; ok {
		return &timetable, nil
	}
	return nil, sql.ErrNoRows
}

func (s *timetableRepoStub) List(ctx context.Context, filter models.TimetableFilter) ([]models.Timetable, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]models.Timetable, 0, len(s.items))
	for _, timetable := range s.items {
		out = append(out, timetable)
	}
	return out, len(out), nil
}

func (s *timetableRepoStub) Update(ctx context.Context, timetable *models.Timetable) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[timetable.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[timetable.ID] = *timetable
	return nil
}

func (s *timetableRepoStub) ReplaceSchedule(ctx context.Context, id string, schedule models.ScheduleGrid, fromVersion int) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if s.conflict {
		return 0, repository.ErrVersionConflict
	}
	timetable, ok := s.items[id]
	if !ok || timetable.Version != fromVersion {
		return 0, repository.ErrVersionConflict
	}
	timetable.Schedule = schedule
	timetable.Version++
	s.items[id] = timetable
	return timetable.Version, nil
}

func (s *timetableRepoStub) Delete(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

type courseSourceStub struct {
	courses []models.Course
	err     error
}

func (s courseSourceStub) ListAll(ctx context.Context) ([]models.Course, error) {
	return s.courses, s.err
}

type staffSourceStub struct {
	staff []models.Staff
	err   error
}

func (s staffSourceStub) ListAll(ctx context.Context) ([]models.Staff, error) {
	return s.staff, s.err
}

func newTimetableService(repo *timetableRepoStub, courses []models.Course, staff []models.Staff) *TimetableService {
	return NewTimetableService(
		repo,
		courseSourceStub{courses: courses},
		staffSourceStub{staff: staff},
		nil,
		nil,
		GeneratorOptions{AllowConsecutiveSameCourse: true},
		nil,
		nil,
	)
}

func TestTimetableServiceCreateDefaults(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultWorkingDays, []string(timetable.WorkingDays))
	assert.Equal(t, len(canonicalSlots), timetable.HoursPerDay)
	assert.Len(t, timetable.Schedule.Days, len(models.DefaultWorkingDays))
	for _, day := range timetable.Schedule.Days {
		for _, slot := range day.Slots {
			assert.False(t, slot.Assigned())
		}
	}
}

func TestTimetableServiceCreateStoresDescription(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{
		Name:        "Grade 10",
		Description: "Second term, science stream",
	})
	require.NoError(t, err)
	assert.Equal(t, "Second term, science stream", timetable.Description)
	assert.Equal(t, "Second term, science stream", repo.items[timetable.ID].Description)

	// An omitted description stays an empty string rather than
	// becoming a null in the row.
	bare, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 11"})
	require.NoError(t, err)
	assert.Equal(t, "", repo.items[bare.ID].Description)
}

func TestTimetableServiceUpdateDescription(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)

	desc := "Revised after staff changes"
	updated, err := svc.Update(context.Background(), timetable.ID, dto.UpdateTimetableRequest{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
	// A settings-only update keeps the stored schedule shape.
	assert.Len(t, updated.Schedule.Days, len(models.DefaultWorkingDays))
}

func TestTimetableServiceCreateExtendedHoursClampsGrid(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo,
		[]models.Course{course("c1", "Math", 2)},
		[]models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)})

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10", HoursPerDay: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, timetable.HoursPerDay)
	for _, day := range timetable.Schedule.Days {
		assert.Len(t, day.Slots, len(canonicalSlots))
	}

	resp, err := svc.Generate(context.Background(), timetable.ID)
	require.NoError(t, err)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, models.DiagnosticSlotsTruncated, resp.Diagnostics[0].Type)
	assert.Equal(t, 2, countCourseHours(resp.Timetable.Schedule, "c1"))
}

func TestTimetableServiceUpdateShapeResetsSchedule(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo,
		[]models.Course{course("c1", "Math", 2)},
		[]models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)})

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10", HoursPerDay: 4})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), timetable.ID)
	require.NoError(t, err)

	hours := 2
	updated, err := svc.Update(context.Background(), timetable.ID, dto.UpdateTimetableRequest{HoursPerDay: &hours})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.HoursPerDay)
	for _, day := range updated.Schedule.Days {
		require.Len(t, day.Slots, 2)
		for _, slot := range day.Slots {
			assert.False(t, slot.Assigned())
		}
	}
}

func TestTimetableServiceGenerateRequiresCourses(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, []models.Staff{staffMember("s1", "Alice", nil, nil, 0)})

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), timetable.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateRequiresStaff(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, []models.Course{course("c1", "Math", 2)}, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)

	_, err = svc.Generate(context.Background(), timetable.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateStoresGridAndBumpsVersion(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo,
		[]models.Course{course("c1", "Math", 3)},
		[]models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)})

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10", HoursPerDay: 4})
	require.NoError(t, err)

	resp, err := svc.Generate(context.Background(), timetable.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Timetable.Version)
	assert.Equal(t, 3, countCourseHours(resp.Timetable.Schedule, "c1"))
	assert.Empty(t, resp.Diagnostics)

	stored := repo.items[timetable.ID]
	assert.Equal(t, resp.Timetable.Schedule, stored.Schedule)
}

func TestTimetableServiceGenerateVersionConflict(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo,
		[]models.Course{course("c1", "Math", 2)},
		[]models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)})

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)
	repo.conflict = true

	_, err = svc.Generate(context.Background(), timetable.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceGenerateReportsDiagnostics(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo,
		[]models.Course{course("orphan", "Latin", 2)},
		[]models.Staff{staffMember("s1", "Alice", []string{"other"}, nil, 0)})

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)

	resp, err := svc.Generate(context.Background(), timetable.ID)
	require.NoError(t, err)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, models.DiagnosticNoStaffAssigned, resp.Diagnostics[0].Type)
}

func TestTimetableServiceUpdateSlot(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10", HoursPerDay: 4})
	require.NoError(t, err)

	courseID := "c1"
	staffID := "s1"
	updated, err := svc.UpdateSlot(context.Background(), timetable.ID, 0, 1, dto.UpdateSlotRequest{CourseID: &courseID, StaffID: &staffID})
	require.NoError(t, err)
	slot := updated.Schedule.Days[0].Slots[1]
	require.NotNil(t, slot.CourseID)
	assert.Equal(t, "c1", *slot.CourseID)

	cleared, err := svc.UpdateSlot(context.Background(), timetable.ID, 0, 1, dto.UpdateSlotRequest{})
	require.NoError(t, err)
	assert.False(t, cleared.Schedule.Days[0].Slots[1].Assigned())
}

func TestTimetableServiceUpdateSlotBounds(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10", HoursPerDay: 4})
	require.NoError(t, err)

	_, err = svc.UpdateSlot(context.Background(), timetable.ID, 9, 0, dto.UpdateSlotRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.UpdateSlot(context.Background(), timetable.ID, 0, 9, dto.UpdateSlotRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceUpdateSlotHalfAssignmentRejected(t *testing.T) {
	repo := newTimetableRepoStub()
	svc := newTimetableService(repo, nil, nil)

	timetable, err := svc.Create(context.Background(), dto.CreateTimetableRequest{Name: "Grade 10"})
	require.NoError(t, err)

	courseID := "c1"
	_, err = svc.UpdateSlot(context.Background(), timetable.ID, 0, 0, dto.UpdateSlotRequest{CourseID: &courseID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
