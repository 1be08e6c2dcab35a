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
	appErrors "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/errors"
)

type staffRepoStub struct {
	items map[string]models.Staff
	err   error
}

func newStaffRepoStub() *staffRepoStub {
	return &staffRepoStub{items: make(map[string]models.Staff)}
}

func (s *staffRepoStub) Create(ctx context.Context, staff *models.Staff) error {
	if s.err != nil {
		return s.err
	}
	if staff.ID == "" {
		staff.ID = uuid.NewString()
	}
	s.items[staff.ID] = *staff
	return nil
}

func (s *staffRepoStub) GetByID(ctx context.Context, id string) (*models.Staff, error) {
	if s.err != nil {
		return nil, s.err
	}
	if staff, ok := s.items[id]; ok {
		return &staff, nil
	}
	return nil, sql.ErrNoRows
}

func (s *staffRepoStub) GetByEmail(ctx context.Context, email string) (*models.Staff, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, staff := range s.items {
		if staff.Email == email {
			rec := staff
			return &rec, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *staffRepoStub) List(ctx context.Context, filter models.StaffFilter) ([]models.Staff, int, error) {
	if s.err != nil {
		return nil, 0, s.err
	}
	out := make([]models.Staff, 0, len(s.items))
	for _, staff := range s.items {
		out = append(out, staff)
	}
	return out, len(out), nil
}

func (s *staffRepoStub) Update(ctx context.Context, staff *models.Staff) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[staff.ID]; !ok {
		return sql.ErrNoRows
	}
	s.items[staff.ID] = *staff
	return nil
}

func (s *staffRepoStub) Delete(ctx context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.items[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

func (s *staffRepoStub) HasCourse(ctx context.Context, staffID, courseID string) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	staff, ok := s.items[staffID]
	if !ok {
		return false, nil
	}
	return staff.TeachesCourse(courseID), nil
}

func (s *staffRepoStub) AssignCourse(ctx context.Context, staffID, courseID string) error {
	if s.err != nil {
		return s.err
	}
	staff, ok := s.items[staffID]
	if !ok {
		return sql.ErrNoRows
	}
	staff.CourseIDs = append(staff.CourseIDs, courseID)
	s.items[staffID] = staff
	return nil
}

func (s *staffRepoStub) RemoveCourse(ctx context.Context, staffID, courseID string) error {
	if s.err != nil {
		return s.err
	}
	staff, ok := s.items[staffID]
	if !ok || !staff.TeachesCourse(courseID) {
		return sql.ErrNoRows
	}
	filtered := staff.CourseIDs[:0]
	for _, id := range staff.CourseIDs {
		if id != courseID {
			filtered = append(filtered, id)
		}
	}
	staff.CourseIDs = filtered
	s.items[staffID] = staff
	return nil
}

func seedStaffCourse(repo *courseRepoStub, id string) {
	repo.items[id] = models.Course{ID: id, Name: "Course " + id, Code: "C" + id, HoursPerWeek: 3}
}

func TestStaffServiceCreateNormalisesEmail(t *testing.T) {
	svc := NewStaffService(newStaffRepoStub(), newCourseRepoStub(), nil, nil)

	staff, err := svc.Create(context.Background(), dto.CreateStaffRequest{
		Name:  "Alice",
		Email: " Alice@Example.EDU ",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.edu", staff.Email)
}

func TestStaffServiceCreateDuplicateEmail(t *testing.T) {
	repo := newStaffRepoStub()
	svc := NewStaffService(repo, newCourseRepoStub(), nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Alice", Email: "alice@example.edu"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Other", Email: "alice@example.edu"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceCreateRejectsUnknownCourse(t *testing.T) {
	svc := NewStaffService(newStaffRepoStub(), newCourseRepoStub(), nil, nil)

	_, err := svc.Create(context.Background(), dto.CreateStaffRequest{
		Name:      "Alice",
		Email:     "alice@example.edu",
		CourseIDs: []string{"missing"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceAssignCourse(t *testing.T) {
	staffRepo := newStaffRepoStub()
	courseRepo := newCourseRepoStub()
	seedStaffCourse(courseRepo, "course-1")
	svc := NewStaffService(staffRepo, courseRepo, nil, nil)

	staff, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Alice", Email: "alice@example.edu"})
	require.NoError(t, err)

	updated, err := svc.AssignCourse(context.Background(), staff.ID, dto.AssignCourseRequest{CourseID: "course-1"})
	require.NoError(t, err)
	assert.True(t, updated.TeachesCourse("course-1"))
}

func TestStaffServiceAssignCourseTwiceConflicts(t *testing.T) {
	staffRepo := newStaffRepoStub()
	courseRepo := newCourseRepoStub()
	seedStaffCourse(courseRepo, "course-1")
	svc := NewStaffService(staffRepo, courseRepo, nil, nil)

	staff, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Alice", Email: "alice@example.edu"})
	require.NoError(t, err)

	_, err = svc.AssignCourse(context.Background(), staff.ID, dto.AssignCourseRequest{CourseID: "course-1"})
	require.NoError(t, err)

	_, err = svc.AssignCourse(context.Background(), staff.ID, dto.AssignCourseRequest{CourseID: "course-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceRemoveCourseNotAssigned(t *testing.T) {
	staffRepo := newStaffRepoStub()
	courseRepo := newCourseRepoStub()
	svc := NewStaffService(staffRepo, courseRepo, nil, nil)

	staff, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Alice", Email: "alice@example.edu"})
	require.NoError(t, err)

	_, err = svc.RemoveCourse(context.Background(), staff.ID, "course-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestStaffServiceUpdateRejectsUnknownDay(t *testing.T) {
	svc := NewStaffService(newStaffRepoStub(), newCourseRepoStub(), nil, nil)

	staff, err := svc.Create(context.Background(), dto.CreateStaffRequest{Name: "Alice", Email: "alice@example.edu"})
	require.NoError(t, err)

	days := []string{"Noday"}
	_, err = svc.Update(context.Background(), staff.ID, dto.UpdateStaffRequest{AvailableDays: &days})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
