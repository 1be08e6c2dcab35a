package service

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
)

func course(id, name string, hours int, preferred ...string) models.Course {
	return models.Course{ID: id, Name: name, Code: id, HoursPerWeek: hours, PreferredDays: preferred}
}

func staffMember(id, name string, courseIDs []string, days []string, hoursPerDay int) models.Staff {
	return models.Staff{
		ID:                   id,
		Name:                 name,
		Email:                id + "@example.edu",
		AvailableDays:        days,
		AvailableHoursPerDay: hoursPerDay,
		CourseIDs:            pq.StringArray(courseIDs),
	}
}

func countCourseHours(grid models.ScheduleGrid, courseID string) int {
	total := 0
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			if slot.CourseID != nil && *slot.CourseID == courseID {
				total++
			}
		}
	}
	return total
}

func countStaffHours(grid models.ScheduleGrid, staffID string) int {
	total := 0
	for _, day := range grid.Days {
		for _, slot := range day.Slots {
			if slot.StaffID != nil && *slot.StaffID == staffID {
				total++
			}
		}
	}
	return total
}

func hasDiagnostic(diags []models.Diagnostic, typ models.DiagnosticType, courseID string) bool {
	for _, d := range diags {
		if d.Type == typ && d.CourseID == courseID {
			return true
		}
	}
	return false
}

func TestGenerateSingleCourseSingleStaff(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		HoursPerDay: 6,
		Courses:     []models.Course{course("c1", "Mathematics", 5)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 5, countCourseHours(result.Grid, "c1"))
	assert.Equal(t, 5, result.HoursAssigned["c1"])
	assert.Empty(t, result.Diagnostics)
}

func TestGenerateCourseWithoutStaffProducesDiagnostic(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 4,
		Courses:     []models.Course{course("c1", "Physics", 3)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"other"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 0, countCourseHours(result.Grid, "c1"))
	assert.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticNoStaffAssigned, "c1"))
}

func TestGeneratePreferredDaysFirst(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday"},
		HoursPerDay: 4,
		Courses:     []models.Course{course("c1", "Chemistry", 2, "Wednesday")},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)

	wednesday := result.Grid.Days[2]
	require.Equal(t, "Wednesday", wednesday.Day)
	assert.NotNil(t, wednesday.Slots[0].CourseID)
	assert.Equal(t, "c1", *wednesday.Slots[0].CourseID)
	assert.NotNil(t, wednesday.Slots[1].CourseID)
	assert.Equal(t, "c1", *wednesday.Slots[1].CourseID)
	assert.Nil(t, result.Grid.Days[0].Slots[0].CourseID)
}

func TestGeneratePreferredDaysConfineDemand(t *testing.T) {
	// Demand exceeds what the single preferred day can hold. The excess
	// becomes a shortfall instead of spilling onto other working days.
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 3,
		Courses:     []models.Course{course("c1", "Biology", 5, "Monday")},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 3, countCourseHours(result.Grid, "c1"))
	assert.Equal(t, 3, countCourseHours(models.ScheduleGrid{Days: result.Grid.Days[:1]}, "c1"))
	require.Zero(t, countCourseHours(models.ScheduleGrid{Days: result.Grid.Days[1:]}, "c1"))
	require.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticShortfall, "c1"))
	for _, d := range result.Diagnostics {
		if d.CourseID == "c1" {
			assert.Equal(t, 5, d.HoursRequired)
			assert.Equal(t, 3, d.HoursAssigned)
		}
	}
}

func TestGenerateFallsBackWhenNoPreferredDayIsWorkable(t *testing.T) {
	// No preferred day intersects the working week, so the whole week
	// is fair game.
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 3,
		Courses:     []models.Course{course("c1", "Biology", 4, "Saturday")},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 4, countCourseHours(result.Grid, "c1"))
	assert.Empty(t, result.Diagnostics)
}

func TestGenerateCompetingCoursesOnSharedPreferredDay(t *testing.T) {
	// Both courses want the same single day of 6 slots and ask 4 hours
	// each. The first in input order fills first, the second is left the
	// 2 remaining slots and a shortfall, with no spill onto Tuesday.
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 6,
		Courses: []models.Course{
			course("c1", "Mathematics", 4, "Monday"),
			course("c2", "Physics", 4, "Monday"),
		},
		Staff: []models.Staff{staffMember("s1", "Alice", []string{"c1", "c2"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 4, countCourseHours(result.Grid, "c1"))
	assert.Equal(t, 2, countCourseHours(result.Grid, "c2"))
	assert.Zero(t, countCourseHours(models.ScheduleGrid{Days: result.Grid.Days[1:]}, "c1"))
	assert.Zero(t, countCourseHours(models.ScheduleGrid{Days: result.Grid.Days[1:]}, "c2"))
	require.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticShortfall, "c2"))
	for _, d := range result.Diagnostics {
		if d.CourseID == "c2" {
			assert.Equal(t, 4, d.HoursRequired)
			assert.Equal(t, 2, d.HoursAssigned)
		}
	}
}

func TestGenerateStaffCapacityExhaustion(t *testing.T) {
	// One staff member limited to 2 hours per day across 2 days cannot
	// cover 6 requested hours.
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 4,
		Courses:     []models.Course{course("c1", "History", 6)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, []string{"Monday", "Tuesday"}, 2)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 4, countCourseHours(result.Grid, "c1"))
	assert.Equal(t, 4, countStaffHours(result.Grid, "s1"))
	require.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticShortfall, "c1"))
	for _, d := range result.Diagnostics {
		if d.CourseID == "c1" {
			assert.Equal(t, 6, d.HoursRequired)
			assert.Equal(t, 4, d.HoursAssigned)
		}
	}
}

func TestGenerateHighDemandCoursesPlacedFirst(t *testing.T) {
	// Capacity covers only one course fully. The heavier course wins.
	req := GenerateRequest{
		WorkingDays: []string{"Monday"},
		HoursPerDay: 4,
		Courses: []models.Course{
			course("light", "Art", 2),
			course("heavy", "Mathematics", 4),
		},
		Staff: []models.Staff{staffMember("s1", "Alice", []string{"light", "heavy"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 4, countCourseHours(result.Grid, "heavy"))
	assert.Equal(t, 0, countCourseHours(result.Grid, "light"))
	assert.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticShortfall, "light"))
}

func TestGenerateEqualDemandKeepsInputOrder(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday"},
		HoursPerDay: 2,
		Courses: []models.Course{
			course("first", "English", 2),
			course("second", "Geography", 2),
		},
		Staff: []models.Staff{staffMember("s1", "Alice", []string{"first", "second"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 2, countCourseHours(result.Grid, "first"))
	assert.Equal(t, 0, countCourseHours(result.Grid, "second"))
}

func TestGenerateFirstQualifiedStaffWins(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday"},
		HoursPerDay: 2,
		Courses:     []models.Course{course("c1", "Music", 2)},
		Staff: []models.Staff{
			staffMember("s1", "Alice", []string{"c1"}, nil, 0),
			staffMember("s2", "Bob", []string{"c1"}, nil, 0),
		},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 2, countStaffHours(result.Grid, "s1"))
	assert.Equal(t, 0, countStaffHours(result.Grid, "s2"))
}

func TestGenerateDeterministicAcrossRuns(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"},
		HoursPerDay: 6,
		Courses: []models.Course{
			course("c1", "Mathematics", 5, "Monday", "Wednesday"),
			course("c2", "Physics", 4),
			course("c3", "Chemistry", 4, "Friday"),
			course("c4", "English", 3),
		},
		Staff: []models.Staff{
			staffMember("s1", "Alice", []string{"c1", "c2"}, []string{"Monday", "Tuesday", "Wednesday"}, 4),
			staffMember("s2", "Bob", []string{"c2", "c3"}, nil, 0),
			staffMember("s3", "Carol", []string{"c4"}, []string{"Thursday", "Friday"}, 3),
		},
	}

	first, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	second, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, first.Grid, second.Grid)
	assert.Equal(t, first.Diagnostics, second.Diagnostics)
}

func TestGenerateNoConsecutiveSameCourse(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 4,
		Courses: []models.Course{
			course("c1", "Mathematics", 4),
			course("c2", "Art", 2),
		},
		Staff: []models.Staff{staffMember("s1", "Alice", []string{"c1", "c2"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: false})
	require.NoError(t, err)

	for _, day := range result.Grid.Days {
		for i := 1; i < len(day.Slots); i++ {
			if day.Slots[i].CourseID != nil && day.Slots[i-1].CourseID != nil {
				assert.NotEqual(t, *day.Slots[i-1].CourseID, *day.Slots[i].CourseID,
					"consecutive slots on %s hold the same course", day.Day)
			}
		}
	}
	assert.Equal(t, 4, countCourseHours(result.Grid, "c1"))
}

func TestGenerateAllowConsecutivePacksSlots(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday"},
		HoursPerDay: 3,
		Courses:     []models.Course{course("c1", "Mathematics", 3)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	monday := result.Grid.Days[0]
	for _, slot := range monday.Slots {
		require.NotNil(t, slot.CourseID)
		assert.Equal(t, "c1", *slot.CourseID)
	}
}

func TestGenerateHoursPerDayTruncated(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday"},
		HoursPerDay: 12,
		Courses:     []models.Course{course("c1", "Mathematics", 2)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Len(t, result.Grid.Days[0].Slots, len(canonicalSlots))
	assert.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticSlotsTruncated, ""))
}

func TestGenerateDefaultsWhenRequestIsSparse(t *testing.T) {
	result, err := GenerateTimetable(GenerateRequest{
		Courses: []models.Course{course("c1", "Mathematics", 1)},
		Staff:   []models.Staff{staffMember("s1", "Alice", []string{"c1"}, nil, 0)},
	}, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Len(t, result.Grid.Days, len(models.DefaultWorkingDays))
	assert.Len(t, result.Grid.Days[0].Slots, len(canonicalSlots))
	assert.Equal(t, 1, countCourseHours(result.Grid, "c1"))
}

func TestGenerateStaffUnavailableDaySkipped(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 2,
		Courses:     []models.Course{course("c1", "Mathematics", 2)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, []string{"Tuesday"}, 2)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 0, countCourseHours(models.ScheduleGrid{Days: result.Grid.Days[:1]}, "c1"))
	assert.Equal(t, 2, countCourseHours(models.ScheduleGrid{Days: result.Grid.Days[1:]}, "c1"))
}

func TestGenerateStaffUnavailableOnPreferredDayShortfalls(t *testing.T) {
	// The sole preferred day is workable but the only qualified staff
	// member does not teach on it. The hours stay unplaced.
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 2,
		Courses:     []models.Course{course("c1", "Mathematics", 2, "Monday")},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, []string{"Tuesday"}, 2)},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	assert.Equal(t, 0, countCourseHours(result.Grid, "c1"))
	assert.True(t, hasDiagnostic(result.Diagnostics, models.DiagnosticShortfall, "c1"))
}

func TestGenerateNoHalfFilledSlots(t *testing.T) {
	req := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday", "Wednesday"},
		HoursPerDay: 4,
		Courses: []models.Course{
			course("c1", "Mathematics", 6),
			course("c2", "Physics", 5),
			course("c3", "Art", 4),
		},
		Staff: []models.Staff{
			staffMember("s1", "Alice", []string{"c1"}, []string{"Monday"}, 2),
			staffMember("s2", "Bob", []string{"c2", "c3"}, nil, 3),
		},
	}

	result, err := GenerateTimetable(req, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)
	for _, day := range result.Grid.Days {
		for _, slot := range day.Slots {
			assert.Equal(t, slot.CourseID == nil, slot.StaffID == nil)
		}
	}
}

func TestGenerateMoreCapacityNeverReducesHours(t *testing.T) {
	base := GenerateRequest{
		WorkingDays: []string{"Monday", "Tuesday"},
		HoursPerDay: 4,
		Courses:     []models.Course{course("c1", "Mathematics", 6)},
		Staff:       []models.Staff{staffMember("s1", "Alice", []string{"c1"}, []string{"Monday"}, 2)},
	}
	baseline, err := GenerateTimetable(base, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)

	widened := base
	widened.Staff = []models.Staff{
		staffMember("s1", "Alice", []string{"c1"}, []string{"Monday"}, 2),
		staffMember("s2", "Bob", []string{"c1"}, nil, 0),
	}
	richer, err := GenerateTimetable(widened, GeneratorOptions{AllowConsecutiveSameCourse: true})
	require.NoError(t, err)

	assert.GreaterOrEqual(t, richer.HoursAssigned["c1"], baseline.HoursAssigned["c1"])
}

func TestStaffCapacityFallbacks(t *testing.T) {
	working := []string{"Monday", "Tuesday", "Wednesday"}

	days, maxHours := staffCapacity(staffMember("s1", "Alice", nil, nil, 0), working, 6)
	assert.Equal(t, working, days)
	assert.Equal(t, 18, maxHours)

	days, maxHours = staffCapacity(staffMember("s2", "Bob", nil, []string{"Monday"}, 4), working, 6)
	assert.Equal(t, []string{"Monday"}, []string(days))
	assert.Equal(t, 4, maxHours)
}
