package export

import (
	"fmt"

	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/models"
)

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

const timeColumn = "Time"

// GridDataset flattens a schedule grid into a table with one row per hour
// slot and one column per working day. Course and staff ids are resolved to
// display names through the provided lookup maps; unresolved ids fall back
// to the raw id so the export never silently drops an assignment.
func GridDataset(grid models.ScheduleGrid, courseNames, staffNames map[string]string) Dataset {
	headers := []string{timeColumn}
	maxSlots := 0
	for _, day := range grid.Days {
		headers = append(headers, day.Day)
		if len(day.Slots) > maxSlots {
			maxSlots = len(day.Slots)
		}
	}

	rows := make([]map[string]string, 0, maxSlots)
	for i := 0; i < maxSlots; i++ {
		row := map[string]string{}
		for _, day := range grid.Days {
			if i >= len(day.Slots) {
				continue
			}
			slot := day.Slots[i]
			if row[timeColumn] == "" {
				row[timeColumn] = fmt.Sprintf("%s - %s", slot.Start, slot.End)
			}
			row[day.Day] = formatAssignment(slot, courseNames, staffNames)
		}
		rows = append(rows, row)
	}

	return Dataset{Headers: headers, Rows: rows}
}

func formatAssignment(slot models.Slot, courseNames, staffNames map[string]string) string {
	if slot.CourseID == nil || slot.StaffID == nil {
		return ""
	}
	course := lookupName(courseNames, *slot.CourseID)
	staff := lookupName(staffNames, *slot.StaffID)
	return fmt.Sprintf("%s (%s)", course, staff)
}

func lookupName(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return id
}
