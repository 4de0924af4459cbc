// Package academics derives a student's current semester from their
// enrollment year and the calendar date.
package academics

import (
	"time"

	"github.com/arnavkapoor/campuschat/internal/api"
)

// The academic year rolls over in August: July 2025 still belongs to the
// 2024 academic year, August 2025 starts the 2025 one.
const academicYearStart = time.August

// EstimateSemester picks the semester a student enrolled in batchYear is
// most likely attending at time now. semesters must be the branch's
// semesters ordered by semester number, as served by the backend.
//
// The estimate counts two semesters per academic year: the odd slot runs
// August through December, the even slot January through July. A semester
// whose number is within one of the estimate is accepted as-is; otherwise
// the estimate is used as a position into the list, clamped to the valid
// range. An empty list yields ok=false and no semester.
func EstimateSemester(batchYear int, now time.Time, semesters []api.Semester) (api.Semester, bool) {
	if len(semesters) == 0 {
		return api.Semester{}, false
	}

	academicYear := now.Year()
	if now.Month() < academicYearStart {
		academicYear--
	}

	yearsPassed := academicYear - batchYear

	semesterInYear := 2
	if now.Month() >= academicYearStart {
		semesterInYear = 1
	}

	estimate := yearsPassed*2 + semesterInYear

	// An exact number match always wins; only then does a neighbor
	// within one of the estimate qualify.
	for _, sem := range semesters {
		if sem.SemesterNumber == estimate {
			return sem, true
		}
	}
	for _, sem := range semesters {
		diff := sem.SemesterNumber - estimate
		if diff >= -1 && diff <= 1 {
			return sem, true
		}
	}

	idx := clamp(estimate-1, 0, len(semesters)-1)
	return semesters[idx], true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
