package studentctx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xxxsen/advisor/internal/model"
)

const (
	BannerStart = "=== STUDENT DB CONTEXT (authoritative) ==="
	BannerEnd   = "=== END STUDENT DB CONTEXT ==="
	// Missing is used in place of a context block when no student record is loaded.
	Missing = "(No student DB context loaded.)"

	notAvailable = "(not available)"
)

const (
	StatusCompleted  = "Completed"
	StatusInProgress = "InProgress"
)

var completedLineRegex = regexp.MustCompile(`(?i)-\s+([A-Z]{2,4})\s*(\d{3})\s*:`)

// Render formats a snapshot into the fixed text block handed to the model.
func Render(s *model.StudentSnapshot) string {
	if s == nil {
		return Missing
	}
	var sb strings.Builder
	sb.WriteString(BannerStart + "\n")
	fmt.Fprintf(&sb, "Name: %s\n", s.Name)
	fmt.Fprintf(&sb, "StudentID: %s\n", s.StudentID)
	fmt.Fprintf(&sb, "Major: %s\n", s.Major)
	if s.EnrollmentYear > 0 {
		fmt.Fprintf(&sb, "Enrollment Year: %d\n", s.EnrollmentYear)
	}
	fmt.Fprintf(&sb, "Enrollment Status: %s\n", s.EnrollmentStatus)
	fmt.Fprintf(&sb, "Current GPA: %s\n", FormatGPA(s.GPA))
	fmt.Fprintf(&sb, "Credits Earned: %d / %d\n", s.CreditsEarned, s.CreditsRequired)
	fmt.Fprintf(&sb, "Degree Code: %s\n", s.DegreeCode)
	sb.WriteString("\n")

	var completed, inProgress []model.CourseRecord
	for _, c := range s.Courses {
		if strings.EqualFold(c.Status, StatusInProgress) {
			inProgress = append(inProgress, c)
			continue
		}
		completed = append(completed, c)
	}
	sb.WriteString("Completed Courses (from StudentCourseHistory):\n")
	writeCourses(&sb, completed)
	if len(inProgress) > 0 {
		sb.WriteString("\nIn-Progress Courses:\n")
		writeCourses(&sb, inProgress)
	}
	if len(s.CoreProgress) > 0 {
		sb.WriteString("\nGeneral Education Progress:\n")
		for _, p := range s.CoreProgress {
			fmt.Fprintf(&sb, "* %s: %d / %d credits\n", p.Category, p.CreditsEarned, p.CreditsRequired)
		}
	}
	sb.WriteString(BannerEnd + "\n")
	return sb.String()
}

func writeCourses(sb *strings.Builder, courses []model.CourseRecord) {
	if len(courses) == 0 {
		sb.WriteString("- (none found)\n")
		return
	}
	for _, c := range courses {
		grade := c.Grade
		if grade == "" {
			grade = "-"
		}
		fmt.Fprintf(sb, "- %s: %s (%d hrs) Grade %s — %s %d\n",
			c.CourseCode, c.CourseName, c.CreditHours, grade, c.Term, c.AcademicYear)
	}
}

// ShortSnapshot is the four line identity summary used inside prompts in
// place of the full context block.
func ShortSnapshot(s *model.StudentSnapshot) string {
	if s == nil {
		return fmt.Sprintf("- Name: %s\n- Major: %s\n- GPA: %s\n- Credits: %s",
			notAvailable, notAvailable, notAvailable, notAvailable)
	}
	return fmt.Sprintf("- Name: %s\n- Major: %s\n- GPA: %s\n- Credits: %d / %d",
		orNA(s.Name), orNA(s.Major), FormatGPA(s.GPA), s.CreditsEarned, s.CreditsRequired)
}

func FormatGPA(gpa float64) string {
	return strconv.FormatFloat(gpa, 'f', 2, 64)
}

// ExtractCompletedCourseCodes collects "DEPT NNN" codes from lines shaped
// like "- CS 215: ..." in rendered context text. It serves text-only
// sources such as stored transcripts; structured callers use
// StudentSnapshot.CompletedCodes.
func ExtractCompletedCourseCodes(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, line := range strings.Split(text, "\n") {
		m := completedLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		out[strings.ToUpper(m[1])+" "+m[2]] = struct{}{}
	}
	return out
}

func orNA(v string) string {
	if strings.TrimSpace(v) == "" {
		return notAvailable
	}
	return v
}
