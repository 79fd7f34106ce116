package model

type Student struct {
	StudentID        string  `json:"student_id"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Email            string  `json:"email"`
	Major            string  `json:"major"`
	EnrollmentYear   int     `json:"enrollment_year"`
	EnrollmentStatus string  `json:"enrollment_status"`
	CurrentGPA       float64 `json:"current_gpa"`
	CreditsEarned    int     `json:"credits_earned"`
	DegreeProgramID  int64   `json:"degree_program_id"`
	PasswordHash     string  `json:"-"`
}

func (s *Student) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

type Admin struct {
	AdminID      int64  `json:"admin_id"`
	Username     string `json:"username"`
	FullName     string `json:"full_name"`
	PasswordHash string `json:"-"`
}

// StudentSummary is the student row joined with its degree program.
type StudentSummary struct {
	Student
	DegreeName      string `json:"degree_name"`
	DegreeCode      string `json:"degree_code"`
	CreditsRequired int    `json:"credits_required"`
}

type CourseRecord struct {
	CourseCode   string `json:"course_code"`
	CourseName   string `json:"course_name"`
	CreditHours  int    `json:"credit_hours"`
	Grade        string `json:"grade"`
	Term         string `json:"term"`
	AcademicYear int    `json:"academic_year"`
	Status       string `json:"status"`
}

type CategoryProgress struct {
	Category        string `json:"category"`
	CreditsRequired int    `json:"credits_required"`
	CreditsEarned   int    `json:"credits_earned"`
}

// StudentSnapshot is the authoritative record of one student built from the
// student records store. It is rendered to text only when building prompts.
type StudentSnapshot struct {
	StudentID        string             `json:"student_id"`
	Name             string             `json:"name"`
	Email            string             `json:"email"`
	Major            string             `json:"major"`
	EnrollmentYear   int                `json:"enrollment_year"`
	EnrollmentStatus string             `json:"enrollment_status"`
	GPA              float64            `json:"gpa"`
	CreditsEarned    int                `json:"credits_earned"`
	CreditsRequired  int                `json:"credits_required"`
	DegreeCode       string             `json:"degree_code"`
	DegreeName       string             `json:"degree_name"`
	Courses          []CourseRecord     `json:"courses"`
	CoreProgress     []CategoryProgress `json:"core_progress"`
}

// CompletedCodes returns the normalized codes of every course on the
// student's history, including in-progress ones.
func (s *StudentSnapshot) CompletedCodes() map[string]struct{} {
	out := make(map[string]struct{})
	if s == nil {
		return out
	}
	for _, c := range s.Courses {
		code := NormalizeCode(c.CourseCode)
		if code == "" {
			continue
		}
		out[code] = struct{}{}
	}
	return out
}
