package model

const (
	BulletinCategoryMajor = "Major"
	BulletinCategoryMinor = "Minor"
)

type Bulletin struct {
	ID           int64  `json:"id"`
	FileName     string `json:"file_name"`
	Locator      string `json:"locator"`
	Category     string `json:"category"`
	AcademicYear string `json:"academic_year"`
	Description  string `json:"description"`
	Pages        int    `json:"pages"`
	Courses      int    `json:"courses"`
	IsActive     bool   `json:"is_active"`
	UploadedBy   string `json:"uploaded_by"`
	Ctime        int64  `json:"ctime"`
}

type SupportingDocument struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DocumentType string `json:"document_type"`
	DocumentYear string `json:"document_year"`
	CourseCode   string `json:"course_code"`
	Locator      string `json:"locator"`
	Description  string `json:"description"`
	IsActive     bool   `json:"is_active"`
	UploadedBy   string `json:"uploaded_by"`
	Ctime        int64  `json:"ctime"`
}

// DocumentHit groups the retrieved snippets of one supporting document.
type DocumentHit struct {
	DocumentID   int64    `json:"document_id"`
	Name         string   `json:"name"`
	DocumentType string   `json:"document_type"`
	DocumentYear string   `json:"document_year"`
	CourseCode   string   `json:"course_code"`
	Hits         []RagHit `json:"hits"`
}
