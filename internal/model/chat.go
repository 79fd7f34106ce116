package model

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type ChatMessage struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Citation points at one retrieved page. AcademicYear is set for bulletin
// pages and DocumentYear for supporting documents.
type Citation struct {
	Source       string `json:"source"`
	AcademicYear string `json:"academic_year,omitempty"`
	DocumentYear string `json:"document_year,omitempty"`
	Page         int    `json:"page"`
}
