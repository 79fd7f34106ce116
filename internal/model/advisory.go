package model

type Course struct {
	CourseID     int64  `json:"course_id"`
	CourseCode   string `json:"course_code"`
	CourseName   string `json:"course_name"`
	CreditHours  int    `json:"credit_hours"`
	TypicalTerms string `json:"typical_terms"`
}

type PrerequisiteCheckResult struct {
	CourseCode    string   `json:"course_code"`
	Satisfied     bool     `json:"satisfied"`
	Prerequisites []string `json:"prerequisites"`
	Missing       []string `json:"missing"`
	Message       string   `json:"message"`
}

type ConflictResult struct {
	CourseCode  string   `json:"course_code"`
	HasConflict bool     `json:"has_conflict"`
	Conflicts   []string `json:"conflicts"`
	Warnings    []string `json:"warnings"`
	Message     string   `json:"message"`
}

type PlannedCourse struct {
	CourseCode   string `json:"course_code"`
	Term         string `json:"term"`
	AcademicYear int    `json:"academic_year"`
}

type HypotheticalCourse struct {
	CourseCode  string `json:"course_code"`
	CreditHours int    `json:"credit_hours"`
	Grade       string `json:"grade"`
}

type GpaSummary struct {
	GPA           float64 `json:"gpa"`
	QualityPoints float64 `json:"quality_points"`
	GradedCredits int     `json:"graded_credits"`
}

type WhatIfResult struct {
	ProjectedGPA     float64 `json:"projected_gpa"`
	ProjectedCredits int     `json:"projected_credits"`
	Message          string  `json:"message"`
}

type GpaNeeded struct {
	CurrentGPA       float64 `json:"current_gpa"`
	TargetGPA        float64 `json:"target_gpa"`
	RemainingCredits int     `json:"remaining_credits"`
	RequiredGPA      float64 `json:"required_gpa"`
	Achievable       bool    `json:"achievable"`
	Message          string  `json:"message"`
}
