package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/studentctx"
)

func testStudent() *model.StudentSnapshot {
	return &model.StudentSnapshot{
		StudentID:       "1001",
		Name:            "Ada Lovelace",
		Major:           "Computer Science",
		GPA:             3.2,
		CreditsEarned:   60,
		CreditsRequired: 120,
		Courses: []model.CourseRecord{
			{CourseCode: "CS 215", CourseName: "Intro Programming", CreditHours: 4, Grade: "A", Term: "Fall", AcademicYear: 2023},
		},
	}
}

func TestBuildPlanning(t *testing.T) {
	var rec []model.CatalogCourse
	for i := 0; i < 8; i++ {
		rec = append(rec, model.CatalogCourse{Code: fmt.Sprintf("CS %d", 300+i), Title: "Course", CreditsText: "3"})
	}
	rec[0].CreditsText = ""
	out := BuildPlanning(PlanningInput{
		Question:    "What should I take next?",
		Student:     testStudent(),
		CatalogName: "cs-bulletin.pdf",
		Recommended: rec,
	})
	require.True(t, strings.HasPrefix(out, "You are an AI Academic Advisor.\n\nSTRICT RULES:"))
	require.Contains(t, out, "## Suggested Schedule (12–15 credits)")
	require.Contains(t, out, "Source PDF: cs-bulletin.pdf")
	require.Contains(t, out, "- CS 300 — Course\n")
	require.Contains(t, out, "- CS 301 — Course | Credits: 3\n")
	require.Contains(t, out, "- CS 305 — Course | Credits: 3\n")
	require.Contains(t, out, "- CS 307 — Course | Credits: 3\n")
	require.Equal(t, 8, strings.Count(out, " — Course"))
	require.Contains(t, out, "- Name: Ada Lovelace")
	require.NotContains(t, out, studentctx.BannerStart)
	require.True(t, strings.HasSuffix(out, "Student Question:\nWhat should I take next?\n"))
}

func TestBuildGeneralSamplesCatalog(t *testing.T) {
	plan := &model.DegreePlan{}
	for i := 20; i > 0; i-- {
		plan.Required = append(plan.Required, model.CatalogCourse{Code: fmt.Sprintf("CS %d", 100+i), Title: "Req", CreditsText: "3"})
	}
	for i := 0; i < 12; i++ {
		plan.Electives = append(plan.Electives, model.CatalogCourse{Code: fmt.Sprintf("ART %d", 400-i), Title: "Elec"})
	}
	sample := SampleCourses(plan)
	require.Len(t, sample, 25)
	require.Equal(t, "CS 101", sample[0].Code)
	require.Equal(t, "CS 115", sample[14].Code)
	require.Equal(t, "ART 389", sample[15].Code)

	out := BuildGeneral(GeneralInput{
		Question: "Tell me about the capstone",
		Student:  testStudent(),
		Plan:     plan,
		Snippets: []model.RagHit{{Page: 3, Snippet: "capstone details"}},
		Documents: []model.DocumentHit{{
			Name: "Advising Guide", DocumentType: "Guide", DocumentYear: "2024-2025",
			Hits: []model.RagHit{{Page: 1, Snippet: "guide text"}},
		}},
	})
	require.Contains(t, out, "Catalog from PDF: Uploaded PDF (subset)")
	require.Contains(t, out, "- CS 101 — Req (3 cr)\n")
	require.Contains(t, out, "- ART 389 — Elec\n")
	require.NotContains(t, out, "CS 116")
	require.Contains(t, out, "[Page 3] capstone details")
	require.Contains(t, out, "[Advising Guide (Guide, 2024-2025), page 1] guide text")
	require.True(t, strings.HasSuffix(out, "Question:\nTell me about the capstone\n"))
}

func TestProfileAnswer(t *testing.T) {
	out := ProfileAnswer(testStudent())
	require.True(t, strings.HasPrefix(out, "## Answer\nHere’s your profile from the database.\n\n"+studentctx.BannerStart))
	require.Contains(t, out, "- CS 215: Intro Programming")
}

func TestCitations(t *testing.T) {
	cites := Citations("bulletin.pdf", "2024-2025",
		[]model.RagHit{{Page: 9}, {Page: 2}, {Page: 5}},
		[]model.DocumentHit{
			{Name: "Guide", Hits: []model.RagHit{{Page: 4}, {Page: 1}}},
			{Name: "Syllabus", DocumentYear: "2023", Hits: []model.RagHit{{Page: 3}}},
		},
	)
	require.Equal(t, []model.Citation{
		{Source: "bulletin.pdf", AcademicYear: "2024-2025", Page: 2},
		{Source: "bulletin.pdf", AcademicYear: "2024-2025", Page: 5},
		{Source: "bulletin.pdf", AcademicYear: "2024-2025", Page: 9},
		{Source: "Guide", Page: 1},
		{Source: "Guide", Page: 4},
		{Source: "Syllabus", DocumentYear: "2023", Page: 3},
	}, cites)
	block := CitationBlock(cites)
	require.Equal(t, "\n\n**Sources**\n- bulletin.pdf (2024-2025), page 2\n- bulletin.pdf (2024-2025), page 5\n- bulletin.pdf (2024-2025), page 9\n- Guide, page 1\n- Guide, page 4\n- Syllabus (2023), page 3", block)
	require.Empty(t, CitationBlock(nil))
}
