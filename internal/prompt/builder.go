package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xxxsen/advisor/internal/catalog"
	"github.com/xxxsen/advisor/internal/model"
	"github.com/xxxsen/advisor/internal/studentctx"
)

const (
	sampleRequired     = 15
	sampleElectives    = 10
	defaultCatalogName = "Uploaded PDF"
)

const (
	NoCatalogMessage          = "I didn’t find any course listings parsed from the PDF yet. Please upload the bulletin PDF again (must be text-based, not scanned)."
	NothingToRecommendMessage = "I parsed the PDF, but I couldn’t find any remaining required/elective courses to recommend."
	profileHeader             = "## Answer\nHere’s your profile from the database.\n\n"
)

const planningRules = `You are an AI Academic Advisor.

STRICT RULES:
- You may ONLY recommend courses listed in PROVIDED RECOMMENDED COURSES below.
- Do NOT invent course codes, names, or credits.
- Keep it SHORT.
- Do NOT repeat the full Student DB Context.
- If asked for a course number, give 3–5 course codes.

Output format:
## Answer
## Recommended Next Courses
## Suggested Schedule (12–15 credits)
## Notes`

const generalRules = `You are an AI Academic Advisor.

STRICT RULES:
- Use the short snapshot for identity/completed courses.
- Use ONLY the course list provided below for codes/names.
- Do NOT invent course codes/names.
- Keep it short and do NOT repeat the full DB context.
- When bulletin excerpts are provided, prefer them over supporting documents and general knowledge.`

// PlanningInput carries what the planning template needs.
type PlanningInput struct {
	Question    string
	Student     *model.StudentSnapshot
	CatalogName string
	Recommended []model.CatalogCourse
}

// GeneralInput carries what the general template needs.
type GeneralInput struct {
	Question    string
	Student     *model.StudentSnapshot
	CatalogName string
	Plan        *model.DegreePlan
	Snippets    []model.RagHit
	Documents   []model.DocumentHit
}

func ProfileAnswer(student *model.StudentSnapshot) string {
	return profileHeader + studentctx.Render(student)
}

func BuildPlanning(in PlanningInput) string {
	var sb strings.Builder
	sb.WriteString(planningRules + "\n\n")
	sb.WriteString("Student Snapshot (short):\n")
	sb.WriteString(studentctx.ShortSnapshot(in.Student) + "\n\n")
	fmt.Fprintf(&sb, "Source PDF: %s\n\n", catalogName(in.CatalogName))
	sb.WriteString("PROVIDED RECOMMENDED COURSES (use ONLY these):\n")
	for _, c := range in.Recommended {
		credits := ""
		if strings.TrimSpace(c.CreditsText) != "" {
			credits = " | Credits: " + c.CreditsText
		}
		fmt.Fprintf(&sb, "- %s — %s%s\n", c.Code, c.Title, credits)
	}
	sb.WriteString("\nStudent Question:\n")
	sb.WriteString(in.Question + "\n")
	return sb.String()
}

func BuildGeneral(in GeneralInput) string {
	var sb strings.Builder
	sb.WriteString(generalRules + "\n\n")
	sb.WriteString("Student Snapshot (short):\n")
	sb.WriteString(studentctx.ShortSnapshot(in.Student) + "\n\n")
	fmt.Fprintf(&sb, "Catalog from PDF: %s (subset)\n", catalogName(in.CatalogName))
	for _, c := range SampleCourses(in.Plan) {
		credits := ""
		if strings.TrimSpace(c.CreditsText) != "" {
			credits = " (" + c.CreditsText + " cr)"
		}
		fmt.Fprintf(&sb, "- %s — %s%s\n", c.Code, c.Title, credits)
	}
	if len(in.Snippets) > 0 {
		sb.WriteString("\nBulletin excerpts (most relevant first):\n")
		for _, h := range in.Snippets {
			fmt.Fprintf(&sb, "[Page %d] %s\n", h.Page, h.Snippet)
		}
	}
	if len(in.Documents) > 0 {
		sb.WriteString("\nSupporting documents:\n")
		for _, d := range in.Documents {
			for _, h := range d.Hits {
				fmt.Fprintf(&sb, "[%s, page %d] %s\n", documentLabel(d), h.Page, h.Snippet)
			}
		}
	}
	sb.WriteString("\nQuestion:\n")
	sb.WriteString(in.Question + "\n")
	return sb.String()
}

// SampleCourses bounds the catalog shown in the general prompt: the first
// required courses by number followed by the first electives by code.
func SampleCourses(plan *model.DegreePlan) []model.CatalogCourse {
	required := catalog.SortedRequired(plan)
	if len(required) > sampleRequired {
		required = required[:sampleRequired]
	}
	electives := catalog.SortedElectives(plan)
	if len(electives) > sampleElectives {
		electives = electives[:sampleElectives]
	}
	return append(required, electives...)
}

// Citations lists one entry per retrieved page: bulletin pages first, then
// supporting documents, each ordered by page ascending.
func Citations(bulletin, academicYear string, snippets []model.RagHit, docs []model.DocumentHit) []model.Citation {
	out := make([]model.Citation, 0, len(snippets))
	pages := make([]int, 0, len(snippets))
	for _, h := range snippets {
		pages = append(pages, h.Page)
	}
	sort.Ints(pages)
	for _, p := range pages {
		out = append(out, model.Citation{Source: catalogName(bulletin), AcademicYear: academicYear, Page: p})
	}
	for _, d := range docs {
		docPages := make([]int, 0, len(d.Hits))
		for _, h := range d.Hits {
			docPages = append(docPages, h.Page)
		}
		sort.Ints(docPages)
		for _, p := range docPages {
			out = append(out, model.Citation{Source: d.Name, DocumentYear: d.DocumentYear, Page: p})
		}
	}
	return out
}

// CitationBlock renders citations as a markdown list appended to an answer.
func CitationBlock(citations []model.Citation) string {
	if len(citations) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\n\n**Sources**\n")
	for _, c := range citations {
		year := c.AcademicYear
		if year == "" {
			year = c.DocumentYear
		}
		if year != "" {
			fmt.Fprintf(&sb, "- %s (%s), page %d\n", c.Source, year, c.Page)
			continue
		}
		fmt.Fprintf(&sb, "- %s, page %d\n", c.Source, c.Page)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func documentLabel(d model.DocumentHit) string {
	parts := make([]string, 0, 2)
	if d.DocumentType != "" {
		parts = append(parts, d.DocumentType)
	}
	if d.DocumentYear != "" {
		parts = append(parts, d.DocumentYear)
	}
	if len(parts) == 0 {
		return d.Name
	}
	return d.Name + " (" + strings.Join(parts, ", ") + ")"
}

func catalogName(name string) string {
	if strings.TrimSpace(name) == "" {
		return defaultCatalogName
	}
	return name
}
