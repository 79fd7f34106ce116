package catalog

import (
	"regexp"
	"strings"

	"github.com/xxxsen/advisor/internal/model"
)

const (
	requiredSentinel = "required courses"
	electiveSentinel = "directed electives"
)

// courseLineRegex matches "CS 311 - Data Structures Credits: 3" with an
// optional trailing "or". En and em dashes are accepted as separators since
// PDF text extraction often produces them.
var courseLineRegex = regexp.MustCompile(`^(?P<dept>[A-Z]{2,4})\s*(?P<num>\d{3})\s*[-–—]\s*(?P<title>.+?)\s*Credits:\s*(?P<cr>[\d\-]+)\s*(?:or)?\s*$`)

var (
	deptIdx    = courseLineRegex.SubexpIndex("dept")
	numIdx     = courseLineRegex.SubexpIndex("num")
	titleIdx   = courseLineRegex.SubexpIndex("title")
	creditsIdx = courseLineRegex.SubexpIndex("cr")
)

// Parse recovers required and elective courses from bulletin page text.
// Malformed lines are skipped; courses seen before any section sentinel are
// kept as electives.
func Parse(pages []model.PageText) *model.DegreePlan {
	plan := &model.DegreePlan{}
	section := model.SectionUnknown
	for _, line := range flattenLines(pages) {
		lower := strings.ToLower(line)
		if strings.Contains(lower, requiredSentinel) {
			section = model.SectionRequired
			continue
		}
		if strings.Contains(lower, electiveSentinel) {
			section = model.SectionElective
			continue
		}
		course, ok := parseLine(line)
		if !ok {
			continue
		}
		course.Section = section
		if section == model.SectionRequired {
			plan.Required = append(plan.Required, course)
			continue
		}
		plan.Electives = append(plan.Electives, course)
	}
	plan.Required = dedupe(plan.Required)
	plan.Electives = dedupe(plan.Electives)
	return plan
}

func parseLine(line string) (model.CatalogCourse, bool) {
	m := courseLineRegex.FindStringSubmatch(line)
	if m == nil {
		return model.CatalogCourse{}, false
	}
	return model.CatalogCourse{
		Code:        strings.ToUpper(m[deptIdx]) + " " + m[numIdx],
		Title:       strings.TrimSpace(m[titleIdx]),
		CreditsText: strings.TrimSpace(m[creditsIdx]),
	}, true
}

func flattenLines(pages []model.PageText) []string {
	var lines []string
	for _, p := range pages {
		for _, raw := range strings.Split(p.Text, "\n") {
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func dedupe(courses []model.CatalogCourse) []model.CatalogCourse {
	if len(courses) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(courses))
	out := make([]model.CatalogCourse, 0, len(courses))
	for _, c := range courses {
		key := strings.ToUpper(c.Code)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
