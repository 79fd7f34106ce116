package model

import (
	"regexp"
	"strconv"
	"strings"
)

type Section string

const (
	SectionUnknown  Section = "unknown"
	SectionRequired Section = "required"
	SectionElective Section = "elective"
)

// PageText is the text of one PDF page. PageNumber is 1-based.
type PageText struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

type CatalogCourse struct {
	Code        string  `json:"code"`
	Title       string  `json:"title"`
	CreditsText string  `json:"credits_text"`
	Section     Section `json:"section"`
}

var courseNumberRegex = regexp.MustCompile(`\b\d{3}\b`)

// Number returns the 3 digit course number of the code, or 0 when the code has none.
func (c CatalogCourse) Number() int {
	m := courseNumberRegex.FindString(c.Code)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

type DegreePlan struct {
	Required  []CatalogCourse `json:"required"`
	Electives []CatalogCourse `json:"electives"`
}

func (p *DegreePlan) Total() int {
	if p == nil {
		return 0
	}
	return len(p.Required) + len(p.Electives)
}

func (p *DegreePlan) IsEmpty() bool {
	return p.Total() == 0
}

// NormalizeCode uppercases a course code and collapses internal whitespace.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.Join(strings.Fields(code), " "))
}

type RagHit struct {
	Page    int     `json:"page"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet"`
}
