package catalog

import (
	"sort"

	"github.com/xxxsen/advisor/internal/model"
)

const DefaultRecommendCount = 6

// Recommend lists up to count courses the student has not completed.
// Remaining required courses come first ordered by course number; electives
// ordered by code fill the rest only when required courses run short.
func Recommend(plan *model.DegreePlan, completed map[string]struct{}, count int) []model.CatalogCourse {
	if plan == nil || count <= 0 {
		return nil
	}
	required := remaining(plan.Required, completed)
	sort.SliceStable(required, func(i, j int) bool {
		return required[i].Number() < required[j].Number()
	})
	if len(required) >= count {
		return required[:count]
	}
	electives := remaining(plan.Electives, completed)
	sort.SliceStable(electives, func(i, j int) bool {
		return electives[i].Code < electives[j].Code
	})
	out := append(required, electives...)
	if len(out) > count {
		out = out[:count]
	}
	return out
}

// SortedRequired returns a copy of the required list ordered by course number.
func SortedRequired(plan *model.DegreePlan) []model.CatalogCourse {
	if plan == nil {
		return nil
	}
	out := append([]model.CatalogCourse(nil), plan.Required...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Number() < out[j].Number()
	})
	return out
}

// SortedElectives returns a copy of the elective list ordered by code.
func SortedElectives(plan *model.DegreePlan) []model.CatalogCourse {
	if plan == nil {
		return nil
	}
	out := append([]model.CatalogCourse(nil), plan.Electives...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Code < out[j].Code
	})
	return out
}

func remaining(courses []model.CatalogCourse, completed map[string]struct{}) []model.CatalogCourse {
	out := make([]model.CatalogCourse, 0, len(courses))
	for _, c := range courses {
		if _, done := completed[model.NormalizeCode(c.Code)]; done {
			continue
		}
		out = append(out, c)
	}
	return out
}
