// Package render turns generated study content into printable documents.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"vetstudy-backend/internal/generation"
)

//go:embed templates/*.tmpl
var files embed.FS

var templates = template.Must(template.New("render").Funcs(template.FuncMap{
	"inc":    func(i int) int { return i + 1 },
	"letter": func(i int) string { return string(rune('A' + i)) },
}).ParseFS(files, "templates/*.tmpl"))

type studyPlanPage struct {
	Theme string
	Plan  generation.StudyPlan
}

// StudyPlanHTML renders a validated study plan as a standalone HTML page.
// All model text is escaped.
func StudyPlanHTML(plan generation.StudyPlan, theme string) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "study_plan.html.tmpl", studyPlanPage{Theme: theme, Plan: plan}); err != nil {
		return "", fmt.Errorf("render study plan: %w", err)
	}
	return buf.String(), nil
}
