// Package web serves the server-rendered moderation dashboard.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/CaioWing/paddock/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var funcMap = template.FuncMap{
	"formatDate": formatDate,
	"statusClass": func(s domain.ListingStatus) string {
		return "status-" + strings.ToLower(string(s))
	},
	"add": func(a, b int) int { return a + b },
	"seq": func(start, end int) []int {
		var s []int
		for i := start; i <= end; i++ {
			s = append(s, i)
		}
		return s
	},
	"join": strings.Join,
	"price": func(f float64) string {
		return fmt.Sprintf("%.2f", f)
	},
}

// formatDate renders timestamps as MM/DD/YYYY.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("01/02/2006")
}

type renderer struct {
	tmpl *template.Template
}

func newRenderer() (*renderer, error) {
	t, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &renderer{tmpl: t}, nil
}

// render executes into a buffer so that a template failure never leaves a
// half-written page behind.
func (r *renderer) render(w http.ResponseWriter, status int, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
