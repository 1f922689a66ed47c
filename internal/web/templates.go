// Package web holds the server-rendered pages of the application.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateLayout = "2006-01-02"

// Templates parses the embedded page templates. Pages are addressed by their define name, e.g. "books".
func Templates() (*template.Template, error) {
	return template.New("pages").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

func FuncMap() template.FuncMap {
	return template.FuncMap{
		"date":  formatDate,
		"money": func(amount float64) string { return fmt.Sprintf("%.2f", amount) },
	}
}

// formatDate renders DATE values, invalid or zero dates as a dash.
func formatDate(value interface{}) string {
	switch d := value.(type) {
	case time.Time:
		if d.IsZero() {
			return "-"
		}
		return d.Format(dateLayout)
	case pgtype.Date:
		if !d.Valid {
			return "-"
		}
		return d.Time.Format(dateLayout)
	default:
		return "-"
	}
}
