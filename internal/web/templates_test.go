package web

import (
	"bytes"
	"html/template"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-admin/internal/schemas"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{"login", "books", "users", "issues", "fines"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-02-29", formatDate(day))
	assert.Equal(t, "2024-02-29", formatDate(pgtype.Date{Time: day, Valid: true}))
	assert.Equal(t, "-", formatDate(pgtype.Date{}))
	assert.Equal(t, "-", formatDate(time.Time{}))
}

func TestBooksPageEscapesContent(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var out bytes.Buffer
	err = tmpl.ExecuteTemplate(&out, "books", schemas.BooksPageDTO{
		PageDTO: schemas.PageDTO{
			Title:     "Books",
			Active:    "books",
			Session:   &schemas.SessionIdentity{Name: "Ada"},
			CSRFField: template.HTML(`<input type="hidden" name="gorilla.csrf.Token" value="tok">`),
			Success:   "Book added",
		},
		Books: []schemas.Book{{ID: 1, Title: "<i>Dune</i>", Author: "Frank Herbert", YearPublished: 1965, CopiesAvailable: 2}},
	})
	require.NoError(t, err)

	html := out.String()
	assert.Contains(t, html, "&lt;i&gt;Dune&lt;/i&gt;")
	assert.Contains(t, html, `value="tok"`)
	assert.Contains(t, html, "Book added")
	assert.Contains(t, html, "Ada")
}
