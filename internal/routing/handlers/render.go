package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"library-admin/internal/managers"
	"library-admin/internal/middleware"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// newPage collects what every page shows: sidebar state, CSRF field and the messages of the last redirect.
func newPage(c *gin.Context, title, active string) schemas.PageDTO {
	success, customErr := utils.FlashMessages(c)
	return schemas.PageDTO{
		Title:     title,
		Active:    active,
		Session:   middleware.CurrentSession(c),
		CSRFField: csrf.TemplateField(c.Request),
		Success:   success,
		Error:     customErr,
	}
}

// renderPage writes the named page. A page that failed to load its data is still rendered, with the error inline.
func renderPage(c *gin.Context, name string, page *schemas.PageDTO, data interface{}, err error) {
	status := http.StatusOK
	if err != nil {
		utils.LogMessageWithFieldsAndError(c, "error", "Error loading page "+name, err)
		page.Error = schemas.DatabaseError
		page.Success = ""
		status = http.StatusInternalServerError
	}
	c.HTML(status, name, data)
}

// customErrorFor maps manager errors onto the messages shown to staff. Unknown errors are database errors.
func customErrorFor(err error) *schemas.CustomError {
	switch {
	case errors.Is(err, managers.ErrInvalidCredentials):
		return schemas.InvalidCredentials
	case errors.Is(err, managers.ErrNotFound):
		return schemas.NotFound
	case errors.Is(err, managers.ErrDuplicateEmail):
		return schemas.EmailTaken
	case errors.Is(err, managers.ErrEmailUnreachable):
		return schemas.EmailUnreachable
	case errors.Is(err, managers.ErrNoCopiesAvailable):
		return schemas.NoCopiesAvailable
	case errors.Is(err, managers.ErrLoanLimitReached):
		return schemas.LoanLimitReached
	case errors.Is(err, managers.ErrLoanNotActive):
		return schemas.LoanNotActive
	case errors.Is(err, managers.ErrFineExists):
		return schemas.FineExists
	case errors.Is(err, managers.ErrDueBeforeIssue):
		return schemas.InvalidDueDate
	default:
		return schemas.DatabaseError
	}
}

// today is the default value of the date inputs.
func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func payload[T any](c *gin.Context) *T {
	return c.MustGet(utils.SanitizedPayloadKey.String()).(*T)
}
