package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// CSRF protects every unsafe request with gorilla/csrf. Without secure cookies the requests are marked
// as plaintext HTTP, which skips the HTTPS-only referer check.
func CSRF(secret []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(
		secret,
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteStrictMode),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)),
	)

	return func(c *gin.Context) {
		if !secure {
			c.Request = csrf.PlaintextHTTPRequest(c.Request)
		}

		called := false
		handler := protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			c.Next()
		}))
		handler.ServeHTTP(c.Writer, c.Request)

		if !called {
			c.Abort()
		}
	}
}

// csrfErrorHandler sends the user back to the page the form belongs to.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	utils.LogMessageWithFieldsAndError(r.Context(), "warn", "CSRF validation failed", csrf.FailureReason(r))
	http.Redirect(w, r, FormPage(r.URL.Path)+"?"+url.Values{"error": {schemas.FormExpired.Code}}.Encode(), http.StatusSeeOther)
}

// FormPage maps a form action such as /books/delete to the page rendering it.
func FormPage(path string) string {
	segments := strings.SplitN(strings.Trim(path, "/"), "/", 2)
	if segments[0] == "" {
		return "/"
	}
	return "/" + segments[0]
}
