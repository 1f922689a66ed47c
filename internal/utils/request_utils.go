package utils

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"library-admin/internal/schemas"
)

const (
	successParam = "success"
	errorParam   = "error"
)

// RedirectWithSuccess finishes a form submission by redirecting to path with an inline success message.
func RedirectWithSuccess(c *gin.Context, path, message string) {
	LogMessageWithFields(c, "info", "Redirecting to "+path+": "+message)
	c.Redirect(http.StatusSeeOther, path+"?"+url.Values{successParam: {message}}.Encode())
}

// RedirectWithError logs err and redirects to path, which shows customErr inline.
func RedirectWithError(c *gin.Context, path string, customErr *schemas.CustomError, err error) {
	if err != nil {
		LogMessageWithFieldsAndError(c, "error", "Error occurred", err)
	}
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	c.Redirect(http.StatusSeeOther, path+"?"+url.Values{errorParam: {customErr.Code}}.Encode())
}

// FlashMessages reads the inline messages a redirect left in the query string. Unknown error codes are ignored.
func FlashMessages(c *gin.Context) (string, *schemas.CustomError) {
	success := GetValidator().Sanitize(c.Query(successParam))
	return success, schemas.LookupError(c.Query(errorParam))
}

// WriteAndLogError logs the provided error and answers with the custom error and the status code.
func WriteAndLogError(c *gin.Context, customErr *schemas.CustomError, statusCode int, err error) {
	LogMessageWithFieldsAndError(c, "error", "Error occurred", err)
	LogMessageWithFields(c, "error", "Returning "+customErr.Code+" / "+customErr.Message)
	c.String(statusCode, customErr.Message)
}
