package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// ValidateAndSanitizeForm binds the submitted form into a fresh T, strips markup from its string
// fields and validates it. Invalid submissions are redirected to redirectPath with an inline error.
// Handlers read the result with utils.SanitizedPayloadKey.
func ValidateAndSanitizeForm[T any](redirectPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		obj := new(T)
		if err := c.ShouldBind(obj); err != nil {
			utils.RedirectWithError(c, redirectPath, schemas.BadRequest, err)
			c.Abort()
			return
		}

		validator := utils.GetValidator()
		if err := validator.SanitizeData(obj); err != nil {
			utils.RedirectWithError(c, redirectPath, schemas.BadRequest, err)
			c.Abort()
			return
		}

		if err := validator.Validate.Struct(obj); err != nil {
			utils.RedirectWithError(c, redirectPath, schemas.BadRequest, errors.Join(errors.New("validation failed"), err))
			c.Abort()
			return
		}

		c.Set(utils.SanitizedPayloadKey.String(), obj)
		c.Next()
	}
}
