package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"library-admin/internal/managers"
	"library-admin/internal/schemas"
	"library-admin/internal/utils"
)

// SessionCookieName is the cookie holding the signed session token.
const SessionCookieName = "library_session"

// RequireSession admits requests carrying a valid, unexpired session cookie and stores the identity
// under utils.SessionKey. Everyone else is sent to the login page.
func RequireSession(jwtMgr managers.JWTMgr) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			utils.LogMessageWithFields(c, "debug", "No session cookie, redirecting to login")
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}

		identity, err := jwtMgr.ValidateJWT(token)
		if err != nil || identity.Expired(time.Now()) {
			utils.LogMessageWithFields(c, "info", "Rejected session cookie, redirecting to login")
			c.Redirect(http.StatusSeeOther, "/login?"+url.Values{"error": {schemas.Unauthorized.Code}}.Encode())
			c.Abort()
			return
		}

		c.Set(utils.SessionKey.String(), identity)
		c.Next()
	}
}

// CurrentSession returns the identity stored by RequireSession, or nil.
func CurrentSession(c *gin.Context) *schemas.SessionIdentity {
	identity, ok := c.Value(utils.SessionKey.String()).(*schemas.SessionIdentity)
	if !ok {
		return nil
	}
	return identity
}

// SetSessionCookie writes the session token as an HttpOnly cookie expiring with the session.
func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, maxAge, "/", "", secure, true)
}

// ClearSessionCookie removes the session cookie.
func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
}
