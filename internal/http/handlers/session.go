package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shuke0908/quantauth/domain"
)

// Cookie names the session is bound to. These are the single
// serialization boundary between Session values and transport.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// CookieWriter binds Session values to http-only cookies.
type CookieWriter struct {
	secure     bool
	refreshTTL time.Duration
}

// NewCookieWriter creates a cookie writer. Secure is set in production so
// the cookies only travel over TLS.
func NewCookieWriter(secure bool, refreshTTL time.Duration) *CookieWriter {
	return &CookieWriter{secure: secure, refreshTTL: refreshTTL}
}

// Write sets the session cookie pair on the response.
func (w *CookieWriter) Write(c *gin.Context, session *domain.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccessToken, session.AccessToken, int(session.ExpiresIn), "/", "", w.secure, true)
	c.SetCookie(CookieRefreshToken, session.RefreshToken, int(w.refreshTTL.Seconds()), "/", "", w.secure, true)
}

// Clear expires both session cookies immediately. Safe to call on a
// request that carries no cookies.
func (w *CookieWriter) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieAccessToken, "", -1, "/", "", w.secure, true)
	c.SetCookie(CookieRefreshToken, "", -1, "/", "", w.secure, true)
}
