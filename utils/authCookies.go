package utils

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// SetAuthCookies stores the token pair as HttpOnly cookies. secure is
// disabled only for local development over plain HTTP.
func SetAuthCookies(c *gin.Context, accessToken, refreshToken string, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	setCookie(c, AccessTokenCookie, accessToken, AccessTokenExpiry, secure)
	setCookie(c, RefreshTokenCookie, refreshToken, RefreshTokenExpiry, secure)
}

// ClearAuthCookies expires both token cookies.
func ClearAuthCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", secure, true)
	c.SetCookie(RefreshTokenCookie, "", -1, "/", "", secure, true)
}

func setCookie(c *gin.Context, name, value string, expiry time.Duration, secure bool) {
	c.SetCookie(name, value, int(expiry.Seconds()), "/", "", secure, true)
}
