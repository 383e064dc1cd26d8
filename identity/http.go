package identity

import (
	"net/http"
)

// HTTPCookies reads the mirror cookie from a request and writes updates
// to the response.
type HTTPCookies struct {
	w http.ResponseWriter
	r *http.Request
}

func NewHTTPCookies(w http.ResponseWriter, r *http.Request) *HTTPCookies {
	return &HTTPCookies{w: w, r: r}
}

func (c *HTTPCookies) Cookie() (string, bool) {
	ck, err := c.r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return ck.Value, true
}

func (c *HTTPCookies) SetCookie(ck *http.Cookie) {
	http.SetCookie(c.w, ck)
}
