package gate

import "net/http"

// Jar adapts one request/response pair to domain.CookieJar. Cookies set during the
// request are visible to later reads.
type Jar struct {
	r   *http.Request
	w   http.ResponseWriter
	set map[string]string
}

// NewJar creates a jar for r, writing Set-Cookie headers to w.
func NewJar(w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{r: r, w: w, set: make(map[string]string)}
}

// Get returns the cookie value or "".
func (j *Jar) Get(name string) string {
	if v, ok := j.set[name]; ok {
		return v
	}
	c, err := j.r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

// Set writes the cookie to the response.
func (j *Jar) Set(c *http.Cookie) {
	if c.MaxAge < 0 {
		j.set[c.Name] = ""
	} else {
		j.set[c.Name] = c.Value
	}
	http.SetCookie(j.w, c)
}
