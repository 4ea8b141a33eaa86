package gate

import (
	"net/http"
	"net/url"
)

// ValidOrigin is the cross-site request check. Safe methods pass. Any other method
// needs an Origin whose host equals Host, or when Origin is absent a Referer whose
// host equals Host.
func ValidOrigin(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}

	host := r.Host
	if host == "" {
		return false
	}

	if origin := r.Header.Get("Origin"); origin != "" {
		return sameHost(origin, host)
	}
	if referer := r.Header.Get("Referer"); referer != "" {
		return sameHost(referer, host)
	}
	return false
}

func sameHost(raw, host string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == host
}
