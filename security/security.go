package security

import (
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// ValidateContentType reports whether a cookie-authenticated write uses a
// content type a plain HTML form cannot produce cross-site. Multipart is
// allowed for image uploads and checked against the origin instead.
func ValidateContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mediaType {
	case "application/json", "multipart/form-data":
		return true
	}
	return false
}

// TrustedOrigin reports whether the request's Origin, or its Referer when
// Origin is absent, is the request host or one of allowed. Requests with
// neither header are trusted, as browsers always send one on cross-site
// writes.
func TrustedOrigin(r *http.Request, allowed []string) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		if ref := r.Header.Get("Referer"); ref != "" {
			u, err := url.Parse(ref)
			if err != nil {
				return false
			}
			origin = u.Scheme + "://" + u.Host
		}
	}
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimRight(a, "/"), origin) {
			return true
		}
	}
	return false
}

// SanitizeHeaders removes credentials from a copy of headers before they
// are logged
func SanitizeHeaders(headers http.Header) http.Header {
	out := headers.Clone()
	sensitiveHeaders := []string{
		"Authorization",
		"Cookie",
		"Set-Cookie",
		"X-CSRF-Token",
	}

	for _, header := range sensitiveHeaders {
		out.Del(header)
	}
	return out
}
