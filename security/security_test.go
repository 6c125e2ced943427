package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContentType(t *testing.T) {
	assert.True(t, ValidateContentType("application/json; charset=UTF-8"))
	assert.True(t, ValidateContentType("multipart/form-data; boundary=x"))
	assert.False(t, ValidateContentType("application/x-www-form-urlencoded"))
	assert.False(t, ValidateContentType("text/plain"))
	assert.False(t, ValidateContentType(""))
}

func TestTrustedOrigin(t *testing.T) {
	allowed := []string{"https://admin.example.com/"}
	cases := []struct {
		name    string
		origin  string
		referer string
		want    bool
	}{
		{name: "no headers", want: true},
		{name: "same host", origin: "https://site.example.com", want: true},
		{name: "allowed", origin: "https://admin.example.com", want: true},
		{name: "foreign", origin: "https://evil.example.net", want: false},
		{name: "referer fallback", referer: "https://evil.example.net/page", want: false},
		{name: "null origin", origin: "null", want: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "https://site.example.com/api/about", nil)
			if tc.origin != "" {
				r.Header.Set("Origin", tc.origin)
			}
			if tc.referer != "" {
				r.Header.Set("Referer", tc.referer)
			}
			assert.Equal(t, tc.want, TrustedOrigin(r, allowed))
		})
	}
}

func TestSanitizeHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Authorization", "Bearer x")
	h.Set("Cookie", "session_token=x")
	h.Set("Accept", "application/json")

	out := SanitizeHeaders(h)
	assert.Empty(t, out.Get("Authorization"))
	assert.Empty(t, out.Get("Cookie"))
	assert.Equal(t, "application/json", out.Get("Accept"))
	assert.Equal(t, "Bearer x", h.Get("Authorization"), "input is not modified")
}
