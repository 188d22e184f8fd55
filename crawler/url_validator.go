package crawler

import (
	"net/url"
	"path"
	"slices"
	"strings"
)

type URLValidator struct {
	allowedSchemes []string
}

// NewURLValidator creates a validator accepting downloads over http and https
func NewURLValidator() *URLValidator {
	return &URLValidator{
		allowedSchemes: []string{"http", "https"},
	}
}

// IsPDFLink reports whether href points at a .pdf file, ignoring query and fragment.
func (v *URLValidator) IsPDFLink(href string) bool {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".pdf")
}

// IsPageLink reports whether href is a relative link to another page of the
// same site. Absolute links, fragments, PDFs and non-navigational schemes are
// not followed.
func (v *URLValidator) IsPageLink(href string) bool {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "//") {
		return false
	}
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() || u.Opaque != "" {
		return false
	}
	return !v.IsPDFLink(href)
}

// IsValidDownloadURL checks the resolved download URL.
func (v *URLValidator) IsValidDownloadURL(u *url.URL) bool {
	return u.Host != "" && slices.Contains(v.allowedSchemes, u.Scheme)
}
