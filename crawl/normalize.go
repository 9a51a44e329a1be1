package crawl

import (
	"net/url"
	"strings"
)

// Host returns the lowercase host, including any non-default port, of a
// normalized URL. It returns an empty string for unparseable input.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}
