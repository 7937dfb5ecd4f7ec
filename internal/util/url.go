// url.go — URL path extraction, used to group a captured call's dedup key
// by path rather than by full URL (a query string that varies per call,
// e.g. a cache-busting param or pagination cursor, would otherwise defeat
// throttling).
package util

import "net/url"

// ExtractURLPath extracts the path portion from a URL string, stripping
// query parameters. Returns "/" if the URL has no path component. Returns
// the input unchanged if it cannot be parsed.
func ExtractURLPath(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := parsed.Path
	if path == "" {
		return "/"
	}
	return path
}
