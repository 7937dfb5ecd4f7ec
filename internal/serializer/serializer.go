// serializer.go — Header normalization and request ID generation (spec.md
// 4.A). Request IDs use google/uuid rather than a hand-rolled counter: the
// pack's sofatutor-llm-proxy and vvoland-cagent both reach for
// google/uuid for exactly this "opaque, process-unique identifier" need.
package serializer

import (
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// GenerateRequestID returns a process-unique opaque string. Uniqueness is
// only required within a single recording session (spec.md 4.A), which a
// random UUID trivially satisfies.
func GenerateRequestID() string {
	return uuid.NewString()
}

// HeaderSource is anything SerializeHeaders can normalize: a native
// net/http.Header, a two-column [][2]string list (as a fetch Headers
// iterator would yield), or a plain map.
type HeaderSource any

// SerializeHeaders accepts a native headers container, a two-column list,
// or a plain key->value map, and returns a map with lowercase keys and
// last-wins semantics on duplicates.
func SerializeHeaders(h HeaderSource) map[string]string {
	out := make(map[string]string)
	if hh, ok := h.(http.Header); ok {
		h = map[string][]string(hh)
	}
	switch v := h.(type) {
	case nil:
		return out
	case map[string]string:
		for k, val := range v {
			out[strings.ToLower(k)] = val
		}
	case map[string][]string:
		// net/http.Header and similar: last-wins over the slice, in order.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vals := v[k]
			if len(vals) == 0 {
				continue
			}
			out[strings.ToLower(k)] = vals[len(vals)-1]
		}
	case [][2]string:
		for _, pair := range v {
			out[strings.ToLower(pair[0])] = pair[1]
		}
	case []HeaderPair:
		for _, pair := range v {
			out[strings.ToLower(pair.Name)] = pair.Value
		}
	}
	return out
}

// HeaderPair is the two-column form some fetch polyfills expose.
type HeaderPair struct {
	Name  string
	Value string
}
