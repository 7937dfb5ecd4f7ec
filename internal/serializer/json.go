// json.go — JSON-parse heuristic helper, isolated so ParseBody and
// ParseResponseBody share one encoding/json call site.
package serializer

import (
	"encoding/json"
	"strings"
)

func parseJSONString(text string) (any, error) {
	var v any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
