// response.go — Response body extraction (spec.md 4.A parseResponseBody).
//
// The central correctness property (spec.md 9's Design Notes): the
// response body must be read from a CLONE so the page's own consumer
// still receives an untouched stream. In Go terms, an *http.Response.Body
// is a single-read io.ReadCloser; "cloning" means teeing it into two
// readers before either side consumes anything, and handing the caller
// back an unconsumed body.
package serializer

import (
	"bytes"
	"io"
	"net/http"
	"strconv"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// CloneResponseBody tees resp.Body into a fresh io.ReadCloser for the
// caller (the page's real consumer) and returns the captured bytes
// separately. It must be called before anything else reads resp.Body.
// truncated reports that the body exceeds maxSize: captured is nil when
// Content-Length alone shows that, and holds the bytes read when only the
// read length does, so the caller can report the real size.
//
// Size is checked first via Content-Length when present, then by actual
// read length — so a response with a missing or lying Content-Length is
// still bounded once the bytes are in hand (spec.md 8 boundary case).
func CloneResponseBody(resp *http.Response, maxSize int) (captured []byte, truncated bool, err error) {
	if resp == nil || resp.Body == nil {
		return nil, false, nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}

	if cl := resp.Header.Get("content-length"); cl != "" {
		if n, convErr := strconv.Atoi(cl); convErr == nil && n > maxSize {
			// Still must preserve the original stream for the real
			// consumer; drain into a throwaway buffer via TeeReader so
			// the caller's body is unaffected, but skip capturing bytes.
			var buf bytes.Buffer
			tee := io.TeeReader(resp.Body, &buf)
			original := resp.Body
			resp.Body = struct {
				io.Reader
				io.Closer
			}{Reader: tee, Closer: original}
			return nil, true, nil
		}
	}

	data, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	if readErr != nil {
		return nil, false, readErr
	}
	if len(data) > maxSize {
		return data, true, nil
	}
	return data, false, nil
}

// ParseResponseBody implements spec.md 4.A's parseResponseBody on top of
// CloneResponseBody: size-guard first, then the shared JSON-parse
// heuristic, producing the value stored on CapturedResponse.Body.
func ParseResponseBody(resp *http.Response, maxSize int) any {
	data, truncated, err := CloneResponseBody(resp, maxSize)
	if err != nil {
		return nil // CaptureBodyError: swallowed, body left undefined
	}
	if truncated {
		// We don't know the exact overflow size when bounded by
		// Content-Length alone; report the advertised size.
		n := 0
		if cl := resp.Header.Get("content-length"); cl != "" {
			n, _ = strconv.Atoi(cl)
		} else {
			n = len(data)
		}
		return types.BodyTooLargeSentinel(n)
	}
	if len(data) == 0 {
		return nil
	}
	contentType := resp.Header.Get("content-type")
	return maybeParseJSON(string(data), contentType)
}
