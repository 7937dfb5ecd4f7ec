// request.go — Request body extraction (spec.md 4.A extractRequestBody).
package serializer

import (
	"bytes"
	"io"
	"net/http"
)

// CloneRequestBody reads the whole of req.Body and restores req.Body to an
// unconsumed reader so the real transport still sees the full body (the
// same clone-before-read discipline as CloneResponseBody). maxSize is not
// applied here: the bytes are returned in full and ParseBody applies the
// size guard and the size-limit sentinel. Returns nil, nil if req.Body is
// nil.
func CloneRequestBody(req *http.Request, maxSize int) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	data, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// RequestBodySource mirrors fetch's two body-bearing arguments: an init
// object's body takes precedence over a Request object's own body.
type RequestBodySource struct {
	InitBody    *RawBody // from the `init` argument, if any
	RequestBody *RawBody // from the Request object itself, if any
}

// ExtractRequestBody implements spec.md 4.A's extractRequestBody: init body
// takes precedence over a request-object body. When the request-object
// body must be read it is the caller's responsibility to have cloned it
// first (CloneResponseBody shows the same discipline for responses); this
// function only decides which source wins and delegates to ParseBody.
func ExtractRequestBody(src RequestBodySource, contentType string, maxSize int) any {
	switch {
	case src.InitBody != nil:
		return ParseBody(*src.InitBody, contentType, maxSize)
	case src.RequestBody != nil:
		return ParseBody(*src.RequestBody, contentType, maxSize)
	default:
		return nil
	}
}
