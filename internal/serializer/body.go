// body.go — Body extraction and JSON-parse heuristic (spec.md 4.A).
//
// The JS tap (internal/tapscript) reads actual browser Request/Response
// bodies; this Go-side mirror exists so the Go harness (the net/http-based
// FetchTap/XHRTap in internal/tap, and any non-browser driver) normalizes
// bodies with the exact same rules, and so the rules are unit-testable
// without a browser or JS VM.
package serializer

import (
	"mime"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// DefaultMaxBodySize is the spec's documented default (1 MiB).
const DefaultMaxBodySize = 1 << 20

// RawBody is the discriminated input ParseBody accepts, mirroring the
// several shapes a fetch/XHR body argument can take in JS. Exactly one
// field should be set.
type RawBody struct {
	Text          *string           // already-decoded string body
	Binary        []byte            // binary blob/buffer
	Multipart     *multipart.Form   // parsed multipart form
	URLEncoded    url.Values        // application/x-www-form-urlencoded
	IsStream      bool              // a ReadableStream that must not be consumed
}

// ParseBody implements spec.md 4.A's parseBody: string passthrough, binary
// size-guard, multipart field serialization (files become descriptors,
// never content), URL-encoded decoding, and the stream sentinel — followed
// by the shared JSON-parse heuristic.
func ParseBody(raw RawBody, contentType string, maxSize int) any {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}

	switch {
	case raw.IsStream:
		return types.ReadableStreamSentinel

	case raw.Multipart != nil:
		return serializeMultipart(raw.Multipart)

	case raw.URLEncoded != nil:
		out := make(map[string]string, len(raw.URLEncoded))
		for k, vals := range raw.URLEncoded {
			if len(vals) > 0 {
				out[k] = vals[len(vals)-1]
			}
		}
		return out

	case raw.Binary != nil:
		if len(raw.Binary) > maxSize {
			return types.BodyTooLargeSentinel(len(raw.Binary))
		}
		return maybeParseJSON(string(raw.Binary), contentType)

	case raw.Text != nil:
		if len(*raw.Text) > maxSize {
			return types.BodyTooLargeSentinel(len(*raw.Text))
		}
		return maybeParseJSON(*raw.Text, contentType)
	}

	return nil
}

// serializeMultipart serializes each field; file entries become
// descriptors with no file content captured (spec.md 4.A).
func serializeMultipart(form *multipart.Form) map[string]any {
	out := make(map[string]any)
	for name, vals := range form.Value {
		if len(vals) == 1 {
			out[name] = vals[0]
		} else {
			out[name] = vals
		}
	}
	for name, files := range form.File {
		descriptors := make([]types.FileDescriptor, 0, len(files))
		for _, fh := range files {
			mimeType := fh.Header.Get("Content-Type")
			descriptors = append(descriptors, types.FileDescriptor{
				Type:     "File",
				Name:     fh.Filename,
				Size:     fh.Size,
				MimeType: mimeType,
			})
		}
		if len(descriptors) == 1 {
			out[name] = descriptors[0]
		} else {
			out[name] = descriptors
		}
	}
	return out
}

// looksLikeJSON applies the spec's heuristic: content-type says JSON, or
// the trimmed text starts/ends with matching brackets.
func looksLikeJSON(text, contentType string) bool {
	if strings.Contains(contentType, "application/json") {
		return true
	}
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	return (strings.HasPrefix(t, "{") && strings.HasSuffix(t, "}")) ||
		(strings.HasPrefix(t, "[") && strings.HasSuffix(t, "]"))
}

func maybeParseJSON(text, contentType string) any {
	if !looksLikeJSON(text, contentType) {
		return text
	}
	v, err := parseJSONString(text)
	if err != nil {
		return text
	}
	return v
}

// EffectiveContentType strips parameters (e.g. "; charset=utf-8") before
// the caller compares against "application/json", matching spec.md 8's
// boundary case for `application/json; charset=utf-8`.
func EffectiveContentType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return contentType
	}
	return mt
}
