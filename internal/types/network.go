// network.go — Captured API traffic types: the request/response/call model
// produced by the fetch and XHR taps and consumed by the API differ.
package types

import "fmt"

// Initiator distinguishes which tap produced a CapturedApiCall.
type Initiator string

const (
	InitiatorFetch Initiator = "fetch"
	InitiatorXHR   Initiator = "xhr"
)

// FileDescriptor represents a multipart file field. File content is never
// captured, only its shape.
type FileDescriptor struct {
	Type     string `json:"type"` // always "File"
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType,omitempty"`
}

// BodyTooLargeSentinel is returned in place of a body that exceeded maxSize.
func BodyTooLargeSentinel(n int) string {
	return fmt.Sprintf("[Body too large: %d bytes]", n)
}

// ReadableStreamSentinel is returned for a body backed by a stream that must
// never be consumed.
const ReadableStreamSentinel = "[ReadableStream - body not captured]"

// CapturedRequest is the normalized view of an outbound fetch/XHR request.
type CapturedRequest struct {
	ID        string            `json:"id"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	Body      any               `json:"body,omitempty"`
	Timestamp int64             `json:"timestamp"` // ms epoch
	Initiator Initiator         `json:"initiator"`
}

// CapturedResponse is the normalized view of the matching response, or a
// synthesized {status:0} response on network failure.
type CapturedResponse struct {
	Status       int               `json:"status"`
	StatusText   string            `json:"statusText"`
	Headers      map[string]string `json:"headers"`
	Body         any               `json:"body,omitempty"`
	ResponseTime int64             `json:"responseTime"` // ms
	BodySize     *int64            `json:"bodySize,omitempty"`
}

// NetworkErrorResponse builds the synthetic response recorded on failure
// (spec.md 4.B step 6 / 3 CapturedResponse).
func NetworkErrorResponse(responseTime int64) CapturedResponse {
	return CapturedResponse{
		Status:       0,
		StatusText:   "Network Error",
		Headers:      map[string]string{},
		ResponseTime: responseTime,
	}
}

// CapturedApiCall is one request/response pair (or a still-pending request).
//
// Invariant: Pending() == true iff Response == nil && Error == "".
type CapturedApiCall struct {
	Request  CapturedRequest   `json:"request"`
	Response *CapturedResponse `json:"response,omitempty"`
	Error    string            `json:"error,omitempty"`
	pending  bool
}

// NewPendingCall constructs a call in the pending state right after the tap
// observes a request start.
func NewPendingCall(req CapturedRequest) *CapturedApiCall {
	return &CapturedApiCall{Request: req, pending: true}
}

// Pending reports whether the call is still awaiting completion.
func (c *CapturedApiCall) Pending() bool { return c.pending }

// Resolve transitions the call to completed with a response.
func (c *CapturedApiCall) Resolve(resp CapturedResponse) {
	c.Response = &resp
	c.pending = false
}

// Fail transitions the call to completed with a network error.
func (c *CapturedApiCall) Fail(errMsg string, resp CapturedResponse) {
	c.Error = errMsg
	c.Response = &resp
	c.pending = false
}
