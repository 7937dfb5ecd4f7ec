// configs.go — Diff configuration types, with the spec's documented
// defaults applied by DefaultXxxConfig constructors. Mirrors the teacher's
// convention of a single typed config struct per tool (e.g.
// capture/network-types.go's NetworkBodyFilter) rather than a generic map.
package types

// ApiDiffConfig controls internal/apidiff's matching and compare behavior.
type ApiDiffConfig struct {
	IgnorePaths            []string `json:"ignorePaths,omitempty"`
	CompareRequestBodies   bool     `json:"compareRequestBodies"`
	CompareResponseBodies  bool     `json:"compareResponseBodies"`
	CompareHeaders         bool     `json:"compareHeaders"`
	IgnoreHeaders          []string `json:"ignoreHeaders,omitempty"`
	Strict                 bool     `json:"strict"`
}

// DefaultIgnoreHeaders is the spec-mandated default ignore-headers list.
var DefaultIgnoreHeaders = []string{"date", "x-request-id", "x-correlation-id", "etag", "last-modified"}

// DefaultAPIDiffConfig returns the spec's documented defaults.
func DefaultAPIDiffConfig() ApiDiffConfig {
	return ApiDiffConfig{
		CompareRequestBodies:  true,
		CompareResponseBodies: true,
		CompareHeaders:        false,
		IgnoreHeaders:         append([]string(nil), DefaultIgnoreHeaders...),
		Strict:                false,
	}
}

// DomDiffConfig controls internal/domdiff's filter and compare behavior.
type DomDiffConfig struct {
	IgnoreAttributes []string `json:"ignoreAttributes,omitempty"`
	IgnoreSelectors  []string `json:"ignoreSelectors,omitempty"`
	CompareText      bool     `json:"compareText"`
	CompareStyles    bool     `json:"compareStyles"`
	StyleProperties  []string `json:"styleProperties,omitempty"`
	IgnoreWhitespace bool     `json:"ignoreWhitespace"`
	MaxDepth         int      `json:"maxDepth,omitempty"` // 0 means unbounded
}

// DefaultDomDiffConfig returns the spec's documented defaults.
func DefaultDomDiffConfig() DomDiffConfig {
	return DomDiffConfig{
		CompareText:      true,
		CompareStyles:    false,
		IgnoreWhitespace: true,
		MaxDepth:         0,
	}
}

// RGB is a small color triple used by VisualDiffConfig.DiffColor.
type RGB struct {
	R, G, B uint8
}

// Rect is an ignore-mask rectangle in pixel coordinates.
type Rect struct {
	X, Y, W, H int
}

// VisualDiffConfig controls internal/visualdiff's pixel comparison.
type VisualDiffConfig struct {
	Threshold       float64 `json:"threshold"`
	DiffThreshold   float64 `json:"diffThreshold"` // percent of pixels
	IncludeAntiAlias bool   `json:"includeAntiAlias"`
	Alpha           float64 `json:"alpha"`
	DiffColor       RGB     `json:"diffColor"`
	IgnoreMasks     []Rect  `json:"ignoreMasks,omitempty"`
}

// DefaultVisualDiffConfig returns the spec's documented defaults.
func DefaultVisualDiffConfig() VisualDiffConfig {
	return VisualDiffConfig{
		Threshold:     0.1,
		DiffThreshold: 1,
		Alpha:         0.1,
		DiffColor:     RGB{R: 255, G: 0, B: 0},
	}
}
