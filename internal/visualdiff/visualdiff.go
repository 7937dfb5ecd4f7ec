// Package visualdiff implements the visual differ (spec component G):
// decode two screenshots, normalize size, run a per-pixel comparison, and
// emit a diff image. PNG decode/encode uses the standard library
// image/png; canvas padding to the larger of the two dimensions uses
// golang.org/x/image/draw instead of a hand-rolled pixel-copy loop
// (golang.org/x/image is a direct dependency elsewhere in the pack). The
// comparison applies Threshold per pixel only: VisualDiffConfig's
// IncludeAntiAlias is not read and no anti-aliasing detection is done.
// The per-pixel threshold comparison itself has no ready-made
// library in the pack (it mirrors pixelmatch/resemble.js semantics named
// in the spec this differ implements) so it is hand-written, in the same
// direct pixel-buffer style the teacher uses for its own binary sniffing.
package visualdiff

import (
	"bytes"
	"encoding/base64"
	"encoding/png"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/draw"

	"github.com/brennhill/gasoline-agentic-browser-devtools-mcp/internal/types"
)

// VisualDiffResult is the full output of CompareScreenshots.
type VisualDiffResult struct {
	Passed          bool    `json:"passed"`
	DiffPercentage  float64 `json:"diffPercentage"`
	DimensionsMatch bool    `json:"dimensionsMatch"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	DiffPixels      int     `json:"diffPixels"`
	DiffImage       []byte  `json:"-"`
}

// CompareScreenshots decodes both inputs (raw PNG bytes or data URIs),
// pads for size mismatch, and runs a per-pixel comparison.
func CompareScreenshots(baseline, actual types.ScreenshotImage, cfg *types.VisualDiffConfig) VisualDiffResult {
	c := types.DefaultVisualDiffConfig()
	if cfg != nil {
		c = *cfg
	}

	bImg, bErr := decode(baseline)
	aImg, aErr := decode(actual)
	if bErr != nil || aErr != nil {
		return VisualDiffResult{Passed: false, DiffPercentage: 100, DimensionsMatch: false}
	}

	bBounds := bImg.Bounds()
	aBounds := aImg.Bounds()
	dimensionsMatch := bBounds.Dx() == aBounds.Dx() && bBounds.Dy() == aBounds.Dy()

	maskRect(bImg, c.IgnoreMasks)
	maskRect(aImg, c.IgnoreMasks)

	maxW := bBounds.Dx()
	if aBounds.Dx() > maxW {
		maxW = aBounds.Dx()
	}
	maxH := bBounds.Dy()
	if aBounds.Dy() > maxH {
		maxH = aBounds.Dy()
	}

	bPadded := pad(bImg, maxW, maxH)
	aPadded := pad(aImg, maxW, maxH)

	diffImg := image.NewRGBA(image.Rect(0, 0, maxW, maxH))
	diffPixels := 0
	totalPixels := maxW * maxH

	for y := 0; y < maxH; y++ {
		for x := 0; x < maxW; x++ {
			bc := bPadded.RGBAAt(x, y)
			ac := aPadded.RGBAAt(x, y)
			if pixelsDiffer(bc, ac, c.Threshold) {
				diffPixels++
				diffImg.Set(x, y, color.RGBA{R: c.DiffColor.R, G: c.DiffColor.G, B: c.DiffColor.B, A: 255})
			} else {
				blended := blend(bc, c.Alpha)
				diffImg.Set(x, y, blended)
			}
		}
	}

	var pct float64
	if totalPixels > 0 {
		pct = math.Round(float64(diffPixels)/float64(totalPixels)*100*100) / 100
	}

	result := VisualDiffResult{
		DiffPercentage:  pct,
		DimensionsMatch: dimensionsMatch,
		Width:           maxW,
		Height:          maxH,
		DiffPixels:      diffPixels,
		Passed:          pct <= c.DiffThreshold,
	}
	if diffPixels > 0 {
		var buf bytes.Buffer
		if err := png.Encode(&buf, diffImg); err == nil {
			result.DiffImage = buf.Bytes()
		}
	}
	return result
}

func decode(img types.ScreenshotImage) (*image.RGBA, error) {
	raw := img.PNG
	if len(raw) == 0 && img.DataURI != "" {
		data := img.DataURI
		if idx := strings.Index(data, ","); idx >= 0 && strings.Contains(data[:idx], "base64") {
			data = data[idx+1:]
		}
		decoded, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			return nil, err
		}
		raw = decoded
	}
	decoded, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	rgba := image.NewRGBA(decoded.Bounds())
	draw.Draw(rgba, decoded.Bounds(), decoded, decoded.Bounds().Min, draw.Src)
	return rgba, nil
}

// pad copies src onto a maxW x maxH transparent canvas, never cropping.
func pad(src *image.RGBA, maxW, maxH int) *image.RGBA {
	b := src.Bounds()
	if b.Dx() == maxW && b.Dy() == maxH {
		return src
	}
	canvas := image.NewRGBA(image.Rect(0, 0, maxW, maxH))
	draw.Draw(canvas, b, src, b.Min, draw.Src)
	return canvas
}

// maskRect overwrites every configured ignore-mask rectangle with a
// neutral gray on img, so masked regions always compare equal.
func maskRect(img *image.RGBA, masks []types.Rect) {
	neutral := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	for _, m := range masks {
		r := image.Rect(m.X, m.Y, m.X+m.W, m.Y+m.H).Intersect(img.Bounds())
		draw.Draw(img, r, &image.Uniform{C: neutral}, image.Point{}, draw.Src)
	}
}

func pixelsDiffer(a, b color.RGBA, threshold float64) bool {
	delta := colorDelta(a, b)
	return delta > threshold
}

// colorDelta is a normalized (0..1) perceptual-ish distance between two
// RGBA pixels, weighted the way pixelmatch weights luma over chroma.
func colorDelta(a, b color.RGBA) float64 {
	dr := float64(int(a.R) - int(b.R))
	dg := float64(int(a.G) - int(b.G))
	db := float64(int(a.B) - int(b.B))
	da := float64(int(a.A) - int(b.A))
	y := math.Sqrt(dr*dr*0.299+dg*dg*0.587+db*db*0.114) / 255
	alphaDelta := math.Abs(da) / 255
	d := y + alphaDelta
	if d > 1 {
		d = 1
	}
	return d
}

func blend(c color.RGBA, alpha float64) color.RGBA {
	fade := func(v uint8) uint8 {
		return uint8(float64(v)*alpha + 255*(1-alpha))
	}
	return color.RGBA{R: fade(c.R), G: fade(c.G), B: fade(c.B), A: 255}
}
