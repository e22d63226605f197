package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	TransformGrayscale = "grayscale"
	TransformDenoise   = "denoise"
	TransformBinarize  = "binarize"
	TransformDeskew    = "deskew"
)

var ErrTransform = errors.New("transform failed")

// DefaultTransforms is the chain applied when the caller does not name one.
var DefaultTransforms = []string{TransformGrayscale, TransformBinarize}

// PreprocessedImage is the output of the transform chain. Warnings carry the
// names of transforms that could not converge; the image is still the best
// output produced so far.
type PreprocessedImage struct {
	Pixels   *image.Gray
	Width    int
	Height   int
	Applied  []string
	Warnings []string
}

// Preprocess applies the named transforms in caller order. Unknown transform
// names fail the whole call; a transform that cannot converge only appends a
// warning, since OCR tolerates suboptimal input better than no input.
func Preprocess(src *DecodedImage, transforms []string) (*PreprocessedImage, error) {
	if len(transforms) == 0 {
		transforms = DefaultTransforms
	}

	for _, name := range transforms {
		switch name {
		case TransformGrayscale, TransformDenoise, TransformBinarize, TransformDeskew:
		default:
			return nil, fmt.Errorf("%w: unknown transform %q", ErrTransform, name)
		}
	}

	out := &PreprocessedImage{
		Pixels: toGray(src.Pixels),
		Width:  src.Width,
		Height: src.Height,
	}

	for _, name := range transforms {
		var err error
		switch name {
		case TransformGrayscale:
			// Conversion already happened on entry; recorded for determinism
			// of the applied list.
		case TransformDenoise:
			out.Pixels = boxBlur(out.Pixels)
		case TransformBinarize:
			out.Pixels = binarizeOtsu(out.Pixels)
		case TransformDeskew:
			out.Pixels, err = deskew(out.Pixels)
		}

		if err != nil {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %s", name, err.Error()))
			continue
		}
		out.Applied = append(out.Applied, name)
	}

	return out, nil
}

func toGray(src image.Image) *image.Gray {
	if g, ok := src.(*image.Gray); ok {
		cloned := image.NewGray(g.Bounds())
		copy(cloned.Pix, g.Pix)
		return cloned
	}
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Set(x, y, color.GrayModel.Convert(src.At(x, y)))
		}
	}
	return dst
}

// boxBlur applies a 3x3 mean filter. Edge pixels average their in-bounds
// neighborhood so dimensions are preserved.
func boxBlur(src *image.Gray) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			var sum, count int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
						continue
					}
					sum += int(src.GrayAt(nx, ny).Y)
					count++
				}
			}
			dst.SetGray(x, y, color.Gray{Y: uint8(sum / count)})
		}
	}
	return dst
}

// binarizeOtsu thresholds the image with Otsu's method, matching the
// THRESH_BINARY+THRESH_OTSU step the preprocessing is modeled on.
func binarizeOtsu(src *image.Gray) *image.Gray {
	threshold := otsuThreshold(src)

	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for i, v := range src.Pix {
		if v > threshold {
			dst.Pix[i] = 255
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst
}

func otsuThreshold(src *image.Gray) uint8 {
	var hist [256]int
	for _, v := range src.Pix {
		hist[v]++
	}

	total := len(src.Pix)
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	var maxVariance float64
	var threshold uint8
	for i := 0; i < 256; i++ {
		wB += float64(hist[i])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(i) * float64(hist[i])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		variance := wB * wF * (mB - mF) * (mB - mF)
		if variance > maxVariance {
			maxVariance = variance
			threshold = uint8(i)
		}
	}
	return threshold
}

// deskew estimates the dominant text angle by scoring horizontal projection
// profiles over a small angle sweep and rotates by the best candidate. The
// output keeps the input dimensions. Angle detection that finds no clear
// winner returns ErrTransform so the caller can degrade gracefully.
func deskew(src *image.Gray) (*image.Gray, error) {
	const (
		maxAngle = 5.0
		step     = 0.5
	)

	bestAngle := 0.0
	bestScore := projectionScore(src, 0)
	baseline := bestScore

	for angle := -maxAngle; angle <= maxAngle; angle += step {
		if angle == 0 {
			continue
		}
		score := projectionScore(src, angle)
		if score > bestScore {
			bestScore = score
			bestAngle = angle
		}
	}

	if bestAngle == 0 {
		// Already straight.
		return src, nil
	}
	if baseline > 0 && bestScore < baseline*1.02 {
		return src, fmt.Errorf("%w: no dominant skew angle", ErrTransform)
	}

	return rotate(src, bestAngle), nil
}

// projectionScore sums squared row-darkness of the image as if rotated by
// angle degrees. Sharp text lines produce a spiky profile and a high score.
func projectionScore(src *image.Gray, angleDeg float64) float64 {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	rad := angleDeg * math.Pi / 180

	rows := make([]float64, h)
	cx, cy := float64(w)/2, float64(h)/2
	sin, cos := math.Sin(rad), math.Cos(rad)

	// Sample a grid rather than every pixel; the profile shape survives and
	// the sweep stays cheap on large uploads.
	stride := 1
	if w*h > 1<<20 {
		stride = 2
	}

	for y := 0; y < h; y += stride {
		for x := 0; x < w; x += stride {
			if src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y > 127 {
				continue
			}
			ry := cy + (float64(x)-cx)*sin + (float64(y)-cy)*cos
			idx := int(ry)
			if idx >= 0 && idx < h {
				rows[idx]++
			}
		}
	}

	var score float64
	for _, r := range rows {
		score += r * r
	}
	return score
}

// rotate renders src rotated by angle degrees around its center into an image
// of identical dimensions, using bilinear resampling. Uncovered corners fill
// white so they do not read as text.
func rotate(src *image.Gray, angleDeg float64) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for i := range dst.Pix {
		dst.Pix[i] = 255
	}

	rad := angleDeg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	cx := float64(bounds.Min.X) + float64(bounds.Dx())/2
	cy := float64(bounds.Min.Y) + float64(bounds.Dy())/2

	// Rotation about the image center: translate, rotate, translate back.
	m := f64.Aff3{
		cos, -sin, cx - cos*cx + sin*cy,
		sin, cos, cy - sin*cx - cos*cy,
	}
	xdraw.BiLinear.Transform(dst, m, src, bounds, xdraw.Over, nil)
	return dst
}
