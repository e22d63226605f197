package imaging

import (
	"errors"
	"image"
	"image/color"
	"reflect"
	"testing"
)

func decodedFromGray(g *image.Gray) *DecodedImage {
	b := g.Bounds()
	return &DecodedImage{
		Pixels: g,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: "png",
	}
}

func textLikeImage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 240
	}
	// A few dark horizontal stripes, like lines of text.
	for _, row := range []int{h / 4, h / 2, 3 * h / 4} {
		for x := 2; x < w-2; x++ {
			img.SetGray(x, row, color.Gray{Y: 10})
		}
	}
	return img
}

func TestPreprocessDefaultChain(t *testing.T) {
	src := decodedFromGray(textLikeImage(60, 40))

	out, err := Preprocess(src, nil)
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if out.Width != 60 || out.Height != 40 {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}
	if !reflect.DeepEqual(out.Applied, DefaultTransforms) {
		t.Fatalf("unexpected applied transforms: %+v", out.Applied)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", out.Warnings)
	}
}

func TestPreprocessUnknownTransform(t *testing.T) {
	src := decodedFromGray(textLikeImage(20, 20))

	_, err := Preprocess(src, []string{TransformGrayscale, "sharpen"})
	if !errors.Is(err, ErrTransform) {
		t.Fatalf("expected ErrTransform, got %v", err)
	}
}

func TestBinarizeProducesTwoLevels(t *testing.T) {
	src := decodedFromGray(textLikeImage(30, 30))

	out, err := Preprocess(src, []string{TransformBinarize})
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	for i, v := range out.Pixels.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel %d has level %d after binarize", i, v)
		}
	}
}

func TestDenoisePreservesDimensions(t *testing.T) {
	src := decodedFromGray(textLikeImage(33, 17))

	out, err := Preprocess(src, []string{TransformDenoise})
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if out.Width != 33 || out.Height != 17 {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}
}

func TestDeskewOnStraightImageIsIdentity(t *testing.T) {
	straight := textLikeImage(64, 48)
	src := decodedFromGray(straight)

	out, err := Preprocess(src, []string{TransformDeskew})
	if err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}
	if out.Width != 64 || out.Height != 48 {
		t.Fatalf("dimensions changed: %dx%d", out.Width, out.Height)
	}
	if len(out.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %+v", out.Warnings)
	}
}

func TestPreprocessDoesNotMutateSource(t *testing.T) {
	orig := textLikeImage(24, 24)
	snapshot := make([]uint8, len(orig.Pix))
	copy(snapshot, orig.Pix)

	if _, err := Preprocess(decodedFromGray(orig), []string{TransformBinarize, TransformDenoise}); err != nil {
		t.Fatalf("Preprocess() error = %v", err)
	}

	if !reflect.DeepEqual(orig.Pix, snapshot) {
		t.Fatalf("source pixels were mutated")
	}
}

func TestOtsuThresholdSeparatesBimodal(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 10, 10))
	for i := range img.Pix {
		if i%2 == 0 {
			img.Pix[i] = 30
		} else {
			img.Pix[i] = 220
		}
	}

	th := otsuThreshold(img)
	if th < 30 || th >= 220 {
		t.Fatalf("threshold %d does not separate the two modes", th)
	}
}
