package share

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestRenderPNGDimensions(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderPNG(&buf, testPayload()); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != CardWidth || b.Dy() != CardHeight {
		t.Errorf("bounds = %v, want %dx%d", b, CardWidth, CardHeight)
	}
}

func TestRenderCardGradientCorners(t *testing.T) {
	img := RenderCard(testPayload())
	if got := img.RGBAAt(0, 0); got != gradientFrom {
		t.Errorf("top-left = %v, want %v", got, gradientFrom)
	}
	if got := img.RGBAAt(CardWidth-1, CardHeight-1); got != gradientTo {
		t.Errorf("bottom-right = %v, want %v", got, gradientTo)
	}
}

func TestRenderCardDrawsText(t *testing.T) {
	img := RenderCard(testPayload())
	white := 0
	for y := 0; y < CardHeight; y++ {
		for x := 0; x < CardWidth; x++ {
			if img.RGBAAt(x, y) == (color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}) {
				white++
			}
		}
	}
	if white == 0 {
		t.Error("no text pixels drawn")
	}
}

func TestRenderCardLongNameStaysInBounds(t *testing.T) {
	p := testPayload()
	p.CustomName = "A very long contributor name that would not fit at double size on the card"
	img := RenderCard(p)
	if b := img.Bounds(); b.Dx() != CardWidth || b.Dy() != CardHeight {
		t.Errorf("bounds = %v", b)
	}
}
