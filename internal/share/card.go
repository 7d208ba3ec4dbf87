package share

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Card dimensions, sized for link previews.
const (
	CardWidth  = 600
	CardHeight = 315

	cardPadding = 20
)

var (
	gradientFrom = color.RGBA{R: 0x80, G: 0x00, B: 0x00, A: 0xff} // #800000
	gradientTo   = color.RGBA{R: 0xf7, G: 0xa3, B: 0x06, A: 0xff} // #f7a306
)

type cardLine struct {
	text      string
	scale     int
	marginTop int
}

// RenderCard draws the payload onto a new CardWidth x CardHeight image.
func RenderCard(p Payload) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, CardWidth, CardHeight))
	fillGradient(dst)

	lines := []cardLine{{text: p.Title(), scale: 3}}
	for i, l := range p.cardLines() {
		top := 6
		if i == 0 {
			top = 14
		}
		lines = append(lines, cardLine{text: l, scale: 2, marginTop: top})
	}
	lines = append(lines, cardLine{text: "Paybill: " + p.Paybill, scale: 2, marginTop: 22})

	face := basicfont.Face7x13
	lineH := face.Metrics().Height.Ceil()
	maxW := CardWidth - 2*cardPadding

	for i := range lines {
		w := font.MeasureString(face, lines[i].text).Ceil()
		for lines[i].scale > 1 && w*lines[i].scale > maxW {
			lines[i].scale--
		}
	}

	total := 0
	for _, l := range lines {
		total += l.marginTop + lineH*l.scale
	}
	y := (CardHeight - total) / 2
	for _, l := range lines {
		y += l.marginTop
		drawLine(dst, face, l, y, maxW)
		y += lineH * l.scale
	}
	return dst
}

// RenderPNG writes the card as PNG.
func RenderPNG(w io.Writer, p Payload) error {
	if err := png.Encode(w, RenderCard(p)); err != nil {
		return fmt.Errorf("share: encoding card: %w", err)
	}
	return nil
}

// fillGradient paints a 135 degree gradient, top-left to bottom-right.
func fillGradient(dst *image.RGBA) {
	b := dst.Bounds()
	span := float64(b.Dx() + b.Dy() - 2)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			t := float64(x+y) / span
			dst.SetRGBA(x, y, lerp(gradientFrom, gradientTo, t))
		}
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

// drawLine renders text at 1x into a scratch image, then scales it up
// centered on dst. Text wider than maxW at 1x is clipped by the card edge.
func drawLine(dst *image.RGBA, face font.Face, l cardLine, y, maxW int) {
	m := face.Metrics()
	w := font.MeasureString(face, l.text).Ceil()
	h := m.Height.Ceil()
	if w == 0 {
		return
	}

	src := image.NewRGBA(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.P(0, m.Ascent.Ceil()),
	}
	d.DrawString(l.text)

	sw, sh := w*l.scale, h*l.scale
	x := (CardWidth - sw) / 2
	if sw > maxW {
		x = cardPadding
	}
	draw.NearestNeighbor.Scale(dst, image.Rect(x, y, x+sw, y+sh), src, src.Bounds(), draw.Over, nil)
}
