// Package ogimage draws the Open Graph preview image for a page title.
package ogimage

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	// DefaultTitle is drawn when no title is given.
	DefaultTitle = "My default title"
	// MaxTitleLength is the number of runes kept from a requested title.
	MaxTitleLength = 100
)

// Options describes the image layout.
type Options struct {
	Width, Height int
	Padding       int
	MaxFontSize   float64 // starting size in pixels
	MinFontSize   float64 // titles are shrunk no further than this
	From, To      color.RGBA
	Font          []byte      // TrueType/OpenType data; nil uses Go Bold
	Avatar        image.Image // optional, drawn above the title
	AvatarSize    int
	Gap           int // space between avatar and title
}

func (o *Options) setDefaults() {
	if o.Width == 0 {
		o.Width = 1200
	}
	if o.Height == 0 {
		o.Height = 630
	}
	if o.Padding == 0 {
		o.Padding = 100
	}
	if o.MaxFontSize == 0 {
		o.MaxFontSize = 70
	}
	if o.MinFontSize == 0 {
		o.MinFontSize = 32
	}
	if o.From == (color.RGBA{}) {
		o.From = color.RGBA{R: 0x89, G: 0x2f, B: 0x0b, A: 0xff}
	}
	if o.To == (color.RGBA{}) {
		o.To = color.RGBA{R: 0xfb, G: 0x92, B: 0x3c, A: 0xff}
	}
	if o.AvatarSize == 0 {
		o.AvatarSize = 148
	}
	if o.Gap == 0 {
		o.Gap = 50
	}
}

// Generator renders titles to PNG. It is safe for concurrent use.
type Generator struct {
	opts   Options
	font   *opentype.Font
	avatar image.Image
}

// New parses the font and prepares the avatar.
func New(opts Options) (*Generator, error) {
	opts.setDefaults()
	data := opts.Font
	if data == nil {
		data = gobold.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ogimage: parse font: %w", err)
	}
	g := &Generator{opts: opts, font: f}
	if opts.Avatar != nil {
		g.avatar = scale(opts.Avatar, opts.AvatarSize)
	}
	return g, nil
}

// LoadAvatar decodes a PNG, JPEG or GIF image.
func LoadAvatar(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("ogimage: decode avatar: %w", err)
	}
	return img, nil
}

func scale(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

// TruncateTitle keeps the first n runes of s.
func TruncateTitle(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// Render draws title and returns the encoded PNG.
func (g *Generator) Render(title string) ([]byte, error) {
	o := g.opts
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	img := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	g.fillGradient(img)

	face, lines, err := g.layout(title)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	lineHeight := face.Metrics().Height.Ceil()
	blockHeight := len(lines) * lineHeight
	if g.avatar != nil {
		blockHeight += o.AvatarSize + o.Gap
	}
	y := (o.Height - blockHeight) / 2

	if g.avatar != nil {
		x := (o.Width - o.AvatarSize) / 2
		r := image.Rect(x, y, x+o.AvatarSize, y+o.AvatarSize)
		draw.Draw(img, r, g.avatar, image.Point{}, draw.Over)
		y += o.AvatarSize + o.Gap
	}

	d := &font.Drawer{Dst: img, Src: image.White, Face: face}
	ascent := face.Metrics().Ascent.Ceil()
	for _, line := range lines {
		w := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((o.Width-w)/2, y+ascent)
		d.DrawString(line)
		y += lineHeight
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("ogimage: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// fillGradient paints a 135 degree linear gradient: top-left to
// bottom-right, the first color held until 10% of the way.
func (g *Generator) fillGradient(img *image.RGBA) {
	o := g.opts
	w, h := float64(o.Width), float64(o.Height)
	angle := 135 * math.Pi / 180
	dx, dy := math.Sin(angle), -math.Cos(angle)
	length := math.Abs(w*dx) + math.Abs(h*dy)

	for y := 0; y < o.Height; y++ {
		for x := 0; x < o.Width; x++ {
			t := ((float64(x)+0.5-w/2)*dx+(float64(y)+0.5-h/2)*dy)/length + 0.5
			t = (t - 0.1) / 0.9
			img.SetRGBA(x, y, lerp(o.From, o.To, math.Max(0, math.Min(1, t))))
		}
	}
}

func lerp(a, b color.RGBA, t float64) color.RGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

// layout picks the largest font size whose wrapped lines fit the text box.
// The caller closes the returned face.
func (g *Generator) layout(title string) (font.Face, []string, error) {
	o := g.opts
	maxWidth := o.Width - 2*o.Padding
	maxHeight := o.Height - 2*o.Padding
	if g.avatar != nil {
		maxHeight -= o.AvatarSize + o.Gap
	}

	for size := o.MaxFontSize; ; size -= 4 {
		if size < o.MinFontSize {
			size = o.MinFontSize
		}
		face, err := opentype.NewFace(g.font, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("ogimage: font face: %w", err)
		}
		lines := wrap(face, title, maxWidth)
		if len(lines)*face.Metrics().Height.Ceil() <= maxHeight || size <= o.MinFontSize {
			return face, lines, nil
		}
		face.Close()
	}
}

// wrap breaks text into lines no wider than maxWidth. Words wider than a
// line are split between runes.
func wrap(face font.Face, text string, maxWidth int) []string {
	fits := func(s string) bool {
		return font.MeasureString(face, s).Ceil() <= maxWidth
	}

	var lines []string
	var line string
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if fits(candidate) {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
			line = ""
		}
		for !fits(word) {
			cut := len(word)
			for cut > 0 && !fits(word[:cut]) {
				_, size := utf8.DecodeLastRuneInString(word[:cut])
				cut -= size
			}
			if cut == 0 {
				_, cut = utf8.DecodeRuneInString(word)
			}
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		line = word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
