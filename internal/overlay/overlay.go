package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
	"golang.org/x/text/unicode/norm"

	"lyricvid/internal/config"
	"lyricvid/internal/fileutil"
	"lyricvid/internal/services"
)

// Style holds the caption box geometry.
type Style struct {
	Padding         int
	BottomOffset    int
	BackgroundAlpha uint8
}

// DefaultStyle matches the stock configuration.
func DefaultStyle() Style {
	return Style{Padding: 10, BottomOffset: 50, BackgroundAlpha: 128}
}

// LoadFace loads a TrueType or OpenType font at size points. An empty path
// selects the bundled Go Regular font.
func LoadFace(path string, size float64) (font.Face, error) {
	data := goregular.TTF
	if path = strings.TrimSpace(path); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read font %s: %w", path, err)
		}
		data = raw
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", fontLabel(path), err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("load font face %s: %w", fontLabel(path), err)
	}
	return face, nil
}

func fontLabel(path string) string {
	if path == "" {
		return "goregular"
	}
	return path
}

// Measure returns the pixel width and height of text's ink bounds.
func Measure(face font.Face, text string) (int, int) {
	_, width, height := measureInk(face, text)
	return width, height
}

func measureInk(face font.Face, text string) (fixed.Rectangle26_6, int, int) {
	ink, _ := font.BoundString(face, text)
	return ink, (ink.Max.X - ink.Min.X).Ceil(), (ink.Max.Y - ink.Min.Y).Ceil()
}

// Apply draws text onto the image at path and overwrites it as PNG.
func Apply(path, text string, face font.Face, style Style) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if !filetype.IsImage(data) {
		return fmt.Errorf("decode %s: not an image", filepath.Base(path))
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	bounds := src.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), src, bounds.Min, draw.Src)

	text = norm.NFC.String(strings.TrimSpace(text))
	if text != "" {
		drawCaption(canvas, text, face, style)
	}

	return writePNG(path, canvas)
}

func drawCaption(canvas *image.RGBA, text string, face font.Face, style Style) {
	ink, textWidth, textHeight := measureInk(face, text)

	size := canvas.Bounds().Size()
	x := (size.X - textWidth) / 2
	y := size.Y - textHeight - style.BottomOffset

	box := image.Rect(
		x-style.Padding,
		y-style.Padding,
		x+textWidth+style.Padding,
		y+textHeight+style.Padding,
	)
	shade := image.NewUniform(color.NRGBA{A: style.BackgroundAlpha})
	draw.Draw(canvas, box.Intersect(canvas.Bounds()), shade, image.Point{}, draw.Over)

	drawer := font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x) - ink.Min.X, Y: fixed.I(y) - ink.Min.Y},
	}
	drawer.DrawString(text)
}

func writePNG(path string, img image.Image) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encode png: %w", err)
		}
		return nil
	})
}

// Renderer applies captions with a fixed face and style.
type Renderer struct {
	face  font.Face
	style Style
}

// NewRenderer loads the configured font. A missing or unreadable font file is
// a configuration error.
func NewRenderer(cfg config.Overlay) (*Renderer, error) {
	face, err := LoadFace(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "overlay", "load font", "overlay.font_path must point to a readable TrueType/OpenType font", err)
	}
	return &Renderer{
		face:  face,
		style: Style{
			Padding:         cfg.Padding,
			BottomOffset:    cfg.BottomOffset,
			BackgroundAlpha: uint8(cfg.BackgroundAlpha),
		},
	}, nil
}

// Apply draws text onto the image at path.
func (r *Renderer) Apply(path, text string) error {
	return Apply(path, text, r.face, r.style)
}

// Close releases the font face.
func (r *Renderer) Close() error {
	if r == nil || r.face == nil {
		return nil
	}
	return r.face.Close()
}
