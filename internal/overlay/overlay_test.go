package overlay

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/h2non/filetype"

	"lyricvid/internal/config"
	"lyricvid/internal/services"
)

var red = color.RGBA{R: 255, A: 255}

func writeSolid(t *testing.T, name string, w, h int, encode func(*bytes.Buffer, image.Image) error) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, red)
		}
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}
	return path
}

func encodePNG(buf *bytes.Buffer, img image.Image) error { return png.Encode(buf, img) }

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 95})
}

func readPNG(t *testing.T, path string) image.Image {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	return img
}

func TestApplyDrawsBoxAndText(t *testing.T) {
	face, err := LoadFace("", 30)
	if err != nil {
		t.Fatalf("LoadFace: %v", err)
	}
	defer face.Close()

	const width, height = 400, 200
	path := writeSolid(t, "frame.png", width, height, encodePNG)
	style := DefaultStyle()
	text := "Hello world"

	if err := Apply(path, text, face, style); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	img := readPNG(t, path)
	if img.Bounds().Dx() != width || img.Bounds().Dy() != height {
		t.Fatalf("unexpected bounds %v", img.Bounds())
	}

	textWidth, textHeight := Measure(face, text)
	x := (width - textWidth) / 2
	y := height - textHeight - style.BottomOffset

	// Box corner inside the padding: red blended towards black.
	r, g, b, _ := img.At(x-style.Padding+1, y-style.Padding+1).RGBA()
	if r>>8 < 100 || r>>8 > 160 || g != 0 || b != 0 {
		t.Fatalf("expected shaded red inside box, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}

	// Outside the box stays untouched.
	r, g, b, _ = img.At(2, 2).RGBA()
	if r>>8 != 255 || g != 0 || b != 0 {
		t.Fatalf("expected pure red outside box, got r=%d g=%d b=%d", r>>8, g>>8, b>>8)
	}

	// Some text pixels are white.
	white := 0
	for py := y; py < y+textHeight; py++ {
		for px := x; px < x+textWidth; px++ {
			r, g, b, _ := img.At(px, py).RGBA()
			if r>>8 > 240 && g>>8 > 240 && b>>8 > 240 {
				white++
			}
		}
	}
	if white == 0 {
		t.Fatal("expected white text pixels inside the caption area")
	}
}

func TestApplyEmptyTextNormalizesToPNG(t *testing.T) {
	face, err := LoadFace("", 30)
	if err != nil {
		t.Fatalf("LoadFace: %v", err)
	}
	path := writeSolid(t, "gap.png", 64, 32, encodeJPEG)

	if err := Apply(path, "   ", face, DefaultStyle()); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	kind, err := filetype.Match(data)
	if err != nil || kind.Extension != "png" {
		t.Fatalf("expected png output, got %v (%v)", kind.Extension, err)
	}
	img := readPNG(t, path)
	_, g, b, _ := img.At(32, 16).RGBA()
	if g>>8 > 10 || b>>8 > 10 {
		t.Fatalf("expected image left uncaptioned, got g=%d b=%d", g>>8, b>>8)
	}
}

func TestApplyRejectsNonImage(t *testing.T) {
	face, err := LoadFace("", 12)
	if err != nil {
		t.Fatalf("LoadFace: %v", err)
	}
	path := filepath.Join(t.TempDir(), "oops.png")
	if err := os.WriteFile(path, []byte("<html>error</html>"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := Apply(path, "text", face, DefaultStyle()); err == nil {
		t.Fatal("expected error for non-image payload")
	}
}

func TestLoadFaceErrors(t *testing.T) {
	if _, err := LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 30); err == nil {
		t.Fatal("expected error for missing font")
	}
	bogus := filepath.Join(t.TempDir(), "bogus.ttf")
	if err := os.WriteFile(bogus, []byte("not a font"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFace(bogus, 30); err == nil {
		t.Fatal("expected error for invalid font data")
	}
}

func TestNewRendererMissingFontIsConfigurationError(t *testing.T) {
	cfg := config.Default().Overlay
	cfg.FontPath = filepath.Join(t.TempDir(), "arial.ttf")
	_, err := NewRenderer(cfg)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRendererAppliesCaption(t *testing.T) {
	renderer, err := NewRenderer(config.Default().Overlay)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	defer renderer.Close()

	path := writeSolid(t, "frame.png", 320, 180, encodePNG)
	if err := renderer.Apply(path, "Café lights"); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	readPNG(t, path)
}
