package thumbs_test

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"refile/internal/services"
	"refile/internal/services/thumbs"
)

func writeImage(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	if err := imaging.Save(img, path); err != nil {
		t.Fatalf("save fixture image: %v", err)
	}
}

func TestNormalizeProducesSquareJPEG(t *testing.T) {
	src := filepath.Join(t.TempDir(), "thumb.png")
	writeImage(t, src, 640, 360)

	processed, err := thumbs.New(320).Normalize(src)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !strings.HasSuffix(processed, "_processed.jpg") {
		t.Fatalf("processed path = %q", processed)
	}

	img, err := imaging.Open(processed)
	if err != nil {
		t.Fatalf("open processed: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 320 || bounds.Dy() != 320 {
		t.Fatalf("processed size = %dx%d, want 320x320", bounds.Dx(), bounds.Dy())
	}
}

func TestNormalizeMissingFile(t *testing.T) {
	_, err := thumbs.New(0).Normalize(filepath.Join(t.TempDir(), "absent.jpg"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "thumb.jpg")
	if err := os.WriteFile(src, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	_, err := thumbs.New(320).Normalize(src)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("error = %v, want ErrExternalTool", err)
	}
}
