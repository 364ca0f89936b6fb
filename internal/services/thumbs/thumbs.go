// Package thumbs normalizes user and embedded thumbnails into the square
// JPEG format uploads expect.
package thumbs

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"

	"refile/internal/services"
)

// DefaultSize is the square edge length of a normalized thumbnail.
const DefaultSize = 320

// Normalizer resizes thumbnail candidates.
type Normalizer struct {
	size int
}

// New constructs a normalizer producing size x size thumbnails.
// Non-positive sizes fall back to DefaultSize.
func New(size int) *Normalizer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Normalizer{size: size}
}

// Normalize resizes the image at path to the configured square and writes it
// next to the source with a _processed.jpg suffix, returning the new path.
func (n *Normalizer) Normalize(path string) (string, error) {
	if path == "" {
		return "", services.Wrap(services.ErrConfiguration, "thumbs", "normalize", "path required", nil)
	}
	if _, err := os.Stat(path); err != nil {
		return "", services.Wrap(services.ErrNotFound, "thumbs", "normalize", fmt.Sprintf("thumbnail %s missing", path), err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "thumbs", "normalize", "decode thumbnail", err)
	}

	resized := imaging.Resize(img, n.size, n.size, imaging.Lanczos)
	processed := path + "_processed.jpg"
	if err := imaging.Save(resized, processed, imaging.JPEGQuality(90)); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "thumbs", "normalize", "encode thumbnail", err)
	}
	return processed, nil
}
