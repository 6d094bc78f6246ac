// Package imageloader renders and caches thumbnails for gallery media.
// Thumbnails are derived data: the cache key covers the source path, the
// requested geometry and the file's mod time, so an edited file re-renders
// and a stale thumbnail is never served.
package imageloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	apperrors "github.com/polylab/thegallery/internal/errors"
)

// FitMode selects how a source image maps onto the requested box.
type FitMode string

const (
	// FitCover fills the box, cropping overflow. Grid cells use this.
	FitCover FitMode = "cover"
	// FitContain fits inside the box, preserving the full frame.
	FitContain FitMode = "contain"
)

// Loader produces thumbnail files for media sources.
type Loader interface {
	Thumbnail(ctx context.Context, srcPath string, width, height int, mode FitMode) (string, error)
}

// CachingLoader renders thumbnails with imaging and keeps them as JPEG files
// under a cache directory. Renders of the same source and geometry are
// served from disk.
type CachingLoader struct {
	cacheDir string
}

func NewCachingLoader(cacheDir string) (*CachingLoader, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, apperrors.Internal("create thumbnail cache dir", err)
	}
	return &CachingLoader{cacheDir: cacheDir}, nil
}

// Thumbnail returns the path of a rendered thumbnail, rendering it on a
// cache miss.
func (l *CachingLoader) Thumbnail(ctx context.Context, srcPath string, width, height int, mode FitMode) (string, error) {
	if width <= 0 || height <= 0 {
		return "", apperrors.InvalidArg("thumbnail size")
	}
	if mode != FitCover && mode != FitContain {
		return "", apperrors.InvalidArg("fit")
	}
	if err := ctx.Err(); err != nil {
		return "", apperrors.Internal("thumbnail cancelled", err)
	}

	info, err := os.Stat(srcPath)
	if err != nil {
		return "", apperrors.IndexProbeFailed(srcPath, err)
	}

	cached := filepath.Join(l.cacheDir, l.key(srcPath, width, height, mode, info.ModTime().UnixMilli()))
	if _, err := os.Stat(cached); err == nil {
		return cached, nil
	}

	src, err := imaging.Open(srcPath, imaging.AutoOrientation(true))
	if err != nil {
		return "", apperrors.IndexProbeFailed(srcPath, err)
	}

	var thumb = src
	switch mode {
	case FitCover:
		thumb = imaging.Fill(src, width, height, imaging.Center, imaging.Lanczos)
	case FitContain:
		thumb = imaging.Fit(src, width, height, imaging.Lanczos)
	}

	// Render to a sibling first so a concurrent reader never sees a partial
	// file under the cache key.
	tmp := cached + ".tmp"
	if err := imaging.Save(thumb, tmp, imaging.JPEGQuality(85)); err != nil {
		os.Remove(tmp)
		return "", apperrors.Internal("write thumbnail", err)
	}
	if err := os.Rename(tmp, cached); err != nil {
		os.Remove(tmp)
		return "", apperrors.Internal("publish thumbnail", err)
	}

	log.Debug().Str("src", srcPath).Int("w", width).Int("h", height).
		Str("fit", string(mode)).Msg("thumbnail rendered")
	return cached, nil
}

func (l *CachingLoader) key(srcPath string, width, height int, mode FitMode, modMilli int64) string {
	sum := xxhash.Sum64String(fmt.Sprintf("%s|%d|%d|%s|%d", srcPath, width, height, mode, modMilli))
	return fmt.Sprintf("%016x.jpg", sum)
}
