package mediaindex

import (
	"image"
	"os"
	"strings"
	"time"

	// Decoders registered for image.DecodeConfig. Probing reads headers
	// only; full decoding belongs to the image-loading collaborator.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Eyevinn/mp4ff/mp4"
	"github.com/polylab/thegallery/internal/model"
	"github.com/rs/zerolog/log"
)

// mp4Epoch is the zero point of mp4 creation timestamps.
var mp4Epoch = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)

// probe fills in the dimensions (and, for video, a better capture time) of
// one item. Probe failures leave the snapshot usable: dimensions stay zero
// and the aspect ratio defaults to 1.0.
func probe(path string, item *model.MediaItem) {
	switch {
	case strings.HasPrefix(item.MimeType, "image/"):
		probeImage(path, item)
	case strings.HasPrefix(item.MimeType, "video/"):
		probeVideo(path, item)
	}
}

func probeImage(path string, item *model.MediaItem) {
	f, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("image probe open failed")
		return
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("image probe decode failed")
		return
	}
	item.Width = cfg.Width
	item.Height = cfg.Height
}

func probeVideo(path string, item *model.MediaItem) {
	f, err := os.Open(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("video probe open failed")
		return
	}
	defer f.Close()

	mf, err := mp4.DecodeFile(f, mp4.WithDecodeMode(mp4.DecModeLazyMdat))
	if err != nil || mf.Moov == nil {
		log.Debug().Err(err).Str("path", path).Msg("video probe decode failed")
		return
	}

	if mf.Moov.Mvhd != nil && mf.Moov.Mvhd.CreationTime > 0 {
		item.DateTaken = mp4Epoch.Add(time.Duration(mf.Moov.Mvhd.CreationTime) * time.Second)
	}

	for _, trak := range mf.Moov.Traks {
		if trak.Tkhd == nil {
			continue
		}
		// Track dimensions are 16.16 fixed point; the video track is the
		// one with a non-zero size.
		w := int(trak.Tkhd.Width >> 16)
		h := int(trak.Tkhd.Height >> 16)
		if w > 0 && h > 0 {
			item.Width = w
			item.Height = h
			break
		}
	}
}
