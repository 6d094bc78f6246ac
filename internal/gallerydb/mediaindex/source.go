// Package mediaindex adapts the externally owned media library (a directory
// tree written to by other processes) into pages of MediaItem snapshots.
//
// The index cannot be locked, so each page fetch re-lists the library and is
// consistent only with itself at fetch time. Items are identified by a
// stable hash of their library-relative path, which survives restarts and
// re-scans as long as the file does not move.
package mediaindex

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cespare/xxhash"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	apperrors "github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/model"
)

// Query narrows and orders a page fetch. The zero value selects the whole
// index, newest capture first.
type Query struct {
	Search string
	Sort   model.SortOrder
}

// Source produces pages of media snapshots from the external index.
// A page shorter than pageSize signals that no further pages exist. An empty
// index yields an empty terminal page, never an error.
type Source interface {
	FetchPage(ctx context.Context, page, pageSize int, q Query) ([]model.MediaItem, bool, error)
	Lookup(ctx context.Context, id int64) (*model.MediaItem, error)
}

// FSSource reads the index from a directory tree.
type FSSource struct {
	root string
}

func NewFSSource(root string) *FSSource {
	return &FSSource{root: filepath.Clean(root)}
}

// Root returns the library root directory.
func (s *FSSource) Root() string {
	return s.root
}

// entry is a listing row before the per-page probe fills in dimensions.
type entry struct {
	relPath string
	name    string
	mime    string
	modTime time.Time
	size    int64
}

// FetchPage returns up to pageSize items starting at page*pageSize.
func (s *FSSource) FetchPage(ctx context.Context, page, pageSize int, q Query) ([]model.MediaItem, bool, error) {
	if page < 0 {
		return nil, false, apperrors.InvalidArg("page")
	}
	if pageSize <= 0 {
		return nil, false, apperrors.InvalidArg("pageSize")
	}

	entries, err := s.list(ctx, q)
	if err != nil {
		return nil, false, err
	}

	start := page * pageSize
	if start >= len(entries) {
		return []model.MediaItem{}, false, nil
	}
	end := start + pageSize
	if end > len(entries) {
		end = len(entries)
	}

	items := make([]model.MediaItem, 0, end-start)
	for _, e := range entries[start:end] {
		if err := ctx.Err(); err != nil {
			return nil, false, apperrors.IndexQueryFailed(err)
		}
		items = append(items, s.snapshot(e))
	}

	return items, end < len(entries), nil
}

// Lookup finds a single item by its stable id, probing it like a page fetch
// would.
func (s *FSSource) Lookup(ctx context.Context, id int64) (*model.MediaItem, error) {
	entries, err := s.list(ctx, Query{})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if pathID(e.relPath) == id {
			item := s.snapshot(e)
			return &item, nil
		}
	}
	return nil, apperrors.MediaNotFound(id)
}

// list walks the library and returns matching entries in query order.
// A missing root is a valid empty index, not a failure.
func (s *FSSource) list(ctx context.Context, q Query) ([]entry, error) {
	entries := make([]entry, 0, 256)
	search := strings.ToLower(strings.TrimSpace(q.Search))

	err := fs.WalkDir(os.DirFS(s.root), ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A subtree we cannot read is skipped; the index keeps going.
			return fs.SkipDir
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		name := d.Name()
		if d.IsDir() {
			if path != "." && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}

		mime, ok := mediaMime(filepath.Join(s.root, path))
		if !ok {
			return nil
		}
		if search != "" && !strings.Contains(strings.ToLower(name), search) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		entries = append(entries, entry{
			relPath: path,
			name:    name,
			mime:    mime,
			modTime: info.ModTime(),
			size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []entry{}, nil
		}
		return nil, apperrors.IndexQueryFailed(err)
	}

	sortEntries(entries, q.Sort)
	return entries, nil
}

func sortEntries(entries []entry, order model.SortOrder) {
	switch order {
	case model.SortDateTakenAsc:
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].modTime.Equal(entries[j].modTime) {
				return entries[i].name < entries[j].name
			}
			return entries[i].modTime.Before(entries[j].modTime)
		})
	case model.SortNameAsc:
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].name < entries[j].name
		})
	default: // capture time descending
		sort.Slice(entries, func(i, j int) bool {
			if entries[i].modTime.Equal(entries[j].modTime) {
				return entries[i].name < entries[j].name
			}
			return entries[i].modTime.After(entries[j].modTime)
		})
	}
}

// snapshot turns a listing entry into a full MediaItem, probing dimensions
// and capture time. Probing happens per page, never for the whole listing.
func (s *FSSource) snapshot(e entry) model.MediaItem {
	abs := filepath.Join(s.root, e.relPath)
	bucket := filepath.Dir(e.relPath)

	item := model.MediaItem{
		ID:           pathID(e.relPath),
		Locator:      abs,
		DisplayName:  e.name,
		MimeType:     e.mime,
		DateTaken:    e.modTime,
		DateModified: e.modTime,
		Size:         e.size,
	}

	if bucket == "." {
		item.BucketDisplayName = filepath.Base(s.root)
	} else {
		item.BucketDisplayName = filepath.Base(bucket)
	}
	item.BucketID = pathID(bucket)

	probe(abs, &item)
	return item
}

// pathID derives the stable external id from a library-relative path.
func pathID(relPath string) int64 {
	h := xxhash.Sum64String(filepath.ToSlash(relPath))
	id := int64(h & math.MaxInt64)
	if id == 0 {
		id = 1
	}
	return id
}

// extMime covers the common cases without touching file contents.
var extMime = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".heic": "image/heic",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
}

// mediaMime reports the MIME type of path and whether it belongs in the
// index. Unknown extensions fall back to content sniffing.
func mediaMime(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := extMime[ext]; ok {
		return mime, true
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		log.Debug().Err(err).Str("path", path).Msg("mime detection failed")
		return "", false
	}
	m := mtype.String()
	if strings.HasPrefix(m, "image/") || strings.HasPrefix(m, "video/") {
		return m, true
	}
	return "", false
}
