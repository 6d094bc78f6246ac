// Package repository merges the externally owned media index with the local
// persistent store into one consistent, observable gallery surface. It owns
// the read-modify-write cycles over favorites and album membership, and the
// generation counter that invalidates in-flight pagination when the library
// or the active filter changes.
package repository

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/gallerydb/mediaindex"
	"github.com/polylab/thegallery/internal/gallerydb/store"
	"github.com/polylab/thegallery/internal/model"
	"github.com/polylab/thegallery/internal/permission"
	"github.com/polylab/thegallery/pkg/broadcast"
	"github.com/polylab/thegallery/pkg/filecopy"
)

// importSubDir is where captured images land inside the library root.
const importSubDir = "TheGallery"

// Page is one fetched slice of the filtered gallery. HasMore is false on the
// terminal page; a page is never longer than the requested size.
type Page struct {
	Index   int               `json:"index"`
	Items   []model.MediaItem `json:"items"`
	HasMore bool              `json:"hasMore"`
}

// Repository is the single entry point of the gallery data layer. All methods
// are safe for concurrent use.
type Repository struct {
	store  *store.Store
	source mediaindex.Source
	perm   permission.Checker

	// generation invalidates open media streams. Bumped on every write that
	// can change what a filtered listing returns.
	generation atomic.Int64

	// toggleMu serializes favorite toggles so concurrent read-invert-persist
	// cycles cannot interleave.
	toggleMu sync.Mutex

	pageSize int
	now      func() time.Time
}

// Option tweaks repository construction.
type Option func(*Repository)

// WithPageSize overrides the default page size used by media streams.
func WithPageSize(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.pageSize = n
		}
	}
}

// DefaultPageSize is tuned for a 3-column grid: a page covers about 20 rows.
const DefaultPageSize = 60

func New(s *store.Store, src mediaindex.Source, perm permission.Checker, opts ...Option) *Repository {
	r := &Repository{
		store:    s,
		source:   src,
		perm:     perm,
		pageSize: DefaultPageSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generation returns the current stream generation.
func (r *Repository) Generation() int64 {
	return r.generation.Load()
}

// Refresh invalidates every open media stream. Called when the external
// library changes underneath us.
func (r *Repository) Refresh() {
	gen := r.generation.Add(1)
	log.Debug().Int64("generation", gen).Msg("media streams invalidated")
}

// PermissionState reports the current read capability over the media library.
// It is never cached: permission can change externally at any time.
func (r *Repository) PermissionState() permission.State {
	return r.perm.State()
}

// LoadPage fetches one page of the filtered gallery. Pages are consistent
// with themselves only; the caller detects staleness via Generation.
func (r *Repository) LoadPage(ctx context.Context, filter model.Filter, page, pageSize int) (Page, error) {
	if pageSize <= 0 {
		pageSize = r.pageSize
	}

	q := mediaindex.Query{Search: filter.SearchQuery, Sort: filter.Sort()}

	keep, err := r.keepFunc(ctx, filter)
	if err != nil {
		return Page{}, err
	}

	var (
		items   []model.MediaItem
		hasMore bool
	)
	if keep == nil {
		items, hasMore, err = r.source.FetchPage(ctx, page, pageSize, q)
	} else {
		items, hasMore, err = r.loadRestricted(ctx, q, keep, page, pageSize)
	}
	if err != nil {
		return Page{}, err
	}

	r.cachePage(ctx, items)

	return Page{Index: page, Items: items, HasMore: hasMore}, nil
}

// keepFunc builds the id predicate for filters that restrict against store
// state. A nil predicate means the filter imposes no id restriction.
func (r *Repository) keepFunc(ctx context.Context, filter model.Filter) (func(int64) bool, error) {
	if !filter.ShowFavoritesOnly && filter.AlbumID == nil {
		return nil, nil
	}

	allowed := make(map[int64]struct{})

	if filter.ShowFavoritesOnly {
		ids, err := r.store.FavoriteIDs(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			allowed[id] = struct{}{}
		}
	}

	if filter.AlbumID != nil {
		ids, err := r.store.AlbumMediaIDs(ctx, *filter.AlbumID)
		if err != nil {
			return nil, err
		}
		if filter.ShowFavoritesOnly {
			// Both restrictions active: intersect.
			members := make(map[int64]struct{}, len(ids))
			for _, id := range ids {
				members[id] = struct{}{}
			}
			for id := range allowed {
				if _, ok := members[id]; !ok {
					delete(allowed, id)
				}
			}
		} else {
			for _, id := range ids {
				allowed[id] = struct{}{}
			}
		}
	}

	return func(id int64) bool {
		_, ok := allowed[id]
		return ok
	}, nil
}

// loadRestricted pages an id-restricted listing. The index is walked page by
// page and matches accumulated, so the returned page is always full until the
// restricted set is exhausted.
func (r *Repository) loadRestricted(ctx context.Context, q mediaindex.Query, keep func(int64) bool, page, pageSize int) ([]model.MediaItem, bool, error) {
	if page < 0 {
		return nil, false, apperrors.InvalidArg("page")
	}

	// One match past the requested window is enough to decide HasMore.
	needed := (page+1)*pageSize + 1

	var matched []model.MediaItem
	for srcPage := 0; len(matched) < needed; srcPage++ {
		items, hasMore, err := r.source.FetchPage(ctx, srcPage, pageSize, q)
		if err != nil {
			return nil, false, err
		}
		for _, item := range items {
			if keep(item.ID) {
				matched = append(matched, item)
			}
		}
		if !hasMore {
			break
		}
	}

	start := page * pageSize
	if start >= len(matched) {
		return []model.MediaItem{}, false, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], end < len(matched), nil
}

// cachePage persists snapshots of a fetched page. Cache writes are best
// effort; a failed write never fails the read that produced it.
func (r *Repository) cachePage(ctx context.Context, items []model.MediaItem) {
	if len(items) == 0 {
		return
	}
	scanned := r.now()
	entries := make([]model.CacheEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, model.CacheEntryOf(item, scanned))
	}
	if err := r.store.UpsertCacheEntries(ctx, entries); err != nil {
		log.Warn().Err(err).Int("count", len(entries)).Msg("media cache write failed")
	}
}

// CachedMedia returns cached snapshots scanned after the watermark. A zero
// watermark returns everything.
func (r *Repository) CachedMedia(ctx context.Context, since time.Time) ([]model.CacheEntry, error) {
	return r.store.CacheEntriesSince(ctx, since)
}

// ToggleFavorite inverts the favorite state of a media id and returns the
// state after the toggle. Concurrent toggles of the same id are serialized,
// so a double toggle always restores the original state.
func (r *Repository) ToggleFavorite(ctx context.Context, mediaID int64) (bool, error) {
	r.toggleMu.Lock()
	defer r.toggleMu.Unlock()

	fav, err := r.store.GetFavorite(ctx, mediaID)
	if err != nil {
		return false, err
	}

	if fav == nil {
		if err := r.store.UpsertFavorite(ctx, mediaID); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := r.store.RemoveFavorite(ctx, mediaID); err != nil {
		return false, err
	}
	return false, nil
}

// IsFavorite reports the current favorite state of a media id.
func (r *Repository) IsFavorite(ctx context.Context, mediaID int64) (bool, error) {
	fav, err := r.store.GetFavorite(ctx, mediaID)
	if err != nil {
		return false, err
	}
	return fav != nil, nil
}

// FavoriteIDs returns every favorited media id.
func (r *Repository) FavoriteIDs(ctx context.Context) ([]int64, error) {
	return r.store.FavoriteIDs(ctx)
}

// ObserveFavoriteIDs streams the favorite id set. The subscription replays
// the current set immediately.
func (r *Repository) ObserveFavoriteIDs() *broadcast.Subscription[[]int64] {
	return r.store.ObserveFavoriteIDs()
}

// Albums streams the album list with live item counts, starting with a
// Loading emission. The stream terminates on error without retrying; the
// channel is closed when ctx is cancelled or the store shuts down.
func (r *Repository) Albums(ctx context.Context) <-chan model.Result[[]model.Album] {
	out := make(chan model.Result[[]model.Album], 1)

	go func() {
		defer close(out)

		out <- model.Loading[[]model.Album]()

		albums, err := r.store.AlbumsWithCounts(ctx)
		if err != nil {
			emit(ctx, out, model.Failure[[]model.Album](err))
			return
		}
		r.fillCovers(ctx, albums)

		sub := r.store.ObserveAlbums()
		defer sub.Close()

		if !emit(ctx, out, model.Success(albums)) {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case albums, ok := <-sub.C:
				if !ok {
					return
				}
				r.fillCovers(ctx, albums)
				if !emit(ctx, out, model.Success(albums)) {
					return
				}
			}
		}
	}()

	return out
}

func emit[T any](ctx context.Context, out chan<- model.Result[T], v model.Result[T]) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// fillCovers derives each album's cover from its most recently added member
// still present in the index. Albums keep an empty cover when every member
// has disappeared.
func (r *Repository) fillCovers(ctx context.Context, albums []model.Album) {
	for i := range albums {
		if albums[i].ItemCount == 0 {
			continue
		}
		ids, err := r.store.AlbumMediaIDs(ctx, albums[i].ID)
		if err != nil {
			log.Debug().Err(err).Int64("album", albums[i].ID).Msg("cover lookup failed")
			continue
		}
		for _, id := range ids {
			item, err := r.source.Lookup(ctx, id)
			if err != nil {
				continue
			}
			albums[i].CoverLocator = item.Locator
			break
		}
	}
}

// CreateAlbum creates an empty album and returns its id. The name must not
// be blank after trimming.
func (r *Repository) CreateAlbum(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperrors.AlbumNameEmpty()
	}
	return r.store.InsertAlbum(ctx, name)
}

// AlbumsOnce returns the current album list with item counts and covers.
func (r *Repository) AlbumsOnce(ctx context.Context) ([]model.Album, error) {
	albums, err := r.store.AlbumsWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	r.fillCovers(ctx, albums)
	return albums, nil
}

// AddToAlbum records album membership. Adding an existing member is a no-op.
func (r *Repository) AddToAlbum(ctx context.Context, albumID, mediaID int64) error {
	return r.store.AddMembership(ctx, albumID, mediaID)
}

// RemoveFromAlbum removes album membership. Removing a non-member is a no-op.
func (r *Repository) RemoveFromAlbum(ctx context.Context, albumID, mediaID int64) error {
	return r.store.RemoveMembership(ctx, albumID, mediaID)
}

// AlbumMedia returns the items of one album, most recently added first.
// Items whose underlying file has disappeared are skipped.
func (r *Repository) AlbumMedia(ctx context.Context, albumID int64) ([]model.MediaItem, error) {
	ids, err := r.store.AlbumMediaIDs(ctx, albumID)
	if err != nil {
		return nil, err
	}

	items := make([]model.MediaItem, 0, len(ids))
	for _, id := range ids {
		item, err := r.source.Lookup(ctx, id)
		if err != nil {
			if apperrors.GetType(err) == apperrors.ErrTypeNotFound {
				continue
			}
			return nil, err
		}
		items = append(items, *item)
	}
	return items, nil
}

// Lookup resolves a single media item by id.
func (r *Repository) Lookup(ctx context.Context, id int64) (*model.MediaItem, error) {
	return r.source.Lookup(ctx, id)
}

// ImportCapturedImage writes a captured JPEG into the library under the app
// import directory and returns its path. The write is atomic and the media
// streams are invalidated so the new item shows up on the next page load.
func (r *Repository) ImportCapturedImage(ctx context.Context, root string, src io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", apperrors.IndexWriteFailed(root, err)
	}

	dir := filepath.Join(root, importSubDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", apperrors.IndexWriteFailed(dir, err)
	}

	name := fmt.Sprintf("IMG_%d.jpg", r.now().UnixMilli())
	dst := filepath.Join(dir, name)
	if err := filecopy.CopyFromReader(src, dst); err != nil {
		return "", apperrors.IndexWriteFailed(dst, err)
	}

	log.Info().Str("path", dst).Msg("captured image imported")
	r.Refresh()
	return dst, nil
}
