package mediaindex

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polylab/thegallery/internal/model"
)

// writeJPEG writes a w x h jpeg and stamps its mod time.
func writeJPEG(t *testing.T, path string, w, h int, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func writePNG(t *testing.T, path string, w, h int, mod time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestFetchPageOrderAndBounds(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	// Five images, oldest first on disk; the index serves newest first.
	for i, name := range []string{"a.jpg", "b.jpg", "c.jpg", "d.jpg", "e.jpg"} {
		writeJPEG(t, filepath.Join(root, name), 10, 20, base.Add(time.Duration(i)*time.Minute))
	}

	s := NewFSSource(root)
	ctx := context.Background()

	page0, hasMore, err := s.FetchPage(ctx, 0, 2, Query{})
	require.NoError(t, err)
	require.Len(t, page0, 2)
	assert.True(t, hasMore)
	assert.Equal(t, "e.jpg", page0[0].DisplayName)
	assert.Equal(t, "d.jpg", page0[1].DisplayName)

	page1, hasMore, err := s.FetchPage(ctx, 1, 2, Query{})
	require.NoError(t, err)
	require.Len(t, page1, 2)
	assert.True(t, hasMore)

	// Final short page signals termination.
	page2, hasMore, err := s.FetchPage(ctx, 2, 2, Query{})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.False(t, hasMore)
	assert.Equal(t, "a.jpg", page2[0].DisplayName)

	// Beyond the end: empty terminal page, no error.
	empty, hasMore, err := s.FetchPage(ctx, 3, 2, Query{})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.False(t, hasMore)
}

func TestFetchPageEmptyIndex(t *testing.T) {
	s := NewFSSource(t.TempDir())

	items, hasMore, err := s.FetchPage(context.Background(), 0, 10, Query{})
	require.NoError(t, err, "an empty index is a terminal page, not a failure")
	assert.Empty(t, items)
	assert.False(t, hasMore)
}

func TestFetchPageMissingRoot(t *testing.T) {
	s := NewFSSource(filepath.Join(t.TempDir(), "nope"))

	items, hasMore, err := s.FetchPage(context.Background(), 0, 10, Query{})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.False(t, hasMore)
}

func TestFetchPageInvalidArgs(t *testing.T) {
	s := NewFSSource(t.TempDir())
	ctx := context.Background()

	_, _, err := s.FetchPage(ctx, -1, 10, Query{})
	assert.Error(t, err)

	_, _, err = s.FetchPage(ctx, 0, 0, Query{})
	assert.Error(t, err)
}

func TestSearchFiltersByName(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeJPEG(t, filepath.Join(root, "Beach_Sunset.jpg"), 4, 4, now)
	writeJPEG(t, filepath.Join(root, "mountain.jpg"), 4, 4, now)

	s := NewFSSource(root)
	items, _, err := s.FetchPage(context.Background(), 0, 10, Query{Search: "beach"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Beach_Sunset.jpg", items[0].DisplayName)
}

func TestSnapshotMetadata(t *testing.T) {
	root := t.TempDir()
	mod := time.Now().Add(-time.Minute).Truncate(time.Second)
	writePNG(t, filepath.Join(root, "Camera", "shot.png"), 30, 40, mod)

	s := NewFSSource(root)
	items, _, err := s.FetchPage(context.Background(), 0, 10, Query{})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "shot.png", item.DisplayName)
	assert.Equal(t, "image/png", item.MimeType)
	assert.Equal(t, 30, item.Width)
	assert.Equal(t, 40, item.Height)
	assert.True(t, item.IsPortrait())
	assert.Equal(t, "Camera", item.BucketDisplayName)
	assert.Positive(t, item.ID)
	assert.Positive(t, item.Size)
	assert.True(t, item.DateTaken.Equal(mod))
}

func TestStableIDs(t *testing.T) {
	root := t.TempDir()
	writeJPEG(t, filepath.Join(root, "pic.jpg"), 4, 4, time.Now())

	s := NewFSSource(root)
	ctx := context.Background()

	first, _, err := s.FetchPage(ctx, 0, 10, Query{})
	require.NoError(t, err)
	second, _, err := s.FetchPage(ctx, 0, 10, Query{})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "ids must be stable across fetches")

	got, err := s.Lookup(ctx, first[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "pic.jpg", got.DisplayName)

	_, err = s.Lookup(ctx, first[0].ID+1)
	assert.Error(t, err)
}

func TestNonMediaFilesAreIgnored(t *testing.T) {
	root := t.TempDir()
	now := time.Now()
	writeJPEG(t, filepath.Join(root, "keep.jpg"), 4, 4, now)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("text"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".hidden.jpg"), []byte{0xff, 0xd8}, 0644))

	s := NewFSSource(root)
	items, _, err := s.FetchPage(context.Background(), 0, 10, Query{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "keep.jpg", items[0].DisplayName)
}

func TestSortOrders(t *testing.T) {
	root := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeJPEG(t, filepath.Join(root, "b.jpg"), 4, 4, base.Add(time.Minute))
	writeJPEG(t, filepath.Join(root, "a.jpg"), 4, 4, base.Add(2*time.Minute))

	s := NewFSSource(root)
	ctx := context.Background()

	asc, _, err := s.FetchPage(ctx, 0, 10, Query{Sort: model.SortDateTakenAsc})
	require.NoError(t, err)
	assert.Equal(t, "b.jpg", asc[0].DisplayName)

	byName, _, err := s.FetchPage(ctx, 0, 10, Query{Sort: model.SortNameAsc})
	require.NoError(t, err)
	assert.Equal(t, "a.jpg", byName[0].DisplayName)
}
