package store

import (
	"context"
	"time"

	"github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/model"
	"github.com/polylab/thegallery/pkg/broadcast"
)

// InsertAlbum creates an album and returns its generated id.
func (s *Store) InsertAlbum(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO albums (name, createdAt) VALUES (?, ?)`,
		name, time.Now().UnixMilli())
	if err != nil {
		return 0, errors.StorageIO("insert album", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.StorageIO("insert album", err)
	}

	s.notifyAlbums(ctx)
	return id, nil
}

// AlbumsWithCounts returns all albums ordered by creation time descending.
// The item count comes from a join aggregate so it is consistent with the
// membership table at query time.
func (s *Store) AlbumsWithCounts(ctx context.Context) ([]model.Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT albums.id, albums.name, albums.createdAt, COUNT(album_items.mediaId) AS itemCount
		FROM albums
		LEFT JOIN album_items ON albums.id = album_items.albumId
		GROUP BY albums.id
		ORDER BY albums.createdAt DESC, albums.id DESC`)
	if err != nil {
		return nil, errors.StorageIO("list albums", err)
	}
	defer rows.Close()

	albums := make([]model.Album, 0)
	for rows.Next() {
		var a model.Album
		var createdAt int64
		if err := rows.Scan(&a.ID, &a.Name, &createdAt, &a.ItemCount); err != nil {
			return nil, errors.StorageIO("scan album", err)
		}
		a.CreatedAt = time.UnixMilli(createdAt)
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageIO("list albums", err)
	}
	return albums, nil
}

// ObserveAlbums returns a live stream of the album list with counts,
// re-emitted on any album or membership mutation.
func (s *Store) ObserveAlbums() *broadcast.Subscription[[]model.Album] {
	return s.albums.Subscribe()
}

// AddMembership links mediaID into albumID. Adding an existing pair is a
// silent no-op.
func (s *Store) AddMembership(ctx context.Context, albumID, mediaID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO album_items (albumId, mediaId, addedAt) VALUES (?, ?, ?)`,
		albumID, mediaID, time.Now().UnixMilli())
	if err != nil {
		return errors.StorageIO("add album membership", err)
	}
	s.notifyAlbums(ctx)
	return nil
}

// RemoveMembership unlinks mediaID from albumID. Removing an absent pair is
// a no-op.
func (s *Store) RemoveMembership(ctx context.Context, albumID, mediaID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM album_items WHERE albumId = ? AND mediaId = ?`,
		albumID, mediaID)
	if err != nil {
		return errors.StorageIO("remove album membership", err)
	}
	s.notifyAlbums(ctx)
	return nil
}

// AlbumMediaIDs returns the media ids of one album, most recently added
// first. The first id doubles as the album cover.
func (s *Store) AlbumMediaIDs(ctx context.Context, albumID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mediaId FROM album_items WHERE albumId = ? ORDER BY addedAt DESC, rowid DESC`,
		albumID)
	if err != nil {
		return nil, errors.StorageIO("list album media ids", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.StorageIO("scan album media id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageIO("list album media ids", err)
	}
	return ids, nil
}
