// Package store is the persistent half of the gallery data layer: durable
// CRUD over favorites, albums, album membership and the media metadata
// cache, backed by a single SQLite file under the work dir.
//
// The store owns the locally persisted state only; it knows nothing about
// the externally owned media index. Mutations are serialized through one
// connection, so per-row write semantics are last-write-wins without further
// locking by callers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/model"
	"github.com/polylab/thegallery/pkg/broadcast"
)

// FileName is the database file created under the work dir.
const FileName = "gallery.db"

const schema = `
CREATE TABLE IF NOT EXISTS favorites (
	mediaId   INTEGER PRIMARY KEY,
	createdAt INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS albums (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	name      TEXT    NOT NULL,
	createdAt INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS album_items (
	albumId INTEGER NOT NULL,
	mediaId INTEGER NOT NULL,
	addedAt INTEGER NOT NULL,
	PRIMARY KEY (albumId, mediaId)
);
CREATE INDEX IF NOT EXISTS index_album_items_mediaId ON album_items (mediaId);

CREATE TABLE IF NOT EXISTS media_cache (
	id                INTEGER PRIMARY KEY,
	displayName       TEXT,
	mimeType          TEXT,
	dateTaken         INTEGER,
	width             INTEGER,
	height            INTEGER,
	size              INTEGER,
	bucketDisplayName TEXT,
	lastScanned       INTEGER NOT NULL
);
`

// Store is the persistent store over gallery.db.
type Store struct {
	db *sql.DB

	favorites *broadcast.Broadcaster[[]int64]
	albums    *broadcast.Broadcaster[[]model.Album]
}

// Open opens (creating if necessary) gallery.db under dir.
func Open(dir string) (*Store, error) {
	path := filepath.Join(dir, FileName)
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.StorageOpenFailed(path, err)
	}
	// One connection serializes all writers at the storage layer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.StorageOpenFailed(path, err)
	}

	s := &Store{
		db:        db,
		favorites: broadcast.New[[]int64](),
		albums:    broadcast.New[[]model.Album](),
	}

	// Prime the observable streams so new subscribers see current state
	// immediately.
	ctx := context.Background()
	s.notifyFavorites(ctx)
	s.notifyAlbums(ctx)

	log.Debug().Str("path", path).Msg("gallery store opened")
	return s, nil
}

// Close terminates the observable streams and releases the database.
func (s *Store) Close() error {
	s.favorites.Close()
	s.albums.Close()
	return s.db.Close()
}

func (s *Store) notifyFavorites(ctx context.Context) {
	ids, err := s.FavoriteIDs(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to requery favorites for stream")
		return
	}
	s.favorites.Publish(ids)
}

func (s *Store) notifyAlbums(ctx context.Context) {
	albums, err := s.AlbumsWithCounts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to requery albums for stream")
		return
	}
	s.albums.Publish(albums)
}
