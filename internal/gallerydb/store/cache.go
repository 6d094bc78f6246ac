package store

import (
	"context"
	"time"

	"github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/model"
)

// UpsertCacheEntries bulk-replaces cache entries by id inside one
// transaction.
func (s *Store) UpsertCacheEntries(ctx context.Context, entries []model.CacheEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.StorageIO("begin cache upsert", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO media_cache
		(id, displayName, mimeType, dateTaken, width, height, size, bucketDisplayName, lastScanned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.StorageIO("prepare cache upsert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.ExecContext(ctx,
			e.ID, e.DisplayName, e.MimeType, e.DateTaken.UnixMilli(),
			e.Width, e.Height, e.Size, e.BucketDisplayName, e.LastScanned.UnixMilli())
		if err != nil {
			tx.Rollback()
			return errors.StorageIO("upsert cache entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StorageIO("commit cache upsert", err)
	}
	return nil
}

// CacheEntriesSince returns entries scanned strictly after since, ordered by
// capture time descending. The zero time returns everything.
func (s *Store) CacheEntriesSince(ctx context.Context, since time.Time) ([]model.CacheEntry, error) {
	var watermark int64
	if !since.IsZero() {
		watermark = since.UnixMilli()
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, displayName, mimeType, dateTaken, width, height, size, bucketDisplayName, lastScanned
		FROM media_cache
		WHERE lastScanned > ?
		ORDER BY dateTaken DESC`, watermark)
	if err != nil {
		return nil, errors.StorageIO("query media cache", err)
	}
	defer rows.Close()

	entries := make([]model.CacheEntry, 0)
	for rows.Next() {
		var e model.CacheEntry
		var dateTaken, lastScanned int64
		if err := rows.Scan(&e.ID, &e.DisplayName, &e.MimeType, &dateTaken,
			&e.Width, &e.Height, &e.Size, &e.BucketDisplayName, &lastScanned); err != nil {
			return nil, errors.StorageIO("scan cache entry", err)
		}
		e.DateTaken = time.UnixMilli(dateTaken)
		e.LastScanned = time.UnixMilli(lastScanned)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageIO("query media cache", err)
	}
	return entries, nil
}
