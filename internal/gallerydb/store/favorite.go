package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/polylab/thegallery/internal/errors"
	"github.com/polylab/thegallery/internal/model"
	"github.com/polylab/thegallery/pkg/broadcast"
)

// GetFavorite returns the favorite record for id, or nil when the id is not
// favorited.
func (s *Store) GetFavorite(ctx context.Context, id int64) (*model.Favorite, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT mediaId, createdAt FROM favorites WHERE mediaId = ?`, id)

	var fav model.Favorite
	var createdAt int64
	if err := row.Scan(&fav.MediaID, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.StorageIO("get favorite", err)
	}
	fav.CreatedAt = time.UnixMilli(createdAt)
	return &fav, nil
}

// FavoriteIDs returns the set of favorited media ids. Ordering is not
// meaningful.
func (s *Store) FavoriteIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT mediaId FROM favorites`)
	if err != nil {
		return nil, errors.StorageIO("list favorite ids", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.StorageIO("scan favorite id", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageIO("list favorite ids", err)
	}
	return ids, nil
}

// ObserveFavoriteIDs returns a live stream of the favorite id set. It
// re-emits on every favorites mutation and replays the current set on
// subscribe.
func (s *Store) ObserveFavoriteIDs() *broadcast.Subscription[[]int64] {
	return s.favorites.Subscribe()
}

// UpsertFavorite records id as favorited. Idempotent.
func (s *Store) UpsertFavorite(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO favorites (mediaId, createdAt) VALUES (?, ?)`,
		id, time.Now().UnixMilli())
	if err != nil {
		return errors.StorageIO("upsert favorite", err)
	}
	s.notifyFavorites(ctx)
	return nil
}

// RemoveFavorite deletes the favorite record for id. Removing an absent
// record is a no-op, not an error.
func (s *Store) RemoveFavorite(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM favorites WHERE mediaId = ?`, id)
	if err != nil {
		return errors.StorageIO("remove favorite", err)
	}
	s.notifyFavorites(ctx)
	return nil
}
