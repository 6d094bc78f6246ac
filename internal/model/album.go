package model

import "time"

// Album groups media items by user intent. Name is not unique. ItemCount and
// CoverLocator are derived at query time, never persisted.
type Album struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	ItemCount    int       `json:"itemCount"`
	CoverLocator string    `json:"coverLocator,omitempty"`
}

// AlbumItem links one album to one media id. The (AlbumID, MediaID) pair is
// unique; duplicate adds are silent no-ops.
type AlbumItem struct {
	AlbumID int64     `json:"albumId"`
	MediaID int64     `json:"mediaId"`
	AddedAt time.Time `json:"addedAt"`
}
