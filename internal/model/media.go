package model

import "time"

// MediaItem is a point-in-time snapshot of one entry in the externally owned
// media index. It is never mutated after construction; when the underlying
// file changes, a new snapshot is fetched.
type MediaItem struct {
	ID                int64     `json:"id"`
	Locator           string    `json:"locator"`
	DisplayName       string    `json:"displayName"`
	MimeType          string    `json:"mimeType"`
	DateTaken         time.Time `json:"dateTaken"`
	DateModified      time.Time `json:"dateModified"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Size              int64     `json:"size"`
	BucketDisplayName string    `json:"bucketDisplayName"`
	BucketID          int64     `json:"bucketId"`
}

// AspectRatio defaults to 1.0 when either dimension is absent or
// non-positive.
func (m MediaItem) AspectRatio() float64 {
	if m.Width <= 0 || m.Height <= 0 {
		return 1.0
	}
	return float64(m.Width) / float64(m.Height)
}

func (m MediaItem) IsPortrait() bool {
	return m.AspectRatio() < 1.0
}

func (m MediaItem) IsLandscape() bool {
	return m.AspectRatio() > 1.0
}

// Favorite marks one media id as favorited. At most one record exists per
// media id.
type Favorite struct {
	MediaID   int64     `json:"mediaId"`
	CreatedAt time.Time `json:"createdAt"`
}

// CacheEntry is a locally persisted snapshot of external media metadata.
// LastScanned is the freshness watermark; an entry never reflects the item's
// current external state.
type CacheEntry struct {
	ID                int64     `json:"id"`
	DisplayName       string    `json:"displayName"`
	MimeType          string    `json:"mimeType"`
	DateTaken         time.Time `json:"dateTaken"`
	Width             int       `json:"width"`
	Height            int       `json:"height"`
	Size              int64     `json:"size"`
	BucketDisplayName string    `json:"bucketDisplayName"`
	LastScanned       time.Time `json:"lastScanned"`
}

// CacheEntryOf snapshots a media item into a cache entry stamped at t.
func CacheEntryOf(m MediaItem, t time.Time) CacheEntry {
	return CacheEntry{
		ID:                m.ID,
		DisplayName:       m.DisplayName,
		MimeType:          m.MimeType,
		DateTaken:         m.DateTaken,
		Width:             m.Width,
		Height:            m.Height,
		Size:              m.Size,
		BucketDisplayName: m.BucketDisplayName,
		LastScanned:       t,
	}
}
