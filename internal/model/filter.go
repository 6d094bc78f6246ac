package model

// SortOrder determines the order of a paged media query.
type SortOrder string

const (
	SortDateTakenDesc SortOrder = "date_taken_desc"
	SortDateTakenAsc  SortOrder = "date_taken_asc"
	SortNameAsc       SortOrder = "name_asc"
)

// Filter narrows a paged media query. The zero value selects everything,
// newest capture first.
type Filter struct {
	ShowFavoritesOnly bool      `json:"showFavoritesOnly"`
	AlbumID           *int64    `json:"albumId,omitempty"`
	SearchQuery       string    `json:"searchQuery,omitempty"`
	SortOrder         SortOrder `json:"sortOrder"`
}

// Sort returns the effective sort order, defaulting to capture time
// descending.
func (f Filter) Sort() SortOrder {
	if f.SortOrder == "" {
		return SortDateTakenDesc
	}
	return f.SortOrder
}

// Equal reports whether two filters select the same result set.
func (f Filter) Equal(other Filter) bool {
	if f.ShowFavoritesOnly != other.ShowFavoritesOnly ||
		f.SearchQuery != other.SearchQuery ||
		f.Sort() != other.Sort() {
		return false
	}
	switch {
	case f.AlbumID == nil && other.AlbumID == nil:
		return true
	case f.AlbumID == nil || other.AlbumID == nil:
		return false
	default:
		return *f.AlbumID == *other.AlbumID
	}
}
