// package library maps raw datastore records to the canonical item shape
// and buckets them by watch state. Pure functions, no I/O.
package library

import (
	"github.com/djib1010/stremio-library-exporter/internal/stremio"
)

// DefaultType is the fallback category for records without a type tag.
const DefaultType = "movie"

// Item is the normalized, rendering-agnostic representation of one
// library entry. ID and Title are always non-empty.
type Item struct {
	ID      string `json:"imdbID"`
	Title   string `json:"Title"`
	Poster  string `json:"poster,omitempty"`
	Year    string `json:"year,omitempty"`
	Type    string `json:"type"`
	Watched bool   `json:"watched"`
}

// Bundle partitions normalized items into two disjoint sequences that
// preserve the remote collection's relative order within each partition.
type Bundle struct {
	Watched   []Item
	Watchlist []Item
}

// Total returns the number of items retained after drop-filtering.
func (b Bundle) Total() int {
	return len(b.Watched) + len(b.Watchlist)
}

// Normalize maps raw records to canonical items and partitions them by
// watch state. Records lacking an identifier or a name are dropped
// silently; partial success is preferred over total failure here, and
// the drop count is observable via input length minus [Bundle.Total].
func Normalize(records []stremio.LibraryItem) Bundle {
	var bundle Bundle

	for _, record := range records {
		if record.ID == "" || record.Name == "" {
			continue
		}

		itemType := record.Type
		if itemType == "" {
			itemType = DefaultType
		}

		item := Item{
			ID:      record.ID,
			Title:   record.Name,
			Poster:  record.PosterURL(),
			Year:    record.ReleaseYear(),
			Type:    itemType,
			Watched: record.State.TimesWatched > 0,
		}

		if item.Watched {
			bundle.Watched = append(bundle.Watched, item)
		} else {
			bundle.Watchlist = append(bundle.Watchlist, item)
		}
	}

	return bundle
}
