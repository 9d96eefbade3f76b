// Stremio datastore API types.
//
// Library records are heterogeneous across account history, so decoding
// is deliberately loose: fields the exporter cares about are typed, and
// the verbatim record is retained for backup and restore fidelity.
package stremio

import (
	"bytes"
	"encoding/json"
)

// Year tolerates both numeric and string encodings seen in library records.
type Year string

func (y *Year) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*y = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*y = Year(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return err
	}
	*y = Year(n.String())
	return nil
}

func (y Year) String() string { return string(y) }

// WatchState carries the per-item watch counters.
type WatchState struct {
	TimesWatched int `json:"timesWatched"`
}

// ItemMeta holds nested metadata used as a fallback for top-level fields.
type ItemMeta struct {
	Poster string `json:"poster"`
	Year   Year   `json:"year"`
}

// LibraryItem is one raw datastore record. The decoded fields feed
// normalization; the verbatim JSON round-trips untouched through
// backup and restore.
type LibraryItem struct {
	ID     string     `json:"_id"`
	Name   string     `json:"name"`
	Type   string     `json:"type,omitempty"`
	Poster string     `json:"poster,omitempty"`
	Year   Year       `json:"year,omitempty"`
	State  WatchState `json:"state"`
	Meta   *ItemMeta  `json:"meta,omitempty"`

	raw json.RawMessage
}

func (it *LibraryItem) UnmarshalJSON(b []byte) error {
	type alias LibraryItem
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*it = LibraryItem(a)
	it.raw = append(json.RawMessage(nil), b...)
	return nil
}

// MarshalJSON emits the verbatim record when one was decoded, so that
// fields the exporter does not model survive a backup/restore cycle.
func (it LibraryItem) MarshalJSON() ([]byte, error) {
	if it.raw != nil {
		return it.raw, nil
	}
	type alias LibraryItem
	return json.Marshal(alias(it))
}

// PosterURL resolves the poster, preferring the direct field over the
// nested meta field.
func (it LibraryItem) PosterURL() string {
	if it.Poster != "" {
		return it.Poster
	}
	if it.Meta != nil {
		return it.Meta.Poster
	}
	return ""
}

// ReleaseYear resolves the year, preferring the direct field over the
// nested meta field.
func (it LibraryItem) ReleaseYear() string {
	if it.Year != "" {
		return it.Year.String()
	}
	if it.Meta != nil {
		return it.Meta.Year.String()
	}
	return ""
}

// LibraryResponse is the datastoreGet response. Raw retains the verbatim
// body as the durable backup artifact.
type LibraryResponse struct {
	Result []LibraryItem `json:"result"`
	Raw    []byte        `json:"-"`
}
