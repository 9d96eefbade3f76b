package tasks

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/djib1010/stremio-library-exporter/internal/shared"
	"github.com/djib1010/stremio-library-exporter/internal/stremio"
)

// LoadBackup reads a library backup file and returns its raw items.
//
// Both exported shapes are accepted: the verbatim API response
// ({"result": [...]}) and a bare item array. Anything else is a fatal
// [shared.ErrInvalidBackup] before any network activity happens.
func LoadBackup(path string) ([]stremio.LibraryItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup file: %w", err)
	}

	var envelope struct {
		Result []stremio.LibraryItem `json:"result"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Result != nil {
		return envelope.Result, nil
	}

	var items []stremio.LibraryItem
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	return nil, fmt.Errorf("%w: expected an item array or an API response object", shared.ErrInvalidBackup)
}
