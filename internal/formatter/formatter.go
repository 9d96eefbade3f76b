// package formatter renders library exports to CSV, HTML, JSON backup,
// and ZIP archive files.
package formatter

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/djib1010/stremio-library-exporter/internal/library"
)

// BackupFilename is the stable name of the raw JSON backup artifact; the
// restore path looks for this file by default.
const BackupFilename = "library_backup.json"

// ExportToCSV converts items to CSV with columns: imdbID, Title, year, type, poster
func ExportToCSV(items []library.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"imdbID", "Title", "year", "type", "poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			item.ID,
			item.Title,
			item.Year,
			item.Type,
			item.Poster,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportOpts configures WriteLibraryExport.
type ExportOpts struct {
	OutputDir string    // Base output directory (default: "output")
	Timestamp time.Time // Stamp used in filenames (default: now)
	Archive   bool      // Also produce a ZIP of the run's files
}

// ExportFiles lists the artifacts produced by one export run.
type ExportFiles struct {
	WatchedCSV   string
	WatchlistCSV string
	HTMLReport   string
	Backup       string
	Archive      string // empty when archiving was disabled
}

// All returns the artifact paths in creation order, skipping empties.
func (f *ExportFiles) All() []string {
	paths := []string{f.WatchedCSV, f.WatchlistCSV, f.HTMLReport, f.Backup, f.Archive}
	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// WriteLibraryExport writes the watched/watchlist CSVs, the HTML report,
// and the raw JSON backup (the verbatim API response) into the output
// directory, optionally packaging them into a timestamped ZIP archive.
func WriteLibraryExport(bundle library.Bundle, rawResponse []byte, opts ExportOpts) (*ExportFiles, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = "output"
	}
	if opts.Timestamp.IsZero() {
		opts.Timestamp = time.Now()
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	stamp := opts.Timestamp.Format("20060102_150405")
	files := &ExportFiles{
		WatchedCSV:   filepath.Join(opts.OutputDir, fmt.Sprintf("watched_api_%s.csv", stamp)),
		WatchlistCSV: filepath.Join(opts.OutputDir, fmt.Sprintf("watchlist_api_%s.csv", stamp)),
		HTMLReport:   filepath.Join(opts.OutputDir, fmt.Sprintf("stremio_library_%s.html", stamp)),
		Backup:       filepath.Join(opts.OutputDir, BackupFilename),
	}

	watchedCSV, err := ExportToCSV(bundle.Watched)
	if err != nil {
		return nil, fmt.Errorf("failed to generate watched CSV: %w", err)
	}
	if err := os.WriteFile(files.WatchedCSV, watchedCSV, 0644); err != nil {
		return nil, fmt.Errorf("failed to write watched CSV: %w", err)
	}

	watchlistCSV, err := ExportToCSV(bundle.Watchlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate watchlist CSV: %w", err)
	}
	if err := os.WriteFile(files.WatchlistCSV, watchlistCSV, 0644); err != nil {
		return nil, fmt.Errorf("failed to write watchlist CSV: %w", err)
	}

	html, err := ExportToHTML(bundle, opts.Timestamp)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(files.HTMLReport, html, 0644); err != nil {
		return nil, fmt.Errorf("failed to write HTML report: %w", err)
	}

	if err := os.WriteFile(files.Backup, rawResponse, 0644); err != nil {
		return nil, fmt.Errorf("failed to write JSON backup: %w", err)
	}

	if opts.Archive {
		archivePath := filepath.Join(opts.OutputDir, fmt.Sprintf("stremio_library_backup_%s.zip", stamp))
		entries := map[string]string{
			files.WatchedCSV:   filepath.Base(files.WatchedCSV),
			files.WatchlistCSV: filepath.Base(files.WatchlistCSV),
			files.HTMLReport:   filepath.Base(files.HTMLReport),
			// The stable backup name gets the run's stamp inside the archive.
			files.Backup: fmt.Sprintf("library_backup_%s.json", stamp),
		}
		if err := writeArchive(archivePath, entries); err != nil {
			return nil, err
		}
		files.Archive = archivePath
	}

	return files, nil
}

// writeArchive creates a deflate ZIP at path containing the given files,
// keyed by source path with the archive name as value.
func writeArchive(path string, entries map[string]string) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for src, arcname := range entries {
		if err := addArchiveEntry(zw, src, arcname); err != nil {
			zw.Close()
			return err
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func addArchiveEntry(zw *zip.Writer, src, arcname string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s for archiving: %w", src, err)
	}
	defer in.Close()

	w, err := zw.Create(arcname)
	if err != nil {
		return fmt.Errorf("failed to add %s to archive: %w", arcname, err)
	}
	if _, err := io.Copy(w, in); err != nil {
		return fmt.Errorf("failed to archive %s: %w", arcname, err)
	}
	return nil
}
