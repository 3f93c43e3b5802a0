package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bskyscraper/pkg/models"
)

// ReadDataset loads a CSV dataset. Columns are matched by header name, so
// files with extra or reordered columns still load; missing columns read as "".
func ReadDataset(path string) ([]models.PostRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	field := func(row []string, name string) string {
		if i, ok := columns[name]; ok && i < len(row) {
			return row[i]
		}
		return ""
	}

	var records []models.PostRecord
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read dataset row: %w", err)
		}
		records = append(records, models.PostRecord{
			Author:    field(row, "author"),
			Content:   field(row, "content"),
			CreatedAt: field(row, "created_at"),
			PostLink:  field(row, "post_link"),
		})
	}

	return records, nil
}

// WriteDataset replaces path with records. The data goes to a temporary file
// in the same directory which is synced and renamed over path, so readers
// never observe a partial file.
func WriteDataset(path string, records []models.PostRecord) error {
	dir := filepath.Dir(path)
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary dataset file: %w", err)
	}
	tempPath := file.Name()

	writer := csv.NewWriter(file)
	if err := writer.Write(models.CSVHeader); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write dataset header: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record.Row()); err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to write dataset row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush dataset: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync dataset file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close dataset file: %w", err)
	}

	// CreateTemp uses 0600; datasets are meant to be shared
	if err := os.Chmod(tempPath, 0644); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to set dataset permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}

	return nil
}

// Dedupe drops records whose PostLink was already seen, keeping the first
// occurrence and the original order.
func Dedupe(records []models.PostRecord) []models.PostRecord {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.PostRecord, 0, len(records))
	for _, record := range records {
		if _, dup := seen[record.PostLink]; dup {
			continue
		}
		seen[record.PostLink] = struct{}{}
		out = append(out, record)
	}
	return out
}
