package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"bskyscraper/pkg/config"
	"bskyscraper/pkg/logger"
	"bskyscraper/pkg/models"
)

// Strategy persists a batch of records
type Strategy interface {
	// Save writes records for the dataset at path and returns where they landed.
	// An empty batch is a no-op that returns "".
	Save(records []models.PostRecord, path string) (string, error)
	Name() string
}

// MergeStrategy unions new records with the dataset already at path.
// New records come first, so on a duplicate post link the fresh copy wins.
type MergeStrategy struct {
	logger logger.Logger
}

// NewMergeStrategy creates a MergeStrategy
func NewMergeStrategy(log logger.Logger) *MergeStrategy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &MergeStrategy{logger: log}
}

func (s *MergeStrategy) Name() string { return config.StrategyMerge }

func (s *MergeStrategy) Save(records []models.PostRecord, path string) (string, error) {
	if len(records) == 0 {
		s.logger.Info("No posts to save")
		return "", nil
	}

	combined := records
	existing, err := ReadDataset(path)
	switch {
	case err == nil:
		combined = make([]models.PostRecord, 0, len(records)+len(existing))
		combined = append(combined, records...)
		combined = append(combined, existing...)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return "", fmt.Errorf("failed to load existing dataset: %w", err)
	}

	merged := Dedupe(combined)
	if err := WriteDataset(path, merged); err != nil {
		return "", err
	}

	s.logger.InfoWithFields("Dataset merged", map[string]interface{}{
		"path":     path,
		"new":      len(records),
		"existing": len(existing),
		"total":    len(merged),
	})
	return path, nil
}

// ReplaceStrategy writes the batch as a fresh file inside OutputDir,
// replacing any previous dataset of the same name. Records are not deduplicated.
type ReplaceStrategy struct {
	OutputDir string
	logger    logger.Logger
}

// NewReplaceStrategy creates a ReplaceStrategy targeting outputDir
func NewReplaceStrategy(outputDir string, log logger.Logger) *ReplaceStrategy {
	if log == nil {
		log = logger.GetLogger()
	}
	return &ReplaceStrategy{OutputDir: outputDir, logger: log}
}

func (s *ReplaceStrategy) Name() string { return config.StrategyReplace }

func (s *ReplaceStrategy) Save(records []models.PostRecord, path string) (string, error) {
	if len(records) == 0 {
		s.logger.Info("No posts to save")
		return "", nil
	}

	target := path
	if s.OutputDir != "" {
		target = filepath.Join(s.OutputDir, filepath.Base(path))
	}

	if err := WriteDataset(target, records); err != nil {
		return "", err
	}

	s.logger.InfoWithFields("Dataset written", map[string]interface{}{
		"path":    target,
		"records": len(records),
	})
	return target, nil
}
