package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bskyscraper/pkg/config"
	"bskyscraper/pkg/logger"
)

// Manager owns the output directory and hands out persistence strategies
type Manager struct {
	outputDir string
	logger    logger.Logger
}

// DatasetInfo describes a saved dataset file
type DatasetInfo struct {
	Name    string
	Path    string
	Records int
}

// NewManager creates a storage manager for outputDir. It does not touch the
// filesystem; call EnsureOutputDir once at startup.
func NewManager(outputDir string, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{outputDir: outputDir, logger: log}
}

// EnsureOutputDir creates the output directory if needed. It is idempotent.
// Failures are logged as warnings and returned; a later save reports its own error.
func (m *Manager) EnsureOutputDir() error {
	info, err := os.Stat(m.outputDir)
	if err == nil && info.IsDir() {
		m.logger.DebugWithFields("Output directory already exists", map[string]interface{}{
			"directory": m.outputDir,
		})
		return nil
	}

	if err := os.MkdirAll(m.outputDir, 0755); err != nil {
		m.logger.WithError(err).WarnWithFields("Unable to create output directory", map[string]interface{}{
			"directory":  m.outputDir,
			"permission": errors.Is(err, fs.ErrPermission),
		})
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	m.logger.InfoWithFields("Output directory created", map[string]interface{}{
		"directory": m.outputDir,
	})
	return nil
}

// OutputDir returns the output directory path
func (m *Manager) OutputDir() string {
	return m.outputDir
}

// DatasetPath returns the dataset file for a query inside the output directory
func (m *Manager) DatasetPath(query string) string {
	return filepath.Join(m.outputDir, DatasetFileName(query))
}

// Strategy returns the persistence strategy registered under name
func (m *Manager) Strategy(name string) (Strategy, error) {
	switch strings.ToLower(name) {
	case config.StrategyMerge:
		return NewMergeStrategy(m.logger), nil
	case config.StrategyReplace, "":
		return NewReplaceStrategy(m.outputDir, m.logger), nil
	default:
		return nil, fmt.Errorf("unknown persistence strategy %q", name)
	}
}

// List returns the datasets in the output directory sorted by name
func (m *Manager) List() ([]DatasetInfo, error) {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var datasets []DatasetInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		path := filepath.Join(m.outputDir, entry.Name())
		records, err := ReadDataset(path)
		if err != nil {
			m.logger.WithError(err).WarnWithFields("Skipping unreadable dataset", map[string]interface{}{
				"path": path,
			})
			continue
		}
		datasets = append(datasets, DatasetInfo{
			Name:    strings.TrimSuffix(entry.Name(), ".csv"),
			Path:    path,
			Records: len(records),
		})
	}

	sort.Slice(datasets, func(i, j int) bool { return datasets[i].Name < datasets[j].Name })
	return datasets, nil
}

// DatasetFileName turns a query into a safe file name
func DatasetFileName(query string) string {
	name := strings.TrimSpace(query)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
	name = strings.Trim(name, ".")
	if name == "" {
		name = "posts"
	}
	return name + ".csv"
}
