package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://bsky.social", cfg.Bluesky.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Bluesky.Timeout)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, 0, cfg.Search.MaxPages)
	assert.Equal(t, "Scraped Posts", cfg.Output.Directory)
	assert.Equal(t, StrategyReplace, cfg.Output.Strategy)
	assert.False(t, cfg.Validation.Enabled)
	assert.Equal(t, 10*time.Second, cfg.Validation.Timeout)
	assert.Empty(t, cfg.Validation.TemplatePath, "built-in template is the default")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BLUESKY_HANDLE", "alice.bsky.social")
	t.Setenv("BLUESKY_APP_PASSWORD", "abcd-efgh-ijkl-mnop")
	t.Setenv("BSKYSCRAPER_BASE_URL", "http://localhost:2583")
	t.Setenv("BSKYSCRAPER_TIMEOUT", "3s")
	t.Setenv("BSKYSCRAPER_LIMIT", "50")
	t.Setenv("BSKYSCRAPER_MAX_PAGES", "4")
	t.Setenv("BSKYSCRAPER_OUTPUT_DIR", "/env/output")
	t.Setenv("BSKYSCRAPER_STRATEGY", "MERGE")
	t.Setenv("BSKYSCRAPER_VALIDATE_LINKS", "true")
	t.Setenv("BSKYSCRAPER_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "alice.bsky.social", cfg.Bluesky.Handle)
	assert.Equal(t, "abcd-efgh-ijkl-mnop", cfg.Bluesky.AppPassword)
	assert.Equal(t, "http://localhost:2583", cfg.Bluesky.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Bluesky.Timeout)
	assert.Equal(t, 50, cfg.Search.Limit)
	assert.Equal(t, 4, cfg.Search.MaxPages)
	assert.Equal(t, "/env/output", cfg.Output.Directory)
	assert.Equal(t, StrategyMerge, cfg.Output.Strategy)
	assert.True(t, cfg.Validation.Enabled)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.HasCredentials())
}

func TestLoadFromEnvInvalidNumbers(t *testing.T) {
	t.Setenv("BSKYSCRAPER_LIMIT", "lots")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BSKYSCRAPER_LIMIT")
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		content := `
bluesky:
  handle: bob.bsky.social
  timeout: 5s
search:
  sort: latest
  limit: 100
  max_pages: 2
output:
  directory: ./out
  strategy: merge
logging:
  level: warn
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(configPath))

		assert.Equal(t, "bob.bsky.social", cfg.Bluesky.Handle)
		assert.Equal(t, 5*time.Second, cfg.Bluesky.Timeout)
		assert.Equal(t, "https://bsky.social", cfg.Bluesky.BaseURL)
		assert.Equal(t, "latest", cfg.Search.Sort)
		assert.Equal(t, 100, cfg.Search.Limit)
		assert.Equal(t, 2, cfg.Search.MaxPages)
		assert.Equal(t, "./out", cfg.Output.Directory)
		assert.Equal(t, StrategyMerge, cfg.Output.Strategy)
		assert.Equal(t, "warn", cfg.Logging.Level)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("bluesky: [unclosed"), 0644))

		cfg := DefaultConfig()
		err := cfg.LoadFromFile(configPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse config file")
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Run("finds config in current directory", func(t *testing.T) {
		tempDir := t.TempDir()
		oldDir, _ := os.Getwd()
		defer os.Chdir(oldDir)
		require.NoError(t, os.Chdir(tempDir))
		t.Setenv("HOME", tempDir)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".bskyscraper.yaml"), []byte("search:\n  limit: 10\n"), 0644))

		cfg := DefaultConfig()
		assert.Equal(t, ".bskyscraper.yaml", cfg.findConfigFile())
	})

	t.Run("no config file found", func(t *testing.T) {
		tempDir := t.TempDir()
		oldDir, _ := os.Getwd()
		defer os.Chdir(oldDir)
		require.NoError(t, os.Chdir(tempDir))
		t.Setenv("HOME", tempDir)

		cfg := DefaultConfig()
		assert.Empty(t, cfg.findConfigFile())
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		setupConfig   func(*Config)
		expectError   bool
		errorContains []string
	}{
		{
			name:        "defaults are valid without credentials",
			setupConfig: func(cfg *Config) {},
			expectError: false,
		},
		{
			name: "limit out of range",
			setupConfig: func(cfg *Config) {
				cfg.Search.Limit = 101
			},
			expectError:   true,
			errorContains: []string{"between 1 and 100"},
		},
		{
			name: "negative max pages and bad sort",
			setupConfig: func(cfg *Config) {
				cfg.Search.MaxPages = -1
				cfg.Search.Sort = "oldest"
			},
			expectError:   true,
			errorContains: []string{"max pages cannot be negative", "top or latest"},
		},
		{
			name: "unknown strategy",
			setupConfig: func(cfg *Config) {
				cfg.Output.Strategy = "append"
			},
			expectError:   true,
			errorContains: []string{`unknown output strategy "append"`},
		},
		{
			name: "validation enabled with built-in template",
			setupConfig: func(cfg *Config) {
				cfg.Validation.Enabled = true
				cfg.Validation.TemplatePath = ""
			},
			expectError: false,
		},
		{
			name: "invalid logging",
			setupConfig: func(cfg *Config) {
				cfg.Logging.Level = "verbose"
				cfg.Logging.Format = "xml"
			},
			expectError:   true,
			errorContains: []string{"invalid log level", "console or json"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.setupConfig(cfg)

			err := cfg.Validate()
			if !tt.expectError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			for _, msg := range tt.errorContains {
				assert.Contains(t, err.Error(), msg)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"handle":    "carol.bsky.social",
		"output":    "/flags/out",
		"sort":      "top",
		"lang":      "en",
		"limit":     75,
		"max-pages": 3,
		"merge":     true,
		"validate":  true,
		"notify":    true,
		"log-level": "error",
	})

	assert.Equal(t, "carol.bsky.social", cfg.Bluesky.Handle)
	assert.Equal(t, "/flags/out", cfg.Output.Directory)
	assert.Equal(t, "top", cfg.Search.Sort)
	assert.Equal(t, "en", cfg.Search.Lang)
	assert.Equal(t, 75, cfg.Search.Limit)
	assert.Equal(t, 3, cfg.Search.MaxPages)
	assert.Equal(t, StrategyMerge, cfg.Output.Strategy)
	assert.True(t, cfg.Validation.Enabled)
	assert.True(t, cfg.Output.Notify)
	assert.Equal(t, "error", cfg.Logging.Level)

	t.Run("zero values keep existing settings", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MergeCommandLineFlags(map[string]interface{}{
			"output": "",
			"limit":  0,
			"merge":  false,
		})
		assert.Equal(t, "Scraped Posts", cfg.Output.Directory)
		assert.Equal(t, 25, cfg.Search.Limit)
		assert.Equal(t, StrategyReplace, cfg.Output.Strategy)
	})
}

func TestSaveAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	oldDir, _ := os.Getwd()
	defer os.Chdir(oldDir)
	require.NoError(t, os.Chdir(tempDir))
	t.Setenv("HOME", tempDir)
	t.Setenv("BLUESKY_HANDLE", "")
	t.Setenv("BSKYSCRAPER_LOG_LEVEL", "")

	configPath := filepath.Join(tempDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Bluesky.Handle = "dave.bsky.social"
	cfg.Search.MaxPages = 9
	require.NoError(t, cfg.Save(configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(configPath, map[string]interface{}{"log-level": "debug"})
	require.NoError(t, err)
	assert.Equal(t, "dave.bsky.social", loaded.Bluesky.Handle)
	assert.Equal(t, 9, loaded.Search.MaxPages)
	assert.Equal(t, "debug", loaded.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tempDir := t.TempDir()
	oldDir, _ := os.Getwd()
	defer os.Chdir(oldDir)
	require.NoError(t, os.Chdir(tempDir))
	t.Setenv("HOME", tempDir)

	configPath := filepath.Join(tempDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("search:\n  limit: 500\n"), 0644))

	_, err := Load(configPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}
