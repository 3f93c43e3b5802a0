package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

// Account is a Bluesky handle with the app password used to open sessions
type Account struct {
	Handle       string    `json:"handle"`
	AppPassword  string    `json:"app_password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is a backend that can hold accounts
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(handle string) (*Account, error)
	List() ([]*Account, error)
	Delete(handle string) error
	Exists(handle string) bool
}

// Manager reads and writes accounts across a chain of stores.
// Writes go to the first store that accepts them.
type Manager struct {
	stores []CredentialStore
}

// NewManager wires the system keychain when available, then the encrypted
// file in the config directory, then the environment.
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores builds a Manager over an explicit chain
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves account in the first store that accepts it
func (m *Manager) Store(account *Account) error {
	if account == nil || account.Handle == "" {
		return errors.New("handle is required")
	}
	if account.AppPassword == "" {
		return errors.New("app password is required")
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns the account for handle from the first store holding it
func (m *Manager) Retrieve(handle string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(handle); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, handle)
}

// RetrieveDefault prefers credentials from the environment and otherwise
// returns the most recently saved account.
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, store := range m.stores {
		if envStore, ok := store.(*EnvironmentStore); ok {
			if account, err := envStore.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	accounts, err := m.List()
	if err == nil && len(accounts) > 0 {
		return accounts[0], nil
	}
	return nil, ErrCredentialsNotFound
}

// List returns every account known to any store, newest first.
// A handle present in several stores is reported once.
func (m *Manager) List() ([]*Account, error) {
	byHandle := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := byHandle[account.Handle]; !ok || account.LastModified.After(existing.LastModified) {
				byHandle[account.Handle] = account
			}
		}
	}

	result := make([]*Account, 0, len(byHandle))
	for _, account := range byHandle {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].Handle < result[j].Handle
		}
		return result[i].LastModified.After(result[j].LastModified)
	})
	return result, nil
}

// Delete removes handle from every store that has it
func (m *Manager) Delete(handle string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(handle); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, handle)
}

// DeleteAll removes every stored account
func (m *Manager) DeleteAll() error {
	accounts, err := m.List()
	if err != nil {
		return err
	}
	for _, account := range accounts {
		_ = m.Delete(account.Handle)
	}
	return nil
}

func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "bskyscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "bskyscraper")
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "bskyscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "bskyscraper")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// SanitizeAccount returns a copy safe to print
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	return &Account{
		Handle:       account.Handle,
		AppPassword:  MaskSecret(account.AppPassword),
		LastModified: account.LastModified,
	}
}

// MaskSecret keeps the first and last four characters of long secrets
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)

// Resolve picks the credentials for a run. A named account must exist in a
// store; otherwise explicit handle and password win, then RetrieveDefault.
func (m *Manager) Resolve(accountName, handle, appPassword string) (*Account, error) {
	if accountName != "" {
		return m.Retrieve(accountName)
	}
	if handle != "" && appPassword != "" {
		return &Account{Handle: handle, AppPassword: appPassword}, nil
	}
	if handle != "" {
		if account, err := m.Retrieve(handle); err == nil {
			return account, nil
		}
	}
	return m.RetrieveDefault()
}
