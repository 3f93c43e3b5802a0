package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/zalando/go-keyring"
)

const (
	keyringService  = "bskyscraper"
	keyringPrefix   = "bluesky_"
	keyringIndexKey = "accounts"
)

// KeyringStore keeps accounts in the system keychain. The keychain cannot
// enumerate entries, so the stored handles are tracked under an index key.
type KeyringStore struct{}

// NewKeyringStore checks the keychain and fails when it is not usable
func NewKeyringStore() (*KeyringStore, error) {
	testKey := "test_availability"
	if err := keyring.Set(keyringService, testKey, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Handle == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+account.Handle, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	handles := k.index()
	for _, h := range handles {
		if h == account.Handle {
			return nil
		}
	}
	return k.saveIndex(append(handles, account.Handle))
}

func (k *KeyringStore) Retrieve(handle string) (*Account, error) {
	if handle == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+handle)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

func (k *KeyringStore) List() ([]*Account, error) {
	var accounts []*Account
	for _, handle := range k.index() {
		account, err := k.Retrieve(handle)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (k *KeyringStore) Delete(handle string) error {
	if handle == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+handle); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	handles := k.index()
	kept := handles[:0]
	for _, h := range handles {
		if h != handle {
			kept = append(kept, h)
		}
	}
	return k.saveIndex(kept)
}

func (k *KeyringStore) Exists(handle string) bool {
	if handle == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+handle)
	return err == nil
}

func (k *KeyringStore) index() []string {
	data, err := keyring.Get(keyringService, keyringIndexKey)
	if err != nil {
		return nil
	}
	var handles []string
	if err := json.Unmarshal([]byte(data), &handles); err != nil {
		return nil
	}
	return handles
}

func (k *KeyringStore) saveIndex(handles []string) error {
	if len(handles) == 0 {
		err := keyring.Delete(keyringService, keyringIndexKey)
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("failed to update keyring index: %w", err)
		}
		return nil
	}

	sort.Strings(handles)
	data, err := json.Marshal(handles)
	if err != nil {
		return fmt.Errorf("failed to marshal keyring index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndexKey, string(data)); err != nil {
		return fmt.Errorf("failed to update keyring index: %w", err)
	}
	return nil
}
