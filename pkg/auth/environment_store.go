package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvHandle      = "BLUESKY_HANDLE"
	EnvAppPassword = "BLUESKY_APP_PASSWORD"
)

// EnvironmentStore exposes BLUESKY_HANDLE / BLUESKY_APP_PASSWORD as a
// read-only account.
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment account. An empty handle matches it, any
// other handle must equal BLUESKY_HANDLE.
func (e *EnvironmentStore) Retrieve(handle string) (*Account, error) {
	envHandle := os.Getenv(EnvHandle)
	password := os.Getenv(EnvAppPassword)
	if envHandle == "" || password == "" {
		return nil, ErrCredentialsNotFound
	}
	if handle != "" && handle != envHandle {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Handle:       envHandle,
		AppPassword:  password,
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

func (e *EnvironmentStore) Delete(handle string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(handle string) bool {
	_, err := e.Retrieve(handle)
	return err == nil
}
