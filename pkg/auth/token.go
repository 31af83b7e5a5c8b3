package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "catclean"
	keyringUser    = "dataset_token"
	tokenFileName  = "dataset_token"
	tokenFileMode  = 0600
)

// ErrNoToken is returned when no token has been saved.
var ErrNoToken = errors.New("no dataset token saved")

// Store keeps the bearer token used to fetch remote datasets. The OS
// keychain is preferred; the file in Dir is a fallback for systems
// without one.
type Store struct {
	Dir string
}

func (s *Store) filePath() string {
	return filepath.Join(s.Dir, tokenFileName)
}

// Save stores the token in the keychain, or in the fallback file when
// the keychain is unavailable.
func (s *Store) Save(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is required")
	}

	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		slog.Warn("keychain unavailable, falling back to file", "error", err)
		return s.saveFile(token)
	}

	// keychain has it now, drop any legacy file
	os.Remove(s.filePath())
	return nil
}

// Get returns the saved token. A token found only in the fallback file
// is migrated into the keychain when possible.
func (s *Store) Get() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && token != "" {
		return token, nil
	}

	token, err = s.getFile()
	if err != nil {
		return "", err
	}

	if migrateErr := keyring.Set(keyringService, keyringUser, token); migrateErr == nil {
		slog.Info("migrated token from file to OS keychain")
		os.Remove(s.filePath())
	}

	return token, nil
}

// Delete removes the token from both the keychain and the fallback file.
func (s *Store) Delete() error {
	if err := keyring.Delete(keyringService, keyringUser); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		slog.Debug("keychain delete failed", "error", err)
	}
	if err := os.Remove(s.filePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting token file: %w", err)
	}
	return nil
}

func (s *Store) saveFile(token string) error {
	if s.Dir == "" {
		return errors.New("token directory not set")
	}
	if err := os.WriteFile(s.filePath(), []byte(token), tokenFileMode); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

func (s *Store) getFile() (string, error) {
	if s.Dir == "" {
		return "", ErrNoToken
	}
	b, err := os.ReadFile(s.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("reading token file %s: %w", s.filePath(), err)
	}
	token := strings.TrimSpace(string(b))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
