package secrets

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"sealaddr.dev/sealaddr/seal"
)

// Store is a simple filesystem keystore for pairwise master secrets, one
// secret per named peer.
//
// Secrets are stored as hex in 0600 files. Nothing here is part of the record
// format; any external secret management can replace it.
type Store struct {
	Directory string
}

// DefaultDirectory returns ~/.sealaddr/secrets.
func DefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".sealaddr", "secrets"), nil
}

// Open returns a Store rooted at directory, falling back to DefaultDirectory
// when directory is empty.
func Open(directory string) (*Store, error) {
	if directory == "" {
		var err error
		directory, err = DefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &Store{Directory: directory}, nil
}

// CheckName validates a secret name used as a path component.
func CheckName(name string) error {
	if name == "" {
		return errors.New("secret name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in secret name", char)
	}
	return nil
}

// ParseSecretHex decodes a hex master secret, accepting an optional 0x prefix.
func ParseSecretHex(secretHex string) (seal.MasterSecret, error) {
	secretHex = strings.TrimSpace(secretHex)
	secretHex = strings.TrimPrefix(secretHex, "0x")
	data, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, err
	}
	if len(data) < seal.MinMasterSecretLen {
		return nil, fmt.Errorf("master secret must be at least %d bytes, got %d", seal.MinMasterSecretLen, len(data))
	}
	return seal.MasterSecret(data), nil
}

func (s *Store) secretPath(name string) string {
	return filepath.Join(s.Directory, name, "secret.key")
}

// Put stores the master secret shared with the named peer.
func (s *Store) Put(name string, secret seal.MasterSecret, overwrite bool) (string, error) {
	if err := CheckName(name); err != nil {
		return "", err
	}
	if len(secret) < seal.MinMasterSecretLen {
		return "", fmt.Errorf("master secret must be at least %d bytes", seal.MinMasterSecretLen)
	}
	path := s.secretPath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := file.WriteString(hex.EncodeToString(secret) + "\n"); err != nil {
		file.Close()
		return "", err
	}
	return path, file.Close()
}

// Get loads the master secret shared with the named peer.
func (s *Store) Get(name string) (seal.MasterSecret, error) {
	if err := CheckName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.secretPath(name))
	if err != nil {
		return nil, err
	}
	return ParseSecretHex(strings.TrimSpace(string(data)))
}

// List returns the stored secret names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
