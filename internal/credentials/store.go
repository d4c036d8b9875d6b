package credentials

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	storePathRequiredMessageConstant        = "credentials store path must not be empty"
	credentialsReadErrorTemplateConstant    = "unable to read credentials file %s: %w"
	credentialsParseErrorTemplateConstant   = "unable to parse credentials file %s: %w"
	credentialsWriteErrorTemplateConstant   = "unable to write credentials file %s: %w"
	credentialsRemoveErrorTemplateConstant  = "unable to remove credentials file %s: %w"
	credentialsDirectoryPermissionsConstant = 0o700
	credentialsFilePermissionsConstant      = 0o600
	temporaryFilePatternConstant            = ".credentials-*.tmp"
	legacyAssignmentSeparatorConstant       = "="
	legacyCommentPrefixConstant             = "#"
	legacyExportPrefixConstant              = "export "
	doubleQuoteConstant                     = `"`
	singleQuoteConstant                     = "'"
)

// ErrStorePathRequired indicates that a Store was created without a file path.
var ErrStorePathRequired = errors.New(storePathRequiredMessageConstant)

// Store persists credentials as a YAML file readable only by the owner. A legacy
// KEY="value" shell file is consulted read-only when the YAML file does not exist yet.
type Store struct {
	path       string
	legacyPath string
}

// NewStore constructs a store for the YAML path and an optional legacy path.
func NewStore(path string, legacyPath string) (*Store, error) {
	trimmedPath := strings.TrimSpace(path)
	if len(trimmedPath) == 0 {
		return nil, ErrStorePathRequired
	}
	return &Store{path: trimmedPath, legacyPath: strings.TrimSpace(legacyPath)}, nil
}

// Path returns the YAML file location.
func (store *Store) Path() string {
	return store.path
}

// Load reads stored credentials. The boolean reports whether any credentials file existed.
func (store *Store) Load() (Credentials, bool, error) {
	contentBytes, readError := os.ReadFile(store.path)
	if readError == nil {
		var credentials Credentials
		if unmarshalError := yaml.Unmarshal(contentBytes, &credentials); unmarshalError != nil {
			return Credentials{}, false, fmt.Errorf(credentialsParseErrorTemplateConstant, store.path, unmarshalError)
		}
		return credentials, true, nil
	}
	if !errors.Is(readError, fs.ErrNotExist) {
		return Credentials{}, false, fmt.Errorf(credentialsReadErrorTemplateConstant, store.path, readError)
	}

	if len(store.legacyPath) == 0 {
		return Credentials{}, false, nil
	}

	legacyBytes, legacyReadError := os.ReadFile(store.legacyPath)
	if legacyReadError != nil {
		if errors.Is(legacyReadError, fs.ErrNotExist) {
			return Credentials{}, false, nil
		}
		return Credentials{}, false, fmt.Errorf(credentialsReadErrorTemplateConstant, store.legacyPath, legacyReadError)
	}
	return parseLegacyAssignments(legacyBytes), true, nil
}

// Save writes the credentials atomically, creating parent directories as needed.
func (store *Store) Save(credentials Credentials) error {
	contentBytes, marshalError := yaml.Marshal(credentials)
	if marshalError != nil {
		return fmt.Errorf(credentialsWriteErrorTemplateConstant, store.path, marshalError)
	}

	directory := filepath.Dir(store.path)
	if mkdirError := os.MkdirAll(directory, credentialsDirectoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(credentialsWriteErrorTemplateConstant, store.path, mkdirError)
	}

	temporaryFile, createError := os.CreateTemp(directory, temporaryFilePatternConstant)
	if createError != nil {
		return fmt.Errorf(credentialsWriteErrorTemplateConstant, store.path, createError)
	}
	temporaryPath := temporaryFile.Name()

	writeError := writeAndClose(temporaryFile, contentBytes)
	if writeError == nil {
		writeError = os.Rename(temporaryPath, store.path)
	}
	if writeError != nil {
		_ = os.Remove(temporaryPath)
		return fmt.Errorf(credentialsWriteErrorTemplateConstant, store.path, writeError)
	}
	return nil
}

// Remove deletes the YAML file and reports whether it existed. Legacy files are never deleted.
func (store *Store) Remove() (bool, error) {
	removeError := os.Remove(store.path)
	if removeError == nil {
		return true, nil
	}
	if errors.Is(removeError, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(credentialsRemoveErrorTemplateConstant, store.path, removeError)
}

func writeAndClose(file *os.File, contentBytes []byte) error {
	if chmodError := file.Chmod(credentialsFilePermissionsConstant); chmodError != nil {
		_ = file.Close()
		return chmodError
	}
	if _, writeError := file.Write(contentBytes); writeError != nil {
		_ = file.Close()
		return writeError
	}
	if syncError := file.Sync(); syncError != nil {
		_ = file.Close()
		return syncError
	}
	return file.Close()
}

// parseLegacyAssignments splits each line on the first '=' and strips one pair of surrounding quotes.
func parseLegacyAssignments(contentBytes []byte) Credentials {
	var credentials Credentials
	scanner := bufio.NewScanner(bytes.NewReader(contentBytes))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, legacyCommentPrefixConstant) {
			continue
		}
		line = strings.TrimPrefix(line, legacyExportPrefixConstant)

		key, value, found := strings.Cut(line, legacyAssignmentSeparatorConstant)
		if !found {
			continue
		}
		value = unquote(strings.TrimSpace(value))

		switch strings.TrimSpace(key) {
		case EnvGeminiAPIKey:
			credentials.GeminiAPIKey = value
		case EnvGitHubAPIKey:
			credentials.GitHubAPIKey = value
		}
	}
	return credentials
}

func unquote(value string) string {
	for _, quote := range []string{doubleQuoteConstant, singleQuoteConstant} {
		if len(value) >= 2 && strings.HasPrefix(value, quote) && strings.HasSuffix(value, quote) {
			return value[1 : len(value)-1]
		}
	}
	return value
}
