package credentials_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergix/internal/credentials"
)

const (
	storeNestedPathConstant   = "nested/config/credentials.yaml"
	legacyFileNameConstant    = ".env.sh"
	trickyGeminiKeyConstant   = `AIza"quoted"=tail`
	trickyGitHubKeyConstant   = `ghp_a=b="c"`
	legacyFileContentConstant = "# saved keys\nexport GEMINI_API_KEY=\"gem=ini\"\nGITHUB_API_KEY='gh-token'\nUNRELATED=value\nno assignment here\n"
	plainGeminiKeyConstant    = "gemini-secret-value"
	plainGitHubKeyConstant    = "github-secret-value"
)

func TestStoreRoundTripPreservesSpecialCharacters(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), storeNestedPathConstant)
	store, storeError := credentials.NewStore(storePath, "")
	require.NoError(testInstance, storeError)

	_, existsBeforeSave, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.False(testInstance, existsBeforeSave)

	saved := credentials.Credentials{GeminiAPIKey: trickyGeminiKeyConstant, GitHubAPIKey: trickyGitHubKeyConstant}
	require.NoError(testInstance, store.Save(saved))

	loaded, exists, reloadError := store.Load()
	require.NoError(testInstance, reloadError)
	require.True(testInstance, exists)
	require.Equal(testInstance, saved, loaded)

	if runtime.GOOS != "windows" {
		fileInfo, statError := os.Stat(storePath)
		require.NoError(testInstance, statError)
		require.Equal(testInstance, os.FileMode(0o600), fileInfo.Mode().Perm())
	}

	directoryEntries, readDirectoryError := os.ReadDir(filepath.Dir(storePath))
	require.NoError(testInstance, readDirectoryError)
	require.Len(testInstance, directoryEntries, 1)
}

func TestStoreSaveOverwritesExistingFile(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), "credentials.yaml")
	store, storeError := credentials.NewStore(storePath, "")
	require.NoError(testInstance, storeError)

	require.NoError(testInstance, store.Save(credentials.Credentials{GeminiAPIKey: "old", GitHubAPIKey: "old"}))
	require.NoError(testInstance, store.Save(credentials.Credentials{GeminiAPIKey: plainGeminiKeyConstant, GitHubAPIKey: plainGitHubKeyConstant}))

	loaded, _, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.Equal(testInstance, plainGeminiKeyConstant, loaded.GeminiAPIKey)
	require.Equal(testInstance, plainGitHubKeyConstant, loaded.GitHubAPIKey)
}

func TestStoreLoadsLegacyFileWhenYAMLMissing(testInstance *testing.T) {
	temporaryDirectory := testInstance.TempDir()
	legacyPath := filepath.Join(temporaryDirectory, legacyFileNameConstant)
	require.NoError(testInstance, os.WriteFile(legacyPath, []byte(legacyFileContentConstant), 0o600))

	storePath := filepath.Join(temporaryDirectory, "credentials.yaml")
	store, storeError := credentials.NewStore(storePath, legacyPath)
	require.NoError(testInstance, storeError)

	loaded, exists, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.True(testInstance, exists)
	require.Equal(testInstance, credentials.Credentials{GeminiAPIKey: "gem=ini", GitHubAPIKey: "gh-token"}, loaded)

	require.NoError(testInstance, store.Save(credentials.Credentials{GeminiAPIKey: plainGeminiKeyConstant, GitHubAPIKey: plainGitHubKeyConstant}))
	preferred, _, preferredError := store.Load()
	require.NoError(testInstance, preferredError)
	require.Equal(testInstance, plainGeminiKeyConstant, preferred.GeminiAPIKey)

	removed, removeError := store.Remove()
	require.NoError(testInstance, removeError)
	require.True(testInstance, removed)
	_, legacyStatError := os.Stat(legacyPath)
	require.NoError(testInstance, legacyStatError)
}

func TestStoreRemove(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), "credentials.yaml")
	store, storeError := credentials.NewStore(storePath, "")
	require.NoError(testInstance, storeError)

	removed, removeError := store.Remove()
	require.NoError(testInstance, removeError)
	require.False(testInstance, removed)

	require.NoError(testInstance, store.Save(credentials.Credentials{GeminiAPIKey: "a", GitHubAPIKey: "b"}))
	removed, removeError = store.Remove()
	require.NoError(testInstance, removeError)
	require.True(testInstance, removed)

	_, exists, loadError := store.Load()
	require.NoError(testInstance, loadError)
	require.False(testInstance, exists)
}

func TestStoreRejectsMalformedYAML(testInstance *testing.T) {
	storePath := filepath.Join(testInstance.TempDir(), "credentials.yaml")
	require.NoError(testInstance, os.WriteFile(storePath, []byte("gemini_api_key: [unterminated"), 0o600))

	store, storeError := credentials.NewStore(storePath, "")
	require.NoError(testInstance, storeError)

	_, _, loadError := store.Load()
	require.Error(testInstance, loadError)
}

func TestNewStoreRequiresPath(testInstance *testing.T) {
	_, storeError := credentials.NewStore("   ", "legacy")
	require.ErrorIs(testInstance, storeError, credentials.ErrStorePathRequired)
}
