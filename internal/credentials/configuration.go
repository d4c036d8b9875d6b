package credentials

import (
	"strings"

	pathutils "github.com/temirov/mergix/internal/utils/path"
)

const (
	defaultStorePathConstant           = "~/.config/mergix/credentials.yaml"
	defaultLegacyStorePathConstant     = ".env.sh"
	pathConfigurationKeyConstant       = "path"
	legacyPathConfigurationKeyConstant = "legacy_path"
)

// Configuration locates the credential files.
type Configuration struct {
	Path       string `mapstructure:"path"`
	LegacyPath string `mapstructure:"legacy_path"`
}

// DefaultConfiguration returns the default credential file locations.
func DefaultConfiguration() Configuration {
	return Configuration{Path: defaultStorePathConstant, LegacyPath: defaultLegacyStorePathConstant}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + "." + pathConfigurationKeyConstant:       defaults.Path,
		prefix + "." + legacyPathConfigurationKeyConstant: defaults.LegacyPath,
	}
}

// OpenStore expands home-relative paths and constructs the store. A blank path falls back to the default.
func OpenStore(configuration Configuration, homeExpander *pathutils.HomeExpander) (*Store, error) {
	if homeExpander == nil {
		homeExpander = pathutils.NewHomeExpander()
	}

	storePath := strings.TrimSpace(configuration.Path)
	if len(storePath) == 0 {
		storePath = defaultStorePathConstant
	}

	legacyPath := strings.TrimSpace(configuration.LegacyPath)
	if len(legacyPath) > 0 {
		legacyPath = homeExpander.Expand(legacyPath)
	}

	return NewStore(homeExpander.Expand(storePath), legacyPath)
}

// LoadResolved opens the configured store and overlays environment overrides on whatever it holds.
func LoadResolved(configuration Configuration, lookup EnvironmentLookup) (Credentials, error) {
	store, storeError := OpenStore(configuration, nil)
	if storeError != nil {
		return Credentials{}, storeError
	}
	stored, _, loadError := store.Load()
	if loadError != nil {
		return Credentials{}, loadError
	}
	return Resolve(stored, lookup), nil
}
