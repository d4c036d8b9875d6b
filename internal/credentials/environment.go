package credentials

import (
	"os"
	"strings"
)

// Environment variable names consulted for credential overrides.
const (
	EnvGeminiAPIKey   = "GEMINI_API_KEY"
	EnvGoogleAPIKey   = "GOOGLE_API_KEY"
	EnvGitHubCLIToken = "GH_TOKEN"
	EnvGitHubToken    = "GITHUB_TOKEN"
	EnvGitHubAPIKey   = "GITHUB_API_KEY"
)

var geminiKeyPreference = []string{
	EnvGeminiAPIKey,
	EnvGoogleAPIKey,
}

var gitHubKeyPreference = []string{
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIKey,
}

// EnvironmentLookup retrieves an environment variable.
type EnvironmentLookup func(key string) (string, bool)

// Resolve overlays the first non-empty environment value for each key onto the stored credentials.
// A nil lookup reads the process environment.
func Resolve(stored Credentials, lookup EnvironmentLookup) Credentials {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	resolved := stored
	if value, found := firstNonEmpty(lookup, geminiKeyPreference); found {
		resolved.GeminiAPIKey = value
	}
	if value, found := firstNonEmpty(lookup, gitHubKeyPreference); found {
		resolved.GitHubAPIKey = value
	}
	return resolved
}

// MapLookup adapts a map to an EnvironmentLookup.
func MapLookup(environment map[string]string) EnvironmentLookup {
	return func(key string) (string, bool) {
		value, exists := environment[key]
		return value, exists
	}
}

func firstNonEmpty(lookup EnvironmentLookup, keys []string) (string, bool) {
	for _, key := range keys {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) > 0 {
			return value, true
		}
	}
	return "", false
}
