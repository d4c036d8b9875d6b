package credentials

import "strings"

const (
	maskVisibleCharactersConstant = 4
	maskFillerConstant            = "****"
	notSetPlaceholderConstant     = "(not set)"
)

// Credentials holds the API keys used for the text-generation and repository-hosting services.
type Credentials struct {
	GeminiAPIKey string `yaml:"gemini_api_key"`
	GitHubAPIKey string `yaml:"github_api_key"`
}

// Complete reports whether both keys are present.
func (credentials Credentials) Complete() bool {
	return len(strings.TrimSpace(credentials.GeminiAPIKey)) > 0 && len(strings.TrimSpace(credentials.GitHubAPIKey)) > 0
}

// Empty reports whether neither key is present.
func (credentials Credentials) Empty() bool {
	return len(strings.TrimSpace(credentials.GeminiAPIKey)) == 0 && len(strings.TrimSpace(credentials.GitHubAPIKey)) == 0
}

// Mask hides all but the leading and trailing characters of a secret.
func Mask(secret string) string {
	if len(secret) == 0 {
		return notSetPlaceholderConstant
	}
	if len(secret) <= maskVisibleCharactersConstant*2 {
		return maskFillerConstant
	}
	return secret[:maskVisibleCharactersConstant] + maskFillerConstant + secret[len(secret)-maskVisibleCharactersConstant:]
}
