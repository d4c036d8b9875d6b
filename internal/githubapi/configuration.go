package githubapi

import (
	"strings"
	"time"
)

const (
	defaultTimeoutConstant                  = 30 * time.Second
	defaultRepositoryLimitConstant          = 30
	baseURLConfigurationKeyConstant         = "base_url"
	timeoutConfigurationKeyConstant         = "timeout"
	repositoryLimitConfigurationKeyConstant = "repository_limit"
)

// Configuration describes how the REST client reaches GitHub.
type Configuration struct {
	BaseURL         string        `mapstructure:"base_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RepositoryLimit int           `mapstructure:"repository_limit"`
}

// DefaultConfiguration targets api.github.com.
func DefaultConfiguration() Configuration {
	return Configuration{Timeout: defaultTimeoutConstant, RepositoryLimit: defaultRepositoryLimitConstant}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + "." + baseURLConfigurationKeyConstant:         defaults.BaseURL,
		prefix + "." + timeoutConfigurationKeyConstant:         defaults.Timeout.String(),
		prefix + "." + repositoryLimitConfigurationKeyConstant: defaults.RepositoryLimit,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	if sanitized.RepositoryLimit <= 0 {
		sanitized.RepositoryLimit = defaultRepositoryLimitConstant
	}
	return sanitized
}

// EffectiveRepositoryLimit returns the configured listing limit or the default.
func (configuration Configuration) EffectiveRepositoryLimit() int {
	return configuration.sanitize().RepositoryLimit
}
