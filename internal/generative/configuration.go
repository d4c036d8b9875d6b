package generative

import (
	"strings"
	"time"
)

const (
	defaultModelConstant            = "gemini-2.5-flash"
	defaultTimeoutConstant          = 90 * time.Second
	modelConfigurationKeyConstant   = "model"
	timeoutConfigurationKeyConstant = "timeout"
	baseURLConfigurationKeyConstant = "base_url"
)

// Configuration describes how the Gemini client is built.
type Configuration struct {
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	BaseURL string        `mapstructure:"base_url"`
}

// DefaultConfiguration returns the default model and request timeout.
func DefaultConfiguration() Configuration {
	return Configuration{Model: defaultModelConstant, Timeout: defaultTimeoutConstant}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + "." + modelConfigurationKeyConstant:   defaults.Model,
		prefix + "." + timeoutConfigurationKeyConstant: defaults.Timeout.String(),
		prefix + "." + baseURLConfigurationKeyConstant: defaults.BaseURL,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.Model = strings.TrimSpace(configuration.Model)
	sanitized.BaseURL = strings.TrimSpace(configuration.BaseURL)
	if sanitized.Timeout < 0 {
		sanitized.Timeout = 0
	}
	return sanitized
}
