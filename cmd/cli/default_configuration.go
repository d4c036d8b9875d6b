package cli

import (
	"bytes"
	_ "embed"
)

// defaultConfigurationDocument holds the lowest-priority settings layer: log
// options, credential file locations, and the merge, Gemini, and GitHub tool sections.
//
//go:embed default_config.yaml
var defaultConfigurationDocument []byte

// EmbeddedDefaultConfiguration returns a copy of the built-in YAML settings and its format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(defaultConfigurationDocument), configurationTypeConstant
}
