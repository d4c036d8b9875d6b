package merge

import "strings"

const (
	defaultTemporaryBranchPrefixConstant          = "temp_merge_"
	temporaryBranchPrefixConfigurationKeyConstant = "temporary_branch_prefix"
	useAIConfigurationKeyConstant                 = "use_ai"
)

// Configuration captures persisted defaults for the merge commands.
type Configuration struct {
	TemporaryBranchPrefix string `mapstructure:"temporary_branch_prefix"`
	UseAI                 bool   `mapstructure:"use_ai"`
}

// DefaultConfiguration returns the built-in merge defaults.
func DefaultConfiguration() Configuration {
	return Configuration{TemporaryBranchPrefix: defaultTemporaryBranchPrefixConstant}
}

// DefaultConfigurationValues exposes defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	defaults := DefaultConfiguration()
	return map[string]any{
		prefix + "." + temporaryBranchPrefixConfigurationKeyConstant: defaults.TemporaryBranchPrefix,
		prefix + "." + useAIConfigurationKeyConstant:                 defaults.UseAI,
	}
}

func (configuration Configuration) sanitize() Configuration {
	sanitized := configuration
	sanitized.TemporaryBranchPrefix = strings.TrimSpace(configuration.TemporaryBranchPrefix)
	if len(sanitized.TemporaryBranchPrefix) == 0 {
		sanitized.TemporaryBranchPrefix = defaultTemporaryBranchPrefixConstant
	}
	return sanitized
}
