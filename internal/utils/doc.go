// Package utils holds the ambient plumbing shared by every mergix command.
//
// ConfigurationLoader layers embedded defaults, config files, and MERGIX_
// environment variables through Viper. LoggerFactory builds the zap logger.
//
// CommandContextAccessor carries the configuration path and repository path
// from the root command to its subcommands.
package utils
