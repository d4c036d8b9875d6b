// Package credentials stores the Gemini and GitHub API keys in a private YAML file,
// imports the legacy KEY="value" shell file, and applies environment overrides.
package credentials
