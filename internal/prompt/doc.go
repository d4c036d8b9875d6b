// Package prompt implements line-oriented terminal interaction: confirmations, hidden secret
// entry, numbered selections, and the per-region conflict resolution menu.
package prompt
