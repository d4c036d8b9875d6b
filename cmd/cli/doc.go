// Package cli constructs the mergix command-line interface, wiring the Cobra
// command hierarchy, the layered configuration loader, and structured logging.
// API clients for Gemini and GitHub are built lazily from stored credentials the
// first time a command needs them.
package cli
