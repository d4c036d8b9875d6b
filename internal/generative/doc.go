// Package generative talks to the Gemini text-generation API and turns its answers into
// conflict-free file contents.
package generative
