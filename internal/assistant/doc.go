// Package assistant exposes the GitHub repository queries and the free-form Gemini question
// as cobra commands.
package assistant
