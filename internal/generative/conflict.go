package generative

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/mergix/internal/conflicts"
)

const (
	conflictPromptTemplateConstant = `I have a merge conflict in the Git file %s. Please help me resolve it by analyzing the conflict markers and providing a clean, resolved version.

Here's the file with conflicts:

` + "```" + `
%s
` + "```" + `

Please provide ONLY the resolved content without any explanations or conflict markers (<<<<<<< HEAD, =======, >>>>>>> branch).
Make sure to preserve the functionality from both versions when possible.
`
	codeFenceConstant                       = "```"
	newlineConstant                         = "\n"
	unresolvedMarkersMessageConstant        = "generated resolution still contains conflict markers"
	generatorNotConfiguredMessageConstant   = "text generator not configured"
	noConflictRegionsMessageConstant        = "file has no conflict regions to resolve"
	conflictGenerationErrorTemplateConstant = "unable to resolve conflicts in %s: %w"
)

var (
	// ErrUnresolvedMarkers indicates that a generated resolution still contains conflict markers.
	ErrUnresolvedMarkers = errors.New(unresolvedMarkersMessageConstant)
	// ErrGeneratorNotConfigured indicates that a ConflictResolver has no TextGenerator.
	ErrGeneratorNotConfigured = errors.New(generatorNotConfiguredMessageConstant)
	// ErrNoConflictRegions indicates a file without conflict markers; the model is not asked.
	ErrNoConflictRegions = errors.New(noConflictRegionsMessageConstant)
)

// BuildConflictPrompt embeds the conflicted file in the resolution instructions.
func BuildConflictPrompt(filePath string, content string) string {
	return fmt.Sprintf(conflictPromptTemplateConstant, filePath, content)
}

// CleanResponse strips a surrounding Markdown code fence and rejects text that still carries
// conflict markers. Beyond that the generated text is trusted as-is.
func CleanResponse(response string) (string, error) {
	cleaned := strings.TrimSpace(response)
	if strings.HasPrefix(cleaned, codeFenceConstant) {
		if firstLineEnd := strings.Index(cleaned, newlineConstant); firstLineEnd >= 0 {
			cleaned = cleaned[firstLineEnd+1:]
		} else {
			cleaned = ""
		}
		cleaned = strings.TrimSuffix(strings.TrimRight(cleaned, " \t\r\n"), codeFenceConstant)
		cleaned = strings.TrimRight(cleaned, "\r\n")
	}

	if len(strings.TrimSpace(cleaned)) == 0 {
		return "", ErrEmptyResponse
	}
	if conflicts.HasMarkers(cleaned) {
		return "", ErrUnresolvedMarkers
	}
	return cleaned, nil
}

// ConflictResolver asks a TextGenerator to rewrite an entire conflicted file.
type ConflictResolver struct {
	generator TextGenerator
}

// NewConflictResolver wraps the generator.
func NewConflictResolver(generator TextGenerator) *ConflictResolver {
	return &ConflictResolver{generator: generator}
}

// ResolveFile returns the generated resolution for the file, keeping the original trailing newline.
// Files that do not parse into at least one conflict region are rejected before any request.
func (resolver *ConflictResolver) ResolveFile(executionContext context.Context, filePath string, content string) (string, error) {
	if resolver == nil || resolver.generator == nil {
		return "", ErrGeneratorNotConfigured
	}

	regions, extractError := conflicts.ExtractText(content)
	if extractError != nil {
		return "", fmt.Errorf(conflictGenerationErrorTemplateConstant, filePath, extractError)
	}
	if len(regions) == 0 {
		return "", fmt.Errorf(conflictGenerationErrorTemplateConstant, filePath, ErrNoConflictRegions)
	}

	response, generationError := resolver.generator.Generate(executionContext, BuildConflictPrompt(filePath, content))
	if generationError != nil {
		return "", fmt.Errorf(conflictGenerationErrorTemplateConstant, filePath, generationError)
	}

	resolved, cleanError := CleanResponse(response)
	if cleanError != nil {
		return "", fmt.Errorf(conflictGenerationErrorTemplateConstant, filePath, cleanError)
	}

	if strings.HasSuffix(content, newlineConstant) && !strings.HasSuffix(resolved, newlineConstant) {
		resolved += newlineConstant
	}
	return resolved, nil
}
