package conflicts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	choiceOursValueConstant                = "ours"
	choiceTheirsValueConstant              = "theirs"
	choiceBothValueConstant                = "both"
	choiceCustomValueConstant              = "custom"
	unsupportedChoiceTemplateConstant      = "unsupported resolution choice %q"
	resolverMissingMessageConstant         = "region resolver not configured"
	customChoiceUnsupportedMessageConstant = "custom resolution requires an interactive resolver"
	regionResolutionErrorTemplateConstant  = "unable to resolve conflict %d of %d: %w"
	extractionErrorTemplateConstant        = "unable to extract conflicts: %w"
	spliceErrorTemplateConstant            = "unable to apply resolutions: %w"
)

// Choice enumerates the ways a single region can be resolved.
type Choice string

// Supported resolution choices.
const (
	ChoiceOurs   Choice = Choice(choiceOursValueConstant)
	ChoiceTheirs Choice = Choice(choiceTheirsValueConstant)
	ChoiceBoth   Choice = Choice(choiceBothValueConstant)
	ChoiceCustom Choice = Choice(choiceCustomValueConstant)
)

// ErrResolverNotConfigured indicates ResolveText was called without a resolver.
var ErrResolverNotConfigured = errors.New(resolverMissingMessageConstant)

// ParseChoice converts textual input into a Choice.
func ParseChoice(value string) (Choice, error) {
	normalized := Choice(strings.ToLower(strings.TrimSpace(value)))
	switch normalized {
	case ChoiceOurs, ChoiceTheirs, ChoiceBoth, ChoiceCustom:
		return normalized, nil
	default:
		return "", fmt.Errorf(unsupportedChoiceTemplateConstant, value)
	}
}

// RegionResolver chooses replacement lines for one region. index is zero-based and
// total is the number of regions in the document being resolved.
type RegionResolver interface {
	Resolve(resolutionContext context.Context, index int, total int, region Region) ([]string, error)
}

// RegionResolverFunc adapts a function to RegionResolver.
type RegionResolverFunc func(resolutionContext context.Context, index int, total int, region Region) ([]string, error)

// Resolve invokes the wrapped function.
func (resolverFunc RegionResolverFunc) Resolve(resolutionContext context.Context, index int, total int, region Region) ([]string, error) {
	return resolverFunc(resolutionContext, index, total, region)
}

// ChoiceResolver applies the same non-interactive choice to every region.
type ChoiceResolver struct {
	Choice Choice
}

// Resolve returns the lines selected by the configured choice.
func (resolver ChoiceResolver) Resolve(_ context.Context, _ int, _ int, region Region) ([]string, error) {
	switch resolver.Choice {
	case ChoiceOurs, ChoiceTheirs, ChoiceBoth:
		return region.Lines(resolver.Choice), nil
	case ChoiceCustom:
		return nil, errors.New(customChoiceUnsupportedMessageConstant)
	default:
		return nil, fmt.Errorf(unsupportedChoiceTemplateConstant, resolver.Choice)
	}
}

// ResolveText extracts every region in text, asks resolver for each replacement in
// order, and splices the answers back. It returns the resolved text and the number of
// regions found; text without conflicts is returned unchanged.
func ResolveText(resolutionContext context.Context, text string, resolver RegionResolver) (string, int, error) {
	if resolver == nil {
		return "", 0, ErrResolverNotConfigured
	}

	document := NewDocument(text)
	regions, extractionError := Extract(document.Lines)
	if extractionError != nil {
		return "", 0, fmt.Errorf(extractionErrorTemplateConstant, extractionError)
	}
	if len(regions) == 0 {
		return text, 0, nil
	}

	resolutions := make([]Resolution, 0, len(regions))
	for regionIndex, region := range regions {
		replacement, resolveError := resolver.Resolve(resolutionContext, regionIndex, len(regions), region)
		if resolveError != nil {
			return "", len(regions), fmt.Errorf(regionResolutionErrorTemplateConstant, regionIndex+1, len(regions), resolveError)
		}
		resolutions = append(resolutions, Resolution{Region: region, Lines: replacement})
	}

	resolvedLines, spliceError := Splice(document.Lines, resolutions)
	if spliceError != nil {
		return "", len(regions), fmt.Errorf(spliceErrorTemplateConstant, spliceError)
	}

	return Document{Lines: resolvedLines}.Text(), len(regions), nil
}
