package merge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/conflicts"
)

const (
	aiAttemptMessageTemplateConstant      = "Using AI to resolve conflicts in %s..."
	aiSuccessMessageTemplateConstant      = "AI successfully resolved conflicts in %s"
	aiFallbackMessageTemplateConstant     = "AI failed to resolve conflicts in %s. Falling back to manual resolution."
	aiUnavailableMessageConstant          = "Gemini API key not provided. Cannot use AI to resolve conflicts."
	noMarkersMessageTemplateConstant      = "No conflict markers found in %s"
	manualResolutionErrorTemplateConstant = "unable to resolve conflicts in %s: %w"
	customStrategyMessageConstant         = "custom resolution requires interactive input"
	aiFallbackLogMessageConstant          = "ai conflict resolution failed; falling back to manual resolution"
	aiSuccessLogMessageConstant           = "ai conflict resolution succeeded"
	manualResolutionLogMessageConstant    = "conflict regions resolved"
	logFieldFilePathConstant              = "file"
	logFieldRegionCountConstant           = "regions"
	logFieldStrategyConstant              = "strategy"
	interactiveStrategyLabelConstant      = "interactive"
)

// ErrCustomStrategy indicates that the custom choice was requested as a non-interactive strategy.
var ErrCustomStrategy = errors.New(customStrategyMessageConstant)

// ResolutionOptions controls how one conflicted file is resolved.
type ResolutionOptions struct {
	UseAI    bool
	Strategy conflicts.Choice
}

// RegionResolverFactory builds the interactive region resolver for a file.
type RegionResolverFactory func(filePath string) conflicts.RegionResolver

// FileResolver resolves a conflicted file with AI first when requested, then region by region.
type FileResolver struct {
	logger         *zap.Logger
	aiResolver     AIConflictResolver
	manualResolver RegionResolverFactory
	output         io.Writer
}

// NewFileResolver constructs a FileResolver. aiResolver may be nil when no API key is available.
func NewFileResolver(logger *zap.Logger, aiResolver AIConflictResolver, manualResolver RegionResolverFactory, output io.Writer) *FileResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if output == nil {
		output = io.Discard
	}
	return &FileResolver{logger: logger, aiResolver: aiResolver, manualResolver: manualResolver, output: output}
}

// ResolveFile returns resolved content. AI failures always fall back to region resolution.
func (resolver *FileResolver) ResolveFile(executionContext context.Context, filePath string, content string, options ResolutionOptions) (string, error) {
	if options.UseAI {
		if resolver.aiResolver == nil {
			resolver.printf(aiUnavailableMessageConstant)
		} else {
			resolver.printf(aiAttemptMessageTemplateConstant, filePath)
			resolved, aiError := resolver.aiResolver.ResolveFile(executionContext, filePath, content)
			if aiError == nil {
				resolver.logger.Info(aiSuccessLogMessageConstant, zap.String(logFieldFilePathConstant, filePath))
				resolver.printf(aiSuccessMessageTemplateConstant, filePath)
				return resolved, nil
			}
			resolver.logger.Warn(aiFallbackLogMessageConstant, zap.String(logFieldFilePathConstant, filePath), zap.Error(aiError))
			resolver.printf(aiFallbackMessageTemplateConstant, filePath)
		}
	}

	regionResolver, strategyLabel, selectionError := resolver.regionResolver(filePath, options.Strategy)
	if selectionError != nil {
		return "", selectionError
	}

	resolved, regionCount, resolveError := conflicts.ResolveText(executionContext, content, regionResolver)
	if resolveError != nil {
		return "", fmt.Errorf(manualResolutionErrorTemplateConstant, filePath, resolveError)
	}
	if regionCount == 0 {
		resolver.printf(noMarkersMessageTemplateConstant, filePath)
		return content, nil
	}

	resolver.logger.Debug(manualResolutionLogMessageConstant,
		zap.String(logFieldFilePathConstant, filePath),
		zap.Int(logFieldRegionCountConstant, regionCount),
		zap.String(logFieldStrategyConstant, strategyLabel),
	)
	return resolved, nil
}

func (resolver *FileResolver) regionResolver(filePath string, strategy conflicts.Choice) (conflicts.RegionResolver, string, error) {
	switch strategy {
	case conflicts.ChoiceOurs, conflicts.ChoiceTheirs, conflicts.ChoiceBoth:
		return conflicts.ChoiceResolver{Choice: strategy}, string(strategy), nil
	case conflicts.ChoiceCustom:
		return nil, "", ErrCustomStrategy
	}
	if resolver.manualResolver == nil {
		return nil, "", conflicts.ErrResolverNotConfigured
	}
	return resolver.manualResolver(filePath), interactiveStrategyLabelConstant, nil
}

func (resolver *FileResolver) printf(format string, arguments ...any) {
	_, _ = fmt.Fprintf(resolver.output, format+"\n", arguments...)
}
