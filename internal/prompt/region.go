package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/mergix/internal/conflicts"
)

const (
	conflictHeaderTemplateConstant      = "Conflict %d of %d in %s (lines %d-%d):"
	oursSectionTemplateConstant         = "OUR version (%s):"
	baseSectionTitleConstant            = "BASE version (common ancestor):"
	theirsSectionTemplateConstant       = "THEIR version (%s):"
	defaultOursLabelConstant            = "current branch"
	defaultTheirsLabelConstant          = "branch being merged"
	emptySectionPlaceholderConstant     = "(empty)"
	choiceMenuConstant                  = "Choose resolution:\n1. Keep our version\n2. Keep their version\n3. Keep both versions\n4. Enter custom resolution\n"
	choicePromptConstant                = "Choice (1/2/3/4): "
	customInstructionsTemplateConstant  = "Enter your custom resolution (end with a line containing only '%s'):"
	invalidChoiceMessageConstant        = "Invalid choice. Keeping both versions."
	customResolutionTerminatorConstant  = "END"
	oursMenuOptionConstant              = "1"
	theirsMenuOptionConstant            = "2"
	bothMenuOptionConstant              = "3"
	customMenuOptionConstant            = "4"
	choiceReadErrorTemplateConstant     = "unable to read resolution choice: %w"
	customReadErrorTemplateConstant     = "unable to read custom resolution: %w"
	consoleNotConfiguredMessageConstant = "region prompter console not configured"
	unknownFilePathPlaceholderConstant  = "working tree file"
)

// ErrConsoleNotConfigured indicates that a RegionPrompter was used without a console.
var ErrConsoleNotConfigured = errors.New(consoleNotConfiguredMessageConstant)

var menuChoices = map[string]conflicts.Choice{
	oursMenuOptionConstant:   conflicts.ChoiceOurs,
	theirsMenuOptionConstant: conflicts.ChoiceTheirs,
	bothMenuOptionConstant:   conflicts.ChoiceBoth,
	customMenuOptionConstant: conflicts.ChoiceCustom,
}

// RegionPrompter shows each conflict region of one file and asks the operator how to resolve it.
type RegionPrompter struct {
	console  *Console
	filePath string
}

// NewRegionPrompter binds a prompter to the console and the file being resolved.
func NewRegionPrompter(console *Console, filePath string) *RegionPrompter {
	return &RegionPrompter{console: console, filePath: filePath}
}

// Resolve implements conflicts.RegionResolver. Unrecognized menu input keeps both sides.
func (prompter *RegionPrompter) Resolve(executionContext context.Context, index int, total int, region conflicts.Region) ([]string, error) {
	if prompter == nil || prompter.console == nil {
		return nil, ErrConsoleNotConfigured
	}
	if executionContext != nil {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
	}

	if displayError := prompter.display(index, total, region); displayError != nil {
		return nil, displayError
	}

	response, readError := prompter.console.ReadLine(choicePromptConstant)
	if readError != nil {
		return nil, fmt.Errorf(choiceReadErrorTemplateConstant, readError)
	}

	choice, recognized := menuChoices[strings.TrimSpace(response)]
	if !recognized {
		if printError := prompter.console.Println(prompter.console.Styles().Warning.Render(invalidChoiceMessageConstant)); printError != nil {
			return nil, printError
		}
		return region.Lines(conflicts.ChoiceBoth), nil
	}

	if choice != conflicts.ChoiceCustom {
		return region.Lines(choice), nil
	}

	if printError := prompter.console.Println(fmt.Sprintf(customInstructionsTemplateConstant, customResolutionTerminatorConstant)); printError != nil {
		return nil, printError
	}
	customLines, customError := prompter.console.ReadLinesUntil(customResolutionTerminatorConstant)
	if customError != nil {
		return nil, fmt.Errorf(customReadErrorTemplateConstant, customError)
	}
	return customLines, nil
}

func (prompter *RegionPrompter) display(index int, total int, region conflicts.Region) error {
	styles := prompter.console.Styles()
	filePath := prompter.filePath
	if len(strings.TrimSpace(filePath)) == 0 {
		filePath = unknownFilePathPlaceholderConstant
	}

	var builder strings.Builder
	builder.WriteString(newlineConstant)
	builder.WriteString(styles.Header.Render(fmt.Sprintf(conflictHeaderTemplateConstant, index+1, total, filePath, region.StartLine+1, region.EndLine+1)))
	builder.WriteString(newlineConstant + newlineConstant)

	builder.WriteString(styles.Ours.Render(fmt.Sprintf(oursSectionTemplateConstant, labelOrDefault(region.OursLabel, defaultOursLabelConstant))))
	builder.WriteString(newlineConstant)
	writeSection(&builder, region.Ours)

	if len(region.Base) > 0 {
		builder.WriteString(styles.Base.Render(baseSectionTitleConstant))
		builder.WriteString(newlineConstant)
		writeSection(&builder, region.Base)
	}

	builder.WriteString(styles.Theirs.Render(fmt.Sprintf(theirsSectionTemplateConstant, labelOrDefault(region.TheirsLabel, defaultTheirsLabelConstant))))
	builder.WriteString(newlineConstant)
	writeSection(&builder, region.Theirs)

	builder.WriteString(newlineConstant)
	builder.WriteString(choiceMenuConstant)

	return prompter.console.Print(builder.String())
}

func writeSection(builder *strings.Builder, lines []string) {
	if len(lines) == 0 {
		builder.WriteString(emptySectionPlaceholderConstant)
		builder.WriteString(newlineConstant)
		return
	}
	for _, line := range lines {
		builder.WriteString(line)
		builder.WriteString(newlineConstant)
	}
}

func labelOrDefault(label string, fallback string) string {
	trimmedLabel := strings.TrimSpace(label)
	if len(trimmedLabel) == 0 {
		return fallback
	}
	return trimmedLabel
}
