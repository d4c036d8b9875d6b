package conflicts

import (
	"errors"
	"fmt"
)

const (
	regionOrderMessageConstant             = "conflict regions must be in ascending, non-overlapping order"
	regionOutOfBoundsMessageConstant       = "conflict region lies outside the document"
	regionOrderErrorTemplateConstant       = "%w: region %d starts at line %d before line %d"
	regionBoundsErrorTemplateConstant      = "%w: region %d spans lines %d-%d of %d"
	invalidRegionSpanErrorTemplateConstant = "%w: region %d ends at line %d before it starts at line %d"
)

var (
	// ErrRegionOrder indicates resolutions were not supplied in extraction order.
	ErrRegionOrder = errors.New(regionOrderMessageConstant)
	// ErrRegionOutOfBounds indicates a region does not fit the supplied lines.
	ErrRegionOutOfBounds = errors.New(regionOutOfBoundsMessageConstant)
)

// Resolution pairs a region with the lines that replace it.
type Resolution struct {
	Region Region
	Lines  []string
}

// Splice replaces every region in lines with its resolution and returns the rewritten lines.
//
// Resolutions must be ordered by ascending StartLine exactly as Extract returns them.
// Each replacement may change the line count, so the span of every later region is
// shifted by the running offset accumulated from earlier replacements. The input slice
// is never modified.
func Splice(lines []string, resolutions []Resolution) ([]string, error) {
	if validationError := validateResolutions(len(lines), resolutions); validationError != nil {
		return nil, validationError
	}

	resolvedLines := append([]string{}, lines...)
	offset := 0

	for _, resolution := range resolutions {
		spanStart := resolution.Region.StartLine - offset
		spanEnd := resolution.Region.EndLine - offset

		rewritten := make([]string, 0, len(resolvedLines)-(spanEnd-spanStart+1)+len(resolution.Lines))
		rewritten = append(rewritten, resolvedLines[:spanStart]...)
		rewritten = append(rewritten, resolution.Lines...)
		rewritten = append(rewritten, resolvedLines[spanEnd+1:]...)
		resolvedLines = rewritten

		offset += resolution.Region.LineSpan() - len(resolution.Lines)
	}

	return resolvedLines, nil
}

func validateResolutions(lineCount int, resolutions []Resolution) error {
	previousEndLine := -1
	for resolutionIndex, resolution := range resolutions {
		region := resolution.Region
		if region.EndLine < region.StartLine {
			return fmt.Errorf(invalidRegionSpanErrorTemplateConstant, ErrRegionOrder, resolutionIndex, region.EndLine, region.StartLine)
		}
		if region.StartLine <= previousEndLine {
			return fmt.Errorf(regionOrderErrorTemplateConstant, ErrRegionOrder, resolutionIndex, region.StartLine, previousEndLine)
		}
		if region.StartLine < 0 || region.EndLine >= lineCount {
			return fmt.Errorf(regionBoundsErrorTemplateConstant, ErrRegionOutOfBounds, resolutionIndex, region.StartLine, region.EndLine, lineCount)
		}
		previousEndLine = region.EndLine
	}
	return nil
}
