package conflicts

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// OursMarkerPrefix opens a conflict region.
	OursMarkerPrefix = "<<<<<<<"
	// BaseMarkerPrefix opens the common ancestor section emitted by diff3 style conflicts.
	BaseMarkerPrefix = "|||||||"
	// SeparatorMarkerPrefix divides the ours and theirs sides of a region.
	SeparatorMarkerPrefix = "======="
	// TheirsMarkerPrefix closes a conflict region.
	TheirsMarkerPrefix = ">>>>>>>"

	unterminatedConflictMessageConstant       = "unterminated conflict region"
	unterminatedConflictErrorTemplateConstant = "unterminated conflict region starting at line %d"
	carriageReturnConstant                    = "\r"
)

// ErrUnterminatedConflict indicates a conflict start marker without a matching end marker.
var ErrUnterminatedConflict = errors.New(unterminatedConflictMessageConstant)

// UnterminatedConflictError reports the zero-based line index of a start marker that was never closed.
type UnterminatedConflictError struct {
	StartLine int
}

// Error describes the unterminated region.
func (conflictError *UnterminatedConflictError) Error() string {
	return fmt.Sprintf(unterminatedConflictErrorTemplateConstant, conflictError.StartLine)
}

// Is allows errors.Is to match ErrUnterminatedConflict.
func (conflictError *UnterminatedConflictError) Is(target error) bool {
	return target == ErrUnterminatedConflict
}

// Side identifies which half of a region is being collected.
type Side int

// Region sides.
const (
	SideOurs Side = iota
	SideBase
	SideTheirs
)

// Region describes one conflict block. StartLine and EndLine are the zero-based
// indexes of the opening and closing marker lines in the original text.
type Region struct {
	Ours        []string
	Base        []string
	Theirs      []string
	StartLine   int
	EndLine     int
	OursLabel   string
	TheirsLabel string
}

// LineSpan returns the number of lines the region occupies including its markers.
func (region Region) LineSpan() int {
	return region.EndLine - region.StartLine + 1
}

// Lines returns the replacement produced by a fixed choice. ChoiceCustom yields nil.
func (region Region) Lines(choice Choice) []string {
	switch choice {
	case ChoiceOurs:
		return append([]string{}, region.Ours...)
	case ChoiceTheirs:
		return append([]string{}, region.Theirs...)
	case ChoiceBoth:
		combined := make([]string, 0, len(region.Ours)+len(region.Theirs))
		combined = append(combined, region.Ours...)
		return append(combined, region.Theirs...)
	default:
		return nil
	}
}

// Extract scans lines for conflict markers and returns the regions in order of appearance.
// Text without markers yields an empty slice and no error.
func Extract(lines []string) ([]Region, error) {
	regions := []Region{}

	insideConflict := false
	currentSide := SideOurs
	currentRegion := Region{}

	for lineIndex, line := range lines {
		switch {
		case strings.HasPrefix(line, OursMarkerPrefix):
			if insideConflict {
				return nil, &UnterminatedConflictError{StartLine: currentRegion.StartLine}
			}
			insideConflict = true
			currentSide = SideOurs
			currentRegion = Region{
				Ours:      []string{},
				Theirs:    []string{},
				StartLine: lineIndex,
				OursLabel: markerLabel(line, OursMarkerPrefix),
			}
		case !insideConflict:
			continue
		case strings.HasPrefix(line, BaseMarkerPrefix) && currentSide == SideOurs:
			currentSide = SideBase
			currentRegion.Base = []string{}
		case strings.HasPrefix(line, SeparatorMarkerPrefix):
			currentSide = SideTheirs
		case strings.HasPrefix(line, TheirsMarkerPrefix):
			insideConflict = false
			currentRegion.EndLine = lineIndex
			currentRegion.TheirsLabel = markerLabel(line, TheirsMarkerPrefix)
			regions = append(regions, currentRegion)
		default:
			switch currentSide {
			case SideOurs:
				currentRegion.Ours = append(currentRegion.Ours, line)
			case SideBase:
				currentRegion.Base = append(currentRegion.Base, line)
			default:
				currentRegion.Theirs = append(currentRegion.Theirs, line)
			}
		}
	}

	if insideConflict {
		return nil, &UnterminatedConflictError{StartLine: currentRegion.StartLine}
	}

	return regions, nil
}

// ExtractText splits text into lines and extracts its conflict regions.
func ExtractText(text string) ([]Region, error) {
	return Extract(NewDocument(text).Lines)
}

// HasMarkers reports whether any line of text starts with a conflict start or end marker.
func HasMarkers(text string) bool {
	for _, line := range NewDocument(text).Lines {
		if strings.HasPrefix(line, OursMarkerPrefix) || strings.HasPrefix(line, TheirsMarkerPrefix) {
			return true
		}
	}
	return false
}

func markerLabel(line string, prefix string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(line, prefix), carriageReturnConstant))
}
