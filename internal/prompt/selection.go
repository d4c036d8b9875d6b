package prompt

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	selectionSeparatorConstant            = ","
	invalidSelectionErrorTemplateConstant = "invalid selection %q: enter numbers separated by commas"
)

// ParseNumberList converts a comma-separated list of one-based option numbers into zero-based
// indexes. Numbers outside 1..optionCount are dropped; non-numeric entries are an error.
func ParseNumberList(input string, optionCount int) ([]int, error) {
	selectedIndexes := []int{}
	for _, entry := range strings.Split(input, selectionSeparatorConstant) {
		trimmedEntry := strings.TrimSpace(entry)
		number, parseError := strconv.Atoi(trimmedEntry)
		if parseError != nil {
			return nil, fmt.Errorf(invalidSelectionErrorTemplateConstant, trimmedEntry)
		}
		if number < 1 || number > optionCount {
			continue
		}
		selectedIndexes = append(selectedIndexes, number-1)
	}
	return selectedIndexes, nil
}

// ParseOptionalNumber converts a single one-based option number into a zero-based index.
// Blank, non-numeric, or out-of-range input reports false.
func ParseOptionalNumber(input string, optionCount int) (int, bool) {
	trimmedInput := strings.TrimSpace(input)
	if len(trimmedInput) == 0 {
		return 0, false
	}
	number, parseError := strconv.Atoi(trimmedInput)
	if parseError != nil || number < 1 || number > optionCount {
		return 0, false
	}
	return number - 1, true
}
