package merge_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/mergix/internal/merge"
	"github.com/temirov/mergix/internal/prompt"
)

var availableTestBranches = []string{"main", "feature-a", "feature-b", "feature-c"}

func TestBranchSelectorSelect(testInstance *testing.T) {
	testCases := []struct {
		name              string
		input             string
		request           merge.SelectionRequest
		expectedSelection merge.Selection
		expectedOutput    []string
		absentOutput      []string
	}{
		{
			name:    "current_branch_base_with_ai",
			input:   "2,3\n\ny\ny\n",
			request: merge.SelectionRequest{AIAvailable: true},
			expectedSelection: merge.Selection{
				Branches:   []string{"feature-a", "feature-b"},
				BaseBranch: "main",
				UseAI:      true,
				Confirmed:  true,
			},
			expectedOutput: []string{
				"Current branch: main",
				"Available branches:\n1. main\n2. feature-a\n3. feature-b\n4. feature-c",
				"Select branches to merge (comma-separated numbers, e.g., 1,3,4):",
				"You are about to merge the following branches into main:\n- feature-a\n- feature-b",
				"Proceed with merge? (y/n): ",
				"Use AI to resolve conflicts? (y/n): ",
			},
		},
		{
			name:  "explicit_base_is_left_out_of_plan",
			input: "1,2,4\n4\ny\n",
			expectedSelection: merge.Selection{
				Branches:   []string{"main", "feature-a", "feature-c"},
				BaseBranch: "feature-c",
				Confirmed:  true,
			},
			expectedOutput: []string{"into feature-c:\n- main\n- feature-a\n"},
			absentOutput:   []string{"- feature-c", "Use AI to resolve conflicts?"},
		},
		{
			name:    "invalid_base_uses_current_branch",
			input:   "2,3\n9\ny\n",
			request: merge.SelectionRequest{UseAIDefault: true},
			expectedSelection: merge.Selection{
				Branches:   []string{"feature-a", "feature-b"},
				BaseBranch: "main",
				UseAI:      true,
				Confirmed:  true,
			},
			expectedOutput: []string{"Invalid selection. Using current branch."},
		},
		{
			name:  "declined",
			input: "2,3\n\nn\n",
			expectedSelection: merge.Selection{
				Branches:   []string{"feature-a", "feature-b"},
				BaseBranch: "main",
			},
			expectedOutput: []string{"Merge operation cancelled."},
		},
		{
			name:    "assume_yes_skips_confirmation",
			input:   "3,4\n",
			request: merge.SelectionRequest{AssumeYes: true},
			expectedSelection: merge.Selection{
				Branches:   []string{"feature-b", "feature-c"},
				BaseBranch: "main",
				Confirmed:  true,
			},
			absentOutput: []string{"Proceed with merge?"},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			output := &bytes.Buffer{}
			selector := merge.NewBranchSelector(prompt.NewConsole(strings.NewReader(testCase.input), output))

			request := testCase.request
			request.AvailableBranches = availableTestBranches
			request.CurrentBranch = "main"

			selection, selectionError := selector.Select(request)
			require.NoError(subtest, selectionError)
			require.Equal(subtest, testCase.expectedSelection, selection)
			for _, expectedFragment := range testCase.expectedOutput {
				require.Contains(subtest, output.String(), expectedFragment)
			}
			for _, absentFragment := range testCase.absentOutput {
				require.NotContains(subtest, output.String(), absentFragment)
			}
		})
	}
}

func TestBranchSelectorRejectsInvalidSelections(testInstance *testing.T) {
	testCases := []struct {
		name          string
		input         string
		branches      []string
		expectedError error
	}{
		{name: "single_branch", input: "2\n", branches: availableTestBranches, expectedError: merge.ErrTooFewBranchesSelected},
		{name: "out_of_range_entries_dropped", input: "2,9\n", branches: availableTestBranches, expectedError: merge.ErrTooFewBranchesSelected},
		{name: "no_branches", input: "", branches: nil, expectedError: merge.ErrNoBranchesAvailable},
		{name: "closed_input", input: "", branches: availableTestBranches, expectedError: prompt.ErrInputClosed},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(subtest *testing.T) {
			selector := merge.NewBranchSelector(prompt.NewConsole(strings.NewReader(testCase.input), &bytes.Buffer{}))
			_, selectionError := selector.Select(merge.SelectionRequest{AvailableBranches: testCase.branches, CurrentBranch: "main"})
			require.ErrorIs(subtest, selectionError, testCase.expectedError)
		})
	}

	selector := merge.NewBranchSelector(prompt.NewConsole(strings.NewReader("one,two\n"), &bytes.Buffer{}))
	_, parseError := selector.Select(merge.SelectionRequest{AvailableBranches: availableTestBranches, CurrentBranch: "main"})
	require.Error(testInstance, parseError)
	require.Contains(testInstance, parseError.Error(), "invalid selection")
}
