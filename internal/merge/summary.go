package merge

import (
	"fmt"
	"io"
	"strings"
)

const (
	summaryHeaderConstant               = "\nMerge Summary:"
	summaryLineTemplateConstant         = "%s: %s"
	summaryDetailTemplateConstant       = "%s (%s)"
	successHeadlineTemplateConstant     = "\nAll branches successfully merged into %s."
	successReviewTemplateConstant       = "You can now checkout to %s to review the changes."
	successFollowUpTemplateConstant     = "If satisfied, you can merge %s back to %s with:"
	followUpCheckoutTemplateConstant    = "  git checkout %s"
	followUpMergeTemplateConstant       = "  git merge %s"
	followUpDeleteTemplateConstant      = "  git branch -d %s"
	failureHeadlineConstant             = "\nMerge process completed with some failures."
	failureCleanupTemplateConstant      = "You may want to delete the temporary branch with: git branch -D %s"
	mergedDescriptionConstant           = "Merged successfully without conflicts"
	resolvedDescriptionConstant         = "Merged with resolved conflicts"
	resolutionFailedDescriptionConstant = "Failed to resolve conflicts"
	mergeFailedDescriptionConstant      = "Failed to merge"
	skippedDescriptionConstant          = "Skipped (base or temporary branch)"
)

var statusDescriptions = map[BranchStatus]string{
	StatusMerged:                      mergedDescriptionConstant,
	StatusMergedWithResolvedConflicts: resolvedDescriptionConstant,
	StatusConflictResolutionFailed:    resolutionFailedDescriptionConstant,
	StatusMergeFailed:                 mergeFailedDescriptionConstant,
	StatusSkipped:                     skippedDescriptionConstant,
}

// Description returns the human-readable summary text for the status.
func (status BranchStatus) Description() string {
	if description, known := statusDescriptions[status]; known {
		return description
	}
	return string(status)
}

// WriteSummary prints the per-branch outcomes followed by the follow-up git commands.
func WriteSummary(writer io.Writer, result Result) error {
	var builder strings.Builder
	builder.WriteString(summaryHeaderConstant)
	builder.WriteString("\n")

	for _, outcome := range result.Outcomes {
		description := outcome.Status.Description()
		if len(outcome.Detail) > 0 && outcome.Status != StatusMerged && outcome.Status != StatusMergedWithResolvedConflicts {
			description = fmt.Sprintf(summaryDetailTemplateConstant, description, outcome.Detail)
		}
		fmt.Fprintf(&builder, summaryLineTemplateConstant+"\n", outcome.Branch, description)
	}

	if result.Succeeded {
		fmt.Fprintf(&builder, successHeadlineTemplateConstant+"\n", result.TemporaryBranch)
		fmt.Fprintf(&builder, successReviewTemplateConstant+"\n", result.TemporaryBranch)
		fmt.Fprintf(&builder, successFollowUpTemplateConstant+"\n", result.TemporaryBranch, result.BaseBranch)
		fmt.Fprintf(&builder, followUpCheckoutTemplateConstant+"\n", result.BaseBranch)
		fmt.Fprintf(&builder, followUpMergeTemplateConstant+"\n", result.TemporaryBranch)
		fmt.Fprintf(&builder, followUpDeleteTemplateConstant+"\n", result.TemporaryBranch)
	} else {
		builder.WriteString(failureHeadlineConstant)
		builder.WriteString("\n")
		fmt.Fprintf(&builder, failureCleanupTemplateConstant+"\n", result.TemporaryBranch)
	}

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}
