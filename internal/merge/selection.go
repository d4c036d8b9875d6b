package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/mergix/internal/prompt"
)

const (
	currentBranchMessageTemplateConstant  = "Current branch: %s"
	availableBranchesHeaderConstant       = "\nAvailable branches:"
	availableBranchTemplateConstant       = "%d. %s"
	branchSelectionPromptConstant         = "\nSelect branches to merge (comma-separated numbers, e.g., 1,3,4):"
	baseSelectionPromptConstant           = "\nSelect base branch (Enter a number, or press Enter to use current branch):"
	selectionInputPromptConstant          = "> "
	invalidBaseSelectionMessageConstant   = "Invalid selection. Using current branch."
	mergePlanHeaderTemplateConstant       = "\nYou are about to merge the following branches into %s:"
	mergePlanEntryTemplateConstant        = "- %s"
	proceedPromptConstant                 = "\nProceed with merge? (y/n): "
	useAIPromptConstant                   = "Use AI to resolve conflicts? (y/n): "
	mergeCancelledMessageConstant         = "Merge operation cancelled."
	tooFewBranchesSelectedMessageConstant = "Please select at least two branches to merge."
	noBranchesAvailableMessageConstant    = "no local branches available to merge"
	selectionReadErrorTemplateConstant    = "unable to read branch selection: %w"
)

var (
	// ErrTooFewBranchesSelected indicates that fewer than two valid branch numbers were entered.
	ErrTooFewBranchesSelected = errors.New(tooFewBranchesSelectedMessageConstant)
	// ErrNoBranchesAvailable indicates that the repository has no local branches to offer.
	ErrNoBranchesAvailable = errors.New(noBranchesAvailableMessageConstant)
)

// SelectionRequest describes what the interactive flow offers to the operator.
type SelectionRequest struct {
	AvailableBranches []string
	CurrentBranch     string
	AIAvailable       bool
	UseAIDefault      bool
	AssumeYes         bool
}

// Selection captures the operator's answers from the interactive flow.
type Selection struct {
	Branches   []string
	BaseBranch string
	UseAI      bool
	Confirmed  bool
}

// BranchSelector walks the operator through choosing branches, a base, and AI usage.
type BranchSelector struct {
	console *prompt.Console
}

// NewBranchSelector binds the selector to a console.
func NewBranchSelector(console *prompt.Console) *BranchSelector {
	return &BranchSelector{console: console}
}

// Select lists the available branches and collects the merge plan. The AI question is only asked
// when AIAvailable is set; UseAIDefault is kept otherwise. AssumeYes skips the confirmation.
func (selector *BranchSelector) Select(request SelectionRequest) (Selection, error) {
	availableBranches := request.AvailableBranches
	currentBranch := request.CurrentBranch
	if len(availableBranches) == 0 {
		return Selection{}, ErrNoBranchesAvailable
	}

	var listing strings.Builder
	fmt.Fprintf(&listing, currentBranchMessageTemplateConstant+"\n", currentBranch)
	listing.WriteString(availableBranchesHeaderConstant + "\n")
	for branchIndex, branch := range availableBranches {
		fmt.Fprintf(&listing, availableBranchTemplateConstant+"\n", branchIndex+1, branch)
	}
	listing.WriteString(branchSelectionPromptConstant)
	if printError := selector.console.Println(listing.String()); printError != nil {
		return Selection{}, printError
	}

	selectionInput, readError := selector.console.ReadLine(selectionInputPromptConstant)
	if readError != nil {
		return Selection{}, fmt.Errorf(selectionReadErrorTemplateConstant, readError)
	}
	selectedIndexes, parseError := prompt.ParseNumberList(selectionInput, len(availableBranches))
	if parseError != nil {
		return Selection{}, parseError
	}

	selection := Selection{UseAI: request.UseAIDefault}
	for _, selectedIndex := range selectedIndexes {
		selection.Branches = append(selection.Branches, availableBranches[selectedIndex])
	}
	if len(selection.Branches) < 2 {
		return Selection{}, ErrTooFewBranchesSelected
	}

	if printError := selector.console.Println(baseSelectionPromptConstant); printError != nil {
		return Selection{}, printError
	}
	baseInput, baseReadError := selector.console.ReadLine(selectionInputPromptConstant)
	if baseReadError != nil && !errors.Is(baseReadError, prompt.ErrInputClosed) {
		return Selection{}, fmt.Errorf(selectionReadErrorTemplateConstant, baseReadError)
	}
	selection.BaseBranch = currentBranch
	if len(strings.TrimSpace(baseInput)) > 0 {
		baseIndex, valid := prompt.ParseOptionalNumber(baseInput, len(availableBranches))
		if valid {
			selection.BaseBranch = availableBranches[baseIndex]
		} else if printError := selector.console.Println(selector.console.Styles().Warning.Render(invalidBaseSelectionMessageConstant)); printError != nil {
			return Selection{}, printError
		}
	}

	var plan strings.Builder
	fmt.Fprintf(&plan, mergePlanHeaderTemplateConstant, selection.BaseBranch)
	for _, branch := range selection.Branches {
		if branch == selection.BaseBranch {
			continue
		}
		plan.WriteString("\n")
		fmt.Fprintf(&plan, mergePlanEntryTemplateConstant, branch)
	}
	if printError := selector.console.Println(plan.String()); printError != nil {
		return Selection{}, printError
	}

	confirmed := request.AssumeYes
	if !confirmed {
		var confirmError error
		confirmed, confirmError = selector.console.Confirm(proceedPromptConstant)
		if confirmError != nil {
			return Selection{}, confirmError
		}
	}
	if !confirmed {
		if printError := selector.console.Println(mergeCancelledMessageConstant); printError != nil {
			return Selection{}, printError
		}
		return selection, nil
	}
	selection.Confirmed = true

	if request.AIAvailable {
		useAI, aiConfirmError := selector.console.Confirm(useAIPromptConstant)
		if aiConfirmError != nil {
			return Selection{}, aiConfirmError
		}
		selection.UseAI = useAI
	}
	return selection, nil
}
