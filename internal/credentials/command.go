package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/prompt"
)

const (
	commandUseConstant                    = "credentials"
	commandShortDescriptionConstant       = "Manage the stored Gemini and GitHub API keys"
	commandLongDescriptionConstant        = "credentials stores, displays, and removes the API keys used for AI conflict resolution and GitHub queries."
	setCommandUseConstant                 = "set"
	setCommandShortDescriptionConstant    = "Store both API keys"
	showCommandUseConstant                = "show"
	showCommandShortDescriptionConstant   = "Display the stored API keys with their values masked"
	removeCommandUseConstant              = "remove"
	removeCommandShortDescriptionConstant = "Delete the stored API keys"
	geminiKeyFlagNameConstant             = "gemini-key"
	geminiKeyFlagUsageConstant            = "Gemini API key (prompted with hidden input when omitted)"
	githubKeyFlagNameConstant             = "github-key"
	githubKeyFlagUsageConstant            = "GitHub API key (prompted with hidden input when omitted)"
	geminiKeyPromptConstant               = "Gemini API Key: "
	githubKeyPromptConstant               = "GitHub API Key: "
	updateExistingPromptTemplateConstant  = "Existing API keys found in %s. Update them? (y/n): "
	keepingExistingMessageConstant        = "Keeping existing API keys."
	enterKeysMessageConstant              = "Please enter your API keys:"
	savedMessageTemplateConstant          = "API keys saved to %s"
	removedMessageConstant                = "API keys have been removed successfully."
	notFoundMessageConstant               = "No API keys found."
	showGeminiTemplateConstant            = "Gemini API key: %s"
	showGitHubTemplateConstant            = "GitHub API key: %s"
	showSourceTemplateConstant            = "Stored in: %s"
	bothKeysRequiredMessageConstant       = "both API keys are required"
	keyReadErrorTemplateConstant          = "unable to read %s: %w"
	geminiKeyDescriptionConstant          = "Gemini API key"
	githubKeyDescriptionConstant          = "GitHub API key"
	credentialsSavedLogMessageConstant    = "credentials saved"
	credentialsRemovedLogMessageConstant  = "credentials removed"
	logFieldPathConstant                  = "path"
	logFieldExistedConstant               = "existed"
)

// ErrBothKeysRequired indicates that one of the two API keys was left empty.
var ErrBothKeysRequired = errors.New(bothKeysRequiredMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the credential file configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the credentials command tree.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
}

// Build constructs the credentials command with set, show, and remove subcommands.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	setCommand := &cobra.Command{
		Use:   setCommandUseConstant,
		Short: setCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runSet,
	}
	setCommand.Flags().String(geminiKeyFlagNameConstant, "", geminiKeyFlagUsageConstant)
	setCommand.Flags().String(githubKeyFlagNameConstant, "", githubKeyFlagUsageConstant)

	showCommand := &cobra.Command{
		Use:   showCommandUseConstant,
		Short: showCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runShow,
	}

	removeCommand := &cobra.Command{
		Use:   removeCommandUseConstant,
		Short: removeCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runRemove,
	}

	command.AddCommand(setCommand, showCommand, removeCommand)
	return command, nil
}

func (builder *CommandBuilder) runSet(command *cobra.Command, arguments []string) error {
	store, storeError := builder.openStore()
	if storeError != nil {
		return storeError
	}

	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())

	geminiKey, _ := command.Flags().GetString(geminiKeyFlagNameConstant)
	githubKey, _ := command.Flags().GetString(githubKeyFlagNameConstant)
	geminiKey = strings.TrimSpace(geminiKey)
	githubKey = strings.TrimSpace(githubKey)

	if len(geminiKey) == 0 && len(githubKey) == 0 {
		_, exists, loadError := store.Load()
		if loadError != nil {
			return loadError
		}
		if exists {
			update, confirmError := console.Confirm(fmt.Sprintf(updateExistingPromptTemplateConstant, store.Path()))
			if confirmError != nil {
				return confirmError
			}
			if !update {
				return console.Println(keepingExistingMessageConstant)
			}
		}
		if printError := console.Println(enterKeysMessageConstant); printError != nil {
			return printError
		}
	}

	if len(geminiKey) == 0 {
		value, readError := readSecret(console, geminiKeyPromptConstant, geminiKeyDescriptionConstant)
		if readError != nil {
			return readError
		}
		geminiKey = value
	}
	if len(githubKey) == 0 {
		value, readError := readSecret(console, githubKeyPromptConstant, githubKeyDescriptionConstant)
		if readError != nil {
			return readError
		}
		githubKey = value
	}

	credentials := Credentials{GeminiAPIKey: geminiKey, GitHubAPIKey: githubKey}
	if !credentials.Complete() {
		return ErrBothKeysRequired
	}

	if saveError := store.Save(credentials); saveError != nil {
		return saveError
	}
	builder.resolveLogger().Info(credentialsSavedLogMessageConstant, zap.String(logFieldPathConstant, store.Path()))
	return console.Println(fmt.Sprintf(savedMessageTemplateConstant, store.Path()))
}

func (builder *CommandBuilder) runShow(command *cobra.Command, arguments []string) error {
	store, storeError := builder.openStore()
	if storeError != nil {
		return storeError
	}

	credentials, exists, loadError := store.Load()
	if loadError != nil {
		return loadError
	}

	output := command.OutOrStdout()
	if !exists || credentials.Empty() {
		_, printError := fmt.Fprintln(output, notFoundMessageConstant)
		return printError
	}

	lines := []string{
		fmt.Sprintf(showGeminiTemplateConstant, Mask(credentials.GeminiAPIKey)),
		fmt.Sprintf(showGitHubTemplateConstant, Mask(credentials.GitHubAPIKey)),
		fmt.Sprintf(showSourceTemplateConstant, store.Path()),
	}
	_, printError := fmt.Fprintln(output, strings.Join(lines, "\n"))
	return printError
}

func (builder *CommandBuilder) runRemove(command *cobra.Command, arguments []string) error {
	store, storeError := builder.openStore()
	if storeError != nil {
		return storeError
	}

	existed, removeError := store.Remove()
	if removeError != nil {
		return removeError
	}
	builder.resolveLogger().Info(credentialsRemovedLogMessageConstant, zap.String(logFieldPathConstant, store.Path()), zap.Bool(logFieldExistedConstant, existed))

	message := notFoundMessageConstant
	if existed {
		message = removedMessageConstant
	}
	_, printError := fmt.Fprintln(command.OutOrStdout(), message)
	return printError
}

func (builder *CommandBuilder) openStore() (*Store, error) {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return OpenStore(configuration, nil)
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func readSecret(console *prompt.Console, promptText string, description string) (string, error) {
	value, readError := console.ReadSecret(promptText)
	if readError != nil {
		if errors.Is(readError, prompt.ErrInputClosed) {
			return "", ErrBothKeysRequired
		}
		return "", fmt.Errorf(keyReadErrorTemplateConstant, description, readError)
	}
	return value, nil
}
