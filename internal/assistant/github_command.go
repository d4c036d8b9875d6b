package assistant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/mergix/internal/dependencies"
	"github.com/temirov/mergix/internal/execshell"
	"github.com/temirov/mergix/internal/githubapi"
	"github.com/temirov/mergix/internal/gitrepo"
	"github.com/temirov/mergix/internal/prompt"
	"github.com/temirov/mergix/internal/utils"
)

const (
	githubCommandUseConstant              = "github"
	githubCommandShortDescriptionConstant = "Query repositories on GitHub"
	reposCommandUseConstant               = "repos"
	reposCommandShortDescriptionConstant  = "List repositories of the authenticated user, most recently updated first"
	repoCommandUseConstant                = "repo [owner/repo]"
	repoCommandShortDescriptionConstant   = "Show details of one repository (default: the origin remote)"
	limitFlagNameConstant                 = "limit"
	limitFlagUsageConstant                = "Maximum number of repositories to list (default from configuration)"
	originRemoteNameConstant              = "origin"
	repositoriesHeaderConstant            = "Your Repositories:"
	repositoryLineTemplateConstant        = "%d. %s - %s"
	missingDescriptionConstant            = "No description"
	noRepositoriesMessageConstant         = "No repositories found."
	detailsHeaderConstant                 = "Repository Details:"
	detailsNameTemplateConstant           = "Name: %s"
	detailsDescriptionTemplateConstant    = "Description: %s"
	detailsStarsTemplateConstant          = "Stars: %d"
	detailsForksTemplateConstant          = "Forks: %d"
	detailsLanguageTemplateConstant       = "Language: %s"
	detailsDefaultBranchTemplateConstant  = "Default branch: %s"
	detailsURLTemplateConstant            = "URL: %s"
	detailsVisibilityTemplateConstant     = "Visibility: %s"
	privateVisibilityConstant             = "private"
	publicVisibilityConstant              = "public"
	unknownValueConstant                  = "None"
	catalogNotConfiguredMessageConstant   = "github repository catalog not configured"
	listErrorTemplateConstant             = "error fetching repositories: %w"
	detailsErrorTemplateConstant          = "error fetching repository info: %w"
	originLookupErrorTemplateConstant     = "unable to derive repository from the %s remote: %w"
	tooManyArgumentsMessageConstant       = "github repo accepts at most one owner/repo argument"
	repositoriesListedLogMessageConstant  = "repositories listed"
	repositoryFetchedLogMessageConstant   = "repository fetched"
	logFieldCountConstant                 = "count"
	logFieldRepositoryConstant            = "repository"
)

var (
	// ErrCatalogNotConfigured indicates that no repository catalog provider was supplied.
	ErrCatalogNotConfigured = errors.New(catalogNotConfiguredMessageConstant)
	errTooManyArguments     = errors.New(tooManyArgumentsMessageConstant)
)

// GitHubCommandBuilder assembles the github command tree.
type GitHubCommandBuilder struct {
	LoggerProvider               LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() githubapi.Configuration
	CatalogProvider              RepositoryCatalogProvider
	GitExecutor                  execshell.GitExecutor
	RemoteLocator                RemoteLocator
}

// Build constructs the github command with repos and repo subcommands.
func (builder *GitHubCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   githubCommandUseConstant,
		Short: githubCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
	}

	reposCommand := &cobra.Command{
		Use:   reposCommandUseConstant,
		Short: reposCommandShortDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.runRepositories,
	}
	reposCommand.Flags().Int(limitFlagNameConstant, 0, limitFlagUsageConstant)

	repoCommand := &cobra.Command{
		Use:   repoCommandUseConstant,
		Short: repoCommandShortDescriptionConstant,
		Args: func(command *cobra.Command, arguments []string) error {
			if len(arguments) > 1 {
				return errTooManyArguments
			}
			return nil
		},
		RunE: builder.runRepository,
	}

	command.AddCommand(reposCommand, repoCommand)
	return command, nil
}

func (builder *GitHubCommandBuilder) runRepositories(command *cobra.Command, arguments []string) error {
	catalog, catalogError := builder.resolveCatalog(command)
	if catalogError != nil {
		return catalogError
	}

	limit, _ := command.Flags().GetInt(limitFlagNameConstant)
	if limit <= 0 {
		limit = builder.resolveConfiguration().EffectiveRepositoryLimit()
	}

	repositories, listError := catalog.ListRepositories(command.Context(), limit)
	if listError != nil {
		return fmt.Errorf(listErrorTemplateConstant, listError)
	}
	resolveLogger(builder.LoggerProvider).Debug(repositoriesListedLogMessageConstant, zap.Int(logFieldCountConstant, len(repositories)))

	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())
	if len(repositories) == 0 {
		return console.Println(noRepositoriesMessageConstant)
	}

	var listing strings.Builder
	listing.WriteString(console.Styles().Header.Render(repositoriesHeaderConstant))
	for repositoryIndex, repository := range repositories {
		description := strings.TrimSpace(repository.Description)
		if len(description) == 0 {
			description = missingDescriptionConstant
		}
		listing.WriteString("\n")
		fmt.Fprintf(&listing, repositoryLineTemplateConstant, repositoryIndex+1, repository.Name, description)
	}
	return console.Println(listing.String())
}

func (builder *GitHubCommandBuilder) runRepository(command *cobra.Command, arguments []string) error {
	catalog, catalogError := builder.resolveCatalog(command)
	if catalogError != nil {
		return catalogError
	}

	identifier := ""
	if len(arguments) == 1 {
		identifier = strings.TrimSpace(arguments[0])
	}
	if len(identifier) == 0 {
		derivedIdentifier, deriveError := builder.deriveOriginRepository(command)
		if deriveError != nil {
			return deriveError
		}
		identifier = derivedIdentifier
	}

	repository, getError := catalog.GetRepository(command.Context(), identifier)
	if getError != nil {
		return fmt.Errorf(detailsErrorTemplateConstant, getError)
	}
	resolveLogger(builder.LoggerProvider).Debug(repositoryFetchedLogMessageConstant, zap.String(logFieldRepositoryConstant, repository.FullName))

	visibility := publicVisibilityConstant
	if repository.Private {
		visibility = privateVisibilityConstant
	}

	console := prompt.NewConsole(command.InOrStdin(), command.OutOrStdout())
	detailLines := []string{
		console.Styles().Header.Render(detailsHeaderConstant),
		fmt.Sprintf(detailsNameTemplateConstant, repository.Name),
		fmt.Sprintf(detailsDescriptionTemplateConstant, valueOrUnknown(repository.Description)),
		fmt.Sprintf(detailsStarsTemplateConstant, repository.Stars),
		fmt.Sprintf(detailsForksTemplateConstant, repository.Forks),
		fmt.Sprintf(detailsLanguageTemplateConstant, valueOrUnknown(repository.Language)),
		fmt.Sprintf(detailsDefaultBranchTemplateConstant, valueOrUnknown(repository.DefaultBranch)),
		fmt.Sprintf(detailsURLTemplateConstant, valueOrUnknown(repository.HTMLURL)),
		fmt.Sprintf(detailsVisibilityTemplateConstant, visibility),
	}
	return console.Println(strings.Join(detailLines, "\n"))
}

func (builder *GitHubCommandBuilder) deriveOriginRepository(command *cobra.Command) (string, error) {
	locator, locatorError := builder.resolveRemoteLocator()
	if locatorError != nil {
		return "", locatorError
	}

	repositoryPath := utils.NewCommandContextAccessor().RepositoryPath(command.Context())
	remoteURL, lookupError := locator.GetRemoteURL(command.Context(), repositoryPath, originRemoteNameConstant)
	if lookupError != nil {
		return "", fmt.Errorf(originLookupErrorTemplateConstant, originRemoteNameConstant, lookupError)
	}

	parsedRemote, parseError := gitrepo.ParseRemoteURL(remoteURL)
	if parseError != nil {
		return "", fmt.Errorf(originLookupErrorTemplateConstant, originRemoteNameConstant, parseError)
	}
	return parsedRemote.FullName(), nil
}

func (builder *GitHubCommandBuilder) resolveCatalog(command *cobra.Command) (RepositoryCatalog, error) {
	if builder.CatalogProvider == nil {
		return nil, ErrCatalogNotConfigured
	}
	return builder.CatalogProvider(command.Context())
}

func (builder *GitHubCommandBuilder) resolveRemoteLocator() (RemoteLocator, error) {
	if builder.RemoteLocator != nil {
		return builder.RemoteLocator, nil
	}

	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, resolveLogger(builder.LoggerProvider), humanReadableLogging)
	if executorError != nil {
		return nil, executorError
	}
	return dependencies.ResolveRepositoryManager(gitExecutor)
}

func (builder *GitHubCommandBuilder) resolveConfiguration() githubapi.Configuration {
	if builder.ConfigurationProvider == nil {
		return githubapi.DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func valueOrUnknown(value string) string {
	if len(strings.TrimSpace(value)) == 0 {
		return unknownValueConstant
	}
	return value
}
