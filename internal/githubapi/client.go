package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v58/github"
)

const (
	repositoryFieldNameConstant             = "repository"
	limitFieldNameConstant                  = "limit"
	baseURLFieldNameConstant                = "base_url"
	requiredValueMessageConstant            = "value required"
	ownerRepositoryFormatMessageConstant    = "expected owner/repository"
	positiveValueMessageConstant            = "must be positive"
	invalidURLMessageTemplateConstant       = "invalid URL: %v"
	authenticationRequiredMessageConstant   = "github api key required to list repositories"
	operationErrorMessageTemplateConstant   = "%s operation failed"
	operationErrorWithCauseTemplateConstant = "%s operation failed: %s"
	invalidInputErrorTemplateConstant       = "%s: %s"
	repositorySeparatorConstant             = "/"
	urlPathSeparatorConstant                = "/"
	repositorySortConstant                  = "updated"
	maximumPageSizeConstant                 = 100
	listRepositoriesOperationNameConstant   = OperationName("ListRepositories")
	getRepositoryOperationNameConstant      = OperationName("GetRepository")
)

// OperationName describes a named GitHub API workflow supported by the client.
type OperationName string

// ErrAuthenticationRequired indicates that an operation needs an API key the client was not given.
var ErrAuthenticationRequired = errors.New(authenticationRequiredMessageConstant)

// Repository contains the repository details presented to the operator.
type Repository struct {
	FullName      string
	Name          string
	Description   string
	Stars         int
	Forks         int
	Language      string
	DefaultBranch string
	HTMLURL       string
	Private       bool
}

// InvalidInputError surfaces validation issues for operation inputs.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps transport and API failures.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	if operationError.Cause == nil {
		return fmt.Sprintf(operationErrorMessageTemplateConstant, operationError.Operation)
	}
	return fmt.Sprintf(operationErrorWithCauseTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// Client queries the GitHub REST API.
type Client struct {
	client        *github.Client
	authenticated bool
}

// NewClient builds the REST client once. An empty token yields an anonymous client.
func NewClient(token string, configuration Configuration) (*Client, error) {
	sanitized := configuration.sanitize()

	httpClient := &http.Client{Timeout: sanitized.Timeout}
	restClient := github.NewClient(httpClient)

	trimmedToken := strings.TrimSpace(token)
	if len(trimmedToken) > 0 {
		restClient = restClient.WithAuthToken(trimmedToken)
	}

	if len(sanitized.BaseURL) > 0 {
		baseURL, parseError := parseBaseURL(sanitized.BaseURL)
		if parseError != nil {
			return nil, parseError
		}
		restClient.BaseURL = baseURL
	}

	return &Client{client: restClient, authenticated: len(trimmedToken) > 0}, nil
}

// ListRepositories returns up to limit repositories of the authenticated user, most recently updated first.
func (client *Client) ListRepositories(executionContext context.Context, limit int) ([]Repository, error) {
	if limit <= 0 {
		return nil, InvalidInputError{FieldName: limitFieldNameConstant, Message: positiveValueMessageConstant}
	}
	if !client.authenticated {
		return nil, ErrAuthenticationRequired
	}

	pageSize := limit
	if pageSize > maximumPageSizeConstant {
		pageSize = maximumPageSizeConstant
	}

	listOptions := &github.RepositoryListByAuthenticatedUserOptions{
		Sort:        repositorySortConstant,
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	repositories := make([]Repository, 0, pageSize)
	for {
		page, response, listError := client.client.Repositories.ListByAuthenticatedUser(executionContext, listOptions)
		if listError != nil {
			return nil, OperationError{Operation: listRepositoriesOperationNameConstant, Cause: listError}
		}

		for _, repository := range page {
			repositories = append(repositories, convertRepository(repository))
			if len(repositories) >= limit {
				return repositories, nil
			}
		}

		if response == nil || response.NextPage == 0 {
			return repositories, nil
		}
		listOptions.Page = response.NextPage
	}
}

// GetRepository fetches a repository by its owner/name identifier.
func (client *Client) GetRepository(executionContext context.Context, identifier string) (Repository, error) {
	owner, name, parseError := SplitRepositoryIdentifier(identifier)
	if parseError != nil {
		return Repository{}, parseError
	}

	repository, _, getError := client.client.Repositories.Get(executionContext, owner, name)
	if getError != nil {
		return Repository{}, OperationError{Operation: getRepositoryOperationNameConstant, Cause: getError}
	}
	return convertRepository(repository), nil
}

// SplitRepositoryIdentifier validates and splits an owner/repository identifier.
func SplitRepositoryIdentifier(identifier string) (string, string, error) {
	trimmedIdentifier := strings.Trim(strings.TrimSpace(identifier), repositorySeparatorConstant)
	if len(trimmedIdentifier) == 0 {
		return "", "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}

	owner, name, found := strings.Cut(trimmedIdentifier, repositorySeparatorConstant)
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if !found || len(owner) == 0 || len(name) == 0 || strings.Contains(name, repositorySeparatorConstant) {
		return "", "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: ownerRepositoryFormatMessageConstant}
	}
	return owner, name, nil
}

func convertRepository(repository *github.Repository) Repository {
	return Repository{
		FullName:      repository.GetFullName(),
		Name:          repository.GetName(),
		Description:   repository.GetDescription(),
		Stars:         repository.GetStargazersCount(),
		Forks:         repository.GetForksCount(),
		Language:      repository.GetLanguage(),
		DefaultBranch: repository.GetDefaultBranch(),
		HTMLURL:       repository.GetHTMLURL(),
		Private:       repository.GetPrivate(),
	}
}

func parseBaseURL(rawURL string) (*url.URL, error) {
	if !strings.HasSuffix(rawURL, urlPathSeparatorConstant) {
		rawURL += urlPathSeparatorConstant
	}
	parsedURL, parseError := url.Parse(rawURL)
	if parseError != nil {
		return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, parseError)}
	}
	if len(parsedURL.Scheme) == 0 || len(parsedURL.Host) == 0 {
		return nil, InvalidInputError{FieldName: baseURLFieldNameConstant, Message: fmt.Sprintf(invalidURLMessageTemplateConstant, rawURL)}
	}
	return parsedURL, nil
}
