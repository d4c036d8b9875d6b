package gitrepo

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	schemeSeparatorConstant             = "://"
	userHostSeparatorConstant           = "@"
	scpPathSeparatorConstant            = ":"
	pathSeparatorConstant               = "/"
	repositorySuffixConstant            = ".git"
	sshSchemeConstant                   = "ssh"
	gitSSHSchemeConstant                = "git+ssh"
	httpsSchemeConstant                 = "https"
	httpSchemeConstant                  = "http"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	unsupportedRemoteMessageConstant    = "unsupported remote url"
	missingHostMessageConstant          = "remote url has no host"
	missingRepositoryMessageConstant    = "remote url must name an owner and a repository"
)

// RemoteProtocol enumerates the transports a parsed remote uses.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
)

var remoteSchemeProtocols = map[string]RemoteProtocol{
	sshSchemeConstant:    RemoteProtocolSSH,
	gitSSHSchemeConstant: RemoteProtocolSSH,
	httpsSchemeConstant:  RemoteProtocolHTTPS,
	httpSchemeConstant:   RemoteProtocolHTTPS,
}

// RemoteURL identifies the hosted repository behind a git remote.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// RemoteURLParseError reports a remote that does not point at a hosted repository.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL accepts scp-like remotes (git@host:owner/repo.git) and ssh, http, or https URLs.
// Credentials and ports are dropped; nested groups stay in Owner.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	if !strings.Contains(trimmedRemote, schemeSeparatorConstant) {
		return parseScpRemote(remote, trimmedRemote)
	}

	parsedURL, parseError := url.Parse(trimmedRemote)
	if parseError != nil {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: parseError.Error()}
	}
	protocol, supported := remoteSchemeProtocols[strings.ToLower(parsedURL.Scheme)]
	if !supported {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: unsupportedRemoteMessageConstant}
	}
	return buildRemoteURL(remote, protocol, parsedURL.Hostname(), parsedURL.Path)
}

func parseScpRemote(input string, remote string) (RemoteURL, error) {
	hostPart, pathPart, found := strings.Cut(remote, scpPathSeparatorConstant)
	if !found || strings.HasPrefix(remote, pathSeparatorConstant) {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: unsupportedRemoteMessageConstant}
	}
	if userSeparatorIndex := strings.LastIndex(hostPart, userHostSeparatorConstant); userSeparatorIndex >= 0 {
		hostPart = hostPart[userSeparatorIndex+1:]
	}
	return buildRemoteURL(input, RemoteProtocolSSH, hostPart, pathPart)
}

func buildRemoteURL(input string, protocol RemoteProtocol, host string, path string) (RemoteURL, error) {
	if len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: missingHostMessageConstant}
	}

	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) < 2 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: missingRepositoryMessageConstant}
	}
	repository := strings.TrimSuffix(segments[len(segments)-1], repositorySuffixConstant)
	owner := strings.Join(segments[:len(segments)-1], pathSeparatorConstant)
	if len(repository) == 0 || len(owner) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: input, Message: missingRepositoryMessageConstant}
	}

	return RemoteURL{Protocol: protocol, Host: host, Owner: owner, Repository: repository}, nil
}

// FullName returns the owner/repository identifier used by hosting APIs.
func (remote RemoteURL) FullName() string {
	return remote.Owner + pathSeparatorConstant + remote.Repository
}
