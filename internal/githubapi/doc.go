// Package githubapi lists and describes GitHub repositories through the REST API.
package githubapi
