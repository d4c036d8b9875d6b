// Package dependencies builds the default git collaborators shared by the commands.
package dependencies
