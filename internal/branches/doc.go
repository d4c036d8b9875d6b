// Package branches lists the local branches of the repository, numbered the same way the
// interactive merge selection numbers them.
package branches
