// Package conflicts parses git conflict markers and rewrites documents with
// chosen resolutions.
//
// Extract segments text into ordered Region values bounded by the
// "<<<<<<<", "=======", and ">>>>>>>" markers. Splice replaces each region
// with its chosen lines while tracking the running line offset introduced by
// earlier replacements. ResolveText combines both steps with a pluggable
// RegionResolver so interactive, scripted, and AI-backed policies share the
// same rewriting logic.
package conflicts
