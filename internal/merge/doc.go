// Package merge merges several branches into a temporary branch and resolves the conflicts
// git leaves behind, with Gemini first when requested and region by region otherwise.
package merge
