// Package tools provides reusable runtime helpers.
//
// Ownership boundary:
// - command execution helpers
package tools
