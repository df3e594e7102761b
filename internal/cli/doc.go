// Package cli implements the command-line interface for course-adder.
//
// The cli package provides the Cobra commands that parse request lines, run
// the search-match-add cycle against a registration page, and manage saved
// lines and run reports. Output is text or JSON.
package cli
