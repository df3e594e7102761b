// Package runner drives the search, match and add cycle for a list of
// requested course lines.
//
// Lines are handled strictly one at a time: the registration widget is a
// single stateful surface, so a search for one course must finish (including
// the add action and the pause after it) before the next course is typed.
// The page is reached only through the LabelSource and ActionSink interfaces.
package runner
