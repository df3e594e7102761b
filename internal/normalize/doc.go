// Package normalize provides the canonicalization primitives shared by the
// target parser and the row matcher.
//
// Every comparison in course-adder goes through these two functions so that
// casing, spacing and punctuation are handled in exactly one place.
package normalize
