// Package match decides which list rows satisfy a requested course and
// section, and in what order they should be tried.
//
// A row is acceptable when its punctuation-free text contains the course code
// and, if a section was requested, the section appears in one of three shapes:
// after a SEC/SECTION keyword, after a separator, or as a bare token. Rows are
// ranked by Score and the first acceptable row in that order wins.
package match
