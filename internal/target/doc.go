// Package target parses loosely formatted course requests into a canonical
// course and optional section.
//
// Accepted shapes include "CSE221", "CSE 221", "CSE221: Sec-09B",
// "cse221 sec-09", "CSE 221: 9B" and "CSE 221 9". A line without a
// recognizable course code is reported as unparsable; a missing or malformed
// section is never an error and simply means "any section".
package target
