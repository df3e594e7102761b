// Package scraper reads the course registration page and exposes its dual
// listbox as a searchable list of rows.
//
// Pages are parsed with goquery, either from a saved HTML file or fetched over
// HTTP. A search keeps only visible rows whose text contains the course code,
// the same filtering the widget applies while the course code is typed into
// its search box. When the rows are not there yet, Source polls the page until
// they appear or the wait timeout passes.
package scraper
