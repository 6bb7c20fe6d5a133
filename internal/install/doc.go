// Package install turns the metadata documents of one package into launch
// entries.
//
// A package is opened, its documents are visited in container order, and
// every document built for the current platform (or for "all") is mapped
// onto a menu.Draft and materialized. Any read error abandons the rest of
// the package; documents already materialized stay in place.
package install
