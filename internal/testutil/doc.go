// Package testutil builds package containers and desktop-entry documents for
// tests.
package testutil
