// Package shared holds code used across campkit packages that belongs to no
// single domain.
//
// The testutil subpackage provides test helpers:
//
//	- FakeClock: a manually advanced clock whose AfterFunc timers fire on
//	  Advance, for debounce and auto-hide tests
//	- BufferedSlogHandler: captures slog records for assertions
//
// Nothing here may import a domain package.
package shared
