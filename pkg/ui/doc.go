// Package ui renders console output for the scraper: colored status lines,
// a per-run progress tracker and optional desktop notifications.
// All output goes to Out and honors quiet mode.
package ui
