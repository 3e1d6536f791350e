// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for building a concert-prep playlist:
//  1. [FormView] : Enter artist, concert/tour, and year
//  2. [ConfirmView] : Review the request before running
//  3. [RunView] : Monitor real-time pipeline progress
//  4. [ResultView] : Display the created playlist and counts
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the PrepEngine, providing non-blocking
// status reporting while the pipeline runs.
//
// Keyboard navigation uses tab/enter to move through fields, y/n on confirmation,
// and q to quit, with contextual help displayed via charmbracelet/bubbles/help.
package ui
