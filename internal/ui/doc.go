// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for a library transfer:
//  1. [SelectView] : Toggle Liked Songs and any number of source playlists
//  2. [ConfirmView] : Review the selection before writes begin
//  3. [TransferView] : Watch the live event narrative as the engine runs
//  4. [ResultView] : Display run counters and any batch errors
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through an unbuffered channel from the
// TransferEngine; the model drains it one event per Update cycle so the
// narrative renders in emission order.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q)
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
