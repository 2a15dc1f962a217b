// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI offers three views over the same core sessions:
//  1. [ExploreView] : Search the catalog, pick presets and recent searches, filter and sort results
//  2. [SwipeView] : Decide on one card at a time by dragging it past the threshold or with y/n
//  3. [LikedView] : Browse, play and remove liked tracks
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// The model owns no domain state: it renders the snapshots published by the discovery and swipe sessions,
// the like store and the preview player, and forwards key presses to them as commands.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
