package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/swipebeats/internal/discovery"
	"github.com/desertthunder/swipebeats/internal/likes"
	"github.com/desertthunder/swipebeats/internal/player"
	"github.com/desertthunder/swipebeats/internal/swipe"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgExploreUpdated MsgKind = iota
	MsgSwipeUpdated
	MsgLikesUpdated
	MsgPlayerUpdated
	MsgActionFailed
	MsgStatus
)

// exploreUpdatedMsg is the constructor for [MsgExploreUpdated]
func exploreUpdatedMsg(snap discovery.Snapshot) Msg {
	return Msg{kind: MsgExploreUpdated, data: snap}
}

// swipeUpdatedMsg is the constructor for [MsgSwipeUpdated]
func swipeUpdatedMsg(snap swipe.Snapshot) Msg {
	return Msg{kind: MsgSwipeUpdated, data: snap}
}

// likesUpdatedMsg is the constructor for [MsgLikesUpdated]
func likesUpdatedMsg(snap likes.Snapshot) Msg {
	return Msg{kind: MsgLikesUpdated, data: snap}
}

// playerUpdatedMsg is the constructor for [MsgPlayerUpdated]
func playerUpdatedMsg(snap player.Snapshot) Msg {
	return Msg{kind: MsgPlayerUpdated, data: snap}
}

// actionFailedMsg is the constructor for [MsgActionFailed]
func actionFailedMsg(err error) Msg {
	return Msg{kind: MsgActionFailed, data: err}
}

// statusMsg is the constructor for [MsgStatus]
func statusMsg(text string) Msg {
	return Msg{kind: MsgStatus, data: text}
}

// listen returns a command that waits for the next value on ch and wraps it with wrap.
//
// A closed channel yields a nil message, which bubbletea ignores, ending the loop.
func listen[T any](ch <-chan T, wrap func(T) Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return wrap(v)
	}
}
